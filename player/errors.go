// SPDX-License-Identifier: EPL-2.0

package player

import "errors"

var (
	ErrLoadFailed           = errors.New("failed to load module")
	ErrInitializationFailed = errors.New("failed to initialize audio output")
	ErrInvalidOperation     = errors.New("operation not valid in current state")
	ErrNativeLibrary        = errors.New("native decoder library unavailable")
	ErrUnsupportedOperation = errors.New("operation not supported on this platform")
)
