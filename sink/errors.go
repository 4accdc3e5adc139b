// SPDX-License-Identifier: EPL-2.0

package sink

import "errors"

var (
	// ErrDeviceUnavailable indicates the audio output could not be opened.
	ErrDeviceUnavailable = errors.New("audio device unavailable")

	// ErrClosed is returned by operations on a closed sink.
	ErrClosed = errors.New("sink closed")

	// ErrInvalidFrames indicates a non-positive period size.
	ErrInvalidFrames = errors.New("period must hold at least one frame")
)
