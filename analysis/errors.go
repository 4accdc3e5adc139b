// SPDX-License-Identifier: EPL-2.0

package analysis

import "errors"

var (
	ErrInvalidSize  = errors.New("window size must be a power of two of at least 64")
	ErrInvalidBands = errors.New("band count must be between 1 and the number of bins")
	ErrInvalidRate  = errors.New("sample rate must be positive")
)
