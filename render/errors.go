// SPDX-License-Identifier: EPL-2.0

package render

import "errors"

var (
	ErrInvalidBufferSize = errors.New("buffer size must be a positive multiple of 2 (stereo)")
	ErrShortPCMBuffer    = errors.New("pcm buffer too small for samples")
)
