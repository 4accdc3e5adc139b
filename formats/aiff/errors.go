// SPDX-License-Identifier: EPL-2.0

package aiff

import "errors"

var (
	ErrNotAiffFile           = errors.New("not an AIFF file")
	ErrUnsupportedBitDepth   = errors.New("AIFF bit depth must be 8, 16, 24 or 32")
	ErrUnsupportedAiffLayout = errors.New("unsupported AIFF layout")
)
