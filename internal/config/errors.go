// SPDX-License-Identifier: EPL-2.0

package config

import "errors"

var (
	ErrInvalidOutput = errors.New("output must be one of oto, pipe, wav, null")
	ErrMissingFile   = errors.New("wav output needs -out")
	ErrInvalidValue  = errors.New("invalid value")
)
