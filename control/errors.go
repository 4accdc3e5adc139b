// SPDX-License-Identifier: EPL-2.0

package control

import "errors"

var (
	ErrControlLocked  = errors.New("CONTROL_LOCKED")
	ErrUnknownCommand = errors.New("UNKNOWN_COMMAND")
	ErrArgument       = errors.New("ARG")
	ErrRemote         = errors.New("remote error")
)
