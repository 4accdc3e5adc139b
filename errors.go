// SPDX-License-Identifier: EPL-2.0

package modpbx

import "errors"

var (
	ErrNothingLoaded = errors.New("no module attached to renderer")
	ErrUnbounded     = errors.New("module repeats forever and no duration cap was given")
)
