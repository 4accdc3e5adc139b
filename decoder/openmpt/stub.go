// SPDX-License-Identifier: EPL-2.0

//go:build !libopenmpt

package openmpt

import (
	"context"
	"fmt"

	"github.com/ik5/modpbx/decoder"
)

func checkLibrary(context.Context) error {
	return fmt.Errorf("%w: built without the libopenmpt tag", decoder.ErrLibraryUnavailable)
}

// Version reports that no library is linked.
func Version() string { return "unavailable" }

func openModule([]byte) (decoder.Handle, error) {
	return nil, decoder.ErrLibraryUnavailable
}
