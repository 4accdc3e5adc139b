// SPDX-License-Identifier: EPL-2.0

package openmpt

import (
	"context"

	"github.com/ik5/modpbx/decoder"
)

// Library tracks whether libopenmpt is usable in this process.
var Library = decoder.NewLibrary("libopenmpt", checkLibrary)

// Backend opens tracker modules with libopenmpt.
type Backend struct{}

var _ decoder.Backend = Backend{}

func (Backend) Name() string { return "libopenmpt" }

func (Backend) Extensions() []string { return decoder.SupportedExtensions }

func (Backend) Open(name string, data []byte) (decoder.Handle, error) {
	if err := Library.Init(context.Background()); err != nil {
		return nil, err
	}
	if len(data) == 0 {
		return nil, decoder.ErrOpenFailed
	}

	return openModule(data)
}
