// SPDX-License-Identifier: EPL-2.0

//go:build headless

package sink

import (
	"fmt"

	"github.com/ik5/modpbx/render"
)

// OtoFactory is unavailable in headless builds.
func OtoFactory(frames int) Factory {
	return func(r *render.Renderer, ev Events) (Sink, error) {
		return nil, fmt.Errorf("%w: built without audio output", ErrDeviceUnavailable)
	}
}
