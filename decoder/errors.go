// SPDX-License-Identifier: EPL-2.0

package decoder

import "errors"

var (
	// ErrNoModule is returned by operations that need a loaded module.
	ErrNoModule = errors.New("no module loaded")

	// ErrOpenFailed indicates the backend rejected the module data.
	ErrOpenFailed = errors.New("module could not be opened")

	// ErrUnknownFormat indicates no backend handles the file extension.
	ErrUnknownFormat = errors.New("unknown module format")

	// ErrUnsupportedParam indicates a render parameter or ctl key the backend does not know.
	ErrUnsupportedParam = errors.New("unsupported parameter")

	// ErrLibraryUnavailable indicates the native decoder library is missing or failed to initialise.
	ErrLibraryUnavailable = errors.New("decoder library unavailable")

	// ErrClosed is returned when a handle is used after Close.
	ErrClosed = errors.New("handle closed")
)
