// SPDX-License-Identifier: EPL-2.0

// Package openmpt binds libopenmpt as a decoder.Backend.
//
// The binding uses cgo and pkg-config and is only compiled with the
// libopenmpt build tag:
//
//	go build -tags libopenmpt ./...
//
// Without the tag the package still builds; Backend.Open then fails with
// decoder.ErrLibraryUnavailable so callers can fall back to other backends.
//
// The library is checked once per process through Library, whose Init
// compares the runtime library version with the headers the binding was
// built against.
package openmpt
