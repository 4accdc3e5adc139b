// SPDX-License-Identifier: EPL-2.0

// Package decoder defines the capability the player core consumes from a
// tracker module decoder.
//
// # Handle
//
// A Handle is one loaded module. It renders interleaved stereo float32
// frames on demand and reports position, duration, sequencing information
// (order, pattern, row) and metadata:
//
//	h, err := registry.Open("song.xm", data)
//	if err != nil {
//	    return err
//	}
//	defer h.Close()
//
//	buf := make([]float32, 2048*2)
//	frames, err := h.ReadInterleavedStereo(48000, buf)
//
// A Handle is not safe for concurrent use. Exactly one goroutine owns it at
// a time; the render package serialises access between the control side
// and the audio side.
//
// # Backends
//
// A Backend turns module bytes into a Handle. Backends are registered by
// file extension in a Registry:
//
//	registry := decoder.NewRegistry()
//	registry.Register(openmpt.Backend{})
//	registry.Register(sampled.NewBackend(48000))
//
// Names without a known extension go to the default backend, which is the
// first one registered unless SetDefault says otherwise.
//
// # Library Initialisation
//
// Native libraries and audio contexts that may only be set up once per
// process are guarded by Library. Concurrent callers of Library.Init share
// the same in-flight attempt:
//
//	var lib = decoder.NewLibrary("libopenmpt", checkVersion)
//
//	if err := lib.Init(ctx); err != nil {
//	    return err
//	}
//
// A failed attempt leaves the library in the Failed state; the next Init
// call tries again.
package decoder
