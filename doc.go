// SPDX-License-Identifier: EPL-2.0

// Package modpbx plays tracker modules (MOD, XM, S3M, IT and friends) and
// plain sampled audio through a single player core.
//
// The work is split across subpackages:
//   - decoder: the Handle abstraction and the backend registry
//   - decoder/openmpt: libopenmpt through cgo (build tag libopenmpt)
//   - decoder/sampled: WAV, MP3, Ogg Vorbis and AIFF clips
//   - render: fixed-size stereo periods with end-of-stream detection
//   - sink: pull (writer loop) and push (oto callback) outputs
//   - player: the state machine and the ModPlayer control surface
//   - control: a line protocol for driving a player over a socket
//   - analysis: peak, RMS and spectrum meters
//
// This package holds the offline helpers. They render a loaded module as
// fast as the decoder allows instead of in real time:
//
//	r := render.New(44100)
//	r.Attach(h)
//	pcm16, err := modpbx.RenderPCM16(r, 1024, 0)
//
// Exporting to a WAV file with tags taken from the module:
//
//	f, _ := os.Create("song.wav")
//	defer f.Close()
//	frames, err := modpbx.ExportWAV(f, r, modpbx.ExportInfo{Title: "song"})
//
// A module set to repeat forever never ends, so these helpers refuse to
// render it unless a MaxSeconds cap is given.
package modpbx
