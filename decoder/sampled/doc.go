// SPDX-License-Identifier: EPL-2.0

// Package sampled is a decoder.Backend for plain sampled audio (WAV, MP3,
// Ogg Vorbis and AIFF).
//
// Files are decoded with the formats/* decoders, resampled to the render
// rate and kept in memory as interleaved stereo. The resulting handle
// honours repeat count, master gain, stereo separation and the tempo and
// pitch factors, so the rest of the player cannot tell it from a tracker
// module. It has no patterns, so order, pattern and row read as -1.
package sampled
