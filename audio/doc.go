// SPDX-License-Identifier: EPL-2.0

// Package audio holds the streaming primitives shared by the decoders, the
// renderer and the meters.
//
// Everything is an audio.Source producing interleaved float32 samples.
// Sources chain:
//
//	src := render.NewSource(r)                 // stereo at the renderer rate
//	mono := audio.NewMonoMixer(audio.NewResampler(src, 8000))
//	pcm16, err := audio.CollectPCM16(mono, 4096)
//
// Registry maps format keys to Decoders so the sampled backend can pick a
// decoder from a file extension.
package audio
