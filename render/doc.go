// SPDX-License-Identifier: EPL-2.0

// Package render turns a decoder.Handle into periods of interleaved stereo
// float32 audio.
//
// A Renderer owns the attached handle while rendering. Control code goes
// through Renderer methods (Seek, SetRepeatCount, With...) which take the
// same lock as Render, so the handle only ever sees one caller at a time.
// Real-time callbacks use TryRender, which never waits for that lock.
//
// # End of Stream
//
// Render reports EndOfStream when the decoder returns fewer frames than
// requested. As a fallback it also reports it when a full period is silent
// and the position is within EndEpsilon of the duration; that check can
// misfire on silent passages right before a loop point and is disabled
// while the repeat count is infinite or when Heuristic is false.
//
// # Sample Conversion
//
// ToPCM16 converts float32 samples to little-endian signed 16-bit PCM:
//
//	frames := r.Render(buf)
//	render.ToPCM16(pcm, buf[:frames.Frames*2])
package render
