// SPDX-License-Identifier: EPL-2.0

// Package mp3 decodes MPEG-1/2 Layer III audio into an audio.Source using
// github.com/hajimehoshi/go-mp3.
//
// The decoder always produces interleaved stereo 16-bit samples, so the
// source reports two channels even for mono files. Samples are scaled to
// [-1, 1). The sampled playback backend registers this decoder for the
// ".mp3" extension:
//
//	src, err := mp3.Decoder{}.Decode(bytes.NewReader(data))
//	if err != nil {
//		return err
//	}
//	buf := make([]float32, 4096)
//	n, err := src.ReadSamples(buf)
package mp3
