// SPDX-License-Identifier: EPL-2.0

// Package vorbis decodes Ogg Vorbis streams into an audio.Source using
// github.com/jfreymuth/oggvorbis.
//
// The channel count and rate come from the stream headers. Samples are
// already float32 in [-1, 1] and are copied through unchanged. The sampled
// playback backend registers this decoder for ".ogg".
package vorbis
