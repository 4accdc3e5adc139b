// SPDX-License-Identifier: EPL-2.0

// Package aiff decodes uncompressed AIFF files into an audio.Source using
// github.com/go-audio/aiff.
//
// Integer PCM at 8, 16, 24 and 32 bits is accepted and scaled to [-1, 1).
// AIFF-C is not. Input that is not an io.ReadSeeker is read into memory
// first. The sampled playback backend registers this decoder for ".aif"
// and ".aiff".
package aiff
