// SPDX-License-Identifier: EPL-2.0

// Package wav reads and writes 16-bit PCM WAV files.
//
// Decoder walks the RIFF chunk list, skips chunks it does not need and
// stops at the end of the "data" chunk, so trailing LIST/INFO tags (as
// written by sink.WAVDevice) are never mistaken for samples. Both plain
// PCM and WAVE_FORMAT_EXTENSIBLE with a PCM subformat are accepted.
//
// WriteWAV16 and WriteWAV16Channels write a canonical 44-byte header
// followed by the samples. They need the whole payload in memory; the
// streaming recorder used for module export lives in the sink package.
package wav
