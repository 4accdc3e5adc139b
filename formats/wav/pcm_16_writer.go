// SPDX-License-Identifier: EPL-2.0

package wav

import (
	"encoding/binary"
	"fmt"
	"io"
)

const (
	headerSize = 44
	// samples converted per Write call
	writeChunk = 8192
)

// WriteWAV16 writes a mono 16-bit PCM WAV at sampleRate.
func WriteWAV16(w io.Writer, sampleRate int, samples []int16) error {
	return WriteWAV16Channels(w, sampleRate, 1, samples)
}

// WriteWAV16Channels writes interleaved 16-bit PCM with the given channel
// count, e.g. the stereo output of a rendered module. The whole payload
// must be known up front; for streaming output use sink.WAVDevice.
func WriteWAV16Channels(w io.Writer, sampleRate, channels int, samples []int16) error {
	if channels <= 0 || len(samples)%channels != 0 {
		return ErrInvalidChannelCount
	}

	if _, err := w.Write(header16(sampleRate, channels, len(samples))); err != nil {
		return fmt.Errorf("wav header: %w", err)
	}

	buf := make([]byte, 2*min(len(samples), writeChunk))
	for len(samples) > 0 {
		n := min(len(samples), writeChunk)
		for i, s := range samples[:n] {
			binary.LittleEndian.PutUint16(buf[2*i:], uint16(s))
		}
		if _, err := w.Write(buf[:2*n]); err != nil {
			return fmt.Errorf("wav data: %w", err)
		}
		samples = samples[n:]
	}

	return nil
}

// header16 builds the canonical RIFF/fmt/data header for 16-bit PCM.
func header16(sampleRate, channels, samples int) []byte {
	const bytesPerSample = 2

	dataSize := uint32(samples * bytesPerSample)
	h := make([]byte, headerSize)

	copy(h[0:], "RIFF")
	binary.LittleEndian.PutUint32(h[4:], headerSize-8+dataSize)
	copy(h[8:], "WAVE")

	copy(h[12:], "fmt ")
	binary.LittleEndian.PutUint32(h[16:], 16)
	binary.LittleEndian.PutUint16(h[20:], formatPCM)
	binary.LittleEndian.PutUint16(h[22:], uint16(channels))
	binary.LittleEndian.PutUint32(h[24:], uint32(sampleRate))
	binary.LittleEndian.PutUint32(h[28:], uint32(sampleRate*channels*bytesPerSample))
	binary.LittleEndian.PutUint16(h[32:], uint16(channels*bytesPerSample))
	binary.LittleEndian.PutUint16(h[34:], 16)

	copy(h[36:], "data")
	binary.LittleEndian.PutUint32(h[40:], dataSize)

	return h
}
