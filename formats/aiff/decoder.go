// SPDX-License-Identifier: EPL-2.0

package aiff

import (
	"bytes"
	"errors"
	"fmt"
	"io"

	"github.com/go-audio/aiff"
	goaudio "github.com/go-audio/audio"

	"github.com/ik5/modpbx/audio"
)

// pcmReader is the part of aiff.Decoder a stream reads from.
type pcmReader interface {
	Format() *goaudio.Format
	PCMBuffer(buf *goaudio.IntBuffer) (int, error)
}

// stream converts big-endian integer frames of one bit depth to float32.
type stream struct {
	pcm   pcmReader
	rate  int
	chans int
	scale float32 // magnitude of the most negative sample
	ints  goaudio.IntBuffer
	ended bool
}

func newStream(pcm pcmReader, bits int) (*stream, error) {
	if bits < 8 || bits > 32 || bits%8 != 0 {
		return nil, fmt.Errorf("%w: %d", ErrUnsupportedBitDepth, bits)
	}

	f := pcm.Format()
	if f == nil || f.NumChannels <= 0 || f.SampleRate <= 0 {
		return nil, ErrUnsupportedAiffLayout
	}

	return &stream{
		pcm:   pcm,
		rate:  f.SampleRate,
		chans: f.NumChannels,
		scale: float32(int64(1) << (bits - 1)),
		ints:  goaudio.IntBuffer{Format: f, SourceBitDepth: bits},
	}, nil
}

func (s *stream) SampleRate() int { return s.rate }
func (s *stream) Channels() int   { return s.chans }
func (s *stream) Close() error    { return nil }

func (s *stream) BufSize() int {
	if n := cap(s.ints.Data); n > 0 {
		return n
	}
	return 4096
}

func (s *stream) ReadSamples(dst []float32) (int, error) {
	switch {
	case s.ended:
		return 0, io.EOF
	case len(dst) == 0:
		return 0, nil
	}

	if cap(s.ints.Data) < len(dst) {
		s.ints.Data = make([]int, len(dst))
	}
	s.ints.Data = s.ints.Data[:len(dst)]

	n, err := s.pcm.PCMBuffer(&s.ints)
	for i, v := range s.ints.Data[:n] {
		dst[i] = float32(v) / s.scale
	}

	if errors.Is(err, io.EOF) || (err == nil && n < len(dst)) {
		// a short read is the end of the SSND chunk
		s.ended = true
		return n, io.EOF
	}
	if err != nil {
		return n, fmt.Errorf("aiff: %w", err)
	}
	return n, nil
}

// Decoder reads AIFF files of 8, 16, 24 or 32 bits.
type Decoder struct{}

// Decode reads the COMM chunk and leaves the decoder on the sound data.
// go-audio/aiff needs to seek, so other readers are buffered in memory.
func (Decoder) Decode(r io.Reader) (audio.Source, error) {
	rs, seekable := r.(io.ReadSeeker)
	if !seekable {
		data, err := io.ReadAll(r)
		if err != nil {
			return nil, fmt.Errorf("aiff: %w", err)
		}
		rs = bytes.NewReader(data)
	}

	dec := aiff.NewDecoder(rs)
	if !dec.IsValidFile() {
		return nil, ErrNotAiffFile
	}
	dec.ReadInfo()

	return newStream(dec, int(dec.BitDepth))
}
