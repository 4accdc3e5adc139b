// SPDX-License-Identifier: EPL-2.0

package wav

import (
	"encoding/binary"
	"errors"
	"fmt"
	"io"

	"github.com/ik5/modpbx/audio"
	"github.com/ik5/modpbx/utils"
)

const (
	formatPCM        = 1
	formatExtensible = 0xFFFE
)

type wavSource struct {
	r          io.Reader // limited to the data chunk
	sampleRate int
	channels   int
	buf        []byte
	eof        bool
}

func (s *wavSource) SampleRate() int { return s.sampleRate }
func (s *wavSource) Channels() int   { return s.channels }
func (s *wavSource) Close() error    { return nil }
func (s *wavSource) BufSize() int    { return len(s.buf) / 2 }

// ReadSamples converts interleaved 16-bit samples to float32. The call
// that reaches the end of the data chunk returns io.EOF together with the
// last samples.
func (s *wavSource) ReadSamples(dst []float32) (int, error) {
	if s.eof {
		return 0, io.EOF
	}
	if len(dst) == 0 {
		return 0, nil
	}

	if len(s.buf) < len(dst)*2 {
		s.buf = make([]byte, len(dst)*2)
	}

	n, err := io.ReadFull(s.r, s.buf[:len(dst)*2])
	switch {
	case errors.Is(err, io.EOF), errors.Is(err, io.ErrUnexpectedEOF):
		s.eof = true
	case err != nil:
		return 0, fmt.Errorf("wav: %w", err)
	}

	samples := n / 2
	for i := range samples {
		dst[i] = utils.Int16ToFloat32(int16(binary.LittleEndian.Uint16(s.buf[2*i:])))
	}

	if s.eof {
		return samples, io.EOF
	}
	return samples, nil
}

type Decoder struct{}

// Decode walks the RIFF chunks up to "data", skipping anything it does not
// need. Only 16-bit PCM is accepted, plain or as WAVE_FORMAT_EXTENSIBLE.
func (Decoder) Decode(r io.Reader) (audio.Source, error) {
	var riff [12]byte
	if _, err := io.ReadFull(r, riff[:]); err != nil {
		return nil, fmt.Errorf("wav header: %w", err)
	}
	if string(riff[:4]) != "RIFF" || string(riff[8:12]) != "WAVE" {
		return nil, ErrNotWavFile
	}

	var (
		haveFmt    bool
		channels   int
		sampleRate int
	)

	for {
		var hdr [8]byte
		if _, err := io.ReadFull(r, hdr[:]); err != nil {
			if !haveFmt {
				return nil, ErrUnsupportedWavLayout
			}
			return nil, ErrUnsupportedWavChunks
		}
		id := string(hdr[:4])
		size := int64(binary.LittleEndian.Uint32(hdr[4:]))

		switch id {
		case "fmt ":
			if size < 16 {
				return nil, ErrUnsupportedWavLayout
			}
			body := make([]byte, size)
			if _, err := io.ReadFull(r, body); err != nil {
				return nil, fmt.Errorf("wav fmt: %w", err)
			}
			if err := skipPad(r, size); err != nil {
				return nil, err
			}

			format := binary.LittleEndian.Uint16(body[0:2])
			channels = int(binary.LittleEndian.Uint16(body[2:4]))
			sampleRate = int(binary.LittleEndian.Uint32(body[4:8]))
			bits := binary.LittleEndian.Uint16(body[14:16])

			// extensible carries the real format in the subformat GUID
			if format == formatExtensible && size >= 26 {
				format = binary.LittleEndian.Uint16(body[24:26])
			}
			if format != formatPCM || bits != 16 {
				return nil, ErrOnlyPCM16bitSupported
			}
			if channels <= 0 || sampleRate <= 0 {
				return nil, ErrUnsupportedWavLayout
			}
			haveFmt = true

		case "data":
			if !haveFmt {
				return nil, ErrUnsupportedWavLayout
			}
			return &wavSource{
				r:          io.LimitReader(r, size),
				sampleRate: sampleRate,
				channels:   channels,
				buf:        make([]byte, 4096),
			}, nil

		default:
			if _, err := io.CopyN(io.Discard, r, size); err != nil {
				return nil, ErrUnsupportedWavChunks
			}
			if err := skipPad(r, size); err != nil {
				return nil, err
			}
		}
	}
}

// skipPad consumes the pad byte that follows odd-sized chunks.
func skipPad(r io.Reader, size int64) error {
	if size%2 == 0 {
		return nil
	}
	var pad [1]byte
	if _, err := io.ReadFull(r, pad[:]); err != nil {
		return ErrUnsupportedWavChunks
	}
	return nil
}
