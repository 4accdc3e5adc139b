// SPDX-License-Identifier: EPL-2.0

package wav

import (
	"bytes"
	"encoding/binary"
	"errors"
	"io"
	"testing"
)

func TestWriteWAV16Channels_Header(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name       string
		rate       int
		channels   int
		samples    int
		byteRate   uint32
		blockAlign uint16
	}{
		{"mono 8k", 8000, 1, 5, 16000, 2},
		{"stereo 48k", 48000, 2, 6, 192000, 4},
		{"empty", 44100, 1, 0, 88200, 2},
		{"beyond one chunk", 44100, 2, 3 * writeChunk, 176400, 4},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			buf := new(bytes.Buffer)
			if err := WriteWAV16Channels(buf, tt.rate, tt.channels, make([]int16, tt.samples)); err != nil {
				t.Fatalf("WriteWAV16Channels() error = %v", err)
			}

			h := buf.Bytes()
			if len(h) != headerSize+2*tt.samples {
				t.Fatalf("file size = %d, want %d", len(h), headerSize+2*tt.samples)
			}
			if string(h[0:4]) != "RIFF" || string(h[8:12]) != "WAVE" || string(h[36:40]) != "data" {
				t.Fatalf("bad markers %q %q %q", h[0:4], h[8:12], h[36:40])
			}

			checks := []struct {
				field string
				got   uint32
				want  uint32
			}{
				{"riff size", binary.LittleEndian.Uint32(h[4:]), uint32(36 + 2*tt.samples)},
				{"channels", uint32(binary.LittleEndian.Uint16(h[22:])), uint32(tt.channels)},
				{"rate", binary.LittleEndian.Uint32(h[24:]), uint32(tt.rate)},
				{"byte rate", binary.LittleEndian.Uint32(h[28:]), tt.byteRate},
				{"block align", uint32(binary.LittleEndian.Uint16(h[32:])), uint32(tt.blockAlign)},
				{"bits", uint32(binary.LittleEndian.Uint16(h[34:])), 16},
				{"data size", binary.LittleEndian.Uint32(h[40:]), uint32(2 * tt.samples)},
			}
			for _, c := range checks {
				if c.got != c.want {
					t.Errorf("%s = %d, want %d", c.field, c.got, c.want)
				}
			}
		})
	}
}

func TestWriteWAV16_RoundTrip(t *testing.T) {
	t.Parallel()

	in := []int16{0, 1, -1, 12345, -12345, 32767, -32768}
	buf := new(bytes.Buffer)
	if err := WriteWAV16(buf, 16000, in); err != nil {
		t.Fatalf("WriteWAV16() error = %v", err)
	}

	// samples are little-endian right after the header
	for i, want := range in {
		if got := int16(binary.LittleEndian.Uint16(buf.Bytes()[headerSize+2*i:])); got != want {
			t.Errorf("raw sample %d = %d, want %d", i, got, want)
		}
	}

	src, err := Decoder{}.Decode(bytes.NewReader(buf.Bytes()))
	if err != nil {
		t.Fatalf("Decode() error = %v", err)
	}

	dst := make([]float32, 16)
	n, err := src.ReadSamples(dst)
	if err != io.EOF {
		t.Fatalf("ReadSamples() error = %v, want io.EOF", err)
	}
	if n != len(in) {
		t.Fatalf("ReadSamples() n = %d, want %d", n, len(in))
	}
	for i, want := range in {
		if got := dst[i] * 32768; got != float32(want) {
			t.Errorf("sample %d = %v, want %d", i, got, want)
		}
	}
}

func TestWriteWAV16Channels_Invalid(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		channels int
		samples  []int16
	}{
		{name: "zero channels", channels: 0, samples: []int16{1, 2}},
		{name: "negative channels", channels: -2, samples: []int16{1, 2}},
		{name: "odd stereo", channels: 2, samples: []int16{1, 2, 3}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			err := WriteWAV16Channels(new(bytes.Buffer), 8000, tt.channels, tt.samples)
			if !errors.Is(err, ErrInvalidChannelCount) {
				t.Errorf("WriteWAV16Channels() error = %v, want ErrInvalidChannelCount", err)
			}
		})
	}
}

type failWriter struct{ after int }

func (f *failWriter) Write(p []byte) (int, error) {
	if f.after <= 0 {
		return 0, io.ErrClosedPipe
	}
	f.after--
	return len(p), nil
}

func TestWriteWAV16_WriterError(t *testing.T) {
	t.Parallel()

	for _, after := range []int{0, 1} {
		err := WriteWAV16(&failWriter{after: after}, 8000, make([]int16, 10))
		if !errors.Is(err, io.ErrClosedPipe) {
			t.Errorf("fail after %d writes: error = %v, want ErrClosedPipe", after, err)
		}
	}
}

func BenchmarkWriteWAV16(b *testing.B) {
	samples := make([]int16, 44100)
	b.ReportAllocs()

	for b.Loop() {
		if err := WriteWAV16(io.Discard, 44100, samples); err != nil {
			b.Fatal(err)
		}
	}
}
