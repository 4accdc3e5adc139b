// SPDX-License-Identifier: EPL-2.0

package aiff

import (
	"bytes"
	"encoding/binary"
	"errors"
	"io"
	"testing"

	goaudio "github.com/go-audio/audio"
)

// fakeReader serves int samples the way aiff.Decoder.PCMBuffer does.
type fakeReader struct {
	channels int
	samples  []int
	off      int
	err      error
}

func (f *fakeReader) Format() *goaudio.Format {
	return &goaudio.Format{SampleRate: 44100, NumChannels: f.channels}
}

func (f *fakeReader) PCMBuffer(buf *goaudio.IntBuffer) (int, error) {
	if f.err != nil {
		return 0, f.err
	}
	if f.off >= len(f.samples) {
		return 0, io.EOF
	}
	n := copy(buf.Data, f.samples[f.off:])
	f.off += n
	return n, nil
}

func newSource(bitDepth int, samples []int) *stream {
	s, err := newStream(&fakeReader{channels: 1, samples: samples}, bitDepth)
	if err != nil {
		panic(err)
	}
	return s
}

// minimalAIFF builds a mono 16-bit 8 kHz AIFF file holding samples.
func minimalAIFF(samples []int16) []byte {
	ssnd := new(bytes.Buffer)
	binary.Write(ssnd, binary.BigEndian, uint32(0)) // offset
	binary.Write(ssnd, binary.BigEndian, uint32(0)) // block size
	binary.Write(ssnd, binary.BigEndian, samples)

	comm := new(bytes.Buffer)
	binary.Write(comm, binary.BigEndian, int16(1))
	binary.Write(comm, binary.BigEndian, uint32(len(samples)))
	binary.Write(comm, binary.BigEndian, int16(16))
	// 8000 as an 80-bit extended float
	binary.Write(comm, binary.BigEndian, uint16(0x400B))
	binary.Write(comm, binary.BigEndian, uint64(0xFA00000000000000))

	body := new(bytes.Buffer)
	body.WriteString("AIFF")
	body.WriteString("COMM")
	binary.Write(body, binary.BigEndian, uint32(comm.Len()))
	body.Write(comm.Bytes())
	body.WriteString("SSND")
	binary.Write(body, binary.BigEndian, uint32(ssnd.Len()))
	body.Write(ssnd.Bytes())

	out := new(bytes.Buffer)
	out.WriteString("FORM")
	binary.Write(out, binary.BigEndian, uint32(body.Len()))
	out.Write(body.Bytes())
	return out.Bytes()
}

func TestDecoder_Invalid(t *testing.T) {
	t.Parallel()

	for _, data := range [][]byte{[]byte("This is not AIFF data"), nil} {
		_, err := (Decoder{}).Decode(bytes.NewReader(data))
		if !errors.Is(err, ErrNotAiffFile) {
			t.Errorf("Decode(%q) error = %v, want ErrNotAiffFile", data, err)
		}
	}
}

func TestDecoder_Format(t *testing.T) {
	t.Parallel()

	// a plain io.Reader goes through the in-memory path
	r := io.MultiReader(bytes.NewReader(minimalAIFF([]int16{100, -100, 200, -200})))

	src, err := Decoder{}.Decode(r)
	if err != nil {
		t.Fatalf("Decode() error = %v", err)
	}
	if src.SampleRate() != 8000 || src.Channels() != 1 {
		t.Errorf("format = %d Hz/%d ch, want 8000/1", src.SampleRate(), src.Channels())
	}
}

func TestSource_Normalization(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		bitDepth int
		input    int
		want     float32
	}{
		{"8-bit max", 8, 127, 127.0 / 128.0},
		{"8-bit min", 8, -128, -1.0},
		{"16-bit max", 16, 32767, 32767.0 / 32768.0},
		{"16-bit min", 16, -32768, -1.0},
		{"24-bit", 24, 8388607, 8388607.0 / 8388608.0},
		{"32-bit", 32, 2147483647, 2147483647.0 / 2147483648.0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			dst := make([]float32, 1)
			n, err := newSource(tt.bitDepth, []int{tt.input}).ReadSamples(dst)
			if err != nil && err != io.EOF {
				t.Fatalf("ReadSamples() error = %v", err)
			}
			if n != 1 {
				t.Fatalf("ReadSamples() n = %d, want 1", n)
			}
			if d := dst[0] - tt.want; d > 0.001 || d < -0.001 {
				t.Errorf("dst[0] = %f, want %f", dst[0], tt.want)
			}
		})
	}
}

func TestNewStream_Rejects(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		channels int
		bitDepth int
		want     error
	}{
		{"12-bit", 1, 12, ErrUnsupportedBitDepth},
		{"64-bit", 1, 64, ErrUnsupportedBitDepth},
		{"no channels", 0, 16, ErrUnsupportedAiffLayout},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			_, err := newStream(&fakeReader{channels: tt.channels}, tt.bitDepth)
			if !errors.Is(err, tt.want) {
				t.Errorf("newStream() error = %v, want %v", err, tt.want)
			}
		})
	}
}

func TestSource_ReadUntilEnd(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		total int
		chunk int
		want  []int
	}{
		{"exact chunks", 8, 4, []int{4, 4, 0}},
		{"short last chunk", 10, 4, []int{4, 4, 2}},
		{"one read", 3, 64, []int{3}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			src := newSource(16, make([]int, tt.total))
			dst := make([]float32, tt.chunk)

			var got []int
			for range 10 {
				n, err := src.ReadSamples(dst)
				got = append(got, n)
				if err == io.EOF {
					break
				}
				if err != nil {
					t.Fatalf("ReadSamples() error = %v", err)
				}
			}

			if len(got) != len(tt.want) {
				t.Fatalf("reads = %v, want %v", got, tt.want)
			}
			for i := range got {
				if got[i] != tt.want[i] {
					t.Fatalf("reads = %v, want %v", got, tt.want)
				}
			}

			if n, err := src.ReadSamples(dst); n != 0 || err != io.EOF {
				t.Errorf("ReadSamples() after end = %d, %v, want 0, EOF", n, err)
			}
		})
	}
}

func TestSource_EmptyBuffer(t *testing.T) {
	t.Parallel()

	src := newSource(16, []int{1, 2})
	if n, err := src.ReadSamples(nil); n != 0 || err != nil {
		t.Errorf("ReadSamples(nil) = %d, %v, want 0, nil", n, err)
	}
	if src.BufSize() != 4096 {
		t.Errorf("BufSize() = %d before first read, want 4096", src.BufSize())
	}
}

func TestSource_DecoderError(t *testing.T) {
	t.Parallel()

	src, err := newStream(&fakeReader{channels: 1, err: io.ErrUnexpectedEOF}, 16)
	if err != nil {
		t.Fatal(err)
	}

	if _, err := src.ReadSamples(make([]float32, 4)); !errors.Is(err, io.ErrUnexpectedEOF) {
		t.Errorf("ReadSamples() error = %v, want ErrUnexpectedEOF", err)
	}
}

func BenchmarkSource_ReadSamples(b *testing.B) {
	samples := make([]int, 4096)
	dst := make([]float32, 4096)

	for b.Loop() {
		src := newSource(16, samples)
		if _, err := src.ReadSamples(dst); err != nil {
			b.Fatal(err)
		}
	}
}
