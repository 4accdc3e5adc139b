// SPDX-License-Identifier: EPL-2.0

package sampled

import (
	"bytes"
	"fmt"
	"io"

	"github.com/ik5/modpbx/audio"
	"github.com/ik5/modpbx/decoder"
	"github.com/ik5/modpbx/formats/aiff"
	"github.com/ik5/modpbx/formats/mp3"
	"github.com/ik5/modpbx/formats/vorbis"
	"github.com/ik5/modpbx/formats/wav"
)

type format struct {
	key  string
	long string
}

var formats = map[string]format{
	"wav":  {key: "wav", long: "RIFF WAVE"},
	"mp3":  {key: "mp3", long: "MPEG Layer 3"},
	"ogg":  {key: "ogg vorbis", long: "Ogg Vorbis"},
	"aif":  {key: "aiff", long: "Audio Interchange File Format"},
	"aiff": {key: "aiff", long: "Audio Interchange File Format"},
}

// Backend decodes sampled audio files into in-memory clips.
type Backend struct {
	sampleRate int
	codecs     *audio.Registry
}

var _ decoder.Backend = (*Backend)(nil)

// NewBackend returns a backend producing clips at sampleRate.
func NewBackend(sampleRate int) *Backend {
	codecs := audio.NewRegistry()
	codecs.Register("wav", wav.Decoder{})
	codecs.Register("mp3", mp3.Decoder{})
	codecs.Register("ogg vorbis", vorbis.Decoder{})
	codecs.Register("aiff", aiff.Decoder{})

	return &Backend{sampleRate: sampleRate, codecs: codecs}
}

func (b *Backend) Name() string { return "sampled" }

func (b *Backend) Extensions() []string {
	return []string{"wav", "mp3", "ogg", "aif", "aiff"}
}

func (b *Backend) Open(name string, data []byte) (decoder.Handle, error) {
	if len(data) == 0 {
		return nil, decoder.ErrOpenFailed
	}

	ext := decoder.Extension(name)
	f, ok := formats[ext]
	if !ok {
		return nil, fmt.Errorf("%q: %w", name, decoder.ErrUnknownFormat)
	}
	codec, ok := b.codecs.Get(f.key)
	if !ok {
		return nil, fmt.Errorf("%s: %w", f.key, decoder.ErrUnknownFormat)
	}

	src, err := codec.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("%w: %w", decoder.ErrOpenFailed, err)
	}
	defer src.Close()

	channels := src.Channels()
	if channels <= 0 || src.SampleRate() <= 0 {
		return nil, fmt.Errorf("%w: invalid stream layout", decoder.ErrOpenFailed)
	}

	samples, err := decodeStereo(src, b.sampleRate)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", decoder.ErrOpenFailed, err)
	}

	return newClip(name, f, channels, b.sampleRate, samples), nil
}

// decodeStereo reads src to the end at rate and returns interleaved
// stereo. Mono is duplicated; extra channels are dropped.
func decodeStereo(src audio.Source, rate int) ([]float32, error) {
	var s audio.Source = src
	if src.SampleRate() != rate {
		s = audio.NewResampler(src, rate)
	}

	channels := s.Channels()
	buf := make([]float32, 4096*channels)
	out := make([]float32, 0, rate*2)

	for {
		n, err := s.ReadSamples(buf)
		for f := range n / channels {
			frame := buf[f*channels : (f+1)*channels]
			if channels == 1 {
				out = append(out, frame[0], frame[0])
			} else {
				out = append(out, frame[0], frame[1])
			}
		}

		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, err
		}
		if n == 0 {
			break
		}
	}

	return out, nil
}
