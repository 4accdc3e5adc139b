// SPDX-License-Identifier: EPL-2.0

package render

import (
	"io"

	"github.com/ik5/modpbx/audio"
)

// Source exposes a Renderer as an audio.Source so rendered modules can go
// through the audio pipeline (mixing, analysis, export). ReadSamples
// returns io.EOF at the end of the module or when nothing is attached.
type Source struct {
	r   *Renderer
	eof bool
}

var _ audio.Source = (*Source)(nil)

func NewSource(r *Renderer) *Source {
	return &Source{r: r}
}

func (s *Source) SampleRate() int { return s.r.SampleRate() }
func (s *Source) Channels() int   { return Channels }
func (s *Source) BufSize() int    { return 4096 }
func (s *Source) Close() error    { return nil }

func (s *Source) ReadSamples(dst []float32) (int, error) {
	if s.eof {
		return 0, io.EOF
	}
	if len(dst)%Channels != 0 {
		return 0, audio.ErrInvalidDstSize
	}
	if len(dst) == 0 {
		return 0, nil
	}
	if !s.r.Loaded() {
		s.eof = true
		return 0, io.EOF
	}

	res, err := s.r.Render(dst)
	if err != nil {
		return 0, err
	}

	n := res.Frames * Channels
	if res.EndOfStream {
		s.eof = true
		return n, io.EOF
	}
	return n, nil
}
