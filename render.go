// SPDX-License-Identifier: EPL-2.0

package modpbx

import (
	"fmt"
	"io"
	"math"

	"github.com/ik5/modpbx/audio"
	"github.com/ik5/modpbx/decoder"
	"github.com/ik5/modpbx/render"
	"github.com/ik5/modpbx/sink"
)

// DefaultBufferFrames is the period size used when a caller passes zero.
const DefaultBufferFrames = sink.BrowserFrames

// RenderPCM16 renders the module attached to r from its current position
// to the end and returns interleaved stereo 16-bit PCM at r's sample rate.
//
// maxSeconds caps the rendered length. Zero means no cap, which is only
// accepted when the module does not repeat forever.
func RenderPCM16(r *render.Renderer, bufferFrames int, maxSeconds float64) ([]int16, error) {
	src, err := newOfflineSource(r, maxSeconds)
	if err != nil {
		return nil, err
	}

	return audio.CollectPCM16(src, frames(bufferFrames)*render.Channels)
}

// RenderMono16 is RenderPCM16 followed by resampling to targetRate and a
// mono downmix. It returns the samples and their sample rate.
//
// Example:
//
//	pcm16, rate, err := modpbx.RenderMono16(r, 8000, 4096, 30)
func RenderMono16(r *render.Renderer, targetRate int, bufferSize int, maxSeconds float64) ([]int16, int, error) {
	src, err := newOfflineSource(r, maxSeconds)
	if err != nil {
		return nil, 0, err
	}

	var stream audio.Source = src
	if targetRate > 0 && targetRate != src.SampleRate() {
		stream = audio.NewResampler(stream, targetRate)
	}
	mono := audio.NewMonoMixer(stream)

	pcm16, err := audio.CollectPCM16(mono, frames(bufferSize))
	if err != nil {
		return nil, 0, err
	}
	return pcm16, mono.SampleRate(), nil
}

func frames(n int) int {
	if n <= 0 {
		return DefaultBufferFrames
	}
	return n
}

// offlineSource is a render.Source that stops after a fixed number of
// frames.
type offlineSource struct {
	*render.Source
	left int // frames, -1 for no cap
}

func newOfflineSource(r *render.Renderer, maxSeconds float64) (*offlineSource, error) {
	if !r.Loaded() {
		return nil, ErrNothingLoaded
	}

	capped := maxSeconds > 0 && !math.IsInf(maxSeconds, 1)
	if !capped {
		var forever bool
		err := r.With(func(h decoder.Handle) error {
			forever = h.RepeatCount() == decoder.RepeatForever
			return nil
		})
		if err != nil {
			return nil, fmt.Errorf("render: %w", err)
		}
		if forever {
			return nil, ErrUnbounded
		}
	}

	s := &offlineSource{Source: render.NewSource(r), left: -1}
	if capped {
		s.left = int(math.Round(maxSeconds * float64(r.SampleRate())))
	}
	return s, nil
}

func (s *offlineSource) ReadSamples(dst []float32) (int, error) {
	if s.left == 0 {
		return 0, io.EOF
	}
	if s.left > 0 && len(dst) > s.left*render.Channels {
		dst = dst[:s.left*render.Channels]
	}

	n, err := s.Source.ReadSamples(dst)
	if s.left > 0 {
		s.left -= n / render.Channels
	}
	return n, err
}
