// SPDX-License-Identifier: EPL-2.0

package sampled

import (
	"fmt"
	"math"
	"path/filepath"
	"strings"

	"github.com/ik5/modpbx/decoder"
	"github.com/ik5/modpbx/utils"
)

// clip plays decoded stereo samples. Access is serialised by the renderer.
type clip struct {
	title    string
	format   format
	channels int

	rate    int
	samples []float32
	frames  int

	pos    float64 // in frames at rate
	repeat int
	loops  int
	gain   int
	sep    int
	tempo  float64
	pitch  float64
	closed bool
}

var _ decoder.Handle = (*clip)(nil)

func newClip(name string, f format, channels, rate int, samples []float32) *clip {
	base := filepath.Base(name)
	return &clip{
		title:    strings.TrimSuffix(base, filepath.Ext(base)),
		format:   f,
		channels: channels,
		rate:     rate,
		samples:  samples,
		frames:   len(samples) / 2,
		sep:      100,
		tempo:    1,
		pitch:    1,
	}
}

func (c *clip) frame(i int) (float32, float32) {
	i = max(0, min(i, c.frames-1))
	return c.samples[2*i], c.samples[2*i+1]
}

func (c *clip) ReadInterleavedStereo(sampleRate int, dst []float32) (int, error) {
	if c.closed {
		return 0, decoder.ErrClosed
	}
	if sampleRate <= 0 {
		return 0, fmt.Errorf("sample rate %d: %w", sampleRate, decoder.ErrUnsupportedParam)
	}
	if c.frames == 0 {
		return 0, nil
	}

	step := c.tempo * c.pitch * float64(c.rate) / float64(sampleRate)
	gain := float32(math.Pow(10, float64(c.gain)/2000))
	width := float32(c.sep) / 100

	want := len(dst) / 2
	n := 0
	for n < want {
		if c.pos >= float64(c.frames) {
			if c.repeat != decoder.RepeatForever && c.loops >= c.repeat {
				break
			}
			c.loops++
			c.pos -= float64(c.frames)
		}

		i := int(c.pos)
		x := float32(c.pos - float64(i))
		l0, r0 := c.frame(i - 1)
		l1, r1 := c.frame(i)
		l2, r2 := c.frame(i + 1)
		l3, r3 := c.frame(i + 2)
		l := utils.CubicInterpolate(l0, l1, l2, l3, x)
		r := utils.CubicInterpolate(r0, r1, r2, r3, x)

		mid := (l + r) / 2
		side := (l - r) / 2 * width
		dst[2*n] = (mid + side) * gain
		dst[2*n+1] = (mid - side) * gain

		c.pos += step
		n++
	}

	return n, nil
}

func (c *clip) Position() float64 {
	return min(c.pos, float64(c.frames)) / float64(c.rate)
}

func (c *clip) SetPosition(seconds float64) (float64, error) {
	if c.closed {
		return 0, decoder.ErrClosed
	}
	if math.IsNaN(seconds) || seconds < 0 {
		seconds = 0
	}
	c.pos = min(seconds*float64(c.rate), float64(c.frames))
	c.loops = 0

	return c.Position(), nil
}

func (c *clip) Duration() float64 { return float64(c.frames) / float64(c.rate) }

func (c *clip) Metadata(key string) string {
	switch key {
	case decoder.KeyTitle:
		return c.title
	case decoder.KeyType:
		return c.format.key
	case decoder.KeyTypeLong:
		return c.format.long
	default:
		return ""
	}
}

func (c *clip) CurrentOrder() int   { return -1 }
func (c *clip) CurrentPattern() int { return -1 }
func (c *clip) CurrentRow() int     { return -1 }

func (c *clip) NumChannels() int    { return c.channels }
func (c *clip) NumPatterns() int    { return 0 }
func (c *clip) NumOrders() int      { return 0 }
func (c *clip) NumInstruments() int { return 0 }
func (c *clip) NumSamples() int     { return 1 }

func (c *clip) SetRepeatCount(n int) error {
	if n < decoder.RepeatForever {
		return fmt.Errorf("repeat count %d: %w", n, decoder.ErrUnsupportedParam)
	}
	c.repeat = n
	return nil
}

func (c *clip) RepeatCount() int { return c.repeat }

func (c *clip) SetRenderParam(p decoder.RenderParam, value int) error {
	switch p {
	case decoder.MasterGainMillibel:
		c.gain = value
	case decoder.StereoSeparationPercent:
		c.sep = max(0, min(value, 200))
	default:
		return fmt.Errorf("%s: %w", p, decoder.ErrUnsupportedParam)
	}
	return nil
}

func (c *clip) RenderParam(p decoder.RenderParam) (int, error) {
	switch p {
	case decoder.MasterGainMillibel:
		return c.gain, nil
	case decoder.StereoSeparationPercent:
		return c.sep, nil
	default:
		return 0, fmt.Errorf("%s: %w", p, decoder.ErrUnsupportedParam)
	}
}

func (c *clip) SetCtlFloat(key string, value float64) error {
	if math.IsNaN(value) || value <= 0 {
		return fmt.Errorf("%s=%v: %w", key, value, decoder.ErrUnsupportedParam)
	}

	switch key {
	case decoder.CtlTempoFactor:
		c.tempo = value
	case decoder.CtlPitchFactor:
		c.pitch = value
	default:
		return fmt.Errorf("%s: %w", key, decoder.ErrUnsupportedParam)
	}
	return nil
}

func (c *clip) CtlFloat(key string) (float64, error) {
	switch key {
	case decoder.CtlTempoFactor:
		return c.tempo, nil
	case decoder.CtlPitchFactor:
		return c.pitch, nil
	default:
		return 0, fmt.Errorf("%s: %w", key, decoder.ErrUnsupportedParam)
	}
}

func (c *clip) Close() error {
	c.closed = true
	c.samples = nil
	c.frames = 0
	return nil
}
