// SPDX-License-Identifier: EPL-2.0

package audio

import (
	"errors"
	"fmt"
	"io"

	"github.com/ik5/modpbx/utils"
)

// Resampler converts src to another sample rate with cubic interpolation.
// Channel count and interleaving are preserved. When downsampling a
// one-pole low-pass is applied to the input frames.
type Resampler struct {
	src      Source
	dstRate  int
	ratio    float64 // source frames per output frame
	channels int

	// window[1] is the frame at pos 0, window[2] the one at pos 1
	window [4][]float32
	have   [4]bool
	primed bool
	pos    float64

	// block read from src, consumed one frame at a time
	block   []float32
	off     int
	blockN  int
	srcDone bool

	lowpass bool
	alpha   float32
	state   []float32
}

func NewResampler(src Source, dstRate int) *Resampler {
	if dstRate <= 0 {
		dstRate = src.SampleRate()
	}
	channels := max(1, src.Channels())
	ratio := float64(src.SampleRate()) / float64(dstRate)

	r := &Resampler{
		src:      src,
		dstRate:  dstRate,
		ratio:    ratio,
		channels: channels,
		block:    make([]float32, 1024*channels),
		lowpass:  ratio > 1,
		alpha:    0.5,
		state:    make([]float32, channels),
	}
	for i := range r.window {
		r.window[i] = make([]float32, channels)
	}

	return r
}

func (r *Resampler) SampleRate() int { return r.dstRate }
func (r *Resampler) Channels() int   { return r.channels }
func (r *Resampler) BufSize() int    { return r.src.BufSize() }

func (r *Resampler) Close() error {
	if err := r.src.Close(); err != nil {
		return fmt.Errorf("resampler: %w", err)
	}
	return nil
}

// next copies the next source frame into dst. It reports false once the
// source is exhausted.
func (r *Resampler) next(dst []float32) (bool, error) {
	for r.off >= r.blockN {
		if r.srcDone {
			return false, nil
		}

		n, err := r.src.ReadSamples(r.block)
		r.off = 0
		r.blockN = n - n%r.channels

		switch {
		case errors.Is(err, io.EOF), err == nil && n == 0:
			r.srcDone = true
		case err != nil:
			return false, fmt.Errorf("resampler: %w", err)
		}
	}

	copy(dst, r.block[r.off:r.off+r.channels])
	r.off += r.channels

	if r.lowpass {
		for c, x := range dst {
			r.state[c] = r.alpha*x + (1-r.alpha)*r.state[c]
			dst[c] = r.state[c]
		}
	}
	return true, nil
}

// prime loads the first frame as both window[0] and window[1] so the
// output starts exactly on it, then fills the look-ahead.
func (r *Resampler) prime() error {
	r.primed = true

	// the filter starts settled on the unfiltered first frame
	lowpass := r.lowpass
	r.lowpass = false
	ok, err := r.next(r.window[1])
	r.lowpass = lowpass
	if err != nil || !ok {
		return err
	}
	copy(r.state, r.window[1])
	copy(r.window[0], r.window[1])
	r.have[0], r.have[1] = true, true

	for i := 2; i < 4; i++ {
		if r.have[i], err = r.next(r.window[i]); err != nil {
			return err
		}
	}
	return nil
}

// advance shifts the window one source frame forward.
func (r *Resampler) advance() error {
	first := r.window[0]
	copy(r.window[:], r.window[1:])
	copy(r.have[:], r.have[1:])
	r.window[3] = first

	var err error
	r.have[3], err = r.next(r.window[3])
	return err
}

// ReadSamples fills dst with interleaved frames at the target rate. The
// last source frame is held for interpolation past the end.
func (r *Resampler) ReadSamples(dst []float32) (int, error) {
	if len(dst)%r.channels != 0 {
		return 0, ErrInvalidDstSize
	}
	if !r.primed {
		if err := r.prime(); err != nil {
			return 0, err
		}
	}

	frames := len(dst) / r.channels
	written := 0

	for written < frames {
		for r.pos >= 1 {
			r.pos--
			if err := r.advance(); err != nil {
				return written * r.channels, err
			}
		}
		if !r.have[1] {
			return written * r.channels, io.EOF
		}

		y1 := r.window[1]
		y0, y2, y3 := y1, y1, y1
		if r.have[0] {
			y0 = r.window[0]
		}
		if r.have[2] {
			y2 = r.window[2]
			y3 = y2
		}
		if r.have[3] {
			y3 = r.window[3]
		}

		t := float32(r.pos)
		out := dst[written*r.channels : (written+1)*r.channels]
		for c := range out {
			out[c] = utils.CubicInterpolate(y0[c], y1[c], y2[c], y3[c], t)
		}

		written++
		r.pos += r.ratio
	}

	return written * r.channels, nil
}
