// SPDX-License-Identifier: EPL-2.0

package analysis

import (
	"fmt"
	"io"
	"math"
	"math/cmplx"

	"github.com/mjibson/go-dsp/fft"

	"github.com/ik5/modpbx/audio"
)

// Floor is the level reported for digital silence.
const Floor = -120.0

// lowest band edge in Hz
const minFreq = 20.0

// Levels describes one analysed block.
type Levels struct {
	PeakDB float64
	RMSDB  float64
	// Bands holds the strongest bin of each band in dBFS, lowest first.
	Bands []float64
}

// Meter analyses fixed-size blocks of mono audio.
type Meter struct {
	rate   int
	size   int
	window []float64
	buf    []float64
	mono   []float32
	edges  []int
}

// NewMeter creates a meter with a Hann window of size samples split into
// bands log-spaced bands between 20 Hz and Nyquist.
func NewMeter(sampleRate, size, bands int) (*Meter, error) {
	if sampleRate <= 0 {
		return nil, ErrInvalidRate
	}
	if size < 64 || size&(size-1) != 0 {
		return nil, ErrInvalidSize
	}
	if bands < 1 || bands >= size/2 {
		return nil, ErrInvalidBands
	}

	window := make([]float64, size)
	for i := range window {
		window[i] = 0.5 - 0.5*math.Cos(2*math.Pi*float64(i)/float64(size-1))
	}

	return &Meter{
		rate:   sampleRate,
		size:   size,
		window: window,
		buf:    make([]float64, size),
		mono:   make([]float32, size),
		edges:  bandEdges(sampleRate, size, bands),
	}, nil
}

// Size is the block length in samples.
func (m *Meter) Size() int { return m.size }

// bandEdges returns bands+1 increasing bin indexes in [1, size/2].
func bandEdges(rate, size, bands int) []int {
	nyquist := float64(rate) / 2
	bins := size / 2
	lo := math.Min(minFreq, nyquist/2)

	edges := make([]int, bands+1)
	edges[0] = 1
	for i := 1; i <= bands; i++ {
		f := lo * math.Pow(nyquist/lo, float64(i)/float64(bands))
		bin := int(math.Round(f * float64(size) / float64(rate)))
		// every band needs at least one bin, leaving room for the rest
		edges[i] = min(max(bin, edges[i-1]+1), bins-(bands-i))
	}
	edges[bands] = bins

	return edges
}

// Analyze measures mono. Blocks shorter than Size are zero padded for
// the spectrum; longer ones only use the first Size samples there.
func (m *Meter) Analyze(mono []float32) Levels {
	var peak, sum float64
	for _, v := range mono {
		a := math.Abs(float64(v))
		peak = max(peak, a)
		sum += a * a
	}

	l := Levels{PeakDB: Floor, RMSDB: Floor, Bands: make([]float64, len(m.edges)-1)}
	if len(mono) > 0 {
		l.PeakDB = toDB(peak)
		l.RMSDB = toDB(math.Sqrt(sum / float64(len(mono))))
	}

	clear(m.buf)
	for i, v := range mono[:min(len(mono), m.size)] {
		m.buf[i] = float64(v) * m.window[i]
	}
	spectrum := fft.FFTReal(m.buf)

	// a full-scale sine through a Hann window peaks at size/4
	scale := 4 / float64(m.size)
	for b := range l.Bands {
		var best float64
		for k := m.edges[b]; k < m.edges[b+1]; k++ {
			best = max(best, cmplx.Abs(spectrum[k])*scale)
		}
		l.Bands[b] = toDB(best)
	}

	return l
}

// Run downmixes src, analyses it block by block and calls fn with each
// result until src ends or fn returns false.
func (m *Meter) Run(src audio.Source, fn func(Levels) bool) error {
	mono := audio.NewMonoMixer(src)

	for {
		n, err := mono.ReadSamples(m.mono)
		if n > 0 && !fn(m.Analyze(m.mono[:n])) {
			return nil
		}
		if err == io.EOF {
			return nil
		}
		if err != nil {
			return fmt.Errorf("analyse: %w", err)
		}
		if n == 0 {
			return nil
		}
	}
}

// Loudest returns the index of the strongest band, or -1 for none.
func (l Levels) Loudest() int {
	if len(l.Bands) == 0 {
		return -1
	}
	best := 0
	for i, v := range l.Bands {
		if v > l.Bands[best] {
			best = i
		}
	}
	return best
}

func toDB(v float64) float64 {
	if v <= 0 {
		return Floor
	}
	return max(Floor, 20*math.Log10(v))
}
