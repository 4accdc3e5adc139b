// SPDX-License-Identifier: EPL-2.0

package render

import (
	"errors"
	"fmt"
	"math"
	"sync"
	"sync/atomic"

	"github.com/ik5/modpbx/decoder"
)

const (
	DefaultSampleRate = 48000
	Channels          = 2

	// EndEpsilon is how close to the duration a silent period must be to
	// count as the end of the module.
	EndEpsilon = 0.1

	MinFactor = 0.25
	MaxFactor = 2.0
)

// Result describes one rendered period.
type Result struct {
	// Frames written by the decoder. The rest of the buffer is silence.
	Frames int
	// EndOfStream is set once the module has finished.
	EndOfStream bool
}

// Renderer renders periods from the attached handle.
type Renderer struct {
	mtx    sync.Mutex
	handle decoder.Handle

	sampleRate int
	heuristic  atomic.Bool
	loaded     atomic.Bool

	tempo        atomicFloat
	pitch        atomicFloat
	appliedTempo float64
	appliedPitch float64

	position atomicFloat
	duration atomicFloat
	order    atomic.Int32
	pattern  atomic.Int32
	row      atomic.Int32
}

func New(sampleRate int) *Renderer {
	if sampleRate <= 0 {
		sampleRate = DefaultSampleRate
	}

	r := &Renderer{sampleRate: sampleRate}
	r.tempo.Store(1)
	r.pitch.Store(1)
	r.heuristic.Store(true)
	r.refreshLocked()

	return r
}

func (r *Renderer) SampleRate() int { return r.sampleRate }

// SetHeuristic enables or disables the silent-period end-of-stream check.
func (r *Renderer) SetHeuristic(on bool) { r.heuristic.Store(on) }

// Loaded reports whether a handle is attached.
func (r *Renderer) Loaded() bool { return r.loaded.Load() }

// Attach makes h the rendered handle and returns the previous one, which
// the caller now owns and must close.
func (r *Renderer) Attach(h decoder.Handle) decoder.Handle {
	r.mtx.Lock()
	defer r.mtx.Unlock()

	prev := r.handle
	r.handle = h
	r.loaded.Store(h != nil)
	// force the factors onto the new handle before its first period
	r.appliedTempo = math.NaN()
	r.appliedPitch = math.NaN()
	r.refreshLocked()

	return prev
}

// Detach removes the handle without closing it.
func (r *Renderer) Detach() decoder.Handle {
	return r.Attach(nil)
}

// Render fills dst with one period. With no handle attached dst is
// silenced and zero frames are reported without an error.
func (r *Renderer) Render(dst []float32) (Result, error) {
	if len(dst) == 0 || len(dst)%Channels != 0 {
		return Result{}, ErrInvalidBufferSize
	}

	r.mtx.Lock()
	defer r.mtx.Unlock()

	return r.renderLocked(dst)
}

// TryRender is Render for real-time callers. If the handle is busy with a
// control operation, dst is silenced and ok is false.
func (r *Renderer) TryRender(dst []float32) (res Result, ok bool, err error) {
	if len(dst) == 0 || len(dst)%Channels != 0 {
		return Result{}, true, ErrInvalidBufferSize
	}

	if !r.mtx.TryLock() {
		clear(dst)
		return Result{}, false, nil
	}
	defer r.mtx.Unlock()

	res, err = r.renderLocked(dst)
	return res, true, err
}

func (r *Renderer) renderLocked(dst []float32) (Result, error) {
	h := r.handle
	if h == nil {
		clear(dst)
		return Result{}, nil
	}

	// ctl failures must not stop playback; Apply reports them to the control side
	_ = r.applyFactorsLocked()

	want := len(dst) / Channels
	frames, err := h.ReadInterleavedStereo(r.sampleRate, dst)
	if err != nil {
		clear(dst)
		return Result{}, fmt.Errorf("render: %w", err)
	}
	frames = max(0, min(frames, want))

	res := Result{Frames: frames}
	if frames < want {
		clear(dst[frames*Channels:])
		res.EndOfStream = true
	}

	r.refreshLocked()

	if !res.EndOfStream && r.heuristic.Load() && silent(dst) &&
		h.RepeatCount() != decoder.RepeatForever {
		if r.position.Load() >= r.duration.Load()-EndEpsilon {
			res.EndOfStream = true
		}
	}

	return res, nil
}

// Apply pushes pending tempo and pitch factors to the handle now.
func (r *Renderer) Apply() error {
	r.mtx.Lock()
	defer r.mtx.Unlock()

	if r.handle == nil {
		return nil
	}
	return r.applyFactorsLocked()
}

func (r *Renderer) applyFactorsLocked() error {
	var errs []error

	if t := r.tempo.Load(); t != r.appliedTempo {
		r.appliedTempo = t
		if err := r.handle.SetCtlFloat(decoder.CtlTempoFactor, t); err != nil {
			errs = append(errs, err)
		}
	}

	if p := r.pitch.Load(); p != r.appliedPitch {
		r.appliedPitch = p
		if err := r.handle.SetCtlFloat(decoder.CtlPitchFactor, p); err != nil {
			errs = append(errs, err)
		}
	}

	return errors.Join(errs...)
}

// SetTempoFactor stores the tempo factor, clamped to [MinFactor, MaxFactor],
// for the next period and returns the stored value.
func (r *Renderer) SetTempoFactor(f float64) float64 {
	f = ClampFactor(f)
	r.tempo.Store(f)
	return f
}

func (r *Renderer) TempoFactor() float64 { return r.tempo.Load() }

// SetPitchFactor is SetTempoFactor for the pitch factor.
func (r *Renderer) SetPitchFactor(f float64) float64 {
	f = ClampFactor(f)
	r.pitch.Store(f)
	return f
}

func (r *Renderer) PitchFactor() float64 { return r.pitch.Load() }

// Seek moves the decoder to seconds (negative values seek to 0) and
// returns the position reached.
func (r *Renderer) Seek(seconds float64) (float64, error) {
	r.mtx.Lock()
	defer r.mtx.Unlock()

	if r.handle == nil {
		return 0, decoder.ErrNoModule
	}
	if math.IsNaN(seconds) || seconds < 0 {
		seconds = 0
	}

	pos, err := r.handle.SetPosition(seconds)
	r.refreshLocked()
	if err != nil {
		return r.position.Load(), fmt.Errorf("seek: %w", err)
	}
	return pos, nil
}

// With runs fn with exclusive access to the handle.
func (r *Renderer) With(fn func(h decoder.Handle) error) error {
	r.mtx.Lock()
	defer r.mtx.Unlock()

	if r.handle == nil {
		return decoder.ErrNoModule
	}

	err := fn(r.handle)
	r.refreshLocked()
	return err
}

// Position, Duration and the sequencing getters read a snapshot taken
// after the last render, seek or attach. They never block.
func (r *Renderer) Position() float64 { return r.position.Load() }
func (r *Renderer) Duration() float64 { return r.duration.Load() }
func (r *Renderer) CurrentOrder() int { return int(r.order.Load()) }
func (r *Renderer) CurrentPattern() int {
	return int(r.pattern.Load())
}
func (r *Renderer) CurrentRow() int { return int(r.row.Load()) }

func (r *Renderer) refreshLocked() {
	h := r.handle
	if h == nil {
		r.position.Store(0)
		r.duration.Store(0)
		r.order.Store(-1)
		r.pattern.Store(-1)
		r.row.Store(-1)
		return
	}

	r.position.Store(h.Position())
	r.duration.Store(h.Duration())
	r.order.Store(int32(h.CurrentOrder()))
	r.pattern.Store(int32(h.CurrentPattern()))
	r.row.Store(int32(h.CurrentRow()))
}

// ClampFactor limits a tempo or pitch factor to [MinFactor, MaxFactor].
// NaN maps to 1.
func ClampFactor(f float64) float64 {
	if math.IsNaN(f) {
		return 1
	}
	return math.Max(MinFactor, math.Min(MaxFactor, f))
}

func silent(buf []float32) bool {
	for _, v := range buf {
		if v != 0 {
			return false
		}
	}
	return true
}

type atomicFloat struct {
	bits atomic.Uint64
}

func (f *atomicFloat) Load() float64   { return math.Float64frombits(f.bits.Load()) }
func (f *atomicFloat) Store(v float64) { f.bits.Store(math.Float64bits(v)) }
