// SPDX-License-Identifier: EPL-2.0

package player

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"sync/atomic"

	"github.com/ik5/modpbx/decoder"
	"github.com/ik5/modpbx/render"
	"github.com/ik5/modpbx/sink"
)

// ModPlayer is the control surface shared by every front end.
type ModPlayer interface {
	Load(data []byte) error
	LoadNamed(name string, data []byte) error
	LoadFromPath(path string) error
	Release() error

	Play() error
	Pause() error
	Stop() error
	Seek(seconds float64) error

	SetRepeatCount(n int) error
	SetMasterGain(millibel int) error
	SetStereoSeparation(percent int) error
	SetPlaybackSpeed(factor float64) error
	PlaybackSpeed() float64
	SetPitch(factor float64) error
	Pitch() float64

	State() State
	IsPlaying() bool
	PositionSeconds() float64
	DurationSeconds() float64
	Metadata() Metadata
	CurrentOrder() int
	CurrentPattern() int
	CurrentRow() int
	NumChannels() int

	StateChanges() *Observable[State]
	PositionChanges() *Observable[float64]
}

// Player implements ModPlayer over a renderer and a sink.
type Player struct {
	cfg Config
	log *slog.Logger
	r   *render.Renderer

	// mtx serialises the control surface. The audio path never takes it.
	mtx      sync.Mutex
	out      sink.Sink
	meta     Metadata
	repeat   int
	gain     int
	sep      int
	released bool

	// gen identifies the current play session so late end events from an
	// earlier one are ignored.
	gen atomic.Uint64

	posMtx sync.Mutex
	live   bool

	state    *Observable[State]
	position *Observable[float64]
}

var _ ModPlayer = (*Player)(nil)

func New(cfg Config) *Player {
	cfg = cfg.withDefaults()

	r := render.New(cfg.SampleRate)
	r.SetHeuristic(!cfg.DisableEndHeuristic)

	return &Player{
		cfg:      cfg,
		log:      cfg.Logger.With(slog.String("component", "player")),
		r:        r,
		sep:      100,
		state:    newObservable(State{Status: Idle}),
		position: newObservable(0.0),
	}
}

func (p *Player) Load(data []byte) error {
	return p.LoadNamed("", data)
}

// LoadNamed loads data, choosing the backend from name's extension.
func (p *Player) LoadNamed(name string, data []byte) error {
	p.mtx.Lock()
	defer p.mtx.Unlock()

	return p.loadLocked(name, data, nil)
}

func (p *Player) LoadFromPath(path string) error {
	if p.cfg.DisablePathLoading {
		return fmt.Errorf("load %q: %w", path, ErrUnsupportedOperation)
	}

	data, readErr := os.ReadFile(path)

	p.mtx.Lock()
	defer p.mtx.Unlock()

	return p.loadLocked(filepath.Base(path), data, readErr)
}

func (p *Player) loadLocked(name string, data []byte, readErr error) error {
	if p.released {
		return fmt.Errorf("load: player released: %w", ErrInvalidOperation)
	}

	p.log.Info("loading module", slog.String("name", name), slog.Int("bytes", len(data)))
	p.setState(State{Status: Loading})
	p.unloadLocked()

	err := readErr
	if err == nil && len(data) == 0 {
		err = errors.New("empty module data")
	}

	var h decoder.Handle
	if err == nil {
		h, err = p.cfg.Backends.Open(name, data)
	}
	if err != nil {
		if errors.Is(err, decoder.ErrLibraryUnavailable) {
			err = fmt.Errorf("%w: %w", ErrNativeLibrary, err)
		}
		err = fmt.Errorf("%w: %w", ErrLoadFailed, err)

		p.log.Error("failed to load module", slog.String("name", name), slog.Any("error", err))
		p.setState(State{Status: Error, Message: "Failed to load module", Err: err})
		return err
	}

	p.r.Attach(h)
	if err := p.applySettingsLocked(); err != nil {
		p.log.Warn("module rejected playback settings", slog.Any("error", err))
	}

	p.meta = readMetadata(h)
	p.log.Info("module loaded",
		slog.String("title", p.meta.Title),
		slog.String("type", p.meta.Type),
		slog.Float64("duration", p.meta.DurationSeconds))

	meta := p.meta
	p.publishPosition(0, false)
	p.setState(State{Status: Loaded, Metadata: &meta})
	return nil
}

// unloadLocked stops the sink, then detaches and closes the handle.
func (p *Player) unloadLocked() {
	p.setLive(false)
	if p.out != nil {
		if err := p.out.Stop(); err != nil {
			p.log.Warn("stopping audio output", slog.Any("error", err))
		}
	}
	if prev := p.r.Detach(); prev != nil {
		if err := prev.Close(); err != nil {
			p.log.Warn("closing module", slog.Any("error", err))
		}
	}
	p.meta = Metadata{}
	p.publishPosition(0, false)
}

// applySettingsLocked carries repeat, gain, separation and the speed
// factors over to a freshly attached handle.
func (p *Player) applySettingsLocked() error {
	err := p.r.With(func(h decoder.Handle) error {
		return errors.Join(
			h.SetRepeatCount(p.repeat),
			h.SetRenderParam(decoder.MasterGainMillibel, p.gain),
			h.SetRenderParam(decoder.StereoSeparationPercent, p.sep),
		)
	})
	return errors.Join(err, p.r.Apply())
}

// Release stops playback and frees the output and the module. The player
// cannot be used afterwards; calling Release again is a no-op.
func (p *Player) Release() error {
	p.mtx.Lock()
	defer p.mtx.Unlock()

	if p.released {
		return nil
	}
	p.log.Info("releasing player")

	p.setLive(false)
	p.gen.Add(1)

	var errs []error
	if p.out != nil {
		errs = append(errs, p.out.Close())
		p.out = nil
	}
	if h := p.r.Detach(); h != nil {
		errs = append(errs, h.Close())
	}

	p.released = true
	p.meta = Metadata{}
	p.publishPosition(0, false)
	p.setState(State{Status: Idle})

	return errors.Join(errs...)
}

func (p *Player) Play() error {
	p.mtx.Lock()
	defer p.mtx.Unlock()

	st := p.state.Value().Status
	if p.released || !st.CanPlay() || !p.r.Loaded() {
		p.log.Warn("cannot play in current state", slog.String("state", st.String()))
		return fmt.Errorf("play from %s: %w", st, ErrInvalidOperation)
	}

	if p.out == nil {
		out, err := p.cfg.Sink(p.r, p.events())
		if err != nil {
			return p.failLocked("Failed to start playback", fmt.Errorf("%w: %w", ErrInitializationFailed, err))
		}
		p.out = out
	}

	p.gen.Add(1)
	p.setState(State{Status: Playing})
	p.setLive(true)

	if err := p.out.Start(); err != nil {
		p.setLive(false)
		return p.failLocked("Failed to start playback", fmt.Errorf("%w: %w", ErrInitializationFailed, err))
	}

	p.log.Info("playback started", slog.Float64("position", p.r.Position()))
	return nil
}

// Pause suspends playback. Outside Playing it only logs a warning.
func (p *Player) Pause() error {
	p.mtx.Lock()
	defer p.mtx.Unlock()

	if st := p.state.Value().Status; st != Playing {
		p.log.Warn("cannot pause: not currently playing", slog.String("state", st.String()))
		return nil
	}

	p.setLive(false)
	err := p.out.Pause()
	p.publishPosition(p.r.Position(), false)
	p.setState(State{Status: Paused})

	if err != nil {
		return fmt.Errorf("pause: %w", err)
	}
	return nil
}

// Stop halts playback and rewinds to the start from any state.
func (p *Player) Stop() error {
	p.mtx.Lock()
	defer p.mtx.Unlock()

	if p.released {
		return fmt.Errorf("stop: player released: %w", ErrInvalidOperation)
	}

	return p.stopLocked()
}

func (p *Player) stopLocked() error {
	p.setLive(false)

	var err error
	if p.out != nil {
		err = p.out.Stop()
	}
	if p.r.Loaded() {
		if _, serr := p.r.Seek(0); serr != nil {
			err = errors.Join(err, serr)
		}
	}

	p.publishPosition(0, false)
	p.setState(State{Status: Stopped})

	if err != nil {
		return fmt.Errorf("stop: %w", err)
	}
	return nil
}

func (p *Player) Seek(seconds float64) error {
	p.mtx.Lock()
	defer p.mtx.Unlock()

	pos, err := p.r.Seek(seconds)
	if err != nil {
		return fmt.Errorf("seek: %w: %w", ErrInvalidOperation, err)
	}

	p.publishPosition(pos, false)
	return nil
}

// SetRepeatCount sets how often the module repeats: -1 forever, 0 once.
// The setting is kept for modules loaded later.
func (p *Player) SetRepeatCount(n int) error {
	p.mtx.Lock()
	defer p.mtx.Unlock()

	p.repeat = max(decoder.RepeatForever, n)
	return p.withHandleLocked(func(h decoder.Handle) error {
		return h.SetRepeatCount(p.repeat)
	})
}

func (p *Player) SetMasterGain(millibel int) error {
	p.mtx.Lock()
	defer p.mtx.Unlock()

	p.gain = millibel
	return p.withHandleLocked(func(h decoder.Handle) error {
		return h.SetRenderParam(decoder.MasterGainMillibel, millibel)
	})
}

// SetStereoSeparation sets the separation in percent, clamped to [0, 200].
func (p *Player) SetStereoSeparation(percent int) error {
	p.mtx.Lock()
	defer p.mtx.Unlock()

	p.sep = max(0, min(percent, 200))
	return p.withHandleLocked(func(h decoder.Handle) error {
		return h.SetRenderParam(decoder.StereoSeparationPercent, p.sep)
	})
}

func (p *Player) withHandleLocked(fn func(h decoder.Handle) error) error {
	if !p.r.Loaded() {
		return nil
	}
	return p.r.With(fn)
}

// SetPlaybackSpeed sets the tempo factor, clamped to [0.25, 2.0].
func (p *Player) SetPlaybackSpeed(factor float64) error {
	v := p.r.SetTempoFactor(factor)
	p.log.Debug("playback speed set", slog.Float64("factor", v))

	return p.applyFactors()
}

func (p *Player) PlaybackSpeed() float64 { return p.r.TempoFactor() }

// SetPitch sets the pitch factor, clamped to [0.25, 2.0].
func (p *Player) SetPitch(factor float64) error {
	v := p.r.SetPitchFactor(factor)
	p.log.Debug("pitch set", slog.Float64("factor", v))

	return p.applyFactors()
}

func (p *Player) Pitch() float64 { return p.r.PitchFactor() }

func (p *Player) applyFactors() error {
	if err := p.r.Apply(); err != nil {
		return fmt.Errorf("apply speed factors: %w", err)
	}
	return nil
}

func (p *Player) State() State { return p.state.Value() }

func (p *Player) IsPlaying() bool { return p.state.Value().Status == Playing }

func (p *Player) PositionSeconds() float64 {
	if !p.r.Loaded() {
		return 0
	}
	return p.r.Position()
}

func (p *Player) DurationSeconds() float64 {
	if !p.r.Loaded() {
		return 0
	}
	return p.r.Duration()
}

// Metadata returns the snapshot taken at load, or the zero value.
func (p *Player) Metadata() Metadata {
	p.mtx.Lock()
	defer p.mtx.Unlock()

	return p.meta
}

func (p *Player) CurrentOrder() int   { return p.r.CurrentOrder() }
func (p *Player) CurrentPattern() int { return p.r.CurrentPattern() }
func (p *Player) CurrentRow() int     { return p.r.CurrentRow() }

func (p *Player) NumChannels() int {
	p.mtx.Lock()
	defer p.mtx.Unlock()

	return p.meta.NumChannels
}

func (p *Player) StateChanges() *Observable[State]      { return p.state }
func (p *Player) PositionChanges() *Observable[float64] { return p.position }

// events are called from the sink goroutines, which Stop waits on while
// p.mtx is held, so state changes are handed to a new goroutine.
func (p *Player) events() sink.Events {
	return sink.Events{
		Logger:     p.log,
		OnPosition: func(seconds float64) { p.publishPosition(seconds, true) },
		OnEnd: func() {
			gen := p.gen.Load()
			go p.finish(gen, nil)
		},
		OnError: func(err error) {
			gen := p.gen.Load()
			go p.finish(gen, err)
		},
	}
}

// finish ends play session gen, rewinding on a normal end.
func (p *Player) finish(gen uint64, cause error) {
	p.mtx.Lock()
	defer p.mtx.Unlock()

	if gen != p.gen.Load() || p.state.Value().Status != Playing {
		return
	}

	if cause != nil {
		p.setLive(false)
		if p.out != nil {
			_ = p.out.Stop()
		}
		p.log.Error("playback failed", slog.Any("error", cause))
		p.setState(State{Status: Error, Message: "Playback failed", Err: cause})
		return
	}

	p.log.Info("module playback completed")
	if err := p.stopLocked(); err != nil {
		p.log.Warn("stopping after end of module", slog.Any("error", err))
	}
}

func (p *Player) failLocked(message string, err error) error {
	p.log.Error(message, slog.Any("error", err))
	p.setState(State{Status: Error, Message: message, Err: err})
	return err
}

func (p *Player) setState(st State) {
	cur := p.state.Value().Status
	if !Allowed(cur, st.Status) {
		p.log.Warn("rejected state transition",
			slog.String("from", cur.String()), slog.String("to", st.Status.String()))
		return
	}

	p.log.Debug("state changed", slog.String("from", cur.String()), slog.String("to", st.Status.String()))
	p.state.set(st)
}

func (p *Player) setLive(on bool) {
	p.posMtx.Lock()
	defer p.posMtx.Unlock()

	p.live = on
}

// publishPosition updates the position observable. Values coming from
// the sink are dropped unless a play session is live, and are re-read
// under posMtx so a report taken before a seek cannot land after it.
func (p *Player) publishPosition(seconds float64, fromSink bool) {
	p.posMtx.Lock()
	defer p.posMtx.Unlock()

	if fromSink {
		if !p.live {
			return
		}
		seconds = p.r.Position()
	}
	p.position.set(seconds)
}
