// SPDX-License-Identifier: EPL-2.0

package sink

import (
	"context"
	"io"
	"log/slog"
	"runtime"
	"sync"
	"sync/atomic"
	"time"

	"github.com/ik5/modpbx/render"
)

type failure struct{ err error }

// Callback is the real-time side of the push model. An output calls Read
// (float32 little-endian stereo) or Fill whenever it needs audio.
type Callback struct {
	r       *render.Renderer
	playing atomic.Bool
	floats  []float32
	busy    atomic.Uint64
	// Fill calls in progress
	active atomic.Int32

	// set by the callback, consumed by the dispatcher
	wake   chan struct{}
	moved  atomic.Bool
	ended  atomic.Bool
	failed atomic.Pointer[failure]
}

var _ io.Reader = (*Callback)(nil)

// NewCallback creates a callback rendering at most frames per chunk.
func NewCallback(r *render.Renderer, frames int) (*Callback, error) {
	if frames <= 0 {
		return nil, ErrInvalidFrames
	}

	return &Callback{
		r:      r,
		floats: make([]float32, frames*render.Channels),
		wake:   make(chan struct{}, 1),
	}, nil
}

// SetPlaying switches between rendering and silence.
func (c *Callback) SetPlaying(on bool) { c.playing.Store(on) }

// Playing reports whether the callback renders audio.
func (c *Callback) Playing() bool { return c.playing.Load() }

// Contended counts periods that were silenced because the control side held
// the renderer.
func (c *Callback) Contended() uint64 { return c.busy.Load() }

// Fill renders into dst and returns the number of frames rendered. When not
// playing dst is silenced and 0 is returned.
func (c *Callback) Fill(dst []float32) int {
	dst = dst[:len(dst)-len(dst)%render.Channels]
	if len(dst) == 0 {
		return 0
	}

	// counted before the playing check so halt cannot miss this call
	c.active.Add(1)
	defer c.active.Add(-1)

	if !c.playing.Load() {
		clear(dst)
		return 0
	}

	res, ok, err := c.r.TryRender(dst)
	switch {
	case err != nil:
		c.playing.Store(false)
		c.failed.Store(&failure{err: err})
		c.notify()
		return 0
	case !ok:
		c.busy.Add(1)
		return 0
	case res.EndOfStream || res.Frames == 0:
		c.playing.Store(false)
		c.ended.Store(true)
	}

	c.moved.Store(true)
	c.notify()
	return res.Frames
}

// Read implements io.Reader for byte-oriented outputs. It always fills p
// with whole frames, using silence when nothing is rendered.
func (c *Callback) Read(p []byte) (int, error) {
	const frameBytes = render.Channels * 4

	n := len(p) - len(p)%frameBytes
	for off := 0; off < n; {
		samples := min((n-off)/4, len(c.floats))
		buf := c.floats[:samples]
		c.Fill(buf)
		// buf and p are sized to match
		w, _ := render.ToFloat32LE(p[off:], buf)
		off += w
	}

	return n, nil
}

// halt stops rendering and waits for a Fill that already passed the
// playing check. Outputs may call Fill outside their own locks, so pausing
// the output alone does not guarantee this.
func (c *Callback) halt() {
	c.playing.Store(false)
	for c.active.Load() > 0 {
		runtime.Gosched()
	}
}

// notify wakes the dispatcher without blocking. Pending flags coalesce.
func (c *Callback) notify() {
	select {
	case c.wake <- struct{}{}:
	default:
	}
}

// Output is the device half of the push model.
type Output interface {
	Play()
	Pause()
}

// OpenFunc creates an output pulling from r.
type OpenFunc func(r io.Reader) (Output, error)

// PushSink drives an Output that pulls from a Callback.
type PushSink struct {
	cb       *Callback
	r        *render.Renderer
	ev       Events
	log      *slog.Logger
	open     OpenFunc
	interval time.Duration

	mtx    sync.Mutex
	out    Output
	cancel context.CancelFunc
	done   chan struct{}
	closed bool
}

var _ Sink = (*PushSink)(nil)

// NewPush creates a push sink. open is called on Start whenever no output
// is active.
func NewPush(r *render.Renderer, frames int, ev Events, open OpenFunc) (*PushSink, error) {
	cb, err := NewCallback(r, frames)
	if err != nil {
		return nil, err
	}

	s := &PushSink{
		cb:       cb,
		r:        r,
		ev:       ev,
		log:      ev.logger(),
		open:     open,
		interval: PositionInterval,
	}

	ctx, cancel := context.WithCancel(context.Background())
	s.cancel = cancel
	s.done = make(chan struct{})
	go s.dispatch(ctx, s.done)

	return s, nil
}

// Callback exposes the real-time reader, for outputs wired by hand.
func (s *PushSink) Callback() *Callback { return s.cb }

func (s *PushSink) Start() error {
	s.mtx.Lock()
	defer s.mtx.Unlock()

	if s.closed {
		return ErrClosed
	}

	if s.out == nil {
		out, err := s.open(s.cb)
		if err != nil {
			return err
		}
		s.out = out
	}

	// an end flagged by the previous session must not stop this one
	s.cb.ended.Store(false)
	s.cb.SetPlaying(true)
	s.out.Play()
	return nil
}

func (s *PushSink) Pause() error {
	s.mtx.Lock()
	defer s.mtx.Unlock()

	s.cb.halt()
	if s.out != nil {
		s.out.Pause()
	}
	return nil
}

// Stop pauses and drops the output so buffered audio is not replayed by
// the next Start.
func (s *PushSink) Stop() error {
	s.mtx.Lock()
	defer s.mtx.Unlock()

	s.cb.halt()
	if s.out != nil {
		s.out.Pause()
		if c, ok := s.out.(io.Closer); ok {
			_ = c.Close()
		}
		s.out = nil
	}

	if n := s.cb.busy.Swap(0); n > 0 {
		s.log.Debug("periods silenced while the renderer was busy", slog.Uint64("periods", n))
	}
	return nil
}

func (s *PushSink) Close() error {
	if err := s.Stop(); err != nil {
		return err
	}

	s.mtx.Lock()
	defer s.mtx.Unlock()

	if s.closed {
		return nil
	}
	s.closed = true
	s.cancel()
	<-s.done

	return nil
}

// dispatch turns callback events into Events calls outside the real-time path.
func (s *PushSink) dispatch(ctx context.Context, done chan struct{}) {
	defer close(done)

	var last time.Time

	for {
		select {
		case <-ctx.Done():
			return
		case <-s.cb.wake:
			if f := s.cb.failed.Swap(nil); f != nil {
				s.ev.error(f.err)
			}
			if s.cb.moved.Swap(false) {
				if now := time.Now(); now.Sub(last) >= s.interval {
					s.ev.position(s.r.Position())
					last = now
				}
			}
			if s.cb.ended.Swap(false) {
				s.ev.end()
			}
		}
	}
}
