// SPDX-License-Identifier: EPL-2.0

package sink

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"sync"
	"time"

	"github.com/ik5/modpbx/render"
)

// Device is a blocking PCM16 output. Write blocks until the device has
// room for the data.
type Device interface {
	io.Writer
}

// Flusher is implemented by devices that can drop or push out buffered audio.
type Flusher interface {
	Flush() error
}

// PullSink renders and writes periods from its own goroutine.
type PullSink struct {
	r        *render.Renderer
	dev      Device
	ev       Events
	log      *slog.Logger
	interval time.Duration

	floats []float32
	pcm    []byte

	mtx    sync.Mutex
	cancel context.CancelFunc
	done   chan struct{}
	closed bool
}

var _ Sink = (*PullSink)(nil)

// NewPull creates a pull sink writing frames-sized periods to dev.
func NewPull(r *render.Renderer, dev Device, frames int, ev Events) (*PullSink, error) {
	if frames <= 0 {
		return nil, ErrInvalidFrames
	}

	return &PullSink{
		r:        r,
		dev:      dev,
		ev:       ev,
		log:      ev.logger(),
		interval: PositionInterval,
		floats:   make([]float32, frames*render.Channels),
		pcm:      make([]byte, frames*render.Channels*2),
	}, nil
}

// PullFactory returns a Factory for pull sinks over dev.
func PullFactory(dev Device, frames int) Factory {
	return func(r *render.Renderer, ev Events) (Sink, error) {
		return NewPull(r, dev, frames, ev)
	}
}

// Running reports whether the render goroutine is alive.
func (s *PullSink) Running() bool {
	s.mtx.Lock()
	defer s.mtx.Unlock()

	if s.done == nil {
		return false
	}
	select {
	case <-s.done:
		return false
	default:
		return true
	}
}

func (s *PullSink) Start() error {
	s.mtx.Lock()
	defer s.mtx.Unlock()

	if s.closed {
		return ErrClosed
	}

	if s.done != nil {
		select {
		case <-s.done:
			// previous loop ended by itself
		default:
			return nil
		}
	}

	ctx, cancel := context.WithCancel(context.Background())
	s.cancel = cancel
	s.done = make(chan struct{})
	go s.loop(ctx, s.done)

	return nil
}

func (s *PullSink) Pause() error {
	s.mtx.Lock()
	defer s.mtx.Unlock()

	s.stopLocked()
	return nil
}

func (s *PullSink) Stop() error {
	s.mtx.Lock()
	defer s.mtx.Unlock()

	s.stopLocked()

	if f, ok := s.dev.(Flusher); ok {
		if err := f.Flush(); err != nil {
			return fmt.Errorf("flush: %w", err)
		}
	}
	return nil
}

func (s *PullSink) Close() error {
	s.mtx.Lock()
	defer s.mtx.Unlock()

	if s.closed {
		return nil
	}
	s.stopLocked()
	s.closed = true

	if c, ok := s.dev.(io.Closer); ok {
		if err := c.Close(); err != nil {
			return fmt.Errorf("close device: %w", err)
		}
	}
	return nil
}

// stopLocked cancels the loop and waits for it to leave the renderer.
func (s *PullSink) stopLocked() {
	if s.cancel == nil {
		return
	}

	s.cancel()
	<-s.done
	s.cancel = nil
	s.done = nil
}

func (s *PullSink) loop(ctx context.Context, done chan struct{}) {
	defer close(done)

	s.log.Debug("audio loop started", slog.Int("frames", len(s.floats)/render.Channels))
	defer s.log.Debug("audio loop ended")

	var last time.Time

	for {
		if ctx.Err() != nil {
			return
		}

		res, err := s.r.Render(s.floats)
		if err != nil {
			s.ev.error(err)
			return
		}

		if res.Frames > 0 {
			n, err := render.ToPCM16(s.pcm, s.floats[:res.Frames*render.Channels])
			if err != nil {
				s.ev.error(err)
				return
			}
			if _, err := s.dev.Write(s.pcm[:n]); err != nil {
				s.ev.error(fmt.Errorf("device write: %w", err))
				return
			}
		}

		// zero frames without end of stream means nothing is attached
		if res.EndOfStream || res.Frames == 0 {
			s.log.Debug("no more audio data", slog.Bool("end_of_stream", res.EndOfStream))
			s.ev.end()
			return
		}

		if now := time.Now(); now.Sub(last) >= s.interval {
			s.ev.position(s.r.Position())
			last = now
		}
	}
}
