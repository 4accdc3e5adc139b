// SPDX-License-Identifier: EPL-2.0

package sink

import (
	"log/slog"
	"time"

	"github.com/ik5/modpbx/render"
)

// Period sizes used by the player front ends.
const (
	DesktopFrames  = 2048
	CallbackFrames = 1024
	BrowserFrames  = 4096 // also the offline render period
)

// PositionInterval bounds how often OnPosition fires.
const PositionInterval = 100 * time.Millisecond

// Sink moves rendered periods to an audio output.
type Sink interface {
	// Start begins or resumes delivering audio.
	Start() error
	// Pause stops delivering audio and keeps the device.
	Pause() error
	// Stop stops delivering audio and drops anything buffered. No render
	// call is in flight once it returns.
	Stop() error
	// Close stops and releases the device.
	Close() error
}

// Events are the notifications a sink raises while playing.
type Events struct {
	OnPosition func(seconds float64)
	OnEnd      func()
	OnError    func(err error)

	// Logger receives sink diagnostics. Nil means slog.Default().
	Logger *slog.Logger
}

func (e Events) logger() *slog.Logger {
	if e.Logger != nil {
		return e.Logger
	}
	return slog.Default()
}

func (e Events) position(seconds float64) {
	if e.OnPosition != nil {
		e.OnPosition(seconds)
	}
}

func (e Events) end() {
	if e.OnEnd != nil {
		e.OnEnd()
	}
}

func (e Events) error(err error) {
	if e.OnError != nil {
		e.OnError(err)
	}
}

// Factory builds a sink for a renderer.
type Factory func(r *render.Renderer, ev Events) (Sink, error)
