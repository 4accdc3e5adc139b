// SPDX-License-Identifier: EPL-2.0

package player

import (
	"fmt"
	"log/slog"
	"math"

	"github.com/ik5/modpbx/decoder"
)

// MaxGainDB bounds SetMasterGainDB in both directions.
const MaxGainDB = 10.0

// Controller adds the convenience actions front ends bind to buttons and
// sliders.
type Controller struct {
	p   ModPlayer
	log *slog.Logger
}

func NewController(p ModPlayer, log *slog.Logger) *Controller {
	if log == nil {
		log = slog.Default()
	}
	return &Controller{p: p, log: log}
}

// Player returns the controlled player.
func (c *Controller) Player() ModPlayer { return c.p }

// TogglePlayPause pauses while playing and plays from Loaded, Paused or
// Stopped.
func (c *Controller) TogglePlayPause() error {
	switch st := c.p.State().Status; {
	case st == Playing:
		return c.p.Pause()
	case st.CanPlay():
		return c.p.Play()
	default:
		c.log.Warn("cannot toggle play/pause in current state", slog.String("state", st.String()))
		return fmt.Errorf("toggle from %s: %w", st, ErrInvalidOperation)
	}
}

// SetRepeatMode repeats forever when on and plays once otherwise.
func (c *Controller) SetRepeatMode(on bool) error {
	n := decoder.RepeatNone
	if on {
		n = decoder.RepeatForever
	}
	return c.p.SetRepeatCount(n)
}

// SetMasterGainDB clamps db to ±MaxGainDB and applies it in millibel.
// It returns the applied millibel value.
func (c *Controller) SetMasterGainDB(db float64) (int, error) {
	if math.IsNaN(db) {
		db = 0
	}
	db = max(-MaxGainDB, min(db, MaxGainDB))

	mb := int(db * 100)
	return mb, c.p.SetMasterGain(mb)
}

// PlaybackInfo describes the pattern position for a status line.
func (c *Controller) PlaybackInfo() string {
	switch c.p.State().Status {
	case Idle, Loading:
		return "No module loaded"
	}
	return fmt.Sprintf("Order: %d | Pattern: %d | Row: %d",
		c.p.CurrentOrder(), c.p.CurrentPattern(), c.p.CurrentRow())
}

// FormatTime renders seconds as m:ss.
func FormatTime(seconds float64) string {
	if math.IsNaN(seconds) || seconds < 0 {
		seconds = 0
	}
	total := int(math.Round(seconds))
	return fmt.Sprintf("%d:%02d", total/60, total%60)
}
