// SPDX-License-Identifier: EPL-2.0

package player

import (
	"errors"
	"math"
	"testing"

	"github.com/ik5/modpbx/decoder"
)

func TestController_TogglePlayPause(t *testing.T) {
	t.Parallel()

	p, _ := newTestPlayer(t, 600, true)
	c := NewController(p, quiet)

	if err := c.TogglePlayPause(); !errors.Is(err, ErrInvalidOperation) {
		t.Errorf("toggle while idle error = %v, want ErrInvalidOperation", err)
	}

	if err := p.Load(module); err != nil {
		t.Fatal(err)
	}

	steps := []Status{Playing, Paused, Playing, Paused}
	for i, want := range steps {
		if err := c.TogglePlayPause(); err != nil {
			t.Fatalf("toggle #%d error = %v", i+1, err)
		}
		if got := p.State().Status; got != want {
			t.Errorf("after toggle #%d state = %v, want %v", i+1, got, want)
		}
	}
}

func TestController_SetRepeatMode(t *testing.T) {
	t.Parallel()

	p, fb := newTestPlayer(t, 30, false)
	if err := p.Load(module); err != nil {
		t.Fatal(err)
	}
	c := NewController(p, quiet)
	h := fb.Opened()[0]

	if err := c.SetRepeatMode(true); err != nil {
		t.Fatal(err)
	}
	if h.RepeatCount() != decoder.RepeatForever {
		t.Errorf("repeat = %d, want -1", h.RepeatCount())
	}
	if err := c.SetRepeatMode(false); err != nil {
		t.Fatal(err)
	}
	if h.RepeatCount() != decoder.RepeatNone {
		t.Errorf("repeat = %d, want 0", h.RepeatCount())
	}
}

func TestController_SetMasterGainDB(t *testing.T) {
	t.Parallel()

	tests := []struct {
		db   float64
		want int
	}{
		{db: 0, want: 0},
		{db: 3.5, want: 350},
		{db: -6, want: -600},
		{db: 15, want: 1000},
		{db: -12.3, want: -1000},
		{db: math.NaN(), want: 0},
	}

	p, fb := newTestPlayer(t, 30, false)
	if err := p.Load(module); err != nil {
		t.Fatal(err)
	}
	c := NewController(p, quiet)
	h := fb.Opened()[0]

	for _, tt := range tests {
		got, err := c.SetMasterGainDB(tt.db)
		if err != nil {
			t.Fatalf("SetMasterGainDB(%v) error = %v", tt.db, err)
		}
		if got != tt.want {
			t.Errorf("SetMasterGainDB(%v) = %d, want %d", tt.db, got, tt.want)
		}
		if mb, _ := h.RenderParam(decoder.MasterGainMillibel); mb != tt.want {
			t.Errorf("handle gain after %v = %d, want %d", tt.db, mb, tt.want)
		}
	}
}

func TestController_PlaybackInfo(t *testing.T) {
	t.Parallel()

	p, _ := newTestPlayer(t, 120, false)
	c := NewController(p, quiet)

	if got := c.PlaybackInfo(); got != "No module loaded" {
		t.Errorf("PlaybackInfo() idle = %q", got)
	}

	if err := p.Load(module); err != nil {
		t.Fatal(err)
	}
	// 8 rows per second, 64 rows per pattern: 9s is order 1, row 8
	if err := p.Seek(9); err != nil {
		t.Fatal(err)
	}

	want := "Order: 1 | Pattern: 1 | Row: 8"
	if got := c.PlaybackInfo(); got != want {
		t.Errorf("PlaybackInfo() = %q, want %q", got, want)
	}
}

func TestFormatTime(t *testing.T) {
	t.Parallel()

	tests := []struct {
		in   float64
		want string
	}{
		{in: 0, want: "0:00"},
		{in: 5, want: "0:05"},
		{in: 59.4, want: "0:59"},
		{in: 59.6, want: "1:00"},
		{in: 125, want: "2:05"},
		{in: 3600, want: "60:00"},
		{in: -3, want: "0:00"},
		{in: math.NaN(), want: "0:00"},
	}

	for _, tt := range tests {
		if got := FormatTime(tt.in); got != tt.want {
			t.Errorf("FormatTime(%v) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
