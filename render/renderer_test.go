// SPDX-License-Identifier: EPL-2.0

package render

import (
	"errors"
	"math"
	"testing"

	"github.com/ik5/modpbx/decoder"
	"github.com/ik5/modpbx/internal/audiotest"
)

func TestRenderer_NoModuleRendersSilence(t *testing.T) {
	t.Parallel()

	r := New(48000)
	buf := []float32{1, 1, 1, 1}

	res, err := r.Render(buf)
	if err != nil {
		t.Fatalf("Render() error = %v, want nil", err)
	}
	if res.Frames != 0 || res.EndOfStream {
		t.Errorf("Render() = %+v, want zero frames without end of stream", res)
	}
	for i, v := range buf {
		if v != 0 {
			t.Errorf("buf[%d] = %v, want 0", i, v)
		}
	}

	if got := r.CurrentOrder(); got != -1 {
		t.Errorf("CurrentOrder() = %d, want -1", got)
	}
	if got := r.CurrentRow(); got != -1 {
		t.Errorf("CurrentRow() = %d, want -1", got)
	}
}

func TestRenderer_RenderFullPeriod(t *testing.T) {
	t.Parallel()

	r := New(48000)
	r.Attach(audiotest.NewFakeHandle("a", 10, 0.5))

	buf := make([]float32, 1024*2)
	res, err := r.Render(buf)
	if err != nil {
		t.Fatalf("Render() error = %v", err)
	}
	if res.Frames != 1024 || res.EndOfStream {
		t.Errorf("Render() = %+v, want 1024 frames", res)
	}
	if buf[0] != 0.5 || buf[len(buf)-1] != 0.5 {
		t.Errorf("buf edges = %v, %v, want 0.5", buf[0], buf[len(buf)-1])
	}

	want := 1024.0 / 48000.0
	if got := r.Position(); math.Abs(got-want) > 1e-6 {
		t.Errorf("Position() = %v, want %v", got, want)
	}
}

func TestRenderer_PartialPeriodEndsStream(t *testing.T) {
	t.Parallel()

	r := New(1000)
	// 0.1 s at 1 kHz = 100 frames
	r.Attach(audiotest.NewFakeHandle("short", 0.1, 0.25))

	buf := make([]float32, 256*2)
	res, err := r.Render(buf)
	if err != nil {
		t.Fatalf("Render() error = %v", err)
	}
	if !res.EndOfStream {
		t.Fatal("Render() EndOfStream = false, want true")
	}
	if res.Frames < 99 || res.Frames > 101 {
		t.Errorf("Render() Frames = %d, want ≈100", res.Frames)
	}
	for i := res.Frames * 2; i < len(buf); i++ {
		if buf[i] != 0 {
			t.Fatalf("buf[%d] = %v, want silence after the last frame", i, buf[i])
		}
	}

	res, _ = r.Render(buf)
	if res.Frames != 0 || !res.EndOfStream {
		t.Errorf("Render() after end = %+v, want 0 frames and end of stream", res)
	}
}

func TestRenderer_SilenceHeuristic(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name      string
		heuristic bool
		repeat    int
		seek      float64
		wantEnd   bool
	}{
		{"near end", true, decoder.RepeatNone, 0.95, true},
		{"far from end", true, decoder.RepeatNone, 0.2, false},
		{"disabled", false, decoder.RepeatNone, 0.95, false},
		{"looping forever", true, decoder.RepeatForever, 0.95, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			r := New(48000)
			r.SetHeuristic(tt.heuristic)
			h := audiotest.NewFakeHandle("quiet", 1, 0)
			r.Attach(h)
			if err := r.With(func(h decoder.Handle) error {
				return h.SetRepeatCount(tt.repeat)
			}); err != nil {
				t.Fatalf("SetRepeatCount() error = %v", err)
			}
			if _, err := r.Seek(tt.seek); err != nil {
				t.Fatalf("Seek() error = %v", err)
			}

			res, err := r.Render(make([]float32, 512*2))
			if err != nil {
				t.Fatalf("Render() error = %v", err)
			}
			if res.Frames != 512 {
				t.Errorf("Render() Frames = %d, want 512", res.Frames)
			}
			if res.EndOfStream != tt.wantEnd {
				t.Errorf("Render() EndOfStream = %v, want %v", res.EndOfStream, tt.wantEnd)
			}
		})
	}
}

func TestRenderer_FactorsAppliedBeforeRender(t *testing.T) {
	t.Parallel()

	r := New(48000)
	h := audiotest.NewFakeHandle("a", 10, 0.1)
	r.Attach(h)

	if got := r.SetTempoFactor(3); got != MaxFactor {
		t.Errorf("SetTempoFactor(3) = %v, want %v", got, MaxFactor)
	}
	if got := r.SetPitchFactor(0.1); got != MinFactor {
		t.Errorf("SetPitchFactor(0.1) = %v, want %v", got, MinFactor)
	}

	if tempo, _ := h.CtlFloat(decoder.CtlTempoFactor); tempo != 1 {
		t.Errorf("tempo before render = %v, want 1", tempo)
	}

	if _, err := r.Render(make([]float32, 64)); err != nil {
		t.Fatalf("Render() error = %v", err)
	}

	if tempo, _ := h.CtlFloat(decoder.CtlTempoFactor); tempo != MaxFactor {
		t.Errorf("tempo after render = %v, want %v", tempo, MaxFactor)
	}
	if pitch, _ := h.CtlFloat(decoder.CtlPitchFactor); pitch != MinFactor {
		t.Errorf("pitch after render = %v, want %v", pitch, MinFactor)
	}
}

func TestRenderer_FactorsReappliedOnAttach(t *testing.T) {
	t.Parallel()

	r := New(48000)
	r.SetTempoFactor(1.5)

	first := audiotest.NewFakeHandle("a", 10, 0.1)
	r.Attach(first)
	if err := r.Apply(); err != nil {
		t.Fatalf("Apply() error = %v", err)
	}

	second := audiotest.NewFakeHandle("b", 10, 0.1)
	if prev := r.Attach(second); prev != first {
		t.Error("Attach() did not return the previous handle")
	}
	if err := r.Apply(); err != nil {
		t.Fatalf("Apply() error = %v", err)
	}

	if tempo, _ := second.CtlFloat(decoder.CtlTempoFactor); tempo != 1.5 {
		t.Errorf("tempo on new handle = %v, want 1.5", tempo)
	}
}

func TestRenderer_TryRenderWhenBusy(t *testing.T) {
	t.Parallel()

	r := New(48000)
	h := audiotest.NewFakeHandle("a", 10, 0.5)
	r.Attach(h)

	buf := []float32{1, 1, 1, 1}

	r.mtx.Lock()
	res, ok, err := r.TryRender(buf)
	r.mtx.Unlock()

	if ok || err != nil {
		t.Errorf("TryRender() ok = %v, err = %v, want false, nil", ok, err)
	}
	if res.Frames != 0 {
		t.Errorf("TryRender() Frames = %d, want 0", res.Frames)
	}
	if buf[0] != 0 || buf[3] != 0 {
		t.Errorf("TryRender() left %v, want silence", buf)
	}
	if h.Reads() != 0 {
		t.Errorf("handle saw %d reads while busy, want 0", h.Reads())
	}

	res, ok, err = r.TryRender(buf)
	if !ok || err != nil || res.Frames != 2 {
		t.Errorf("TryRender() = %+v, %v, %v, want 2 frames", res, ok, err)
	}
}

func TestRenderer_ReadErrorSilences(t *testing.T) {
	t.Parallel()

	boom := errors.New("decoder exploded")
	r := New(48000)
	h := audiotest.NewFakeHandle("a", 10, 0.5)
	h.FailReads(boom)
	r.Attach(h)

	buf := []float32{1, 1}
	_, err := r.Render(buf)
	if !errors.Is(err, boom) {
		t.Errorf("Render() error = %v, want %v", err, boom)
	}
	if buf[0] != 0 || buf[1] != 0 {
		t.Errorf("Render() left %v, want silence", buf)
	}
}

func TestRenderer_InvalidBuffer(t *testing.T) {
	t.Parallel()

	r := New(48000)
	for _, n := range []int{0, 1, 3} {
		if _, err := r.Render(make([]float32, n)); !errors.Is(err, ErrInvalidBufferSize) {
			t.Errorf("Render(len %d) error = %v, want ErrInvalidBufferSize", n, err)
		}
	}
}

func TestRenderer_SeekAndWithWithoutModule(t *testing.T) {
	t.Parallel()

	r := New(48000)
	if _, err := r.Seek(1); !errors.Is(err, decoder.ErrNoModule) {
		t.Errorf("Seek() error = %v, want ErrNoModule", err)
	}
	if err := r.With(func(decoder.Handle) error { return nil }); !errors.Is(err, decoder.ErrNoModule) {
		t.Errorf("With() error = %v, want ErrNoModule", err)
	}
}

func TestRenderer_SeekClamps(t *testing.T) {
	t.Parallel()

	r := New(48000)
	r.Attach(audiotest.NewFakeHandle("a", 30, 0.5))

	tests := []struct {
		in   float64
		want float64
	}{
		{12.5, 12.5},
		{-3, 0},
		{math.NaN(), 0},
		{45, 30},
	}

	for _, tt := range tests {
		got, err := r.Seek(tt.in)
		if err != nil {
			t.Fatalf("Seek(%v) error = %v", tt.in, err)
		}
		if got != tt.want {
			t.Errorf("Seek(%v) = %v, want %v", tt.in, got, tt.want)
		}
		if pos := r.Position(); pos != tt.want {
			t.Errorf("Position() after Seek(%v) = %v, want %v", tt.in, pos, tt.want)
		}
	}
}

func TestClampFactor(t *testing.T) {
	t.Parallel()

	tests := []struct {
		in   float64
		want float64
	}{
		{1, 1},
		{0.25, 0.25},
		{2, 2},
		{0, 0.25},
		{-1, 0.25},
		{10, 2},
		{math.Inf(1), 2},
		{math.NaN(), 1},
	}

	for _, tt := range tests {
		if got := ClampFactor(tt.in); got != tt.want {
			t.Errorf("ClampFactor(%v) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestRenderer_ZeroAllocs(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping allocation test in short mode")
	}

	r := New(48000)
	r.Attach(audiotest.NewFakeHandle("a", 3600, 0.5))
	buf := make([]float32, 1024*2)

	allocs := testing.AllocsPerRun(100, func() {
		_, _ = r.Render(buf)
	})
	if allocs > 0 {
		t.Errorf("Render() allocated %.0f times per run, want 0", allocs)
	}
}

func BenchmarkRenderer_Render(b *testing.B) {
	r := New(48000)
	r.Attach(audiotest.NewFakeHandle("a", 1e9, 0.5))
	buf := make([]float32, 2048*2)

	b.ResetTimer()
	for range b.N {
		_, _ = r.Render(buf)
	}
}
