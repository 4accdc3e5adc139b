// SPDX-License-Identifier: EPL-2.0

package audiotest

import (
	"fmt"
	"math"
	"sync"

	"github.com/ik5/modpbx/decoder"
)

// FakeHandle is a scripted decoder.Handle. It renders a constant level for
// Duration seconds (scaled by the tempo factor) and then reports the end.
// Rows advance at 8 per second, 64 rows per pattern, one pattern per order.
type FakeHandle struct {
	mtx sync.Mutex

	name     string
	duration float64
	level    float32
	meta     map[string]string
	channels int

	pos     float64
	repeat  int
	loops   int
	gain    int
	sep     int
	tempo   float64
	pitch   float64
	closed  bool
	closes  int
	readErr error
	reads   int
}

// NewFakeHandle creates a handle that plays level for duration seconds.
func NewFakeHandle(name string, duration float64, level float32) *FakeHandle {
	return &FakeHandle{
		name:     name,
		duration: duration,
		level:    level,
		channels: 4,
		sep:      100,
		tempo:    1,
		pitch:    1,
		meta: map[string]string{
			decoder.KeyTitle:    name,
			decoder.KeyArtist:   "fake",
			decoder.KeyType:     "mod",
			decoder.KeyTypeLong: "ProTracker MOD",
			decoder.KeyTracker:  "audiotest",
			decoder.KeyMessage:  "",
		},
	}
}

// Name returns the name the handle was opened with.
func (h *FakeHandle) Name() string { return h.name }

// FailReads makes every following read return err.
func (h *FakeHandle) FailReads(err error) {
	h.mtx.Lock()
	defer h.mtx.Unlock()

	h.readErr = err
}

// Closed reports whether Close was called.
func (h *FakeHandle) Closed() bool {
	h.mtx.Lock()
	defer h.mtx.Unlock()

	return h.closed
}

// Reads returns how many render calls reached the handle.
func (h *FakeHandle) Reads() int {
	h.mtx.Lock()
	defer h.mtx.Unlock()

	return h.reads
}

func (h *FakeHandle) ReadInterleavedStereo(sampleRate int, dst []float32) (int, error) {
	h.mtx.Lock()
	defer h.mtx.Unlock()

	if h.closed {
		return 0, decoder.ErrClosed
	}
	h.reads++
	if h.readErr != nil {
		return 0, h.readErr
	}

	want := len(dst) / 2
	step := h.tempo / float64(sampleRate)
	frames := 0
	for frames < want {
		if h.pos >= h.duration {
			if h.repeat == decoder.RepeatForever || h.loops < h.repeat {
				h.loops++
				h.pos = 0
				continue
			}
			break
		}
		dst[2*frames] = h.level
		dst[2*frames+1] = h.level
		h.pos += step
		frames++
	}
	return frames, nil
}

func (h *FakeHandle) Position() float64 {
	h.mtx.Lock()
	defer h.mtx.Unlock()

	return min(h.pos, h.duration)
}

func (h *FakeHandle) SetPosition(seconds float64) (float64, error) {
	h.mtx.Lock()
	defer h.mtx.Unlock()

	if h.closed {
		return 0, decoder.ErrClosed
	}
	h.pos = math.Max(0, math.Min(seconds, h.duration))
	return h.pos, nil
}

func (h *FakeHandle) Duration() float64 { return h.duration }

func (h *FakeHandle) Metadata(key string) string {
	h.mtx.Lock()
	defer h.mtx.Unlock()

	return h.meta[key]
}

func (h *FakeHandle) row() int {
	return int(h.pos * 8)
}

func (h *FakeHandle) CurrentOrder() int {
	h.mtx.Lock()
	defer h.mtx.Unlock()

	return h.row() / 64
}

func (h *FakeHandle) CurrentPattern() int {
	h.mtx.Lock()
	defer h.mtx.Unlock()

	return h.row() / 64
}

func (h *FakeHandle) CurrentRow() int {
	h.mtx.Lock()
	defer h.mtx.Unlock()

	return h.row() % 64
}

func (h *FakeHandle) NumChannels() int    { return h.channels }
func (h *FakeHandle) NumPatterns() int    { return int(h.duration*8)/64 + 1 }
func (h *FakeHandle) NumOrders() int      { return int(h.duration*8)/64 + 1 }
func (h *FakeHandle) NumInstruments() int { return 0 }
func (h *FakeHandle) NumSamples() int     { return 15 }

func (h *FakeHandle) SetRepeatCount(n int) error {
	h.mtx.Lock()
	defer h.mtx.Unlock()

	h.repeat = n
	h.loops = 0
	return nil
}

func (h *FakeHandle) RepeatCount() int {
	h.mtx.Lock()
	defer h.mtx.Unlock()

	return h.repeat
}

func (h *FakeHandle) SetRenderParam(p decoder.RenderParam, value int) error {
	h.mtx.Lock()
	defer h.mtx.Unlock()

	switch p {
	case decoder.MasterGainMillibel:
		h.gain = value
	case decoder.StereoSeparationPercent:
		h.sep = value
	default:
		return fmt.Errorf("%s: %w", p, decoder.ErrUnsupportedParam)
	}
	return nil
}

func (h *FakeHandle) RenderParam(p decoder.RenderParam) (int, error) {
	h.mtx.Lock()
	defer h.mtx.Unlock()

	switch p {
	case decoder.MasterGainMillibel:
		return h.gain, nil
	case decoder.StereoSeparationPercent:
		return h.sep, nil
	default:
		return 0, fmt.Errorf("%s: %w", p, decoder.ErrUnsupportedParam)
	}
}

func (h *FakeHandle) SetCtlFloat(key string, value float64) error {
	h.mtx.Lock()
	defer h.mtx.Unlock()

	switch key {
	case decoder.CtlTempoFactor:
		h.tempo = value
	case decoder.CtlPitchFactor:
		h.pitch = value
	default:
		return fmt.Errorf("%s: %w", key, decoder.ErrUnsupportedParam)
	}
	return nil
}

func (h *FakeHandle) CtlFloat(key string) (float64, error) {
	h.mtx.Lock()
	defer h.mtx.Unlock()

	switch key {
	case decoder.CtlTempoFactor:
		return h.tempo, nil
	case decoder.CtlPitchFactor:
		return h.pitch, nil
	default:
		return 0, fmt.Errorf("%s: %w", key, decoder.ErrUnsupportedParam)
	}
}

// Close marks the handle destroyed and counts the calls.
func (h *FakeHandle) Close() error {
	h.mtx.Lock()
	defer h.mtx.Unlock()

	h.closed = true
	h.closes++
	return nil
}

// FakeBackend opens FakeHandles. Module bytes are ignored except that empty
// data fails with decoder.ErrOpenFailed.
type FakeBackend struct {
	Duration float64
	Level    float32

	mtx    sync.Mutex
	opened []*FakeHandle
}

func (b *FakeBackend) Name() string         { return "fake" }
func (b *FakeBackend) Extensions() []string { return []string{"mod", "xm", "it", "s3m"} }

func (b *FakeBackend) Open(name string, data []byte) (decoder.Handle, error) {
	if len(data) == 0 {
		return nil, decoder.ErrOpenFailed
	}

	h := NewFakeHandle(name, b.Duration, b.Level)

	b.mtx.Lock()
	b.opened = append(b.opened, h)
	b.mtx.Unlock()

	return h, nil
}

// Opened returns every handle created so far, oldest first.
func (b *FakeBackend) Opened() []*FakeHandle {
	b.mtx.Lock()
	defer b.mtx.Unlock()

	return append([]*FakeHandle(nil), b.opened...)
}

// Live counts opened handles that were not closed.
func (b *FakeBackend) Live() int {
	n := 0
	for _, h := range b.Opened() {
		if !h.Closed() {
			n++
		}
	}
	return n
}
