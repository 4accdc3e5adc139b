// SPDX-License-Identifier: EPL-2.0

package sink

import (
	"encoding/binary"
	"fmt"
	"io"
	"sync"
	"time"

	goaudio "github.com/go-audio/audio"
	"github.com/go-audio/wav"

	"github.com/ik5/modpbx/render"
)

// Throttled paces writes to real time for outputs that never block, such
// as io.Discard or a file, so a pull loop behaves like a sound card.
type Throttled struct {
	w          io.Writer
	frameBytes int
	rate       int

	mtx     sync.Mutex
	start   time.Time
	written int64 // frames since start
	sleep   func(time.Duration)
	now     func() time.Time
}

// NewThrottled wraps w for 16-bit stereo at sampleRate.
func NewThrottled(w io.Writer, sampleRate int) *Throttled {
	return &Throttled{
		w:          w,
		frameBytes: render.Channels * 2,
		rate:       sampleRate,
		sleep:      time.Sleep,
		now:        time.Now,
	}
}

func (t *Throttled) Write(p []byte) (int, error) {
	n, err := t.w.Write(p)
	if err != nil {
		return n, fmt.Errorf("throttled write: %w", err)
	}

	t.mtx.Lock()
	defer t.mtx.Unlock()

	now := t.now()
	if t.start.IsZero() {
		t.start = now
	}
	t.written += int64(n / t.frameBytes)

	due := t.start.Add(time.Duration(t.written) * time.Second / time.Duration(t.rate))
	if wait := due.Sub(now); wait > 0 {
		t.sleep(wait)
	} else if wait < -time.Second {
		// resumed after a pause; restart the clock
		t.start = now
		t.written = 0
	}

	return n, nil
}

// Flush restarts the pacing clock.
func (t *Throttled) Flush() error {
	t.mtx.Lock()
	defer t.mtx.Unlock()

	t.start = time.Time{}
	t.written = 0
	return nil
}

// Close closes the wrapped writer when it is an io.Closer.
func (t *Throttled) Close() error {
	if c, ok := t.w.(io.Closer); ok {
		return c.Close()
	}
	return nil
}

// WAVDevice records 16-bit stereo PCM into a WAV file.
type WAVDevice struct {
	enc *wav.Encoder
	buf *goaudio.IntBuffer

	mtx    sync.Mutex
	closed bool
}

// NewWAVDevice writes a WAV stream to w. The header is finalised on Close,
// which is why w must be seekable.
func NewWAVDevice(w io.WriteSeeker, sampleRate int) *WAVDevice {
	return &WAVDevice{
		enc: wav.NewEncoder(w, sampleRate, 16, render.Channels, 1),
		buf: &goaudio.IntBuffer{
			Format:         &goaudio.Format{NumChannels: render.Channels, SampleRate: sampleRate},
			SourceBitDepth: 16,
		},
	}
}

func (d *WAVDevice) Write(p []byte) (int, error) {
	d.mtx.Lock()
	defer d.mtx.Unlock()

	if d.closed {
		return 0, ErrClosed
	}

	samples := len(p) / 2
	if cap(d.buf.Data) < samples {
		d.buf.Data = make([]int, samples)
	}
	d.buf.Data = d.buf.Data[:samples]

	for i := range samples {
		d.buf.Data[i] = int(int16(binary.LittleEndian.Uint16(p[2*i:])))
	}

	if err := d.enc.Write(d.buf); err != nil {
		return 0, fmt.Errorf("wav: %w", err)
	}
	return samples * 2, nil
}

// SetInfo stores title, artist and comment in the file's LIST/INFO chunk.
func (d *WAVDevice) SetInfo(title, artist, comment string) {
	d.mtx.Lock()
	defer d.mtx.Unlock()

	d.enc.Metadata = &wav.Metadata{
		Title:    title,
		Artist:   artist,
		Comments: comment,
		Software: "modpbx",
	}
}

// Close writes the final WAV header. It does not close the underlying file.
func (d *WAVDevice) Close() error {
	d.mtx.Lock()
	defer d.mtx.Unlock()

	if d.closed {
		return nil
	}
	d.closed = true

	if err := d.enc.Close(); err != nil {
		return fmt.Errorf("wav: %w", err)
	}
	return nil
}
