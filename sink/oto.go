// SPDX-License-Identifier: EPL-2.0

//go:build !headless

package sink

import (
	"context"
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/ebitengine/oto/v3"

	"github.com/ik5/modpbx/decoder"
	"github.com/ik5/modpbx/render"
)

// oto allows a single context per process.
var (
	otoMtx  sync.Mutex
	otoCtx  *oto.Context
	otoRate int
	otoLib  = decoder.NewLibrary("oto", initOto)
)

func initOto(ctx context.Context) error {
	otoMtx.Lock()
	rate := otoRate
	otoMtx.Unlock()

	c, ready, err := oto.NewContext(&oto.NewContextOptions{
		SampleRate:   rate,
		ChannelCount: render.Channels,
		Format:       oto.FormatFloat32LE,
		BufferSize:   40 * time.Millisecond,
	})
	if err != nil {
		return fmt.Errorf("%w: %w", ErrDeviceUnavailable, err)
	}

	select {
	case <-ready:
	case <-ctx.Done():
		return ctx.Err()
	}

	otoMtx.Lock()
	otoCtx = c
	otoMtx.Unlock()

	return nil
}

// otoContext returns the process-wide oto context, creating it at
// sampleRate on first use. A later request for another rate fails.
func otoContext(ctx context.Context, sampleRate int) (*oto.Context, error) {
	otoMtx.Lock()
	if otoCtx == nil && otoRate == 0 {
		otoRate = sampleRate
	}
	rate := otoRate
	otoMtx.Unlock()

	if rate != sampleRate {
		return nil, fmt.Errorf("%w: output already opened at %d Hz", ErrDeviceUnavailable, rate)
	}

	if err := otoLib.Init(ctx); err != nil {
		return nil, err
	}

	otoMtx.Lock()
	defer otoMtx.Unlock()

	if err := otoCtx.Err(); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrDeviceUnavailable, err)
	}
	return otoCtx, nil
}

// OtoFactory returns a Factory for push sinks on the system audio output.
func OtoFactory(frames int) Factory {
	return func(r *render.Renderer, ev Events) (Sink, error) {
		c, err := otoContext(context.Background(), r.SampleRate())
		if err != nil {
			return nil, err
		}

		return NewPush(r, frames, ev, func(src io.Reader) (Output, error) {
			p := c.NewPlayer(src)
			p.SetBufferSize(frames * render.Channels * 4)
			return p, nil
		})
	}
}
