// SPDX-License-Identifier: EPL-2.0

package main

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/ik5/modpbx/decoder"
	"github.com/ik5/modpbx/internal/config"
	"github.com/ik5/modpbx/player"
	"github.com/ik5/modpbx/sink"
)

// stdout hides os.Stdout's Close from the pull sink.
type stdout struct{ io.Writer }

// outputFactory builds the sink factory selected by -output. The returned
// cleanup runs after the player is released.
func outputFactory(cfg config.Config) (sink.Factory, func() error, error) {
	nop := func() error { return nil }

	switch cfg.Output {
	case "oto":
		return sink.OtoFactory(cfg.Frames), nop, nil
	case "pipe":
		return sink.PullFactory(stdout{os.Stdout}, cfg.Frames), nop, nil
	case "null":
		return sink.PullFactory(sink.NewThrottled(io.Discard, cfg.SampleRate), cfg.Frames), nop, nil
	case "wav":
		f, err := os.Create(cfg.OutFile)
		if err != nil {
			return nil, nil, fmt.Errorf("wav output: %w", err)
		}
		dev := sink.NewWAVDevice(f, cfg.SampleRate)
		cleanup := func() error {
			// Release already closed dev through the sink
			return errors.Join(dev.Close(), f.Close())
		}
		return sink.PullFactory(dev, cfg.Frames), cleanup, nil
	}
	return nil, nil, config.ErrInvalidOutput
}

// newPlayer creates a player for cfg with the playback settings applied.
func newPlayer(cfg config.Config, log *slog.Logger) (*player.Player, func() error, error) {
	factory, cleanup, err := outputFactory(cfg)
	if err != nil {
		return nil, nil, err
	}

	p := player.New(player.Config{
		SampleRate:          cfg.SampleRate,
		Sink:                factory,
		Backends:            player.DefaultBackends(cfg.SampleRate),
		DisableEndHeuristic: !cfg.Heuristic,
		Logger:              log,
	})

	ctl := player.NewController(p, log)
	_, gerr := ctl.SetMasterGainDB(cfg.GainDB)
	err = errors.Join(
		p.SetRepeatCount(cfg.Repeat),
		gerr,
		p.SetStereoSeparation(cfg.Separation),
		p.SetPlaybackSpeed(cfg.Speed),
		p.SetPitch(cfg.Pitch),
	)
	if err != nil {
		_ = p.Release()
		_ = cleanup()
		return nil, nil, fmt.Errorf("settings: %w", err)
	}

	release := func() error {
		return errors.Join(p.Release(), cleanup())
	}
	return p, release, nil
}

// openHandle opens path with the default backends, for the offline
// commands that do not need a player.
func openHandle(cfg config.Config, path string) (decoder.Handle, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read module: %w", err)
	}

	h, err := player.DefaultBackends(cfg.SampleRate).Open(path, data)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}

	if err := h.SetRepeatCount(cfg.Repeat); err != nil {
		h.Close()
		return nil, fmt.Errorf("repeat: %w", err)
	}
	return h, nil
}
