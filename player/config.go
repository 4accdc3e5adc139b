// SPDX-License-Identifier: EPL-2.0

package player

import (
	"log/slog"

	"github.com/ik5/modpbx/decoder"
	"github.com/ik5/modpbx/decoder/openmpt"
	"github.com/ik5/modpbx/decoder/sampled"
	"github.com/ik5/modpbx/render"
	"github.com/ik5/modpbx/sink"
)

// Config assembles a Player. Zero fields take the DefaultConfig values.
type Config struct {
	SampleRate int

	// Sink builds the audio output on the first Play.
	Sink sink.Factory

	// Backends opens module data. Defaults to DefaultBackends.
	Backends *decoder.Registry

	// DisablePathLoading makes LoadFromPath fail, as on sandboxed front ends.
	DisablePathLoading bool

	// DisableEndHeuristic turns off the silent-period end-of-stream check.
	DisableEndHeuristic bool

	Logger *slog.Logger
}

// DefaultConfig returns the desktop configuration: 48 kHz output through
// oto with a callback-sized period.
func DefaultConfig() Config {
	return Config{
		SampleRate: render.DefaultSampleRate,
		Sink:       sink.OtoFactory(sink.CallbackFrames),
		Logger:     slog.Default(),
	}
}

// DefaultBackends registers libopenmpt for tracker modules, used for any
// unknown extension, and the sampled backend for plain audio files.
func DefaultBackends(sampleRate int) *decoder.Registry {
	reg := decoder.NewRegistry()
	reg.Register(openmpt.Backend{})
	reg.Register(sampled.NewBackend(sampleRate))
	reg.SetDefault(openmpt.Backend{})

	return reg
}

func (c Config) withDefaults() Config {
	def := DefaultConfig()

	if c.SampleRate <= 0 {
		c.SampleRate = def.SampleRate
	}
	if c.Sink == nil {
		c.Sink = def.Sink
	}
	if c.Backends == nil {
		c.Backends = DefaultBackends(c.SampleRate)
	}
	if c.Logger == nil {
		c.Logger = def.Logger
	}
	return c
}
