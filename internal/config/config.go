// SPDX-License-Identifier: EPL-2.0

// Package config reads the modplay command line. Every flag can also be
// set through a MODPLAY_* environment variable; flags win over the
// environment. Paths may start with "~".
package config

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"slices"
	"strconv"
	"strings"

	"github.com/mitchellh/go-homedir"

	"github.com/ik5/modpbx/render"
	"github.com/ik5/modpbx/sink"
)

// EnvPrefix prefixes the environment variable of every flag.
const EnvPrefix = "MODPLAY_"

// Outputs lists the accepted values of -output.
var Outputs = []string{"oto", "pipe", "wav", "null"}

type Config struct {
	Output     string
	OutFile    string
	SampleRate int
	Frames     int

	Repeat     int
	GainDB     float64
	Separation int
	Speed      float64
	Pitch      float64
	Heuristic  bool

	// MaxSeconds caps export and analyze, zero for the whole module.
	MaxSeconds float64
	// MonoRate makes export write mono at this rate, zero for stereo.
	MonoRate int

	Socket   string
	History  string
	LogLevel slog.Level

	// Args holds the positional arguments left after the flags.
	Args []string
}

// Default returns the configuration used when nothing is set.
func Default() Config {
	return Config{
		Output:     "oto",
		SampleRate: render.DefaultSampleRate,
		Frames:     sink.DesktopFrames,
		Separation: 100,
		Speed:      1,
		Pitch:      1,
		Heuristic:  true,
		Socket:     "/tmp/modplay.sock",
		History:    "~/.modplay_history",
		LogLevel:   slog.LevelInfo,
	}
}

// Load parses args for the command called name. getenv is usually
// os.Getenv; nil ignores the environment. flag.ErrHelp is returned as is.
func Load(name string, args []string, getenv func(string) string, usage io.Writer) (Config, error) {
	cfg := Default()

	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	if usage != nil {
		fs.SetOutput(usage)
	} else {
		fs.SetOutput(io.Discard)
	}

	level := cfg.LogLevel.String()
	fs.StringVar(&cfg.Output, "output", cfg.Output, "audio output: "+strings.Join(Outputs, ", "))
	fs.StringVar(&cfg.OutFile, "out", cfg.OutFile, "file written by the wav output and export")
	fs.IntVar(&cfg.SampleRate, "rate", cfg.SampleRate, "output sample rate in Hz")
	fs.IntVar(&cfg.Frames, "frames", cfg.Frames, "frames per rendered period")
	fs.IntVar(&cfg.Repeat, "repeat", cfg.Repeat, "repeat count, -1 loops forever")
	fs.Float64Var(&cfg.GainDB, "gain", cfg.GainDB, "master gain in dB")
	fs.IntVar(&cfg.Separation, "sep", cfg.Separation, "stereo separation in percent (0-200)")
	fs.Float64Var(&cfg.Speed, "speed", cfg.Speed, "tempo factor (0.25-2)")
	fs.Float64Var(&cfg.Pitch, "pitch", cfg.Pitch, "pitch factor (0.25-2)")
	fs.BoolVar(&cfg.Heuristic, "heuristic", cfg.Heuristic, "stop on silence near the end of the module")
	fs.Float64Var(&cfg.MaxSeconds, "max", cfg.MaxSeconds, "seconds rendered by export and analyze, 0 for all")
	fs.IntVar(&cfg.MonoRate, "mono", cfg.MonoRate, "export a mono downmix at this sample rate")
	fs.StringVar(&cfg.Socket, "socket", cfg.Socket, "control socket path")
	fs.StringVar(&cfg.History, "history", cfg.History, "shell history file, empty to disable")
	fs.StringVar(&level, "log", level, "log level: debug, info, warn, error")

	if getenv != nil {
		var errs []error
		fs.VisitAll(func(f *flag.Flag) {
			v := getenv(EnvName(f.Name))
			if v == "" {
				return
			}
			if err := f.Value.Set(v); err != nil {
				errs = append(errs, fmt.Errorf("%s: %w: %q", EnvName(f.Name), ErrInvalidValue, v))
			}
		})
		if err := errors.Join(errs...); err != nil {
			return cfg, err
		}
	}

	if err := fs.Parse(args); err != nil {
		return cfg, err
	}
	cfg.Args = fs.Args()

	if err := cfg.LogLevel.UnmarshalText([]byte(level)); err != nil {
		return cfg, fmt.Errorf("log: %w: %q", ErrInvalidValue, level)
	}

	if err := cfg.expand(); err != nil {
		return cfg, err
	}
	return cfg, cfg.Validate()
}

// EnvName returns the environment variable for a flag, e.g. MODPLAY_RATE.
func EnvName(flagName string) string {
	return EnvPrefix + strings.ToUpper(flagName)
}

func (c *Config) expand() error {
	for _, p := range []*string{&c.OutFile, &c.Socket, &c.History} {
		v, err := homedir.Expand(*p)
		if err != nil {
			return fmt.Errorf("expand %q: %w", *p, err)
		}
		*p = v
	}

	for i, a := range c.Args {
		v, err := homedir.Expand(a)
		if err != nil {
			return fmt.Errorf("expand %q: %w", a, err)
		}
		c.Args[i] = v
	}
	return nil
}

// Validate checks the values that cannot be clamped later.
func (c Config) Validate() error {
	if !slices.Contains(Outputs, c.Output) {
		return fmt.Errorf("%w: %q", ErrInvalidOutput, c.Output)
	}
	if c.Output == "wav" && c.OutFile == "" {
		return ErrMissingFile
	}
	if c.SampleRate <= 0 {
		return fmt.Errorf("rate: %w: %d", ErrInvalidValue, c.SampleRate)
	}
	if c.Frames <= 0 {
		return fmt.Errorf("frames: %w: %d", ErrInvalidValue, c.Frames)
	}
	if c.MaxSeconds < 0 {
		return fmt.Errorf("max: %w: %v", ErrInvalidValue, c.MaxSeconds)
	}
	if c.MonoRate < 0 {
		return fmt.Errorf("mono: %w: %d", ErrInvalidValue, c.MonoRate)
	}
	if c.Repeat < -1 {
		return fmt.Errorf("repeat: %w: %d", ErrInvalidValue, c.Repeat)
	}
	return nil
}

// String renders the configuration in flag form.
func (c Config) String() string {
	parts := []string{
		"-output=" + c.Output,
		"-rate=" + strconv.Itoa(c.SampleRate),
		"-frames=" + strconv.Itoa(c.Frames),
		"-repeat=" + strconv.Itoa(c.Repeat),
		"-log=" + c.LogLevel.String(),
	}
	if c.OutFile != "" {
		parts = append(parts, "-out="+c.OutFile)
	}
	return strings.Join(parts, " ")
}
