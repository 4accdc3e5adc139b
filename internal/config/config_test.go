// SPDX-License-Identifier: EPL-2.0

package config

import (
	"errors"
	"flag"
	"log/slog"
	"path/filepath"
	"strings"
	"testing"

	"github.com/mitchellh/go-homedir"
)

func env(m map[string]string) func(string) string {
	return func(k string) string { return m[k] }
}

func TestLoad(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		args  []string
		env   map[string]string
		check func(t *testing.T, c Config)
	}{
		{
			name: "defaults",
			check: func(t *testing.T, c Config) {
				if c.Output != "oto" || c.SampleRate != 48000 || c.Frames != 2048 {
					t.Errorf("defaults = %s", c)
				}
				if !c.Heuristic || c.Speed != 1 || c.Separation != 100 {
					t.Errorf("defaults = %+v", c)
				}
			},
		},
		{
			name: "flags",
			args: []string{"-output", "null", "-rate", "44100", "-repeat", "-1", "-log", "debug", "song.xm"},
			check: func(t *testing.T, c Config) {
				if c.Output != "null" || c.SampleRate != 44100 || c.Repeat != -1 {
					t.Errorf("got %s", c)
				}
				if c.LogLevel != slog.LevelDebug {
					t.Errorf("LogLevel = %v, want debug", c.LogLevel)
				}
				if len(c.Args) != 1 || c.Args[0] != "song.xm" {
					t.Errorf("Args = %v", c.Args)
				}
			},
		},
		{
			name: "environment",
			env:  map[string]string{"MODPLAY_RATE": "22050", "MODPLAY_HEURISTIC": "false", "MODPLAY_GAIN": "-3.5"},
			check: func(t *testing.T, c Config) {
				if c.SampleRate != 22050 || c.Heuristic || c.GainDB != -3.5 {
					t.Errorf("got %+v", c)
				}
			},
		},
		{
			name: "flags win over environment",
			args: []string{"-rate", "8000"},
			env:  map[string]string{"MODPLAY_RATE": "22050"},
			check: func(t *testing.T, c Config) {
				if c.SampleRate != 8000 {
					t.Errorf("SampleRate = %d, want 8000", c.SampleRate)
				}
			},
		},
		{
			name: "wav output with file",
			args: []string{"-output", "wav", "-out", "/tmp/x.wav"},
			check: func(t *testing.T, c Config) {
				if c.OutFile != "/tmp/x.wav" {
					t.Errorf("OutFile = %q", c.OutFile)
				}
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			c, err := Load("modplay", tt.args, env(tt.env), nil)
			if err != nil {
				t.Fatalf("Load() error = %v", err)
			}
			tt.check(t, c)
		})
	}
}

func TestLoad_Errors(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		args []string
		env  map[string]string
		want error
	}{
		{"unknown output", []string{"-output", "alsa"}, nil, ErrInvalidOutput},
		{"wav without file", []string{"-output", "wav"}, nil, ErrMissingFile},
		{"zero rate", []string{"-rate", "0"}, nil, ErrInvalidValue},
		{"zero frames", []string{"-frames", "0"}, nil, ErrInvalidValue},
		{"negative max", []string{"-max", "-1"}, nil, ErrInvalidValue},
		{"negative mono rate", []string{"-mono", "-8000"}, nil, ErrInvalidValue},
		{"repeat below -1", []string{"-repeat", "-2"}, nil, ErrInvalidValue},
		{"bad log level", []string{"-log", "loud"}, nil, ErrInvalidValue},
		{"bad env value", nil, map[string]string{"MODPLAY_FRAMES": "many"}, ErrInvalidValue},
		{"help", []string{"-h"}, nil, flag.ErrHelp},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			if _, err := Load("modplay", tt.args, env(tt.env), nil); !errors.Is(err, tt.want) {
				t.Errorf("Load() error = %v, want %v", err, tt.want)
			}
		})
	}
}

func TestLoad_ExpandsHome(t *testing.T) {
	t.Parallel()

	home, err := homedir.Dir()
	if err != nil {
		t.Skip("no home directory")
	}

	c, err := Load("modplay", []string{"-socket", "~/modplay.sock", "~/songs/a.it"}, nil, nil)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if want := filepath.Join(home, "modplay.sock"); c.Socket != want {
		t.Errorf("Socket = %q, want %q", c.Socket, want)
	}
	if !strings.HasPrefix(c.Args[0], home) {
		t.Errorf("Args[0] = %q, want prefix %q", c.Args[0], home)
	}
	if strings.HasPrefix(c.History, "~") {
		t.Errorf("History = %q, not expanded", c.History)
	}
}

func TestEnvName(t *testing.T) {
	t.Parallel()

	if got := EnvName("rate"); got != "MODPLAY_RATE" {
		t.Errorf("EnvName() = %q", got)
	}
}
