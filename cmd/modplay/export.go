// SPDX-License-Identifier: EPL-2.0

package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/ik5/modpbx"
	"github.com/ik5/modpbx/analysis"
	"github.com/ik5/modpbx/decoder"
	"github.com/ik5/modpbx/formats/wav"
	"github.com/ik5/modpbx/internal/config"
	"github.com/ik5/modpbx/player"
	"github.com/ik5/modpbx/render"
)

var errNoInput = errors.New("no module file given")

// offlineRenderer opens the module named by the first argument and
// attaches it to a renderer with the playback settings of cfg. done
// detaches and closes the module.
func offlineRenderer(cfg config.Config) (r *render.Renderer, done func(), err error) {
	if len(cfg.Args) == 0 {
		return nil, nil, errNoInput
	}

	h, err := openHandle(cfg, cfg.Args[0])
	if err != nil {
		return nil, nil, err
	}

	_ = h.SetRenderParam(decoder.MasterGainMillibel, int(cfg.GainDB*100))
	_ = h.SetRenderParam(decoder.StereoSeparationPercent, max(0, min(cfg.Separation, 200)))

	r = render.New(cfg.SampleRate)
	r.SetHeuristic(cfg.Heuristic)
	r.SetTempoFactor(cfg.Speed)
	r.SetPitchFactor(cfg.Pitch)
	r.Attach(h)

	return r, func() {
		if h := r.Detach(); h != nil {
			h.Close()
		}
	}, nil
}

func runExport(ctx context.Context, cfg config.Config, log *slog.Logger) error {
	if cfg.OutFile == "" {
		return config.ErrMissingFile
	}

	r, closeModule, err := offlineRenderer(cfg)
	if err != nil {
		return err
	}
	defer closeModule()

	f, err := os.Create(cfg.OutFile)
	if err != nil {
		return fmt.Errorf("create: %w", err)
	}

	rate := cfg.SampleRate
	var frames int
	if cfg.MonoRate > 0 {
		var pcm16 []int16
		pcm16, rate, err = modpbx.RenderMono16(r, cfg.MonoRate, cfg.Frames, cfg.MaxSeconds)
		if err == nil {
			frames = len(pcm16)
			err = wav.WriteWAV16(f, rate, pcm16)
		}
	} else {
		frames, err = modpbx.ExportWAV(f, r, modpbx.ExportInfo{
			MaxSeconds:   cfg.MaxSeconds,
			BufferFrames: cfg.Frames,
		})
	}
	if cerr := f.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		return err
	}

	log.Info("exported",
		slog.String("file", cfg.OutFile),
		slog.Int("frames", frames),
		slog.Int("rate", rate),
		slog.String("length", player.FormatTime(float64(frames)/float64(rate))))
	return nil
}

const (
	meterSize  = 2048
	meterBands = 12
	meterWidth = 40
)

func runAnalyze(ctx context.Context, cfg config.Config, log *slog.Logger) error {
	r, closeModule, err := offlineRenderer(cfg)
	if err != nil {
		return err
	}
	defer closeModule()

	limit := cfg.MaxSeconds
	if limit == 0 {
		if cfg.Repeat == decoder.RepeatForever {
			return modpbx.ErrUnbounded
		}
		limit = r.Duration() * float64(cfg.Repeat+1) / r.TempoFactor()
	}

	m, err := analysis.NewMeter(cfg.SampleRate, meterSize, meterBands)
	if err != nil {
		return err
	}

	// one line about every half second
	every := max(1, cfg.SampleRate/2/meterSize)
	block := 0

	return m.Run(render.NewSource(r), func(l analysis.Levels) bool {
		block++
		elapsed := float64(block*meterSize) / float64(cfg.SampleRate)
		if block%every == 0 {
			fmt.Printf("%s %s\n", player.FormatTime(elapsed), meterLine(l))
		}
		return ctx.Err() == nil && (limit <= 0 || elapsed < limit)
	})
}

// meterLine draws a peak bar followed by one glyph per band.
func meterLine(l analysis.Levels) string {
	const glyphs = " .:-=+*#%@"

	scale := func(db float64) float64 {
		return max(0, min(1, (db-analysis.Floor/2)/(-analysis.Floor/2)))
	}

	n := int(scale(l.PeakDB) * meterWidth)
	var b strings.Builder
	b.WriteString("|" + strings.Repeat("#", n) + strings.Repeat(" ", meterWidth-n) + "| ")
	for _, v := range l.Bands {
		b.WriteByte(glyphs[int(scale(v)*float64(len(glyphs)-1))])
	}
	fmt.Fprintf(&b, " %6.1f dB", l.PeakDB)
	return b.String()
}

func runInfo(ctx context.Context, cfg config.Config, log *slog.Logger) error {
	if len(cfg.Args) == 0 {
		return errNoInput
	}

	cfg.Output = "null"
	p, release, err := newPlayer(cfg, log)
	if err != nil {
		return err
	}
	defer release()

	if err := p.LoadFromPath(cfg.Args[0]); err != nil {
		return err
	}

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(p.Metadata())
}
