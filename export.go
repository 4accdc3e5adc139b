// SPDX-License-Identifier: EPL-2.0

package modpbx

import (
	"errors"
	"fmt"
	"io"

	"github.com/ik5/modpbx/decoder"
	"github.com/ik5/modpbx/render"
	"github.com/ik5/modpbx/sink"
)

// ExportInfo controls ExportWAV. Empty tags are filled from the module's
// metadata.
type ExportInfo struct {
	Title   string
	Artist  string
	Comment string

	// MaxSeconds caps the exported length, zero for the whole module.
	MaxSeconds float64
	// BufferFrames is the render period, DefaultBufferFrames when zero.
	BufferFrames int
}

// ExportWAV renders the module attached to r into w as a 16-bit stereo WAV
// file and returns the number of frames written. w is not closed.
func ExportWAV(w io.WriteSeeker, r *render.Renderer, info ExportInfo) (int, error) {
	src, err := newOfflineSource(r, info.MaxSeconds)
	if err != nil {
		return 0, err
	}

	_ = r.With(func(h decoder.Handle) error {
		info.Title = fallback(info.Title, h.Metadata(decoder.KeyTitle))
		info.Artist = fallback(info.Artist, h.Metadata(decoder.KeyArtist))
		info.Comment = fallback(info.Comment, h.Metadata(decoder.KeyMessage))
		return nil
	})

	dev := sink.NewWAVDevice(w, r.SampleRate())
	dev.SetInfo(info.Title, info.Artist, info.Comment)

	buf := make([]float32, frames(info.BufferFrames)*render.Channels)
	pcm := make([]byte, len(buf)*2)
	total := 0

	for {
		n, rerr := src.ReadSamples(buf)
		if n > 0 {
			size, err := render.ToPCM16(pcm, buf[:n])
			if err != nil {
				return total, err
			}
			if _, err := dev.Write(pcm[:size]); err != nil {
				return total, fmt.Errorf("export: %w", err)
			}
			total += n / render.Channels
		}

		if errors.Is(rerr, io.EOF) || (rerr == nil && n == 0) {
			break
		}
		if rerr != nil {
			return total, fmt.Errorf("export: %w", rerr)
		}
	}

	if err := dev.Close(); err != nil {
		return total, fmt.Errorf("export: %w", err)
	}
	return total, nil
}

func fallback(v, def string) string {
	if v != "" {
		return v
	}
	return def
}
