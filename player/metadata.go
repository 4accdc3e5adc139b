// SPDX-License-Identifier: EPL-2.0

package player

import (
	"math"

	"github.com/ik5/modpbx/decoder"
)

// Metadata is an immutable snapshot of a loaded module.
type Metadata struct {
	Title    string `json:"title"`
	Artist   string `json:"artist"`
	Type     string `json:"type"`
	TypeLong string `json:"type_long"`
	Tracker  string `json:"tracker"`
	Message  string `json:"message"`

	DurationSeconds float64 `json:"duration_seconds"`
	NumChannels     int     `json:"num_channels"`
	NumPatterns     int     `json:"num_patterns"`
	NumOrders       int     `json:"num_orders"`
	NumInstruments  int     `json:"num_instruments"`
	NumSamples      int     `json:"num_samples"`
}

func readMetadata(h decoder.Handle) Metadata {
	d := h.Duration()
	if math.IsNaN(d) || math.IsInf(d, 0) || d < 0 {
		d = 0
	}

	return Metadata{
		Title:           h.Metadata(decoder.KeyTitle),
		Artist:          h.Metadata(decoder.KeyArtist),
		Type:            h.Metadata(decoder.KeyType),
		TypeLong:        h.Metadata(decoder.KeyTypeLong),
		Tracker:         h.Metadata(decoder.KeyTracker),
		Message:         h.Metadata(decoder.KeyMessage),
		DurationSeconds: d,
		NumChannels:     max(0, h.NumChannels()),
		NumPatterns:     max(0, h.NumPatterns()),
		NumOrders:       max(0, h.NumOrders()),
		NumInstruments:  max(0, h.NumInstruments()),
		NumSamples:      max(0, h.NumSamples()),
	}
}
