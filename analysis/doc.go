// SPDX-License-Identifier: EPL-2.0

// Package analysis measures rendered audio: peak and RMS level in dBFS
// and a log-spaced band spectrum computed with go-dsp's FFT over the mono
// downmix.
//
//	m, _ := analysis.NewMeter(48000, 2048, 16)
//	err := m.Run(render.NewSource(r), func(l analysis.Levels) bool {
//	    fmt.Println(l.PeakDB, l.RMSDB)
//	    return true
//	})
package analysis
