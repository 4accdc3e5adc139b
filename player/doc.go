// SPDX-License-Identifier: EPL-2.0

// Package player is the control surface of the module player.
//
// A Player owns at most one decoder handle, a render.Renderer and a sink
// created by the configured sink.Factory. It runs the playback state
// machine:
//
//	Idle -> Loading -> Loaded | Error
//	Loaded | Paused | Stopped -> Playing
//	Playing -> Paused | Stopped | Error
//	any -> Stopped (Stop), any -> Idle (Release)
//
// State and position are published through conflating Observables so a
// slow UI only ever sees the latest value.
//
// Basic usage:
//
//	p := player.New(player.DefaultConfig())
//	defer p.Release()
//
//	if err := p.LoadFromPath("song.xm"); err != nil {
//	    return err
//	}
//	states, cancel := p.StateChanges().Subscribe()
//	defer cancel()
//	_ = p.Play()
//	for st := range states {
//	    if st.Status == player.Stopped {
//	        break
//	    }
//	}
package player
