// SPDX-License-Identifier: EPL-2.0

package player

import "fmt"

// Status is the playback state without its payload.
type Status int

const (
	Idle Status = iota
	Loading
	Loaded
	Playing
	Paused
	Stopped
	Error
)

func (s Status) String() string {
	switch s {
	case Idle:
		return "idle"
	case Loading:
		return "loading"
	case Loaded:
		return "loaded"
	case Playing:
		return "playing"
	case Paused:
		return "paused"
	case Stopped:
		return "stopped"
	case Error:
		return "error"
	default:
		return fmt.Sprintf("Status(%d)", int(s))
	}
}

// State is one playback state. Metadata is set for Loaded; Message and
// Err are set for Error.
type State struct {
	Status   Status
	Metadata *Metadata
	Message  string
	Err      error
}

func (s State) String() string {
	switch s.Status {
	case Loaded:
		if s.Metadata != nil && s.Metadata.Title != "" {
			return fmt.Sprintf("loaded %q", s.Metadata.Title)
		}
	case Error:
		if s.Err != nil {
			return fmt.Sprintf("error: %s: %v", s.Message, s.Err)
		}
		return "error: " + s.Message
	}
	return s.Status.String()
}

// CanPlay reports whether Play is accepted from s.
func (s Status) CanPlay() bool {
	return s == Loaded || s == Paused || s == Stopped
}

// Allowed reports whether the state machine may move from one status to
// another.
func Allowed(from, to Status) bool {
	switch to {
	case Idle, Stopped:
		return true
	case Loading:
		return from != Loading
	case Loaded:
		return from == Loading
	case Playing:
		return from.CanPlay()
	case Paused:
		return from == Playing
	case Error:
		return from == Loading || from == Playing || from.CanPlay()
	default:
		return false
	}
}
