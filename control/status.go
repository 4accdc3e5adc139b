// SPDX-License-Identifier: EPL-2.0

package control

import "github.com/ik5/modpbx/player"

// Status is the STATUS reply and the payload of state events.
type Status struct {
	Status   string  `json:"status"`
	Position float64 `json:"position"`
	Duration float64 `json:"duration"`
	Speed    float64 `json:"speed"`
	Pitch    float64 `json:"pitch"`
	Order    int     `json:"order"`
	Pattern  int     `json:"pattern"`
	Row      int     `json:"row"`
	Title    string  `json:"title,omitempty"`
	Message  string  `json:"message,omitempty"`
	Error    string  `json:"error,omitempty"`
}

// Event is sent to the owner as "EVENT {json}".
type Event struct {
	Type string `json:"type"`
	Status
}

func statusOf(p player.ModPlayer, st player.State) Status {
	s := Status{
		Status:   st.Status.String(),
		Position: p.PositionSeconds(),
		Duration: p.DurationSeconds(),
		Speed:    p.PlaybackSpeed(),
		Pitch:    p.Pitch(),
		Order:    p.CurrentOrder(),
		Pattern:  p.CurrentPattern(),
		Row:      p.CurrentRow(),
		Title:    p.Metadata().Title,
		Message:  st.Message,
	}
	if st.Err != nil {
		s.Error = st.Err.Error()
	}
	return s
}
