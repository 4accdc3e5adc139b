// SPDX-License-Identifier: EPL-2.0

package decoder

// Metadata keys understood by Handle.Metadata.
const (
	KeyTitle    = "title"
	KeyArtist   = "artist"
	KeyType     = "type"
	KeyTypeLong = "type_long"
	KeyTracker  = "tracker"
	KeyMessage  = "message"
)

// Ctl keys for Handle.SetCtlFloat.
const (
	CtlTempoFactor = "play.tempo_factor"
	CtlPitchFactor = "play.pitch_factor"
)

// RenderParam selects a render parameter for Handle.SetRenderParam.
type RenderParam int

const (
	// MasterGainMillibel is the output gain in 1/100 dB.
	MasterGainMillibel RenderParam = iota + 1
	// StereoSeparationPercent is the stereo width, 0 (mono) to 200.
	StereoSeparationPercent
)

func (p RenderParam) String() string {
	switch p {
	case MasterGainMillibel:
		return "master_gain_millibel"
	case StereoSeparationPercent:
		return "stereo_separation_percent"
	default:
		return "unknown"
	}
}

// Repeat counts for Handle.SetRepeatCount.
const (
	RepeatForever = -1
	RepeatNone    = 0
)

// Handle is one loaded module inside a decoder backend.
type Handle interface {
	// ReadInterleavedStereo renders up to len(dst)/2 frames at sampleRate
	// into dst and returns the number of frames written. Zero means the
	// module ended.
	ReadInterleavedStereo(sampleRate int, dst []float32) (frames int, err error)

	// Position in seconds.
	Position() float64
	// SetPosition seeks and returns the position actually reached.
	SetPosition(seconds float64) (float64, error)
	// Duration of one pass through the module in seconds.
	Duration() float64

	// Metadata returns the value for key, or "" when unknown.
	Metadata(key string) string

	CurrentOrder() int
	CurrentPattern() int
	CurrentRow() int

	NumChannels() int
	NumPatterns() int
	NumOrders() int
	NumInstruments() int
	NumSamples() int

	SetRepeatCount(n int) error
	RepeatCount() int

	SetRenderParam(p RenderParam, value int) error
	RenderParam(p RenderParam) (int, error)

	SetCtlFloat(key string, value float64) error
	CtlFloat(key string) (float64, error)

	// Close destroys the handle. Calling it more than once is harmless.
	Close() error
}

// Backend creates handles from module bytes.
type Backend interface {
	// Name identifies the backend in logs.
	Name() string
	// Extensions lists the lower-case file extensions the backend claims.
	Extensions() []string
	// Open loads a module. name is only a hint (file name or extension).
	Open(name string, data []byte) (Handle, error)
}
