// SPDX-License-Identifier: EPL-2.0

// Package sink delivers rendered audio to an output.
//
// Two shapes implement the same Sink contract:
//
//   - PullSink runs its own goroutine: render a period, convert it to
//     16-bit PCM and write it to a blocking Device (a pipe, a WAV file, a
//     throttled writer). Position is reported at most every
//     PositionInterval.
//   - PushSink hands a Callback to an output that asks for audio when it
//     needs it (oto on desktop). The callback only touches preallocated
//     buffers and atomics; position, end-of-stream and errors travel over
//     a buffered channel to a dispatcher goroutine that calls Events.
//
// Events callbacks always run outside the real-time path, but may run on
// the sink's goroutine. They must not call back into the sink
// synchronously; hand the work to another goroutine instead.
//
// A Factory builds the sink for a renderer. Players call it on the first
// Play so that a missing device surfaces as an initialisation error rather
// than at construction time:
//
//	factory := sink.PullFactory(os.Stdout, 2048)
//	s, err := factory(renderer, sink.Events{OnEnd: onEnd})
package sink
