// SPDX-License-Identifier: EPL-2.0

// Package control exposes a player over a line-oriented text protocol.
//
// Every request is one line, a verb followed by an optional argument:
//
//	PING                 -> PONG
//	WHOAMI               -> OWNER | OBSERVER
//	STATUS               -> {"status":"playing","position":12.3,...}
//	INFO                 -> Order: 3 | Pattern: 7 | Row: 12
//	META                 -> {"title":"...","type":"xm",...}
//	QUIT                 -> BYE, then the connection is closed
//	LOAD <path>          -> OK | ERR <reason>
//	PLAY, PAUSE, TOGGLE, STOP, RELEASE
//	SEEK <seconds>, SPEED <factor>, PITCH <factor>
//	GAIN <db>, SEP <percent>, REPEAT <count|on|off>
//
// Read-only verbs work for every connection. The first connection to send
// a mutating verb becomes the owner until it disconnects; the others get
// "ERR CONTROL_LOCKED". The owner also receives unsolicited
// "EVENT {json}" lines whenever the playback state changes.
package control
