package protocol

import "errors"

// ErrEOF means the peer closed the control socket cleanly between frames —
// an orderly shutdown, not a protocol violation, when it happens at a frame
// boundary.
var ErrEOF = errors.New("protocol: eof")

// ErrProtocol means a frame was malformed: a short read at the wrong place,
// an unparsable control message, or an fd count that isn't 0 or MaxFds.
// There is no resync story — the caller poisons its handle.
var ErrProtocol = errors.New("protocol: malformed frame")

// StatusCode is the single byte a SPAWN_REPLY opens with. Zero means the
// spawn succeeded; any other value identifies why the spawner could not
// hand back a child.
type StatusCode byte

const (
	// StatusOK means the reply carries a pid and three fds.
	StatusOK StatusCode = 0

	// StatusForkFailed means clone(2) failed in the spawner (ENOMEM, EAGAIN,
	// ...). Non-poisoning: the caller may retry the next spawn.
	StatusForkFailed StatusCode = 1

	// StatusDecodeFailed means the spawner could not decode the SpawnRequest
	// payload it was handed. The handle is poisoned by the caller on receipt,
	// since the control channel's framing discipline has no resync story.
	StatusDecodeFailed StatusCode = 2
)

// String renders a status code for log lines and error messages.
func (s StatusCode) String() string {
	switch s {
	case StatusOK:
		return "ok"
	case StatusForkFailed:
		return "fork_failed"
	case StatusDecodeFailed:
		return "decode_failed"
	default:
		return "unknown"
	}
}
