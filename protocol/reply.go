package protocol

import (
	"encoding/binary"
	"fmt"
)

// SpawnReply is the SPAWN_REPLY frame payload: a status byte and, on
// success, the child's pid. The three stdio fds travel out of band via
// SCM_RIGHTS on the same frame (see ReadFrameWithFds/WriteFrameWithFds) and
// are not part of this struct's wire encoding.
type SpawnReply struct {
	Status StatusCode
	Pid    int32
}

// Encode serializes a SpawnReply as status (u8), then pid (i32) only
// when Status is StatusOK.
func (r SpawnReply) Encode() []byte {
	if r.Status != StatusOK {
		return []byte{byte(r.Status)}
	}
	buf := make([]byte, 5)
	buf[0] = byte(r.Status)
	binary.LittleEndian.PutUint32(buf[1:], uint32(r.Pid))
	return buf
}

// DecodeSpawnReply parses a SPAWN_REPLY payload.
func DecodeSpawnReply(buf []byte) (SpawnReply, error) {
	var r SpawnReply
	if len(buf) < 1 {
		return r, fmt.Errorf("%w: empty reply", ErrProtocol)
	}
	r.Status = StatusCode(buf[0])
	if r.Status != StatusOK {
		return r, nil
	}
	if len(buf) < 5 {
		return r, fmt.Errorf("%w: truncated reply pid", ErrProtocol)
	}
	r.Pid = int32(binary.LittleEndian.Uint32(buf[1:5]))
	return r, nil
}
