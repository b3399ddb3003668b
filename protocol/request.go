package protocol

import (
	"encoding/binary"
	"fmt"

	"github.com/google/uuid"
)

// SpawnRequest is the SPAWN frame payload: an ordered sequence of opaque
// args the spawner does not inspect, a process title, and the sandbox
// policy to apply before the entry point runs.
type SpawnRequest struct {
	// ID correlates one spawn across the parent, spawner and subspawner's
	// log lines; it never crosses into sandbox policy.
	ID uuid.UUID

	ProcessName   string
	SandboxConfig SandboxConfig
	Args          [][]byte
}

// Encode serializes a SpawnRequest into the SPAWN payload: the 16-byte ID,
// process_name (length-prefixed UTF-8), sandbox_config (fixed fields, then
// the network tag byte and any network fields), args (count-prefixed
// sequence of length-prefixed opaque blobs).
func (r SpawnRequest) Encode() []byte {
	buf := make([]byte, 0, 64+len(r.ProcessName))
	buf = append(buf, r.ID[:]...)
	buf = encodeString(buf, r.ProcessName)
	buf = r.SandboxConfig.encode(buf)

	var n [4]byte
	binary.LittleEndian.PutUint32(n[:], uint32(len(r.Args)))
	buf = append(buf, n[:]...)
	for _, a := range r.Args {
		binary.LittleEndian.PutUint32(n[:], uint32(len(a)))
		buf = append(buf, n[:]...)
		buf = append(buf, a...)
	}
	return buf
}

// DecodeSpawnRequest parses a SPAWN payload produced by Encode. Any
// truncation or malformed count is reported as ErrProtocol.
func DecodeSpawnRequest(buf []byte) (SpawnRequest, error) {
	var r SpawnRequest
	var err error

	if len(buf) < 16 {
		return r, fmt.Errorf("%w: truncated request id", ErrProtocol)
	}
	copy(r.ID[:], buf[:16])
	buf = buf[16:]

	if r.ProcessName, buf, err = decodeString(buf); err != nil {
		return r, err
	}
	if r.SandboxConfig, buf, err = decodeSandboxConfig(buf); err != nil {
		return r, err
	}

	if len(buf) < 4 {
		return r, fmt.Errorf("%w: truncated arg count", ErrProtocol)
	}
	count := binary.LittleEndian.Uint32(buf[:4])
	buf = buf[4:]
	if count > 1<<20 {
		return r, fmt.Errorf("%w: implausible arg count %d", ErrProtocol, count)
	}

	r.Args = make([][]byte, 0, count)
	for i := uint32(0); i < count; i++ {
		if len(buf) < 4 {
			return r, fmt.Errorf("%w: truncated arg %d length", ErrProtocol, i)
		}
		argLen := binary.LittleEndian.Uint32(buf[:4])
		buf = buf[4:]
		if uint64(argLen) > uint64(len(buf)) {
			return r, fmt.Errorf("%w: truncated arg %d body", ErrProtocol, i)
		}
		r.Args = append(r.Args, buf[:argLen])
		buf = buf[argLen:]
	}
	return r, nil
}
