//go:build linux

package protocol

import (
	"encoding/binary"
	"errors"
	"fmt"

	"golang.org/x/sys/unix"
)

// MaxFds is the number of file descriptors a SPAWN_REPLY ever carries. A
// frame carrying any fd count other than 0 or MaxFds is a protocol error
// (see readFrame).
const MaxFds = 3

// MaxFrameLen bounds the length prefix against a malformed or hostile peer;
// no legitimate SpawnRequest/SpawnReply approaches this size.
const MaxFrameLen = 16 << 20

// WriteFrame writes a u32-little-endian length prefix followed by payload on
// fd, looping over short writes.
func WriteFrame(fd int, payload []byte) error {
	var hdr [4]byte
	binary.LittleEndian.PutUint32(hdr[:], uint32(len(payload)))
	if err := writeAll(fd, hdr[:]); err != nil {
		return fmt.Errorf("write frame length: %w", err)
	}
	if err := writeAll(fd, payload); err != nil {
		return fmt.Errorf("write frame payload: %w", err)
	}
	return nil
}

// WriteFrameWithFds behaves like WriteFrame but additionally passes rights
// to the first byte written (and only that byte) via SCM_RIGHTS ancillary
// data, as required for a SPAWN_REPLY carrying stdio.
func WriteFrameWithFds(fd int, payload []byte, rights []int) error {
	if len(rights) != 0 && len(rights) != MaxFds {
		return fmt.Errorf("protocol: passing %d fds, want 0 or %d", len(rights), MaxFds)
	}

	var hdr [4]byte
	binary.LittleEndian.PutUint32(hdr[:], uint32(len(payload)))

	oob := unix.UnixRights(rights...)
	if err := sendmsgAll(fd, hdr[:], oob); err != nil {
		return fmt.Errorf("sendmsg frame length+rights: %w", err)
	}
	if err := writeAll(fd, payload); err != nil {
		return fmt.Errorf("write frame payload: %w", err)
	}
	return nil
}

// ReadFrame performs exactly one length read followed by a payload read
// (looping on short reads). It never passes or expects fds.
func ReadFrame(fd int) ([]byte, error) {
	payload, _, err := readFrame(fd, false)
	return payload, err
}

// ReadFrameWithFds reads one frame and expects exactly MaxFds file
// descriptors to accompany the first recvmsg, as a SPAWN_REPLY does on
// success. Returns ErrProtocol if the fd count observed is neither 0 nor
// MaxFds (0 is valid: an error reply carries no fds).
func ReadFrameWithFds(fd int) ([]byte, []int, error) {
	return readFrame(fd, true)
}

func readFrame(fd int, wantFds bool) ([]byte, []int, error) {
	var hdr [4]byte
	var fds []int

	if wantFds {
		oob := make([]byte, unix.CmsgSpace(4*MaxFds))
		n, oobn, _, _, err := unix.Recvmsg(fd, hdr[:], oob, 0)
		if err != nil {
			return nil, nil, fmt.Errorf("recvmsg frame length: %w", err)
		}
		if n == 0 {
			return nil, nil, ErrEOF
		}
		if n < len(hdr) {
			if err := readAllInto(fd, hdr[n:]); err != nil {
				if errors.Is(err, ErrEOF) {
					err = fmt.Errorf("%w: eof inside frame length", ErrProtocol)
				}
				return nil, nil, err
			}
		}
		if oobn > 0 {
			fds, err = parseRights(oob[:oobn])
			if err != nil {
				return nil, nil, err
			}
			if len(fds) != 0 && len(fds) != MaxFds {
				return nil, nil, fmt.Errorf("%w: got %d fds, want 0 or %d", ErrProtocol, len(fds), MaxFds)
			}
		}
	} else {
		if err := readAll(fd, hdr[:]); err != nil {
			return nil, nil, err
		}
	}

	length := binary.LittleEndian.Uint32(hdr[:])
	if length > MaxFrameLen {
		return nil, fds, fmt.Errorf("%w: frame length %d exceeds maximum", ErrProtocol, length)
	}

	payload := make([]byte, length)
	if length > 0 {
		if err := readAll(fd, payload); err != nil {
			if errors.Is(err, ErrEOF) {
				err = fmt.Errorf("%w: eof inside frame payload", ErrProtocol)
			}
			return nil, fds, err
		}
	}
	return payload, fds, nil
}

func parseRights(oob []byte) ([]int, error) {
	msgs, err := unix.ParseSocketControlMessage(oob)
	if err != nil {
		return nil, fmt.Errorf("%w: parse control message: %v", ErrProtocol, err)
	}
	var fds []int
	for _, m := range msgs {
		rights, err := unix.ParseUnixRights(&m)
		if err != nil {
			return nil, fmt.Errorf("%w: parse unix rights: %v", ErrProtocol, err)
		}
		fds = append(fds, rights...)
	}
	return fds, nil
}

func writeAll(fd int, buf []byte) error {
	for len(buf) > 0 {
		n, err := unix.Write(fd, buf)
		if err != nil {
			if err == unix.EINTR {
				continue
			}
			return err
		}
		buf = buf[n:]
	}
	return nil
}

func sendmsgAll(fd int, p, oob []byte) error {
	// The ancillary data must ride along with the first byte of the frame;
	// a single Sendmsg call carries both.
	if err := unix.Sendmsg(fd, p, oob, nil, 0); err != nil {
		return err
	}
	return nil
}

func readAll(fd int, buf []byte) error {
	total := len(buf)
	for len(buf) > 0 {
		n, err := unix.Read(fd, buf)
		if err != nil {
			if err == unix.EINTR {
				continue
			}
			return err
		}
		if n == 0 {
			if len(buf) < total {
				return fmt.Errorf("%w: eof inside frame", ErrProtocol)
			}
			return ErrEOF
		}
		buf = buf[n:]
	}
	return nil
}

func readAllInto(fd int, buf []byte) error {
	return readAll(fd, buf)
}
