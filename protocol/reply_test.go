package protocol

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestSpawnReplyEncodeDecodeOK(t *testing.T) {
	reply := SpawnReply{Status: StatusOK, Pid: 12345}
	decoded, err := DecodeSpawnReply(reply.Encode())
	require.NoError(t, err)
	require.Equal(t, reply, decoded)
}

func TestSpawnReplyEncodeDecodeError(t *testing.T) {
	reply := SpawnReply{Status: StatusForkFailed}
	encoded := reply.Encode()
	require.Len(t, encoded, 1)

	decoded, err := DecodeSpawnReply(encoded)
	require.NoError(t, err)
	require.Equal(t, StatusForkFailed, decoded.Status)
	require.Zero(t, decoded.Pid)
}

func TestDecodeSpawnReplyTruncatedPid(t *testing.T) {
	_, err := DecodeSpawnReply([]byte{byte(StatusOK), 1, 2})
	require.ErrorIs(t, err, ErrProtocol)
}

func TestDecodeSpawnReplyEmpty(t *testing.T) {
	_, err := DecodeSpawnReply(nil)
	require.ErrorIs(t, err, ErrProtocol)
}

func TestStatusCodeString(t *testing.T) {
	require.Equal(t, "ok", StatusOK.String())
	require.Equal(t, "fork_failed", StatusForkFailed.String())
	require.Equal(t, "decode_failed", StatusDecodeFailed.String())
	require.Equal(t, "unknown", StatusCode(200).String())
}
