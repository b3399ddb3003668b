package client

import "errors"

// StartupError means the spawner failed before accepting any request:
// preload failure, missing capabilities, kernel feature absent. Spawn
// returns it whenever the control socket hits EOF where a reply frame was
// expected; it does not tell an EOF before the first reply apart from one
// after earlier successful spawns.
var ErrStartup = errors.New("client: spawner failed to start")

// ErrPoisoned means a prior ProtocolError or TransportError was observed on
// this handle; per the invariants, once poisoned all further operations
// fail without attempting I/O.
var ErrPoisoned = errors.New("client: handle is poisoned")

// SpawnForkError means fork/clone failed in the spawner (ENOMEM, EAGAIN).
// Non-poisoning: the next spawn on this handle may still succeed.
var ErrSpawnFork = errors.New("client: spawner fork failed")
