package forkserver

import (
	"os"
	"strings"
)

// ResetEnvironment replaces the process environment wholly with env (a
// "KEY=VALUE" slice as produced by options.MergeEnv), run once at spawner
// startup before any preload or spawn request.
func ResetEnvironment(env []string) error {
	os.Clearenv()
	for _, kv := range env {
		k, v, ok := strings.Cut(kv, "=")
		if !ok {
			continue
		}
		if err := os.Setenv(k, v); err != nil {
			return err
		}
	}
	return nil
}
