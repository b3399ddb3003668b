//go:build linux

package net

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	bolt "go.etcd.io/bbolt"
)

const (
	ledgerDefaultDBPath = "/var/run/spawnbox/veth.db"
	ledgerBucket        = "veth_names"
)

// Ledger persists kernel_veth_name -> pid allocations (SetupVeth records the
// reserving subspawner's own pid) so that two
// concurrent spawner processes on the same host never collide on a
// host-side interface name. Addresses are always caller-supplied here, so
// the only thing worth serializing across processes is name uniqueness,
// not address assignment.
type Ledger struct {
	dbPath string
}

// OpenLedger returns a Ledger backed by a bbolt file at path, or the default
// path under /var/run/spawnbox if path is empty.
func OpenLedger(path string) *Ledger {
	if path == "" {
		path = ledgerDefaultDBPath
	}
	return &Ledger{dbPath: path}
}

// Reserve claims name for pid, failing if another live pid already holds it.
// A name held by a pid that no longer exists is reclaimed automatically.
func (l *Ledger) Reserve(name string, pid int) error {
	if err := os.MkdirAll(filepath.Dir(l.dbPath), 0o755); err != nil {
		return fmt.Errorf("ledger: mkdir: %w", err)
	}
	return l.withDB(func(db *bolt.DB) error {
		return db.Update(func(tx *bolt.Tx) error {
			bkt, err := tx.CreateBucketIfNotExists([]byte(ledgerBucket))
			if err != nil {
				return err
			}
			if v := bkt.Get([]byte(name)); v != nil {
				holder := decodePid(v)
				if holder != pid && processAlive(holder) {
					return fmt.Errorf("veth name %q already held by pid %d", name, holder)
				}
			}
			return bkt.Put([]byte(name), encodePid(pid))
		})
	})
}

// Release frees name. Safe to call multiple times.
func (l *Ledger) Release(name string) error {
	return l.withDB(func(db *bolt.DB) error {
		return db.Update(func(tx *bolt.Tx) error {
			bkt := tx.Bucket([]byte(ledgerBucket))
			if bkt == nil {
				return nil
			}
			return bkt.Delete([]byte(name))
		})
	})
}

func (l *Ledger) withDB(f func(*bolt.DB) error) error {
	db, err := bolt.Open(l.dbPath, 0o600, &bolt.Options{Timeout: 2 * time.Second})
	if err != nil {
		return fmt.Errorf("ledger: open %s: %w", l.dbPath, err)
	}
	defer func() {
		_ = db.Close()
	}()
	return f(db)
}

func encodePid(pid int) []byte {
	return []byte(fmt.Sprintf("%d", pid))
}

func decodePid(b []byte) int {
	var pid int
	_, _ = fmt.Sscanf(string(b), "%d", &pid)
	return pid
}

func processAlive(pid int) bool {
	if pid <= 0 {
		return false
	}
	_, err := os.Stat(fmt.Sprintf("/proc/%d", pid))
	return err == nil
}
