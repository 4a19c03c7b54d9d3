package mirrorstate

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	bolt "go.etcd.io/bbolt"
)

var winsBucket = []byte("mirror_wins")

// Store remembers the mirror host that last served each source, keyed by the
// source's group::name identity. It is an ordering hint for the next run's
// candidate list, nothing more: losing or deleting the file only costs the
// preferred-first ordering.
type Store struct {
	db *bolt.DB
}

// Open opens (or creates) the state database at path.
func Open(path string) (*Store, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("create state dir: %w", err)
	}

	db, err := bolt.Open(path, 0o600, &bolt.Options{Timeout: time.Second})
	if err != nil {
		return nil, fmt.Errorf("open mirror state: %w", err)
	}

	err = db.Update(func(tx *bolt.Tx) error {
		_, berr := tx.CreateBucketIfNotExists(winsBucket)
		return berr
	})
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("init mirror state: %w", err)
	}

	return &Store{db: db}, nil
}

// Close releases the underlying database.
func (s *Store) Close() error {
	return s.db.Close()
}

// LastGoodHost returns the host that last succeeded for the source key, or
// empty when none is recorded.
func (s *Store) LastGoodHost(sourceKey string) string {
	var host string
	_ = s.db.View(func(tx *bolt.Tx) error {
		if v := tx.Bucket(winsBucket).Get([]byte(sourceKey)); v != nil {
			host = string(v)
		}
		return nil
	})
	return host
}

// RecordWin stores the host that just served the source key.
func (s *Store) RecordWin(sourceKey, host string) error {
	if sourceKey == "" || host == "" {
		return nil
	}
	return s.db.Update(func(tx *bolt.Tx) error {
		return tx.Bucket(winsBucket).Put([]byte(sourceKey), []byte(host))
	})
}
