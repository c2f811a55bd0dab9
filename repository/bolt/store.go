// Package bolt implements the engine's repositories over a single bbolt file,
// for single-binary deployments and tests that should not need external stores.
package bolt

import (
	"os"
	"path/filepath"
	"time"

	boltdb "go.etcd.io/bbolt"
)

var (
	bucketActivities  = []byte("activities")
	bucketContents    = []byte("contents")
	bucketCollections = []byte("collections") // pending set, dismissals, badges
	bucketScores      = []byte("scores")
	bucketGuards      = []byte("guards")
	bucketSettings    = []byte("settings")
)

// Store wraps a bbolt database with the engine's buckets bootstrapped.
type Store struct {
	db *boltdb.DB
}

// Open initializes the bolt file and ensures all buckets exist.
func Open(path string) (*Store, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, err
	}
	db, err := boltdb.Open(path, 0o600, &boltdb.Options{Timeout: time.Second})
	if err != nil {
		return nil, err
	}

	buckets := [][]byte{
		bucketActivities,
		bucketContents,
		bucketCollections,
		bucketScores,
		bucketGuards,
		bucketSettings,
	}
	if err := db.Update(func(tx *boltdb.Tx) error {
		for _, name := range buckets {
			if _, err := tx.CreateBucketIfNotExists(name); err != nil {
				return err
			}
		}
		return nil
	}); err != nil {
		db.Close()
		return nil, err
	}

	return &Store{db: db}, nil
}

// Close closes the underlying database.
func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

// Stats exposes bolt statistics for monitoring endpoints.
func (s *Store) Stats() boltdb.Stats {
	if s == nil || s.db == nil {
		return boltdb.Stats{}
	}
	return s.db.Stats()
}

// Ping reports whether the store is usable.
func (s *Store) Ping() bool {
	return s != nil && s.db != nil
}

func (s *Store) getValue(bucket, key []byte) ([]byte, error) {
	if s == nil || s.db == nil {
		return nil, boltdb.ErrDatabaseNotOpen
	}
	var out []byte
	err := s.db.View(func(tx *boltdb.Tx) error {
		if v := tx.Bucket(bucket).Get(key); v != nil {
			out = append([]byte(nil), v...)
		}
		return nil
	})
	return out, err
}

func (s *Store) putValue(bucket, key, value []byte) error {
	if s == nil || s.db == nil {
		return boltdb.ErrDatabaseNotOpen
	}
	return s.db.Update(func(tx *boltdb.Tx) error {
		return tx.Bucket(bucket).Put(key, value)
	})
}

func (s *Store) deleteValue(bucket, key []byte) error {
	if s == nil || s.db == nil {
		return boltdb.ErrDatabaseNotOpen
	}
	return s.db.Update(func(tx *boltdb.Tx) error {
		return tx.Bucket(bucket).Delete(key)
	})
}
