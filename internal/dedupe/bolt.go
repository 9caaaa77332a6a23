// Package dedupe tracks processed event ids so at-least-once delivery does
// not double-apply seat arithmetic, which is not idempotent on its own.
package dedupe

import (
	"time"

	bolt "github.com/boltdb/bolt"
)

const bucketName = "processed_events"

// Store is a BoltDB-backed set of processed event ids. A single local file
// suffices because each consumer group member commits its own offsets.
type Store struct {
	db *bolt.DB
}

func Open(path string) (*Store, error) {
	db, err := bolt.Open(path, 0600, &bolt.Options{Timeout: 1 * time.Second})
	if err != nil {
		return nil, err
	}

	err = db.Update(func(tx *bolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists([]byte(bucketName))
		return err
	})
	if err != nil {
		db.Close()
		return nil, err
	}

	return &Store{db: db}, nil
}

// MarkProcessed records the event id and reports whether this was its first
// delivery. Repeat deliveries return false without writing.
func (s *Store) MarkProcessed(eventID string) (bool, error) {
	first := false
	err := s.db.Update(func(tx *bolt.Tx) error {
		b := tx.Bucket([]byte(bucketName))
		if b.Get([]byte(eventID)) != nil {
			return nil
		}
		first = true
		return b.Put([]byte(eventID), []byte(time.Now().UTC().Format(time.RFC3339)))
	})
	if err != nil {
		return false, err
	}
	return first, nil
}

func (s *Store) Close() error {
	return s.db.Close()
}
