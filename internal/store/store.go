package store

import (
	"fmt"
	"time"

	"go.etcd.io/bbolt"

	"github.com/Ufymau/newsdigest/internal/logger"
)

var (
	newsBucket       = []byte("news")
	subscriberBucket = []byte("subscribers")
)

// Store owns the bbolt handle shared by the news and subscriber
// collections. Every operation runs inside its own scoped transaction;
// nothing holds the database open across network calls.
type Store struct {
	db  *bbolt.DB
	log logger.Logger
}

// Open opens (or creates) the database file and ensures both buckets
// exist.
func Open(path string, log logger.Logger) (*Store, error) {
	if log == nil {
		log = logger.NopLogger{}
	}

	db, err := bbolt.Open(path, 0o600, &bbolt.Options{Timeout: time.Second})
	if err != nil {
		return nil, fmt.Errorf("open store %s: %w", path, err)
	}

	err = db.Update(func(tx *bbolt.Tx) error {
		for _, name := range [][]byte{newsBucket, subscriberBucket} {
			if _, err := tx.CreateBucketIfNotExists(name); err != nil {
				return fmt.Errorf("create bucket %s: %w", name, err)
			}
		}
		return nil
	})
	if err != nil {
		db.Close()
		return nil, err
	}

	return &Store{db: db, log: log}, nil
}

// Close releases the underlying database file.
func (s *Store) Close() error {
	return s.db.Close()
}
