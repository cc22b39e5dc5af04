package store

import (
	"encoding/json"
	"fmt"
	"strconv"

	"go.etcd.io/bbolt"

	"github.com/Ufymau/newsdigest/internal/domain"
)

func subscriberKey(id int64) []byte {
	return []byte(strconv.FormatInt(id, 10))
}

// UpsertSubscriber creates or replaces a subscriber record. The chat
// front-end calls this whenever a subscriber changes language or
// content preference.
func (s *Store) UpsertSubscriber(sub domain.Subscriber) error {
	if sub.ID == 0 {
		return fmt.Errorf("subscriber has no id")
	}

	raw, err := json.Marshal(sub)
	if err != nil {
		return fmt.Errorf("encode subscriber %d: %w", sub.ID, err)
	}

	err = s.db.Update(func(tx *bbolt.Tx) error {
		return tx.Bucket(subscriberBucket).Put(subscriberKey(sub.ID), raw)
	})
	if err != nil {
		return fmt.Errorf("upsert subscriber %d: %w", sub.ID, err)
	}
	return nil
}

// Subscriber returns one record by id; ok is false when the id is
// unknown, which callers map to defaults rather than an error.
func (s *Store) Subscriber(id int64) (domain.Subscriber, bool, error) {
	var sub domain.Subscriber
	found := false

	err := s.db.View(func(tx *bbolt.Tx) error {
		raw := tx.Bucket(subscriberBucket).Get(subscriberKey(id))
		if raw == nil {
			return nil
		}
		if err := json.Unmarshal(raw, &sub); err != nil {
			return fmt.Errorf("decode subscriber %d: %w", id, err)
		}
		found = true
		return nil
	})
	if err != nil {
		return domain.Subscriber{}, false, err
	}
	return sub, found, nil
}

// ListSubscribers returns every subscriber record.
func (s *Store) ListSubscribers() ([]domain.Subscriber, error) {
	var subs []domain.Subscriber

	err := s.db.View(func(tx *bbolt.Tx) error {
		return tx.Bucket(subscriberBucket).ForEach(func(_, raw []byte) error {
			var sub domain.Subscriber
			if err := json.Unmarshal(raw, &sub); err != nil {
				return fmt.Errorf("decode subscriber: %w", err)
			}
			subs = append(subs, sub)
			return nil
		})
	})
	if err != nil {
		return nil, fmt.Errorf("list subscribers: %w", err)
	}
	return subs, nil
}
