package store

import (
	"encoding/json"
	"fmt"
	"sort"
	"time"

	"go.etcd.io/bbolt"

	"github.com/Ufymau/newsdigest/internal/domain"
)

// ExistingURLs returns the subset of the given URLs already present in
// the news collection, resolved inside a single read transaction.
func (s *Store) ExistingURLs(urls []string) (map[string]struct{}, error) {
	existing := make(map[string]struct{})

	err := s.db.View(func(tx *bbolt.Tx) error {
		b := tx.Bucket(newsBucket)
		for _, u := range urls {
			if b.Get([]byte(u)) != nil {
				existing[u] = struct{}{}
			}
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("check existing urls: %w", err)
	}
	return existing, nil
}

// InsertIgnoreConflict stores the item unless its URL is already present.
// It reports whether a row was written; a duplicate URL is a silent no-op,
// which makes URL uniqueness the correctness backstop for racing runs.
func (s *Store) InsertIgnoreConflict(item domain.NewsItem) (bool, error) {
	if item.URL == "" {
		return false, fmt.Errorf("news item has empty url")
	}

	inserted := false
	err := s.db.Update(func(tx *bbolt.Tx) error {
		b := tx.Bucket(newsBucket)
		key := []byte(item.URL)
		if b.Get(key) != nil {
			return nil
		}

		raw, err := json.Marshal(item)
		if err != nil {
			return fmt.Errorf("encode news item: %w", err)
		}
		if err := b.Put(key, raw); err != nil {
			return fmt.Errorf("put news item: %w", err)
		}
		inserted = true
		return nil
	})
	if err != nil {
		return false, fmt.Errorf("insert %s: %w", item.URL, err)
	}
	return inserted, nil
}

// MissingTranslation returns every item whose title for the given
// language is still empty. Items already filled are never selected
// again, so a rerun with nothing to do returns an empty slice.
func (s *Store) MissingTranslation(target string) ([]domain.NewsItem, error) {
	var items []domain.NewsItem

	err := s.db.View(func(tx *bbolt.Tx) error {
		return tx.Bucket(newsBucket).ForEach(func(_, raw []byte) error {
			var item domain.NewsItem
			if err := json.Unmarshal(raw, &item); err != nil {
				return fmt.Errorf("decode news item: %w", err)
			}
			if !item.HasTranslation(target) {
				items = append(items, item)
			}
			return nil
		})
	})
	if err != nil {
		return nil, fmt.Errorf("select missing %s translations: %w", target, err)
	}
	return items, nil
}

// UpdateTranslation fills the localized copy for one item and language.
// A missing URL is not an error: the item may have been created by a
// newer run than the one that selected it.
func (s *Store) UpdateTranslation(url, target, title, description string) error {
	err := s.db.Update(func(tx *bbolt.Tx) error {
		b := tx.Bucket(newsBucket)
		key := []byte(url)
		raw := b.Get(key)
		if raw == nil {
			return nil
		}

		var item domain.NewsItem
		if err := json.Unmarshal(raw, &item); err != nil {
			return fmt.Errorf("decode news item: %w", err)
		}
		if item.Content == nil {
			item.Content = make(map[string]domain.Localized)
		}
		item.Content[target] = domain.Localized{Title: title, Description: description}

		updated, err := json.Marshal(item)
		if err != nil {
			return fmt.Errorf("encode news item: %w", err)
		}
		return b.Put(key, updated)
	})
	if err != nil {
		return fmt.Errorf("update %s translation for %s: %w", target, url, err)
	}
	return nil
}

// CreatedToday returns the items created within the UTC calendar day of
// the given instant, newest first.
func (s *Store) CreatedToday(now time.Time) ([]domain.NewsItem, error) {
	dayStart := now.UTC().Truncate(24 * time.Hour)
	dayEnd := dayStart.Add(24 * time.Hour)

	var items []domain.NewsItem
	err := s.db.View(func(tx *bbolt.Tx) error {
		return tx.Bucket(newsBucket).ForEach(func(_, raw []byte) error {
			var item domain.NewsItem
			if err := json.Unmarshal(raw, &item); err != nil {
				return fmt.Errorf("decode news item: %w", err)
			}
			created := item.CreatedAt.UTC()
			if created.Before(dayStart) || !created.Before(dayEnd) {
				return nil
			}
			items = append(items, item)
			return nil
		})
	})
	if err != nil {
		return nil, fmt.Errorf("select today's items: %w", err)
	}

	sort.Slice(items, func(i, j int) bool {
		return items[i].CreatedAt.After(items[j].CreatedAt)
	})
	return items, nil
}
