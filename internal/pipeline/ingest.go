package pipeline

import (
	"context"
	"fmt"
	"time"

	"github.com/Ufymau/newsdigest/internal/domain"
	"github.com/Ufymau/newsdigest/internal/enrich"
	"github.com/Ufymau/newsdigest/internal/logger"
	"github.com/Ufymau/newsdigest/pkg/feed"
	"github.com/Ufymau/newsdigest/pkg/sinks"
)

// IngestStore is the write surface ingestion needs from the news store.
type IngestStore interface {
	ExistingURLs(urls []string) (map[string]struct{}, error)
	InsertIgnoreConflict(item domain.NewsItem) (bool, error)
}

// Ingestor pulls the provider's current item list, keeps today's unseen
// items and inserts them with their English copy.
type Ingestor struct {
	feed     feed.Gateway
	store    IngestStore
	enricher *enrich.Enricher
	sinks    []sinks.Sink
	log      logger.Logger
	now      func() time.Time
}

// NewIngestor builds an Ingestor. Enricher and sinks are optional; a nil
// clock defaults to time.Now.
func NewIngestor(gw feed.Gateway, store IngestStore, enricher *enrich.Enricher, eventSinks []sinks.Sink, log logger.Logger, now func() time.Time) *Ingestor {
	if log == nil {
		log = logger.NopLogger{}
	}
	if now == nil {
		now = time.Now
	}
	return &Ingestor{
		feed:     gw,
		store:    store,
		enricher: enricher,
		sinks:    eventSinks,
		log:      log,
		now:      now,
	}
}

// Ingest fetches the feed and inserts today's unseen items, returning
// how many rows were written. A fetch failure aborts the run; the next
// scheduled run is the retry.
func (i *Ingestor) Ingest(ctx context.Context) (int, error) {
	fetched, err := i.feed.FetchToday(ctx)
	if err != nil {
		return 0, fmt.Errorf("ingest: %w", err)
	}

	now := i.now().UTC()
	today := now.Truncate(24 * time.Hour)

	urls := make([]string, 0, len(fetched))
	for _, raw := range fetched {
		if raw.URL != "" {
			urls = append(urls, raw.URL)
		}
	}
	existing, err := i.store.ExistingURLs(urls)
	if err != nil {
		return 0, fmt.Errorf("ingest: %w", err)
	}

	var fresh []domain.NewsItem
	for _, raw := range fetched {
		if raw.URL == "" {
			i.log.WarnObj("feed item has no url, skipping", "ingest_empty_url", nil)
			continue
		}
		if _, seen := existing[raw.URL]; seen {
			continue
		}

		createdAt, ok := i.resolveCreatedAt(raw, now)
		if !ok {
			continue
		}
		if !createdAt.UTC().Truncate(24 * time.Hour).Equal(today) {
			continue
		}

		fresh = append(fresh, domain.NewsItem{
			URL:       raw.URL,
			Thumbnail: raw.Thumbnail,
			CreatedAt: createdAt,
			Content: map[string]domain.Localized{
				"en": {Title: raw.Title, Description: raw.Description},
			},
		})
	}

	i.log.InfoObj("feed fetched", "ingest_fetched", map[string]any{
		"received": len(fetched),
		"fresh":    len(fresh),
	})

	if i.enricher != nil && len(fresh) > 0 {
		fresh = i.enricher.Fill(ctx, fresh)
	}

	inserted := 0
	for _, item := range fresh {
		ok, err := i.store.InsertIgnoreConflict(item)
		if err != nil {
			return inserted, fmt.Errorf("ingest: %w", err)
		}
		if !ok {
			continue
		}
		inserted++

		if len(i.sinks) > 0 {
			en := item.English()
			sinks.Broadcast(ctx, i.sinks, sinks.Event{
				URL:         item.URL,
				Title:       en.Title,
				Description: en.Description,
				Thumbnail:   item.Thumbnail,
				CreatedAt:   item.CreatedAt,
				IngestedAt:  now,
			}, i.log)
		}
	}

	i.log.InfoObj("ingest finished", "ingest_done", map[string]any{
		"inserted": inserted,
	})
	return inserted, nil
}

// resolveCreatedAt parses the provider timestamp. A missing timestamp
// falls back to ingestion time; an unparseable one drops the item.
func (i *Ingestor) resolveCreatedAt(raw feed.Item, now time.Time) (time.Time, bool) {
	if raw.CreatedAt == "" {
		return now, true
	}

	createdAt, err := feed.ParseCreatedAt(raw.CreatedAt)
	if err != nil {
		i.log.WarnObj("unparseable feed timestamp, dropping item", "ingest_bad_timestamp", map[string]any{
			"url":        raw.URL,
			"created_at": raw.CreatedAt,
		})
		return time.Time{}, false
	}
	return createdAt, true
}
