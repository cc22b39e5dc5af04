package pipeline

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/Ufymau/newsdigest/internal/domain"
	"github.com/Ufymau/newsdigest/pkg/feed"
)

// TestRunDigestEndToEnd drives a full run against the real store: one
// fresh feed item is ingested, translated and delivered to a French
// subscriber as a single formatted message.
func TestRunDigestEndToEnd(t *testing.T) {
	now := time.Date(2025, 8, 31, 12, 0, 0, 0, time.UTC)
	clock := func() time.Time { return now }
	st := openTestStore(t)

	require.NoError(t, st.UpsertSubscriber(domain.Subscriber{
		ID:            42,
		LanguageCode:  "fr",
		ContentChoice: domain.ChoiceAll,
	}))

	gw := &stubFeed{items: []feed.Item{
		{
			URL:         "https://news.example/story",
			Title:       "Foo",
			Description: "Bar baz",
			CreatedAt:   "Sun, 31 Aug 2025 10:00:00 +0000",
		},
	}}

	ch := newRecordingChannel()
	ingestor := NewIngestor(gw, st, nil, nil, nil, clock)
	filler := NewFiller(st, &stubTranslator{}, []string{"fr"}, nil)
	deliverer := NewDeliverer(st, NewQuerier(st, clock), ch, 4, DefaultMaxMessageLen, DefaultSeparatorLen, nil)

	New(ingestor, filler, deliverer, nil).RunDigest(context.Background())

	msgs := ch.messages(42)
	require.Len(t, msgs, 1)
	require.Contains(t, msgs[0], "fr:Bar baz [[lien](https://news.example/story)]")
}

// TestRunDigestDeliversDespiteDeadFeed: a failed fetch must not stop
// delivery of what earlier runs stored.
func TestRunDigestDeliversDespiteDeadFeed(t *testing.T) {
	now := time.Date(2025, 8, 31, 12, 0, 0, 0, time.UTC)
	clock := func() time.Time { return now }
	st := openTestStore(t)

	_, err := st.InsertIgnoreConflict(domain.NewsItem{
		URL:       "https://news.example/earlier",
		CreatedAt: now.Add(-2 * time.Hour),
		Content: map[string]domain.Localized{
			"en": {Title: "Earlier", Description: "Stored this morning"},
		},
	})
	require.NoError(t, err)

	require.NoError(t, st.UpsertSubscriber(domain.Subscriber{
		ID:            42,
		LanguageCode:  "en",
		ContentChoice: domain.ChoiceAll,
	}))

	ch := newRecordingChannel()
	ingestor := NewIngestor(&stubFeed{err: context.DeadlineExceeded}, st, nil, nil, nil, clock)
	filler := NewFiller(st, &stubTranslator{}, nil, nil)
	deliverer := NewDeliverer(st, NewQuerier(st, clock), ch, 4, DefaultMaxMessageLen, DefaultSeparatorLen, nil)

	New(ingestor, filler, deliverer, nil).RunDigest(context.Background())

	msgs := ch.messages(42)
	require.Len(t, msgs, 1)
	require.Contains(t, msgs[0], "Stored this morning")
}
