package pipeline

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/Ufymau/newsdigest/internal/domain"
	"github.com/Ufymau/newsdigest/internal/lang"
)

type stubSubscriberStore struct {
	subs []domain.Subscriber
	err  error
}

func (s *stubSubscriberStore) ListSubscribers() ([]domain.Subscriber, error) {
	return s.subs, s.err
}

// recordingChannel collects sent messages per subscriber and can be told
// to fail for specific subscriber IDs.
type recordingChannel struct {
	mu      sync.Mutex
	sent    map[int64][]string
	failFor map[int64]bool
}

func newRecordingChannel() *recordingChannel {
	return &recordingChannel{
		sent:    make(map[int64][]string),
		failFor: make(map[int64]bool),
	}
}

func (c *recordingChannel) Send(_ context.Context, subscriberID int64, text string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.failFor[subscriberID] {
		return errors.New("chat not found")
	}
	c.sent[subscriberID] = append(c.sent[subscriberID], text)
	return nil
}

func (c *recordingChannel) messages(id int64) []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.sent[id]
}

var deliveryClock = func() time.Time { return time.Date(2025, 8, 31, 12, 0, 0, 0, time.UTC) }

func deliveryQuerier(items ...domain.NewsItem) *Querier {
	return NewQuerier(&stubQueryStore{items: items}, deliveryClock)
}

func TestDeliverAllIsolatesFailures(t *testing.T) {
	item := newsItem("https://a.example/1", "One", "Bitcoin surges", deliveryClock(), nil)
	querier := deliveryQuerier(item)

	subs := &stubSubscriberStore{subs: []domain.Subscriber{
		{ID: 1, LanguageCode: "en", ContentChoice: domain.ChoiceAll},
		{ID: 2, LanguageCode: "en", ContentChoice: domain.ChoiceAll},
		{ID: 3, LanguageCode: "en", ContentChoice: domain.ChoiceAll},
	}}

	ch := newRecordingChannel()
	ch.failFor[2] = true

	d := NewDeliverer(subs, querier, ch, 2, DefaultMaxMessageLen, DefaultSeparatorLen, nil)
	require.NoError(t, d.DeliverAll(context.Background()))

	require.Len(t, ch.messages(1), 1)
	require.Empty(t, ch.messages(2))
	require.Len(t, ch.messages(3), 1)
	require.Contains(t, ch.messages(1)[0], "Bitcoin surges [[link](https://a.example/1)]")
}

func TestDeliverToSendsNoFreshNewsOnEmptyDay(t *testing.T) {
	querier := deliveryQuerier()
	subs := &stubSubscriberStore{subs: []domain.Subscriber{
		{ID: 7, LanguageCode: "ru", ContentChoice: domain.ChoiceAll},
	}}

	ch := newRecordingChannel()
	d := NewDeliverer(subs, querier, ch, 1, DefaultMaxMessageLen, DefaultSeparatorLen, nil)
	require.NoError(t, d.DeliverAll(context.Background()))

	require.Equal(t, []string{lang.NoFreshNews("ru")}, ch.messages(7))
}

func TestDeliverToHonorsKeywordChoice(t *testing.T) {
	matching := newsItem("https://a.example/1", "One", "Bitcoin surges today", deliveryClock(), nil)
	other := newsItem("https://a.example/2", "Two", "Markets are quiet", deliveryClock(), nil)
	querier := deliveryQuerier(matching, other)

	subs := &stubSubscriberStore{subs: []domain.Subscriber{
		{ID: 5, LanguageCode: "en", ContentChoice: domain.ChoiceKeyword, Keywords: []string{"Bitcoin"}},
	}}

	ch := newRecordingChannel()
	d := NewDeliverer(subs, querier, ch, 1, DefaultMaxMessageLen, DefaultSeparatorLen, nil)
	require.NoError(t, d.DeliverAll(context.Background()))

	msgs := ch.messages(5)
	require.Len(t, msgs, 1)
	require.Contains(t, msgs[0], "Bitcoin surges today")
	require.NotContains(t, msgs[0], "Markets are quiet")
}

func TestDeliverToFallsBackToFullDigest(t *testing.T) {
	item := newsItem("https://a.example/1", "One", "Markets are quiet", deliveryClock(), nil)
	querier := deliveryQuerier(item)

	// Keyword choice with no keywords degrades to the full digest, and an
	// unsupported language code degrades to English.
	subs := &stubSubscriberStore{subs: []domain.Subscriber{
		{ID: 9, LanguageCode: "xx", ContentChoice: domain.ChoiceKeyword},
	}}

	ch := newRecordingChannel()
	d := NewDeliverer(subs, querier, ch, 1, DefaultMaxMessageLen, DefaultSeparatorLen, nil)
	require.NoError(t, d.DeliverAll(context.Background()))

	msgs := ch.messages(9)
	require.Len(t, msgs, 1)
	require.Contains(t, msgs[0], "Markets are quiet [[link](https://a.example/1)]")
}

func TestDeliverAllAbortsOnListFailure(t *testing.T) {
	subs := &stubSubscriberStore{err: errors.New("db closed")}
	d := NewDeliverer(subs, deliveryQuerier(), newRecordingChannel(), 1, DefaultMaxMessageLen, DefaultSeparatorLen, nil)
	require.Error(t, d.DeliverAll(context.Background()))
}
