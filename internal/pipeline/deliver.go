package pipeline

import (
	"context"
	"fmt"
	"sync"

	"github.com/Ufymau/newsdigest/internal/domain"
	"github.com/Ufymau/newsdigest/internal/lang"
	"github.com/Ufymau/newsdigest/internal/logger"
	"github.com/Ufymau/newsdigest/pkg/channel"
)

// SubscriberStore is the read surface delivery needs.
type SubscriberStore interface {
	ListSubscribers() ([]domain.Subscriber, error)
}

// Deliverer fans today's digest out to every subscriber, each one an
// independent unit of work: a failing subscriber is logged and the rest
// still get their messages.
type Deliverer struct {
	subscribers SubscriberStore
	querier     *Querier
	channel     channel.Channel
	fanout      int
	maxLen      int
	sepLen      int
	log         logger.Logger
}

// NewDeliverer builds a Deliverer with the given fan-out cap and
// batching limits.
func NewDeliverer(subscribers SubscriberStore, querier *Querier, ch channel.Channel, fanout, maxLen, sepLen int, log logger.Logger) *Deliverer {
	if fanout <= 0 {
		fanout = 1
	}
	if log == nil {
		log = logger.NopLogger{}
	}
	return &Deliverer{
		subscribers: subscribers,
		querier:     querier,
		channel:     ch,
		fanout:      fanout,
		maxLen:      maxLen,
		sepLen:      sepLen,
		log:         log,
	}
}

// DeliverAll sends the digest to every subscriber concurrently, bounded
// by the fan-out cap. Only a failure to list subscribers aborts the run.
func (d *Deliverer) DeliverAll(ctx context.Context) error {
	subs, err := d.subscribers.ListSubscribers()
	if err != nil {
		return fmt.Errorf("deliver: %w", err)
	}

	d.log.InfoObj("delivery starting", "deliver_start", map[string]any{
		"subscribers": len(subs),
	})

	sem := make(chan struct{}, d.fanout)
	var wg sync.WaitGroup

	for _, sub := range subs {
		wg.Add(1)
		sem <- struct{}{}
		go func(sub domain.Subscriber) {
			defer wg.Done()
			defer func() { <-sem }()

			if err := d.deliverTo(ctx, sub); err != nil {
				d.log.ErrorObj("delivery to subscriber failed", "deliver_subscriber_error", map[string]any{
					"subscriber_id": sub.ID,
					"error":         err.Error(),
				})
			}
		}(sub)
	}
	wg.Wait()

	d.log.InfoObj("delivery finished", "deliver_done", nil)
	return nil
}

// deliverTo resolves one subscriber's preference, batches the result
// and sends the batches in order.
func (d *Deliverer) deliverTo(ctx context.Context, sub domain.Subscriber) error {
	code := sub.Language()
	if !lang.IsSupported(code) {
		code = "en"
	}

	blocks, err := d.resolve(sub, code)
	if err != nil {
		return err
	}

	if len(blocks) == 0 {
		return d.channel.Send(ctx, sub.ID, lang.NoFreshNews(code))
	}

	for _, msg := range Split(blocks, d.maxLen, d.sepLen) {
		if err := d.channel.Send(ctx, sub.ID, msg); err != nil {
			return err
		}
	}
	return nil
}

// resolve maps the subscriber's content choice onto a query. An unset
// choice, or a keyword choice with no keywords left, falls back to the
// full digest.
func (d *Deliverer) resolve(sub domain.Subscriber, code string) ([]string, error) {
	if sub.ContentChoice == domain.ChoiceKeyword && len(sub.Keywords) > 0 {
		return d.querier.ByKeywords(code, sub.Keywords)
	}
	return d.querier.All(code)
}
