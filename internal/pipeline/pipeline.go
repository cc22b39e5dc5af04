package pipeline

import (
	"context"

	"github.com/Ufymau/newsdigest/internal/logger"
)

// Pipeline ties the three stages of one digest run together: ingest the
// feed, fill translations, deliver to subscribers. Stages run in that
// order but are failure-isolated from each other; a dead feed must not
// stop delivery of what is already stored.
type Pipeline struct {
	ingestor  *Ingestor
	filler    *Filler
	deliverer *Deliverer
	log       logger.Logger
}

// New assembles a Pipeline.
func New(ingestor *Ingestor, filler *Filler, deliverer *Deliverer, log logger.Logger) *Pipeline {
	if log == nil {
		log = logger.NopLogger{}
	}
	return &Pipeline{
		ingestor:  ingestor,
		filler:    filler,
		deliverer: deliverer,
		log:       log,
	}
}

// RunDigest executes one full scheduled run.
func (p *Pipeline) RunDigest(ctx context.Context) {
	p.log.InfoObj("digest run starting", "digest_start", nil)

	if _, err := p.ingestor.Ingest(ctx); err != nil {
		p.log.ErrorObj("ingest stage failed", "digest_ingest_error", map[string]any{
			"error": err.Error(),
		})
	}

	p.filler.Fill(ctx)

	if err := p.deliverer.DeliverAll(ctx); err != nil {
		p.log.ErrorObj("delivery stage failed", "digest_deliver_error", map[string]any{
			"error": err.Error(),
		})
	}

	p.log.InfoObj("digest run finished", "digest_done", nil)
}
