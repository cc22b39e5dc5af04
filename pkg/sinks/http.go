package sinks

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/Ufymau/newsdigest/pkg/httpclient"
)

// httpSink POSTs events as JSON to a webhook URL.
type httpSink struct {
	id      string
	url     string
	headers map[string]string
	client  httpclient.Client
	log     Logger
}

// newHTTPSink builds a webhook sink.
func newHTTPSink(_ context.Context, cfg SinkConfig, log Logger) (Sink, error) {
	if cfg.HTTP == nil {
		return nil, fmt.Errorf("sink %q missing http configuration", cfg.ID)
	}

	timeout := time.Duration(cfg.HTTP.TimeoutSeconds) * time.Second
	return &httpSink{
		id:      cfg.ID,
		url:     cfg.HTTP.URL,
		headers: cfg.HTTP.Headers,
		client:  httpclient.NewRestyClient(timeout, ""),
		log:     ensureLogger(log),
	}, nil
}

func (s *httpSink) ID() string   { return s.id }
func (s *httpSink) Type() string { return TypeHTTP }

// Publish POSTs the event to the webhook, treating any non-2xx status
// as a failure.
func (s *httpSink) Publish(ctx context.Context, evt Event) error {
	resp, err := s.client.PostJSON(ctx, s.url, s.headers, evt)
	if err != nil {
		return fmt.Errorf("post event: %w", err)
	}
	if resp.StatusCode() < http.StatusOK || resp.StatusCode() >= http.StatusMultipleChoices {
		return fmt.Errorf("webhook returned status %d", resp.StatusCode())
	}

	s.log.DebugObj("http sink delivered event", "sink_http_delivery", map[string]any{
		"sink_id": s.id,
		"status":  resp.StatusCode(),
	})
	return nil
}
