package feed

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"github.com/Ufymau/newsdigest/pkg/httpclient"
)

// rapidAPIGateway fetches the daily crypto news list from RapidAPI.
type rapidAPIGateway struct {
	client httpclient.Client
	url    string
	apiKey string
	host   string
}

// NewRapidAPIGateway builds a Gateway for the RapidAPI crypto news
// endpoint. The host is sent as the x-rapidapi-host header.
func NewRapidAPIGateway(client httpclient.Client, url, apiKey, host string) (Gateway, error) {
	if client == nil {
		return nil, fmt.Errorf("feed gateway needs an http client")
	}
	if strings.TrimSpace(url) == "" {
		return nil, fmt.Errorf("feed url is empty")
	}
	if strings.TrimSpace(apiKey) == "" {
		return nil, fmt.Errorf("feed api key is empty")
	}
	return &rapidAPIGateway{
		client: client,
		url:    url,
		apiKey: apiKey,
		host:   host,
	}, nil
}

// feedEnvelope is the provider's response wrapper.
type feedEnvelope struct {
	Data []Item `json:"data"`
}

// FetchToday retrieves the provider's current item list.
func (g *rapidAPIGateway) FetchToday(ctx context.Context) ([]Item, error) {
	headers := map[string]string{
		"x-rapidapi-key": g.apiKey,
	}
	if g.host != "" {
		headers["x-rapidapi-host"] = g.host
	}

	resp, err := g.client.Get(ctx, g.url, headers)
	if err != nil {
		return nil, fmt.Errorf("fetch news feed: %w", err)
	}
	if resp.StatusCode() != http.StatusOK {
		return nil, fmt.Errorf("news feed returned status %d body: %s",
			resp.StatusCode(), responseSnippet(resp.Body()))
	}

	var envelope feedEnvelope
	if err := json.Unmarshal(resp.Body(), &envelope); err != nil {
		return nil, fmt.Errorf("decode news feed: %w", err)
	}
	return envelope.Data, nil
}

func responseSnippet(body []byte) string {
	const maxLen = 512
	s := strings.TrimSpace(string(body))
	if len(s) > maxLen {
		return s[:maxLen] + "..."
	}
	if s == "" {
		return "<empty>"
	}
	return s
}
