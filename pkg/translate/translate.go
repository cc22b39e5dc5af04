package translate

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/Ufymau/newsdigest/pkg/httpclient"
)

// Translator converts text into a target language, auto-detecting the
// source. Both calls fail with a transport or quota error the caller
// is expected to contain per item.
type Translator interface {
	Translate(ctx context.Context, text, target string) (string, error)
	TranslateBatch(ctx context.Context, texts []string, target string) ([]string, error)
}

const endpoint = "https://translate.googleapis.com/translate_a/single"

// googleTranslator uses the public Google Translate web endpoint.
type googleTranslator struct {
	client httpclient.Client
}

// NewGoogleTranslator builds a Translator backed by the public Google
// Translate endpoint.
func NewGoogleTranslator(client httpclient.Client) (Translator, error) {
	if client == nil {
		return nil, fmt.Errorf("translator needs an http client")
	}
	return &googleTranslator{client: client}, nil
}

// Translate translates one string. Empty input is returned unchanged
// without a network call.
func (g *googleTranslator) Translate(ctx context.Context, text, target string) (string, error) {
	if strings.TrimSpace(text) == "" {
		return text, nil
	}
	if strings.TrimSpace(target) == "" {
		return "", fmt.Errorf("target language is empty")
	}

	params := url.Values{}
	params.Set("client", "gtx")
	params.Set("sl", "auto")
	params.Set("tl", target)
	params.Set("dt", "t")
	params.Set("q", text)

	resp, err := g.client.Get(ctx, endpoint+"?"+params.Encode(), nil)
	if err != nil {
		return "", fmt.Errorf("translate to %s: %w", target, err)
	}
	if resp.StatusCode() != http.StatusOK {
		return "", fmt.Errorf("translate to %s: status %d", target, resp.StatusCode())
	}

	out, err := parseResponse(resp.Body())
	if err != nil {
		return "", fmt.Errorf("translate to %s: %w", target, err)
	}
	return out, nil
}

// TranslateBatch translates each string in order. The endpoint takes one
// text per request, so a batch is a sequence of single calls; the first
// failure aborts the batch.
func (g *googleTranslator) TranslateBatch(ctx context.Context, texts []string, target string) ([]string, error) {
	out := make([]string, len(texts))
	for i, text := range texts {
		translated, err := g.Translate(ctx, text, target)
		if err != nil {
			return nil, fmt.Errorf("batch item %d: %w", i, err)
		}
		out[i] = translated
	}
	return out, nil
}

// parseResponse extracts the translated text from the endpoint's nested
// array response: [[["translated","source",...],...],...].
func parseResponse(body []byte) (string, error) {
	var response []any
	if err := json.Unmarshal(body, &response); err != nil {
		return "", fmt.Errorf("decode response: %w", err)
	}
	if len(response) == 0 {
		return "", errors.New("empty response")
	}

	chunks, ok := response[0].([]any)
	if !ok {
		return "", errors.New("unexpected response shape")
	}

	var b strings.Builder
	for _, chunk := range chunks {
		parts, ok := chunk.([]any)
		if !ok || len(parts) == 0 {
			continue
		}
		if text, ok := parts[0].(string); ok {
			b.WriteString(text)
		}
	}

	if b.Len() == 0 {
		return "", errors.New("response carried no translation")
	}
	return b.String(), nil
}
