package enrich

import (
	"bytes"
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"sync"

	"github.com/PuerkitoBio/goquery"

	"github.com/Ufymau/newsdigest/internal/domain"
	"github.com/Ufymau/newsdigest/internal/logger"
	"github.com/Ufymau/newsdigest/pkg/httpclient"
)

const maxHTMLBodyBytes = 1 << 20 // 1 MiB

// Enricher backfills a missing thumbnail or English description by
// scraping the article page's meta tags. Items that already carry both
// fields are passed through untouched.
type Enricher struct {
	client  httpclient.Client
	workers int
	log     logger.Logger
}

// New creates an Enricher with the given worker count.
func New(client httpclient.Client, workers int, log logger.Logger) *Enricher {
	if workers <= 0 {
		workers = 1
	}
	if log == nil {
		log = logger.NopLogger{}
	}
	return &Enricher{client: client, workers: workers, log: log}
}

// Fill scrapes pages for items missing metadata. A failed scrape keeps
// the original item, so partial results are always returned.
func (e *Enricher) Fill(ctx context.Context, items []domain.NewsItem) []domain.NewsItem {
	out := make([]domain.NewsItem, len(items))
	copy(out, items)

	if len(items) == 0 {
		return out
	}

	jobCh := make(chan int)
	var wg sync.WaitGroup

	workerCount := min(len(items), e.workers)
	for i := 0; i < workerCount; i++ {
		wg.Add(1)
		go e.worker(ctx, jobCh, out, &wg)
	}

	for idx := range out {
		if ctx.Err() != nil {
			break
		}
		if !needsFill(out[idx]) {
			continue
		}
		jobCh <- idx
	}
	close(jobCh)

	wg.Wait()
	return out
}

func needsFill(item domain.NewsItem) bool {
	return item.Thumbnail == "" || item.English().Description == ""
}

func (e *Enricher) worker(ctx context.Context, jobCh <-chan int, out []domain.NewsItem, wg *sync.WaitGroup) {
	defer wg.Done()

	for idx := range jobCh {
		if ctx.Err() != nil {
			return
		}

		item := out[idx]
		filled, err := e.fetchAndParse(ctx, item)
		if err != nil {
			e.log.WarnObj("article metadata scrape failed", "enrich_error", map[string]any{
				"url":   item.URL,
				"error": err.Error(),
			})
			continue
		}
		out[idx] = filled
	}
}

func (e *Enricher) fetchAndParse(ctx context.Context, item domain.NewsItem) (domain.NewsItem, error) {
	resp, err := e.client.Get(ctx, item.URL, nil)
	if err != nil {
		return item, fmt.Errorf("http fetch: %w", err)
	}
	if resp.StatusCode() != http.StatusOK {
		return item, fmt.Errorf("status %d", resp.StatusCode())
	}

	body := resp.Body()
	if len(body) > maxHTMLBodyBytes {
		body = body[:maxHTMLBodyBytes]
	}

	meta, err := parseMeta(body)
	if err != nil {
		return item, err
	}

	if item.Thumbnail == "" && meta.imageURL != "" {
		item.Thumbnail = resolveURL(meta.imageURL, item.URL)
	}
	if en := item.English(); en.Description == "" && meta.description != "" {
		en.Description = meta.description
		item.Content["en"] = en
	}
	return item, nil
}

type pageMeta struct {
	description string
	imageURL    string
}

// parseMeta pulls og: and description meta tags out of the HTML body.
func parseMeta(body []byte) (pageMeta, error) {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(body))
	if err != nil {
		return pageMeta{}, fmt.Errorf("parse html: %w", err)
	}

	extract := func(sel string) string {
		if node := doc.Find(sel).First(); node.Length() > 0 {
			if val, ok := node.Attr("content"); ok {
				return strings.TrimSpace(val)
			}
		}
		return ""
	}

	pm := pageMeta{
		imageURL: extract(`meta[property="og:image"]`),
	}
	pm.description = extract(`meta[property="og:description"]`)
	if pm.description == "" {
		pm.description = extract(`meta[name="description"]`)
	}
	return pm, nil
}

// resolveURL resolves a possibly relative URL against a base URL.
func resolveURL(raw, base string) string {
	if raw == "" {
		return ""
	}

	parsed, err := url.Parse(raw)
	if err != nil {
		return raw
	}
	if parsed.IsAbs() {
		return parsed.String()
	}

	baseURL, err := url.Parse(base)
	if err != nil {
		return raw
	}
	return baseURL.ResolveReference(parsed).String()
}
