package feed

import (
	"context"
	"time"
)

// Item is one entry as reported by the upstream feed. CreatedAt keeps
// the provider's raw string so the caller decides how to treat items
// it cannot parse.
type Item struct {
	URL         string `json:"url"`
	Title       string `json:"title"`
	Description string `json:"description"`
	Thumbnail   string `json:"thumbnail"`
	CreatedAt   string `json:"createdAt"`
}

// Gateway fetches the current batch of news items from the upstream
// provider.
type Gateway interface {
	FetchToday(ctx context.Context) ([]Item, error)
}

// createdAtLayout is the provider's timestamp format, e.g.
// "Sun, 31 Aug 2025 14:05:00 +0000".
const createdAtLayout = time.RFC1123Z

// ParseCreatedAt parses a provider timestamp.
func ParseCreatedAt(raw string) (time.Time, error) {
	return time.Parse(createdAtLayout, raw)
}
