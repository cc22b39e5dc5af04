package pipeline

import (
	"fmt"
	"strings"
	"time"

	"github.com/Ufymau/newsdigest/internal/domain"
	"github.com/Ufymau/newsdigest/internal/lang"
)

// QueryStore is the read surface the query stage needs from the news
// store: today's items, newest first.
type QueryStore interface {
	CreatedToday(now time.Time) ([]domain.NewsItem, error)
}

// Querier resolves today's news into formatted, link-annotated text
// blocks for one language.
type Querier struct {
	store QueryStore
	now   func() time.Time
}

// NewQuerier builds a Querier. A nil clock defaults to time.Now.
func NewQuerier(store QueryStore, now func() time.Time) *Querier {
	if now == nil {
		now = time.Now
	}
	return &Querier{store: store, now: now}
}

// All returns every item created today that has a description in the
// given language, newest first. An empty day is an empty slice, not an
// error.
func (q *Querier) All(target string) ([]string, error) {
	items, err := q.store.CreatedToday(q.now())
	if err != nil {
		return nil, err
	}

	var out []string
	for _, item := range items {
		if item.Content[target].Description == "" {
			continue
		}
		out = append(out, formatItem(item, target))
	}
	return out, nil
}

// ByKeywords returns today's items whose English description matches
// any of the given keywords, formatted in the target language. Matching
// is deliberately substring-based (see matchesKeyword); an empty or
// all-blank keyword list yields an empty result.
func (q *Querier) ByKeywords(target string, keywords []string) ([]string, error) {
	keys := make([]string, 0, len(keywords))
	for _, k := range keywords {
		if k = strings.TrimSpace(k); k != "" {
			keys = append(keys, k)
		}
	}
	if len(keys) == 0 {
		return nil, nil
	}

	items, err := q.store.CreatedToday(q.now())
	if err != nil {
		return nil, err
	}

	var out []string
	for _, item := range items {
		desc := item.English().Description
		for _, key := range keys {
			if matchesKeyword(desc, key) {
				out = append(out, formatItem(item, target))
				break
			}
		}
	}
	return out, nil
}

// matchesKeyword approximates whole-word matching without a tokenizer:
// the keyword must be the whole description, or sit at a space-delimited
// start, middle or end of it. Case-sensitive, biased toward false
// positives over false negatives.
func matchesKeyword(description, key string) bool {
	if description == "" {
		return false
	}
	return description == key ||
		strings.HasPrefix(description, key+" ") ||
		strings.Contains(description, " "+key+" ") ||
		strings.HasSuffix(description, " "+key)
}

// formatItem renders one item as "{description} [[{link word}]({url})]",
// with the link word localized and a missing description treated as
// empty text rather than an error.
func formatItem(item domain.NewsItem, target string) string {
	description := item.Content[target].Description
	return fmt.Sprintf("%s [[%s](%s)]", description, lang.LinkWord(target), item.URL)
}
