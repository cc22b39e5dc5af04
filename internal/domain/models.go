package domain

import "time"

// Domain contains core models shared by the pipeline stages.

// Localized holds the title and description of a news item in one language.
type Localized struct {
	Title       string `json:"title,omitempty"`
	Description string `json:"description,omitempty"`
}

// NewsItem is a single news article keyed by its source URL.
// Content maps a language code to that language's copy; "en" is the
// translation source and is written once at ingestion time.
type NewsItem struct {
	URL       string               `json:"url"`
	Thumbnail string               `json:"thumbnail,omitempty"`
	CreatedAt time.Time            `json:"created_at"`
	Content   map[string]Localized `json:"content"`
}

// English returns the English copy of the item, which every translation
// is derived from.
func (n NewsItem) English() Localized {
	return n.Content["en"]
}

// HasTranslation reports whether the item already carries a non-empty
// title for the given language.
func (n NewsItem) HasTranslation(lang string) bool {
	return n.Content[lang].Title != ""
}

// Content choices a subscriber can make.
const (
	ChoiceAll     = "all"
	ChoiceKeyword = "keyword"
)

// Subscriber is a delivery recipient with a language and content preference.
// Records are upserted by the chat front-end; the pipeline only reads them.
type Subscriber struct {
	ID            int64    `json:"id"`
	LanguageCode  string   `json:"language_code,omitempty"`
	ContentChoice string   `json:"content_choice,omitempty"`
	Keywords      []string `json:"keywords,omitempty"`
}

// Language returns the subscriber's language, defaulting to English when
// the record has none set.
func (s Subscriber) Language() string {
	if s.LanguageCode == "" {
		return "en"
	}
	return s.LanguageCode
}
