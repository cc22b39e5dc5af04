package pipeline

import (
	"context"

	"github.com/Ufymau/newsdigest/internal/domain"
	"github.com/Ufymau/newsdigest/internal/logger"
	"github.com/Ufymau/newsdigest/pkg/translate"
)

// TranslationStore is the surface the translation stage needs from the
// news store.
type TranslationStore interface {
	MissingTranslation(target string) ([]domain.NewsItem, error)
	UpdateTranslation(url, target, title, description string) error
}

// Filler translates the English copy of items into every target
// language that still lacks one. The operation is a fill: an item whose
// target title is already non-empty is never selected again, so reruns
// are no-ops and manual corrections survive.
type Filler struct {
	store      TranslationStore
	translator translate.Translator
	targets    []string
	log        logger.Logger
}

// NewFiller builds a Filler for the given target languages (the
// supported set minus English).
func NewFiller(store TranslationStore, translator translate.Translator, targets []string, log logger.Logger) *Filler {
	if log == nil {
		log = logger.NopLogger{}
	}
	return &Filler{
		store:      store,
		translator: translator,
		targets:    targets,
		log:        log,
	}
}

// Fill processes every target language independently and returns how
// many items were translated per language. A failed (item, language)
// pair is logged and skipped; it never aborts the remaining items or
// languages.
func (f *Filler) Fill(ctx context.Context) map[string]int {
	counts := make(map[string]int, len(f.targets))

	for _, target := range f.targets {
		counts[target] = f.fillLanguage(ctx, target)
	}
	return counts
}

func (f *Filler) fillLanguage(ctx context.Context, target string) int {
	items, err := f.store.MissingTranslation(target)
	if err != nil {
		f.log.ErrorObj("selecting untranslated items failed", "translate_select_error", map[string]any{
			"language": target,
			"error":    err.Error(),
		})
		return 0
	}

	f.log.InfoObj("translation pass starting", "translate_start", map[string]any{
		"language": target,
		"pending":  len(items),
	})

	filled := 0
	for _, item := range items {
		if ctx.Err() != nil {
			return filled
		}

		en := item.English()
		if en.Title == "" && en.Description == "" {
			continue
		}

		title, description, err := f.translatePair(ctx, en, target)
		if err != nil {
			f.log.ErrorObj("item translation failed", "translate_item_error", map[string]any{
				"url":      item.URL,
				"language": target,
				"error":    err.Error(),
			})
			continue
		}

		if err := f.store.UpdateTranslation(item.URL, target, title, description); err != nil {
			f.log.ErrorObj("storing translation failed", "translate_store_error", map[string]any{
				"url":      item.URL,
				"language": target,
				"error":    err.Error(),
			})
			continue
		}
		filled++
	}

	f.log.InfoObj("translation pass finished", "translate_done", map[string]any{
		"language": target,
		"filled":   filled,
	})
	return filled
}

// translatePair translates title and description independently; either
// may be absent and stays empty.
func (f *Filler) translatePair(ctx context.Context, en domain.Localized, target string) (string, string, error) {
	var title, description string
	var err error

	if en.Title != "" {
		if title, err = f.translator.Translate(ctx, en.Title, target); err != nil {
			return "", "", err
		}
	}
	if en.Description != "" {
		if description, err = f.translator.Translate(ctx, en.Description, target); err != nil {
			return "", "", err
		}
	}
	return title, description, nil
}
