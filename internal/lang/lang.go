package lang

// Package lang holds the fixed set of supported languages and the small
// localization tables the pipeline needs when formatting messages.
// Adding a language here changes what the translation stage fills for
// every stored item, so treat changes as a data migration.

// Supported is the process-wide language set. "en" must always be present:
// it is the translation source.
var Supported = []string{"en", "ru", "pt", "es", "de", "fr", "ar"}

// IsSupported reports whether the given code is in the supported set.
func IsSupported(code string) bool {
	for _, l := range Supported {
		if l == code {
			return true
		}
	}
	return false
}

// Targets returns the supported languages excluding English, i.e. the
// translation fan-out set.
func Targets() []string {
	out := make([]string, 0, len(Supported)-1)
	for _, l := range Supported {
		if l != "en" {
			out = append(out, l)
		}
	}
	return out
}

// linkWord is the localized word used for the trailing article link.
var linkWord = map[string]string{
	"en": "link",
	"ru": "ссылка",
	"pt": "link",
	"es": "enlace",
	"de": "Link",
	"fr": "lien",
	"ar": "رابط",
}

// LinkWord returns the localized link word, falling back to English.
func LinkWord(code string) string {
	if w, ok := linkWord[code]; ok {
		return w
	}
	return linkWord["en"]
}

// noFreshNews is shown to a subscriber whose query matched nothing today.
var noFreshNews = map[string]string{
	"en": "No fresh news for your query.",
	"ru": "Свежих новостей по вашему запросу нет.",
	"pt": "Não há notícias recentes para sua consulta.",
	"es": "No hay noticias nuevas para su consulta.",
	"de": "Keine aktuellen Nachrichten zu Ihrer Anfrage.",
	"fr": "Pas de nouvelles fraîches pour votre requête.",
	"ar": "لا توجد أخبار جديدة لطلبك.",
}

// NoFreshNews returns the localized empty-result message, falling back
// to English.
func NoFreshNews(code string) string {
	if m, ok := noFreshNews[code]; ok {
		return m
	}
	return noFreshNews["en"]
}
