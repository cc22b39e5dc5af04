package pipeline

import (
	"strings"
	"unicode/utf8"
)

// Batching defaults. MaxMessageLen is the transport's hard cap on one
// message body.
const (
	DefaultMaxMessageLen = 4096
	DefaultSeparatorLen  = 26
)

const separatorChar = "═"

// Separator returns the divider line drawn between items, two characters
// shorter than the requested width to leave room for the message edges.
func Separator(length int) string {
	if length < 2 {
		length = 2
	}
	return strings.Repeat(separatorChar, length-2)
}

// Split packs ordered text blocks into message bodies of at most maxLen
// characters each. Items are separated by a divider line and blank
// padding; the first item of a message carries no leading divider. An
// item is never split across messages, so one item longer than maxLen
// produces an oversized message rather than a torn item.
func Split(items []string, maxLen, sepLen int) []string {
	if maxLen <= 0 {
		maxLen = DefaultMaxMessageLen
	}
	if sepLen <= 0 {
		sepLen = DefaultSeparatorLen
	}

	separator := Separator(sepLen) + "\n\n"

	var messages []string
	var current strings.Builder
	currentLen := 0

	for i, item := range items {
		decorated := item + "\n\n"
		if i > 0 {
			decorated = separator + decorated
		}

		decoratedLen := utf8.RuneCountInString(decorated)
		if currentLen+decoratedLen > maxLen && current.Len() > 0 {
			messages = append(messages, strings.TrimSpace(current.String()))
			current.Reset()
			currentLen = 0
		}
		current.WriteString(decorated)
		currentLen += decoratedLen
	}

	if current.Len() > 0 {
		messages = append(messages, strings.TrimSpace(current.String()))
	}
	return messages
}
