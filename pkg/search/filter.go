// Package search derives the visible subset of notes from a query and
// provides the pure text transforms used when displaying them.
package search

import (
	"regexp"
	"strings"

	"github.com/aretw0/biji/pkg/core"
)

// Normalize trims and case-folds a query.
func Normalize(query string) string {
	return strings.ToLower(strings.TrimSpace(query))
}

// Filter returns the notes whose title or content contains query as a
// case-insensitive substring, in their original order.
//
// An empty query returns notes itself, not a copy.
func Filter(notes []core.Note, query string) []core.Note {
	q := Normalize(query)
	if q == "" {
		return notes
	}

	matched := make([]core.Note, 0, len(notes))
	for _, n := range notes {
		if matches(n, q) {
			matched = append(matched, n)
		}
	}
	return matched
}

// Matches reports whether n matches query.
func Matches(n core.Note, query string) bool {
	q := Normalize(query)
	if q == "" {
		return true
	}
	return matches(n, q)
}

func matches(n core.Note, q string) bool {
	return strings.Contains(strings.ToLower(n.Title), q) ||
		strings.Contains(strings.ToLower(n.Content), q)
}

// Highlight wraps every case-insensitive occurrence of query in text with
// open and close. The query is matched literally. The original casing of
// each occurrence is kept.
func Highlight(text, query, open, close string) string {
	q := strings.TrimSpace(query)
	if q == "" || text == "" {
		return text
	}

	re := regexp.MustCompile("(?i)" + regexp.QuoteMeta(q))
	return re.ReplaceAllStringFunc(text, func(m string) string {
		return open + m + close
	})
}
