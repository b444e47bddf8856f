package search

import (
	"strings"
	"time"
	"unicode/utf8"
)

// PreviewLength is the number of characters shown on a note card.
const PreviewLength = 200

// Preview shortens content for a note card.
func Preview(content string) string {
	if utf8.RuneCountInString(content) <= PreviewLength {
		return content
	}
	runes := []rune(content)
	return string(runes[:PreviewLength]) + "..."
}

// Counters returns the character and word counts of an edit buffer.
func Counters(content string) (chars, words int) {
	chars = utf8.RuneCountInString(content)
	words = len(strings.Fields(content))
	return chars, words
}

// FormatDate renders a millisecond timestamp relative to now:
// "Today at 3:04 PM", "Yesterday", a weekday within the last week,
// otherwise "Jan 2" (with the year when it differs from now's).
func FormatDate(ts int64, now time.Time) string {
	date := time.UnixMilli(ts).In(now.Location())

	diff := now.Sub(date)
	if diff < 0 {
		diff = -diff
	}
	days := int(diff / (24 * time.Hour))

	switch {
	case days == 0:
		return "Today at " + date.Format("3:04 PM")
	case days == 1:
		return "Yesterday"
	case days < 7:
		return date.Weekday().String()
	case date.Year() != now.Year():
		return date.Format("Jan 2, 2006")
	default:
		return date.Format("Jan 2")
	}
}
