package search

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aretw0/biji/pkg/core"
)

var sample = []core.Note{
	{ID: 3, Title: "Groceries", Content: "Milk, eggs, Coffee"},
	{ID: 2, Title: "Coffee beans", Content: "Try the Ethiopian roast"},
	{ID: 1, Title: "Ideas", Content: "a note-taking app"},
}

func TestFilter_EmptyQueryIsIdentity(t *testing.T) {
	for _, q := range []string{"", "   ", "\t\n"} {
		got := Filter(sample, q)
		require.Len(t, got, len(sample))
		assert.Same(t, &sample[0], &got[0], "empty query must return the input slice")
		assert.Equal(t, sample, got)
	}
}

func TestFilter_Substring(t *testing.T) {
	tests := []struct {
		name  string
		query string
		want  []int64
	}{
		{"case folded", "COFFEE", []int64{3, 2}},
		{"trimmed", "  ideas ", []int64{1}},
		{"substring not token", "thio", []int64{2}},
		{"punctuation", "note-taking", []int64{1}},
		{"no match", "tea", nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var ids []int64
			for _, n := range Filter(sample, tt.query) {
				ids = append(ids, n.ID)
			}
			assert.Equal(t, tt.want, ids)
		})
	}
}

func TestFilter_DoesNotMutateNotes(t *testing.T) {
	before := append([]core.Note(nil), sample...)
	_ = Filter(sample, "coffee")
	assert.Equal(t, before, sample)
}

func TestMatches(t *testing.T) {
	assert.True(t, Matches(sample[0], ""))
	assert.True(t, Matches(sample[0], "MILK"))
	assert.False(t, Matches(sample[0], "roast"))
}

func TestHighlight(t *testing.T) {
	assert.Equal(t, "[Coffee] and [coffee]", Highlight("Coffee and coffee", "COFFEE", "[", "]"))
	assert.Equal(t, "[a.b] axb", Highlight("a.b axb", "a.b", "[", "]"))
	assert.Equal(t, "1+1=[2+]", Highlight("1+1=2+", "2+", "[", "]"), "query is literal")
	assert.Equal(t, "unchanged", Highlight("unchanged", "  ", "[", "]"))
	assert.Equal(t, "no hit", Highlight("no hit", "zzz", "[", "]"))
}

func TestPreviewAndCounters(t *testing.T) {
	short := "short note"
	assert.Equal(t, short, Preview(short))

	long := strings.Repeat("é", PreviewLength+5)
	p := Preview(long)
	assert.True(t, strings.HasSuffix(p, "..."))
	assert.Equal(t, PreviewLength+3, len([]rune(p)))

	chars, words := Counters("  hello   wide\nworld ")
	assert.Equal(t, 21, chars)
	assert.Equal(t, 3, words)

	chars, words = Counters("   ")
	assert.Equal(t, 3, chars)
	assert.Zero(t, words)
}

func TestFormatDate(t *testing.T) {
	now := time.Date(2024, 6, 14, 18, 30, 0, 0, time.UTC) // Friday
	ms := func(t time.Time) int64 { return t.UnixMilli() }

	assert.Equal(t, "Today at 3:05 PM", FormatDate(ms(time.Date(2024, 6, 14, 15, 5, 0, 0, time.UTC)), now))
	assert.Equal(t, "Yesterday", FormatDate(ms(now.Add(-30*time.Hour)), now))
	assert.Equal(t, "Tuesday", FormatDate(ms(now.Add(-3*24*time.Hour)), now))
	assert.Equal(t, "May 1", FormatDate(ms(time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)), now))
	assert.Equal(t, "Dec 25, 2023", FormatDate(ms(time.Date(2023, 12, 25, 12, 0, 0, 0, time.UTC)), now))
}
