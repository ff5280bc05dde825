package segment

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func texts(t *testing.T, text string) []string {
	t.Helper()
	var out []string
	for _, s := range SplitSentences(text) {
		out = append(out, s.Text)
	}
	return out
}

func TestSplitSentences(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want []string
	}{
		{"empty", "   ", nil},
		{"single", "No punctuation here", []string{"No punctuation here"}},
		{"basic", "First one. Second one! Third?", []string{"First one.", "Second one!", "Third?"}},
		{"decimal", "The value was 3.5 units. Next.", []string{"The value was 3.5 units.", "Next."}},
		{"abbreviation", "Dr. Smith et al. agree. Fine.", []string{"Dr. Smith et al. agree.", "Fine."}},
		{"initial", "J. Smith wrote it. Done.", []string{"J. Smith wrote it.", "Done."}},
		{"lowercase continuation", "See e.g. the table. Then stop.", []string{"See e.g. the table.", "Then stop."}},
		{"newline", "Line one.\nline two", []string{"Line one.", "line two"}},
		{"collapses whitespace", "A  b\tc. D\n e.", []string{"A b c.", "D e."}},
		{"quote", `He said "yes." Then left.`, []string{`He said "yes."`, "Then left."}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, texts(t, tt.in))
		})
	}
}

func TestSplitTerminal(t *testing.T) {
	assert.Equal(t, []string{"One two", "Three", "Four"}, SplitTerminal("One two. Three!? Four..."))
	assert.Empty(t, SplitTerminal("..."))
}

func TestWordCount(t *testing.T) {
	assert.Equal(t, 0, WordCount(""))
	assert.Equal(t, 3, WordCount(" a  b\nc "))
}
