package segment

import (
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/dgallion1/cohere/internal/doctree"
)

// WordCount returns the number of whitespace-separated words in text.
func WordCount(text string) int {
	return len(strings.Fields(text))
}

var terminalRe = regexp.MustCompile(`[.!?]+`)

// SplitTerminal splits text on runs of terminal punctuation, dropping the
// punctuation and empty fragments. It is the coarse splitter used for chunking
// and scoring, where punctuation carries no meaning downstream.
func SplitTerminal(text string) []string {
	parts := terminalRe.Split(text, -1)
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p != "" {
			out = append(out, p)
		}
	}
	return out
}

// abbreviations never end a sentence.
var abbreviations = map[string]bool{
	"mr": true, "mrs": true, "ms": true, "dr": true, "prof": true, "sr": true, "jr": true,
	"st": true, "vs": true, "etc": true, "al": true, "fig": true, "figs": true, "eq": true,
	"eqs": true, "no": true, "vol": true, "pp": true, "ref": true, "refs": true, "sec": true,
	"ch": true, "approx": true, "cf": true, "e.g": true, "i.e": true, "resp": true,
}

// SplitSentences splits text into sentences, keeping terminal punctuation.
// A boundary is a '.', '!' or '?' followed by a newline, by whitespace and an
// upper-case letter or digit, or by the end of the text. Decimal points and
// known abbreviations are not boundaries. Whitespace inside a sentence is
// collapsed to single spaces. The result is deterministic for a given input.
func SplitSentences(text string) []doctree.Sentence {
	var out []doctree.Sentence
	start := 0
	for _, b := range sentenceBoundaries(text) {
		if s := normalize(text[start:b]); s != "" {
			out = append(out, doctree.Sentence{Text: s})
		}
		start = b
	}
	if s := normalize(text[start:]); s != "" {
		out = append(out, doctree.Sentence{Text: s})
	}
	return out
}

func normalize(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

// sentenceBoundaries returns byte offsets just past each sentence end.
func sentenceBoundaries(text string) []int {
	var bounds []int
	for i := 0; i < len(text); {
		r, size := utf8.DecodeRuneInString(text[i:])
		if r != '.' && r != '!' && r != '?' {
			i += size
			continue
		}
		// Consume a run of terminal punctuation and closing quotes/brackets.
		end := i + size
		for end < len(text) && strings.ContainsRune(".!?\"')]", rune(text[end])) {
			end++
		}
		if r == '.' && (isDecimalDot(text, i) || isAbbreviation(text, i)) {
			i = end
			continue
		}
		if end >= len(text) {
			bounds = append(bounds, len(text))
			break
		}
		next, nsize := utf8.DecodeRuneInString(text[end:])
		switch {
		case next == '\n':
			bounds = append(bounds, end)
		case unicode.IsSpace(next):
			j := end + nsize
			for j < len(text) && text[j] == ' ' {
				j++
			}
			if j >= len(text) {
				bounds = append(bounds, len(text))
			} else if after, _ := utf8.DecodeRuneInString(text[j:]); unicode.IsUpper(after) || unicode.IsDigit(after) || after == '\n' {
				bounds = append(bounds, end)
			}
		}
		i = end
	}
	return bounds
}

func isDecimalDot(text string, pos int) bool {
	if pos == 0 || pos+1 >= len(text) {
		return false
	}
	return isASCIIDigit(text[pos-1]) && isASCIIDigit(text[pos+1])
}

func isASCIIDigit(b byte) bool {
	return b >= '0' && b <= '9'
}

// isAbbreviation reports whether the word ending at the dot in pos is a known
// abbreviation or a single capital initial ("J. Smith").
func isAbbreviation(text string, pos int) bool {
	start := pos
	for start > 0 {
		r, size := utf8.DecodeLastRuneInString(text[:start])
		if unicode.IsSpace(r) || r == '(' {
			break
		}
		start -= size
	}
	word := text[start:pos]
	if word == "" {
		return false
	}
	if utf8.RuneCountInString(word) == 1 {
		r, _ := utf8.DecodeRuneInString(word)
		return unicode.IsUpper(r)
	}
	return abbreviations[strings.ToLower(word)]
}
