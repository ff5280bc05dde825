// Package structure splits markdown-style text into header-bounded blocks.
package structure

import (
	"regexp"
	"strings"

	"github.com/dgallion1/cohere/internal/doctree"
)

// DefaultMinWords is the shortest block Structure keeps.
const DefaultMinWords = 150

// FullTextLabel labels the single block produced when a text has no usable headers.
const FullTextLabel = "Full Text"

var headerRe = regexp.MustCompile(`^(#{1,10})\s+(.+)$`)

// ExtractHeaders returns every header line of text in document order.
func ExtractHeaders(text string) []doctree.Header {
	var headers []doctree.Header
	for _, line := range strings.Split(text, "\n") {
		m := headerRe.FindStringSubmatch(strings.TrimSpace(line))
		if m == nil {
			continue
		}
		headers = append(headers, doctree.Header{
			Level: len(m[1]),
			Title: strings.TrimSpace(m[2]),
		})
	}
	return headers
}

// Structure pairs each valid header with the next valid header and keeps the
// text between them when it has at least minWords words. Scanning resumes at
// the end header of every pair, kept or not, so a header can close one block
// and open the next. Block ids count emitted blocks only.
//
// A text with no valid start/end pair at all yields one FullTextLabel block
// holding the whole trimmed text. A text whose pairs are all too short yields
// no blocks.
func Structure(text string, minWords int) []*doctree.Block {
	headers := ExtractHeaders(text)

	var blocks []*doctree.Block
	paired := false
	for i := 0; i < len(headers); {
		start := nextValid(headers, i)
		if start >= len(headers) {
			break
		}
		end := nextValid(headers, start+1)
		if end >= len(headers) {
			break
		}
		paired = true

		startTitle, endTitle := headers[start].Title, headers[end].Title
		if body, ok := between(text, startTitle, endTitle); ok && len(strings.Fields(body)) >= minWords {
			blocks = append(blocks, doctree.NewBlock(len(blocks), startTitle, endTitle, body))
		}
		i = end
	}

	if !paired {
		trimmed := strings.TrimSpace(text)
		if trimmed == "" {
			return nil
		}
		return []*doctree.Block{doctree.NewBlock(0, FullTextLabel, "", trimmed)}
	}
	return blocks
}

func nextValid(headers []doctree.Header, from int) int {
	for from < len(headers) && !headers[from].Valid() {
		from++
	}
	return from
}

// between returns the text after the first occurrence of start and before the
// first following occurrence of end, without trailing header lines.
func between(text, start, end string) (string, bool) {
	pos := strings.Index(text, start)
	if pos < 0 {
		return "", false
	}
	pos += len(start)
	off := strings.Index(text[pos:], end)
	if off < 0 {
		return "", false
	}

	lines := strings.Split(strings.TrimSpace(text[pos:pos+off]), "\n")
	for len(lines) > 0 && strings.HasPrefix(strings.TrimSpace(lines[len(lines)-1]), "#") {
		lines = lines[:len(lines)-1]
	}
	body := strings.TrimSpace(strings.Join(lines, "\n"))
	return body, body != ""
}
