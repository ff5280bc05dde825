package doctree

import (
	"regexp"
	"strings"
)

// MaxHeaderLen is the longest title (after markup stripping) accepted as a header.
const MaxHeaderLen = 200

// invalidHeaderPatterns reject titles that are markup, paths or quoted fragments
// rather than section names.
var invalidHeaderPatterns = []*regexp.Regexp{
	regexp.MustCompile(`<[^>]*>`), // HTML/XML tags
	regexp.MustCompile(`[\\/]`),   // backslash or forward slash
	regexp.MustCompile(`'`),       // single quote
}

// Header is a markdown-style header line.
type Header struct {
	Level int    // Number of leading markers, 1..10.
	Title string // Header text with the markers stripped.
}

// Valid reports whether the header title looks like a real section name.
func (h Header) Valid() bool {
	if strings.TrimSpace(h.Title) == "" {
		return false
	}
	clean := strings.TrimSpace(strings.NewReplacer("*", "", "#", "").Replace(h.Title))
	if clean == "" || len(clean) > MaxHeaderLen {
		return false
	}
	for _, re := range invalidHeaderPatterns {
		if re.MatchString(clean) {
			return false
		}
	}
	return true
}
