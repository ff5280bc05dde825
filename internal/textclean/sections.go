package textclean

import (
	"regexp"
	"strings"
)

// FullTextLabel labels the single section returned when no header is found.
const FullTextLabel = "Full Text"

// SectionHeaders are the standalone lines recognized as section starts.
var SectionHeaders = []string{
	"abstract", "introduction", "background", "literature review", "related work",
	"method", "methodology", "approach", "results", "experiments",
	"discussion", "conclusion", "references", "acknowledgements",
}

var sectionRe = regexp.MustCompile(`(?i)\n\s*(?:` + strings.Join(SectionHeaders, "|") + `)\s*\n`)

// Section is a labeled span of cleaned text.
type Section struct {
	Label   string
	Content string
}

// DetectSections splits text at standalone section-header lines. Text before
// the first header is discarded. Without any header the whole text is one
// FullTextLabel section.
func DetectSections(text string) []Section {
	matches := sectionRe.FindAllStringIndex(text, -1)
	if len(matches) == 0 {
		return []Section{{Label: FullTextLabel, Content: text}}
	}

	sections := make([]Section, 0, len(matches))
	for i, m := range matches {
		end := len(text)
		if i+1 < len(matches) {
			end = matches[i+1][0]
		}
		sections = append(sections, Section{
			Label:   strings.TrimSpace(text[m[0]:m[1]]),
			Content: strings.TrimSpace(text[m[1]:end]),
		})
	}
	return sections
}
