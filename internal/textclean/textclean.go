// Package textclean strips journal boilerplate from extracted text and finds
// the coarse structure (sections, pages, bibliographic metadata) left in it.
package textclean

import (
	"regexp"
	"strings"

	"golang.org/x/text/unicode/norm"
)

// Rule is one cleanup substitution.
type Rule struct {
	Name        string
	Pattern     *regexp.Regexp
	Replacement string
}

// BoilerplateRules removes the front-matter and page furniture common in
// research PDFs. Rules run in order.
var BoilerplateRules = []Rule{
	{"open-access", regexp.MustCompile(`(?i)OPEN ACCESS`), ""},
	{"www", regexp.MustCompile(`www\.\S+`), ""},
	{"doi", regexp.MustCompile(`doi:\S+`), ""},
	{"issn", regexp.MustCompile(`ISSN \d+`), ""},
	{"email", regexp.MustCompile(`E-?Mail:.*\n`), ""},
	{"tel", regexp.MustCompile(`Tel\.:.*\n`), ""},
	{"fax", regexp.MustCompile(`Fax\.:.*\n`), ""},
	{"received", regexp.MustCompile(`Received:.*\n`), ""},
	{"accepted", regexp.MustCompile(`Accepted:.*\n`), ""},
	{"published", regexp.MustCompile(`Published:.*\n`), ""},
	{"correspondence", regexp.MustCompile(`\bCorrespondence\b.*`), ""},
	{"author-note", regexp.MustCompile(`\* Author.*\n`), ""},
	{"page-number", regexp.MustCompile(`(?m)^[ \t]*\d{1,2}[ \t]*$`), ""},
	{"blank-lines", regexp.MustCompile(`\n{2,}`), "\n"},
}

// Apply runs rules over text in order.
func Apply(text string, rules []Rule) string {
	for _, r := range rules {
		text = r.Pattern.ReplaceAllString(text, r.Replacement)
	}
	return text
}

// Clean normalizes text to NFKC (folding ligatures such as "ﬁ") and removes
// boilerplate. Form feeds become newlines.
func Clean(text string) string {
	text = norm.NFKC.String(text)
	text = strings.ReplaceAll(text, "\f", "\n")
	text = strings.ReplaceAll(text, "\r\n", "\n")
	return strings.TrimSpace(Apply(text, BoilerplateRules))
}

// PageCount returns the number of form feeds in raw extracted text; PDF
// extractors emit one per page break.
func PageCount(raw string) int {
	return strings.Count(raw, "\f")
}
