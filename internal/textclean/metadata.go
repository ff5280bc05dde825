package textclean

import (
	"regexp"
	"strings"

	"github.com/dgallion1/cohere/internal/doctree"
)

var (
	titleRe       = regexp.MustCompile(`(?s)^(.+?)\s*\[version`)
	doiRe         = regexp.MustCompile(`(?i)10\.\d{4,9}/[-._;()/:A-Z0-9]+`)
	doiTrailRe    = regexp.MustCompile(`[^a-zA-Z0-9./:-]+$`)
	urlRe         = regexp.MustCompile(`https?://\S+`)
	urlTrailRe    = regexp.MustCompile(`[^\w:/?=&.-]+$`)
	maxTitleRunes = 300
)

// ExtractMetadata recovers the title, DOI and first URL from raw text.
// Missing fields are left empty.
func ExtractMetadata(text string) doctree.Metadata {
	var md doctree.Metadata

	if m := titleRe.FindStringSubmatch(text); m != nil {
		title := strings.Join(strings.Fields(m[1]), " ")
		if r := []rune(title); len(r) > maxTitleRunes {
			title = string(r[:maxTitleRunes])
		}
		md.Title = title
	}
	if doi := doiRe.FindString(text); doi != "" {
		md.DOI = strings.TrimRight(doiTrailRe.ReplaceAllString(doi, ""), ".")
	}
	if u := urlRe.FindString(text); u != "" {
		md.URL = urlTrailRe.ReplaceAllString(u, "")
	}
	return md
}
