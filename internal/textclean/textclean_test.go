package textclean

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClean_RemovesBoilerplate(t *testing.T) {
	raw := "OPEN ACCESS\nA study of ﬁsh.\nReceived: 1 May 2020\nAccepted: 2 June 2020\n" +
		"See www.example.org for data.\n\n\n12\nBody text continues.\fNext page.\n" +
		"E-Mail: someone@example.org\nCorrespondence to the author"
	got := Clean(raw)

	assert.NotContains(t, got, "OPEN ACCESS")
	assert.NotContains(t, got, "Received")
	assert.NotContains(t, got, "Accepted")
	assert.NotContains(t, got, "www.")
	assert.NotContains(t, got, "someone@example.org")
	assert.NotContains(t, got, "Correspondence")
	assert.NotContains(t, got, "\n12\n")
	assert.NotContains(t, got, "\n\n")
	assert.Contains(t, got, "A study of fish.", "ligatures fold under NFKC")
	assert.Contains(t, got, "Body text continues.\nNext page.")
}

func ruleNamed(t *testing.T, name string) Rule {
	t.Helper()
	for _, r := range BoilerplateRules {
		if r.Name == name {
			return r
		}
	}
	t.Fatalf("no rule named %q", name)
	return Rule{}
}

func TestBoilerplateRules_EachRule(t *testing.T) {
	tests := []struct {
		rule string
		in   string
		want string
	}{
		{"open-access", "OPEN ACCESS Journal", " Journal"},
		{"open-access", "Open Access article", " article"},
		{"www", "see www.example.org now", "see  now"},
		{"doi", "ref doi:10.1000/182 end", "ref  end"},
		{"issn", "ISSN 2045 print", " print"},
		{"email", "E-Mail: a@b.org\nbody", "body"},
		{"email", "EMail: a@b.org\nbody", "body"},
		{"tel", "Tel.: +1 555 0100\nbody", "body"},
		{"fax", "Fax.: +1 555 0101\nbody", "body"},
		{"received", "Received: 1 May 2020\nbody", "body"},
		{"accepted", "Accepted: 2 June 2020\nbody", "body"},
		{"published", "Published: 3 July 2020\nbody", "body"},
		{"correspondence", "intro\nCorrespondence to Dr X\nbody", "intro\n\nbody"},
		{"author-note", "* Author to whom notes go\nbody", "body"},
		{"page-number", "text\n12\nmore", "text\n\nmore"},
		{"page-number", "text\n  7 \nmore", "text\n\nmore"},
		{"page-number", "text\n123\nmore", "text\n123\nmore"},
		{"page-number", "in 12 cases", "in 12 cases"},
		{"blank-lines", "a\n\n\nb", "a\nb"},
		{"blank-lines", "a\nb", "a\nb"},
	}

	covered := map[string]bool{}
	for _, tt := range tests {
		covered[tt.rule] = true
		t.Run(tt.rule, func(t *testing.T) {
			got := Apply(tt.in, []Rule{ruleNamed(t, tt.rule)})
			assert.Equal(t, tt.want, got)
		})
	}
	for _, r := range BoilerplateRules {
		assert.True(t, covered[r.Name], "rule %q has no case", r.Name)
	}
}

func TestApply_InOrder(t *testing.T) {
	rules := []Rule{
		{Name: "a", Pattern: BoilerplateRules[0].Pattern, Replacement: "X"},
		{Name: "b", Pattern: BoilerplateRules[len(BoilerplateRules)-1].Pattern, Replacement: " "},
	}
	assert.Equal(t, "X X", Apply("open access\n\n\nOPEN ACCESS", rules))
}

func TestPageCount(t *testing.T) {
	assert.Equal(t, 0, PageCount("no breaks"))
	assert.Equal(t, 3, PageCount("a\fb\fc\f"))
}

func TestDetectSections(t *testing.T) {
	text := "Preamble text\nAbstract\nWe study things.\n  INTRODUCTION \nThings matter.\nMore.\nReferences\n[1] A paper."
	sections := DetectSections(text)
	require.Len(t, sections, 3)

	assert.Equal(t, "Abstract", sections[0].Label)
	assert.Equal(t, "We study things.", sections[0].Content)
	assert.Equal(t, "INTRODUCTION", sections[1].Label)
	assert.Equal(t, "Things matter.\nMore.", sections[1].Content)
	assert.Equal(t, "References", sections[2].Label)
	assert.Equal(t, "[1] A paper.", sections[2].Content)
}

func TestDetectSections_NoHeaders(t *testing.T) {
	sections := DetectSections("just text about the introduction of things")
	require.Len(t, sections, 1)
	assert.Equal(t, FullTextLabel, sections[0].Label)
	assert.Equal(t, "just text about the introduction of things", sections[0].Content)
}

func TestExtractMetadata(t *testing.T) {
	raw := "What is Sustainability?\n[version 2; peer review: 2 approved]\n" +
		"https://doi.org/10.12688/gatesopenres.13045.2, accessed via https://example.org/paper).\n"
	md := ExtractMetadata(raw)

	assert.Equal(t, "What is Sustainability?", md.Title)
	assert.Equal(t, "10.12688/gatesopenres.13045.2", md.DOI)
	assert.Equal(t, "https://doi.org/10.12688/gatesopenres.13045.2", md.URL)
}

func TestExtractMetadata_Missing(t *testing.T) {
	md := ExtractMetadata("nothing useful here")
	assert.Empty(t, md.Title)
	assert.Empty(t, md.DOI)
	assert.Empty(t, md.URL)
}
