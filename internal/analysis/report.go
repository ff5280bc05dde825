package analysis

import (
	"time"

	"github.com/google/uuid"

	"github.com/dgallion1/cohere/internal/coherence"
	"github.com/dgallion1/cohere/internal/doctree"
	"github.com/dgallion1/cohere/internal/textclean"
)

// NewReport aggregates scored units. Timings, ids and the runtime flag are
// left for the caller.
func NewReport(filename string, mode Mode, ext *doctree.Extraction, units []doctree.ScoredUnit) *doctree.Report {
	pages := ext.Pages
	if pages == 0 {
		pages = textclean.PageCount(ext.Text)
	}

	md := textclean.ExtractMetadata(ext.Text)
	if md.Title == "" {
		md.Title = ext.Title
	}

	rep := &doctree.Report{
		Filename:  filename,
		Mode:      string(mode),
		Pages:     pages,
		OCR:       ext.OCR,
		Metadata:  md,
		Units:     units,
		UnitCount: len(units),
	}
	if len(units) > 0 {
		var sum float64
		for _, u := range units {
			sum += u.Score
		}
		rep.MeanScore = coherence.Round3(sum / float64(len(units)))
	}
	return rep
}

// runtimeBudget is the expected processing time for documents up to a page count.
var runtimeBudget = []struct {
	maxPages int
	limit    time.Duration
}{
	{8, 3 * time.Second},
	{15, 7 * time.Second},
	{32, 12 * time.Second},
	{100, 30 * time.Second},
}

// RuntimeExceeded reports whether processing took longer than the budget for
// its page count. Documents over 100 pages have no budget.
func RuntimeExceeded(pages int, runtime time.Duration) bool {
	for _, b := range runtimeBudget {
		if pages <= b.maxPages {
			return runtime > b.limit
		}
	}
	return false
}

func newReportID() string {
	if id, err := uuid.NewV7(); err == nil {
		return id.String()
	}
	return uuid.NewString()
}
