package pipeline

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/dgallion1/cohere/internal/analysis"
	"github.com/dgallion1/cohere/internal/doctree"
	"github.com/dgallion1/cohere/internal/parser"
	"github.com/dgallion1/cohere/internal/store"
)

// ReportStore persists finished reports and finds earlier ones for dedup.
type ReportStore interface {
	Save(ctx context.Context, jobID, contentHash string, rep *doctree.Report) error
	FindByHash(ctx context.Context, contentHash, mode string) (*store.Summary, error)
}

// Worker processes a single document job.
type Worker struct {
	analyzer  *analysis.Analyzer
	reports   ReportStore
	parseOpts parser.Options
	log       *slog.Logger
}

func NewWorker(analyzer *analysis.Analyzer, reports ReportStore, parseOpts parser.Options, log *slog.Logger) *Worker {
	return &Worker{
		analyzer:  analyzer,
		reports:   reports,
		parseOpts: parseOpts,
		log:       log,
	}
}

// Process runs extraction, segmentation and scoring for a job and stores the
// report. Any failure fails the whole job; no partial report is stored.
func (w *Worker) Process(ctx context.Context, job *Job) {
	log := w.log.With("job_id", job.ID, "filename", job.Filename, "mode", job.Mode)

	mode, err := analysis.ParseMode(job.Mode)
	if err != nil {
		w.fail(log, job, "queued", err)
		return
	}

	data := job.FileData()
	job.SetContentHash(ContentHashHex(data))

	// Phase 0: Dedup check
	if !job.Force {
		existing, err := w.reports.FindByHash(ctx, job.ContentHash, string(mode))
		switch {
		case err == nil:
			log.Info("duplicate document, reusing report", "report_id", existing.ID)
			job.Complete(StatusDuplicate, existing.ID)
			return
		case !errors.Is(err, store.ErrNotFound):
			log.Warn("dedup check failed, proceeding", "error", err)
		}
	}

	// Phase 1: Extract
	job.SetStatus(StatusExtracting, "extracting")
	start := time.Now()
	ext, err := parser.Extract(ctx, bytes.NewReader(data), job.Filename, w.parseOpts)
	if err != nil {
		w.fail(log, job, "extracting", err)
		return
	}
	extraction := time.Since(start)
	job.SetPages(ext.Pages)
	log.Info("extracted text", "pages", ext.Pages, "ocr", ext.OCR, "duration_ms", extraction.Milliseconds())

	// Phase 2: Segment
	job.SetStatus(StatusSegmenting, "segmenting")
	analysisStart := time.Now()
	units, err := w.analyzer.Segment(ctx, ext.Text, mode)
	if err != nil {
		w.fail(log, job, "segmenting", err)
		return
	}
	job.SetUnits(len(units))
	log.Info("segmented document", "units", len(units))

	// Phase 3: Score
	job.SetStatus(StatusScoring, "scoring")
	scored, err := w.analyzer.Score(ctx, units, mode)
	if err != nil {
		w.fail(log, job, "scoring", err)
		return
	}
	job.SetScored(len(scored))

	rep := w.analyzer.Assemble(job.Filename, mode, ext, scored, extraction, time.Since(analysisStart))

	// Phase 4: Store
	if err := w.reports.Save(ctx, job.ID, job.ContentHash, rep); err != nil {
		w.fail(log, job, "storing", err)
		return
	}
	job.Complete(StatusCompleted, rep.ID)
	log.Info("job complete", "report_id", rep.ID, "units", rep.UnitCount, "mean_score", rep.MeanScore)
}

func (w *Worker) fail(log *slog.Logger, job *Job, phase string, err error) {
	log.Error("job failed", "phase", phase, "error", err)
	job.AddError(fmt.Sprintf("%s: %s", phase, err))
	job.SetStatus(StatusFailed, phase)
}
