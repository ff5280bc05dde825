// Command cohere analyzes documents locally and prints coherence reports.
//
//	cohere [-mode paragraphs|chunks] [-sort] [-save] [-o out] file...
package main

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/dgallion1/cohere/internal/analysis"
	"github.com/dgallion1/cohere/internal/app"
	"github.com/dgallion1/cohere/internal/config"
	"github.com/dgallion1/cohere/internal/doctree"
	"github.com/dgallion1/cohere/internal/parser"
	"github.com/dgallion1/cohere/internal/pipeline"
	"github.com/dgallion1/cohere/internal/store"
)

type options struct {
	mode    analysis.Mode
	sorted  bool
	save    bool
	out     string
	verbose bool
}

func main() {
	fs := flag.NewFlagSet("cohere", flag.ExitOnError)
	mode := fs.String("mode", string(analysis.ModeParagraphs), "segmentation mode: paragraphs or chunks")
	sorted := fs.Bool("sort", false, "order units by descending score")
	save := fs.Bool("save", false, "store reports in the configured database")
	out := fs.String("o", "", "write output to this file instead of stdout")
	verbose := fs.Bool("v", false, "log progress to stderr")
	fs.Usage = func() {
		fmt.Fprintln(fs.Output(), "usage: cohere [flags] file...")
		fs.PrintDefaults()
	}
	_ = fs.Parse(os.Args[1:])

	if fs.NArg() == 0 {
		fs.Usage()
		os.Exit(2)
	}

	m, err := analysis.ParseMode(*mode)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}

	opts := options{mode: m, sorted: *sorted, save: *save, out: *out, verbose: *verbose}
	if err := run(opts, fs.Args()); err != nil {
		fmt.Fprintln(os.Stderr, "cohere:", err)
		os.Exit(1)
	}
}

func run(opts options, files []string) error {
	level := slog.LevelWarn
	if opts.verbose {
		level = slog.LevelInfo
	}
	log := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))

	cfg, err := config.Load()
	if err != nil {
		return err
	}
	if err := cfg.ValidateAnalysis(); err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	comps, err := app.Build(cfg, log)
	if err != nil {
		return err
	}
	defer comps.Close()

	var reports *store.Store
	if opts.save {
		reports, err = store.Open(ctx, cfg.DBPath)
		if err != nil {
			return err
		}
		defer reports.Close()
	}

	var w io.Writer = os.Stdout
	if opts.out != "" {
		f, err := os.Create(opts.out)
		if err != nil {
			return err
		}
		defer f.Close()
		w = f
	}

	var failed []error
	for _, path := range files {
		rep, data, err := analyzeFile(ctx, comps, opts.mode, path)
		if err != nil {
			log.Error("analysis failed", "file", path, "error", err)
			failed = append(failed, fmt.Errorf("%s: %w", path, err))
			continue
		}
		if reports != nil {
			if err := reports.Save(ctx, "", pipeline.ContentHashHex(data), rep); err != nil {
				return err
			}
			log.Info("report saved", "file", path, "report_id", rep.ID)
		}
		if err := write(w, rep, opts); err != nil {
			return err
		}
	}
	return errors.Join(failed...)
}

func analyzeFile(ctx context.Context, comps *app.Components, mode analysis.Mode, path string) (*doctree.Report, []byte, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, nil, err
	}
	filename := filepath.Base(path)

	start := time.Now()
	ext, err := parser.Extract(ctx, bytes.NewReader(data), filename, comps.Parse)
	if err != nil {
		return nil, nil, err
	}
	rep, err := comps.Analyzer.Analyze(ctx, ext, filename, mode, time.Since(start))
	if err != nil {
		return nil, nil, err
	}
	return rep, data, nil
}

func write(w io.Writer, rep *doctree.Report, opts options) error {
	if opts.sorted {
		sorted := *rep
		sorted.Units = rep.SortedByScore()
		rep = &sorted
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(rep)
}
