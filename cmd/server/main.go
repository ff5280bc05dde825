package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/dgallion1/cohere/internal/api"
	"github.com/dgallion1/cohere/internal/app"
	"github.com/dgallion1/cohere/internal/config"
	"github.com/dgallion1/cohere/internal/pipeline"
	"github.com/dgallion1/cohere/internal/store"
)

func main() {
	log := slog.New(slog.NewJSONHandler(os.Stdout, nil))

	cfg, err := config.Load()
	if err != nil {
		log.Error("load configuration", "error", err)
		os.Exit(1)
	}
	if err := cfg.Validate(); err != nil {
		log.Error("invalid configuration", "error", err)
		os.Exit(1)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	comps, err := app.Build(cfg, log)
	if err != nil {
		log.Error("build components", "error", err)
		os.Exit(1)
	}
	defer comps.Close()

	reports, err := store.Open(ctx, cfg.DBPath)
	if err != nil {
		log.Error("open report store", "path", cfg.DBPath, "error", err)
		os.Exit(1)
	}
	defer reports.Close()

	worker := pipeline.NewWorker(comps.Analyzer, reports, comps.Parse, log)
	orch := pipeline.NewOrchestrator(worker, cfg.WorkerCount, cfg.MaxQueueSize, cfg.JobTTL, log)
	orch.Start(ctx)

	srv := api.NewServer(orch, reports, comps.Encoder.Stats(), log, cfg)

	httpServer := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      srv,
		ReadTimeout:  60 * time.Second,
		WriteTimeout: 120 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	done := make(chan struct{})
	go func() {
		defer close(done)
		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
		<-sigCh
		log.Info("shutting down")

		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer shutdownCancel()
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			log.Warn("http shutdown", "error", err)
		}
		orch.Stop()
	}()

	log.Info("starting cohere", "port", cfg.Port, "model", cfg.EmbedModel, "db", cfg.DBPath)
	if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		log.Error("server error", "error", err)
		os.Exit(1)
	}
	<-done
}
