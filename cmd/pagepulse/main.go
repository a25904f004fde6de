package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/use-agent/pagepulse/api"
	"github.com/use-agent/pagepulse/census"
	"github.com/use-agent/pagepulse/config"
	"github.com/use-agent/pagepulse/fetch"
	"github.com/use-agent/pagepulse/llm"
	"github.com/use-agent/pagepulse/meta"
	"github.com/use-agent/pagepulse/pagespeed"
	"github.com/use-agent/pagepulse/probe"
	"github.com/use-agent/pagepulse/render"
	"github.com/use-agent/pagepulse/score"
)

func main() {
	// ── 1. Load configuration ───────────────────────────────────────
	cfg := config.Load()

	// ── 2. Initialise structured logging ────────────────────────────
	initLogger(cfg.Log)
	slog.Info("pagepulse starting",
		"host", cfg.Server.Host,
		"port", cfg.Server.Port,
		"mode", cfg.Server.Mode,
		"browser", cfg.Browser.Enabled,
		"maxPages", cfg.Browser.MaxPages,
	)

	// ── 3. Initialise renderer (launches browser when enabled) ──────
	var renderer *render.Renderer
	if cfg.Browser.Enabled {
		r, err := render.New(cfg.Browser, cfg.Census)
		if err != nil {
			slog.Error("failed to initialise renderer", "error", err)
			os.Exit(1)
		}
		renderer = r
		defer renderer.Close()
	} else {
		slog.Info("browser disabled, every census runs in static mode")
	}

	// ── 4. Initialise subsystems ────────────────────────────────────
	fetcher := fetch.NewClient(cfg.Browser.Proxy)
	prober := probe.New(cfg.Probe, nil)
	censusSvc := buildCensusService(renderer, fetcher, prober, cfg.Census)
	psClient := pagespeed.NewClient(cfg.PageSpeed, nil)
	summarizer := llm.NewSummarizer(llm.NewClient(&http.Client{Timeout: cfg.LLM.Timeout}, cfg.LLM.BaseURL, cfg.LLM.Model))
	extractor := meta.NewExtractor()

	// ── 4b. Scoring thresholds (optional YAML override) ─────────────
	thresholds := score.Defaults()
	if cfg.Score.ThresholdsFile != "" {
		t, err := score.LoadFile(cfg.Score.ThresholdsFile)
		if err != nil {
			slog.Error("failed to load score thresholds", "file", cfg.Score.ThresholdsFile, "error", err)
			os.Exit(1)
		}
		thresholds = t
		slog.Info("score thresholds loaded", "file", cfg.Score.ThresholdsFile)
	}

	// ── 5. Setup router ─────────────────────────────────────────────
	deps := api.Deps{
		PageSpeed:  psClient,
		Census:     censusSvc,
		Summarizer: summarizer,
		Fetcher:    fetcher,
		Extractor:  extractor,
		Thresholds: thresholds,
		StartTime:  time.Now(),
	}
	if renderer != nil {
		deps.Stats = renderer
	}
	router := api.NewRouter(deps, cfg)

	// ── 6. Start HTTP server ────────────────────────────────────────
	addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	srv := &http.Server{
		Addr:    addr,
		Handler: router,
	}

	go func() {
		slog.Info("HTTP server listening", "addr", addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.Error("HTTP server error", "error", err)
			os.Exit(1)
		}
	}()

	// ── 7. Graceful shutdown ────────────────────────────────────────
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	sig := <-quit
	slog.Info("shutdown signal received", "signal", sig.String())

	// Give in-flight requests 5 seconds to complete.
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		slog.Error("HTTP server forced shutdown", "error", err)
	} else {
		slog.Info("HTTP server drained gracefully")
	}

	// renderer.Close() runs via defer — drains page pool and kills Chrome.
	slog.Info("pagepulse stopped")
}

// buildCensusService keeps the nil-renderer wiring in one place: a typed nil
// *render.Renderer must not end up inside a non-nil interface value.
func buildCensusService(renderer *render.Renderer, fetcher *fetch.Client, prober *probe.Prober, cfg config.CensusConfig) *census.Service {
	if renderer == nil {
		return census.NewService(nil, fetcher, prober, cfg)
	}
	return census.NewService(renderer, fetcher, prober, cfg)
}

// initLogger configures slog based on the LogConfig.
func initLogger(cfg config.LogConfig) {
	var level slog.Level
	switch cfg.Level {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		level = slog.LevelInfo
	}

	opts := &slog.HandlerOptions{Level: level}

	var handler slog.Handler
	if cfg.Format == "text" {
		handler = slog.NewTextHandler(os.Stdout, opts)
	} else {
		handler = slog.NewJSONHandler(os.Stdout, opts)
	}

	slog.SetDefault(slog.New(handler))
}
