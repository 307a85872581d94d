package main

import (
	"context"
	"flag"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/alejandrodnm/stratsweep/config"
	"github.com/alejandrodnm/stratsweep/internal/adapters/csvdata"
	"github.com/alejandrodnm/stratsweep/internal/adapters/histdata"
	"github.com/alejandrodnm/stratsweep/internal/adapters/notify"
	"github.com/alejandrodnm/stratsweep/internal/adapters/storage"
	"github.com/alejandrodnm/stratsweep/internal/engine"
	"github.com/alejandrodnm/stratsweep/internal/ports"
	"github.com/alejandrodnm/stratsweep/internal/strategy"
)

func main() {
	configPath := flag.String("config", "config/config.yaml", "path to config file")
	dryRun := flag.Bool("dry-run", false, "print the grid size and exit without evaluating")
	verbose := flag.Bool("verbose", false, "set log level to debug")
	logFormat := flag.String("format", "", "log format: text|json (overrides config)")
	table := flag.Bool("table", false, "print full leaderboard table (default: compact 1-line)")
	topK := flag.Int("k", 0, "leaderboard size (overrides config)")
	workers := flag.Int("workers", 0, "worker pool size (overrides config)")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		slog.Error("failed to load config", "err", err, "path", *configPath)
		os.Exit(1)
	}

	if *verbose {
		cfg.Log.Level = "debug"
	}
	if *logFormat != "" {
		cfg.Log.Format = *logFormat
	}
	if *topK > 0 {
		cfg.Sweep.TopK = *topK
	}
	if *workers > 0 {
		cfg.Sweep.Workers = *workers
	}
	setupLogger(cfg.Log)

	grid := engine.Grid{
		Strategy:    cfg.Grid.Strategy,
		Instruments: cfg.Grid.Instruments,
		From:        cfg.Grid.From,
		To:          cfg.Grid.To,
		Params:      cfg.Grid.Params,
	}

	slog.Info("stratsweep starting",
		"config", *configPath,
		"strategy", cfg.Grid.Strategy,
		"instruments", cfg.Grid.Instruments,
		"candidates", grid.Count(),
		"top_k", cfg.Sweep.TopK,
		"dry_run", *dryRun,
	)

	if *dryRun {
		slog.Info("dry run — grid not evaluated", "candidates", grid.Count())
		return
	}

	var provider ports.MarketProvider
	switch cfg.Data.Source {
	case "http":
		provider = histdata.NewClient(cfg.Data.HTTPURL)
	default:
		provider = csvdata.NewProvider(cfg.Data.CSVDir)
	}

	policy, err := strategy.PolicyFor(cfg.Sweep.Policy)
	if err != nil {
		slog.Error("invalid policy", "err", err)
		os.Exit(1)
	}

	var sink ports.ReportSink
	if cfg.Report.DSN != "" {
		s, err := storage.NewSQLiteSink(cfg.Report.DSN)
		if err != nil {
			slog.Error("failed to open report sink", "err", err, "dsn", cfg.Report.DSN)
			os.Exit(1)
		}
		defer s.Close()
		sink = s
		slog.Info("report sink open", "dsn", cfg.Report.DSN, "run", s.RunID())
	}

	eng := engine.New(provider, strategy.Factory(), policy, cfg.Bar())
	sweep := engine.NewSweep(eng, sink, engine.SweepConfig{
		Workers: cfg.Sweep.Workers,
		TopK:    cfg.Sweep.TopK,
	})

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	started := time.Now()
	summary := sweep.Run(ctx, grid.Stream(ctx))
	slog.Info("sweep done", "elapsed", time.Since(started).Round(time.Millisecond))

	notifier := notify.NewConsole(*table)
	if err := notifier.Notify(context.Background(), summary); err != nil {
		slog.Warn("notifier error", "err", err)
	}

	if summary.Cancelled {
		slog.Warn("stratsweep interrupted — partial leaderboard reported")
		return
	}
	slog.Info("stratsweep stopped cleanly")
}

func setupLogger(cfg config.LogConfig) {
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
	if cfg.Format == "json" {
		handler = slog.NewJSONHandler(os.Stdout, opts)
	} else {
		handler = slog.NewTextHandler(os.Stdout, opts)
	}
	slog.SetDefault(slog.New(handler))
}
