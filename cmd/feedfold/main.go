package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"github.com/feedfold/feedfold/internal/aggregator"
	"github.com/feedfold/feedfold/internal/config"
	"github.com/feedfold/feedfold/internal/logger"
	"github.com/feedfold/feedfold/internal/mirrorstate"
	"github.com/feedfold/feedfold/internal/snapshot"
	"github.com/feedfold/feedfold/pkg/feeds"
	"github.com/feedfold/feedfold/pkg/httpclient"
	"github.com/feedfold/feedfold/pkg/notify"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "feedfold: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	configPath := flag.String("config", "feedfold.yaml", "path to the configuration file")
	days := flag.Int("days", 0, "recency cutoff in days, overrides the configured value")
	flag.Parse()

	// Optional; absence of a .env file is the normal case.
	_ = godotenv.Load()

	cfg, err := config.Load(*configPath)
	if err != nil {
		return err
	}
	if *days > 0 {
		cfg.Days = *days
	}

	log, err := logger.New(cfg.LogLevel)
	if err != nil {
		return fmt.Errorf("init logger: %w", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var memory feeds.MirrorMemory
	if cfg.StatePath != "" {
		state, serr := mirrorstate.Open(cfg.StatePath)
		if serr != nil {
			log.WarnObj("mirror state unavailable, candidate order falls back to config", "mirror_state_error", map[string]any{
				"path":  cfg.StatePath,
				"error": serr.Error(),
			})
		} else {
			defer state.Close()
			memory = state
		}
	}

	fetcher := feeds.NewFetcher(httpclient.NewRestyClient(cfg.Timeout), log, feeds.Options{
		MirrorHosts: cfg.MirrorHosts,
		Timeout:     cfg.Timeout,
		MaxEntries:  cfg.MaxEntries,
		Memory:      memory,
	})

	var notifiers []notify.Notifier
	if cfg.NotifiersPath != "" {
		cfgs, nerr := notify.LoadConfigs(cfg.NotifiersPath)
		if nerr == nil {
			notifiers, nerr = notify.BuildAll(ctx, notify.DefaultRegistry(), cfgs, log)
		}
		if nerr != nil {
			log.WarnObj("notifiers disabled for this run", "notify_config_error", map[string]any{
				"path":  cfg.NotifiersPath,
				"error": nerr.Error(),
			})
			notifiers = nil
		}
	}

	store := snapshot.NewStore(cfg.OutputPath)
	agg := aggregator.New(fetcher, store, notifiers, log, cfg.Workers)

	log.InfoObj("starting feed aggregation", "run_start", map[string]any{
		"groups":  len(cfg.Groups),
		"days":    cfg.Days,
		"workers": cfg.Workers,
		"output":  cfg.OutputPath,
	})

	// Per-source failures are logged inside the run and never fail the
	// process; only an unwritable snapshot does.
	if _, err := agg.Run(ctx, cfg.Groups, cfg.Days); err != nil {
		return fmt.Errorf("write snapshot: %w", err)
	}
	return nil
}
