package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"github.com/Ufymau/newsdigest/internal/config"
	"github.com/Ufymau/newsdigest/internal/enrich"
	"github.com/Ufymau/newsdigest/internal/lang"
	"github.com/Ufymau/newsdigest/internal/logger"
	"github.com/Ufymau/newsdigest/internal/pipeline"
	"github.com/Ufymau/newsdigest/internal/scheduler"
	"github.com/Ufymau/newsdigest/internal/store"
	"github.com/Ufymau/newsdigest/pkg/channel"
	"github.com/Ufymau/newsdigest/pkg/feed"
	"github.com/Ufymau/newsdigest/pkg/httpclient"
	"github.com/Ufymau/newsdigest/pkg/sinks"
	"github.com/Ufymau/newsdigest/pkg/translate"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run() error {
	configPath := flag.String("config", "", "optional YAML config file")
	flag.Parse()

	// .env is optional; real deployments pass the environment directly.
	_ = godotenv.Load()

	cfg, err := config.Load(*configPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	log, err := logger.New("newsdigest", cfg.LogLevel)
	if err != nil {
		return fmt.Errorf("build logger: %w", err)
	}

	st, err := store.Open(cfg.DBPath, log)
	if err != nil {
		return err
	}
	defer st.Close()

	// The feed client routes through the configured proxy; the rest of
	// the outbound traffic goes direct.
	feedClient := httpclient.NewRestyClient(cfg.RequestTimeout, cfg.ProxyURL)
	directClient := httpclient.NewRestyClient(cfg.RequestTimeout, "")

	gateway, err := feed.NewRapidAPIGateway(feedClient, cfg.FeedURL, cfg.FeedAPIKey, cfg.FeedAPIHost)
	if err != nil {
		return err
	}

	translator, err := translate.NewGoogleTranslator(directClient)
	if err != nil {
		return err
	}

	tg, err := channel.NewTelegram(directClient, cfg.TelegramToken)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	var eventSinks []sinks.Sink
	if cfg.SinksConfigPath != "" {
		sinkCfgs, err := sinks.LoadConfigs(cfg.SinksConfigPath)
		if err != nil {
			return fmt.Errorf("load sinks: %w", err)
		}
		eventSinks, err = sinks.BuildAll(ctx, sinks.DefaultRegistry(), sinkCfgs, log)
		if err != nil {
			return fmt.Errorf("build sinks: %w", err)
		}
	}

	var enricher *enrich.Enricher
	if cfg.EnrichWorkers > 0 {
		enricher = enrich.New(directClient, cfg.EnrichWorkers, log)
	}

	ingestor := pipeline.NewIngestor(gateway, st, enricher, eventSinks, log, nil)
	filler := pipeline.NewFiller(st, translator, lang.Targets(), log)
	querier := pipeline.NewQuerier(st, nil)
	deliverer := pipeline.NewDeliverer(st, querier, tg, cfg.DeliveryFanout, cfg.MaxMessageLen, cfg.SeparatorLen, log)
	pipe := pipeline.New(ingestor, filler, deliverer, log)

	// Backfill translations for whatever is already stored before the
	// first scheduled run.
	filler.Fill(ctx)

	sched := scheduler.New(log)
	if err := sched.Add(cfg.MorningCron, "digest_morning", pipe.RunDigest); err != nil {
		return err
	}
	if err := sched.Add(cfg.EveningCron, "digest_evening", pipe.RunDigest); err != nil {
		return err
	}
	sched.Start()

	log.InfoObj("newsdigest started", "startup", map[string]any{
		"db_path":   cfg.DBPath,
		"languages": lang.Supported,
	})

	<-ctx.Done()
	log.InfoObj("shutting down", "shutdown", nil)
	sched.Stop()
	return nil
}
