package main

import (
	"context"
	"log"
	"time"

	"github.com/joho/godotenv"

	"github.com/deusflow/jpnews/internal/app"
	"github.com/deusflow/jpnews/internal/config"
	"github.com/deusflow/jpnews/internal/logger"
	"github.com/deusflow/jpnews/internal/metrics"
)

func main() {
	// .env is optional; scheduled runs get their variables from the environment
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("invalid configuration: %v", err)
	}
	logger.Init(cfg.Debug)

	ctx := context.Background()
	started := time.Now()
	m := metrics.New()

	pipeline, closeFn := app.New(ctx, cfg, m)
	defer closeFn()

	rep := pipeline.Run(ctx)
	logger.Info("run finished",
		"selected", rep.Stats.Selected,
		"feed_errors", rep.FeedErrors,
		"translation_errors", rep.TranslationsFailed,
		"sent", rep.Sent,
		"took", time.Since(started).Round(time.Millisecond))

	m.Finish(started)
	if err := m.Push(ctx, cfg.PushgatewayURL); err != nil {
		logger.Warn("metrics push failed", "err", err)
	}
}
