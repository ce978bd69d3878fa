package app

import (
	"context"

	"github.com/deusflow/jpnews/internal/config"
	"github.com/deusflow/jpnews/internal/logger"
	"github.com/deusflow/jpnews/internal/metrics"
	"github.com/deusflow/jpnews/internal/news"
	"github.com/deusflow/jpnews/internal/rss"
	"github.com/deusflow/jpnews/internal/telegram"
	"github.com/deusflow/jpnews/internal/translate"
)

// New assembles the production pipeline from cfg. The returned func releases
// backend clients and is safe to call once.
func New(ctx context.Context, cfg *config.Config, m *metrics.Metrics) (*Pipeline, func()) {
	src := cfg.Sources
	backend, closeBackend := newBackend(ctx, cfg)

	if cfg.TelegramToken == "" || cfg.TelegramChatID == "" {
		logger.Warn("TELEGRAM_TOKEN or CHAT_ID is not set, delivery will fail")
	}

	p := &Pipeline{
		Topics: src.Topics,
		Rules: news.Rules{
			Exclude: src.Exclude,
			Major:   src.Major,
			Limit:   src.MaxItems,
		},
		SummaryRunes: src.SummaryRunes,
		Fetcher:      rss.NewFetcher(src.Locale),
		Translator:   translate.New(backend, src.TargetLang),
		Sender:       telegram.NewClient(cfg.TelegramToken, cfg.TelegramChatID),
		Metrics:      m,
	}
	return p, closeBackend
}

// newBackend prefers DeepL, then Gemini. No credential yields a nil backend,
// which makes the translator pass text through.
func newBackend(ctx context.Context, cfg *config.Config) (translate.Backend, func()) {
	switch {
	case cfg.DeepLAuthKey != "":
		logger.Info("translation backend selected", "backend", "deepl")
		return translate.NewDeepL(cfg.DeepLAuthKey), func() {}
	case cfg.GeminiAPIKey != "":
		g, err := translate.NewGemini(ctx, cfg.GeminiAPIKey)
		if err != nil {
			logger.Warn("gemini client unavailable, translation disabled", "err", err)
			return nil, func() {}
		}
		logger.Info("translation backend selected", "backend", "gemini")
		return g, g.Close
	default:
		logger.Info("no translation credential, titles and summaries are sent untranslated")
		return nil, func() {}
	}
}
