// Package app wires the briefing pipeline: fetch, select, translate, notify.
package app

import (
	"context"
	"time"

	"github.com/deusflow/jpnews/internal/htmltext"
	"github.com/deusflow/jpnews/internal/logger"
	"github.com/deusflow/jpnews/internal/metrics"
	"github.com/deusflow/jpnews/internal/news"
	"github.com/deusflow/jpnews/internal/rss"
	"github.com/deusflow/jpnews/internal/translate"
)

type Fetcher interface {
	FetchTopics(ctx context.Context, topics []string) ([]rss.Entry, int)
}

type Sender interface {
	SendMessage(ctx context.Context, text string) error
}

// Pipeline holds everything one run needs. Metrics and Now are optional.
type Pipeline struct {
	Topics       []string
	Rules        news.Rules
	SummaryRunes int

	Fetcher    Fetcher
	Translator *translate.Translator
	Sender     Sender
	Metrics    *metrics.Metrics
	Now        func() time.Time
}

// Report summarizes a run for the caller's log line.
type Report struct {
	Stats              news.Stats
	FeedErrors         int
	TranslationsFailed int
	Sent               bool
	SendErr            error
}

// Run executes the pipeline once. It does not return errors: every failure is
// logged and reflected in the Report.
func (p *Pipeline) Run(ctx context.Context) Report {
	var rep Report

	entries, failed := p.Fetcher.FetchTopics(ctx, p.Topics)
	rep.FeedErrors = failed

	items, stats := news.SelectWithStats(entries, p.Rules)
	rep.Stats = stats
	p.recordSelection(stats, failed)
	logger.Info("news selected",
		"fetched", stats.Fetched, "excluded", stats.Excluded,
		"duplicates", stats.Duplicates, "selected", stats.Selected)

	if len(items) == 0 {
		logger.Info("no news found, nothing to send")
		return rep
	}

	digest := make([]DigestItem, 0, len(items))
	for i, it := range items {
		title := p.translate(ctx, it.Title, &rep)
		summary := p.translate(ctx, htmltext.Summary(it.SummaryHTML, p.SummaryRunes), &rep)
		digest = append(digest, DigestItem{Title: title, Summary: summary, Link: it.Link})
		logger.Debug("item translated", "n", i+1, "source", it.SourceName, "link", it.Link)
	}

	msg := FormatDigest(p.now(), digest)
	logger.Info("sending digest", "items", len(digest), "length", len(msg))

	err := p.Sender.SendMessage(ctx, msg)
	if p.Metrics != nil {
		p.Metrics.RecordDigest(err)
	}
	if err != nil {
		logger.Error("digest delivery failed", "err", err)
		rep.SendErr = err
		return rep
	}

	logger.Info("digest sent", "items", len(digest))
	rep.Sent = true
	return rep
}

func (p *Pipeline) translate(ctx context.Context, text string, rep *Report) string {
	res := p.Translator.Translate(ctx, text)
	if res.Err != nil {
		rep.TranslationsFailed++
	}
	if p.Metrics != nil {
		p.Metrics.RecordTranslation(string(res.Outcome()))
	}
	return res.Text
}

func (p *Pipeline) recordSelection(stats news.Stats, feedErrors int) {
	if p.Metrics == nil {
		return
	}
	p.Metrics.EntriesFetched.Add(float64(stats.Fetched))
	p.Metrics.FeedErrors.Add(float64(feedErrors))
	p.Metrics.ItemsExcluded.Add(float64(stats.Excluded))
	p.Metrics.DuplicatesFound.Add(float64(stats.Duplicates))
	p.Metrics.ItemsSelected.Add(float64(stats.Selected))
}

func (p *Pipeline) now() time.Time {
	if p.Now != nil {
		return p.Now()
	}
	return time.Now()
}
