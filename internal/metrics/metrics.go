// Package metrics records one run of the briefing job. A run is short-lived,
// so values are pushed to a Pushgateway instead of being scraped.
package metrics

import (
	"context"
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/push"
)

const jobName = "jpnews"

type Metrics struct {
	registry *prometheus.Registry

	EntriesFetched   prometheus.Counter
	FeedErrors       prometheus.Counter
	ItemsExcluded    prometheus.Counter
	DuplicatesFound  prometheus.Counter
	ItemsSelected    prometheus.Counter
	Translations     *prometheus.CounterVec
	DigestsSent      *prometheus.CounterVec
	LastRunTimestamp prometheus.Gauge
	RunDuration      prometheus.Gauge
}

func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		EntriesFetched: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "jpnews_feed_entries_total",
			Help: "Feed entries fetched across all topics.",
		}),
		FeedErrors: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "jpnews_feed_errors_total",
			Help: "Topics whose feed could not be fetched or parsed.",
		}),
		ItemsExcluded: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "jpnews_items_excluded_total",
			Help: "Entries dropped by the source exclusion list.",
		}),
		DuplicatesFound: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "jpnews_items_duplicate_total",
			Help: "Entries dropped because their link was already seen.",
		}),
		ItemsSelected: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "jpnews_items_selected_total",
			Help: "Entries kept for the digest.",
		}),
		Translations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "jpnews_translations_total",
			Help: "Translation calls by outcome.",
		}, []string{"outcome"}),
		DigestsSent: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "jpnews_digests_total",
			Help: "Digest deliveries by outcome.",
		}, []string{"outcome"}),
		LastRunTimestamp: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "jpnews_last_run_timestamp_seconds",
			Help: "Unix time the last run finished.",
		}),
		RunDuration: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "jpnews_run_duration_seconds",
			Help: "Wall time of the last run.",
		}),
	}

	m.registry.MustRegister(
		m.EntriesFetched,
		m.FeedErrors,
		m.ItemsExcluded,
		m.DuplicatesFound,
		m.ItemsSelected,
		m.Translations,
		m.DigestsSent,
		m.LastRunTimestamp,
		m.RunDuration,
	)
	return m
}

// Registry exposes the underlying registry, mainly for tests.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

func (m *Metrics) RecordTranslation(outcome string) {
	m.Translations.WithLabelValues(outcome).Inc()
}

func (m *Metrics) RecordDigest(err error) {
	if err != nil {
		m.DigestsSent.WithLabelValues("failed").Inc()
		return
	}
	m.DigestsSent.WithLabelValues("ok").Inc()
}

// Finish stamps the run end time and duration.
func (m *Metrics) Finish(started time.Time) {
	now := time.Now()
	m.RunDuration.Set(now.Sub(started).Seconds())
	m.LastRunTimestamp.Set(float64(now.Unix()))
}

// Push sends the registry to a Pushgateway. An empty url is a no-op.
func (m *Metrics) Push(ctx context.Context, url string) error {
	if url == "" {
		return nil
	}
	if err := push.New(url, jobName).Gatherer(m.registry).PushContext(ctx); err != nil {
		return fmt.Errorf("push metrics: %w", err)
	}
	return nil
}
