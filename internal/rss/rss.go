package rss

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	gofeedrss "github.com/mmcdole/gofeed/rss"

	"github.com/deusflow/jpnews/internal/config"
	"github.com/deusflow/jpnews/internal/logger"
)

const DefaultSearchURL = "https://news.google.com/rss/search"

// Entry is one search result as it came out of the feed. Missing fields are
// left empty.
type Entry struct {
	Topic   string
	Title   string
	Summary string // raw HTML from <description>
	Link    string
	Source  string // <source> text, e.g. "NHK NEWS WEB"
}

// Fetcher queries the Google News search feed, one request per topic.
type Fetcher struct {
	BaseURL string
	Locale  config.Locale
	Client  *http.Client
}

func NewFetcher(locale config.Locale) *Fetcher {
	return &Fetcher{
		BaseURL: DefaultSearchURL,
		Locale:  locale,
		Client:  &http.Client{Timeout: 30 * time.Second},
	}
}

// SearchURL builds the feed URL for a topic. The topic is percent-encoded with
// spaces as %20; the time window is appended as a literal "+when:" term. Locale
// values come from the embedded config and are used as is.
func (f *Fetcher) SearchURL(topic string) string {
	q := url.PathEscape(topic)
	if f.Locale.Window != "" {
		q += "+when:" + f.Locale.Window
	}
	return fmt.Sprintf("%s?q=%s&hl=%s&gl=%s&ceid=%s",
		f.BaseURL, q, f.Locale.HL, f.Locale.GL, f.Locale.CEID)
}

// FetchTopics fetches every topic in order and concatenates the entries.
// A topic that fails is logged and contributes nothing; failed counts them.
func (f *Fetcher) FetchTopics(ctx context.Context, topics []string) (entries []Entry, failed int) {
	for _, topic := range topics {
		items, err := f.FetchTopic(ctx, topic)
		if err != nil {
			logger.Warn("feed fetch failed, topic skipped", "topic", topic, "err", err)
			failed++
			continue
		}
		entries = append(entries, items...)
		logger.Info("feed loaded", "topic", topic, "entries", len(items))
	}

	logger.Info("feeds processed", "ok", len(topics)-failed, "total", len(topics), "entries", len(entries))
	return entries, failed
}

// FetchTopic performs a single search request.
func (f *Fetcher) FetchTopic(ctx context.Context, topic string) ([]Entry, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, f.SearchURL(topic), nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("User-Agent", "Mozilla/5.0 (compatible; jpnews/1.0)")
	req.Header.Set("Accept", "application/rss+xml, application/xml;q=0.9, */*;q=0.1")

	client := f.Client
	if client == nil {
		client = http.DefaultClient
	}
	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("HTTP request: %w", err)
	}
	defer func(Body io.ReadCloser) {
		if err := Body.Close(); err != nil {
			logger.Debug("failed to close response body", "err", err)
		}
	}(resp.Body)

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("feed returned status %d", resp.StatusCode)
	}

	return Parse(resp.Body, topic)
}

// Parse decodes an RSS 2.0 document into entries, keeping feed order.
func Parse(r io.Reader, topic string) ([]Entry, error) {
	parser := &gofeedrss.Parser{}
	feed, err := parser.Parse(r)
	if err != nil {
		return nil, fmt.Errorf("parse feed: %w", err)
	}

	entries := make([]Entry, 0, len(feed.Items))
	for _, it := range feed.Items {
		if it == nil {
			continue
		}
		e := Entry{
			Topic:   topic,
			Title:   strings.TrimSpace(it.Title),
			Summary: it.Description,
			Link:    strings.TrimSpace(it.Link),
		}
		if it.Source != nil {
			e.Source = strings.TrimSpace(it.Source.Title)
		}
		entries = append(entries, e)
	}
	return entries, nil
}
