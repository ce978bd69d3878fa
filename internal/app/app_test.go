package app

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/deusflow/jpnews/internal/config"
	"github.com/deusflow/jpnews/internal/metrics"
	"github.com/deusflow/jpnews/internal/news"
	"github.com/deusflow/jpnews/internal/rss"
	"github.com/deusflow/jpnews/internal/telegram"
	"github.com/deusflow/jpnews/internal/translate"
)

type stubFetcher struct {
	entries []rss.Entry
	failed  int
}

func (s *stubFetcher) FetchTopics(context.Context, []string) ([]rss.Entry, int) {
	return s.entries, s.failed
}

type recordingSender struct {
	messages []string
	err      error
}

func (r *recordingSender) SendMessage(_ context.Context, text string) error {
	r.messages = append(r.messages, text)
	return r.err
}

type prefixBackend struct {
	fail map[string]bool
}

func (b *prefixBackend) Name() string { return "prefix" }

func (b *prefixBackend) Translate(_ context.Context, text, target string) (string, error) {
	if b.fail[text] {
		return "", errors.New("backend unavailable")
	}
	return "[" + target + "]" + text, nil
}

var rules = news.Rules{
	Exclude: []string{"yonhap", "kbs"},
	Major:   []string{"nhk", "nikkei"},
	Limit:   10,
}

func fixedNow() time.Time {
	return time.Date(2026, 10, 15, 8, 0, 0, 0, time.Local)
}

func newPipeline(entries []rss.Entry, backend translate.Backend, sender Sender) *Pipeline {
	return &Pipeline{
		Topics:       []string{"t"},
		Rules:        rules,
		SummaryRunes: 150,
		Fetcher:      &stubFetcher{entries: entries},
		Translator:   translate.New(backend, "KO"),
		Sender:       sender,
		Metrics:      metrics.New(),
		Now:          fixedNow,
	}
}

func TestRun_NoNewsSkipsNotification(t *testing.T) {
	sender := &recordingSender{}
	p := newPipeline([]rss.Entry{
		{Title: "excluded", Link: "https://x/1", Source: "Yonhap News"},
	}, &prefixBackend{}, sender)

	rep := p.Run(context.Background())

	assert.Empty(t, sender.messages)
	assert.False(t, rep.Sent)
	assert.Equal(t, 1, rep.Stats.Excluded)
	assert.Equal(t, 0.0, testutil.ToFloat64(p.Metrics.DigestsSent.WithLabelValues("ok")))
}

func TestRun_TranslationFailureIsIsolated(t *testing.T) {
	sender := &recordingSender{}
	backend := &prefixBackend{fail: map[string]bool{"壊れた見出し": true}}
	p := newPipeline([]rss.Entry{
		{Title: "壊れた見出し", Summary: "<p>要約1</p>", Link: "https://x/1", Source: "Minor"},
		{Title: "普通の見出し", Summary: "<p>要約2</p>", Link: "https://x/2", Source: "Minor"},
	}, backend, sender)

	rep := p.Run(context.Background())

	require.True(t, rep.Sent)
	require.Len(t, sender.messages, 1)
	msg := sender.messages[0]
	assert.Contains(t, msg, "<b>1. 壊れた見出し</b>")
	assert.Contains(t, msg, "📝 [KO]要約1...")
	assert.Contains(t, msg, "<b>2. [KO]普通の見出し</b>")
	assert.Equal(t, 1, rep.TranslationsFailed)
	assert.Equal(t, 1.0, testutil.ToFloat64(p.Metrics.Translations.WithLabelValues("failed")))
	assert.Equal(t, 3.0, testutil.ToFloat64(p.Metrics.Translations.WithLabelValues("ok")))
}

func TestRun_WithoutCredentialSendsOriginalText(t *testing.T) {
	sender := &recordingSender{}
	p := newPipeline([]rss.Entry{
		{Title: "金利<上昇>", Summary: `<a href="https://x">金利が上昇</a>`, Link: "https://x/1?a=1&b=2", Source: "NHK"},
	}, nil, sender)

	p.Run(context.Background())

	require.Len(t, sender.messages, 1)
	msg := sender.messages[0]
	assert.Contains(t, msg, "<b>1. 金利&lt;上昇&gt;</b>")
	assert.Contains(t, msg, "📝 金利が上昇...")
	assert.Equal(t, 2.0, testutil.ToFloat64(p.Metrics.Translations.WithLabelValues("skipped")))
}

func TestRun_DeliveryFailureIsReported(t *testing.T) {
	sender := &recordingSender{err: errors.New("telegram API error: status 400")}
	p := newPipeline([]rss.Entry{{Title: "a", Link: "https://x/a", Source: "s"}}, nil, sender)

	rep := p.Run(context.Background())

	assert.False(t, rep.Sent)
	assert.EqualError(t, rep.SendErr, "telegram API error: status 400")
	assert.Len(t, sender.messages, 1, "no retry")
	assert.Equal(t, 1.0, testutil.ToFloat64(p.Metrics.DigestsSent.WithLabelValues("failed")))
}

func TestRun_OrderAndLimit(t *testing.T) {
	var entries []rss.Entry
	for i := 1; i <= 12; i++ {
		src := "Minor"
		if i == 5 || i == 9 {
			src = "NHK NEWS WEB"
		}
		entries = append(entries, rss.Entry{
			Title: fmt.Sprintf("t%d", i), Link: fmt.Sprintf("https://x/%d", i), Source: src,
		})
	}
	sender := &recordingSender{}
	p := newPipeline(entries, nil, sender)
	p.Metrics = nil

	rep := p.Run(context.Background())
	require.True(t, rep.Sent)

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(sender.messages[0]))
	require.NoError(t, err)

	var heads []string
	doc.Find("b").Each(func(i int, s *goquery.Selection) {
		if i > 0 {
			heads = append(heads, s.Text())
		}
	})
	require.Len(t, heads, 10)
	assert.Equal(t, "1. t5", heads[0])
	assert.Equal(t, "2. t9", heads[1])
	assert.Equal(t, "3. t1", heads[2])
	assert.Equal(t, "10. t10", heads[9])
}

func TestRun_SummaryTruncatedAfterStripping(t *testing.T) {
	sender := &recordingSender{}
	long := "<p>" + strings.Repeat("経", 200) + "</p>"
	p := newPipeline([]rss.Entry{{Title: "a", Summary: long, Link: "https://x/a", Source: "s"}}, nil, sender)

	p.Run(context.Background())

	require.Len(t, sender.messages, 1)
	assert.Contains(t, sender.messages[0], "📝 "+strings.Repeat("経", 150)+"...\n")
	assert.NotContains(t, sender.messages[0], strings.Repeat("経", 151))
}

func TestNew_PassThroughWithoutCredentials(t *testing.T) {
	cfg := &config.Config{
		TelegramToken:  "t",
		TelegramChatID: "c",
		Sources: config.Sources{
			Topics:       []string{"社会 人気"},
			Exclude:      []string{"kbs"},
			Major:        []string{"nhk"},
			Locale:       config.Locale{HL: "ja", GL: "JP", CEID: "JP:ja", Window: "24h"},
			TargetLang:   "KO",
			MaxItems:     10,
			SummaryRunes: 150,
		},
	}

	p, closeFn := New(context.Background(), cfg, nil)
	defer closeFn()

	assert.False(t, p.Translator.Enabled())
	assert.Equal(t, []string{"社会 人気"}, p.Topics)
	assert.Equal(t, 10, p.Rules.Limit)
	sender, ok := p.Sender.(*telegram.Client)
	require.True(t, ok)
	assert.Equal(t, "c", sender.ChatID)

	cfg.DeepLAuthKey = "k:fx"
	p, closeFn2 := New(context.Background(), cfg, nil)
	defer closeFn2()
	assert.True(t, p.Translator.Enabled())
}
