package app

import (
	"fmt"
	"html"
	"net/url"
	"strings"
	"time"
)

const (
	digestBanner = "일본 뉴스 브리핑"
	digestRule   = "━━━━━━━━━━━━━━━━━━"

	webTranslateURL = "https://papago.naver.net/website?locale=ko&source=ja&target=ko&url="
)

// DigestItem is one translated entry ready for rendering.
type DigestItem struct {
	Title   string
	Summary string
	Link    string
}

// WebTranslateURL links to Papago's page translator for the original article.
func WebTranslateURL(link string) string {
	return webTranslateURL + url.QueryEscape(link)
}

// FormatDigest renders the Telegram HTML message. Text is escaped; the date
// is taken from now in its own location.
func FormatDigest(now time.Time, items []DigestItem) string {
	var b strings.Builder

	b.WriteString(fmt.Sprintf("<b>📅 %s %s</b>\n", now.Format("2006-01-02"), digestBanner))
	b.WriteString(digestRule + "\n\n")

	for i, it := range items {
		b.WriteString(fmt.Sprintf("<b>%d. %s</b>\n", i+1, html.EscapeString(it.Title)))
		b.WriteString(fmt.Sprintf("📝 %s...\n", html.EscapeString(it.Summary)))
		b.WriteString(fmt.Sprintf("🔗 <a href='%s'>[원문]</a> | 🌐 <a href='%s'>[번역]</a>\n\n",
			html.EscapeString(it.Link), html.EscapeString(WebTranslateURL(it.Link))))
	}

	return b.String()
}
