package telegram

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/deusflow/jpnews/internal/logger"
)

const DefaultBaseURL = "https://api.telegram.org"

// Client posts messages to one chat through the Bot API.
type Client struct {
	Token   string
	ChatID  string
	BaseURL string
	HTTP    *http.Client
}

func NewClient(token, chatID string) *Client {
	return &Client{
		Token:   token,
		ChatID:  chatID,
		BaseURL: DefaultBaseURL,
		HTTP:    &http.Client{Timeout: 30 * time.Second},
	}
}

type sendMessageRequest struct {
	ChatID                string `json:"chat_id"`
	Text                  string `json:"text"`
	ParseMode             string `json:"parse_mode"`
	DisableWebPagePreview bool   `json:"disable_web_page_preview"`
}

type apiResponse struct {
	OK          bool   `json:"ok"`
	ErrorCode   int    `json:"error_code"`
	Description string `json:"description"`
}

// SendMessage sends text as HTML with link previews disabled. It makes one
// attempt; the caller decides what a failure means.
func (c *Client) SendMessage(ctx context.Context, text string) error {
	if c.Token == "" || c.ChatID == "" {
		logger.Warn("telegram token or chat id is empty, the request will likely be rejected")
	}

	payload := sendMessageRequest{
		ChatID:                c.ChatID,
		Text:                  text,
		ParseMode:             "HTML",
		DisableWebPagePreview: true,
	}
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("error make JSON: %w", err)
	}

	endpoint := fmt.Sprintf("%s/bot%s/sendMessage", c.BaseURL, c.Token)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.HTTP.Do(req)
	if err != nil {
		// the URL carries the bot token; keep it out of logs
		var urlErr *url.Error
		if errors.As(err, &urlErr) {
			err = urlErr.Err
		}
		return fmt.Errorf("error HTTP request: %w", err)
	}
	defer func(Body io.ReadCloser) {
		if err := Body.Close(); err != nil {
			logger.Debug("failed to close response body", "err", err)
		}
	}(resp.Body)

	if resp.StatusCode != http.StatusOK {
		var apiResp apiResponse
		if err := json.NewDecoder(io.LimitReader(resp.Body, 64*1024)).Decode(&apiResp); err == nil && apiResp.Description != "" {
			return fmt.Errorf("telegram API error: status %d: %s", resp.StatusCode, apiResp.Description)
		}
		return fmt.Errorf("telegram API error: status %d", resp.StatusCode)
	}

	return nil
}
