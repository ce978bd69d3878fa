package translate

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/deusflow/jpnews/internal/logger"
)

const (
	deeplProURL  = "https://api.deepl.com"
	deeplFreeURL = "https://api-free.deepl.com"

	deeplMaxResponseBytes = 256 * 1024
)

// DeepL calls the DeepL v2 translate endpoint.
type DeepL struct {
	AuthKey string
	BaseURL string
	Client  *http.Client
}

// NewDeepL picks the free API host for keys ending in ":fx".
func NewDeepL(authKey string) *DeepL {
	base := deeplProURL
	if strings.HasSuffix(authKey, ":fx") {
		base = deeplFreeURL
	}
	return &DeepL{
		AuthKey: authKey,
		BaseURL: base,
		Client:  &http.Client{Timeout: 30 * time.Second},
	}
}

func (d *DeepL) Name() string { return "deepl" }

type deeplRequest struct {
	Text       []string `json:"text"`
	TargetLang string   `json:"target_lang"`
}

type deeplResponse struct {
	Translations []struct {
		DetectedSourceLanguage string `json:"detected_source_language"`
		Text                   string `json:"text"`
	} `json:"translations"`
	Message string `json:"message"`
}

func (d *DeepL) Translate(ctx context.Context, text, targetLang string) (string, error) {
	body, err := json.Marshal(deeplRequest{Text: []string{text}, TargetLang: targetLang})
	if err != nil {
		return "", fmt.Errorf("encode request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, d.BaseURL+"/v2/translate", bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Authorization", "DeepL-Auth-Key "+d.AuthKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := d.Client.Do(req)
	if err != nil {
		return "", fmt.Errorf("HTTP error: %w", err)
	}
	defer func() {
		if closeErr := resp.Body.Close(); closeErr != nil {
			logger.Debug("failed to close response body", "err", closeErr)
		}
	}()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, deeplMaxResponseBytes))
	if err != nil {
		return "", fmt.Errorf("read response: %w", err)
	}

	var parsed deeplResponse
	decodeErr := json.Unmarshal(raw, &parsed)

	if resp.StatusCode != http.StatusOK {
		// 403 bad key, 456 quota exceeded, 429 too many requests
		if decodeErr == nil && parsed.Message != "" {
			return "", fmt.Errorf("deepl returned status %d: %s", resp.StatusCode, parsed.Message)
		}
		return "", fmt.Errorf("deepl returned status %d", resp.StatusCode)
	}
	if decodeErr != nil {
		return "", fmt.Errorf("decode response: %w", decodeErr)
	}
	if len(parsed.Translations) == 0 {
		return "", fmt.Errorf("deepl returned no translations")
	}
	return parsed.Translations[0].Text, nil
}
