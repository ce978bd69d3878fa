// Package config builds the run configuration from the environment and the
// embedded source lists.
package config

import (
	_ "embed"
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

//go:embed sources.yaml
var defaultSources []byte

// Locale holds the Google News search localization.
type Locale struct {
	HL     string `yaml:"hl"`
	GL     string `yaml:"gl"`
	CEID   string `yaml:"ceid"`
	Window string `yaml:"window"` // appended to the query as "when:<window>"
}

// Sources is the fixed topic / exclusion / ranking setup compiled into the binary.
type Sources struct {
	Topics       []string `yaml:"topics"`
	Exclude      []string `yaml:"exclude"`
	Major        []string `yaml:"major"`
	Locale       Locale   `yaml:"locale"`
	TargetLang   string   `yaml:"target_lang"`
	MaxItems     int      `yaml:"max_items"`
	SummaryRunes int      `yaml:"summary_runes"`
}

type Config struct {
	// Translation settings
	DeepLAuthKey string
	GeminiAPIKey string

	// Telegram settings
	TelegramToken  string
	TelegramChatID string

	// App settings
	Debug          bool
	PushgatewayURL string

	Sources Sources
}

// Load reads credentials from the environment and decodes the embedded
// sources. Missing credentials are not errors: translation falls back to
// pass-through and delivery fails at send time.
func Load() (*Config, error) {
	src, err := ParseSources(defaultSources)
	if err != nil {
		return nil, err
	}

	cfg := &Config{
		DeepLAuthKey:   os.Getenv("DEEPL_AUTH_KEY"),
		GeminiAPIKey:   os.Getenv("GEMINI_API_KEY"),
		TelegramToken:  os.Getenv("TELEGRAM_TOKEN"),
		TelegramChatID: getEnvOrDefault("CHAT_ID", os.Getenv("TELEGRAM_CHAT_ID")),
		PushgatewayURL: os.Getenv("PUSHGATEWAY_URL"),
		Sources:        *src,
	}

	if debug := os.Getenv("DEBUG"); debug == "true" {
		cfg.Debug = true
	}

	return cfg, cfg.Validate()
}

// ParseSources decodes a sources document and normalizes the matcher lists
// to lowercase.
func ParseSources(data []byte) (*Sources, error) {
	var src Sources
	if err := yaml.Unmarshal(data, &src); err != nil {
		return nil, fmt.Errorf("decode sources: %w", err)
	}
	src.Exclude = lowerAll(src.Exclude)
	src.Major = lowerAll(src.Major)
	return &src, nil
}

func lowerAll(in []string) []string {
	out := make([]string, 0, len(in))
	for _, s := range in {
		s = strings.ToLower(strings.TrimSpace(s))
		if s != "" {
			out = append(out, s)
		}
	}
	return out
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// Validate checks the source lists. Credentials are deliberately not checked.
func (c *Config) Validate() error {
	s := c.Sources
	if len(s.Topics) == 0 {
		return fmt.Errorf("sources: at least one topic is required")
	}
	for i, t := range s.Topics {
		if strings.TrimSpace(t) == "" {
			return fmt.Errorf("sources: topic %d is empty", i)
		}
	}
	if s.Locale.HL == "" || s.Locale.GL == "" || s.Locale.CEID == "" {
		return fmt.Errorf("sources: locale hl, gl and ceid are required")
	}
	if s.TargetLang == "" {
		return fmt.Errorf("sources: target_lang is required")
	}
	if s.MaxItems <= 0 {
		return fmt.Errorf("sources: max_items must be positive, got %d", s.MaxItems)
	}
	if s.SummaryRunes <= 0 {
		return fmt.Errorf("sources: summary_runes must be positive, got %d", s.SummaryRunes)
	}
	return nil
}

// TranslationEnabled reports whether any translation credential is present.
func (c *Config) TranslationEnabled() bool {
	return c.DeepLAuthKey != "" || c.GeminiAPIKey != ""
}
