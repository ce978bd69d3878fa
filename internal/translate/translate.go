// Package translate turns feed text into the digest language. Every failure
// degrades to the original text; nothing here aborts a run.
package translate

import (
	"context"

	"github.com/deusflow/jpnews/internal/logger"
)

// Backend is a translation service.
type Backend interface {
	Translate(ctx context.Context, text, targetLang string) (string, error)
	Name() string
}

// Outcome classifies a Result for logging and metrics.
type Outcome string

const (
	OutcomeOK      Outcome = "ok"
	OutcomeFailed  Outcome = "failed"
	OutcomeSkipped Outcome = "skipped"
)

// Result always carries usable text: the translation on success, the input
// otherwise. Err is set only when the backend failed.
type Result struct {
	Text       string
	Translated bool
	Err        error
}

func (r Result) Outcome() Outcome {
	switch {
	case r.Err != nil:
		return OutcomeFailed
	case r.Translated:
		return OutcomeOK
	default:
		return OutcomeSkipped
	}
}

// Translator applies one backend with a fixed target language. A nil backend
// means no credential was configured and every call passes text through.
type Translator struct {
	backend Backend
	target  string
}

func New(backend Backend, targetLang string) *Translator {
	return &Translator{backend: backend, target: targetLang}
}

// Enabled reports whether a backend is configured.
func (t *Translator) Enabled() bool {
	return t != nil && t.backend != nil
}

// Translate never fails: empty input and a missing backend pass through,
// backend errors are logged and fall back to the input.
func (t *Translator) Translate(ctx context.Context, text string) Result {
	if text == "" || !t.Enabled() {
		return Result{Text: text}
	}

	out, err := t.backend.Translate(ctx, text, t.target)
	if err != nil {
		logger.Warn("translation failed, using original text",
			"backend", t.backend.Name(), "target", t.target, "err", err)
		return Result{Text: text, Err: err}
	}
	if out == "" {
		logger.Debug("translation came back empty, using original text", "backend", t.backend.Name())
		return Result{Text: text}
	}
	return Result{Text: out, Translated: true}
}
