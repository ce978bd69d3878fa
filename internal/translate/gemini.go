package translate

import (
	"context"
	"fmt"
	"regexp"
	"strings"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"
)

const defaultGeminiModel = "gemini-1.5-flash"

var languageNames = map[string]string{
	"KO": "Korean",
	"JA": "Japanese",
	"EN": "English",
}

// Gemini translates through a generative model. It is used when no DeepL key
// is configured but a Gemini key is.
type Gemini struct {
	client *genai.Client
	model  string
}

func NewGemini(ctx context.Context, apiKey string) (*Gemini, error) {
	client, err := genai.NewClient(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("failed to create Gemini client: %w", err)
	}
	return &Gemini{client: client, model: defaultGeminiModel}, nil
}

func (g *Gemini) Name() string { return "gemini" }

func (g *Gemini) Close() {
	if g.client != nil {
		g.client.Close()
	}
}

func (g *Gemini) Translate(ctx context.Context, text, targetLang string) (string, error) {
	model := g.client.GenerativeModel(g.model)
	model.SetTemperature(0.2)

	resp, err := model.GenerateContent(ctx, genai.Text(buildPrompt(text, targetLang)))
	if err != nil {
		return "", fmt.Errorf("failed to generate content: %w", err)
	}
	if len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return "", fmt.Errorf("no response from Gemini")
	}

	var b strings.Builder
	for _, part := range resp.Candidates[0].Content.Parts {
		if t, ok := part.(genai.Text); ok {
			b.WriteString(string(t))
		}
	}

	out := SanitizeAIText(b.String())
	if out == "" {
		return "", fmt.Errorf("empty translation from Gemini")
	}
	return out, nil
}

func buildPrompt(text, targetLang string) string {
	lang, ok := languageNames[strings.ToUpper(targetLang)]
	if !ok {
		lang = targetLang
	}
	return fmt.Sprintf(`Translate the following Japanese news text into %s.
Keep names of people, companies and organizations as they are.
Reply with the translation only, without comments or notes.

%s`, lang, text)
}

var (
	// "(Note: ...)" or "[Note: ...]" anywhere in the text
	reInlineNote = regexp.MustCompile(`(?i)[\(\[]\s*(note|translation note|translator'?s note)\s*:[^\)\]]*[\)\]]`)
	// a whole line starting with "Note:"
	reLineNote = regexp.MustCompile(`(?im)^[ \t]*(note|translation note|translator'?s note)\s*:.*$`)
	// bracketed machine-translation markers without a colon
	reMachineTag = regexp.MustCompile(`(?i)[\(\[]\s*machine translation\s*[\)\]]`)
	reSpaces     = regexp.MustCompile(`[ \t]+`)
)

// SanitizeAIText removes translator disclaimers that language models add
// around the answer and tidies whitespace.
func SanitizeAIText(s string) string {
	s = reInlineNote.ReplaceAllString(s, "")
	s = reMachineTag.ReplaceAllString(s, "")
	s = reLineNote.ReplaceAllString(s, "")

	var lines []string
	for _, line := range strings.Split(s, "\n") {
		line = strings.TrimSpace(reSpaces.ReplaceAllString(line, " "))
		if line != "" {
			lines = append(lines, line)
		}
	}
	return strings.Join(lines, "\n")
}
