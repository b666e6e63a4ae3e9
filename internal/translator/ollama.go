package translator

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"

	"github.com/valpere/transhub/internal/language"
	"github.com/valpere/transhub/internal/postprocess"
)

const (
	DefaultOllamaURL   = "http://localhost:11434"
	DefaultOllamaModel = "llama3.1:8b"
)

// OllamaBackend prompts a self-hosted LLM. The configured model serves every
// direction, like the multilingual backend.
type OllamaBackend struct {
	baseURL   string
	model     string
	languages *language.Registry
	http      *resty.Client
}

func NewOllamaBackend(baseURL, model string, languages *language.Registry) *OllamaBackend {
	if baseURL == "" {
		baseURL = DefaultOllamaURL
	}
	if model == "" {
		model = DefaultOllamaModel
	}
	return &OllamaBackend{
		baseURL:   strings.TrimRight(baseURL, "/"),
		model:     model,
		languages: languages,
		http:      resty.New().SetTimeout(120 * time.Second),
	}
}

func (b *OllamaBackend) Name() string {
	return "ollama"
}

func (b *OllamaBackend) ModelID(_, _ string) (string, error) {
	return b.model, nil
}

// Load checks that the model has been pulled into the local runtime.
func (b *OllamaBackend) Load(ctx context.Context, modelID string) (Model, error) {
	var tags struct {
		Models []struct {
			Name string `json:"name"`
		} `json:"models"`
	}

	resp, err := b.http.R().SetContext(ctx).SetResult(&tags).Get(b.baseURL + "/api/tags")
	if err != nil {
		return nil, fmt.Errorf("%w: Ollama not available: %v", ErrNetwork, err)
	}
	if resp.IsError() {
		return nil, fmt.Errorf("%w: Ollama returned status %d", ErrNetwork, resp.StatusCode())
	}

	for _, m := range tags.Models {
		if m.Name == modelID || strings.TrimSuffix(m.Name, ":latest") == modelID {
			return &ollamaModel{backend: b, id: modelID}, nil
		}
	}
	return nil, fmt.Errorf("%w: %s has not been pulled into Ollama", ErrModelUnavailable, modelID)
}

func (b *OllamaBackend) displayName(code string) string {
	if e, ok := b.languages.ByCode(code); ok {
		return e.Name
	}
	return code
}

type ollamaModel struct {
	backend *OllamaBackend
	id      string
}

func (m *ollamaModel) ID() string {
	return m.id
}

func (m *ollamaModel) Generate(ctx context.Context, text, sourceCode, targetCode string) (string, error) {
	prompt := fmt.Sprintf(`Translate the following text from %s to %s.
Only respond with the translation, nothing else.

Text: "%s"

Translation:`, m.backend.displayName(sourceCode), m.backend.displayName(targetCode), text)

	var out struct {
		Response string `json:"response"`
	}

	resp, err := m.backend.http.R().
		SetContext(ctx).
		SetBody(map[string]any{
			"model":  m.id,
			"prompt": prompt,
			"stream": false,
		}).
		SetResult(&out).
		Post(m.backend.baseURL + "/api/generate")
	if err != nil {
		return "", fmt.Errorf("%w: request failed: %v", ErrNetwork, err)
	}
	if resp.IsError() {
		return "", fmt.Errorf("%w: Ollama returned status %d: %s", ErrInference, resp.StatusCode(), runtimeMessage(resp.Body()))
	}

	translated := postprocess.CleanLLM(out.Response)
	if translated == "" {
		return "", fmt.Errorf("%w: %s returned an empty response", ErrInference, m.id)
	}
	return translated, nil
}
