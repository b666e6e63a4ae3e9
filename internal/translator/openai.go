package translator

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/sashabaranov/go-openai"

	"github.com/valpere/transhub/internal/language"
	"github.com/valpere/transhub/internal/postprocess"
)

const DefaultOpenAIModel = "gpt-4o-mini"

// OpenAIBackend prompts any OpenAI-compatible chat completion endpoint
// (OpenAI, OpenRouter, vLLM, LM Studio).
type OpenAIBackend struct {
	apiKey    string
	model     string
	languages *language.Registry
	client    *openai.Client
}

func NewOpenAIBackend(apiKey, baseURL, model string, languages *language.Registry) *OpenAIBackend {
	if model == "" {
		model = DefaultOpenAIModel
	}
	cfg := openai.DefaultConfig(apiKey)
	if baseURL != "" {
		cfg.BaseURL = strings.TrimRight(baseURL, "/")
	}
	return &OpenAIBackend{
		apiKey:    apiKey,
		model:     model,
		languages: languages,
		client:    openai.NewClientWithConfig(cfg),
	}
}

func (b *OpenAIBackend) Name() string {
	return "openai"
}

func (b *OpenAIBackend) ModelID(_, _ string) (string, error) {
	return b.model, nil
}

func (b *OpenAIBackend) Load(_ context.Context, modelID string) (Model, error) {
	if b.apiKey == "" {
		return nil, fmt.Errorf("%w: API key required for %s", ErrModelUnavailable, modelID)
	}
	return &chatModel{backend: b, id: modelID}, nil
}

func (b *OpenAIBackend) displayName(code string) string {
	if e, ok := b.languages.ByCode(code); ok {
		return e.Name
	}
	return code
}

type chatModel struct {
	backend *OpenAIBackend
	id      string
}

func (m *chatModel) ID() string {
	return m.id
}

func (m *chatModel) Generate(ctx context.Context, text, sourceCode, targetCode string) (string, error) {
	req := openai.ChatCompletionRequest{
		Model: m.id,
		Messages: []openai.ChatCompletionMessage{
			{
				Role:    openai.ChatMessageRoleSystem,
				Content: buildSystemPrompt(m.backend.displayName(sourceCode), m.backend.displayName(targetCode)),
			},
			{
				Role:    openai.ChatMessageRoleUser,
				Content: text,
			},
		},
		Temperature: 0.2,
	}

	resp, err := m.backend.client.CreateChatCompletion(ctx, req)
	if err != nil {
		return "", classifyOpenAIError(m.id, err)
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("%w: empty response from %s", ErrInference, m.id)
	}

	translated := postprocess.CleanLLM(resp.Choices[0].Message.Content)
	if translated == "" {
		return "", fmt.Errorf("%w: empty response from %s", ErrInference, m.id)
	}
	return translated, nil
}

func classifyOpenAIError(modelID string, err error) error {
	var apiErr *openai.APIError
	if errors.As(err, &apiErr) {
		if apiErr.HTTPStatusCode == http.StatusNotFound {
			return fmt.Errorf("%w: %s: %s", ErrModelUnavailable, modelID, apiErr.Message)
		}
		return fmt.Errorf("%w: %s: %s", ErrInference, modelID, apiErr.Message)
	}
	var reqErr *openai.RequestError
	if errors.As(err, &reqErr) {
		if reqErr.HTTPStatusCode == http.StatusNotFound {
			return fmt.Errorf("%w: %s", ErrModelUnavailable, modelID)
		}
		return fmt.Errorf("%w: %s returned status %d", ErrInference, modelID, reqErr.HTTPStatusCode)
	}
	return fmt.Errorf("%w: %v", ErrNetwork, err)
}

func buildSystemPrompt(sourceLang, targetLang string) string {
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("You are a professional translator working for community organizers. Translate the following text from %s to %s.\n", sourceLang, targetLang))
	sb.WriteString("Only respond with the translation, nothing else. No explanations, no quotes, just the translation.\n")
	sb.WriteString("Keep bracketed placeholders such as [Date] or [PH0] exactly as they appear.")
	return sb.String()
}
