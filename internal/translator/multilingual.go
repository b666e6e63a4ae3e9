package translator

import (
	"context"
	"fmt"

	"github.com/valpere/transhub/internal/language"
)

const DefaultMultilingualModel = "facebook/nllb-200-distilled-600M"

// MultilingualBackend serves the full variant: a single model for every
// direction, steered by source and target language tags.
type MultilingualBackend struct {
	hub       *HubClient
	model     string
	languages *language.Registry
	maxLength int
}

func NewMultilingualBackend(hub *HubClient, model string, languages *language.Registry) *MultilingualBackend {
	if model == "" {
		model = DefaultMultilingualModel
	}
	return &MultilingualBackend{
		hub:       hub,
		model:     model,
		languages: languages,
		maxLength: defaultMaxLength,
	}
}

func (b *MultilingualBackend) Name() string {
	return "multilingual"
}

// ModelID returns the single model id for every pair.
func (b *MultilingualBackend) ModelID(_, _ string) (string, error) {
	return b.model, nil
}

func (b *MultilingualBackend) Load(ctx context.Context, modelID string) (Model, error) {
	if err := b.hub.ModelInfo(ctx, modelID); err != nil {
		return nil, err
	}
	return &taggedModel{backend: b, id: modelID}, nil
}

func (b *MultilingualBackend) tag(code string) (string, error) {
	e, ok := b.languages.ByCode(code)
	if !ok || e.Tag == "" {
		return "", fmt.Errorf("%w: no language tag for %q", language.ErrUnknownLanguage, code)
	}
	return e.Tag, nil
}

type taggedModel struct {
	backend *MultilingualBackend
	id      string
}

func (m *taggedModel) ID() string {
	return m.id
}

func (m *taggedModel) Generate(ctx context.Context, text, sourceCode, targetCode string) (string, error) {
	srcTag, err := m.backend.tag(sourceCode)
	if err != nil {
		return "", err
	}
	tgtTag, err := m.backend.tag(targetCode)
	if err != nil {
		return "", err
	}

	payload := map[string]any{
		"inputs": text,
		"parameters": map[string]any{
			"src_lang":   srcTag,
			"tgt_lang":   tgtTag,
			"max_length": m.backend.maxLength,
		},
	}

	var out []struct {
		TranslationText string `json:"translation_text"`
	}
	if err := m.backend.hub.Infer(ctx, m.id, payload, &out); err != nil {
		return "", err
	}
	if len(out) == 0 {
		return "", fmt.Errorf("%w: %s returned no translation", ErrInference, m.id)
	}
	return out[0].TranslationText, nil
}
