package translator

import (
	"context"
	"fmt"
	"strings"
)

const DefaultOpusMTPrefix = "Helsinki-NLP/opus-mt"

// OpusMTBackend serves the lite variant: one small bilingual model per
// language pair, named <prefix>-<src>-<tgt>. Not every pair exists.
type OpusMTBackend struct {
	hub       *HubClient
	prefix    string
	maxLength int
}

func NewOpusMTBackend(hub *HubClient) *OpusMTBackend {
	return &OpusMTBackend{
		hub:       hub,
		prefix:    DefaultOpusMTPrefix,
		maxLength: defaultMaxLength,
	}
}

func (b *OpusMTBackend) Name() string {
	return "opus-mt"
}

func (b *OpusMTBackend) ModelID(sourceCode, targetCode string) (string, error) {
	src := strings.ToLower(strings.TrimSpace(sourceCode))
	tgt := strings.ToLower(strings.TrimSpace(targetCode))
	if src == "" || tgt == "" {
		return "", fmt.Errorf("%w: bilingual models need both source and target codes", ErrModelUnavailable)
	}
	return fmt.Sprintf("%s-%s-%s", b.prefix, src, tgt), nil
}

func (b *OpusMTBackend) Load(ctx context.Context, modelID string) (Model, error) {
	if err := b.hub.ModelInfo(ctx, modelID); err != nil {
		return nil, err
	}
	return &pairModel{id: modelID, hub: b.hub, maxLength: b.maxLength}, nil
}

type pairModel struct {
	id        string
	hub       *HubClient
	maxLength int
}

func (m *pairModel) ID() string {
	return m.id
}

func (m *pairModel) Generate(ctx context.Context, text, _, _ string) (string, error) {
	payload := map[string]any{
		"inputs": text,
		"parameters": map[string]any{
			"max_length": m.maxLength,
		},
	}

	var out []struct {
		TranslationText string `json:"translation_text"`
	}
	if err := m.hub.Infer(ctx, m.id, payload, &out); err != nil {
		return "", err
	}
	if len(out) == 0 {
		return "", fmt.Errorf("%w: %s returned no translation", ErrInference, m.id)
	}
	return out[0].TranslationText, nil
}
