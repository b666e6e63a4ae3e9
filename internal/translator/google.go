package translator

import (
	"context"
	"fmt"
	"html"

	translate "cloud.google.com/go/translate"
	"golang.org/x/text/language"
	"google.golang.org/api/option"
)

const googleModelID = "google-translate-v2"

// GoogleBackend uses Cloud Translation. The loaded handle wraps one API
// client, so the model cache keeps a single client for the process.
type GoogleBackend struct {
	credentials string
}

func NewGoogleBackend(credentials string) *GoogleBackend {
	return &GoogleBackend{credentials: credentials}
}

func (b *GoogleBackend) Name() string {
	return "google"
}

func (b *GoogleBackend) ModelID(_, _ string) (string, error) {
	return googleModelID, nil
}

func (b *GoogleBackend) Load(ctx context.Context, modelID string) (Model, error) {
	var opts []option.ClientOption
	if b.credentials != "" {
		opts = append(opts, option.WithCredentialsFile(b.credentials))
	}

	client, err := translate.NewClient(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to create Cloud Translation client: %v", ErrNetwork, err)
	}
	return &googleModel{id: modelID, client: client}, nil
}

type googleModel struct {
	id     string
	client *translate.Client
}

func (m *googleModel) ID() string {
	return m.id
}

func (m *googleModel) Generate(ctx context.Context, text, sourceCode, targetCode string) (string, error) {
	target, err := language.Parse(targetCode)
	if err != nil {
		return "", fmt.Errorf("%w: invalid target language %q: %v", ErrModelUnavailable, targetCode, err)
	}

	opts := &translate.Options{Format: translate.Text}
	if sourceCode != "" {
		source, err := language.Parse(sourceCode)
		if err != nil {
			return "", fmt.Errorf("%w: invalid source language %q: %v", ErrModelUnavailable, sourceCode, err)
		}
		opts.Source = source
	}

	translations, err := m.client.Translate(ctx, []string{text}, target, opts)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrInference, err)
	}
	if len(translations) == 0 {
		return "", fmt.Errorf("%w: no translation returned", ErrInference)
	}
	return html.UnescapeString(translations[0].Text), nil
}

func (m *googleModel) Close() error {
	return m.client.Close()
}
