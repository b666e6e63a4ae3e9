package translator

import (
	"context"
	"errors"
)

// Failure classes reported by backends. Callers classify with errors.Is;
// none of them is retried.
var (
	// ErrModelUnavailable means no model exists for the requested direction.
	ErrModelUnavailable = errors.New("model unavailable")
	// ErrNetwork means the runtime or the model weights could not be reached.
	ErrNetwork = errors.New("network error")
	// ErrInference means the runtime failed while generating.
	ErrInference = errors.New("inference error")
)

// Model is a loaded model handle.
type Model interface {
	ID() string
	// Generate translates text. Multilingual models use targetCode to pick
	// the output language tag; bilingual models ignore both codes.
	Generate(ctx context.Context, text, sourceCode, targetCode string) (string, error)
}

// Backend resolves and loads models from one inference runtime.
type Backend interface {
	Name() string
	// ModelID names the model serving sourceCode -> targetCode. Bilingual
	// backends return one id per pair, multilingual backends a single id.
	ModelID(sourceCode, targetCode string) (string, error)
	// Load acquires a model handle. It may download weights on first use.
	Load(ctx context.Context, modelID string) (Model, error)
}
