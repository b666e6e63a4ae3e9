// Package gateway turns (text, source, target) into a translation using a
// translator.Backend, owning the loaded-model cache for the process.
package gateway

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/valpere/transhub/internal/chunker"
	"github.com/valpere/transhub/internal/detector"
	"github.com/valpere/transhub/internal/language"
	"github.com/valpere/transhub/internal/modelcache"
	"github.com/valpere/transhub/internal/placeholder"
	"github.com/valpere/transhub/internal/postprocess"
	"github.com/valpere/transhub/internal/translator"
	"github.com/valpere/transhub/internal/validator"
)

// User-input failures. They are detected before any model work.
var (
	ErrEmptyInput         = errors.New("empty input")
	ErrSameLanguage       = errors.New("source and target language are the same")
	ErrUndetectedLanguage = errors.New("source language could not be detected")
)

// Memory remembers finished translations across requests, keyed by the
// model that produced them. *store.Store satisfies it.
type Memory interface {
	Lookup(ctx context.Context, sourceText, sourceLang, targetLang, model string) (string, bool, error)
	Save(ctx context.Context, sourceText, sourceLang, targetLang, model, finalText string) error
}

type Options struct {
	// MaxChunkChars bounds the text sent to the model in one call.
	// Zero means chunker.DefaultMaxChars.
	MaxChunkChars int
	// Timeout bounds a whole Translate call. Zero means no limit.
	Timeout time.Duration
	// Detector enables source "auto".
	Detector *detector.Detector
	// Validator attaches a warning when the output looks like the wrong
	// language.
	Validator *validator.Validator
	Memory    Memory
}

type Result struct {
	SourceCode string        `json:"source"`
	TargetCode string        `json:"target"`
	Text       string        `json:"text"`
	ModelID    string        `json:"model,omitempty"`
	Cached     bool          `json:"cached,omitempty"`
	Warning    string        `json:"warning,omitempty"`
	Latency    time.Duration `json:"latency_ns"`
}

type Gateway struct {
	backend   translator.Backend
	languages *language.Registry
	models    *modelcache.Cache
	opts      Options
}

func New(backend translator.Backend, languages *language.Registry, opts Options) *Gateway {
	if opts.MaxChunkChars <= 0 {
		opts.MaxChunkChars = chunker.DefaultMaxChars
	}
	return &Gateway{
		backend:   backend,
		languages: languages,
		models:    modelcache.New(),
		opts:      opts,
	}
}

func (g *Gateway) Registry() *language.Registry {
	return g.languages
}

func (g *Gateway) Backend() translator.Backend {
	return g.backend
}

// LoadedModels lists the ids of models loaded so far.
func (g *Gateway) LoadedModels() []string {
	return g.models.IDs()
}

// Translate validates the request, then resolves, loads (once) and runs the
// model. sourceCode and targetCode may be codes or display names; sourceCode
// may be language.AutoCode when a detector is configured.
func (g *Gateway) Translate(ctx context.Context, text, sourceCode, targetCode string) (*Result, error) {
	start := time.Now()

	src, tgt, err := g.validate(text, sourceCode, targetCode)
	if err != nil {
		return nil, err
	}
	text = strings.TrimSpace(text)

	if g.opts.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, g.opts.Timeout)
		defer cancel()
	}

	modelID, err := g.backend.ModelID(src, tgt)
	if err != nil {
		return nil, err
	}
	result := &Result{SourceCode: src, TargetCode: tgt, ModelID: modelID}
	memoryKey := g.backend.Name() + "/" + modelID

	// memory is best effort: a broken database never fails a translation
	if g.opts.Memory != nil {
		if cached, ok, err := g.opts.Memory.Lookup(ctx, text, src, tgt, memoryKey); err == nil && ok {
			result.Text = cached
			result.Cached = true
		}
	}

	if !result.Cached {
		model, err := g.models.Get(ctx, modelID, g.backend.Load)
		if err != nil {
			return nil, err
		}
		result.ModelID = model.ID()

		result.Text, err = g.generate(ctx, model, text, src, tgt)
		if err != nil {
			return nil, err
		}
		if g.opts.Memory != nil {
			_ = g.opts.Memory.Save(ctx, text, src, tgt, memoryKey, result.Text)
		}
	}

	if g.opts.Validator != nil {
		result.Warning = g.opts.Validator.Check(result.Text, tgt)
	}

	result.Latency = time.Since(start)
	return result, nil
}

// validate returns the resolved source and target codes.
func (g *Gateway) validate(text, sourceCode, targetCode string) (string, string, error) {
	if strings.TrimSpace(text) == "" {
		return "", "", ErrEmptyInput
	}

	src := strings.ToLower(strings.TrimSpace(sourceCode))
	tgt := strings.ToLower(strings.TrimSpace(targetCode))
	if src == tgt {
		return "", "", fmt.Errorf("%w: %s", ErrSameLanguage, targetCode)
	}

	if src == language.AutoCode {
		if g.opts.Detector == nil {
			return "", "", fmt.Errorf("%w: detection is not enabled", ErrUndetectedLanguage)
		}
		code, ok := g.opts.Detector.DetectCode(text)
		if !ok {
			return "", "", ErrUndetectedLanguage
		}
		src = code
	}

	srcEntry, err := g.languages.Resolve(src)
	if err != nil {
		return "", "", err
	}
	tgtEntry, err := g.languages.Resolve(tgt)
	if err != nil {
		return "", "", err
	}
	if srcEntry.Code == tgtEntry.Code {
		return "", "", fmt.Errorf("%w: %s", ErrSameLanguage, tgtEntry.Name)
	}

	return srcEntry.Code, tgtEntry.Code, nil
}

// generate runs the model chunk by chunk with markup shielded from it.
func (g *Gateway) generate(ctx context.Context, model translator.Model, text, src, tgt string) (string, error) {
	protected, originals := placeholder.Protect(text)
	pieces := chunker.Split(protected, g.opts.MaxChunkChars)

	outputs := make([]string, len(pieces))
	for i, p := range pieces {
		out, err := model.Generate(ctx, p.Text, src, tgt)
		if err != nil {
			return "", err
		}
		outputs[i] = postprocess.CleanNMT(out)
	}

	out := placeholder.Restore(chunker.Join(pieces, outputs), originals)
	if strings.TrimSpace(out) == "" {
		return "", fmt.Errorf("%w: %s returned an empty translation", translator.ErrInference, model.ID())
	}
	return out, nil
}

// Close releases loaded models.
func (g *Gateway) Close() error {
	return g.models.Close()
}

// Message renders err as a sentence fit to show a user.
func Message(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrEmptyInput):
		return "Please enter some text to translate."
	case errors.Is(err, ErrSameLanguage):
		return "Source and target languages are the same. Please pick a different target language."
	case errors.Is(err, ErrUndetectedLanguage):
		return "The source language could not be detected. Please select it explicitly."
	case errors.Is(err, language.ErrUnknownLanguage):
		return fmt.Sprintf("This language is not supported here (%v).", err)
	case errors.Is(err, translator.ErrModelUnavailable):
		return "No translation model is available for this language pair."
	case errors.Is(err, context.DeadlineExceeded):
		return "The translation took too long and was stopped. Please try a shorter text."
	case errors.Is(err, context.Canceled):
		return "The translation was cancelled."
	case errors.Is(err, translator.ErrNetwork):
		return "The translation model could not be reached. Please check the connection and try again."
	case errors.Is(err, translator.ErrInference):
		return "The model failed while translating. Please try again with a shorter text."
	default:
		return "Translation failed: " + err.Error()
	}
}
