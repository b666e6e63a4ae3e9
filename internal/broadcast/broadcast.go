// Package broadcast translates one message into several target languages,
// one after another, and assembles the results into a downloadable text.
package broadcast

import (
	"context"
	"errors"
	"fmt"
	"iter"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/gosimple/slug"

	"github.com/valpere/transhub/internal/gateway"
	"github.com/valpere/transhub/internal/language"
)

// ErrNoTargets is returned when no target language was selected.
var ErrNoTargets = errors.New("no target languages selected")

// DefaultBasename names the export when the user gives none.
const DefaultBasename = "translations"

// Translator is the single-pair call a broadcast repeats. *gateway.Gateway
// satisfies it.
type Translator interface {
	Translate(ctx context.Context, text, sourceCode, targetCode string) (*gateway.Result, error)
}

// Outcome is the result for one target: Text on success, Err otherwise.
type Outcome struct {
	Index  int
	Target language.Entry
	Result *gateway.Result
	Err    error
}

func (o Outcome) OK() bool {
	return o.Err == nil
}

// Text returns the translation, or the placeholder used in exports.
func (o Outcome) Text() string {
	if o.Err != nil {
		return fmt.Sprintf("[translation unavailable: %s]", gateway.Message(o.Err))
	}
	return o.Result.Text
}

type Broadcaster struct {
	translator Translator
	languages  *language.Registry
}

func New(t Translator, languages *language.Registry) *Broadcaster {
	return &Broadcaster{translator: t, languages: languages}
}

// Plan validates a request and resolves targets (names or codes) into an
// ordered set: duplicates collapse onto their first occurrence.
func (b *Broadcaster) Plan(text string, targets []string) ([]language.Entry, error) {
	if strings.TrimSpace(text) == "" {
		return nil, gateway.ErrEmptyInput
	}

	seen := make(map[string]bool, len(targets))
	plan := make([]language.Entry, 0, len(targets))
	for _, t := range targets {
		if strings.TrimSpace(t) == "" {
			continue
		}
		e, err := b.languages.Resolve(t)
		if err != nil {
			return nil, err
		}
		if seen[e.Code] {
			continue
		}
		seen[e.Code] = true
		plan = append(plan, e)
	}

	if len(plan) == 0 {
		return nil, ErrNoTargets
	}
	return plan, nil
}

// Run yields one Outcome per target, in order, translating lazily as the
// caller pulls. A failed target never stops the ones after it; once ctx is
// done the remaining targets yield ctx.Err().
func (b *Broadcaster) Run(ctx context.Context, text, sourceCode string, targets []language.Entry) iter.Seq[Outcome] {
	return func(yield func(Outcome) bool) {
		for i, target := range targets {
			o := Outcome{Index: i, Target: target}
			if err := ctx.Err(); err != nil {
				o.Err = err
			} else {
				o.Result, o.Err = b.translator.Translate(ctx, text, sourceCode, target.Code)
			}
			if !yield(o) {
				return
			}
		}
	}
}

// Broadcast is Plan followed by Run.
func (b *Broadcaster) Broadcast(ctx context.Context, text, sourceCode string, targets []string) (iter.Seq[Outcome], []language.Entry, error) {
	plan, err := b.Plan(text, targets)
	if err != nil {
		return nil, nil, err
	}
	return b.Run(ctx, text, sourceCode, plan), plan, nil
}

// Session is one broadcast action, held only while it is rendered or
// downloaded.
type Session struct {
	ID         string
	SourceText string
	SourceCode string
	Source     language.Entry
	Targets    []language.Entry
	Results    []Outcome
	CreatedAt  time.Time
}

func (b *Broadcaster) NewSession(text, sourceCode string, targets []language.Entry) *Session {
	s := &Session{
		ID:         uuid.NewString(),
		SourceText: strings.TrimSpace(text),
		SourceCode: sourceCode,
		Targets:    targets,
		Results:    make([]Outcome, 0, len(targets)),
		CreatedAt:  time.Now(),
	}
	if e, err := b.languages.Resolve(sourceCode); err == nil {
		s.Source = e
		s.SourceCode = e.Code
	}
	return s
}

// Record appends an outcome. A detected source language fills in the
// session source when it was "auto".
func (s *Session) Record(o Outcome) {
	if s.Source.Code == "" && o.Result != nil && o.Result.SourceCode != "" {
		s.SourceCode = o.Result.SourceCode
	}
	s.Results = append(s.Results, o)
}

func (s *Session) Failed() int {
	n := 0
	for _, o := range s.Results {
		if !o.OK() {
			n++
		}
	}
	return n
}

// Collect runs the whole broadcast and returns the finished session.
func (b *Broadcaster) Collect(ctx context.Context, text, sourceCode string, targets []string) (*Session, error) {
	return b.CollectProgress(ctx, text, sourceCode, targets, nil)
}

// CollectProgress is Collect that calls progress after every outcome.
func (b *Broadcaster) CollectProgress(ctx context.Context, text, sourceCode string, targets []string, progress func(o Outcome, total int)) (*Session, error) {
	outcomes, plan, err := b.Broadcast(ctx, text, sourceCode, targets)
	if err != nil {
		return nil, err
	}

	s := b.NewSession(text, sourceCode, plan)
	for o := range outcomes {
		s.Record(o)
		if progress != nil {
			progress(o, len(plan))
		}
	}
	if s.Source.Code == "" {
		if e, err := b.languages.Resolve(s.SourceCode); err == nil {
			s.Source = e
		}
	}
	return s, nil
}

// Export renders the session as plain text: the original once, then every
// target once, in selection order.
func Export(s *Session) string {
	var sb strings.Builder

	source := "Original"
	if s.Source.Name != "" {
		source = fmt.Sprintf("Original (%s)", s.Source.Name)
	}
	writeSection(&sb, source, s.SourceText)

	for _, o := range s.Results {
		sb.WriteString("\n")
		writeSection(&sb, fmt.Sprintf("%s (%s)", o.Target.Name, o.Target.Code), o.Text())
	}
	return sb.String()
}

func writeSection(sb *strings.Builder, label, body string) {
	sb.WriteString("=== ")
	sb.WriteString(label)
	sb.WriteString(" ===\n")
	sb.WriteString(body)
	sb.WriteString("\n")
}

// ExportFilename returns "<basename>.txt" with basename reduced to a safe
// slug.
func ExportFilename(basename string) string {
	basename = strings.TrimSuffix(strings.TrimSpace(basename), ".txt")
	name := slug.Make(basename)
	if name == "" {
		name = DefaultBasename
	}
	return name + ".txt"
}
