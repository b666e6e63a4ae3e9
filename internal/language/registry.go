// Package language holds the registry of languages offered by the hub.
//
// Each entry maps a display name to the ISO 639-1 code that bilingual
// models are keyed by and to the FLORES-200 tag that conditions the
// multilingual model. The registry is read-only once loaded.
package language

import (
	_ "embed"
	"errors"
	"fmt"
	"strings"
	"sync"

	"golang.org/x/text/language"
	"gopkg.in/yaml.v3"
)

//go:embed languages.yaml
var languagesYAML []byte

// AutoCode asks the gateway to detect the source language.
const AutoCode = "auto"

var ErrUnknownLanguage = errors.New("unknown language")

// Entry is one selectable language.
type Entry struct {
	Name string `yaml:"name" json:"name"`
	Code string `yaml:"code" json:"code"`
	Tag  string `yaml:"tag" json:"tag"`
	Lite bool   `yaml:"lite" json:"lite"`
}

// Registry is an ordered, immutable set of languages.
type Registry struct {
	entries []Entry
	byName  map[string]int
	byCode  map[string]int
}

type registryFile struct {
	Languages []Entry `yaml:"languages"`
}

var loadDefault = sync.OnceValues(func() (*Registry, error) {
	return Parse(languagesYAML)
})

// Default returns the embedded registry. It panics if the embedded file is
// malformed, which the package tests guard against.
func Default() *Registry {
	reg, err := loadDefault()
	if err != nil {
		panic(fmt.Sprintf("language: embedded registry: %v", err))
	}
	return reg
}

// Parse loads a registry from YAML. Names and codes must be unique and codes
// must be well-formed BCP 47 language subtags.
func Parse(data []byte) (*Registry, error) {
	var f registryFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("failed to parse language registry: %w", err)
	}
	return New(f.Languages)
}

// New builds a registry from entries, keeping their order.
func New(entries []Entry) (*Registry, error) {
	r := &Registry{
		entries: make([]Entry, 0, len(entries)),
		byName:  make(map[string]int, len(entries)),
		byCode:  make(map[string]int, len(entries)),
	}

	for _, e := range entries {
		e.Name = strings.TrimSpace(e.Name)
		e.Code = strings.ToLower(strings.TrimSpace(e.Code))
		e.Tag = strings.TrimSpace(e.Tag)

		if e.Name == "" {
			return nil, fmt.Errorf("language with code %q has no name", e.Code)
		}
		if _, err := language.ParseBase(e.Code); err != nil {
			return nil, fmt.Errorf("language %s: invalid code %q: %w", e.Name, e.Code, err)
		}
		if e.Tag != "" && !validTag(e.Tag) {
			return nil, fmt.Errorf("language %s: invalid tag %q", e.Name, e.Tag)
		}

		nameKey := strings.ToLower(e.Name)
		if _, dup := r.byName[nameKey]; dup {
			return nil, fmt.Errorf("duplicate language name %q", e.Name)
		}
		if _, dup := r.byCode[e.Code]; dup {
			return nil, fmt.Errorf("duplicate language code %q", e.Code)
		}

		r.byName[nameKey] = len(r.entries)
		r.byCode[e.Code] = len(r.entries)
		r.entries = append(r.entries, e)
	}

	return r, nil
}

// validTag accepts FLORES-200 style tags: a three-letter language and a
// four-letter script joined by an underscore (eng_Latn).
func validTag(tag string) bool {
	lang, script, ok := strings.Cut(tag, "_")
	if !ok || len(lang) != 3 || len(script) != 4 {
		return false
	}
	_, err := language.ParseScript(script)
	return err == nil
}

// Lookup finds an entry by its exact display name.
func (r *Registry) Lookup(name string) (Entry, bool) {
	i, ok := r.byName[strings.ToLower(name)]
	if !ok || r.entries[i].Name != name {
		return Entry{}, false
	}
	return r.entries[i], true
}

// ByCode finds an entry by ISO code, case-insensitively.
func (r *Registry) ByCode(code string) (Entry, bool) {
	i, ok := r.byCode[strings.ToLower(strings.TrimSpace(code))]
	if !ok {
		return Entry{}, false
	}
	return r.entries[i], true
}

// Resolve accepts a display name or a code in any case.
func (r *Registry) Resolve(nameOrCode string) (Entry, error) {
	key := strings.ToLower(strings.TrimSpace(nameOrCode))
	if i, ok := r.byCode[key]; ok {
		return r.entries[i], nil
	}
	if i, ok := r.byName[key]; ok {
		return r.entries[i], nil
	}
	return Entry{}, fmt.Errorf("%w: %q", ErrUnknownLanguage, nameOrCode)
}

// Names returns display names in registration order.
func (r *Registry) Names() []string {
	names := make([]string, len(r.entries))
	for i, e := range r.entries {
		names[i] = e.Name
	}
	return names
}

// Entries returns a copy of all entries in registration order.
func (r *Registry) Entries() []Entry {
	out := make([]Entry, len(r.entries))
	copy(out, r.entries)
	return out
}

func (r *Registry) Len() int {
	return len(r.entries)
}

// Lite returns the subset offered by the lite variant.
func (r *Registry) Lite() *Registry {
	var lite []Entry
	for _, e := range r.entries {
		if e.Lite {
			lite = append(lite, e)
		}
	}
	// entries already passed validation
	sub, _ := New(lite)
	return sub
}
