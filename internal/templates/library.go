// Package templates provides the document-template library: ready-made
// messages with bracketed placeholders ([Date], [Location]) that users fill in
// before translating. Placeholders are plain text to this package.
package templates

import (
	_ "embed"
	"errors"
	"fmt"
	"strings"
	"sync"

	"gopkg.in/yaml.v3"
)

//go:embed templates.yaml
var templatesYAML []byte

var ErrUnknownTemplate = errors.New("unknown template")

type Template struct {
	Name string `yaml:"name" json:"name"`
	Body string `yaml:"body" json:"body"`
}

// Library is an ordered, read-only set of templates.
type Library struct {
	templates []Template
	byName    map[string]int
}

var loadDefault = sync.OnceValues(func() (*Library, error) {
	return Parse(templatesYAML)
})

// Default returns the embedded library.
func Default() *Library {
	lib, err := loadDefault()
	if err != nil {
		panic(fmt.Sprintf("templates: embedded library: %v", err))
	}
	return lib
}

func Parse(data []byte) (*Library, error) {
	var f struct {
		Templates []Template `yaml:"templates"`
	}
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("failed to parse template library: %w", err)
	}

	lib := &Library{byName: make(map[string]int, len(f.Templates))}
	for _, t := range f.Templates {
		t.Name = strings.TrimSpace(t.Name)
		t.Body = strings.TrimRight(t.Body, "\n")
		if t.Name == "" {
			return nil, fmt.Errorf("template without a name")
		}
		if _, dup := lib.byName[t.Name]; dup {
			return nil, fmt.Errorf("duplicate template %q", t.Name)
		}
		lib.byName[t.Name] = len(lib.templates)
		lib.templates = append(lib.templates, t)
	}
	return lib, nil
}

// Get returns the body of the named template.
func (l *Library) Get(name string) (string, error) {
	i, ok := l.byName[name]
	if !ok {
		return "", fmt.Errorf("%w: %q", ErrUnknownTemplate, name)
	}
	return l.templates[i].Body, nil
}

func (l *Library) Names() []string {
	names := make([]string, len(l.templates))
	for i, t := range l.templates {
		names[i] = t.Name
	}
	return names
}

func (l *Library) All() []Template {
	out := make([]Template, len(l.templates))
	copy(out, l.templates)
	return out
}
