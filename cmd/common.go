/*
Copyright © 2025 Valentyn Solomko <valentyn.solomko@gmail.com>

Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

	http://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/
package cmd

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/valpere/transhub/internal/config"
	"github.com/valpere/transhub/internal/detector"
	"github.com/valpere/transhub/internal/gateway"
	"github.com/valpere/transhub/internal/language"
	"github.com/valpere/transhub/internal/store"
	"github.com/valpere/transhub/internal/translator"
	"github.com/valpere/transhub/internal/validator"
)

// registryFor returns the languages the variant offers.
func registryFor(cfg *config.Config) *language.Registry {
	if cfg.Variant == config.VariantLite {
		return language.Default().Lite()
	}
	return language.Default()
}

// buildBackend picks the translation backend. The hub backend follows the
// variant; the others serve either variant's language list.
func buildBackend(cfg *config.Config, reg *language.Registry) (translator.Backend, error) {
	switch cfg.Backend {
	case config.BackendHub:
		hub := translator.NewHubClient(translator.HubConfig{
			HubURL:       cfg.HubURL,
			InferenceURL: cfg.InferenceURL,
			Token:        cfg.HFToken,
			Timeout:      cfg.Timeout,
		})
		if cfg.Variant == config.VariantLite {
			return translator.NewOpusMTBackend(hub), nil
		}
		return translator.NewMultilingualBackend(hub, cfg.MultilingualModel, reg), nil
	case config.BackendGoogle:
		return translator.NewGoogleBackend(cfg.Google.Credentials), nil
	case config.BackendOllama:
		return translator.NewOllamaBackend(cfg.Ollama.URL, cfg.Ollama.Model, reg), nil
	case config.BackendOpenAI:
		return translator.NewOpenAIBackend(cfg.OpenAI.Key, cfg.OpenAI.BaseURL, cfg.OpenAI.Model, reg), nil
	default:
		return nil, fmt.Errorf("unknown backend: %s", cfg.Backend)
	}
}

// buildGateway wires the gateway from settings. The returned store is nil
// unless translation memory is enabled; the caller closes both.
func buildGateway(cfg *config.Config) (*gateway.Gateway, *store.Store, error) {
	reg := registryFor(cfg)

	backend, err := buildBackend(cfg, reg)
	if err != nil {
		return nil, nil, err
	}

	det := detector.New(reg)
	opts := gateway.Options{
		MaxChunkChars: cfg.MaxChunkChars,
		Timeout:       cfg.Timeout,
		Detector:      det,
	}
	if cfg.Validate {
		opts.Validator = validator.New(det)
	}

	var db *store.Store
	if cfg.Memory != "" {
		db, err = openStore(cfg.Memory)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to open translation memory: %w", err)
		}
		opts.Memory = db
	}

	return gateway.New(backend, reg, opts), db, nil
}

func openStore(path string) (*store.Store, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, fmt.Errorf("failed to create database directory: %w", err)
	}
	return store.New(path)
}

// readInput returns the text from a file, the arguments or stdin, in that
// order of preference.
func readInput(inputFile string, args []string) (string, error) {
	if inputFile != "" {
		data, err := os.ReadFile(inputFile)
		if err != nil {
			return "", fmt.Errorf("failed to read input file: %w", err)
		}
		return string(data), nil
	}
	if len(args) > 0 {
		return strings.Join(args, " "), nil
	}
	if fi, err := os.Stdin.Stat(); err == nil && fi.Mode()&os.ModeCharDevice != 0 {
		return "", fmt.Errorf("no input: pass text as arguments, use --input or pipe it on stdin")
	}
	data, err := io.ReadAll(os.Stdin)
	if err != nil {
		return "", fmt.Errorf("failed to read stdin: %w", err)
	}
	return string(data), nil
}
