package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/spf13/viper"

	"github.com/valpere/transhub/internal/translator"
)

func TestLoad_Defaults(t *testing.T) {
	v := viper.New()
	Defaults(v)

	cfg, err := Load(v)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Variant != VariantFull || cfg.Backend != BackendHub {
		t.Errorf("unexpected variant/backend %s/%s", cfg.Variant, cfg.Backend)
	}
	if cfg.Timeout != 2*time.Minute {
		t.Errorf("unexpected timeout %v", cfg.Timeout)
	}
	if cfg.MaxChunkChars != 900 {
		t.Errorf("unexpected max_chunk_chars %d", cfg.MaxChunkChars)
	}
	if cfg.Memory != "" {
		t.Errorf("memory must be off by default, got %q", cfg.Memory)
	}
	if cfg.Ollama.Model != translator.DefaultOllamaModel {
		t.Errorf("ollama default %q differs from the backend's %q", cfg.Ollama.Model, translator.DefaultOllamaModel)
	}
	if cfg.MultilingualModel != translator.DefaultMultilingualModel {
		t.Errorf("unexpected multilingual model %q", cfg.MultilingualModel)
	}
}

func TestNew_ConfigFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "transhub.yaml")
	content := `variant: lite
timeout: 30s
ollama:
  model: qwen3:14b
`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("failed to write config: %v", err)
	}

	v, err := New(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	cfg, err := Load(v)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if cfg.Variant != VariantLite {
		t.Errorf("expected lite, got %s", cfg.Variant)
	}
	if cfg.Timeout != 30*time.Second {
		t.Errorf("expected 30s, got %v", cfg.Timeout)
	}
	if cfg.Ollama.Model != "qwen3:14b" {
		t.Errorf("expected nested key, got %q", cfg.Ollama.Model)
	}
	if cfg.Ollama.URL != "http://localhost:11434" {
		t.Errorf("expected default ollama url, got %q", cfg.Ollama.URL)
	}
}

func TestNew_MissingConfigFile(t *testing.T) {
	if _, err := New(filepath.Join(t.TempDir(), "absent.yaml")); err == nil {
		t.Error("expected error for an explicit missing config file")
	}
}

func TestNew_Env(t *testing.T) {
	t.Setenv("TRANSHUB_BACKEND", "ollama")
	t.Setenv("TRANSHUB_OPENAI_MODEL", "gpt-4o")
	t.Setenv("HF_TOKEN", "hf_test")

	path := filepath.Join(t.TempDir(), "empty.yaml")
	if err := os.WriteFile(path, []byte("{}\n"), 0o644); err != nil {
		t.Fatalf("failed to write config: %v", err)
	}

	v, err := New(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	cfg, err := Load(v)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if cfg.Backend != BackendOllama {
		t.Errorf("expected ollama from env, got %s", cfg.Backend)
	}
	if cfg.OpenAI.Model != "gpt-4o" {
		t.Errorf("expected nested env override, got %q", cfg.OpenAI.Model)
	}
	if cfg.HFToken != "hf_test" {
		t.Errorf("expected HF_TOKEN fallback, got %q", cfg.HFToken)
	}
}

func TestCheck(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{"ok", func(*Config) {}, ""},
		{"bad variant", func(c *Config) { c.Variant = "medium" }, "invalid variant"},
		{"bad backend", func(c *Config) { c.Backend = "systran" }, "invalid backend"},
		{"negative chunk", func(c *Config) { c.MaxChunkChars = -1 }, "max_chunk_chars"},
		{"negative timeout", func(c *Config) { c.Timeout = -time.Second }, "timeout"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := Config{Variant: VariantFull, Backend: BackendHub}
			tt.mutate(&c)
			err := c.Check()
			if tt.wantErr == "" {
				if err != nil {
					t.Errorf("unexpected error: %v", err)
				}
				return
			}
			if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("expected error containing %q, got %v", tt.wantErr, err)
			}
		})
	}
}

func TestLoad_ValidateSetting(t *testing.T) {
	v := viper.New()
	Defaults(v)
	v.Set("validate", true)

	cfg, err := Load(v)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !cfg.Validate {
		t.Error("expected the validate setting to be decoded")
	}
}
