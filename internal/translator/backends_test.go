package translator

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/valpere/transhub/internal/language"
)

func TestMultilingualBackend(t *testing.T) {
	var params map[string]any
	hub := newTestHub(t, func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodGet {
			w.Write([]byte(`{}`))
			return
		}
		var body struct {
			Parameters map[string]any `json:"parameters"`
		}
		json.NewDecoder(r.Body).Decode(&body)
		params = body.Parameters
		w.Write([]byte(`[{"translation_text":"Habari"}]`))
	})
	b := NewMultilingualBackend(hub, "", language.Default())

	if b.Name() != "multilingual" {
		t.Errorf("unexpected name %q", b.Name())
	}
	idA, _ := b.ModelID("en", "sw")
	idB, _ := b.ModelID("fr", "ht")
	if idA != DefaultMultilingualModel || idB != DefaultMultilingualModel {
		t.Errorf("expected one model for every pair, got %q and %q", idA, idB)
	}

	m, err := b.Load(context.Background(), idA)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	out, err := m.Generate(context.Background(), "Hello", "en", "sw")
	if err != nil {
		t.Fatalf("Generate failed: %v", err)
	}
	if out != "Habari" {
		t.Errorf("unexpected output %q", out)
	}
	if params["src_lang"] != "eng_Latn" || params["tgt_lang"] != "swh_Latn" {
		t.Errorf("unexpected language tags %v", params)
	}

	if _, err := m.Generate(context.Background(), "Hello", "en", "xx"); !errors.Is(err, language.ErrUnknownLanguage) {
		t.Errorf("expected ErrUnknownLanguage for an untagged code, got %v", err)
	}
}

func TestMultilingualBackend_CustomModel(t *testing.T) {
	b := NewMultilingualBackend(NewHubClient(HubConfig{}), "facebook/m2m100_418M", language.Default())
	if id, _ := b.ModelID("en", "es"); id != "facebook/m2m100_418M" {
		t.Errorf("unexpected model id %q", id)
	}
}

func TestOllamaBackend(t *testing.T) {
	var prompt string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/api/tags":
			w.Header().Set("Content-Type", "application/json")
			w.Write([]byte(`{"models":[{"name":"llama3.1:8b"},{"name":"mistral:latest"}]}`))
		case "/api/generate":
			var body map[string]any
			json.NewDecoder(r.Body).Decode(&body)
			prompt, _ = body["prompt"].(string)
			w.Header().Set("Content-Type", "application/json")
			w.Write([]byte(`{"response":"<think>easy</think>\"Bonjour\""}`))
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}))
	defer server.Close()

	b := NewOllamaBackend(server.URL, "llama3.1:8b", language.Default())
	if b.Name() != "ollama" {
		t.Errorf("unexpected name %q", b.Name())
	}

	m, err := b.Load(context.Background(), "llama3.1:8b")
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	out, err := m.Generate(context.Background(), "Hello", "en", "fr")
	if err != nil {
		t.Fatalf("Generate failed: %v", err)
	}
	if out != "Bonjour" {
		t.Errorf("expected cleaned output, got %q", out)
	}
	if !strings.Contains(prompt, "from English to French") {
		t.Errorf("expected display names in prompt, got %q", prompt)
	}

	if _, err := b.Load(context.Background(), "mistral"); err != nil {
		t.Errorf("expected :latest tag to match, got %v", err)
	}
	if _, err := b.Load(context.Background(), "qwen3:14b"); !errors.Is(err, ErrModelUnavailable) {
		t.Errorf("expected ErrModelUnavailable for a model not pulled, got %v", err)
	}
}

func TestOllamaBackend_Unreachable(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	url := server.URL
	server.Close()

	b := NewOllamaBackend(url, "", language.Default())
	if _, err := b.Load(context.Background(), DefaultOllamaModel); !errors.Is(err, ErrNetwork) {
		t.Errorf("expected ErrNetwork, got %v", err)
	}
}

func TestOpenAIBackend(t *testing.T) {
	var system string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/chat/completions" {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		var body struct {
			Model    string `json:"model"`
			Messages []struct {
				Role    string `json:"role"`
				Content string `json:"content"`
			} `json:"messages"`
		}
		json.NewDecoder(r.Body).Decode(&body)
		if body.Model == "missing-model" {
			w.WriteHeader(http.StatusNotFound)
			w.Write([]byte(`{"error":{"message":"model not found","type":"invalid_request_error"}}`))
			return
		}
		system = body.Messages[0].Content
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"id":"c1","object":"chat.completion","choices":[{"index":0,"message":{"role":"assistant","content":"Here is the translation: Hola"},"finish_reason":"stop"}]}`))
	}))
	defer server.Close()

	b := NewOpenAIBackend("sk-test", server.URL, "", language.Default())
	if b.Name() != "openai" {
		t.Errorf("unexpected name %q", b.Name())
	}
	id, _ := b.ModelID("en", "es")
	if id != DefaultOpenAIModel {
		t.Errorf("unexpected model id %q", id)
	}

	m, err := b.Load(context.Background(), id)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	out, err := m.Generate(context.Background(), "Hello", "en", "es")
	if err != nil {
		t.Fatalf("Generate failed: %v", err)
	}
	if out != "Hola" {
		t.Errorf("expected cleaned output, got %q", out)
	}
	if !strings.Contains(system, "from English to Spanish") {
		t.Errorf("unexpected system prompt %q", system)
	}

	missing, err := b.Load(context.Background(), "missing-model")
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if _, err := missing.Generate(context.Background(), "Hello", "en", "es"); !errors.Is(err, ErrModelUnavailable) {
		t.Errorf("expected ErrModelUnavailable, got %v", err)
	}
}

func TestOpenAIBackend_NoKey(t *testing.T) {
	b := NewOpenAIBackend("", "", "", language.Default())
	if _, err := b.Load(context.Background(), DefaultOpenAIModel); !errors.Is(err, ErrModelUnavailable) {
		t.Errorf("expected ErrModelUnavailable without a key, got %v", err)
	}
}

func TestGoogleBackend_Identity(t *testing.T) {
	b := NewGoogleBackend("")
	if b.Name() != "google" {
		t.Errorf("unexpected name %q", b.Name())
	}
	a, _ := b.ModelID("en", "es")
	c, _ := b.ModelID("fr", "de")
	if a != c || a == "" {
		t.Errorf("expected one stable model id, got %q and %q", a, c)
	}
}
