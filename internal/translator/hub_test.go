package translator

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"
)

func newTestHub(t *testing.T, handler http.HandlerFunc) *HubClient {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)
	return NewHubClient(HubConfig{
		HubURL:       server.URL,
		InferenceURL: server.URL,
		Token:        "hf_test",
		Timeout:      5 * time.Second,
	})
}

func TestHubClient_ModelInfo(t *testing.T) {
	tests := []struct {
		name    string
		status  int
		wantErr error
	}{
		{"exists", http.StatusOK, nil},
		{"missing", http.StatusNotFound, ErrModelUnavailable},
		{"missing private", http.StatusUnauthorized, ErrModelUnavailable},
		{"hub down", http.StatusBadGateway, ErrNetwork},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var gotPath, gotAuth string
			hub := newTestHub(t, func(w http.ResponseWriter, r *http.Request) {
				gotPath = r.URL.Path
				gotAuth = r.Header.Get("Authorization")
				w.WriteHeader(tt.status)
				w.Write([]byte(`{}`))
			})

			err := hub.ModelInfo(context.Background(), "Helsinki-NLP/opus-mt-en-es")
			if tt.wantErr == nil && err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if tt.wantErr != nil && !errors.Is(err, tt.wantErr) {
				t.Fatalf("expected %v, got %v", tt.wantErr, err)
			}
			if gotPath != "/api/models/Helsinki-NLP/opus-mt-en-es" {
				t.Errorf("unexpected path %q", gotPath)
			}
			if gotAuth != "Bearer hf_test" {
				t.Errorf("unexpected auth header %q", gotAuth)
			}
		})
	}
}

func TestHubClient_InferStatusMapping(t *testing.T) {
	tests := []struct {
		name    string
		status  int
		body    string
		wantErr error
		wantMsg string
	}{
		{"loading", http.StatusServiceUnavailable, `{"error":"Model is currently loading","estimated_time":20}`, ErrNetwork, "currently loading"},
		{"gateway timeout", http.StatusGatewayTimeout, ``, ErrNetwork, "Gateway Timeout"},
		{"not found", http.StatusNotFound, `{"error":"Model not found"}`, ErrModelUnavailable, ""},
		{"bad input", http.StatusBadRequest, `{"error":["input too long"]}`, ErrInference, "input too long"},
		{"oom", http.StatusInternalServerError, `{"error":"CUDA out of memory"}`, ErrInference, "out of memory"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			hub := newTestHub(t, func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				w.Write([]byte(tt.body))
			})

			var out []map[string]string
			err := hub.Infer(context.Background(), "m", map[string]any{"inputs": "x"}, &out)
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("expected %v, got %v", tt.wantErr, err)
			}
			if tt.wantMsg != "" && !strings.Contains(err.Error(), tt.wantMsg) {
				t.Errorf("expected message %q in %v", tt.wantMsg, err)
			}
		})
	}
}

func TestHubClient_InferMalformedResponse(t *testing.T) {
	hub := newTestHub(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`not json`))
	})

	var out []map[string]string
	err := hub.Infer(context.Background(), "m", map[string]any{"inputs": "x"}, &out)
	if !errors.Is(err, ErrInference) {
		t.Errorf("expected ErrInference, got %v", err)
	}
}

func TestHubClient_BreakerOpensOnTransportFailures(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	url := server.URL
	server.Close()

	hub := NewHubClient(HubConfig{HubURL: url, InferenceURL: url, Timeout: time.Second})

	var err error
	for i := 0; i < 6; i++ {
		err = hub.ModelInfo(context.Background(), "m")
		if !errors.Is(err, ErrNetwork) {
			t.Fatalf("call %d: expected ErrNetwork, got %v", i, err)
		}
	}
	if !strings.Contains(err.Error(), "temporarily disabled") {
		t.Errorf("expected open breaker after repeated failures, got %v", err)
	}
}

func TestHubClient_StatusErrorsDoNotTripBreaker(t *testing.T) {
	hub := newTestHub(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	})

	for i := 0; i < 8; i++ {
		err := hub.ModelInfo(context.Background(), "m")
		if !errors.Is(err, ErrModelUnavailable) {
			t.Fatalf("call %d: expected ErrModelUnavailable, got %v", i, err)
		}
	}
}

func TestHubClient_CancelledCallsDoNotTripBreaker(t *testing.T) {
	hub := newTestHub(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	for i := 0; i < 8; i++ {
		err := hub.ModelInfo(ctx, "m")
		if !errors.Is(err, context.Canceled) {
			t.Fatalf("call %d: expected context.Canceled, got %v", i, err)
		}
		if strings.Contains(err.Error(), "temporarily disabled") {
			t.Fatalf("call %d: breaker opened on cancelled calls", i)
		}
	}

	if err := hub.ModelInfo(context.Background(), "m"); err != nil {
		t.Errorf("expected live call to pass, got %v", err)
	}
}

func TestOpusMTBackend(t *testing.T) {
	var payload map[string]any
	hub := newTestHub(t, func(w http.ResponseWriter, r *http.Request) {
		switch {
		case r.Method == http.MethodGet && r.URL.Path == "/api/models/Helsinki-NLP/opus-mt-en-es":
			w.Write([]byte(`{"id":"Helsinki-NLP/opus-mt-en-es"}`))
		case r.Method == http.MethodGet:
			w.WriteHeader(http.StatusNotFound)
		case r.Method == http.MethodPost && r.URL.Path == "/models/Helsinki-NLP/opus-mt-en-es":
			json.NewDecoder(r.Body).Decode(&payload)
			w.Write([]byte(`[{"translation_text":"Hola mundo"}]`))
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	})
	b := NewOpusMTBackend(hub)

	if b.Name() != "opus-mt" {
		t.Errorf("unexpected name %q", b.Name())
	}

	id, err := b.ModelID("EN", "es")
	if err != nil || id != "Helsinki-NLP/opus-mt-en-es" {
		t.Fatalf("ModelID = %q, %v", id, err)
	}
	if _, err := b.ModelID("", "es"); !errors.Is(err, ErrModelUnavailable) {
		t.Errorf("expected ErrModelUnavailable for empty code, got %v", err)
	}

	m, err := b.Load(context.Background(), id)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	out, err := m.Generate(context.Background(), "Hello world", "en", "es")
	if err != nil {
		t.Fatalf("Generate failed: %v", err)
	}
	if out != "Hola mundo" {
		t.Errorf("unexpected output %q", out)
	}
	if payload["inputs"] != "Hello world" {
		t.Errorf("unexpected inputs %v", payload["inputs"])
	}
	params, _ := payload["parameters"].(map[string]any)
	if params["max_length"] != float64(512) {
		t.Errorf("expected max_length 512, got %v", params["max_length"])
	}

	// no model for this pair on the hub
	missing, _ := b.ModelID("ko", "ar")
	if _, err := b.Load(context.Background(), missing); !errors.Is(err, ErrModelUnavailable) {
		t.Errorf("expected ErrModelUnavailable, got %v", err)
	}
}

func TestOpusMTBackend_EmptyResult(t *testing.T) {
	hub := newTestHub(t, func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodGet {
			w.Write([]byte(`{}`))
			return
		}
		w.Write([]byte(`[]`))
	})
	b := NewOpusMTBackend(hub)

	m, err := b.Load(context.Background(), "Helsinki-NLP/opus-mt-en-fr")
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if _, err := m.Generate(context.Background(), "Hello", "en", "fr"); !errors.Is(err, ErrInference) {
		t.Errorf("expected ErrInference, got %v", err)
	}
}
