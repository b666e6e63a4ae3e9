package translator

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/sony/gobreaker"
)

const (
	DefaultHubURL       = "https://huggingface.co"
	DefaultInferenceURL = "https://api-inference.huggingface.co"

	// bilingual models were trained with a 512 token window
	defaultMaxLength = 512
)

// HubConfig points a HubClient at a Hugging Face compatible model hub and
// inference runtime. Self-hosted runtimes that mirror the same routes work too.
type HubConfig struct {
	HubURL       string
	InferenceURL string
	Token        string
	Timeout      time.Duration
}

// HubClient talks to the model hub (metadata) and the inference runtime
// (generation). Transport failures trip a circuit breaker so a dead runtime
// fails fast instead of holding every request until timeout.
type HubClient struct {
	hubURL       string
	inferenceURL string
	token        string
	http         *resty.Client
	breaker      *gobreaker.CircuitBreaker
}

func NewHubClient(cfg HubConfig) *HubClient {
	if cfg.HubURL == "" {
		cfg.HubURL = DefaultHubURL
	}
	if cfg.InferenceURL == "" {
		cfg.InferenceURL = DefaultInferenceURL
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 120 * time.Second
	}

	return &HubClient{
		hubURL:       strings.TrimRight(cfg.HubURL, "/"),
		inferenceURL: strings.TrimRight(cfg.InferenceURL, "/"),
		token:        cfg.Token,
		http:         resty.New().SetTimeout(cfg.Timeout),
		breaker: gobreaker.NewCircuitBreaker(gobreaker.Settings{
			Name:    "inference-runtime",
			Timeout: 30 * time.Second,
			ReadyToTrip: func(counts gobreaker.Counts) bool {
				return counts.ConsecutiveFailures >= 5
			},
			IsSuccessful: countsAsSuccess,
		}),
	}
}

// callerGone marks a transport error raised because the caller's context
// ended. A client that gave up says nothing about the runtime's health.
type callerGone struct{ err error }

func (e *callerGone) Error() string { return e.err.Error() }
func (e *callerGone) Unwrap() error { return e.err }

func countsAsSuccess(err error) bool {
	var gone *callerGone
	return err == nil || errors.As(err, &gone)
}

func (c *HubClient) request(ctx context.Context) *resty.Request {
	r := c.http.R().SetContext(ctx)
	if c.token != "" {
		r.SetAuthToken(c.token)
	}
	return r
}

// do runs send through the breaker. Only transport errors count as breaker
// failures; HTTP statuses are classified by the caller.
func (c *HubClient) do(ctx context.Context, send func() (*resty.Response, error)) (*resty.Response, error) {
	out, err := c.breaker.Execute(func() (interface{}, error) {
		resp, err := send()
		if err != nil && ctx.Err() != nil {
			return nil, &callerGone{err: err}
		}
		return resp, err
	})
	if err != nil {
		if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
			return nil, fmt.Errorf("%w: inference runtime temporarily disabled after repeated failures", ErrNetwork)
		}
		return nil, fmt.Errorf("%w: %w", ErrNetwork, err)
	}
	return out.(*resty.Response), nil
}

// ModelInfo checks that modelID exists on the hub.
func (c *HubClient) ModelInfo(ctx context.Context, modelID string) error {
	endpoint := fmt.Sprintf("%s/api/models/%s", c.hubURL, escapeModelID(modelID))

	resp, err := c.do(ctx, func() (*resty.Response, error) {
		return c.request(ctx).Get(endpoint)
	})
	if err != nil {
		return err
	}

	switch code := resp.StatusCode(); {
	case code == http.StatusOK:
		return nil
	case code == http.StatusNotFound || code == http.StatusUnauthorized:
		// the hub answers 401 for repositories that do not exist
		return fmt.Errorf("%w: %s", ErrModelUnavailable, modelID)
	default:
		return fmt.Errorf("%w: hub returned status %d for %s", ErrNetwork, code, modelID)
	}
}

// Infer posts payload to the model's inference route and decodes the JSON
// response into out.
func (c *HubClient) Infer(ctx context.Context, modelID string, payload, out any) error {
	endpoint := fmt.Sprintf("%s/models/%s", c.inferenceURL, escapeModelID(modelID))

	resp, err := c.do(ctx, func() (*resty.Response, error) {
		return c.request(ctx).
			SetHeader("Content-Type", "application/json").
			SetBody(payload).
			Post(endpoint)
	})
	if err != nil {
		return err
	}

	if resp.IsError() {
		return classifyInferenceStatus(modelID, resp.StatusCode(), runtimeMessage(resp.Body()))
	}

	if err := json.Unmarshal(resp.Body(), out); err != nil {
		return fmt.Errorf("%w: failed to decode response from %s: %v", ErrInference, modelID, err)
	}
	return nil
}

func classifyInferenceStatus(modelID string, code int, msg string) error {
	if msg == "" {
		msg = http.StatusText(code)
	}
	switch {
	case code == http.StatusNotFound:
		return fmt.Errorf("%w: %s", ErrModelUnavailable, modelID)
	case code == http.StatusServiceUnavailable || code == http.StatusGatewayTimeout:
		// weights still downloading or runtime overloaded
		return fmt.Errorf("%w: %s is not ready: %s", ErrNetwork, modelID, msg)
	default:
		return fmt.Errorf("%w: %s returned status %d: %s", ErrInference, modelID, code, msg)
	}
}

// runtimeMessage extracts the "error" field runtimes put in failure bodies.
func runtimeMessage(body []byte) string {
	var e struct {
		Error any `json:"error"`
	}
	if err := json.Unmarshal(body, &e); err != nil || e.Error == nil {
		return strings.TrimSpace(string(body))
	}
	switch v := e.Error.(type) {
	case string:
		return v
	case []any:
		parts := make([]string, 0, len(v))
		for _, p := range v {
			parts = append(parts, fmt.Sprint(p))
		}
		return strings.Join(parts, "; ")
	default:
		return fmt.Sprint(v)
	}
}

// escapeModelID escapes each path segment of an "org/name" model id.
func escapeModelID(modelID string) string {
	parts := strings.Split(modelID, "/")
	for i, p := range parts {
		parts[i] = url.PathEscape(p)
	}
	return strings.Join(parts, "/")
}
