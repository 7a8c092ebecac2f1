package openai

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/yungbote/winnie-backend/internal/observability"
	"github.com/yungbote/winnie-backend/internal/platform/envutil"
	"github.com/yungbote/winnie-backend/internal/platform/httpx"
	"github.com/yungbote/winnie-backend/internal/platform/logger"
)

type Client interface {
	Embed(ctx context.Context, inputs []string) ([][]float32, error)
	// GenerateJSONText asks for output constrained to schema and returns the
	// raw JSON text. A nil schema requests a free-form JSON object.
	GenerateJSONText(ctx context.Context, system, user, schemaName string, schema map[string]any) (string, error)
	GenerateText(ctx context.Context, system, user string) (string, error)
}

type Config struct {
	APIKey      string
	BaseURL     string
	Model       string
	EmbedModel  string
	Timeout     time.Duration
	MaxRetries  int
	Temperature *float64
}

// ConfigFromEnv reads OPENAI_* variables. OPENAI_API_KEY is required.
func ConfigFromEnv() (Config, error) {
	apiKey := envutil.String("OPENAI_API_KEY", "")
	if apiKey == "" {
		return Config{}, fmt.Errorf("missing OPENAI_API_KEY")
	}
	temp := envutil.Float("OPENAI_TEMPERATURE", 0.7)
	return Config{
		APIKey:      apiKey,
		BaseURL:     envutil.String("OPENAI_BASE_URL", "https://api.openai.com"),
		Model:       envutil.String("OPENAI_MODEL", "gpt-4o"),
		EmbedModel:  envutil.String("OPENAI_EMBED_MODEL", "text-embedding-3-small"),
		Timeout:     envutil.Seconds("OPENAI_TIMEOUT_SECONDS", 60*time.Second),
		MaxRetries:  envutil.Int("OPENAI_MAX_RETRIES", 2),
		Temperature: &temp,
	}, nil
}

type client struct {
	log         *logger.Logger
	baseURL     string
	apiKey      string
	model       string
	embedModel  string
	httpClient  *http.Client
	maxRetries  int
	temperature *float64
}

func NewClient(log *logger.Logger) (Client, error) {
	cfg, err := ConfigFromEnv()
	if err != nil {
		return nil, err
	}
	return New(log, cfg)
}

func New(log *logger.Logger, cfg Config) (Client, error) {
	if log == nil {
		return nil, fmt.Errorf("logger required")
	}
	if strings.TrimSpace(cfg.APIKey) == "" {
		return nil, fmt.Errorf("missing OPENAI_API_KEY")
	}
	if cfg.BaseURL == "" {
		cfg.BaseURL = "https://api.openai.com"
	}
	if cfg.Model == "" {
		cfg.Model = "gpt-4o"
	}
	if cfg.EmbedModel == "" {
		cfg.EmbedModel = "text-embedding-3-small"
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 60 * time.Second
	}
	if cfg.MaxRetries < 0 {
		cfg.MaxRetries = 0
	}
	return &client{
		log:         log.With("service", "OpenAIClient"),
		baseURL:     strings.TrimRight(cfg.BaseURL, "/"),
		apiKey:      cfg.APIKey,
		model:       cfg.Model,
		embedModel:  cfg.EmbedModel,
		httpClient:  &http.Client{Timeout: cfg.Timeout},
		maxRetries:  cfg.MaxRetries,
		temperature: cfg.Temperature,
	}, nil
}

// WithTemperature returns a copy of base using temperature t. Clients that are
// not produced by this package are returned unchanged.
func WithTemperature(base Client, t float64) Client {
	c, ok := base.(*client)
	if !ok {
		return base
	}
	cp := *c
	cp.temperature = &t
	return &cp
}

// WithMaxRetries returns a copy of base with a different retry budget.
func WithMaxRetries(base Client, n int) Client {
	c, ok := base.(*client)
	if !ok {
		return base
	}
	cp := *c
	if n < 0 {
		n = 0
	}
	cp.maxRetries = n
	return &cp
}

type openAIHTTPError struct {
	StatusCode int
	Body       string
}

func (e *openAIHTTPError) Error() string {
	return fmt.Sprintf("openai http %d: %s", e.StatusCode, e.Body)
}

func (e *openAIHTTPError) HTTPStatusCode() int { return e.StatusCode }

func (c *client) doOnce(ctx context.Context, method, path string, body any) (*http.Response, []byte, error) {
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			return nil, nil, err
		}
	}
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, &buf)
	if err != nil {
		return nil, nil, err
	}
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, nil, err
	}
	raw, readErr := io.ReadAll(resp.Body)
	_ = resp.Body.Close()
	if readErr != nil {
		return resp, nil, readErr
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return resp, raw, &openAIHTTPError{StatusCode: resp.StatusCode, Body: string(raw)}
	}
	return resp, raw, nil
}

func (c *client) do(ctx context.Context, method, path, model string, body any, out any) error {
	backoff := time.Second
	start := time.Now()
	metrics := observability.Current()

	for attempt := 0; ; attempt++ {
		if err := ctx.Err(); err != nil {
			return err
		}
		resp, raw, err := c.doOnce(ctx, method, path, body)
		if err == nil {
			in, outTokens := extractUsage(raw)
			metrics.ObserveLLMRequest(model, path, statusOf(resp, nil), time.Since(start), in, outTokens)
			if out == nil {
				return nil
			}
			if uErr := json.Unmarshal(raw, out); uErr != nil {
				return fmt.Errorf("openai decode error: %w", uErr)
			}
			return nil
		}
		if !httpx.IsRetryableError(err) || attempt >= c.maxRetries {
			metrics.ObserveLLMRequest(model, path, statusOf(resp, err), time.Since(start), 0, 0)
			return err
		}

		sleepFor := httpx.JitterSleep(httpx.RetryAfterDuration(resp, backoff, 10*time.Second))
		c.log.Warn("OpenAI request retrying",
			"path", path,
			"attempt", attempt+1,
			"max_retries", c.maxRetries,
			"sleep", sleepFor.String(),
			"error", err.Error(),
		)
		if err := httpx.Sleep(ctx, sleepFor); err != nil {
			return err
		}
		backoff *= 2
	}
}

func statusOf(resp *http.Response, err error) string {
	switch {
	case resp != nil:
		return fmt.Sprintf("%d", resp.StatusCode)
	case errors.Is(err, context.DeadlineExceeded):
		return "timeout"
	case err != nil:
		return "error"
	default:
		return "ok"
	}
}

func extractUsage(raw []byte) (int, int) {
	var payload struct {
		Usage struct {
			InputTokens      int `json:"input_tokens"`
			OutputTokens     int `json:"output_tokens"`
			PromptTokens     int `json:"prompt_tokens"`
			CompletionTokens int `json:"completion_tokens"`
		} `json:"usage"`
	}
	if len(raw) == 0 || json.Unmarshal(raw, &payload) != nil {
		return 0, 0
	}
	u := payload.Usage
	if u.InputTokens == 0 && u.OutputTokens == 0 {
		return u.PromptTokens, u.CompletionTokens
	}
	return u.InputTokens, u.OutputTokens
}
