package openai

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/yungbote/winnie-backend/internal/platform/logger"
)

func newTestClient(t *testing.T, h http.HandlerFunc, retries int) Client {
	t.Helper()
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)
	c, err := New(logger.Nop(), Config{
		APIKey:     "sk-test",
		BaseURL:    srv.URL + "/",
		Model:      "gpt-test",
		Timeout:    5 * time.Second,
		MaxRetries: retries,
	})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return c
}

func outputText(text string) string {
	b, _ := json.Marshal(map[string]any{
		"output": []any{map[string]any{
			"type": "message",
			"role": "assistant",
			"content": []any{
				map[string]any{"type": "output_text", "text": text},
			},
		}},
		"usage": map[string]any{"input_tokens": 10, "output_tokens": 20},
	})
	return string(b)
}

func TestNewRequiresKeyAndLogger(t *testing.T) {
	if _, err := New(nil, Config{APIKey: "x"}); err == nil {
		t.Fatal("expected error without logger")
	}
	if _, err := New(logger.Nop(), Config{}); err == nil {
		t.Fatal("expected error without api key")
	}
}

func TestGenerateJSONTextUsesJSONObjectWithoutSchema(t *testing.T) {
	var gotFormat map[string]any
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v1/responses" {
			t.Errorf("path = %s", r.URL.Path)
		}
		if got := r.Header.Get("Authorization"); got != "Bearer sk-test" {
			t.Errorf("Authorization = %q", got)
		}
		var req responsesRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Errorf("decode: %v", err)
		}
		if req.Text != nil {
			gotFormat = req.Text.Format
		}
		_, _ = w.Write([]byte(outputText(`{"ok":true}`)))
	}, 0)

	text, err := c.GenerateJSONText(context.Background(), "sys", "user", "", nil)
	if err != nil {
		t.Fatalf("GenerateJSONText: %v", err)
	}
	if text != `{"ok":true}` {
		t.Fatalf("text = %q", text)
	}
	if gotFormat["type"] != "json_object" {
		t.Fatalf("format = %v", gotFormat)
	}
}

func TestGenerateJSONWithSchema(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		var req responsesRequest
		_ = json.NewDecoder(r.Body).Decode(&req)
		if req.Text == nil || req.Text.Format["type"] != "json_schema" || req.Text.Format["name"] != "plan" {
			t.Errorf("format = %+v", req.Text)
		}
		_, _ = w.Write([]byte(outputText(`{"score":7}`)))
	}, 0)

	text, err := c.GenerateJSONText(context.Background(), "sys", "user", "plan", map[string]any{"type": "object"})
	if err != nil {
		t.Fatalf("GenerateJSONText: %v", err)
	}
	if text != `{"score":7}` {
		t.Fatalf("text = %q", text)
	}
}

func TestRetriesOnServerError(t *testing.T) {
	var calls int32
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if atomic.AddInt32(&calls, 1) == 1 {
			w.Header().Set("Retry-After", "0")
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		_, _ = w.Write([]byte(outputText("hello")))
	}, 1)
	c = WithTemperature(c, 0.3)

	got, err := c.GenerateText(context.Background(), "sys", "user")
	if err != nil {
		t.Fatalf("GenerateText: %v", err)
	}
	if got != "hello" || atomic.LoadInt32(&calls) != 2 {
		t.Fatalf("got %q after %d calls", got, calls)
	}
}

func TestWithMaxRetriesZeroFailsFast(t *testing.T) {
	var calls int32
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		w.Header().Set("Retry-After", "0")
		w.WriteHeader(http.StatusServiceUnavailable)
	}, 3)
	c = WithMaxRetries(c, 0)

	if _, err := c.GenerateText(context.Background(), "sys", "user"); err == nil {
		t.Fatalf("expected error")
	}
	if got := atomic.LoadInt32(&calls); got != 1 {
		t.Fatalf("calls = %d, want 1", got)
	}
}

func TestWithTemperatureSendsValue(t *testing.T) {
	var got *float64
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		var req responsesRequest
		_ = json.NewDecoder(r.Body).Decode(&req)
		got = req.Temperature
		_, _ = w.Write([]byte(outputText("ok")))
	}, 0)

	if _, err := WithTemperature(c, 0.3).GenerateText(context.Background(), "sys", "user"); err != nil {
		t.Fatalf("GenerateText: %v", err)
	}
	if got == nil || *got != 0.3 {
		t.Fatalf("temperature = %v", got)
	}
}

func TestNoRetryOnClientError(t *testing.T) {
	var calls int32
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		http.Error(w, `{"error":"bad"}`, http.StatusBadRequest)
	}, 3)

	_, err := c.GenerateText(context.Background(), "sys", "user")
	if err == nil || !strings.Contains(err.Error(), "400") {
		t.Fatalf("err = %v", err)
	}
	if calls != 1 {
		t.Fatalf("calls = %d, want 1", calls)
	}
}

func TestRefusalIsError(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"output":[{"type":"message","role":"assistant","content":[{"type":"refusal","refusal":"no"}]}]}`))
	}, 0)
	if _, err := c.GenerateText(context.Background(), "s", "u"); err == nil || !strings.Contains(err.Error(), "refused") {
		t.Fatalf("err = %v", err)
	}
}

func TestEmbedOrdersByIndex(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v1/embeddings" {
			t.Errorf("path = %s", r.URL.Path)
		}
		_, _ = w.Write([]byte(`{"data":[{"index":1,"embedding":[2,2]},{"index":0,"embedding":[1,1]}]}`))
	}, 0)

	vecs, err := c.Embed(context.Background(), []string{"a", "  "})
	if err != nil {
		t.Fatalf("Embed: %v", err)
	}
	if len(vecs) != 2 || vecs[0][0] != 1 || vecs[1][0] != 2 {
		t.Fatalf("vecs = %v", vecs)
	}
}
