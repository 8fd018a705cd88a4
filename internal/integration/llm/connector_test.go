package llm

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/futig/study-helper/internal/config"
	"github.com/futig/study-helper/internal/entity"
	pkgRetry "github.com/futig/study-helper/internal/pkg/retry"
	"go.uber.org/zap"
)

func testHTTPConfig(url, token string) config.HTTPClientConfig {
	return config.HTTPClientConfig{
		RequestTimeout:        5 * time.Second,
		ConnTimeout:           time.Second,
		KeepAlive:             time.Second,
		IdleConnTimeout:       time.Second,
		ResponseHeaderTimeout: 5 * time.Second,
		Token:                 token,
		Url:                   url,
	}
}

func testChatConfig(url string) config.ChatLLMConfig {
	return config.ChatLLMConfig{
		HTTPClientConfig:    testHTTPConfig(url, "tok"),
		CompletionsEndpoint: "/chat/completions",
		Model:               "openai/gpt-3.5-turbo",
		MaxTokens:           1000,
		Temperature:         0.3,
		TopP:                0.9,
		Retry:               pkgRetry.RetryConfig{Attempts: 1},
	}
}

func TestChatConnector_Complete(t *testing.T) {
	var got entity.ChatCompletionRequest
	var auth, title string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/chat/completions" {
			t.Errorf("path = %s", r.URL.Path)
		}
		auth = r.Header.Get("Authorization")
		title = r.Header.Get("X-Title")
		if err := json.NewDecoder(r.Body).Decode(&got); err != nil {
			t.Errorf("decode request: %v", err)
		}
		_, _ = w.Write([]byte(`{"choices":[{"message":{"role":"assistant","content":"  Paris.  "}}]}`))
	}))
	defer srv.Close()

	c := NewChatConnector(testChatConfig(srv.URL), zap.NewNop())
	answer, err := c.Complete(context.Background(), []entity.ChatMessage{
		{Role: entity.RoleSystem, Content: "sys"},
		{Role: entity.RoleUser, Content: "capital?"},
	})
	if err != nil {
		t.Fatalf("Complete: %v", err)
	}
	if answer != "Paris." {
		t.Errorf("answer = %q", answer)
	}
	if auth != "Bearer tok" {
		t.Errorf("Authorization = %q", auth)
	}
	if title != "study-helper" {
		t.Errorf("X-Title = %q", title)
	}
	if got.Model != "openai/gpt-3.5-turbo" || got.MaxTokens != 1000 || got.Temperature != 0.3 {
		t.Errorf("unexpected request parameters: %+v", got)
	}
	if got.TopP == nil || *got.TopP != 0.9 {
		t.Errorf("top_p = %v", got.TopP)
	}
	if len(got.Messages) != 2 || got.Messages[1].Content != "capital?" {
		t.Errorf("messages = %+v", got.Messages)
	}
}

func TestChatConnector_OmitsZeroTopP(t *testing.T) {
	var raw map[string]any
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewDecoder(r.Body).Decode(&raw)
		_, _ = w.Write([]byte(`{"choices":[{"message":{"content":"[]"}}]}`))
	}))
	defer srv.Close()

	cfg := testChatConfig(srv.URL)
	cfg.TopP = 0
	c := NewChatConnector(cfg, zap.NewNop())
	if _, err := c.Complete(context.Background(), []entity.ChatMessage{{Role: entity.RoleUser, Content: "q"}}); err != nil {
		t.Fatalf("Complete: %v", err)
	}
	if _, ok := raw["top_p"]; ok {
		t.Error("top_p should be omitted")
	}
}

func TestChatConnector_Failures(t *testing.T) {
	tests := []struct {
		name   string
		status int
		body   string
	}{
		{"http error", http.StatusUnauthorized, `{"error":{"message":"bad key"}}`},
		{"no choices", http.StatusOK, `{"choices":[]}`},
		{"error body", http.StatusOK, `{"error":{"message":"quota"}}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				_, _ = w.Write([]byte(tt.body))
			}))
			defer srv.Close()

			c := NewChatConnector(testChatConfig(srv.URL), zap.NewNop())
			_, err := c.Complete(context.Background(), []entity.ChatMessage{{Role: entity.RoleUser, Content: "q"}})
			if !errors.Is(err, entity.ErrExternalService) {
				t.Fatalf("expected ErrExternalService, got %v", err)
			}
		})
	}
}

func TestChatConnector_NoRetryByDefault(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	c := NewChatConnector(testChatConfig(srv.URL), zap.NewNop())
	if _, err := c.Complete(context.Background(), []entity.ChatMessage{{Role: entity.RoleUser, Content: "q"}}); err == nil {
		t.Fatal("expected error")
	}
	if calls.Load() != 1 {
		t.Errorf("calls = %d, want 1", calls.Load())
	}
}

func TestChatConnector_RetriesTransientErrors(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) < 3 {
			w.WriteHeader(http.StatusTooManyRequests)
			return
		}
		_, _ = w.Write([]byte(`{"choices":[{"message":{"content":"ok"}}]}`))
	}))
	defer srv.Close()

	cfg := testChatConfig(srv.URL)
	cfg.Retry = pkgRetry.RetryConfig{Attempts: 3, Delay: time.Millisecond, MaxDelay: 5 * time.Millisecond}
	c := NewChatConnector(cfg, zap.NewNop())

	answer, err := c.Complete(context.Background(), []entity.ChatMessage{{Role: entity.RoleUser, Content: "q"}})
	if err != nil {
		t.Fatalf("Complete: %v", err)
	}
	if answer != "ok" || calls.Load() != 3 {
		t.Errorf("answer = %q after %d calls", answer, calls.Load())
	}
}

func TestChatConnector_DoesNotRetryClientErrors(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusBadRequest)
	}))
	defer srv.Close()

	cfg := testChatConfig(srv.URL)
	cfg.Retry = pkgRetry.RetryConfig{Attempts: 3, Delay: time.Millisecond, MaxDelay: 5 * time.Millisecond}
	c := NewChatConnector(cfg, zap.NewNop())

	if _, err := c.Complete(context.Background(), []entity.ChatMessage{{Role: entity.RoleUser, Content: "q"}}); err == nil {
		t.Fatal("expected error")
	}
	if calls.Load() != 1 {
		t.Errorf("calls = %d, want 1", calls.Load())
	}
}

func TestSummaryConnector_Summarize(t *testing.T) {
	var got entity.GeminiGenerateRequest
	var key, path string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		path = r.URL.Path
		key = r.Header.Get("x-goog-api-key")
		_ = json.NewDecoder(r.Body).Decode(&got)
		_, _ = w.Write([]byte(`{"candidates":[{"content":{"parts":[{"text":"- one\n"},{"text":"- two"}]}}]}`))
	}))
	defer srv.Close()

	c := NewSummaryConnector(config.SummaryLLMConfig{
		HTTPClientConfig: testHTTPConfig(srv.URL, "gkey"),
		Model:            "gemini-2.5-flash",
		Temperature:      0.3,
	}, zap.NewNop())

	summary, err := c.Summarize(context.Background(), "Summarize this")
	if err != nil {
		t.Fatalf("Summarize: %v", err)
	}
	if summary != "- one\n- two" {
		t.Errorf("summary = %q", summary)
	}
	if path != "/models/gemini-2.5-flash:generateContent" {
		t.Errorf("path = %q", path)
	}
	if key != "gkey" {
		t.Errorf("x-goog-api-key = %q", key)
	}
	if len(got.Contents) != 1 || got.Contents[0].Parts[0].Text != "Summarize this" {
		t.Errorf("contents = %+v", got.Contents)
	}
}

func TestSummaryConnector_NoCandidates(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"candidates":[]}`))
	}))
	defer srv.Close()

	c := NewSummaryConnector(config.SummaryLLMConfig{
		HTTPClientConfig: testHTTPConfig(srv.URL, "k"),
		Model:            "gemini-2.5-flash",
	}, zap.NewNop())

	if _, err := c.Summarize(context.Background(), "x"); !errors.Is(err, entity.ErrExternalService) {
		t.Fatalf("expected ErrExternalService, got %v", err)
	}
}

func TestMockConnector_QuizIsValidJSON(t *testing.T) {
	m := NewMockConnector()
	raw, err := m.Complete(context.Background(), []entity.ChatMessage{
		{Role: entity.RoleUser, Content: "Generate 10 multiple-choice questions (MCQs) based on the following document."},
	})
	if err != nil {
		t.Fatalf("Complete: %v", err)
	}

	var quiz entity.Quiz
	if err := json.Unmarshal([]byte(raw), &quiz); err != nil {
		t.Fatalf("mock quiz is not JSON: %v", err)
	}
	if len(quiz) != entity.QuizQuestionCount {
		t.Errorf("len = %d", len(quiz))
	}
}
