package source

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"
)

func TestGetBodySuccess(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("hello"))
	}))
	defer server.Close()

	client := NewClient()
	body, err := client.GetBody(context.Background(), server.URL, nil)
	if err != nil {
		t.Fatalf("GetBody failed: %v", err)
	}
	if string(body) != "hello" {
		t.Errorf("unexpected body: %q", body)
	}
}

func TestGetBodyNon2xxIsFetchError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer server.Close()

	client := NewClient()
	_, err := client.GetBody(context.Background(), server.URL, nil)
	if !errors.Is(err, ErrFetchFailed) {
		t.Errorf("expected ErrFetchFailed, got %v", err)
	}
	if !errors.Is(err, ErrUnexpectedStatus) {
		t.Errorf("expected ErrUnexpectedStatus, got %v", err)
	}
}

func TestNoRetriesByDefault(t *testing.T) {
	var calls int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer server.Close()

	client := NewClient()
	if _, err := client.GetBody(context.Background(), server.URL, nil); err == nil {
		t.Fatal("expected error for 500 response")
	}
	if got := atomic.LoadInt32(&calls); got != 1 {
		t.Errorf("expected exactly 1 request with retries disabled, got %d", got)
	}
}

func TestRetriesWhenConfigured(t *testing.T) {
	var calls int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if atomic.AddInt32(&calls, 1) < 3 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		w.Write([]byte("ok"))
	}))
	defer server.Close()

	cfg := DefaultRetryConfig()
	cfg.MaxRetries = 3
	client := NewClientWithConfig(cfg)
	client.SetDelayFunc(func(time.Duration) {}) // no sleeping in tests

	body, err := client.GetBody(context.Background(), server.URL, nil)
	if err != nil {
		t.Fatalf("expected success after retries: %v", err)
	}
	if string(body) != "ok" {
		t.Errorf("unexpected body: %q", body)
	}
	if got := atomic.LoadInt32(&calls); got != 3 {
		t.Errorf("expected 3 requests, got %d", got)
	}
}

func TestCalculateDelay(t *testing.T) {
	cfg := DefaultRetryConfig()
	cfg.MaxRetries = 5
	client := NewClientWithConfig(cfg)

	tests := []struct {
		attempt int
		want    time.Duration
	}{
		{1, 1 * time.Second},
		{2, 2 * time.Second},
		{3, 4 * time.Second},
		{4, 4 * time.Second}, // capped at MaxDelay
	}
	for _, tt := range tests {
		if got := client.calculateDelay(tt.attempt); got != tt.want {
			t.Errorf("attempt %d: expected %v, got %v", tt.attempt, tt.want, got)
		}
	}
}

func TestContextCancellation(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(200 * time.Millisecond)
		w.Write([]byte("too late"))
	}))
	defer server.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	client := NewClient()
	if _, err := client.GetBody(ctx, server.URL, nil); err == nil {
		t.Error("expected error from cancelled context")
	}
}

func TestHeaderEnvSubstitution(t *testing.T) {
	t.Setenv("TOOLWATCH_TEST_SECRET", "s3cret")

	var gotAuth, gotAgent string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		gotAgent = r.Header.Get("User-Agent")
		w.Write([]byte("ok"))
	}))
	defer server.Close()

	client := NewClient()
	_, err := client.GetBody(context.Background(), server.URL, map[string]string{
		"Authorization": "Bearer ${TOOLWATCH_TEST_SECRET}",
	})
	if err != nil {
		t.Fatalf("GetBody failed: %v", err)
	}
	if gotAuth != "Bearer s3cret" {
		t.Errorf("expected substituted header, got %q", gotAuth)
	}
	if gotAgent != defaultUserAgent {
		t.Errorf("expected default user agent, got %q", gotAgent)
	}
}

func TestSubstituteEnvVars(t *testing.T) {
	t.Setenv("TOOLWATCH_TEST_VAR", "value")

	tests := []struct {
		input string
		want  string
	}{
		{"${TOOLWATCH_TEST_VAR}", "value"},
		{"prefix-${TOOLWATCH_TEST_VAR}-suffix", "prefix-value-suffix"},
		{"${TOOLWATCH_UNSET_VAR}", ""},
		{"no variables here", "no variables here"},
	}
	for _, tt := range tests {
		if got := SubstituteEnvVars(tt.input); got != tt.want {
			t.Errorf("SubstituteEnvVars(%q): expected %q, got %q", tt.input, tt.want, got)
		}
	}
}
