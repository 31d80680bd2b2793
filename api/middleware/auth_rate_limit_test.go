package middleware

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	pkgerrors "github.com/delizzia/pos-backend/pkg/errors"
)

type fakeLimiter struct {
	mu     sync.Mutex
	counts map[string]int64
}

func newFakeLimiter() *fakeLimiter {
	return &fakeLimiter{counts: map[string]int64{}}
}

func (f *fakeLimiter) FixedWindowAllow(_ context.Context, scope string, limit int64, _ time.Duration) (bool, int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.counts[scope]++
	return f.counts[scope] <= limit, f.counts[scope], nil
}

func loginRequest(email, addr string) *http.Request {
	req := httptest.NewRequest(http.MethodPost, "/api/v1/auth/login", strings.NewReader(`{"email":"`+email+`","password":"secret"}`))
	req.RemoteAddr = addr
	return req
}

func TestLoginRateLimitPreservesBody(t *testing.T) {
	policy := LoginRateLimitPolicy{Window: time.Minute, IPLimit: 2, EmailLimit: 2}
	handler := LoginRateLimit(policy, newFakeLimiter(), nil)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, err := io.ReadAll(r.Body)
		if err != nil {
			t.Fatalf("read body: %v", err)
		}
		if !strings.Contains(string(body), `"email":"cashier@delizzia.ec"`) {
			t.Fatalf("unexpected body: %s", string(body))
		}
		w.WriteHeader(http.StatusOK)
	}))

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, loginRequest("cashier@delizzia.ec", "1.2.3.4:5678"))
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
}

func TestLoginRateLimitEmailLimitTriggers(t *testing.T) {
	policy := LoginRateLimitPolicy{Window: time.Minute, EmailLimit: 2}
	handler := LoginRateLimit(policy, newFakeLimiter(), nil)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	for i := 0; i < 3; i++ {
		rec := httptest.NewRecorder()
		// Case is normalized so the same mailbox hits one counter.
		email := "Blocked@delizzia.ec"
		if i%2 == 0 {
			email = "blocked@delizzia.ec"
		}
		handler.ServeHTTP(rec, loginRequest(email, "1.2.3.4:5678"))

		if i < 2 {
			if rec.Code != http.StatusOK {
				t.Fatalf("expected success before limit, got %d", rec.Code)
			}
			continue
		}
		if rec.Code != http.StatusTooManyRequests {
			t.Fatalf("expected 429, got %d", rec.Code)
		}
		var payload struct {
			Error struct {
				Code string `json:"code"`
			} `json:"error"`
		}
		if err := json.Unmarshal(rec.Body.Bytes(), &payload); err != nil {
			t.Fatalf("decode error: %v", err)
		}
		if payload.Error.Code != string(pkgerrors.CodeRateLimit) {
			t.Fatalf("unexpected code: %s", payload.Error.Code)
		}
	}
}

func TestLoginRateLimitIPLimitUsesForwardedFor(t *testing.T) {
	policy := LoginRateLimitPolicy{Window: time.Minute, IPLimit: 1}
	handler := LoginRateLimit(policy, newFakeLimiter(), nil)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	for i := 0; i < 2; i++ {
		req := loginRequest("a@delizzia.ec", "10.0.0.1:1234")
		req.Header.Set("X-Forwarded-For", "5.6.7.8, 10.0.0.1")
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)

		if i == 0 && rec.Code != http.StatusOK {
			t.Fatalf("expected success, got %d", rec.Code)
		}
		if i == 1 && rec.Code != http.StatusTooManyRequests {
			t.Fatalf("expected 429, got %d", rec.Code)
		}
	}
}

func TestLoginRateLimitDisabledWithoutLimiter(t *testing.T) {
	called := false
	handler := LoginRateLimit(LoginRateLimitPolicy{Window: time.Minute, IPLimit: 1}, nil, nil)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		called = true
	}))
	handler.ServeHTTP(httptest.NewRecorder(), loginRequest("a@delizzia.ec", "1.1.1.1:1"))
	if !called {
		t.Fatalf("expected pass-through")
	}
}
