package middleware

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
)

type fakeIdemStore struct {
	data map[string]string
}

func newFakeIdemStore() *fakeIdemStore {
	return &fakeIdemStore{data: make(map[string]string)}
}

func (f *fakeIdemStore) Get(_ context.Context, key string) (string, error) {
	if v, ok := f.data[key]; ok {
		return v, nil
	}
	return "", redis.Nil
}

func (f *fakeIdemStore) SetNX(_ context.Context, key string, value any, _ time.Duration) (bool, error) {
	if _, ok := f.data[key]; ok {
		return false, nil
	}
	str, _ := value.(string)
	f.data[key] = str
	return true, nil
}

func (f *fakeIdemStore) IdempotencyKey(scope, id string) string {
	return fmt.Sprintf("fake:%s:%s", scope, id)
}

func orderPost(body, key string) *http.Request {
	req := httptest.NewRequest(http.MethodPost, "/api/v1/orders", strings.NewReader(body))
	if key != "" {
		req.Header.Set(IdempotencyHeader, key)
	}
	return req
}

func TestIdempotencyPassesThroughWithoutHeader(t *testing.T) {
	store := newFakeIdemStore()
	calls := 0
	handler := Idempotency(store, time.Hour, nil)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		w.WriteHeader(http.StatusCreated)
	}))

	for i := 0; i < 2; i++ {
		handler.ServeHTTP(httptest.NewRecorder(), orderPost(`{"channel":"phone"}`, ""))
	}
	if calls != 2 {
		t.Fatalf("expected handler to run twice, ran %d", calls)
	}
	if len(store.data) != 0 {
		t.Fatalf("nothing should be stored without a key")
	}
}

func TestIdempotencyReplaysStoredResponse(t *testing.T) {
	store := newFakeIdemStore()
	calls := 0
	handler := Idempotency(store, time.Hour, nil)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusCreated)
		_, _ = w.Write([]byte(`{"data":{"order_number":"ORD202403040001"}}`))
	}))

	first := httptest.NewRecorder()
	handler.ServeHTTP(first, orderPost(`{"channel":"phone"}`, "tablet-1"))
	if first.Code != http.StatusCreated {
		t.Fatalf("expected 201 got %d", first.Code)
	}

	replay := httptest.NewRecorder()
	handler.ServeHTTP(replay, orderPost(`{"channel":"phone"}`, "tablet-1"))
	if replay.Code != http.StatusCreated {
		t.Fatalf("expected replay 201 got %d", replay.Code)
	}
	if replay.Header().Get("Content-Type") != "application/json" {
		t.Fatalf("expected content-type preserved")
	}
	if replay.Header().Get("Idempotent-Replayed") != "true" {
		t.Fatalf("expected replay marker header")
	}
	if !strings.Contains(replay.Body.String(), "ORD202403040001") {
		t.Fatalf("expected stored body, got %s", replay.Body.String())
	}
	if calls != 1 {
		t.Fatalf("handler executed %d times, expected 1", calls)
	}
}

func TestIdempotencyRejectsChangedBody(t *testing.T) {
	store := newFakeIdemStore()
	handler := Idempotency(store, time.Hour, nil)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusCreated)
	}))

	handler.ServeHTTP(httptest.NewRecorder(), orderPost(`{"channel":"phone"}`, "k"))
	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, orderPost(`{"channel":"bis"}`, "k"))
	if resp.Code != http.StatusConflict {
		t.Fatalf("expected 409 got %d", resp.Code)
	}
}

func TestIdempotencyDoesNotStoreFailures(t *testing.T) {
	store := newFakeIdemStore()
	calls := 0
	handler := Idempotency(store, time.Hour, nil)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		w.WriteHeader(http.StatusBadRequest)
	}))

	handler.ServeHTTP(httptest.NewRecorder(), orderPost(`{}`, "k"))
	handler.ServeHTTP(httptest.NewRecorder(), orderPost(`{}`, "k"))
	if calls != 2 {
		t.Fatalf("failed responses must not be replayed, handler ran %d times", calls)
	}
}
