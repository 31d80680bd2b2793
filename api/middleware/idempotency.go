package middleware

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/base64"
	"encoding/json"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/delizzia/pos-backend/api/responses"
	pkgerrors "github.com/delizzia/pos-backend/pkg/errors"
	"github.com/delizzia/pos-backend/pkg/logger"
	pkgredis "github.com/delizzia/pos-backend/pkg/redis"
)

const (
	IdempotencyHeader     = "Idempotency-Key"
	DefaultIdempotencyTTL = 24 * time.Hour
)

type idempotencyStore interface {
	Get(ctx context.Context, key string) (string, error)
	SetNX(ctx context.Context, key string, value any, ttl time.Duration) (bool, error)
	IdempotencyKey(scope, key string) string
}

type idempotencyRecord struct {
	Status      int    `json:"status"`
	Body        string `json:"body"`
	ContentType string `json:"content_type,omitempty"`
	RequestHash string `json:"request_hash"`
}

// Idempotency replays the stored response when a request repeats its Idempotency-Key.
// Requests without the header pass through; only successful responses are stored.
func Idempotency(store idempotencyStore, ttl time.Duration, logg *logger.Logger) func(http.Handler) http.Handler {
	if ttl <= 0 {
		ttl = DefaultIdempotencyTTL
	}
	return func(next http.Handler) http.Handler {
		if store == nil {
			return next
		}
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			idemKey := strings.TrimSpace(r.Header.Get(IdempotencyHeader))
			if idemKey == "" {
				next.ServeHTTP(w, r)
				return
			}
			ctx := r.Context()

			body, err := io.ReadAll(r.Body)
			if err != nil {
				responses.WriteError(ctx, logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "read request"))
				return
			}
			r.Body = io.NopCloser(bytes.NewReader(body))

			requestHash := hashBody(body)
			key := store.IdempotencyKey(UserIDFromContext(ctx)+"|"+r.Method+"|"+r.URL.Path, idemKey)

			stored, err := store.Get(ctx, key)
			if err != nil && !pkgredis.IsNil(err) {
				responses.WriteError(ctx, logg, w, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "check idempotency"))
				return
			}
			if stored != "" {
				var record idempotencyRecord
				if err := json.Unmarshal([]byte(stored), &record); err != nil {
					responses.WriteError(ctx, logg, w, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "decode idempotency record"))
					return
				}
				if record.RequestHash != requestHash {
					responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeConflict, "idempotency key reused with a different request body"))
					return
				}
				writeStoredResponse(w, record)
				return
			}

			rec := &responseCapture{ResponseWriter: w}
			next.ServeHTTP(rec, r)

			status := rec.status
			if status == 0 {
				status = http.StatusOK
			}
			if status >= http.StatusBadRequest {
				return
			}
			payload, err := json.Marshal(idempotencyRecord{
				Status:      status,
				Body:        base64.StdEncoding.EncodeToString(rec.body.Bytes()),
				ContentType: rec.Header().Get("Content-Type"),
				RequestHash: requestHash,
			})
			if err != nil {
				logIdempotencyError(ctx, logg, "marshal idempotency record", err)
				return
			}
			if _, err := store.SetNX(ctx, key, string(payload), ttl); err != nil {
				logIdempotencyError(ctx, logg, "persist idempotency record", err)
			}
		})
	}
}

func writeStoredResponse(w http.ResponseWriter, record idempotencyRecord) {
	if record.ContentType != "" {
		w.Header().Set("Content-Type", record.ContentType)
	}
	w.Header().Set("Idempotent-Replayed", "true")
	w.WriteHeader(record.Status)
	if decoded, err := base64.StdEncoding.DecodeString(record.Body); err == nil {
		_, _ = w.Write(decoded)
	}
}

func hashBody(payload []byte) string {
	sum := sha256.Sum256(payload)
	return base64.StdEncoding.EncodeToString(sum[:])
}

type responseCapture struct {
	http.ResponseWriter
	body   bytes.Buffer
	status int
}

func (r *responseCapture) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}

func (r *responseCapture) Write(b []byte) (int, error) {
	if r.status == 0 {
		r.status = http.StatusOK
	}
	r.body.Write(b)
	return r.ResponseWriter.Write(b)
}

func logIdempotencyError(ctx context.Context, logg *logger.Logger, msg string, err error) {
	if logg == nil || err == nil {
		return
	}
	logg.Error(ctx, msg, err)
}
