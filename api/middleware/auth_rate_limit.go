package middleware

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"io"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/delizzia/pos-backend/api/responses"
	pkgerrors "github.com/delizzia/pos-backend/pkg/errors"
	"github.com/delizzia/pos-backend/pkg/logger"
)

type windowLimiter interface {
	FixedWindowAllow(ctx context.Context, scope string, limit int64, window time.Duration) (bool, int64, error)
}

// LoginRateLimitPolicy caps attempts per client IP and per submitted email within a window.
type LoginRateLimitPolicy struct {
	Window     time.Duration
	IPLimit    int
	EmailLimit int
}

func (p LoginRateLimitPolicy) enabled() bool {
	return p.Window > 0 && (p.IPLimit > 0 || p.EmailLimit > 0)
}

// LoginRateLimit throttles credential endpoints. Disabled when the limiter is nil or the policy is empty.
func LoginRateLimit(policy LoginRateLimitPolicy, limiter windowLimiter, logg *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		if !policy.enabled() || limiter == nil {
			return next
		}

		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()

			if policy.IPLimit > 0 {
				if ip := clientIP(r); ip != "" {
					ok, count, err := limiter.FixedWindowAllow(ctx, "login:ip:"+ip, int64(policy.IPLimit), policy.Window)
					if err != nil {
						responses.WriteError(ctx, logg, w, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "rate limiting"))
						return
					}
					if !ok {
						rejectRateLimited(ctx, logg, w, map[string]any{"scope": "ip", "ip": ip, "attempts": count})
						return
					}
				}
			}

			if policy.EmailLimit > 0 {
				body, err := io.ReadAll(r.Body)
				if err != nil {
					responses.WriteError(ctx, logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "read request"))
					return
				}
				r.Body = io.NopCloser(bytes.NewReader(body))

				if email := extractEmail(body); email != "" {
					hash := hashValue(email)
					ok, count, err := limiter.FixedWindowAllow(ctx, "login:email:"+hash, int64(policy.EmailLimit), policy.Window)
					if err != nil {
						responses.WriteError(ctx, logg, w, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "rate limiting"))
						return
					}
					if !ok {
						rejectRateLimited(ctx, logg, w, map[string]any{"scope": "email", "email_hash": hash, "attempts": count})
						return
					}
				}
			}

			next.ServeHTTP(w, r)
		})
	}
}

func rejectRateLimited(ctx context.Context, logg *logger.Logger, w http.ResponseWriter, fields map[string]any) {
	if logg != nil {
		logg.Warn(logg.WithFields(ctx, fields), "auth.rate_limit.blocked")
	}
	responses.WriteError(ctx, nil, w, pkgerrors.New(pkgerrors.CodeRateLimit, "too many login attempts"))
}

func clientIP(r *http.Request) string {
	if header := r.Header.Get("X-Forwarded-For"); header != "" {
		for _, part := range strings.Split(header, ",") {
			if ip := strings.TrimSpace(part); ip != "" {
				return ip
			}
		}
	}
	if ip := strings.TrimSpace(r.Header.Get("X-Real-IP")); ip != "" {
		return ip
	}
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err == nil && host != "" {
		return host
	}
	return r.RemoteAddr
}

func extractEmail(payload []byte) string {
	var body struct {
		Email string `json:"email"`
	}
	if err := json.Unmarshal(payload, &body); err != nil {
		return ""
	}
	return strings.ToLower(strings.TrimSpace(body.Email))
}

func hashValue(value string) string {
	sum := sha256.Sum256([]byte(value))
	return hex.EncodeToString(sum[:])
}
