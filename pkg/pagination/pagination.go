package pagination

import (
	"encoding/base64"
	"fmt"
	"strings"
	"time"
)

const (
	// DefaultLimit is the standard page size when a limit is not provided.
	DefaultLimit = 25
	// MaxLimit caps how many rows any cursor query can request.
	MaxLimit = 100
)

// Params holds cursor pagination inputs from controllers or services.
type Params struct {
	Limit  int
	Cursor string
}

// Cursor marks the last row of a page ordered by (created_at DESC, key DESC).
type Cursor struct {
	CreatedAt time.Time
	Key       string
}

// Page is one slice of a keyset-paginated listing.
type Page[T any] struct {
	Items      []T    `json:"items"`
	NextCursor string `json:"next_cursor,omitempty"`
}

// NormalizeLimit enforces the configured default and maximum limits.
func NormalizeLimit(limit int) int {
	if limit <= 0 {
		return DefaultLimit
	}
	if limit > MaxLimit {
		return MaxLimit
	}
	return limit
}

// LimitWithBuffer returns the normalized limit plus one to detect a following page.
func LimitWithBuffer(limit int) int {
	return NormalizeLimit(limit) + 1
}

// Trim cuts rows fetched with LimitWithBuffer down to the page size and builds the next cursor.
func Trim[T any](rows []T, limit int, cursorOf func(T) Cursor) Page[T] {
	size := NormalizeLimit(limit)
	if len(rows) <= size {
		return Page[T]{Items: rows}
	}
	items := rows[:size]
	return Page[T]{Items: items, NextCursor: EncodeCursor(cursorOf(items[size-1]))}
}

// EncodeCursor builds an opaque URL-safe cursor string.
func EncodeCursor(cursor Cursor) string {
	payload := cursor.CreatedAt.UTC().Format(time.RFC3339Nano) + "|" + cursor.Key
	return base64.RawURLEncoding.EncodeToString([]byte(payload))
}

// ParseCursor decodes a cursor string; an empty value yields nil.
func ParseCursor(value string) (*Cursor, error) {
	if strings.TrimSpace(value) == "" {
		return nil, nil
	}

	decoded, err := base64.RawURLEncoding.DecodeString(value)
	if err != nil {
		return nil, fmt.Errorf("decode cursor: %w", err)
	}
	ts, key, ok := strings.Cut(string(decoded), "|")
	if !ok || key == "" {
		return nil, fmt.Errorf("invalid cursor format")
	}
	createdAt, err := time.Parse(time.RFC3339Nano, ts)
	if err != nil {
		return nil, fmt.Errorf("invalid cursor timestamp: %w", err)
	}
	return &Cursor{CreatedAt: createdAt, Key: key}, nil
}
