package ratetable

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	redisclient "github.com/delizzia/pos-backend/pkg/redis"
)

// Source yields a rate table from somewhere outside the process.
// ok is false when the source holds nothing to apply.
type Source interface {
	Name() string
	Load(ctx context.Context) (table Table, ok bool, err error)
}

// FileSource reads a YAML file on every load. An empty path disables it.
type FileSource struct {
	Path string
}

func (f FileSource) Name() string { return "file" }

func (f FileSource) Load(_ context.Context) (Table, bool, error) {
	if strings.TrimSpace(f.Path) == "" {
		return Table{}, false, nil
	}
	t, err := LoadFile(f.Path)
	if err != nil {
		return Table{}, false, err
	}
	return t, true, nil
}

type kvStore interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key string, value any, ttl time.Duration) error
}

// RedisSource shares the owner-edited table across api instances.
type RedisSource struct {
	store kvStore
	key   string
}

func NewRedisSource(client *redisclient.Client) *RedisSource {
	return &RedisSource{store: client, key: client.RateTableKey()}
}

func (r *RedisSource) Name() string { return "redis" }

func (r *RedisSource) Load(ctx context.Context) (Table, bool, error) {
	raw, err := r.store.Get(ctx, r.key)
	if err != nil {
		if redisclient.IsNil(err) {
			return Table{}, false, nil
		}
		return Table{}, false, fmt.Errorf("read published rates: %w", err)
	}
	var snap Snapshot
	if err := json.Unmarshal([]byte(raw), &snap); err != nil {
		return Table{}, false, fmt.Errorf("decode published rates: %w", err)
	}
	t, err := FromSnapshot(snap)
	if err != nil {
		return Table{}, false, err
	}
	return t, true, nil
}

// Publish stores t so every instance picks it up on its next reload.
func (r *RedisSource) Publish(ctx context.Context, t Table) error {
	payload, err := json.Marshal(t.Snapshot())
	if err != nil {
		return fmt.Errorf("encode rates: %w", err)
	}
	return r.store.Set(ctx, r.key, string(payload), 0)
}
