package ratetable

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/delizzia/pos-backend/pkg/enums"
	"github.com/redis/go-redis/v9"
)

func TestStoreSwapIsAtomic(t *testing.T) {
	store := NewStore(Default())
	raised, err := FromStrings(
		map[string]string{"uber_eats": "0.35", "pedidos_ya": "0.35", "bis": "0.35", "phone": "0.35", "whatsapp": "0.35"},
		map[string]string{"small": "0.15", "medium": "0.20", "large": "0.25"},
	)
	if err != nil {
		t.Fatalf("FromStrings: %v", err)
	}

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 200; j++ {
				table := store.Current()
				uber, _ := table.RateFor(enums.ChannelUberEats)
				phone, _ := table.RateFor(enums.ChannelPhone)
				// phone is 0 in the default table and 0.35 in the raised one
				if uber.Equal(dec("0.35")) != phone.Equal(dec("0.35")) {
					t.Errorf("observed a mixed table: uber=%s phone=%s", uber, phone)
					return
				}
			}
		}()
	}
	prev := store.Swap(raised)
	wg.Wait()

	if rate, _ := prev.RateFor(enums.ChannelUberEats); !rate.Equal(dec("0.30")) {
		t.Fatalf("Swap should return the previous table")
	}
	if rate, _ := store.Current().RateFor(enums.ChannelUberEats); !rate.Equal(dec("0.35")) {
		t.Fatalf("expected swapped table to be current")
	}
}

func TestParseYAMLAndMarshal(t *testing.T) {
	doc := []byte(`
commission_rates:
  uber_eats: "0.30"
  phone: "0"
packaging:
  small: "0.15"
  medium: "0.20"
  large: "0.30"
`)
	table, err := ParseYAML(doc)
	if err != nil {
		t.Fatalf("ParseYAML: %v", err)
	}
	if cost, _ := table.PackagingCost(enums.PackagingTierLarge); !cost.Equal(dec("0.30")) {
		t.Fatalf("expected large 0.30, got %s", cost)
	}

	out, err := MarshalYAML(table)
	if err != nil {
		t.Fatalf("MarshalYAML: %v", err)
	}
	again, err := ParseYAML(out)
	if err != nil {
		t.Fatalf("re-parse: %v", err)
	}
	if rate, _ := again.RateFor(enums.ChannelUberEats); !rate.Equal(dec("0.30")) {
		t.Fatalf("expected round-tripped rate 0.30, got %s", rate)
	}

	if _, err := ParseYAML([]byte("commission: {}\n")); err == nil {
		t.Fatalf("expected unknown field error")
	}
}

func TestFileSource(t *testing.T) {
	if _, ok, err := (FileSource{}).Load(context.Background()); ok || err != nil {
		t.Fatalf("empty path should be a disabled source")
	}

	path := filepath.Join(t.TempDir(), "rates.yaml")
	raw, err := MarshalYAML(Default())
	if err != nil {
		t.Fatalf("MarshalYAML: %v", err)
	}
	if err := os.WriteFile(path, raw, 0o600); err != nil {
		t.Fatalf("write: %v", err)
	}
	table, ok, err := FileSource{Path: path}.Load(context.Background())
	if err != nil || !ok || !table.HasChannel(enums.ChannelBis) {
		t.Fatalf("expected table from file, ok=%v err=%v", ok, err)
	}
}

type fakeKV struct {
	data map[string]string
	err  error
}

func (f *fakeKV) Get(_ context.Context, key string) (string, error) {
	if f.err != nil {
		return "", f.err
	}
	v, ok := f.data[key]
	if !ok {
		return "", redis.Nil
	}
	return v, nil
}

func (f *fakeKV) Set(_ context.Context, key string, value any, _ time.Duration) error {
	f.data[key] = value.(string)
	return nil
}

func TestRedisSourcePublishAndLoad(t *testing.T) {
	kv := &fakeKV{data: map[string]string{}}
	src := &RedisSource{store: kv, key: "dz:rates:current"}
	ctx := context.Background()

	if _, ok, err := src.Load(ctx); ok || err != nil {
		t.Fatalf("expected nothing published yet, ok=%v err=%v", ok, err)
	}
	if err := src.Publish(ctx, Default()); err != nil {
		t.Fatalf("Publish: %v", err)
	}
	table, ok, err := src.Load(ctx)
	if err != nil || !ok {
		t.Fatalf("expected published table, ok=%v err=%v", ok, err)
	}
	if rate, _ := table.RateFor(enums.ChannelPedidosYa); !rate.Equal(dec("0.28")) {
		t.Fatalf("expected pedidos_ya 0.28, got %s", rate)
	}

	kv.err = errors.New("connection refused")
	if _, _, err := src.Load(ctx); err == nil {
		t.Fatalf("expected redis error to surface")
	}
}
