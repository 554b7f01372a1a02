package cache

import (
	"context"
	"testing"
	"time"

	"github.com/nutrilog/backend/internal/domain"
)

func TestMemoryCache_SetAndGet(t *testing.T) {
	cache := NewMemoryCache(0)
	ctx := context.Background()

	tests := []struct {
		name    string
		key     string
		value   interface{}
		ttl     time.Duration
		wantErr bool
	}{
		{
			name:    "store and retrieve string",
			key:     "test-key-1",
			value:   "test-value",
			ttl:     1 * time.Minute,
			wantErr: false,
		},
		{
			name: "store and retrieve struct",
			key:  "test-key-2",
			value: &domain.EstimateResult{
				Totals: domain.Macros{Calories: 420, ProteinG: 30},
			},
			ttl:     1 * time.Minute,
			wantErr: false,
		},
		{
			name:    "store with short TTL",
			key:     "test-key-3",
			value:   "expires-soon",
			ttl:     1 * time.Millisecond,
			wantErr: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := cache.Set(ctx, tt.key, tt.value, tt.ttl)
			if (err != nil) != tt.wantErr {
				t.Errorf("Set() error = %v, wantErr %v", err, tt.wantErr)
				return
			}

			// For short TTL test, wait for expiration
			if tt.ttl < 10*time.Millisecond {
				time.Sleep(10 * time.Millisecond)
				_, err := cache.Get(ctx, tt.key)
				if err != domain.ErrCacheMiss {
					t.Errorf("Expected cache miss after expiration, got error = %v", err)
				}
				return
			}

			got, err := cache.Get(ctx, tt.key)
			if err != nil {
				t.Errorf("Get() error = %v", err)
				return
			}

			if result, ok := tt.value.(*domain.EstimateResult); ok {
				stored, ok := got.(*domain.EstimateResult)
				if !ok {
					t.Fatalf("Get() returned %T, want *domain.EstimateResult", got)
				}
				if stored.Totals != result.Totals {
					t.Errorf("Get() totals = %+v, want %+v", stored.Totals, result.Totals)
				}
				return
			}

			if got != tt.value {
				t.Errorf("Get() = %v, want %v", got, tt.value)
			}
		})
	}
}

func TestMemoryCache_GetMissing(t *testing.T) {
	cache := NewMemoryCache(0)

	_, err := cache.Get(context.Background(), "no-such-key")
	if err != domain.ErrCacheMiss {
		t.Errorf("Get() error = %v, want ErrCacheMiss", err)
	}
}

func TestMemoryCache_Delete(t *testing.T) {
	cache := NewMemoryCache(0)
	ctx := context.Background()

	if err := cache.Set(ctx, "key", "value", time.Minute); err != nil {
		t.Fatalf("Set() error = %v", err)
	}
	if err := cache.Delete(ctx, "key"); err != nil {
		t.Fatalf("Delete() error = %v", err)
	}
	if _, err := cache.Get(ctx, "key"); err != domain.ErrCacheMiss {
		t.Errorf("Get() after delete error = %v, want ErrCacheMiss", err)
	}
}

func TestMemoryCache_BoundedEviction(t *testing.T) {
	cache := NewMemoryCache(2)
	ctx := context.Background()

	if err := cache.Set(ctx, "first", 1, time.Minute); err != nil {
		t.Fatalf("Set() error = %v", err)
	}
	time.Sleep(2 * time.Millisecond)
	if err := cache.Set(ctx, "second", 2, time.Minute); err != nil {
		t.Fatalf("Set() error = %v", err)
	}
	time.Sleep(2 * time.Millisecond)
	if err := cache.Set(ctx, "third", 3, time.Minute); err != nil {
		t.Fatalf("Set() error = %v", err)
	}

	if cache.Size() != 2 {
		t.Fatalf("Size() = %d, want 2", cache.Size())
	}
	if _, err := cache.Get(ctx, "first"); err != domain.ErrCacheMiss {
		t.Errorf("oldest entry should be evicted, got error = %v", err)
	}
	if _, err := cache.Get(ctx, "third"); err != nil {
		t.Errorf("newest entry missing, error = %v", err)
	}
}

func TestMemoryCache_EvictionPrefersExpired(t *testing.T) {
	cache := NewMemoryCache(2)
	ctx := context.Background()

	if err := cache.Set(ctx, "older", 1, time.Minute); err != nil {
		t.Fatalf("Set() error = %v", err)
	}
	time.Sleep(2 * time.Millisecond)
	if err := cache.Set(ctx, "expired", 2, -time.Second); err != nil {
		t.Fatalf("Set() error = %v", err)
	}
	if err := cache.Set(ctx, "new", 3, time.Minute); err != nil {
		t.Fatalf("Set() error = %v", err)
	}

	if _, err := cache.Get(ctx, "expired"); err != domain.ErrCacheMiss {
		t.Errorf("expired entry should be evicted first, got error = %v", err)
	}
	if _, err := cache.Get(ctx, "older"); err != nil {
		t.Errorf("live entry evicted despite expired candidate, error = %v", err)
	}
	if _, err := cache.Get(ctx, "new"); err != nil {
		t.Errorf("new entry missing, error = %v", err)
	}
}

func TestMemoryCache_RewriteExistingKeyDoesNotEvict(t *testing.T) {
	cache := NewMemoryCache(2)
	ctx := context.Background()

	_ = cache.Set(ctx, "a", 1, time.Minute)
	_ = cache.Set(ctx, "b", 2, time.Minute)
	_ = cache.Set(ctx, "a", 3, time.Minute)

	if cache.Size() != 2 {
		t.Fatalf("Size() = %d, want 2", cache.Size())
	}
	got, err := cache.Get(ctx, "a")
	if err != nil || got != 3 {
		t.Errorf("Get(a) = (%v, %v), want (3, nil)", got, err)
	}
	if _, err := cache.Get(ctx, "b"); err != nil {
		t.Errorf("Get(b) error = %v", err)
	}
}

func TestMemoryCache_Clear(t *testing.T) {
	cache := NewMemoryCache(0)
	ctx := context.Background()

	_ = cache.Set(ctx, "a", 1, time.Minute)
	_ = cache.Set(ctx, "b", 2, time.Minute)
	cache.Clear()

	if cache.Size() != 0 {
		t.Errorf("Size() = %d, want 0", cache.Size())
	}
}
