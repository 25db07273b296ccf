package clients

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
)

type countingResolver struct {
	client Client
	err    error
	calls  int
}

func (f *countingResolver) FindByToken(ctx context.Context, token string) (Client, error) {
	f.calls++
	if f.err != nil {
		return Client{}, f.err
	}
	return f.client, nil
}

func TestCachedResolver_ServesSecondLookupFromCache(t *testing.T) {
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})

	inner := &countingResolver{client: Client{
		ID:            "c1",
		BusinessName:  "Acme",
		WebhookToken:  "tok-1",
		VirtualNumber: "+15550000001",
		CreatedAt:     time.Unix(1700000000, 0).UTC(),
	}}
	r := NewCachedResolver(inner, rdb, time.Minute)

	for i := 0; i < 2; i++ {
		c, err := r.FindByToken(context.Background(), "tok-1")
		if err != nil {
			t.Fatalf("lookup %d: %v", i+1, err)
		}
		if c.ID != "c1" || c.BusinessName != "Acme" {
			t.Fatalf("unexpected client: %+v", c)
		}
	}
	if inner.calls != 1 {
		t.Fatalf("expected 1 repo call, got %d", inner.calls)
	}
}

func TestCachedResolver_DoesNotCacheMisses(t *testing.T) {
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})

	inner := &countingResolver{err: ErrNotFound}
	r := NewCachedResolver(inner, rdb, time.Minute)

	for i := 0; i < 2; i++ {
		if _, err := r.FindByToken(context.Background(), "bad"); err != ErrNotFound {
			t.Fatalf("expected ErrNotFound, got %v", err)
		}
	}
	if inner.calls != 2 {
		t.Fatalf("misses must not be cached; repo calls = %d", inner.calls)
	}
}

func TestCachedResolver_DisabledWithoutTTL(t *testing.T) {
	inner := &countingResolver{client: Client{ID: "c1", WebhookToken: "tok"}}
	r := NewCachedResolver(inner, nil, 0)

	for i := 0; i < 2; i++ {
		if _, err := r.FindByToken(context.Background(), "tok"); err != nil {
			t.Fatalf("lookup: %v", err)
		}
	}
	if inner.calls != 2 {
		t.Fatalf("expected passthrough without cache, got %d calls", inner.calls)
	}
}
