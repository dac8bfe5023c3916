package tiered_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/Strob0t/ganttboard/internal/adapter/ristretto"
	"github.com/Strob0t/ganttboard/internal/adapter/tiered"
	"github.com/Strob0t/ganttboard/internal/port/cache/cachetest"
)

// memCache is a simple in-memory cache for testing.
type memCache struct {
	mu   sync.Mutex
	data map[string][]byte
	err  error
}

func newMemCache() *memCache {
	return &memCache{data: make(map[string][]byte)}
}

func (m *memCache) Get(_ context.Context, key string) (data []byte, ok bool, err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return nil, false, m.err
	}
	v, ok := m.data[key]
	return v, ok, nil
}

func (m *memCache) Set(_ context.Context, key string, value []byte, _ time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return m.err
	}
	m.data[key] = value
	return nil
}

func (m *memCache) Delete(_ context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return m.err
	}
	delete(m.data, key)
	return nil
}

func (m *memCache) has(key string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, ok := m.data[key]
	return ok
}

func TestTiered_Compliance(t *testing.T) {
	l1, err := ristretto.New(1 << 20)
	if err != nil {
		t.Fatal(err)
	}
	defer l1.Close()

	cachetest.RunComplianceTests(t, tiered.New(l1, newMemCache(), time.Minute))
}

func TestTiered_L1Hit(t *testing.T) {
	l1 := newMemCache()
	l2 := newMemCache()
	c := tiered.New(l1, l2, 5*time.Minute)

	l1.data["view:a"] = []byte("val1")

	val, found, err := c.Get(context.Background(), "view:a")
	if err != nil {
		t.Fatal(err)
	}
	if !found || string(val) != "val1" {
		t.Fatalf("expected L1 hit val1, got %q found=%v", val, found)
	}
}

func TestTiered_L2HitWithBackfill(t *testing.T) {
	l1 := newMemCache()
	l2 := newMemCache()
	c := tiered.New(l1, l2, 5*time.Minute)

	l2.data["view:b"] = []byte("val2")

	val, found, err := c.Get(context.Background(), "view:b")
	if err != nil {
		t.Fatal(err)
	}
	if !found || string(val) != "val2" {
		t.Fatalf("expected L2 hit val2, got %q found=%v", val, found)
	}
	if !l1.has("view:b") {
		t.Fatal("expected L1 backfill")
	}
}

func TestTiered_SetAndDeleteBoth(t *testing.T) {
	l1 := newMemCache()
	l2 := newMemCache()
	c := tiered.New(l1, l2, 5*time.Minute)
	ctx := context.Background()

	if err := c.Set(ctx, "view:c", []byte("val3"), time.Minute); err != nil {
		t.Fatal(err)
	}
	if !l1.has("view:c") || !l2.has("view:c") {
		t.Fatal("expected key in both levels")
	}

	if err := c.Delete(ctx, "view:c"); err != nil {
		t.Fatal(err)
	}
	if l1.has("view:c") || l2.has("view:c") {
		t.Fatal("expected key deleted from both levels")
	}
}

func TestTiered_L2FailureDegradesToL1(t *testing.T) {
	l1 := newMemCache()
	l2 := newMemCache()
	l2.err = errors.New("nats: timeout")
	c := tiered.New(l1, l2, 5*time.Minute)
	ctx := context.Background()

	if err := c.Set(ctx, "view:d", []byte("val4"), time.Minute); err != nil {
		t.Fatalf("Set should tolerate L2 failure, got %v", err)
	}
	if _, found, err := c.Get(ctx, "view:missing"); err != nil || found {
		t.Fatalf("expected silent miss, found=%v err=%v", found, err)
	}
	if val, found, err := c.Get(ctx, "view:d"); err != nil || !found || string(val) != "val4" {
		t.Fatalf("expected L1 hit, got %q found=%v err=%v", val, found, err)
	}
	if err := c.Delete(ctx, "view:d"); err != nil {
		t.Fatalf("Delete should tolerate L2 failure, got %v", err)
	}
}
