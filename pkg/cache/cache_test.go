package cache

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"testing"
	"time"
)

func TestMemory_GetSet(t *testing.T) {
	ctx := context.Background()
	m := NewMemory(10)

	if _, ok := m.Get(ctx, "missing"); ok {
		t.Error("Get() on empty store = hit, want miss")
	}

	m.Set(ctx, "a", []byte("one"), time.Minute)
	got, ok := m.Get(ctx, "a")
	if !ok {
		t.Fatal("Get() after Set() = miss, want hit")
	}
	if !bytes.Equal(got, []byte("one")) {
		t.Errorf("Get() = %q, want %q", got, "one")
	}
}

func TestMemory_TTLExpiry(t *testing.T) {
	ctx := context.Background()
	m := NewMemory(10)

	now := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	m.SetClock(func() time.Time { return now })

	m.Set(ctx, "a", []byte("one"), 5*time.Minute)

	now = now.Add(4 * time.Minute)
	if _, ok := m.Get(ctx, "a"); !ok {
		t.Error("Get() before expiry = miss, want hit")
	}

	now = now.Add(2 * time.Minute)
	if _, ok := m.Get(ctx, "a"); ok {
		t.Error("Get() after expiry = hit, want miss")
	}
	if m.Len() != 0 {
		t.Errorf("Len() after lazy expiry = %d, want 0", m.Len())
	}
}

func TestMemory_EvictsOldestAtCapacity(t *testing.T) {
	ctx := context.Background()
	m := NewMemory(3)

	for i := 0; i < 4; i++ {
		m.Set(ctx, fmt.Sprintf("k%d", i), []byte("v"), time.Minute)
	}

	if m.Len() != 3 {
		t.Fatalf("Len() = %d, want 3", m.Len())
	}
	if _, ok := m.Get(ctx, "k0"); ok {
		t.Error("oldest key survived eviction")
	}
	for _, key := range []string{"k1", "k2", "k3"} {
		if _, ok := m.Get(ctx, key); !ok {
			t.Errorf("key %q evicted, want kept", key)
		}
	}
}

func TestMemory_OverwriteDoesNotEvict(t *testing.T) {
	ctx := context.Background()
	m := NewMemory(2)

	m.Set(ctx, "a", []byte("1"), time.Minute)
	m.Set(ctx, "b", []byte("2"), time.Minute)
	m.Set(ctx, "a", []byte("3"), time.Minute)

	if m.Len() != 2 {
		t.Errorf("Len() after overwrite = %d, want 2", m.Len())
	}
	got, ok := m.Get(ctx, "a")
	if !ok || !bytes.Equal(got, []byte("3")) {
		t.Errorf("Get(a) = %q, %v, want %q, true", got, ok, "3")
	}
	if _, ok := m.Get(ctx, "b"); !ok {
		t.Error("Get(b) = miss, want hit")
	}
}

type record struct {
	Title string `json:"title"`
	Count int    `json:"count"`
}

func TestGetOrCompute_MissThenHit(t *testing.T) {
	ctx := context.Background()
	m := NewMemory(10)
	calls := 0

	compute := func(context.Context) (record, error) {
		calls++
		return record{Title: "Lost Love", Count: 42}, nil
	}

	got, cached, err := GetOrCompute(ctx, m, "r", time.Minute, compute)
	if err != nil {
		t.Fatalf("GetOrCompute() error = %v", err)
	}
	if cached {
		t.Error("first call reported cached = true, want false")
	}
	if got.Title != "Lost Love" || got.Count != 42 {
		t.Errorf("GetOrCompute() = %+v, want Lost Love/42", got)
	}

	got, cached, err = GetOrCompute(ctx, m, "r", time.Minute, compute)
	if err != nil {
		t.Fatalf("GetOrCompute() second call error = %v", err)
	}
	if !cached {
		t.Error("second call reported cached = false, want true")
	}
	if got.Title != "Lost Love" || got.Count != 42 {
		t.Errorf("cached value = %+v, want Lost Love/42", got)
	}
	if calls != 1 {
		t.Errorf("compute called %d times, want 1", calls)
	}
}

func TestGetOrCompute_ErrorNotCached(t *testing.T) {
	ctx := context.Background()
	m := NewMemory(10)
	wantErr := errors.New("upstream down")
	calls := 0

	compute := func(context.Context) (record, error) {
		calls++
		if calls == 1 {
			return record{}, wantErr
		}
		return record{Title: "ok"}, nil
	}

	_, _, err := GetOrCompute(ctx, m, "r", time.Minute, compute)
	if !errors.Is(err, wantErr) {
		t.Fatalf("GetOrCompute() error = %v, want %v", err, wantErr)
	}

	got, cached, err := GetOrCompute(ctx, m, "r", time.Minute, compute)
	if err != nil {
		t.Fatalf("GetOrCompute() after failure error = %v", err)
	}
	if cached {
		t.Error("failure was cached; second call should recompute")
	}
	if got.Title != "ok" {
		t.Errorf("recomputed value = %+v, want ok", got)
	}
}

func TestGetOrCompute_UndecodableEntryIsMiss(t *testing.T) {
	ctx := context.Background()
	m := NewMemory(10)
	m.Set(ctx, "r", []byte("{not json"), time.Minute)

	got, cached, err := GetOrCompute(ctx, m, "r", time.Minute, func(context.Context) (record, error) {
		return record{Title: "fresh"}, nil
	})
	if err != nil {
		t.Fatalf("GetOrCompute() error = %v", err)
	}
	if cached {
		t.Error("undecodable entry reported as cache hit")
	}
	if got.Title != "fresh" {
		t.Errorf("GetOrCompute() = %+v, want fresh", got)
	}
}
