package usage

import (
	"context"
	"errors"
	"testing"
	"time"
)

func TestConsumeWithinLimit(t *testing.T) {
	svc := NewServiceWithLimit(2)
	ctx := context.Background()

	if _, err := svc.Consume(ctx, "u1", 1); err != nil {
		t.Fatalf("Consume: %v", err)
	}
	u, err := svc.Consume(ctx, "u1", 1)
	if err != nil {
		t.Fatalf("Consume: %v", err)
	}
	if u.Used != 2 {
		t.Fatalf("expected used 2, got %d", u.Used)
	}

	if _, err := svc.Consume(ctx, "u1", 1); !errors.Is(err, ErrLimitReached) {
		t.Fatalf("expected ErrLimitReached, got %v", err)
	}
}

func TestCanConsumeDoesNotMutate(t *testing.T) {
	svc := NewServiceWithLimit(1)
	ctx := context.Background()

	ok, u, err := svc.CanConsume(ctx, "u1", 1)
	if err != nil || !ok {
		t.Fatalf("expected allowed, got ok=%v err=%v", ok, err)
	}
	if u.Used != 0 {
		t.Fatalf("CanConsume must not consume, used=%d", u.Used)
	}

	if _, err := svc.Consume(ctx, "u1", 1); err != nil {
		t.Fatalf("Consume: %v", err)
	}
	ok, _, err = svc.CanConsume(ctx, "u1", 1)
	if err != nil {
		t.Fatalf("CanConsume: %v", err)
	}
	if ok {
		t.Fatal("expected limit to block further consumption")
	}
}

func TestMonthlyRollover(t *testing.T) {
	store := newMemoryStore(5)
	svc := NewPostgresService(store)
	ctx := context.Background()

	if _, err := svc.Consume(ctx, "u1", 3); err != nil {
		t.Fatalf("Consume: %v", err)
	}

	// Force the period into the past; the next touch must reset it.
	store.mu.Lock()
	u := store.data["u1"]
	u.ResetsAt = time.Now().UTC().Add(-time.Hour)
	store.data["u1"] = u
	store.mu.Unlock()

	got, err := svc.EnsurePeriod(ctx, "u1")
	if err != nil {
		t.Fatalf("EnsurePeriod: %v", err)
	}
	if got.Used != 0 {
		t.Fatalf("expected counter reset, used=%d", got.Used)
	}
	if !got.ResetsAt.After(time.Now().UTC()) {
		t.Fatalf("expected future reset, got %v", got.ResetsAt)
	}
}

func TestNextMonthStart(t *testing.T) {
	cases := []struct {
		now  time.Time
		want time.Time
	}{
		{
			now:  time.Date(2026, 3, 15, 10, 30, 0, 0, time.UTC),
			want: time.Date(2026, 4, 1, 0, 0, 0, 0, time.UTC),
		},
		{
			now:  time.Date(2026, 12, 31, 23, 59, 59, 0, time.UTC),
			want: time.Date(2027, 1, 1, 0, 0, 0, 0, time.UTC),
		},
		{
			now:  time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC),
			want: time.Date(2026, 2, 1, 0, 0, 0, 0, time.UTC),
		},
	}
	for _, tc := range cases {
		if got := nextMonthStart(tc.now); !got.Equal(tc.want) {
			t.Errorf("nextMonthStart(%v) = %v, want %v", tc.now, got, tc.want)
		}
	}
}

func TestResetRestartsPeriod(t *testing.T) {
	svc := NewServiceWithLimit(1)
	ctx := context.Background()

	if _, err := svc.Consume(ctx, "u1", 1); err != nil {
		t.Fatalf("Consume: %v", err)
	}
	u, err := svc.Reset(ctx, "u1")
	if err != nil {
		t.Fatalf("Reset: %v", err)
	}
	if u.Used != 0 {
		t.Fatalf("expected used 0 after reset, got %d", u.Used)
	}
	if _, err := svc.Consume(ctx, "u1", 1); err != nil {
		t.Fatalf("Consume after reset: %v", err)
	}
}
