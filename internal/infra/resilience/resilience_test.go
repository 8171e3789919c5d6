package resilience_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/jmpinto/eventos-escuteiros/internal/infra/resilience"

	"github.com/sony/gobreaker"
)

func TestBulkhead_LimitsConcurrency(t *testing.T) {
	b := resilience.NewBulkhead(2)

	if err := b.Acquire(context.Background()); err != nil {
		t.Fatalf("first acquire: %v", err)
	}
	if err := b.Acquire(context.Background()); err != nil {
		t.Fatalf("second acquire: %v", err)
	}

	// The third acquire must block until a slot frees up.
	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	if err := b.Acquire(ctx); !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("expected deadline exceeded, got %v", err)
	}

	b.Release()
	if err := b.Acquire(context.Background()); err != nil {
		t.Errorf("expected acquire after release, got %v", err)
	}
}

func TestBulkhead_RespectsCancelledContext(t *testing.T) {
	b := resilience.NewBulkhead(1)
	if err := b.Acquire(context.Background()); err != nil {
		t.Fatalf("acquire: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if err := b.Acquire(ctx); !errors.Is(err, context.Canceled) {
		t.Errorf("expected context.Canceled, got %v", err)
	}
}

func TestCircuitBreaker_TripsAfterRepeatedFailures(t *testing.T) {
	cb := resilience.NewCircuitBreaker("test")

	boom := errors.New("remote down")
	for i := 0; i < 6; i++ {
		cb.Execute(func() (any, error) { return nil, boom })
	}

	_, err := cb.Execute(func() (any, error) { return "ok", nil })
	if !errors.Is(err, gobreaker.ErrOpenState) {
		t.Errorf("expected open breaker, got %v", err)
	}
}

func TestCircuitBreaker_PassesThroughWhenClosed(t *testing.T) {
	cb := resilience.NewCircuitBreaker("test")

	result, err := cb.Execute(func() (any, error) { return 42, nil })
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if result.(int) != 42 {
		t.Errorf("expected 42, got %v", result)
	}
}
