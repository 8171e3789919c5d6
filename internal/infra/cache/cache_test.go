package cache_test

import (
	"testing"
	"time"

	"github.com/jmpinto/eventos-escuteiros/internal/domain"
	"github.com/jmpinto/eventos-escuteiros/internal/infra/cache"
)

func TestSetAndGet(t *testing.T) {
	c := cache.New(5 * time.Minute)

	records := []domain.Record{{"id": "rec1", "Nome": "Bifana"}}
	c.Set("Ementas", records)

	got, ok := c.Get("Ementas")
	if !ok {
		t.Fatal("expected cache hit")
	}
	if len(got) != 1 || got[0].ID() != "rec1" {
		t.Errorf("unexpected records: %v", got)
	}
}

func TestGetMissingTable(t *testing.T) {
	c := cache.New(5 * time.Minute)

	if _, ok := c.Get("Pedidos"); ok {
		t.Error("expected miss for a table never set")
	}
}

func TestExpiration(t *testing.T) {
	c := cache.New(20 * time.Millisecond)

	c.Set("Eventos", []domain.Record{{"id": "ev1"}})
	if _, ok := c.Get("Eventos"); !ok {
		t.Fatal("expected hit before TTL")
	}

	time.Sleep(40 * time.Millisecond)
	if _, ok := c.Get("Eventos"); ok {
		t.Error("expected miss after TTL")
	}
}

func TestFlushDropsEverything(t *testing.T) {
	c := cache.New(5 * time.Minute)

	c.Set("Ementas", []domain.Record{{"id": "m1"}})
	c.Set("Preços", []domain.Record{{"id": "p1"}})

	c.Flush()

	if _, ok := c.Get("Ementas"); ok {
		t.Error("expected Ementas flushed")
	}
	if _, ok := c.Get("Preços"); ok {
		t.Error("expected Preços flushed")
	}
}
