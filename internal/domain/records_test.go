package domain_test

import (
	"testing"

	"github.com/jmpinto/eventos-escuteiros/internal/domain"
)

func TestFilterByEvent(t *testing.T) {
	records := []domain.Record{
		{"id": "o1", "Evento": []any{"ev1"}},
		{"id": "o2", "Evento": "ev2"},
		{"id": "o3", "Evento": []any{"ev1", "ev2"}},
		{"id": "o4"},
	}

	filtered := domain.FilterByEvent(records, "ev1")
	if len(filtered) != 2 {
		t.Fatalf("expected 2 records, got %d", len(filtered))
	}
	if filtered[0].ID() != "o1" || filtered[1].ID() != "o3" {
		t.Errorf("wrong records kept: %s, %s", filtered[0].ID(), filtered[1].ID())
	}

	// Empty event id keeps everything.
	if got := domain.FilterByEvent(records, ""); len(got) != 4 {
		t.Errorf("expected all 4 records, got %d", len(got))
	}
}

func TestNameIndex_Fallbacks(t *testing.T) {
	records := []domain.Record{
		{"id": "r1", "Nome": "Bifana"},
		{"id": "r2", "Email": "ana@agrupamento.pt"},
		{"id": "r3"},
	}

	index := domain.NameIndex(records)
	if index["r1"] != "Bifana" {
		t.Errorf("expected 'Bifana', got '%s'", index["r1"])
	}
	if index["r2"] != "ana@agrupamento.pt" {
		t.Errorf("expected email fallback, got '%s'", index["r2"])
	}
	if index["r3"] != "r3" {
		t.Errorf("expected id fallback, got '%s'", index["r3"])
	}
}

func TestResolveUnitPrice(t *testing.T) {
	prices := []domain.Record{
		{"id": "p1", "Ementa": []any{"m1"}, "TipoCliente": []any{"t1"}, "Evento": []any{"ev1"}, "Preço (€)": 2.5},
		{"id": "p2", "Ementa": []any{"m1"}, "TipoCliente": []any{"t2"}, "Evento": []any{"ev1"}, "Preco": 1.5},
		{"id": "p3", "Ementa": "m2", "TipoCliente": "t1", "Evento": "ev1", "Preço": "3.00"},
	}

	if got := domain.ResolveUnitPrice(prices, "m1", "t1", "ev1"); got != 2.5 {
		t.Errorf("expected 2.5, got %f", got)
	}
	// Legacy column name variants resolve too.
	if got := domain.ResolveUnitPrice(prices, "m1", "t2", "ev1"); got != 1.5 {
		t.Errorf("expected 1.5, got %f", got)
	}
	if got := domain.ResolveUnitPrice(prices, "m2", "t1", "ev1"); got != 3 {
		t.Errorf("expected 3, got %f", got)
	}
	// Unconfigured combination reads as zero.
	if got := domain.ResolveUnitPrice(prices, "m2", "t2", "ev1"); got != 0 {
		t.Errorf("expected 0, got %f", got)
	}
	// Wrong event reads as zero.
	if got := domain.ResolveUnitPrice(prices, "m1", "t1", "ev9"); got != 0 {
		t.Errorf("expected 0, got %f", got)
	}
}

func TestAggregateValueByGroup(t *testing.T) {
	orders := []domain.Record{
		{"id": "o1", "Ementa": []any{"m1"}, "Valor": 10.0},
		{"id": "o2", "Ementa": []any{"m1"}, "Valor": 5.0},
		{"id": "o3", "Ementa": []any{"m2"}, "Valor": 3.0},
		{"id": "o4", "Valor": 99.0}, // no link, excluded
	}
	names := map[string]string{"m1": "Bifana", "m2": "Água"}

	totals := domain.AggregateValueByGroup(orders, "Ementa", names)
	if len(totals) != 2 {
		t.Fatalf("expected 2 groups, got %d", len(totals))
	}
	// Sorted by name, byte-wise: "Bifana" sorts before "Água".
	if totals[0].Name != "Bifana" || totals[0].Value != 15 {
		t.Errorf("expected Bifana=15, got %s=%f", totals[0].Name, totals[0].Value)
	}
	if totals[1].Name != "Água" || totals[1].Value != 3 {
		t.Errorf("expected Água=3, got %s=%f", totals[1].Name, totals[1].Value)
	}
}

func TestDisplayName_PassesThroughUnknownIds(t *testing.T) {
	r := domain.Record{"Ementa": []any{"m9"}}
	if got := domain.DisplayName(r, "Ementa", map[string]string{"m1": "Bifana"}); got != "m9" {
		t.Errorf("expected pass-through id, got '%s'", got)
	}
	empty := domain.Record{}
	if got := domain.DisplayName(empty, "Ementa", nil); got != "" {
		t.Errorf("expected empty, got '%s'", got)
	}
}
