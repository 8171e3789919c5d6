package airtable_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/jmpinto/eventos-escuteiros/internal/domain"
	"github.com/jmpinto/eventos-escuteiros/internal/infra/airtable"
	"github.com/jmpinto/eventos-escuteiros/internal/infra/resilience"

	"go.uber.org/zap"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) *airtable.Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	client := airtable.NewClient(
		srv.Client(),
		srv.URL,
		"appBase123",
		"key-secret",
		resilience.NewCircuitBreaker("airtable-test"),
		resilience.NewBulkhead(2),
		zap.NewNop(),
	)
	return client
}

func TestReadAll_MergesIDIntoFields(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if got := r.Header.Get("Authorization"); got != "Bearer key-secret" {
			t.Errorf("unexpected auth header: %s", got)
		}
		json.NewEncoder(w).Encode(map[string]any{
			"records": []map[string]any{
				{"id": "rec1", "fields": map[string]any{"Nome": "Bifana", "Ativo": true}},
			},
		})
	})

	records, err := client.ReadAll(context.Background(), "Ementas")
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if len(records) != 1 {
		t.Fatalf("expected 1 record, got %d", len(records))
	}
	if records[0].ID() != "rec1" {
		t.Errorf("expected id merged in, got '%s'", records[0].ID())
	}
	if records[0].String("Nome") != "Bifana" {
		t.Errorf("expected field preserved, got '%s'", records[0].String("Nome"))
	}
}

func TestReadAll_FollowsPagination(t *testing.T) {
	calls := 0
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		calls++
		switch r.URL.Query().Get("offset") {
		case "":
			json.NewEncoder(w).Encode(map[string]any{
				"records": []map[string]any{{"id": "rec1", "fields": map[string]any{}}},
				"offset":  "page2",
			})
		case "page2":
			json.NewEncoder(w).Encode(map[string]any{
				"records": []map[string]any{{"id": "rec2", "fields": map[string]any{}}},
			})
		default:
			t.Errorf("unexpected offset: %s", r.URL.Query().Get("offset"))
		}
	})

	records, err := client.ReadAll(context.Background(), "Pedidos")
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if calls != 2 {
		t.Errorf("expected 2 pages fetched, got %d", calls)
	}
	if len(records) != 2 || records[1].ID() != "rec2" {
		t.Errorf("expected both pages merged, got %v", records)
	}
}

func TestReadAllFiltered_SendsFormula(t *testing.T) {
	var formula string
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		formula = r.URL.Query().Get("filterByFormula")
		json.NewEncoder(w).Encode(map[string]any{"records": []map[string]any{}})
	})

	_, err := client.ReadAllFiltered(context.Background(), "Utilizadores", map[string]any{
		"Ativo": true,
		"Email": "ana@agrupamento.pt",
	})
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	want := "AND({Ativo}=TRUE(), {Email}='ana@agrupamento.pt')"
	if formula != want {
		t.Errorf("expected formula %s, got %s", want, formula)
	}
}

func TestFindFirst_NoMatchReturnsNil(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if got := r.URL.Query().Get("maxRecords"); got != "1" {
			t.Errorf("expected maxRecords=1, got %s", got)
		}
		json.NewEncoder(w).Encode(map[string]any{"records": []map[string]any{}})
	})

	record, err := client.FindFirst(context.Background(), "Utilizadores", map[string]any{"Email": "x@y.pt"})
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if record != nil {
		t.Errorf("expected nil record, got %v", record)
	}
}

func TestCreate_PostsFieldsEnvelope(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			t.Errorf("expected POST, got %s", r.Method)
		}
		var payload struct {
			Fields map[string]any `json:"fields"`
		}
		json.NewDecoder(r.Body).Decode(&payload)
		if payload.Fields["Nome"] != "Festa de Natal" {
			t.Errorf("unexpected fields: %v", payload.Fields)
		}
		json.NewEncoder(w).Encode(map[string]any{
			"id":     "recNew",
			"fields": payload.Fields,
		})
	})

	record, err := client.Create(context.Background(), "Eventos", map[string]any{"Nome": "Festa de Natal"})
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if record.ID() != "recNew" {
		t.Errorf("expected new id, got '%s'", record.ID())
	}
}

func TestUpdate_PatchesRecordPath(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPatch {
			t.Errorf("expected PATCH, got %s", r.Method)
		}
		if r.URL.Path != "/appBase123/Pedidos/rec42" {
			t.Errorf("unexpected path: %s", r.URL.Path)
		}
		json.NewEncoder(w).Encode(map[string]any{
			"id":     "rec42",
			"fields": map[string]any{"Pago": true},
		})
	})

	record, err := client.Update(context.Background(), "Pedidos", "rec42", map[string]any{"Pago": true})
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if !record.Bool("Pago") {
		t.Error("expected Pago true in response")
	}
}

func TestNon2xxIsExternalServiceError(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"error":"INVALID_PERMISSIONS"}`, http.StatusForbidden)
	})

	_, err := client.ReadAll(context.Background(), "Eventos")
	if err == nil {
		t.Fatal("expected error, got nil")
	}
	var external *domain.ErrExternalService
	if !errors.As(err, &external) {
		t.Fatalf("expected ErrExternalService, got %T: %v", err, err)
	}
	if external.Service != "airtable/Eventos" {
		t.Errorf("unexpected service tag: %s", external.Service)
	}
}

func TestTableNameWithSpacesIsEscaped(t *testing.T) {
	var path string
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		path = r.URL.EscapedPath()
		json.NewEncoder(w).Encode(map[string]any{"records": []map[string]any{}})
	})

	if _, err := client.ReadAll(context.Background(), "Tipos de Cliente"); err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if path != "/appBase123/Tipos%20de%20Cliente" {
		t.Errorf("unexpected escaped path: %s", path)
	}
}
