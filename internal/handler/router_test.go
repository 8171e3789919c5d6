package handler_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/jmpinto/eventos-escuteiros/internal/domain"
	"github.com/jmpinto/eventos-escuteiros/internal/handler"
	"github.com/jmpinto/eventos-escuteiros/internal/infra/cache"
	"github.com/jmpinto/eventos-escuteiros/internal/infra/observability"
	"github.com/jmpinto/eventos-escuteiros/internal/service"

	"go.uber.org/zap"
)

func TestHealthz(t *testing.T) {
	router := handler.NewRouter(nil, nil, nil, nil, observability.NewMetrics(), zap.NewNop())

	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	rec := httptest.NewRecorder()

	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Errorf("expected 200, got %d", rec.Code)
	}
}

// probeGateway records which reads the health check performs.
type probeGateway struct {
	findFirstCalls int
	readAllCalls   int
	err            error
}

func (p *probeGateway) ReadAll(context.Context, string) ([]domain.Record, error) {
	p.readAllCalls++
	return nil, p.err
}

func (p *probeGateway) ReadAllFiltered(context.Context, string, map[string]any) ([]domain.Record, error) {
	return nil, p.err
}

func (p *probeGateway) FindFirst(context.Context, string, map[string]any) (domain.Record, error) {
	p.findFirstCalls++
	if p.err != nil {
		return nil, p.err
	}
	return domain.Record{"id": "ev1"}, nil
}

func (p *probeGateway) Create(context.Context, string, map[string]any) (domain.Record, error) {
	return nil, p.err
}

func (p *probeGateway) Update(context.Context, string, string, map[string]any) (domain.Record, error) {
	return nil, p.err
}

func (p *probeGateway) Delete(context.Context, string, string) (domain.Record, error) {
	return nil, p.err
}

func TestHealthz_UsesBoundedProbe(t *testing.T) {
	gw := &probeGateway{}
	router := handler.NewRouter(nil, nil, nil, gw, observability.NewMetrics(), zap.NewNop())

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))

	if rec.Code != http.StatusOK {
		t.Errorf("expected 200, got %d", rec.Code)
	}
	if gw.findFirstCalls != 1 || gw.readAllCalls != 0 {
		t.Errorf("expected a single one-record probe, got findFirst=%d readAll=%d",
			gw.findFirstCalls, gw.readAllCalls)
	}
}

func TestHealthz_DegradedWhenRemoteFails(t *testing.T) {
	gw := &probeGateway{err: errors.New("base unreachable")}
	router := handler.NewRouter(nil, nil, nil, gw, observability.NewMetrics(), zap.NewNop())

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))

	if rec.Code != http.StatusServiceUnavailable {
		t.Errorf("expected 503 when the remote base is down, got %d", rec.Code)
	}
}

func TestReadyz(t *testing.T) {
	router := handler.NewRouter(nil, nil, nil, nil, observability.NewMetrics(), zap.NewNop())

	req := httptest.NewRequest(http.MethodGet, "/readyz", nil)
	rec := httptest.NewRecorder()

	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Errorf("expected 200, got %d", rec.Code)
	}
}

func TestMetrics(t *testing.T) {
	router := handler.NewRouter(nil, nil, nil, nil, observability.NewMetrics(), zap.NewNop())

	req := httptest.NewRequest(http.MethodGet, "/metrics", nil)
	rec := httptest.NewRecorder()

	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Errorf("expected 200, got %d", rec.Code)
	}
}

func TestProtectedRouteRequiresToken(t *testing.T) {
	router := handler.NewRouter(nil, nil, nil, nil, observability.NewMetrics(), zap.NewNop())

	req := httptest.NewRequest(http.MethodGet, "/v1/orders", nil)
	rec := httptest.NewRecorder()

	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Errorf("expected 401, got %d", rec.Code)
	}
}

// --- Full-stack flow over a stub gateway ---

// stubGateway serves a fixed base from memory.
type stubGateway struct {
	tables map[string][]domain.Record
	seq    int
}

func (s *stubGateway) ReadAll(_ context.Context, table string) ([]domain.Record, error) {
	return s.tables[table], nil
}

func (s *stubGateway) ReadAllFiltered(ctx context.Context, table string, where map[string]any) ([]domain.Record, error) {
	records, _ := s.ReadAll(ctx, table)
	var matched []domain.Record
	for _, r := range records {
		ok := true
		for field, want := range where {
			if r[field] != want {
				ok = false
				break
			}
		}
		if ok {
			matched = append(matched, r)
		}
	}
	return matched, nil
}

func (s *stubGateway) FindFirst(ctx context.Context, table string, where map[string]any) (domain.Record, error) {
	matched, _ := s.ReadAllFiltered(ctx, table, where)
	if len(matched) == 0 {
		return nil, nil
	}
	return matched[0], nil
}

func (s *stubGateway) Create(_ context.Context, table string, fields map[string]any) (domain.Record, error) {
	s.seq++
	record := domain.Record{"id": fmt.Sprintf("rec%d", s.seq)}
	for k, v := range fields {
		record[k] = v
	}
	s.tables[table] = append(s.tables[table], record)
	return record, nil
}

func (s *stubGateway) Update(_ context.Context, table, id string, fields map[string]any) (domain.Record, error) {
	for _, r := range s.tables[table] {
		if r.ID() == id {
			for k, v := range fields {
				r[k] = v
			}
			return r, nil
		}
	}
	return nil, &domain.ErrNotFound{Resource: table, ID: id}
}

func (s *stubGateway) Delete(_ context.Context, table, id string) (domain.Record, error) {
	for i, r := range s.tables[table] {
		if r.ID() == id {
			s.tables[table] = append(s.tables[table][:i], s.tables[table][i+1:]...)
			return r, nil
		}
	}
	return nil, &domain.ErrNotFound{Resource: table, ID: id}
}

func newTestRouter(t *testing.T) http.Handler {
	t.Helper()

	operatorHash, err := service.HashPassword("segredo")
	if err != nil {
		t.Fatalf("hash password: %v", err)
	}

	gw := &stubGateway{tables: map[string][]domain.Record{
		"Utilizadores": {
			{"id": "u1", "Nome": "Ana", "Email": "ana@agrupamento.pt", "Password": operatorHash, "Perfil": "Operador", "Ativo": true},
		},
		"Eventos": {
			{"id": "ev1", "Nome": "Festa de Natal", "Ativo": true},
		},
		"Ementas": {
			{"id": "m1", "Nome": "Bifana", "Ativo": true, "Evento": []any{"ev1"}},
		},
		"Tipos de Cliente": {
			{"id": "t1", "Nome": "Adulto"},
		},
		"Preços": {
			{"id": "p1", "Ementa": []any{"m1"}, "TipoCliente": []any{"t1"}, "Evento": []any{"ev1"}, "Preço (€)": 2.5},
		},
		"Pedidos":          {},
		"Recebimentos":     {},
		"Sangria de Caixa": {},
	}}

	logger := zap.NewNop()
	metrics := observability.NewMetrics()
	tableCache := cache.New(time.Minute)
	sessions := service.NewMemorySessionStore(time.Hour)

	authSvc := service.NewAuthService(gw, sessions, "test-secret", time.Hour, logger)
	salesSvc := service.NewSalesService(gw, tableCache, metrics, logger)
	adminSvc := service.NewAdminService(gw, tableCache, metrics, logger)

	return handler.NewRouter(authSvc, salesSvc, adminSvc, gw, metrics, logger)
}

func login(t *testing.T, router http.Handler) string {
	t.Helper()

	body, _ := json.Marshal(domain.LoginRequest{Email: "ana@agrupamento.pt", Password: "segredo"})
	req := httptest.NewRequest(http.MethodPost, "/v1/auth/login", bytes.NewReader(body))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("login: expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	var resp domain.LoginResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode login response: %v", err)
	}
	return resp.Token
}

func TestLoginAndCreateOrderFlow(t *testing.T) {
	router := newTestRouter(t)
	token := login(t, router)

	body, _ := json.Marshal(domain.CreateOrderRequest{
		MenuItemID:     "m1",
		CustomerTypeID: "t1",
		Quantity:       2,
	})
	req := httptest.NewRequest(http.MethodPost, "/v1/orders", bytes.NewReader(body))
	req.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", rec.Code, rec.Body.String())
	}
	var order domain.Order
	if err := json.Unmarshal(rec.Body.Bytes(), &order); err != nil {
		t.Fatalf("decode order: %v", err)
	}
	if order.Value != 5 || order.Paid {
		t.Errorf("unexpected order: %+v", order)
	}

	// The dashboard now reflects the order.
	req = httptest.NewRequest(http.MethodGet, "/v1/dashboard", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("dashboard: expected 200, got %d", rec.Code)
	}
	var summary domain.DashboardSummary
	if err := json.Unmarshal(rec.Body.Bytes(), &summary); err != nil {
		t.Fatalf("decode summary: %v", err)
	}
	if summary.TotalValue != 5 {
		t.Errorf("expected total value 5, got %f", summary.TotalValue)
	}
}

func TestAdminRoutesRejectOperators(t *testing.T) {
	router := newTestRouter(t)
	token := login(t, router)

	req := httptest.NewRequest(http.MethodGet, "/v1/users", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusForbidden {
		t.Errorf("expected 403 for operator on admin route, got %d", rec.Code)
	}
}

func TestInvalidTokenIsRejected(t *testing.T) {
	router := newTestRouter(t)

	req := httptest.NewRequest(http.MethodGet, "/v1/orders", nil)
	req.Header.Set("Authorization", "Bearer not-a-real-token")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Errorf("expected 401, got %d", rec.Code)
	}
}
