// Package handler exposes the HTTP surface of the event-management
// service: session endpoints, operator flows and administration.
package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/jmpinto/eventos-escuteiros/internal/domain"
	"github.com/jmpinto/eventos-escuteiros/internal/infra/observability"
	"github.com/jmpinto/eventos-escuteiros/internal/port"
	"github.com/jmpinto/eventos-escuteiros/internal/service"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/otel"
	"go.uber.org/zap"
)

var tracer = otel.Tracer("handler")

// NewRouter creates the HTTP router with all routes and middleware.
// Everything under /v1 except the login endpoint requires a session.
func NewRouter(authSvc *service.AuthService, salesSvc *service.SalesService, adminSvc *service.AdminService, gateway port.TableGateway, metrics *observability.Metrics, logger *zap.Logger) http.Handler {
	r := chi.NewRouter()

	// --- Middleware ---
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(observability.ZapLoggerMiddleware(logger, metrics))
	r.Use(observability.TracingMiddleware)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Heartbeat("/ping"))

	// --- Operational endpoints ---
	r.Get("/healthz", healthzHandler(gateway))
	r.Get("/readyz", readyzHandler())
	r.Handle("/metrics", promhttp.HandlerFor(metrics.Registry, promhttp.HandlerOpts{}))

	// --- API v1 ---
	r.Route("/v1", func(r chi.Router) {

		// =============================================
		// Autenticação (público)
		// POST /v1/auth/login
		// =============================================
		r.Post("/auth/login", authLoginHandler(authSvc, logger))

		// Everything below carries a session.
		r.Group(func(r chi.Router) {
			r.Use(SessionMiddleware(authSvc, logger))

			// =============================================
			// Sessão
			// =============================================
			r.Post("/auth/logout", authLogoutHandler(authSvc, logger))
			r.Get("/session", getSessionHandler())
			r.Put("/session/active-event", setActiveEventHandler(authSvc, logger))
			r.Get("/events/active", listSelectableEventsHandler(authSvc, logger))

			// =============================================
			// Métricas de vendas
			// =============================================
			r.Get("/metrics/sales", salesMetricsHandler(metrics, logger))

			// =============================================
			// Operação (requer evento ativo)
			// =============================================
			r.Group(func(r chi.Router) {
				r.Use(RequireActiveEvent(logger))

				r.Get("/orders", listOrdersHandler(salesSvc, logger))
				r.Post("/orders", createOrderHandler(salesSvc, logger))
				r.Get("/orders/pending", listPendingOrdersHandler(salesSvc, logger))
				r.Post("/orders/{orderId}/receipt", settleOrderHandler(salesSvc, logger))
				r.Get("/receipts", listReceiptsHandler(salesSvc, logger))

				r.Get("/withdrawals", listWithdrawalsHandler(salesSvc, logger))
				r.Post("/withdrawals", createWithdrawalHandler(salesSvc, logger))

				r.Get("/dashboard", dashboardHandler(salesSvc, logger))
			})

			// =============================================
			// Administração
			// =============================================
			r.Group(func(r chi.Router) {
				r.Use(RequireAdmin(logger))

				r.Get("/events", listEventsHandler(adminSvc, logger))
				r.Post("/events", createEventHandler(adminSvc, logger))
				r.Put("/events/{eventId}", updateEventHandler(adminSvc, logger))
				r.Delete("/events/{eventId}", deleteEventHandler(adminSvc, logger))

				r.Get("/customer-types", listCustomerTypesHandler(adminSvc, logger))
				r.Post("/customer-types", createCustomerTypeHandler(adminSvc, logger))
				r.Put("/customer-types/{typeId}", updateCustomerTypeHandler(adminSvc, logger))
				r.Delete("/customer-types/{typeId}", deleteCustomerTypeHandler(adminSvc, logger))

				r.Get("/users", listUsersHandler(adminSvc, logger))
				r.Post("/users", createUserHandler(adminSvc, logger))
				r.Put("/users/{userId}", updateUserHandler(adminSvc, logger))
				r.Delete("/users/{userId}", deleteUserHandler(adminSvc, logger))

				// Menus and prices belong to the active event.
				r.Group(func(r chi.Router) {
					r.Use(RequireActiveEvent(logger))

					r.Get("/menus", listMenuItemsHandler(adminSvc, logger))
					r.Post("/menus", createMenuItemHandler(adminSvc, logger))
					r.Put("/menus/{menuId}", updateMenuItemHandler(adminSvc, logger))
					r.Delete("/menus/{menuId}", deleteMenuItemHandler(adminSvc, logger))

					r.Get("/prices", listPricesHandler(adminSvc, logger))
					r.Post("/prices", createPriceHandler(adminSvc, logger))
					r.Put("/prices/{priceId}", updatePriceHandler(adminSvc, logger))
					r.Delete("/prices/{priceId}", deletePriceHandler(adminSvc, logger))
				})
			})
		})
	})

	return r
}

// ============================================================
// Operational handlers
// ============================================================

type serviceHealth struct {
	Name      string `json:"name"`
	Status    string `json:"status"`
	LatencyMs int64  `json:"latencyMs"`
}

type healthResponse struct {
	Status    string          `json:"status"`
	Timestamp string          `json:"timestamp"`
	Services  []serviceHealth `json:"services"`
}

func healthzHandler(gateway port.TableGateway) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		services := []serviceHealth{
			{Name: "api", Status: "healthy", LatencyMs: 0},
		}

		if gateway != nil {
			ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
			defer cancel()

			// Bounded probe: fetches at most one record so load
			// balancers polling this endpoint stay cheap.
			start := time.Now()
			_, err := gateway.FindFirst(ctx, domain.TableEvents, nil)
			status := "healthy"
			if err != nil {
				status = "degraded"
			}
			services = append(services, serviceHealth{
				Name: "airtable", Status: status, LatencyMs: time.Since(start).Milliseconds(),
			})
		}

		overall := "healthy"
		for _, s := range services {
			if s.Status != "healthy" {
				overall = "degraded"
			}
		}

		code := http.StatusOK
		if overall != "healthy" {
			code = http.StatusServiceUnavailable
		}
		writeJSON(w, code, healthResponse{
			Status:    overall,
			Timestamp: time.Now().Format(time.RFC3339),
			Services:  services,
		})
	}
}

func readyzHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ready"})
	}
}
