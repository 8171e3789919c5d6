package handler

import (
	"net/http"

	"github.com/jmpinto/eventos-escuteiros/internal/infra/observability"
	"github.com/jmpinto/eventos-escuteiros/internal/service"

	"go.uber.org/zap"
)

// ============================================================
// Dashboard de vendas
// ============================================================

func dashboardHandler(salesSvc *service.SalesService, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "GET /v1/dashboard")
		defer span.End()

		summary, err := salesSvc.Dashboard(ctx, SessionFromContext(ctx))
		if err != nil {
			handleServiceError(w, err, logger)
			return
		}

		writeJSON(w, http.StatusOK, summary)
	}
}

func salesMetricsHandler(metrics *observability.Metrics, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		_, span := tracer.Start(r.Context(), "GET /v1/metrics/sales")
		defer span.End()

		writeJSON(w, http.StatusOK, metrics.GetSalesSnapshot())
	}
}
