package service

import (
	"context"
	"time"

	"github.com/jmpinto/eventos-escuteiros/internal/domain"

	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// Dashboard builds the aggregated sales view for the active event: total
// orders, total value and the per-menu-item / per-customer-type breakdowns.
// Orders are read fresh; the catalog tables go through the cache. The three
// reads run concurrently.
func (s *SalesService) Dashboard(ctx context.Context, session *domain.Session) (*domain.DashboardSummary, error) {
	ctx, span := salesTracer.Start(ctx, "SalesService.Dashboard")
	defer span.End()
	span.SetAttributes(attribute.String("event.id", session.ActiveEventID))

	start := time.Now()
	defer func() {
		s.metrics.RecordRequestDuration("dashboard", time.Since(start))
	}()

	var (
		orders []domain.Record
		menus  []domain.Record
		types  []domain.Record
	)

	g, gCtx := errgroup.WithContext(ctx)

	g.Go(func() error {
		records, err := s.gateway.ReadAll(gCtx, domain.TableOrders)
		if err != nil {
			s.metrics.IncrRemoteError(domain.TableOrders)
			return err
		}
		orders = records
		return nil
	})
	g.Go(func() error {
		records, err := s.cachedTable(gCtx, domain.TableMenuItems)
		if err != nil {
			return err
		}
		menus = records
		return nil
	})
	g.Go(func() error {
		records, err := s.cachedTable(gCtx, domain.TableCustomerTypes)
		if err != nil {
			return err
		}
		types = records
		return nil
	})

	if err := g.Wait(); err != nil {
		s.logger.Error("dashboard: fetch failed",
			zap.String("event_id", session.ActiveEventID),
			zap.Error(err),
		)
		return nil, err
	}

	orders = domain.FilterByEvent(orders, session.ActiveEventID)

	totalValue := float64(0)
	totalOrders := float64(0)
	hasQuantity := false
	for _, o := range orders {
		totalValue += o.Number(domain.FieldValue)
		if _, ok := o[domain.FieldQuantity]; ok {
			hasQuantity = true
		}
		totalOrders += o.Number(domain.FieldQuantity)
	}
	// Older rows may predate the Quantidade column; count rows instead.
	if !hasQuantity {
		totalOrders = float64(len(orders))
	}

	return &domain.DashboardSummary{
		TotalOrders:    totalOrders,
		TotalValue:     totalValue,
		ByMenuItem:     domain.AggregateValueByGroup(orders, domain.FieldMenuItem, domain.NameIndex(menus)),
		ByCustomerType: domain.AggregateValueByGroup(orders, domain.FieldCustomerType, domain.NameIndex(types)),
	}, nil
}
