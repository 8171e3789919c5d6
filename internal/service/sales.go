package service

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/jmpinto/eventos-escuteiros/internal/domain"
	"github.com/jmpinto/eventos-escuteiros/internal/infra/observability"
	"github.com/jmpinto/eventos-escuteiros/internal/port"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"
)

var salesTracer = otel.Tracer("service/sales")

// SalesService handles the operator flows: orders, receipts, cash
// withdrawals and the dashboard.
type SalesService struct {
	gateway port.TableGateway
	cache   port.TableCache
	metrics *observability.Metrics
	logger  *zap.Logger
}

// NewSalesService creates the sales service.
func NewSalesService(gateway port.TableGateway, cache port.TableCache, metrics *observability.Metrics, logger *zap.Logger) *SalesService {
	return &SalesService{gateway: gateway, cache: cache, metrics: metrics, logger: logger}
}

// cachedTable reads a full table through the cache. The cache is advisory:
// order reads that must be fresh call the gateway directly.
func (s *SalesService) cachedTable(ctx context.Context, table string) ([]domain.Record, error) {
	return readCached(ctx, s.gateway, s.cache, s.metrics, table)
}

// ============================================================
// Orders
// ============================================================

// ListOrders returns the active event's orders, newest first, with menu
// item and customer type names resolved. Orders are read fresh so a just
// created record always shows up.
func (s *SalesService) ListOrders(ctx context.Context, session *domain.Session) ([]domain.Order, error) {
	ctx, span := salesTracer.Start(ctx, "SalesService.ListOrders")
	defer span.End()
	span.SetAttributes(attribute.String("event.id", session.ActiveEventID))

	records, err := s.gateway.ReadAll(ctx, domain.TableOrders)
	if err != nil {
		s.metrics.IncrRemoteError(domain.TableOrders)
		return nil, err
	}
	records = domain.FilterByEvent(records, session.ActiveEventID)

	menuNames, typeNames, err := s.nameIndexes(ctx)
	if err != nil {
		return nil, err
	}

	orders := make([]domain.Order, 0, len(records))
	for _, r := range records {
		orders = append(orders, domain.OrderFromRecord(r, menuNames, typeNames))
	}
	sort.Slice(orders, func(i, j int) bool { return orders[i].Date > orders[j].Date })
	return orders, nil
}

// CreateOrder registers an order for the active event. The value is fixed
// here as quantity × the unit price resolved at this moment; later price
// changes never touch existing orders.
func (s *SalesService) CreateOrder(ctx context.Context, session *domain.Session, req *domain.CreateOrderRequest) (*domain.Order, error) {
	ctx, span := salesTracer.Start(ctx, "SalesService.CreateOrder")
	defer span.End()
	span.SetAttributes(attribute.String("event.id", session.ActiveEventID))

	start := time.Now()
	defer func() {
		s.metrics.RecordRequestDuration("create_order", time.Since(start))
	}()

	if req.MenuItemID == "" {
		return nil, &domain.ErrValidation{Field: "menuItemId", Message: "required"}
	}
	if req.CustomerTypeID == "" {
		return nil, &domain.ErrValidation{Field: "customerTypeId", Message: "required"}
	}
	if req.Quantity < 1 {
		return nil, &domain.ErrValidation{Field: "quantity", Message: "must be at least 1"}
	}

	prices, err := s.cachedTable(ctx, domain.TablePrices)
	if err != nil {
		return nil, fmt.Errorf("read prices: %w", err)
	}

	unitPrice := domain.ResolveUnitPrice(prices, req.MenuItemID, req.CustomerTypeID, session.ActiveEventID)
	if unitPrice <= 0 {
		return nil, &domain.ErrValidation{
			Field:   "price",
			Message: "Não existe preço configurado para a combinação selecionada",
		}
	}

	record, err := s.gateway.Create(ctx, domain.TableOrders, map[string]any{
		domain.FieldEvent:        []string{session.ActiveEventID},
		domain.FieldMenuItem:     []string{req.MenuItemID},
		domain.FieldCustomerType: []string{req.CustomerTypeID},
		domain.FieldQuantity:     req.Quantity,
		domain.FieldValue:        req.Quantity * unitPrice,
		domain.FieldPaid:         false,
	})
	if err != nil {
		s.metrics.IncrRemoteError(domain.TableOrders)
		return nil, err
	}
	s.cache.Flush()
	s.metrics.IncrRecordWritten(domain.TableOrders)

	s.logger.Info("order created",
		zap.String("order_id", record.ID()),
		zap.String("event_id", session.ActiveEventID),
		zap.Float64("quantity", req.Quantity),
		zap.Float64("unit_price", unitPrice),
		zap.Float64("value", req.Quantity*unitPrice),
	)

	menuNames, typeNames, err := s.nameIndexes(ctx)
	if err != nil {
		return nil, err
	}
	order := domain.OrderFromRecord(record, menuNames, typeNames)
	return &order, nil
}

// ListPendingOrders returns the active event's unpaid orders, read fresh —
// the settle screen must never act on a cached paid flag.
func (s *SalesService) ListPendingOrders(ctx context.Context, session *domain.Session) ([]domain.Order, error) {
	ctx, span := salesTracer.Start(ctx, "SalesService.ListPendingOrders")
	defer span.End()

	records, err := s.gateway.ReadAll(ctx, domain.TableOrders)
	if err != nil {
		s.metrics.IncrRemoteError(domain.TableOrders)
		return nil, err
	}

	menuNames, typeNames, err := s.nameIndexes(ctx)
	if err != nil {
		return nil, err
	}

	pending := make([]domain.Order, 0)
	for _, r := range domain.FilterByEvent(records, session.ActiveEventID) {
		if r.Bool(domain.FieldPaid) {
			continue
		}
		pending = append(pending, domain.OrderFromRecord(r, menuNames, typeNames))
	}
	return pending, nil
}

// SettleOrder records a receipt for an unpaid order and marks it paid.
//
// The two writes are independent remote calls with no rollback: when the
// paid-flag update fails after the receipt was created, the receipt stays
// and the order remains unpaid. That inconsistency is accepted and
// surfaced, never masked.
func (s *SalesService) SettleOrder(ctx context.Context, session *domain.Session, orderID string) (*domain.Receipt, error) {
	ctx, span := salesTracer.Start(ctx, "SalesService.SettleOrder")
	defer span.End()
	span.SetAttributes(attribute.String("order.id", orderID))

	start := time.Now()
	defer func() {
		s.metrics.RecordRequestDuration("settle_order", time.Since(start))
	}()

	records, err := s.gateway.ReadAll(ctx, domain.TableOrders)
	if err != nil {
		s.metrics.IncrRemoteError(domain.TableOrders)
		return nil, err
	}

	var order domain.Record
	for _, r := range records {
		if r.ID() == orderID {
			order = r
			break
		}
	}
	if order == nil || !order.HasLink(domain.FieldEvent, session.ActiveEventID) {
		return nil, &domain.ErrNotFound{Resource: "pedido", ID: orderID}
	}
	if order.Bool(domain.FieldPaid) {
		return nil, &domain.ErrConflict{Message: "O pedido já se encontra pago"}
	}

	value := order.Number(domain.FieldValue)
	receiptRecord, err := s.gateway.Create(ctx, domain.TableReceipts, map[string]any{
		domain.FieldOrder: []string{orderID},
		domain.FieldEvent: []string{session.ActiveEventID},
		domain.FieldValue: value,
	})
	if err != nil {
		s.metrics.IncrRemoteError(domain.TableReceipts)
		return nil, err
	}
	// The first write is committed from here on; flush whatever happens to
	// the second so no reader sees pre-mutation data.
	defer s.cache.Flush()
	s.metrics.IncrRecordWritten(domain.TableReceipts)

	if _, err := s.gateway.Update(ctx, domain.TableOrders, orderID, map[string]any{
		domain.FieldPaid: true,
	}); err != nil {
		s.metrics.IncrRemoteError(domain.TableOrders)
		s.logger.Error("settle: receipt created but paid flag update failed",
			zap.String("order_id", orderID),
			zap.String("receipt_id", receiptRecord.ID()),
			zap.Error(err),
		)
		return nil, err
	}

	s.logger.Info("order settled",
		zap.String("order_id", orderID),
		zap.String("receipt_id", receiptRecord.ID()),
		zap.Float64("value", value),
	)
	receipt := domain.ReceiptFromRecord(receiptRecord)
	return &receipt, nil
}

// ListReceipts returns the active event's receipts.
func (s *SalesService) ListReceipts(ctx context.Context, session *domain.Session) ([]domain.Receipt, error) {
	ctx, span := salesTracer.Start(ctx, "SalesService.ListReceipts")
	defer span.End()

	records, err := s.cachedTable(ctx, domain.TableReceipts)
	if err != nil {
		return nil, err
	}

	receipts := make([]domain.Receipt, 0)
	for _, r := range domain.FilterByEvent(records, session.ActiveEventID) {
		receipts = append(receipts, domain.ReceiptFromRecord(r))
	}
	return receipts, nil
}

// ============================================================
// Cash withdrawals
// ============================================================

// CreateWithdrawal records a cash-out for the active event.
func (s *SalesService) CreateWithdrawal(ctx context.Context, session *domain.Session, req *domain.CreateWithdrawalRequest) (*domain.CashWithdrawal, error) {
	ctx, span := salesTracer.Start(ctx, "SalesService.CreateWithdrawal")
	defer span.End()

	if req.Value <= 0 {
		return nil, &domain.ErrValidation{Field: "value", Message: "must be positive"}
	}
	if req.Responsible == "" {
		return nil, &domain.ErrValidation{Field: "responsible", Message: "required"}
	}

	record, err := s.gateway.Create(ctx, domain.TableWithdrawals, map[string]any{
		domain.FieldEvent:       []string{session.ActiveEventID},
		domain.FieldValue:       req.Value,
		domain.FieldResponsible: req.Responsible,
		domain.FieldNotes:       req.Notes,
	})
	if err != nil {
		s.metrics.IncrRemoteError(domain.TableWithdrawals)
		return nil, err
	}
	s.cache.Flush()
	s.metrics.IncrRecordWritten(domain.TableWithdrawals)

	s.logger.Info("cash withdrawal recorded",
		zap.String("withdrawal_id", record.ID()),
		zap.String("event_id", session.ActiveEventID),
		zap.Float64("value", req.Value),
		zap.String("responsible", req.Responsible),
	)
	withdrawal := domain.WithdrawalFromRecord(record)
	return &withdrawal, nil
}

// ListWithdrawals returns the active event's cash withdrawals.
func (s *SalesService) ListWithdrawals(ctx context.Context, session *domain.Session) ([]domain.CashWithdrawal, error) {
	ctx, span := salesTracer.Start(ctx, "SalesService.ListWithdrawals")
	defer span.End()

	records, err := s.cachedTable(ctx, domain.TableWithdrawals)
	if err != nil {
		return nil, err
	}

	withdrawals := make([]domain.CashWithdrawal, 0)
	for _, r := range domain.FilterByEvent(records, session.ActiveEventID) {
		withdrawals = append(withdrawals, domain.WithdrawalFromRecord(r))
	}
	return withdrawals, nil
}

// nameIndexes loads the id→name maps for menu items and customer types
// through the cache.
func (s *SalesService) nameIndexes(ctx context.Context) (map[string]string, map[string]string, error) {
	menus, err := s.cachedTable(ctx, domain.TableMenuItems)
	if err != nil {
		return nil, nil, fmt.Errorf("read menu items: %w", err)
	}
	types, err := s.cachedTable(ctx, domain.TableCustomerTypes)
	if err != nil {
		return nil, nil, fmt.Errorf("read customer types: %w", err)
	}
	return domain.NameIndex(menus), domain.NameIndex(types), nil
}
