package service

import (
	"context"
	"fmt"

	"github.com/jmpinto/eventos-escuteiros/internal/domain"
	"github.com/jmpinto/eventos-escuteiros/internal/infra/observability"
	"github.com/jmpinto/eventos-escuteiros/internal/port"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"
)

var adminTracer = otel.Tracer("service/admin")

// AdminService handles the administrator screens: events, menu items,
// prices, customer types and users. Every handler behind it is gated on
// the Administrador role.
type AdminService struct {
	gateway port.TableGateway
	cache   port.TableCache
	metrics *observability.Metrics
	logger  *zap.Logger
}

// NewAdminService creates the administration service.
func NewAdminService(gateway port.TableGateway, cache port.TableCache, metrics *observability.Metrics, logger *zap.Logger) *AdminService {
	return &AdminService{gateway: gateway, cache: cache, metrics: metrics, logger: logger}
}

func (s *AdminService) cachedTable(ctx context.Context, table string) ([]domain.Record, error) {
	return readCached(ctx, s.gateway, s.cache, s.metrics, table)
}

// ============================================================
// Events
// ============================================================

// ListEvents returns every event, active or not.
func (s *AdminService) ListEvents(ctx context.Context) ([]domain.Event, error) {
	ctx, span := adminTracer.Start(ctx, "AdminService.ListEvents")
	defer span.End()

	records, err := s.cachedTable(ctx, domain.TableEvents)
	if err != nil {
		return nil, err
	}
	events := make([]domain.Event, 0, len(records))
	for _, r := range records {
		events = append(events, domain.EventFromRecord(r))
	}
	return events, nil
}

// CreateEvent registers a new event.
func (s *AdminService) CreateEvent(ctx context.Context, req *domain.UpsertEventRequest) (*domain.Event, error) {
	ctx, span := adminTracer.Start(ctx, "AdminService.CreateEvent")
	defer span.End()

	if req.Name == "" {
		return nil, &domain.ErrValidation{Field: "name", Message: "required"}
	}

	record, err := s.gateway.Create(ctx, domain.TableEvents, map[string]any{
		domain.FieldName:     req.Name,
		domain.FieldDate:     req.Date,
		domain.FieldLocation: req.Location,
		domain.FieldActive:   req.Active,
	})
	if err != nil {
		s.metrics.IncrRemoteError(domain.TableEvents)
		return nil, err
	}
	s.cache.Flush()
	s.metrics.IncrRecordWritten(domain.TableEvents)

	s.logger.Info("event created",
		zap.String("event_id", record.ID()),
		zap.String("name", req.Name),
	)
	event := domain.EventFromRecord(record)
	return &event, nil
}

// UpdateEvent edits an event.
func (s *AdminService) UpdateEvent(ctx context.Context, id string, req *domain.UpsertEventRequest) (*domain.Event, error) {
	ctx, span := adminTracer.Start(ctx, "AdminService.UpdateEvent")
	defer span.End()
	span.SetAttributes(attribute.String("event.id", id))

	if req.Name == "" {
		return nil, &domain.ErrValidation{Field: "name", Message: "required"}
	}

	record, err := s.gateway.Update(ctx, domain.TableEvents, id, map[string]any{
		domain.FieldName:     req.Name,
		domain.FieldDate:     req.Date,
		domain.FieldLocation: req.Location,
		domain.FieldActive:   req.Active,
	})
	if err != nil {
		s.metrics.IncrRemoteError(domain.TableEvents)
		return nil, err
	}
	s.cache.Flush()

	event := domain.EventFromRecord(record)
	return &event, nil
}

// DeleteEvent removes an event record.
func (s *AdminService) DeleteEvent(ctx context.Context, id string) error {
	ctx, span := adminTracer.Start(ctx, "AdminService.DeleteEvent")
	defer span.End()

	if _, err := s.gateway.Delete(ctx, domain.TableEvents, id); err != nil {
		s.metrics.IncrRemoteError(domain.TableEvents)
		return err
	}
	s.cache.Flush()
	return nil
}

// ============================================================
// Menu items
// ============================================================

// ListMenuItems returns the active event's menu items.
func (s *AdminService) ListMenuItems(ctx context.Context, session *domain.Session) ([]domain.MenuItem, error) {
	ctx, span := adminTracer.Start(ctx, "AdminService.ListMenuItems")
	defer span.End()

	records, err := s.cachedTable(ctx, domain.TableMenuItems)
	if err != nil {
		return nil, err
	}
	items := make([]domain.MenuItem, 0)
	for _, r := range domain.FilterByEvent(records, session.ActiveEventID) {
		items = append(items, domain.MenuItemFromRecord(r))
	}
	return items, nil
}

// CreateMenuItem adds a menu item to the active event.
func (s *AdminService) CreateMenuItem(ctx context.Context, session *domain.Session, req *domain.UpsertMenuItemRequest) (*domain.MenuItem, error) {
	ctx, span := adminTracer.Start(ctx, "AdminService.CreateMenuItem")
	defer span.End()

	if req.Name == "" {
		return nil, &domain.ErrValidation{Field: "name", Message: "required"}
	}

	record, err := s.gateway.Create(ctx, domain.TableMenuItems, map[string]any{
		domain.FieldName:        req.Name,
		domain.FieldDescription: req.Description,
		domain.FieldActive:      req.Active,
		domain.FieldEvent:       []string{session.ActiveEventID},
	})
	if err != nil {
		s.metrics.IncrRemoteError(domain.TableMenuItems)
		return nil, err
	}
	s.cache.Flush()
	s.metrics.IncrRecordWritten(domain.TableMenuItems)

	item := domain.MenuItemFromRecord(record)
	return &item, nil
}

// UpdateMenuItem edits a menu item. The owning event never changes.
func (s *AdminService) UpdateMenuItem(ctx context.Context, id string, req *domain.UpsertMenuItemRequest) (*domain.MenuItem, error) {
	ctx, span := adminTracer.Start(ctx, "AdminService.UpdateMenuItem")
	defer span.End()

	if req.Name == "" {
		return nil, &domain.ErrValidation{Field: "name", Message: "required"}
	}

	record, err := s.gateway.Update(ctx, domain.TableMenuItems, id, map[string]any{
		domain.FieldName:        req.Name,
		domain.FieldDescription: req.Description,
		domain.FieldActive:      req.Active,
	})
	if err != nil {
		s.metrics.IncrRemoteError(domain.TableMenuItems)
		return nil, err
	}
	s.cache.Flush()

	item := domain.MenuItemFromRecord(record)
	return &item, nil
}

// DeleteMenuItem removes a menu item record.
func (s *AdminService) DeleteMenuItem(ctx context.Context, id string) error {
	ctx, span := adminTracer.Start(ctx, "AdminService.DeleteMenuItem")
	defer span.End()

	if _, err := s.gateway.Delete(ctx, domain.TableMenuItems, id); err != nil {
		s.metrics.IncrRemoteError(domain.TableMenuItems)
		return err
	}
	s.cache.Flush()
	return nil
}

// ============================================================
// Prices
// ============================================================

// ListPrices returns the active event's price entries.
func (s *AdminService) ListPrices(ctx context.Context, session *domain.Session) ([]domain.Price, error) {
	ctx, span := adminTracer.Start(ctx, "AdminService.ListPrices")
	defer span.End()

	records, err := s.cachedTable(ctx, domain.TablePrices)
	if err != nil {
		return nil, err
	}
	prices := make([]domain.Price, 0)
	for _, r := range domain.FilterByEvent(records, session.ActiveEventID) {
		prices = append(prices, domain.PriceFromRecord(r))
	}
	return prices, nil
}

// CreatePrice links a (menu item, customer type) pair of the active event
// to a unit price. Orders created afterwards resolve against it; existing
// orders keep their value.
func (s *AdminService) CreatePrice(ctx context.Context, session *domain.Session, req *domain.UpsertPriceRequest) (*domain.Price, error) {
	ctx, span := adminTracer.Start(ctx, "AdminService.CreatePrice")
	defer span.End()

	if req.MenuItemID == "" {
		return nil, &domain.ErrValidation{Field: "menuItemId", Message: "required"}
	}
	if req.CustomerTypeID == "" {
		return nil, &domain.ErrValidation{Field: "customerTypeId", Message: "required"}
	}
	if req.UnitPrice <= 0 {
		return nil, &domain.ErrValidation{Field: "unitPrice", Message: "must be positive"}
	}

	record, err := s.gateway.Create(ctx, domain.TablePrices, map[string]any{
		domain.FieldMenuItem:     []string{req.MenuItemID},
		domain.FieldCustomerType: []string{req.CustomerTypeID},
		domain.FieldEvent:        []string{session.ActiveEventID},
		"Preço (€)":              req.UnitPrice,
	})
	if err != nil {
		s.metrics.IncrRemoteError(domain.TablePrices)
		return nil, err
	}
	s.cache.Flush()
	s.metrics.IncrRecordWritten(domain.TablePrices)

	price := domain.PriceFromRecord(record)
	return &price, nil
}

// UpdatePrice changes the unit price of an entry.
func (s *AdminService) UpdatePrice(ctx context.Context, id string, req *domain.UpsertPriceRequest) (*domain.Price, error) {
	ctx, span := adminTracer.Start(ctx, "AdminService.UpdatePrice")
	defer span.End()

	if req.UnitPrice <= 0 {
		return nil, &domain.ErrValidation{Field: "unitPrice", Message: "must be positive"}
	}

	record, err := s.gateway.Update(ctx, domain.TablePrices, id, map[string]any{
		"Preço (€)": req.UnitPrice,
	})
	if err != nil {
		s.metrics.IncrRemoteError(domain.TablePrices)
		return nil, err
	}
	s.cache.Flush()

	price := domain.PriceFromRecord(record)
	return &price, nil
}

// DeletePrice removes a price entry.
func (s *AdminService) DeletePrice(ctx context.Context, id string) error {
	ctx, span := adminTracer.Start(ctx, "AdminService.DeletePrice")
	defer span.End()

	if _, err := s.gateway.Delete(ctx, domain.TablePrices, id); err != nil {
		s.metrics.IncrRemoteError(domain.TablePrices)
		return err
	}
	s.cache.Flush()
	return nil
}

// ============================================================
// Customer types
// ============================================================

// ListCustomerTypes returns every customer type; they are global, not
// event-scoped.
func (s *AdminService) ListCustomerTypes(ctx context.Context) ([]domain.CustomerType, error) {
	ctx, span := adminTracer.Start(ctx, "AdminService.ListCustomerTypes")
	defer span.End()

	records, err := s.cachedTable(ctx, domain.TableCustomerTypes)
	if err != nil {
		return nil, err
	}
	types := make([]domain.CustomerType, 0, len(records))
	for _, r := range records {
		types = append(types, domain.CustomerTypeFromRecord(r))
	}
	return types, nil
}

func validateCustomerType(req *domain.UpsertCustomerTypeRequest) error {
	if req.Name == "" {
		return &domain.ErrValidation{Field: "name", Message: "required"}
	}
	if req.DiscountPct < 0 || req.DiscountPct > 100 {
		return &domain.ErrValidation{Field: "discountPct", Message: "must be between 0 and 100"}
	}
	return nil
}

// CreateCustomerType adds a customer category.
func (s *AdminService) CreateCustomerType(ctx context.Context, req *domain.UpsertCustomerTypeRequest) (*domain.CustomerType, error) {
	ctx, span := adminTracer.Start(ctx, "AdminService.CreateCustomerType")
	defer span.End()

	if err := validateCustomerType(req); err != nil {
		return nil, err
	}

	record, err := s.gateway.Create(ctx, domain.TableCustomerTypes, map[string]any{
		domain.FieldName:     req.Name,
		domain.FieldDiscount: req.DiscountPct,
		domain.FieldColor:    req.Color,
	})
	if err != nil {
		s.metrics.IncrRemoteError(domain.TableCustomerTypes)
		return nil, err
	}
	s.cache.Flush()
	s.metrics.IncrRecordWritten(domain.TableCustomerTypes)

	ct := domain.CustomerTypeFromRecord(record)
	return &ct, nil
}

// UpdateCustomerType edits a customer category.
func (s *AdminService) UpdateCustomerType(ctx context.Context, id string, req *domain.UpsertCustomerTypeRequest) (*domain.CustomerType, error) {
	ctx, span := adminTracer.Start(ctx, "AdminService.UpdateCustomerType")
	defer span.End()

	if err := validateCustomerType(req); err != nil {
		return nil, err
	}

	record, err := s.gateway.Update(ctx, domain.TableCustomerTypes, id, map[string]any{
		domain.FieldName:     req.Name,
		domain.FieldDiscount: req.DiscountPct,
		domain.FieldColor:    req.Color,
	})
	if err != nil {
		s.metrics.IncrRemoteError(domain.TableCustomerTypes)
		return nil, err
	}
	s.cache.Flush()

	ct := domain.CustomerTypeFromRecord(record)
	return &ct, nil
}

// DeleteCustomerType removes a customer category.
func (s *AdminService) DeleteCustomerType(ctx context.Context, id string) error {
	ctx, span := adminTracer.Start(ctx, "AdminService.DeleteCustomerType")
	defer span.End()

	if _, err := s.gateway.Delete(ctx, domain.TableCustomerTypes, id); err != nil {
		s.metrics.IncrRemoteError(domain.TableCustomerTypes)
		return err
	}
	s.cache.Flush()
	return nil
}

// ============================================================
// Users
// ============================================================

// ListUsers returns every application account, passwords stripped.
func (s *AdminService) ListUsers(ctx context.Context) ([]domain.User, error) {
	ctx, span := adminTracer.Start(ctx, "AdminService.ListUsers")
	defer span.End()

	records, err := s.cachedTable(ctx, domain.TableUsers)
	if err != nil {
		return nil, err
	}
	users := make([]domain.User, 0, len(records))
	for _, r := range records {
		users = append(users, domain.UserFromRecord(r))
	}
	return users, nil
}

func validateRole(role string) error {
	if role != domain.RoleOperator && role != domain.RoleAdministrator {
		return &domain.ErrValidation{Field: "role", Message: "must be Operador or Administrador"}
	}
	return nil
}

// CreateUser registers an application account. The password is stored
// bcrypt-hashed; the plain value never reaches the remote base.
func (s *AdminService) CreateUser(ctx context.Context, req *domain.UpsertUserRequest) (*domain.User, error) {
	ctx, span := adminTracer.Start(ctx, "AdminService.CreateUser")
	defer span.End()

	if req.Name == "" || req.Email == "" || req.Password == "" {
		return nil, &domain.ErrValidation{Field: "user", Message: "Preencha nome, email e password"}
	}
	if err := validateRole(req.Role); err != nil {
		return nil, err
	}

	existing, err := s.gateway.FindFirst(ctx, domain.TableUsers, map[string]any{
		domain.FieldEmail: req.Email,
	})
	if err != nil {
		return nil, fmt.Errorf("lookup user: %w", err)
	}
	if existing != nil {
		return nil, &domain.ErrConflict{Message: "Já existe um utilizador com este email"}
	}

	hash, err := HashPassword(req.Password)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	record, err := s.gateway.Create(ctx, domain.TableUsers, map[string]any{
		domain.FieldName:     req.Name,
		domain.FieldEmail:    req.Email,
		domain.FieldPassword: hash,
		domain.FieldRole:     req.Role,
		domain.FieldActive:   req.Active,
		domain.FieldEvents:   req.PermittedEventIDs,
	})
	if err != nil {
		s.metrics.IncrRemoteError(domain.TableUsers)
		return nil, err
	}
	s.cache.Flush()
	s.metrics.IncrRecordWritten(domain.TableUsers)

	s.logger.Info("user created",
		zap.String("user_id", record.ID()),
		zap.String("role", req.Role),
	)
	user := domain.UserFromRecord(record)
	return &user, nil
}

// UpdateUser edits an account. A blank password keeps the stored one.
func (s *AdminService) UpdateUser(ctx context.Context, id string, req *domain.UpsertUserRequest) (*domain.User, error) {
	ctx, span := adminTracer.Start(ctx, "AdminService.UpdateUser")
	defer span.End()
	span.SetAttributes(attribute.String("user.id", id))

	if req.Name == "" || req.Email == "" {
		return nil, &domain.ErrValidation{Field: "user", Message: "Preencha nome e email"}
	}
	if err := validateRole(req.Role); err != nil {
		return nil, err
	}

	fields := map[string]any{
		domain.FieldName:   req.Name,
		domain.FieldEmail:  req.Email,
		domain.FieldRole:   req.Role,
		domain.FieldActive: req.Active,
		domain.FieldEvents: req.PermittedEventIDs,
	}
	if req.Password != "" {
		hash, err := HashPassword(req.Password)
		if err != nil {
			return nil, fmt.Errorf("hash password: %w", err)
		}
		fields[domain.FieldPassword] = hash
	}

	record, err := s.gateway.Update(ctx, domain.TableUsers, id, fields)
	if err != nil {
		s.metrics.IncrRemoteError(domain.TableUsers)
		return nil, err
	}
	s.cache.Flush()

	user := domain.UserFromRecord(record)
	return &user, nil
}

// DeleteUser removes an account.
func (s *AdminService) DeleteUser(ctx context.Context, id string) error {
	ctx, span := adminTracer.Start(ctx, "AdminService.DeleteUser")
	defer span.End()

	if _, err := s.gateway.Delete(ctx, domain.TableUsers, id); err != nil {
		s.metrics.IncrRemoteError(domain.TableUsers)
		return err
	}
	s.cache.Flush()
	return nil
}
