// Package domain holds the entities, records and error types shared by
// every layer of the event-management service.
package domain

// Table names as configured in the remote base. Table and column names are
// Portuguese because the base predates this service and is maintained
// directly by the group's volunteers.
const (
	TableEvents        = "Eventos"
	TableUsers         = "Utilizadores"
	TableMenuItems     = "Ementas"
	TableCustomerTypes = "Tipos de Cliente"
	TablePrices        = "Preços"
	TableOrders        = "Pedidos"
	TableReceipts      = "Recebimentos"
	TableWithdrawals   = "Sangria de Caixa"
)

// Field names shared across tables.
const (
	FieldName         = "Nome"
	FieldEmail        = "Email"
	FieldPassword     = "Password"
	FieldRole         = "Perfil"
	FieldActive       = "Ativo"
	FieldEvents       = "Eventos"
	FieldEvent        = "Evento"
	FieldMenuItem     = "Ementa"
	FieldCustomerType = "TipoCliente"
	FieldQuantity     = "Quantidade"
	FieldValue        = "Valor"
	FieldPaid         = "Pago"
	FieldDate         = "Data"
	FieldLocation     = "Local"
	FieldDescription  = "Descrição"
	FieldDiscount     = "Desconto %"
	FieldColor        = "Cor"
	FieldOrder        = "Pedido"
	FieldResponsible  = "Responsável"
	FieldNotes        = "Observações"
)

// User roles.
const (
	RoleOperator      = "Operador"
	RoleAdministrator = "Administrador"
)

// Event is a single scouting gathering, the scoping unit for orders, menus
// and prices.
type Event struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Date     string `json:"date,omitempty"`
	Location string `json:"location,omitempty"`
	Active   bool   `json:"active"`
}

// EventFromRecord maps a remote Eventos row.
func EventFromRecord(r Record) Event {
	return Event{
		ID:       r.ID(),
		Name:     r.String(FieldName),
		Date:     r.String(FieldDate),
		Location: r.String(FieldLocation),
		Active:   r.Bool(FieldActive),
	}
}

// MenuItem is a food/drink entry offered at one event.
type MenuItem struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
	Active      bool   `json:"active"`
	EventID     string `json:"eventId,omitempty"`
}

// MenuItemFromRecord maps a remote Ementas row.
func MenuItemFromRecord(r Record) MenuItem {
	return MenuItem{
		ID:          r.ID(),
		Name:        r.String(FieldName),
		Description: r.String(FieldDescription),
		Active:      r.Bool(FieldActive),
		EventID:     r.FirstLink(FieldEvent),
	}
}

// CustomerType is a global customer category with an informational discount
// percentage and a color tag used by the UI.
type CustomerType struct {
	ID          string  `json:"id"`
	Name        string  `json:"name"`
	DiscountPct float64 `json:"discountPct"`
	Color       string  `json:"color,omitempty"`
}

// CustomerTypeFromRecord maps a remote Tipos de Cliente row.
func CustomerTypeFromRecord(r Record) CustomerType {
	return CustomerType{
		ID:          r.ID(),
		Name:        r.String(FieldName),
		DiscountPct: r.Number(FieldDiscount),
		Color:       r.String(FieldColor),
	}
}

// Price links (menu item, customer type, event) to a unit price.
type Price struct {
	ID             string  `json:"id"`
	MenuItemID     string  `json:"menuItemId"`
	CustomerTypeID string  `json:"customerTypeId"`
	EventID        string  `json:"eventId"`
	UnitPrice      float64 `json:"unitPrice"`
}

// PriceFromRecord maps a remote Preços row.
func PriceFromRecord(r Record) Price {
	return Price{
		ID:             r.ID(),
		MenuItemID:     r.FirstLink(FieldMenuItem),
		CustomerTypeID: r.FirstLink(FieldCustomerType),
		EventID:        r.FirstLink(FieldEvent),
		UnitPrice:      UnitPriceOf(r),
	}
}

// Order is a request for a quantity of a menu item by a customer type.
// Value is fixed at creation time (quantity × the unit price resolved at
// that moment) and never recomputed when prices change later.
type Order struct {
	ID           string  `json:"id"`
	Date         string  `json:"date,omitempty"`
	MenuItem     string  `json:"menuItem"`
	CustomerType string  `json:"customerType"`
	Quantity     float64 `json:"quantity"`
	Value        float64 `json:"value"`
	Paid         bool    `json:"paid"`
}

// OrderFromRecord maps a remote Pedidos row, resolving link ids to display
// names through the given indexes.
func OrderFromRecord(r Record, menuNames, typeNames map[string]string) Order {
	return Order{
		ID:           r.ID(),
		Date:         r.String(FieldDate),
		MenuItem:     DisplayName(r, FieldMenuItem, menuNames),
		CustomerType: DisplayName(r, FieldCustomerType, typeNames),
		Quantity:     r.Number(FieldQuantity),
		Value:        r.Number(FieldValue),
		Paid:         r.Bool(FieldPaid),
	}
}

// Receipt settles exactly one order.
type Receipt struct {
	ID      string  `json:"id"`
	OrderID string  `json:"orderId"`
	EventID string  `json:"eventId"`
	Value   float64 `json:"value"`
}

// ReceiptFromRecord maps a remote Recebimentos row.
func ReceiptFromRecord(r Record) Receipt {
	return Receipt{
		ID:      r.ID(),
		OrderID: r.FirstLink(FieldOrder),
		EventID: r.FirstLink(FieldEvent),
		Value:   r.Number(FieldValue),
	}
}

// CashWithdrawal is a manual cash-out record, informational only.
type CashWithdrawal struct {
	ID          string  `json:"id"`
	EventID     string  `json:"eventId"`
	Value       float64 `json:"value"`
	Responsible string  `json:"responsible"`
	Notes       string  `json:"notes,omitempty"`
}

// WithdrawalFromRecord maps a remote Sangria de Caixa row.
func WithdrawalFromRecord(r Record) CashWithdrawal {
	return CashWithdrawal{
		ID:          r.ID(),
		EventID:     r.FirstLink(FieldEvent),
		Value:       r.Number(FieldValue),
		Responsible: r.String(FieldResponsible),
		Notes:       r.String(FieldNotes),
	}
}

// User is an application account. The stored password never leaves the
// service; responses always use this view.
type User struct {
	ID                string   `json:"id"`
	Name              string   `json:"name"`
	Email             string   `json:"email"`
	Role              string   `json:"role"`
	Active            bool     `json:"active"`
	PermittedEventIDs []string `json:"permittedEventIds"`
}

// UserFromRecord maps a remote Utilizadores row, dropping the password.
func UserFromRecord(r Record) User {
	return User{
		ID:                r.ID(),
		Name:              r.String(FieldName),
		Email:             r.String(FieldEmail),
		Role:              r.String(FieldRole),
		Active:            r.Bool(FieldActive),
		PermittedEventIDs: r.Links(FieldEvents),
	}
}

// DashboardSummary is the aggregated sales view for the active event.
type DashboardSummary struct {
	TotalOrders    float64      `json:"totalOrders"`
	TotalValue     float64      `json:"totalValue"`
	ByMenuItem     []GroupTotal `json:"byMenuItem"`
	ByCustomerType []GroupTotal `json:"byCustomerType"`
}
