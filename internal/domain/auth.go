package domain

// ============================================================
// Request / Response types (matches the dashboard frontend contract)
// ============================================================

// LoginRequest is the body for POST /v1/auth/login.
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// LoginResponse is the body for 200 from POST /v1/auth/login.
type LoginResponse struct {
	Token             string   `json:"token"`
	ExpiresIn         int      `json:"expiresIn"`
	UserID            string   `json:"userId"`
	Name              string   `json:"name"`
	Role              string   `json:"role"`
	PermittedEventIDs []string `json:"permittedEventIds"`
	ActiveEventID     string   `json:"activeEventId,omitempty"`
}

// SetActiveEventRequest is the body for PUT /v1/session/active-event.
type SetActiveEventRequest struct {
	EventID string `json:"eventId"`
}

// CreateOrderRequest is the body for POST /v1/orders.
type CreateOrderRequest struct {
	MenuItemID     string  `json:"menuItemId"`
	CustomerTypeID string  `json:"customerTypeId"`
	Quantity       float64 `json:"quantity"`
}

// CreateWithdrawalRequest is the body for POST /v1/withdrawals.
type CreateWithdrawalRequest struct {
	Value       float64 `json:"value"`
	Responsible string  `json:"responsible"`
	Notes       string  `json:"notes,omitempty"`
}

// UpsertEventRequest is the body for POST /v1/events and PUT /v1/events/{id}.
type UpsertEventRequest struct {
	Name     string `json:"name"`
	Date     string `json:"date,omitempty"`
	Location string `json:"location,omitempty"`
	Active   bool   `json:"active"`
}

// UpsertMenuItemRequest is the body for POST /v1/menus and PUT /v1/menus/{id}.
type UpsertMenuItemRequest struct {
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
	Active      bool   `json:"active"`
}

// UpsertCustomerTypeRequest is the body for customer-type create/update.
type UpsertCustomerTypeRequest struct {
	Name        string  `json:"name"`
	DiscountPct float64 `json:"discountPct"`
	Color       string  `json:"color,omitempty"`
}

// UpsertPriceRequest is the body for price create/update.
type UpsertPriceRequest struct {
	MenuItemID     string  `json:"menuItemId"`
	CustomerTypeID string  `json:"customerTypeId"`
	UnitPrice      float64 `json:"unitPrice"`
}

// UpsertUserRequest is the body for user create/update. Password is
// optional on update: blank keeps the stored one.
type UpsertUserRequest struct {
	Name              string   `json:"name"`
	Email             string   `json:"email"`
	Password          string   `json:"password,omitempty"`
	Role              string   `json:"role"`
	Active            bool     `json:"active"`
	PermittedEventIDs []string `json:"permittedEventIds"`
}
