package orders

import (
	"encoding/json"

	"storefront/internal/stores/jsonstore"
)

type (
	// Order is a placed order as stored and served.
	Order = jsonstore.Order
	// LineItem is one priced line of an Order.
	LineItem = jsonstore.LineItem
)

// ItemRequest is one line of a cart.
type ItemRequest struct {
	ProductID int64 `json:"id"`
	Quantity  int   `json:"quantidade" validate:"required,gt=0"`
}

// NewOrder is the order placement request.
type NewOrder struct {
	Items   []ItemRequest   `json:"produtos" validate:"required,min=1,dive"`
	Address json.RawMessage `json:"endereco"`
	Notes   string          `json:"observacoes"`
}
