package kafka

import "time"

const (
	TopicCustomerCreated = `storefront.customer-created`
	TopicOrderPlaced     = `storefront.order-placed`
)

// CustomerCreatedEvent is produced after a successful signup.
type CustomerCreatedEvent struct {
	ID        int64     `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	CreatedAt time.Time `json:"created_at"`
}

// OrderPlacedEvent is produced once per order, after it is persisted.
type OrderPlacedEvent struct {
	OrderID       int64            `json:"order_id"`
	CustomerEmail string           `json:"customer_email"`
	Items         []OrderEventItem `json:"items"`
	Total         string           `json:"total"`
	CreatedAt     time.Time        `json:"created_at"`
}

type OrderEventItem struct {
	ProductID int64 `json:"product_id"`
	Quantity  int   `json:"quantity"`
}
