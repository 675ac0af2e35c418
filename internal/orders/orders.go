package orders

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"github.com/shopspring/decimal"

	"storefront/internal/stores/jsonstore"
	"storefront/internal/stores/kafka"
	"storefront/pkg/apperr"
	"storefront/pkg/ctxmanage"
)

type store interface {
	View(ctx context.Context, fn func(*jsonstore.Document) error) error
	Update(ctx context.Context, fn func(*jsonstore.Document) error) error
	NextID() int64
}

// Conf is the order service.
type Conf struct {
	store    store
	producer kafka.Producer
	now      func() time.Time
}

// NewConf builds the service. producer may be nil to disable events.
func NewConf(s store, producer kafka.Producer) (*Conf, error) {
	if s == nil {
		return nil, fmt.Errorf("store is nil")
	}
	return &Conf{store: s, producer: producer, now: time.Now}, nil
}

// PlaceOrder prices the cart against current stock, decrements stock and
// records the order in one store write. Any failing line rejects the whole
// order and leaves stock untouched.
func (c *Conf) PlaceOrder(ctx context.Context, email string, req NewOrder) (Order, error) {
	if len(req.Items) == 0 {
		return Order{}, apperr.New(apperr.ErrValidation, "Product list is required")
	}
	for _, item := range req.Items {
		if item.Quantity < 1 {
			return Order{}, apperr.Newf(apperr.ErrValidation, "Invalid quantity for product %d", item.ProductID)
		}
	}
	address := normalizeAddress(req.Address)
	if !json.Valid(address) {
		return Order{}, apperr.New(apperr.ErrValidation, "Invalid shipping address")
	}

	var order Order
	err := c.store.Update(ctx, func(d *jsonstore.Document) error {
		cust := d.CustomerByEmail(email)
		if cust == nil {
			return apperr.New(apperr.ErrNotFound, "Customer not found")
		}

		// Repeated lines for one product draw from the same stock.
		requested := make(map[int64]int, len(req.Items))
		lines := make([]LineItem, 0, len(req.Items))
		total := decimal.Zero
		for _, item := range req.Items {
			product := d.ProductByID(item.ProductID)
			if product == nil {
				return apperr.Newf(apperr.ErrNotFound, "Product with ID %d not found", item.ProductID)
			}
			// Compared against the stock left so the running sum never overflows.
			if item.Quantity > product.Stock-requested[product.ID] {
				return apperr.Newf(apperr.ErrInsufficientStock, "Insufficient stock for product %s", product.Name)
			}
			requested[product.ID] += item.Quantity
			subtotal := product.Price.Mul(decimal.NewFromInt(int64(item.Quantity)))
			total = total.Add(subtotal)
			lines = append(lines, LineItem{
				ProductID: product.ID,
				Name:      product.Name,
				UnitPrice: product.Price,
				Quantity:  item.Quantity,
				Subtotal:  subtotal,
			})
		}

		for id, qty := range requested {
			d.ProductByID(id).Stock -= qty
		}

		now := c.now().UTC()
		order = Order{
			ID:            c.store.NextID(),
			CustomerEmail: email,
			Items:         lines,
			Total:         total,
			Address:       address,
			Notes:         req.Notes,
			Status:        jsonstore.OrderStatusPending,
			CreatedAt:     now,
			UpdatedAt:     now,
		}
		d.Orders = append(d.Orders, order)
		cust.OrderIDs = append(cust.OrderIDs, order.ID)
		return nil
	})
	if err != nil {
		return Order{}, err
	}

	event := kafka.OrderPlacedEvent{
		OrderID:       order.ID,
		CustomerEmail: order.CustomerEmail,
		Total:         order.Total.String(),
		CreatedAt:     order.CreatedAt,
	}
	for _, line := range order.Items {
		event.Items = append(event.Items, kafka.OrderEventItem{ProductID: line.ProductID, Quantity: line.Quantity})
	}
	kafka.PublishAsync(c.producer, kafka.TopicOrderPlaced, strconv.FormatInt(order.ID, 10), event, ctxmanage.GetTraceId(ctx))

	return order, nil
}

// ListOrdersFor returns the orders placed by email, in store order.
func (c *Conf) ListOrdersFor(ctx context.Context, email string) ([]Order, error) {
	list := []Order{}
	err := c.store.View(ctx, func(d *jsonstore.Document) error {
		for _, o := range d.Orders {
			if o.CustomerEmail == email {
				list = append(list, o)
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return list, nil
}

func normalizeAddress(raw json.RawMessage) json.RawMessage {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		return json.RawMessage("{}")
	}
	return append(json.RawMessage{}, trimmed...)
}
