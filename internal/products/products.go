package products

import (
	"context"
	"fmt"

	"storefront/internal/stores/jsonstore"
	"storefront/pkg/apperr"
)

// Product is the catalog entry served to clients.
type Product = jsonstore.Product

type store interface {
	View(ctx context.Context, fn func(*jsonstore.Document) error) error
}

// Conf is the read-only catalog service.
type Conf struct {
	store store
}

func NewConf(s store) (Conf, error) {
	if s == nil {
		return Conf{}, fmt.Errorf("store is nil")
	}
	return Conf{store: s}, nil
}

// ListProducts returns every product in store insertion order.
func (c *Conf) ListProducts(ctx context.Context) ([]Product, error) {
	var list []Product
	err := c.store.View(ctx, func(d *jsonstore.Document) error {
		list = append([]Product{}, d.Products...)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return list, nil
}

// GetProduct returns the product with id.
func (c *Conf) GetProduct(ctx context.Context, id int64) (Product, error) {
	var product Product
	err := c.store.View(ctx, func(d *jsonstore.Document) error {
		p := d.ProductByID(id)
		if p == nil {
			return apperr.New(apperr.ErrNotFound, "Product not found")
		}
		product = *p
		return nil
	})
	return product, err
}
