package catalog

import (
	"errors"
	"fmt"
)

var (
	// ErrEmptyCatalog is returned when a data file defines no orders
	ErrEmptyCatalog = errors.New("catalog has no orders")
	// ErrDuplicateOrder is returned when two orders share an id
	ErrDuplicateOrder = errors.New("duplicate order id")
)

// Order is an immutable catalog entry
type Order struct {
	ID              string `yaml:"id"`
	Product         string `yaml:"product"`
	PriceMinorUnits int64  `yaml:"price"`
	DeliveryDate    string `yaml:"delivery"` // ISO date, e.g. 2025-10-01
}

// Price formats the price in major units, e.g. 2999 -> "29.99"
func (o Order) Price() string {
	return fmt.Sprintf("%d.%02d", o.PriceMinorUnits/100, o.PriceMinorUnits%100)
}

// Catalog maps order ids to orders. It is read-only after construction.
type Catalog struct {
	orders map[string]Order
}

// NewCatalog builds a catalog from a list of orders
func NewCatalog(orders []Order) (*Catalog, error) {
	if len(orders) == 0 {
		return nil, ErrEmptyCatalog
	}

	m := make(map[string]Order, len(orders))
	for _, o := range orders {
		if o.ID == "" {
			return nil, fmt.Errorf("order for %q has no id", o.Product)
		}
		if _, exists := m[o.ID]; exists {
			return nil, fmt.Errorf("%w: %s", ErrDuplicateOrder, o.ID)
		}
		m[o.ID] = o
	}

	return &Catalog{orders: m}, nil
}

// Lookup finds an order by exact id match
func (c *Catalog) Lookup(orderID string) (Order, bool) {
	o, ok := c.orders[orderID]
	return o, ok
}

// Len returns the number of orders
func (c *Catalog) Len() int {
	return len(c.orders)
}
