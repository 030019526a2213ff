package cart

import (
	"context"
	"time"
)

// Item is a single cart line. Subtotal is always derived from
// UnitPrice * Quantity; it is never accepted from outside as-is.
type Item struct {
	ProductID int64
	Name      string
	UnitPrice float64
	Quantity  int
	Subtotal  float64
	ImageURL  string
}

// Normalize recomputes the derived subtotal.
func (i *Item) Normalize() {
	i.Subtotal = i.UnitPrice * float64(i.Quantity)
}

// NormalizeItems recomputes subtotals across a line-item slice in place.
func NormalizeItems(items []Item) []Item {
	for idx := range items {
		items[idx].Normalize()
	}
	return items
}

// Total sums line subtotals.
func Total(items []Item) float64 {
	var total float64
	for _, item := range items {
		total += item.Subtotal
	}
	return total
}

// ItemCount sums line quantities.
func ItemCount(items []Item) int {
	var count int
	for _, item := range items {
		count += item.Quantity
	}
	return count
}

// Find returns the line for the given product, or nil.
func Find(items []Item, productID int64) *Item {
	for idx := range items {
		if items[idx].ProductID == productID {
			return &items[idx]
		}
	}
	return nil
}

// Service talks to the cart endpoints of the backend.
type Service interface {
	Get(ctx context.Context, token string) ([]Item, error)
	Add(ctx context.Context, token string, productID int64, quantity int) (string, error)
	UpdateQuantity(ctx context.Context, token string, productID int64, quantity int) (string, error)
	Remove(ctx context.Context, token string, productID int64) (string, error)
	Clear(ctx context.Context, token string) (string, error)
	Count(ctx context.Context, token string) int
}

// Mirror is the durable read fallback for cart contents, consulted only when
// the backend is unreachable.
type Mirror interface {
	Write(items []Item, opID string, at time.Time)
	Read() []Item
	Clear()
}

// NopMirror discards writes and reads back nothing.
type NopMirror struct{}

// Write implements Mirror.
func (NopMirror) Write([]Item, string, time.Time) {}

// Read implements Mirror.
func (NopMirror) Read() []Item { return nil }

// Clear implements Mirror.
func (NopMirror) Clear() {}
