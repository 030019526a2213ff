package cart

import (
	"context"
	"time"

	"motoshop.store/moto-web/internal/web/apiclient"
)

// StaticService is an in-memory Service for tests and backend-less runs.
type StaticService struct {
	Items   []Item
	Catalog map[int64]Item // known products addable to the cart
	Stock   map[int64]int

	// GetErr / MutateErr force failures for error-path tests.
	GetErr    error
	MutateErr error
}

// NewStaticService constructs an empty StaticService with a small catalog.
func NewStaticService() *StaticService {
	return &StaticService{
		Catalog: map[int64]Item{
			1: {ProductID: 1, Name: "Trail Helmet", UnitPrice: 149.90},
			2: {ProductID: 2, Name: "Riding Gloves", UnitPrice: 39.50},
			7: {ProductID: 7, Name: "Chain Lube", UnitPrice: 12.75},
		},
		Stock: map[int64]int{1: 10, 2: 25, 7: 40},
	}
}

// Get returns a normalized copy of the stored cart.
func (s *StaticService) Get(ctx context.Context, token string) ([]Item, error) {
	if s.GetErr != nil {
		return nil, s.GetErr
	}
	items := append([]Item(nil), s.Items...)
	return NormalizeItems(items), nil
}

// Add appends or increments a line, honouring the stock table.
func (s *StaticService) Add(ctx context.Context, token string, productID int64, quantity int) (string, error) {
	if s.MutateErr != nil {
		return "", s.MutateErr
	}
	product, ok := s.Catalog[productID]
	if !ok {
		return "", &apiclient.Error{Kind: apiclient.KindNotFound, Status: 404, Message: "product not found"}
	}
	current := 0
	if line := Find(s.Items, productID); line != nil {
		current = line.Quantity
	}
	if stock, tracked := s.Stock[productID]; tracked && current+quantity > stock {
		return "", &apiclient.Error{Kind: apiclient.KindInsufficientStock, Status: 409, Message: "insufficient stock"}
	}

	if line := Find(s.Items, productID); line != nil {
		line.Quantity += quantity
		line.Normalize()
	} else {
		item := product
		item.Quantity = quantity
		item.Normalize()
		s.Items = append(s.Items, item)
	}
	return "product added to cart", nil
}

// UpdateQuantity sets a line's quantity; zero or less removes the line.
func (s *StaticService) UpdateQuantity(ctx context.Context, token string, productID int64, quantity int) (string, error) {
	if quantity <= 0 {
		return s.Remove(ctx, token, productID)
	}
	if s.MutateErr != nil {
		return "", s.MutateErr
	}
	line := Find(s.Items, productID)
	if line == nil {
		return "", &apiclient.Error{Kind: apiclient.KindNotFound, Status: 404, Message: "product not in cart"}
	}
	if stock, tracked := s.Stock[productID]; tracked && quantity > stock {
		return "", &apiclient.Error{Kind: apiclient.KindInsufficientStock, Status: 409, Message: "insufficient stock"}
	}
	line.Quantity = quantity
	line.Normalize()
	return "quantity updated", nil
}

// Remove drops a line.
func (s *StaticService) Remove(ctx context.Context, token string, productID int64) (string, error) {
	if s.MutateErr != nil {
		return "", s.MutateErr
	}
	for idx := range s.Items {
		if s.Items[idx].ProductID == productID {
			s.Items = append(s.Items[:idx], s.Items[idx+1:]...)
			return "product removed from cart", nil
		}
	}
	return "product removed from cart", nil
}

// Clear empties the cart.
func (s *StaticService) Clear(ctx context.Context, token string) (string, error) {
	if s.MutateErr != nil {
		return "", s.MutateErr
	}
	s.Items = nil
	return "cart cleared", nil
}

// Count sums the stored quantities.
func (s *StaticService) Count(ctx context.Context, token string) int {
	return ItemCount(s.Items)
}

// MemoryMirror is an in-process Mirror used by tests.
type MemoryMirror struct {
	Items     []Item
	OpID      string
	WrittenAt time.Time
}

// Write implements Mirror.
func (m *MemoryMirror) Write(items []Item, opID string, at time.Time) {
	m.Items = append([]Item(nil), items...)
	m.OpID = opID
	m.WrittenAt = at
}

// Read implements Mirror.
func (m *MemoryMirror) Read() []Item {
	return append([]Item(nil), m.Items...)
}

// Clear implements Mirror.
func (m *MemoryMirror) Clear() {
	m.Items = nil
	m.OpID = ""
	m.WrittenAt = time.Time{}
}
