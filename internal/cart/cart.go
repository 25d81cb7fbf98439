// Package cart keeps a visitor's cart lines and writes every change through
// an injected Persistence before it becomes visible.
package cart

import (
	"fmt"
	"sync"

	"github.com/shopspring/decimal"
)

// LineItem is one product in the cart. At most one line exists per ID.
type LineItem struct {
	ID        string          `json:"id"`
	Name      string          `json:"name"`
	UnitPrice decimal.Decimal `json:"price"`
	Quantity  int             `json:"quantity"`
	ImageURL  string          `json:"image_url,omitempty"`
}

// Product is what a shopper adds; the store does not validate it.
type Product struct {
	ID       string
	Name     string
	Price    decimal.Decimal
	ImageURL string
}

// Persistence stores the full list of lines for one cart.
type Persistence interface {
	Load() ([]LineItem, error)
	Save(items []LineItem) error
	Clear() error
}

// Store is safe for concurrent use. Separate stores over the same cart
// must be serialized by the caller, see KeyLocks.
type Store struct {
	mu      sync.Mutex
	persist Persistence
	items   []LineItem
}

// NewStore loads the persisted lines once.
func NewStore(p Persistence) (*Store, error) {
	items, err := p.Load()
	if err != nil {
		return nil, fmt.Errorf("load cart: %w", err)
	}
	return &Store{persist: p, items: items}, nil
}

// AddToCart increments the quantity of an existing line or appends a new one.
func (s *Store) AddToCart(p Product) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	next := cloneItems(s.items)
	if i := indexOf(next, p.ID); i >= 0 {
		next[i].Quantity++
	} else {
		next = append(next, LineItem{ID: p.ID, Name: p.Name, UnitPrice: p.Price, Quantity: 1, ImageURL: p.ImageURL})
	}
	return s.commit(next)
}

// UpdateQuantity sets the quantity of id; n <= 0 removes the line.
// Unknown ids are ignored.
func (s *Store) UpdateQuantity(id string, n int) error {
	if n <= 0 {
		return s.RemoveFromCart(id)
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	i := indexOf(s.items, id)
	if i < 0 {
		return nil
	}
	next := cloneItems(s.items)
	next[i].Quantity = n
	return s.commit(next)
}

// RemoveFromCart drops the line for id. Absent ids cause no write.
func (s *Store) RemoveFromCart(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	i := indexOf(s.items, id)
	if i < 0 {
		return nil
	}
	next := make([]LineItem, 0, len(s.items)-1)
	next = append(next, s.items[:i]...)
	next = append(next, s.items[i+1:]...)
	return s.commit(next)
}

// Clear empties the cart and removes the persisted record.
func (s *Store) Clear() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.persist.Clear(); err != nil {
		return fmt.Errorf("clear cart: %w", err)
	}
	s.items = nil
	return nil
}

// Total is the unrounded sum of unit price × quantity.
func (s *Store) Total() decimal.Decimal {
	s.mu.Lock()
	defer s.mu.Unlock()
	return Subtotal(s.items)
}

func (s *Store) ItemsCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := 0
	for _, it := range s.items {
		n += it.Quantity
	}
	return n
}

// Items returns a copy of the lines in insertion order.
func (s *Store) Items() []LineItem {
	s.mu.Lock()
	defer s.mu.Unlock()
	return cloneItems(s.items)
}

// commit persists next and only then swaps it in. Callers hold s.mu.
func (s *Store) commit(next []LineItem) error {
	if err := s.persist.Save(next); err != nil {
		return fmt.Errorf("save cart: %w", err)
	}
	s.items = next
	return nil
}

// Subtotal sums unit price × quantity over items.
func Subtotal(items []LineItem) decimal.Decimal {
	total := decimal.Zero
	for _, it := range items {
		total = total.Add(it.LineTotal())
	}
	return total
}

func (it LineItem) LineTotal() decimal.Decimal {
	return it.UnitPrice.Mul(decimal.NewFromInt(int64(it.Quantity)))
}

func indexOf(items []LineItem, id string) int {
	for i, it := range items {
		if it.ID == id {
			return i
		}
	}
	return -1
}

func cloneItems(items []LineItem) []LineItem {
	if items == nil {
		return []LineItem{}
	}
	out := make([]LineItem, len(items))
	copy(out, items)
	return out
}
