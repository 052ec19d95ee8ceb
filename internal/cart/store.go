// Package cart is the single source of truth for the shopping cart.
package cart

import (
	"encoding/json"
	"errors"
	"fmt"
	"sync"

	"storefront/internal/kv"
	"storefront/internal/models"
	"storefront/internal/util"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// DefaultKey is the storage key the cart is persisted under
const DefaultKey = "cart"

var ErrInvalidQuantity = errors.New("quantity must be > 0")

// Snapshot is a consistent read of the lines and their derived totals
type Snapshot struct {
	Items      []models.CartLine `json:"items"`
	TotalItems int               `json:"totalItems"`
	TotalPrice decimal.Decimal   `json:"totalPrice"`
	IsOpen     bool              `json:"isOpen"`
}

// Store owns the cart lines and the sidebar visibility flag. Every mutation
// rewrites the full line list to storage.
type Store struct {
	mu      sync.Mutex
	items   []models.CartLine
	isOpen  bool
	storage kv.Store
	key     string
	logger  *zap.Logger
}

// NewStore creates a cart store restored from storage under key. An absent or
// unreadable value yields an empty cart.
func NewStore(storage kv.Store, key string) *Store {
	if storage == nil {
		panic("cart: NewStore called with nil storage")
	}
	if key == "" {
		key = DefaultKey
	}
	s := &Store{
		storage: storage,
		key:     key,
		logger:  util.ComponentLogger("cart"),
	}
	s.items = s.restore()
	return s
}

func (s *Store) restore() []models.CartLine {
	raw, err := s.storage.Get(s.key)
	if errors.Is(err, kv.ErrNotFound) {
		return nil
	}
	if err != nil {
		util.CartRestoreFailuresTotal.Inc()
		s.logger.Warn("Failed to read persisted cart, starting empty", zap.String("key", s.key), zap.Error(err))
		return nil
	}

	var lines []models.CartLine
	if err := json.Unmarshal(raw, &lines); err != nil {
		util.CartRestoreFailuresTotal.Inc()
		s.logger.Warn("Persisted cart is corrupt, starting empty", zap.String("key", s.key), zap.Error(err))
		return nil
	}

	// Re-establish invariants on whatever was stored
	var out []models.CartLine
	for _, l := range lines {
		if l.Quantity <= 0 {
			continue
		}
		if i := indexOf(out, l.Key()); i >= 0 {
			out[i].Quantity += l.Quantity
			continue
		}
		out = append(out, l)
	}
	return out
}

// persist must be called with mu held
func (s *Store) persist() {
	lines := s.items
	if lines == nil {
		lines = []models.CartLine{}
	}
	raw, err := json.Marshal(lines)
	if err != nil {
		util.CartPersistFailuresTotal.Inc()
		s.logger.Error("Failed to encode cart", zap.Error(err))
		return
	}
	if err := s.storage.Set(s.key, raw); err != nil {
		util.CartPersistFailuresTotal.Inc()
		s.logger.Error("Failed to persist cart", zap.String("key", s.key), zap.Error(err))
	}
}

func indexOf(lines []models.CartLine, key models.LineKey) int {
	for i, l := range lines {
		if l.Key() == key {
			return i
		}
	}
	return -1
}

// AddItem merges line into the cart and opens the cart sidebar. A line with the
// same identity key has its quantity increased instead of being duplicated.
func (s *Store) AddItem(line models.CartLine) error {
	if line.Quantity <= 0 {
		return fmt.Errorf("add %s: %w", line.ProductID, ErrInvalidQuantity)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if i := indexOf(s.items, line.Key()); i >= 0 {
		s.items[i].Quantity += line.Quantity
	} else {
		s.items = append(s.items, line)
	}
	s.isOpen = true
	s.persist()

	util.CartMutationsTotal.WithLabelValues("add").Inc()
	s.logger.Debug("Item added",
		zap.String("product_id", line.ProductID),
		zap.String("size", line.Size),
		zap.String("color", line.Color),
		zap.Int("quantity", line.Quantity))
	return nil
}

// RemoveItem deletes the matching line; absent lines are ignored
func (s *Store) RemoveItem(productID, size, color string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.remove(models.LineKey{ProductID: productID, Size: size, Color: color})
}

func (s *Store) remove(key models.LineKey) {
	i := indexOf(s.items, key)
	if i < 0 {
		return
	}
	s.items = append(s.items[:i], s.items[i+1:]...)
	s.persist()
	util.CartMutationsTotal.WithLabelValues("remove").Inc()
}

// UpdateQuantity sets the absolute quantity of a line. Zero or less removes it.
func (s *Store) UpdateQuantity(productID, size, color string, quantity int) {
	s.mu.Lock()
	defer s.mu.Unlock()

	key := models.LineKey{ProductID: productID, Size: size, Color: color}
	if quantity <= 0 {
		s.remove(key)
		return
	}

	i := indexOf(s.items, key)
	if i < 0 {
		return
	}
	s.items[i].Quantity = quantity
	s.persist()
	util.CartMutationsTotal.WithLabelValues("update").Inc()
}

// Clear empties the cart without touching the open flag
func (s *Store) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.items = nil
	s.persist()
	util.CartMutationsTotal.WithLabelValues("clear").Inc()
}

// Deduct subtracts the quantities of lines from the matching cart lines,
// dropping any that reach zero. Lines added or topped up since lines were
// read stay in the cart with the difference.
func (s *Store) Deduct(lines []models.CartLine) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, l := range lines {
		i := indexOf(s.items, l.Key())
		if i < 0 {
			continue
		}
		if s.items[i].Quantity <= l.Quantity {
			s.items = append(s.items[:i], s.items[i+1:]...)
			continue
		}
		s.items[i].Quantity -= l.Quantity
	}
	s.persist()
	util.CartMutationsTotal.WithLabelValues("deduct").Inc()
}

// SetOpen sets the sidebar visibility flag. Not persisted.
func (s *Store) SetOpen(open bool) {
	s.mu.Lock()
	s.isOpen = open
	s.mu.Unlock()
}

func (s *Store) IsOpen() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.isOpen
}

// Items returns a copy of the lines in insertion order
func (s *Store) Items() []models.CartLine {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.copyItems()
}

func (s *Store) copyItems() []models.CartLine {
	out := make([]models.CartLine, len(s.items))
	copy(out, s.items)
	return out
}

func (s *Store) TotalItems() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return totalItems(s.items)
}

func (s *Store) TotalPrice() decimal.Decimal {
	s.mu.Lock()
	defer s.mu.Unlock()
	return totalPrice(s.items)
}

// Snapshot reads lines, totals and the open flag under one lock
func (s *Store) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return Snapshot{
		Items:      s.copyItems(),
		TotalItems: totalItems(s.items),
		TotalPrice: totalPrice(s.items),
		IsOpen:     s.isOpen,
	}
}

func totalItems(lines []models.CartLine) int {
	n := 0
	for _, l := range lines {
		n += l.Quantity
	}
	return n
}

func totalPrice(lines []models.CartLine) decimal.Decimal {
	sum := decimal.Zero
	for _, l := range lines {
		sum = sum.Add(l.Subtotal())
	}
	return sum
}
