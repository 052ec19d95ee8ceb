package cart

import (
	"testing"

	"storefront/internal/kv"
	"storefront/internal/models"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
	"github.com/shopspring/decimal"
)

var propertyVariants = []models.CartLine{
	line("p1", "M", "Black", "35.00", 1),
	line("p1", "L", "Black", "35.00", 1),
	line("p2", "S", "Natural", "12.50", 1),
	line("p3", "2XL", "White", "0.99", 1),
}

// apply decodes op into one cart mutation: kind, variant and a quantity in [-1, 3]
func apply(s *Store, op int) {
	v := propertyVariants[(op/4)%len(propertyVariants)]
	qty := (op/16)%5 - 1
	switch op % 4 {
	case 0:
		v.Quantity = qty
		_ = s.AddItem(v)
	case 1:
		s.RemoveItem(v.ProductID, v.Size, v.Color)
	case 2:
		s.UpdateQuantity(v.ProductID, v.Size, v.Color, qty)
	case 3:
		if op%7 == 0 {
			s.Clear()
		}
	}
}

func TestTotalsConsistency(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 200
	properties := gopter.NewProperties(parameters)

	properties.Property("totals always match the line list", prop.ForAll(
		func(ops []int) bool {
			s := NewStore(kv.NewMemoryStore(), DefaultKey)
			for _, op := range ops {
				apply(s, op)

				items := s.Items()
				wantItems := 0
				wantPrice := decimal.Zero
				seen := map[models.LineKey]bool{}
				for _, l := range items {
					if l.Quantity <= 0 || seen[l.Key()] {
						return false
					}
					seen[l.Key()] = true
					wantItems += l.Quantity
					wantPrice = wantPrice.Add(l.UnitPrice.Mul(decimal.NewFromInt(int64(l.Quantity))))
				}
				if s.TotalItems() != wantItems || !s.TotalPrice().Equal(wantPrice) {
					return false
				}
			}
			return true
		},
		gen.SliceOf(gen.IntRange(0, 1000)),
	))

	properties.Property("restored store is observationally identical", prop.ForAll(
		func(ops []int) bool {
			storage := kv.NewMemoryStore()
			s := NewStore(storage, DefaultKey)
			for _, op := range ops {
				apply(s, op)
			}
			restored := NewStore(storage, DefaultKey)

			a, b := s.Items(), restored.Items()
			if len(a) != len(b) {
				return false
			}
			for i := range a {
				if a[i].Key() != b[i].Key() || a[i].Quantity != b[i].Quantity || !a[i].UnitPrice.Equal(b[i].UnitPrice) {
					return false
				}
			}
			return s.TotalItems() == restored.TotalItems() && s.TotalPrice().Equal(restored.TotalPrice())
		},
		gen.SliceOf(gen.IntRange(0, 1000)),
	))

	properties.TestingRun(t)
}
