package cart

import (
	"encoding/json"
	"errors"
	"testing"

	"storefront/internal/kv"
	"storefront/internal/models"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func line(productID, size, color, price string, qty int) models.CartLine {
	return models.CartLine{
		ProductID: productID,
		Name:      productID,
		UnitPrice: decimal.RequireFromString(price),
		ImageRef:  "/images/" + productID + ".png",
		Size:      size,
		Color:     color,
		Quantity:  qty,
	}
}

func TestAddItemMergesIdentity(t *testing.T) {
	s := NewStore(kv.NewMemoryStore(), DefaultKey)

	require.NoError(t, s.AddItem(line("p1", "M", "Black", "35.00", 1)))
	require.NoError(t, s.AddItem(line("p1", "M", "Black", "35.00", 1)))

	items := s.Items()
	require.Len(t, items, 1)
	assert.Equal(t, 2, items[0].Quantity)
	assert.Equal(t, 2, s.TotalItems())
	assert.True(t, s.TotalPrice().Equal(decimal.RequireFromString("70.00")))
}

func TestAddItemDistinctVariants(t *testing.T) {
	s := NewStore(kv.NewMemoryStore(), DefaultKey)

	require.NoError(t, s.AddItem(line("p1", "M", "Black", "35.00", 1)))
	require.NoError(t, s.AddItem(line("p1", "L", "Black", "35.00", 1)))
	require.NoError(t, s.AddItem(line("p1", "M", "Natural", "35.00", 3)))

	items := s.Items()
	require.Len(t, items, 3)
	// insertion order
	assert.Equal(t, "L", items[1].Size)
	assert.Equal(t, "Natural", items[2].Color)
	assert.Equal(t, 5, s.TotalItems())
}

func TestAddItemOpensCart(t *testing.T) {
	s := NewStore(kv.NewMemoryStore(), DefaultKey)
	assert.False(t, s.IsOpen())

	require.NoError(t, s.AddItem(line("p1", "M", "Black", "35.00", 1)))
	assert.True(t, s.IsOpen())

	s.SetOpen(false)
	assert.False(t, s.IsOpen())
}

func TestAddItemRejectsNonPositiveQuantity(t *testing.T) {
	s := NewStore(kv.NewMemoryStore(), DefaultKey)

	assert.ErrorIs(t, s.AddItem(line("p1", "M", "Black", "35.00", 0)), ErrInvalidQuantity)
	assert.ErrorIs(t, s.AddItem(line("p1", "M", "Black", "35.00", -2)), ErrInvalidQuantity)
	assert.Empty(t, s.Items())
	assert.False(t, s.IsOpen())
}

func TestRemoveItem(t *testing.T) {
	s := NewStore(kv.NewMemoryStore(), DefaultKey)
	require.NoError(t, s.AddItem(line("p1", "M", "Black", "35.00", 1)))
	require.NoError(t, s.AddItem(line("p2", "S", "Natural", "20.00", 1)))

	s.RemoveItem("p1", "M", "Natural") // absent: no-op
	assert.Len(t, s.Items(), 2)

	s.RemoveItem("p1", "M", "Black")
	items := s.Items()
	require.Len(t, items, 1)
	assert.Equal(t, "p2", items[0].ProductID)
}

func TestUpdateQuantity(t *testing.T) {
	s := NewStore(kv.NewMemoryStore(), DefaultKey)
	require.NoError(t, s.AddItem(line("p1", "M", "Black", "35.00", 1)))

	s.UpdateQuantity("p1", "M", "Black", 4)
	assert.Equal(t, 4, s.TotalItems())

	s.UpdateQuantity("p9", "M", "Black", 4) // absent: no-op
	assert.Equal(t, 4, s.TotalItems())

	s.UpdateQuantity("p1", "M", "Black", 0)
	assert.Empty(t, s.Items())
}

func TestUpdateQuantityNegativeRemoves(t *testing.T) {
	s := NewStore(kv.NewMemoryStore(), DefaultKey)
	require.NoError(t, s.AddItem(line("p1", "M", "Black", "35.00", 2)))

	s.UpdateQuantity("p1", "M", "Black", -3)
	assert.Empty(t, s.Items())
	assert.Equal(t, 0, s.TotalItems())
	assert.True(t, s.TotalPrice().IsZero())
}

func TestClearKeepsOpenFlag(t *testing.T) {
	s := NewStore(kv.NewMemoryStore(), DefaultKey)
	require.NoError(t, s.AddItem(line("p1", "M", "Black", "35.00", 2)))
	require.True(t, s.IsOpen())

	s.Clear()
	assert.Empty(t, s.Items())
	assert.True(t, s.IsOpen())
}

func TestItemsReturnsCopy(t *testing.T) {
	s := NewStore(kv.NewMemoryStore(), DefaultKey)
	require.NoError(t, s.AddItem(line("p1", "M", "Black", "35.00", 1)))

	items := s.Items()
	items[0].Quantity = 99
	assert.Equal(t, 1, s.TotalItems())
}

func TestPersistenceRoundTrip(t *testing.T) {
	storage := kv.NewMemoryStore()
	s := NewStore(storage, DefaultKey)
	require.NoError(t, s.AddItem(line("p1", "M", "Black", "35.00", 2)))
	require.NoError(t, s.AddItem(line("p2", "XL", "Natural", "12.50", 1)))
	s.UpdateQuantity("p2", "XL", "Natural", 3)

	restored := NewStore(storage, DefaultKey)

	want, got := s.Items(), restored.Items()
	require.Len(t, got, len(want))
	for i := range want {
		assert.Equal(t, want[i].Key(), got[i].Key())
		assert.Equal(t, want[i].Quantity, got[i].Quantity)
		assert.Equal(t, want[i].ImageRef, got[i].ImageRef)
		assert.True(t, want[i].UnitPrice.Equal(got[i].UnitPrice))
	}
	assert.Equal(t, s.TotalItems(), restored.TotalItems())
	assert.True(t, s.TotalPrice().Equal(restored.TotalPrice()))
	// open flag is not persisted
	assert.False(t, restored.IsOpen())
}

func TestPersistedFormat(t *testing.T) {
	storage := kv.NewMemoryStore()
	s := NewStore(storage, "custom")
	require.NoError(t, s.AddItem(line("p1", "M", "Black", "35.00", 1)))

	raw, err := storage.Get("custom")
	require.NoError(t, err)

	var decoded []map[string]any
	require.NoError(t, json.Unmarshal(raw, &decoded))
	require.Len(t, decoded, 1)
	assert.Equal(t, "p1", decoded[0]["productId"])
	assert.Equal(t, "M", decoded[0]["size"])
	assert.EqualValues(t, 1, decoded[0]["quantity"])

	s.Clear()
	raw, err = storage.Get("custom")
	require.NoError(t, err)
	assert.JSONEq(t, `[]`, string(raw))
}

func TestCorruptStorageFallsBackToEmpty(t *testing.T) {
	storage := kv.NewMemoryStore()
	require.NoError(t, storage.Set(DefaultKey, []byte(`{not json`)))

	s := NewStore(storage, DefaultKey)
	assert.Empty(t, s.Items())

	// still usable afterwards
	require.NoError(t, s.AddItem(line("p1", "M", "Black", "35.00", 1)))
	assert.Equal(t, 1, s.TotalItems())
}

func TestRestoreRepairsDuplicatesAndBadQuantities(t *testing.T) {
	storage := kv.NewMemoryStore()
	raw := `[
		{"productId":"p1","size":"M","color":"Black","price":"35.00","quantity":1},
		{"productId":"p1","size":"M","color":"Black","price":"35.00","quantity":2},
		{"productId":"p2","size":"S","color":"Natural","price":"10","quantity":0}
	]`
	require.NoError(t, storage.Set(DefaultKey, []byte(raw)))

	s := NewStore(storage, DefaultKey)
	items := s.Items()
	require.Len(t, items, 1)
	assert.Equal(t, 3, items[0].Quantity)
}

type failingStore struct{ kv.Store }

func (failingStore) Get(string) ([]byte, error) { return nil, errors.New("disk on fire") }
func (failingStore) Set(string, []byte) error   { return errors.New("disk on fire") }

func TestStorageErrorsAreNotFatal(t *testing.T) {
	s := NewStore(failingStore{}, DefaultKey)
	assert.Empty(t, s.Items())

	require.NoError(t, s.AddItem(line("p1", "M", "Black", "35.00", 1)))
	assert.Equal(t, 1, s.TotalItems())
}

func TestNilStoragePanics(t *testing.T) {
	assert.Panics(t, func() { NewStore(nil, DefaultKey) })
}

func TestSnapshot(t *testing.T) {
	s := NewStore(kv.NewMemoryStore(), DefaultKey)
	require.NoError(t, s.AddItem(line("p1", "M", "Black", "35.00", 2)))
	require.NoError(t, s.AddItem(line("p2", "S", "Natural", "0.99", 3)))

	snap := s.Snapshot()
	assert.Len(t, snap.Items, 2)
	assert.Equal(t, 5, snap.TotalItems)
	assert.Equal(t, "72.97", snap.TotalPrice.StringFixed(2))
	assert.True(t, snap.IsOpen)
}

func TestDeductRemovesOnlyPaidQuantities(t *testing.T) {
	storage := kv.NewMemoryStore()
	s := NewStore(storage, DefaultKey)
	require.NoError(t, s.AddItem(line("p1", "M", "Black", "35.00", 2)))
	require.NoError(t, s.AddItem(line("p2", "S", "Natural", "10.00", 1)))
	paid := s.Items()

	// changes after the snapshot
	require.NoError(t, s.AddItem(line("p1", "M", "Black", "35.00", 1)))
	require.NoError(t, s.AddItem(line("p3", "L", "White", "20.00", 1)))

	s.Deduct(paid)

	items := s.Items()
	require.Len(t, items, 2)
	assert.Equal(t, models.LineKey{ProductID: "p1", Size: "M", Color: "Black"}, items[0].Key())
	assert.Equal(t, 1, items[0].Quantity)
	assert.Equal(t, "p3", items[1].ProductID)
	assert.True(t, s.TotalPrice().Equal(decimal.RequireFromString("55")))

	restored := NewStore(storage, DefaultKey)
	assert.Equal(t, 2, restored.TotalItems())
	assert.True(t, restored.TotalPrice().Equal(decimal.RequireFromString("55")))
}

func TestDeductIgnoresMissingLines(t *testing.T) {
	s := NewStore(kv.NewMemoryStore(), DefaultKey)
	require.NoError(t, s.AddItem(line("p1", "M", "Black", "35.00", 1)))
	s.RemoveItem("p1", "M", "Black")

	s.Deduct([]models.CartLine{line("p1", "M", "Black", "35.00", 1)})
	assert.Empty(t, s.Items())
}
