package carts_test

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/wrx861/tyres/internal/carts"
)

func line(code string, wh, qty, rest int) carts.Line {
	return carts.Line{
		Code:        code,
		Name:        "Nokian Hakkapeliitta R5",
		Brand:       "Nokian",
		Quantity:    qty,
		Price:       decimal.NewFromInt(7500),
		WarehouseID: wh,
		Rest:        rest,
	}
}

func TestAddLine(t *testing.T) {
	t.Parallel()

	t.Run("append then merge up to rest", func(t *testing.T) {
		t.Parallel()

		items, err := carts.AddLine(nil, line("X", 1, 3, 5))
		require.NoError(t, err)
		require.Len(t, items, 1)

		items, err = carts.AddLine(items, line("X", 1, 2, 5))
		require.NoError(t, err)
		require.Len(t, items, 1)
		assert.Equal(t, 5, items[0].Quantity)

		// one more unit exceeds rest; cart stays at qty=5
		after, err := carts.AddLine(items, line("X", 1, 1, 5))
		assert.ErrorIs(t, err, carts.ErrInsufficientStock)
		assert.Equal(t, 5, after[0].Quantity)
	})

	t.Run("quantity equal to rest succeeds, rest+1 fails", func(t *testing.T) {
		t.Parallel()

		items, err := carts.AddLine(nil, line("X", 1, 4, 4))
		require.NoError(t, err)
		assert.Equal(t, 4, items[0].Quantity)

		_, err = carts.AddLine(nil, line("Y", 1, 5, 4))
		assert.ErrorIs(t, err, carts.ErrInsufficientStock)
	})

	t.Run("merge validates against fresh rest, not stored", func(t *testing.T) {
		t.Parallel()

		items, _ := carts.AddLine(nil, line("X", 1, 3, 10))

		// stock dropped since the first add
		add := line("X", 1, 2, 4)
		_, err := carts.AddLine(items, add)
		assert.ErrorIs(t, err, carts.ErrInsufficientStock)

		// stock grew: merge succeeds and refreshes the stored rest
		add = line("X", 1, 2, 12)
		items, err = carts.AddLine(items, add)
		require.NoError(t, err)
		assert.Equal(t, 5, items[0].Quantity)
		assert.Equal(t, 12, items[0].Rest)
	})

	t.Run("same code at another warehouse is a separate line", func(t *testing.T) {
		t.Parallel()

		items, _ := carts.AddLine(nil, line("X", 1, 1, 5))
		items, err := carts.AddLine(items, line("X", 2, 1, 5))
		require.NoError(t, err)
		assert.Len(t, items, 2)
	})

	t.Run("non-positive quantity rejected", func(t *testing.T) {
		t.Parallel()

		_, err := carts.AddLine(nil, line("X", 1, 0, 5))
		assert.ErrorIs(t, err, carts.ErrInvalidQuantity)
	})
}

func TestUpdateQuantity(t *testing.T) {
	t.Parallel()

	items, _ := carts.AddLine(nil, line("X", 1, 3, 5))

	t.Run("within rest", func(t *testing.T) {
		t.Parallel()

		out, err := carts.UpdateQuantity(items, "X", 1, 5)
		require.NoError(t, err)
		assert.Equal(t, 5, out[0].Quantity)
	})

	t.Run("above rest", func(t *testing.T) {
		t.Parallel()

		_, err := carts.UpdateQuantity(items, "X", 1, 6)
		assert.ErrorIs(t, err, carts.ErrInsufficientStock)
	})

	t.Run("zero or negative", func(t *testing.T) {
		t.Parallel()

		_, err := carts.UpdateQuantity(items, "X", 1, 0)
		assert.ErrorIs(t, err, carts.ErrInvalidQuantity)
		_, err = carts.UpdateQuantity(items, "X", 1, -2)
		assert.ErrorIs(t, err, carts.ErrInvalidQuantity)
	})

	t.Run("missing line", func(t *testing.T) {
		t.Parallel()

		_, err := carts.UpdateQuantity(items, "Z", 1, 1)
		assert.ErrorIs(t, err, carts.ErrNotFound)
		_, err = carts.UpdateQuantity(items, "X", 9, 1)
		assert.ErrorIs(t, err, carts.ErrNotFound)
	})
}

func TestRemoveLine(t *testing.T) {
	t.Parallel()

	items, _ := carts.AddLine(nil, line("X", 1, 1, 5))
	items, _ = carts.AddLine(items, line("Y", 2, 1, 5))

	once := carts.RemoveLine(items, "X", 1)
	require.Len(t, once, 1)
	assert.Equal(t, "Y", once[0].Code)

	// removing again is idempotent
	twice := carts.RemoveLine(once, "X", 1)
	assert.Equal(t, once, twice)
}
