package pricing_test

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/wrx861/tyres/internal/pricing"
)

func d(s string) decimal.Decimal {
	v, err := decimal.NewFromString(s)
	if err != nil {
		panic(err)
	}
	return v
}

func TestMarkup(t *testing.T) {
	t.Parallel()

	t.Run("known values", func(t *testing.T) {
		t.Parallel()

		assert.True(t, pricing.Markup(d("1000"), d("15")).Equal(d("1150.00")))
		assert.True(t, pricing.Markup(d("2000"), d("15")).Equal(d("2300.00")))
		assert.True(t, pricing.Markup(d("99.99"), d("10")).Equal(d("109.99")))
	})

	t.Run("zero percent is identity", func(t *testing.T) {
		t.Parallel()

		for _, base := range []string{"0", "1", "549.50", "12345.67"} {
			assert.True(t, pricing.Markup(d(base), decimal.Zero).Equal(d(base)))
		}
	})

	t.Run("half-up rounding", func(t *testing.T) {
		t.Parallel()

		// 0.10 * 1.05 = 0.105: exact half rounds up, not to even
		assert.True(t, pricing.Markup(d("0.10"), d("5")).Equal(d("0.11")))
		// 1.00 * 1.125 = 1.125 -> 1.13
		assert.True(t, pricing.Markup(d("1.00"), d("12.5")).Equal(d("1.13")))
		// 100.05 * 1.005 = 100.550025 -> 100.55
		assert.True(t, pricing.Markup(d("100.05"), d("0.5")).Equal(d("100.55")))
	})

	t.Run("monotonic in percent", func(t *testing.T) {
		t.Parallel()

		base := d("739.90")
		prev := pricing.Markup(base, decimal.Zero)
		for p := 1; p <= 100; p++ {
			cur := pricing.Markup(base, decimal.NewFromInt(int64(p)))
			assert.True(t, cur.GreaterThanOrEqual(prev), "percent=%d", p)
			prev = cur
		}
	})

	t.Run("no clamping of non-positive bases", func(t *testing.T) {
		t.Parallel()

		assert.True(t, pricing.Markup(decimal.Zero, d("15")).Equal(decimal.Zero))
		assert.True(t, pricing.Markup(d("-100"), d("15")).Equal(d("-115.00")))
	})
}

func TestSelectOffer(t *testing.T) {
	t.Parallel()

	offers := []pricing.Offer{
		{WarehouseID: 5, Price: d("100"), Stock: 2},
		{WarehouseID: 42, Price: d("110"), Stock: 1},
	}

	t.Run("preferred wins", func(t *testing.T) {
		t.Parallel()

		o, ok := pricing.SelectOffer(offers, []int{42}, false)
		assert.True(t, ok)
		assert.Equal(t, 42, o.WarehouseID)
		assert.True(t, o.Price.Equal(d("110")))
		assert.Equal(t, 1, o.Stock)
	})

	t.Run("preferred order decides, not supplier order", func(t *testing.T) {
		t.Parallel()

		o, ok := pricing.SelectOffer(offers, []int{42, 5}, false)
		assert.True(t, ok)
		assert.Equal(t, 42, o.WarehouseID)
	})

	t.Run("no preferred match falls back to first", func(t *testing.T) {
		t.Parallel()

		o, ok := pricing.SelectOffer(offers, []int{99}, false)
		assert.True(t, ok)
		assert.Equal(t, 5, o.WarehouseID)
	})

	t.Run("location filter drops item without preferred match", func(t *testing.T) {
		t.Parallel()

		_, ok := pricing.SelectOffer(offers, []int{99}, true)
		assert.False(t, ok)
	})

	t.Run("empty candidates", func(t *testing.T) {
		t.Parallel()

		_, ok := pricing.SelectOffer(nil, []int{42}, false)
		assert.False(t, ok)
	})
}
