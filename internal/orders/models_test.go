package orders_test

import (
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/wrx861/tyres/internal/orders"
)

func dec(s string) decimal.Decimal {
	v, err := decimal.NewFromString(s)
	if err != nil {
		panic(err)
	}
	return v
}

func TestPriceItemsAndTotal(t *testing.T) {
	t.Parallel()

	items := []orders.OrderItem{
		{Code: "T1", Quantity: 1, PriceBase: dec("1000")},
		{Code: "T2", Quantity: 2, PriceBase: dec("2000")},
	}

	priced := orders.PriceItems(items, dec("15"))
	require.Len(t, priced, 2)
	assert.True(t, priced[0].PriceFinal.Equal(dec("1150.00")), "got %s", priced[0].PriceFinal)
	assert.True(t, priced[1].PriceFinal.Equal(dec("2300.00")), "got %s", priced[1].PriceFinal)

	// input slice is untouched
	assert.True(t, items[0].PriceFinal.IsZero())

	total := orders.ComputeTotal(priced)
	assert.True(t, total.Equal(dec("5750.00")), "got %s", total)
}

func TestComputeTotalEmpty(t *testing.T) {
	t.Parallel()

	assert.True(t, orders.ComputeTotal(nil).IsZero())
}

func TestDeliveryAddressValidate(t *testing.T) {
	t.Parallel()

	full := orders.DeliveryAddress{City: "Казань", Street: "Баумана", House: "12", Phone: "+78430000000"}
	assert.NoError(t, full.Validate())

	// apartment and comment are optional
	full.Apartment, full.Comment = "", ""
	assert.NoError(t, full.Validate())

	for _, a := range []orders.DeliveryAddress{
		{Street: "Баумана", House: "12", Phone: "+7"},
		{City: "Казань", House: "12", Phone: "+7"},
		{City: "Казань", Street: "Баумана", Phone: "+7"},
		{City: "Казань", Street: "Баумана", House: "12"},
	} {
		assert.ErrorIs(t, a.Validate(), orders.ErrInvalidAddress)
	}
}

func TestNewOrderID(t *testing.T) {
	t.Parallel()

	now := time.Date(2025, 3, 14, 9, 26, 53, 0, time.UTC)
	id := orders.NewOrderID(now)
	assert.True(t, strings.HasPrefix(id, "ORD-20250314092653-"), "got %s", id)

	// same instant, still unique
	assert.NotEqual(t, id, orders.NewOrderID(now))
}
