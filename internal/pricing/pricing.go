// Package pricing holds the pure price math: markup application and
// warehouse offer selection. Nothing here touches storage or the network,
// so frozen order totals stay reproducible.
package pricing

import "github.com/shopspring/decimal"

var hundred = decimal.NewFromInt(100)

// Markup returns base*(1+percent/100) rounded half-up to 2 decimal places.
// Negative or zero bases are not clamped; plausibility is the caller's
// concern.
func Markup(base, percent decimal.Decimal) decimal.Decimal {
	factor := decimal.NewFromInt(1).Add(percent.Div(hundred))
	return base.Mul(factor).Round(2)
}

// Offer is a single (warehouse, price, stock) tuple for one product as
// reported by the supplier.
type Offer struct {
	WarehouseID   int             `json:"warehouse_id"`
	WarehouseName string          `json:"warehouse_name"`
	Price         decimal.Decimal `json:"price"`
	Stock         int             `json:"rest"`
}

// SelectOffer picks the warehouse offer to show for one product.
//
// Preferred warehouses win in the order listed (nearest first). Without a
// match the first supplier-returned offer is used, unless requirePreferred
// is set (a location filter is active), in which case the product is
// dropped from results rather than shown with a fallback warehouse.
func SelectOffer(offers []Offer, preferred []int, requirePreferred bool) (Offer, bool) {
	if len(offers) == 0 {
		return Offer{}, false
	}
	for _, want := range preferred {
		for _, o := range offers {
			if o.WarehouseID == want {
				return o, true
			}
		}
	}
	if requirePreferred {
		return Offer{}, false
	}
	return offers[0], true
}
