package fourtochki

import (
	"strings"

	"github.com/shopspring/decimal"
	"github.com/wrx861/tyres/internal/pricing"
)

// normalizeItems flattens the supplier's nested price/rest structures into
// Items. Entries without a code or a parseable price are dropped: they are
// placeholders the supplier emits for out-of-assortment rows.
func normalizeItems(raw []rawItem) []Item {
	out := make([]Item, 0, len(raw))
	for _, r := range raw {
		it, ok := normalizeItem(r)
		if !ok {
			continue
		}
		out = append(out, it)
	}
	return out
}

func normalizeItem(r rawItem) (Item, bool) {
	if strings.TrimSpace(r.Code) == "" {
		return Item{}, false
	}
	price, ok := parsePrice(r.Price)
	if !ok {
		return Item{}, false
	}
	it := Item{
		Code:      strings.TrimSpace(r.Code),
		Name:      strings.TrimSpace(r.Name),
		Brand:     strings.TrimSpace(r.Brand),
		Model:     strings.TrimSpace(r.Model),
		BasePrice: price,
		ImgSmall:  r.ImgSmall,
		Width:     r.Width,
		Height:    r.Height,
		Diameter:  r.Diameter,
		Season:    r.Season,
		DiskType:  r.DiskType,
		Color:     r.Color,
	}
	for _, o := range r.Offers.List {
		op, ok := parsePrice(o.Price)
		if !ok {
			// offer without its own price inherits the item price
			op = price
		}
		if o.WarehouseID == 0 || o.Rest <= 0 {
			continue
		}
		it.Offers = append(it.Offers, pricing.Offer{
			WarehouseID:   o.WarehouseID,
			WarehouseName: strings.TrimSpace(o.WarehouseName),
			Price:         op,
			Stock:         o.Rest,
		})
	}
	return it, true
}

// parsePrice tolerates the supplier's decimal-comma and blank values.
func parsePrice(s string) (decimal.Decimal, bool) {
	s = strings.TrimSpace(strings.ReplaceAll(s, ",", "."))
	if s == "" {
		return decimal.Zero, false
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, false
	}
	return d, true
}
