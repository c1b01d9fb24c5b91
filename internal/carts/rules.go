package carts

// Pure cart mutation rules. The repo applies these inside a transaction that
// holds the cart row lock, so each function sees a stable snapshot and
// returns the full replacement item list. On error the input is returned
// unchanged.

// AddLine merges into an existing (code, warehouse) line or appends a new
// one. The stock ceiling is add.Rest, the figure freshly observed by the
// caller, not the possibly stale stored one; on merge the stored rest and
// descriptive fields are refreshed from add.
func AddLine(items []Line, add Line) ([]Line, error) {
	if add.Quantity <= 0 {
		return items, ErrInvalidQuantity
	}
	for i, ln := range items {
		if ln.Code != add.Code || ln.WarehouseID != add.WarehouseID {
			continue
		}
		merged := ln.Quantity + add.Quantity
		if merged > add.Rest {
			return items, ErrInsufficientStock
		}
		add.Quantity = merged
		out := make([]Line, len(items))
		copy(out, items)
		out[i] = add
		return out, nil
	}
	if add.Quantity > add.Rest {
		return items, ErrInsufficientStock
	}
	return append(append([]Line(nil), items...), add), nil
}

// UpdateQuantity sets an existing line to an absolute quantity, validated
// against the line's last-known rest.
func UpdateQuantity(items []Line, code string, warehouseID, quantity int) ([]Line, error) {
	if quantity <= 0 {
		return items, ErrInvalidQuantity
	}
	for i, ln := range items {
		if ln.Code != code || ln.WarehouseID != warehouseID {
			continue
		}
		if quantity > ln.Rest {
			return items, ErrInsufficientStock
		}
		out := make([]Line, len(items))
		copy(out, items)
		out[i].Quantity = quantity
		return out, nil
	}
	return items, ErrNotFound
}

// RemoveLine drops the matching line. Removing an absent line is a no-op,
// not an error.
func RemoveLine(items []Line, code string, warehouseID int) []Line {
	out := items[:0:0]
	for _, ln := range items {
		if ln.Code == code && ln.WarehouseID == warehouseID {
			continue
		}
		out = append(out, ln)
	}
	return out
}
