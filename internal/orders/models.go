package orders

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/wrx861/tyres/internal/pricing"
)

type OrderItem struct {
	Code          string          `json:"code"`
	Name          string          `json:"name"`
	Brand         string          `json:"brand"`
	Quantity      int             `json:"quantity"`
	PriceBase     decimal.Decimal `json:"price_base"`  // supplier price
	PriceFinal    decimal.Decimal `json:"price_final"` // customer price with markup
	WarehouseID   int             `json:"warehouse_id"`
	WarehouseName string          `json:"warehouse_name"`
}

type DeliveryAddress struct {
	City      string `json:"city"`
	Street    string `json:"street"`
	House     string `json:"house"`
	Apartment string `json:"apartment,omitempty"`
	Phone     string `json:"phone"`
	Comment   string `json:"comment,omitempty"`
}

// Validate checks the required fields. Apartment and comment are optional.
func (a DeliveryAddress) Validate() error {
	if a.City == "" || a.Street == "" || a.House == "" || a.Phone == "" {
		return ErrInvalidAddress
	}
	return nil
}

type Order struct {
	OrderID          string           `json:"order_id"`
	UserTelegramID   string           `json:"user_telegram_id"`
	UserName         string           `json:"user_name,omitempty"`
	Items            []OrderItem      `json:"items"`
	TotalAmount      decimal.Decimal  `json:"total_amount"`
	MarkupPercentage decimal.Decimal  `json:"markup_percentage"` // frozen at creation
	Status           Status           `json:"status"`
	DeliveryAddress  *DeliveryAddress `json:"delivery_address,omitempty"`
	Hidden           bool             `json:"hidden,omitempty"`
	CreatedAt        time.Time        `json:"created_at"`
	ConfirmedAt      *time.Time       `json:"confirmed_at,omitempty"`
	ConfirmedByAdmin string           `json:"confirmed_by_admin,omitempty"`
	AdminComment     string           `json:"admin_comment,omitempty"`
	StatusComment    string           `json:"status_comment,omitempty"`
	UpdatedAt        *time.Time       `json:"updated_at,omitempty"`

	// set once the order has been placed with the supplier
	SupplierOrderID     string `json:"supplier_order_id,omitempty"`
	SupplierOrderNumber string `json:"supplier_order_number,omitempty"`
}

// NewOrderID keeps the operator-friendly ORD-timestamp prefix and appends a
// uuid fragment so concurrent checkouts in the same second cannot collide.
func NewOrderID(now time.Time) string {
	frag := strings.SplitN(uuid.NewString(), "-", 2)[0]
	return fmt.Sprintf("ORD-%s-%s", now.UTC().Format("20060102150405"), frag)
}

// PriceItems recomputes each item's final price from its base price with the
// given markup. Client-supplied final prices are never trusted.
func PriceItems(items []OrderItem, markup decimal.Decimal) []OrderItem {
	out := make([]OrderItem, len(items))
	for i, it := range items {
		it.PriceFinal = pricing.Markup(it.PriceBase, markup)
		out[i] = it
	}
	return out
}

// ComputeTotal sums final price times quantity over all items.
func ComputeTotal(items []OrderItem) decimal.Decimal {
	total := decimal.Zero
	for _, it := range items {
		total = total.Add(it.PriceFinal.Mul(decimal.NewFromInt(int64(it.Quantity))))
	}
	return total
}
