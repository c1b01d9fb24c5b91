package carts

import (
	"errors"
	"time"

	"github.com/shopspring/decimal"
)

var (
	ErrInsufficientStock = errors.New("not enough stock at warehouse")
	ErrInvalidQuantity   = errors.New("quantity must be positive")
	ErrNotFound          = errors.New("cart line not found")
	ErrBlocked           = errors.New("user is blocked")
)

// Line is one cart position, identified by (code, warehouse_id) within a
// user's cart. Rest is the warehouse stock as observed when the line was
// last added or merged; quantities are validated against it.
type Line struct {
	Code          string          `json:"code"`
	Name          string          `json:"name"`
	Brand         string          `json:"brand"`
	Model         string          `json:"model,omitempty"`
	Quantity      int             `json:"quantity"`
	Price         decimal.Decimal `json:"price"`
	WarehouseID   int             `json:"warehouse_id"`
	WarehouseName string          `json:"warehouse_name"`
	Rest          int             `json:"rest"`
	ImgSmall      string          `json:"img_small,omitempty"`

	// tire attributes
	Width    int    `json:"width,omitempty"`
	Height   int    `json:"height,omitempty"`
	Diameter int    `json:"diameter,omitempty"`
	Season   string `json:"season,omitempty"`

	// disk attributes
	DiskType string `json:"disk_type,omitempty"`
	Color    string `json:"color,omitempty"`
}

type Cart struct {
	TelegramID string    `json:"telegram_id"`
	Items      []Line    `json:"items"`
	UpdatedAt  time.Time `json:"updated_at"`
}
