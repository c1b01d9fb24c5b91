package orders

import "errors"

var (
	ErrNotFound          = errors.New("order not found")
	ErrEmptyOrder        = errors.New("order must contain at least one item")
	ErrInvalidQuantity   = errors.New("item quantity must be positive")
	ErrInvalidAddress    = errors.New("delivery address requires city, street, house and phone")
	ErrInvalidTransition = errors.New("status transition not allowed")
	ErrInvalidState      = errors.New("operation not allowed in current status")
)
