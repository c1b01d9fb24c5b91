package orders

import (
	"encoding/json"
	"time"

	"github.com/shopspring/decimal"
)

const (
	EventOrderCreated       = "OrderCreated"
	EventOrderConfirmed     = "OrderConfirmed"
	EventOrderRejected      = "OrderRejected"
	EventOrderStatusChanged = "OrderStatusChanged"
)

type Envelope struct {
	EventID       string          `json:"event_id"`
	EventType     string          `json:"event_type"`
	EventVersion  int             `json:"event_version"`
	OccurredAt    time.Time       `json:"occurred_at"`
	Producer      string          `json:"producer"`
	CorrelationID string          `json:"correlation_id,omitempty"` // order_id
	Payload       json.RawMessage `json:"payload"`
}

// ---- payloads per event ----
// RecipientID is the Telegram chat the notifier should deliver to: the admin
// for OrderCreated, the order's owner for everything else.

type OrderCreatedPayload struct {
	OrderID     string          `json:"order_id"`
	RecipientID string          `json:"recipient_id"`
	UserName    string          `json:"user_name"`
	ItemsCount  int             `json:"items_count"`
	TotalAmount decimal.Decimal `json:"total_amount"`
}

type OrderConfirmedPayload struct {
	OrderID      string `json:"order_id"`
	RecipientID  string `json:"recipient_id"`
	AdminComment string `json:"admin_comment,omitempty"`
}

type OrderRejectedPayload struct {
	OrderID     string `json:"order_id"`
	RecipientID string `json:"recipient_id"`
	Reason      string `json:"reason"`
}

type OrderStatusChangedPayload struct {
	OrderID     string `json:"order_id"`
	RecipientID string `json:"recipient_id"`
	StatusLabel string `json:"status_label"`
	Comment     string `json:"comment,omitempty"`
}
