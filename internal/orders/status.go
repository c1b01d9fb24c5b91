package orders

type Status string

const (
	StatusPendingConfirmation Status = "pending_confirmation" // waiting for admin
	StatusConfirmed           Status = "confirmed"
	StatusAwaitingPayment     Status = "awaiting_payment"
	StatusInProgress          Status = "in_progress" // ordered from supplier
	StatusDelivery            Status = "delivery"
	StatusDelayed             Status = "delayed"
	StatusCompleted           Status = "completed"
	StatusCancelled           Status = "cancelled"
)

// Statuses an admin may move a confirmed order to. Any move among the
// post-confirmation set is allowed, including backward ones
// (e.g. delivery back to awaiting_payment).
var advanceTargets = map[Status]bool{
	StatusAwaitingPayment: true,
	StatusInProgress:      true,
	StatusDelivery:        true,
	StatusDelayed:         true,
	StatusCompleted:       true,
	StatusCancelled:       true,
}

var validNext = map[Status]map[Status]bool{
	StatusPendingConfirmation: {StatusConfirmed: true, StatusCancelled: true},
	StatusConfirmed:           advanceTargets,
	StatusAwaitingPayment:     advanceTargets,
	StatusInProgress:          advanceTargets,
	StatusDelivery:            advanceTargets,
	StatusDelayed:             advanceTargets,
	StatusCompleted:           {},
	StatusCancelled:           {},
}

func CanTransition(from, to Status) bool {
	return validNext[from][to]
}

// IsTerminal reports whether no further transitions are permitted.
func IsTerminal(s Status) bool {
	return s == StatusCompleted || s == StatusCancelled
}

// IsValid reports whether s is one of the known statuses.
func IsValid(s Status) bool {
	_, ok := validNext[s]
	return ok
}

// Label is the human-readable status text used in customer notifications.
func Label(s Status) string {
	switch s {
	case StatusPendingConfirmation:
		return "Ждет подтверждения"
	case StatusConfirmed:
		return "Подтвержден"
	case StatusAwaitingPayment:
		return "Ожидает оплаты"
	case StatusInProgress:
		return "Принят в работу"
	case StatusDelivery:
		return "Передан в доставку"
	case StatusDelayed:
		return "Задержан"
	case StatusCompleted:
		return "Выполнен"
	case StatusCancelled:
		return "Отменен"
	}
	return string(s)
}
