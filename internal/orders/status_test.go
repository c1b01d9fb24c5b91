package orders_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/wrx861/tyres/internal/orders"
)

func TestCanTransition(t *testing.T) {
	t.Parallel()

	t.Run("pending only confirms or cancels", func(t *testing.T) {
		t.Parallel()

		assert.True(t, orders.CanTransition(orders.StatusPendingConfirmation, orders.StatusConfirmed))
		assert.True(t, orders.CanTransition(orders.StatusPendingConfirmation, orders.StatusCancelled))
		assert.False(t, orders.CanTransition(orders.StatusPendingConfirmation, orders.StatusDelivery))
		assert.False(t, orders.CanTransition(orders.StatusPendingConfirmation, orders.StatusCompleted))
	})

	t.Run("post-confirmation moves are permissive", func(t *testing.T) {
		t.Parallel()

		nonTerminal := []orders.Status{
			orders.StatusConfirmed, orders.StatusAwaitingPayment, orders.StatusInProgress,
			orders.StatusDelivery, orders.StatusDelayed,
		}
		targets := []orders.Status{
			orders.StatusAwaitingPayment, orders.StatusInProgress, orders.StatusDelivery,
			orders.StatusDelayed, orders.StatusCompleted, orders.StatusCancelled,
		}
		for _, from := range nonTerminal {
			for _, to := range targets {
				assert.True(t, orders.CanTransition(from, to), "%s -> %s", from, to)
			}
		}
		// backward move is allowed, matching the admin endpoint's behavior
		assert.True(t, orders.CanTransition(orders.StatusDelivery, orders.StatusAwaitingPayment))
	})

	t.Run("terminal states are final", func(t *testing.T) {
		t.Parallel()

		all := []orders.Status{
			orders.StatusPendingConfirmation, orders.StatusConfirmed,
			orders.StatusAwaitingPayment, orders.StatusInProgress, orders.StatusDelivery,
			orders.StatusDelayed, orders.StatusCompleted, orders.StatusCancelled,
		}
		for _, to := range all {
			assert.False(t, orders.CanTransition(orders.StatusCompleted, to), "completed -> %s", to)
			assert.False(t, orders.CanTransition(orders.StatusCancelled, to), "cancelled -> %s", to)
		}
		assert.True(t, orders.IsTerminal(orders.StatusCompleted))
		assert.True(t, orders.IsTerminal(orders.StatusCancelled))
		assert.False(t, orders.IsTerminal(orders.StatusConfirmed))
	})

	t.Run("nothing reaches pending", func(t *testing.T) {
		t.Parallel()

		for _, from := range []orders.Status{
			orders.StatusConfirmed, orders.StatusDelivery, orders.StatusCompleted,
		} {
			assert.False(t, orders.CanTransition(from, orders.StatusPendingConfirmation))
		}
	})
}

func TestIsValid(t *testing.T) {
	t.Parallel()

	assert.True(t, orders.IsValid(orders.StatusDelayed))
	assert.False(t, orders.IsValid(orders.Status("shipped")))
}
