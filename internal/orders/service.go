package orders

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/segmentio/kafka-go"
	"github.com/shopspring/decimal"
	kafkax "github.com/wrx861/tyres/internal/kafka"
	"github.com/wrx861/tyres/internal/redisx"
)

// MarkupSource provides the current global markup percentage. The service
// reads it exactly once per checkout and freezes the value onto the order;
// it is never re-read for an existing order.
type MarkupSource interface {
	Current(ctx context.Context) (decimal.Decimal, error)
}

// Store is the persistence surface the lifecycle needs. *Repo implements it.
type Store interface {
	Create(ctx context.Context, o Order, externalID string) (Order, bool, error)
	Get(ctx context.Context, orderID, ownerID string) (Order, error)
	Confirm(ctx context.Context, orderID, adminID, comment string, now time.Time) (Order, error)
	Reject(ctx context.Context, orderID, adminID, reason string, now time.Time) (Order, error)
	UpdateStatus(ctx context.Context, orderID string, to Status, comment string, now time.Time) (Order, error)
	Hide(ctx context.Context, orderID string) error
}

type Service struct {
	Repo     Store
	Markup   MarkupSource
	Producer *kafkax.Producer
	Redis    *redis.Client

	ServiceName     string
	AdminTelegramID string
}

// Create turns a cart snapshot (or ad-hoc submitted items) into a pending
// order. Final prices are recomputed server-side from base prices with the
// markup in effect right now. A non-empty externalID makes the call
// idempotent; a duplicate submit returns the stored order and emits nothing.
func (s *Service) Create(ctx context.Context, userID, userName string, items []OrderItem, addr DeliveryAddress, externalID string) (Order, bool, error) {
	if len(items) == 0 {
		return Order{}, false, ErrEmptyOrder
	}
	for _, it := range items {
		if it.Quantity <= 0 {
			return Order{}, false, ErrInvalidQuantity
		}
	}
	if err := addr.Validate(); err != nil {
		return Order{}, false, err
	}

	// fast path: a repeated submit with a known idempotency key resolves
	// from Redis without touching Postgres; misses fall through to the
	// unique-index guard in the store.
	if externalID != "" {
		idemKey := fmt.Sprintf(redisx.KeyIdemOrderCreate, externalID)
		if id, err := s.Redis.Get(ctx, idemKey).Result(); err == nil && id != "" {
			if o, err := s.Repo.Get(ctx, id, ""); err == nil {
				return o, true, nil
			}
		} else if err != nil && !errors.Is(err, redis.Nil) {
			log.Printf("idempotency cache read: %v", err)
		}
	}

	markup, err := s.Markup.Current(ctx)
	if err != nil {
		return Order{}, false, err
	}

	now := time.Now().UTC()
	priced := PriceItems(items, markup)
	o := Order{
		OrderID:          NewOrderID(now),
		UserTelegramID:   userID,
		UserName:         userName,
		Items:            priced,
		TotalAmount:      ComputeTotal(priced),
		MarkupPercentage: markup,
		Status:           StatusPendingConfirmation,
		DeliveryAddress:  &addr,
		CreatedAt:        now,
	}

	created, existed, err := s.Repo.Create(ctx, o, externalID)
	if err != nil {
		return Order{}, false, err
	}
	if existed {
		return created, true, nil
	}

	if externalID != "" {
		idemKey := fmt.Sprintf(redisx.KeyIdemOrderCreate, externalID)
		_ = s.Redis.Set(ctx, idemKey, created.OrderID, redisx.TTLIdempotency).Err()
	}
	s.cacheStatus(ctx, created.OrderID, created.Status)

	s.emit(EventOrderCreated, created.OrderID, OrderCreatedPayload{
		OrderID:     created.OrderID,
		RecipientID: s.AdminTelegramID,
		UserName:    userName,
		ItemsCount:  len(created.Items),
		TotalAmount: created.TotalAmount,
	})
	log.Printf("order created: %s by user %s", created.OrderID, userID)
	return created, false, nil
}

func (s *Service) Confirm(ctx context.Context, orderID, adminID, comment string) (Order, error) {
	o, err := s.Repo.Confirm(ctx, orderID, adminID, comment, time.Now().UTC())
	if err != nil {
		return Order{}, err
	}
	s.cacheStatus(ctx, o.OrderID, o.Status)
	s.emit(EventOrderConfirmed, o.OrderID, OrderConfirmedPayload{
		OrderID:      o.OrderID,
		RecipientID:  o.UserTelegramID,
		AdminComment: comment,
	})
	log.Printf("order %s confirmed by admin %s", orderID, adminID)
	return o, nil
}

func (s *Service) Reject(ctx context.Context, orderID, adminID, reason string) (Order, error) {
	o, err := s.Repo.Reject(ctx, orderID, adminID, reason, time.Now().UTC())
	if err != nil {
		return Order{}, err
	}
	s.cacheStatus(ctx, o.OrderID, o.Status)
	s.emit(EventOrderRejected, o.OrderID, OrderRejectedPayload{
		OrderID:     o.OrderID,
		RecipientID: o.UserTelegramID,
		Reason:      reason,
	})
	log.Printf("order %s rejected by admin %s", orderID, adminID)
	return o, nil
}

// AdvanceStatus moves a confirmed order to any post-confirmation status.
// Pending orders must go through Confirm/Reject; terminal orders never move.
func (s *Service) AdvanceStatus(ctx context.Context, orderID, adminID string, to Status, comment string) (Order, error) {
	if !advanceTargets[to] {
		return Order{}, ErrInvalidTransition
	}
	o, err := s.Repo.UpdateStatus(ctx, orderID, to, comment, time.Now().UTC())
	if err != nil {
		return Order{}, err
	}
	s.cacheStatus(ctx, o.OrderID, o.Status)
	s.emit(EventOrderStatusChanged, o.OrderID, OrderStatusChangedPayload{
		OrderID:     o.OrderID,
		RecipientID: o.UserTelegramID,
		StatusLabel: Label(to),
		Comment:     comment,
	})
	log.Printf("order %s status changed to %s by admin %s", orderID, to, adminID)
	return o, nil
}

func (s *Service) Hide(ctx context.Context, orderID string) error {
	return s.Repo.Hide(ctx, orderID)
}

// StatusOf serves lightweight status polling: Redis first, DB on miss.
func (s *Service) StatusOf(ctx context.Context, orderID string) (Status, error) {
	key := fmt.Sprintf(redisx.KeyOrderStatus, orderID)
	if v, err := s.Redis.Get(ctx, key).Result(); err == nil && v != "" {
		return Status(v), nil
	} else if err != nil && !errors.Is(err, redis.Nil) {
		log.Printf("status cache read: %v", err)
	}
	o, err := s.Repo.Get(ctx, orderID, "")
	if err != nil {
		return "", err
	}
	s.cacheStatus(ctx, orderID, o.Status)
	return o.Status, nil
}

func (s *Service) cacheStatus(ctx context.Context, orderID string, st Status) {
	key := fmt.Sprintf(redisx.KeyOrderStatus, orderID)
	if err := s.Redis.Set(ctx, key, string(st), redisx.TTLStatusCache).Err(); err != nil {
		log.Printf("status cache write: %v", err)
	}
}

// emit publishes a lifecycle event. The producer is async: a broker outage
// can lose a notification but never fails or delays the transition that
// triggered it.
func (s *Service) emit(eventType, orderID string, payload any) {
	ev := Envelope{
		EventID:       uuid.NewString(),
		EventType:     eventType,
		EventVersion:  1,
		OccurredAt:    time.Now().UTC(),
		Producer:      s.ServiceName,
		CorrelationID: orderID,
		Payload:       kafkax.MustMarshal(payload),
	}
	s.Producer.Publish(PartitionKey(orderID), kafkax.MustMarshal(ev),
		kafka.Header{Key: "x-event-type", Value: []byte(eventType)},
		kafka.Header{Key: "x-event-version", Value: []byte("1")},
	)
}
