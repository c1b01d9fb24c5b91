package orders_test

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	kafkax "github.com/wrx861/tyres/internal/kafka"
	"github.com/wrx861/tyres/internal/orders"
	"github.com/wrx861/tyres/internal/redisx"
)

type fakeStore struct {
	byID        map[string]orders.Order
	createCalls int
}

func (f *fakeStore) Create(_ context.Context, o orders.Order, _ string) (orders.Order, bool, error) {
	f.createCalls++
	if f.byID == nil {
		f.byID = map[string]orders.Order{}
	}
	f.byID[o.OrderID] = o
	return o, false, nil
}

func (f *fakeStore) Get(_ context.Context, orderID, _ string) (orders.Order, error) {
	o, ok := f.byID[orderID]
	if !ok {
		return orders.Order{}, orders.ErrNotFound
	}
	return o, nil
}

func (f *fakeStore) Confirm(_ context.Context, orderID, _, _ string, _ time.Time) (orders.Order, error) {
	return f.byID[orderID], nil
}

func (f *fakeStore) Reject(_ context.Context, orderID, _, _ string, _ time.Time) (orders.Order, error) {
	return f.byID[orderID], nil
}

func (f *fakeStore) UpdateStatus(_ context.Context, orderID string, _ orders.Status, _ string, _ time.Time) (orders.Order, error) {
	return f.byID[orderID], nil
}

func (f *fakeStore) Hide(context.Context, string) error { return nil }

type fixedMarkup struct{ v decimal.Decimal }

func (m fixedMarkup) Current(context.Context) (decimal.Decimal, error) { return m.v, nil }

func newService(t *testing.T, st orders.Store) (*orders.Service, *redis.Client) {
	t.Helper()
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })
	return &orders.Service{
		Repo:            st,
		Markup:          fixedMarkup{decimal.NewFromInt(15)},
		Producer:        kafkax.NewProducer([]string{"127.0.0.1:9092"}, orders.TopicNotifications, 64),
		Redis:           rdb,
		ServiceName:     "api-test",
		AdminTelegramID: "1",
	}, rdb
}

func addr() orders.DeliveryAddress {
	return orders.DeliveryAddress{City: "Москва", Street: "Ленина", House: "5", Phone: "+79990000000"}
}

func TestCreateRejectsIncompleteAddress(t *testing.T) {
	t.Parallel()

	st := &fakeStore{}
	svc, _ := newService(t, st)
	items := []orders.OrderItem{{Code: "T1", Quantity: 1, PriceBase: dec("1000")}}

	for _, a := range []orders.DeliveryAddress{
		{Street: "Ленина", House: "5", Phone: "+7"},
		{City: "Москва", House: "5", Phone: "+7"},
		{City: "Москва", Street: "Ленина", Phone: "+7"},
		{City: "Москва", Street: "Ленина", House: "5"},
		{},
	} {
		_, _, err := svc.Create(context.Background(), "10", "ivan", items, a, "")
		assert.ErrorIs(t, err, orders.ErrInvalidAddress)
	}
	assert.Zero(t, st.createCalls, "nothing persisted on validation failure")
}

func TestCreateFreezesMarkupAndCachesStatus(t *testing.T) {
	t.Parallel()

	st := &fakeStore{}
	svc, rdb := newService(t, st)
	items := []orders.OrderItem{
		{Code: "T1", Quantity: 1, PriceBase: dec("1000")},
		{Code: "T2", Quantity: 2, PriceBase: dec("2000")},
	}

	o, existed, err := svc.Create(context.Background(), "10", "ivan", items, addr(), "")
	require.NoError(t, err)
	assert.False(t, existed)
	assert.True(t, o.TotalAmount.Equal(dec("5750.00")), "got %s", o.TotalAmount)
	assert.True(t, o.MarkupPercentage.Equal(dec("15")))
	assert.Equal(t, orders.StatusPendingConfirmation, o.Status)

	cached, err := rdb.Get(context.Background(), fmt.Sprintf(redisx.KeyOrderStatus, o.OrderID)).Result()
	require.NoError(t, err)
	assert.Equal(t, string(orders.StatusPendingConfirmation), cached)
}

func TestCreateResubmitResolvesFromIdempotencyKey(t *testing.T) {
	t.Parallel()

	st := &fakeStore{}
	svc, rdb := newService(t, st)
	items := []orders.OrderItem{{Code: "T1", Quantity: 4, PriceBase: dec("1000")}}

	first, existed, err := svc.Create(context.Background(), "10", "ivan", items, addr(), "ext-1")
	require.NoError(t, err)
	require.False(t, existed)
	require.Equal(t, 1, st.createCalls)

	// the idempotency key now points at the stored order
	id, err := rdb.Get(context.Background(), fmt.Sprintf(redisx.KeyIdemOrderCreate, "ext-1")).Result()
	require.NoError(t, err)
	assert.Equal(t, first.OrderID, id)

	second, existed, err := svc.Create(context.Background(), "10", "ivan", items, addr(), "ext-1")
	require.NoError(t, err)
	assert.True(t, existed)
	assert.Equal(t, first.OrderID, second.OrderID)
	assert.Equal(t, 1, st.createCalls, "duplicate submit never reaches the store")
}
