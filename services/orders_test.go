package services

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"food-ordering-api/events"
	"food-ordering-api/models"
	"food-ordering-api/store"
	"food-ordering-api/store/storetest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingPublisher struct {
	mu     sync.Mutex
	events []events.Event
	err    error
}

func (p *recordingPublisher) Publish(_ context.Context, e events.Event) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, e)
	return p.err
}

func (p *recordingPublisher) Close() error { return nil }

func (p *recordingPublisher) types() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]string, len(p.events))
	for i, e := range p.events {
		out[i] = e.Type
	}
	return out
}

type orderFixture struct {
	store    *store.Store
	svc      *OrderService
	pub      *recordingPublisher
	customer *models.Customer
	stranger *models.Customer
	shop     *models.Shop
	rival    *models.Shop
	pizza    *models.FoodItem
	cola     *models.FoodItem
	foreign  *models.FoodItem
	now      time.Time
}

func newOrderFixture(t *testing.T) *orderFixture {
	s := storetest.Open(t)
	f := &orderFixture{
		store: s,
		pub:   &recordingPublisher{},
		now:   time.Date(2024, 5, 1, 18, 0, 0, 0, time.UTC),
	}
	f.svc = NewOrderService(s, f.pub, WithClock(func() time.Time { return f.now }))
	f.customer = storetest.Customer(t, s, "john")
	f.stranger = storetest.Customer(t, s, "eve")
	f.shop = storetest.Shop(t, s, "luigi")
	f.rival = storetest.Shop(t, s, "mario")
	cat := storetest.Category(t, s, "pizza")
	f.pizza = storetest.Food(t, s, f.shop, cat, "Margherita", 9.5)
	f.cola = storetest.Food(t, s, f.shop, cat, "Cola", 2)
	f.foreign = storetest.Food(t, s, f.rival, cat, "Marinara", 8)
	return f
}

func (f *orderFixture) place(t *testing.T) *models.Order {
	t.Helper()
	o, err := f.svc.PlaceOrder(context.Background(), f.customer, PlaceOrderInput{
		ShopID:          f.shop.ID,
		DeliveryAddress: "1 Main St",
		Comment:         "ring twice",
		Lines: []LineInput{
			{FoodItemID: f.pizza.ID, Quantity: 2, Comment: "no olives"},
			{FoodItemID: f.cola.ID, Quantity: 1},
		},
	})
	require.NoError(t, err)
	return o
}

func (f *orderFixture) advance(t *testing.T, id uint, to models.OrderStatus) {
	t.Helper()
	_, err := f.svc.UpdateOrderStatus(context.Background(), f.shop, id, to, "")
	require.NoError(t, err)
}

func TestPlaceOrderRoundTripsLines(t *testing.T) {
	f := newOrderFixture(t)
	o := f.place(t)

	assert.Equal(t, models.StatusPending, o.Status)
	assert.Equal(t, f.customer.ID, o.CustomerID)
	assert.Equal(t, f.shop.ID, o.ShopID)
	assert.Equal(t, "ring twice", o.Comment)
	assert.Equal(t, 40, o.EstimatedMinutes)
	assert.True(t, o.EstimatedTime.Equal(f.now.Add(40*time.Minute)), o.EstimatedTime)

	require.Len(t, o.Lines, 2)
	assert.Equal(t, f.pizza.ID, o.Lines[0].FoodItemID)
	assert.Equal(t, 2, o.Lines[0].Quantity)
	assert.Equal(t, "no olives", o.Lines[0].Comment)
	assert.Equal(t, f.cola.ID, o.Lines[1].FoodItemID)
	assert.Equal(t, 1, o.Lines[1].Quantity)
	assert.Empty(t, o.Lines[1].Comment)

	require.Len(t, o.StatusHistory, 1)
	assert.Equal(t, models.StatusPending, o.StatusHistory[0].ToStatus)
	assert.Equal(t, []string{events.OrderPlaced}, f.pub.types())
}

func TestLineCommentsKeptAsSubmitted(t *testing.T) {
	f := newOrderFixture(t)
	ctx := context.Background()

	o, err := f.svc.PlaceOrder(ctx, f.customer, PlaceOrderInput{
		ShopID:          f.shop.ID,
		DeliveryAddress: "Rr. Kosovareve 1",
		Lines:           []LineInput{{FoodItemID: f.pizza.ID, Quantity: 1, Comment: " no olives "}},
	})
	require.NoError(t, err)
	require.Len(t, o.Lines, 1)
	assert.Equal(t, " no olives ", o.Lines[0].Comment)

	updated, err := f.svc.UpdateOrder(ctx, f.customer, o.ID, UpdateOrderInput{
		Lines: []LinePatch{{ID: o.Lines[0].ID, Comment: ptr("  well done")}},
	})
	require.NoError(t, err)
	assert.Equal(t, "  well done", updated.Lines[0].Comment)

	reloaded, err := f.svc.GetOrder(ctx, Caller{Kind: models.KindCustomer, Username: f.customer.Username}, o.ID)
	require.NoError(t, err)
	assert.Equal(t, "  well done", reloaded.Lines[0].Comment)
}

func TestPlaceOrderValidation(t *testing.T) {
	f := newOrderFixture(t)
	ctx := context.Background()

	tests := []struct {
		name string
		in   PlaceOrderInput
		want error
	}{
		{"no lines", PlaceOrderInput{ShopID: f.shop.ID, DeliveryAddress: "x"}, ErrInvalid},
		{"no address", PlaceOrderInput{ShopID: f.shop.ID, Lines: []LineInput{{FoodItemID: f.pizza.ID, Quantity: 1}}}, ErrInvalid},
		{"zero quantity", PlaceOrderInput{ShopID: f.shop.ID, DeliveryAddress: "x", Lines: []LineInput{{FoodItemID: f.pizza.ID}}}, ErrInvalid},
		{"unknown shop", PlaceOrderInput{ShopID: 999, DeliveryAddress: "x", Lines: []LineInput{{FoodItemID: f.pizza.ID, Quantity: 1}}}, ErrNotFound},
		{"unknown food", PlaceOrderInput{ShopID: f.shop.ID, DeliveryAddress: "x", Lines: []LineInput{{FoodItemID: 999, Quantity: 1}}}, ErrNotFound},
		{"food of another shop", PlaceOrderInput{ShopID: f.shop.ID, DeliveryAddress: "x", Lines: []LineInput{{FoodItemID: f.foreign.ID, Quantity: 1}}}, ErrInvalid},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := f.svc.PlaceOrder(ctx, f.customer, tt.in)
			assert.ErrorIs(t, err, tt.want)
		})
	}

	orders, err := f.svc.ShopOrders(ctx, f.shop, "")
	require.NoError(t, err)
	assert.Empty(t, orders, "failed placements must not leave rows behind")
}

func TestPlaceOrderRejectsInactiveFood(t *testing.T) {
	f := newOrderFixture(t)
	ctx := context.Background()
	require.NoError(t, f.store.UpdateFoodItem(ctx, f.cola, map[string]any{"is_active": false}))

	_, err := f.svc.PlaceOrder(ctx, f.customer, PlaceOrderInput{
		ShopID: f.shop.ID, DeliveryAddress: "x",
		Lines: []LineInput{{FoodItemID: f.cola.ID, Quantity: 1}},
	})
	assert.ErrorIs(t, err, ErrInvalid)
}

func TestPublishFailureDoesNotFailOrder(t *testing.T) {
	f := newOrderFixture(t)
	f.pub.err = errors.New("broker down")
	o := f.place(t)
	assert.NotZero(t, o.ID)
}

func TestCustomerCancel(t *testing.T) {
	cases := []struct {
		name    string
		setup   []models.OrderStatus
		allowed bool
	}{
		{"from pending", nil, true},
		{"from in transit", []models.OrderStatus{models.StatusInTransit}, true},
		{"from delivered", []models.OrderStatus{models.StatusInTransit, models.StatusDelivered}, false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			f := newOrderFixture(t)
			o := f.place(t)
			for _, st := range tc.setup {
				f.advance(t, o.ID, st)
			}

			updated, err := f.svc.UpdateOrder(context.Background(), f.customer, o.ID,
				UpdateOrderInput{Status: ptr(models.StatusCanceled)})
			if !tc.allowed {
				assert.ErrorIs(t, err, ErrInvalidTransition)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, models.StatusCanceled, updated.Status)
			last := updated.StatusHistory[len(updated.StatusHistory)-1]
			assert.Equal(t, models.StatusCanceled, last.ToStatus)
			assert.Equal(t, models.KindCustomer, last.Actor)
		})
	}
}

func TestCancelTwiceFails(t *testing.T) {
	f := newOrderFixture(t)
	o := f.place(t)
	ctx := context.Background()

	_, err := f.svc.UpdateOrder(ctx, f.customer, o.ID, UpdateOrderInput{Status: ptr(models.StatusCanceled)})
	require.NoError(t, err)
	_, err = f.svc.UpdateOrder(ctx, f.customer, o.ID, UpdateOrderInput{Status: ptr(models.StatusCanceled)})
	assert.ErrorIs(t, err, ErrInvalidTransition)
}

func TestUpdateOrderRules(t *testing.T) {
	f := newOrderFixture(t)
	o := f.place(t)
	ctx := context.Background()

	_, err := f.svc.UpdateOrder(ctx, f.stranger, o.ID, UpdateOrderInput{Comment: ptr("mine now")})
	assert.ErrorIs(t, err, ErrUnauthorized)

	_, err = f.svc.UpdateOrder(ctx, f.customer, 999, UpdateOrderInput{Comment: ptr("x")})
	assert.ErrorIs(t, err, ErrNotFound)

	_, err = f.svc.UpdateOrder(ctx, f.customer, o.ID, UpdateOrderInput{Status: ptr(models.StatusDelivered)})
	assert.ErrorIs(t, err, ErrInvalidTransition)

	_, err = f.svc.UpdateOrder(ctx, f.customer, o.ID, UpdateOrderInput{Lines: []LinePatch{{ID: 999, Quantity: ptr(1)}}})
	assert.ErrorIs(t, err, ErrNotFound)

	_, err = f.svc.UpdateOrder(ctx, f.customer, o.ID, UpdateOrderInput{Lines: []LinePatch{{ID: o.Lines[0].ID, Quantity: ptr(0)}}})
	assert.ErrorIs(t, err, ErrInvalid)

	updated, err := f.svc.UpdateOrder(ctx, f.customer, o.ID, UpdateOrderInput{
		DeliveryAddress: ptr("2 Side St"),
		Lines:           []LinePatch{{ID: o.Lines[0].ID, Quantity: ptr(3), Comment: ptr("extra cheese")}},
	})
	require.NoError(t, err)
	assert.Equal(t, "2 Side St", updated.DeliveryAddress)
	assert.Equal(t, "ring twice", updated.Comment)
	assert.Equal(t, 3, updated.Lines[0].Quantity)
	assert.Equal(t, "extra cheese", updated.Lines[0].Comment)
	assert.Equal(t, 1, updated.Lines[1].Quantity)
	assert.Equal(t, models.StatusPending, updated.Status)

	f.advance(t, o.ID, models.StatusInTransit)
	f.advance(t, o.ID, models.StatusDelivered)
	_, err = f.svc.UpdateOrder(ctx, f.customer, o.ID, UpdateOrderInput{Comment: ptr("too late")})
	assert.ErrorIs(t, err, ErrConflict)
}

func TestShopStatusPath(t *testing.T) {
	f := newOrderFixture(t)
	o := f.place(t)
	ctx := context.Background()

	_, err := f.svc.UpdateOrderStatus(ctx, f.shop, o.ID, models.StatusCanceled, "")
	assert.ErrorIs(t, err, ErrUnauthorized)

	_, err = f.svc.UpdateOrderStatus(ctx, f.shop, o.ID, models.StatusDelivered, "")
	assert.ErrorIs(t, err, ErrInvalidTransition)

	_, err = f.svc.UpdateOrderStatus(ctx, f.rival, o.ID, models.StatusInTransit, "")
	assert.ErrorIs(t, err, ErrNotFound)

	updated, err := f.svc.UpdateOrderStatus(ctx, f.shop, o.ID, models.StatusInTransit, "driver left")
	require.NoError(t, err)
	assert.Equal(t, models.StatusInTransit, updated.Status)

	updated, err = f.svc.UpdateOrderStatus(ctx, f.shop, o.ID, models.StatusDelivered, "")
	require.NoError(t, err)
	assert.Equal(t, models.StatusDelivered, updated.Status)

	require.Len(t, updated.StatusHistory, 3)
	assert.Equal(t, "driver left", updated.StatusHistory[1].Note)
	assert.Equal(t, models.StatusPending, updated.StatusHistory[1].FromStatus)
	assert.Equal(t, f.shop.ID, updated.StatusHistory[2].ChangedBy)

	_, err = f.svc.UpdateOrderStatus(ctx, f.shop, o.ID, models.StatusInTransit, "")
	assert.ErrorIs(t, err, ErrInvalidTransition)

	assert.Equal(t, []string{events.OrderPlaced, events.OrderStatusChanged, events.OrderStatusChanged}, f.pub.types())
}

func TestNonStaffShopCannotAdvance(t *testing.T) {
	f := newOrderFixture(t)
	o := f.place(t)
	f.shop.IsStaff = false
	f.shop.IsAdministrator = false

	_, err := f.svc.UpdateOrderStatus(context.Background(), f.shop, o.ID, models.StatusInTransit, "")
	assert.ErrorIs(t, err, ErrUnauthorized)
}

func TestGetOrderScoping(t *testing.T) {
	f := newOrderFixture(t)
	o := f.place(t)
	ctx := context.Background()

	got, err := f.svc.GetOrder(ctx, Caller{Kind: models.KindCustomer, Username: "john"}, o.ID)
	require.NoError(t, err)
	assert.Equal(t, o.ID, got.ID)

	got, err = f.svc.GetOrder(ctx, Caller{Kind: models.KindShop, Username: "luigi"}, o.ID)
	require.NoError(t, err)
	assert.Equal(t, o.ID, got.ID)

	_, err = f.svc.GetOrder(ctx, Caller{Kind: models.KindCustomer, Username: "eve"}, o.ID)
	assert.ErrorIs(t, err, ErrNotFound)

	_, err = f.svc.GetOrder(ctx, Caller{Kind: models.KindShop, Username: "mario"}, o.ID)
	assert.ErrorIs(t, err, ErrNotFound)

	_, err = f.svc.GetOrder(ctx, Caller{Kind: models.KindCustomer, Username: "john"}, 999)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestDeleteOrder(t *testing.T) {
	f := newOrderFixture(t)
	o := f.place(t)
	ctx := context.Background()

	assert.ErrorIs(t, f.svc.DeleteOrder(ctx, f.stranger, o.ID), ErrUnauthorized)
	require.NoError(t, f.svc.DeleteOrder(ctx, f.customer, o.ID))
	assert.ErrorIs(t, f.svc.DeleteOrder(ctx, f.customer, o.ID), ErrNotFound)

	mine, err := f.svc.CustomerOrders(ctx, f.customer)
	require.NoError(t, err)
	assert.Empty(t, mine.Orders)
	assert.Contains(t, f.pub.types(), events.OrderDeleted)
}

func TestOrderListings(t *testing.T) {
	f := newOrderFixture(t)
	ctx := context.Background()
	first := f.place(t)
	second := f.place(t)
	f.advance(t, second.ID, models.StatusInTransit)

	mine, err := f.svc.CustomerOrders(ctx, f.customer)
	require.NoError(t, err)
	require.Len(t, mine.Orders, 2)
	assert.Equal(t, second.ID, mine.Orders[0].ID)
	assert.Len(t, mine.Orders[1].Lines, 2)

	all, err := f.svc.ShopOrders(ctx, f.shop, "")
	require.NoError(t, err)
	assert.Len(t, all, 2)
	require.NotNil(t, all[0].Customer)
	assert.Equal(t, "john", all[0].Customer.Username)

	pending, err := f.svc.ShopOrders(ctx, f.shop, "pending")
	require.NoError(t, err)
	require.Len(t, pending, 1)
	assert.Equal(t, first.ID, pending[0].ID)

	_, err = f.svc.ShopOrders(ctx, f.shop, "LOST")
	assert.ErrorIs(t, err, ErrInvalid)

	rival, err := f.svc.ShopOrders(ctx, f.rival, "")
	require.NoError(t, err)
	assert.Empty(t, rival)

	one, err := f.svc.ShopOrder(ctx, f.shop, first.ID)
	require.NoError(t, err)
	assert.Equal(t, first.ID, one.ID)

	_, err = f.svc.ShopOrder(ctx, f.rival, first.ID)
	assert.ErrorIs(t, err, ErrNotFound)
}
