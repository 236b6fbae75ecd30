package services

import (
	"context"
	"math"
	"testing"

	"toyWholesale/models"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOrderService_PlaceOrderCreatesOneChat(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, models.PolicyForward)
	buyer := f.user(t, "buyer@example.by")
	a := f.product(t, "A", "10", "9", "8")
	b := f.product(t, "B", "7", "6.50", "6")

	clientTotal := decimal.RequireFromString("350.00")
	order, err := f.orders.PlaceOrder(ctx, buyer.UserId, Checkout{
		Items:           []CheckoutItem{{ProductId: a, Quantity: 5}, {ProductId: b, Quantity: 50}},
		DeliveryAddress: "Минск, Складская 5",
		Total:           &clientTotal,
	})
	require.NoError(t, err)
	assert.Equal(t, "350.00", order.Total)
	assert.Equal(t, models.StatusProcessing, order.Status)
	assert.Equal(t, "В обработке", order.StatusLabel)
	require.Len(t, order.Items, 2)
	assert.Positive(t, order.ChatId)

	chats, err := f.chats.ListUserChats(ctx, buyer.UserId)
	require.NoError(t, err)
	require.Len(t, chats, 1)
	assert.Equal(t, order.Id, chats[0].OrderId)
	assert.Equal(t, buyer.UserId, chats[0].UserId)

	mine, err := f.orders.ListUserOrders(ctx, buyer.UserId)
	require.NoError(t, err)
	require.Len(t, mine, 1)
	assert.Equal(t, order.ChatId, mine[0].ChatId)
}

func TestOrderService_TotalIsFrozen(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, models.PolicyForward)
	buyer := f.user(t, "buyer@example.by")
	cubes := f.product(t, "Кубики", "10", "8", "6")

	order, err := f.orders.PlaceOrder(ctx, buyer.UserId, Checkout{
		Items:           []CheckoutItem{{ProductId: cubes, Quantity: 20}},
		DeliveryAddress: "Минск",
	})
	require.NoError(t, err)
	assert.Equal(t, "160.00", order.Total)

	_, err = f.products.UpdateProduct(ctx, cubes, ProductInput{Name: "Кубики", Tiers: mustTiers(t, "100", "80", "60"), InStock: true}, nil)
	require.NoError(t, err)

	got, err := f.orders.GetOrder(ctx, buyer, order.Id)
	require.NoError(t, err)
	assert.Equal(t, "160.00", got.Total)
	assert.Equal(t, "8.00", got.Items[0].UnitPrice().StringFixed(2))
}

func TestOrderService_PlaceOrderRejects(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, models.PolicyForward)
	buyer := f.user(t, "buyer@example.by")
	cubes := f.product(t, "Кубики", "10", "8", "6")

	wrong := decimal.RequireFromString("100")
	cases := []struct {
		name string
		req  Checkout
		want error
	}{
		{"empty cart", Checkout{DeliveryAddress: "Минск"}, models.ErrEmptyCart},
		{"no address", Checkout{Items: []CheckoutItem{{cubes, 5}}}, models.ErrBadRequest},
		{"below minimum", Checkout{Items: []CheckoutItem{{cubes, 4}}, DeliveryAddress: "Минск"}, models.ErrQuantityTooSmall},
		{"unknown product", Checkout{Items: []CheckoutItem{{999, 5}}, DeliveryAddress: "Минск"}, models.ErrBadRequest},
		{"tampered total", Checkout{Items: []CheckoutItem{{cubes, 20}}, DeliveryAddress: "Минск", Total: &wrong}, models.ErrTotalMismatch},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := f.orders.PlaceOrder(ctx, buyer.UserId, tc.req)
			assert.ErrorIs(t, err, tc.want)
		})
	}

	orders, err := f.orders.ListOrders(ctx, nil)
	require.NoError(t, err)
	assert.Empty(t, orders)
}

func TestOrderService_DuplicateLinesMerge(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, models.PolicyForward)
	buyer := f.user(t, "buyer@example.by")
	cubes := f.product(t, "Кубики", "10", "8", "6")

	// 3 + 3 is below the minimum on its own lines but fine once merged
	order, err := f.orders.PlaceOrder(ctx, buyer.UserId, Checkout{
		Items:           []CheckoutItem{{cubes, 3}, {cubes, 3}},
		DeliveryAddress: "Минск",
	})
	require.NoError(t, err)
	require.Len(t, order.Items, 1)
	assert.Equal(t, 6, order.Items[0].Quantity)
	assert.Equal(t, "60.00", order.Total)
}

func TestOrderService_QuantityCap(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, models.PolicyForward)
	buyer := f.user(t, "buyer@example.by")
	cubes := f.product(t, "Кубики", "10", "8", "6")

	for name, items := range map[string][]CheckoutItem{
		"huge line":     {{cubes, math.MaxInt}},
		"merged lines":  {{cubes, 60000}, {cubes, 60000}},
		"wrapping sums": {{cubes, math.MaxInt/2 + 1}, {cubes, math.MaxInt/2 + 1}},
	} {
		t.Run(name, func(t *testing.T) {
			_, err := f.orders.PlaceOrder(ctx, buyer.UserId, Checkout{Items: items, DeliveryAddress: "Минск"})
			assert.ErrorIs(t, err, models.ErrQuantityTooLarge)
		})
	}

	orders, err := f.orders.ListUserOrders(ctx, buyer.UserId)
	require.NoError(t, err)
	assert.Empty(t, orders)
}

func TestOrderService_PlaceCartOrderClearsCart(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, models.PolicyForward)
	buyer := f.user(t, "buyer@example.by")
	cubes := f.product(t, "Кубики", "10", "8", "6")

	_, err := f.carts.AddCartItem(ctx, "cart-1", cubes, 50)
	require.NoError(t, err)

	order, err := f.orders.PlaceCartOrder(ctx, buyer.UserId, "cart-1", "Минск", nil)
	require.NoError(t, err)
	assert.Equal(t, "300.00", order.Total)
	assert.False(t, f.mr.Exists("cart:cart-1"))

	_, err = f.orders.PlaceCartOrder(ctx, buyer.UserId, "cart-1", "Минск", nil)
	assert.ErrorIs(t, err, models.ErrEmptyCart)
}

func TestOrderService_GetOrderVisibility(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, models.PolicyForward)
	buyer := f.user(t, "buyer@example.by")
	other := f.user(t, "other@example.by")
	admin := f.admin(t)
	cubes := f.product(t, "Кубики", "10", "8", "6")

	order, err := f.orders.PlaceOrder(ctx, buyer.UserId, Checkout{Items: []CheckoutItem{{cubes, 5}}, DeliveryAddress: "Минск"})
	require.NoError(t, err)

	_, err = f.orders.GetOrder(ctx, buyer, order.Id)
	assert.NoError(t, err)
	_, err = f.orders.GetOrder(ctx, admin, order.Id)
	assert.NoError(t, err)
	_, err = f.orders.GetOrder(ctx, other, order.Id)
	assert.ErrorIs(t, err, models.ErrNotFoundError)

	byAdmin, err := f.orders.ListUserOrdersAdmin(ctx, buyer.UserId)
	require.NoError(t, err)
	assert.Len(t, byAdmin, 1)
	_, err = f.orders.ListUserOrdersAdmin(ctx, 999)
	assert.ErrorIs(t, err, models.ErrNotFoundError)
}

func TestOrderService_UpdateStatus(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, models.PolicyForward)
	buyer := f.user(t, "buyer@example.by")
	cubes := f.product(t, "Кубики", "10", "8", "6")

	order, err := f.orders.PlaceOrder(ctx, buyer.UserId, Checkout{Items: []CheckoutItem{{cubes, 20}}, DeliveryAddress: "Минск"})
	require.NoError(t, err)

	updated, err := f.orders.UpdateStatus(ctx, order.Id, models.StatusUpdate{Status: models.StatusDelivering, DeliveryDate: "2025-06-01"})
	require.NoError(t, err)
	assert.Equal(t, models.StatusDelivering, updated.Status)

	got, err := f.orders.GetOrder(ctx, buyer, order.Id)
	require.NoError(t, err)
	assert.Equal(t, models.StatusDelivering, got.Status)
	assert.Equal(t, "2025-06-01", got.DeliveryDate)
	assert.Equal(t, order.Total, got.Total)
	assert.Equal(t, order.Items[0].Quantity, got.Items[0].Quantity)

	_, err = f.orders.UpdateStatus(ctx, order.Id, models.StatusUpdate{Status: models.StatusProcessing})
	assert.ErrorIs(t, err, models.ErrInvalidTransition)
	assert.ErrorIs(t, err, models.ErrConflict)

	_, err = f.orders.UpdateStatus(ctx, order.Id, models.StatusUpdate{Status: models.StatusCompleted, DeliveryDate: "01.06.2025"})
	assert.ErrorIs(t, err, models.ErrInvalidDeliveryDate)

	_, err = f.orders.UpdateStatus(ctx, order.Id, models.StatusUpdate{Status: "lost"})
	assert.ErrorIs(t, err, models.ErrInvalidStatus)

	_, err = f.orders.UpdateStatus(ctx, 999, models.StatusUpdate{Status: models.StatusCompleted})
	assert.ErrorIs(t, err, models.ErrNotFoundError)

	_, err = f.orders.UpdateStatus(ctx, order.Id, models.StatusUpdate{Status: models.StatusCompleted})
	require.NoError(t, err)
	_, err = f.orders.UpdateStatus(ctx, order.Id, models.StatusUpdate{Status: models.StatusCompleted})
	assert.ErrorIs(t, err, models.ErrInvalidTransition, "completed orders are locked")
}

func TestOrderService_FreePolicyAllowsAnyStatus(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, models.PolicyFree)
	buyer := f.user(t, "buyer@example.by")
	cubes := f.product(t, "Кубики", "10", "8", "6")

	order, err := f.orders.PlaceOrder(ctx, buyer.UserId, Checkout{Items: []CheckoutItem{{cubes, 5}}, DeliveryAddress: "Минск"})
	require.NoError(t, err)

	for _, s := range []models.OrderStatus{models.StatusCompleted, models.StatusProcessing, models.StatusConfirmation} {
		got, err := f.orders.UpdateStatus(ctx, order.Id, models.StatusUpdate{Status: s})
		require.NoError(t, err)
		assert.Equal(t, s, got.Status)
	}
}

func TestStatsService_Stats(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, models.PolicyForward)
	buyer := f.user(t, "buyer@example.by")
	cubes := f.product(t, "Кубики", "10", "8", "6")

	first, err := f.orders.PlaceOrder(ctx, buyer.UserId, Checkout{Items: []CheckoutItem{{cubes, 20}}, DeliveryAddress: "Минск"})
	require.NoError(t, err)
	_, err = f.orders.PlaceOrder(ctx, buyer.UserId, Checkout{Items: []CheckoutItem{{cubes, 50}}, DeliveryAddress: "Минск"})
	require.NoError(t, err)
	_, err = f.orders.UpdateStatus(ctx, first.Id, models.StatusUpdate{Status: models.StatusCompleted})
	require.NoError(t, err)

	stats, err := f.stats.Stats(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, stats.TotalUsers)
	assert.Equal(t, 2, stats.TotalOrders)
	assert.Equal(t, 1, stats.OpenOrders)
	assert.Equal(t, "460.00", stats.TotalRevenue)
	assert.Equal(t, 1, stats.OrdersByStatus["completed"])
	assert.Equal(t, 0, stats.OrdersByStatus["delivering"])
	assert.Len(t, stats.OrdersByStatus, 5)
}
