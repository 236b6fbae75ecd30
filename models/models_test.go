package models

import (
	"encoding/json"
	"errors"
	"testing"

	"toyWholesale/pricing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseOrderStatus(t *testing.T) {
	tests := []struct {
		in   string
		want OrderStatus
	}{
		{"processing", StatusProcessing},
		{"  Delivering ", StatusDelivering},
		{"В обработке", StatusProcessing},
		{"Собирается", StatusAssembling},
		{"Доставляется", StatusDelivering},
		{"Подтверждение", StatusConfirmation},
		{"Завершен", StatusCompleted},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseOrderStatus(tt.in)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}

	_, err := ParseOrderStatus("shipped")
	assert.ErrorIs(t, err, ErrInvalidStatus)
	assert.ErrorIs(t, err, ErrBadRequest)
}

func TestStatusLabels(t *testing.T) {
	assert.Equal(t, "В обработке", StatusProcessing.Label())
	assert.Equal(t, "Завершен", StatusCompleted.Label())
	assert.Len(t, AllStatuses(), 5)
	assert.Equal(t, StatusProcessing, AllStatuses()[0])
}

func TestStatusPolicy_Forward(t *testing.T) {
	p := PolicyForward

	assert.NoError(t, p.CheckTransition(StatusProcessing, StatusDelivering))
	assert.NoError(t, p.CheckTransition(StatusProcessing, StatusCompleted))
	assert.NoError(t, p.CheckTransition(StatusDelivering, StatusDelivering), "same stage may update the delivery date")

	err := p.CheckTransition(StatusDelivering, StatusAssembling)
	assert.ErrorIs(t, err, ErrInvalidTransition)
	assert.ErrorIs(t, err, ErrConflict)

	assert.ErrorIs(t, p.CheckTransition(StatusCompleted, StatusCompleted), ErrInvalidTransition)
	assert.ErrorIs(t, p.CheckTransition(StatusProcessing, "lost"), ErrInvalidStatus)
}

func TestStatusPolicy_Free(t *testing.T) {
	p := PolicyFree

	for _, from := range AllStatuses() {
		for _, to := range AllStatuses() {
			assert.NoError(t, p.CheckTransition(from, to), "%s -> %s", from, to)
		}
	}
	assert.ErrorIs(t, p.CheckTransition(StatusProcessing, "lost"), ErrInvalidStatus)
}

func TestParseStatusPolicy(t *testing.T) {
	p, err := ParseStatusPolicy("")
	require.NoError(t, err)
	assert.Equal(t, PolicyForward, p)

	p, err = ParseStatusPolicy("FREE")
	require.NoError(t, err)
	assert.Equal(t, PolicyFree, p)

	_, err = ParseStatusPolicy("random")
	assert.Error(t, err)
}

func TestValidateDeliveryDate(t *testing.T) {
	assert.NoError(t, ValidateDeliveryDate(""))
	assert.NoError(t, ValidateDeliveryDate("2025-06-01"))
	assert.ErrorIs(t, ValidateDeliveryDate("01.06.2025"), ErrInvalidDeliveryDate)
	assert.ErrorIs(t, ValidateDeliveryDate("2025-13-01"), ErrBadRequest)
}

func TestOrderItem_TieredTotals(t *testing.T) {
	tiers, err := pricing.NewTiers("10.00", "8.00", "6.00")
	require.NoError(t, err)
	item := OrderItem{ProductId: 1, Name: "Кубики", Quantity: 20, Pricing: TieredPricing(tiers)}

	assert.Equal(t, "8.00", item.UnitPrice().StringFixed(2))
	assert.Equal(t, "160.00", item.LineTotal().StringFixed(2))
}

func TestOrderItem_LegacyTotals(t *testing.T) {
	item := OrderItem{ProductId: 2, Quantity: 7, Pricing: LegacyPricing(decimal.RequireFromString("3.50"))}

	assert.Equal(t, "3.50", item.UnitPrice().StringFixed(2))
	assert.Equal(t, "24.50", item.LineTotal().StringFixed(2))
}

func TestItemsTotal(t *testing.T) {
	a, _ := pricing.NewTiers("10", "9", "8")
	b, _ := pricing.NewTiers("12", "9", "6")
	items := []OrderItem{
		{ProductId: 1, Quantity: 5, Pricing: TieredPricing(a)},
		{ProductId: 2, Quantity: 50, Pricing: TieredPricing(b)},
	}
	assert.Equal(t, "350.00", ItemsTotal(items).StringFixed(2))
}

func TestOrderItem_RoundTripKeepsKind(t *testing.T) {
	tiers, _ := pricing.NewTiers("10", "8", "6")
	items := []OrderItem{
		{ProductId: 1, Name: "A", Quantity: 50, ImageURL: "/uploads/a.png", Pricing: TieredPricing(tiers)},
		{ProductId: 2, Name: "B", Quantity: 5, Pricing: LegacyPricing(decimal.NewFromInt(4))},
	}

	raw, err := EncodeOrderItems(items)
	require.NoError(t, err)
	assert.Contains(t, raw, `"lineTotal":"300.00"`)

	got, err := DecodeOrderItems([]byte(raw))
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, PricingTiered, got[0].Pricing.Kind)
	assert.Equal(t, "/uploads/a.png", got[0].ImageURL)
	assert.Equal(t, PricingLegacy, got[1].Pricing.Kind)
	assert.Equal(t, "20.00", got[1].LineTotal().StringFixed(2))
}

func TestOrderItem_DecodesOlderSnapshots(t *testing.T) {
	t.Run("price as tier map", func(t *testing.T) {
		var it OrderItem
		err := json.Unmarshal([]byte(`{"id":3,"name":"Мяч","price":{"5":10,"20":8,"50":6},"quantity":20,"imageUrl":"/uploads/b.png"}`), &it)
		require.NoError(t, err)
		assert.Equal(t, 3, it.ProductId)
		assert.Equal(t, PricingTiered, it.Pricing.Kind)
		assert.Equal(t, "160.00", it.LineTotal().StringFixed(2))
	})

	t.Run("price as flat number", func(t *testing.T) {
		var it OrderItem
		err := json.Unmarshal([]byte(`{"id":4,"name":"Кукла","price":12.5,"quantity":10,"image":"/uploads/c.png"}`), &it)
		require.NoError(t, err)
		assert.Equal(t, PricingLegacy, it.Pricing.Kind)
		assert.Equal(t, "/uploads/c.png", it.ImageURL)
		assert.Equal(t, "125.00", it.LineTotal().StringFixed(2))
	})

	t.Run("missing price", func(t *testing.T) {
		var it OrderItem
		assert.Error(t, json.Unmarshal([]byte(`{"id":5,"quantity":10}`), &it))
	})

	t.Run("unknown kind", func(t *testing.T) {
		var it OrderItem
		assert.Error(t, json.Unmarshal([]byte(`{"productId":5,"quantity":10,"pricing":{"kind":"promo"}}`), &it))
	})
}

func TestDomainErrorsWrapKinds(t *testing.T) {
	assert.True(t, errors.Is(ErrInvalidCredentials, ErrUnauthorized))
	assert.True(t, errors.Is(ErrEmailTaken, ErrBadRequest))
	assert.True(t, errors.Is(ErrQuantityTooSmall, pricing.ErrBelowMinimum))
	assert.True(t, errors.Is(ErrInvalidTransition, ErrConflict))
}

func TestPriceRangeBounds(t *testing.T) {
	min, max, ok := PriceRangeBounds("10-25")
	require.True(t, ok)
	assert.Equal(t, 10, min)
	assert.Equal(t, 25, max)

	_, _, ok = PriceRangeBounds("cheap")
	assert.False(t, ok)
}
