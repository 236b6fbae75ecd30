package cart

import (
	"testing"

	"toyWholesale/pricing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func tiers(t *testing.T, p5, p20, p50 string) pricing.Tiers {
	t.Helper()
	tr, err := pricing.NewTiers(p5, p20, p50)
	require.NoError(t, err)
	return tr
}

func TestCart_AddMergesSameProduct(t *testing.T) {
	var c Cart
	c.Add(Item{ProductID: 1, Name: "Кубики", Tiers: tiers(t, "10", "8", "6"), Quantity: 10})
	c.Add(Item{ProductID: 1, Name: "Кубики", Tiers: tiers(t, "10", "8", "6"), Quantity: 15})

	require.Len(t, c.Items, 1)
	assert.Equal(t, 25, c.Items[0].Quantity)
	// 25 units reach the 20 tier
	assert.Equal(t, "200.00", c.Total().StringFixed(2))
}

func TestCart_AddTakesLatestTiers(t *testing.T) {
	var c Cart
	c.Add(Item{ProductID: 1, Tiers: tiers(t, "10", "8", "6"), Quantity: 5})
	c.Add(Item{ProductID: 1, Tiers: tiers(t, "12", "9", "7"), Quantity: 5})

	assert.Equal(t, "12.00", c.Items[0].Tiers.Price5.StringFixed(2))
	assert.Equal(t, 10, c.Items[0].Quantity)
}

func TestCart_AddKeepsInsertionOrder(t *testing.T) {
	var c Cart
	c.Add(Item{ProductID: 3, Quantity: 5})
	c.Add(Item{ProductID: 1, Quantity: 5})
	c.Add(Item{ProductID: 3, Quantity: 5})

	require.Len(t, c.Items, 2)
	assert.Equal(t, 3, c.Items[0].ProductID)
	assert.Equal(t, 1, c.Items[1].ProductID)
}

func TestCart_RemoveAndClearAreNoOpsWhenAbsent(t *testing.T) {
	var c Cart
	c.Remove(42)
	c.Clear()
	assert.True(t, c.IsEmpty())

	c.Add(Item{ProductID: 1, Quantity: 5})
	c.Remove(2)
	assert.Len(t, c.Items, 1)
	c.Remove(1)
	assert.True(t, c.IsEmpty())
}

func TestCart_SetQuantity(t *testing.T) {
	var c Cart
	c.Add(Item{ProductID: 1, Quantity: 5})
	c.Add(Item{ProductID: 2, Quantity: 5})

	c.SetQuantity(1, 30)
	it, ok := c.Get(1)
	require.True(t, ok)
	assert.Equal(t, 30, it.Quantity)

	c.SetQuantity(2, 0)
	_, ok = c.Get(2)
	assert.False(t, ok)

	c.SetQuantity(1, -3)
	assert.True(t, c.IsEmpty())
}

func TestCart_TotalsTwoProducts(t *testing.T) {
	var c Cart
	c.Add(Item{ProductID: 1, Tiers: tiers(t, "10", "9", "8"), Quantity: 5})
	c.Add(Item{ProductID: 2, Tiers: tiers(t, "12", "9", "6"), Quantity: 50})

	assert.Equal(t, "350.00", c.Total().StringFixed(2))
	assert.Equal(t, 55, c.ItemCount())
}

func TestEncodeDecode(t *testing.T) {
	var c Cart
	c.Add(Item{ProductID: 7, Name: "Пазл", Tiers: tiers(t, "10", "8", "6"), Quantity: 20, ImageURL: "/uploads/products/a.png"})

	data, err := Encode(c)
	require.NoError(t, err)

	got, err := Decode(data)
	require.NoError(t, err)
	assert.Equal(t, c.Items[0].Name, got.Items[0].Name)
	assert.Equal(t, "160.00", got.Total().StringFixed(2))
}

func TestEncode_EmptyCartWritesEmptyList(t *testing.T) {
	data, err := Encode(Cart{})
	require.NoError(t, err)
	assert.JSONEq(t, `{"items":[]}`, string(data))
}

func TestDecode_CorruptDataYieldsEmptyCart(t *testing.T) {
	for _, raw := range []string{"{", "not json", `{"items":"x"}`} {
		c, err := Decode([]byte(raw))
		assert.Error(t, err, raw)
		assert.True(t, c.IsEmpty(), raw)
	}

	c, err := Decode(nil)
	assert.NoError(t, err)
	assert.True(t, c.IsEmpty())
}
