// Package cart holds the pre-checkout collection of products and quantities.
//
// A Cart is a plain value: it has no storage of its own. Callers load it with
// Decode, mutate it, and persist it with Encode.
package cart

import (
	"encoding/json"

	"toyWholesale/pricing"

	"github.com/shopspring/decimal"
)

type Item struct {
	ProductID int           `json:"productId"`
	Name      string        `json:"name"`
	Tiers     pricing.Tiers `json:"tiers"`
	Quantity  int           `json:"quantity"`
	ImageURL  string        `json:"imageUrl,omitempty"`
}

type Cart struct {
	Items []Item `json:"items"`
}

func (c *Cart) indexOf(productID int) int {
	for i := range c.Items {
		if c.Items[i].ProductID == productID {
			return i
		}
	}
	return -1
}

// Add merges item into the cart. An existing line for the same product keeps
// its position, sums the quantities and takes name, tiers and image from item.
func (c *Cart) Add(item Item) {
	i := c.indexOf(item.ProductID)
	if i < 0 {
		c.Items = append(c.Items, item)
		return
	}
	item.Quantity += c.Items[i].Quantity
	c.Items[i] = item
}

func (c *Cart) Remove(productID int) {
	i := c.indexOf(productID)
	if i < 0 {
		return
	}
	c.Items = append(c.Items[:i], c.Items[i+1:]...)
}

// SetQuantity overwrites the quantity of a line; quantity <= 0 removes it.
func (c *Cart) SetQuantity(productID, quantity int) {
	if quantity <= 0 {
		c.Remove(productID)
		return
	}
	if i := c.indexOf(productID); i >= 0 {
		c.Items[i].Quantity = quantity
	}
}

func (c *Cart) Clear() {
	c.Items = nil
}

func (c Cart) Get(productID int) (Item, bool) {
	if i := c.indexOf(productID); i >= 0 {
		return c.Items[i], true
	}
	return Item{}, false
}

func (c Cart) IsEmpty() bool {
	return len(c.Items) == 0
}

func (c Cart) Lines() []pricing.Line {
	lines := make([]pricing.Line, 0, len(c.Items))
	for _, it := range c.Items {
		lines = append(lines, pricing.Line{Quantity: it.Quantity, Tiers: it.Tiers})
	}
	return lines
}

func (c Cart) Total() decimal.Decimal {
	return pricing.CartTotal(c.Lines())
}

// ItemCount is the number of units across all lines.
func (c Cart) ItemCount() (n int) {
	for _, it := range c.Items {
		n += it.Quantity
	}
	return
}

// Encode serializes the cart for storage.
func Encode(c Cart) ([]byte, error) {
	if c.Items == nil {
		c.Items = []Item{}
	}
	return json.Marshal(c)
}

// Decode restores a stored cart. Unreadable data yields an empty cart and the
// parse error, which callers may log and otherwise ignore.
func Decode(data []byte) (Cart, error) {
	var c Cart
	if len(data) == 0 {
		return c, nil
	}
	if err := json.Unmarshal(data, &c); err != nil {
		return Cart{}, err
	}
	return c, nil
}
