package models

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"

	"toyWholesale/pricing"

	"github.com/shopspring/decimal"
)

// PricingKind tags how an order line was priced.
type PricingKind string

const (
	// PricingTiered lines carry the three tier prices frozen at checkout.
	PricingTiered PricingKind = "tiered"
	// PricingLegacy lines carry a single unit price.
	PricingLegacy PricingKind = "legacy"
)

type ItemPricing struct {
	Kind  PricingKind
	Tiers pricing.Tiers
	Unit  decimal.Decimal
}

func TieredPricing(t pricing.Tiers) ItemPricing {
	return ItemPricing{Kind: PricingTiered, Tiers: t}
}

func LegacyPricing(unit decimal.Decimal) ItemPricing {
	return ItemPricing{Kind: PricingLegacy, Unit: unit}
}

// OrderItem is a frozen line of an order.
type OrderItem struct {
	ProductId int
	Name      string
	Quantity  int
	ImageURL  string
	Pricing   ItemPricing
}

func (i OrderItem) UnitPrice() decimal.Decimal {
	switch i.Pricing.Kind {
	case PricingTiered:
		return pricing.UnitPrice(i.Quantity, i.Pricing.Tiers)
	case PricingLegacy:
		return i.Pricing.Unit
	default:
		return decimal.Zero
	}
}

func (i OrderItem) LineTotal() decimal.Decimal {
	return i.UnitPrice().Mul(decimal.NewFromInt(int64(i.Quantity)))
}

func ItemsTotal(items []OrderItem) decimal.Decimal {
	total := decimal.Zero
	for _, it := range items {
		total = total.Add(it.LineTotal())
	}
	return total
}

type pricingJSON struct {
	Kind      PricingKind      `json:"kind"`
	Tiers     *pricing.Tiers   `json:"tiers,omitempty"`
	UnitPrice *decimal.Decimal `json:"unitPrice,omitempty"`
}

type orderItemOut struct {
	ProductId int         `json:"productId"`
	Name      string      `json:"name"`
	Quantity  int         `json:"quantity"`
	ImageURL  string      `json:"imageUrl,omitempty"`
	Pricing   pricingJSON `json:"pricing"`
	UnitPrice string      `json:"unitPrice"`
	LineTotal string      `json:"lineTotal"`
}

func (i OrderItem) MarshalJSON() ([]byte, error) {
	p := pricingJSON{Kind: i.Pricing.Kind}
	switch i.Pricing.Kind {
	case PricingTiered:
		t := i.Pricing.Tiers
		p.Tiers = &t
	case PricingLegacy:
		u := i.Pricing.Unit
		p.UnitPrice = &u
	default:
		return nil, fmt.Errorf("order item %d: unknown pricing kind %q", i.ProductId, i.Pricing.Kind)
	}
	return json.Marshal(orderItemOut{
		ProductId: i.ProductId,
		Name:      i.Name,
		Quantity:  i.Quantity,
		ImageURL:  i.ImageURL,
		Pricing:   p,
		UnitPrice: i.UnitPrice().StringFixed(2),
		LineTotal: i.LineTotal().StringFixed(2),
	})
}

type orderItemIn struct {
	ProductId int             `json:"productId"`
	Id        int             `json:"id"`
	Name      string          `json:"name"`
	Quantity  int             `json:"quantity"`
	ImageURL  string          `json:"imageUrl"`
	Image     string          `json:"image"`
	Pricing   *pricingJSON    `json:"pricing"`
	Price     json.RawMessage `json:"price"`
}

// UnmarshalJSON reads the current shape as well as older snapshots where
// "price" is either a tier map or a flat number.
func (i *OrderItem) UnmarshalJSON(data []byte) error {
	var in orderItemIn
	if err := json.Unmarshal(data, &in); err != nil {
		return err
	}
	*i = OrderItem{
		ProductId: in.ProductId,
		Name:      in.Name,
		Quantity:  in.Quantity,
		ImageURL:  in.ImageURL,
	}
	if i.ProductId == 0 {
		i.ProductId = in.Id
	}
	if i.ImageURL == "" {
		i.ImageURL = in.Image
	}

	switch {
	case in.Pricing != nil:
		return i.Pricing.fromJSON(*in.Pricing)
	case len(in.Price) > 0:
		return i.Pricing.fromLegacyPrice(in.Price)
	default:
		return errors.New("order item has no price")
	}
}

func (p *ItemPricing) fromJSON(in pricingJSON) error {
	switch in.Kind {
	case PricingTiered:
		if in.Tiers == nil {
			return errors.New("tiered order item without tiers")
		}
		*p = TieredPricing(*in.Tiers)
	case PricingLegacy:
		if in.UnitPrice == nil {
			return errors.New("legacy order item without unit price")
		}
		*p = LegacyPricing(*in.UnitPrice)
	default:
		return fmt.Errorf("unknown pricing kind %q", in.Kind)
	}
	return nil
}

func (p *ItemPricing) fromLegacyPrice(raw json.RawMessage) error {
	raw = bytes.TrimSpace(raw)
	if len(raw) > 0 && raw[0] == '{' {
		var t pricing.Tiers
		if err := json.Unmarshal(raw, &t); err != nil {
			return err
		}
		*p = TieredPricing(t)
		return nil
	}
	var unit decimal.Decimal
	if err := json.Unmarshal(raw, &unit); err != nil {
		return err
	}
	*p = LegacyPricing(unit)
	return nil
}

func EncodeOrderItems(items []OrderItem) (string, error) {
	if items == nil {
		items = []OrderItem{}
	}
	b, err := json.Marshal(items)
	return string(b), err
}

func DecodeOrderItems(raw []byte) (items []OrderItem, err error) {
	err = json.Unmarshal(raw, &items)
	return
}
