// Package pricing implements wholesale tier lookup and totals.
package pricing

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
)

// MinQuantity is the smallest quantity that can be ordered for a product.
const MinQuantity = 5

// MaxQuantity caps one line so merged quantities stay far from int overflow.
const MaxQuantity = 100000

// Tier breakpoints.
const (
	Tier5  = 5
	Tier20 = 20
	Tier50 = 50
)

var ErrBelowMinimum = fmt.Errorf("quantity must be at least %d", MinQuantity)
var ErrAboveMaximum = fmt.Errorf("quantity must be at most %d", MaxQuantity)
var ErrInvalidTiers = errors.New("all tier prices must be positive")

// Tiers holds the unit price for each minimum-quantity breakpoint.
type Tiers struct {
	Price5  decimal.Decimal
	Price20 decimal.Decimal
	Price50 decimal.Decimal
}

func NewTiers(p5, p20, p50 string) (t Tiers, err error) {
	if t.Price5, err = decimal.NewFromString(p5); err != nil {
		return
	}
	if t.Price20, err = decimal.NewFromString(p20); err != nil {
		return
	}
	t.Price50, err = decimal.NewFromString(p50)
	return
}

func (t Tiers) Validate() error {
	if !t.Price5.IsPositive() || !t.Price20.IsPositive() || !t.Price50.IsPositive() {
		return ErrInvalidTiers
	}
	return nil
}

// MarshalJSON writes the tiers keyed by breakpoint: {"5":"10.00","20":"8.00","50":"6.00"}.
func (t Tiers) MarshalJSON() ([]byte, error) {
	return json.Marshal(map[string]string{
		"5":  t.Price5.StringFixed(2),
		"20": t.Price20.StringFixed(2),
		"50": t.Price50.StringFixed(2),
	})
}

// UnmarshalJSON accepts prices as strings or numbers.
func (t *Tiers) UnmarshalJSON(data []byte) error {
	var raw map[string]decimal.Decimal
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	var ok5, ok20, ok50 bool
	t.Price5, ok5 = raw["5"]
	t.Price20, ok20 = raw["20"]
	t.Price50, ok50 = raw["50"]
	if !ok5 || !ok20 || !ok50 {
		return errors.New("tiers must contain keys 5, 20 and 50")
	}
	return nil
}

// UnitPrice selects the price of the highest breakpoint reached by quantity.
// Quantities below MinQuantity get the 5-unit price; callers reject them
// with ValidateQuantity beforehand.
func UnitPrice(quantity int, t Tiers) decimal.Decimal {
	switch {
	case quantity >= Tier50:
		return t.Price50
	case quantity >= Tier20:
		return t.Price20
	default:
		return t.Price5
	}
}

func LineTotal(quantity int, t Tiers) decimal.Decimal {
	return UnitPrice(quantity, t).Mul(decimal.NewFromInt(int64(quantity)))
}

// Line is one product position priced by the engine.
type Line struct {
	Quantity int
	Tiers    Tiers
}

func CartTotal(lines []Line) decimal.Decimal {
	total := decimal.Zero
	for _, l := range lines {
		total = total.Add(LineTotal(l.Quantity, l.Tiers))
	}
	return total
}

func ValidateQuantity(quantity int) error {
	if quantity < MinQuantity {
		return ErrBelowMinimum
	}
	if quantity > MaxQuantity {
		return ErrAboveMaximum
	}
	return nil
}
