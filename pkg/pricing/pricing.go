// Package pricing selects the unit price for a quantity from a standard/bulk
// price pair.
package pricing

import (
	"errors"

	"github.com/shopspring/decimal"
)

var (
	// ErrMissingPrice is a configuration error: the product has no price pair
	// for the requested model.
	ErrMissingPrice = errors.New("pricing: missing price pair")
	// ErrInvalidQuantity is returned for quantities below one.
	ErrInvalidQuantity = errors.New("pricing: quantity must be positive")
)

// PriceTier is implemented by anything that can price a quantity.
type PriceTier interface {
	UnitPrice(quantity int) (decimal.Decimal, error)
}

// Pair is a standard/bulk price couple.
type Pair struct {
	Standard decimal.Decimal
	Bulk     decimal.Decimal
}

// SimpleTier prices a single-priced product. Bulk applies from Threshold
// units upward, inclusive.
type SimpleTier struct {
	Standard  decimal.Decimal
	Bulk      decimal.Decimal
	Threshold int
}

func (t SimpleTier) UnitPrice(quantity int) (decimal.Decimal, error) {
	if quantity <= 0 {
		return decimal.Zero, ErrInvalidQuantity
	}
	if quantity >= t.Threshold {
		return t.Bulk, nil
	}
	return t.Standard, nil
}

// VariantTier joins the threshold stored on a variant product with the price
// pair stored on one of its phone models.
type VariantTier struct {
	threshold int
	pair      *Pair
}

// NewVariantTier builds the tier. A nil pair is accepted here and reported as
// ErrMissingPrice on first use.
func NewVariantTier(threshold int, pair *Pair) VariantTier {
	return VariantTier{threshold: threshold, pair: pair}
}

func (t VariantTier) UnitPrice(quantity int) (decimal.Decimal, error) {
	if t.pair == nil {
		return decimal.Zero, ErrMissingPrice
	}
	return SimpleTier{Standard: t.pair.Standard, Bulk: t.pair.Bulk, Threshold: t.threshold}.UnitPrice(quantity)
}

// LineTotal returns unit * quantity rounded to cents.
func LineTotal(unit decimal.Decimal, quantity int) decimal.Decimal {
	return unit.Mul(decimal.NewFromInt(int64(quantity))).Round(2)
}

// Range summarises the spread of a variant product's price pairs.
type Range struct {
	MinStandard decimal.Decimal `json:"min_standard"`
	MaxStandard decimal.Decimal `json:"max_standard"`
	MinBulk     decimal.Decimal `json:"min_bulk"`
	MaxBulk     decimal.Decimal `json:"max_bulk"`
}

// RangeOf returns nil when pairs is empty.
func RangeOf(pairs []Pair) *Range {
	if len(pairs) == 0 {
		return nil
	}
	r := &Range{
		MinStandard: pairs[0].Standard,
		MaxStandard: pairs[0].Standard,
		MinBulk:     pairs[0].Bulk,
		MaxBulk:     pairs[0].Bulk,
	}
	for _, p := range pairs[1:] {
		r.MinStandard = decimal.Min(r.MinStandard, p.Standard)
		r.MaxStandard = decimal.Max(r.MaxStandard, p.Standard)
		r.MinBulk = decimal.Min(r.MinBulk, p.Bulk)
		r.MaxBulk = decimal.Max(r.MaxBulk, p.Bulk)
	}
	return r
}
