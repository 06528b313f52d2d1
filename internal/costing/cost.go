package costing

import (
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

var (
	ErrInvalidPortions    = errors.New("costing: portions must be at least 1")
	ErrUnknownPricingMode = errors.New("costing: unknown pricing mode")
)

// PricingMode selects which price table drives the cost figures.
type PricingMode string

const (
	PricingReference      PricingMode = "reference"
	PricingLatestPurchase PricingMode = "latest_purchase"
)

// ParsePricingMode accepts the wire names of the two modes. An empty
// string selects PricingReference.
func ParsePricingMode(s string) (PricingMode, error) {
	switch PricingMode(s) {
	case "", PricingReference:
		return PricingReference, nil
	case PricingLatestPurchase:
		return PricingLatestPurchase, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownPricingMode, s)
}

// CostLine is the cost contribution of one ingredient. Priced is false
// when the selected table has no price; UnitPrice and LineCost are then zero.
type CostLine struct {
	IngredientID uuid.UUID
	Quantity     decimal.Decimal
	UnitPrice    decimal.Decimal
	Priced       bool
	LineCost     decimal.Decimal
}

// CostSummary holds the per-line costs and their totals, unrounded.
type CostSummary struct {
	Mode          PricingMode
	Lines         []CostLine // same order as the demand list
	TotalCost     decimal.Decimal
	CostPerPerson decimal.Decimal
	UnpricedCount int
}

// CalculateCost prices demand with the table selected by mode. portions
// must be at least 1; callers clamp operator input before calling.
func CalculateCost(
	demand []IngredientDemand,
	mode PricingMode,
	referencePrices, latestPurchasePrices map[uuid.UUID]decimal.Decimal,
	portions int,
) (CostSummary, error) {
	if portions < 1 {
		return CostSummary{}, ErrInvalidPortions
	}

	var prices map[uuid.UUID]decimal.Decimal
	switch mode {
	case PricingReference:
		prices = referencePrices
	case PricingLatestPurchase:
		prices = latestPurchasePrices
	default:
		return CostSummary{}, fmt.Errorf("%w: %q", ErrUnknownPricingMode, mode)
	}

	sum := CostSummary{Mode: mode, Lines: make([]CostLine, 0, len(demand))}
	for _, d := range demand {
		line := CostLine{IngredientID: d.IngredientID, Quantity: d.TotalQuantity}
		if price, ok := prices[d.IngredientID]; ok {
			line.UnitPrice = price
			line.Priced = true
			line.LineCost = d.TotalQuantity.Mul(price)
		} else {
			sum.UnpricedCount++
		}
		sum.TotalCost = sum.TotalCost.Add(line.LineCost)
		sum.Lines = append(sum.Lines, line)
	}
	sum.CostPerPerson = sum.TotalCost.Div(decimal.NewFromInt(int64(portions)))
	return sum, nil
}

// DefaultPortions is the guest count, or 1 when no guests are recorded.
func DefaultPortions(guestCount int) int {
	return ClampPortions(guestCount)
}

// ClampPortions raises non-positive operator input to 1.
func ClampPortions(n int) int {
	if n < 1 {
		return 1
	}
	return n
}
