package costing

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// StockStatus classifies how well available stock covers demand.
type StockStatus string

const (
	StockSufficient StockStatus = "sufficient"
	StockPartial    StockStatus = "partial"
	StockMissing    StockStatus = "missing"
)

// Lot is an open inventory batch of one ingredient.
type Lot struct {
	IngredientID  uuid.UUID
	Quantity      decimal.Decimal
	PurchasePrice decimal.Decimal
	CreatedAt     time.Time
}

// AvailableStock is the greater of the stored stock hint and the live sum
// of open lots. The two figures are tracked independently upstream.
func AvailableStock(stockHint, batchStockSum decimal.Decimal) decimal.Decimal {
	return decimal.Max(stockHint, batchStockSum)
}

// ClassifyStock maps a demand and its two stock figures to exactly one
// status. No demand is always sufficient.
func ClassifyStock(totalQuantity, stockHint, batchStockSum decimal.Decimal) StockStatus {
	if totalQuantity.Sign() <= 0 {
		return StockSufficient
	}
	available := AvailableStock(stockHint, batchStockSum)
	switch {
	case available.GreaterThanOrEqual(totalQuantity):
		return StockSufficient
	case available.Sign() > 0:
		return StockPartial
	default:
		return StockMissing
	}
}

// BatchStockSums totals the quantity of live lots (quantity > 0) per ingredient.
func BatchStockSums(lots []Lot) map[uuid.UUID]decimal.Decimal {
	sums := make(map[uuid.UUID]decimal.Decimal)
	for _, l := range lots {
		if l.Quantity.Sign() <= 0 {
			continue
		}
		sums[l.IngredientID] = sums[l.IngredientID].Add(l.Quantity)
	}
	return sums
}

// LatestPurchasePrices returns, per ingredient, the purchase price of the
// most recently created live lot. On equal timestamps the later lot in
// the input wins.
func LatestPurchasePrices(lots []Lot) map[uuid.UUID]decimal.Decimal {
	type latest struct {
		at    time.Time
		price decimal.Decimal
	}
	best := make(map[uuid.UUID]latest)
	for _, l := range lots {
		if l.Quantity.Sign() <= 0 {
			continue
		}
		cur, ok := best[l.IngredientID]
		if !ok || !l.CreatedAt.Before(cur.at) {
			best[l.IngredientID] = latest{at: l.CreatedAt, price: l.PurchasePrice}
		}
	}
	prices := make(map[uuid.UUID]decimal.Decimal, len(best))
	for id, l := range best {
		prices[id] = l.price
	}
	return prices
}
