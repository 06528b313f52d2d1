package costing

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

func TestClassifyStock_Scenarios(t *testing.T) {
	// carrots: hint 15, lots 25, demand 20 → max(15,25)=25 covers it
	assert.Equal(t, StockSufficient, ClassifyStock(d("20"), d("15"), d("25")))
	// oil: nothing anywhere, demand 2.5
	assert.Equal(t, StockMissing, ClassifyStock(d("2.5"), d("0"), d("0")))
	assert.Equal(t, StockPartial, ClassifyStock(d("10"), d("4"), d("0")))
	assert.Equal(t, StockPartial, ClassifyStock(d("10"), d("0"), d("9.999")))
}

func TestClassifyStock_ZeroDemandIsSufficient(t *testing.T) {
	for _, avail := range []string{"0", "0.5", "100"} {
		assert.Equal(t, StockSufficient, ClassifyStock(d("0"), d(avail), d("0")))
	}
}

func TestClassifyStock_Totality(t *testing.T) {
	values := []string{"0", "0.001", "1", "2.5", "20", "25", "1000"}
	for _, total := range values {
		for _, hint := range values {
			for _, batch := range values {
				got := ClassifyStock(d(total), d(hint), d(batch))
				assert.Contains(t, []StockStatus{StockSufficient, StockPartial, StockMissing}, got)

				avail := AvailableStock(d(hint), d(batch))
				switch {
				case d(total).IsZero(), avail.GreaterThanOrEqual(d(total)):
					assert.Equal(t, StockSufficient, got)
				case avail.IsZero():
					assert.Equal(t, StockMissing, got)
				default:
					assert.Equal(t, StockPartial, got)
				}
			}
		}
	}
}

func TestBatchStockSums_IgnoresEmptyLots(t *testing.T) {
	carrots, oil := uuid.New(), uuid.New()
	lots := []Lot{
		{IngredientID: carrots, Quantity: d("10")},
		{IngredientID: carrots, Quantity: d("15")},
		{IngredientID: carrots, Quantity: d("0")},
		{IngredientID: oil, Quantity: d("-1")},
	}

	sums := BatchStockSums(lots)

	assert.True(t, d("25").Equal(sums[carrots]))
	_, hasOil := sums[oil]
	assert.False(t, hasOil)
}

func TestLatestPurchasePrices(t *testing.T) {
	carrots, oil := uuid.New(), uuid.New()
	t0 := time.Date(2026, 3, 1, 8, 0, 0, 0, time.UTC)
	lots := []Lot{
		{IngredientID: carrots, Quantity: d("5"), PurchasePrice: d("2.80"), CreatedAt: t0},
		{IngredientID: carrots, Quantity: d("5"), PurchasePrice: d("3.10"), CreatedAt: t0.Add(48 * time.Hour)},
		{IngredientID: carrots, Quantity: d("5"), PurchasePrice: d("2.95"), CreatedAt: t0.Add(24 * time.Hour)},
		// newest but depleted: not live stock
		{IngredientID: carrots, Quantity: d("0"), PurchasePrice: d("9.99"), CreatedAt: t0.Add(72 * time.Hour)},
		{IngredientID: oil, Quantity: d("1"), PurchasePrice: d("8"), CreatedAt: t0},
		{IngredientID: oil, Quantity: d("1"), PurchasePrice: d("8.50"), CreatedAt: t0},
	}

	prices := LatestPurchasePrices(lots)

	assert.Equal(t, "3.1", prices[carrots].String())
	assert.Equal(t, "8.5", prices[oil].String(), "equal timestamps: later lot wins")
}
