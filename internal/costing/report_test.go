package costing

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func scenarioInput(f fixture) Input {
	f.catalog.Ingredients[f.carrots] = Ingredient{ID: f.carrots, Name: "Morcovi", Unit: "kg", StockHint: d("15")}
	now := time.Date(2026, 5, 10, 12, 0, 0, 0, time.UTC)
	return Input{
		MenuItems: append(f.guestItems(),
			MenuItem{ProductID: f.bread, MenuType: MenuGuests, Category: "bakery"},
			MenuItem{ProductID: f.soup, MenuType: MenuStaff, Category: "staff"},
		),
		Scope:           MenuGuests,
		Recipes:         f.recipes,
		Catalog:         f.catalog,
		ReferencePrices: map[uuid.UUID]decimal.Decimal{f.carrots: d("3"), f.oil: d("8")},
		Lots: []Lot{
			{IngredientID: f.carrots, Quantity: d("10"), PurchasePrice: d("2.5"), CreatedAt: now.Add(-time.Hour)},
			{IngredientID: f.carrots, Quantity: d("15"), PurchasePrice: d("2.7"), CreatedAt: now},
		},
		Portions: 50,
		Pricing:  PricingReference,
	}
}

func lineFor(rep Report, id uuid.UUID) Line {
	for _, l := range rep.Lines {
		if l.IngredientID == id {
			return l
		}
	}
	return Line{}
}

func TestBuild_GuestMenu(t *testing.T) {
	f := newFixture()

	rep, err := Build(scenarioInput(f))

	require.NoError(t, err)
	assert.Equal(t, "80", rep.TotalCost.String())
	assert.Equal(t, "1.6", rep.CostPerPerson.String())
	assert.Equal(t, 1, rep.MissingRecipes)
	assert.Len(t, rep.Products, 3)

	carrots := lineFor(rep, f.carrots)
	assert.Equal(t, StockSufficient, carrots.Status)
	assert.Equal(t, "25", carrots.Available.String())
	require.NotNil(t, carrots.LastPurchase)
	assert.Equal(t, "2.7", carrots.LastPurchase.String())

	oil := lineFor(rep, f.oil)
	assert.Equal(t, StockMissing, oil.Status)
	assert.Nil(t, oil.LastPurchase)
	require.NotNil(t, oil.Reference)
	assert.Equal(t, "8", oil.Reference.String())
}

func TestBuild_AllMergesGuestAndStaff(t *testing.T) {
	f := newFixture()
	in := scenarioInput(f)
	in.Scope = MenuAll

	rep, err := Build(in)

	require.NoError(t, err)
	// staff soup adds 0.3 × 50 carrots on top of the guest 20
	assert.Equal(t, "35", lineFor(rep, f.carrots).TotalQuantity.String())
	assert.Len(t, rep.Products, 4)
}

func TestBuild_StaffOnly(t *testing.T) {
	f := newFixture()
	in := scenarioInput(f)
	in.Scope = MenuStaff

	rep, err := Build(in)

	require.NoError(t, err)
	require.Len(t, rep.Lines, 1)
	assert.Equal(t, "15", rep.Lines[0].TotalQuantity.String())
	assert.Zero(t, rep.MissingRecipes)
}

func TestBuild_LatestPurchaseLeavesQuantitiesAlone(t *testing.T) {
	f := newFixture()
	in := scenarioInput(f)
	ref, err := Build(in)
	require.NoError(t, err)

	in.Pricing = PricingLatestPurchase
	last, err := Build(in)
	require.NoError(t, err)

	require.Len(t, last.Lines, len(ref.Lines))
	for i := range ref.Lines {
		assert.True(t, ref.Lines[i].TotalQuantity.Equal(last.Lines[i].TotalQuantity))
	}
	// only carrots have a live lot: 20 × 2.7
	assert.Equal(t, "54", last.TotalCost.String())
	assert.Equal(t, 1, last.UnpricedCount)
}

func TestBuild_ZeroPortionsRejected(t *testing.T) {
	f := newFixture()
	in := scenarioInput(f)
	in.Portions = 0

	_, err := Build(in)

	assert.ErrorIs(t, err, ErrInvalidPortions)
}
