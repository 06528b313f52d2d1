package costing

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Input is a read-only snapshot of everything one report needs.
type Input struct {
	MenuItems       []MenuItem // every item of the event, any menu type
	Scope           MenuType
	Recipes         []Recipe
	Catalog         Catalog
	ReferencePrices map[uuid.UUID]decimal.Decimal
	Lots            []Lot
	Portions        int
	Pricing         PricingMode
}

// Line joins an ingredient's demand with its stock figures and prices.
type Line struct {
	IngredientDemand
	StockHint    decimal.Decimal
	BatchStock   decimal.Decimal
	Available    decimal.Decimal
	Status       StockStatus
	Reference    *decimal.Decimal // nil when the ingredient has no reference price
	LastPurchase *decimal.Decimal // nil when no live lot exists
	UnitPrice    decimal.Decimal
	Priced       bool
	LineCost     decimal.Decimal
}

// ProductRecipeFlag is one row of the product list view.
type ProductRecipeFlag struct {
	ProductID        uuid.UUID
	Name             string
	Category         string
	MenuType         MenuType
	QuantityPerGuest decimal.Decimal
	HasRecipe        bool
}

// Report is the full result of one recomputation.
type Report struct {
	Scope          MenuType
	Portions       int
	Pricing        PricingMode
	Lines          []Line
	Products       []ProductRecipeFlag
	MissingRecipes int
	TotalCost      decimal.Decimal
	CostPerPerson  decimal.Decimal
	UnpricedCount  int
}

// Build runs aggregation, stock classification and costing in sequence.
func Build(in Input) (Report, error) {
	return defaultAggregator.Build(in)
}

// Build is the method form of the package-level Build.
func (a *Aggregator) Build(in Input) (Report, error) {
	if in.Portions < 1 {
		return Report{}, ErrInvalidPortions
	}

	demand := a.demandFor(in)

	batchSums := BatchStockSums(in.Lots)
	latest := LatestPurchasePrices(in.Lots)

	cost, err := CalculateCost(demand, in.Pricing, in.ReferencePrices, latest, in.Portions)
	if err != nil {
		return Report{}, err
	}

	items := FilterMenuType(in.MenuItems, in.Scope)
	products := ProductRecipeFlags(items, in.Recipes, in.Catalog)

	rep := Report{
		Scope:         in.Scope,
		Portions:      in.Portions,
		Pricing:       cost.Mode,
		Lines:         make([]Line, 0, len(demand)),
		Products:      products,
		TotalCost:     cost.TotalCost,
		CostPerPerson: cost.CostPerPerson,
		UnpricedCount: cost.UnpricedCount,
	}
	for _, p := range products {
		if !p.HasRecipe {
			rep.MissingRecipes++
		}
	}

	for i, d := range demand {
		hint := in.Catalog.Ingredients[d.IngredientID].StockHint
		batch := batchSums[d.IngredientID]
		cl := cost.Lines[i]
		line := Line{
			IngredientDemand: d,
			StockHint:        hint,
			BatchStock:       batch,
			Available:        AvailableStock(hint, batch),
			Status:           ClassifyStock(d.TotalQuantity, hint, batch),
			UnitPrice:        cl.UnitPrice,
			Priced:           cl.Priced,
			LineCost:         cl.LineCost,
		}
		if p, ok := in.ReferencePrices[d.IngredientID]; ok {
			line.Reference = &p
		}
		if p, ok := latest[d.IngredientID]; ok {
			line.LastPurchase = &p
		}
		rep.Lines = append(rep.Lines, line)
	}
	return rep, nil
}

// demandFor aggregates each menu type on its own; MenuAll merges the two.
func (a *Aggregator) demandFor(in Input) []IngredientDemand {
	if in.Scope != MenuAll {
		return a.Aggregate(FilterMenuType(in.MenuItems, in.Scope), in.Recipes, in.Catalog, in.Portions)
	}
	guests := a.Aggregate(FilterMenuType(in.MenuItems, MenuGuests), in.Recipes, in.Catalog, in.Portions)
	staff := a.Aggregate(FilterMenuType(in.MenuItems, MenuStaff), in.Recipes, in.Catalog, in.Portions)
	return a.Merge(guests, staff)
}

// ProductRecipeFlags marks each menu item with whether its product has a recipe.
func ProductRecipeFlags(items []MenuItem, recipes []Recipe, cat Catalog) []ProductRecipeFlag {
	byProduct := firstRecipeByProduct(recipes)
	out := make([]ProductRecipeFlag, 0, len(items))
	for _, it := range items {
		_, has := byProduct[it.ProductID]
		out = append(out, ProductRecipeFlag{
			ProductID:        it.ProductID,
			Name:             productName(cat, it.ProductID),
			Category:         it.Category,
			MenuType:         it.MenuType,
			QuantityPerGuest: it.PerGuest(),
			HasRecipe:        has,
		})
	}
	return out
}
