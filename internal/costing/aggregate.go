// Package costing turns an event's menu into ingredient demand, stock
// coverage and cost figures. Everything here is a pure function of its
// inputs: no storage, no clocks, no globals. Quantities and money are
// decimal so that sums do not depend on accumulation order.
package costing

import (
	"sort"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"golang.org/x/text/collate"
	"golang.org/x/text/language"
)

// MenuType tells whether a menu item feeds the guests or the staff.
type MenuType string

const (
	MenuGuests MenuType = "guests"
	MenuStaff  MenuType = "staff"
	// MenuAll is a scope, never stored on a menu item.
	MenuAll MenuType = "all"
)

// Valid reports whether t can be used as a report scope.
func (t MenuType) Valid() bool {
	switch t {
	case MenuGuests, MenuStaff, MenuAll:
		return true
	}
	return false
}

// MenuItem is one product placed on an event menu.
type MenuItem struct {
	ProductID        uuid.UUID
	MenuType         MenuType
	Category         string
	QuantityPerGuest decimal.NullDecimal // null means 1
}

// PerGuest is the multiplier applied to the recipe; an unset value counts as 1.
func (m MenuItem) PerGuest() decimal.Decimal {
	if !m.QuantityPerGuest.Valid {
		return decimal.NewFromInt(1)
	}
	return m.QuantityPerGuest.Decimal
}

// RecipeLine is the quantity of one ingredient needed for a single portion.
type RecipeLine struct {
	IngredientID     uuid.UUID
	QuantityRequired decimal.Decimal
}

// Recipe links a product to its ingredient lines.
type Recipe struct {
	ID              uuid.UUID
	LinkedProductID uuid.UUID
	Lines           []RecipeLine
}

// Ingredient is an inventory item as seen by the aggregator.
type Ingredient struct {
	ID        uuid.UUID
	Name      string
	Unit      string
	StockHint decimal.Decimal
}

// Catalog resolves display names for ingredients and products.
type Catalog struct {
	Ingredients  map[uuid.UUID]Ingredient
	ProductNames map[uuid.UUID]string
}

// IngredientDemand is the summed requirement of one ingredient.
type IngredientDemand struct {
	IngredientID  uuid.UUID
	Name          string
	Unit          string
	TotalQuantity decimal.Decimal
	UsedIn        []string // distinct product names, first-seen order
}

// DefaultLanguage orders ingredient names when no language is configured.
var DefaultLanguage = language.Romanian

// Aggregator sums recipe demand and orders the result with a collator for
// one language. The zero value is not usable; see NewAggregator.
type Aggregator struct {
	lang language.Tag
}

// NewAggregator returns an Aggregator sorting names by lang.
func NewAggregator(lang language.Tag) *Aggregator {
	return &Aggregator{lang: lang}
}

var defaultAggregator = NewAggregator(DefaultLanguage)

// Aggregate sums demand with the default collation language.
func Aggregate(items []MenuItem, recipes []Recipe, cat Catalog, portions int) []IngredientDemand {
	return defaultAggregator.Aggregate(items, recipes, cat, portions)
}

// Aggregate computes the ingredient requirement of items, which callers
// pre-filter to one menu type. For every item the first recipe linked to
// its product is used; items without a recipe contribute nothing.
// demand = quantityRequired × portions × quantityPerGuest.
func (a *Aggregator) Aggregate(items []MenuItem, recipes []Recipe, cat Catalog, portions int) []IngredientDemand {
	byProduct := firstRecipeByProduct(recipes)
	p := decimal.NewFromInt(int64(portions))

	acc := newAccumulator()
	for _, item := range items {
		recipe, ok := byProduct[item.ProductID]
		if !ok {
			continue
		}
		perGuest := item.PerGuest()
		productName := productName(cat, item.ProductID)
		for _, line := range recipe.Lines {
			qty := line.QuantityRequired.Mul(p).Mul(perGuest)
			acc.add(line.IngredientID, qty, productName)
		}
	}

	out := acc.result(cat)
	a.sortByName(out)
	return out
}

// Merge sums the totals of matching ingredients from both lists and unions
// their "used in" names. Neither input is modified.
func Merge(x, y []IngredientDemand) []IngredientDemand {
	return defaultAggregator.Merge(x, y)
}

// Merge is the method form of the package-level Merge.
func (a *Aggregator) Merge(x, y []IngredientDemand) []IngredientDemand {
	acc := newAccumulator()
	meta := make(map[uuid.UUID]IngredientDemand, len(x)+len(y))
	for _, list := range [][]IngredientDemand{x, y} {
		for _, d := range list {
			if _, seen := meta[d.IngredientID]; !seen {
				meta[d.IngredientID] = d
			}
			acc.add(d.IngredientID, d.TotalQuantity)
			for _, name := range d.UsedIn {
				acc.add(d.IngredientID, decimal.Zero, name)
			}
		}
	}

	out := make([]IngredientDemand, 0, len(acc.order))
	for _, id := range acc.order {
		e := acc.entries[id]
		m := meta[id]
		out = append(out, IngredientDemand{
			IngredientID:  id,
			Name:          m.Name,
			Unit:          m.Unit,
			TotalQuantity: e.total,
			UsedIn:        e.usedIn,
		})
	}
	a.sortByName(out)
	return out
}

// Scale returns a copy of list with every total multiplied by factor.
func Scale(list []IngredientDemand, factor decimal.Decimal) []IngredientDemand {
	out := make([]IngredientDemand, len(list))
	for i, d := range list {
		d.TotalQuantity = d.TotalQuantity.Mul(factor)
		d.UsedIn = append([]string(nil), d.UsedIn...)
		out[i] = d
	}
	return out
}

// FilterMenuType keeps the items of one menu type. MenuAll keeps everything.
func FilterMenuType(items []MenuItem, t MenuType) []MenuItem {
	if t == MenuAll {
		return append([]MenuItem(nil), items...)
	}
	out := make([]MenuItem, 0, len(items))
	for _, it := range items {
		if it.MenuType == t {
			out = append(out, it)
		}
	}
	return out
}

// DuplicateRecipeProducts lists products referenced by more than one recipe,
// in order of their first recipe.
func DuplicateRecipeProducts(recipes []Recipe) []uuid.UUID {
	count := make(map[uuid.UUID]int, len(recipes))
	var order []uuid.UUID
	for _, r := range recipes {
		if count[r.LinkedProductID] == 0 {
			order = append(order, r.LinkedProductID)
		}
		count[r.LinkedProductID]++
	}
	var dups []uuid.UUID
	for _, id := range order {
		if count[id] > 1 {
			dups = append(dups, id)
		}
	}
	return dups
}

func firstRecipeByProduct(recipes []Recipe) map[uuid.UUID]Recipe {
	m := make(map[uuid.UUID]Recipe, len(recipes))
	for _, r := range recipes {
		if _, ok := m[r.LinkedProductID]; !ok {
			m[r.LinkedProductID] = r
		}
	}
	return m
}

func productName(cat Catalog, id uuid.UUID) string {
	if name, ok := cat.ProductNames[id]; ok && name != "" {
		return name
	}
	return id.String()
}

func (a *Aggregator) sortByName(list []IngredientDemand) {
	// collate.Collator keeps internal buffers; one per call.
	col := collate.New(a.lang)
	sort.SliceStable(list, func(i, j int) bool {
		return col.CompareString(list[i].Name, list[j].Name) < 0
	})
}

type accEntry struct {
	total  decimal.Decimal
	usedIn []string
	seen   map[string]struct{}
}

// accumulator keeps ingredients in first-seen order so that the
// pre-sort sequence, and therefore the stable sort, is reproducible.
type accumulator struct {
	order   []uuid.UUID
	entries map[uuid.UUID]*accEntry
}

func newAccumulator() *accumulator {
	return &accumulator{entries: make(map[uuid.UUID]*accEntry)}
}

func (acc *accumulator) add(id uuid.UUID, qty decimal.Decimal, usedIn ...string) {
	e, ok := acc.entries[id]
	if !ok {
		e = &accEntry{seen: make(map[string]struct{})}
		acc.entries[id] = e
		acc.order = append(acc.order, id)
	}
	e.total = e.total.Add(qty)
	for _, name := range usedIn {
		if _, dup := e.seen[name]; dup {
			continue
		}
		e.seen[name] = struct{}{}
		e.usedIn = append(e.usedIn, name)
	}
}

func (acc *accumulator) result(cat Catalog) []IngredientDemand {
	out := make([]IngredientDemand, 0, len(acc.order))
	for _, id := range acc.order {
		e := acc.entries[id]
		d := IngredientDemand{
			IngredientID:  id,
			Name:          id.String(),
			TotalQuantity: e.total,
			UsedIn:        e.usedIn,
		}
		if ing, ok := cat.Ingredients[id]; ok {
			if ing.Name != "" {
				d.Name = ing.Name
			}
			d.Unit = ing.Unit
		}
		out = append(out, d)
	}
	return out
}
