package dto

import "github.com/shopspring/decimal"

// ─── Request DTOs ────────────────────────────────────────────────────────────

// ProductionQuery holds the operator's controls for one recomputation.
// Portions 0 means "use the event's guest count".
type ProductionQuery struct {
	MenuType  string `form:"menu_type"  json:"menu_type"  validate:"omitempty,oneof=guests staff all"`
	Portions  int    `form:"portions"   json:"portions"`
	Pricing   string `form:"pricing"    json:"pricing"    validate:"omitempty,oneof=reference latest_purchase"`
	RequestID string `form:"request_id" json:"request_id" validate:"omitempty,max=128"`
}

// SendSheetRequest asks for the production sheet to be mailed to the kitchen.
type SendSheetRequest struct {
	ProductionQuery
	To string `json:"to" validate:"omitempty,email"`
}

// ─── Response DTOs ───────────────────────────────────────────────────────────

// ProductionLine is one ingredient row of the production sheet.
type ProductionLine struct {
	IngredientID  string           `json:"ingredient_id"`
	Name          string           `json:"name"`
	Unit          string           `json:"unit"`
	TotalQuantity decimal.Decimal  `json:"total_quantity"`
	UsedIn        []string         `json:"used_in"`
	StockHint     decimal.Decimal  `json:"stock_hint"`
	BatchStock    decimal.Decimal  `json:"batch_stock"`
	Available     decimal.Decimal  `json:"available"`
	Status        string           `json:"status"` // sufficient | partial | missing
	Reference     *decimal.Decimal `json:"reference_price"`
	LastPurchase  *decimal.Decimal `json:"last_purchase_price"`
	UnitPrice     *decimal.Decimal `json:"unit_price"` // null when unpriced
	LineCost      decimal.Decimal  `json:"line_cost"`
}

// ProductionProduct is one menu item of the product list view.
type ProductionProduct struct {
	ProductID        string          `json:"product_id"`
	Name             string          `json:"name"`
	Category         string          `json:"category"`
	MenuType         string          `json:"menu_type"`
	QuantityPerGuest decimal.Decimal `json:"quantity_per_guest"`
	HasRecipe        bool            `json:"has_recipe"`
}

type ProductionTotals struct {
	TotalCost      decimal.Decimal `json:"total_cost"`
	CostPerPerson  decimal.Decimal `json:"cost_per_person"`
	UnpricedCount  int             `json:"unpriced_count"`
	MissingRecipes int             `json:"missing_recipes"`
	Ingredients    int             `json:"ingredients"`
}

// ProductionReport is returned by GET /v1/events/:id/production and is the
// only input of the PDF renderer.
type ProductionReport struct {
	RequestID   string              `json:"request_id,omitempty"`
	EventID     string              `json:"event_id"`
	EventName   string              `json:"event_name"`
	EventDate   string              `json:"event_date"`
	MenuType    string              `json:"menu_type"`
	Portions    int                 `json:"portions"`
	GuestCount  int64               `json:"guest_count"`
	Pricing     string              `json:"pricing"`
	GeneratedAt string              `json:"generated_at"`
	Lines       []ProductionLine    `json:"lines"`
	Products    []ProductionProduct `json:"products"`
	Totals      ProductionTotals    `json:"totals"`
}

// ProductionProductsResponse is returned by GET /v1/events/:id/production/products.
type ProductionProductsResponse struct {
	RequestID      string              `json:"request_id,omitempty"`
	EventID        string              `json:"event_id"`
	MenuType       string              `json:"menu_type"`
	Data           []ProductionProduct `json:"data"`
	MissingRecipes int                 `json:"missing_recipes"`
}

type SendSheetResponse struct {
	JobID  string `json:"job_id"`
	Status string `json:"status"`
}
