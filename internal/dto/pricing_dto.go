package dto

import "github.com/shopspring/decimal"

// ─── Request DTOs ────────────────────────────────────────────────────────────

// SetReferencePriceRequest must carry an explicit price; 0 is a valid price.
type SetReferencePriceRequest struct {
	Price *decimal.Decimal `json:"price" validate:"required,min=0"`
}

// BulkAdjustRequest applies Percent (e.g. 10 or -5) to every listed
// ingredient, or to every priced ingredient when IngredientIDs is empty.
type BulkAdjustRequest struct {
	Percent       decimal.Decimal `json:"percent"        validate:"required,min=-100"`
	IngredientIDs []string        `json:"ingredient_ids" validate:"omitempty,dive,uuid"`
	Preview       bool            `json:"preview"`
}

// ─── Response DTOs ───────────────────────────────────────────────────────────

type ReferencePriceResponse struct {
	IngredientID string          `json:"ingredient_id"`
	Name         string          `json:"name"`
	Unit         string          `json:"unit"`
	Price        decimal.Decimal `json:"price"`
	UpdatedBy    string          `json:"updated_by"`
	UpdatedAt    string          `json:"updated_at"`
}

type ReferencePriceListResponse struct {
	Data  []ReferencePriceResponse `json:"data"`
	Total int                      `json:"total"`
}

type PriceChangeItem struct {
	ID             string           `json:"id"`
	IngredientID   string           `json:"ingredient_id"`
	PriceBefore    *decimal.Decimal `json:"price_before"`
	PriceAfter     decimal.Decimal  `json:"price_after"`
	PercentApplied *decimal.Decimal `json:"percent_applied,omitempty"`
	Reason         string           `json:"reason"`
	ChangedBy      string           `json:"changed_by"`
	CreatedAt      string           `json:"created_at"`
}

// PriceHistoryResponse is returned by GET /v1/reference-prices/:ingredient_id/history.
type PriceHistoryResponse struct {
	Data  []PriceChangeItem `json:"data"`
	Total int64             `json:"total"`
	Page  int               `json:"page"`
	Limit int               `json:"limit"`
}

type BulkPreviewItem struct {
	IngredientID string          `json:"ingredient_id"`
	Name         string          `json:"name"`
	CurrentPrice decimal.Decimal `json:"current_price"`
	NewPrice     decimal.Decimal `json:"new_price"`
	Difference   decimal.Decimal `json:"difference"`
}

type BulkAdjustResponse struct {
	Percent  decimal.Decimal   `json:"percent"`
	Affected int               `json:"affected"`
	Applied  bool              `json:"applied"`
	Preview  []BulkPreviewItem `json:"preview,omitempty"`
}

type CSVImportResponse struct {
	TotalRows    int           `json:"total_rows"`
	Processed    int           `json:"processed"`
	Errors       int           `json:"errors"`
	Created      int           `json:"created"`
	Updated      int           `json:"updated"`
	ErrorDetails []CSVErrorRow `json:"error_details"`
}

type CSVErrorRow struct {
	Row          int    `json:"row"`
	IngredientID string `json:"ingredient_id,omitempty"`
	ErrorCode    string `json:"error_code"` // ROW_FORMAT|ID_INVALID|ID_UNKNOWN|ID_DUPLICATE|PRICE_NOT_NUMBER|PRICE_NEGATIVE|READ_ERROR
	Reason       string `json:"reason"`
}
