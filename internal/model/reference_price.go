package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// ReferencePrice is the business-set unit cost of an ingredient,
// independent of what was actually paid for it.
type ReferencePrice struct {
	IngredientID uuid.UUID       `gorm:"type:uuid;primaryKey"`
	Price        decimal.Decimal `gorm:"type:decimal(12,4);not null"`
	UpdatedBy    string          `gorm:"not null;default:''"`
	UpdatedAt    time.Time

	Ingredient *Ingredient `gorm:"foreignKey:IngredientID"`
}

// Reasons recorded on ReferencePriceChange rows.
const (
	PriceChangeManual    = "manual"
	PriceChangeBulk      = "bulk_adjustment"
	PriceChangeCSVImport = "csv_import"
)

// ReferencePriceChange records every reference price change.
// Rows are append-only; they are never updated or deleted.
type ReferencePriceChange struct {
	ID             uuid.UUID        `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	IngredientID   uuid.UUID        `gorm:"type:uuid;not null;index"`
	PriceBefore    *decimal.Decimal `gorm:"type:decimal(12,4)"` // nil on first price
	PriceAfter     decimal.Decimal  `gorm:"type:decimal(12,4);not null"`
	PercentApplied *decimal.Decimal `gorm:"type:decimal(6,2)"`
	Reason         string           `gorm:"not null;default:'manual'"`
	ChangedBy      string           `gorm:"not null;default:''"`
	CreatedAt      time.Time
}
