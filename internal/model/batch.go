package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Batch is a received lot of one ingredient. Quantity decreases as the
// lot is consumed; a lot with quantity 0 is closed and no longer stock.
type Batch struct {
	ID            uuid.UUID       `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	IngredientID  uuid.UUID       `gorm:"type:uuid;not null;index"`
	Quantity      decimal.Decimal `gorm:"type:decimal(12,3);not null"`
	PurchasePrice decimal.Decimal `gorm:"type:decimal(12,4);not null"`
	ReceptionRef  *string         // supplier delivery note, if any
	CreatedAt     time.Time       `gorm:"index"`

	Ingredient *Ingredient `gorm:"foreignKey:IngredientID"`
}

// TableName keeps the inventory naming used by the reception workflow.
func (Batch) TableName() string { return "inventory_batches" }
