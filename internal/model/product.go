package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Product is a catalog entry that can be placed on an event menu.
// Read-only from the costing side.
type Product struct {
	ID        uuid.UUID       `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	Name      string          `gorm:"index;not null"`
	Category  string          `gorm:"not null"`
	Price     decimal.Decimal `gorm:"type:decimal(10,2);not null"`
	Weight    decimal.Decimal `gorm:"type:decimal(10,3);not null;default:0"` // grams per portion
	Active    bool            `gorm:"not null;default:true"`
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Recipe links a product to the ingredients of one portion.
// At most one recipe per product is expected; when several exist the
// oldest is used.
type Recipe struct {
	ID              uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	LinkedProductID uuid.UUID `gorm:"type:uuid;not null;index"`
	Name            string    `gorm:"not null"`
	CreatedAt       time.Time
	UpdatedAt       time.Time

	Lines []RecipeLine `gorm:"foreignKey:RecipeID"`
}

// RecipeLine is the quantity of one ingredient per portion.
type RecipeLine struct {
	ID               uuid.UUID       `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	RecipeID         uuid.UUID       `gorm:"type:uuid;not null;index"`
	IngredientID     uuid.UUID       `gorm:"type:uuid;not null;index"`
	QuantityRequired decimal.Decimal `gorm:"type:decimal(12,4);not null"`
	Position         int             `gorm:"not null;default:0"`
}

// Ingredient is an inventory item. StockHint is a denormalized figure kept
// on the row and is not reconciled with the lots.
type Ingredient struct {
	ID        uuid.UUID       `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	Name      string          `gorm:"uniqueIndex;not null"`
	Unit      string          `gorm:"not null;default:'kg'"`
	StockHint decimal.Decimal `gorm:"type:decimal(12,3);not null;default:0"`
	Active    bool            `gorm:"not null;default:true"`
	CreatedAt time.Time
	UpdatedAt time.Time
}
