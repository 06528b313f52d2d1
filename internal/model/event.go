package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Event is a booked function in one of the venue's halls.
type Event struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	Name      string    `gorm:"not null"`
	Hall      string    `gorm:"not null;default:''"`
	EventDate time.Time `gorm:"not null;index"`
	CreatedAt time.Time
	UpdatedAt time.Time

	MenuItems []MenuItem `gorm:"foreignKey:EventID"`
}

// Guest is one invited person; the guest count seeds the portions figure.
type Guest struct {
	ID          uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	EventID     uuid.UUID `gorm:"type:uuid;not null;index"`
	Name        string    `gorm:"not null"`
	TableNumber *int
	CreatedAt   time.Time
}

// MenuItem places a product on an event's guest or staff menu.
// MenuType: "guests" | "staff"
type MenuItem struct {
	ID               uuid.UUID           `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	EventID          uuid.UUID           `gorm:"type:uuid;not null;index"`
	ProductID        uuid.UUID           `gorm:"type:uuid;not null"`
	MenuType         string              `gorm:"type:varchar(10);not null"`
	Category         string              `gorm:"not null;default:''"`
	QuantityPerGuest decimal.NullDecimal `gorm:"type:decimal(8,3)"` // null counts as 1
	CreatedAt        time.Time

	Product *Product `gorm:"foreignKey:ProductID"`
}

// TableName overrides GORM's default pluralization (menu_items → event_menu_items).
func (MenuItem) TableName() string { return "event_menu_items" }
