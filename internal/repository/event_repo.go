package repository

import (
	"context"

	"github.com/digitalhubmedia1-spec/proiect-chianti-sub001/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// EventRepository reads events and their guest counts.
type EventRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*model.Event, error)
	CountGuests(ctx context.Context, eventID uuid.UUID) (int64, error)
}

type eventRepo struct{ db *gorm.DB }

func NewEventRepository(db *gorm.DB) EventRepository { return &eventRepo{db: db} }

func (r *eventRepo) FindByID(ctx context.Context, id uuid.UUID) (*model.Event, error) {
	var e model.Event
	if err := r.db.WithContext(ctx).First(&e, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &e, nil
}

func (r *eventRepo) CountGuests(ctx context.Context, eventID uuid.UUID) (int64, error) {
	var n int64
	err := r.db.WithContext(ctx).Model(&model.Guest{}).Where("event_id = ?", eventID).Count(&n).Error
	return n, err
}

// MenuItemRepository reads the menu of one event.
type MenuItemRepository interface {
	// ListByEvent returns every menu item of the event, both menu types,
	// with the product preloaded, in insertion order.
	ListByEvent(ctx context.Context, eventID uuid.UUID) ([]model.MenuItem, error)
}

type menuItemRepo struct{ db *gorm.DB }

func NewMenuItemRepository(db *gorm.DB) MenuItemRepository { return &menuItemRepo{db: db} }

func (r *menuItemRepo) ListByEvent(ctx context.Context, eventID uuid.UUID) ([]model.MenuItem, error) {
	var items []model.MenuItem
	err := r.db.WithContext(ctx).
		Where("event_id = ?", eventID).
		Order("created_at ASC").
		Order("id ASC").
		Preload("Product").
		Find(&items).Error
	return items, err
}
