package repository

import (
	"context"

	"github.com/digitalhubmedia1-spec/proiect-chianti-sub001/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type ReferencePriceRepository interface {
	ListAll(ctx context.Context) ([]model.ReferencePrice, error)
	FindByIngredient(ctx context.Context, ingredientID uuid.UUID) (*model.ReferencePrice, error)
	// SaveAll upserts prices and appends their change records in one transaction.
	SaveAll(ctx context.Context, prices []model.ReferencePrice, changes []model.ReferencePriceChange) error
	ListHistory(ctx context.Context, ingredientID uuid.UUID, page, limit int) ([]model.ReferencePriceChange, int64, error)
}

type referencePriceRepository struct{ db *gorm.DB }

func NewReferencePriceRepository(db *gorm.DB) ReferencePriceRepository {
	return &referencePriceRepository{db: db}
}

func (r *referencePriceRepository) ListAll(ctx context.Context) ([]model.ReferencePrice, error) {
	var rows []model.ReferencePrice
	err := r.db.WithContext(ctx).Preload("Ingredient").Find(&rows).Error
	return rows, err
}

func (r *referencePriceRepository) FindByIngredient(ctx context.Context, ingredientID uuid.UUID) (*model.ReferencePrice, error) {
	var p model.ReferencePrice
	if err := r.db.WithContext(ctx).First(&p, "ingredient_id = ?", ingredientID).Error; err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *referencePriceRepository) SaveAll(ctx context.Context, prices []model.ReferencePrice, changes []model.ReferencePriceChange) error {
	if len(prices) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "ingredient_id"}},
			DoUpdates: clause.AssignmentColumns([]string{"price", "updated_by", "updated_at"}),
		}).Create(&prices).Error; err != nil {
			return err
		}
		if len(changes) == 0 {
			return nil
		}
		return tx.Create(&changes).Error
	})
}

// ListHistory returns paginated change records for one ingredient,
// newest first (append-only table, so this is natural insert order).
func (r *referencePriceRepository) ListHistory(
	ctx context.Context,
	ingredientID uuid.UUID,
	page, limit int,
) ([]model.ReferencePriceChange, int64, error) {
	if page < 1 {
		page = 1
	}
	if limit < 1 || limit > 200 {
		limit = 50
	}

	var total int64
	if err := r.db.WithContext(ctx).
		Model(&model.ReferencePriceChange{}).
		Where("ingredient_id = ?", ingredientID).
		Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var rows []model.ReferencePriceChange
	offset := (page - 1) * limit
	if err := r.db.WithContext(ctx).
		Where("ingredient_id = ?", ingredientID).
		Order("created_at DESC").
		Limit(limit).
		Offset(offset).
		Find(&rows).Error; err != nil {
		return nil, 0, err
	}

	return rows, total, nil
}
