package repository

import (
	"context"

	"github.com/digitalhubmedia1-spec/proiect-chianti-sub001/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// BatchRepository reads open inventory lots.
type BatchRepository interface {
	// ListOpen returns lots with quantity > 0 for the given ingredients,
	// newest first.
	ListOpen(ctx context.Context, ingredientIDs []uuid.UUID) ([]model.Batch, error)
}

type batchRepo struct{ db *gorm.DB }

func NewBatchRepository(db *gorm.DB) BatchRepository {
	return &batchRepo{db: db}
}

func (r *batchRepo) ListOpen(ctx context.Context, ingredientIDs []uuid.UUID) ([]model.Batch, error) {
	if len(ingredientIDs) == 0 {
		return nil, nil
	}
	var lots []model.Batch
	err := r.db.WithContext(ctx).
		Where("ingredient_id IN ? AND quantity > 0", ingredientIDs).
		Order("created_at DESC").
		Find(&lots).Error
	return lots, err
}
