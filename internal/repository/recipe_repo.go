package repository

import (
	"context"

	"github.com/digitalhubmedia1-spec/proiect-chianti-sub001/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// RecipeRepository defines the data access contract for recipes.
// Services depend on this interface, not on the GORM implementation,
// so the costing pipeline can be tested with in-memory stubs.
type RecipeRepository interface {
	// ListByProducts returns the recipes linked to any of productIDs,
	// oldest first, each with its lines in position order.
	ListByProducts(ctx context.Context, productIDs []uuid.UUID) ([]model.Recipe, error)
}

type recipeRepo struct{ db *gorm.DB }

func NewRecipeRepository(db *gorm.DB) RecipeRepository { return &recipeRepo{db: db} }

func (r *recipeRepo) ListByProducts(ctx context.Context, productIDs []uuid.UUID) ([]model.Recipe, error) {
	if len(productIDs) == 0 {
		return nil, nil
	}
	var recipes []model.Recipe
	err := r.db.WithContext(ctx).
		Where("linked_product_id IN ?", productIDs).
		Order("created_at ASC").
		Order("id ASC").
		Preload("Lines", func(db *gorm.DB) *gorm.DB {
			return db.Order("position ASC")
		}).
		Find(&recipes).Error
	return recipes, err
}
