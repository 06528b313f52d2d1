package repository

import (
	"context"

	"github.com/digitalhubmedia1-spec/proiect-chianti-sub001/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// IngredientRepository reads inventory items.
type IngredientRepository interface {
	ListByIDs(ctx context.Context, ids []uuid.UUID) ([]model.Ingredient, error)
	ListAll(ctx context.Context) ([]model.Ingredient, error)
	FindByID(ctx context.Context, id uuid.UUID) (*model.Ingredient, error)
}

type ingredientRepository struct{ db *gorm.DB }

func NewIngredientRepository(db *gorm.DB) IngredientRepository {
	return &ingredientRepository{db: db}
}

func (r *ingredientRepository) ListByIDs(ctx context.Context, ids []uuid.UUID) ([]model.Ingredient, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	var list []model.Ingredient
	err := r.db.WithContext(ctx).Where("id IN ?", ids).Find(&list).Error
	return list, err
}

func (r *ingredientRepository) ListAll(ctx context.Context) ([]model.Ingredient, error) {
	var list []model.Ingredient
	err := r.db.WithContext(ctx).Where("active = true").Order("name asc").Find(&list).Error
	return list, err
}

func (r *ingredientRepository) FindByID(ctx context.Context, id uuid.UUID) (*model.Ingredient, error) {
	var ing model.Ingredient
	if err := r.db.WithContext(ctx).First(&ing, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &ing, nil
}
