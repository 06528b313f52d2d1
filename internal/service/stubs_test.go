package service_test

import (
	"context"
	"errors"
	"sort"

	"github.com/digitalhubmedia1-spec/proiect-chianti-sub001/internal/model"
	"github.com/digitalhubmedia1-spec/proiect-chianti-sub001/internal/repository"
	"github.com/digitalhubmedia1-spec/proiect-chianti-sub001/internal/worker"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// ── In-memory repositories ───────────────────────────────────────────────────

type stubEventRepo struct {
	events map[uuid.UUID]*model.Event
	guests map[uuid.UUID]int64
	err    error
	calls  int
}

var _ repository.EventRepository = (*stubEventRepo)(nil)

func newStubEventRepo() *stubEventRepo {
	return &stubEventRepo{events: map[uuid.UUID]*model.Event{}, guests: map[uuid.UUID]int64{}}
}

func (r *stubEventRepo) FindByID(_ context.Context, id uuid.UUID) (*model.Event, error) {
	r.calls++
	if r.err != nil {
		return nil, r.err
	}
	e, ok := r.events[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return e, nil
}

func (r *stubEventRepo) CountGuests(_ context.Context, eventID uuid.UUID) (int64, error) {
	return r.guests[eventID], nil
}

type stubMenuRepo struct {
	items []model.MenuItem
}

var _ repository.MenuItemRepository = (*stubMenuRepo)(nil)

func (r *stubMenuRepo) ListByEvent(_ context.Context, eventID uuid.UUID) ([]model.MenuItem, error) {
	var out []model.MenuItem
	for _, it := range r.items {
		if it.EventID == eventID {
			out = append(out, it)
		}
	}
	return out, nil
}

type stubRecipeRepo struct {
	recipes []model.Recipe
}

var _ repository.RecipeRepository = (*stubRecipeRepo)(nil)

func (r *stubRecipeRepo) ListByProducts(_ context.Context, productIDs []uuid.UUID) ([]model.Recipe, error) {
	want := map[uuid.UUID]bool{}
	for _, id := range productIDs {
		want[id] = true
	}
	var out []model.Recipe
	for _, rec := range r.recipes {
		if want[rec.LinkedProductID] {
			out = append(out, rec)
		}
	}
	return out, nil
}

type stubIngredientRepo struct {
	items map[uuid.UUID]*model.Ingredient
}

var _ repository.IngredientRepository = (*stubIngredientRepo)(nil)

func newStubIngredientRepo(list ...*model.Ingredient) *stubIngredientRepo {
	r := &stubIngredientRepo{items: map[uuid.UUID]*model.Ingredient{}}
	for _, ing := range list {
		r.items[ing.ID] = ing
	}
	return r
}

func (r *stubIngredientRepo) ListByIDs(_ context.Context, ids []uuid.UUID) ([]model.Ingredient, error) {
	var out []model.Ingredient
	for _, id := range ids {
		if ing, ok := r.items[id]; ok {
			out = append(out, *ing)
		}
	}
	return out, nil
}

func (r *stubIngredientRepo) ListAll(_ context.Context) ([]model.Ingredient, error) {
	var out []model.Ingredient
	for _, ing := range r.items {
		out = append(out, *ing)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (r *stubIngredientRepo) FindByID(_ context.Context, id uuid.UUID) (*model.Ingredient, error) {
	ing, ok := r.items[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return ing, nil
}

type stubBatchRepo struct {
	lots []model.Batch
}

var _ repository.BatchRepository = (*stubBatchRepo)(nil)

func (r *stubBatchRepo) ListOpen(_ context.Context, ingredientIDs []uuid.UUID) ([]model.Batch, error) {
	want := map[uuid.UUID]bool{}
	for _, id := range ingredientIDs {
		want[id] = true
	}
	var out []model.Batch
	for _, b := range r.lots {
		if want[b.IngredientID] && b.Quantity.IsPositive() {
			out = append(out, b)
		}
	}
	return out, nil
}

type stubPriceRepo struct {
	prices   map[uuid.UUID]model.ReferencePrice
	changes  []model.ReferencePriceChange
	ings     *stubIngredientRepo
	saveErr  error
	saves    int
	listAlls int
}

var _ repository.ReferencePriceRepository = (*stubPriceRepo)(nil)

func newStubPriceRepo(ings *stubIngredientRepo) *stubPriceRepo {
	return &stubPriceRepo{prices: map[uuid.UUID]model.ReferencePrice{}, ings: ings}
}

func (r *stubPriceRepo) ListAll(_ context.Context) ([]model.ReferencePrice, error) {
	r.listAlls++
	var out []model.ReferencePrice
	for _, p := range r.prices {
		if r.ings != nil {
			p.Ingredient = r.ings.items[p.IngredientID]
		}
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].IngredientID.String() < out[j].IngredientID.String() })
	return out, nil
}

func (r *stubPriceRepo) FindByIngredient(_ context.Context, id uuid.UUID) (*model.ReferencePrice, error) {
	p, ok := r.prices[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return &p, nil
}

func (r *stubPriceRepo) SaveAll(_ context.Context, prices []model.ReferencePrice, changes []model.ReferencePriceChange) error {
	if r.saveErr != nil {
		return r.saveErr
	}
	r.saves++
	for _, p := range prices {
		r.prices[p.IngredientID] = p
	}
	for _, c := range changes {
		c.ID = uuid.New()
		r.changes = append(r.changes, c)
	}
	return nil
}

func (r *stubPriceRepo) ListHistory(_ context.Context, id uuid.UUID, page, limit int) ([]model.ReferencePriceChange, int64, error) {
	var all []model.ReferencePriceChange
	for i := len(r.changes) - 1; i >= 0; i-- {
		if r.changes[i].IngredientID == id {
			all = append(all, r.changes[i])
		}
	}
	start := (page - 1) * limit
	if start >= len(all) {
		return nil, int64(len(all)), nil
	}
	end := min(start+limit, len(all))
	return all[start:end], int64(len(all)), nil
}

// ── Queue ────────────────────────────────────────────────────────────────────

type stubQueue struct {
	jobs []worker.ProductionSheetPayload
	err  error
}

func (q *stubQueue) EnqueueProductionSheet(_ context.Context, p worker.ProductionSheetPayload) (string, error) {
	if q.err != nil {
		return "", q.err
	}
	q.jobs = append(q.jobs, p)
	return "job-1", nil
}

var errStoreDown = errors.New("connection refused")
