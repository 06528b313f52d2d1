package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/digitalhubmedia1-spec/proiect-chianti-sub001/internal/costing"
	"github.com/digitalhubmedia1-spec/proiect-chianti-sub001/internal/dto"
	"github.com/digitalhubmedia1-spec/proiect-chianti-sub001/internal/infra"
	"github.com/digitalhubmedia1-spec/proiect-chianti-sub001/internal/model"
	"github.com/digitalhubmedia1-spec/proiect-chianti-sub001/internal/repository"
	"github.com/digitalhubmedia1-spec/proiect-chianti-sub001/internal/worker"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"gorm.io/gorm"
)

const instrumentationName = "github.com/digitalhubmedia1-spec/proiect-chianti-sub001/internal/service"

// ProductionService recomputes an event's production sheet on demand.
type ProductionService interface {
	Report(ctx context.Context, eventID uuid.UUID, q dto.ProductionQuery) (*dto.ProductionReport, error)
	Products(ctx context.Context, eventID uuid.UUID, q dto.ProductionQuery) (*dto.ProductionProductsResponse, error)
	// RenderSheet recomputes the report and renders it to PDF.
	RenderSheet(ctx context.Context, eventID uuid.UUID, q dto.ProductionQuery) (dto.ProductionReport, []byte, error)
	// Send checks that the event exists and enqueues sheet delivery.
	Send(ctx context.Context, eventID uuid.UUID, req dto.SendSheetRequest, requestedBy string) (*dto.SendSheetResponse, error)
}

// SheetQueue accepts production sheet jobs.
type SheetQueue interface {
	EnqueueProductionSheet(ctx context.Context, payload worker.ProductionSheetPayload) (string, error)
}

// Snapshot is the read-only input of one recomputation, fetched in a
// single pass.
type Snapshot struct {
	Event           *model.Event
	GuestCount      int64
	MenuItems       []model.MenuItem
	Recipes         []model.Recipe
	Ingredients     []model.Ingredient
	ReferencePrices map[uuid.UUID]decimal.Decimal
	Lots            []model.Batch
}

type productionService struct {
	events      repository.EventRepository
	menu        repository.MenuItemRepository
	recipes     repository.RecipeRepository
	ingredients repository.IngredientRepository
	batches     repository.BatchRepository
	pricing     PricingService
	queue       SheetQueue
	breaker     *infra.CircuitBreaker
	agg         *costing.Aggregator
	render      func(dto.ProductionReport) ([]byte, error)
	now         func() time.Time
	computed    metric.Int64Counter
}

func NewProductionService(
	events repository.EventRepository,
	menu repository.MenuItemRepository,
	recipes repository.RecipeRepository,
	ingredients repository.IngredientRepository,
	batches repository.BatchRepository,
	pricing PricingService,
	queue SheetQueue,
	breaker *infra.CircuitBreaker,
	agg *costing.Aggregator,
) ProductionService {
	if breaker == nil {
		breaker = infra.NewCircuitBreaker(infra.DefaultCBConfig("snapshot"))
	}
	if agg == nil {
		agg = costing.NewAggregator(costing.DefaultLanguage)
	}
	counter, err := otel.Meter(instrumentationName).Int64Counter(
		"production.reports.computed",
		metric.WithDescription("Production reports recomputed"),
	)
	if err != nil {
		log.Warn().Err(err).Msg("production: counter init failed")
	}
	return &productionService{
		events:      events,
		menu:        menu,
		recipes:     recipes,
		ingredients: ingredients,
		batches:     batches,
		pricing:     pricing,
		queue:       queue,
		breaker:     breaker,
		agg:         agg,
		render:      infra.RenderProductionSheet,
		now:         time.Now,
		computed:    counter,
	}
}

// ── Report ────────────────────────────────────────────────────────────────────
// 1. Resolve controls (menu type, pricing mode)
// 2. Load the snapshot (one batched read, behind the circuit breaker)
// 3. Resolve portions: explicit value, else the guest count, minimum 1
// 4. Run costing.Build and map to plain data

func (s *productionService) Report(ctx context.Context, eventID uuid.UUID, q dto.ProductionQuery) (*dto.ProductionReport, error) {
	ctx, span := otel.Tracer(instrumentationName).Start(ctx, "production.Report")
	defer span.End()

	scope, pricing, err := parseControls(q)
	if err != nil {
		return nil, err
	}

	snap, err := s.LoadSnapshot(ctx, eventID)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "snapshot")
		return nil, err
	}

	portions := resolvePortions(q.Portions, snap.GuestCount)
	span.SetAttributes(
		attribute.String("event.id", eventID.String()),
		attribute.String("production.menu_type", string(scope)),
		attribute.String("production.pricing", string(pricing)),
		attribute.Int("production.portions", portions),
	)

	in := buildInput(snap)
	in.Scope = scope
	in.Pricing = pricing
	in.Portions = portions

	rep, err := s.agg.Build(in)
	if err != nil {
		return nil, err
	}
	if s.computed != nil {
		s.computed.Add(ctx, 1, metric.WithAttributes(
			attribute.String("menu_type", string(scope)),
			attribute.String("pricing", string(pricing)),
		))
	}

	out := reportToDTO(rep, snap, s.now())
	out.RequestID = q.RequestID
	return &out, nil
}

func (s *productionService) Products(ctx context.Context, eventID uuid.UUID, q dto.ProductionQuery) (*dto.ProductionProductsResponse, error) {
	scope, _, err := parseControls(q)
	if err != nil {
		return nil, err
	}
	snap, err := s.LoadSnapshot(ctx, eventID)
	if err != nil {
		return nil, err
	}
	in := buildInput(snap)
	flags := costing.ProductRecipeFlags(costing.FilterMenuType(in.MenuItems, scope), in.Recipes, in.Catalog)

	resp := &dto.ProductionProductsResponse{
		RequestID: q.RequestID,
		EventID:   eventID.String(),
		MenuType:  string(scope),
		Data:      make([]dto.ProductionProduct, 0, len(flags)),
	}
	for _, f := range flags {
		resp.Data = append(resp.Data, productFlagToDTO(f))
		if !f.HasRecipe {
			resp.MissingRecipes++
		}
	}
	return resp, nil
}

func (s *productionService) RenderSheet(ctx context.Context, eventID uuid.UUID, q dto.ProductionQuery) (dto.ProductionReport, []byte, error) {
	rep, err := s.Report(ctx, eventID, q)
	if err != nil {
		return dto.ProductionReport{}, nil, err
	}
	pdf, err := s.render(*rep)
	if err != nil {
		return dto.ProductionReport{}, nil, err
	}
	return *rep, pdf, nil
}

func (s *productionService) Send(ctx context.Context, eventID uuid.UUID, req dto.SendSheetRequest, requestedBy string) (*dto.SendSheetResponse, error) {
	if _, _, err := parseControls(req.ProductionQuery); err != nil {
		return nil, err
	}
	if s.queue == nil {
		return nil, ErrDeliveryDisabled
	}
	if _, err := s.events.FindByID(ctx, eventID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrEventNotFound
		}
		return nil, fmt.Errorf("find event: %w", err)
	}
	jobID, err := s.queue.EnqueueProductionSheet(ctx, worker.ProductionSheetPayload{
		EventID:     eventID.String(),
		Query:       req.ProductionQuery,
		To:          req.To,
		RequestedBy: requestedBy,
	})
	if err != nil {
		return nil, fmt.Errorf("enqueue production sheet: %w", err)
	}
	return &dto.SendSheetResponse{JobID: jobID, Status: "queued"}, nil
}

// ── Snapshot ──────────────────────────────────────────────────────────────────

// LoadSnapshot fetches everything one report needs. Store failures count
// against the circuit breaker; a missing event does not.
func (s *productionService) LoadSnapshot(ctx context.Context, eventID uuid.UUID) (*Snapshot, error) {
	ctx, span := otel.Tracer(instrumentationName).Start(ctx, "production.LoadSnapshot")
	defer span.End()

	var snap *Snapshot
	notFound := false
	err := s.breaker.Execute(func() error {
		ev, err := s.events.FindByID(ctx, eventID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				notFound = true
				return nil
			}
			return fmt.Errorf("find event: %w", err)
		}
		loaded, err := s.loadFor(ctx, ev)
		if err != nil {
			return err
		}
		snap = loaded
		return nil
	})
	if err != nil {
		return nil, err
	}
	if notFound {
		return nil, ErrEventNotFound
	}
	span.SetAttributes(
		attribute.Int("snapshot.menu_items", len(snap.MenuItems)),
		attribute.Int("snapshot.recipes", len(snap.Recipes)),
		attribute.Int("snapshot.lots", len(snap.Lots)),
	)
	return snap, nil
}

func (s *productionService) loadFor(ctx context.Context, ev *model.Event) (*Snapshot, error) {
	guests, err := s.events.CountGuests(ctx, ev.ID)
	if err != nil {
		return nil, fmt.Errorf("count guests: %w", err)
	}
	items, err := s.menu.ListByEvent(ctx, ev.ID)
	if err != nil {
		return nil, fmt.Errorf("list menu items: %w", err)
	}

	productIDs := make([]uuid.UUID, 0, len(items))
	seenProduct := map[uuid.UUID]bool{}
	for _, it := range items {
		if !seenProduct[it.ProductID] {
			seenProduct[it.ProductID] = true
			productIDs = append(productIDs, it.ProductID)
		}
	}
	recipes, err := s.recipes.ListByProducts(ctx, productIDs)
	if err != nil {
		return nil, fmt.Errorf("list recipes: %w", err)
	}
	warnDuplicateRecipes(ev.ID, recipes)

	ingredientIDs := []uuid.UUID{}
	seenIng := map[uuid.UUID]bool{}
	for _, r := range recipes {
		for _, l := range r.Lines {
			if !seenIng[l.IngredientID] {
				seenIng[l.IngredientID] = true
				ingredientIDs = append(ingredientIDs, l.IngredientID)
			}
		}
	}
	ingredients, err := s.ingredients.ListByIDs(ctx, ingredientIDs)
	if err != nil {
		return nil, fmt.Errorf("list ingredients: %w", err)
	}
	lots, err := s.batches.ListOpen(ctx, ingredientIDs)
	if err != nil {
		return nil, fmt.Errorf("list open lots: %w", err)
	}
	prices, err := s.pricing.ReferencePriceMap(ctx)
	if err != nil {
		return nil, fmt.Errorf("load reference prices: %w", err)
	}

	return &Snapshot{
		Event:           ev,
		GuestCount:      guests,
		MenuItems:       items,
		Recipes:         recipes,
		Ingredients:     ingredients,
		ReferencePrices: prices,
		Lots:            lots,
	}, nil
}

func warnDuplicateRecipes(eventID uuid.UUID, recipes []model.Recipe) {
	dups := costing.DuplicateRecipeProducts(toCostingRecipes(recipes))
	if len(dups) == 0 {
		return
	}
	ids := make([]string, 0, len(dups))
	for _, id := range dups {
		ids = append(ids, id.String())
	}
	log.Warn().
		Str("event_id", eventID.String()).
		Strs("product_ids", ids).
		Msg("production: products with more than one recipe, using the oldest")
}

// ── Controls ──────────────────────────────────────────────────────────────────

func parseControls(q dto.ProductionQuery) (costing.MenuType, costing.PricingMode, error) {
	scope := costing.MenuGuests
	if q.MenuType != "" {
		scope = costing.MenuType(q.MenuType)
		if !scope.Valid() {
			return "", "", ErrInvalidMenuType
		}
	}
	pricing, err := costing.ParsePricingMode(q.Pricing)
	if err != nil {
		return "", "", err
	}
	return scope, pricing, nil
}

// resolvePortions: 0 means "not given" and falls back to the guest count;
// anything else is clamped to at least 1.
func resolvePortions(requested int, guests int64) int {
	if requested == 0 {
		return costing.DefaultPortions(int(guests))
	}
	return costing.ClampPortions(requested)
}

// ── Mapping ───────────────────────────────────────────────────────────────────

func buildInput(snap *Snapshot) costing.Input {
	cat := costing.Catalog{
		Ingredients:  make(map[uuid.UUID]costing.Ingredient, len(snap.Ingredients)),
		ProductNames: map[uuid.UUID]string{},
	}
	for _, ing := range snap.Ingredients {
		cat.Ingredients[ing.ID] = costing.Ingredient{
			ID:        ing.ID,
			Name:      ing.Name,
			Unit:      ing.Unit,
			StockHint: ing.StockHint,
		}
	}

	items := make([]costing.MenuItem, 0, len(snap.MenuItems))
	for _, it := range snap.MenuItems {
		if it.Product != nil {
			cat.ProductNames[it.ProductID] = it.Product.Name
		}
		items = append(items, costing.MenuItem{
			ProductID:        it.ProductID,
			MenuType:         costing.MenuType(it.MenuType),
			Category:         it.Category,
			QuantityPerGuest: it.QuantityPerGuest,
		})
	}

	lots := make([]costing.Lot, 0, len(snap.Lots))
	for _, b := range snap.Lots {
		lots = append(lots, costing.Lot{
			IngredientID:  b.IngredientID,
			Quantity:      b.Quantity,
			PurchasePrice: b.PurchasePrice,
			CreatedAt:     b.CreatedAt,
		})
	}

	return costing.Input{
		MenuItems:       items,
		Recipes:         toCostingRecipes(snap.Recipes),
		Catalog:         cat,
		ReferencePrices: snap.ReferencePrices,
		Lots:            lots,
	}
}

func toCostingRecipes(recipes []model.Recipe) []costing.Recipe {
	out := make([]costing.Recipe, 0, len(recipes))
	for _, r := range recipes {
		lines := make([]costing.RecipeLine, 0, len(r.Lines))
		for _, l := range r.Lines {
			lines = append(lines, costing.RecipeLine{IngredientID: l.IngredientID, QuantityRequired: l.QuantityRequired})
		}
		out = append(out, costing.Recipe{ID: r.ID, LinkedProductID: r.LinkedProductID, Lines: lines})
	}
	return out
}

func reportToDTO(rep costing.Report, snap *Snapshot, now time.Time) dto.ProductionReport {
	out := dto.ProductionReport{
		EventID:     snap.Event.ID.String(),
		EventName:   snap.Event.Name,
		EventDate:   snap.Event.EventDate.Format("2006-01-02"),
		MenuType:    string(rep.Scope),
		Portions:    rep.Portions,
		GuestCount:  snap.GuestCount,
		Pricing:     string(rep.Pricing),
		GeneratedAt: now.UTC().Format(time.RFC3339),
		Lines:       make([]dto.ProductionLine, 0, len(rep.Lines)),
		Products:    make([]dto.ProductionProduct, 0, len(rep.Products)),
		Totals: dto.ProductionTotals{
			TotalCost:      rep.TotalCost,
			CostPerPerson:  rep.CostPerPerson,
			UnpricedCount:  rep.UnpricedCount,
			MissingRecipes: rep.MissingRecipes,
			Ingredients:    len(rep.Lines),
		},
	}
	for _, l := range rep.Lines {
		line := dto.ProductionLine{
			IngredientID:  l.IngredientID.String(),
			Name:          l.Name,
			Unit:          l.Unit,
			TotalQuantity: l.TotalQuantity,
			UsedIn:        l.UsedIn,
			StockHint:     l.StockHint,
			BatchStock:    l.BatchStock,
			Available:     l.Available,
			Status:        string(l.Status),
			Reference:     l.Reference,
			LastPurchase:  l.LastPurchase,
			LineCost:      l.LineCost,
		}
		if l.Priced {
			p := l.UnitPrice
			line.UnitPrice = &p
		}
		if line.UsedIn == nil {
			line.UsedIn = []string{}
		}
		out.Lines = append(out.Lines, line)
	}
	for _, p := range rep.Products {
		out.Products = append(out.Products, productFlagToDTO(p))
	}
	return out
}

func productFlagToDTO(f costing.ProductRecipeFlag) dto.ProductionProduct {
	return dto.ProductionProduct{
		ProductID:        f.ProductID.String(),
		Name:             f.Name,
		Category:         f.Category,
		MenuType:         string(f.MenuType),
		QuantityPerGuest: f.QuantityPerGuest,
		HasRecipe:        f.HasRecipe,
	}
}
