package service

import (
	"bytes"
	"context"
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/digitalhubmedia1-spec/proiect-chianti-sub001/internal/dto"
	"github.com/digitalhubmedia1-spec/proiect-chianti-sub001/internal/model"
	"github.com/digitalhubmedia1-spec/proiect-chianti-sub001/internal/repository"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

const referencePriceCacheKey = "reference_prices:v1"

// PricingService manages the reference price table and its history.
type PricingService interface {
	List(ctx context.Context) (*dto.ReferencePriceListResponse, error)
	Set(ctx context.Context, ingredientID uuid.UUID, price decimal.Decimal, changedBy string) (*dto.ReferencePriceResponse, error)
	History(ctx context.Context, ingredientID uuid.UUID, page, limit int) (*dto.PriceHistoryResponse, error)
	BulkAdjust(ctx context.Context, req dto.BulkAdjustRequest, changedBy string) (*dto.BulkAdjustResponse, error)
	ImportCSV(ctx context.Context, data []byte, changedBy string) (*dto.CSVImportResponse, error)
	// ReferencePriceMap returns ingredient id → reference price, served from
	// Redis when possible.
	ReferencePriceMap(ctx context.Context) (map[uuid.UUID]decimal.Decimal, error)
}

type pricingService struct {
	prices      repository.ReferencePriceRepository
	ingredients repository.IngredientRepository
	rdb         *redis.Client // nil disables the cache
	cacheTTL    time.Duration
}

func NewPricingService(
	prices repository.ReferencePriceRepository,
	ingredients repository.IngredientRepository,
	rdb *redis.Client,
	cacheTTL time.Duration,
) PricingService {
	return &pricingService{prices: prices, ingredients: ingredients, rdb: rdb, cacheTTL: cacheTTL}
}

func (s *pricingService) List(ctx context.Context) (*dto.ReferencePriceListResponse, error) {
	rows, err := s.prices.ListAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("list reference prices: %w", err)
	}
	data := make([]dto.ReferencePriceResponse, 0, len(rows))
	for i := range rows {
		data = append(data, referencePriceToDTO(&rows[i]))
	}
	return &dto.ReferencePriceListResponse{Data: data, Total: len(data)}, nil
}

// ── Set ───────────────────────────────────────────────────────────────────────

func (s *pricingService) Set(ctx context.Context, ingredientID uuid.UUID, price decimal.Decimal, changedBy string) (*dto.ReferencePriceResponse, error) {
	if price.IsNegative() {
		return nil, ErrNegativePrice
	}
	ing, err := s.ingredients.FindByID(ctx, ingredientID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrIngredientNotFound
		}
		return nil, fmt.Errorf("find ingredient: %w", err)
	}

	var before *decimal.Decimal
	current, err := s.prices.FindByIngredient(ctx, ingredientID)
	switch {
	case err == nil:
		p := current.Price
		before = &p
	case errors.Is(err, gorm.ErrRecordNotFound):
	default:
		return nil, fmt.Errorf("find reference price: %w", err)
	}

	now := time.Now().UTC()
	row := model.ReferencePrice{
		IngredientID: ingredientID,
		Price:        price,
		UpdatedBy:    changedBy,
		UpdatedAt:    now,
	}
	var changes []model.ReferencePriceChange
	if before == nil || !before.Equal(price) {
		changes = append(changes, model.ReferencePriceChange{
			IngredientID: ingredientID,
			PriceBefore:  before,
			PriceAfter:   price,
			Reason:       model.PriceChangeManual,
			ChangedBy:    changedBy,
			CreatedAt:    now,
		})
	}
	if err := s.prices.SaveAll(ctx, []model.ReferencePrice{row}, changes); err != nil {
		return nil, fmt.Errorf("save reference price: %w", err)
	}
	s.invalidateCache(ctx)

	row.Ingredient = ing
	resp := referencePriceToDTO(&row)
	return &resp, nil
}

func (s *pricingService) History(ctx context.Context, ingredientID uuid.UUID, page, limit int) (*dto.PriceHistoryResponse, error) {
	if page < 1 {
		page = 1
	}
	if limit < 1 || limit > 200 {
		limit = 50
	}
	rows, total, err := s.prices.ListHistory(ctx, ingredientID, page, limit)
	if err != nil {
		return nil, fmt.Errorf("list price history: %w", err)
	}
	data := make([]dto.PriceChangeItem, 0, len(rows))
	for i := range rows {
		data = append(data, priceChangeToDTO(&rows[i]))
	}
	return &dto.PriceHistoryResponse{Data: data, Total: total, Page: page, Limit: limit}, nil
}

// ── Bulk adjustment ───────────────────────────────────────────────────────────
// new = current × (1 + percent/100), rounded to the column scale (4 places).
// Preview computes the same rows without writing anything.

func (s *pricingService) BulkAdjust(ctx context.Context, req dto.BulkAdjustRequest, changedBy string) (*dto.BulkAdjustResponse, error) {
	if req.Percent.LessThan(decimal.NewFromInt(-100)) {
		return nil, fmt.Errorf("percent must be at least -100")
	}
	only := make(map[uuid.UUID]bool, len(req.IngredientIDs))
	for _, raw := range req.IngredientIDs {
		id, err := uuid.Parse(raw)
		if err != nil {
			return nil, fmt.Errorf("invalid ingredient id %q: %w", raw, err)
		}
		only[id] = true
	}

	rows, err := s.prices.ListAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("list reference prices: %w", err)
	}

	factor := decimal.NewFromInt(1).Add(req.Percent.Div(decimal.NewFromInt(100)))
	now := time.Now().UTC()
	pct := req.Percent

	resp := &dto.BulkAdjustResponse{Percent: req.Percent, Applied: !req.Preview}
	var updated []model.ReferencePrice
	var changes []model.ReferencePriceChange
	for _, r := range rows {
		if len(only) > 0 && !only[r.IngredientID] {
			continue
		}
		newPrice := r.Price.Mul(factor).Round(4)
		name := ""
		if r.Ingredient != nil {
			name = r.Ingredient.Name
		}
		resp.Preview = append(resp.Preview, dto.BulkPreviewItem{
			IngredientID: r.IngredientID.String(),
			Name:         name,
			CurrentPrice: r.Price,
			NewPrice:     newPrice,
			Difference:   newPrice.Sub(r.Price),
		})

		before := r.Price
		updated = append(updated, model.ReferencePrice{
			IngredientID: r.IngredientID,
			Price:        newPrice,
			UpdatedBy:    changedBy,
			UpdatedAt:    now,
		})
		changes = append(changes, model.ReferencePriceChange{
			IngredientID:   r.IngredientID,
			PriceBefore:    &before,
			PriceAfter:     newPrice,
			PercentApplied: &pct,
			Reason:         model.PriceChangeBulk,
			ChangedBy:      changedBy,
			CreatedAt:      now,
		})
	}
	resp.Affected = len(updated)

	if req.Preview || len(updated) == 0 {
		return resp, nil
	}
	if err := s.prices.SaveAll(ctx, updated, changes); err != nil {
		return nil, fmt.Errorf("apply bulk adjustment: %w", err)
	}
	s.invalidateCache(ctx)

	log.Info().
		Str("percent", req.Percent.String()).
		Int("affected", resp.Affected).
		Str("by", changedBy).
		Msg("pricing: bulk adjustment applied")
	// applied responses only carry the count
	resp.Preview = nil
	return resp, nil
}

// ── CSV import ────────────────────────────────────────────────────────────────
// Two columns: ingredient_id, price. A header row is optional; ";" is
// accepted as the delimiter, and then "," as the decimal separator.
// Valid rows are written in one transaction; invalid rows are reported.

func (s *pricingService) ImportCSV(ctx context.Context, data []byte, changedBy string) (*dto.CSVImportResponse, error) {
	r := csv.NewReader(bytes.NewReader(data))
	r.FieldsPerRecord = -1
	r.TrimLeadingSpace = true
	semicolon := isSemicolonCSV(data)
	if semicolon {
		r.Comma = ';'
	}

	type parsedRow struct {
		row   int
		id    uuid.UUID
		price decimal.Decimal
	}

	resp := &dto.CSVImportResponse{ErrorDetails: []dto.CSVErrorRow{}}
	fail := func(row int, id, code, reason string) {
		resp.Errors++
		resp.ErrorDetails = append(resp.ErrorDetails, dto.CSVErrorRow{Row: row, IngredientID: id, ErrorCode: code, Reason: reason})
	}

	var parsed []parsedRow
	seen := map[uuid.UUID]int{}
	row := 0
	for {
		rec, err := r.Read()
		if err == io.EOF {
			break
		}
		row++
		if err != nil {
			fail(row, "", "READ_ERROR", err.Error())
			break
		}
		if row == 1 && len(rec) > 0 && strings.EqualFold(strings.TrimSpace(rec[0]), "ingredient_id") {
			continue
		}
		resp.TotalRows++
		if len(rec) < 2 {
			fail(row, "", "ROW_FORMAT", "expected ingredient_id,price")
			continue
		}
		rawID := strings.TrimSpace(rec[0])
		id, err := uuid.Parse(rawID)
		if err != nil {
			fail(row, rawID, "ID_INVALID", "ingredient_id is not a UUID")
			continue
		}
		if first, dup := seen[id]; dup {
			fail(row, rawID, "ID_DUPLICATE", fmt.Sprintf("already listed on row %d", first))
			continue
		}
		rawPrice := strings.TrimSpace(rec[1])
		if semicolon {
			rawPrice = strings.Replace(rawPrice, ",", ".", 1)
		}
		price, err := decimal.NewFromString(rawPrice)
		if err != nil {
			fail(row, rawID, "PRICE_NOT_NUMBER", fmt.Sprintf("%q is not a number", rec[1]))
			continue
		}
		if price.IsNegative() {
			fail(row, rawID, "PRICE_NEGATIVE", "price must not be negative")
			continue
		}
		seen[id] = row
		parsed = append(parsed, parsedRow{row: row, id: id, price: price})
	}

	if len(parsed) == 0 {
		return resp, nil
	}

	ids := make([]uuid.UUID, 0, len(parsed))
	for _, p := range parsed {
		ids = append(ids, p.id)
	}
	known, err := s.ingredients.ListByIDs(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("load ingredients: %w", err)
	}
	exists := make(map[uuid.UUID]bool, len(known))
	for _, ing := range known {
		exists[ing.ID] = true
	}

	current, err := s.prices.ListAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("list reference prices: %w", err)
	}
	before := make(map[uuid.UUID]decimal.Decimal, len(current))
	for _, c := range current {
		before[c.IngredientID] = c.Price
	}

	now := time.Now().UTC()
	var rows []model.ReferencePrice
	var changes []model.ReferencePriceChange
	for _, p := range parsed {
		if !exists[p.id] {
			fail(p.row, p.id.String(), "ID_UNKNOWN", "no such ingredient")
			continue
		}
		resp.Processed++
		var prev *decimal.Decimal
		if b, ok := before[p.id]; ok {
			prev = &b
			resp.Updated++
		} else {
			resp.Created++
		}
		rows = append(rows, model.ReferencePrice{IngredientID: p.id, Price: p.price, UpdatedBy: changedBy, UpdatedAt: now})
		if prev == nil || !prev.Equal(p.price) {
			changes = append(changes, model.ReferencePriceChange{
				IngredientID: p.id,
				PriceBefore:  prev,
				PriceAfter:   p.price,
				Reason:       model.PriceChangeCSVImport,
				ChangedBy:    changedBy,
				CreatedAt:    now,
			})
		}
	}

	if len(rows) > 0 {
		if err := s.prices.SaveAll(ctx, rows, changes); err != nil {
			return nil, fmt.Errorf("save imported prices: %w", err)
		}
		s.invalidateCache(ctx)
	}
	return resp, nil
}

func isSemicolonCSV(data []byte) bool {
	line := data
	if i := bytes.IndexByte(data, '\n'); i >= 0 {
		line = data[:i]
	}
	return bytes.IndexByte(line, ';') >= 0
}

// ── Cached price map ──────────────────────────────────────────────────────────

func (s *pricingService) ReferencePriceMap(ctx context.Context) (map[uuid.UUID]decimal.Decimal, error) {
	// 1. Try Redis; any cache problem falls through to the DB
	if s.rdb != nil {
		if cached, err := s.rdb.Get(ctx, referencePriceCacheKey).Bytes(); err == nil {
			var raw map[string]decimal.Decimal
			if jsonErr := json.Unmarshal(cached, &raw); jsonErr == nil {
				out := make(map[uuid.UUID]decimal.Decimal, len(raw))
				for k, v := range raw {
					if id, err := uuid.Parse(k); err == nil {
						out[id] = v
					}
				}
				return out, nil
			}
		}
	}

	// 2. Cache miss
	rows, err := s.prices.ListAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("list reference prices: %w", err)
	}
	out := make(map[uuid.UUID]decimal.Decimal, len(rows))
	raw := make(map[string]decimal.Decimal, len(rows))
	for _, r := range rows {
		out[r.IngredientID] = r.Price
		raw[r.IngredientID.String()] = r.Price
	}

	// 3. Populate cache; best effort
	if s.rdb != nil {
		if b, err := json.Marshal(raw); err == nil {
			_ = s.rdb.Set(ctx, referencePriceCacheKey, b, s.cacheTTL).Err()
		}
	}
	return out, nil
}

func (s *pricingService) invalidateCache(ctx context.Context) {
	if s.rdb == nil {
		return
	}
	if err := s.rdb.Del(ctx, referencePriceCacheKey).Err(); err != nil {
		log.Warn().Err(err).Msg("pricing: cache invalidation failed")
	}
}

// ── Mapping ───────────────────────────────────────────────────────────────────

func referencePriceToDTO(p *model.ReferencePrice) dto.ReferencePriceResponse {
	resp := dto.ReferencePriceResponse{
		IngredientID: p.IngredientID.String(),
		Price:        p.Price,
		UpdatedBy:    p.UpdatedBy,
		UpdatedAt:    p.UpdatedAt.UTC().Format(time.RFC3339),
	}
	if p.Ingredient != nil {
		resp.Name = p.Ingredient.Name
		resp.Unit = p.Ingredient.Unit
	}
	return resp
}

func priceChangeToDTO(c *model.ReferencePriceChange) dto.PriceChangeItem {
	return dto.PriceChangeItem{
		ID:             c.ID.String(),
		IngredientID:   c.IngredientID.String(),
		PriceBefore:    c.PriceBefore,
		PriceAfter:     c.PriceAfter,
		PercentApplied: c.PercentApplied,
		Reason:         c.Reason,
		ChangedBy:      c.ChangedBy,
		CreatedAt:      c.CreatedAt.UTC().Format(time.RFC3339),
	}
}
