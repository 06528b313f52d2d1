//go:build integration

package router_test

// Runs the HTTP API against real Postgres and Redis via testcontainers.
// Run with: go test -tags integration ./internal/router/... -v

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/digitalhubmedia1-spec/proiect-chianti-sub001/internal/config"
	"github.com/digitalhubmedia1-spec/proiect-chianti-sub001/internal/dto"
	"github.com/digitalhubmedia1-spec/proiect-chianti-sub001/internal/infra"
	"github.com/digitalhubmedia1-spec/proiect-chianti-sub001/internal/middleware"
	"github.com/digitalhubmedia1-spec/proiect-chianti-sub001/internal/model"
	"github.com/digitalhubmedia1-spec/proiect-chianti-sub001/internal/router"
	"github.com/digitalhubmedia1-spec/proiect-chianti-sub001/internal/worker"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	tcPostgres "github.com/testcontainers/testcontainers-go/modules/postgres"
	tcRedis "github.com/testcontainers/testcontainers-go/modules/redis"
	"gorm.io/gorm"
)

const testSecret = "test-secret-key"

// ── Helpers ──────────────────────────────────────────────────────────────────

func token(t *testing.T, role string) string {
	t.Helper()
	claims := middleware.OperatorClaims{
		OperatorID: uuid.NewString(),
		Name:       "e2e-" + role,
		Role:       role,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	}
	s, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(testSecret))
	require.NoError(t, err)
	return s
}

func do(t *testing.T, srv *httptest.Server, method, path string, body []byte, contentType, tok string) *http.Response {
	t.Helper()
	req, err := http.NewRequest(method, srv.URL+path, bytes.NewReader(body))
	require.NoError(t, err)
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	if tok != "" {
		req.Header.Set("Authorization", "Bearer "+tok)
	}
	resp, err := srv.Client().Do(req)
	require.NoError(t, err)
	return resp
}

func decodeJSON(t *testing.T, resp *http.Response, dest any) {
	t.Helper()
	defer resp.Body.Close()
	require.NoError(t, json.NewDecoder(resp.Body).Decode(dest))
}

func dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }

// ── Setup ────────────────────────────────────────────────────────────────────

type testEnv struct {
	server  *httptest.Server
	db      *gorm.DB
	eventID uuid.UUID
	carrots uuid.UUID
	oil     uuid.UUID
}

func setupTestEnv(t *testing.T) *testEnv {
	t.Helper()
	ctx := context.Background()

	pgC, err := tcPostgres.RunContainer(ctx,
		testcontainers.WithImage("postgres:15-alpine"),
		tcPostgres.WithDatabase("chianti_test"),
		tcPostgres.WithUsername("chianti"),
		tcPostgres.WithPassword("chianti"),
		testcontainers.WithWaitStrategy(tcPostgres.BasicWaitStrategies()...),
	)
	require.NoError(t, err)
	t.Cleanup(func() { _ = pgC.Terminate(ctx) })
	pgURL, err := pgC.ConnectionString(ctx, "sslmode=disable")
	require.NoError(t, err)

	rdC, err := tcRedis.RunContainer(ctx, testcontainers.WithImage("redis:7-alpine"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = rdC.Terminate(ctx) })
	rdURL, err := rdC.ConnectionString(ctx)
	require.NoError(t, err)

	cfg := &config.Config{
		Env:           "test",
		JWTSecret:     testSecret,
		DatabaseURL:   pgURL,
		RedisURL:      rdURL,
		PriceCacheTTL: 60,
		CollationLang: "ro",
		ServiceName:   "chianti-test",
	}

	db, err := infra.NewDatabase(cfg.DatabaseURL)
	require.NoError(t, err)
	require.NoError(t, infra.RunMigrations(db))
	rdb, err := infra.NewRedis(cfg.RedisURL)
	require.NoError(t, err)

	env := &testEnv{db: db, eventID: uuid.New(), carrots: uuid.New(), oil: uuid.New()}
	seed(t, db, env)

	breaker := infra.NewCircuitBreaker(infra.DefaultCBConfig("snapshot"))
	svcs := router.BuildServices(cfg, db, rdb, breaker, worker.NewDispatcher(rdb))
	env.server = httptest.NewServer(router.New(cfg, db, rdb, breaker, svcs))
	t.Cleanup(env.server.Close)
	return env
}

// seed: 10 guests, soup on the guest menu (0.2 kg carrots + 0.01 l oil per
// portion), carrots priced at 4 by reference and 4.5 by their latest lot.
func seed(t *testing.T, db *gorm.DB, env *testEnv) {
	t.Helper()
	soup := model.Product{ID: uuid.New(), Name: "Supă", Category: "Ciorbe", Price: dec("18"), Active: true}
	require.NoError(t, db.Create(&[]model.Ingredient{
		{ID: env.carrots, Name: "Morcovi", Unit: "kg", StockHint: dec("1"), Active: true},
		{ID: env.oil, Name: "Ulei", Unit: "l", StockHint: dec("0"), Active: true},
	}).Error)
	require.NoError(t, db.Create(&soup).Error)
	require.NoError(t, db.Create(&model.Recipe{
		ID: uuid.New(), LinkedProductID: soup.ID, Name: "Supă",
		Lines: []model.RecipeLine{
			{IngredientID: env.carrots, QuantityRequired: dec("0.2"), Position: 0},
			{IngredientID: env.oil, QuantityRequired: dec("0.01"), Position: 1},
		},
	}).Error)
	require.NoError(t, db.Create(&model.Event{ID: env.eventID, Name: "Botez", EventDate: time.Now()}).Error)
	guests := make([]model.Guest, 10)
	for i := range guests {
		guests[i] = model.Guest{EventID: env.eventID, Name: fmt.Sprintf("Guest %d", i+1)}
	}
	require.NoError(t, db.Create(&guests).Error)
	require.NoError(t, db.Create(&model.MenuItem{
		EventID: env.eventID, ProductID: soup.ID, MenuType: "guests", QuantityPerGuest: decimal.NewNullDecimal(dec("1")),
	}).Error)
	require.NoError(t, db.Create(&[]model.Batch{
		{IngredientID: env.carrots, Quantity: dec("0.5"), PurchasePrice: dec("3.5"), CreatedAt: time.Now().Add(-time.Hour)},
		{IngredientID: env.carrots, Quantity: dec("0.4"), PurchasePrice: dec("4.5"), CreatedAt: time.Now()},
	}).Error)
	require.NoError(t, db.Create(&model.ReferencePrice{IngredientID: env.carrots, Price: dec("4"), UpdatedBy: "seed"}).Error)
}

// ── Tests ────────────────────────────────────────────────────────────────────

func TestIntegration_ProductionReport(t *testing.T) {
	env := setupTestEnv(t)
	chef := token(t, middleware.RoleChef)

	resp := do(t, env.server, "GET", "/v1/events/"+env.eventID.String()+"/production?request_id=r-1", nil, "", chef)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var rep dto.ProductionReport
	decodeJSON(t, resp, &rep)

	assert.Equal(t, "r-1", rep.RequestID)
	assert.Equal(t, 10, rep.Portions)
	require.Len(t, rep.Lines, 2)
	assert.Equal(t, "Morcovi", rep.Lines[0].Name)
	assert.True(t, rep.Lines[0].TotalQuantity.Equal(dec("2")))
	assert.Equal(t, "partial", rep.Lines[0].Status)
	assert.Nil(t, rep.Lines[1].UnitPrice)
	assert.True(t, rep.Totals.TotalCost.Equal(dec("8")), rep.Totals.TotalCost.String())
	assert.True(t, rep.Totals.CostPerPerson.Equal(dec("0.8")))
	assert.Equal(t, 1, rep.Totals.UnpricedCount)

	resp = do(t, env.server, "GET", "/v1/events/"+env.eventID.String()+"/production?pricing=latest_purchase&portions=20", nil, "", chef)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	decodeJSON(t, resp, &rep)
	assert.Equal(t, 20, rep.Portions)
	assert.True(t, rep.Totals.TotalCost.Equal(dec("18")), rep.Totals.TotalCost.String())
}

func TestIntegration_ReferencePriceChangeIsVisibleImmediately(t *testing.T) {
	env := setupTestEnv(t)
	manager := token(t, middleware.RoleManager)
	path := "/v1/events/" + env.eventID.String() + "/production"

	// warm the price cache
	resp := do(t, env.server, "GET", path, nil, "", manager)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	resp.Body.Close()

	body, _ := json.Marshal(map[string]any{"price": "5"})
	resp = do(t, env.server, "PUT", "/v1/reference-prices/"+env.carrots.String(), body, "application/json", manager)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	resp.Body.Close()

	resp = do(t, env.server, "GET", path, nil, "", manager)
	var rep dto.ProductionReport
	decodeJSON(t, resp, &rep)
	assert.True(t, rep.Totals.TotalCost.Equal(dec("10")), rep.Totals.TotalCost.String())

	resp = do(t, env.server, "GET", "/v1/reference-prices/"+env.carrots.String()+"/history", nil, "", manager)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var hist dto.PriceHistoryResponse
	decodeJSON(t, resp, &hist)
	assert.EqualValues(t, 1, hist.Total)
}

func TestIntegration_CSVImport(t *testing.T) {
	env := setupTestEnv(t)
	admin := token(t, middleware.RoleAdmin)

	csv := fmt.Sprintf("ingredient_id,price\n%s,12.5\n%s,-1\nnot-a-uuid,3\n", env.oil, env.carrots)
	resp := do(t, env.server, "POST", "/v1/reference-prices/import", []byte(csv), "text/csv", admin)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var out dto.CSVImportResponse
	decodeJSON(t, resp, &out)
	assert.Equal(t, 3, out.TotalRows)
	assert.Equal(t, 1, out.Processed)
	assert.Equal(t, 1, out.Created)
	assert.Equal(t, 2, out.Errors)

	var rp model.ReferencePrice
	require.NoError(t, env.db.First(&rp, "ingredient_id = ?", env.oil).Error)
	assert.True(t, rp.Price.Equal(dec("12.5")))
}

func TestIntegration_RolesAndErrors(t *testing.T) {
	env := setupTestEnv(t)

	resp := do(t, env.server, "GET", "/v1/events/"+env.eventID.String()+"/production", nil, "", "")
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	resp.Body.Close()

	body, _ := json.Marshal(map[string]any{"price": "1"})
	resp = do(t, env.server, "PUT", "/v1/reference-prices/"+env.carrots.String(), body, "application/json", token(t, middleware.RoleChef))
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)
	resp.Body.Close()

	resp = do(t, env.server, "GET", "/v1/events/"+uuid.NewString()+"/production", nil, "", token(t, middleware.RoleChef))
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	resp.Body.Close()
}
