package router

import (
	"time"

	"github.com/digitalhubmedia1-spec/proiect-chianti-sub001/internal/config"
	"github.com/digitalhubmedia1-spec/proiect-chianti-sub001/internal/costing"
	"github.com/digitalhubmedia1-spec/proiect-chianti-sub001/internal/handler"
	"github.com/digitalhubmedia1-spec/proiect-chianti-sub001/internal/infra"
	"github.com/digitalhubmedia1-spec/proiect-chianti-sub001/internal/middleware"
	"github.com/digitalhubmedia1-spec/proiect-chianti-sub001/internal/repository"
	"github.com/digitalhubmedia1-spec/proiect-chianti-sub001/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
	"golang.org/x/text/language"
	"gorm.io/gorm"
)

// Services are shared between the HTTP layer and the worker pool.
type Services struct {
	Production service.ProductionService
	Pricing    service.PricingService
}

// BuildServices wires repositories into services.
// Dependency graph: Service ← Repository ← DB/Redis
func BuildServices(cfg *config.Config, db *gorm.DB, rdb *redis.Client, breaker *infra.CircuitBreaker, queue service.SheetQueue) Services {
	// ── Repositories ─────────────────────────────────────────────────────────
	eventRepo := repository.NewEventRepository(db)
	menuRepo := repository.NewMenuItemRepository(db)
	recipeRepo := repository.NewRecipeRepository(db)
	ingredientRepo := repository.NewIngredientRepository(db)
	batchRepo := repository.NewBatchRepository(db)
	priceRepo := repository.NewReferencePriceRepository(db)

	// ── Services ─────────────────────────────────────────────────────────────
	pricingSvc := service.NewPricingService(priceRepo, ingredientRepo, rdb, time.Duration(cfg.PriceCacheTTL)*time.Second)
	agg := costing.NewAggregator(language.Make(cfg.CollationLang))
	productionSvc := service.NewProductionService(
		eventRepo, menuRepo, recipeRepo, ingredientRepo, batchRepo,
		pricingSvc, queue, breaker, agg,
	)
	return Services{Production: productionSvc, Pricing: pricingSvc}
}

// New returns a configured Gin engine. Handler ← Service.
func New(cfg *config.Config, db *gorm.DB, rdb *redis.Client, breaker *infra.CircuitBreaker, svcs Services) *gin.Engine {
	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()

	// Global middleware chain (order matters)
	r.Use(otelgin.Middleware(cfg.ServiceName))
	r.Use(middleware.RequestID())
	r.Use(middleware.Logger())
	r.Use(middleware.Recovery())
	r.Use(middleware.CORS())
	r.Use(middleware.ErrorHandler())
	r.Use(middleware.RateLimiter(1000, time.Minute)) // 1000 req/min per IP

	// ── Handlers ─────────────────────────────────────────────────────────────
	productionH := handler.NewProductionHandler(svcs.Production)
	pricesH := handler.NewReferencePricesHandler(svcs.Pricing)

	// ── Routes ───────────────────────────────────────────────────────────────

	// Public
	r.GET("/health", handler.Health(db, rdb, breaker))

	v1 := r.Group("/v1", middleware.JWTAuth(cfg.JWTSecret))
	{
		// Kitchen and management read the production sheet
		ev := v1.Group("/events/:id", middleware.RequireRole(middleware.RoleChef, middleware.RoleManager, middleware.RoleAdmin))
		{
			ev.GET("/production", productionH.Report)
			ev.GET("/production/products", productionH.Products)
			ev.GET("/production/pdf", productionH.PDF)
			ev.POST("/production/send", productionH.Send)
		}

		v1.GET("/reference-prices", middleware.RequireRole(middleware.RoleChef, middleware.RoleManager, middleware.RoleAdmin), pricesH.List)
		v1.GET("/reference-prices/:id/history", middleware.RequireRole(middleware.RoleManager, middleware.RoleAdmin), pricesH.History)

		// Price writes — manager or admin
		prices := v1.Group("/reference-prices", middleware.RequireRole(middleware.RoleManager, middleware.RoleAdmin))
		{
			prices.PUT("/:id", pricesH.Set)
			prices.POST("/bulk", pricesH.Bulk)
			prices.POST("/import", middleware.RateLimiter(10, time.Minute), pricesH.ImportCSV)
		}
	}

	// Swagger UI — only enabled outside production
	if !cfg.IsProduction() {
		r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	return r
}
