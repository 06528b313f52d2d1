// cmd/seedevent seeds a demo event with menu, recipes, lots and reference
// prices. Usage: go run ./cmd/seedevent
package main

import (
	"fmt"
	"time"

	"github.com/digitalhubmedia1-spec/proiect-chianti-sub001/internal/config"
	"github.com/digitalhubmedia1-spec/proiect-chianti-sub001/internal/infra"
	"github.com/digitalhubmedia1-spec/proiect-chianti-sub001/internal/model"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

func dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load config")
	}
	db, err := infra.NewDatabase(cfg.DatabaseURL)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to postgres")
	}
	if err := infra.RunMigrations(db); err != nil {
		log.Fatal().Err(err).Msg("migrations failed")
	}

	eventID := uuid.New()
	err = db.Transaction(func(tx *gorm.DB) error {
		carrots := model.Ingredient{ID: uuid.New(), Name: "Morcovi " + eventID.String()[:8], Unit: "kg", StockHint: dec("2"), Active: true}
		oil := model.Ingredient{ID: uuid.New(), Name: "Ulei de măsline " + eventID.String()[:8], Unit: "l", StockHint: dec("0"), Active: true}
		flour := model.Ingredient{ID: uuid.New(), Name: "Făină " + eventID.String()[:8], Unit: "kg", StockHint: dec("10"), Active: true}
		for _, ing := range []*model.Ingredient{&carrots, &oil, &flour} {
			if err := tx.Create(ing).Error; err != nil {
				return fmt.Errorf("ingredient %s: %w", ing.Name, err)
			}
		}

		soup := model.Product{ID: uuid.New(), Name: "Supă cremă de morcovi", Category: "Ciorbe", Price: dec("18"), Active: true}
		salad := model.Product{ID: uuid.New(), Name: "Salată de morcovi", Category: "Salate", Price: dec("15"), Active: true}
		bread := model.Product{ID: uuid.New(), Name: "Pâine de casă", Category: "Panificație", Price: dec("4"), Active: true}
		dessert := model.Product{ID: uuid.New(), Name: "Tiramisu", Category: "Desert", Price: dec("20"), Active: true}
		for _, p := range []*model.Product{&soup, &salad, &bread, &dessert} {
			if err := tx.Create(p).Error; err != nil {
				return fmt.Errorf("product %s: %w", p.Name, err)
			}
		}

		// Tiramisu has no recipe on purpose: it shows up under missing recipes.
		recipes := []model.Recipe{
			{ID: uuid.New(), LinkedProductID: soup.ID, Name: "Supă cremă de morcovi", Lines: []model.RecipeLine{
				{IngredientID: carrots.ID, QuantityRequired: dec("0.2"), Position: 0},
				{IngredientID: oil.ID, QuantityRequired: dec("0.01"), Position: 1},
			}},
			{ID: uuid.New(), LinkedProductID: salad.ID, Name: "Salată de morcovi", Lines: []model.RecipeLine{
				{IngredientID: carrots.ID, QuantityRequired: dec("0.2"), Position: 0},
			}},
			{ID: uuid.New(), LinkedProductID: bread.ID, Name: "Pâine de casă", Lines: []model.RecipeLine{
				{IngredientID: flour.ID, QuantityRequired: dec("0.1"), Position: 0},
			}},
		}
		for i := range recipes {
			if err := tx.Create(&recipes[i]).Error; err != nil {
				return fmt.Errorf("recipe %s: %w", recipes[i].Name, err)
			}
		}

		ev := model.Event{ID: eventID, Name: "Nuntă demo", Hall: "Salon Chianti", EventDate: time.Now().AddDate(0, 0, 14)}
		if err := tx.Create(&ev).Error; err != nil {
			return fmt.Errorf("event: %w", err)
		}
		guests := make([]model.Guest, 0, 50)
		for i := 1; i <= 50; i++ {
			guests = append(guests, model.Guest{EventID: eventID, Name: fmt.Sprintf("Invitat %d", i)})
		}
		if err := tx.Create(&guests).Error; err != nil {
			return fmt.Errorf("guests: %w", err)
		}

		items := []model.MenuItem{
			{EventID: eventID, ProductID: soup.ID, MenuType: "guests", Category: "Ciorbe", QuantityPerGuest: decimal.NewNullDecimal(dec("1"))},
			{EventID: eventID, ProductID: salad.ID, MenuType: "guests", Category: "Salate", QuantityPerGuest: decimal.NewNullDecimal(dec("1"))},
			{EventID: eventID, ProductID: dessert.ID, MenuType: "guests", Category: "Desert", QuantityPerGuest: decimal.NewNullDecimal(dec("1"))},
			{EventID: eventID, ProductID: bread.ID, MenuType: "staff", Category: "Panificație", QuantityPerGuest: decimal.NewNullDecimal(dec("1"))},
		}
		if err := tx.Create(&items).Error; err != nil {
			return fmt.Errorf("menu items: %w", err)
		}

		ref := "NIR-0001"
		lots := []model.Batch{
			{IngredientID: carrots.ID, Quantity: dec("5"), PurchasePrice: dec("3.8"), ReceptionRef: &ref, CreatedAt: time.Now().Add(-48 * time.Hour)},
			{IngredientID: carrots.ID, Quantity: dec("3"), PurchasePrice: dec("4.25"), CreatedAt: time.Now().Add(-2 * time.Hour)},
			{IngredientID: flour.ID, Quantity: dec("0"), PurchasePrice: dec("2.9"), CreatedAt: time.Now().Add(-72 * time.Hour)},
		}
		if err := tx.Create(&lots).Error; err != nil {
			return fmt.Errorf("lots: %w", err)
		}

		prices := []model.ReferencePrice{
			{IngredientID: carrots.ID, Price: dec("4"), UpdatedBy: "seed"},
			{IngredientID: flour.ID, Price: dec("3"), UpdatedBy: "seed"},
		}
		changes := []model.ReferencePriceChange{
			{IngredientID: carrots.ID, PriceAfter: dec("4"), Reason: model.PriceChangeManual, ChangedBy: "seed"},
			{IngredientID: flour.ID, PriceAfter: dec("3"), Reason: model.PriceChangeManual, ChangedBy: "seed"},
		}
		if err := tx.Create(&prices).Error; err != nil {
			return fmt.Errorf("reference prices: %w", err)
		}
		return tx.Create(&changes).Error
	})
	if err != nil {
		log.Fatal().Err(err).Msg("seed failed")
	}
	log.Info().Str("event_id", eventID.String()).Msg("demo event seeded")
}
