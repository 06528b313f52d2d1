package infra

import (
	"fmt"

	"github.com/digitalhubmedia1-spec/proiect-chianti-sub001/internal/model"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// NewDatabase establishes a GORM connection backed by pgx and applies the
// idempotent schema patches the costing queries rely on.
//
// Tables are owned by the back-office migrations; this service only reads
// the menu, recipe and inventory tables and writes reference prices.
func NewDatabase(dsn string) (*gorm.DB, error) {
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return nil, err
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}
	sqlDB.SetMaxOpenConns(25)
	sqlDB.SetMaxIdleConns(5)

	if err := applySchemaPatches(db); err != nil {
		return nil, fmt.Errorf("schema patches: %w", err)
	}

	return db, nil
}

// applySchemaPatches runs idempotent DDL that GORM tags cannot express
// (partial and composite indexes). Every statement is guarded by an
// existence check so re-running on a patched DB is a no-op.
func applySchemaPatches(db *gorm.DB) error {
	patches := []string{
		// open-lot lookup used by the stock classifier
		`DO $$ BEGIN
		  IF EXISTS (SELECT 1 FROM information_schema.tables WHERE table_name = 'inventory_batches')
		    AND NOT EXISTS (SELECT 1 FROM pg_indexes WHERE indexname = 'idx_inventory_batches_open') THEN
		    CREATE INDEX idx_inventory_batches_open
		        ON inventory_batches (ingredient_id, created_at DESC)
		        WHERE quantity > 0;
		  END IF;
		END $$`,
		// newest-first history pages
		`DO $$ BEGIN
		  IF EXISTS (SELECT 1 FROM information_schema.tables WHERE table_name = 'reference_price_changes')
		    AND NOT EXISTS (SELECT 1 FROM pg_indexes WHERE indexname = 'idx_reference_price_changes_recent') THEN
		    CREATE INDEX idx_reference_price_changes_recent
		        ON reference_price_changes (ingredient_id, created_at DESC);
		  END IF;
		END $$`,
		`DO $$ BEGIN
		  IF EXISTS (SELECT 1 FROM information_schema.tables WHERE table_name = 'event_menu_items')
		    AND NOT EXISTS (SELECT 1 FROM pg_indexes WHERE indexname = 'idx_event_menu_items_event_type') THEN
		    CREATE INDEX idx_event_menu_items_event_type
		        ON event_menu_items (event_id, menu_type);
		  END IF;
		END $$`,
	}

	for _, sql := range patches {
		if err := db.Exec(sql).Error; err != nil {
			return fmt.Errorf("patch %q: %w", sql[:min(len(sql), 60)], err)
		}
	}
	return nil
}

// RunMigrations creates the tables from the models and applies the schema
// patches. Used by the seeder and the integration tests against a blank
// database.
func RunMigrations(db *gorm.DB) error {
	if err := db.AutoMigrate(
		&model.Product{},
		&model.Ingredient{},
		&model.Recipe{},
		&model.RecipeLine{},
		&model.Event{},
		&model.Guest{},
		&model.MenuItem{},
		&model.Batch{},
		&model.ReferencePrice{},
		&model.ReferencePriceChange{},
	); err != nil {
		return fmt.Errorf("AutoMigrate: %w", err)
	}
	return applySchemaPatches(db)
}
