package database

import (
	"fmt"

	"trade-booking-go/internal/config"
	"trade-booking-go/internal/models"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

// NewDatabase creates a new database connection and performs auto-migration.
func NewDatabase(cfg *config.Config) (*gorm.DB, error) {
	db, err := gorm.Open(sqlite.Open(cfg.Database.DSN), &gorm.Config{})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	if err := Migrate(db); err != nil {
		return nil, err
	}

	if err := SeedReferenceData(db, &cfg.RefData); err != nil {
		return nil, err
	}

	return db, nil
}

// Migrate creates or updates the schema for all persisted entities.
func Migrate(db *gorm.DB) error {
	err := db.AutoMigrate(
		&models.Book{},
		&models.Counterparty{},
		&models.ApplicationUser{},
		&models.Trade{},
		&models.TradeLeg{},
		&models.Cashflow{},
	)
	if err != nil {
		return fmt.Errorf("failed to auto-migrate database: %w", err)
	}
	return nil
}

// SeedReferenceData populates books, counterparties and traders from the
// config. Existing rows are left untouched, so a deactivated entity stays
// deactivated across restarts.
func SeedReferenceData(db *gorm.DB, cfg *config.RefData) error {
	for _, name := range cfg.Books {
		book := models.Book{BookName: name, Active: true}
		if err := db.FirstOrCreate(&book, models.Book{BookName: name}).Error; err != nil {
			return fmt.Errorf("failed to seed book '%s': %w", name, err)
		}
	}

	for _, name := range cfg.Counterparties {
		cp := models.Counterparty{Name: name, Active: true}
		if err := db.FirstOrCreate(&cp, models.Counterparty{Name: name}).Error; err != nil {
			return fmt.Errorf("failed to seed counterparty '%s': %w", name, err)
		}
	}

	for _, login := range cfg.Traders {
		user := models.ApplicationUser{LoginID: login, Active: true}
		if err := db.FirstOrCreate(&user, models.ApplicationUser{LoginID: login}).Error; err != nil {
			return fmt.Errorf("failed to seed trader '%s': %w", login, err)
		}
	}

	return nil
}
