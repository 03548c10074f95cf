package database

import (
	"testing"

	"trade-booking-go/internal/config"
	"trade-booking-go/internal/models"

	"github.com/stretchr/testify/assert"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func setupSeedTest(t *testing.T) *gorm.DB {
	db, err := gorm.Open(sqlite.Open("file::memory:"), &gorm.Config{})
	assert.NoError(t, err)

	// A single connection keeps every query on the same in-memory database.
	sqlDB, err := db.DB()
	assert.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	assert.NoError(t, Migrate(db))
	return db
}

func TestSeedReferenceData_SeedsActiveEntities(t *testing.T) {
	// Arrange
	db := setupSeedTest(t)
	cfg := config.RefData{
		Books:          []string{"Book-1", "Book-2"},
		Counterparties: []string{"Counterparty-1"},
		Traders:        []string{"jsmith"},
	}

	// Act
	assert.NoError(t, SeedReferenceData(db, &cfg))

	// Assert
	var books []models.Book
	db.Order("id").Find(&books)
	assert.Len(t, books, 2)
	for _, book := range books {
		assert.True(t, book.Active)
	}

	var trader models.ApplicationUser
	assert.NoError(t, db.Where("login_id = ?", "jsmith").First(&trader).Error)
	assert.True(t, trader.Active)
}

func TestSeedReferenceData_DeactivatedEntityStaysDeactivated(t *testing.T) {
	// Arrange
	db := setupSeedTest(t)
	cfg := config.RefData{Books: []string{"Book-1"}}
	assert.NoError(t, SeedReferenceData(db, &cfg))

	db.Model(&models.Book{}).Where("book_name = ?", "Book-1").Update("active", false)

	// Act: re-seeding must not flip a deactivated entity back on.
	assert.NoError(t, SeedReferenceData(db, &cfg))

	// Assert
	var book models.Book
	assert.NoError(t, db.Where("book_name = ?", "Book-1").First(&book).Error)
	assert.False(t, book.Active)

	var count int64
	db.Model(&models.Book{}).Count(&count)
	assert.Equal(t, int64(1), count)
}

func TestSeedReferenceData_InactiveFlagRoundTrips(t *testing.T) {
	// Arrange
	db := setupSeedTest(t)

	// Act: an entity inserted inactive must read back inactive.
	assert.NoError(t, db.Create(&models.Counterparty{Name: "Dormant Corp", Active: false}).Error)

	// Assert
	var cp models.Counterparty
	assert.NoError(t, db.Where("name = ?", "Dormant Corp").First(&cp).Error)
	assert.False(t, cp.Active)
}
