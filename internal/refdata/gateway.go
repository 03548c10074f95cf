package refdata

import (
	"context"
	"errors"
	"fmt"

	"trade-booking-go/internal/models"

	"gorm.io/gorm"
)

// ErrNotFound is returned when a reference entity does not exist. Any other
// error from a Gateway is infrastructural and must not be treated as a
// business-rule failure.
var ErrNotFound = errors.New("reference entity not found")

// Gateway is the reference-data lookup used by the booking engine. Entities
// carry their own Active flag; the gateway reports existence only.
type Gateway interface {
	FindBook(ctx context.Context, id uint) (*models.Book, error)
	FindCounterparty(ctx context.Context, id uint) (*models.Counterparty, error)
	FindTrader(ctx context.Context, id uint) (*models.ApplicationUser, error)
	FindBookByName(ctx context.Context, name string) (*models.Book, error)
	FindCounterpartyByName(ctx context.Context, name string) (*models.Counterparty, error)
}

// Store is the database-backed Gateway used when reference data lives in the
// service's own database.
type Store struct {
	db *gorm.DB
}

var _ Gateway = (*Store)(nil)

// NewStore creates a database-backed reference-data gateway.
func NewStore(db *gorm.DB) *Store {
	return &Store{db: db}
}

func (s *Store) FindBook(ctx context.Context, id uint) (*models.Book, error) {
	var book models.Book
	if err := s.find(ctx, &book, id); err != nil {
		return nil, err
	}
	return &book, nil
}

func (s *Store) FindCounterparty(ctx context.Context, id uint) (*models.Counterparty, error) {
	var cp models.Counterparty
	if err := s.find(ctx, &cp, id); err != nil {
		return nil, err
	}
	return &cp, nil
}

func (s *Store) FindTrader(ctx context.Context, id uint) (*models.ApplicationUser, error) {
	var user models.ApplicationUser
	if err := s.find(ctx, &user, id); err != nil {
		return nil, err
	}
	return &user, nil
}

func (s *Store) FindBookByName(ctx context.Context, name string) (*models.Book, error) {
	var book models.Book
	err := s.db.WithContext(ctx).Where("book_name = ?", name).First(&book).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("book lookup by name failed: %w", err)
	}
	return &book, nil
}

func (s *Store) FindCounterpartyByName(ctx context.Context, name string) (*models.Counterparty, error) {
	var cp models.Counterparty
	err := s.db.WithContext(ctx).Where("name = ?", name).First(&cp).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("counterparty lookup by name failed: %w", err)
	}
	return &cp, nil
}

func (s *Store) find(ctx context.Context, dest any, id uint) error {
	err := s.db.WithContext(ctx).First(dest, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrNotFound
	}
	if err != nil {
		return fmt.Errorf("reference lookup failed: %w", err)
	}
	return nil
}
