package booking

import (
	"strings"
	"time"

	"gorm.io/gorm"
)

// SearchCriteria is a set of independently-optional trade filters. Empty or
// nil fields are ignored; the applied filters combine with logical AND, so an
// all-empty criteria matches every active trade version.
type SearchCriteria struct {
	CounterpartyName  string
	BookName          string
	TraderUserID      *uint
	TradeStatus       string
	TradeDate         *time.Time
	TradeStartDate    *time.Time
	TradeMaturityDate *time.Time
}

// Scopes folds the criteria into an ordered list of query scopes, one per
// supplied filter. The fold keeps the combination rule in one place instead
// of scattering WHERE clauses through the repository layer.
func (c SearchCriteria) Scopes() []func(*gorm.DB) *gorm.DB {
	var scopes []func(*gorm.DB) *gorm.DB

	if c.CounterpartyName != "" {
		pattern := "%" + strings.ToLower(c.CounterpartyName) + "%"
		scopes = append(scopes, func(db *gorm.DB) *gorm.DB {
			return db.
				Joins("JOIN counterparties ON counterparties.id = trades.counterparty_id").
				Where("LOWER(counterparties.name) LIKE ?", pattern)
		})
	}
	if c.BookName != "" {
		pattern := "%" + strings.ToLower(c.BookName) + "%"
		scopes = append(scopes, func(db *gorm.DB) *gorm.DB {
			return db.
				Joins("JOIN books ON books.id = trades.book_id").
				Where("LOWER(books.book_name) LIKE ?", pattern)
		})
	}
	if c.TraderUserID != nil {
		id := *c.TraderUserID
		scopes = append(scopes, func(db *gorm.DB) *gorm.DB {
			return db.Where("trades.trader_user_id = ?", id)
		})
	}
	if c.TradeStatus != "" {
		status := c.TradeStatus
		scopes = append(scopes, func(db *gorm.DB) *gorm.DB {
			return db.Where("trades.status = ?", status)
		})
	}
	if c.TradeDate != nil {
		date := *c.TradeDate
		scopes = append(scopes, func(db *gorm.DB) *gorm.DB {
			return db.Where("trades.trade_date = ?", date)
		})
	}

	switch {
	case c.TradeStartDate != nil && c.TradeMaturityDate != nil:
		// Both bounds supplied: start date must fall between them inclusive.
		from, to := *c.TradeStartDate, *c.TradeMaturityDate
		scopes = append(scopes, func(db *gorm.DB) *gorm.DB {
			return db.Where("trades.trade_start_date BETWEEN ? AND ?", from, to)
		})
	case c.TradeStartDate != nil:
		from := *c.TradeStartDate
		scopes = append(scopes, func(db *gorm.DB) *gorm.DB {
			return db.Where("trades.trade_start_date >= ?", from)
		})
	case c.TradeMaturityDate != nil:
		to := *c.TradeMaturityDate
		scopes = append(scopes, func(db *gorm.DB) *gorm.DB {
			return db.Where("trades.trade_maturity_date <= ?", to)
		})
	}

	return scopes
}
