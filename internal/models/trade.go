package models

import (
	"time"

	"gorm.io/gorm"
)

// Trade statuses. TERMINATED and CANCELLED are terminal.
const (
	StatusNew        = "NEW"
	StatusAmended    = "AMENDED"
	StatusTerminated = "TERMINATED"
	StatusCancelled  = "CANCELLED"
)

// Trade is one immutable version of a trade. All versions of the same trade
// share a TradeID; exactly one of them is active at a time.
type Trade struct {
	gorm.Model
	TradeID           int64           `gorm:"uniqueIndex:idx_trade_version;not null" json:"trade_id"`
	Version           int             `gorm:"uniqueIndex:idx_trade_version;not null" json:"version"`
	Active            bool            `gorm:"index" json:"active"`
	Status            string          `gorm:"not null" json:"status"`
	TradeDate         time.Time       `gorm:"type:date" json:"trade_date"`
	TradeStartDate    time.Time       `gorm:"type:date" json:"trade_start_date"`
	TradeMaturityDate time.Time       `gorm:"type:date" json:"trade_maturity_date"`
	BookID            uint            `json:"book_id"`
	Book              Book            `json:"book"`
	CounterpartyID    uint            `json:"counterparty_id"`
	Counterparty      Counterparty    `json:"counterparty"`
	TraderUserID      uint            `json:"trader_user_id"`
	TraderUser        ApplicationUser `gorm:"foreignKey:TraderUserID" json:"trader_user"`
	Legs              []TradeLeg      `gorm:"foreignKey:TradeVersionID" json:"legs"`
}

// Terminal reports whether no further lifecycle operation is permitted.
func (t *Trade) Terminal() bool {
	return t.Status == StatusTerminated || t.Status == StatusCancelled
}
