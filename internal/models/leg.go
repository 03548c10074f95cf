package models

import (
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Leg types.
const (
	LegFixed    = "FIXED"
	LegFloating = "FLOATING"
)

// Pay/receive flags.
const (
	FlagPay     = "PAY"
	FlagReceive = "RECEIVE"
)

// TradeLeg is one side of a trade version's cashflow exchange. Legs belong to
// exactly one trade version; an amendment creates fresh legs rather than
// re-pointing old ones.
type TradeLeg struct {
	gorm.Model
	TradeVersionID uint                `gorm:"index;not null" json:"trade_version_id"`
	Notional       decimal.Decimal     `gorm:"type:decimal(20,4);not null" json:"notional"`
	Rate           decimal.NullDecimal `gorm:"type:decimal(12,8)" json:"rate"`
	PayReceiveFlag string              `gorm:"not null" json:"pay_receive_flag"`
	LegType        string              `gorm:"not null" json:"leg_type"`
	IndexName      string              `json:"index_name,omitempty"`
	Schedule       string              `gorm:"not null" json:"schedule"`
	Cashflows      []Cashflow          `gorm:"foreignKey:LegID" json:"cashflows,omitempty"`
}
