package booking

import (
	"time"

	"github.com/shopspring/decimal"
)

// TradeRequest carries the caller's terms for a create or amend operation.
// It is treated as immutable once handed to the validator.
type TradeRequest struct {
	TradeID           *int64       `json:"trade_id,omitempty"`
	TradeDate         *time.Time   `json:"trade_date"`
	TradeStartDate    *time.Time   `json:"trade_start_date"`
	TradeMaturityDate *time.Time   `json:"trade_maturity_date"`
	BookID            uint         `json:"book_id,omitempty"`
	BookName          string       `json:"book_name,omitempty"`
	CounterpartyID    uint         `json:"counterparty_id,omitempty"`
	CounterpartyName  string       `json:"counterparty_name,omitempty"`
	TraderUserID      uint         `json:"trader_user_id"`
	Legs              []LegRequest `json:"legs"`
}

// LegRequest is one leg of a requested trade.
type LegRequest struct {
	Notional       decimal.Decimal  `json:"notional"`
	Rate           *decimal.Decimal `json:"rate,omitempty"`
	PayReceiveFlag string           `json:"pay_receive_flag"`
	LegType        string           `json:"leg_type"`
	IndexName      string           `json:"index_name,omitempty"`
	Schedule       string           `json:"schedule"`
}
