package models

import (
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Cashflow is one scheduled payment for a leg. Floating-leg cashflows carry a
// null amount until the fixing resolves the rate.
type Cashflow struct {
	gorm.Model
	LegID       uint                `gorm:"index;not null" json:"leg_id"`
	PeriodStart time.Time           `gorm:"type:date" json:"period_start"`
	PeriodEnd   time.Time           `gorm:"type:date" json:"period_end"`
	PaymentDate time.Time           `gorm:"type:date" json:"payment_date"`
	Amount      decimal.NullDecimal `gorm:"type:decimal(20,4)" json:"amount"`
}
