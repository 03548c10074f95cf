package booking

import (
	"testing"
	"time"

	"trade-booking-go/internal/models"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func fixedLeg(notional, rate string, schedule string) *models.TradeLeg {
	return &models.TradeLeg{
		Notional:       decimal.RequireFromString(notional),
		Rate:           decimal.NullDecimal{Decimal: decimal.RequireFromString(rate), Valid: true},
		PayReceiveFlag: models.FlagPay,
		LegType:        models.LegFixed,
		Schedule:       schedule,
	}
}

func TestGenerate_QuarterlyFixedLeg(t *testing.T) {
	// Arrange
	scheduler := CashflowScheduler{}
	leg := fixedLeg("1000000", "0.05", "3M")
	start := time.Date(2025, 1, 17, 0, 0, 0, 0, time.UTC)
	maturity := time.Date(2026, 1, 17, 0, 0, 0, 0, time.UTC)

	// Act
	flows, err := scheduler.Generate(leg, start, maturity)

	// Assert
	assert.NoError(t, err)
	assert.Len(t, flows, 4)

	// Each full quarter is 90/360, so 1,000,000 x 0.05 x 0.25 = 12,500.
	for _, flow := range flows {
		assert.True(t, flow.Amount.Valid)
		assert.True(t, flow.Amount.Decimal.Equal(decimal.RequireFromString("12500")),
			"expected 12500, got %s", flow.Amount.Decimal)
	}

	// Periods are contiguous from start to maturity.
	assert.Equal(t, start, flows[0].PeriodStart)
	assert.Equal(t, maturity, flows[3].PeriodEnd)
	for i := 1; i < len(flows); i++ {
		assert.Equal(t, flows[i-1].PeriodEnd, flows[i].PeriodStart)
	}
}

func TestGenerate_AnnualFixedLeg_FullNotionalTimesRate(t *testing.T) {
	// Arrange
	scheduler := CashflowScheduler{}
	leg := fixedLeg("1000000", "0.05", "12M")
	start := time.Date(2025, 1, 17, 0, 0, 0, 0, time.UTC)
	maturity := time.Date(2026, 1, 17, 0, 0, 0, 0, time.UTC)

	// Act
	flows, err := scheduler.Generate(leg, start, maturity)

	// Assert
	assert.NoError(t, err)
	assert.Len(t, flows, 1)
	assert.True(t, flows[0].Amount.Decimal.Equal(decimal.RequireFromString("50000")))
}

func TestGenerate_MonthlySchedule(t *testing.T) {
	// Arrange
	scheduler := CashflowScheduler{}
	leg := fixedLeg("1200000", "0.03", "1M")
	start := time.Date(2025, 2, 1, 0, 0, 0, 0, time.UTC)
	maturity := time.Date(2026, 2, 1, 0, 0, 0, 0, time.UTC)

	// Act
	flows, err := scheduler.Generate(leg, start, maturity)

	// Assert
	assert.NoError(t, err)
	assert.Len(t, flows, 12)
	// One month is 30/360: 1,200,000 x 0.03 / 12 = 3,000.
	assert.True(t, flows[0].Amount.Decimal.Equal(decimal.RequireFromString("3000")))
}

func TestGenerate_FloatingLeg_PlaceholderRows(t *testing.T) {
	// Arrange
	scheduler := CashflowScheduler{}
	leg := &models.TradeLeg{
		Notional:       decimal.NewFromInt(1000000),
		PayReceiveFlag: models.FlagReceive,
		LegType:        models.LegFloating,
		IndexName:      "SOFR",
		Schedule:       "6M",
	}
	start := time.Date(2025, 1, 17, 0, 0, 0, 0, time.UTC)
	maturity := time.Date(2026, 1, 17, 0, 0, 0, 0, time.UTC)

	// Act
	flows, err := scheduler.Generate(leg, start, maturity)

	// Assert
	assert.NoError(t, err)
	assert.Len(t, flows, 2)
	for _, flow := range flows {
		// Rate unresolved until fixing; the period is still materialized.
		assert.False(t, flow.Amount.Valid)
		assert.False(t, flow.PaymentDate.IsZero())
	}
}

func TestGenerate_FinalStubPeriodClampedAtMaturity(t *testing.T) {
	// Arrange
	scheduler := CashflowScheduler{}
	leg := fixedLeg("1000000", "0.05", "6M")
	start := time.Date(2025, 1, 17, 0, 0, 0, 0, time.UTC)
	maturity := time.Date(2025, 10, 17, 0, 0, 0, 0, time.UTC) // 9 months

	// Act
	flows, err := scheduler.Generate(leg, start, maturity)

	// Assert
	assert.NoError(t, err)
	assert.Len(t, flows, 2)
	assert.Equal(t, maturity, flows[1].PeriodEnd)
	// Full half-year: 180/360. Stub quarter: 90/360.
	assert.True(t, flows[0].Amount.Decimal.Equal(decimal.RequireFromString("25000")))
	assert.True(t, flows[1].Amount.Decimal.Equal(decimal.RequireFromString("12500")))
}

func TestGenerate_UnknownSchedule(t *testing.T) {
	// Arrange
	scheduler := CashflowScheduler{}
	leg := fixedLeg("1000000", "0.05", "2W")

	// Act
	flows, err := scheduler.Generate(leg,
		time.Date(2025, 1, 17, 0, 0, 0, 0, time.UTC),
		time.Date(2026, 1, 17, 0, 0, 0, 0, time.UTC))

	// Assert
	assert.Error(t, err)
	assert.Nil(t, flows)
}

func TestGenerate_Deterministic(t *testing.T) {
	// Arrange
	scheduler := CashflowScheduler{}
	leg := fixedLeg("750000", "0.0425", "3M")
	start := time.Date(2025, 3, 3, 0, 0, 0, 0, time.UTC)
	maturity := time.Date(2027, 3, 3, 0, 0, 0, 0, time.UTC)

	// Act
	first, err1 := scheduler.Generate(leg, start, maturity)
	second, err2 := scheduler.Generate(leg, start, maturity)

	// Assert
	assert.NoError(t, err1)
	assert.NoError(t, err2)
	assert.Equal(t, first, second)
}
