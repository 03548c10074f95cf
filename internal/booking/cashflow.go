package booking

import (
	"fmt"
	"strings"
	"time"

	"trade-booking-go/internal/models"

	"github.com/shopspring/decimal"
)

var scheduleFrequencies = map[string]int{
	"1M":  1,
	"3M":  3,
	"6M":  6,
	"12M": 12,
	"1Y":  12,
}

// scheduleMonths resolves a schedule reference to its period length in months.
func scheduleMonths(schedule string) (int, error) {
	months, ok := scheduleFrequencies[strings.ToUpper(strings.TrimSpace(schedule))]
	if !ok {
		return 0, fmt.Errorf("unknown schedule %q", schedule)
	}
	return months, nil
}

// CashflowScheduler materializes the payment schedule for a leg. Generation
// is deterministic: the same leg, start and maturity always produce the same
// stream. Cashflows are regenerated in full on every create and amend;
// historical versions keep the streams they were booked with.
type CashflowScheduler struct{}

// Generate produces one cashflow per schedule period between start and
// maturity. Fixed legs carry notional x rate x 30/360 day-count fraction;
// floating legs carry a null amount until a future fixing resolves the rate,
// but every period still gets a row so the schedule is fully materialized.
func (CashflowScheduler) Generate(leg *models.TradeLeg, start, maturity time.Time) ([]models.Cashflow, error) {
	months, err := scheduleMonths(leg.Schedule)
	if err != nil {
		return nil, err
	}

	var flows []models.Cashflow
	periodStart := start
	for periodStart.Before(maturity) {
		periodEnd := periodStart.AddDate(0, months, 0)
		if periodEnd.After(maturity) {
			periodEnd = maturity // final stub period
		}

		flow := models.Cashflow{
			LegID:       leg.ID,
			PeriodStart: periodStart,
			PeriodEnd:   periodEnd,
			PaymentDate: periodEnd,
		}
		if leg.LegType == models.LegFixed && leg.Rate.Valid {
			flow.Amount = decimal.NullDecimal{
				Decimal: fixedAmount(leg.Notional, leg.Rate.Decimal, periodStart, periodEnd),
				Valid:   true,
			}
		}
		flows = append(flows, flow)

		periodStart = periodEnd
	}

	return flows, nil
}

// fixedAmount is notional x rate x fraction, with the fraction computed on a
// 30/360 day count so a full 12M period yields exactly notional x rate.
func fixedAmount(notional, rate decimal.Decimal, start, end time.Time) decimal.Decimal {
	fraction := decimal.NewFromInt(int64(days360(start, end))).
		Div(decimal.NewFromInt(360))
	return notional.Mul(rate).Mul(fraction).Round(4)
}

// days360 implements the US 30/360 day-count convention.
func days360(start, end time.Time) int {
	y1, m1, d1 := start.Date()
	y2, m2, d2 := end.Date()

	if d1 == 31 {
		d1 = 30
	}
	if d2 == 31 && d1 == 30 {
		d2 = 30
	}

	return (y2-y1)*360 + (int(m2)-int(m1))*30 + (d2 - d1)
}
