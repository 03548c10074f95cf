package booking

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"trade-booking-go/internal/models"
	"trade-booking-go/internal/refdata"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// Validator checks all business rules for a trade request. It reads the
// reference-data gateway and nothing else; every applicable rule is evaluated
// so the caller sees the full error set in one round trip.
type Validator struct {
	gateway         refdata.Gateway
	logger          *zap.Logger
	maxTradeAgeDays int
	now             func() time.Time
}

// NewValidator creates a Validator. maxTradeAgeDays bounds how far in the
// past a trade date may lie; the future is not bounded.
func NewValidator(gateway refdata.Gateway, logger *zap.Logger, maxTradeAgeDays int) *Validator {
	return &Validator{
		gateway:         gateway,
		logger:          logger,
		maxTradeAgeDays: maxTradeAgeDays,
		now:             time.Now,
	}
}

// Validate runs every business rule against the request and accumulates all
// violations. The error return is non-nil only for gateway failures, which
// are infrastructural and must not be reported as validation messages.
func (v *Validator) Validate(ctx context.Context, req *TradeRequest) (*ValidationResult, error) {
	result := NewValidationResult()

	v.validateDates(req, result)
	if err := v.validateEntityStatus(ctx, req, result); err != nil {
		return nil, err
	}
	v.validateLegConsistency(req.Legs, result)

	if result.HasErrors() {
		v.logger.Warn("Trade validation failed",
			zap.Int("error_count", len(result.Errors())),
			zap.String("errors", result.String()),
		)
	} else {
		v.logger.Debug("Trade validation passed")
	}

	return result, nil
}

func (v *Validator) validateDates(req *TradeRequest, result *ValidationResult) {
	tradeDate := req.TradeDate
	startDate := req.TradeStartDate
	maturityDate := req.TradeMaturityDate

	if tradeDate == nil {
		result.AddError("Trade date is required")
	}
	if startDate == nil {
		result.AddError("Start date is required")
	}
	if maturityDate == nil {
		result.AddError("Maturity date is required")
	}

	// Ordering rules apply only when all three dates are present.
	if tradeDate == nil || startDate == nil || maturityDate == nil {
		return
	}
	if maturityDate.Before(*startDate) {
		result.AddError("Maturity date cannot be before start date")
	}
	if startDate.Before(*tradeDate) {
		result.AddError("Start date cannot be before trade date")
	}
	// The cutoff is date-only: a trade dated exactly maxTradeAgeDays ago is
	// accepted at any time of day.
	now := v.now()
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
	cutoff := today.AddDate(0, 0, -v.maxTradeAgeDays)
	if tradeDate.Before(cutoff) {
		result.AddError(fmt.Sprintf("Trade date cannot be more than %d days in the past", v.maxTradeAgeDays))
	}
}

// validateEntityStatus checks that the referenced book, counterparty and
// trader all exist and are active. Lookups are independent; a missing entity
// and an inactive one produce the same message. Only an infrastructural
// gateway failure aborts validation.
func (v *Validator) validateEntityStatus(ctx context.Context, req *TradeRequest, result *ValidationResult) error {
	book, err := v.lookupBook(ctx, req)
	if err != nil && !errors.Is(err, refdata.ErrNotFound) {
		return &GatewayError{Op: "book lookup", Err: err}
	}
	if book == nil || !book.Active {
		result.AddError("Book does not exist or is inactive")
	}

	cp, err := v.lookupCounterparty(ctx, req)
	if err != nil && !errors.Is(err, refdata.ErrNotFound) {
		return &GatewayError{Op: "counterparty lookup", Err: err}
	}
	if cp == nil || !cp.Active {
		result.AddError("Counterparty does not exist or is inactive")
	}

	var trader *models.ApplicationUser
	if req.TraderUserID != 0 {
		trader, err = v.gateway.FindTrader(ctx, req.TraderUserID)
		if err != nil && !errors.Is(err, refdata.ErrNotFound) {
			return &GatewayError{Op: "trader lookup", Err: err}
		}
	}
	if trader == nil || !trader.Active {
		result.AddError("Trader user not found or inactive")
	}

	return nil
}

func (v *Validator) lookupBook(ctx context.Context, req *TradeRequest) (*models.Book, error) {
	if req.BookID != 0 {
		return v.gateway.FindBook(ctx, req.BookID)
	}
	if req.BookName != "" {
		return v.gateway.FindBookByName(ctx, req.BookName)
	}
	return nil, refdata.ErrNotFound
}

func (v *Validator) lookupCounterparty(ctx context.Context, req *TradeRequest) (*models.Counterparty, error) {
	if req.CounterpartyID != 0 {
		return v.gateway.FindCounterparty(ctx, req.CounterpartyID)
	}
	if req.CounterpartyName != "" {
		return v.gateway.FindCounterpartyByName(ctx, req.CounterpartyName)
	}
	return nil, refdata.ErrNotFound
}

// validateLegConsistency checks cross-leg and per-leg rules. Anything other
// than exactly two legs short-circuits the per-leg checks, since they are
// meaningless without a leg pair.
func (v *Validator) validateLegConsistency(legs []LegRequest, result *ValidationResult) {
	if len(legs) != 2 {
		result.AddError("Trade must contain exactly two legs")
		return
	}

	leg1 := legs[0]
	leg2 := legs[1]

	if leg1.PayReceiveFlag == "" || leg2.PayReceiveFlag == "" {
		result.AddError("Each leg must specify a pay/receive flag")
	} else if strings.EqualFold(leg1.PayReceiveFlag, leg2.PayReceiveFlag) {
		result.AddError("Trade legs must have opposite pay/receive flags")
	}

	v.validateLegType(leg1, result)
	v.validateLegType(leg2, result)
}

func (v *Validator) validateLegType(leg LegRequest, result *ValidationResult) {
	if leg.LegType == "" {
		result.AddError("Each leg must have a legType (e.g., Fixed or Floating)")
		return
	}

	switch strings.ToUpper(leg.LegType) {
	case models.LegFloating:
		if strings.TrimSpace(leg.IndexName) == "" {
			result.AddError("Floating leg must specify an index")
		}
	case models.LegFixed:
		if leg.Rate == nil || leg.Rate.Cmp(decimal.Zero) <= 0 {
			result.AddError("Fixed leg must have a valid positive rate")
		}
	default:
		result.AddError(fmt.Sprintf("Invalid legType: %s. Must be FIXED or FLOATING", strings.ToUpper(leg.LegType)))
	}

	if _, err := scheduleMonths(leg.Schedule); err != nil {
		result.AddError(fmt.Sprintf("Invalid schedule: %s. Must be 1M, 3M, 6M or 12M", leg.Schedule))
	}
}
