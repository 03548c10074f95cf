package booking

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"trade-booking-go/internal/config"
	"trade-booking-go/internal/models"
	"trade-booking-go/internal/refdata"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// LifecycleManager orchestrates the trade lifecycle: create, amend,
// terminate and cancel. It owns versioning and status transitions, runs the
// validator before any mutation, and is request-scoped: no state is retained
// between calls beyond what the database holds.
type LifecycleManager struct {
	db        *gorm.DB
	gateway   refdata.Gateway
	validator *Validator
	scheduler CashflowScheduler
	logger    *zap.Logger
	cfg       config.Booking
}

// testHookBeforeDeactivate runs inside the amend transaction just before the
// old version is deactivated. Tests use it to interleave a competing write.
var testHookBeforeDeactivate func(tx *gorm.DB)

// NewLifecycleManager creates a lifecycle manager and its validator.
func NewLifecycleManager(db *gorm.DB, gateway refdata.Gateway, logger *zap.Logger, cfg config.Booking) *LifecycleManager {
	return &LifecycleManager{
		db:        db,
		gateway:   gateway,
		validator: NewValidator(gateway, logger, cfg.MaxTradeAgeDays),
		logger:    logger,
		cfg:       cfg,
	}
}

// Create validates the request and books version 1 of a new trade. Nothing
// is written when validation fails; the returned ValidationError carries the
// complete message list. A request without a tradeId gets the next free one.
func (m *LifecycleManager) Create(ctx context.Context, req *TradeRequest) (*models.Trade, error) {
	result, err := m.validator.Validate(ctx, req)
	if err != nil {
		return nil, err
	}
	if result.HasErrors() {
		return nil, &ValidationError{Errors: result.Errors()}
	}

	book, cp, trader, err := m.resolveReferences(ctx, req)
	if err != nil {
		return nil, err
	}

	var trade *models.Trade
	err = m.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		tradeID, err := m.allocateTradeID(tx, req)
		if err != nil {
			return err
		}

		trade = &models.Trade{
			TradeID:           tradeID,
			Version:           1,
			Active:            true,
			Status:            models.StatusNew,
			TradeDate:         *req.TradeDate,
			TradeStartDate:    *req.TradeStartDate,
			TradeMaturityDate: *req.TradeMaturityDate,
			BookID:            book.ID,
			Book:              *book,
			CounterpartyID:    cp.ID,
			Counterparty:      *cp,
			TraderUserID:      trader.ID,
			TraderUser:        *trader,
			Legs:              buildLegs(req.Legs),
		}
		return m.persistVersion(tx, trade)
	})
	if err != nil {
		return nil, err
	}

	m.logger.Info("Trade created",
		zap.Int64("trade_id", trade.TradeID),
		zap.String("status", trade.Status),
	)
	return trade, nil
}

// Amend supersedes the current active version with a new one carrying the
// incoming terms. The old version is deactivated and kept, legs and
// cashflows included; the new version gets version+1, status AMENDED and a
// freshly generated cashflow stream. The deactivation is an optimistic
// compare-and-swap, so a racing amend loses with ErrConflict instead of
// leaving two active versions.
func (m *LifecycleManager) Amend(ctx context.Context, tradeID int64, req *TradeRequest) (*models.Trade, error) {
	current, err := m.findActive(ctx, tradeID)
	if err != nil {
		return nil, err
	}
	if current.Terminal() {
		return nil, fmt.Errorf("trade %d is %s: %w", tradeID, current.Status, ErrInvalidState)
	}

	result, err := m.validator.Validate(ctx, req)
	if err != nil {
		return nil, err
	}
	if result.HasErrors() {
		return nil, &ValidationError{Errors: result.Errors()}
	}

	book, cp, trader, err := m.resolveReferences(ctx, req)
	if err != nil {
		return nil, err
	}

	var amended *models.Trade
	err = m.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if testHookBeforeDeactivate != nil {
			testHookBeforeDeactivate(tx)
		}
		// Status is part of the compare-and-swap: a transition that committed
		// after the read above must not be overwritten by this amend.
		res := tx.Model(&models.Trade{}).
			Where("trade_id = ? AND version = ? AND active = ? AND status = ?",
				tradeID, current.Version, true, current.Status).
			Update("active", false)
		if res.Error != nil {
			return &GatewayError{Op: "deactivate trade version", Err: res.Error}
		}
		if res.RowsAffected == 0 {
			return fmt.Errorf("trade %d version %d: %w", tradeID, current.Version, ErrConflict)
		}

		amended = &models.Trade{
			TradeID:           tradeID,
			Version:           current.Version + 1,
			Active:            true,
			Status:            models.StatusAmended,
			TradeDate:         *req.TradeDate,
			TradeStartDate:    *req.TradeStartDate,
			TradeMaturityDate: *req.TradeMaturityDate,
			BookID:            book.ID,
			Book:              *book,
			CounterpartyID:    cp.ID,
			Counterparty:      *cp,
			TraderUserID:      trader.ID,
			TraderUser:        *trader,
			Legs:              buildLegs(req.Legs),
		}
		return m.persistVersion(tx, amended)
	})
	if err != nil {
		return nil, err
	}

	m.logger.Info("Trade amended",
		zap.Int64("trade_id", tradeID),
		zap.Int("version", amended.Version),
	)
	return amended, nil
}

// Terminate sets the active version's status to TERMINATED in place. The
// version number does not change. Terminating an already terminal trade
// fails with ErrInvalidState.
func (m *LifecycleManager) Terminate(ctx context.Context, tradeID int64) (*models.Trade, error) {
	return m.transition(ctx, tradeID, models.StatusTerminated, nil)
}

// Cancel sets the active version's status to CANCELLED in place. Only NEW
// trades may be cancelled; an amended trade must be terminated instead.
func (m *LifecycleManager) Cancel(ctx context.Context, tradeID int64) (*models.Trade, error) {
	return m.transition(ctx, tradeID, models.StatusCancelled, []string{models.StatusNew})
}

// Delete is a soft delete: a status transition to CANCELLED from any
// non-terminal status. No rows are ever physically removed.
func (m *LifecycleManager) Delete(ctx context.Context, tradeID int64) (*models.Trade, error) {
	return m.transition(ctx, tradeID, models.StatusCancelled, nil)
}

// GetTrade returns the active version of a trade with its legs, cashflows
// and reference entities loaded.
func (m *LifecycleManager) GetTrade(ctx context.Context, tradeID int64) (*models.Trade, error) {
	return m.findActive(ctx, tradeID)
}

// Search returns the active trade versions matching the criteria. No
// criteria matches everything; the HTTP boundary is responsible for
// rejecting an unfiltered date search before it reaches here.
func (m *LifecycleManager) Search(ctx context.Context, criteria SearchCriteria) ([]models.Trade, error) {
	var trades []models.Trade
	err := m.db.WithContext(ctx).
		Model(&models.Trade{}).
		Scopes(criteria.Scopes()...).
		Where("trades.active = ?", true).
		Preload("Book").
		Preload("Counterparty").
		Preload("TraderUser").
		Preload("Legs.Cashflows").
		Find(&trades).Error
	if err != nil {
		return nil, &GatewayError{Op: "trade search", Err: err}
	}
	return trades, nil
}

// transition flips the active version's status in place. allowedFrom limits
// the source statuses; nil allows any non-terminal status. The update is a
// compare-and-swap on the status read earlier, so racing transitions
// conflict instead of both succeeding.
func (m *LifecycleManager) transition(ctx context.Context, tradeID int64, target string, allowedFrom []string) (*models.Trade, error) {
	current, err := m.findActive(ctx, tradeID)
	if err != nil {
		return nil, err
	}
	if current.Terminal() {
		return nil, fmt.Errorf("trade %d is %s: %w", tradeID, current.Status, ErrInvalidState)
	}
	if allowedFrom != nil && !contains(allowedFrom, current.Status) {
		return nil, fmt.Errorf("trade %d is %s, %s requires one of %s: %w",
			tradeID, current.Status, target, strings.Join(allowedFrom, ", "), ErrInvalidState)
	}

	res := m.db.WithContext(ctx).Model(&models.Trade{}).
		Where("trade_id = ? AND version = ? AND active = ? AND status = ?",
			tradeID, current.Version, true, current.Status).
		Update("status", target)
	if res.Error != nil {
		return nil, &GatewayError{Op: "trade status update", Err: res.Error}
	}
	if res.RowsAffected == 0 {
		return nil, fmt.Errorf("trade %d version %d: %w", tradeID, current.Version, ErrConflict)
	}

	current.Status = target
	m.logger.Info("Trade status changed",
		zap.Int64("trade_id", tradeID),
		zap.String("status", target),
	)
	return current, nil
}

func (m *LifecycleManager) findActive(ctx context.Context, tradeID int64) (*models.Trade, error) {
	var trade models.Trade
	err := m.db.WithContext(ctx).
		Where("trade_id = ? AND active = ?", tradeID, true).
		Preload("Book").
		Preload("Counterparty").
		Preload("TraderUser").
		Preload("Legs.Cashflows").
		First(&trade).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("trade %d: %w", tradeID, ErrTradeNotFound)
	}
	if err != nil {
		return nil, &GatewayError{Op: "active trade lookup", Err: err}
	}
	return &trade, nil
}

// resolveReferences loads the book, counterparty and trader the new version
// will point at. Validation has already confirmed they exist and are active;
// a miss or a flipped active flag here means the entity changed underneath
// us, surfaced as a distinct kind rather than a validation message.
func (m *LifecycleManager) resolveReferences(ctx context.Context, req *TradeRequest) (*models.Book, *models.Counterparty, *models.ApplicationUser, error) {
	book, err := m.validator.lookupBook(ctx, req)
	if errors.Is(err, refdata.ErrNotFound) {
		return nil, nil, nil, fmt.Errorf("book: %w", refdata.ErrNotFound)
	}
	if err != nil {
		return nil, nil, nil, &GatewayError{Op: "book lookup", Err: err}
	}
	if !book.Active {
		return nil, nil, nil, fmt.Errorf("book %s: %w", book.BookName, ErrInactiveEntity)
	}

	cp, err := m.validator.lookupCounterparty(ctx, req)
	if errors.Is(err, refdata.ErrNotFound) {
		return nil, nil, nil, fmt.Errorf("counterparty: %w", refdata.ErrNotFound)
	}
	if err != nil {
		return nil, nil, nil, &GatewayError{Op: "counterparty lookup", Err: err}
	}
	if !cp.Active {
		return nil, nil, nil, fmt.Errorf("counterparty %s: %w", cp.Name, ErrInactiveEntity)
	}

	trader, err := m.gateway.FindTrader(ctx, req.TraderUserID)
	if errors.Is(err, refdata.ErrNotFound) {
		return nil, nil, nil, fmt.Errorf("trader: %w", refdata.ErrNotFound)
	}
	if err != nil {
		return nil, nil, nil, &GatewayError{Op: "trader lookup", Err: err}
	}
	if !trader.Active {
		return nil, nil, nil, fmt.Errorf("trader %s: %w", trader.LoginID, ErrInactiveEntity)
	}

	return book, cp, trader, nil
}

// persistVersion saves a trade version with its legs, then generates and
// saves the cashflow stream for each leg. Leg rows must exist first so the
// cashflows can point at them.
func (m *LifecycleManager) persistVersion(tx *gorm.DB, trade *models.Trade) error {
	// Reference entities are owned by the gateway, not by this write.
	if err := tx.Omit("Book", "Counterparty", "TraderUser").Create(trade).Error; err != nil {
		return &GatewayError{Op: "save trade version", Err: err}
	}

	for i := range trade.Legs {
		leg := &trade.Legs[i]
		flows, err := m.scheduler.Generate(leg, trade.TradeStartDate, trade.TradeMaturityDate)
		if err != nil {
			return fmt.Errorf("cashflow generation for leg %d: %w", leg.ID, err)
		}
		if len(flows) == 0 {
			continue
		}
		if err := tx.Create(&flows).Error; err != nil {
			return &GatewayError{Op: "save cashflows", Err: err}
		}
		leg.Cashflows = flows
	}

	return nil
}

// allocateTradeID returns the request's tradeId, if present and unused, or
// the next id after the current maximum.
func (m *LifecycleManager) allocateTradeID(tx *gorm.DB, req *TradeRequest) (int64, error) {
	if req.TradeID != nil {
		var count int64
		if err := tx.Model(&models.Trade{}).Where("trade_id = ?", *req.TradeID).Count(&count).Error; err != nil {
			return 0, &GatewayError{Op: "trade id check", Err: err}
		}
		if count > 0 {
			return 0, fmt.Errorf("trade %d already exists: %w", *req.TradeID, ErrConflict)
		}
		return *req.TradeID, nil
	}

	var max sql.NullInt64
	if err := tx.Model(&models.Trade{}).Select("MAX(trade_id)").Scan(&max).Error; err != nil {
		return 0, &GatewayError{Op: "trade id allocation", Err: err}
	}
	if !max.Valid || max.Int64 < m.cfg.StartingTradeID {
		return m.cfg.StartingTradeID, nil
	}
	return max.Int64 + 1, nil
}

func buildLegs(reqs []LegRequest) []models.TradeLeg {
	legs := make([]models.TradeLeg, 0, len(reqs))
	for _, lr := range reqs {
		leg := models.TradeLeg{
			Notional:       lr.Notional,
			PayReceiveFlag: strings.ToUpper(lr.PayReceiveFlag),
			LegType:        strings.ToUpper(lr.LegType),
			IndexName:      lr.IndexName,
			Schedule:       strings.ToUpper(strings.TrimSpace(lr.Schedule)),
		}
		if lr.Rate != nil {
			leg.Rate = decimal.NullDecimal{Decimal: *lr.Rate, Valid: true}
		}
		legs = append(legs, leg)
	}
	return legs
}

func contains(list []string, v string) bool {
	for _, s := range list {
		if s == v {
			return true
		}
	}
	return false
}
