package main

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"trade-booking-go/internal/booking"
	"trade-booking-go/internal/refdata"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// APIHandler holds dependencies for the API endpoints.
type APIHandler struct {
	log        *zap.Logger
	manager    *booking.LifecycleManager
	privileges booking.PrivilegeValidator
	instanceID string
	startTime  time.Time
}

// NewAPIHandler creates a new APIHandler.
func NewAPIHandler(log *zap.Logger, manager *booking.LifecycleManager, privileges booking.PrivilegeValidator, instanceID string) *APIHandler {
	return &APIHandler{
		log:        log,
		manager:    manager,
		privileges: privileges,
		instanceID: instanceID,
		startTime:  time.Now(),
	}
}

const dateLayout = "2006-01-02"

// tradeRequestBody is the wire form of a create/amend request. Dates travel
// as ISO dates (YYYY-MM-DD).
type tradeRequestBody struct {
	TradeID           *int64           `json:"trade_id,omitempty"`
	TradeDate         string           `json:"trade_date"`
	TradeStartDate    string           `json:"trade_start_date"`
	TradeMaturityDate string           `json:"trade_maturity_date"`
	BookID            uint             `json:"book_id,omitempty"`
	BookName          string           `json:"book_name,omitempty"`
	CounterpartyID    uint             `json:"counterparty_id,omitempty"`
	CounterpartyName  string           `json:"counterparty_name,omitempty"`
	TraderUserID      uint             `json:"trader_user_id"`
	Legs              []legRequestBody `json:"legs"`
}

type legRequestBody struct {
	Notional       decimal.Decimal  `json:"notional"`
	Rate           *decimal.Decimal `json:"rate,omitempty"`
	PayReceiveFlag string           `json:"pay_receive_flag"`
	LegType        string           `json:"leg_type"`
	IndexName      string           `json:"index_name,omitempty"`
	Schedule       string           `json:"schedule"`
}

func (b *tradeRequestBody) toRequest() (*booking.TradeRequest, error) {
	tradeDate, err := parseDate(b.TradeDate)
	if err != nil {
		return nil, err
	}
	startDate, err := parseDate(b.TradeStartDate)
	if err != nil {
		return nil, err
	}
	maturityDate, err := parseDate(b.TradeMaturityDate)
	if err != nil {
		return nil, err
	}

	req := &booking.TradeRequest{
		TradeID:           b.TradeID,
		TradeDate:         tradeDate,
		TradeStartDate:    startDate,
		TradeMaturityDate: maturityDate,
		BookID:            b.BookID,
		BookName:          b.BookName,
		CounterpartyID:    b.CounterpartyID,
		CounterpartyName:  b.CounterpartyName,
		TraderUserID:      b.TraderUserID,
	}
	for _, leg := range b.Legs {
		req.Legs = append(req.Legs, booking.LegRequest{
			Notional:       leg.Notional,
			Rate:           leg.Rate,
			PayReceiveFlag: leg.PayReceiveFlag,
			LegType:        leg.LegType,
			IndexName:      leg.IndexName,
			Schedule:       leg.Schedule,
		})
	}
	return req, nil
}

// parseDate accepts an optional ISO date; empty means absent, which the
// validator reports as a missing-date rule violation.
func parseDate(s string) (*time.Time, error) {
	if s == "" {
		return nil, nil
	}
	t, err := time.Parse(dateLayout, s)
	if err != nil {
		return nil, err
	}
	return &t, nil
}

// CreateTradeHandler books a new trade.
func (h *APIHandler) CreateTradeHandler(w http.ResponseWriter, r *http.Request) {
	var body tradeRequestBody
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	req, err := body.toRequest()
	if err != nil {
		http.Error(w, "Invalid date format, expected YYYY-MM-DD", http.StatusBadRequest)
		return
	}
	if !h.privileges.Authorize(r.Header.Get("X-User-Id"), "CREATE", req) {
		http.Error(w, "Operation not permitted", http.StatusForbidden)
		return
	}

	trade, err := h.manager.Create(r.Context(), req)
	if err != nil {
		h.writeError(w, err)
		return
	}

	h.writeJSON(w, http.StatusCreated, trade)
}

// AmendTradeHandler books a new version of an existing trade.
func (h *APIHandler) AmendTradeHandler(w http.ResponseWriter, r *http.Request) {
	tradeID, ok := h.pathTradeID(w, r)
	if !ok {
		return
	}
	var body tradeRequestBody
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	req, err := body.toRequest()
	if err != nil {
		http.Error(w, "Invalid date format, expected YYYY-MM-DD", http.StatusBadRequest)
		return
	}
	if !h.privileges.Authorize(r.Header.Get("X-User-Id"), "AMEND", req) {
		http.Error(w, "Operation not permitted", http.StatusForbidden)
		return
	}

	trade, err := h.manager.Amend(r.Context(), tradeID, req)
	if err != nil {
		h.writeError(w, err)
		return
	}

	h.writeJSON(w, http.StatusOK, trade)
}

// GetTradeHandler returns the active version of a trade.
func (h *APIHandler) GetTradeHandler(w http.ResponseWriter, r *http.Request) {
	tradeID, ok := h.pathTradeID(w, r)
	if !ok {
		return
	}
	trade, err := h.manager.GetTrade(r.Context(), tradeID)
	if err != nil {
		h.writeError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, trade)
}

// TerminateTradeHandler terminates the active version in place.
func (h *APIHandler) TerminateTradeHandler(w http.ResponseWriter, r *http.Request) {
	tradeID, ok := h.pathTradeID(w, r)
	if !ok {
		return
	}
	trade, err := h.manager.Terminate(r.Context(), tradeID)
	if err != nil {
		h.writeError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, trade)
}

// CancelTradeHandler cancels the active version in place. Only NEW trades
// may be cancelled.
func (h *APIHandler) CancelTradeHandler(w http.ResponseWriter, r *http.Request) {
	tradeID, ok := h.pathTradeID(w, r)
	if !ok {
		return
	}
	trade, err := h.manager.Cancel(r.Context(), tradeID)
	if err != nil {
		h.writeError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, trade)
}

// DeleteTradeHandler soft-deletes the trade. Storage is never reclaimed.
func (h *APIHandler) DeleteTradeHandler(w http.ResponseWriter, r *http.Request) {
	tradeID, ok := h.pathTradeID(w, r)
	if !ok {
		return
	}
	trade, err := h.manager.Delete(r.Context(), tradeID)
	if err != nil {
		h.writeError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, trade)
}

// SearchTradesHandler runs the multi-criteria search. The date guards live
// here at the boundary; the engine itself tolerates an all-empty criteria.
func (h *APIHandler) SearchTradesHandler(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	criteria := booking.SearchCriteria{
		CounterpartyName: q.Get("counterpartyName"),
		BookName:         q.Get("bookName"),
		TradeStatus:      q.Get("tradeStatus"),
	}
	if s := q.Get("traderUserId"); s != "" {
		id, err := strconv.ParseUint(s, 10, 64)
		if err != nil {
			http.Error(w, "Invalid traderUserId", http.StatusBadRequest)
			return
		}
		uid := uint(id)
		criteria.TraderUserID = &uid
	}

	var err error
	if criteria.TradeDate, err = parseDate(q.Get("tradeDate")); err != nil {
		http.Error(w, "Invalid tradeDate, expected YYYY-MM-DD", http.StatusBadRequest)
		return
	}
	if criteria.TradeStartDate, err = parseDate(q.Get("tradeStartDate")); err != nil {
		http.Error(w, "Invalid tradeStartDate, expected YYYY-MM-DD", http.StatusBadRequest)
		return
	}
	if criteria.TradeMaturityDate, err = parseDate(q.Get("tradeMaturityDate")); err != nil {
		http.Error(w, "Invalid tradeMaturityDate, expected YYYY-MM-DD", http.StatusBadRequest)
		return
	}

	// Date input validations
	if criteria.TradeStartDate == nil && criteria.TradeMaturityDate == nil {
		http.Error(w, "Please provide at least one date (start or maturity) to filter trades", http.StatusBadRequest)
		return
	}
	if criteria.TradeStartDate != nil && criteria.TradeMaturityDate != nil &&
		criteria.TradeStartDate.After(*criteria.TradeMaturityDate) {
		http.Error(w, "Start date cannot be after maturity date", http.StatusBadRequest)
		return
	}
	if criteria.TradeStartDate != nil && criteria.TradeDate != nil &&
		criteria.TradeStartDate.Before(*criteria.TradeDate) {
		http.Error(w, "Start date cannot be before trade date", http.StatusBadRequest)
		return
	}
	if criteria.TradeMaturityDate != nil && criteria.TradeDate != nil &&
		criteria.TradeMaturityDate.Before(*criteria.TradeDate) {
		http.Error(w, "Maturity date cannot be before trade date", http.StatusBadRequest)
		return
	}

	trades, err := h.manager.Search(r.Context(), criteria)
	if err != nil {
		h.writeError(w, err)
		return
	}

	h.writeJSON(w, http.StatusOK, trades)
}

// StatusHandler reports service identity and uptime.
func (h *APIHandler) StatusHandler(w http.ResponseWriter, r *http.Request) {
	status := struct {
		UUID      string `json:"uuid"`
		Name      string `json:"name"`
		StartTime string `json:"start_time"`
		Uptime    string `json:"uptime"`
	}{
		UUID:      h.instanceID,
		Name:      "trade-booking",
		StartTime: h.startTime.Format(time.RFC3339),
		Uptime:    time.Since(h.startTime).String(),
	}
	h.writeJSON(w, http.StatusOK, status)
}

// HealthHandler is a liveness probe.
func (h *APIHandler) HealthHandler(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	w.Write([]byte("OK\n"))
}

func (h *APIHandler) pathTradeID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil {
		http.Error(w, "Invalid trade id", http.StatusBadRequest)
		return 0, false
	}
	return id, true
}

// errorResponse is the wire form of a failed operation. Validation failures
// carry the complete message list so one round trip surfaces every problem.
type errorResponse struct {
	Message string   `json:"message"`
	Errors  []string `json:"errors,omitempty"`
}

func (h *APIHandler) writeError(w http.ResponseWriter, err error) {
	var vErr *booking.ValidationError
	var gwErr *booking.GatewayError

	switch {
	case errors.As(err, &vErr):
		h.writeJSON(w, http.StatusBadRequest, errorResponse{
			Message: "Trade validation failed",
			Errors:  vErr.Errors,
		})
	case errors.Is(err, booking.ErrTradeNotFound), errors.Is(err, refdata.ErrNotFound):
		h.writeJSON(w, http.StatusNotFound, errorResponse{Message: err.Error()})
	case errors.Is(err, booking.ErrInactiveEntity):
		h.writeJSON(w, http.StatusConflict, errorResponse{Message: err.Error()})
	case errors.Is(err, booking.ErrInvalidState):
		h.writeJSON(w, http.StatusConflict, errorResponse{Message: err.Error()})
	case errors.Is(err, booking.ErrConflict):
		h.writeJSON(w, http.StatusConflict, errorResponse{Message: err.Error()})
	case errors.As(err, &gwErr):
		h.log.Error("Gateway failure", zap.Error(err))
		h.writeJSON(w, http.StatusBadGateway, errorResponse{Message: "Upstream gateway failure"})
	default:
		h.log.Error("Unexpected error", zap.Error(err))
		h.writeJSON(w, http.StatusInternalServerError, errorResponse{Message: "Unexpected error"})
	}
}

func (h *APIHandler) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		h.log.Error("Failed to write response", zap.Error(err))
	}
}
