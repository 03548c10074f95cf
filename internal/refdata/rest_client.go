package refdata

import (
	"context"
	"fmt"
	"math"
	"net/http"
	"strconv"
	"time"

	"trade-booking-go/internal/config"
	"trade-booking-go/internal/models"

	"github.com/go-resty/resty/v2"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

// RestClient is a Gateway backed by a remote reference-data API. It is used
// when the desk's books, counterparties and users are mastered in a separate
// reference-data service.
type RestClient struct {
	client  *resty.Client
	logger  *zap.Logger
	limiter *rate.Limiter
}

var _ Gateway = (*RestClient)(nil)

// NewRestClient creates a reference-data API client.
func NewRestClient(cfg *config.RefData, logger *zap.Logger) *RestClient {
	client := resty.New().SetBaseURL(cfg.BaseURL)

	// rate.Limit is requests per second.
	limiter := rate.NewLimiter(rate.Limit(cfg.RateLimit), cfg.RateLimitBurst)

	return &RestClient{
		client:  client,
		logger:  logger,
		limiter: limiter,
	}
}

// bookDTO mirrors the reference-data API's book representation.
type bookDTO struct {
	ID       uint   `json:"id"`
	BookName string `json:"book_name"`
	Active   bool   `json:"active"`
}

type counterpartyDTO struct {
	ID     uint   `json:"id"`
	Name   string `json:"name"`
	Active bool   `json:"active"`
}

type userDTO struct {
	ID       uint   `json:"id"`
	LoginID  string `json:"login_id"`
	FullName string `json:"full_name"`
	Active   bool   `json:"active"`
}

func (c *RestClient) FindBook(ctx context.Context, id uint) (*models.Book, error) {
	var dto bookDTO
	req := c.client.R().SetResult(&dto)

	resp, err := c.doRequest(ctx, "GET", fmt.Sprintf("/books/%d", id), req)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode() == http.StatusNotFound {
		return nil, ErrNotFound
	}

	book := models.Book{BookName: dto.BookName, Active: dto.Active}
	book.ID = dto.ID
	return &book, nil
}

func (c *RestClient) FindCounterparty(ctx context.Context, id uint) (*models.Counterparty, error) {
	var dto counterpartyDTO
	req := c.client.R().SetResult(&dto)

	resp, err := c.doRequest(ctx, "GET", fmt.Sprintf("/counterparties/%d", id), req)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode() == http.StatusNotFound {
		return nil, ErrNotFound
	}

	cp := models.Counterparty{Name: dto.Name, Active: dto.Active}
	cp.ID = dto.ID
	return &cp, nil
}

func (c *RestClient) FindTrader(ctx context.Context, id uint) (*models.ApplicationUser, error) {
	var dto userDTO
	req := c.client.R().SetResult(&dto)

	resp, err := c.doRequest(ctx, "GET", fmt.Sprintf("/users/%d", id), req)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode() == http.StatusNotFound {
		return nil, ErrNotFound
	}

	user := models.ApplicationUser{LoginID: dto.LoginID, FullName: dto.FullName, Active: dto.Active}
	user.ID = dto.ID
	return &user, nil
}

func (c *RestClient) FindBookByName(ctx context.Context, name string) (*models.Book, error) {
	var dto bookDTO
	req := c.client.R().SetResult(&dto).SetQueryParam("name", name)

	resp, err := c.doRequest(ctx, "GET", "/books", req)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode() == http.StatusNotFound {
		return nil, ErrNotFound
	}

	book := models.Book{BookName: dto.BookName, Active: dto.Active}
	book.ID = dto.ID
	return &book, nil
}

func (c *RestClient) FindCounterpartyByName(ctx context.Context, name string) (*models.Counterparty, error) {
	var dto counterpartyDTO
	req := c.client.R().SetResult(&dto).SetQueryParam("name", name)

	resp, err := c.doRequest(ctx, "GET", "/counterparties", req)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode() == http.StatusNotFound {
		return nil, ErrNotFound
	}

	cp := models.Counterparty{Name: dto.Name, Active: dto.Active}
	cp.ID = dto.ID
	return &cp, nil
}

// doRequest handles the actual request execution with rate limiting and retry
// logic. A 404 is returned to the caller for translation to ErrNotFound; all
// other failures are infrastructural.
func (c *RestClient) doRequest(ctx context.Context, method, url string, req *resty.Request) (*resty.Response, error) {
	var resp *resty.Response
	var err error
	const maxRetries = 3

	for i := 0; i < maxRetries; i++ {
		// Wait for the rate limiter
		if err := c.limiter.Wait(ctx); err != nil {
			return nil, fmt.Errorf("rate limiter wait failed: %w", err)
		}

		c.logger.Debug("Executing request", zap.String("method", method), zap.String("url", c.client.BaseURL+url))
		resp, err = req.SetContext(ctx).Execute(method, url)

		if err == nil && (!resp.IsError() || resp.StatusCode() == http.StatusNotFound) {
			return resp, nil // Success, or a definitive miss
		}

		// Analyze error and decide whether to retry
		shouldRetry := false
		var retryAfter time.Duration

		if resp != nil && err == nil {
			statusCode := resp.StatusCode()
			if statusCode == http.StatusTooManyRequests {
				shouldRetry = true
				retryAfterHeader := resp.Header().Get("Retry-After")
				if seconds, err := strconv.Atoi(retryAfterHeader); err == nil {
					retryAfter = time.Duration(seconds) * time.Second
				}
			} else if statusCode >= 500 { // Server errors
				shouldRetry = true
			}
		} else { // Network or other client-side errors
			shouldRetry = true
		}

		if !shouldRetry {
			return nil, fmt.Errorf("reference-data request failed with status %s: %s", resp.Status(), resp.String())
		}

		// If we should retry, calculate wait time
		if retryAfter == 0 {
			// Exponential backoff: 1s, 2s, 4s
			retryAfter = time.Duration(math.Pow(2, float64(i))) * time.Second
		}

		c.logger.Warn("Reference-data request failed, retrying...",
			zap.Int("attempt", i+1),
			zap.Duration("retry_after", retryAfter),
			zap.Error(err),
		)

		select {
		case <-time.After(retryAfter):
			continue
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}

	return nil, fmt.Errorf("reference-data request failed after %d attempts: %w", maxRetries, err)
}
