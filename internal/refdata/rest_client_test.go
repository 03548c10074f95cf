package refdata

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-resty/resty/v2"
	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

// setupTestServer creates a new test server and a RestClient configured to use it.
func setupTestServer(handler http.Handler) (*RestClient, *httptest.Server) {
	server := httptest.NewServer(handler)

	rc := &RestClient{
		client:  resty.New().SetBaseURL(server.URL),
		logger:  zap.NewNop(),
		limiter: rate.NewLimiter(rate.Inf, 1), // Allow all requests in tests
	}

	return rc, server
}

func TestRestClient_FindBook(t *testing.T) {
	t.Run("Success", func(t *testing.T) {
		// Arrange
		handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, "/books/7", r.URL.Path)
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusOK)
			_, _ = w.Write([]byte(`{"id": 7, "book_name": "Book-7", "active": true}`))
		})

		rc, server := setupTestServer(handler)
		defer server.Close()

		// Act
		book, err := rc.FindBook(context.Background(), 7)

		// Assert
		assert.NoError(t, err)
		assert.Equal(t, uint(7), book.ID)
		assert.Equal(t, "Book-7", book.BookName)
		assert.True(t, book.Active)
	})

	t.Run("NotFound", func(t *testing.T) {
		// Arrange
		handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusNotFound)
		})

		rc, server := setupTestServer(handler)
		defer server.Close()

		// Act
		book, err := rc.FindBook(context.Background(), 99)

		// Assert
		assert.ErrorIs(t, err, ErrNotFound)
		assert.Nil(t, book)
	})
}

func TestRestClient_FindCounterpartyByName(t *testing.T) {
	// Arrange
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/counterparties", r.URL.Path)
		assert.Equal(t, "Globex Capital", r.URL.Query().Get("name"))
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"id": 2, "name": "Globex Capital", "active": false}`))
	})

	rc, server := setupTestServer(handler)
	defer server.Close()

	// Act
	cp, err := rc.FindCounterpartyByName(context.Background(), "Globex Capital")

	// Assert
	assert.NoError(t, err)
	assert.Equal(t, uint(2), cp.ID)
	assert.False(t, cp.Active)
}

func TestRestClient_FindTrader_BadRequestIsNotRetried(t *testing.T) {
	// Arrange
	calls := 0
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		w.WriteHeader(http.StatusBadRequest)
	})

	rc, server := setupTestServer(handler)
	defer server.Close()

	// Act
	user, err := rc.FindTrader(context.Background(), 1)

	// Assert
	assert.Error(t, err)
	assert.NotErrorIs(t, err, ErrNotFound)
	assert.Nil(t, user)
	assert.Equal(t, 1, calls)
}
