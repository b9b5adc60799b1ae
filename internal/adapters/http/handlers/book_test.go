package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/jsamuelsen/library-service/internal/adapters/storage/memory"
	"github.com/jsamuelsen/library-service/internal/app"
	"github.com/jsamuelsen/library-service/internal/domain"
	"github.com/jsamuelsen/library-service/internal/mocks"
	"github.com/jsamuelsen/library-service/internal/ports"
)

// june15 is 2025-06-15 in UTC.
var june15 = time.Date(2025, time.June, 15, 12, 0, 0, 0, time.UTC)

// envelope mirrors dto.Envelope with a raw payload for assertions.
type envelope struct {
	Status  string          `json:"status"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

func newBookRouter(repo ports.BookRepository, guards ...gin.HandlerFunc) *gin.Engine {
	svc := app.NewBookService(app.BookServiceConfig{
		Repository: repo,
		Clock:      ports.FixedClock(june15),
	})

	router := gin.New()
	NewBookHandler(svc).RegisterBookRoutes(router.Group("/api"), guards...)

	return router
}

func do(t *testing.T, router http.Handler, method, path, body string) (*httptest.ResponseRecorder, envelope) {
	t.Helper()

	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, path, nil)
	} else {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	}

	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	var env envelope
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &env), w.Body.String())

	return w, env
}

func TestBookHandler_CreateBook(t *testing.T) {
	tests := []struct {
		name            string
		body            string
		expectedStatus  int
		expectedMessage string
		expectedData    string
	}{
		{
			name:            "gregorian date is stored as is",
			body:            `{"title":"Book 1","author":"Author1","publishedDate":"2023-01-01"}`,
			expectedStatus:  http.StatusOK,
			expectedMessage: "Book saved successfully",
			expectedData:    `{"id":1,"title":"Book 1","author":"Author1","publishedDate":"2023-01-01"}`,
		},
		{
			name:            "buddhist date is normalized",
			body:            `{"title":"Thai Book","author":"Author","publishedDate":"2568-01-01"}`,
			expectedStatus:  http.StatusOK,
			expectedMessage: "Book saved successfully",
			expectedData:    `{"id":1,"title":"Thai Book","author":"Author","publishedDate":"2025-01-01"}`,
		},
		{
			name:            "future date is rejected",
			body:            `{"title":"Future","author":"Author","publishedDate":"3000-01-01"}`,
			expectedStatus:  http.StatusBadRequest,
			expectedMessage: "Invalid date should be before or equal current date.",
			expectedData:    `null`,
		},
		{
			name:            "empty title and author",
			body:            `{"title":"","author":"","publishedDate":"2023-01-01"}`,
			expectedStatus:  http.StatusBadRequest,
			expectedMessage: "Validation failed",
			expectedData:    `{"title":"Title is required","author":"Author is required"}`,
		},
		{
			name:            "malformed date pattern",
			body:            `{"title":"T","author":"A","publishedDate":"01/01/2023"}`,
			expectedStatus:  http.StatusBadRequest,
			expectedMessage: "Validation failed",
			expectedData:    `{"publishedDate":"Published Date must follow yyyy-MM-dd format"}`,
		},
		{
			name:            "impossible date",
			body:            `{"title":"T","author":"A","publishedDate":"2023-13-45"}`,
			expectedStatus:  http.StatusBadRequest,
			expectedMessage: "Validation failed",
			expectedData:    `{"publishedDate":"Published Date must be a valid date"}`,
		},
		{
			name:            "missing published date",
			body:            `{"title":"T","author":"A"}`,
			expectedStatus:  http.StatusBadRequest,
			expectedMessage: "Validation failed",
			expectedData:    `{"publishedDate":"Published Date is required"}`,
		},
		{
			name:            "body is not json",
			body:            `not json`,
			expectedStatus:  http.StatusBadRequest,
			expectedMessage: "Malformed request body",
			expectedData:    `null`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := memory.NewBookStore()

			w, env := do(t, newBookRouter(store), http.MethodPost, "/api/books", tt.body)

			assert.Equal(t, tt.expectedStatus, w.Code)
			assert.Equal(t, tt.expectedMessage, env.Message)
			assert.JSONEq(t, tt.expectedData, string(env.Data))

			if tt.expectedStatus == http.StatusOK {
				assert.Equal(t, "success", env.Status)
				assert.Equal(t, 1, store.Len())
			} else {
				assert.Equal(t, "error", env.Status)
				assert.Zero(t, store.Len())
			}
		})
	}
}

func TestBookHandler_CreateBook_StoreFailure(t *testing.T) {
	repo := mocks.NewMockBookRepository(t)
	repo.On("Insert", mock.Anything, mock.AnythingOfType("*domain.Book")).
		Return(nil, errors.New("disk full")).Once()

	w, env := do(t, newBookRouter(repo), http.MethodPost, "/api/books",
		`{"title":"T","author":"A","publishedDate":"2023-01-01"}`)

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Equal(t, "An internal error occurred", env.Message)
	assert.NotContains(t, w.Body.String(), "disk full")
}

func TestBookHandler_CreateBook_StoreUnavailable(t *testing.T) {
	repo := mocks.NewMockBookRepository(t)
	repo.On("Insert", mock.Anything, mock.Anything).
		Return(nil, domain.NewUnavailableError("postgres", "connection refused")).Once()

	w, env := do(t, newBookRouter(repo), http.MethodPost, "/api/books",
		`{"title":"T","author":"A","publishedDate":"2023-01-01"}`)

	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
	assert.Equal(t, "Service temporarily unavailable", env.Message)
}

func TestBookHandler_CreateBook_WriteGuards(t *testing.T) {
	deny := func(c *gin.Context) {
		c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"status": "error", "message": "denied", "data": nil})
	}
	store := memory.NewBookStore()
	router := newBookRouter(store, deny)

	w, _ := do(t, router, http.MethodPost, "/api/books",
		`{"title":"T","author":"A","publishedDate":"2023-01-01"}`)
	assert.Equal(t, http.StatusForbidden, w.Code)
	assert.Zero(t, store.Len())

	w, _ = do(t, router, http.MethodGet, "/api/books?author=A", "")
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestBookHandler_ListBooks(t *testing.T) {
	store := memory.NewBookStore()
	router := newBookRouter(store)

	for _, body := range []string{
		`{"title":"Book 1","author":"Author1","publishedDate":"2023-01-01"}`,
		`{"title":"Book 2","author":"Author1","publishedDate":"2022-05-05"}`,
		`{"title":"Other","author":"Author2","publishedDate":"2021-01-01"}`,
	} {
		w, _ := do(t, router, http.MethodPost, "/api/books", body)
		require.Equal(t, http.StatusOK, w.Code)
	}

	tests := []struct {
		name            string
		path            string
		expectedStatus  int
		expectedMessage string
		expectedData    string
	}{
		{
			name:            "author with books",
			path:            "/api/books?author=Author1",
			expectedStatus:  http.StatusOK,
			expectedMessage: "Books found",
			expectedData: `[
				{"id":1,"title":"Book 1","author":"Author1","publishedDate":"2023-01-01"},
				{"id":2,"title":"Book 2","author":"Author1","publishedDate":"2022-05-05"}
			]`,
		},
		{
			name:            "unknown author",
			path:            "/api/books?author=Unknown",
			expectedStatus:  http.StatusNotFound,
			expectedMessage: "No books found for this author",
			expectedData:    `null`,
		},
		{
			name:            "empty author",
			path:            "/api/books?author=",
			expectedStatus:  http.StatusNotFound,
			expectedMessage: "No books found for this author",
			expectedData:    `null`,
		},
		{
			name:            "missing author",
			path:            "/api/books",
			expectedStatus:  http.StatusNotFound,
			expectedMessage: "No books found for this author",
			expectedData:    `null`,
		},
		{
			name:            "author match is exact",
			path:            "/api/books?author=author1",
			expectedStatus:  http.StatusNotFound,
			expectedMessage: "No books found for this author",
			expectedData:    `null`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w, env := do(t, router, http.MethodGet, tt.path, "")

			assert.Equal(t, tt.expectedStatus, w.Code)
			assert.Equal(t, tt.expectedMessage, env.Message)
			assert.JSONEq(t, tt.expectedData, string(env.Data))
		})
	}
}

func TestBookHandler_ListBooks_StoreFailure(t *testing.T) {
	repo := mocks.NewMockBookRepository(t)
	repo.On("FindByAuthor", mock.Anything, "Author1").
		Return(nil, errors.New("boom")).Once()

	w, env := do(t, newBookRouter(repo), http.MethodGet, "/api/books?author=Author1", "")

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Equal(t, "error", env.Status)
	assert.Equal(t, "An internal error occurred", env.Message)
}
