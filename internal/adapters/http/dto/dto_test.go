package dto

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"cloud.google.com/go/civil"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jsamuelsen/library-service/internal/domain"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func TestEnvelope_JSON(t *testing.T) {
	d := civil.Date{Year: 2025, Month: time.January, Day: 1}

	tests := []struct {
		name     string
		envelope Envelope
		expected string
	}{
		{
			name:     "nil payload is null",
			envelope: Failure(MsgNoBooksForAuthor, nil),
			expected: `{"status":"error","message":"No books found for this author","data":null}`,
		},
		{
			name:     "single book",
			envelope: Success(MsgBookSaved, NewBookResponse(&domain.Book{ID: 1, Title: "Title1", Author: "Author1", PublishedDate: &d})),
			expected: `{"status":"success","message":"Book saved successfully","data":{"id":1,"title":"Title1","author":"Author1","publishedDate":"2025-01-01"}}`,
		},
		{
			name:     "book without date",
			envelope: Success(MsgBookSaved, NewBookResponse(&domain.Book{ID: 2, Title: "T", Author: "A"})),
			expected: `{"status":"success","message":"Book saved successfully","data":{"id":2,"title":"T","author":"A","publishedDate":null}}`,
		},
		{
			name:     "book list",
			envelope: Success(MsgBooksFound, NewBookListPayload([]domain.Book{{ID: 1, Title: "T1", Author: "A", PublishedDate: &d}})),
			expected: `{"status":"success","message":"Books found","data":[{"id":1,"title":"T1","author":"A","publishedDate":"2025-01-01"}]}`,
		},
		{
			name:     "field errors",
			envelope: Failure(MsgValidationFailed, FieldErrorsPayload{"title": "Title is required"}),
			expected: `{"status":"error","message":"Validation failed","data":{"title":"Title is required"}}`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := json.Marshal(tt.envelope)
			require.NoError(t, err)
			assert.JSONEq(t, tt.expected, string(got))
		})
	}
}

func TestNewBookResponse_CopiesDate(t *testing.T) {
	d := civil.Date{Year: 2025, Month: time.January, Day: 1}
	b := &domain.Book{ID: 1, PublishedDate: &d}

	resp := NewBookResponse(b)
	resp.PublishedDate.Year = 1999

	assert.Equal(t, 2025, b.PublishedDate.Year)
}

func TestNewBookListPayload_Empty(t *testing.T) {
	got, err := json.Marshal(NewBookListPayload(nil))
	require.NoError(t, err)
	assert.Equal(t, "[]", string(got))
}

func TestCreateBookRequest_Validation(t *testing.T) {
	tests := []struct {
		name     string
		req      CreateBookRequest
		expected map[string]string
	}{
		{
			name:     "valid",
			req:      CreateBookRequest{Title: "Title1", Author: "Author1", PublishedDate: "2023-01-01"},
			expected: map[string]string{},
		},
		{
			name: "empty title and author",
			req:  CreateBookRequest{PublishedDate: "2023-01-01"},
			expected: map[string]string{
				"title":  "Title is required",
				"author": "Author is required",
			},
		},
		{
			name:     "missing date",
			req:      CreateBookRequest{Title: "Title1", Author: "Author1"},
			expected: map[string]string{"publishedDate": "Published Date is required"},
		},
		{
			name:     "wrong pattern",
			req:      CreateBookRequest{Title: "Title1", Author: "Author1", PublishedDate: "01/01/2023"},
			expected: map[string]string{"publishedDate": "Published Date must follow yyyy-MM-dd format"},
		},
		{
			name:     "short year",
			req:      CreateBookRequest{Title: "Title1", Author: "Author1", PublishedDate: "23-01-01"},
			expected: map[string]string{"publishedDate": "Published Date must follow yyyy-MM-dd format"},
		},
		{
			name:     "pattern ok but not a date",
			req:      CreateBookRequest{Title: "Title1", Author: "Author1", PublishedDate: "2023-13-45"},
			expected: map[string]string{"publishedDate": "Published Date must be a valid date"},
		},
		{
			name:     "buddhist year is a valid shape",
			req:      CreateBookRequest{Title: "Title1", Author: "Author1", PublishedDate: "2568-01-01"},
			expected: map[string]string{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := Validate(&tt.req)

			if len(tt.expected) == 0 {
				require.NoError(t, err)
				return
			}

			require.ErrorIs(t, err, ErrValidation)
			assert.Equal(t, tt.expected, ValidationErrors(err, tt.req.FieldMessages()))
		})
	}
}

func TestValidationErrors_GenericMessages(t *testing.T) {
	type query struct {
		Limit int    `json:"limit" validate:"min=1,max=10"`
		Name  string `json:"name"  validate:"required"`
	}

	err := Validate(&query{Limit: 0})
	require.Error(t, err)

	assert.Equal(t, map[string]string{
		"limit": "must be at least 1",
		"name":  "this field is required",
	}, ValidationErrors(err, nil))
}

func TestValidationErrors_NonValidatorError(t *testing.T) {
	assert.Empty(t, ValidationErrors(errors.New("boom"), nil))
	assert.False(t, IsValidationError(errors.New("boom")))
}

func TestCreateBookRequest_ToInput(t *testing.T) {
	req := CreateBookRequest{Title: "Title1", Author: "Author1", PublishedDate: "2568-01-01"}
	in := req.ToInput()

	assert.Equal(t, "Title1", in.Title)
	assert.Equal(t, "Author1", in.Author)
	assert.Equal(t, "2568-01-01", in.PublishedDate)
}

func TestBindAndValidate(t *testing.T) {
	tests := []struct {
		name    string
		body    string
		wantErr error
	}{
		{name: "valid", body: `{"title":"T","author":"A","publishedDate":"2023-01-01"}`},
		{name: "not json", body: `title=T`, wantErr: ErrBinding},
		{name: "empty body", body: ``, wantErr: ErrBinding},
		{name: "wrong type", body: `{"title":1,"author":"A","publishedDate":"2023-01-01"}`, wantErr: ErrBinding},
		{name: "invalid fields", body: `{"title":"","author":"A","publishedDate":"2023-01-01"}`, wantErr: ErrValidation},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			c, _ := gin.CreateTestContext(w)
			c.Request = httptest.NewRequest(http.MethodPost, "/api/books", strings.NewReader(tt.body))
			c.Request.Header.Set("Content-Type", "application/json")

			var req CreateBookRequest
			err := BindAndValidate(c, &req)

			if tt.wantErr == nil {
				require.NoError(t, err)
				assert.Equal(t, "T", req.Title)
				return
			}
			require.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestMapError(t *testing.T) {
	validationErr := Validate(&CreateBookRequest{PublishedDate: "2023-01-01"})

	tests := []struct {
		name    string
		err     error
		status  int
		message string
		data    Payload
	}{
		{
			name:    "binding failure",
			err:     fmt.Errorf("%w: %w", ErrBinding, errors.New("invalid character")),
			status:  http.StatusBadRequest,
			message: MsgMalformedBody,
		},
		{
			name:    "body too large",
			err:     fmt.Errorf("%w: %w", ErrBinding, &http.MaxBytesError{Limit: 10}),
			status:  http.StatusRequestEntityTooLarge,
			message: MsgBodyTooLarge,
		},
		{
			name:    "field validation",
			err:     validationErr,
			status:  http.StatusBadRequest,
			message: MsgValidationFailed,
			data:    FieldErrorsPayload{"title": "Title is required", "author": "Author is required"},
		},
		{
			name:    "publish date rejection",
			err:     &domain.PublishDateError{Message: domain.MsgPublishDateInFuture},
			status:  http.StatusBadRequest,
			message: "Invalid date should be before or equal current date.",
		},
		{
			name:    "domain field validation",
			err:     domain.NewValidationError("publishedDate", "Published Date must be a valid date"),
			status:  http.StatusBadRequest,
			message: MsgValidationFailed,
			data:    FieldErrorsPayload{"publishedDate": "Published Date must be a valid date"},
		},
		{
			name:    "domain validation without field",
			err:     domain.NewValidationError("", "bad input"),
			status:  http.StatusBadRequest,
			message: "bad input",
		},
		{
			name:    "conflict",
			err:     domain.NewConflictError("book", "id 1 already assigned"),
			status:  http.StatusConflict,
			message: MsgConflict,
		},
		{
			name:    "unavailable",
			err:     fmt.Errorf("saving book: %w", domain.NewUnavailableError("postgres", "connection refused")),
			status:  http.StatusServiceUnavailable,
			message: MsgUnavailable,
		},
		{
			name:    "deadline",
			err:     fmt.Errorf("selecting books: %w", context.DeadlineExceeded),
			status:  http.StatusServiceUnavailable,
			message: MsgTimeout,
		},
		{
			name:    "unknown",
			err:     errors.New("pq: relation books does not exist"),
			status:  http.StatusInternalServerError,
			message: MsgInternal,
		},
	}

	overrides := CreateBookRequest{}.FieldMessages()

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			status, env := MapError(tt.err, overrides)

			assert.Equal(t, tt.status, status)
			assert.Equal(t, StatusError, env.Status)
			assert.Equal(t, tt.message, env.Message)
			assert.Equal(t, tt.data, env.Data)
		})
	}
}

func TestHandleError_LogsServerErrors(t *testing.T) {
	var buf bytes.Buffer

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodGet, "/api/books?author=a", nil)

	logger := newBufferLogger(&buf)
	c.Request = c.Request.WithContext(withLogger(c.Request.Context(), logger))

	HandleError(c, errors.New("disk on fire"))

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.JSONEq(t, `{"status":"error","message":"An internal error occurred","data":null}`, w.Body.String())
	assert.Contains(t, buf.String(), "disk on fire")
	assert.NotContains(t, w.Body.String(), "disk on fire")
	assert.Len(t, c.Errors, 1)
}

func TestHandleRequestError_UsesOverrides(t *testing.T) {
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodPost, "/api/books", nil)

	req := CreateBookRequest{Title: "Title1", Author: "Author1", PublishedDate: "2023/01/01"}
	HandleRequestError(c, Validate(&req), req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.JSONEq(t,
		`{"status":"error","message":"Validation failed","data":{"publishedDate":"Published Date must follow yyyy-MM-dd format"}}`,
		w.Body.String(),
	)
}

func TestAbort(t *testing.T) {
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)

	Abort(c, http.StatusTooManyRequests, MsgTooManyRequests)

	assert.True(t, c.IsAborted())
	assert.Equal(t, http.StatusTooManyRequests, w.Code)
	assert.JSONEq(t, `{"status":"error","message":"Too many requests","data":null}`, w.Body.String())
}
