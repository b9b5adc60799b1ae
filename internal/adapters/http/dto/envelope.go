// Package dto provides the HTTP request and response shapes of the API and
// the helpers that write them.
package dto

import (
	"cloud.google.com/go/civil"

	"github.com/jsamuelsen/library-service/internal/domain"
)

// Status is the outcome field of every API envelope.
type Status string

const (
	StatusSuccess Status = "success"
	StatusError   Status = "error"
)

// Envelope messages.
const (
	MsgBooksFound       = "Books found"
	MsgNoBooksForAuthor = "No books found for this author"
	MsgBookSaved        = "Book saved successfully"
	MsgValidationFailed = "Validation failed"
	MsgMalformedBody    = "Malformed request body"
	MsgBodyTooLarge     = "Request body too large"
	MsgNotFound         = "Resource not found"
	MsgMethodNotAllowed = "Method not allowed"
	MsgConflict         = "Resource conflict"
	MsgUnauthorized     = "Authentication required"
	MsgForbidden        = "Insufficient permissions"
	MsgTooManyRequests  = "Too many requests"
	MsgUnavailable      = "Service temporarily unavailable"
	MsgTimeout          = "Request timed out"
	MsgInternal         = "An internal error occurred"
)

// Envelope wraps every /api response as {"status", "message", "data"}.
// A nil Data serializes as null.
type Envelope struct {
	Status  Status  `json:"status"`
	Message string  `json:"message"`
	Data    Payload `json:"data"`
}

// Payload is the closed set of envelope data shapes.
type Payload interface {
	payload()
}

// BookResponse is the wire shape of a book. PublishedDate encodes as yyyy-MM-dd or null.
type BookResponse struct {
	ID            int64       `json:"id"`
	Title         string      `json:"title"`
	Author        string      `json:"author"`
	PublishedDate *civil.Date `json:"publishedDate"`
}

// BookListPayload is a sequence of books.
type BookListPayload []BookResponse

// FieldErrorsPayload maps request field names to validation messages.
type FieldErrorsPayload map[string]string

func (BookResponse) payload() {}
func (BookListPayload) payload() {}
func (FieldErrorsPayload) payload() {}

// Success builds a success envelope.
func Success(message string, data Payload) Envelope {
	return Envelope{Status: StatusSuccess, Message: message, Data: data}
}

// Failure builds an error envelope.
func Failure(message string, data Payload) Envelope {
	return Envelope{Status: StatusError, Message: message, Data: data}
}

// NewBookResponse converts a domain book to its wire shape.
func NewBookResponse(b *domain.Book) BookResponse {
	resp := BookResponse{ID: b.ID, Title: b.Title, Author: b.Author}
	if b.PublishedDate != nil {
		d := *b.PublishedDate
		resp.PublishedDate = &d
	}
	return resp
}

// NewBookListPayload converts domain books to a non-nil list payload.
func NewBookListPayload(books []domain.Book) BookListPayload {
	out := make(BookListPayload, 0, len(books))
	for i := range books {
		out = append(out, NewBookResponse(&books[i]))
	}
	return out
}
