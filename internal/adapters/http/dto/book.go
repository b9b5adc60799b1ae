package dto

import "github.com/jsamuelsen/library-service/internal/app"

// CreateBookRequest is the body of POST /api/books.
type CreateBookRequest struct {
	Title         string `json:"title"         validate:"required"`
	Author        string `json:"author"        validate:"required"`
	PublishedDate string `json:"publishedDate" validate:"required,datepattern,calendardate"`
}

// createBookMessages overrides the generic messages, keyed by "field.tag".
var createBookMessages = map[string]string{
	"title.required":             "Title is required",
	"author.required":            "Author is required",
	"publishedDate.required":     "Published Date is required",
	"publishedDate.datepattern":  "Published Date must follow yyyy-MM-dd format",
	"publishedDate.calendardate": "Published Date must be a valid date",
}

// FieldMessages implements MessageOverrider.
func (CreateBookRequest) FieldMessages() map[string]string {
	return createBookMessages
}

// ToInput converts the request to the service input.
func (r *CreateBookRequest) ToInput() app.CreateBookInput {
	return app.CreateBookInput{
		Title:         r.Title,
		Author:        r.Author,
		PublishedDate: r.PublishedDate,
	}
}
