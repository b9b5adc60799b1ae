// Package ports defines the interfaces the application layer depends on.
// Adapters (storage backends, metrics, clocks) implement them so use cases
// never touch infrastructure types directly.
//
// Conventions:
//   - context.Context is the first parameter of anything that may block
//   - methods return domain types and domain errors (ErrConflict, ErrUnavailable)
package ports

import (
	"context"
	"time"

	"github.com/jsamuelsen/library-service/internal/domain"
)

// BookRepository is the keyed book store.
type BookRepository interface {
	// Insert stores a new book and returns a copy carrying the assigned ID.
	// Books that already have an ID are refused with domain.ErrConflict.
	Insert(ctx context.Context, book *domain.Book) (*domain.Book, error)

	// FindByAuthor returns every book whose author matches exactly, in
	// insertion order. No match yields an empty slice and a nil error.
	FindByAuthor(ctx context.Context, author string) ([]domain.Book, error)
}

// Clock supplies the current instant. The service derives "today" from it.
type Clock interface {
	Now() time.Time
}

// ClockFunc adapts a plain function to Clock.
type ClockFunc func() time.Time

// Now implements Clock.
func (f ClockFunc) Now() time.Time {
	return f()
}

// SystemClock reads the wall clock.
var SystemClock Clock = ClockFunc(time.Now)

// FixedClock returns a Clock frozen at t.
func FixedClock(t time.Time) Clock {
	return ClockFunc(func() time.Time { return t })
}

// Normalization outcomes recorded by BookMetrics.
const (
	OutcomeGregorian = string(domain.EraGregorian)
	OutcomeBuddhist  = string(domain.EraBuddhist)
	OutcomeRejected  = "rejected"
)

// BookMetrics receives business counters from the book use cases.
type BookMetrics interface {
	// PublishDateNormalized records one normalization by outcome.
	PublishDateNormalized(outcome string)

	// BookCreated records one successful insert.
	BookCreated()

	// BooksQueried records one listing and whether it matched anything.
	BooksQueried(found bool)
}

// NoopBookMetrics discards every observation.
type NoopBookMetrics struct{}

// PublishDateNormalized implements BookMetrics.
func (NoopBookMetrics) PublishDateNormalized(string) {}

// BookCreated implements BookMetrics.
func (NoopBookMetrics) BookCreated() {}

// BooksQueried implements BookMetrics.
func (NoopBookMetrics) BooksQueried(bool) {}
