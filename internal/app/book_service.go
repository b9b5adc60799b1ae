// Package app contains the application services that orchestrate use cases.
// Services depend on ports only; adapters are injected at startup.
package app

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"cloud.google.com/go/civil"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	"github.com/jsamuelsen/library-service/internal/domain"
	"github.com/jsamuelsen/library-service/internal/platform/logging"
	"github.com/jsamuelsen/library-service/internal/platform/telemetry"
	"github.com/jsamuelsen/library-service/internal/ports"
)

// MsgPublishedDateInvalid is returned when a published date cannot be parsed.
const MsgPublishedDateInvalid = "Published Date must be a valid date"

// CreateBookInput carries an already field-validated create request.
type CreateBookInput struct {
	Title         string
	Author        string
	PublishedDate string // yyyy-MM-dd, possibly in the Buddhist Era
}

// BookService implements the book use cases: creating a book with a
// normalized publish date and listing books by author.
type BookService struct {
	repo     ports.BookRepository
	clock    ports.Clock
	location *time.Location
	metrics  ports.BookMetrics
	logger   *slog.Logger
}

// BookServiceConfig contains the dependencies of a BookService.
// Only Repository is required.
type BookServiceConfig struct {
	Repository ports.BookRepository
	Clock      ports.Clock
	Location   *time.Location // zone "today" is computed in; defaults to UTC
	Metrics    ports.BookMetrics
	Logger     *slog.Logger
}

// NewBookService creates a book service. It panics without a repository.
func NewBookService(cfg BookServiceConfig) *BookService {
	if cfg.Repository == nil {
		panic("app: BookService requires a repository")
	}

	svc := &BookService{
		repo:     cfg.Repository,
		clock:    cfg.Clock,
		location: cfg.Location,
		metrics:  cfg.Metrics,
		logger:   cfg.Logger,
	}

	if svc.clock == nil {
		svc.clock = ports.SystemClock
	}
	if svc.location == nil {
		svc.location = time.UTC
	}
	if svc.metrics == nil {
		svc.metrics = ports.NoopBookMetrics{}
	}
	if svc.logger == nil {
		svc.logger = slog.Default()
	}
	svc.logger = svc.logger.With(slog.String("component", "app.BookService"))

	return svc
}

// Today returns the current calendar date in the configured zone.
func (s *BookService) Today() civil.Date {
	return civil.DateOf(s.clock.Now().In(s.location))
}

// Create normalizes the published date and stores the book.
// A rejected date is returned as is and nothing is stored.
func (s *BookService) Create(ctx context.Context, in CreateBookInput) (*domain.Book, error) {
	ctx, span := telemetry.Tracer().Start(ctx, "BookService.Create")
	defer span.End()

	logger := logging.FromContextOr(ctx, s.logger).With(slog.String("method", "Create"))

	submitted, err := civil.ParseDate(in.PublishedDate)
	if err != nil {
		return nil, domain.NewValidationErrorWithValue("publishedDate", MsgPublishedDateInvalid, in.PublishedDate)
	}

	today := s.Today()

	normalized, err := domain.NormalizePublishedDate(submitted, today)
	if err != nil {
		s.metrics.PublishDateNormalized(ports.OutcomeRejected)
		logger.InfoContext(ctx, "published date rejected",
			slog.String("published_date", submitted.String()),
			slog.String("today", today.String()),
			slog.String("reason", err.Error()),
		)
		span.SetStatus(codes.Error, err.Error())

		return nil, err
	}

	era := domain.EraOf(submitted, normalized)
	s.metrics.PublishDateNormalized(string(era))

	if era == domain.EraBuddhist {
		logger.DebugContext(ctx, "published date converted from buddhist era",
			slog.String("submitted", submitted.String()),
			slog.String("normalized", normalized.String()),
		)
	}

	saved, err := s.repo.Insert(ctx, &domain.Book{
		Title:         in.Title,
		Author:        in.Author,
		PublishedDate: &normalized,
	})
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "insert failed")

		return nil, fmt.Errorf("saving book: %w", err)
	}

	s.metrics.BookCreated()
	span.SetAttributes(
		attribute.Int64("book.id", saved.ID),
		attribute.String("book.calendar", string(era)),
	)
	logger.InfoContext(ctx, "book saved",
		slog.Int64("book_id", saved.ID),
		slog.String("calendar", string(era)),
		slog.String("published_date", normalized.String()),
	)

	return saved, nil
}

// ListByAuthor returns every book by author in insertion order.
// No match yields an empty, non-nil slice.
func (s *BookService) ListByAuthor(ctx context.Context, author string) ([]domain.Book, error) {
	ctx, span := telemetry.Tracer().Start(ctx, "BookService.ListByAuthor")
	defer span.End()

	logger := logging.FromContextOr(ctx, s.logger).With(slog.String("method", "ListByAuthor"))

	books, err := s.repo.FindByAuthor(ctx, author)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "query failed")

		return nil, fmt.Errorf("listing books by author: %w", err)
	}

	if books == nil {
		books = []domain.Book{}
	}

	s.metrics.BooksQueried(len(books) > 0)
	span.SetAttributes(attribute.Int("book.count", len(books)))
	logger.DebugContext(ctx, "books listed",
		slog.String("author", author),
		slog.Int("count", len(books)),
	)

	return books, nil
}
