// Package postgres provides a PostgreSQL book store on pgx.
package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"cloud.google.com/go/civil"
	"github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/pgxscan"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/jsamuelsen/library-service/internal/domain"
	"github.com/jsamuelsen/library-service/internal/ports"
)

const (
	booksTable = "books"

	uniqueViolation = "23505"

	defaultPingTimeout = 3 * time.Second
)

// psql builds statements with $n placeholders.
var psql = squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)

// DB is the subset of pgxpool.Pool the store uses. pgxmock pools satisfy it.
type DB interface {
	Exec(ctx context.Context, sql string, arguments ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Ping(ctx context.Context) error
}

// Config holds connection settings.
type Config struct {
	DSN            string
	MaxConns       int32
	MigrateOnStart bool
}

// BookStore implements ports.BookRepository on a books table.
type BookStore struct {
	db   DB
	pool *pgxpool.Pool
}

var (
	_ ports.BookRepository = (*BookStore)(nil)
	_ ports.HealthChecker  = (*BookStore)(nil)
)

// bookRow is the scany mapping of a books row.
type bookRow struct {
	ID            int64      `db:"id"`
	Title         string     `db:"title"`
	Author        string     `db:"author"`
	PublishedDate *time.Time `db:"published_date"`
}

// Open connects a pool, verifies it and optionally runs migrations.
func Open(ctx context.Context, cfg Config) (*BookStore, error) {
	if cfg.MigrateOnStart {
		if err := Migrate(ctx, cfg.DSN); err != nil {
			return nil, err
		}
	}

	poolCfg, err := pgxpool.ParseConfig(cfg.DSN)
	if err != nil {
		return nil, fmt.Errorf("parsing postgres dsn: %w", err)
	}
	if cfg.MaxConns > 0 {
		poolCfg.MaxConns = cfg.MaxConns
	}

	pool, err := pgxpool.NewWithConfig(ctx, poolCfg)
	if err != nil {
		return nil, fmt.Errorf("creating postgres pool: %w", err)
	}

	pingCtx, cancel := context.WithTimeout(ctx, defaultPingTimeout)
	defer cancel()

	if err := pool.Ping(pingCtx); err != nil {
		pool.Close()
		return nil, domain.NewUnavailableError("postgres", err.Error())
	}

	return &BookStore{db: pool, pool: pool}, nil
}

// NewBookStore wraps an existing connection.
func NewBookStore(db DB) *BookStore {
	return &BookStore{db: db}
}

// Close releases the pool when the store owns one.
func (s *BookStore) Close() {
	if s.pool != nil {
		s.pool.Close()
	}
}

// Insert implements ports.BookRepository.
func (s *BookStore) Insert(ctx context.Context, book *domain.Book) (*domain.Book, error) {
	if book.IsPersisted() {
		return nil, domain.NewConflictError("book", fmt.Sprintf("id %d already assigned", book.ID))
	}

	query, args, err := psql.Insert(booksTable).
		Columns("title", "author", "published_date").
		Values(book.Title, book.Author, toTime(book.PublishedDate)).
		Suffix("RETURNING id").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("building insert query: %w", err)
	}

	var id int64
	if err := s.db.QueryRow(ctx, query, args...).Scan(&id); err != nil {
		return nil, mapError("inserting book", err)
	}

	saved := *book
	saved.ID = id
	if book.PublishedDate != nil {
		d := *book.PublishedDate
		saved.PublishedDate = &d
	}

	return &saved, nil
}

// FindByAuthor implements ports.BookRepository.
func (s *BookStore) FindByAuthor(ctx context.Context, author string) ([]domain.Book, error) {
	query, args, err := psql.Select("id", "title", "author", "published_date").
		From(booksTable).
		Where(squirrel.Eq{"author": author}).
		OrderBy("id").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("building select query: %w", err)
	}

	var rows []bookRow
	if err := pgxscan.Select(ctx, s.db, &rows, query, args...); err != nil {
		return nil, mapError("selecting books", err)
	}

	books := make([]domain.Book, 0, len(rows))
	for _, r := range rows {
		books = append(books, r.toDomain())
	}

	return books, nil
}

// Reset truncates the table and restarts the id sequence.
func (s *BookStore) Reset(ctx context.Context) error {
	if _, err := s.db.Exec(ctx, "TRUNCATE TABLE "+booksTable+" RESTART IDENTITY"); err != nil {
		return mapError("truncating books", err)
	}
	return nil
}

// Name implements ports.HealthChecker.
func (s *BookStore) Name() string {
	return "postgres"
}

// Check implements ports.HealthChecker.
func (s *BookStore) Check(ctx context.Context) error {
	if err := s.db.Ping(ctx); err != nil {
		return fmt.Errorf("pinging postgres: %w", err)
	}
	return nil
}

func (r bookRow) toDomain() domain.Book {
	b := domain.Book{ID: r.ID, Title: r.Title, Author: r.Author}
	if r.PublishedDate != nil {
		d := civil.DateOf(*r.PublishedDate)
		b.PublishedDate = &d
	}
	return b
}

func toTime(d *civil.Date) *time.Time {
	if d == nil {
		return nil
	}
	t := d.In(time.UTC)
	return &t
}

// mapError turns driver errors into domain errors where one applies.
func mapError(op string, err error) error {
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return fmt.Errorf("%s: %w", op, err)
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
		return fmt.Errorf("%s: %w", op, domain.NewConflictError("book", pgErr.Detail))
	}

	var connErr *pgconn.ConnectError
	if errors.As(err, &connErr) || pgconn.SafeToRetry(err) {
		return fmt.Errorf("%s: %w", op, domain.NewUnavailableError("postgres", err.Error()))
	}

	return fmt.Errorf("%s: %w", op, err)
}
