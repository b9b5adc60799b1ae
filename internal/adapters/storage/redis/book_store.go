// Package redis provides a Redis-backed book store.
//
// Layout under the configured prefix:
//
//	{prefix}:books:seq           INCR counter for ids
//	{prefix}:book:{id}           hash with title, author, published_date
//	{prefix}:author:{author}     list of ids in insertion order
package redis

import (
	"context"
	"errors"
	"fmt"
	"net"
	"slices"
	"strconv"
	"time"

	"cloud.google.com/go/civil"
	"github.com/redis/go-redis/v9"

	"github.com/jsamuelsen/library-service/internal/domain"
	"github.com/jsamuelsen/library-service/internal/ports"
)

const (
	fieldTitle         = "title"
	fieldAuthor        = "author"
	fieldPublishedDate = "published_date"

	defaultPingTimeout = 3 * time.Second
	scanBatch          = 100
)

// Config holds connection settings.
type Config struct {
	Addr      string
	Password  string
	DB        int
	KeyPrefix string
}

// BookStore implements ports.BookRepository on Redis.
type BookStore struct {
	client redis.UniversalClient
	prefix string
	owned  bool
}

var (
	_ ports.BookRepository = (*BookStore)(nil)
	_ ports.HealthChecker  = (*BookStore)(nil)
)

// Open connects to Redis and verifies the connection.
func Open(ctx context.Context, cfg Config) (*BookStore, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	pingCtx, cancel := context.WithTimeout(ctx, defaultPingTimeout)
	defer cancel()

	if err := client.Ping(pingCtx).Err(); err != nil {
		_ = client.Close()
		return nil, domain.NewUnavailableError("redis", err.Error())
	}

	store := NewBookStore(client, cfg.KeyPrefix)
	store.owned = true

	return store, nil
}

// NewBookStore wraps an existing client. Keys are namespaced by prefix.
func NewBookStore(client redis.UniversalClient, prefix string) *BookStore {
	return &BookStore{client: client, prefix: prefix}
}

// Close closes the client when the store created it.
func (s *BookStore) Close() error {
	if !s.owned {
		return nil
	}
	return s.client.Close()
}

// Insert implements ports.BookRepository.
func (s *BookStore) Insert(ctx context.Context, book *domain.Book) (*domain.Book, error) {
	if book.IsPersisted() {
		return nil, domain.NewConflictError("book", fmt.Sprintf("id %d already assigned", book.ID))
	}

	id, err := s.client.Incr(ctx, s.seqKey()).Result()
	if err != nil {
		return nil, mapError("allocating book id", err)
	}

	published := ""
	if book.PublishedDate != nil {
		published = book.PublishedDate.String()
	}

	_, err = s.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.HSet(ctx, s.bookKey(id),
			fieldTitle, book.Title,
			fieldAuthor, book.Author,
			fieldPublishedDate, published,
		)
		pipe.RPush(ctx, s.authorKey(book.Author), id)
		return nil
	})
	if err != nil {
		return nil, mapError("storing book", err)
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
	members, err := s.client.LRange(ctx, s.authorKey(author), 0, -1).Result()
	if err != nil {
		return nil, mapError("listing author books", err)
	}

	books := make([]domain.Book, 0, len(members))
	if len(members) == 0 {
		return books, nil
	}

	ids := make([]int64, 0, len(members))
	for _, m := range members {
		id, err := strconv.ParseInt(m, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("parsing book id %q: %w", m, err)
		}
		ids = append(ids, id)
	}

	// Concurrent inserts may push ids out of order.
	slices.Sort(ids)

	cmds := make([]*redis.MapStringStringCmd, len(ids))
	_, err = s.client.Pipelined(ctx, func(pipe redis.Pipeliner) error {
		for i, id := range ids {
			cmds[i] = pipe.HGetAll(ctx, s.bookKey(id))
		}
		return nil
	})
	if err != nil {
		return nil, mapError("loading books", err)
	}

	for i, cmd := range cmds {
		fields := cmd.Val()
		if len(fields) == 0 {
			continue
		}

		b, err := toBook(ids[i], fields)
		if err != nil {
			return nil, err
		}
		books = append(books, b)
	}

	return books, nil
}

// Reset deletes every key under the prefix.
func (s *BookStore) Reset(ctx context.Context) error {
	iter := s.client.Scan(ctx, 0, s.prefix+":*", scanBatch).Iterator()

	var keys []string
	for iter.Next(ctx) {
		keys = append(keys, iter.Val())
	}
	if err := iter.Err(); err != nil {
		return mapError("scanning keys", err)
	}

	if len(keys) == 0 {
		return nil
	}

	if err := s.client.Del(ctx, keys...).Err(); err != nil {
		return mapError("deleting keys", err)
	}

	return nil
}

// Name implements ports.HealthChecker.
func (s *BookStore) Name() string {
	return "redis"
}

// Check implements ports.HealthChecker.
func (s *BookStore) Check(ctx context.Context) error {
	if err := s.client.Ping(ctx).Err(); err != nil {
		return fmt.Errorf("pinging redis: %w", err)
	}
	return nil
}

func (s *BookStore) seqKey() string {
	return s.prefix + ":books:seq"
}

func (s *BookStore) bookKey(id int64) string {
	return s.prefix + ":book:" + strconv.FormatInt(id, 10)
}

func (s *BookStore) authorKey(author string) string {
	return s.prefix + ":author:" + author
}

func toBook(id int64, fields map[string]string) (domain.Book, error) {
	b := domain.Book{
		ID:     id,
		Title:  fields[fieldTitle],
		Author: fields[fieldAuthor],
	}

	if raw := fields[fieldPublishedDate]; raw != "" {
		d, err := civil.ParseDate(raw)
		if err != nil {
			return domain.Book{}, fmt.Errorf("parsing published date of book %d: %w", id, err)
		}
		b.PublishedDate = &d
	}

	return b, nil
}

// mapError marks network failures as unavailability.
func mapError(op string, err error) error {
	var netErr net.Error
	if errors.As(err, &netErr) || errors.Is(err, redis.ErrClosed) {
		return fmt.Errorf("%s: %w", op, domain.NewUnavailableError("redis", err.Error()))
	}
	return fmt.Errorf("%s: %w", op, err)
}
