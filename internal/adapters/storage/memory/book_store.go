// Package memory provides an in-process book store.
package memory

import (
	"context"
	"fmt"
	"sync"

	"github.com/jsamuelsen/library-service/internal/domain"
	"github.com/jsamuelsen/library-service/internal/ports"
)

// BookStore keeps books in insertion order behind a mutex. IDs start at 1.
type BookStore struct {
	mu     sync.RWMutex
	books  []domain.Book
	nextID int64
}

var (
	_ ports.BookRepository = (*BookStore)(nil)
	_ ports.HealthChecker  = (*BookStore)(nil)
)

// NewBookStore creates an empty store.
func NewBookStore() *BookStore {
	return &BookStore{nextID: 1}
}

// Insert implements ports.BookRepository.
func (s *BookStore) Insert(ctx context.Context, book *domain.Book) (*domain.Book, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	if book.IsPersisted() {
		return nil, domain.NewConflictError("book", fmt.Sprintf("id %d already assigned", book.ID))
	}

	stored := cloneBook(*book)

	s.mu.Lock()
	stored.ID = s.nextID
	s.nextID++
	s.books = append(s.books, stored)
	s.mu.Unlock()

	out := cloneBook(stored)

	return &out, nil
}

// FindByAuthor implements ports.BookRepository.
func (s *BookStore) FindByAuthor(ctx context.Context, author string) ([]domain.Book, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	books := make([]domain.Book, 0)
	for _, b := range s.books {
		if b.Author == author {
			books = append(books, cloneBook(b))
		}
	}

	return books, nil
}

// Len returns the number of stored books.
func (s *BookStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return len(s.books)
}

// Reset drops every book and restarts ids at 1.
func (s *BookStore) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.books = nil
	s.nextID = 1
}

// Name implements ports.HealthChecker.
func (s *BookStore) Name() string {
	return "memory"
}

// Check implements ports.HealthChecker. The memory store is always usable.
func (s *BookStore) Check(ctx context.Context) error {
	return ctx.Err()
}

// cloneBook copies b so callers never share the stored date pointer.
func cloneBook(b domain.Book) domain.Book {
	if b.PublishedDate != nil {
		d := *b.PublishedDate
		b.PublishedDate = &d
	}
	return b
}
