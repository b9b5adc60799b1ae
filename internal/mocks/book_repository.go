// Package mocks holds testify mocks for the ports interfaces.
package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/jsamuelsen/library-service/internal/domain"
	"github.com/jsamuelsen/library-service/internal/ports"
)

// MockBookRepository is a testify mock of ports.BookRepository.
type MockBookRepository struct {
	mock.Mock
}

var _ ports.BookRepository = (*MockBookRepository)(nil)

// NewMockBookRepository creates a mock whose expectations are asserted at test cleanup.
func NewMockBookRepository(t interface {
	mock.TestingT
	Cleanup(func())
}) *MockBookRepository {
	m := &MockBookRepository{}
	m.Test(t)
	t.Cleanup(func() { m.AssertExpectations(t) })

	return m
}

// Insert implements ports.BookRepository.
func (m *MockBookRepository) Insert(ctx context.Context, book *domain.Book) (*domain.Book, error) {
	args := m.Called(ctx, book)

	var saved *domain.Book
	if v := args.Get(0); v != nil {
		saved = v.(*domain.Book)
	}

	return saved, args.Error(1)
}

// FindByAuthor implements ports.BookRepository.
func (m *MockBookRepository) FindByAuthor(ctx context.Context, author string) ([]domain.Book, error) {
	args := m.Called(ctx, author)

	var books []domain.Book
	if v := args.Get(0); v != nil {
		books = v.([]domain.Book)
	}

	return books, args.Error(1)
}
