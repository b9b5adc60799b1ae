package mocks

import (
	"github.com/stretchr/testify/mock"

	"github.com/jsamuelsen/library-service/internal/ports"
)

// MockBookMetrics is a testify mock of ports.BookMetrics.
type MockBookMetrics struct {
	mock.Mock
}

var _ ports.BookMetrics = (*MockBookMetrics)(nil)

// NewMockBookMetrics creates a mock whose expectations are asserted at test cleanup.
func NewMockBookMetrics(t interface {
	mock.TestingT
	Cleanup(func())
}) *MockBookMetrics {
	m := &MockBookMetrics{}
	m.Test(t)
	t.Cleanup(func() { m.AssertExpectations(t) })

	return m
}

// PublishDateNormalized implements ports.BookMetrics.
func (m *MockBookMetrics) PublishDateNormalized(outcome string) {
	m.Called(outcome)
}

// BookCreated implements ports.BookMetrics.
func (m *MockBookMetrics) BookCreated() {
	m.Called()
}

// BooksQueried implements ports.BookMetrics.
func (m *MockBookMetrics) BooksQueried(found bool) {
	m.Called(found)
}
