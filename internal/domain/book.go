package domain

import "cloud.google.com/go/civil"

// Book is a catalogued book.
// ID is zero until a store assigns one on insert and never changes afterwards.
type Book struct {
	ID     int64
	Title  string
	Author string

	// PublishedDate is always Gregorian once the book has been persisted.
	PublishedDate *civil.Date
}

// IsPersisted reports whether a store has assigned the book an identifier.
func (b *Book) IsPersisted() bool {
	return b.ID != 0
}
