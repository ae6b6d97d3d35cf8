package domain

import (
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Common validation errors for Book
var (
	ErrEmptyBookID     = errors.New("book ID cannot be empty")
	ErrEmptyBookUserID = errors.New("book user ID cannot be empty")
	ErrEmptyBookTitle  = errors.New("book title cannot be empty")
	ErrInvalidPages    = errors.New("page count cannot be negative")
)

// Book holds the immutable catalog facts about a book. Title and page count
// are set once at construction; lifecycle records refer to a book by ID and
// never own it.
type Book struct {
	ID        uuid.UUID `json:"id"`
	UserID    uuid.UUID `json:"user_id"`
	Title     string    `json:"title"`
	PageCount int       `json:"page_count"`
	CreatedAt time.Time `json:"created_at"`
}

// NewBook creates a new catalog entry owned by userID.
// Returns an error if validation fails.
func NewBook(userID uuid.UUID, title string, pageCount int) (*Book, error) {
	book := &Book{
		ID:        uuid.New(),
		UserID:    userID,
		Title:     strings.TrimSpace(title),
		PageCount: pageCount,
		CreatedAt: time.Now().UTC(),
	}

	if err := book.Validate(); err != nil {
		return nil, err
	}

	return book, nil
}

// Validate checks if the Book has valid data.
func (b *Book) Validate() error {
	if b.ID == uuid.Nil {
		return ErrEmptyBookID
	}

	if b.UserID == uuid.Nil {
		return ErrEmptyBookUserID
	}

	if strings.TrimSpace(b.Title) == "" {
		return ErrEmptyBookTitle
	}

	if b.PageCount < 0 {
		return ErrInvalidPages
	}

	return nil
}
