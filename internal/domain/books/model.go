package books

import (
	"strings"
	"time"

	"github.com/lib/pq"
	"gorm.io/gorm"
)

type Book struct {
	ID            string         `gorm:"type:uuid;primaryKey"`
	Title         string         `gorm:"size:500;not null"`
	Authors       pq.StringArray `gorm:"type:text[];not null;default:'{}'"`
	GoogleBooksID *string        `gorm:"uniqueIndex"`
	Description   *string
	PageCount     *int
	CoverURL      *string
	ISBN          *string `gorm:"column:isbn"`
	CreatedAt     time.Time      `gorm:"autoCreateTime"`
	UpdatedAt     time.Time      `gorm:"autoUpdateTime"`
	DeletedAt     gorm.DeletedAt `gorm:"index"`
}

// ManualEntry reports whether the book was typed in rather than resolved
// from the external catalog.
func (b *Book) ManualEntry() bool {
	return b.GoogleBooksID == nil || *b.GoogleBooksID == ""
}

func (b *Book) AuthorNames() string {
	return strings.Join(b.Authors, ", ")
}

// Metadata is a catalog record as returned by a Provider.
type Metadata struct {
	ExternalID  string
	Title       string
	Authors     []string
	Description string
	PageCount   int
	CoverURL    string
	ISBN        string
}

func (m Metadata) ToBook() Book {
	book := Book{
		Title:   m.Title,
		Authors: pq.StringArray(m.Authors),
	}
	if book.Authors == nil {
		book.Authors = pq.StringArray{}
	}
	if m.ExternalID != "" {
		id := m.ExternalID
		book.GoogleBooksID = &id
	}
	book.Description = optionalString(m.Description)
	book.CoverURL = optionalString(m.CoverURL)
	book.ISBN = optionalString(m.ISBN)
	if m.PageCount > 0 {
		count := m.PageCount
		book.PageCount = &count
	}
	return book
}

// ResolveInput selects a book either by catalog id or by manual fields.
// GoogleBooksID wins when both are present.
type ResolveInput struct {
	GoogleBooksID string
	Title         string
	Authors       string
	Description   string
	PageCount     *int
	ISBN          string
}

func optionalString(value string) *string {
	value = strings.TrimSpace(value)
	if value == "" {
		return nil
	}
	return &value
}
