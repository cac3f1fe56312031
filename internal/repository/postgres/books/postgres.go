package books

import (
	"context"
	"errors"

	booksdomain "book-club-go/internal/domain/books"
	"book-club-go/internal/repository/postgres/pgerr"
	"gorm.io/gorm"
)

type PostgresRepository struct {
	db *gorm.DB
}

func NewPostgres(db *gorm.DB) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) GetBook(ctx context.Context, bookID string) (*booksdomain.Book, error) {
	var book booksdomain.Book
	if err := r.db.WithContext(ctx).Where("id = ?", bookID).First(&book).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, booksdomain.ErrBookNotFound
		}
		return nil, err
	}
	return &book, nil
}

func (r *PostgresRepository) GetBookByGoogleID(ctx context.Context, googleBooksID string) (*booksdomain.Book, error) {
	var book booksdomain.Book
	if err := r.db.WithContext(ctx).Where("google_books_id = ?", googleBooksID).First(&book).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, booksdomain.ErrBookNotFound
		}
		return nil, err
	}
	return &book, nil
}

func (r *PostgresRepository) CreateBook(ctx context.Context, book *booksdomain.Book) error {
	err := r.db.WithContext(ctx).Create(book).Error
	if pgerr.IsUniqueViolationOn(err, "ux_books_google_books_id") {
		return booksdomain.ErrCatalogIDTaken
	}
	return err
}
