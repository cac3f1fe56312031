package books

import "context"

type Repository interface {
	GetBook(ctx context.Context, bookID string) (*Book, error)
	GetBookByGoogleID(ctx context.Context, googleBooksID string) (*Book, error)
	CreateBook(ctx context.Context, book *Book) error
}
