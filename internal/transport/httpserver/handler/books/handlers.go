package books

import (
	booksdomain "book-club-go/internal/domain/books"
	selectiondomain "book-club-go/internal/domain/selection"
	"book-club-go/pkg/logger"
)

type Handlers struct {
	Books     *booksdomain.Service
	Selection *selectiondomain.Service
	log       logger.Logger
}

func New(books *booksdomain.Service, selection *selectiondomain.Service, log logger.Logger) *Handlers {
	return &Handlers{
		Books:     books,
		Selection: selection,
		log:       log,
	}
}
