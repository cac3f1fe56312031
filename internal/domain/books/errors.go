package books

import "book-club-go/internal/domain/apperr"

var (
	ErrBookNotFound        = apperr.New(apperr.KindNotFound, "book_not_found", "book not found")
	ErrCatalogBookNotFound = apperr.New(apperr.KindNotFound, "catalog_book_not_found", "book not found in catalog")
	ErrCatalogIDTaken      = apperr.New(apperr.KindConflict, "catalog_id_taken", "book already exists for catalog id")
)
