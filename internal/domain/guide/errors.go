package guide

import "book-club-go/internal/domain/apperr"

var (
	ErrGuideNotFound = apperr.New(apperr.KindNotFound, "guide_not_found", "discussion guide not found")
	ErrItemNotFound  = apperr.New(apperr.KindNotFound, "guide_item_not_found", "guide item not found")
)
