package user

import "book-club-go/internal/domain/apperr"

var ErrProfileNotFound = apperr.New(apperr.KindNotFound, "profile_not_found", "profile not found")
