package clubs

import (
	clubsdomain "book-club-go/internal/domain/clubs"
	"book-club-go/pkg/logger"
)

type Handlers struct {
	Clubs *clubsdomain.Service
	log   logger.Logger
}

func New(clubs *clubsdomain.Service, log logger.Logger) *Handlers {
	return &Handlers{
		Clubs: clubs,
		log:   log,
	}
}
