package common

import (
	userdomain "book-club-go/internal/domain/user"
	"book-club-go/pkg/logger"
)

type Handlers struct {
	Users *userdomain.Service
	log   logger.Logger
}

func New(users *userdomain.Service, log logger.Logger) *Handlers {
	return &Handlers{
		Users: users,
		log:   log,
	}
}
