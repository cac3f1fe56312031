package messages

import (
	messagesdomain "book-club-go/internal/domain/messages"
	"book-club-go/pkg/logger"
)

type Handlers struct {
	Messages *messagesdomain.Service
	log      logger.Logger
}

func New(messages *messagesdomain.Service, log logger.Logger) *Handlers {
	return &Handlers{
		Messages: messages,
		log:      log,
	}
}
