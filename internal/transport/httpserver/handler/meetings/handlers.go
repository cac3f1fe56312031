package meetings

import (
	guidedomain "book-club-go/internal/domain/guide"
	meetingsdomain "book-club-go/internal/domain/meetings"
	"book-club-go/pkg/logger"
)

type Handlers struct {
	Meetings *meetingsdomain.Service
	Guide    *guidedomain.Service
	log      logger.Logger
}

func New(meetings *meetingsdomain.Service, guide *guidedomain.Service, log logger.Logger) *Handlers {
	return &Handlers{
		Meetings: meetings,
		Guide:    guide,
		log:      log,
	}
}
