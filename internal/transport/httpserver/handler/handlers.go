package handler

import (
	"book-club-go/internal/broadcast"
	booksdomain "book-club-go/internal/domain/books"
	clubsdomain "book-club-go/internal/domain/clubs"
	guidedomain "book-club-go/internal/domain/guide"
	meetingsdomain "book-club-go/internal/domain/meetings"
	messagesdomain "book-club-go/internal/domain/messages"
	selectiondomain "book-club-go/internal/domain/selection"
	userdomain "book-club-go/internal/domain/user"
	bookshandler "book-club-go/internal/transport/httpserver/handler/books"
	clubshandler "book-club-go/internal/transport/httpserver/handler/clubs"
	commonhandler "book-club-go/internal/transport/httpserver/handler/common"
	eventshandler "book-club-go/internal/transport/httpserver/handler/events"
	meetingshandler "book-club-go/internal/transport/httpserver/handler/meetings"
	messageshandler "book-club-go/internal/transport/httpserver/handler/messages"
	"book-club-go/pkg/logger"
)

type Services struct {
	Users     *userdomain.Service
	Clubs     *clubsdomain.Service
	Books     *booksdomain.Service
	Selection *selectiondomain.Service
	Meetings  *meetingsdomain.Service
	Guide     *guidedomain.Service
	Messages  *messagesdomain.Service
	Hub       *broadcast.Hub
}

type Handlers struct {
	Common   *commonhandler.Handlers
	Clubs    *clubshandler.Handlers
	Books    *bookshandler.Handlers
	Meetings *meetingshandler.Handlers
	Messages *messageshandler.Handlers
	Events   *eventshandler.Handlers
}

func New(services Services, log logger.Logger) *Handlers {
	return &Handlers{
		Common:   commonhandler.New(services.Users, log),
		Clubs:    clubshandler.New(services.Clubs, log),
		Books:    bookshandler.New(services.Books, services.Selection, log),
		Meetings: meetingshandler.New(services.Meetings, services.Guide, log),
		Messages: messageshandler.New(services.Messages, log),
		Events:   eventshandler.New(services.Hub, services.Clubs, log),
	}
}
