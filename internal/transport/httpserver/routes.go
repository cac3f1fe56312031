package httpserver

import (
	"net/http"
	"time"

	"book-club-go/internal/config"
	"book-club-go/internal/transport/httpserver/handler"
	authmw "book-club-go/internal/transport/httpserver/middleware"
	"book-club-go/pkg/logger"
	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
)

const requestTimeout = 30 * time.Second

func NewRouter(cfg config.Config, handlers *handler.Handlers, profiles authmw.ProfileSaver, log logger.Logger) http.Handler {
	r := chi.NewRouter()
	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(chimw.Logger)
	r.Use(chimw.Recoverer)
	r.Use(authmw.NewCORS(cfg.CORSOrigins))

	r.Route("/api", func(r chi.Router) {
		auth := authmw.NewAuth(cfg.Auth, profiles, log)

		r.With(chimw.Timeout(requestTimeout)).Get("/health", handlers.Common.Health)
		r.With(chimw.Timeout(requestTimeout)).Get("/invites/{code}", handlers.Clubs.PreviewInvite)

		r.Group(func(r chi.Router) {
			r.Use(auth.Middleware)

			r.Group(func(r chi.Router) {
				r.Use(chimw.Timeout(requestTimeout))

				r.Get("/auth/me", handlers.Common.AuthMe)
				r.Post("/invites/{code}/join", handlers.Clubs.JoinByInvite)
				r.Get("/books/search", handlers.Books.Search)
				r.Get("/clubs", handlers.Clubs.ListClubs)
				r.Post("/clubs", handlers.Clubs.CreateClub)
			})

			r.Route("/clubs/{club_id}", func(r chi.Router) {
				// The event stream outlives the request timeout.
				r.Get("/events", handlers.Events.Stream)

				r.Group(func(r chi.Router) {
					r.Use(chimw.Timeout(requestTimeout))

					r.Get("/", handlers.Clubs.GetClub)
					r.Patch("/", handlers.Clubs.UpdateClub)
					r.Delete("/", handlers.Clubs.DeleteClub)
					r.Post("/join", handlers.Clubs.JoinClub)
					r.Post("/leave", handlers.Clubs.LeaveClub)
					r.Post("/invite/regenerate", handlers.Clubs.RegenerateInvite)

					r.Get("/members", handlers.Clubs.ListMembers)
					r.Delete("/members/{user_id}", handlers.Clubs.RemoveMember)
					r.Post("/members/{user_id}/promote", handlers.Clubs.PromoteMember)

					r.Get("/books", handlers.Books.Board)
					r.Post("/books", handlers.Books.AddClubBook)
					r.Get("/books/archive", handlers.Books.Archive)
					r.Post("/books/start_next", handlers.Books.StartNext)
					r.Post("/books/cancel_next", handlers.Books.CancelNext)
					r.Post("/books/mark_complete", handlers.Books.MarkComplete)
					r.Get("/books/{club_book_id}", handlers.Books.GetClubBook)
					r.Delete("/books/{club_book_id}", handlers.Books.DeleteClubBook)
					r.Post("/books/{club_book_id}/queue_next", handlers.Books.QueueNext)
					r.Post("/books/{club_book_id}/set_reading", handlers.Books.SetReading)
					r.Post("/books/{club_book_id}/vote", handlers.Books.CastVote)

					r.Post("/voting/start", handlers.Books.StartVoting)
					r.Post("/voting/end", handlers.Books.EndVoting)

					r.Get("/meetings", handlers.Meetings.ListMeetings)
					r.Post("/meetings", handlers.Meetings.CreateMeeting)
					r.Route("/meetings/{meeting_id}", func(r chi.Router) {
						r.Get("/", handlers.Meetings.GetMeeting)
						r.Put("/", handlers.Meetings.UpdateMeeting)
						r.Delete("/", handlers.Meetings.DeleteMeeting)
						r.Post("/start", handlers.Meetings.StartMeeting)
						r.Post("/end", handlers.Meetings.EndMeeting)
						r.Post("/resume", handlers.Meetings.ResumeMeeting)
						r.Get("/calendar.ics", handlers.Meetings.Calendar)

						r.Get("/rsvps", handlers.Meetings.ListRsvps)
						r.Post("/rsvp", handlers.Meetings.Respond)
						r.Post("/check_in", handlers.Meetings.CheckIn)
						r.Delete("/check_in", handlers.Meetings.UndoCheckIn)

						r.Get("/comments", handlers.Meetings.ListComments)
						r.Post("/comments", handlers.Meetings.AddComment)
						r.Patch("/comments/{comment_id}", handlers.Meetings.UpdateComment)
						r.Delete("/comments/{comment_id}", handlers.Meetings.DeleteComment)

						r.Get("/guide", handlers.Meetings.GetGuide)
						r.Post("/guide/items", handlers.Meetings.AddGuideItem)
						r.Patch("/guide/items/{item_id}", handlers.Meetings.UpdateGuideItem)
						r.Delete("/guide/items/{item_id}", handlers.Meetings.RemoveGuideItem)
						r.Post("/guide/items/{item_id}/toggle", handlers.Meetings.ToggleGuideItem)
						r.Post("/guide/regenerate", handlers.Meetings.RegenerateGuide)
					})

					r.Get("/messages", handlers.Messages.ListMessages)
					r.Post("/messages", handlers.Messages.PostMessage)
					r.Patch("/messages/{message_id}", handlers.Messages.EditMessage)
					r.Delete("/messages/{message_id}", handlers.Messages.DeleteMessage)
					r.Post("/messages/{message_id}/replies", handlers.Messages.PostReply)
					r.Patch("/messages/{message_id}/replies/{reply_id}", handlers.Messages.EditReply)
					r.Delete("/messages/{message_id}/replies/{reply_id}", handlers.Messages.DeleteReply)
				})
			})
		})
	})

	return r
}
