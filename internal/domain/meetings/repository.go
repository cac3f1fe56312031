package meetings

import (
	"context"
	"time"
)

type Repository interface {
	Transaction(ctx context.Context, fn func(Repository) error) error

	CreateMeeting(ctx context.Context, meeting *Meeting) error
	GetMeeting(ctx context.Context, clubID, meetingID string) (*Meeting, error)
	UpdateMeeting(ctx context.Context, meeting *Meeting) error
	SaveState(ctx context.Context, meeting *Meeting) error
	SoftDeleteMeeting(ctx context.Context, meetingID string) error
	ListUpcoming(ctx context.Context, clubID string, now time.Time) ([]Meeting, error)
	ListPast(ctx context.Context, clubID string, now time.Time) ([]Meeting, error)
	// ReserveRegeneration increments regenerate_count only while it is
	// below limit. It reports false when the limit was already reached.
	ReserveRegeneration(ctx context.Context, meetingID string, limit int) (bool, error)
	// ReleaseRegeneration hands back one reserved regeneration.
	ReleaseRegeneration(ctx context.Context, meetingID string) error
	// DefaultClubBookID returns the club's reading book, else its next book.
	DefaultClubBookID(ctx context.Context, clubID string) (*string, error)
	// ClubBookInClub reports whether a non-deleted club book with that id
	// belongs to the club.
	ClubBookInClub(ctx context.Context, clubID, clubBookID string) (bool, error)

	GetRsvp(ctx context.Context, meetingID, userID string) (*Rsvp, error)
	GetRsvpForUpdate(ctx context.Context, meetingID, userID string) (*Rsvp, error)
	SaveRsvp(ctx context.Context, rsvp *Rsvp) error
	ListRsvps(ctx context.Context, meetingID string) ([]Rsvp, error)

	CreateComment(ctx context.Context, comment *Comment) error
	GetComment(ctx context.Context, meetingID, commentID string) (*Comment, error)
	UpdateComment(ctx context.Context, comment *Comment) error
	DeleteComment(ctx context.Context, commentID string) error
	ListComments(ctx context.Context, meetingID string) ([]Comment, error)
}
