package events

import (
	"context"
	"time"
)

const (
	TypeClubBookStatusChanged = "club_book.status_changed"
	TypeVotingStarted         = "voting.started"
	TypeVotingEnded           = "voting.ended"
	TypeVoteCast              = "vote.cast"
	TypeMeetingStateChanged   = "meeting.state_changed"
	TypeRsvpChanged           = "rsvp.changed"
	TypeCheckInChanged        = "rsvp.check_in_changed"
	TypeGuideUpdated          = "guide.updated"
	TypeCommentChanged        = "comment.changed"
	TypeMessageChanged        = "message.changed"
)

// Event is a post-commit notification about a club aggregate.
type Event struct {
	Type      string         `json:"type"`
	ClubID    string         `json:"club_id"`
	MeetingID string         `json:"meeting_id,omitempty"`
	EntityID  string         `json:"entity_id,omitempty"`
	Data      map[string]any `json:"data,omitempty"`
	At        time.Time      `json:"at"`
}

// Notifier delivers events fire-and-forget. Implementations must not block
// the caller and must not report delivery failures.
type Notifier interface {
	Publish(ctx context.Context, event Event)
}

type Noop struct{}

func (Noop) Publish(context.Context, Event) {}

// OrNoop returns n, or Noop when n is nil.
func OrNoop(n Notifier) Notifier {
	if n == nil {
		return Noop{}
	}
	return n
}
