package meetings

import (
	"net/url"
	"time"

	selectiondomain "book-club-go/internal/domain/selection"
	"gorm.io/gorm"
)

type State string

const (
	StateScheduled State = "scheduled"
	StateLive      State = "live"
	StateEnded     State = "ended"
)

const (
	LocationPhysical = "physical"
	LocationVideo    = "video"
	LocationTBD      = "tbd"
)

const (
	ResponseYes   = "yes"
	ResponseMaybe = "maybe"
	ResponseNo    = "no"
)

// DefaultRegenerateLimit bounds paid question regenerations per meeting.
const DefaultRegenerateLimit = 3

type Meeting struct {
	ID              string  `gorm:"type:uuid;primaryKey"`
	ClubID          string  `gorm:"type:uuid;not null;index"`
	ClubBookID      *string `gorm:"type:uuid"`
	HostID          *string
	Title           string    `gorm:"size:200;not null"`
	ScheduledAt     time.Time `gorm:"not null"`
	EndsAt          *time.Time
	LocationType    string `gorm:"size:16;not null;default:tbd"`
	Location        *string
	Notes           *string
	State           State `gorm:"size:16;not null;default:scheduled"`
	StartedAt       *time.Time
	EndedAt         *time.Time
	RegenerateCount int            `gorm:"not null;default:0"`
	CreatedBy       string         `gorm:"not null"`
	CreatedAt       time.Time      `gorm:"autoCreateTime"`
	UpdatedAt       time.Time      `gorm:"autoUpdateTime"`
	DeletedAt       gorm.DeletedAt `gorm:"index"`

	ClubBook *selectiondomain.ClubBook `gorm:"foreignKey:ClubBookID;references:ID"`
}

// Start moves a scheduled or ended meeting to live. started_at keeps the
// first start.
func (m *Meeting) Start(now time.Time) error {
	if m.State != StateScheduled && m.State != StateEnded {
		return ErrInvalidTransition
	}
	m.State = StateLive
	if m.StartedAt == nil {
		started := now
		m.StartedAt = &started
	}
	m.EndedAt = nil
	return nil
}

func (m *Meeting) End(now time.Time) error {
	if m.State != StateLive {
		return ErrInvalidTransition
	}
	ended := now
	m.State = StateEnded
	m.EndedAt = &ended
	return nil
}

// Resume reopens an ended meeting. It is not valid from scheduled.
func (m *Meeting) Resume() error {
	if m.State != StateEnded {
		return ErrInvalidTransition
	}
	m.State = StateLive
	m.EndedAt = nil
	return nil
}

func (m *Meeting) CanRegenerate(limit int) bool {
	return m.RegenerateCount < limit
}

// CommentsOpen reports whether comments may be attached.
func (m *Meeting) CommentsOpen() bool {
	return m.State == StateLive || m.State == StateEnded
}

// Duration is the planned length in minutes, zero without an end time.
func (m *Meeting) Duration() int {
	if m.EndsAt == nil {
		return 0
	}
	return int(m.EndsAt.Sub(m.ScheduledAt) / time.Minute)
}

func (m *Meeting) MapsURL() string {
	if m.LocationType != LocationPhysical || m.Location == nil || *m.Location == "" {
		return ""
	}
	return "https://www.google.com/maps/search/?api=1&query=" + url.QueryEscape(*m.Location)
}

type Rsvp struct {
	ID          string `gorm:"type:uuid;primaryKey"`
	MeetingID   string `gorm:"type:uuid;not null"`
	UserID      string `gorm:"not null"`
	Response    string `gorm:"size:8;not null"`
	CheckedInAt *time.Time
	CreatedAt   time.Time `gorm:"autoCreateTime"`
	UpdatedAt   time.Time `gorm:"autoUpdateTime"`
}

func (r *Rsvp) CheckedIn() bool {
	return r.CheckedInAt != nil
}

// SetResponse changes the answer. Leaving yes drops any check-in.
func (r *Rsvp) SetResponse(response string) {
	r.Response = response
	if response != ResponseYes {
		r.CheckedInAt = nil
	}
}

func (r *Rsvp) CheckIn(now time.Time) error {
	if r.Response != ResponseYes {
		return ErrNotAttending
	}
	if r.CheckedIn() {
		return ErrAlreadyCheckedIn
	}
	at := now
	r.CheckedInAt = &at
	return nil
}

func (r *Rsvp) UndoCheckIn() error {
	if !r.CheckedIn() {
		return ErrNotCheckedIn
	}
	r.CheckedInAt = nil
	return nil
}

type Comment struct {
	ID        string    `gorm:"type:uuid;primaryKey"`
	MeetingID string    `gorm:"type:uuid;not null;index"`
	UserID    string    `gorm:"not null"`
	Content   string    `gorm:"not null"`
	CreatedAt time.Time `gorm:"autoCreateTime"`
	UpdatedAt time.Time `gorm:"autoUpdateTime"`
}

func (Comment) TableName() string {
	return "meeting_comments"
}

// RsvpSummary counts answers for one meeting.
type RsvpSummary struct {
	Yes       int
	Maybe     int
	No        int
	CheckedIn int
}

func Summarize(rsvps []Rsvp) RsvpSummary {
	var summary RsvpSummary
	for _, rsvp := range rsvps {
		switch rsvp.Response {
		case ResponseYes:
			summary.Yes++
		case ResponseMaybe:
			summary.Maybe++
		case ResponseNo:
			summary.No++
		}
		if rsvp.CheckedIn() {
			summary.CheckedIn++
		}
	}
	return summary
}

type MeetingInput struct {
	Title        string
	ScheduledAt  time.Time
	EndsAt       *time.Time
	LocationType string
	Location     string
	Notes        string
	ClubBookID   *string
	HostID       *string
}
