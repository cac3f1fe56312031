package selection

import (
	"time"

	booksdomain "book-club-go/internal/domain/books"
	"gorm.io/gorm"
)

type Status string

const (
	StatusSuggested Status = "suggested"
	StatusVoting    Status = "voting"
	StatusNext      Status = "next"
	StatusReading   Status = "reading"
	StatusCompleted Status = "completed"
)

// transitions lists the legal moves out of each status. Completed is
// terminal.
var transitions = map[Status][]Status{
	StatusSuggested: {StatusVoting, StatusNext, StatusReading},
	StatusVoting:    {StatusNext, StatusSuggested},
	StatusNext:      {StatusReading, StatusSuggested},
	StatusReading:   {StatusCompleted},
}

func (s Status) Valid() bool {
	switch s {
	case StatusSuggested, StatusVoting, StatusNext, StatusReading, StatusCompleted:
		return true
	default:
		return false
	}
}

func (s Status) CanMoveTo(to Status) bool {
	for _, allowed := range transitions[s] {
		if allowed == to {
			return true
		}
	}
	return false
}

type ClubBook struct {
	ID            string `gorm:"type:uuid;primaryKey"`
	ClubID        string `gorm:"type:uuid;not null;index"`
	BookID        string `gorm:"type:uuid;not null"`
	Status        Status `gorm:"size:16;not null;default:suggested"`
	SuggestedByID *string
	VotingRoundID *string `gorm:"type:uuid"`
	Notes         *string
	StartedAt     *time.Time
	CompletedAt   *time.Time
	CreatedAt     time.Time      `gorm:"autoCreateTime"`
	UpdatedAt     time.Time      `gorm:"autoUpdateTime"`
	DeletedAt     gorm.DeletedAt `gorm:"index"`

	Book *booksdomain.Book `gorm:"foreignKey:BookID;references:ID"`
}

// moveTo applies a status transition and its timestamp side effects.
// started_at and completed_at are only set the first time.
func (cb *ClubBook) moveTo(to Status, now time.Time) error {
	if !cb.Status.CanMoveTo(to) {
		return ErrInvalidTransition
	}

	cb.Status = to
	switch to {
	case StatusReading:
		if cb.StartedAt == nil {
			started := now
			cb.StartedAt = &started
		}
	case StatusCompleted:
		if cb.CompletedAt == nil {
			completed := now
			cb.CompletedAt = &completed
		}
	}
	if to != StatusVoting {
		cb.VotingRoundID = nil
	}
	return nil
}

type VotingRound struct {
	ID               string    `gorm:"type:uuid;primaryKey"`
	ClubID           string    `gorm:"type:uuid;not null"`
	OpenedBy         string    `gorm:"not null"`
	OpenedAt         time.Time `gorm:"not null"`
	Deadline         time.Time `gorm:"not null"`
	ClosedAt         *time.Time
	WinnerClubBookID *string `gorm:"type:uuid"`
}

func (r *VotingRound) Open() bool {
	return r.ClosedAt == nil
}

func (r *VotingRound) DeadlinePassed(now time.Time) bool {
	return now.After(r.Deadline)
}

type Vote struct {
	ID         string    `gorm:"type:uuid;primaryKey"`
	RoundID    string    `gorm:"type:uuid;not null"`
	ClubBookID string    `gorm:"type:uuid;not null"`
	UserID     string    `gorm:"not null"`
	CreatedAt  time.Time `gorm:"autoCreateTime"`
}

type Tally struct {
	ClubBook ClubBook
	Votes    int
}

type Board struct {
	Reading   *ClubBook
	Next      *ClubBook
	Suggested []ClubBook
	Voting    []Tally
	Round     *VotingRound
	UserVote  *Vote
	Completed []ClubBook
}

type EndVotingResult struct {
	Round   VotingRound
	Winner  ClubBook
	Tallies []Tally
}

// LockMode selects the row lock taken when reading a voting round.
type LockMode int

const (
	LockNone LockMode = iota
	LockShare
	LockUpdate
)
