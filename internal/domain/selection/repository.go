package selection

import (
	"context"
	"time"
)

type Repository interface {
	Transaction(ctx context.Context, fn func(Repository) error) error
	// LockClub serializes writers on one club's book list until the
	// surrounding transaction ends.
	LockClub(ctx context.Context, clubID string) error

	GetClubBook(ctx context.Context, clubID, clubBookID string) (*ClubBook, error)
	FindByStatus(ctx context.Context, clubID string, status Status) (*ClubBook, error)
	ListByStatus(ctx context.Context, clubID string, status Status) ([]ClubBook, error)
	CountByStatus(ctx context.Context, clubID string, status Status) (int64, error)
	CreateClubBook(ctx context.Context, clubBook *ClubBook) error
	SaveStatus(ctx context.Context, clubBook *ClubBook) error
	SoftDeleteClubBook(ctx context.Context, clubBookID string) error

	GetOpenRound(ctx context.Context, clubID string, lock LockMode) (*VotingRound, error)
	CreateRound(ctx context.Context, round *VotingRound) error
	CloseRound(ctx context.Context, roundID string, closedAt time.Time, winnerID *string) error
	MoveSuggestedToVoting(ctx context.Context, clubID, roundID string) (int64, error)
	LockVotingBooks(ctx context.Context, clubID, roundID string) ([]ClubBook, error)
	CountVotes(ctx context.Context, roundID string) (map[string]int, error)
	GetUserVote(ctx context.Context, roundID, userID string) (*Vote, error)
	CreateVote(ctx context.Context, vote *Vote) error
	DeleteVotes(ctx context.Context, roundID string) error
	SetClubVotingDeadline(ctx context.Context, clubID string, deadline *time.Time) error
}
