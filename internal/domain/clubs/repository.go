package clubs

import (
	"context"
	"time"
)

type Repository interface {
	Transaction(ctx context.Context, fn func(Repository) error) error
	// LockClub serializes membership changes of one club until the
	// surrounding transaction ends.
	LockClub(ctx context.Context, clubID string) error
	CreateClub(ctx context.Context, club *Club) error
	GetClub(ctx context.Context, clubID string) (*Club, error)
	GetClubByInviteCode(ctx context.Context, code string) (*Club, error)
	UpdateClub(ctx context.Context, club *Club) error
	DeleteClub(ctx context.Context, clubID string) error
	ListClubsForUser(ctx context.Context, userID string) ([]Club, error)
	IsInviteCodeTaken(ctx context.Context, code string) (bool, error)
	UpdateInvite(ctx context.Context, clubID, code string, expiresAt time.Time) error
	MarkInviteUsed(ctx context.Context, clubID string, at time.Time) error

	AddMembership(ctx context.Context, membership *Membership) error
	GetMembership(ctx context.Context, clubID, userID string) (*Membership, error)
	ListMembers(ctx context.Context, clubID string) ([]MemberProfile, error)
	CountAdmins(ctx context.Context, clubID string) (int64, error)
	UpdateMembershipRole(ctx context.Context, clubID, userID, role string) error
	DeleteMembership(ctx context.Context, clubID, userID string) error
}
