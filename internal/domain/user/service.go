package user

import (
	"context"
	"strings"

	"book-club-go/internal/domain/apperr"
)

type Service struct {
	repo Repository
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

// Identity is what the auth layer knows about the caller. Empty fields keep
// the stored values.
type Identity struct {
	UserID    string
	Email     string
	Name      string
	AvatarURL string
}

func (s *Service) UpsertProfile(ctx context.Context, identity Identity) error {
	if strings.TrimSpace(identity.UserID) == "" {
		return apperr.Invalid("user_id", "is required")
	}

	return s.repo.UpsertProfile(ctx, &Profile{
		UserID:    identity.UserID,
		Email:     optional(identity.Email),
		Name:      optional(identity.Name),
		AvatarURL: optional(identity.AvatarURL),
	})
}

func (s *Service) GetProfile(ctx context.Context, userID string) (*Profile, error) {
	return s.repo.GetProfile(ctx, userID)
}

func optional(value string) *string {
	value = strings.TrimSpace(value)
	if value == "" {
		return nil
	}
	return &value
}
