package clubs

import (
	"context"
	"crypto/rand"
	"errors"
	"math/big"
	"strings"
	"time"

	"book-club-go/internal/domain/apperr"
	"github.com/google/uuid"
)

const (
	inviteCodeLength   = 8
	inviteCodeAttempts = 10
	inviteValidity     = 14 * 24 * time.Hour

	maxNameLength        = 100
	maxDescriptionLength = 500
)

type Service struct {
	repo Repository
	now  func() time.Time
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo, now: time.Now}
}

// IsMember reports whether the user holds an active membership.
func (s *Service) IsMember(ctx context.Context, clubID, userID string) (bool, error) {
	_, err := s.repo.GetMembership(ctx, clubID, userID)
	if errors.Is(err, ErrMemberNotFound) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

func (s *Service) IsAdmin(ctx context.Context, clubID, userID string) (bool, error) {
	membership, err := s.repo.GetMembership(ctx, clubID, userID)
	if errors.Is(err, ErrMemberNotFound) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return membership.IsAdmin(), nil
}

// Authorize loads the club and checks that the user holds at least role.
// Non-members and members lacking the role get apperr.ErrForbidden.
func (s *Service) Authorize(ctx context.Context, clubID, userID, role string) (*Club, error) {
	club, err := s.repo.GetClub(ctx, clubID)
	if err != nil {
		return nil, err
	}

	membership, err := s.repo.GetMembership(ctx, clubID, userID)
	if errors.Is(err, ErrMemberNotFound) {
		return nil, apperr.ErrForbidden
	}
	if err != nil {
		return nil, err
	}
	if role == RoleAdmin && !membership.IsAdmin() {
		return nil, apperr.ErrForbidden
	}
	return club, nil
}

func (s *Service) GetClub(ctx context.Context, clubID, userID string) (*Club, error) {
	return s.Authorize(ctx, clubID, userID, RoleMember)
}

func (s *Service) ListClubsForUser(ctx context.Context, userID string) ([]Club, error) {
	return s.repo.ListClubsForUser(ctx, userID)
}

func (s *Service) CreateClub(ctx context.Context, userID string, input CreateClubInput) (*Club, error) {
	club := Club{CreatedBy: userID}
	if err := applyClubFields(&club, input.Name, input.Description, input.Privacy, input.Language, input.Timezone); err != nil {
		return nil, err
	}

	err := s.repo.Transaction(ctx, func(tx Repository) error {
		code, err := generateUniqueCode(ctx, tx)
		if err != nil {
			return err
		}

		expires := s.now().Add(inviteValidity)
		club.ID = uuid.NewString()
		club.InviteCode = code
		club.InviteExpiresAt = &expires
		if err := tx.CreateClub(ctx, &club); err != nil {
			return err
		}

		return tx.AddMembership(ctx, &Membership{
			ID:     uuid.NewString(),
			ClubID: club.ID,
			UserID: userID,
			Role:   RoleAdmin,
		})
	})
	if err != nil {
		return nil, err
	}

	return &club, nil
}

func (s *Service) UpdateClub(ctx context.Context, clubID, userID string, input UpdateClubInput) (*Club, error) {
	club, err := s.Authorize(ctx, clubID, userID, RoleAdmin)
	if err != nil {
		return nil, err
	}

	name := club.Name
	if input.Name != nil {
		name = *input.Name
	}
	description := club.Description
	if input.Description != nil {
		description = input.Description
	}
	privacy := club.Privacy
	if input.Privacy != nil {
		privacy = *input.Privacy
	}
	lang := club.Language
	if input.Language != nil {
		lang = *input.Language
	}
	timezone := club.Timezone
	if input.Timezone != nil {
		timezone = *input.Timezone
	}

	if err := applyClubFields(club, name, description, privacy, lang, timezone); err != nil {
		return nil, err
	}
	if err := s.repo.UpdateClub(ctx, club); err != nil {
		return nil, err
	}
	return club, nil
}

func (s *Service) DeleteClub(ctx context.Context, clubID, userID string) error {
	if _, err := s.Authorize(ctx, clubID, userID, RoleAdmin); err != nil {
		return err
	}
	return s.repo.DeleteClub(ctx, clubID)
}

// JoinOpenClub adds the user as a member of a club whose privacy is open.
func (s *Service) JoinOpenClub(ctx context.Context, clubID, userID string) (*Club, error) {
	var result *Club
	err := s.repo.Transaction(ctx, func(tx Repository) error {
		club, err := tx.GetClub(ctx, clubID)
		if err != nil {
			return err
		}
		if err := ensureNotMember(ctx, tx, clubID, userID); err != nil {
			return err
		}
		if club.Privacy != PrivacyOpen {
			return ErrClubNotOpen
		}
		if err := tx.AddMembership(ctx, newMember(clubID, userID)); err != nil {
			return err
		}
		result = club
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

// JoinByInvite redeems an invite code. A redeemed code cannot be used again
// until an admin regenerates it.
func (s *Service) JoinByInvite(ctx context.Context, userID, code string) (*Club, error) {
	code = strings.ToLower(strings.TrimSpace(code))
	if code == "" {
		return nil, apperr.Invalid("code", "is required")
	}

	var result *Club
	err := s.repo.Transaction(ctx, func(tx Repository) error {
		club, err := tx.GetClubByInviteCode(ctx, code)
		if err != nil {
			return err
		}
		now := s.now()
		if !club.InviteValid(now) {
			return ErrInviteInvalid
		}
		if err := ensureNotMember(ctx, tx, club.ID, userID); err != nil {
			return err
		}
		if err := tx.AddMembership(ctx, newMember(club.ID, userID)); err != nil {
			return err
		}
		if err := tx.MarkInviteUsed(ctx, club.ID, now); err != nil {
			return err
		}
		club.InviteUsedAt = &now
		result = club
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

// PreviewInvite resolves an invite code without redeeming it.
func (s *Service) PreviewInvite(ctx context.Context, code string) (*Club, error) {
	club, err := s.repo.GetClubByInviteCode(ctx, strings.ToLower(strings.TrimSpace(code)))
	if err != nil {
		return nil, err
	}
	if !club.InviteValid(s.now()) {
		return nil, ErrInviteInvalid
	}
	return club, nil
}

func (s *Service) RegenerateInvite(ctx context.Context, clubID, userID string) (*Club, error) {
	club, err := s.Authorize(ctx, clubID, userID, RoleAdmin)
	if err != nil {
		return nil, err
	}

	err = s.repo.Transaction(ctx, func(tx Repository) error {
		code, err := generateUniqueCode(ctx, tx)
		if err != nil {
			return err
		}
		expires := s.now().Add(inviteValidity)
		if err := tx.UpdateInvite(ctx, clubID, code, expires); err != nil {
			return err
		}
		club.InviteCode = code
		club.InviteExpiresAt = &expires
		club.InviteUsedAt = nil
		return nil
	})
	if err != nil {
		return nil, err
	}
	return club, nil
}

func (s *Service) LeaveClub(ctx context.Context, clubID, userID string) error {
	return s.repo.Transaction(ctx, func(tx Repository) error {
		if err := tx.LockClub(ctx, clubID); err != nil {
			return err
		}
		membership, err := tx.GetMembership(ctx, clubID, userID)
		if err != nil {
			return err
		}
		if membership.IsAdmin() {
			admins, err := tx.CountAdmins(ctx, clubID)
			if err != nil {
				return err
			}
			if admins <= 1 {
				return ErrLastAdmin
			}
		}
		return tx.DeleteMembership(ctx, clubID, userID)
	})
}

func (s *Service) ListMembers(ctx context.Context, clubID, userID string) ([]MemberProfile, error) {
	if _, err := s.Authorize(ctx, clubID, userID, RoleMember); err != nil {
		return nil, err
	}
	return s.repo.ListMembers(ctx, clubID)
}

func (s *Service) RemoveMember(ctx context.Context, clubID, actorID, targetID string) error {
	if _, err := s.Authorize(ctx, clubID, actorID, RoleAdmin); err != nil {
		return err
	}

	return s.repo.Transaction(ctx, func(tx Repository) error {
		target, err := tx.GetMembership(ctx, clubID, targetID)
		if err != nil {
			return err
		}
		if target.IsAdmin() {
			return ErrCannotRemoveAdmin
		}
		return tx.DeleteMembership(ctx, clubID, targetID)
	})
}

func (s *Service) PromoteMember(ctx context.Context, clubID, actorID, targetID string) error {
	if _, err := s.Authorize(ctx, clubID, actorID, RoleAdmin); err != nil {
		return err
	}

	if _, err := s.repo.GetMembership(ctx, clubID, targetID); err != nil {
		return err
	}
	return s.repo.UpdateMembershipRole(ctx, clubID, targetID, RoleAdmin)
}

func applyClubFields(club *Club, name string, description *string, privacy, lang, timezone string) error {
	name = strings.TrimSpace(name)
	if name == "" {
		return apperr.Invalid("name", "is required")
	}
	if len([]rune(name)) > maxNameLength {
		return apperr.Invalid("name", "is too long")
	}

	if description != nil {
		trimmed := strings.TrimSpace(*description)
		if len([]rune(trimmed)) > maxDescriptionLength {
			return apperr.Invalid("description", "is too long")
		}
		if trimmed == "" {
			description = nil
		} else {
			description = &trimmed
		}
	}

	normalizedPrivacy, err := normalizePrivacy(privacy)
	if err != nil {
		return err
	}
	normalizedLanguage, err := NormalizeLanguage(lang)
	if err != nil {
		return err
	}
	normalizedTimezone, err := NormalizeTimezone(timezone)
	if err != nil {
		return err
	}

	club.Name = name
	club.Description = description
	club.Privacy = normalizedPrivacy
	club.Language = normalizedLanguage
	club.Timezone = normalizedTimezone
	return nil
}

func ensureNotMember(ctx context.Context, repo Repository, clubID, userID string) error {
	_, err := repo.GetMembership(ctx, clubID, userID)
	if err == nil {
		return ErrAlreadyMember
	}
	if errors.Is(err, ErrMemberNotFound) {
		return nil
	}
	return err
}

func newMember(clubID, userID string) *Membership {
	return &Membership{
		ID:     uuid.NewString(),
		ClubID: clubID,
		UserID: userID,
		Role:   RoleMember,
	}
}

func generateUniqueCode(ctx context.Context, repo Repository) (string, error) {
	for i := 0; i < inviteCodeAttempts; i++ {
		code, err := generateCode(inviteCodeLength)
		if err != nil {
			return "", err
		}
		taken, err := repo.IsInviteCodeTaken(ctx, code)
		if err != nil {
			return "", err
		}
		if !taken {
			return code, nil
		}
	}
	return "", ErrCodeGenerationFailed
}

func generateCode(length int) (string, error) {
	const alphabet = "abcdefghijklmnopqrstuvwxyz0123456789"
	max := big.NewInt(int64(len(alphabet)))

	var builder strings.Builder
	builder.Grow(length)

	for i := 0; i < length; i++ {
		n, err := rand.Int(rand.Reader, max)
		if err != nil {
			return "", err
		}
		builder.WriteByte(alphabet[n.Int64()])
	}

	return builder.String(), nil
}
