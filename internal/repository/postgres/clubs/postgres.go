package clubs

import (
	"context"
	"errors"
	"time"

	clubsdomain "book-club-go/internal/domain/clubs"
	"book-club-go/internal/repository/postgres/pgerr"
	"gorm.io/gorm"
)

type PostgresRepository struct {
	db *gorm.DB
}

func NewPostgres(db *gorm.DB) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) Transaction(ctx context.Context, fn func(clubsdomain.Repository) error) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&PostgresRepository{db: tx})
	})
}

func (r *PostgresRepository) LockClub(ctx context.Context, clubID string) error {
	return r.db.WithContext(ctx).Exec("SELECT pg_advisory_xact_lock(hashtext(?))", "club-members:"+clubID).Error
}

func (r *PostgresRepository) CreateClub(ctx context.Context, club *clubsdomain.Club) error {
	return r.db.WithContext(ctx).Create(club).Error
}

func (r *PostgresRepository) GetClub(ctx context.Context, clubID string) (*clubsdomain.Club, error) {
	var club clubsdomain.Club
	if err := r.db.WithContext(ctx).Where("id = ?", clubID).First(&club).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, clubsdomain.ErrClubNotFound
		}
		return nil, err
	}
	return &club, nil
}

func (r *PostgresRepository) GetClubByInviteCode(ctx context.Context, code string) (*clubsdomain.Club, error) {
	var club clubsdomain.Club
	if err := r.db.WithContext(ctx).Where("invite_code = ?", code).First(&club).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, clubsdomain.ErrClubNotFound
		}
		return nil, err
	}
	return &club, nil
}

func (r *PostgresRepository) UpdateClub(ctx context.Context, club *clubsdomain.Club) error {
	return r.db.WithContext(ctx).
		Model(&clubsdomain.Club{}).
		Where("id = ?", club.ID).
		Updates(map[string]interface{}{
			"name":        club.Name,
			"description": club.Description,
			"privacy":     club.Privacy,
			"language":    club.Language,
			"timezone":    club.Timezone,
		}).Error
}

func (r *PostgresRepository) DeleteClub(ctx context.Context, clubID string) error {
	return r.db.WithContext(ctx).Delete(&clubsdomain.Club{}, "id = ?", clubID).Error
}

func (r *PostgresRepository) ListClubsForUser(ctx context.Context, userID string) ([]clubsdomain.Club, error) {
	var clubs []clubsdomain.Club
	if err := r.db.WithContext(ctx).
		Joins("join memberships on memberships.club_id = clubs.id and memberships.deleted_at is null").
		Where("memberships.user_id = ?", userID).
		Order("clubs.name asc").
		Find(&clubs).Error; err != nil {
		return nil, err
	}
	return clubs, nil
}

func (r *PostgresRepository) IsInviteCodeTaken(ctx context.Context, code string) (bool, error) {
	var count int64
	if err := r.db.WithContext(ctx).
		Unscoped().
		Model(&clubsdomain.Club{}).
		Where("invite_code = ?", code).
		Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

func (r *PostgresRepository) UpdateInvite(ctx context.Context, clubID, code string, expiresAt time.Time) error {
	return r.db.WithContext(ctx).
		Model(&clubsdomain.Club{}).
		Where("id = ?", clubID).
		Updates(map[string]interface{}{
			"invite_code":       code,
			"invite_expires_at": expiresAt,
			"invite_used_at":    nil,
		}).Error
}

func (r *PostgresRepository) MarkInviteUsed(ctx context.Context, clubID string, at time.Time) error {
	return r.db.WithContext(ctx).
		Model(&clubsdomain.Club{}).
		Where("id = ?", clubID).
		Update("invite_used_at", at).Error
}

func (r *PostgresRepository) AddMembership(ctx context.Context, membership *clubsdomain.Membership) error {
	err := r.db.WithContext(ctx).Create(membership).Error
	if pgerr.IsUniqueViolation(err) {
		return clubsdomain.ErrAlreadyMember
	}
	return err
}

func (r *PostgresRepository) GetMembership(ctx context.Context, clubID, userID string) (*clubsdomain.Membership, error) {
	var membership clubsdomain.Membership
	if err := r.db.WithContext(ctx).
		Where("club_id = ? AND user_id = ?", clubID, userID).
		First(&membership).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, clubsdomain.ErrMemberNotFound
		}
		return nil, err
	}
	return &membership, nil
}

func (r *PostgresRepository) ListMembers(ctx context.Context, clubID string) ([]clubsdomain.MemberProfile, error) {
	type memberRow struct {
		UserID    string    `gorm:"column:user_id"`
		Role      string    `gorm:"column:role"`
		JoinedAt  time.Time `gorm:"column:joined_at"`
		Email     *string   `gorm:"column:email"`
		Name      *string   `gorm:"column:name"`
		AvatarURL *string   `gorm:"column:avatar_url"`
	}

	var rows []memberRow
	if err := r.db.WithContext(ctx).
		Table("memberships").
		Select("memberships.user_id, memberships.role, memberships.created_at as joined_at, user_profiles.email, user_profiles.name, user_profiles.avatar_url").
		Joins("left join user_profiles on user_profiles.user_id = memberships.user_id").
		Where("memberships.club_id = ? AND memberships.deleted_at IS NULL", clubID).
		Order("memberships.created_at asc").
		Scan(&rows).Error; err != nil {
		return nil, err
	}

	members := make([]clubsdomain.MemberProfile, 0, len(rows))
	for _, row := range rows {
		members = append(members, clubsdomain.MemberProfile{
			UserID:    row.UserID,
			Role:      row.Role,
			JoinedAt:  row.JoinedAt,
			Email:     row.Email,
			Name:      row.Name,
			AvatarURL: row.AvatarURL,
		})
	}
	return members, nil
}

func (r *PostgresRepository) CountAdmins(ctx context.Context, clubID string) (int64, error) {
	var count int64
	if err := r.db.WithContext(ctx).
		Model(&clubsdomain.Membership{}).
		Where("club_id = ? AND role = ?", clubID, clubsdomain.RoleAdmin).
		Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

func (r *PostgresRepository) UpdateMembershipRole(ctx context.Context, clubID, userID, role string) error {
	return r.db.WithContext(ctx).
		Model(&clubsdomain.Membership{}).
		Where("club_id = ? AND user_id = ?", clubID, userID).
		Update("role", role).Error
}

func (r *PostgresRepository) DeleteMembership(ctx context.Context, clubID, userID string) error {
	return r.db.WithContext(ctx).Delete(&clubsdomain.Membership{}, "club_id = ? AND user_id = ?", clubID, userID).Error
}
