package clubs

import (
	"time"

	"gorm.io/gorm"
)

const (
	RoleAdmin  = "admin"
	RoleMember = "member"

	PrivacyOpen   = "open"
	PrivacyClosed = "closed"

	DefaultTimezone = "Europe/Stockholm"
	DefaultLanguage = "sv"
)

type Club struct {
	ID              string  `gorm:"type:uuid;primaryKey"`
	Name            string  `gorm:"size:100;not null"`
	Description     *string `gorm:"size:500"`
	Privacy         string  `gorm:"size:16;not null;default:closed"`
	Language        string  `gorm:"size:8;not null;default:sv"`
	Timezone        string  `gorm:"not null"`
	InviteCode      string  `gorm:"size:8;not null;uniqueIndex"`
	InviteExpiresAt *time.Time
	InviteUsedAt    *time.Time
	VotingDeadline  *time.Time
	CreatedBy       string         `gorm:"not null"`
	CreatedAt       time.Time      `gorm:"autoCreateTime"`
	UpdatedAt       time.Time      `gorm:"autoUpdateTime"`
	DeletedAt       gorm.DeletedAt `gorm:"index"`
}

// InviteValid reports whether the invite code can still be redeemed.
func (c *Club) InviteValid(now time.Time) bool {
	if c.InviteUsedAt != nil {
		return false
	}
	if c.InviteExpiresAt != nil && c.InviteExpiresAt.Before(now) {
		return false
	}
	return true
}

// Location falls back to UTC for an unknown zone.
func (c *Club) Location() *time.Location {
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return time.UTC
	}
	return loc
}

type Membership struct {
	ID        string         `gorm:"type:uuid;primaryKey"`
	ClubID    string         `gorm:"type:uuid;not null;index"`
	UserID    string         `gorm:"not null;index"`
	Role      string         `gorm:"size:16;not null;default:member"`
	CreatedAt time.Time      `gorm:"autoCreateTime"`
	UpdatedAt time.Time      `gorm:"autoUpdateTime"`
	DeletedAt gorm.DeletedAt `gorm:"index"`
}

func (m *Membership) IsAdmin() bool {
	return m.Role == RoleAdmin
}

type MemberProfile struct {
	UserID    string
	Role      string
	JoinedAt  time.Time
	Email     *string
	Name      *string
	AvatarURL *string
}

type CreateClubInput struct {
	Name        string
	Description *string
	Privacy     string
	Language    string
	Timezone    string
}

type UpdateClubInput struct {
	Name        *string
	Description *string
	Privacy     *string
	Language    *string
	Timezone    *string
}
