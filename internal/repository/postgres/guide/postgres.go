package guide

import (
	"context"
	"errors"

	guidedomain "book-club-go/internal/domain/guide"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type PostgresRepository struct {
	db *gorm.DB
}

func NewPostgres(db *gorm.DB) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) GetByMeeting(ctx context.Context, meetingID string) (*guidedomain.Guide, error) {
	var guide guidedomain.Guide
	if err := r.db.WithContext(ctx).Where("meeting_id = ?", meetingID).First(&guide).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, guidedomain.ErrGuideNotFound
		}
		return nil, err
	}
	return &guide, nil
}

// Save upserts on meeting_id so the first writer creates the row and later
// writers replace the item list.
func (r *PostgresRepository) Save(ctx context.Context, guide *guidedomain.Guide) error {
	return r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "meeting_id"}},
		DoUpdates: clause.AssignmentColumns([]string{"items", "updated_at"}),
	}).Create(guide).Error
}
