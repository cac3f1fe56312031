package meetings

import (
	"context"
	"errors"
	"time"

	meetingsdomain "book-club-go/internal/domain/meetings"
	selectiondomain "book-club-go/internal/domain/selection"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type PostgresRepository struct {
	db *gorm.DB
}

func NewPostgres(db *gorm.DB) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) Transaction(ctx context.Context, fn func(meetingsdomain.Repository) error) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&PostgresRepository{db: tx})
	})
}

func (r *PostgresRepository) CreateMeeting(ctx context.Context, meeting *meetingsdomain.Meeting) error {
	return r.db.WithContext(ctx).Omit(clause.Associations).Create(meeting).Error
}

func (r *PostgresRepository) GetMeeting(ctx context.Context, clubID, meetingID string) (*meetingsdomain.Meeting, error) {
	var meeting meetingsdomain.Meeting
	if err := r.db.WithContext(ctx).
		Preload("ClubBook").
		Preload("ClubBook.Book").
		Where("id = ? AND club_id = ?", meetingID, clubID).
		First(&meeting).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, meetingsdomain.ErrMeetingNotFound
		}
		return nil, err
	}
	return &meeting, nil
}

func (r *PostgresRepository) UpdateMeeting(ctx context.Context, meeting *meetingsdomain.Meeting) error {
	return r.db.WithContext(ctx).
		Model(&meetingsdomain.Meeting{}).
		Where("id = ?", meeting.ID).
		Updates(map[string]interface{}{
			"title":         meeting.Title,
			"scheduled_at":  meeting.ScheduledAt,
			"ends_at":       meeting.EndsAt,
			"location_type": meeting.LocationType,
			"location":      meeting.Location,
			"notes":         meeting.Notes,
			"club_book_id":  meeting.ClubBookID,
			"host_id":       meeting.HostID,
		}).Error
}

func (r *PostgresRepository) SaveState(ctx context.Context, meeting *meetingsdomain.Meeting) error {
	return r.db.WithContext(ctx).
		Model(&meetingsdomain.Meeting{}).
		Where("id = ?", meeting.ID).
		Updates(map[string]interface{}{
			"state":      meeting.State,
			"started_at": meeting.StartedAt,
			"ended_at":   meeting.EndedAt,
		}).Error
}

func (r *PostgresRepository) SoftDeleteMeeting(ctx context.Context, meetingID string) error {
	return r.db.WithContext(ctx).Delete(&meetingsdomain.Meeting{}, "id = ?", meetingID).Error
}

func (r *PostgresRepository) ListUpcoming(ctx context.Context, clubID string, now time.Time) ([]meetingsdomain.Meeting, error) {
	return r.listMeetings(ctx, "club_id = ? AND scheduled_at > ?", "scheduled_at asc", clubID, now)
}

func (r *PostgresRepository) ListPast(ctx context.Context, clubID string, now time.Time) ([]meetingsdomain.Meeting, error) {
	return r.listMeetings(ctx, "club_id = ? AND scheduled_at <= ?", "scheduled_at desc", clubID, now)
}

func (r *PostgresRepository) listMeetings(ctx context.Context, where, order string, args ...interface{}) ([]meetingsdomain.Meeting, error) {
	var meetings []meetingsdomain.Meeting
	if err := r.db.WithContext(ctx).
		Preload("ClubBook").
		Preload("ClubBook.Book").
		Where(where, args...).
		Order(order).
		Find(&meetings).Error; err != nil {
		return nil, err
	}
	return meetings, nil
}

func (r *PostgresRepository) ReserveRegeneration(ctx context.Context, meetingID string, limit int) (bool, error) {
	result := r.db.WithContext(ctx).
		Model(&meetingsdomain.Meeting{}).
		Where("id = ? AND regenerate_count < ?", meetingID, limit).
		UpdateColumn("regenerate_count", gorm.Expr("regenerate_count + 1"))
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected == 1, nil
}

func (r *PostgresRepository) ReleaseRegeneration(ctx context.Context, meetingID string) error {
	return r.db.WithContext(ctx).
		Model(&meetingsdomain.Meeting{}).
		Where("id = ? AND regenerate_count > 0", meetingID).
		UpdateColumn("regenerate_count", gorm.Expr("regenerate_count - 1")).Error
}

func (r *PostgresRepository) DefaultClubBookID(ctx context.Context, clubID string) (*string, error) {
	for _, status := range []selectiondomain.Status{selectiondomain.StatusReading, selectiondomain.StatusNext} {
		var cb selectiondomain.ClubBook
		err := r.db.WithContext(ctx).
			Select("id").
			Where("club_id = ? AND status = ?", clubID, status).
			First(&cb).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			continue
		}
		if err != nil {
			return nil, err
		}
		return &cb.ID, nil
	}
	return nil, nil
}

func (r *PostgresRepository) ClubBookInClub(ctx context.Context, clubID, clubBookID string) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&selectiondomain.ClubBook{}).
		Where("id = ? AND club_id = ?", clubBookID, clubID).
		Count(&count).Error
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

func (r *PostgresRepository) GetRsvp(ctx context.Context, meetingID, userID string) (*meetingsdomain.Rsvp, error) {
	return r.getRsvp(r.db.WithContext(ctx), meetingID, userID)
}

func (r *PostgresRepository) GetRsvpForUpdate(ctx context.Context, meetingID, userID string) (*meetingsdomain.Rsvp, error) {
	return r.getRsvp(r.db.WithContext(ctx).Clauses(clause.Locking{Strength: clause.LockingStrengthUpdate}), meetingID, userID)
}

func (r *PostgresRepository) getRsvp(query *gorm.DB, meetingID, userID string) (*meetingsdomain.Rsvp, error) {
	var rsvp meetingsdomain.Rsvp
	if err := query.Where("meeting_id = ? AND user_id = ?", meetingID, userID).First(&rsvp).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, meetingsdomain.ErrRsvpNotFound
		}
		return nil, err
	}
	return &rsvp, nil
}

// SaveRsvp upserts on (meeting_id, user_id).
func (r *PostgresRepository) SaveRsvp(ctx context.Context, rsvp *meetingsdomain.Rsvp) error {
	return r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "meeting_id"}, {Name: "user_id"}},
		DoUpdates: clause.AssignmentColumns([]string{"response", "checked_in_at", "updated_at"}),
	}).Create(rsvp).Error
}

func (r *PostgresRepository) ListRsvps(ctx context.Context, meetingID string) ([]meetingsdomain.Rsvp, error) {
	var rsvps []meetingsdomain.Rsvp
	if err := r.db.WithContext(ctx).
		Where("meeting_id = ?", meetingID).
		Order("created_at asc").
		Find(&rsvps).Error; err != nil {
		return nil, err
	}
	return rsvps, nil
}

func (r *PostgresRepository) CreateComment(ctx context.Context, comment *meetingsdomain.Comment) error {
	return r.db.WithContext(ctx).Create(comment).Error
}

func (r *PostgresRepository) GetComment(ctx context.Context, meetingID, commentID string) (*meetingsdomain.Comment, error) {
	var comment meetingsdomain.Comment
	if err := r.db.WithContext(ctx).
		Where("id = ? AND meeting_id = ?", commentID, meetingID).
		First(&comment).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, meetingsdomain.ErrCommentNotFound
		}
		return nil, err
	}
	return &comment, nil
}

func (r *PostgresRepository) UpdateComment(ctx context.Context, comment *meetingsdomain.Comment) error {
	return r.db.WithContext(ctx).
		Model(&meetingsdomain.Comment{}).
		Where("id = ?", comment.ID).
		Update("content", comment.Content).Error
}

func (r *PostgresRepository) DeleteComment(ctx context.Context, commentID string) error {
	return r.db.WithContext(ctx).Delete(&meetingsdomain.Comment{}, "id = ?", commentID).Error
}

func (r *PostgresRepository) ListComments(ctx context.Context, meetingID string) ([]meetingsdomain.Comment, error) {
	var comments []meetingsdomain.Comment
	if err := r.db.WithContext(ctx).
		Where("meeting_id = ?", meetingID).
		Order("created_at asc").
		Find(&comments).Error; err != nil {
		return nil, err
	}
	return comments, nil
}
