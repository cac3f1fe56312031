package messages

import (
	"context"
	"errors"

	messagesdomain "book-club-go/internal/domain/messages"
	"gorm.io/gorm"
)

type PostgresRepository struct {
	db *gorm.DB
}

func NewPostgres(db *gorm.DB) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) List(ctx context.Context, clubID string, limit int) ([]messagesdomain.Message, error) {
	var items []messagesdomain.Message
	err := r.db.WithContext(ctx).
		Preload("Replies", func(db *gorm.DB) *gorm.DB {
			return db.Order("created_at asc")
		}).
		Where("club_id = ?", clubID).
		Order("created_at desc").
		Limit(limit).
		Find(&items).Error
	return items, err
}

func (r *PostgresRepository) GetMessage(ctx context.Context, clubID, id string) (*messagesdomain.Message, error) {
	var message messagesdomain.Message
	if err := r.db.WithContext(ctx).Where("club_id = ? AND id = ?", clubID, id).First(&message).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, messagesdomain.ErrMessageNotFound
		}
		return nil, err
	}
	return &message, nil
}

func (r *PostgresRepository) CreateMessage(ctx context.Context, message *messagesdomain.Message) error {
	return r.db.WithContext(ctx).Omit("Replies").Create(message).Error
}

func (r *PostgresRepository) UpdateMessage(ctx context.Context, message *messagesdomain.Message) error {
	return r.db.WithContext(ctx).Model(&messagesdomain.Message{}).
		Where("id = ?", message.ID).
		Updates(map[string]interface{}{
			"content":   message.Content,
			"edited_at": message.EditedAt,
		}).Error
}

// DeleteMessage relies on the foreign key cascade for replies.
func (r *PostgresRepository) DeleteMessage(ctx context.Context, id string) error {
	return r.db.WithContext(ctx).Where("id = ?", id).Delete(&messagesdomain.Message{}).Error
}

func (r *PostgresRepository) GetReply(ctx context.Context, messageID, id string) (*messagesdomain.Reply, error) {
	var reply messagesdomain.Reply
	if err := r.db.WithContext(ctx).Where("message_id = ? AND id = ?", messageID, id).First(&reply).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, messagesdomain.ErrReplyNotFound
		}
		return nil, err
	}
	return &reply, nil
}

func (r *PostgresRepository) CreateReply(ctx context.Context, reply *messagesdomain.Reply) error {
	return r.db.WithContext(ctx).Create(reply).Error
}

func (r *PostgresRepository) UpdateReply(ctx context.Context, reply *messagesdomain.Reply) error {
	return r.db.WithContext(ctx).Model(&messagesdomain.Reply{}).
		Where("id = ?", reply.ID).
		Updates(map[string]interface{}{
			"content":   reply.Content,
			"edited_at": reply.EditedAt,
		}).Error
}

func (r *PostgresRepository) DeleteReply(ctx context.Context, id string) error {
	return r.db.WithContext(ctx).Where("id = ?", id).Delete(&messagesdomain.Reply{}).Error
}
