package questions

import (
	"context"
	"time"

	questionsdomain "book-club-go/internal/domain/questions"
	"gorm.io/gorm"
)

type PostgresRepository struct {
	db *gorm.DB
}

func NewPostgres(db *gorm.DB) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) ListFresh(ctx context.Context, bookID, language string, since time.Time, limit int) ([]questionsdomain.Question, error) {
	var items []questionsdomain.Question
	err := r.db.WithContext(ctx).
		Where("book_id = ? AND language = ? AND created_at > ?", bookID, language, since).
		Order("random()").
		Limit(limit).
		Find(&items).Error
	return items, err
}

func (r *PostgresRepository) CreateQuestions(ctx context.Context, items []questionsdomain.Question) error {
	if len(items) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).Create(&items).Error
}
