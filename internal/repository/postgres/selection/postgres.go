package selection

import (
	"context"
	"errors"
	"time"

	clubsdomain "book-club-go/internal/domain/clubs"
	selectiondomain "book-club-go/internal/domain/selection"
	"book-club-go/internal/repository/postgres/pgerr"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type PostgresRepository struct {
	db *gorm.DB
}

func NewPostgres(db *gorm.DB) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) Transaction(ctx context.Context, fn func(selectiondomain.Repository) error) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&PostgresRepository{db: tx})
	})
}

// LockClub takes a transaction-scoped advisory lock keyed by club.
func (r *PostgresRepository) LockClub(ctx context.Context, clubID string) error {
	return r.db.WithContext(ctx).Exec("SELECT pg_advisory_xact_lock(hashtext(?))", "club:"+clubID).Error
}

func (r *PostgresRepository) GetClubBook(ctx context.Context, clubID, clubBookID string) (*selectiondomain.ClubBook, error) {
	var cb selectiondomain.ClubBook
	if err := r.db.WithContext(ctx).
		Preload("Book").
		Where("id = ? AND club_id = ?", clubBookID, clubID).
		First(&cb).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, selectiondomain.ErrClubBookNotFound
		}
		return nil, err
	}
	return &cb, nil
}

func (r *PostgresRepository) FindByStatus(ctx context.Context, clubID string, status selectiondomain.Status) (*selectiondomain.ClubBook, error) {
	var cb selectiondomain.ClubBook
	if err := r.db.WithContext(ctx).
		Preload("Book").
		Where("club_id = ? AND status = ?", clubID, status).
		Order("updated_at desc").
		First(&cb).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, selectiondomain.ErrClubBookNotFound
		}
		return nil, err
	}
	return &cb, nil
}

func (r *PostgresRepository) ListByStatus(ctx context.Context, clubID string, status selectiondomain.Status) ([]selectiondomain.ClubBook, error) {
	order := "created_at asc"
	if status == selectiondomain.StatusCompleted {
		order = "completed_at desc nulls last"
	}

	var cbs []selectiondomain.ClubBook
	if err := r.db.WithContext(ctx).
		Preload("Book").
		Where("club_id = ? AND status = ?", clubID, status).
		Order(order).
		Find(&cbs).Error; err != nil {
		return nil, err
	}
	return cbs, nil
}

func (r *PostgresRepository) CountByStatus(ctx context.Context, clubID string, status selectiondomain.Status) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&selectiondomain.ClubBook{}).
		Where("club_id = ? AND status = ?", clubID, status).
		Count(&count).Error
	return count, err
}

func (r *PostgresRepository) CreateClubBook(ctx context.Context, cb *selectiondomain.ClubBook) error {
	err := r.db.WithContext(ctx).Omit(clause.Associations).Create(cb).Error
	return mapClubBookError(err)
}

func (r *PostgresRepository) SaveStatus(ctx context.Context, cb *selectiondomain.ClubBook) error {
	err := r.db.WithContext(ctx).
		Model(&selectiondomain.ClubBook{}).
		Where("id = ?", cb.ID).
		Updates(map[string]interface{}{
			"status":          cb.Status,
			"voting_round_id": cb.VotingRoundID,
			"started_at":      cb.StartedAt,
			"completed_at":    cb.CompletedAt,
		}).Error
	return mapClubBookError(err)
}

func mapClubBookError(err error) error {
	switch {
	case err == nil:
		return nil
	case pgerr.IsUniqueViolationOn(err, "ux_club_books_club_book_active"):
		return selectiondomain.ErrDuplicateBook
	case pgerr.IsUniqueViolationOn(err, "ux_club_books_one_next"):
		return selectiondomain.ErrNextAlreadyQueued
	case pgerr.IsUniqueViolationOn(err, "ux_club_books_one_reading"):
		return selectiondomain.ErrInvalidTransition
	}
	return err
}

func (r *PostgresRepository) SoftDeleteClubBook(ctx context.Context, clubBookID string) error {
	return r.db.WithContext(ctx).Delete(&selectiondomain.ClubBook{}, "id = ?", clubBookID).Error
}

func (r *PostgresRepository) GetOpenRound(ctx context.Context, clubID string, lock selectiondomain.LockMode) (*selectiondomain.VotingRound, error) {
	query := r.db.WithContext(ctx)
	switch lock {
	case selectiondomain.LockShare:
		query = query.Clauses(clause.Locking{Strength: clause.LockingStrengthShare})
	case selectiondomain.LockUpdate:
		query = query.Clauses(clause.Locking{Strength: clause.LockingStrengthUpdate})
	}

	var round selectiondomain.VotingRound
	if err := query.Where("club_id = ? AND closed_at IS NULL", clubID).First(&round).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, selectiondomain.ErrNoActiveVotingRound
		}
		return nil, err
	}
	return &round, nil
}

func (r *PostgresRepository) CreateRound(ctx context.Context, round *selectiondomain.VotingRound) error {
	err := r.db.WithContext(ctx).Create(round).Error
	if pgerr.IsUniqueViolationOn(err, "ux_voting_rounds_one_open") {
		return selectiondomain.ErrVotingInProgress
	}
	return err
}

func (r *PostgresRepository) CloseRound(ctx context.Context, roundID string, closedAt time.Time, winnerID *string) error {
	return r.db.WithContext(ctx).
		Model(&selectiondomain.VotingRound{}).
		Where("id = ?", roundID).
		Updates(map[string]interface{}{
			"closed_at":           closedAt,
			"winner_club_book_id": winnerID,
		}).Error
}

func (r *PostgresRepository) MoveSuggestedToVoting(ctx context.Context, clubID, roundID string) (int64, error) {
	result := r.db.WithContext(ctx).
		Model(&selectiondomain.ClubBook{}).
		Where("club_id = ? AND status = ?", clubID, selectiondomain.StatusSuggested).
		Updates(map[string]interface{}{
			"status":          selectiondomain.StatusVoting,
			"voting_round_id": roundID,
		})
	return result.RowsAffected, result.Error
}

// LockVotingBooks returns the round's candidates with FOR UPDATE row locks.
func (r *PostgresRepository) LockVotingBooks(ctx context.Context, clubID, roundID string) ([]selectiondomain.ClubBook, error) {
	var cbs []selectiondomain.ClubBook
	if err := r.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: clause.LockingStrengthUpdate}).
		Where("club_id = ? AND status = ? AND voting_round_id = ?", clubID, selectiondomain.StatusVoting, roundID).
		Order("created_at asc").
		Find(&cbs).Error; err != nil {
		return nil, err
	}
	return cbs, nil
}

func (r *PostgresRepository) CountVotes(ctx context.Context, roundID string) (map[string]int, error) {
	var rows []struct {
		ClubBookID string
		Votes      int
	}
	if err := r.db.WithContext(ctx).
		Model(&selectiondomain.Vote{}).
		Select("club_book_id, count(*) as votes").
		Where("round_id = ?", roundID).
		Group("club_book_id").
		Scan(&rows).Error; err != nil {
		return nil, err
	}

	counts := make(map[string]int, len(rows))
	for _, row := range rows {
		counts[row.ClubBookID] = row.Votes
	}
	return counts, nil
}

func (r *PostgresRepository) GetUserVote(ctx context.Context, roundID, userID string) (*selectiondomain.Vote, error) {
	var vote selectiondomain.Vote
	if err := r.db.WithContext(ctx).
		Where("round_id = ? AND user_id = ?", roundID, userID).
		First(&vote).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, selectiondomain.ErrVoteNotFound
		}
		return nil, err
	}
	return &vote, nil
}

func (r *PostgresRepository) CreateVote(ctx context.Context, vote *selectiondomain.Vote) error {
	err := r.db.WithContext(ctx).Create(vote).Error
	if pgerr.IsUniqueViolationOn(err, "ux_votes_round_user") {
		return selectiondomain.ErrAlreadyVoted
	}
	return err
}

func (r *PostgresRepository) DeleteVotes(ctx context.Context, roundID string) error {
	return r.db.WithContext(ctx).Where("round_id = ?", roundID).Delete(&selectiondomain.Vote{}).Error
}

func (r *PostgresRepository) SetClubVotingDeadline(ctx context.Context, clubID string, deadline *time.Time) error {
	return r.db.WithContext(ctx).
		Model(&clubsdomain.Club{}).
		Where("id = ?", clubID).
		Update("voting_deadline", deadline).Error
}
