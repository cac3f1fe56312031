package selection

import (
	"context"
	"errors"
	"strings"
	"time"

	"book-club-go/internal/domain/access"
	booksdomain "book-club-go/internal/domain/books"
	clubsdomain "book-club-go/internal/domain/clubs"
	"book-club-go/internal/domain/events"
	"book-club-go/internal/telemetry"
	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

const defaultVotingWindow = 7 * 24 * time.Hour

// deadlineLayouts are tried in order. Layouts without a zone are read in the
// club's timezone.
var deadlineLayouts = []string{
	time.RFC3339,
	"2006-01-02T15:04",
	"2006-01-02 15:04",
	"2006-01-02",
}

// Guard resolves the club and checks the actor's role.
type Guard interface {
	Authorize(ctx context.Context, clubID, userID, role string) (*clubsdomain.Club, error)
}

// BookResolver turns catalog ids or manual fields into a stored Book.
type BookResolver interface {
	ResolveBook(ctx context.Context, input booksdomain.ResolveInput) (*booksdomain.Book, error)
}

type SuggestInput struct {
	Book  booksdomain.ResolveInput
	Notes string
}

// AddBookInput is the admin path for putting a book on the list. Status may
// be suggested, next or reading.
type AddBookInput struct {
	Book   booksdomain.ResolveInput
	Notes  string
	Status Status
}

type Service struct {
	repo     Repository
	guard    Guard
	books    BookResolver
	notifier events.Notifier
	picker   Picker
	window   time.Duration
	tracer   trace.Tracer
	now      func() time.Time
}

type ServiceOption func(*Service)

func WithNotifier(n events.Notifier) ServiceOption {
	return func(s *Service) {
		s.notifier = events.OrNoop(n)
	}
}

func WithPicker(p Picker) ServiceOption {
	return func(s *Service) {
		if p != nil {
			s.picker = p
		}
	}
}

func WithVotingWindow(window time.Duration) ServiceOption {
	return func(s *Service) {
		if window > 0 {
			s.window = window
		}
	}
}

func NewService(repo Repository, guard Guard, books BookResolver, opts ...ServiceOption) *Service {
	svc := &Service{
		repo:     repo,
		guard:    guard,
		books:    books,
		notifier: events.Noop{},
		window:   defaultVotingWindow,
		tracer:   telemetry.Tracer("selection"),
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(svc)
	}
	if svc.picker == nil {
		picker, err := NewRandomPicker()
		if err != nil {
			picker = NewSeededPicker(uint64(time.Now().UnixNano()))
		}
		svc.picker = picker
	}
	return svc
}

func (s *Service) startSpan(ctx context.Context, op, clubID string) (context.Context, trace.Span) {
	return s.tracer.Start(ctx, "selection."+op, trace.WithAttributes(attribute.String("club.id", clubID)))
}

func endSpan(span trace.Span, err error) {
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	span.End()
}

func (s *Service) GetClubBook(ctx context.Context, clubID, userID, clubBookID string) (*ClubBook, error) {
	if _, err := s.guard.Authorize(ctx, clubID, userID, clubsdomain.RoleMember); err != nil {
		return nil, err
	}
	return s.repo.GetClubBook(ctx, clubID, clubBookID)
}

// Board returns the club's list grouped by status, with the open round's
// tallies and the caller's vote when one exists.
func (s *Service) Board(ctx context.Context, clubID, userID string) (*Board, error) {
	if _, err := s.guard.Authorize(ctx, clubID, userID, clubsdomain.RoleMember); err != nil {
		return nil, err
	}

	board := &Board{}
	var err error
	if board.Reading, err = s.optionalByStatus(ctx, clubID, StatusReading); err != nil {
		return nil, err
	}
	if board.Next, err = s.optionalByStatus(ctx, clubID, StatusNext); err != nil {
		return nil, err
	}
	if board.Suggested, err = s.repo.ListByStatus(ctx, clubID, StatusSuggested); err != nil {
		return nil, err
	}
	if board.Completed, err = s.repo.ListByStatus(ctx, clubID, StatusCompleted); err != nil {
		return nil, err
	}

	round, err := s.repo.GetOpenRound(ctx, clubID, LockNone)
	if errors.Is(err, ErrNoActiveVotingRound) {
		return board, nil
	}
	if err != nil {
		return nil, err
	}
	board.Round = round

	voting, err := s.repo.ListByStatus(ctx, clubID, StatusVoting)
	if err != nil {
		return nil, err
	}
	counts, err := s.repo.CountVotes(ctx, round.ID)
	if err != nil {
		return nil, err
	}
	board.Voting = TallyVotes(voting, counts)

	vote, err := s.repo.GetUserVote(ctx, round.ID, userID)
	switch {
	case errors.Is(err, ErrVoteNotFound):
	case err != nil:
		return nil, err
	default:
		board.UserVote = vote
	}
	return board, nil
}

// Archive lists the club's completed books, most recently finished first.
func (s *Service) Archive(ctx context.Context, clubID, userID string) ([]ClubBook, error) {
	if _, err := s.guard.Authorize(ctx, clubID, userID, clubsdomain.RoleMember); err != nil {
		return nil, err
	}
	return s.repo.ListByStatus(ctx, clubID, StatusCompleted)
}

func (s *Service) optionalByStatus(ctx context.Context, clubID string, status Status) (*ClubBook, error) {
	cb, err := s.repo.FindByStatus(ctx, clubID, status)
	if errors.Is(err, ErrClubBookNotFound) {
		return nil, nil
	}
	return cb, err
}

// Suggest puts a book on the club's list as suggested. The book is resolved
// before the write transaction opens.
func (s *Service) Suggest(ctx context.Context, clubID, userID string, input SuggestInput) (_ *ClubBook, err error) {
	ctx, span := s.startSpan(ctx, "Suggest", clubID)
	defer func() { endSpan(span, err) }()

	if _, err := s.guard.Authorize(ctx, clubID, userID, clubsdomain.RoleMember); err != nil {
		return nil, err
	}
	book, err := s.books.ResolveBook(ctx, input.Book)
	if err != nil {
		return nil, err
	}

	cb := s.newClubBook(clubID, userID, book, input.Notes)
	err = s.repo.Transaction(ctx, func(tx Repository) error {
		if err := tx.LockClub(ctx, clubID); err != nil {
			return err
		}
		return tx.CreateClubBook(ctx, cb)
	})
	if err != nil {
		return nil, err
	}

	s.publishStatus(ctx, cb, "")
	return cb, nil
}

// AddBook is the admin shortcut that places a book directly as next or
// reading.
func (s *Service) AddBook(ctx context.Context, clubID, userID string, input AddBookInput) (_ *ClubBook, err error) {
	ctx, span := s.startSpan(ctx, "AddBook", clubID)
	defer func() { endSpan(span, err) }()

	status := input.Status
	if status == "" {
		status = StatusSuggested
	}
	switch status {
	case StatusSuggested, StatusNext, StatusReading:
	default:
		return nil, ErrInvalidTransition
	}

	if _, err := s.guard.Authorize(ctx, clubID, userID, clubsdomain.RoleAdmin); err != nil {
		return nil, err
	}
	book, err := s.books.ResolveBook(ctx, input.Book)
	if err != nil {
		return nil, err
	}

	cb := s.newClubBook(clubID, userID, book, input.Notes)
	var changed []*ClubBook
	err = s.repo.Transaction(ctx, func(tx Repository) error {
		if err := tx.LockClub(ctx, clubID); err != nil {
			return err
		}
		if status == StatusNext {
			if err := ensureNoOpenRound(ctx, tx, clubID); err != nil {
				return err
			}
			if err := ensureNoNext(ctx, tx, clubID, ""); err != nil {
				return err
			}
		}
		if err := tx.CreateClubBook(ctx, cb); err != nil {
			return err
		}

		switch status {
		case StatusNext:
			if err := cb.moveTo(StatusNext, s.now()); err != nil {
				return err
			}
			return tx.SaveStatus(ctx, cb)
		case StatusReading:
			changed, err = s.promote(ctx, tx, cb)
			return err
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	for _, other := range changed {
		s.publishStatus(ctx, other, "")
	}
	if status != StatusReading {
		s.publishStatus(ctx, cb, "")
	}
	return cb, nil
}

func (s *Service) newClubBook(clubID, userID string, book *booksdomain.Book, notes string) *ClubBook {
	cb := &ClubBook{
		ID:            uuid.NewString(),
		ClubID:        clubID,
		BookID:        book.ID,
		Status:        StatusSuggested,
		SuggestedByID: &userID,
		Book:          book,
	}
	if notes = strings.TrimSpace(notes); notes != "" {
		cb.Notes = &notes
	}
	return cb
}

func (s *Service) QueueNext(ctx context.Context, clubID, userID, clubBookID string) (_ *ClubBook, err error) {
	ctx, span := s.startSpan(ctx, "QueueNext", clubID)
	defer func() { endSpan(span, err) }()

	if _, err := s.guard.Authorize(ctx, clubID, userID, clubsdomain.RoleAdmin); err != nil {
		return nil, err
	}

	var cb *ClubBook
	var from Status
	err = s.repo.Transaction(ctx, func(tx Repository) error {
		if err := tx.LockClub(ctx, clubID); err != nil {
			return err
		}
		if cb, err = tx.GetClubBook(ctx, clubID, clubBookID); err != nil {
			return err
		}
		if cb.Status != StatusSuggested {
			return ErrInvalidTransition
		}
		if err := ensureNoOpenRound(ctx, tx, clubID); err != nil {
			return err
		}
		if err := ensureNoNext(ctx, tx, clubID, cb.ID); err != nil {
			return err
		}
		from = cb.Status
		if err := cb.moveTo(StatusNext, s.now()); err != nil {
			return err
		}
		return tx.SaveStatus(ctx, cb)
	})
	if err != nil {
		return nil, err
	}

	s.publishStatus(ctx, cb, from)
	return cb, nil
}

// PromoteToReading makes a suggested or next book the one being read. The
// club's current reading book is completed in the same transaction.
func (s *Service) PromoteToReading(ctx context.Context, clubID, userID, clubBookID string) (_ *ClubBook, err error) {
	ctx, span := s.startSpan(ctx, "PromoteToReading", clubID)
	defer func() { endSpan(span, err) }()

	if _, err := s.guard.Authorize(ctx, clubID, userID, clubsdomain.RoleAdmin); err != nil {
		return nil, err
	}

	var cb *ClubBook
	var changed []*ClubBook
	err = s.repo.Transaction(ctx, func(tx Repository) error {
		if err := tx.LockClub(ctx, clubID); err != nil {
			return err
		}
		if cb, err = tx.GetClubBook(ctx, clubID, clubBookID); err != nil {
			return err
		}
		changed, err = s.promote(ctx, tx, cb)
		return err
	})
	if err != nil {
		return nil, err
	}

	for _, other := range changed {
		s.publishStatus(ctx, other, "")
	}
	return cb, nil
}

// StartNextBook promotes the club's queued next book to reading.
func (s *Service) StartNextBook(ctx context.Context, clubID, userID string) (_ *ClubBook, err error) {
	ctx, span := s.startSpan(ctx, "StartNextBook", clubID)
	defer func() { endSpan(span, err) }()

	if _, err := s.guard.Authorize(ctx, clubID, userID, clubsdomain.RoleAdmin); err != nil {
		return nil, err
	}

	var cb *ClubBook
	var changed []*ClubBook
	err = s.repo.Transaction(ctx, func(tx Repository) error {
		if err := tx.LockClub(ctx, clubID); err != nil {
			return err
		}
		cb, err = tx.FindByStatus(ctx, clubID, StatusNext)
		if errors.Is(err, ErrClubBookNotFound) {
			return ErrNoNextBook
		}
		if err != nil {
			return err
		}
		changed, err = s.promote(ctx, tx, cb)
		return err
	})
	if err != nil {
		return nil, err
	}

	for _, other := range changed {
		s.publishStatus(ctx, other, "")
	}
	return cb, nil
}

// promote must run inside a transaction holding the club lock. It returns
// every ClubBook whose status changed.
func (s *Service) promote(ctx context.Context, tx Repository, cb *ClubBook) ([]*ClubBook, error) {
	if cb.Status != StatusSuggested && cb.Status != StatusNext {
		return nil, ErrInvalidTransition
	}
	now := s.now()

	var changed []*ClubBook
	current, err := tx.FindByStatus(ctx, cb.ClubID, StatusReading)
	switch {
	case errors.Is(err, ErrClubBookNotFound):
	case err != nil:
		return nil, err
	case current.ID != cb.ID:
		if err := current.moveTo(StatusCompleted, now); err != nil {
			return nil, err
		}
		if err := tx.SaveStatus(ctx, current); err != nil {
			return nil, err
		}
		changed = append(changed, current)
	}

	if err := cb.moveTo(StatusReading, now); err != nil {
		return nil, err
	}
	if err := tx.SaveStatus(ctx, cb); err != nil {
		return nil, err
	}
	return append(changed, cb), nil
}

// CancelNext returns a next book to the suggestions. An empty clubBookID
// targets the club's current next book.
func (s *Service) CancelNext(ctx context.Context, clubID, userID, clubBookID string) (_ *ClubBook, err error) {
	ctx, span := s.startSpan(ctx, "CancelNext", clubID)
	defer func() { endSpan(span, err) }()

	if _, err := s.guard.Authorize(ctx, clubID, userID, clubsdomain.RoleAdmin); err != nil {
		return nil, err
	}

	var cb *ClubBook
	err = s.repo.Transaction(ctx, func(tx Repository) error {
		if err := tx.LockClub(ctx, clubID); err != nil {
			return err
		}
		if clubBookID == "" {
			cb, err = tx.FindByStatus(ctx, clubID, StatusNext)
			if errors.Is(err, ErrClubBookNotFound) {
				return ErrNoNextBook
			}
		} else {
			cb, err = tx.GetClubBook(ctx, clubID, clubBookID)
		}
		if err != nil {
			return err
		}
		if cb.Status != StatusNext {
			return ErrNoNextBook
		}
		if err := cb.moveTo(StatusSuggested, s.now()); err != nil {
			return err
		}
		return tx.SaveStatus(ctx, cb)
	})
	if err != nil {
		return nil, err
	}

	s.publishStatus(ctx, cb, StatusNext)
	return cb, nil
}

// MarkComplete finishes the club's reading book. With nothing being read it
// reports ErrNoCurrentBook and changes nothing.
func (s *Service) MarkComplete(ctx context.Context, clubID, userID string) (_ *ClubBook, err error) {
	ctx, span := s.startSpan(ctx, "MarkComplete", clubID)
	defer func() { endSpan(span, err) }()

	if _, err := s.guard.Authorize(ctx, clubID, userID, clubsdomain.RoleAdmin); err != nil {
		return nil, err
	}

	var cb *ClubBook
	err = s.repo.Transaction(ctx, func(tx Repository) error {
		if err := tx.LockClub(ctx, clubID); err != nil {
			return err
		}
		cb, err = tx.FindByStatus(ctx, clubID, StatusReading)
		if errors.Is(err, ErrClubBookNotFound) {
			return ErrNoCurrentBook
		}
		if err != nil {
			return err
		}
		if err := cb.moveTo(StatusCompleted, s.now()); err != nil {
			return err
		}
		return tx.SaveStatus(ctx, cb)
	})
	if err != nil {
		return nil, err
	}

	s.publishStatus(ctx, cb, StatusReading)
	return cb, nil
}

// SoftDelete hides a ClubBook without touching its status. The suggester and
// club admins may delete.
func (s *Service) SoftDelete(ctx context.Context, clubID, userID, clubBookID string) (err error) {
	ctx, span := s.startSpan(ctx, "SoftDelete", clubID)
	defer func() { endSpan(span, err) }()

	if _, err := s.guard.Authorize(ctx, clubID, userID, clubsdomain.RoleMember); err != nil {
		return err
	}
	_, adminErr := s.guard.Authorize(ctx, clubID, userID, clubsdomain.RoleAdmin)
	isAdmin := adminErr == nil

	var cb *ClubBook
	err = s.repo.Transaction(ctx, func(tx Repository) error {
		if err := tx.LockClub(ctx, clubID); err != nil {
			return err
		}
		if cb, err = tx.GetClubBook(ctx, clubID, clubBookID); err != nil {
			return err
		}

		suggester := ""
		if cb.SuggestedByID != nil {
			suggester = *cb.SuggestedByID
		}
		if !access.Allowed(access.Check{
			Action:      access.ActionDelete,
			ActorID:     userID,
			AuthorID:    suggester,
			ActorAdmin:  isAdmin,
			AdminDelete: true,
		}) {
			return ErrForbidden
		}
		return tx.SoftDeleteClubBook(ctx, cb.ID)
	})
	if err != nil {
		return err
	}

	s.notifier.Publish(ctx, events.Event{
		Type:     events.TypeClubBookStatusChanged,
		ClubID:   clubID,
		EntityID: cb.ID,
		Data:     map[string]any{"status": string(cb.Status), "deleted": true},
		At:       s.now(),
	})
	return nil
}

// StartVoting opens a round over every suggested book. An empty deadline
// means now plus the configured window.
func (s *Service) StartVoting(ctx context.Context, clubID, userID, deadline string) (_ *VotingRound, err error) {
	ctx, span := s.startSpan(ctx, "StartVoting", clubID)
	defer func() { endSpan(span, err) }()

	club, err := s.guard.Authorize(ctx, clubID, userID, clubsdomain.RoleAdmin)
	if err != nil {
		return nil, err
	}

	var round *VotingRound
	err = s.repo.Transaction(ctx, func(tx Repository) error {
		if err := tx.LockClub(ctx, clubID); err != nil {
			return err
		}
		if err := ensureNoOpenRound(ctx, tx, clubID); err != nil {
			return err
		}
		if err := ensureNoNext(ctx, tx, clubID, ""); err != nil {
			if errors.Is(err, ErrNextAlreadyQueued) {
				return ErrNextBookExists
			}
			return err
		}
		suggested, err := tx.CountByStatus(ctx, clubID, StatusSuggested)
		if err != nil {
			return err
		}
		if suggested < 2 {
			return ErrInsufficientSuggestions
		}

		now := s.now()
		closesAt, err := s.parseDeadline(deadline, club.Location(), now)
		if err != nil {
			return err
		}

		round = &VotingRound{
			ID:       uuid.NewString(),
			ClubID:   clubID,
			OpenedBy: userID,
			OpenedAt: now,
			Deadline: closesAt,
		}
		if err := tx.CreateRound(ctx, round); err != nil {
			return err
		}
		if _, err := tx.MoveSuggestedToVoting(ctx, clubID, round.ID); err != nil {
			return err
		}
		return tx.SetClubVotingDeadline(ctx, clubID, &closesAt)
	})
	if err != nil {
		return nil, err
	}

	s.notifier.Publish(ctx, events.Event{
		Type:     events.TypeVotingStarted,
		ClubID:   clubID,
		EntityID: round.ID,
		Data:     map[string]any{"deadline": round.Deadline},
		At:       s.now(),
	})
	return round, nil
}

func (s *Service) parseDeadline(value string, loc *time.Location, now time.Time) (time.Time, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return now.Add(s.window), nil
	}

	for _, layout := range deadlineLayouts {
		parsed, err := time.ParseInLocation(layout, value, loc)
		if err != nil {
			continue
		}
		if !parsed.After(now) {
			return time.Time{}, ErrDeadlineNotFuture
		}
		return parsed, nil
	}
	return time.Time{}, ErrInvalidDeadline
}

// EndVoting closes the open round: the winner becomes next, the rest go back
// to suggested and the round's votes are deleted. Voting books are row
// locked before the tally, so concurrent callers serialize and the later one
// sees ErrNoActiveVotingRound.
func (s *Service) EndVoting(ctx context.Context, clubID, userID string) (_ *EndVotingResult, err error) {
	ctx, span := s.startSpan(ctx, "EndVoting", clubID)
	defer func() { endSpan(span, err) }()

	if _, err := s.guard.Authorize(ctx, clubID, userID, clubsdomain.RoleAdmin); err != nil {
		return nil, err
	}

	var result *EndVotingResult
	var emptyRound bool
	err = s.repo.Transaction(ctx, func(tx Repository) error {
		if err := tx.LockClub(ctx, clubID); err != nil {
			return err
		}
		round, err := tx.GetOpenRound(ctx, clubID, LockUpdate)
		if err != nil {
			return err
		}
		voting, err := tx.LockVotingBooks(ctx, clubID, round.ID)
		if err != nil {
			return err
		}

		now := s.now()
		if len(voting) == 0 {
			// Every candidate was deleted. Close the round so the club is
			// not stuck in voting.
			emptyRound = true
			if err := tx.DeleteVotes(ctx, round.ID); err != nil {
				return err
			}
			if err := tx.CloseRound(ctx, round.ID, now, nil); err != nil {
				return err
			}
			return tx.SetClubVotingDeadline(ctx, clubID, nil)
		}
		if err := ensureNoNext(ctx, tx, clubID, ""); err != nil {
			if errors.Is(err, ErrNextAlreadyQueued) {
				return ErrNextBookExists
			}
			return err
		}

		counts, err := tx.CountVotes(ctx, round.ID)
		if err != nil {
			return err
		}
		tallies := TallyVotes(voting, counts)
		winner, _ := SelectWinner(voting, counts, s.picker)

		for i := range voting {
			cb := &voting[i]
			to := StatusSuggested
			if cb.ID == winner.ID {
				to = StatusNext
			}
			if err := cb.moveTo(to, now); err != nil {
				return err
			}
			if err := tx.SaveStatus(ctx, cb); err != nil {
				return err
			}
			if cb.ID == winner.ID {
				winner = *cb
			}
		}

		if err := tx.DeleteVotes(ctx, round.ID); err != nil {
			return err
		}
		if err := tx.CloseRound(ctx, round.ID, now, &winner.ID); err != nil {
			return err
		}
		if err := tx.SetClubVotingDeadline(ctx, clubID, nil); err != nil {
			return err
		}

		round.ClosedAt = &now
		round.WinnerClubBookID = &winner.ID
		result = &EndVotingResult{Round: *round, Winner: winner, Tallies: tallies}
		return nil
	})
	if err != nil {
		return nil, err
	}
	if emptyRound {
		return nil, ErrNoActiveVotingRound
	}

	s.notifier.Publish(ctx, events.Event{
		Type:     events.TypeVotingEnded,
		ClubID:   clubID,
		EntityID: result.Round.ID,
		Data:     map[string]any{"winner_club_book_id": result.Winner.ID},
		At:       s.now(),
	})
	return result, nil
}

// CastVote records the user's single ballot for the open round. The
// (round, user) unique constraint decides between concurrent ballots.
func (s *Service) CastVote(ctx context.Context, clubID, userID, clubBookID string) (_ *Vote, err error) {
	ctx, span := s.startSpan(ctx, "CastVote", clubID)
	defer func() { endSpan(span, err) }()

	if _, err := s.guard.Authorize(ctx, clubID, userID, clubsdomain.RoleMember); err != nil {
		return nil, err
	}

	var vote *Vote
	err = s.repo.Transaction(ctx, func(tx Repository) error {
		round, err := tx.GetOpenRound(ctx, clubID, LockShare)
		if errors.Is(err, ErrNoActiveVotingRound) {
			return ErrNotVotingRound
		}
		if err != nil {
			return err
		}

		cb, err := tx.GetClubBook(ctx, clubID, clubBookID)
		if err != nil {
			return err
		}
		if cb.Status != StatusVoting || cb.VotingRoundID == nil || *cb.VotingRoundID != round.ID {
			return ErrNotVotingRound
		}
		if round.DeadlinePassed(s.now()) {
			return ErrDeadlinePassed
		}

		_, err = tx.GetUserVote(ctx, round.ID, userID)
		if err == nil {
			return ErrAlreadyVoted
		}
		if !errors.Is(err, ErrVoteNotFound) {
			return err
		}

		vote = &Vote{
			ID:         uuid.NewString(),
			RoundID:    round.ID,
			ClubBookID: cb.ID,
			UserID:     userID,
		}
		return tx.CreateVote(ctx, vote)
	})
	if err != nil {
		return nil, err
	}

	s.notifier.Publish(ctx, events.Event{
		Type:     events.TypeVoteCast,
		ClubID:   clubID,
		EntityID: vote.ClubBookID,
		Data:     map[string]any{"round_id": vote.RoundID},
		At:       s.now(),
	})
	return vote, nil
}

func ensureNoOpenRound(ctx context.Context, tx Repository, clubID string) error {
	_, err := tx.GetOpenRound(ctx, clubID, LockNone)
	if errors.Is(err, ErrNoActiveVotingRound) {
		return nil
	}
	if err != nil {
		return err
	}
	return ErrVotingInProgress
}

// ensureNoNext fails with ErrNextAlreadyQueued when a book other than
// exceptID is already next.
func ensureNoNext(ctx context.Context, tx Repository, clubID, exceptID string) error {
	next, err := tx.FindByStatus(ctx, clubID, StatusNext)
	if errors.Is(err, ErrClubBookNotFound) {
		return nil
	}
	if err != nil {
		return err
	}
	if next.ID != exceptID {
		return ErrNextAlreadyQueued
	}
	return nil
}

func (s *Service) publishStatus(ctx context.Context, cb *ClubBook, from Status) {
	data := map[string]any{"status": string(cb.Status)}
	if from != "" {
		data["from"] = string(from)
	}
	s.notifier.Publish(ctx, events.Event{
		Type:     events.TypeClubBookStatusChanged,
		ClubID:   cb.ClubID,
		EntityID: cb.ID,
		Data:     data,
		At:       s.now(),
	})
}
