package selection

import (
	"context"
	"sort"
	"sync"
	"time"

	"book-club-go/internal/domain/apperr"
	booksdomain "book-club-go/internal/domain/books"
	clubsdomain "book-club-go/internal/domain/clubs"
	"book-club-go/internal/domain/events"
)

// fakeSelectionRepo serializes transactions and rolls back on error so the
// concurrency tests observe the same isolation a row lock would give.
type fakeSelectionRepo struct {
	txMu sync.Mutex
	mu   sync.Mutex

	seq       int
	clubBooks map[string]*ClubBook
	created   map[string]int
	rounds    map[string]*VotingRound
	votes     map[string]*Vote
	deadlines map[string]*time.Time
	locks     int
}

func newFakeSelectionRepo() *fakeSelectionRepo {
	return &fakeSelectionRepo{
		clubBooks: make(map[string]*ClubBook),
		created:   make(map[string]int),
		rounds:    make(map[string]*VotingRound),
		votes:     make(map[string]*Vote),
		deadlines: make(map[string]*time.Time),
	}
}

type fakeSnapshot struct {
	clubBooks map[string]ClubBook
	rounds    map[string]VotingRound
	votes     map[string]Vote
	deadlines map[string]*time.Time
}

func (r *fakeSelectionRepo) snapshot() fakeSnapshot {
	r.mu.Lock()
	defer r.mu.Unlock()
	snap := fakeSnapshot{
		clubBooks: make(map[string]ClubBook, len(r.clubBooks)),
		rounds:    make(map[string]VotingRound, len(r.rounds)),
		votes:     make(map[string]Vote, len(r.votes)),
		deadlines: make(map[string]*time.Time, len(r.deadlines)),
	}
	for id, cb := range r.clubBooks {
		snap.clubBooks[id] = *cb
	}
	for id, round := range r.rounds {
		snap.rounds[id] = *round
	}
	for id, vote := range r.votes {
		snap.votes[id] = *vote
	}
	for id, deadline := range r.deadlines {
		snap.deadlines[id] = deadline
	}
	return snap
}

func (r *fakeSelectionRepo) restore(snap fakeSnapshot) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.clubBooks = make(map[string]*ClubBook, len(snap.clubBooks))
	for id, cb := range snap.clubBooks {
		copied := cb
		r.clubBooks[id] = &copied
	}
	r.rounds = make(map[string]*VotingRound, len(snap.rounds))
	for id, round := range snap.rounds {
		copied := round
		r.rounds[id] = &copied
	}
	r.votes = make(map[string]*Vote, len(snap.votes))
	for id, vote := range snap.votes {
		copied := vote
		r.votes[id] = &copied
	}
	r.deadlines = snap.deadlines
}

func (r *fakeSelectionRepo) Transaction(ctx context.Context, fn func(Repository) error) error {
	r.txMu.Lock()
	defer r.txMu.Unlock()

	snap := r.snapshot()
	if err := fn(r); err != nil {
		r.restore(snap)
		return err
	}
	return nil
}

func (r *fakeSelectionRepo) LockClub(ctx context.Context, clubID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.locks++
	return nil
}

func (r *fakeSelectionRepo) GetClubBook(ctx context.Context, clubID, clubBookID string) (*ClubBook, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	cb, ok := r.clubBooks[clubBookID]
	if !ok || cb.ClubID != clubID || cb.DeletedAt.Valid {
		return nil, ErrClubBookNotFound
	}
	copied := *cb
	return &copied, nil
}

func (r *fakeSelectionRepo) ordered(clubID string, status Status) []ClubBook {
	result := make([]ClubBook, 0)
	for _, cb := range r.clubBooks {
		if cb.ClubID == clubID && cb.Status == status && !cb.DeletedAt.Valid {
			result = append(result, *cb)
		}
	}
	sort.Slice(result, func(i, j int) bool {
		return r.created[result[i].ID] < r.created[result[j].ID]
	})
	return result
}

func (r *fakeSelectionRepo) FindByStatus(ctx context.Context, clubID string, status Status) (*ClubBook, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	found := r.ordered(clubID, status)
	if len(found) == 0 {
		return nil, ErrClubBookNotFound
	}
	return &found[0], nil
}

func (r *fakeSelectionRepo) ListByStatus(ctx context.Context, clubID string, status Status) ([]ClubBook, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.ordered(clubID, status), nil
}

func (r *fakeSelectionRepo) CountByStatus(ctx context.Context, clubID string, status Status) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return int64(len(r.ordered(clubID, status))), nil
}

func (r *fakeSelectionRepo) CreateClubBook(ctx context.Context, clubBook *ClubBook) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, cb := range r.clubBooks {
		if cb.DeletedAt.Valid || cb.ClubID != clubBook.ClubID {
			continue
		}
		if cb.BookID == clubBook.BookID {
			return ErrDuplicateBook
		}
		if clubBook.Status == StatusNext && cb.Status == StatusNext {
			return ErrNextAlreadyQueued
		}
	}
	copied := *clubBook
	copied.Book = nil
	r.seq++
	r.created[copied.ID] = r.seq
	r.clubBooks[copied.ID] = &copied
	return nil
}

func (r *fakeSelectionRepo) SaveStatus(ctx context.Context, clubBook *ClubBook) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	stored, ok := r.clubBooks[clubBook.ID]
	if !ok {
		return ErrClubBookNotFound
	}
	if clubBook.Status == StatusNext {
		for _, cb := range r.clubBooks {
			if cb.ID != clubBook.ID && cb.ClubID == clubBook.ClubID && cb.Status == StatusNext && !cb.DeletedAt.Valid {
				return ErrNextAlreadyQueued
			}
		}
	}
	stored.Status = clubBook.Status
	stored.VotingRoundID = clubBook.VotingRoundID
	stored.StartedAt = clubBook.StartedAt
	stored.CompletedAt = clubBook.CompletedAt
	return nil
}

func (r *fakeSelectionRepo) SoftDeleteClubBook(ctx context.Context, clubBookID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	cb, ok := r.clubBooks[clubBookID]
	if !ok {
		return ErrClubBookNotFound
	}
	cb.DeletedAt.Time = time.Now()
	cb.DeletedAt.Valid = true
	return nil
}

func (r *fakeSelectionRepo) GetOpenRound(ctx context.Context, clubID string, lock LockMode) (*VotingRound, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, round := range r.rounds {
		if round.ClubID == clubID && round.Open() {
			copied := *round
			return &copied, nil
		}
	}
	return nil, ErrNoActiveVotingRound
}

func (r *fakeSelectionRepo) CreateRound(ctx context.Context, round *VotingRound) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, existing := range r.rounds {
		if existing.ClubID == round.ClubID && existing.Open() {
			return ErrVotingInProgress
		}
	}
	copied := *round
	r.rounds[round.ID] = &copied
	return nil
}

func (r *fakeSelectionRepo) CloseRound(ctx context.Context, roundID string, closedAt time.Time, winnerID *string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	round, ok := r.rounds[roundID]
	if !ok {
		return ErrNoActiveVotingRound
	}
	round.ClosedAt = &closedAt
	round.WinnerClubBookID = winnerID
	return nil
}

func (r *fakeSelectionRepo) MoveSuggestedToVoting(ctx context.Context, clubID, roundID string) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var moved int64
	for _, cb := range r.clubBooks {
		if cb.ClubID == clubID && cb.Status == StatusSuggested && !cb.DeletedAt.Valid {
			id := roundID
			cb.Status = StatusVoting
			cb.VotingRoundID = &id
			moved++
		}
	}
	return moved, nil
}

func (r *fakeSelectionRepo) LockVotingBooks(ctx context.Context, clubID, roundID string) ([]ClubBook, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	result := make([]ClubBook, 0)
	for _, cb := range r.ordered(clubID, StatusVoting) {
		if cb.VotingRoundID != nil && *cb.VotingRoundID == roundID {
			result = append(result, cb)
		}
	}
	return result, nil
}

func (r *fakeSelectionRepo) CountVotes(ctx context.Context, roundID string) (map[string]int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	counts := make(map[string]int)
	for _, vote := range r.votes {
		if vote.RoundID == roundID {
			counts[vote.ClubBookID]++
		}
	}
	return counts, nil
}

func (r *fakeSelectionRepo) GetUserVote(ctx context.Context, roundID, userID string) (*Vote, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, vote := range r.votes {
		if vote.RoundID == roundID && vote.UserID == userID {
			copied := *vote
			return &copied, nil
		}
	}
	return nil, ErrVoteNotFound
}

func (r *fakeSelectionRepo) CreateVote(ctx context.Context, vote *Vote) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, existing := range r.votes {
		if existing.RoundID == vote.RoundID && existing.UserID == vote.UserID {
			return ErrAlreadyVoted
		}
	}
	copied := *vote
	r.votes[vote.ID] = &copied
	return nil
}

func (r *fakeSelectionRepo) DeleteVotes(ctx context.Context, roundID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for id, vote := range r.votes {
		if vote.RoundID == roundID {
			delete(r.votes, id)
		}
	}
	return nil
}

func (r *fakeSelectionRepo) SetClubVotingDeadline(ctx context.Context, clubID string, deadline *time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.deadlines[clubID] = deadline
	return nil
}

func (r *fakeSelectionRepo) seed(clubID, bookID string, status Status) *ClubBook {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.seq++
	cb := &ClubBook{ID: "cb-" + bookID, ClubID: clubID, BookID: bookID, Status: status}
	r.created[cb.ID] = r.seq
	r.clubBooks[cb.ID] = cb
	return cb
}

func (r *fakeSelectionRepo) status(clubBookID string) Status {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.clubBooks[clubBookID].Status
}

func (r *fakeSelectionRepo) stored(clubBookID string) ClubBook {
	r.mu.Lock()
	defer r.mu.Unlock()
	return *r.clubBooks[clubBookID]
}

func (r *fakeSelectionRepo) voteCount() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.votes)
}

func (r *fakeSelectionRepo) countStatus(clubID string, status Status) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.ordered(clubID, status))
}

type fakeGuard struct {
	admins  map[string]bool
	members map[string]bool
}

func newFakeGuard() *fakeGuard {
	return &fakeGuard{
		admins:  map[string]bool{"admin": true},
		members: map[string]bool{"admin": true, "u1": true, "u2": true, "u3": true},
	}
}

func (g *fakeGuard) Authorize(ctx context.Context, clubID, userID, role string) (*clubsdomain.Club, error) {
	if !g.members[userID] {
		return nil, apperr.ErrForbidden
	}
	if role == clubsdomain.RoleAdmin && !g.admins[userID] {
		return nil, apperr.ErrForbidden
	}
	return &clubsdomain.Club{ID: clubID, Timezone: "UTC"}, nil
}

type fakeResolver struct{}

func (fakeResolver) ResolveBook(ctx context.Context, input booksdomain.ResolveInput) (*booksdomain.Book, error) {
	if input.GoogleBooksID != "" {
		id := input.GoogleBooksID
		return &booksdomain.Book{ID: "book-" + id, Title: "Imported", GoogleBooksID: &id}, nil
	}
	if input.Title == "" {
		return nil, apperr.Invalid("title", "is required")
	}
	return &booksdomain.Book{ID: "book-" + input.Title, Title: input.Title}, nil
}

type recordingNotifier struct {
	mu     sync.Mutex
	events []events.Event
}

func (n *recordingNotifier) Publish(ctx context.Context, event events.Event) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.events = append(n.events, event)
}

func (n *recordingNotifier) count(eventType string) int {
	n.mu.Lock()
	defer n.mu.Unlock()
	total := 0
	for _, event := range n.events {
		if event.Type == eventType {
			total++
		}
	}
	return total
}
