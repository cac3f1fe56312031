package selection

import "book-club-go/internal/domain/apperr"

var (
	ErrClubBookNotFound = apperr.New(apperr.KindNotFound, "club_book_not_found", "club book not found")
	ErrVoteNotFound     = apperr.New(apperr.KindNotFound, "vote_not_found", "vote not found")

	ErrDuplicateBook           = apperr.New(apperr.KindConflict, "duplicate_book", "book is already on the club list")
	ErrNextAlreadyQueued       = apperr.New(apperr.KindConflict, "next_already_queued", "another book is already queued next")
	ErrNextBookExists          = apperr.New(apperr.KindConflict, "next_book_exists", "a next book is already queued")
	ErrInsufficientSuggestions = apperr.New(apperr.KindConflict, "insufficient_suggestions", "at least two suggestions are needed to vote")
	ErrVotingInProgress        = apperr.New(apperr.KindConflict, "voting_in_progress", "a voting round is already open")
	ErrNoActiveVotingRound     = apperr.New(apperr.KindConflict, "no_active_voting_round", "no voting round is open")
	ErrNotVotingRound          = apperr.New(apperr.KindConflict, "not_voting_round", "book is not up for vote")
	ErrDeadlinePassed          = apperr.New(apperr.KindConflict, "deadline_passed", "voting deadline has passed")
	ErrAlreadyVoted            = apperr.New(apperr.KindConflict, "already_voted", "already voted in this round")
	ErrNoNextBook              = apperr.New(apperr.KindConflict, "no_next_book", "no book is queued next")
	ErrNoCurrentBook           = apperr.New(apperr.KindConflict, "no_current_book", "no book is being read")
	ErrInvalidTransition       = apperr.New(apperr.KindConflict, "invalid_transition", "status change not allowed")

	ErrInvalidDeadline   = apperr.New(apperr.KindValidation, "invalid_deadline", "voting deadline could not be parsed")
	ErrDeadlineNotFuture = apperr.New(apperr.KindValidation, "deadline_not_future", "voting deadline must be in the future")
)

// ErrForbidden is returned when a member tries to delete a suggestion they
// did not make.
var ErrForbidden = apperr.ErrForbidden
