package meetings

import "book-club-go/internal/domain/apperr"

var (
	ErrMeetingNotFound = apperr.New(apperr.KindNotFound, "meeting_not_found", "meeting not found")
	ErrRsvpNotFound    = apperr.New(apperr.KindNotFound, "rsvp_not_found", "rsvp not found")
	ErrCommentNotFound = apperr.New(apperr.KindNotFound, "comment_not_found", "comment not found")
	ErrClubBookMissing = apperr.New(apperr.KindNotFound, "club_book_not_found", "book not found in this club")

	ErrInvalidTransition         = apperr.New(apperr.KindConflict, "invalid_transition", "meeting state change not allowed")
	ErrRegenerationLimitExceeded = apperr.New(apperr.KindConflict, "regeneration_limit_exceeded", "question regeneration limit reached")
	ErrAlreadyCheckedIn          = apperr.New(apperr.KindConflict, "already_checked_in", "already checked in")
	ErrNotCheckedIn              = apperr.New(apperr.KindConflict, "not_checked_in", "not checked in")
	ErrNotAttending              = apperr.New(apperr.KindConflict, "not_attending", "check-in requires a yes rsvp")
	ErrNoBook                    = apperr.New(apperr.KindConflict, "no_book", "meeting has no book")
	ErrCommentsClosed            = apperr.New(apperr.KindValidation, "comments_closed", "meeting must be live or ended to comment")
)
