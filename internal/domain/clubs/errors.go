package clubs

import "book-club-go/internal/domain/apperr"

var (
	ErrClubNotFound         = apperr.New(apperr.KindNotFound, "club_not_found", "club not found")
	ErrMemberNotFound       = apperr.New(apperr.KindNotFound, "member_not_found", "member not found")
	ErrAlreadyMember        = apperr.New(apperr.KindConflict, "already_member", "already a member")
	ErrClubNotOpen          = apperr.New(apperr.KindForbidden, "club_not_open", "club is not open for joining")
	ErrInviteInvalid        = apperr.New(apperr.KindConflict, "invite_invalid", "invite is used or expired")
	ErrLastAdmin            = apperr.New(apperr.KindConflict, "last_admin", "the last admin cannot leave the club")
	ErrCannotRemoveAdmin    = apperr.New(apperr.KindConflict, "cannot_remove_admin", "admins cannot be removed")
	ErrCodeGenerationFailed = apperr.New(apperr.KindUnknown, "invite_generation_failed", "invite code generation failed")
)
