package messages

import "book-club-go/internal/domain/apperr"

var (
	ErrMessageNotFound = apperr.New(apperr.KindNotFound, "message_not_found", "message not found")
	ErrReplyNotFound   = apperr.New(apperr.KindNotFound, "reply_not_found", "reply not found")
	ErrNotEditable     = apperr.New(apperr.KindForbidden, "not_editable", "only the author can edit, within 15 minutes")
)
