package clubs

import (
	"net/http"

	commonhandler "book-club-go/internal/transport/httpserver/handler/common"
	"book-club-go/pkg/logger"
)

func writeError(w http.ResponseWriter, status int, code, message string) {
	commonhandler.WriteError(w, status, code, message)
}

func writeJSON(w http.ResponseWriter, status int, payload interface{}) {
	commonhandler.WriteJSON(w, status, payload)
}

func decodeJSON(r *http.Request, dst interface{}) error {
	return commonhandler.DecodeJSON(r, dst)
}

func writeDomainError(w http.ResponseWriter, log logger.Logger, op string, err error, args ...any) {
	commonhandler.WriteDomainError(w, log, op, err, args...)
}

func currentUserID(w http.ResponseWriter, r *http.Request) (string, bool) {
	return commonhandler.CurrentUserID(w, r)
}
