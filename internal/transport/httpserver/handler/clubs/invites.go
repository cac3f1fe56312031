package clubs

import (
	"net/http"

	"github.com/go-chi/chi/v5"
)

type invitePreviewResponse struct {
	ClubID      string  `json:"club_id"`
	Name        string  `json:"name"`
	Description *string `json:"description"`
}

func (h *Handlers) RegenerateInvite(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUserID(w, r)
	if !ok {
		return
	}
	clubID := chi.URLParam(r, "club_id")

	club, err := h.Clubs.RegenerateInvite(r.Context(), clubID, userID)
	if err != nil {
		writeDomainError(w, h.log, "clubs.regenerate_invite", err, "club_id", clubID, "user_id", userID)
		return
	}
	writeJSON(w, http.StatusOK, toClubResponse(club, true))
}

func (h *Handlers) PreviewInvite(w http.ResponseWriter, r *http.Request) {
	code := chi.URLParam(r, "code")

	club, err := h.Clubs.PreviewInvite(r.Context(), code)
	if err != nil {
		writeDomainError(w, h.log, "clubs.preview_invite", err)
		return
	}
	writeJSON(w, http.StatusOK, invitePreviewResponse{
		ClubID:      club.ID,
		Name:        club.Name,
		Description: club.Description,
	})
}

func (h *Handlers) JoinByInvite(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUserID(w, r)
	if !ok {
		return
	}
	code := chi.URLParam(r, "code")

	club, err := h.Clubs.JoinByInvite(r.Context(), userID, code)
	if err != nil {
		writeDomainError(w, h.log, "clubs.join_invite", err, "user_id", userID)
		return
	}
	writeJSON(w, http.StatusOK, toClubResponse(club, false))
}
