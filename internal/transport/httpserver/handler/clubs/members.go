package clubs

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
)

type memberResponse struct {
	UserID    string    `json:"user_id"`
	Role      string    `json:"role"`
	JoinedAt  time.Time `json:"joined_at"`
	Email     *string   `json:"email"`
	Name      *string   `json:"name"`
	AvatarURL *string   `json:"avatar_url"`
}

type memberListResponse struct {
	Items []memberResponse `json:"items"`
}

func (h *Handlers) ListMembers(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUserID(w, r)
	if !ok {
		return
	}
	clubID := chi.URLParam(r, "club_id")

	members, err := h.Clubs.ListMembers(r.Context(), clubID, userID)
	if err != nil {
		writeDomainError(w, h.log, "clubs.list_members", err, "club_id", clubID, "user_id", userID)
		return
	}

	items := make([]memberResponse, 0, len(members))
	for _, member := range members {
		items = append(items, memberResponse{
			UserID:    member.UserID,
			Role:      member.Role,
			JoinedAt:  member.JoinedAt,
			Email:     member.Email,
			Name:      member.Name,
			AvatarURL: member.AvatarURL,
		})
	}
	writeJSON(w, http.StatusOK, memberListResponse{Items: items})
}

func (h *Handlers) RemoveMember(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUserID(w, r)
	if !ok {
		return
	}
	clubID := chi.URLParam(r, "club_id")
	targetID := chi.URLParam(r, "user_id")

	if err := h.Clubs.RemoveMember(r.Context(), clubID, userID, targetID); err != nil {
		writeDomainError(w, h.log, "clubs.remove_member", err, "club_id", clubID, "user_id", userID, "target_id", targetID)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handlers) PromoteMember(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUserID(w, r)
	if !ok {
		return
	}
	clubID := chi.URLParam(r, "club_id")
	targetID := chi.URLParam(r, "user_id")

	if err := h.Clubs.PromoteMember(r.Context(), clubID, userID, targetID); err != nil {
		writeDomainError(w, h.log, "clubs.promote_member", err, "club_id", clubID, "user_id", userID, "target_id", targetID)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
