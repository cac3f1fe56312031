package clubs

import (
	"net/http"
	"time"

	clubsdomain "book-club-go/internal/domain/clubs"
	"github.com/go-chi/chi/v5"
)

type createClubRequest struct {
	Name        string  `json:"name"`
	Description *string `json:"description"`
	Privacy     string  `json:"privacy"`
	Language    string  `json:"language"`
	Timezone    string  `json:"timezone"`
}

type updateClubRequest struct {
	Name        *string `json:"name"`
	Description *string `json:"description"`
	Privacy     *string `json:"privacy"`
	Language    *string `json:"language"`
	Timezone    *string `json:"timezone"`
}

type clubResponse struct {
	ID              string     `json:"id"`
	Name            string     `json:"name"`
	Description     *string    `json:"description"`
	Privacy         string     `json:"privacy"`
	Language        string     `json:"language"`
	Timezone        string     `json:"timezone"`
	VotingDeadline  *time.Time `json:"voting_deadline"`
	CreatedAt       time.Time  `json:"created_at"`
	InviteCode      string     `json:"invite_code,omitempty"`
	InviteExpiresAt *time.Time `json:"invite_expires_at,omitempty"`
	InviteUsed      *bool      `json:"invite_used,omitempty"`
}

type clubListResponse struct {
	Items []clubResponse `json:"items"`
}

func (h *Handlers) ListClubs(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUserID(w, r)
	if !ok {
		return
	}

	clubs, err := h.Clubs.ListClubsForUser(r.Context(), userID)
	if err != nil {
		writeDomainError(w, h.log, "clubs.list", err, "user_id", userID)
		return
	}

	items := make([]clubResponse, 0, len(clubs))
	for i := range clubs {
		items = append(items, toClubResponse(&clubs[i], false))
	}
	writeJSON(w, http.StatusOK, clubListResponse{Items: items})
}

func (h *Handlers) CreateClub(w http.ResponseWriter, r *http.Request) {
	var req createClubRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_json", "invalid json body")
		return
	}
	userID, ok := currentUserID(w, r)
	if !ok {
		return
	}

	club, err := h.Clubs.CreateClub(r.Context(), userID, clubsdomain.CreateClubInput{
		Name:        req.Name,
		Description: req.Description,
		Privacy:     req.Privacy,
		Language:    req.Language,
		Timezone:    req.Timezone,
	})
	if err != nil {
		writeDomainError(w, h.log, "clubs.create", err, "user_id", userID)
		return
	}
	writeJSON(w, http.StatusCreated, toClubResponse(club, true))
}

func (h *Handlers) GetClub(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUserID(w, r)
	if !ok {
		return
	}
	clubID := chi.URLParam(r, "club_id")

	club, err := h.Clubs.GetClub(r.Context(), clubID, userID)
	if err != nil {
		writeDomainError(w, h.log, "clubs.get", err, "club_id", clubID, "user_id", userID)
		return
	}
	isAdmin, err := h.Clubs.IsAdmin(r.Context(), clubID, userID)
	if err != nil {
		writeDomainError(w, h.log, "clubs.get", err, "club_id", clubID, "user_id", userID)
		return
	}
	writeJSON(w, http.StatusOK, toClubResponse(club, isAdmin))
}

func (h *Handlers) UpdateClub(w http.ResponseWriter, r *http.Request) {
	var req updateClubRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_json", "invalid json body")
		return
	}
	userID, ok := currentUserID(w, r)
	if !ok {
		return
	}
	clubID := chi.URLParam(r, "club_id")

	club, err := h.Clubs.UpdateClub(r.Context(), clubID, userID, clubsdomain.UpdateClubInput{
		Name:        req.Name,
		Description: req.Description,
		Privacy:     req.Privacy,
		Language:    req.Language,
		Timezone:    req.Timezone,
	})
	if err != nil {
		writeDomainError(w, h.log, "clubs.update", err, "club_id", clubID, "user_id", userID)
		return
	}
	writeJSON(w, http.StatusOK, toClubResponse(club, true))
}

func (h *Handlers) DeleteClub(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUserID(w, r)
	if !ok {
		return
	}
	clubID := chi.URLParam(r, "club_id")

	if err := h.Clubs.DeleteClub(r.Context(), clubID, userID); err != nil {
		writeDomainError(w, h.log, "clubs.delete", err, "club_id", clubID, "user_id", userID)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handlers) JoinClub(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUserID(w, r)
	if !ok {
		return
	}
	clubID := chi.URLParam(r, "club_id")

	club, err := h.Clubs.JoinOpenClub(r.Context(), clubID, userID)
	if err != nil {
		writeDomainError(w, h.log, "clubs.join", err, "club_id", clubID, "user_id", userID)
		return
	}
	writeJSON(w, http.StatusOK, toClubResponse(club, false))
}

func (h *Handlers) LeaveClub(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUserID(w, r)
	if !ok {
		return
	}
	clubID := chi.URLParam(r, "club_id")

	if err := h.Clubs.LeaveClub(r.Context(), clubID, userID); err != nil {
		writeDomainError(w, h.log, "clubs.leave", err, "club_id", clubID, "user_id", userID)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func toClubResponse(club *clubsdomain.Club, withInvite bool) clubResponse {
	response := clubResponse{
		ID:             club.ID,
		Name:           club.Name,
		Description:    club.Description,
		Privacy:        club.Privacy,
		Language:       club.Language,
		Timezone:       club.Timezone,
		VotingDeadline: club.VotingDeadline,
		CreatedAt:      club.CreatedAt,
	}
	if withInvite {
		used := club.InviteUsedAt != nil
		response.InviteCode = club.InviteCode
		response.InviteExpiresAt = club.InviteExpiresAt
		response.InviteUsed = &used
	}
	return response
}
