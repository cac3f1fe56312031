package books

import (
	"net/http"

	"github.com/go-chi/chi/v5"
)

type startVotingRequest struct {
	Deadline string `json:"deadline"`
}

func (h *Handlers) StartVoting(w http.ResponseWriter, r *http.Request) {
	var req startVotingRequest
	if err := decodeOptionalJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_json", "invalid json body")
		return
	}
	userID, ok := currentUserID(w, r)
	if !ok {
		return
	}
	clubID := chi.URLParam(r, "club_id")

	round, err := h.Selection.StartVoting(r.Context(), clubID, userID, req.Deadline)
	if err != nil {
		writeDomainError(w, h.log, "voting.start", err, "club_id", clubID, "user_id", userID)
		return
	}
	writeJSON(w, http.StatusCreated, toRoundResponse(round))
}

func (h *Handlers) EndVoting(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUserID(w, r)
	if !ok {
		return
	}
	clubID := chi.URLParam(r, "club_id")

	result, err := h.Selection.EndVoting(r.Context(), clubID, userID)
	if err != nil {
		writeDomainError(w, h.log, "voting.end", err, "club_id", clubID, "user_id", userID)
		return
	}
	writeJSON(w, http.StatusOK, endVotingResponse{
		Round:   *toRoundResponse(&result.Round),
		Winner:  toClubBookResponse(&result.Winner),
		Tallies: toTallies(result.Tallies),
	})
}

func (h *Handlers) CastVote(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUserID(w, r)
	if !ok {
		return
	}
	clubID := chi.URLParam(r, "club_id")
	clubBookID := chi.URLParam(r, "club_book_id")

	vote, err := h.Selection.CastVote(r.Context(), clubID, userID, clubBookID)
	if err != nil {
		writeDomainError(w, h.log, "voting.cast", err, "club_id", clubID, "club_book_id", clubBookID, "user_id", userID)
		return
	}
	writeJSON(w, http.StatusCreated, toVoteResponse(vote))
}
