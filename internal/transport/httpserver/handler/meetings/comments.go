package meetings

import (
	"net/http"
	"time"

	meetingsdomain "book-club-go/internal/domain/meetings"
	"github.com/go-chi/chi/v5"
)

type commentRequest struct {
	Content string `json:"content"`
}

type commentResponse struct {
	ID        string    `json:"id"`
	MeetingID string    `json:"meeting_id"`
	UserID    string    `json:"user_id"`
	Content   string    `json:"content"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (h *Handlers) ListComments(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUserID(w, r)
	if !ok {
		return
	}
	clubID := chi.URLParam(r, "club_id")
	meetingID := chi.URLParam(r, "meeting_id")

	comments, err := h.Meetings.ListComments(r.Context(), clubID, userID, meetingID)
	if err != nil {
		writeDomainError(w, h.log, "comments.list", err, "club_id", clubID, "meeting_id", meetingID)
		return
	}
	items := make([]commentResponse, 0, len(comments))
	for i := range comments {
		items = append(items, toCommentResponse(&comments[i]))
	}
	writeJSON(w, http.StatusOK, items)
}

func (h *Handlers) AddComment(w http.ResponseWriter, r *http.Request) {
	var req commentRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_json", "invalid json body")
		return
	}
	userID, ok := currentUserID(w, r)
	if !ok {
		return
	}
	clubID := chi.URLParam(r, "club_id")
	meetingID := chi.URLParam(r, "meeting_id")

	comment, err := h.Meetings.AddComment(r.Context(), clubID, userID, meetingID, req.Content)
	if err != nil {
		writeDomainError(w, h.log, "comments.add", err, "club_id", clubID, "meeting_id", meetingID)
		return
	}
	writeJSON(w, http.StatusCreated, toCommentResponse(comment))
}

func (h *Handlers) UpdateComment(w http.ResponseWriter, r *http.Request) {
	var req commentRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_json", "invalid json body")
		return
	}
	userID, ok := currentUserID(w, r)
	if !ok {
		return
	}
	clubID := chi.URLParam(r, "club_id")
	meetingID := chi.URLParam(r, "meeting_id")
	commentID := chi.URLParam(r, "comment_id")

	comment, err := h.Meetings.UpdateComment(r.Context(), clubID, userID, meetingID, commentID, req.Content)
	if err != nil {
		writeDomainError(w, h.log, "comments.update", err, "club_id", clubID, "comment_id", commentID)
		return
	}
	writeJSON(w, http.StatusOK, toCommentResponse(comment))
}

func (h *Handlers) DeleteComment(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUserID(w, r)
	if !ok {
		return
	}
	clubID := chi.URLParam(r, "club_id")
	meetingID := chi.URLParam(r, "meeting_id")
	commentID := chi.URLParam(r, "comment_id")

	if err := h.Meetings.DeleteComment(r.Context(), clubID, userID, meetingID, commentID); err != nil {
		writeDomainError(w, h.log, "comments.delete", err, "club_id", clubID, "comment_id", commentID)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func toCommentResponse(comment *meetingsdomain.Comment) commentResponse {
	return commentResponse{
		ID:        comment.ID,
		MeetingID: comment.MeetingID,
		UserID:    comment.UserID,
		Content:   comment.Content,
		CreatedAt: comment.CreatedAt,
		UpdatedAt: comment.UpdatedAt,
	}
}
