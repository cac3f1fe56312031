package messages

import (
	"net/http"
	"time"

	messagesdomain "book-club-go/internal/domain/messages"
	commonhandler "book-club-go/internal/transport/httpserver/handler/common"
	"github.com/go-chi/chi/v5"
)

const defaultListLimit = 50

type contentRequest struct {
	Content string `json:"content"`
}

type replyResponse struct {
	ID            string     `json:"id"`
	MessageID     string     `json:"message_id"`
	UserID        string     `json:"user_id"`
	Content       string     `json:"content"`
	Edited        bool       `json:"edited"`
	EditedAt      *time.Time `json:"edited_at"`
	EditableUntil time.Time  `json:"editable_until"`
	CreatedAt     time.Time  `json:"created_at"`
}

type messageResponse struct {
	ID            string          `json:"id"`
	ClubID        string          `json:"club_id"`
	UserID        string          `json:"user_id"`
	Content       string          `json:"content"`
	Edited        bool            `json:"edited"`
	EditedAt      *time.Time      `json:"edited_at"`
	EditableUntil time.Time       `json:"editable_until"`
	CreatedAt     time.Time       `json:"created_at"`
	Replies       []replyResponse `json:"replies"`
}

func (h *Handlers) ListMessages(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUserID(w, r)
	if !ok {
		return
	}
	clubID := chi.URLParam(r, "club_id")

	limit, err := commonhandler.ParseIntParam(r.URL.Query().Get("limit"), defaultListLimit)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid_limit", "invalid limit")
		return
	}

	items, err := h.Messages.List(r.Context(), clubID, userID, limit)
	if err != nil {
		writeDomainError(w, h.log, "messages.list", err, "club_id", clubID, "user_id", userID)
		return
	}
	response := make([]messageResponse, 0, len(items))
	for i := range items {
		response = append(response, toMessageResponse(&items[i]))
	}
	writeJSON(w, http.StatusOK, response)
}

func (h *Handlers) PostMessage(w http.ResponseWriter, r *http.Request) {
	var req contentRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_json", "invalid json body")
		return
	}
	userID, ok := currentUserID(w, r)
	if !ok {
		return
	}
	clubID := chi.URLParam(r, "club_id")

	message, err := h.Messages.Post(r.Context(), clubID, userID, req.Content)
	if err != nil {
		writeDomainError(w, h.log, "messages.post", err, "club_id", clubID, "user_id", userID)
		return
	}
	writeJSON(w, http.StatusCreated, toMessageResponse(message))
}

func (h *Handlers) EditMessage(w http.ResponseWriter, r *http.Request) {
	var req contentRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_json", "invalid json body")
		return
	}
	userID, ok := currentUserID(w, r)
	if !ok {
		return
	}
	clubID := chi.URLParam(r, "club_id")
	messageID := chi.URLParam(r, "message_id")

	message, err := h.Messages.Edit(r.Context(), clubID, userID, messageID, req.Content)
	if err != nil {
		writeDomainError(w, h.log, "messages.edit", err, "club_id", clubID, "message_id", messageID)
		return
	}
	writeJSON(w, http.StatusOK, toMessageResponse(message))
}

func (h *Handlers) DeleteMessage(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUserID(w, r)
	if !ok {
		return
	}
	clubID := chi.URLParam(r, "club_id")
	messageID := chi.URLParam(r, "message_id")

	if err := h.Messages.Delete(r.Context(), clubID, userID, messageID); err != nil {
		writeDomainError(w, h.log, "messages.delete", err, "club_id", clubID, "message_id", messageID)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handlers) PostReply(w http.ResponseWriter, r *http.Request) {
	var req contentRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_json", "invalid json body")
		return
	}
	userID, ok := currentUserID(w, r)
	if !ok {
		return
	}
	clubID := chi.URLParam(r, "club_id")
	messageID := chi.URLParam(r, "message_id")

	reply, err := h.Messages.Reply(r.Context(), clubID, userID, messageID, req.Content)
	if err != nil {
		writeDomainError(w, h.log, "messages.reply", err, "club_id", clubID, "message_id", messageID)
		return
	}
	writeJSON(w, http.StatusCreated, toReplyResponse(reply))
}

func (h *Handlers) EditReply(w http.ResponseWriter, r *http.Request) {
	var req contentRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_json", "invalid json body")
		return
	}
	userID, ok := currentUserID(w, r)
	if !ok {
		return
	}
	clubID := chi.URLParam(r, "club_id")
	messageID := chi.URLParam(r, "message_id")
	replyID := chi.URLParam(r, "reply_id")

	reply, err := h.Messages.EditReply(r.Context(), clubID, userID, messageID, replyID, req.Content)
	if err != nil {
		writeDomainError(w, h.log, "messages.edit_reply", err, "club_id", clubID, "reply_id", replyID)
		return
	}
	writeJSON(w, http.StatusOK, toReplyResponse(reply))
}

func (h *Handlers) DeleteReply(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUserID(w, r)
	if !ok {
		return
	}
	clubID := chi.URLParam(r, "club_id")
	messageID := chi.URLParam(r, "message_id")
	replyID := chi.URLParam(r, "reply_id")

	if err := h.Messages.DeleteReply(r.Context(), clubID, userID, messageID, replyID); err != nil {
		writeDomainError(w, h.log, "messages.delete_reply", err, "club_id", clubID, "reply_id", replyID)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func toMessageResponse(m *messagesdomain.Message) messageResponse {
	replies := make([]replyResponse, 0, len(m.Replies))
	for i := range m.Replies {
		replies = append(replies, toReplyResponse(&m.Replies[i]))
	}
	return messageResponse{
		ID:            m.ID,
		ClubID:        m.ClubID,
		UserID:        m.UserID,
		Content:       m.Content,
		Edited:        m.Edited(),
		EditedAt:      m.EditedAt,
		EditableUntil: m.CreatedAt.Add(messagesdomain.EditWindow),
		CreatedAt:     m.CreatedAt,
		Replies:       replies,
	}
}

func toReplyResponse(reply *messagesdomain.Reply) replyResponse {
	return replyResponse{
		ID:            reply.ID,
		MessageID:     reply.MessageID,
		UserID:        reply.UserID,
		Content:       reply.Content,
		Edited:        reply.Edited(),
		EditedAt:      reply.EditedAt,
		EditableUntil: reply.CreatedAt.Add(messagesdomain.EditWindow),
		CreatedAt:     reply.CreatedAt,
	}
}
