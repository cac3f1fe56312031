// Package events streams club notifications over server-sent events.
package events

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"book-club-go/internal/broadcast"
	"book-club-go/internal/domain/apperr"
	commonhandler "book-club-go/internal/transport/httpserver/handler/common"
	"book-club-go/pkg/logger"
	"github.com/go-chi/chi/v5"
)

const defaultKeepAlive = 25 * time.Second

type Members interface {
	IsMember(ctx context.Context, clubID, userID string) (bool, error)
}

type Handlers struct {
	hub       *broadcast.Hub
	members   Members
	keepAlive time.Duration
	log       logger.Logger
}

func New(hub *broadcast.Hub, members Members, log logger.Logger) *Handlers {
	return &Handlers{
		hub:       hub,
		members:   members,
		keepAlive: defaultKeepAlive,
		log:       log,
	}
}

// Stream holds the connection open and writes one SSE frame per club event
// until the client disconnects.
func (h *Handlers) Stream(w http.ResponseWriter, r *http.Request) {
	userID, ok := commonhandler.CurrentUserID(w, r)
	if !ok {
		return
	}
	clubID := chi.URLParam(r, "club_id")

	member, err := h.members.IsMember(r.Context(), clubID, userID)
	if err != nil {
		commonhandler.WriteDomainError(w, h.log, "events.stream", err, "club_id", clubID)
		return
	}
	if !member {
		commonhandler.WriteDomainError(w, h.log, "events.stream", apperr.ErrForbidden, "club_id", clubID, "user_id", userID)
		return
	}

	flusher, ok := w.(http.Flusher)
	if !ok {
		commonhandler.WriteError(w, http.StatusInternalServerError, "streaming_unsupported", "streaming unsupported")
		return
	}

	sub := h.hub.Subscribe(clubID)
	defer sub.Close()

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.Header().Set("X-Accel-Buffering", "no")
	w.WriteHeader(http.StatusOK)
	_, _ = fmt.Fprint(w, ": connected\n\n")
	flusher.Flush()

	h.log.Debug("events: subscriber connected", "club_id", clubID, "user_id", userID)
	defer h.log.Debug("events: subscriber disconnected", "club_id", clubID, "user_id", userID)

	ticker := time.NewTicker(h.keepAlive)
	defer ticker.Stop()

	for {
		select {
		case <-r.Context().Done():
			return
		case <-ticker.C:
			if _, err := fmt.Fprint(w, ": ping\n\n"); err != nil {
				return
			}
			flusher.Flush()
		case event, open := <-sub.Events():
			if !open {
				return
			}
			payload, err := json.Marshal(event)
			if err != nil {
				h.log.Warn("events: encode failed", "type", event.Type, "error", err)
				continue
			}
			if _, err := fmt.Fprintf(w, "event: %s\ndata: %s\n\n", event.Type, payload); err != nil {
				return
			}
			flusher.Flush()
		}
	}
}
