package meetings

import (
	"context"
	"net/http"
	"time"

	meetingsdomain "book-club-go/internal/domain/meetings"
	"github.com/go-chi/chi/v5"
)

type rsvpRequest struct {
	Response string `json:"response"`
}

type checkInRequest struct {
	UserID string `json:"user_id"`
}

type rsvpResponse struct {
	ID          string     `json:"id"`
	MeetingID   string     `json:"meeting_id"`
	UserID      string     `json:"user_id"`
	Response    string     `json:"response"`
	CheckedIn   bool       `json:"checked_in"`
	CheckedInAt *time.Time `json:"checked_in_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
}

type rsvpSummaryResponse struct {
	Yes       int `json:"yes"`
	Maybe     int `json:"maybe"`
	No        int `json:"no"`
	CheckedIn int `json:"checked_in"`
}

type rsvpListResponse struct {
	Items   []rsvpResponse      `json:"items"`
	Summary rsvpSummaryResponse `json:"summary"`
}

func (h *Handlers) ListRsvps(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUserID(w, r)
	if !ok {
		return
	}
	clubID := chi.URLParam(r, "club_id")
	meetingID := chi.URLParam(r, "meeting_id")

	rsvps, err := h.Meetings.ListRsvps(r.Context(), clubID, userID, meetingID)
	if err != nil {
		writeDomainError(w, h.log, "rsvps.list", err, "club_id", clubID, "meeting_id", meetingID)
		return
	}

	items := make([]rsvpResponse, 0, len(rsvps))
	for i := range rsvps {
		items = append(items, toRsvpResponse(&rsvps[i]))
	}
	summary := meetingsdomain.Summarize(rsvps)
	writeJSON(w, http.StatusOK, rsvpListResponse{
		Items: items,
		Summary: rsvpSummaryResponse{
			Yes:       summary.Yes,
			Maybe:     summary.Maybe,
			No:        summary.No,
			CheckedIn: summary.CheckedIn,
		},
	})
}

func (h *Handlers) Respond(w http.ResponseWriter, r *http.Request) {
	var req rsvpRequest
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

	rsvp, err := h.Meetings.Respond(r.Context(), clubID, userID, meetingID, req.Response)
	if err != nil {
		writeDomainError(w, h.log, "rsvps.respond", err, "club_id", clubID, "meeting_id", meetingID, "response", req.Response)
		return
	}
	writeJSON(w, http.StatusOK, toRsvpResponse(rsvp))
}

func (h *Handlers) CheckIn(w http.ResponseWriter, r *http.Request) {
	h.checkIn(w, r, "rsvps.check_in", h.Meetings.CheckIn)
}

func (h *Handlers) UndoCheckIn(w http.ResponseWriter, r *http.Request) {
	h.checkIn(w, r, "rsvps.undo_check_in", h.Meetings.UndoCheckIn)
}

// checkIn targets the caller unless the body names another member.
func (h *Handlers) checkIn(
	w http.ResponseWriter,
	r *http.Request,
	op string,
	action func(ctx context.Context, clubID, actorID, meetingID, targetID string) (*meetingsdomain.Rsvp, error),
) {
	var req checkInRequest
	if err := decodeOptionalJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_json", "invalid json body")
		return
	}
	userID, ok := currentUserID(w, r)
	if !ok {
		return
	}
	clubID := chi.URLParam(r, "club_id")
	meetingID := chi.URLParam(r, "meeting_id")
	targetID := req.UserID
	if targetID == "" {
		targetID = userID
	}

	rsvp, err := action(r.Context(), clubID, userID, meetingID, targetID)
	if err != nil {
		writeDomainError(w, h.log, op, err, "club_id", clubID, "meeting_id", meetingID, "target_id", targetID)
		return
	}
	writeJSON(w, http.StatusOK, toRsvpResponse(rsvp))
}

func toRsvpResponse(rsvp *meetingsdomain.Rsvp) rsvpResponse {
	return rsvpResponse{
		ID:          rsvp.ID,
		MeetingID:   rsvp.MeetingID,
		UserID:      rsvp.UserID,
		Response:    rsvp.Response,
		CheckedIn:   rsvp.CheckedIn(),
		CheckedInAt: rsvp.CheckedInAt,
		UpdatedAt:   rsvp.UpdatedAt,
	}
}
