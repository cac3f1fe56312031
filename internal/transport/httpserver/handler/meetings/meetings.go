package meetings

import (
	"context"
	"net/http"
	"time"

	meetingsdomain "book-club-go/internal/domain/meetings"
	"github.com/go-chi/chi/v5"
)

type meetingRequest struct {
	Title        string     `json:"title"`
	ScheduledAt  time.Time  `json:"scheduled_at"`
	EndsAt       *time.Time `json:"ends_at"`
	LocationType string     `json:"location_type"`
	Location     string     `json:"location"`
	Notes        string     `json:"notes"`
	ClubBookID   *string    `json:"club_book_id"`
	HostID       *string    `json:"host_id"`
}

type meetingBookResponse struct {
	ClubBookID string   `json:"club_book_id"`
	BookID     string   `json:"book_id"`
	Title      string   `json:"title"`
	Authors    []string `json:"authors"`
	CoverURL   *string  `json:"cover_url"`
}

type meetingResponse struct {
	ID                  string               `json:"id"`
	ClubID              string               `json:"club_id"`
	Title               string               `json:"title"`
	State               string               `json:"state"`
	ScheduledAt         time.Time            `json:"scheduled_at"`
	EndsAt              *time.Time           `json:"ends_at"`
	DurationMinutes     int                  `json:"duration_minutes"`
	LocationType        string               `json:"location_type"`
	Location            *string              `json:"location"`
	MapsURL             string               `json:"maps_url,omitempty"`
	Notes               *string              `json:"notes"`
	HostID              *string              `json:"host_id"`
	CreatedBy           string               `json:"created_by"`
	StartedAt           *time.Time           `json:"started_at"`
	EndedAt             *time.Time           `json:"ended_at"`
	RegenerateCount     int                  `json:"regenerate_count"`
	RegenerateRemaining int                  `json:"regenerate_remaining"`
	Book                *meetingBookResponse `json:"book"`
}

type meetingListResponse struct {
	Upcoming []meetingResponse `json:"upcoming"`
	Past     []meetingResponse `json:"past"`
}

func (req meetingRequest) input() meetingsdomain.MeetingInput {
	return meetingsdomain.MeetingInput{
		Title:        req.Title,
		ScheduledAt:  req.ScheduledAt,
		EndsAt:       req.EndsAt,
		LocationType: req.LocationType,
		Location:     req.Location,
		Notes:        req.Notes,
		ClubBookID:   req.ClubBookID,
		HostID:       req.HostID,
	}
}

func (h *Handlers) ListMeetings(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUserID(w, r)
	if !ok {
		return
	}
	clubID := chi.URLParam(r, "club_id")

	upcoming, past, err := h.Meetings.ListMeetings(r.Context(), clubID, userID)
	if err != nil {
		writeDomainError(w, h.log, "meetings.list", err, "club_id", clubID, "user_id", userID)
		return
	}
	writeJSON(w, http.StatusOK, meetingListResponse{
		Upcoming: h.toMeetingList(upcoming),
		Past:     h.toMeetingList(past),
	})
}

func (h *Handlers) GetMeeting(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUserID(w, r)
	if !ok {
		return
	}
	clubID := chi.URLParam(r, "club_id")
	meetingID := chi.URLParam(r, "meeting_id")

	meeting, err := h.Meetings.GetMeeting(r.Context(), clubID, userID, meetingID)
	if err != nil {
		writeDomainError(w, h.log, "meetings.get", err, "club_id", clubID, "meeting_id", meetingID)
		return
	}
	writeJSON(w, http.StatusOK, h.toMeetingResponse(meeting))
}

func (h *Handlers) CreateMeeting(w http.ResponseWriter, r *http.Request) {
	var req meetingRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_json", "invalid json body")
		return
	}
	userID, ok := currentUserID(w, r)
	if !ok {
		return
	}
	clubID := chi.URLParam(r, "club_id")

	meeting, err := h.Meetings.CreateMeeting(r.Context(), clubID, userID, req.input())
	if err != nil {
		writeDomainError(w, h.log, "meetings.create", err, "club_id", clubID, "user_id", userID)
		return
	}
	writeJSON(w, http.StatusCreated, h.toMeetingResponse(meeting))
}

func (h *Handlers) UpdateMeeting(w http.ResponseWriter, r *http.Request) {
	var req meetingRequest
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

	meeting, err := h.Meetings.UpdateMeeting(r.Context(), clubID, userID, meetingID, req.input())
	if err != nil {
		writeDomainError(w, h.log, "meetings.update", err, "club_id", clubID, "meeting_id", meetingID)
		return
	}
	writeJSON(w, http.StatusOK, h.toMeetingResponse(meeting))
}

func (h *Handlers) DeleteMeeting(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUserID(w, r)
	if !ok {
		return
	}
	clubID := chi.URLParam(r, "club_id")
	meetingID := chi.URLParam(r, "meeting_id")

	if err := h.Meetings.DeleteMeeting(r.Context(), clubID, userID, meetingID); err != nil {
		writeDomainError(w, h.log, "meetings.delete", err, "club_id", clubID, "meeting_id", meetingID)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handlers) StartMeeting(w http.ResponseWriter, r *http.Request) {
	h.transition(w, r, "meetings.start", h.Meetings.Start)
}

func (h *Handlers) EndMeeting(w http.ResponseWriter, r *http.Request) {
	h.transition(w, r, "meetings.end", h.Meetings.End)
}

func (h *Handlers) ResumeMeeting(w http.ResponseWriter, r *http.Request) {
	h.transition(w, r, "meetings.resume", h.Meetings.Resume)
}

func (h *Handlers) Calendar(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUserID(w, r)
	if !ok {
		return
	}
	clubID := chi.URLParam(r, "club_id")
	meetingID := chi.URLParam(r, "meeting_id")

	filename, body, err := h.Meetings.Calendar(r.Context(), clubID, userID, meetingID)
	if err != nil {
		writeDomainError(w, h.log, "meetings.calendar", err, "club_id", clubID, "meeting_id", meetingID)
		return
	}
	w.Header().Set("Content-Type", "text/calendar; charset=utf-8")
	w.Header().Set("Content-Disposition", `attachment; filename="`+filename+`"`)
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(body))
}

type meetingOp func(ctx context.Context, clubID, userID, meetingID string) (*meetingsdomain.Meeting, error)

func (h *Handlers) transition(w http.ResponseWriter, r *http.Request, op string, action meetingOp) {
	userID, ok := currentUserID(w, r)
	if !ok {
		return
	}
	clubID := chi.URLParam(r, "club_id")
	meetingID := chi.URLParam(r, "meeting_id")

	meeting, err := action(r.Context(), clubID, userID, meetingID)
	if err != nil {
		writeDomainError(w, h.log, op, err, "club_id", clubID, "meeting_id", meetingID, "user_id", userID)
		return
	}
	writeJSON(w, http.StatusOK, h.toMeetingResponse(meeting))
}

func (h *Handlers) toMeetingList(items []meetingsdomain.Meeting) []meetingResponse {
	result := make([]meetingResponse, 0, len(items))
	for i := range items {
		result = append(result, h.toMeetingResponse(&items[i]))
	}
	return result
}

func (h *Handlers) toMeetingResponse(m *meetingsdomain.Meeting) meetingResponse {
	remaining := h.Meetings.RegenerateLimit() - m.RegenerateCount
	if remaining < 0 {
		remaining = 0
	}
	response := meetingResponse{
		ID:                  m.ID,
		ClubID:              m.ClubID,
		Title:               m.Title,
		State:               string(m.State),
		ScheduledAt:         m.ScheduledAt,
		EndsAt:              m.EndsAt,
		DurationMinutes:     m.Duration(),
		LocationType:        m.LocationType,
		Location:            m.Location,
		MapsURL:             m.MapsURL(),
		Notes:               m.Notes,
		HostID:              m.HostID,
		CreatedBy:           m.CreatedBy,
		StartedAt:           m.StartedAt,
		EndedAt:             m.EndedAt,
		RegenerateCount:     m.RegenerateCount,
		RegenerateRemaining: remaining,
	}
	if m.ClubBook != nil && m.ClubBook.Book != nil {
		book := m.ClubBook.Book
		response.Book = &meetingBookResponse{
			ClubBookID: m.ClubBook.ID,
			BookID:     book.ID,
			Title:      book.Title,
			Authors:    append([]string{}, book.Authors...),
			CoverURL:   book.CoverURL,
		}
	}
	return response
}
