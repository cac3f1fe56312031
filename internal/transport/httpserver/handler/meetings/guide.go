package meetings

import (
	"context"
	"net/http"
	"time"

	guidedomain "book-club-go/internal/domain/guide"
	"github.com/go-chi/chi/v5"
)

type guideItemRequest struct {
	Text string `json:"text"`
}

type guideItemResponse struct {
	ID      string `json:"id"`
	Text    string `json:"text"`
	Checked bool   `json:"checked"`
	Source  string `json:"source"`
}

type guideResponse struct {
	MeetingID string              `json:"meeting_id"`
	Items     []guideItemResponse `json:"items"`
	Checked   int                 `json:"checked"`
	UpdatedAt *time.Time          `json:"updated_at"`
}

func (h *Handlers) GetGuide(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUserID(w, r)
	if !ok {
		return
	}
	clubID := chi.URLParam(r, "club_id")
	meetingID := chi.URLParam(r, "meeting_id")

	guide, err := h.Guide.Get(r.Context(), clubID, userID, meetingID)
	if err != nil {
		writeDomainError(w, h.log, "guide.get", err, "club_id", clubID, "meeting_id", meetingID)
		return
	}
	writeJSON(w, http.StatusOK, toGuideResponse(guide))
}

func (h *Handlers) AddGuideItem(w http.ResponseWriter, r *http.Request) {
	var req guideItemRequest
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

	guide, err := h.Guide.AddItem(r.Context(), clubID, userID, meetingID, req.Text)
	if err != nil {
		writeDomainError(w, h.log, "guide.add_item", err, "club_id", clubID, "meeting_id", meetingID)
		return
	}
	writeJSON(w, http.StatusCreated, toGuideResponse(guide))
}

func (h *Handlers) UpdateGuideItem(w http.ResponseWriter, r *http.Request) {
	var req guideItemRequest
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
	itemID := chi.URLParam(r, "item_id")

	guide, err := h.Guide.UpdateItem(r.Context(), clubID, userID, meetingID, itemID, req.Text)
	if err != nil {
		writeDomainError(w, h.log, "guide.update_item", err, "club_id", clubID, "item_id", itemID)
		return
	}
	writeJSON(w, http.StatusOK, toGuideResponse(guide))
}

func (h *Handlers) RemoveGuideItem(w http.ResponseWriter, r *http.Request) {
	h.guideItemAction(w, r, "guide.remove_item", h.Guide.RemoveItem)
}

func (h *Handlers) ToggleGuideItem(w http.ResponseWriter, r *http.Request) {
	h.guideItemAction(w, r, "guide.toggle_item", h.Guide.ToggleItem)
}

func (h *Handlers) RegenerateGuide(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUserID(w, r)
	if !ok {
		return
	}
	clubID := chi.URLParam(r, "club_id")
	meetingID := chi.URLParam(r, "meeting_id")

	guide, err := h.Guide.Regenerate(r.Context(), clubID, userID, meetingID)
	if err != nil {
		writeDomainError(w, h.log, "guide.regenerate", err, "club_id", clubID, "meeting_id", meetingID)
		return
	}
	writeJSON(w, http.StatusOK, toGuideResponse(guide))
}

func (h *Handlers) guideItemAction(
	w http.ResponseWriter,
	r *http.Request,
	op string,
	action func(ctx context.Context, clubID, userID, meetingID, itemID string) (*guidedomain.Guide, error),
) {
	userID, ok := currentUserID(w, r)
	if !ok {
		return
	}
	clubID := chi.URLParam(r, "club_id")
	meetingID := chi.URLParam(r, "meeting_id")
	itemID := chi.URLParam(r, "item_id")

	guide, err := action(r.Context(), clubID, userID, meetingID, itemID)
	if err != nil {
		writeDomainError(w, h.log, op, err, "club_id", clubID, "meeting_id", meetingID, "item_id", itemID)
		return
	}
	writeJSON(w, http.StatusOK, toGuideResponse(guide))
}

func toGuideResponse(guide *guidedomain.Guide) guideResponse {
	items := make([]guideItemResponse, 0, len(guide.Items))
	for _, item := range guide.Items {
		items = append(items, guideItemResponse{
			ID:      item.ID,
			Text:    item.Text,
			Checked: item.Checked,
			Source:  item.Source,
		})
	}
	response := guideResponse{
		MeetingID: guide.MeetingID,
		Items:     items,
		Checked:   guide.CheckedCount(),
	}
	if !guide.UpdatedAt.IsZero() {
		updated := guide.UpdatedAt
		response.UpdatedAt = &updated
	}
	return response
}
