package books

import (
	"net/http"
	"strings"
)

// Search proxies the metadata provider. Provider failures yield an empty
// list rather than an error.
func (h *Handlers) Search(w http.ResponseWriter, r *http.Request) {
	if _, ok := currentUserID(w, r); !ok {
		return
	}
	query := strings.TrimSpace(r.URL.Query().Get("q"))

	results := h.Books.Search(r.Context(), query)
	items := make([]searchResultResponse, 0, len(results))
	for _, result := range results {
		authors := result.Authors
		if authors == nil {
			authors = []string{}
		}
		items = append(items, searchResultResponse{
			GoogleBooksID: result.ExternalID,
			Title:         result.Title,
			Authors:       authors,
			Description:   result.Description,
			PageCount:     result.PageCount,
			CoverURL:      result.CoverURL,
			ISBN:          result.ISBN,
		})
	}
	writeJSON(w, http.StatusOK, searchResponse{Items: items})
}
