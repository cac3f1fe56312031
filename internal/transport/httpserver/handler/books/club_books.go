package books

import (
	"context"
	"net/http"

	booksdomain "book-club-go/internal/domain/books"
	selectiondomain "book-club-go/internal/domain/selection"
	"github.com/go-chi/chi/v5"
)

type bookInput struct {
	GoogleBooksID string `json:"google_books_id"`
	Title         string `json:"title"`
	Authors       string `json:"authors"`
	Description   string `json:"description"`
	PageCount     *int   `json:"page_count"`
	ISBN          string `json:"isbn"`
}

// addClubBookRequest suggests a book. Setting status is the admin path that
// places the book straight into next or reading.
type addClubBookRequest struct {
	Book   bookInput `json:"book"`
	Notes  string    `json:"notes"`
	Status string    `json:"status"`
}

type cancelNextRequest struct {
	ClubBookID string `json:"club_book_id"`
}

func (in bookInput) resolveInput() booksdomain.ResolveInput {
	return booksdomain.ResolveInput{
		GoogleBooksID: in.GoogleBooksID,
		Title:         in.Title,
		Authors:       in.Authors,
		Description:   in.Description,
		PageCount:     in.PageCount,
		ISBN:          in.ISBN,
	}
}

func (h *Handlers) Board(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUserID(w, r)
	if !ok {
		return
	}
	clubID := chi.URLParam(r, "club_id")

	board, err := h.Selection.Board(r.Context(), clubID, userID)
	if err != nil {
		writeDomainError(w, h.log, "club_books.board", err, "club_id", clubID, "user_id", userID)
		return
	}

	writeJSON(w, http.StatusOK, boardResponse{
		Reading:   toOptionalClubBook(board.Reading),
		Next:      toOptionalClubBook(board.Next),
		Suggested: toClubBookList(board.Suggested),
		Voting:    toTallies(board.Voting),
		Round:     toRoundResponse(board.Round),
		UserVote:  toVoteResponse(board.UserVote),
		Completed: toClubBookList(board.Completed),
	})
}

func (h *Handlers) Archive(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUserID(w, r)
	if !ok {
		return
	}
	clubID := chi.URLParam(r, "club_id")

	items, err := h.Selection.Archive(r.Context(), clubID, userID)
	if err != nil {
		writeDomainError(w, h.log, "club_books.archive", err, "club_id", clubID, "user_id", userID)
		return
	}
	writeJSON(w, http.StatusOK, clubBookListResponse{Items: toClubBookList(items)})
}

func (h *Handlers) GetClubBook(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUserID(w, r)
	if !ok {
		return
	}
	clubID := chi.URLParam(r, "club_id")
	clubBookID := chi.URLParam(r, "club_book_id")

	cb, err := h.Selection.GetClubBook(r.Context(), clubID, userID, clubBookID)
	if err != nil {
		writeDomainError(w, h.log, "club_books.get", err, "club_id", clubID, "club_book_id", clubBookID)
		return
	}
	writeJSON(w, http.StatusOK, toClubBookResponse(cb))
}

func (h *Handlers) AddClubBook(w http.ResponseWriter, r *http.Request) {
	var req addClubBookRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_json", "invalid json body")
		return
	}
	userID, ok := currentUserID(w, r)
	if !ok {
		return
	}
	clubID := chi.URLParam(r, "club_id")

	var (
		cb  *selectiondomain.ClubBook
		err error
	)
	if req.Status == "" {
		cb, err = h.Selection.Suggest(r.Context(), clubID, userID, selectiondomain.SuggestInput{
			Book:  req.Book.resolveInput(),
			Notes: req.Notes,
		})
	} else {
		cb, err = h.Selection.AddBook(r.Context(), clubID, userID, selectiondomain.AddBookInput{
			Book:   req.Book.resolveInput(),
			Notes:  req.Notes,
			Status: selectiondomain.Status(req.Status),
		})
	}
	if err != nil {
		writeDomainError(w, h.log, "club_books.add", err, "club_id", clubID, "user_id", userID, "status", req.Status)
		return
	}
	writeJSON(w, http.StatusCreated, toClubBookResponse(cb))
}

func (h *Handlers) DeleteClubBook(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUserID(w, r)
	if !ok {
		return
	}
	clubID := chi.URLParam(r, "club_id")
	clubBookID := chi.URLParam(r, "club_book_id")

	if err := h.Selection.SoftDelete(r.Context(), clubID, userID, clubBookID); err != nil {
		writeDomainError(w, h.log, "club_books.delete", err, "club_id", clubID, "club_book_id", clubBookID, "user_id", userID)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handlers) QueueNext(w http.ResponseWriter, r *http.Request) {
	h.clubBookAction(w, r, "club_books.queue_next", h.Selection.QueueNext)
}

func (h *Handlers) SetReading(w http.ResponseWriter, r *http.Request) {
	h.clubBookAction(w, r, "club_books.set_reading", h.Selection.PromoteToReading)
}

func (h *Handlers) StartNext(w http.ResponseWriter, r *http.Request) {
	h.clubAction(w, r, "club_books.start_next", h.Selection.StartNextBook)
}

func (h *Handlers) MarkComplete(w http.ResponseWriter, r *http.Request) {
	h.clubAction(w, r, "club_books.mark_complete", h.Selection.MarkComplete)
}

// CancelNext demotes the queued next book. The body may name the book; an
// empty body means whichever book is next.
func (h *Handlers) CancelNext(w http.ResponseWriter, r *http.Request) {
	var req cancelNextRequest
	if err := decodeOptionalJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_json", "invalid json body")
		return
	}
	userID, ok := currentUserID(w, r)
	if !ok {
		return
	}
	clubID := chi.URLParam(r, "club_id")

	cb, err := h.Selection.CancelNext(r.Context(), clubID, userID, req.ClubBookID)
	if err != nil {
		writeDomainError(w, h.log, "club_books.cancel_next", err, "club_id", clubID, "user_id", userID)
		return
	}
	writeJSON(w, http.StatusOK, toClubBookResponse(cb))
}

type clubBookOp func(ctx context.Context, clubID, userID, clubBookID string) (*selectiondomain.ClubBook, error)

type clubOp func(ctx context.Context, clubID, userID string) (*selectiondomain.ClubBook, error)

func (h *Handlers) clubBookAction(w http.ResponseWriter, r *http.Request, op string, action clubBookOp) {
	userID, ok := currentUserID(w, r)
	if !ok {
		return
	}
	clubID := chi.URLParam(r, "club_id")
	clubBookID := chi.URLParam(r, "club_book_id")

	cb, err := action(r.Context(), clubID, userID, clubBookID)
	if err != nil {
		writeDomainError(w, h.log, op, err, "club_id", clubID, "club_book_id", clubBookID, "user_id", userID)
		return
	}
	writeJSON(w, http.StatusOK, toClubBookResponse(cb))
}

func (h *Handlers) clubAction(w http.ResponseWriter, r *http.Request, op string, action clubOp) {
	userID, ok := currentUserID(w, r)
	if !ok {
		return
	}
	clubID := chi.URLParam(r, "club_id")

	cb, err := action(r.Context(), clubID, userID)
	if err != nil {
		writeDomainError(w, h.log, op, err, "club_id", clubID, "user_id", userID)
		return
	}
	writeJSON(w, http.StatusOK, toClubBookResponse(cb))
}
