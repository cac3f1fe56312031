package books

import (
	"time"

	booksdomain "book-club-go/internal/domain/books"
	selectiondomain "book-club-go/internal/domain/selection"
)

type bookResponse struct {
	ID            string   `json:"id"`
	Title         string   `json:"title"`
	Authors       []string `json:"authors"`
	GoogleBooksID *string  `json:"google_books_id"`
	Description   *string  `json:"description"`
	PageCount     *int     `json:"page_count"`
	CoverURL      *string  `json:"cover_url"`
	ISBN          *string  `json:"isbn"`
}

type clubBookResponse struct {
	ID            string        `json:"id"`
	ClubID        string        `json:"club_id"`
	Status        string        `json:"status"`
	SuggestedByID *string       `json:"suggested_by_id"`
	VotingRoundID *string       `json:"voting_round_id"`
	Notes         *string       `json:"notes"`
	StartedAt     *time.Time    `json:"started_at"`
	CompletedAt   *time.Time    `json:"completed_at"`
	CreatedAt     time.Time     `json:"created_at"`
	Book          *bookResponse `json:"book"`
}

type tallyResponse struct {
	ClubBook clubBookResponse `json:"club_book"`
	Votes    int              `json:"votes"`
}

type roundResponse struct {
	ID               string     `json:"id"`
	OpenedBy         string     `json:"opened_by"`
	OpenedAt         time.Time  `json:"opened_at"`
	Deadline         time.Time  `json:"deadline"`
	ClosedAt         *time.Time `json:"closed_at"`
	WinnerClubBookID *string    `json:"winner_club_book_id"`
}

type voteResponse struct {
	ID         string    `json:"id"`
	RoundID    string    `json:"round_id"`
	ClubBookID string    `json:"club_book_id"`
	UserID     string    `json:"user_id"`
	CreatedAt  time.Time `json:"created_at"`
}

type boardResponse struct {
	Reading   *clubBookResponse  `json:"reading"`
	Next      *clubBookResponse  `json:"next"`
	Suggested []clubBookResponse `json:"suggested"`
	Voting    []tallyResponse    `json:"voting"`
	Round     *roundResponse     `json:"round"`
	UserVote  *voteResponse      `json:"user_vote"`
	Completed []clubBookResponse `json:"completed"`
}

type endVotingResponse struct {
	Round   roundResponse    `json:"round"`
	Winner  clubBookResponse `json:"winner"`
	Tallies []tallyResponse  `json:"tallies"`
}

type clubBookListResponse struct {
	Items []clubBookResponse `json:"items"`
}

type searchResultResponse struct {
	GoogleBooksID string   `json:"google_books_id"`
	Title         string   `json:"title"`
	Authors       []string `json:"authors"`
	Description   string   `json:"description"`
	PageCount     int      `json:"page_count"`
	CoverURL      string   `json:"cover_url"`
	ISBN          string   `json:"isbn"`
}

type searchResponse struct {
	Items []searchResultResponse `json:"items"`
}

func toBookResponse(book *booksdomain.Book) *bookResponse {
	if book == nil {
		return nil
	}
	authors := []string(book.Authors)
	if authors == nil {
		authors = []string{}
	}
	return &bookResponse{
		ID:            book.ID,
		Title:         book.Title,
		Authors:       authors,
		GoogleBooksID: book.GoogleBooksID,
		Description:   book.Description,
		PageCount:     book.PageCount,
		CoverURL:      book.CoverURL,
		ISBN:          book.ISBN,
	}
}

func toClubBookResponse(cb *selectiondomain.ClubBook) clubBookResponse {
	return clubBookResponse{
		ID:            cb.ID,
		ClubID:        cb.ClubID,
		Status:        string(cb.Status),
		SuggestedByID: cb.SuggestedByID,
		VotingRoundID: cb.VotingRoundID,
		Notes:         cb.Notes,
		StartedAt:     cb.StartedAt,
		CompletedAt:   cb.CompletedAt,
		CreatedAt:     cb.CreatedAt,
		Book:          toBookResponse(cb.Book),
	}
}

func toOptionalClubBook(cb *selectiondomain.ClubBook) *clubBookResponse {
	if cb == nil {
		return nil
	}
	response := toClubBookResponse(cb)
	return &response
}

func toClubBookList(items []selectiondomain.ClubBook) []clubBookResponse {
	result := make([]clubBookResponse, 0, len(items))
	for i := range items {
		result = append(result, toClubBookResponse(&items[i]))
	}
	return result
}

func toTallies(tallies []selectiondomain.Tally) []tallyResponse {
	result := make([]tallyResponse, 0, len(tallies))
	for i := range tallies {
		result = append(result, tallyResponse{
			ClubBook: toClubBookResponse(&tallies[i].ClubBook),
			Votes:    tallies[i].Votes,
		})
	}
	return result
}

func toRoundResponse(round *selectiondomain.VotingRound) *roundResponse {
	if round == nil {
		return nil
	}
	return &roundResponse{
		ID:               round.ID,
		OpenedBy:         round.OpenedBy,
		OpenedAt:         round.OpenedAt,
		Deadline:         round.Deadline,
		ClosedAt:         round.ClosedAt,
		WinnerClubBookID: round.WinnerClubBookID,
	}
}

func toVoteResponse(vote *selectiondomain.Vote) *voteResponse {
	if vote == nil {
		return nil
	}
	return &voteResponse{
		ID:         vote.ID,
		RoundID:    vote.RoundID,
		ClubBookID: vote.ClubBookID,
		UserID:     vote.UserID,
		CreatedAt:  vote.CreatedAt,
	}
}
