package questions

import (
	"context"
	"time"
)

type Repository interface {
	// ListFresh returns up to limit questions for the book and language
	// created after since, in random order.
	ListFresh(ctx context.Context, bookID, language string, since time.Time, limit int) ([]Question, error)
	CreateQuestions(ctx context.Context, questions []Question) error
}

// Completer is a chat completion backend. Implementations return the raw
// assistant text.
type Completer interface {
	Complete(ctx context.Context, messages []Message) (string, error)
}
