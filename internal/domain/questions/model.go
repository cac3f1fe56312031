package questions

import "time"

const (
	SourceAIGenerated = "ai_generated"
	SourceUserAdded   = "user_added"
	// SourceFallback marks questions from the static lists. They are never
	// stored.
	SourceFallback = "fallback"
)

type Question struct {
	ID        string    `gorm:"type:uuid;primaryKey"`
	BookID    string    `gorm:"type:uuid;not null;index"`
	Language  string    `gorm:"size:8;not null"`
	Text      string    `gorm:"not null"`
	Source    string    `gorm:"size:32;not null"`
	CreatedAt time.Time `gorm:"autoCreateTime"`
	UpdatedAt time.Time `gorm:"autoUpdateTime"`
}

func (Question) TableName() string {
	return "book_discussion_questions"
}

// Message is one chat turn sent to a Completer.
type Message struct {
	Role    string
	Content string
}

const (
	RoleSystem = "system"
	RoleUser   = "user"
)
