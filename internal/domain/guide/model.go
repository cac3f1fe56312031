package guide

import (
	"strings"
	"time"
	"unicode/utf8"

	"book-club-go/internal/domain/apperr"
	"github.com/google/uuid"
	"gorm.io/datatypes"
)

const (
	SourceAIGenerated = "ai_generated"
	SourceUserAdded   = "user_added"

	maxItemLength = 500
)

type Item struct {
	ID      string `json:"id"`
	Text    string `json:"text"`
	Checked bool   `json:"checked"`
	Source  string `json:"source"`
}

// Guide is the ordered checklist for one meeting. The item list is stored
// and rewritten as a single JSON document.
type Guide struct {
	ID        string                    `gorm:"type:uuid;primaryKey"`
	MeetingID string                    `gorm:"type:uuid;not null;uniqueIndex:ux_discussion_guides_meeting"`
	Items     datatypes.JSONSlice[Item] `gorm:"type:jsonb;not null"`
	CreatedAt time.Time                 `gorm:"autoCreateTime"`
	UpdatedAt time.Time                 `gorm:"autoUpdateTime"`
}

func (Guide) TableName() string {
	return "discussion_guides"
}

func New(meetingID string) *Guide {
	return &Guide{
		ID:        uuid.NewString(),
		MeetingID: meetingID,
		Items:     datatypes.JSONSlice[Item]{},
	}
}

func (g *Guide) Add(text, source string) (Item, error) {
	text, err := validateText(text)
	if err != nil {
		return Item{}, err
	}
	switch source {
	case SourceAIGenerated, SourceUserAdded:
	default:
		return Item{}, apperr.Invalid("source", "must be ai_generated or user_added")
	}
	item := Item{ID: uuid.NewString(), Text: text, Source: source}
	g.Items = append(g.Items, item)
	return item, nil
}

func (g *Guide) Update(id, text string) (Item, error) {
	i := g.Find(id)
	if i < 0 {
		return Item{}, ErrItemNotFound
	}
	text, err := validateText(text)
	if err != nil {
		return Item{}, err
	}
	g.Items[i].Text = text
	return g.Items[i], nil
}

func (g *Guide) Remove(id string) error {
	i := g.Find(id)
	if i < 0 {
		return ErrItemNotFound
	}
	g.Items = append(g.Items[:i], g.Items[i+1:]...)
	return nil
}

func (g *Guide) Check(id string) (Item, error) {
	return g.setChecked(id, func(bool) bool { return true })
}

func (g *Guide) Uncheck(id string) (Item, error) {
	return g.setChecked(id, func(bool) bool { return false })
}

func (g *Guide) Toggle(id string) (Item, error) {
	return g.setChecked(id, func(checked bool) bool { return !checked })
}

func (g *Guide) setChecked(id string, next func(bool) bool) (Item, error) {
	i := g.Find(id)
	if i < 0 {
		return Item{}, ErrItemNotFound
	}
	g.Items[i].Checked = next(g.Items[i].Checked)
	return g.Items[i], nil
}

// Find returns the index of the item, or -1.
func (g *Guide) Find(id string) int {
	for i, item := range g.Items {
		if item.ID == id {
			return i
		}
	}
	return -1
}

func (g *Guide) CheckedCount() int {
	n := 0
	for _, item := range g.Items {
		if item.Checked {
			n++
		}
	}
	return n
}

func validateText(text string) (string, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return "", apperr.Invalid("text", "is required")
	}
	if utf8.RuneCountInString(text) > maxItemLength {
		return "", apperr.Invalid("text", "is too long")
	}
	return text, nil
}
