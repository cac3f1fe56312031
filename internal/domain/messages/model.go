package messages

import "time"

const (
	EditWindow = 15 * time.Minute

	maxMessageLength = 2000
	maxReplyLength   = 1000
)

type Message struct {
	ID        string `gorm:"type:uuid;primaryKey"`
	ClubID    string `gorm:"type:uuid;not null;index"`
	UserID    string `gorm:"type:text;not null"`
	Content   string `gorm:"size:2000;not null"`
	EditedAt  *time.Time
	CreatedAt time.Time `gorm:"autoCreateTime"`
	UpdatedAt time.Time `gorm:"autoUpdateTime"`
	Replies   []Reply   `gorm:"foreignKey:MessageID;references:ID"`
}

func (m *Message) Edited() bool {
	return m.EditedAt != nil
}

type Reply struct {
	ID        string `gorm:"type:uuid;primaryKey"`
	MessageID string `gorm:"type:uuid;not null;index"`
	UserID    string `gorm:"type:text;not null"`
	Content   string `gorm:"size:1000;not null"`
	EditedAt  *time.Time
	CreatedAt time.Time `gorm:"autoCreateTime"`
	UpdatedAt time.Time `gorm:"autoUpdateTime"`
}

func (Reply) TableName() string {
	return "message_replies"
}

func (r *Reply) Edited() bool {
	return r.EditedAt != nil
}
