package messages

import "context"

type Repository interface {
	// List returns the club's messages newest first, each with its replies
	// oldest first.
	List(ctx context.Context, clubID string, limit int) ([]Message, error)
	GetMessage(ctx context.Context, clubID, id string) (*Message, error)
	CreateMessage(ctx context.Context, message *Message) error
	UpdateMessage(ctx context.Context, message *Message) error
	DeleteMessage(ctx context.Context, id string) error

	GetReply(ctx context.Context, messageID, id string) (*Reply, error)
	CreateReply(ctx context.Context, reply *Reply) error
	UpdateReply(ctx context.Context, reply *Reply) error
	DeleteReply(ctx context.Context, id string) error
}
