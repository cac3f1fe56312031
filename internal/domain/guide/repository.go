package guide

import "context"

type Repository interface {
	GetByMeeting(ctx context.Context, meetingID string) (*Guide, error)
	// Save writes the whole guide, inserting it on first save.
	Save(ctx context.Context, guide *Guide) error
}
