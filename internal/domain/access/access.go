// Package access decides who may change user-authored content.
package access

import "time"

type Action int

const (
	ActionEdit Action = iota
	ActionDelete
)

// Check describes one attempted change. EditWindow of zero means the author
// may edit at any time.
type Check struct {
	Action      Action
	ActorID     string
	AuthorID    string
	ActorAdmin  bool
	AdminDelete bool
	CreatedAt   time.Time
	EditWindow  time.Duration
	Now         time.Time
}

// Allowed reports whether the actor may perform the action. Only the author
// edits, and only within the window. Deletes are open to the author and, when
// AdminDelete is set, to club admins.
func Allowed(c Check) bool {
	isAuthor := c.ActorID != "" && c.ActorID == c.AuthorID

	switch c.Action {
	case ActionEdit:
		if !isAuthor {
			return false
		}
		if c.EditWindow <= 0 {
			return true
		}
		return c.Now.Sub(c.CreatedAt) <= c.EditWindow
	case ActionDelete:
		return isAuthor || (c.AdminDelete && c.ActorAdmin)
	default:
		return false
	}
}
