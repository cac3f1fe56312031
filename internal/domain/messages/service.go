package messages

import (
	"context"
	"strings"
	"time"
	"unicode/utf8"

	"book-club-go/internal/domain/access"
	"book-club-go/internal/domain/apperr"
	clubsdomain "book-club-go/internal/domain/clubs"
	"book-club-go/internal/domain/events"
	"github.com/google/uuid"
)

const defaultListLimit = 100

type Guard interface {
	Authorize(ctx context.Context, clubID, userID, role string) (*clubsdomain.Club, error)
}

type Service struct {
	repo     Repository
	guard    Guard
	notifier events.Notifier
	now      func() time.Time
}

type ServiceOption func(*Service)

func WithNotifier(n events.Notifier) ServiceOption {
	return func(s *Service) {
		s.notifier = events.OrNoop(n)
	}
}

func NewService(repo Repository, guard Guard, opts ...ServiceOption) *Service {
	svc := &Service{
		repo:     repo,
		guard:    guard,
		notifier: events.Noop{},
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(svc)
	}
	return svc
}

func (s *Service) List(ctx context.Context, clubID, userID string, limit int) ([]Message, error) {
	if _, err := s.guard.Authorize(ctx, clubID, userID, clubsdomain.RoleMember); err != nil {
		return nil, err
	}
	if limit <= 0 || limit > defaultListLimit {
		limit = defaultListLimit
	}
	return s.repo.List(ctx, clubID, limit)
}

func (s *Service) Post(ctx context.Context, clubID, userID, content string) (*Message, error) {
	if _, err := s.guard.Authorize(ctx, clubID, userID, clubsdomain.RoleMember); err != nil {
		return nil, err
	}
	content, err := validateContent(content, maxMessageLength)
	if err != nil {
		return nil, err
	}

	message := &Message{
		ID:      uuid.NewString(),
		ClubID:  clubID,
		UserID:  userID,
		Content: content,
	}
	if err := s.repo.CreateMessage(ctx, message); err != nil {
		return nil, err
	}
	s.publish(ctx, clubID, message.ID, "message", "created")
	return message, nil
}

func (s *Service) Edit(ctx context.Context, clubID, userID, messageID, content string) (*Message, error) {
	if _, err := s.guard.Authorize(ctx, clubID, userID, clubsdomain.RoleMember); err != nil {
		return nil, err
	}
	message, err := s.repo.GetMessage(ctx, clubID, messageID)
	if err != nil {
		return nil, err
	}
	now := s.now()
	if !s.editable(userID, message.UserID, message.CreatedAt, now) {
		return nil, ErrNotEditable
	}
	if message.Content, err = validateContent(content, maxMessageLength); err != nil {
		return nil, err
	}
	message.EditedAt = &now
	if err := s.repo.UpdateMessage(ctx, message); err != nil {
		return nil, err
	}
	s.publish(ctx, clubID, message.ID, "message", "updated")
	return message, nil
}

func (s *Service) Delete(ctx context.Context, clubID, userID, messageID string) error {
	isAdmin, err := s.member(ctx, clubID, userID)
	if err != nil {
		return err
	}
	message, err := s.repo.GetMessage(ctx, clubID, messageID)
	if err != nil {
		return err
	}
	if !deletable(userID, message.UserID, isAdmin) {
		return apperr.ErrForbidden
	}
	if err := s.repo.DeleteMessage(ctx, message.ID); err != nil {
		return err
	}
	s.publish(ctx, clubID, message.ID, "message", "deleted")
	return nil
}

func (s *Service) Reply(ctx context.Context, clubID, userID, messageID, content string) (*Reply, error) {
	if _, err := s.guard.Authorize(ctx, clubID, userID, clubsdomain.RoleMember); err != nil {
		return nil, err
	}
	if _, err := s.repo.GetMessage(ctx, clubID, messageID); err != nil {
		return nil, err
	}
	content, err := validateContent(content, maxReplyLength)
	if err != nil {
		return nil, err
	}

	reply := &Reply{
		ID:        uuid.NewString(),
		MessageID: messageID,
		UserID:    userID,
		Content:   content,
	}
	if err := s.repo.CreateReply(ctx, reply); err != nil {
		return nil, err
	}
	s.publish(ctx, clubID, reply.ID, "reply", "created")
	return reply, nil
}

func (s *Service) EditReply(ctx context.Context, clubID, userID, messageID, replyID, content string) (*Reply, error) {
	if _, err := s.guard.Authorize(ctx, clubID, userID, clubsdomain.RoleMember); err != nil {
		return nil, err
	}
	reply, err := s.reply(ctx, clubID, messageID, replyID)
	if err != nil {
		return nil, err
	}
	now := s.now()
	if !s.editable(userID, reply.UserID, reply.CreatedAt, now) {
		return nil, ErrNotEditable
	}
	if reply.Content, err = validateContent(content, maxReplyLength); err != nil {
		return nil, err
	}
	reply.EditedAt = &now
	if err := s.repo.UpdateReply(ctx, reply); err != nil {
		return nil, err
	}
	s.publish(ctx, clubID, reply.ID, "reply", "updated")
	return reply, nil
}

func (s *Service) DeleteReply(ctx context.Context, clubID, userID, messageID, replyID string) error {
	isAdmin, err := s.member(ctx, clubID, userID)
	if err != nil {
		return err
	}
	reply, err := s.reply(ctx, clubID, messageID, replyID)
	if err != nil {
		return err
	}
	if !deletable(userID, reply.UserID, isAdmin) {
		return apperr.ErrForbidden
	}
	if err := s.repo.DeleteReply(ctx, reply.ID); err != nil {
		return err
	}
	s.publish(ctx, clubID, reply.ID, "reply", "deleted")
	return nil
}

func (s *Service) reply(ctx context.Context, clubID, messageID, replyID string) (*Reply, error) {
	if _, err := s.repo.GetMessage(ctx, clubID, messageID); err != nil {
		return nil, err
	}
	return s.repo.GetReply(ctx, messageID, replyID)
}

// member authorizes a member and reports whether they are also an admin.
func (s *Service) member(ctx context.Context, clubID, userID string) (bool, error) {
	if _, err := s.guard.Authorize(ctx, clubID, userID, clubsdomain.RoleMember); err != nil {
		return false, err
	}
	_, err := s.guard.Authorize(ctx, clubID, userID, clubsdomain.RoleAdmin)
	return err == nil, nil
}

func (s *Service) editable(actorID, authorID string, createdAt, now time.Time) bool {
	return access.Allowed(access.Check{
		Action:     access.ActionEdit,
		ActorID:    actorID,
		AuthorID:   authorID,
		CreatedAt:  createdAt,
		EditWindow: EditWindow,
		Now:        now,
	})
}

func deletable(actorID, authorID string, isAdmin bool) bool {
	return access.Allowed(access.Check{
		Action:      access.ActionDelete,
		ActorID:     actorID,
		AuthorID:    authorID,
		ActorAdmin:  isAdmin,
		AdminDelete: true,
	})
}

func (s *Service) publish(ctx context.Context, clubID, entityID, kind, action string) {
	s.notifier.Publish(ctx, events.Event{
		Type:     events.TypeMessageChanged,
		ClubID:   clubID,
		EntityID: entityID,
		Data:     map[string]any{"kind": kind, "action": action},
		At:       s.now(),
	})
}

func validateContent(content string, limit int) (string, error) {
	content = strings.TrimSpace(content)
	if content == "" {
		return "", apperr.Invalid("content", "is required")
	}
	if utf8.RuneCountInString(content) > limit {
		return "", apperr.Invalid("content", "is too long")
	}
	return content, nil
}
