package messages

import (
	"context"
	"errors"
	"sort"
	"strings"
	"testing"
	"time"

	"book-club-go/internal/domain/apperr"
	clubsdomain "book-club-go/internal/domain/clubs"
	"book-club-go/internal/domain/events"
)

var testNow = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

type fakeMessageRepo struct {
	messages map[string]Message
	replies  map[string]Reply
}

func newFakeMessageRepo() *fakeMessageRepo {
	return &fakeMessageRepo{messages: map[string]Message{}, replies: map[string]Reply{}}
}

func (r *fakeMessageRepo) List(_ context.Context, clubID string, limit int) ([]Message, error) {
	var result []Message
	for _, m := range r.messages {
		if m.ClubID != clubID {
			continue
		}
		m.Replies = nil
		for _, reply := range r.replies {
			if reply.MessageID == m.ID {
				m.Replies = append(m.Replies, reply)
			}
		}
		sort.Slice(m.Replies, func(i, j int) bool { return m.Replies[i].CreatedAt.Before(m.Replies[j].CreatedAt) })
		result = append(result, m)
	}
	sort.Slice(result, func(i, j int) bool { return result[i].CreatedAt.After(result[j].CreatedAt) })
	if len(result) > limit {
		result = result[:limit]
	}
	return result, nil
}

func (r *fakeMessageRepo) GetMessage(_ context.Context, clubID, id string) (*Message, error) {
	m, ok := r.messages[id]
	if !ok || m.ClubID != clubID {
		return nil, ErrMessageNotFound
	}
	return &m, nil
}

func (r *fakeMessageRepo) CreateMessage(_ context.Context, message *Message) error {
	if message.CreatedAt.IsZero() {
		message.CreatedAt = testNow
	}
	r.messages[message.ID] = *message
	return nil
}

func (r *fakeMessageRepo) UpdateMessage(_ context.Context, message *Message) error {
	r.messages[message.ID] = *message
	return nil
}

func (r *fakeMessageRepo) DeleteMessage(_ context.Context, id string) error {
	delete(r.messages, id)
	for replyID, reply := range r.replies {
		if reply.MessageID == id {
			delete(r.replies, replyID)
		}
	}
	return nil
}

func (r *fakeMessageRepo) GetReply(_ context.Context, messageID, id string) (*Reply, error) {
	reply, ok := r.replies[id]
	if !ok || reply.MessageID != messageID {
		return nil, ErrReplyNotFound
	}
	return &reply, nil
}

func (r *fakeMessageRepo) CreateReply(_ context.Context, reply *Reply) error {
	if reply.CreatedAt.IsZero() {
		reply.CreatedAt = testNow
	}
	r.replies[reply.ID] = *reply
	return nil
}

func (r *fakeMessageRepo) UpdateReply(_ context.Context, reply *Reply) error {
	r.replies[reply.ID] = *reply
	return nil
}

func (r *fakeMessageRepo) DeleteReply(_ context.Context, id string) error {
	delete(r.replies, id)
	return nil
}

type fakeGuard struct{}

func (fakeGuard) Authorize(_ context.Context, clubID, userID, role string) (*clubsdomain.Club, error) {
	switch userID {
	case "admin":
	case "u1", "u2":
		if role == clubsdomain.RoleAdmin {
			return nil, apperr.ErrForbidden
		}
	default:
		return nil, apperr.ErrForbidden
	}
	return &clubsdomain.Club{ID: clubID}, nil
}

type countingNotifier struct {
	events []events.Event
}

func (n *countingNotifier) Publish(_ context.Context, event events.Event) {
	n.events = append(n.events, event)
}

func newTestService() (*Service, *fakeMessageRepo, *countingNotifier, *time.Time) {
	repo := newFakeMessageRepo()
	notifier := &countingNotifier{}
	svc := NewService(repo, fakeGuard{}, WithNotifier(notifier))
	now := testNow
	svc.now = func() time.Time { return now }
	return svc, repo, notifier, &now
}

func TestPostValidation(t *testing.T) {
	svc, _, _, _ := newTestService()
	ctx := context.Background()

	if _, err := svc.Post(ctx, "c1", "outsider", "hi"); !errors.Is(err, apperr.ErrForbidden) {
		t.Fatalf("expected ErrForbidden, got %v", err)
	}
	if _, err := svc.Post(ctx, "c1", "u1", "   "); apperr.KindOf(err) != apperr.KindValidation {
		t.Fatalf("expected validation error, got %v", err)
	}
	if _, err := svc.Post(ctx, "c1", "u1", strings.Repeat("a", maxMessageLength+1)); apperr.KindOf(err) != apperr.KindValidation {
		t.Fatalf("expected validation error for long message, got %v", err)
	}
	if _, err := svc.Post(ctx, "c1", "u1", strings.Repeat("å", maxMessageLength)); err != nil {
		t.Fatalf("expected message at the limit to pass, got %v", err)
	}
}

func TestEditWindow(t *testing.T) {
	svc, repo, _, now := newTestService()
	ctx := context.Background()

	message, err := svc.Post(ctx, "c1", "u1", "first")
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}

	if _, err := svc.Edit(ctx, "c1", "u2", message.ID, "hijack"); !errors.Is(err, ErrNotEditable) {
		t.Fatalf("expected ErrNotEditable for other member, got %v", err)
	}
	if _, err := svc.Edit(ctx, "c1", "admin", message.ID, "admin edit"); !errors.Is(err, ErrNotEditable) {
		t.Fatalf("expected ErrNotEditable for admin, got %v", err)
	}

	*now = testNow.Add(14 * time.Minute)
	edited, err := svc.Edit(ctx, "c1", "u1", message.ID, "fixed")
	if err != nil {
		t.Fatalf("expected edit inside window, got %v", err)
	}
	if edited.Content != "fixed" || !edited.Edited() {
		t.Fatalf("expected edited message, got %+v", edited)
	}
	if stored := repo.messages[message.ID]; stored.EditedAt == nil || !stored.EditedAt.Equal(*now) {
		t.Fatalf("expected edited_at stored, got %v", stored.EditedAt)
	}

	*now = testNow.Add(16 * time.Minute)
	if _, err := svc.Edit(ctx, "c1", "u1", message.ID, "late"); !errors.Is(err, ErrNotEditable) {
		t.Fatalf("expected ErrNotEditable after window, got %v", err)
	}
}

func TestDeleteRules(t *testing.T) {
	svc, repo, notifier, _ := newTestService()
	ctx := context.Background()

	first, _ := svc.Post(ctx, "c1", "u1", "one")
	second, _ := svc.Post(ctx, "c1", "u1", "two")
	if _, err := svc.Reply(ctx, "c1", "u2", first.ID, "reply"); err != nil {
		t.Fatalf("expected no error, got %v", err)
	}

	if err := svc.Delete(ctx, "c1", "u2", first.ID); !errors.Is(err, apperr.ErrForbidden) {
		t.Fatalf("expected ErrForbidden, got %v", err)
	}
	if err := svc.Delete(ctx, "c1", "u1", first.ID); err != nil {
		t.Fatalf("expected author delete, got %v", err)
	}
	if len(repo.replies) != 0 {
		t.Fatalf("expected replies removed with message")
	}
	if err := svc.Delete(ctx, "c1", "admin", second.ID); err != nil {
		t.Fatalf("expected admin delete, got %v", err)
	}
	if err := svc.Delete(ctx, "c1", "admin", second.ID); !errors.Is(err, ErrMessageNotFound) {
		t.Fatalf("expected ErrMessageNotFound, got %v", err)
	}

	last := notifier.events[len(notifier.events)-1]
	if last.Type != events.TypeMessageChanged || last.Data["action"] != "deleted" {
		t.Fatalf("unexpected last event %+v", last)
	}
}

func TestRepliesFollowMessageRules(t *testing.T) {
	svc, _, _, now := newTestService()
	ctx := context.Background()

	message, _ := svc.Post(ctx, "c1", "u1", "question")
	if _, err := svc.Reply(ctx, "c1", "u2", "missing", "hi"); !errors.Is(err, ErrMessageNotFound) {
		t.Fatalf("expected ErrMessageNotFound, got %v", err)
	}
	if _, err := svc.Reply(ctx, "c1", "u2", message.ID, strings.Repeat("a", maxReplyLength+1)); apperr.KindOf(err) != apperr.KindValidation {
		t.Fatalf("expected validation error, got %v", err)
	}

	reply, err := svc.Reply(ctx, "c1", "u2", message.ID, "answer")
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if _, err := svc.EditReply(ctx, "c1", "u1", message.ID, reply.ID, "nope"); !errors.Is(err, ErrNotEditable) {
		t.Fatalf("expected ErrNotEditable, got %v", err)
	}
	if _, err := svc.EditReply(ctx, "c1", "u2", message.ID, reply.ID, "better answer"); err != nil {
		t.Fatalf("expected no error, got %v", err)
	}

	*now = testNow.Add(time.Hour)
	if _, err := svc.EditReply(ctx, "c1", "u2", message.ID, reply.ID, "late"); !errors.Is(err, ErrNotEditable) {
		t.Fatalf("expected ErrNotEditable after window, got %v", err)
	}
	if err := svc.DeleteReply(ctx, "c1", "u1", message.ID, reply.ID); !errors.Is(err, apperr.ErrForbidden) {
		t.Fatalf("expected ErrForbidden, got %v", err)
	}
	if err := svc.DeleteReply(ctx, "c1", "admin", message.ID, reply.ID); err != nil {
		t.Fatalf("expected admin delete, got %v", err)
	}
}

func TestListNewestFirst(t *testing.T) {
	svc, repo, _, _ := newTestService()
	ctx := context.Background()

	older := &Message{ID: "m-old", ClubID: "c1", UserID: "u1", Content: "old", CreatedAt: testNow.Add(-time.Hour)}
	newer := &Message{ID: "m-new", ClubID: "c1", UserID: "u1", Content: "new", CreatedAt: testNow}
	_ = repo.CreateMessage(ctx, older)
	_ = repo.CreateMessage(ctx, newer)
	_ = repo.CreateReply(ctx, &Reply{ID: "r2", MessageID: "m-old", UserID: "u2", Content: "b", CreatedAt: testNow})
	_ = repo.CreateReply(ctx, &Reply{ID: "r1", MessageID: "m-old", UserID: "u2", Content: "a", CreatedAt: testNow.Add(-time.Minute)})

	list, err := svc.List(ctx, "c1", "u2", 0)
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if len(list) != 2 || list[0].ID != "m-new" {
		t.Fatalf("expected newest first, got %+v", list)
	}
	if len(list[1].Replies) != 2 || list[1].Replies[0].ID != "r1" {
		t.Fatalf("expected replies oldest first, got %+v", list[1].Replies)
	}
	if _, err := svc.List(ctx, "c1", "outsider", 0); !errors.Is(err, apperr.ErrForbidden) {
		t.Fatalf("expected ErrForbidden, got %v", err)
	}
}
