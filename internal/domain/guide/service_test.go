package guide

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"book-club-go/internal/domain/apperr"
	booksdomain "book-club-go/internal/domain/books"
	clubsdomain "book-club-go/internal/domain/clubs"
	"book-club-go/internal/domain/events"
	meetingsdomain "book-club-go/internal/domain/meetings"
	questionsdomain "book-club-go/internal/domain/questions"
	selectiondomain "book-club-go/internal/domain/selection"
)

type fakeGuideRepo struct {
	mu      sync.Mutex
	guides  map[string]Guide
	saves   int
	saveErr error
}

func newFakeGuideRepo() *fakeGuideRepo {
	return &fakeGuideRepo{guides: map[string]Guide{}}
}

func (r *fakeGuideRepo) GetByMeeting(_ context.Context, meetingID string) (*Guide, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	g, ok := r.guides[meetingID]
	if !ok {
		return nil, ErrGuideNotFound
	}
	g.Items = append([]Item(nil), g.Items...)
	return &g, nil
}

func (r *fakeGuideRepo) Save(_ context.Context, guide *Guide) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.saveErr != nil {
		return r.saveErr
	}
	stored := *guide
	stored.Items = append([]Item(nil), guide.Items...)
	if existing, ok := r.guides[guide.MeetingID]; ok {
		stored.ID = existing.ID
	}
	r.guides[guide.MeetingID] = stored
	r.saves++
	return nil
}

type fakeGuard struct{}

func (fakeGuard) Authorize(_ context.Context, clubID, userID, role string) (*clubsdomain.Club, error) {
	switch userID {
	case "admin":
	case "u1":
		if role == clubsdomain.RoleAdmin {
			return nil, apperr.ErrForbidden
		}
	default:
		return nil, apperr.ErrForbidden
	}
	return &clubsdomain.Club{ID: clubID, Language: "sv"}, nil
}

type fakeMeetings struct {
	meeting  meetingsdomain.Meeting
	limit    int
	reserved int
}

func (m *fakeMeetings) GetMeeting(_ context.Context, clubID, _, meetingID string) (*meetingsdomain.Meeting, error) {
	if clubID != m.meeting.ClubID || meetingID != m.meeting.ID {
		return nil, meetingsdomain.ErrMeetingNotFound
	}
	meeting := m.meeting
	return &meeting, nil
}

func (m *fakeMeetings) ReserveRegeneration(ctx context.Context, clubID, userID, meetingID string) (*meetingsdomain.Meeting, error) {
	meeting, err := m.GetMeeting(ctx, clubID, userID, meetingID)
	if err != nil {
		return nil, err
	}
	if meeting.ClubBook == nil {
		return nil, meetingsdomain.ErrNoBook
	}
	if m.reserved >= m.limit {
		return nil, meetingsdomain.ErrRegenerationLimitExceeded
	}
	m.reserved++
	meeting.RegenerateCount = m.reserved
	return meeting, nil
}

func (m *fakeMeetings) ReleaseRegeneration(_ context.Context, clubID, meetingID string) error {
	if clubID != m.meeting.ClubID || meetingID != m.meeting.ID {
		return meetingsdomain.ErrMeetingNotFound
	}
	if m.reserved > 0 {
		m.reserved--
	}
	return nil
}

type fakeQuestions struct {
	generated   int
	regenerated int
	language    string
}

func (q *fakeQuestions) GenerateForBook(_ context.Context, book *booksdomain.Book, language string) []questionsdomain.Question {
	q.generated++
	q.language = language
	return []questionsdomain.Question{
		{BookID: book.ID, Text: "Could you be friends with the narrator?"},
		{BookID: book.ID, Text: strings.Repeat("x", maxItemLength+1)},
		{BookID: book.ID, Text: "Which scene stuck?"},
	}
}

func (q *fakeQuestions) RegenerateForBook(_ context.Context, book *booksdomain.Book, language string) []questionsdomain.Question {
	q.regenerated++
	q.language = language
	return []questionsdomain.Question{{BookID: book.ID, Text: "Fresh question?"}}
}

type recordingNotifier struct {
	mu     sync.Mutex
	events []events.Event
}

func (n *recordingNotifier) Publish(_ context.Context, event events.Event) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.events = append(n.events, event)
}

func testMeeting(withBook bool) meetingsdomain.Meeting {
	meeting := meetingsdomain.Meeting{ID: "m1", ClubID: "c1", State: meetingsdomain.StateScheduled}
	if withBook {
		bookID := "cb1"
		meeting.ClubBookID = &bookID
		meeting.ClubBook = &selectiondomain.ClubBook{
			ID:   bookID,
			Book: &booksdomain.Book{ID: "b1", Title: "Hunger"},
		}
	}
	return meeting
}

func newTestService(withBook bool) (*Service, *fakeGuideRepo, *fakeMeetings, *fakeQuestions, *recordingNotifier) {
	repo := newFakeGuideRepo()
	meetings := &fakeMeetings{meeting: testMeeting(withBook), limit: meetingsdomain.DefaultRegenerateLimit}
	questions := &fakeQuestions{}
	notifier := &recordingNotifier{}
	svc := NewService(repo, fakeGuard{}, meetings, questions, WithNotifier(notifier))
	svc.now = func() time.Time { return time.Date(2026, 4, 2, 10, 0, 0, 0, time.UTC) }
	return svc, repo, meetings, questions, notifier
}

func TestGuideItemOperations(t *testing.T) {
	g := New("m1")
	first, err := g.Add("  First  ", SourceUserAdded)
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if first.Text != "First" || first.Checked {
		t.Fatalf("unexpected item %+v", first)
	}
	second, _ := g.Add("Second", SourceAIGenerated)

	if _, err := g.Add("bad", "imported"); apperr.KindOf(err) != apperr.KindValidation {
		t.Fatalf("expected validation error for source, got %v", err)
	}
	if _, err := g.Add(" ", SourceUserAdded); apperr.KindOf(err) != apperr.KindValidation {
		t.Fatalf("expected validation error for empty text, got %v", err)
	}

	if item, _ := g.Toggle(first.ID); !item.Checked {
		t.Fatalf("expected toggle to check")
	}
	if item, _ := g.Check(first.ID); !item.Checked {
		t.Fatalf("expected check to stay checked")
	}
	if g.CheckedCount() != 1 {
		t.Fatalf("expected 1 checked, got %d", g.CheckedCount())
	}
	if item, _ := g.Uncheck(first.ID); item.Checked {
		t.Fatalf("expected uncheck")
	}

	if _, err := g.Update(second.ID, "Second edited"); err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if err := g.Remove(first.ID); err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if len(g.Items) != 1 || g.Items[0].Text != "Second edited" {
		t.Fatalf("unexpected items %+v", g.Items)
	}
	if g.Find(first.ID) != -1 {
		t.Fatalf("expected removed item to be gone")
	}
	if _, err := g.Toggle("missing"); !errors.Is(err, ErrItemNotFound) {
		t.Fatalf("expected ErrItemNotFound, got %v", err)
	}
	if err := g.Remove("missing"); !errors.Is(err, ErrItemNotFound) {
		t.Fatalf("expected ErrItemNotFound, got %v", err)
	}
}

func TestSeedGuide(t *testing.T) {
	repo := newFakeGuideRepo()
	questions := &fakeQuestions{}
	seeder := NewSeeder(repo, questions)

	noBook := testMeeting(false)
	if err := seeder.SeedGuide(context.Background(), &noBook, "sv"); err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if questions.generated != 0 || repo.saves != 0 {
		t.Fatalf("expected nothing seeded without a book")
	}

	meeting := testMeeting(true)
	if err := seeder.SeedGuide(context.Background(), &meeting, "sv"); err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	stored, err := repo.GetByMeeting(context.Background(), "m1")
	if err != nil {
		t.Fatalf("expected seeded guide, got %v", err)
	}
	if len(stored.Items) != 2 {
		t.Fatalf("expected oversized question skipped, got %+v", stored.Items)
	}
	for _, item := range stored.Items {
		if item.Source != SourceAIGenerated {
			t.Fatalf("expected ai_generated source, got %+v", item)
		}
	}
	if questions.language != "sv" {
		t.Fatalf("expected club language, got %q", questions.language)
	}
}

func TestGetReturnsEmptyGuide(t *testing.T) {
	svc, _, _, _, _ := newTestService(true)
	guide, err := svc.Get(context.Background(), "c1", "u1", "m1")
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if guide.MeetingID != "m1" || len(guide.Items) != 0 {
		t.Fatalf("expected empty guide, got %+v", guide)
	}
	if _, err := svc.Get(context.Background(), "c1", "u1", "other"); !errors.Is(err, meetingsdomain.ErrMeetingNotFound) {
		t.Fatalf("expected ErrMeetingNotFound, got %v", err)
	}
}

func TestEditItemsAndPermissions(t *testing.T) {
	svc, repo, _, _, notifier := newTestService(true)
	ctx := context.Background()

	if _, err := svc.AddItem(ctx, "c1", "u1", "m1", "Member item"); !errors.Is(err, apperr.ErrForbidden) {
		t.Fatalf("expected member add to be forbidden, got %v", err)
	}

	guide, err := svc.AddItem(ctx, "c1", "admin", "m1", "Opening round")
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	itemID := guide.Items[0].ID
	if guide.Items[0].Source != SourceUserAdded {
		t.Fatalf("expected user_added, got %q", guide.Items[0].Source)
	}

	if _, err := svc.ToggleItem(ctx, "c1", "u1", "m1", itemID); err != nil {
		t.Fatalf("expected member toggle, got %v", err)
	}
	stored, _ := repo.GetByMeeting(ctx, "m1")
	if !stored.Items[0].Checked {
		t.Fatalf("expected item checked after toggle")
	}

	if _, err := svc.UpdateItem(ctx, "c1", "u1", "m1", itemID, "x"); !errors.Is(err, apperr.ErrForbidden) {
		t.Fatalf("expected member update forbidden, got %v", err)
	}
	if _, err := svc.UpdateItem(ctx, "c1", "admin", "m1", itemID, "Closing round"); err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if _, err := svc.RemoveItem(ctx, "c1", "admin", "m1", "missing"); !errors.Is(err, ErrItemNotFound) {
		t.Fatalf("expected ErrItemNotFound, got %v", err)
	}
	guide, err = svc.RemoveItem(ctx, "c1", "admin", "m1", itemID)
	if err != nil || len(guide.Items) != 0 {
		t.Fatalf("expected empty guide after remove, got %+v (%v)", guide, err)
	}

	if len(notifier.events) != 4 {
		t.Fatalf("expected 4 guide events, got %d", len(notifier.events))
	}
	last := notifier.events[len(notifier.events)-1]
	if last.Type != events.TypeGuideUpdated || last.Data["action"] != "remove" || last.EntityID != itemID {
		t.Fatalf("unexpected event %+v", last)
	}
}

func TestRegenerateLimit(t *testing.T) {
	svc, repo, meetings, questions, _ := newTestService(true)
	ctx := context.Background()

	for i := 1; i <= meetingsdomain.DefaultRegenerateLimit; i++ {
		guide, err := svc.Regenerate(ctx, "c1", "admin", "m1")
		if err != nil {
			t.Fatalf("regeneration %d: expected no error, got %v", i, err)
		}
		if len(guide.Items) != i {
			t.Fatalf("regeneration %d: expected appended items, got %d", i, len(guide.Items))
		}
	}

	_, err := svc.Regenerate(ctx, "c1", "admin", "m1")
	if !errors.Is(err, meetingsdomain.ErrRegenerationLimitExceeded) {
		t.Fatalf("expected ErrRegenerationLimitExceeded, got %v", err)
	}
	if questions.regenerated != meetingsdomain.DefaultRegenerateLimit {
		t.Fatalf("expected generator called %d times, got %d", meetingsdomain.DefaultRegenerateLimit, questions.regenerated)
	}
	if meetings.reserved != meetingsdomain.DefaultRegenerateLimit {
		t.Fatalf("expected count to stay at limit, got %d", meetings.reserved)
	}
	stored, _ := repo.GetByMeeting(ctx, "m1")
	if len(stored.Items) != meetingsdomain.DefaultRegenerateLimit {
		t.Fatalf("expected no items from the rejected regeneration, got %d", len(stored.Items))
	}
	if questions.language != "sv" {
		t.Fatalf("expected club language, got %q", questions.language)
	}
}

func TestRegenerateReleasesReservationWhenSaveFails(t *testing.T) {
	svc, repo, meetings, _, notifier := newTestService(true)
	repo.saveErr = errors.New("connection reset")

	if _, err := svc.Regenerate(context.Background(), "c1", "admin", "m1"); !errors.Is(err, repo.saveErr) {
		t.Fatalf("expected save error, got %v", err)
	}
	if meetings.reserved != 0 {
		t.Fatalf("expected reservation released, got %d", meetings.reserved)
	}
	if len(notifier.events) != 0 {
		t.Fatalf("expected no event for a failed regeneration, got %d", len(notifier.events))
	}

	repo.saveErr = nil
	if _, err := svc.Regenerate(context.Background(), "c1", "admin", "m1"); err != nil {
		t.Fatalf("expected retry to succeed, got %v", err)
	}
	if meetings.reserved != 1 {
		t.Fatalf("expected one regeneration used, got %d", meetings.reserved)
	}
}

func TestRegenerateRequiresAdminAndBook(t *testing.T) {
	svc, _, meetings, questions, _ := newTestService(true)
	if _, err := svc.Regenerate(context.Background(), "c1", "u1", "m1"); !errors.Is(err, apperr.ErrForbidden) {
		t.Fatalf("expected ErrForbidden, got %v", err)
	}
	if meetings.reserved != 0 {
		t.Fatalf("expected no reservation for a member")
	}

	svc, _, _, questions, _ = newTestService(false)
	if _, err := svc.Regenerate(context.Background(), "c1", "admin", "m1"); !errors.Is(err, meetingsdomain.ErrNoBook) {
		t.Fatalf("expected ErrNoBook, got %v", err)
	}
	if questions.regenerated != 0 {
		t.Fatalf("expected generator not called")
	}
}
