package guide

import (
	"context"
	"errors"
	"fmt"
	"time"

	booksdomain "book-club-go/internal/domain/books"
	clubsdomain "book-club-go/internal/domain/clubs"
	"book-club-go/internal/domain/events"
	meetingsdomain "book-club-go/internal/domain/meetings"
	questionsdomain "book-club-go/internal/domain/questions"
	"book-club-go/internal/telemetry"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

type Guard interface {
	Authorize(ctx context.Context, clubID, userID, role string) (*clubsdomain.Club, error)
}

type Meetings interface {
	GetMeeting(ctx context.Context, clubID, userID, meetingID string) (*meetingsdomain.Meeting, error)
	ReserveRegeneration(ctx context.Context, clubID, userID, meetingID string) (*meetingsdomain.Meeting, error)
	ReleaseRegeneration(ctx context.Context, clubID, meetingID string) error
}

type QuestionSource interface {
	GenerateForBook(ctx context.Context, book *booksdomain.Book, language string) []questionsdomain.Question
	RegenerateForBook(ctx context.Context, book *booksdomain.Book, language string) []questionsdomain.Question
}

// Seeder fills the guide of a new meeting with generated questions.
type Seeder struct {
	repo      Repository
	questions QuestionSource
}

func NewSeeder(repo Repository, questions QuestionSource) *Seeder {
	return &Seeder{repo: repo, questions: questions}
}

func (s *Seeder) SeedGuide(ctx context.Context, meeting *meetingsdomain.Meeting, language string) error {
	book := meetingBook(meeting)
	if book == nil {
		return nil
	}
	guide := New(meeting.ID)
	appendQuestions(guide, s.questions.GenerateForBook(ctx, book, language))
	return s.repo.Save(ctx, guide)
}

// Service edits discussion guides. Each change reads the document, applies
// the edit and writes it back whole; concurrent edits are last-writer-wins.
type Service struct {
	repo      Repository
	guard     Guard
	meetings  Meetings
	questions QuestionSource
	notifier  events.Notifier
	tracer    trace.Tracer
	now       func() time.Time
}

type ServiceOption func(*Service)

func WithNotifier(n events.Notifier) ServiceOption {
	return func(s *Service) {
		s.notifier = events.OrNoop(n)
	}
}

func NewService(repo Repository, guard Guard, meetings Meetings, questions QuestionSource, opts ...ServiceOption) *Service {
	svc := &Service{
		repo:      repo,
		guard:     guard,
		meetings:  meetings,
		questions: questions,
		notifier:  events.Noop{},
		tracer:    telemetry.Tracer("guide"),
		now:       time.Now,
	}
	for _, opt := range opts {
		opt(svc)
	}
	return svc
}

// Get returns the meeting's guide, or an empty one when none was seeded.
func (s *Service) Get(ctx context.Context, clubID, userID, meetingID string) (*Guide, error) {
	if _, err := s.meetings.GetMeeting(ctx, clubID, userID, meetingID); err != nil {
		return nil, err
	}
	return s.load(ctx, meetingID)
}

func (s *Service) AddItem(ctx context.Context, clubID, userID, meetingID, text string) (*Guide, error) {
	return s.edit(ctx, clubID, userID, meetingID, clubsdomain.RoleAdmin, "add", func(g *Guide) (string, error) {
		item, err := g.Add(text, SourceUserAdded)
		return item.ID, err
	})
}

func (s *Service) UpdateItem(ctx context.Context, clubID, userID, meetingID, itemID, text string) (*Guide, error) {
	return s.edit(ctx, clubID, userID, meetingID, clubsdomain.RoleAdmin, "update", func(g *Guide) (string, error) {
		_, err := g.Update(itemID, text)
		return itemID, err
	})
}

func (s *Service) RemoveItem(ctx context.Context, clubID, userID, meetingID, itemID string) (*Guide, error) {
	return s.edit(ctx, clubID, userID, meetingID, clubsdomain.RoleAdmin, "remove", func(g *Guide) (string, error) {
		return itemID, g.Remove(itemID)
	})
}

// ToggleItem is open to every member so the checklist can be ticked off
// during the meeting.
func (s *Service) ToggleItem(ctx context.Context, clubID, userID, meetingID, itemID string) (*Guide, error) {
	return s.edit(ctx, clubID, userID, meetingID, clubsdomain.RoleMember, "toggle", func(g *Guide) (string, error) {
		_, err := g.Toggle(itemID)
		return itemID, err
	})
}

// Regenerate appends a fresh batch of questions. The regeneration is
// reserved on the meeting first, so a spent limit never reaches the
// generator. The reservation is released when the guide cannot be saved.
func (s *Service) Regenerate(ctx context.Context, clubID, userID, meetingID string) (_ *Guide, err error) {
	ctx, span := s.startSpan(ctx, "Regenerate", clubID, meetingID)
	defer func() { endSpan(span, err) }()

	club, err := s.guard.Authorize(ctx, clubID, userID, clubsdomain.RoleAdmin)
	if err != nil {
		return nil, err
	}
	meeting, err := s.meetings.ReserveRegeneration(ctx, clubID, userID, meetingID)
	if err != nil {
		return nil, err
	}
	book := meetingBook(meeting)
	if book == nil {
		return nil, meetingsdomain.ErrNoBook
	}

	generated := s.questions.RegenerateForBook(ctx, book, club.Language)

	guide, err := s.load(ctx, meetingID)
	if err != nil {
		return nil, s.releaseRegeneration(ctx, clubID, meetingID, err)
	}
	appendQuestions(guide, generated)
	if err := s.repo.Save(ctx, guide); err != nil {
		return nil, s.releaseRegeneration(ctx, clubID, meetingID, err)
	}
	s.publish(ctx, clubID, meetingID, "regenerate", "", map[string]any{"regenerate_count": meeting.RegenerateCount})
	return guide, nil
}

func (s *Service) releaseRegeneration(ctx context.Context, clubID, meetingID string, cause error) error {
	if err := s.meetings.ReleaseRegeneration(ctx, clubID, meetingID); err != nil {
		return errors.Join(cause, fmt.Errorf("release regeneration: %w", err))
	}
	return cause
}

func (s *Service) edit(ctx context.Context, clubID, userID, meetingID, role, action string, apply func(*Guide) (string, error)) (_ *Guide, err error) {
	ctx, span := s.startSpan(ctx, action, clubID, meetingID)
	defer func() { endSpan(span, err) }()

	if _, err := s.guard.Authorize(ctx, clubID, userID, role); err != nil {
		return nil, err
	}
	if _, err := s.meetings.GetMeeting(ctx, clubID, userID, meetingID); err != nil {
		return nil, err
	}

	guide, err := s.load(ctx, meetingID)
	if err != nil {
		return nil, err
	}
	itemID, err := apply(guide)
	if err != nil {
		return nil, err
	}
	if err := s.repo.Save(ctx, guide); err != nil {
		return nil, err
	}
	s.publish(ctx, clubID, meetingID, action, itemID, nil)
	return guide, nil
}

func (s *Service) load(ctx context.Context, meetingID string) (*Guide, error) {
	guide, err := s.repo.GetByMeeting(ctx, meetingID)
	if errors.Is(err, ErrGuideNotFound) {
		return New(meetingID), nil
	}
	return guide, err
}

func (s *Service) publish(ctx context.Context, clubID, meetingID, action, itemID string, data map[string]any) {
	if data == nil {
		data = map[string]any{}
	}
	data["action"] = action
	s.notifier.Publish(ctx, events.Event{
		Type:      events.TypeGuideUpdated,
		ClubID:    clubID,
		MeetingID: meetingID,
		EntityID:  itemID,
		Data:      data,
		At:        s.now(),
	})
}

func (s *Service) startSpan(ctx context.Context, op, clubID, meetingID string) (context.Context, trace.Span) {
	return s.tracer.Start(ctx, "guide."+op, trace.WithAttributes(
		attribute.String("club.id", clubID),
		attribute.String("meeting.id", meetingID),
	))
}

func endSpan(span trace.Span, err error) {
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	span.End()
}

func meetingBook(meeting *meetingsdomain.Meeting) *booksdomain.Book {
	if meeting == nil || meeting.ClubBook == nil {
		return nil
	}
	return meeting.ClubBook.Book
}

// appendQuestions adds the questions as ai_generated items. Questions that
// fail item validation are skipped.
func appendQuestions(guide *Guide, questions []questionsdomain.Question) {
	for _, q := range questions {
		_, _ = guide.Add(q.Text, SourceAIGenerated)
	}
}
