package meetings

import (
	"context"
	"errors"
	"strings"
	"time"
	"unicode/utf8"

	"book-club-go/internal/domain/access"
	"book-club-go/internal/domain/apperr"
	clubsdomain "book-club-go/internal/domain/clubs"
	"book-club-go/internal/domain/events"
	"book-club-go/internal/telemetry"
	"book-club-go/pkg/logger"
	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

const (
	maxTitleLength   = 200
	maxCommentLength = 1000
)

type Guard interface {
	Authorize(ctx context.Context, clubID, userID, role string) (*clubsdomain.Club, error)
}

// GuideSeeder fills the discussion guide of a newly created meeting.
type GuideSeeder interface {
	SeedGuide(ctx context.Context, meeting *Meeting, language string) error
}

type Service struct {
	repo            Repository
	guard           Guard
	seeder          GuideSeeder
	notifier        events.Notifier
	regenerateLimit int
	tracer          trace.Tracer
	log             logger.Logger
	now             func() time.Time
}

type ServiceOption func(*Service)

func WithGuideSeeder(seeder GuideSeeder) ServiceOption {
	return func(s *Service) {
		s.seeder = seeder
	}
}

func WithNotifier(n events.Notifier) ServiceOption {
	return func(s *Service) {
		s.notifier = events.OrNoop(n)
	}
}

func WithRegenerateLimit(limit int) ServiceOption {
	return func(s *Service) {
		if limit > 0 {
			s.regenerateLimit = limit
		}
	}
}

func NewService(repo Repository, guard Guard, log logger.Logger, opts ...ServiceOption) *Service {
	svc := &Service{
		repo:            repo,
		guard:           guard,
		notifier:        events.Noop{},
		regenerateLimit: DefaultRegenerateLimit,
		tracer:          telemetry.Tracer("meetings"),
		log:             log,
		now:             time.Now,
	}
	for _, opt := range opts {
		opt(svc)
	}
	return svc
}

func (s *Service) RegenerateLimit() int {
	return s.regenerateLimit
}

func (s *Service) ListMeetings(ctx context.Context, clubID, userID string) (upcoming, past []Meeting, err error) {
	if _, err := s.guard.Authorize(ctx, clubID, userID, clubsdomain.RoleMember); err != nil {
		return nil, nil, err
	}
	now := s.now()
	if upcoming, err = s.repo.ListUpcoming(ctx, clubID, now); err != nil {
		return nil, nil, err
	}
	if past, err = s.repo.ListPast(ctx, clubID, now); err != nil {
		return nil, nil, err
	}
	return upcoming, past, nil
}

func (s *Service) GetMeeting(ctx context.Context, clubID, userID, meetingID string) (*Meeting, error) {
	if _, err := s.guard.Authorize(ctx, clubID, userID, clubsdomain.RoleMember); err != nil {
		return nil, err
	}
	return s.repo.GetMeeting(ctx, clubID, meetingID)
}

// CreateMeeting stores the meeting, answers yes for the creator and seeds the
// discussion guide once the meeting is committed. Without an explicit book the
// club's reading book, else its next book, is attached.
func (s *Service) CreateMeeting(ctx context.Context, clubID, userID string, input MeetingInput) (*Meeting, error) {
	club, err := s.guard.Authorize(ctx, clubID, userID, clubsdomain.RoleAdmin)
	if err != nil {
		return nil, err
	}

	meeting := &Meeting{
		ID:        uuid.NewString(),
		ClubID:    clubID,
		State:     StateScheduled,
		CreatedBy: userID,
	}
	if err := applyMeetingInput(meeting, input); err != nil {
		return nil, err
	}

	err = s.repo.Transaction(ctx, func(tx Repository) error {
		if meeting.ClubBookID == nil {
			bookID, err := tx.DefaultClubBookID(ctx, clubID)
			if err != nil {
				return err
			}
			meeting.ClubBookID = bookID
		} else if err := checkClubBook(ctx, tx, clubID, *meeting.ClubBookID); err != nil {
			return err
		}
		if err := tx.CreateMeeting(ctx, meeting); err != nil {
			return err
		}
		return tx.SaveRsvp(ctx, &Rsvp{
			ID:        uuid.NewString(),
			MeetingID: meeting.ID,
			UserID:    userID,
			Response:  ResponseYes,
		})
	})
	if err != nil {
		return nil, err
	}

	created, err := s.repo.GetMeeting(ctx, clubID, meeting.ID)
	if err != nil {
		return nil, err
	}
	if s.seeder != nil && created.ClubBook != nil {
		if err := s.seeder.SeedGuide(ctx, created, club.Language); err != nil {
			logger.WithTrace(ctx, s.log).Warn("meetings.create: seed guide failed", "meeting_id", created.ID, "error", err)
		}
	}
	return created, nil
}

func (s *Service) UpdateMeeting(ctx context.Context, clubID, userID, meetingID string, input MeetingInput) (*Meeting, error) {
	if _, err := s.guard.Authorize(ctx, clubID, userID, clubsdomain.RoleAdmin); err != nil {
		return nil, err
	}

	meeting, err := s.repo.GetMeeting(ctx, clubID, meetingID)
	if err != nil {
		return nil, err
	}
	if err := applyMeetingInput(meeting, input); err != nil {
		return nil, err
	}
	if input.ClubBookID != nil && *input.ClubBookID != "" {
		if err := checkClubBook(ctx, s.repo, clubID, *input.ClubBookID); err != nil {
			return nil, err
		}
	}
	if err := s.repo.UpdateMeeting(ctx, meeting); err != nil {
		return nil, err
	}
	return s.repo.GetMeeting(ctx, clubID, meetingID)
}

func (s *Service) DeleteMeeting(ctx context.Context, clubID, userID, meetingID string) error {
	if _, err := s.guard.Authorize(ctx, clubID, userID, clubsdomain.RoleAdmin); err != nil {
		return err
	}
	if _, err := s.repo.GetMeeting(ctx, clubID, meetingID); err != nil {
		return err
	}
	return s.repo.SoftDeleteMeeting(ctx, meetingID)
}

func checkClubBook(ctx context.Context, repo Repository, clubID, clubBookID string) error {
	ok, err := repo.ClubBookInClub(ctx, clubID, clubBookID)
	if err != nil {
		return err
	}
	if !ok {
		return ErrClubBookMissing
	}
	return nil
}

func applyMeetingInput(meeting *Meeting, input MeetingInput) error {
	title := strings.TrimSpace(input.Title)
	if title == "" {
		return apperr.Invalid("title", "is required")
	}
	if utf8.RuneCountInString(title) > maxTitleLength {
		return apperr.Invalid("title", "is too long")
	}
	if input.ScheduledAt.IsZero() {
		return apperr.Invalid("scheduled_at", "is required")
	}
	if input.EndsAt != nil && !input.EndsAt.After(input.ScheduledAt) {
		return apperr.Invalid("ends_at", "must be after scheduled_at")
	}

	locationType := strings.TrimSpace(input.LocationType)
	if locationType == "" {
		locationType = LocationTBD
	}
	switch locationType {
	case LocationPhysical, LocationVideo, LocationTBD:
	default:
		return apperr.Invalid("location_type", "must be physical, video or tbd")
	}

	meeting.Title = title
	meeting.ScheduledAt = input.ScheduledAt
	meeting.EndsAt = input.EndsAt
	meeting.LocationType = locationType
	meeting.Location = optional(input.Location)
	meeting.Notes = optional(input.Notes)
	if input.ClubBookID != nil && *input.ClubBookID != "" {
		meeting.ClubBookID = input.ClubBookID
	}
	if input.HostID != nil && *input.HostID != "" {
		meeting.HostID = input.HostID
	}
	return nil
}

func optional(value string) *string {
	value = strings.TrimSpace(value)
	if value == "" {
		return nil
	}
	return &value
}

func (s *Service) Start(ctx context.Context, clubID, userID, meetingID string) (*Meeting, error) {
	return s.transition(ctx, clubID, userID, meetingID, "Start", func(m *Meeting, now time.Time) error {
		return m.Start(now)
	})
}

func (s *Service) End(ctx context.Context, clubID, userID, meetingID string) (*Meeting, error) {
	return s.transition(ctx, clubID, userID, meetingID, "End", func(m *Meeting, now time.Time) error {
		return m.End(now)
	})
}

func (s *Service) Resume(ctx context.Context, clubID, userID, meetingID string) (*Meeting, error) {
	return s.transition(ctx, clubID, userID, meetingID, "Resume", func(m *Meeting, _ time.Time) error {
		return m.Resume()
	})
}

func (s *Service) transition(ctx context.Context, clubID, userID, meetingID, op string, apply func(*Meeting, time.Time) error) (_ *Meeting, err error) {
	ctx, span := s.tracer.Start(ctx, "meetings."+op, trace.WithAttributes(
		attribute.String("club.id", clubID),
		attribute.String("meeting.id", meetingID),
	))
	defer func() {
		if err != nil {
			span.RecordError(err)
		}
		span.End()
	}()

	if _, err := s.guard.Authorize(ctx, clubID, userID, clubsdomain.RoleAdmin); err != nil {
		return nil, err
	}

	var meeting *Meeting
	err = s.repo.Transaction(ctx, func(tx Repository) error {
		if meeting, err = tx.GetMeeting(ctx, clubID, meetingID); err != nil {
			return err
		}
		if err := apply(meeting, s.now()); err != nil {
			return err
		}
		return tx.SaveState(ctx, meeting)
	})
	if err != nil {
		return nil, err
	}

	s.notifier.Publish(ctx, events.Event{
		Type:      events.TypeMeetingStateChanged,
		ClubID:    clubID,
		MeetingID: meetingID,
		EntityID:  meetingID,
		Data:      map[string]any{"state": string(meeting.State)},
		At:        s.now(),
	})
	return meeting, nil
}

// ReserveRegeneration spends one question regeneration for the meeting. It
// fails before any generator call once the limit is reached.
func (s *Service) ReserveRegeneration(ctx context.Context, clubID, userID, meetingID string) (*Meeting, error) {
	if _, err := s.guard.Authorize(ctx, clubID, userID, clubsdomain.RoleAdmin); err != nil {
		return nil, err
	}

	meeting, err := s.repo.GetMeeting(ctx, clubID, meetingID)
	if err != nil {
		return nil, err
	}
	if meeting.ClubBook == nil || meeting.ClubBook.Book == nil {
		return nil, ErrNoBook
	}
	if !meeting.CanRegenerate(s.regenerateLimit) {
		return nil, ErrRegenerationLimitExceeded
	}

	reserved, err := s.repo.ReserveRegeneration(ctx, meetingID, s.regenerateLimit)
	if err != nil {
		return nil, err
	}
	if !reserved {
		return nil, ErrRegenerationLimitExceeded
	}
	meeting.RegenerateCount++
	return meeting, nil
}

// ReleaseRegeneration returns a reservation whose guide never got saved.
func (s *Service) ReleaseRegeneration(ctx context.Context, clubID, meetingID string) error {
	if _, err := s.repo.GetMeeting(ctx, clubID, meetingID); err != nil {
		return err
	}
	return s.repo.ReleaseRegeneration(ctx, meetingID)
}

func (s *Service) ListRsvps(ctx context.Context, clubID, userID, meetingID string) ([]Rsvp, error) {
	if _, err := s.GetMeeting(ctx, clubID, userID, meetingID); err != nil {
		return nil, err
	}
	return s.repo.ListRsvps(ctx, meetingID)
}

// Respond records the user's answer, creating or replacing their RSVP.
func (s *Service) Respond(ctx context.Context, clubID, userID, meetingID, response string) (*Rsvp, error) {
	switch response {
	case ResponseYes, ResponseMaybe, ResponseNo:
	default:
		return nil, apperr.Invalid("response", "must be yes, maybe or no")
	}
	if _, err := s.GetMeeting(ctx, clubID, userID, meetingID); err != nil {
		return nil, err
	}

	var rsvp *Rsvp
	var droppedCheckIn bool
	err := s.repo.Transaction(ctx, func(tx Repository) error {
		existing, err := tx.GetRsvpForUpdate(ctx, meetingID, userID)
		switch {
		case errors.Is(err, ErrRsvpNotFound):
			existing = &Rsvp{ID: uuid.NewString(), MeetingID: meetingID, UserID: userID}
		case err != nil:
			return err
		}
		wasCheckedIn := existing.CheckedIn()
		existing.SetResponse(response)
		droppedCheckIn = wasCheckedIn && !existing.CheckedIn()
		rsvp = existing
		return tx.SaveRsvp(ctx, existing)
	})
	if err != nil {
		return nil, err
	}

	s.publishRsvp(ctx, clubID, rsvp, events.TypeRsvpChanged)
	if droppedCheckIn {
		s.publishRsvp(ctx, clubID, rsvp, events.TypeCheckInChanged)
	}
	return rsvp, nil
}

// CheckIn marks attendance. An empty targetID checks in the actor; checking
// in someone else needs the admin role.
func (s *Service) CheckIn(ctx context.Context, clubID, actorID, meetingID, targetID string) (*Rsvp, error) {
	return s.updateCheckIn(ctx, clubID, actorID, meetingID, targetID, func(r *Rsvp) error {
		return r.CheckIn(s.now())
	})
}

func (s *Service) UndoCheckIn(ctx context.Context, clubID, actorID, meetingID, targetID string) (*Rsvp, error) {
	return s.updateCheckIn(ctx, clubID, actorID, meetingID, targetID, func(r *Rsvp) error {
		return r.UndoCheckIn()
	})
}

func (s *Service) updateCheckIn(ctx context.Context, clubID, actorID, meetingID, targetID string, apply func(*Rsvp) error) (*Rsvp, error) {
	role := clubsdomain.RoleMember
	if targetID == "" || targetID == actorID {
		targetID = actorID
	} else {
		role = clubsdomain.RoleAdmin
	}
	if _, err := s.guard.Authorize(ctx, clubID, actorID, role); err != nil {
		return nil, err
	}
	if _, err := s.repo.GetMeeting(ctx, clubID, meetingID); err != nil {
		return nil, err
	}

	var rsvp *Rsvp
	err := s.repo.Transaction(ctx, func(tx Repository) error {
		existing, err := tx.GetRsvpForUpdate(ctx, meetingID, targetID)
		if errors.Is(err, ErrRsvpNotFound) {
			return ErrNotAttending
		}
		if err != nil {
			return err
		}
		if err := apply(existing); err != nil {
			return err
		}
		rsvp = existing
		return tx.SaveRsvp(ctx, existing)
	})
	if err != nil {
		return nil, err
	}

	s.publishRsvp(ctx, clubID, rsvp, events.TypeCheckInChanged)
	return rsvp, nil
}

func (s *Service) publishRsvp(ctx context.Context, clubID string, rsvp *Rsvp, eventType string) {
	s.notifier.Publish(ctx, events.Event{
		Type:      eventType,
		ClubID:    clubID,
		MeetingID: rsvp.MeetingID,
		EntityID:  rsvp.UserID,
		Data: map[string]any{
			"response":   rsvp.Response,
			"checked_in": rsvp.CheckedIn(),
		},
		At: s.now(),
	})
}

func (s *Service) ListComments(ctx context.Context, clubID, userID, meetingID string) ([]Comment, error) {
	if _, err := s.GetMeeting(ctx, clubID, userID, meetingID); err != nil {
		return nil, err
	}
	return s.repo.ListComments(ctx, meetingID)
}

// AddComment is only accepted while the meeting is live or ended.
func (s *Service) AddComment(ctx context.Context, clubID, userID, meetingID, content string) (*Comment, error) {
	meeting, err := s.GetMeeting(ctx, clubID, userID, meetingID)
	if err != nil {
		return nil, err
	}
	content, err = validateComment(content)
	if err != nil {
		return nil, err
	}
	if !meeting.CommentsOpen() {
		return nil, ErrCommentsClosed
	}

	comment := &Comment{
		ID:        uuid.NewString(),
		MeetingID: meetingID,
		UserID:    userID,
		Content:   content,
	}
	if err := s.repo.CreateComment(ctx, comment); err != nil {
		return nil, err
	}
	s.publishComment(ctx, clubID, comment, "created")
	return comment, nil
}

func (s *Service) UpdateComment(ctx context.Context, clubID, userID, meetingID, commentID, content string) (*Comment, error) {
	if _, err := s.GetMeeting(ctx, clubID, userID, meetingID); err != nil {
		return nil, err
	}
	comment, err := s.repo.GetComment(ctx, meetingID, commentID)
	if err != nil {
		return nil, err
	}
	if !access.Allowed(access.Check{
		Action:   access.ActionEdit,
		ActorID:  userID,
		AuthorID: comment.UserID,
	}) {
		return nil, apperr.ErrForbidden
	}
	if comment.Content, err = validateComment(content); err != nil {
		return nil, err
	}
	if err := s.repo.UpdateComment(ctx, comment); err != nil {
		return nil, err
	}
	s.publishComment(ctx, clubID, comment, "updated")
	return comment, nil
}

func (s *Service) DeleteComment(ctx context.Context, clubID, userID, meetingID, commentID string) error {
	if _, err := s.GetMeeting(ctx, clubID, userID, meetingID); err != nil {
		return err
	}
	comment, err := s.repo.GetComment(ctx, meetingID, commentID)
	if err != nil {
		return err
	}
	_, adminErr := s.guard.Authorize(ctx, clubID, userID, clubsdomain.RoleAdmin)
	if !access.Allowed(access.Check{
		Action:      access.ActionDelete,
		ActorID:     userID,
		AuthorID:    comment.UserID,
		ActorAdmin:  adminErr == nil,
		AdminDelete: true,
	}) {
		return apperr.ErrForbidden
	}
	if err := s.repo.DeleteComment(ctx, comment.ID); err != nil {
		return err
	}
	s.publishComment(ctx, clubID, comment, "deleted")
	return nil
}

func validateComment(content string) (string, error) {
	content = strings.TrimSpace(content)
	if content == "" {
		return "", apperr.Invalid("content", "is required")
	}
	if utf8.RuneCountInString(content) > maxCommentLength {
		return "", apperr.Invalid("content", "is too long")
	}
	return content, nil
}

func (s *Service) publishComment(ctx context.Context, clubID string, comment *Comment, action string) {
	s.notifier.Publish(ctx, events.Event{
		Type:      events.TypeCommentChanged,
		ClubID:    clubID,
		MeetingID: comment.MeetingID,
		EntityID:  comment.ID,
		Data:      map[string]any{"action": action},
		At:        s.now(),
	})
}

// Calendar renders the meeting as an iCalendar file.
func (s *Service) Calendar(ctx context.Context, clubID, userID, meetingID string) (filename, body string, err error) {
	club, err := s.guard.Authorize(ctx, clubID, userID, clubsdomain.RoleMember)
	if err != nil {
		return "", "", err
	}
	meeting, err := s.repo.GetMeeting(ctx, clubID, meetingID)
	if err != nil {
		return "", "", err
	}
	return CalendarFilename(meeting), ICS(meeting, club.Name, s.now()), nil
}
