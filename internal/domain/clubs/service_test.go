package clubs

import (
	"context"
	"errors"
	"runtime"
	"sync"
	"testing"
	"time"

	"book-club-go/internal/domain/apperr"
)

type fakeClubRepo struct {
	clubs       map[string]*Club
	memberships map[string]*Membership

	lockMu    sync.Mutex
	clubLocks map[string]*sync.Mutex
}

func newFakeClubRepo() *fakeClubRepo {
	return &fakeClubRepo{
		clubs:       make(map[string]*Club),
		memberships: make(map[string]*Membership),
		clubLocks:   make(map[string]*sync.Mutex),
	}
}

// fakeClubTx holds club locks until its transaction returns.
type fakeClubTx struct {
	*fakeClubRepo
	held []*sync.Mutex
}

func (tx *fakeClubTx) LockClub(ctx context.Context, clubID string) error {
	tx.lockMu.Lock()
	lock, ok := tx.clubLocks[clubID]
	if !ok {
		lock = &sync.Mutex{}
		tx.clubLocks[clubID] = lock
	}
	tx.lockMu.Unlock()

	lock.Lock()
	tx.held = append(tx.held, lock)
	return nil
}

func memberKey(clubID, userID string) string {
	return clubID + "/" + userID
}

func (r *fakeClubRepo) Transaction(ctx context.Context, fn func(Repository) error) error {
	tx := &fakeClubTx{fakeClubRepo: r}
	defer func() {
		for _, lock := range tx.held {
			lock.Unlock()
		}
	}()
	return fn(tx)
}

func (r *fakeClubRepo) LockClub(ctx context.Context, clubID string) error {
	return nil
}

func (r *fakeClubRepo) CreateClub(ctx context.Context, club *Club) error {
	r.clubs[club.ID] = club
	return nil
}

func (r *fakeClubRepo) GetClub(ctx context.Context, clubID string) (*Club, error) {
	club, ok := r.clubs[clubID]
	if !ok {
		return nil, ErrClubNotFound
	}
	copied := *club
	return &copied, nil
}

func (r *fakeClubRepo) GetClubByInviteCode(ctx context.Context, code string) (*Club, error) {
	for _, club := range r.clubs {
		if club.InviteCode == code {
			copied := *club
			return &copied, nil
		}
	}
	return nil, ErrClubNotFound
}

func (r *fakeClubRepo) UpdateClub(ctx context.Context, club *Club) error {
	copied := *club
	r.clubs[club.ID] = &copied
	return nil
}

func (r *fakeClubRepo) DeleteClub(ctx context.Context, clubID string) error {
	delete(r.clubs, clubID)
	return nil
}

func (r *fakeClubRepo) ListClubsForUser(ctx context.Context, userID string) ([]Club, error) {
	result := make([]Club, 0)
	for _, membership := range r.memberships {
		if membership.UserID != userID {
			continue
		}
		if club, ok := r.clubs[membership.ClubID]; ok {
			result = append(result, *club)
		}
	}
	return result, nil
}

func (r *fakeClubRepo) IsInviteCodeTaken(ctx context.Context, code string) (bool, error) {
	_, err := r.GetClubByInviteCode(ctx, code)
	return err == nil, nil
}

func (r *fakeClubRepo) UpdateInvite(ctx context.Context, clubID, code string, expiresAt time.Time) error {
	club, ok := r.clubs[clubID]
	if !ok {
		return ErrClubNotFound
	}
	club.InviteCode = code
	club.InviteExpiresAt = &expiresAt
	club.InviteUsedAt = nil
	return nil
}

func (r *fakeClubRepo) MarkInviteUsed(ctx context.Context, clubID string, at time.Time) error {
	club, ok := r.clubs[clubID]
	if !ok {
		return ErrClubNotFound
	}
	club.InviteUsedAt = &at
	return nil
}

func (r *fakeClubRepo) AddMembership(ctx context.Context, membership *Membership) error {
	r.memberships[memberKey(membership.ClubID, membership.UserID)] = membership
	return nil
}

func (r *fakeClubRepo) GetMembership(ctx context.Context, clubID, userID string) (*Membership, error) {
	membership, ok := r.memberships[memberKey(clubID, userID)]
	if !ok {
		return nil, ErrMemberNotFound
	}
	return membership, nil
}

func (r *fakeClubRepo) ListMembers(ctx context.Context, clubID string) ([]MemberProfile, error) {
	result := make([]MemberProfile, 0)
	for _, membership := range r.memberships {
		if membership.ClubID == clubID {
			result = append(result, MemberProfile{UserID: membership.UserID, Role: membership.Role})
		}
	}
	return result, nil
}

func (r *fakeClubRepo) CountAdmins(ctx context.Context, clubID string) (int64, error) {
	var count int64
	for _, membership := range r.memberships {
		if membership.ClubID == clubID && membership.IsAdmin() {
			count++
		}
	}
	runtime.Gosched()
	return count, nil
}

func (r *fakeClubRepo) UpdateMembershipRole(ctx context.Context, clubID, userID, role string) error {
	membership, ok := r.memberships[memberKey(clubID, userID)]
	if !ok {
		return ErrMemberNotFound
	}
	membership.Role = role
	return nil
}

func (r *fakeClubRepo) DeleteMembership(ctx context.Context, clubID, userID string) error {
	delete(r.memberships, memberKey(clubID, userID))
	return nil
}

func seedClub(repo *fakeClubRepo, privacy string) *Club {
	club := &Club{ID: "club-1", Name: "Readers", Privacy: privacy, Language: "sv", Timezone: DefaultTimezone, InviteCode: "abcd1234"}
	repo.clubs[club.ID] = club
	repo.memberships[memberKey(club.ID, "admin")] = &Membership{ID: "m-admin", ClubID: club.ID, UserID: "admin", Role: RoleAdmin}
	repo.memberships[memberKey(club.ID, "member")] = &Membership{ID: "m-member", ClubID: club.ID, UserID: "member", Role: RoleMember}
	return club
}

func TestCreateClubSuccess(t *testing.T) {
	repo := newFakeClubRepo()
	svc := NewService(repo)
	now := time.Date(2026, 1, 10, 12, 0, 0, 0, time.UTC)
	svc.now = func() time.Time { return now }

	result, err := svc.CreateClub(context.Background(), "user-1", CreateClubInput{Name: "  Bokklubben  ", Language: "en-GB"})
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if result.Name != "Bokklubben" {
		t.Fatalf("expected name trimmed, got %q", result.Name)
	}
	if result.Language != "en" {
		t.Fatalf("expected language en, got %q", result.Language)
	}
	if result.Privacy != PrivacyClosed {
		t.Fatalf("expected closed privacy by default, got %q", result.Privacy)
	}
	if result.Timezone != DefaultTimezone {
		t.Fatalf("expected default timezone, got %q", result.Timezone)
	}
	if len(result.InviteCode) != 8 {
		t.Fatalf("expected 8 char invite code, got %q", result.InviteCode)
	}
	for _, r := range result.InviteCode {
		if !(r >= 'a' && r <= 'z') && !(r >= '0' && r <= '9') {
			t.Fatalf("expected lowercase alphanumeric code, got %q", result.InviteCode)
		}
	}
	if result.InviteExpiresAt == nil || !result.InviteExpiresAt.Equal(now.Add(14*24*time.Hour)) {
		t.Fatalf("expected invite to expire in 14 days, got %v", result.InviteExpiresAt)
	}
	membership, err := repo.GetMembership(context.Background(), result.ID, "user-1")
	if err != nil || !membership.IsAdmin() {
		t.Fatalf("expected creator admin membership, got %+v (%v)", membership, err)
	}
}

func TestCreateClubValidation(t *testing.T) {
	svc := NewService(newFakeClubRepo())

	tests := []struct {
		name  string
		input CreateClubInput
		field string
	}{
		{name: "missing name", input: CreateClubInput{Name: " "}, field: "name"},
		{name: "bad privacy", input: CreateClubInput{Name: "A", Privacy: "secret"}, field: "privacy"},
		{name: "unsupported language", input: CreateClubInput{Name: "A", Language: "ja"}, field: "language"},
		{name: "bad timezone", input: CreateClubInput{Name: "A", Timezone: "Mars/Olympus"}, field: "timezone"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.CreateClub(context.Background(), "user-1", tt.input)
			var validation *apperr.ValidationError
			if !errors.As(err, &validation) {
				t.Fatalf("expected validation error, got %v", err)
			}
			if validation.Field != tt.field {
				t.Fatalf("expected field %q, got %q", tt.field, validation.Field)
			}
		})
	}
}

func TestAuthorize(t *testing.T) {
	repo := newFakeClubRepo()
	seedClub(repo, PrivacyClosed)
	svc := NewService(repo)
	ctx := context.Background()

	if _, err := svc.Authorize(ctx, "club-1", "member", RoleMember); err != nil {
		t.Fatalf("expected member allowed, got %v", err)
	}
	if _, err := svc.Authorize(ctx, "club-1", "member", RoleAdmin); !errors.Is(err, apperr.ErrForbidden) {
		t.Fatalf("expected forbidden for member, got %v", err)
	}
	if _, err := svc.Authorize(ctx, "club-1", "stranger", RoleMember); !errors.Is(err, apperr.ErrForbidden) {
		t.Fatalf("expected forbidden for stranger, got %v", err)
	}
	if _, err := svc.Authorize(ctx, "missing", "admin", RoleMember); !errors.Is(err, ErrClubNotFound) {
		t.Fatalf("expected ErrClubNotFound, got %v", err)
	}

	isAdmin, err := svc.IsAdmin(ctx, "club-1", "admin")
	if err != nil || !isAdmin {
		t.Fatalf("expected admin, got %v (%v)", isAdmin, err)
	}
	isMember, err := svc.IsMember(ctx, "club-1", "stranger")
	if err != nil || isMember {
		t.Fatalf("expected stranger not member, got %v (%v)", isMember, err)
	}
}

func TestJoinOpenClub(t *testing.T) {
	repo := newFakeClubRepo()
	seedClub(repo, PrivacyOpen)
	svc := NewService(repo)

	if _, err := svc.JoinOpenClub(context.Background(), "club-1", "user-9"); err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if _, err := svc.JoinOpenClub(context.Background(), "club-1", "user-9"); !errors.Is(err, ErrAlreadyMember) {
		t.Fatalf("expected ErrAlreadyMember, got %v", err)
	}
}

func TestJoinClosedClubRejected(t *testing.T) {
	repo := newFakeClubRepo()
	seedClub(repo, PrivacyClosed)
	svc := NewService(repo)

	_, err := svc.JoinOpenClub(context.Background(), "club-1", "user-9")
	if !errors.Is(err, ErrClubNotOpen) {
		t.Fatalf("expected ErrClubNotOpen, got %v", err)
	}
	if _, ok := repo.memberships[memberKey("club-1", "user-9")]; ok {
		t.Fatalf("expected no membership created")
	}
}

func TestJoinByInvite(t *testing.T) {
	repo := newFakeClubRepo()
	club := seedClub(repo, PrivacyClosed)
	expires := time.Date(2026, 2, 1, 0, 0, 0, 0, time.UTC)
	club.InviteExpiresAt = &expires
	svc := NewService(repo)
	svc.now = func() time.Time { return expires.Add(-time.Hour) }

	result, err := svc.JoinByInvite(context.Background(), "user-9", " ABCD1234 ")
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if result.ID != "club-1" {
		t.Fatalf("expected club-1, got %s", result.ID)
	}
	if repo.clubs["club-1"].InviteUsedAt == nil {
		t.Fatalf("expected invite marked used")
	}

	_, err = svc.JoinByInvite(context.Background(), "user-10", "abcd1234")
	if !errors.Is(err, ErrInviteInvalid) {
		t.Fatalf("expected used invite to be invalid, got %v", err)
	}
}

func TestJoinByInviteExpired(t *testing.T) {
	repo := newFakeClubRepo()
	club := seedClub(repo, PrivacyClosed)
	expires := time.Date(2026, 2, 1, 0, 0, 0, 0, time.UTC)
	club.InviteExpiresAt = &expires
	svc := NewService(repo)
	svc.now = func() time.Time { return expires.Add(time.Minute) }

	_, err := svc.JoinByInvite(context.Background(), "user-9", "abcd1234")
	if !errors.Is(err, ErrInviteInvalid) {
		t.Fatalf("expected ErrInviteInvalid, got %v", err)
	}
}

func TestRegenerateInviteResetsUsage(t *testing.T) {
	repo := newFakeClubRepo()
	club := seedClub(repo, PrivacyClosed)
	used := time.Now()
	club.InviteUsedAt = &used
	svc := NewService(repo)

	result, err := svc.RegenerateInvite(context.Background(), "club-1", "admin")
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if result.InviteCode == "abcd1234" || result.InviteUsedAt != nil {
		t.Fatalf("expected fresh invite, got %+v", result)
	}
	if !repo.clubs["club-1"].InviteValid(time.Now()) {
		t.Fatalf("expected regenerated invite valid")
	}

	if _, err := svc.RegenerateInvite(context.Background(), "club-1", "member"); !errors.Is(err, apperr.ErrForbidden) {
		t.Fatalf("expected forbidden for member, got %v", err)
	}
}

func TestLeaveClubLastAdmin(t *testing.T) {
	repo := newFakeClubRepo()
	seedClub(repo, PrivacyClosed)
	svc := NewService(repo)

	err := svc.LeaveClub(context.Background(), "club-1", "admin")
	if !errors.Is(err, ErrLastAdmin) {
		t.Fatalf("expected ErrLastAdmin, got %v", err)
	}

	if err := svc.LeaveClub(context.Background(), "club-1", "member"); err != nil {
		t.Fatalf("expected member to leave, got %v", err)
	}
}

func TestLeaveClubAdminWithAnotherAdmin(t *testing.T) {
	repo := newFakeClubRepo()
	seedClub(repo, PrivacyClosed)
	svc := NewService(repo)

	if err := svc.PromoteMember(context.Background(), "club-1", "admin", "member"); err != nil {
		t.Fatalf("expected promote to succeed, got %v", err)
	}
	if err := svc.LeaveClub(context.Background(), "club-1", "admin"); err != nil {
		t.Fatalf("expected admin to leave, got %v", err)
	}
}

func TestConcurrentAdminsLeaveKeepsOneAdmin(t *testing.T) {
	repo := newFakeClubRepo()
	seedClub(repo, PrivacyClosed)
	repo.memberships[memberKey("club-1", "admin-2")] = &Membership{ID: "m-admin-2", ClubID: "club-1", UserID: "admin-2", Role: RoleAdmin}
	svc := NewService(repo)

	start := make(chan struct{})
	errs := make(chan error, 2)
	var wg sync.WaitGroup
	for _, userID := range []string{"admin", "admin-2"} {
		wg.Add(1)
		go func(userID string) {
			defer wg.Done()
			<-start
			errs <- svc.LeaveClub(context.Background(), "club-1", userID)
		}(userID)
	}
	close(start)
	wg.Wait()
	close(errs)

	var left, refused int
	for err := range errs {
		switch {
		case err == nil:
			left++
		case errors.Is(err, ErrLastAdmin):
			refused++
		default:
			t.Fatalf("unexpected error: %v", err)
		}
	}
	if left != 1 || refused != 1 {
		t.Fatalf("expected one admin to leave and one refused, got %d/%d", left, refused)
	}
	if admins, _ := repo.CountAdmins(context.Background(), "club-1"); admins != 1 {
		t.Fatalf("expected one admin left, got %d", admins)
	}
}

func TestRemoveMember(t *testing.T) {
	repo := newFakeClubRepo()
	seedClub(repo, PrivacyClosed)
	repo.memberships[memberKey("club-1", "admin-2")] = &Membership{ClubID: "club-1", UserID: "admin-2", Role: RoleAdmin}
	svc := NewService(repo)
	ctx := context.Background()

	if err := svc.RemoveMember(ctx, "club-1", "member", "admin"); !errors.Is(err, apperr.ErrForbidden) {
		t.Fatalf("expected forbidden, got %v", err)
	}
	if err := svc.RemoveMember(ctx, "club-1", "admin", "admin-2"); !errors.Is(err, ErrCannotRemoveAdmin) {
		t.Fatalf("expected ErrCannotRemoveAdmin, got %v", err)
	}
	if err := svc.RemoveMember(ctx, "club-1", "admin", "member"); err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if _, ok := repo.memberships[memberKey("club-1", "member")]; ok {
		t.Fatalf("expected member removed")
	}
}

func TestUpdateClubPartial(t *testing.T) {
	repo := newFakeClubRepo()
	seedClub(repo, PrivacyClosed)
	svc := NewService(repo)

	privacy := "open"
	result, err := svc.UpdateClub(context.Background(), "club-1", "admin", UpdateClubInput{Privacy: &privacy})
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if result.Privacy != PrivacyOpen || result.Name != "Readers" {
		t.Fatalf("expected only privacy changed, got %+v", result)
	}
}

func TestNormalizeLanguage(t *testing.T) {
	tests := map[string]string{
		"":      "sv",
		"sv":    "sv",
		"sv-FI": "sv",
		"EN":    "en",
		"en-US": "en",
	}
	for input, want := range tests {
		got, err := NormalizeLanguage(input)
		if err != nil {
			t.Fatalf("%q: expected no error, got %v", input, err)
		}
		if got != want {
			t.Fatalf("%q: expected %q, got %q", input, want, got)
		}
	}
	if _, err := NormalizeLanguage("not a tag!"); err == nil {
		t.Fatalf("expected error for malformed tag")
	}
}
