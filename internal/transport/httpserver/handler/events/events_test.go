package events

import (
	"bufio"
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"book-club-go/internal/broadcast"
	domainevents "book-club-go/internal/domain/events"
	"book-club-go/internal/transport/httpserver/middleware"
	"book-club-go/pkg/logger"
	"github.com/go-chi/chi/v5"
)

type fakeMembers struct {
	members map[string]bool
}

func (f fakeMembers) IsMember(_ context.Context, clubID, userID string) (bool, error) {
	return f.members[clubID+"/"+userID], nil
}

func newTestServer(t *testing.T, hub *broadcast.Hub, userID string) *httptest.Server {
	t.Helper()
	h := New(hub, fakeMembers{members: map[string]bool{"club-1/u1": true}}, logger.Discard())

	r := chi.NewRouter()
	r.Use(func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := middleware.WithUser(r.Context(), middleware.User{ID: userID})
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	})
	r.Get("/clubs/{club_id}/events", h.Stream)

	srv := httptest.NewServer(r)
	t.Cleanup(srv.Close)
	return srv
}

func TestStreamRejectsNonMember(t *testing.T) {
	hub := broadcast.NewHub(logger.Discard())
	srv := newTestServer(t, hub, "stranger")

	resp, err := http.Get(srv.URL + "/clubs/club-1/events")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusForbidden {
		t.Fatalf("expected 403, got %d", resp.StatusCode)
	}
	if hub.Subscribers("club-1") != 0 {
		t.Fatalf("expected no subscription for rejected caller")
	}
}

func TestStreamDeliversClubEvents(t *testing.T) {
	hub := broadcast.NewHub(logger.Discard())
	srv := newTestServer(t, hub, "u1")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, srv.URL+"/clubs/club-1/events", nil)
	if err != nil {
		t.Fatalf("new request: %v", err)
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("do: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}
	if ct := resp.Header.Get("Content-Type"); ct != "text/event-stream" {
		t.Fatalf("expected event-stream, got %q", ct)
	}

	reader := bufio.NewReader(resp.Body)
	line, err := reader.ReadString('\n')
	if err != nil || !strings.HasPrefix(line, ": connected") {
		t.Fatalf("expected connected comment, got %q (%v)", line, err)
	}

	deadline := time.Now().Add(2 * time.Second)
	for hub.Subscribers("club-1") == 0 {
		if time.Now().After(deadline) {
			t.Fatalf("expected subscriber registered")
		}
		time.Sleep(5 * time.Millisecond)
	}

	hub.Publish(context.Background(), domainevents.Event{Type: domainevents.TypeVoteCast, ClubID: "other-club"})
	hub.Publish(context.Background(), domainevents.Event{
		Type:     domainevents.TypeVoteCast,
		ClubID:   "club-1",
		EntityID: "cb-1",
	})

	var eventLine, dataLine string
	for eventLine == "" || dataLine == "" {
		line, err := reader.ReadString('\n')
		if err != nil {
			t.Fatalf("read stream: %v", err)
		}
		switch {
		case strings.HasPrefix(line, "event: "):
			eventLine = strings.TrimSpace(strings.TrimPrefix(line, "event: "))
		case strings.HasPrefix(line, "data: "):
			dataLine = strings.TrimSpace(strings.TrimPrefix(line, "data: "))
		}
	}

	if eventLine != domainevents.TypeVoteCast {
		t.Fatalf("expected vote.cast event, got %q", eventLine)
	}
	if !strings.Contains(dataLine, `"entity_id":"cb-1"`) || !strings.Contains(dataLine, `"club_id":"club-1"`) {
		t.Fatalf("expected club-1 payload, got %s", dataLine)
	}

	cancel()
	deadline = time.Now().Add(2 * time.Second)
	for hub.Subscribers("club-1") != 0 {
		if time.Now().After(deadline) {
			t.Fatalf("expected subscription closed after disconnect")
		}
		time.Sleep(5 * time.Millisecond)
	}
}
