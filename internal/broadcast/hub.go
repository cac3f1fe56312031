// Package broadcast fans club events out to live subscribers.
package broadcast

import (
	"context"
	"sync"

	"book-club-go/internal/domain/events"
	"book-club-go/pkg/logger"
)

const defaultBuffer = 16

// Hub is an in-process events.Notifier. Each subscriber owns a buffered
// channel; a full channel drops the event for that subscriber only.
type Hub struct {
	mu     sync.RWMutex
	clubs  map[string]map[*Subscription]struct{}
	buffer int
	log    logger.Logger
}

type Subscription struct {
	hub    *Hub
	clubID string
	ch     chan events.Event
	once   sync.Once
}

func NewHub(log logger.Logger) *Hub {
	return &Hub{
		clubs:  make(map[string]map[*Subscription]struct{}),
		buffer: defaultBuffer,
		log:    log,
	}
}

func (h *Hub) Subscribe(clubID string) *Subscription {
	sub := &Subscription{
		hub:    h,
		clubID: clubID,
		ch:     make(chan events.Event, h.buffer),
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	subs, ok := h.clubs[clubID]
	if !ok {
		subs = make(map[*Subscription]struct{})
		h.clubs[clubID] = subs
	}
	subs[sub] = struct{}{}
	return sub
}

// Publish never blocks.
func (h *Hub) Publish(_ context.Context, event events.Event) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	for sub := range h.clubs[event.ClubID] {
		select {
		case sub.ch <- event:
		default:
			h.log.Debug("broadcast: subscriber full, dropping event", "club_id", event.ClubID, "type", event.Type)
		}
	}
}

// Subscribers returns the number of live subscriptions for the club.
func (h *Hub) Subscribers(clubID string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clubs[clubID])
}

func (s *Subscription) Events() <-chan events.Event {
	return s.ch
}

// Close unsubscribes and closes the channel. Safe to call more than once.
func (s *Subscription) Close() {
	s.once.Do(func() {
		h := s.hub
		h.mu.Lock()
		defer h.mu.Unlock()
		if subs, ok := h.clubs[s.clubID]; ok {
			delete(subs, s)
			if len(subs) == 0 {
				delete(h.clubs, s.clubID)
			}
		}
		close(s.ch)
	})
}
