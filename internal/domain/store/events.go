package store

import (
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/pagecraft/backend/internal/shared/types"
)

// subscriberBuffer bounds each subscriber channel; a subscriber that
// falls this far behind starts dropping events
const subscriberBuffer = 16

// Subscribe registers an event subscriber and returns its id and
// channel. Events are delivered after every mutation, in mutation order.
func (s *Store) Subscribe() (string, <-chan types.Event) {
	ch := make(chan types.Event, subscriberBuffer)
	subID := uuid.NewString()

	s.subsMu.Lock()
	s.subs[subID] = ch
	s.subsMu.Unlock()

	return subID, ch
}

// Unsubscribe removes a subscriber and closes its channel
func (s *Store) Unsubscribe(subID string) {
	s.subsMu.Lock()
	ch, ok := s.subs[subID]
	if ok {
		delete(s.subs, subID)
	}
	s.subsMu.Unlock()

	if ok {
		close(ch)
	}
}

// notify delivers an event to every subscriber without blocking the
// mutation path. Slow subscribers drop events.
func (s *Store) notify(event types.Event) {
	s.subsMu.RLock()
	defer s.subsMu.RUnlock()

	for subID, ch := range s.subs {
		select {
		case ch <- event:
		default:
			s.logger.Warn("subscriber behind, dropping event",
				zap.String("subscriber", subID),
				zap.String("event", string(event.Type)),
			)
		}
	}
}
