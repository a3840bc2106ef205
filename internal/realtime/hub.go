package realtime

import (
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/shimms/shimms-backend/internal/logger"
)

// Event is an in-app notification delivered to a connected user: new path
// entries, incoming messages, journey phase changes.
type Event struct {
	UserID  uuid.UUID      `json:"user_id"`
	Type    string         `json:"type"`
	Payload map[string]any `json:"payload,omitempty"`
	At      time.Time      `json:"at"`
}

const (
	EventPathEntry     = "path_entry"
	EventMessage       = "message"
	EventJourneyUpdate = "journey_update"
	EventAssessment    = "assessment_completed"
)

type Hub struct {
	log  *logger.Logger
	mu   sync.RWMutex
	subs map[uuid.UUID]map[chan Event]struct{}
}

func NewHub(log *logger.Logger) *Hub {
	return &Hub{
		log:  log.With("service", "RealtimeHub"),
		subs: make(map[uuid.UUID]map[chan Event]struct{}),
	}
}

// Subscribe registers a listener for one user. The returned cancel must be
// called when the connection closes.
func (h *Hub) Subscribe(userID uuid.UUID) (<-chan Event, func()) {
	ch := make(chan Event, 16)
	h.mu.Lock()
	if h.subs[userID] == nil {
		h.subs[userID] = make(map[chan Event]struct{})
	}
	h.subs[userID][ch] = struct{}{}
	h.mu.Unlock()

	cancel := func() {
		h.mu.Lock()
		if set, ok := h.subs[userID]; ok {
			delete(set, ch)
			if len(set) == 0 {
				delete(h.subs, userID)
			}
		}
		h.mu.Unlock()
		close(ch)
	}
	return ch, cancel
}

// Publish delivers to every open subscription for the event's user. Slow
// consumers are skipped rather than blocking the publisher.
func (h *Hub) Publish(ev Event) {
	if ev.At.IsZero() {
		ev.At = time.Now()
	}
	h.mu.RLock()
	defer h.mu.RUnlock()
	for ch := range h.subs[ev.UserID] {
		select {
		case ch <- ev:
		default:
			h.log.Warn("Dropping realtime event for slow subscriber", "user_id", ev.UserID, "type", ev.Type)
		}
	}
}
