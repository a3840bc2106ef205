package realtime

import (
	"testing"

	"github.com/google/uuid"

	"github.com/shimms/shimms-backend/internal/logger"
)

func newHubForTest(t *testing.T) *Hub {
	t.Helper()
	log, err := logger.New("production")
	if err != nil {
		t.Fatalf("init logger: %v", err)
	}
	return NewHub(log)
}

func TestHubDeliversToSubscriber(t *testing.T) {
	hub := newHubForTest(t)
	userID := uuid.New()

	ch, cancel := hub.Subscribe(userID)
	defer cancel()

	hub.Publish(Event{UserID: userID, Type: EventMessage})

	select {
	case ev := <-ch:
		if ev.Type != EventMessage {
			t.Fatalf("event type = %q", ev.Type)
		}
		if ev.At.IsZero() {
			t.Fatalf("publish must stamp the event time")
		}
	default:
		t.Fatalf("no event delivered")
	}
}

func TestHubScopesDeliveryToUser(t *testing.T) {
	hub := newHubForTest(t)
	alice := uuid.New()
	bob := uuid.New()

	aliceCh, cancelAlice := hub.Subscribe(alice)
	defer cancelAlice()
	bobCh, cancelBob := hub.Subscribe(bob)
	defer cancelBob()

	hub.Publish(Event{UserID: alice, Type: EventPathEntry})

	select {
	case <-bobCh:
		t.Fatalf("event leaked to another user")
	default:
	}
	select {
	case <-aliceCh:
	default:
		t.Fatalf("subscriber did not receive the event")
	}
}

func TestHubDropsWhenBufferFull(t *testing.T) {
	hub := newHubForTest(t)
	userID := uuid.New()

	ch, cancel := hub.Subscribe(userID)
	defer cancel()

	// Buffer is 16; the extra events must be dropped, not block.
	for i := 0; i < 20; i++ {
		hub.Publish(Event{UserID: userID, Type: EventJourneyUpdate})
	}

	received := 0
	for {
		select {
		case <-ch:
			received++
			continue
		default:
		}
		break
	}
	if received != 16 {
		t.Fatalf("received = %d, want the buffer size of 16", received)
	}
}

func TestHubCancelStopsDelivery(t *testing.T) {
	hub := newHubForTest(t)
	userID := uuid.New()

	_, cancel := hub.Subscribe(userID)
	cancel()

	// Publishing after cancel must not panic on the closed channel.
	hub.Publish(Event{UserID: userID, Type: EventMessage})
}
