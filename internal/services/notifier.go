package services

import (
	"context"

	"github.com/shimms/shimms-backend/internal/logger"
	"github.com/shimms/shimms-backend/internal/realtime"
	"github.com/shimms/shimms-backend/internal/realtime/bus"
)

// Notifier delivers in-app events. The API process publishes straight to the
// local hub; a worker process publishes to Redis so API replicas can fan out.
type Notifier interface {
	Notify(ctx context.Context, ev realtime.Event)
}

type HubNotifier struct {
	Hub *realtime.Hub
}

func (n *HubNotifier) Notify(_ context.Context, ev realtime.Event) {
	if n == nil || n.Hub == nil {
		return
	}
	n.Hub.Publish(ev)
}

type BusNotifier struct {
	Log *logger.Logger
	Bus bus.Bus
}

func (n *BusNotifier) Notify(ctx context.Context, ev realtime.Event) {
	if n == nil || n.Bus == nil {
		return
	}
	if err := n.Bus.Publish(ctx, ev); err != nil && n.Log != nil {
		n.Log.Warn("Failed to publish realtime event", "type", ev.Type, "error", err)
	}
}

// NopNotifier is used when the realtime feature is disabled.
type NopNotifier struct{}

func (NopNotifier) Notify(context.Context, realtime.Event) {}
