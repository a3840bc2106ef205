package bus

import (
	"context"

	"github.com/shimms/shimms-backend/internal/realtime"
)

// Bus carries realtime events across processes so a worker can notify users
// connected to an API replica.
type Bus interface {
	Publish(ctx context.Context, ev realtime.Event) error
	StartForwarder(ctx context.Context, onEvent func(ev realtime.Event)) error
	Close() error
}
