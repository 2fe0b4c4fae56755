package task

import (
	"context"

	projectdomain "github.com/example/task-approval/domain/project"
	"github.com/example/task-approval/events"
)

// ProjectDirectory is the slice of the project module the task service uses:
// access facts for authorization and validation, and the task counters.
type ProjectDirectory interface {
	GetAccess(ctx context.Context, projectID string) (*projectdomain.Access, error)
	GetCounters(ctx context.Context, projectID string) (*projectdomain.Counters, error)
	AdjustCounters(ctx context.Context, projectID string, totalDelta, completedDelta int) error
	SetCounters(ctx context.Context, c projectdomain.Counters) error
}

// Notifier emits events once a mutation has been stored. Delivery is the
// consumer's concern; errors are only logged by the caller.
type Notifier interface {
	Notify(ctx context.Context, ev events.TaskNotificationEvent) error
	PhaseChanged(ctx context.Context, ev events.TaskPhaseChangedEvent) error
}

// BlobStore holds attachment contents.
type BlobStore interface {
	Put(ctx context.Context, key string, data []byte, contentType string) (BlobInfo, error)
	Delete(key string) error
}

// BlobInfo describes a stored blob.
type BlobInfo struct {
	Size   int64
	Digest string
}
