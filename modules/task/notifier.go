package task

import (
	"context"
	"errors"

	"github.com/example/task-approval/events"
	"github.com/go-monolith/mono"
)

var errNoEventBus = errors.New("event bus not set")

// EventNotifier publishes task events on the mono event bus.
type EventNotifier struct {
	bus mono.EventBus
}

// NewEventNotifier creates an EventNotifier.
func NewEventNotifier(bus mono.EventBus) *EventNotifier {
	return &EventNotifier{bus: bus}
}

// Notify publishes a TaskNotification event.
func (n *EventNotifier) Notify(_ context.Context, ev events.TaskNotificationEvent) error {
	if n.bus == nil {
		return errNoEventBus
	}
	return events.TaskNotificationV1.Publish(n.bus, ev, nil)
}

// PhaseChanged publishes a TaskPhaseChanged event.
func (n *EventNotifier) PhaseChanged(_ context.Context, ev events.TaskPhaseChangedEvent) error {
	if n.bus == nil {
		return errNoEventBus
	}
	return events.TaskPhaseChangedV1.Publish(n.bus, ev, nil)
}
