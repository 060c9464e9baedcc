package notifier

import "context"

// NoopNotifier discards all events. Used when no webhook is configured.
type NoopNotifier struct{}

// NewNoopNotifier creates a NoopNotifier.
func NewNoopNotifier() *NoopNotifier {
	return &NoopNotifier{}
}

// NotifyFailure does nothing and always succeeds.
func (n *NoopNotifier) NotifyFailure(context.Context, Event) error {
	return nil
}
