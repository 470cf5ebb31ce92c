package application

import (
	"context"

	"govee-logger/internal/domain"
)

// Notifier is told about runs in which at least one device was skipped.
type Notifier interface {
	Notify(ctx context.Context, alert domain.Alert) error
}

type NoopNotifier struct{}

func (n *NoopNotifier) Notify(_ context.Context, _ domain.Alert) error {
	return nil
}
