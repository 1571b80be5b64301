// Package errorsink keeps pass failures from ending a long-lived watch.
package errorsink

import (
	"context"

	"go.trai.ch/knit/internal/core/ports"
)

// NotificationTitle is the title of the notification sent for a failed pass.
const NotificationTitle = "Compile Error"

// Pass is one unit of work guarded by a Sink.
type Pass func(ctx context.Context) error

// Sink reports failed passes through a notifier and the logger instead of returning them.
type Sink struct {
	notifier ports.Notifier
	logger   ports.Logger
}

// New creates a Sink.
func New(notifier ports.Notifier, logger ports.Logger) *Sink {
	return &Sink{notifier: notifier, logger: logger}
}

// Run runs pass and reports whether it succeeded. A failure is handled and never returned.
func (s *Sink) Run(ctx context.Context, pass Pass) bool {
	err := pass(ctx)
	if err == nil {
		return true
	}
	s.Handle(err)
	return false
}

// Handle notifies and logs err. A notifier failure is logged as a warning.
func (s *Sink) Handle(err error) {
	if err == nil {
		return
	}

	s.logger.Error(err)

	if notifyErr := s.notifier.Notify(NotificationTitle, err.Error()); notifyErr != nil {
		s.logger.Warn("notification not shown: " + notifyErr.Error())
	}
}
