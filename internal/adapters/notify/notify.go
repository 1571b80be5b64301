// Package notify delivers desktop notifications.
package notify

import (
	"github.com/gen2brain/beeep"
	"go.trai.ch/knit/internal/core/ports"
	"go.trai.ch/zerr"
)

var _ ports.Notifier = (*Desktop)(nil)

// SendFunc delivers a single notification.
type SendFunc func(title, message string) error

// Desktop implements ports.Notifier with native desktop notifications.
type Desktop struct {
	send SendFunc
}

// NewDesktop creates a Desktop notifier backed by the operating system's notification service.
func NewDesktop() *Desktop {
	return NewDesktopWith(func(title, message string) error {
		return beeep.Notify(title, message, "")
	})
}

// NewDesktopWith creates a Desktop notifier using send.
func NewDesktopWith(send SendFunc) *Desktop {
	return &Desktop{send: send}
}

// Notify shows a notification with the given title and message.
func (d *Desktop) Notify(title, message string) error {
	if err := d.send(title, message); err != nil {
		return zerr.With(zerr.Wrap(err, "failed to send desktop notification"), "title", title)
	}
	return nil
}
