// Package notify adapts the external notification facility. The engine
// only ever calls Send when Permission reports granted; requesting
// permission from the user is not this layer's job.
package notify

import (
	"fmt"
	"log/slog"

	"github.com/gen2brain/beeep"

	"github.com/routinelab/routined/internal/config"
)

// Permission mirrors the facility's permission state.
type Permission string

const (
	PermissionGranted Permission = "granted"
	PermissionDenied  Permission = "denied"
	PermissionDefault Permission = "default"
)

// Sender dispatches one notification per call. Tag is the occurrence key,
// passed through as a dedup hint for facilities that support it.
type Sender interface {
	Permission() Permission
	Send(title, body, tag string) error
}

// New selects a sender from the configured driver.
func New(driver string, logger *slog.Logger) (Sender, error) {
	switch driver {
	case config.NotifyDesktop:
		return &DesktopSender{logger: logger}, nil
	case config.NotifyLog:
		return &LogSender{logger: logger}, nil
	case config.NotifyOff:
		return &OffSender{}, nil
	}
	return nil, fmt.Errorf("unknown notify driver %q", driver)
}

// DesktopSender delivers OS desktop notifications.
type DesktopSender struct {
	logger *slog.Logger
}

// Permission is granted whenever the driver is configured; desktop
// facilities expose no query, a rejected Send is the failure signal.
func (s *DesktopSender) Permission() Permission { return PermissionGranted }

// Send shows a desktop notification.
func (s *DesktopSender) Send(title, body, tag string) error {
	if err := beeep.Notify(title, body, ""); err != nil {
		return fmt.Errorf("desktop notify: %w", err)
	}
	s.logger.Debug("Notification sent", "tag", tag, "title", title)
	return nil
}

// LogSender writes notifications to the log only. Useful headless and in
// development.
type LogSender struct {
	logger *slog.Logger
}

func (s *LogSender) Permission() Permission { return PermissionGranted }

func (s *LogSender) Send(title, body, tag string) error {
	s.logger.Info("Notification", "tag", tag, "title", title, "body", body)
	return nil
}

// OffSender models permission never granted: reminders stay eligible until
// the driver changes, without polluting the dedup store.
type OffSender struct{}

func (s *OffSender) Permission() Permission { return PermissionDefault }

func (s *OffSender) Send(title, body, tag string) error {
	return fmt.Errorf("notifications disabled")
}
