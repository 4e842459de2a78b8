package alerts

import "context"

// Alert mirrors a monitor run summary to an external operations channel.
// It is how operators learn about a failed or degraded run without polling
// the dashboard.
type Alert struct {
	Monitor              string `json:"monitor"`
	Success              bool   `json:"success"`
	SubjectsChecked      int    `json:"subjects_checked"`
	NotificationsCreated int    `json:"notifications_created"`
	NotificationsFailed  int    `json:"notifications_failed"`
	Error                string `json:"error,omitempty"`
}

// Notifier sends run alerts to external systems.
type Notifier interface {
	// Name returns the notifier identifier.
	Name() string

	// Send delivers an alert. Implementations must be safe for concurrent use.
	Send(ctx context.Context, alert Alert) error
}
