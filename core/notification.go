package core

// Notification priorities.
const (
	NotificationPriorityLow    = "low"
	NotificationPriorityMedium = "medium"
	NotificationPriorityHigh   = "high"
	NotificationPriorityUrgent = "urgent"
)

type (
	// Notification is a message to be delivered to a single user.
	// The delivery mechanism (email, push, in-app) is up to the Notifier.
	Notification struct {
		UserID   string
		Title    string
		Message  string
		Priority string
	}

	// Notifier is any service that can dispatch notifications.
	Notifier interface {
		// Notify dispatches notifications concurrently; delivery is best-effort
		// and failures are logged, never returned.
		Notify(notifications ...*Notification)
	}
)
