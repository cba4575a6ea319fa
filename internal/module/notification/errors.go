package notification

import "errors"

var (
	// ErrNotificationNotFound indicates the notification does not exist
	// or belongs to another recipient.
	ErrNotificationNotFound = errors.New("notification not found")
)
