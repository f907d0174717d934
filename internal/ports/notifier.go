package ports

import "context"

// Notifier delivers human-readable messages (e.g. chat).
type Notifier interface {
	Notify(ctx context.Context, title, message string) error
}
