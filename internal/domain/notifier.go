package domain

import "context"

// Notifier reports a completed backup to an operator.
type Notifier interface {
	NotifyBackup(ctx context.Context, b Backup) error
}
