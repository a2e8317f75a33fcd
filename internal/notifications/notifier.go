package notifications

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"

	"jobboard-backend/internal/queue"
	"jobboard-backend/internal/shared/metrics"
	"jobboard-backend/internal/shared/telemetry"
)

// Notifier hands a notification to whatever delivers it.
type Notifier interface {
	Notify(ctx context.Context, n Notification) error
}

// QueueNotifier enqueues notifications for the worker.
type QueueNotifier struct {
	Client queue.Client
	Now    func() time.Time
}

func (q *QueueNotifier) Notify(ctx context.Context, n Notification) error {
	if q == nil || q.Client == nil {
		return fmt.Errorf("notification queue not configured")
	}
	if n.UserID <= 0 {
		return fmt.Errorf("%w: recipient is required", ErrValidation)
	}
	payload, err := json.Marshal(n)
	if err != nil {
		return fmt.Errorf("encode notification: %w", err)
	}
	now := time.Now
	if q.Now != nil {
		now = q.Now
	}
	msg := queue.Message{
		ID:           uuid.NewString(),
		Kind:         queue.KindNotification,
		Notification: payload,
		RequestID:    telemetry.RequestIDFromContext(ctx),
		EnqueuedAt:   now().UTC().Format(time.RFC3339),
		Version:      queue.CurrentVersion,
	}
	if err := q.Client.Send(ctx, msg); err != nil {
		return fmt.Errorf("enqueue notification: %w", err)
	}
	metrics.IncNotificationQueued()
	return nil
}

// DirectNotifier writes straight to the inbox; used when no queue is configured.
type DirectNotifier struct {
	Store Store
}

func (d *DirectNotifier) Notify(ctx context.Context, n Notification) error {
	if n.UserID <= 0 {
		return fmt.Errorf("%w: recipient is required", ErrValidation)
	}
	if _, err := d.Store.Create(ctx, n); err != nil {
		return fmt.Errorf("store notification: %w", err)
	}
	metrics.IncNotificationQueued()
	return nil
}

// Deliver persists a queued notification message. Malformed messages return ErrValidation.
// A redelivered message with the same id yields the row stored the first time.
func Deliver(ctx context.Context, store Store, msg queue.Message) (Notification, error) {
	if msg.Kind != queue.KindNotification {
		return Notification{}, fmt.Errorf("%w: kind %q", ErrValidation, msg.Kind)
	}
	if msg.Version > queue.CurrentVersion {
		return Notification{}, fmt.Errorf("%w: unsupported version %d", ErrValidation, msg.Version)
	}
	var n Notification
	if err := json.Unmarshal(msg.Notification, &n); err != nil {
		return Notification{}, fmt.Errorf("%w: decode payload: %v", ErrValidation, err)
	}
	if n.UserID <= 0 || n.Kind == "" {
		return Notification{}, fmt.Errorf("%w: recipient and kind are required", ErrValidation)
	}
	n.ID = 0
	n.ReadAt = nil
	n.DedupKey = msg.ID
	created, err := store.Create(ctx, n)
	if err != nil {
		return Notification{}, fmt.Errorf("store notification: %w", err)
	}
	return created, nil
}

var (
	_ Notifier = (*QueueNotifier)(nil)
	_ Notifier = (*DirectNotifier)(nil)
)
