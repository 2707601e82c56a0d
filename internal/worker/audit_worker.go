// Package worker consumes record-change events and appends them to the
// audit trail in SQLite.
package worker

import (
	"context"
	"fmt"

	"fintrack/internal/amqp"
	"fintrack/internal/log"
	"fintrack/internal/storage"
)

// AuditWorker turns record events into audit_events rows. Events are
// idempotent appends, so redelivery after a requeue is harmless.
type AuditWorker struct {
	storage *storage.Store
	logger  *log.Logger
}

func NewAuditWorker(store *storage.Store, logger *log.Logger) *AuditWorker {
	return &AuditWorker{
		storage: store,
		logger:  logger.WithComponent(log.ComponentWorker),
	}
}

// HandleRecordEvent processes a single record event. A returned error
// makes the consumer requeue the delivery.
func (w *AuditWorker) HandleRecordEvent(ctx context.Context, event *amqp.RecordEvent) error {
	if event.Entity == "" || event.ID == "" || event.Action == "" {
		// A retry cannot repair a malformed event; log and drop.
		w.logger.WarnContext(ctx, "dropping incomplete record event",
			log.FieldEntity, event.Entity,
			log.FieldRecordID, event.ID,
			log.FieldOperation, event.Action)
		return nil
	}

	err := w.storage.AppendAuditEvent(ctx, storage.AuditEvent{
		Entity:     event.Entity,
		EntityID:   event.ID,
		Action:     event.Action,
		OccurredAt: event.Timestamp,
	})
	if err != nil {
		return fmt.Errorf("append audit event: %w", err)
	}

	w.logger.InfoContext(ctx, "recorded audit event",
		log.FieldEntity, event.Entity,
		log.FieldRecordID, event.ID,
		log.FieldOperation, event.Action)

	return nil
}

// Run consumes events from the broker until ctx is cancelled.
func (w *AuditWorker) Run(ctx context.Context, client *amqp.Client) error {
	return client.ConsumeRecordEvents(ctx, func(event *amqp.RecordEvent) error {
		return w.HandleRecordEvent(ctx, event)
	})
}
