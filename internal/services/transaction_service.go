// Package services orchestrates storage writes with best-effort event
// publishing. A write succeeds once it is durable in SQLite; a failed
// publish is logged and never fails the request.
package services

import (
	"context"
	"fmt"

	"fintrack/internal/amqp"
	"fintrack/internal/core"
	"fintrack/internal/log"
	"fintrack/internal/storage"
)

const (
	EntityTransaction = "transaction"
	EntityBudget      = "budget"
)

// TransactionService coordinates transaction CRUD across SQLite and AMQP.
type TransactionService struct {
	storage    *storage.Store
	amqpClient *amqp.Client
	logger     *log.Logger
}

// NewTransactionService creates the service. amqpClient may be nil, in
// which case event publishing is skipped.
func NewTransactionService(store *storage.Store, amqpClient *amqp.Client, logger *log.Logger) *TransactionService {
	return &TransactionService{
		storage:    store,
		amqpClient: amqpClient,
		logger:     logger.WithComponent(log.ComponentService),
	}
}

// Create validates the raw input, stores the transaction, and publishes
// a create event.
func (s *TransactionService) Create(ctx context.Context, in core.TransactionInput) (core.Transaction, error) {
	t, err := in.Normalize()
	if err != nil {
		return core.Transaction{}, err
	}

	created, err := s.storage.CreateTransaction(ctx, t)
	if err != nil {
		return core.Transaction{}, fmt.Errorf("save transaction: %w", err)
	}

	s.publish(ctx, EntityTransaction, created.ID, log.OpCreate)
	return created, nil
}

func (s *TransactionService) Get(ctx context.Context, id string) (core.Transaction, error) {
	return s.storage.GetTransaction(ctx, id)
}

func (s *TransactionService) List(ctx context.Context, f storage.TransactionFilter) ([]core.Transaction, error) {
	return s.storage.ListTransactions(ctx, f)
}

// Update replaces the mutable fields of an existing transaction.
func (s *TransactionService) Update(ctx context.Context, id string, in core.TransactionInput) (core.Transaction, error) {
	t, err := in.Normalize()
	if err != nil {
		return core.Transaction{}, err
	}

	updated, err := s.storage.UpdateTransaction(ctx, id, t)
	if err != nil {
		return core.Transaction{}, err
	}

	s.publish(ctx, EntityTransaction, id, log.OpUpdate)
	return updated, nil
}

// Delete removes a transaction and returns the deleted record.
func (s *TransactionService) Delete(ctx context.Context, id string) (core.Transaction, error) {
	deleted, err := s.storage.DeleteTransaction(ctx, id)
	if err != nil {
		return core.Transaction{}, err
	}

	s.publish(ctx, EntityTransaction, id, log.OpDelete)
	return deleted, nil
}

func (s *TransactionService) publish(ctx context.Context, entity, id, action string) {
	if s.amqpClient == nil {
		return
	}
	if err := s.amqpClient.PublishRecordEvent(ctx, amqp.NewRecordEvent(entity, id, action)); err != nil {
		// The record is already durable; event delivery is best effort.
		s.logger.ErrorContext(ctx, "failed to publish record event",
			log.FieldEntity, entity,
			log.FieldRecordID, id,
			log.FieldOperation, action,
			log.FieldError, err)
	}
}

// Close releases storage and broker connections.
func (s *TransactionService) Close() error {
	var errs []error

	if s.storage != nil {
		if err := s.storage.Close(); err != nil {
			errs = append(errs, fmt.Errorf("storage: %w", err))
		}
	}
	if s.amqpClient != nil {
		if err := s.amqpClient.Close(); err != nil {
			errs = append(errs, fmt.Errorf("amqp: %w", err))
		}
	}

	if len(errs) > 0 {
		return fmt.Errorf("close transaction service: %v", errs)
	}
	return nil
}
