package services

import (
	"context"
	"time"

	"fintrack/internal/amqp"
	"fintrack/internal/core"
	"fintrack/internal/log"
	"fintrack/internal/storage"
)

// BudgetService coordinates budget CRUD across SQLite and AMQP.
// Budgets are always scoped to the month in which they are created.
type BudgetService struct {
	storage    *storage.Store
	amqpClient *amqp.Client
	logger     *log.Logger
	now        func() time.Time
}

func NewBudgetService(store *storage.Store, amqpClient *amqp.Client, logger *log.Logger) *BudgetService {
	return &BudgetService{
		storage:    store,
		amqpClient: amqpClient,
		logger:     logger.WithComponent(log.ComponentService),
		now:        time.Now,
	}
}

// Create validates the raw input and stores a budget for the current
// month. Duplicate (category, month) pairs surface as
// storage.ErrDuplicateBudget.
func (s *BudgetService) Create(ctx context.Context, in core.BudgetInput) (core.Budget, error) {
	b, err := in.Normalize(s.now().UTC())
	if err != nil {
		return core.Budget{}, err
	}

	created, err := s.storage.CreateBudget(ctx, b)
	if err != nil {
		return core.Budget{}, err
	}

	s.publish(ctx, EntityBudget, created.ID, log.OpCreate)
	return created, nil
}

func (s *BudgetService) Get(ctx context.Context, id string) (core.Budget, error) {
	return s.storage.GetBudget(ctx, id)
}

// ListCurrentMonth returns the budgets for the month containing now.
func (s *BudgetService) ListCurrentMonth(ctx context.Context) ([]core.Budget, error) {
	now := s.now().UTC()
	return s.storage.ListBudgetsForMonth(ctx, now.Year(), int(now.Month()))
}

// ListMonth returns the budgets for an explicit calendar month.
func (s *BudgetService) ListMonth(ctx context.Context, year, month int) ([]core.Budget, error) {
	return s.storage.ListBudgetsForMonth(ctx, year, month)
}

// UpdateAmount changes a budget's amount; category and month are
// immutable after creation.
func (s *BudgetService) UpdateAmount(ctx context.Context, id, rawAmount string) (core.Budget, error) {
	amount, err := core.ParseAmount(rawAmount)
	if err != nil {
		return core.Budget{}, err
	}

	updated, err := s.storage.UpdateBudgetAmount(ctx, id, amount)
	if err != nil {
		return core.Budget{}, err
	}

	s.publish(ctx, EntityBudget, id, log.OpUpdate)
	return updated, nil
}

// Delete removes a budget and returns the deleted record.
func (s *BudgetService) Delete(ctx context.Context, id string) (core.Budget, error) {
	deleted, err := s.storage.DeleteBudget(ctx, id)
	if err != nil {
		return core.Budget{}, err
	}

	s.publish(ctx, EntityBudget, id, log.OpDelete)
	return deleted, nil
}

func (s *BudgetService) publish(ctx context.Context, entity, id, action string) {
	if s.amqpClient == nil {
		return
	}
	if err := s.amqpClient.PublishRecordEvent(ctx, amqp.NewRecordEvent(entity, id, action)); err != nil {
		s.logger.ErrorContext(ctx, "failed to publish record event",
			log.FieldEntity, entity,
			log.FieldRecordID, id,
			log.FieldOperation, action,
			log.FieldError, err)
	}
}

