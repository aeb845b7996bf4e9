package service

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/YEYOLABS/boundless-fleet/internal/application/port"
	"github.com/YEYOLABS/boundless-fleet/internal/domain/entity"
	"github.com/YEYOLABS/boundless-fleet/pkg/locks"
	"github.com/YEYOLABS/boundless-fleet/pkg/utils"
)

// IssueFloatInput carries the fields needed to issue a cash float to a
// driver for a tour.
type IssueFloatInput struct {
	DriverID    string
	TourID      string
	AmountCents int64
	Message     string
}

// SubmitExpenseInput carries a driver's expense claim against a float.
type SubmitExpenseInput struct {
	FloatID     string
	AmountCents int64
	Category    string
	Description string
	ReceiptURL  string
}

// FloatService maintains the cash float ledger. The balance invariant
// is 0 <= remaining <= original at all times: only approval moves the
// balance, and an approval that would overdraw the float is refused.
type FloatService interface {
	Issue(ctx context.Context, input IssueFloatInput) (*entity.Float, error)
	Get(ctx context.Context, id string) (*entity.Float, error)
	List(ctx context.Context) ([]*entity.Float, error)

	// Close finalises a float, freezing its remaining balance. Closing
	// an already closed float is a Conflict; callers should re-read
	// state rather than retry blindly.
	Close(ctx context.Context, id string) (*entity.Float, error)

	SubmitExpense(ctx context.Context, input SubmitExpenseInput) (*entity.Expense, error)
	ListExpenses(ctx context.Context, floatID string) ([]*entity.Expense, error)

	// ListAllExpenses returns every expense across all floats, for the
	// operator's review queue.
	ListAllExpenses(ctx context.Context) ([]*entity.Expense, error)

	// ApproveExpense decrements the float balance by the expense amount.
	ApproveExpense(ctx context.Context, expenseID string) (*entity.Expense, error)

	// RejectExpense finalises the expense without touching the balance.
	RejectExpense(ctx context.Context, expenseID string) (*entity.Expense, error)

	// DeleteExpense removes an expense of any status without touching
	// the balance; cents deducted by an approval stay deducted.
	DeleteExpense(ctx context.Context, expenseID string) error
}

type floatService struct {
	floats    port.FloatRepository
	expenses  port.ExpenseRepository
	drivers   port.DriverRepository
	tours     port.TourRepository
	txManager port.TransactionManager
	floatMu   *locks.KeyedMutex
	logger    *zap.Logger
}

// NewFloatService creates a new FloatService.
func NewFloatService(
	floats port.FloatRepository,
	expenses port.ExpenseRepository,
	drivers port.DriverRepository,
	tours port.TourRepository,
	txManager port.TransactionManager,
	logger *zap.Logger,
) FloatService {
	return &floatService{
		floats:    floats,
		expenses:  expenses,
		drivers:   drivers,
		tours:     tours,
		txManager: txManager,
		floatMu:   locks.NewKeyedMutex(),
		logger:    logger,
	}
}

func (s *floatService) Issue(ctx context.Context, input IssueFloatInput) (*entity.Float, error) {
	if err := utils.ValidateAmountCents(input.AmountCents); err != nil {
		return nil, fmt.Errorf("%w: %v", entity.ErrValidation, err)
	}
	if input.DriverID == "" {
		return nil, fmt.Errorf("%w: driver id is required", entity.ErrValidation)
	}

	driver, err := s.drivers.GetByID(ctx, input.DriverID)
	if err != nil {
		return nil, err
	}

	if input.TourID != "" {
		tour, err := s.tours.GetByID(ctx, input.TourID)
		if err != nil {
			return nil, err
		}
		if tour.Status.IsTerminal() {
			return nil, fmt.Errorf("%w: tour %s is %s", entity.ErrConflict, tour.ID, tour.Status)
		}
		existing, err := s.floats.GetOpenByTour(ctx, input.TourID)
		if err != nil {
			return nil, err
		}
		if existing != nil {
			return nil, fmt.Errorf("%w: tour %s already has open float %s",
				entity.ErrConflict, input.TourID, existing.ID)
		}
	}

	now := time.Now().UTC()
	f := &entity.Float{
		ID:             uuid.NewString(),
		DriverID:       driver.ID,
		DriverName:     driver.Name,
		TourID:         input.TourID,
		OriginalCents:  input.AmountCents,
		RemainingCents: input.AmountCents,
		Active:         true,
		Status:         entity.FloatOpen,
		Message:        input.Message,
		IssuedAt:       now,
	}

	if err := s.floats.Create(ctx, f); err != nil {
		return nil, err
	}

	s.logger.Info("Float issued",
		zap.String("float_id", f.ID),
		zap.String("driver_id", f.DriverID),
		zap.Int64("amount_cents", f.OriginalCents))
	return f, nil
}

func (s *floatService) Get(ctx context.Context, id string) (*entity.Float, error) {
	return s.floats.GetByID(ctx, id)
}

func (s *floatService) List(ctx context.Context) ([]*entity.Float, error) {
	return s.floats.List(ctx)
}

func (s *floatService) Close(ctx context.Context, id string) (*entity.Float, error) {
	s.floatMu.Lock(id)
	defer s.floatMu.Unlock(id)

	f, err := s.floats.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !f.IsOpen() {
		return nil, fmt.Errorf("%w: float %s is already closed", entity.ErrConflict, id)
	}

	pending, err := s.countPending(ctx, id)
	if err != nil {
		return nil, err
	}
	if pending > 0 {
		return nil, fmt.Errorf("%w: float %s has %d pending expenses", entity.ErrConflict, id, pending)
	}

	now := time.Now().UTC()
	f.Status = entity.FloatClosed
	f.Active = false
	f.ClosedAt = &now
	if err := s.floats.Update(ctx, f); err != nil {
		return nil, err
	}

	s.logger.Info("Float closed",
		zap.String("float_id", f.ID),
		zap.Int64("remaining_cents", f.RemainingCents))
	return f, nil
}

func (s *floatService) SubmitExpense(ctx context.Context, input SubmitExpenseInput) (*entity.Expense, error) {
	if err := utils.ValidateAmountCents(input.AmountCents); err != nil {
		return nil, fmt.Errorf("%w: %v", entity.ErrValidation, err)
	}
	if input.Category == "" {
		return nil, fmt.Errorf("%w: expense category is required", entity.ErrValidation)
	}

	f, err := s.floats.GetByID(ctx, input.FloatID)
	if err != nil {
		return nil, err
	}
	if !f.IsOpen() {
		return nil, fmt.Errorf("%w: float %s is closed", entity.ErrConflict, f.ID)
	}

	e := &entity.Expense{
		ID:          uuid.NewString(),
		FloatID:     f.ID,
		TourID:      f.TourID,
		DriverName:  f.DriverName,
		AmountCents: input.AmountCents,
		Category:    input.Category,
		Description: input.Description,
		ReceiptURL:  input.ReceiptURL,
		Status:      entity.ExpensePending,
		CreatedAt:   time.Now().UTC(),
	}

	if err := s.expenses.Create(ctx, e); err != nil {
		return nil, err
	}

	s.logger.Info("Expense submitted",
		zap.String("expense_id", e.ID),
		zap.String("float_id", f.ID),
		zap.Int64("amount_cents", e.AmountCents))
	return e, nil
}

func (s *floatService) ListExpenses(ctx context.Context, floatID string) ([]*entity.Expense, error) {
	if _, err := s.floats.GetByID(ctx, floatID); err != nil {
		return nil, err
	}
	return s.expenses.ListByFloat(ctx, floatID)
}

func (s *floatService) ListAllExpenses(ctx context.Context) ([]*entity.Expense, error) {
	return s.expenses.List(ctx)
}

func (s *floatService) ApproveExpense(ctx context.Context, expenseID string) (*entity.Expense, error) {
	e, err := s.expenses.GetByID(ctx, expenseID)
	if err != nil {
		return nil, err
	}

	s.floatMu.Lock(e.FloatID)
	defer s.floatMu.Unlock(e.FloatID)

	// Re-read under the lock so two approvals cannot both see the same
	// pending status.
	e, err = s.expenses.GetByID(ctx, expenseID)
	if err != nil {
		return nil, err
	}
	if e.Status.IsTerminal() {
		return nil, fmt.Errorf("%w: expense %s is already %s", entity.ErrConflict, e.ID, e.Status)
	}

	f, err := s.floats.GetByID(ctx, e.FloatID)
	if err != nil {
		return nil, err
	}
	if !f.IsOpen() {
		return nil, fmt.Errorf("%w: float %s is closed", entity.ErrConflict, f.ID)
	}
	if e.AmountCents > f.RemainingCents {
		return nil, fmt.Errorf("%w: expense %d exceeds remaining %d",
			entity.ErrInsufficientBalance, e.AmountCents, f.RemainingCents)
	}

	now := time.Now().UTC()
	e.Status = entity.ExpenseApproved
	e.DecidedAt = &now
	f.RemainingCents -= e.AmountCents

	err = s.txManager.WithTransaction(ctx, func(ctx context.Context) error {
		if err := s.expenses.Update(ctx, e); err != nil {
			return err
		}
		return s.floats.Update(ctx, f)
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("Expense approved",
		zap.String("expense_id", e.ID),
		zap.String("float_id", f.ID),
		zap.Int64("remaining_cents", f.RemainingCents))
	return e, nil
}

func (s *floatService) RejectExpense(ctx context.Context, expenseID string) (*entity.Expense, error) {
	e, err := s.expenses.GetByID(ctx, expenseID)
	if err != nil {
		return nil, err
	}

	s.floatMu.Lock(e.FloatID)
	defer s.floatMu.Unlock(e.FloatID)

	e, err = s.expenses.GetByID(ctx, expenseID)
	if err != nil {
		return nil, err
	}
	if e.Status.IsTerminal() {
		return nil, fmt.Errorf("%w: expense %s is already %s", entity.ErrConflict, e.ID, e.Status)
	}

	now := time.Now().UTC()
	e.Status = entity.ExpenseRejected
	e.DecidedAt = &now
	if err := s.expenses.Update(ctx, e); err != nil {
		return nil, err
	}

	s.logger.Info("Expense rejected", zap.String("expense_id", e.ID))
	return e, nil
}

func (s *floatService) DeleteExpense(ctx context.Context, expenseID string) error {
	e, err := s.expenses.GetByID(ctx, expenseID)
	if err != nil {
		return err
	}

	s.floatMu.Lock(e.FloatID)
	defer s.floatMu.Unlock(e.FloatID)

	// Deletion never touches the balance, whatever the expense status:
	// an approved expense's cents stay deducted, the row just leaves the
	// listing. The decision itself stays immutable.
	if err := s.expenses.Delete(ctx, expenseID); err != nil {
		return err
	}
	s.logger.Info("Expense deleted",
		zap.String("expense_id", expenseID),
		zap.String("status", string(e.Status)))
	return nil
}

func (s *floatService) countPending(ctx context.Context, floatID string) (int, error) {
	list, err := s.expenses.ListByFloat(ctx, floatID)
	if err != nil {
		return 0, err
	}
	n := 0
	for _, e := range list {
		if e.Status == entity.ExpensePending {
			n++
		}
	}
	return n, nil
}
