package expenditures

import (
	"context"
	"fmt"
	"strings"

	stderrors "errors"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/anacreonhq/anacreon-backend/internal/audit"
	"github.com/anacreonhq/anacreon-backend/pkg/db/models"
	"github.com/anacreonhq/anacreon-backend/pkg/enums"
	"github.com/anacreonhq/anacreon-backend/pkg/errors"
	"github.com/anacreonhq/anacreon-backend/pkg/pagination"
)

// Service defines expenditure operations. Rows are immutable after creation;
// there is no update path.
type Service interface {
	Create(ctx context.Context, input CreateExpenditureInput) (*models.Expenditure, error)
	Get(ctx context.Context, businessID, expID uuid.UUID) (*models.Expenditure, error)
	List(ctx context.Context, businessID uuid.UUID, category string, page pagination.Params) ([]models.Expenditure, int64, error)
	Delete(ctx context.Context, businessID, expID uuid.UUID, actorID *uuid.UUID) error
}

// CreateExpenditureInput captures a new spend record.
type CreateExpenditureInput struct {
	BusinessID  uuid.UUID
	Amount      decimal.Decimal
	Description string
	Category    string
	ActorID     *uuid.UUID
}

type service struct {
	repo     Repository
	recorder *audit.Recorder
}

// NewService wires an expenditure service with its dependencies.
func NewService(repo Repository, recorder *audit.Recorder) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("expenditure repository required")
	}
	if recorder == nil {
		return nil, fmt.Errorf("audit recorder required")
	}
	return &service{repo: repo, recorder: recorder}, nil
}

func (s *service) Create(ctx context.Context, input CreateExpenditureInput) (*models.Expenditure, error) {
	if input.BusinessID == uuid.Nil {
		return nil, errors.New(errors.CodeValidation, "business id is required")
	}
	if !input.Amount.IsPositive() {
		return nil, errors.New(errors.CodeValidation, "amount must be positive")
	}
	category := strings.TrimSpace(input.Category)
	if category == "" {
		return nil, errors.New(errors.CodeValidation, "category is required")
	}

	exp := &models.Expenditure{
		BusinessID:  input.BusinessID,
		Amount:      input.Amount,
		Description: strings.TrimSpace(input.Description),
		Category:    category,
		SpentBy:     input.ActorID,
	}
	if err := s.repo.Create(ctx, exp); err != nil {
		return nil, errors.Wrap(errors.CodeInternal, err, "failed to create expenditure")
	}

	s.recorder.Record(ctx, audit.Entry{
		BusinessID: exp.BusinessID,
		UserID:     input.ActorID,
		Action:     enums.AuditActionCreate,
		Model:      audit.ModelExpenditure,
		ObjectID:   exp.ID,
		Details:    audit.ExpenditureDetails(exp),
	})
	return exp, nil
}

func (s *service) Get(ctx context.Context, businessID, expID uuid.UUID) (*models.Expenditure, error) {
	exp, err := s.repo.GetByID(ctx, businessID, expID)
	if err != nil {
		if stderrors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errors.New(errors.CodeNotFound, "expenditure not found")
		}
		return nil, errors.Wrap(errors.CodeInternal, err, "failed to load expenditure")
	}
	return exp, nil
}

func (s *service) List(ctx context.Context, businessID uuid.UUID, category string, page pagination.Params) ([]models.Expenditure, int64, error) {
	if businessID == uuid.Nil {
		return nil, 0, errors.New(errors.CodeValidation, "business id is required")
	}
	exps, total, err := s.repo.ListByBusiness(ctx, businessID, category, page)
	if err != nil {
		return nil, 0, errors.Wrap(errors.CodeInternal, err, "failed to list expenditures")
	}
	return exps, total, nil
}

// Delete removes a spend record and logs the pre-deletion values.
func (s *service) Delete(ctx context.Context, businessID, expID uuid.UUID, actorID *uuid.UUID) error {
	exp, err := s.Get(ctx, businessID, expID)
	if err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, businessID, expID); err != nil {
		return errors.Wrap(errors.CodeInternal, err, "failed to delete expenditure")
	}

	s.recorder.Record(ctx, audit.Entry{
		BusinessID: businessID,
		UserID:     actorID,
		Action:     enums.AuditActionDelete,
		Model:      audit.ModelExpenditure,
		ObjectID:   exp.ID,
		Details:    audit.ExpenditureDetails(exp),
	})
	return nil
}
