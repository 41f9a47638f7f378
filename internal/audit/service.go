package audit

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/anacreonhq/anacreon-backend/pkg/db/models"
	"github.com/anacreonhq/anacreon-backend/pkg/errors"
	"github.com/anacreonhq/anacreon-backend/pkg/pagination"
)

// Model names recorded on audit rows. They are part of the stored payload,
// so renaming one is a data migration.
const (
	ModelBusiness    = "Business"
	ModelCategory    = "Category"
	ModelSubCategory = "SubCategory"
	ModelItem        = "Item"
	ModelItemImage   = "ItemImage"
	ModelStock       = "Stock"
	ModelExpenditure = "Expenditure"
	ModelOrder       = "Order"
)

// Service exposes the read side of the audit trail.
type Service interface {
	List(ctx context.Context, businessID uuid.UUID, filter Filter, page pagination.Params) ([]models.AuditLog, int64, error)
}

type service struct {
	repo Repository
}

// NewService wires an audit query service with the provided repository.
func NewService(repo Repository) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("audit repository required")
	}
	return &service{repo: repo}, nil
}

func (s *service) List(ctx context.Context, businessID uuid.UUID, filter Filter, page pagination.Params) ([]models.AuditLog, int64, error) {
	if businessID == uuid.Nil {
		return nil, 0, errors.New(errors.CodeValidation, "business id is required")
	}
	logs, total, err := s.repo.ListByBusiness(ctx, businessID, filter, page)
	if err != nil {
		return nil, 0, errors.Wrap(errors.CodeInternal, err, "failed to list audit logs")
	}
	return logs, total, nil
}
