package stock

import (
	"context"
	"fmt"

	stderrors "errors"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/anacreonhq/anacreon-backend/internal/audit"
	"github.com/anacreonhq/anacreon-backend/internal/items"
	"github.com/anacreonhq/anacreon-backend/pkg/db"
	"github.com/anacreonhq/anacreon-backend/pkg/db/models"
	"github.com/anacreonhq/anacreon-backend/pkg/enums"
	"github.com/anacreonhq/anacreon-backend/pkg/errors"
	"github.com/anacreonhq/anacreon-backend/pkg/pagination"
)

// Service defines stock snapshot operations. Recording a snapshot also
// overwrites the owning item's quantity and prices so reads off the catalog
// stay consistent with the latest snapshot.
type Service interface {
	Record(ctx context.Context, input RecordStockInput) (*models.Stock, error)
	Update(ctx context.Context, input UpdateStockInput) (*models.Stock, error)
	Current(ctx context.Context, businessID, itemID uuid.UUID) (*models.Stock, error)
	ListByItem(ctx context.Context, businessID, itemID uuid.UUID, page pagination.Params) ([]models.Stock, int64, error)
	Delete(ctx context.Context, businessID, snapshotID uuid.UUID, actorID *uuid.UUID) error
}

// RecordStockInput captures a new point-in-time stock snapshot.
type RecordStockInput struct {
	BusinessID   uuid.UUID
	ItemID       uuid.UUID
	Quantity     int
	CostPrice    decimal.Decimal
	SellingPrice decimal.Decimal
	ActorID      *uuid.UUID
}

// UpdateStockInput overwrites quantity/prices on an existing snapshot. Nil
// price pointers leave the recorded price alone.
type UpdateStockInput struct {
	BusinessID   uuid.UUID
	SnapshotID   uuid.UUID
	Quantity     int
	CostPrice    *decimal.Decimal
	SellingPrice *decimal.Decimal
	ActorID      *uuid.UUID
}

type service struct {
	client   *db.Client
	repo     Repository
	items    items.Repository
	recorder *audit.Recorder
}

// NewService wires a stock service with its dependencies.
func NewService(client *db.Client, repo Repository, itemRepo items.Repository, recorder *audit.Recorder) (Service, error) {
	if client == nil {
		return nil, fmt.Errorf("db client required")
	}
	if repo == nil {
		return nil, fmt.Errorf("stock repository required")
	}
	if itemRepo == nil {
		return nil, fmt.Errorf("item repository required")
	}
	if recorder == nil {
		return nil, fmt.Errorf("audit recorder required")
	}
	return &service{client: client, repo: repo, items: itemRepo, recorder: recorder}, nil
}

func (s *service) Record(ctx context.Context, input RecordStockInput) (*models.Stock, error) {
	if input.BusinessID == uuid.Nil {
		return nil, errors.New(errors.CodeValidation, "business id is required")
	}
	if input.ItemID == uuid.Nil {
		return nil, errors.New(errors.CodeValidation, "item id is required")
	}
	if input.Quantity < 0 {
		return nil, errors.New(errors.CodeValidation, "quantity cannot be negative")
	}
	if input.CostPrice.IsNegative() || input.SellingPrice.IsNegative() {
		return nil, errors.New(errors.CodeValidation, "prices cannot be negative")
	}

	var snapshot *models.Stock
	var itemName string
	err := s.client.WithTx(ctx, func(tx *gorm.DB) error {
		itemRepo := s.items.WithTx(tx)
		item, err := itemRepo.GetByID(ctx, input.BusinessID, input.ItemID)
		if err != nil {
			if stderrors.Is(err, gorm.ErrRecordNotFound) {
				return errors.New(errors.CodeNotFound, "item not found")
			}
			return errors.Wrap(errors.CodeInternal, err, "failed to load item")
		}
		itemName = item.Name

		snapshot = &models.Stock{
			ItemID:       input.ItemID,
			Quantity:     input.Quantity,
			CostPrice:    input.CostPrice,
			SellingPrice: input.SellingPrice,
			RecordedBy:   input.ActorID,
		}
		if err := s.repo.WithTx(tx).Create(ctx, snapshot); err != nil {
			return errors.Wrap(errors.CodeInternal, err, "failed to record stock")
		}
		if err := itemRepo.SetQuantity(ctx, input.ItemID, input.Quantity, input.CostPrice, input.SellingPrice); err != nil {
			return errors.Wrap(errors.CodeInternal, err, "failed to sync item with stock snapshot")
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.recorder.Record(ctx, audit.Entry{
		BusinessID: input.BusinessID,
		UserID:     input.ActorID,
		Action:     enums.AuditActionCreate,
		Model:      audit.ModelStock,
		ObjectID:   snapshot.ID,
		Details:    audit.StockDetails(snapshot, itemName),
	})
	return snapshot, nil
}

func (s *service) Update(ctx context.Context, input UpdateStockInput) (*models.Stock, error) {
	if input.Quantity < 0 {
		return nil, errors.New(errors.CodeValidation, "quantity cannot be negative")
	}

	var snapshot *models.Stock
	var itemName string
	err := s.client.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		loaded, err := repo.GetByID(ctx, input.SnapshotID)
		if err != nil {
			if stderrors.Is(err, gorm.ErrRecordNotFound) {
				return errors.New(errors.CodeNotFound, "stock snapshot not found")
			}
			return errors.Wrap(errors.CodeInternal, err, "failed to load stock snapshot")
		}

		itemRepo := s.items.WithTx(tx)
		item, err := itemRepo.GetByID(ctx, input.BusinessID, loaded.ItemID)
		if err != nil {
			if stderrors.Is(err, gorm.ErrRecordNotFound) {
				return errors.New(errors.CodeNotFound, "stock snapshot not found")
			}
			return errors.Wrap(errors.CodeInternal, err, "failed to load item")
		}
		itemName = item.Name

		loaded.Quantity = input.Quantity
		if input.CostPrice != nil {
			if input.CostPrice.IsNegative() {
				return errors.New(errors.CodeValidation, "cost price cannot be negative")
			}
			loaded.CostPrice = *input.CostPrice
		}
		if input.SellingPrice != nil {
			if input.SellingPrice.IsNegative() {
				return errors.New(errors.CodeValidation, "selling price cannot be negative")
			}
			loaded.SellingPrice = *input.SellingPrice
		}
		if err := repo.Update(ctx, loaded); err != nil {
			return errors.Wrap(errors.CodeInternal, err, "failed to update stock snapshot")
		}
		if err := itemRepo.SetQuantity(ctx, loaded.ItemID, loaded.Quantity, loaded.CostPrice, loaded.SellingPrice); err != nil {
			return errors.Wrap(errors.CodeInternal, err, "failed to sync item with stock snapshot")
		}
		snapshot = loaded
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.recorder.Record(ctx, audit.Entry{
		BusinessID: input.BusinessID,
		UserID:     input.ActorID,
		Action:     enums.AuditActionUpdate,
		Model:      audit.ModelStock,
		ObjectID:   snapshot.ID,
		Details:    audit.StockDetails(snapshot, itemName),
	})
	return snapshot, nil
}

// Current returns the most recently recorded snapshot for the item.
func (s *service) Current(ctx context.Context, businessID, itemID uuid.UUID) (*models.Stock, error) {
	if _, err := s.items.GetByID(ctx, businessID, itemID); err != nil {
		if stderrors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errors.New(errors.CodeNotFound, "item not found")
		}
		return nil, errors.Wrap(errors.CodeInternal, err, "failed to load item")
	}
	snapshot, err := s.repo.Latest(ctx, itemID)
	if err != nil {
		if stderrors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errors.New(errors.CodeNotFound, "no stock recorded for item")
		}
		return nil, errors.Wrap(errors.CodeInternal, err, "failed to load current stock")
	}
	return snapshot, nil
}

func (s *service) ListByItem(ctx context.Context, businessID, itemID uuid.UUID, page pagination.Params) ([]models.Stock, int64, error) {
	if _, err := s.items.GetByID(ctx, businessID, itemID); err != nil {
		if stderrors.Is(err, gorm.ErrRecordNotFound) {
			return nil, 0, errors.New(errors.CodeNotFound, "item not found")
		}
		return nil, 0, errors.Wrap(errors.CodeInternal, err, "failed to load item")
	}
	snapshots, total, err := s.repo.ListByItem(ctx, itemID, page)
	if err != nil {
		return nil, 0, errors.Wrap(errors.CodeInternal, err, "failed to list stock snapshots")
	}
	return snapshots, total, nil
}

// Delete removes a snapshot and logs the pre-deletion values.
func (s *service) Delete(ctx context.Context, businessID, snapshotID uuid.UUID, actorID *uuid.UUID) error {
	snapshot, err := s.repo.GetByID(ctx, snapshotID)
	if err != nil {
		if stderrors.Is(err, gorm.ErrRecordNotFound) {
			return errors.New(errors.CodeNotFound, "stock snapshot not found")
		}
		return errors.Wrap(errors.CodeInternal, err, "failed to load stock snapshot")
	}
	item, err := s.items.GetByID(ctx, businessID, snapshot.ItemID)
	if err != nil {
		if stderrors.Is(err, gorm.ErrRecordNotFound) {
			return errors.New(errors.CodeNotFound, "stock snapshot not found")
		}
		return errors.Wrap(errors.CodeInternal, err, "failed to load item")
	}

	if err := s.repo.Delete(ctx, snapshotID); err != nil {
		return errors.Wrap(errors.CodeInternal, err, "failed to delete stock snapshot")
	}

	s.recorder.Record(ctx, audit.Entry{
		BusinessID: businessID,
		UserID:     actorID,
		Action:     enums.AuditActionDelete,
		Model:      audit.ModelStock,
		ObjectID:   snapshot.ID,
		Details:    audit.StockDetails(snapshot, item.Name),
	})
	return nil
}
