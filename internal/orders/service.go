package orders

import (
	"context"
	"fmt"
	"time"

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
	"github.com/anacreonhq/anacreon-backend/pkg/metrics"
	"github.com/anacreonhq/anacreon-backend/pkg/pagination"
)

// ProcessResult is the outcome of processing an order. Insufficient stock is
// a result, not an error: the caller receives success=false and a reason
// naming the first short item, with no mutation applied.
type ProcessResult struct {
	Success bool   `json:"success"`
	Error   string `json:"error,omitempty"`
}

// Service defines the order workflow: creation, total recomputation, stock
// reconciliation, and the terminal transitions.
type Service interface {
	Create(ctx context.Context, input CreateOrderInput) (*models.Order, error)
	Get(ctx context.Context, businessID, orderID uuid.UUID) (*models.Order, error)
	List(ctx context.Context, businessID uuid.UUID, status enums.OrderStatus, page pagination.Params) ([]models.Order, int64, error)
	CalculateTotal(ctx context.Context, businessID, orderID uuid.UUID, actorID *uuid.UUID) (decimal.Decimal, error)
	Process(ctx context.Context, businessID, orderID uuid.UUID, actorID *uuid.UUID) (*ProcessResult, error)
	Complete(ctx context.Context, businessID, orderID uuid.UUID, actorID *uuid.UUID) (*models.Order, error)
	Cancel(ctx context.Context, businessID, orderID uuid.UUID, actorID *uuid.UUID) (*models.Order, error)
	Delete(ctx context.Context, businessID, orderID uuid.UUID, actorID *uuid.UUID) error
}

// OrderLineInput is one requested line on a new order.
type OrderLineInput struct {
	ItemID       uuid.UUID
	Quantity     int
	SellingPrice decimal.Decimal
}

// CreateOrderInput captures a new order with its lines.
type CreateOrderInput struct {
	BusinessID uuid.UUID
	CustomerID *uuid.UUID
	Notes      string
	Lines      []OrderLineInput
	ActorID    *uuid.UUID
}

type service struct {
	client   *db.Client
	repo     Repository
	items    items.Repository
	recorder *audit.Recorder
	metrics  *metrics.WorkflowMetrics
}

// NewService wires an order service with its dependencies.
func NewService(client *db.Client, repo Repository, itemRepo items.Repository, recorder *audit.Recorder, m *metrics.WorkflowMetrics) (Service, error) {
	if client == nil {
		return nil, fmt.Errorf("db client required")
	}
	if repo == nil {
		return nil, fmt.Errorf("order repository required")
	}
	if itemRepo == nil {
		return nil, fmt.Errorf("item repository required")
	}
	if recorder == nil {
		return nil, fmt.Errorf("audit recorder required")
	}
	if m == nil {
		return nil, fmt.Errorf("workflow metrics required")
	}
	return &service{client: client, repo: repo, items: itemRepo, recorder: recorder, metrics: m}, nil
}

// Create persists the order and its lines atomically in pending status and
// computes the total up front. Stock is untouched; reservation happens at
// processing time.
func (s *service) Create(ctx context.Context, input CreateOrderInput) (*models.Order, error) {
	if input.BusinessID == uuid.Nil {
		return nil, errors.New(errors.CodeValidation, "business id is required")
	}
	if len(input.Lines) == 0 {
		return nil, errors.New(errors.CodeValidation, "order requires at least one line")
	}
	for _, line := range input.Lines {
		if line.ItemID == uuid.Nil {
			return nil, errors.New(errors.CodeValidation, "line item id is required")
		}
		if line.Quantity <= 0 {
			return nil, errors.New(errors.CodeValidation, "line quantity must be positive")
		}
		if line.SellingPrice.IsNegative() {
			return nil, errors.New(errors.CodeValidation, "line selling price cannot be negative")
		}
	}

	var order *models.Order
	err := s.client.WithTx(ctx, func(tx *gorm.DB) error {
		itemRepo := s.items.WithTx(tx)
		lines := make([]models.OrderItem, 0, len(input.Lines))
		total := decimal.Zero
		for _, line := range input.Lines {
			if _, err := itemRepo.GetByID(ctx, input.BusinessID, line.ItemID); err != nil {
				if stderrors.Is(err, gorm.ErrRecordNotFound) {
					return errors.New(errors.CodeValidation, fmt.Sprintf("item %s not found in business", line.ItemID))
				}
				return errors.Wrap(errors.CodeInternal, err, "failed to load order line item")
			}
			lines = append(lines, models.OrderItem{
				ItemID:       line.ItemID,
				Quantity:     line.Quantity,
				SellingPrice: line.SellingPrice,
			})
			total = total.Add(line.SellingPrice.Mul(decimal.NewFromInt(int64(line.Quantity))))
		}

		order = &models.Order{
			BusinessID: input.BusinessID,
			Status:     enums.OrderStatusPending,
			PlacedBy:   input.ActorID,
			CustomerID: input.CustomerID,
			Notes:      input.Notes,
			Total:      total,
			Items:      lines,
		}
		if err := s.repo.WithTx(tx).Create(ctx, order); err != nil {
			return errors.Wrap(errors.CodeInternal, err, "failed to create order")
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.recorder.Record(ctx, audit.Entry{
		BusinessID: order.BusinessID,
		UserID:     input.ActorID,
		Action:     enums.AuditActionCreate,
		Model:      audit.ModelOrder,
		ObjectID:   order.ID,
		Details:    audit.OrderDetails(order),
	})
	return order, nil
}

func (s *service) Get(ctx context.Context, businessID, orderID uuid.UUID) (*models.Order, error) {
	order, err := s.repo.GetByID(ctx, businessID, orderID)
	if err != nil {
		if stderrors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errors.New(errors.CodeNotFound, "order not found")
		}
		return nil, errors.Wrap(errors.CodeInternal, err, "failed to load order")
	}
	return order, nil
}

func (s *service) List(ctx context.Context, businessID uuid.UUID, status enums.OrderStatus, page pagination.Params) ([]models.Order, int64, error) {
	if businessID == uuid.Nil {
		return nil, 0, errors.New(errors.CodeValidation, "business id is required")
	}
	if status != "" && !status.IsValid() {
		return nil, 0, errors.New(errors.CodeValidation, fmt.Sprintf("invalid order status %q", status))
	}
	orders, total, err := s.repo.ListByBusiness(ctx, businessID, status, page)
	if err != nil {
		return nil, 0, errors.Wrap(errors.CodeInternal, err, "failed to list orders")
	}
	return orders, total, nil
}

// CalculateTotal recomputes the total as the sum of quantity times selling
// price over the current lines and persists only that field. Idempotent.
func (s *service) CalculateTotal(ctx context.Context, businessID, orderID uuid.UUID, actorID *uuid.UUID) (decimal.Decimal, error) {
	order, err := s.Get(ctx, businessID, orderID)
	if err != nil {
		return decimal.Zero, err
	}

	total := decimal.Zero
	for _, line := range order.Items {
		total = total.Add(line.SellingPrice.Mul(decimal.NewFromInt(int64(line.Quantity))))
	}
	if err := s.repo.UpdateTotal(ctx, orderID, total); err != nil {
		return decimal.Zero, errors.Wrap(errors.CodeInternal, err, "failed to persist order total")
	}
	order.Total = total

	s.recorder.Record(ctx, audit.Entry{
		BusinessID: order.BusinessID,
		UserID:     actorID,
		Action:     enums.AuditActionUpdate,
		Model:      audit.ModelOrder,
		ObjectID:   order.ID,
		Details:    audit.OrderDetails(order),
	})
	return total, nil
}

// Process reconciles a pending order against stock. Phase one checks every
// line; phase two applies guarded decrements; all decrements and the status
// transition commit together or not at all. A guard failure in phase two
// means another writer consumed the stock between check and commit, which
// aborts the whole transaction with a conflict.
func (s *service) Process(ctx context.Context, businessID, orderID uuid.UUID, actorID *uuid.UUID) (*ProcessResult, error) {
	var order *models.Order
	var result *ProcessResult

	err := s.client.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		itemRepo := s.items.WithTx(tx)

		loaded, err := repo.GetByID(ctx, businessID, orderID)
		if err != nil {
			if stderrors.Is(err, gorm.ErrRecordNotFound) {
				return errors.New(errors.CodeNotFound, "order not found")
			}
			return errors.Wrap(errors.CodeInternal, err, "failed to load order")
		}
		if loaded.Status != enums.OrderStatusPending {
			return errors.New(errors.CodeStateConflict, fmt.Sprintf("cannot process order in status %q", loaded.Status))
		}

		for _, line := range loaded.Items {
			if line.Item == nil {
				return errors.New(errors.CodeInternal, "order line missing item")
			}
			if line.Item.Quantity < line.Quantity {
				result = &ProcessResult{
					Success: false,
					Error:   fmt.Sprintf("Item '%s' is out of stock or insufficient quantity.", line.Item.Name),
				}
				return nil
			}
		}

		for _, line := range loaded.Items {
			reserved, err := itemRepo.ReserveQuantity(ctx, line.ItemID, line.Quantity, line.SellingPrice)
			if err != nil {
				return errors.Wrap(errors.CodeInternal, err, "failed to reserve stock")
			}
			if !reserved {
				return errors.New(errors.CodeConflict, fmt.Sprintf("stock for item %s changed during processing", line.ItemID))
			}
			if err := repo.MarkLineReserved(ctx, line.ID, true); err != nil {
				return errors.Wrap(errors.CodeInternal, err, "failed to mark line reserved")
			}
		}

		now := time.Now().UTC()
		transitioned, err := repo.TransitionStatus(ctx, orderID, enums.OrderStatusPending, enums.OrderStatusCompleted, now)
		if err != nil {
			return errors.Wrap(errors.CodeInternal, err, "failed to complete order")
		}
		if !transitioned {
			return errors.New(errors.CodeConflict, "order status changed during processing")
		}

		loaded.Status = enums.OrderStatusCompleted
		loaded.CompletedAt = &now
		for i := range loaded.Items {
			loaded.Items[i].Reserved = true
		}
		order = loaded
		result = &ProcessResult{Success: true}
		return nil
	})
	if err != nil {
		if appErr := errors.As(err); appErr != nil && appErr.Code() == errors.CodeConflict {
			s.metrics.IncOrderProcessed("conflict")
		}
		return nil, err
	}

	if !result.Success {
		s.metrics.IncOrderProcessed("insufficient_stock")
		return result, nil
	}

	s.metrics.IncOrderProcessed("success")
	s.recorder.Record(ctx, audit.Entry{
		BusinessID: order.BusinessID,
		UserID:     actorID,
		Action:     enums.AuditActionUpdate,
		Model:      audit.ModelOrder,
		ObjectID:   order.ID,
		Details:    audit.OrderDetails(order),
	})
	return result, nil
}

// Complete is the administrative override: it marks a pending order completed
// without touching inventory, for stock reconciled out-of-band.
func (s *service) Complete(ctx context.Context, businessID, orderID uuid.UUID, actorID *uuid.UUID) (*models.Order, error) {
	order, err := s.Get(ctx, businessID, orderID)
	if err != nil {
		return nil, err
	}
	if order.Status == enums.OrderStatusCompleted {
		return order, nil
	}
	if order.Status != enums.OrderStatusPending {
		return nil, errors.New(errors.CodeStateConflict, fmt.Sprintf("cannot complete order in status %q", order.Status))
	}

	now := time.Now().UTC()
	transitioned, err := s.repo.TransitionStatus(ctx, orderID, enums.OrderStatusPending, enums.OrderStatusCompleted, now)
	if err != nil {
		return nil, errors.Wrap(errors.CodeInternal, err, "failed to complete order")
	}
	if !transitioned {
		return nil, errors.New(errors.CodeConflict, "order status changed during completion")
	}
	order.Status = enums.OrderStatusCompleted
	order.CompletedAt = &now

	s.recorder.Record(ctx, audit.Entry{
		BusinessID: order.BusinessID,
		UserID:     actorID,
		Action:     enums.AuditActionUpdate,
		Model:      audit.ModelOrder,
		ObjectID:   order.ID,
		Details:    audit.OrderDetails(order),
	})
	return order, nil
}

// Cancel transitions the order to cancelled and restocks reserved lines.
// Cancelling an already-cancelled order is a no-op. Only lines that were
// actually reserved during processing return units to stock; a pending order
// never reserved anything, so cancelling it restocks nothing.
func (s *service) Cancel(ctx context.Context, businessID, orderID uuid.UUID, actorID *uuid.UUID) (*models.Order, error) {
	var order *models.Order
	noop := false

	err := s.client.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		itemRepo := s.items.WithTx(tx)

		loaded, err := repo.GetByID(ctx, businessID, orderID)
		if err != nil {
			if stderrors.Is(err, gorm.ErrRecordNotFound) {
				return errors.New(errors.CodeNotFound, "order not found")
			}
			return errors.Wrap(errors.CodeInternal, err, "failed to load order")
		}
		if loaded.Status == enums.OrderStatusCancelled {
			order = loaded
			noop = true
			return nil
		}

		now := time.Now().UTC()
		transitioned, err := repo.TransitionStatus(ctx, orderID, loaded.Status, enums.OrderStatusCancelled, now)
		if err != nil {
			return errors.Wrap(errors.CodeInternal, err, "failed to cancel order")
		}
		if !transitioned {
			return errors.New(errors.CodeConflict, "order status changed during cancellation")
		}

		for _, line := range loaded.Items {
			if !line.Reserved {
				continue
			}
			if err := itemRepo.ReleaseQuantity(ctx, line.ItemID, line.Quantity); err != nil {
				return errors.Wrap(errors.CodeInternal, err, "failed to restock cancelled line")
			}
			if err := repo.MarkLineReserved(ctx, line.ID, false); err != nil {
				return errors.Wrap(errors.CodeInternal, err, "failed to clear line reservation")
			}
		}

		loaded.Status = enums.OrderStatusCancelled
		loaded.CancelledAt = &now
		for i := range loaded.Items {
			loaded.Items[i].Reserved = false
		}
		order = loaded
		return nil
	})
	if err != nil {
		return nil, err
	}
	if noop {
		return order, nil
	}

	s.recorder.Record(ctx, audit.Entry{
		BusinessID: order.BusinessID,
		UserID:     actorID,
		Action:     enums.AuditActionUpdate,
		Model:      audit.ModelOrder,
		ObjectID:   order.ID,
		Details:    audit.OrderDetails(order),
	})
	return order, nil
}

// Delete removes the order and logs the pre-deletion snapshot.
func (s *service) Delete(ctx context.Context, businessID, orderID uuid.UUID, actorID *uuid.UUID) error {
	order, err := s.Get(ctx, businessID, orderID)
	if err != nil {
		return err
	}
	if err := s.client.WithTx(ctx, func(tx *gorm.DB) error {
		return s.repo.WithTx(tx).Delete(ctx, businessID, orderID)
	}); err != nil {
		return errors.Wrap(errors.CodeInternal, err, "failed to delete order")
	}

	s.recorder.Record(ctx, audit.Entry{
		BusinessID: businessID,
		UserID:     actorID,
		Action:     enums.AuditActionDelete,
		Model:      audit.ModelOrder,
		ObjectID:   order.ID,
		Details:    audit.OrderDetails(order),
	})
	return nil
}
