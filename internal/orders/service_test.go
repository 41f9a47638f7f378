package orders

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/shopspring/decimal"

	"github.com/anacreonhq/anacreon-backend/internal/audit"
	"github.com/anacreonhq/anacreon-backend/internal/items"
	"github.com/anacreonhq/anacreon-backend/pkg/config"
	"github.com/anacreonhq/anacreon-backend/pkg/db"
	"github.com/anacreonhq/anacreon-backend/pkg/db/models"
	"github.com/anacreonhq/anacreon-backend/pkg/enums"
	pkgerrors "github.com/anacreonhq/anacreon-backend/pkg/errors"
	"github.com/anacreonhq/anacreon-backend/pkg/logger"
	"github.com/anacreonhq/anacreon-backend/pkg/metrics"
)

type orderEnv struct {
	client *db.Client
	svc    Service
	items  items.Repository
}

func newOrderEnv(t *testing.T) *orderEnv {
	t.Helper()

	dsn := "file:orders_" + uuid.NewString() + "?mode=memory&cache=shared"
	client, err := db.New(context.Background(), config.DBConfig{DSN: dsn, Driver: "sqlite"}, nil)
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	t.Cleanup(func() { _ = client.Close() })

	gdb := client.DB()
	if err := gdb.AutoMigrate(
		&models.Business{}, &models.Item{}, &models.ItemImage{},
		&models.Order{}, &models.OrderItem{}, &models.AuditLog{},
	); err != nil {
		t.Fatalf("migrate: %v", err)
	}

	logg := logger.New(logger.Options{ServiceName: "test"})
	workflowMetrics := metrics.NewWorkflowMetrics(prometheus.NewRegistry())
	recorder, err := audit.NewRecorder(audit.NewRepository(gdb), logg, workflowMetrics)
	if err != nil {
		t.Fatalf("new recorder: %v", err)
	}

	itemRepo := items.NewRepository(gdb)
	svc, err := NewService(client, NewRepository(gdb), itemRepo, recorder, workflowMetrics)
	if err != nil {
		t.Fatalf("new service: %v", err)
	}

	return &orderEnv{client: client, svc: svc, items: itemRepo}
}

func (e *orderEnv) seedBusiness(t *testing.T) uuid.UUID {
	t.Helper()
	business := models.Business{Name: "Acme Supply", IsActive: true}
	if err := e.client.DB().Create(&business).Error; err != nil {
		t.Fatalf("seed business: %v", err)
	}
	return business.ID
}

func (e *orderEnv) seedItem(t *testing.T, businessID uuid.UUID, name, sku string, quantity int) *models.Item {
	t.Helper()
	item := models.Item{
		BusinessID:       businessID,
		Name:             name,
		SKU:              sku,
		Quantity:         quantity,
		CostPrice:        decimal.NewFromFloat(2.00),
		LastSellingPrice: decimal.NewFromFloat(4.00),
	}
	if err := e.client.DB().Create(&item).Error; err != nil {
		t.Fatalf("seed item %s: %v", name, err)
	}
	return &item
}

func (e *orderEnv) reloadItem(t *testing.T, itemID uuid.UUID) *models.Item {
	t.Helper()
	var item models.Item
	if err := e.client.DB().First(&item, "id = ?", itemID).Error; err != nil {
		t.Fatalf("reload item: %v", err)
	}
	return &item
}

func (e *orderEnv) countAuditRows(t *testing.T, model string, objectID uuid.UUID) int64 {
	t.Helper()
	var total int64
	err := e.client.DB().
		Model(&models.AuditLog{}).
		Where("model = ? AND object_id = ?", model, objectID).
		Count(&total).Error
	if err != nil {
		t.Fatalf("count audit rows: %v", err)
	}
	return total
}

func TestCreateComputesTotalAndAudits(t *testing.T) {
	t.Parallel()
	env := newOrderEnv(t)
	businessID := env.seedBusiness(t)
	widget := env.seedItem(t, businessID, "Widget", "WID-001", 10)
	gadget := env.seedItem(t, businessID, "Gadget", "GAD-001", 5)

	order, err := env.svc.Create(context.Background(), CreateOrderInput{
		BusinessID: businessID,
		Lines: []OrderLineInput{
			{ItemID: widget.ID, Quantity: 2, SellingPrice: decimal.NewFromFloat(3.50)},
			{ItemID: gadget.ID, Quantity: 1, SellingPrice: decimal.NewFromFloat(10.00)},
		},
	})
	if err != nil {
		t.Fatalf("create order: %v", err)
	}
	if order.Status != enums.OrderStatusPending {
		t.Fatalf("expected pending status, got %s", order.Status)
	}
	if want := decimal.NewFromFloat(17.00); !order.Total.Equal(want) {
		t.Fatalf("expected total %s, got %s", want, order.Total)
	}
	if got := env.countAuditRows(t, audit.ModelOrder, order.ID); got != 1 {
		t.Fatalf("expected 1 audit row after create, got %d", got)
	}
}

func TestCreateRejectsEmptyAndUnknownLines(t *testing.T) {
	t.Parallel()
	env := newOrderEnv(t)
	businessID := env.seedBusiness(t)

	_, err := env.svc.Create(context.Background(), CreateOrderInput{BusinessID: businessID})
	if appErr := pkgerrors.As(err); appErr == nil || appErr.Code() != pkgerrors.CodeValidation {
		t.Fatalf("expected validation error for empty lines, got %v", err)
	}

	_, err = env.svc.Create(context.Background(), CreateOrderInput{
		BusinessID: businessID,
		Lines:      []OrderLineInput{{ItemID: uuid.New(), Quantity: 1, SellingPrice: decimal.NewFromInt(1)}},
	})
	if appErr := pkgerrors.As(err); appErr == nil || appErr.Code() != pkgerrors.CodeValidation {
		t.Fatalf("expected validation error for unknown item, got %v", err)
	}
}

func TestProcessDecrementsStockAndCompletes(t *testing.T) {
	t.Parallel()
	env := newOrderEnv(t)
	businessID := env.seedBusiness(t)
	widget := env.seedItem(t, businessID, "Widget", "WID-002", 10)

	price := decimal.NewFromFloat(6.25)
	order, err := env.svc.Create(context.Background(), CreateOrderInput{
		BusinessID: businessID,
		Lines:      []OrderLineInput{{ItemID: widget.ID, Quantity: 3, SellingPrice: price}},
	})
	if err != nil {
		t.Fatalf("create order: %v", err)
	}

	result, err := env.svc.Process(context.Background(), businessID, order.ID, nil)
	if err != nil {
		t.Fatalf("process order: %v", err)
	}
	if !result.Success {
		t.Fatalf("expected success, got error %q", result.Error)
	}

	reloaded := env.reloadItem(t, widget.ID)
	if reloaded.Quantity != 7 {
		t.Fatalf("expected quantity 7, got %d", reloaded.Quantity)
	}
	if reloaded.Weight != 3 {
		t.Fatalf("expected weight 3, got %d", reloaded.Weight)
	}
	if !reloaded.LastSellingPrice.Equal(price) {
		t.Fatalf("expected last selling price %s, got %s", price, reloaded.LastSellingPrice)
	}

	processed, err := env.svc.Get(context.Background(), businessID, order.ID)
	if err != nil {
		t.Fatalf("reload order: %v", err)
	}
	if processed.Status != enums.OrderStatusCompleted {
		t.Fatalf("expected completed status, got %s", processed.Status)
	}
	if processed.CompletedAt == nil {
		t.Fatal("expected completed_at to be set")
	}
	for _, line := range processed.Items {
		if !line.Reserved {
			t.Fatal("expected line to be marked reserved")
		}
	}
	if got := env.countAuditRows(t, audit.ModelOrder, order.ID); got != 2 {
		t.Fatalf("expected 2 audit rows after process, got %d", got)
	}
}

func TestProcessInsufficientStockLeavesStateUntouched(t *testing.T) {
	t.Parallel()
	env := newOrderEnv(t)
	businessID := env.seedBusiness(t)
	widget := env.seedItem(t, businessID, "Widget", "WID-003", 2)

	order, err := env.svc.Create(context.Background(), CreateOrderInput{
		BusinessID: businessID,
		Lines:      []OrderLineInput{{ItemID: widget.ID, Quantity: 5, SellingPrice: decimal.NewFromInt(1)}},
	})
	if err != nil {
		t.Fatalf("create order: %v", err)
	}

	result, err := env.svc.Process(context.Background(), businessID, order.ID, nil)
	if err != nil {
		t.Fatalf("process order: %v", err)
	}
	if result.Success {
		t.Fatal("expected failure result")
	}
	if want := "Item 'Widget' is out of stock or insufficient quantity."; result.Error != want {
		t.Fatalf("expected error %q, got %q", want, result.Error)
	}

	if reloaded := env.reloadItem(t, widget.ID); reloaded.Quantity != 2 || reloaded.Weight != 0 {
		t.Fatalf("expected stock untouched, got quantity=%d weight=%d", reloaded.Quantity, reloaded.Weight)
	}
	pending, err := env.svc.Get(context.Background(), businessID, order.ID)
	if err != nil {
		t.Fatalf("reload order: %v", err)
	}
	if pending.Status != enums.OrderStatusPending {
		t.Fatalf("expected order still pending, got %s", pending.Status)
	}
}

func TestProcessAllOrNothing(t *testing.T) {
	t.Parallel()
	env := newOrderEnv(t)
	businessID := env.seedBusiness(t)
	plenty := env.seedItem(t, businessID, "Plenty", "PLN-001", 100)
	scarce := env.seedItem(t, businessID, "Scarce", "SCR-001", 1)

	order, err := env.svc.Create(context.Background(), CreateOrderInput{
		BusinessID: businessID,
		Lines: []OrderLineInput{
			{ItemID: plenty.ID, Quantity: 10, SellingPrice: decimal.NewFromInt(2)},
			{ItemID: scarce.ID, Quantity: 5, SellingPrice: decimal.NewFromInt(3)},
		},
	})
	if err != nil {
		t.Fatalf("create order: %v", err)
	}

	result, err := env.svc.Process(context.Background(), businessID, order.ID, nil)
	if err != nil {
		t.Fatalf("process order: %v", err)
	}
	if result.Success {
		t.Fatal("expected failure result")
	}

	if reloaded := env.reloadItem(t, plenty.ID); reloaded.Quantity != 100 {
		t.Fatalf("expected fulfillable line untouched, got quantity %d", reloaded.Quantity)
	}
	if reloaded := env.reloadItem(t, scarce.ID); reloaded.Quantity != 1 {
		t.Fatalf("expected short line untouched, got quantity %d", reloaded.Quantity)
	}
}

func TestProcessNonPendingOrderConflicts(t *testing.T) {
	t.Parallel()
	env := newOrderEnv(t)
	businessID := env.seedBusiness(t)
	widget := env.seedItem(t, businessID, "Widget", "WID-004", 10)

	order, err := env.svc.Create(context.Background(), CreateOrderInput{
		BusinessID: businessID,
		Lines:      []OrderLineInput{{ItemID: widget.ID, Quantity: 1, SellingPrice: decimal.NewFromInt(1)}},
	})
	if err != nil {
		t.Fatalf("create order: %v", err)
	}
	if _, err := env.svc.Process(context.Background(), businessID, order.ID, nil); err != nil {
		t.Fatalf("first process: %v", err)
	}

	_, err = env.svc.Process(context.Background(), businessID, order.ID, nil)
	if appErr := pkgerrors.As(err); appErr == nil || appErr.Code() != pkgerrors.CodeStateConflict {
		t.Fatalf("expected state conflict, got %v", err)
	}
	if reloaded := env.reloadItem(t, widget.ID); reloaded.Quantity != 9 {
		t.Fatalf("expected single decrement, got quantity %d", reloaded.Quantity)
	}
}

func TestCalculateTotalIsIdempotent(t *testing.T) {
	t.Parallel()
	env := newOrderEnv(t)
	businessID := env.seedBusiness(t)
	widget := env.seedItem(t, businessID, "Widget", "WID-005", 10)

	order, err := env.svc.Create(context.Background(), CreateOrderInput{
		BusinessID: businessID,
		Lines:      []OrderLineInput{{ItemID: widget.ID, Quantity: 4, SellingPrice: decimal.NewFromFloat(2.25)}},
	})
	if err != nil {
		t.Fatalf("create order: %v", err)
	}

	want := decimal.NewFromFloat(9.00)
	for i := 0; i < 2; i++ {
		total, err := env.svc.CalculateTotal(context.Background(), businessID, order.ID, nil)
		if err != nil {
			t.Fatalf("calculate total (pass %d): %v", i+1, err)
		}
		if !total.Equal(want) {
			t.Fatalf("expected total %s, got %s (pass %d)", want, total, i+1)
		}
	}
}

func TestCancelPendingRestocksNothing(t *testing.T) {
	t.Parallel()
	env := newOrderEnv(t)
	businessID := env.seedBusiness(t)
	widget := env.seedItem(t, businessID, "Widget", "WID-006", 10)

	order, err := env.svc.Create(context.Background(), CreateOrderInput{
		BusinessID: businessID,
		Lines:      []OrderLineInput{{ItemID: widget.ID, Quantity: 3, SellingPrice: decimal.NewFromInt(1)}},
	})
	if err != nil {
		t.Fatalf("create order: %v", err)
	}

	cancelled, err := env.svc.Cancel(context.Background(), businessID, order.ID, nil)
	if err != nil {
		t.Fatalf("cancel order: %v", err)
	}
	if cancelled.Status != enums.OrderStatusCancelled {
		t.Fatalf("expected cancelled status, got %s", cancelled.Status)
	}
	if cancelled.CancelledAt == nil {
		t.Fatal("expected cancelled_at to be set")
	}
	if reloaded := env.reloadItem(t, widget.ID); reloaded.Quantity != 10 {
		t.Fatalf("pending order never reserved stock, got quantity %d", reloaded.Quantity)
	}
}

func TestCancelProcessedOrderRestoresStock(t *testing.T) {
	t.Parallel()
	env := newOrderEnv(t)
	businessID := env.seedBusiness(t)
	widget := env.seedItem(t, businessID, "Widget", "WID-007", 10)

	order, err := env.svc.Create(context.Background(), CreateOrderInput{
		BusinessID: businessID,
		Lines:      []OrderLineInput{{ItemID: widget.ID, Quantity: 4, SellingPrice: decimal.NewFromInt(2)}},
	})
	if err != nil {
		t.Fatalf("create order: %v", err)
	}
	if _, err := env.svc.Process(context.Background(), businessID, order.ID, nil); err != nil {
		t.Fatalf("process order: %v", err)
	}
	if reloaded := env.reloadItem(t, widget.ID); reloaded.Quantity != 6 {
		t.Fatalf("expected quantity 6 after process, got %d", reloaded.Quantity)
	}

	cancelled, err := env.svc.Cancel(context.Background(), businessID, order.ID, nil)
	if err != nil {
		t.Fatalf("cancel order: %v", err)
	}
	if cancelled.Status != enums.OrderStatusCancelled {
		t.Fatalf("expected cancelled status, got %s", cancelled.Status)
	}

	reloaded := env.reloadItem(t, widget.ID)
	if reloaded.Quantity != 10 {
		t.Fatalf("expected stock restored to 10, got %d", reloaded.Quantity)
	}
	if reloaded.Weight != 0 {
		t.Fatalf("expected weight restored to 0, got %d", reloaded.Weight)
	}

	final, err := env.svc.Get(context.Background(), businessID, order.ID)
	if err != nil {
		t.Fatalf("reload order: %v", err)
	}
	for _, line := range final.Items {
		if line.Reserved {
			t.Fatal("expected reservation flag cleared after restock")
		}
	}
}

func TestCancelCancelledOrderIsNoop(t *testing.T) {
	t.Parallel()
	env := newOrderEnv(t)
	businessID := env.seedBusiness(t)
	widget := env.seedItem(t, businessID, "Widget", "WID-008", 10)

	order, err := env.svc.Create(context.Background(), CreateOrderInput{
		BusinessID: businessID,
		Lines:      []OrderLineInput{{ItemID: widget.ID, Quantity: 2, SellingPrice: decimal.NewFromInt(1)}},
	})
	if err != nil {
		t.Fatalf("create order: %v", err)
	}
	if _, err := env.svc.Process(context.Background(), businessID, order.ID, nil); err != nil {
		t.Fatalf("process order: %v", err)
	}
	if _, err := env.svc.Cancel(context.Background(), businessID, order.ID, nil); err != nil {
		t.Fatalf("first cancel: %v", err)
	}
	auditRows := env.countAuditRows(t, audit.ModelOrder, order.ID)

	again, err := env.svc.Cancel(context.Background(), businessID, order.ID, nil)
	if err != nil {
		t.Fatalf("second cancel: %v", err)
	}
	if again.Status != enums.OrderStatusCancelled {
		t.Fatalf("expected cancelled status, got %s", again.Status)
	}
	if reloaded := env.reloadItem(t, widget.ID); reloaded.Quantity != 10 {
		t.Fatalf("expected no double restock, got quantity %d", reloaded.Quantity)
	}
	if got := env.countAuditRows(t, audit.ModelOrder, order.ID); got != auditRows {
		t.Fatalf("no-op cancel must not audit: had %d rows, now %d", auditRows, got)
	}
}

func TestCompleteSkipsInventory(t *testing.T) {
	t.Parallel()
	env := newOrderEnv(t)
	businessID := env.seedBusiness(t)
	widget := env.seedItem(t, businessID, "Widget", "WID-009", 10)

	order, err := env.svc.Create(context.Background(), CreateOrderInput{
		BusinessID: businessID,
		Lines:      []OrderLineInput{{ItemID: widget.ID, Quantity: 2, SellingPrice: decimal.NewFromInt(1)}},
	})
	if err != nil {
		t.Fatalf("create order: %v", err)
	}

	completed, err := env.svc.Complete(context.Background(), businessID, order.ID, nil)
	if err != nil {
		t.Fatalf("complete order: %v", err)
	}
	if completed.Status != enums.OrderStatusCompleted {
		t.Fatalf("expected completed status, got %s", completed.Status)
	}
	if reloaded := env.reloadItem(t, widget.ID); reloaded.Quantity != 10 {
		t.Fatalf("complete must not touch stock, got quantity %d", reloaded.Quantity)
	}

	// Completing again is a no-op; completing a cancelled order conflicts.
	if _, err := env.svc.Complete(context.Background(), businessID, order.ID, nil); err != nil {
		t.Fatalf("repeat complete: %v", err)
	}
	if _, err := env.svc.Cancel(context.Background(), businessID, order.ID, nil); err != nil {
		t.Fatalf("cancel order: %v", err)
	}
	_, err = env.svc.Complete(context.Background(), businessID, order.ID, nil)
	if appErr := pkgerrors.As(err); appErr == nil || appErr.Code() != pkgerrors.CodeStateConflict {
		t.Fatalf("expected state conflict completing cancelled order, got %v", err)
	}
}

func TestDeleteRemovesOrderAndLines(t *testing.T) {
	t.Parallel()
	env := newOrderEnv(t)
	businessID := env.seedBusiness(t)
	widget := env.seedItem(t, businessID, "Widget", "WID-010", 10)

	order, err := env.svc.Create(context.Background(), CreateOrderInput{
		BusinessID: businessID,
		Lines:      []OrderLineInput{{ItemID: widget.ID, Quantity: 1, SellingPrice: decimal.NewFromInt(1)}},
	})
	if err != nil {
		t.Fatalf("create order: %v", err)
	}

	if err := env.svc.Delete(context.Background(), businessID, order.ID, nil); err != nil {
		t.Fatalf("delete order: %v", err)
	}
	_, err = env.svc.Get(context.Background(), businessID, order.ID)
	if appErr := pkgerrors.As(err); appErr == nil || appErr.Code() != pkgerrors.CodeNotFound {
		t.Fatalf("expected not found after delete, got %v", err)
	}

	var lines int64
	if err := env.client.DB().Model(&models.OrderItem{}).Where("order_id = ?", order.ID).Count(&lines).Error; err != nil {
		t.Fatalf("count lines: %v", err)
	}
	if lines != 0 {
		t.Fatalf("expected order lines removed, got %d", lines)
	}
}
