package stock

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
	pkgerrors "github.com/anacreonhq/anacreon-backend/pkg/errors"
	"github.com/anacreonhq/anacreon-backend/pkg/logger"
	"github.com/anacreonhq/anacreon-backend/pkg/metrics"
	"github.com/anacreonhq/anacreon-backend/pkg/pagination"
)

type stockEnv struct {
	client *db.Client
	svc    Service
}

func newStockEnv(t *testing.T) *stockEnv {
	t.Helper()

	dsn := "file:stock_" + uuid.NewString() + "?mode=memory&cache=shared"
	client, err := db.New(context.Background(), config.DBConfig{DSN: dsn, Driver: "sqlite"}, nil)
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	t.Cleanup(func() { _ = client.Close() })

	gdb := client.DB()
	if err := gdb.AutoMigrate(
		&models.Business{}, &models.Item{}, &models.ItemImage{},
		&models.Stock{}, &models.AuditLog{},
	); err != nil {
		t.Fatalf("migrate: %v", err)
	}

	logg := logger.New(logger.Options{ServiceName: "test"})
	recorder, err := audit.NewRecorder(audit.NewRepository(gdb), logg, metrics.NewWorkflowMetrics(prometheus.NewRegistry()))
	if err != nil {
		t.Fatalf("new recorder: %v", err)
	}
	svc, err := NewService(client, NewRepository(gdb), items.NewRepository(gdb), recorder)
	if err != nil {
		t.Fatalf("new service: %v", err)
	}
	return &stockEnv{client: client, svc: svc}
}

func (e *stockEnv) seedItem(t *testing.T) (uuid.UUID, *models.Item) {
	t.Helper()
	business := models.Business{Name: "Acme Supply", IsActive: true}
	if err := e.client.DB().Create(&business).Error; err != nil {
		t.Fatalf("seed business: %v", err)
	}
	item := models.Item{
		BusinessID: business.ID,
		Name:       "Widget",
		SKU:        "WID-200",
		Quantity:   1,
	}
	if err := e.client.DB().Create(&item).Error; err != nil {
		t.Fatalf("seed item: %v", err)
	}
	return business.ID, &item
}

func TestRecordSnapshotSyncsItem(t *testing.T) {
	t.Parallel()
	env := newStockEnv(t)
	businessID, item := env.seedItem(t)

	cost := decimal.NewFromFloat(2.50)
	selling := decimal.NewFromFloat(5.00)
	snapshot, err := env.svc.Record(context.Background(), RecordStockInput{
		BusinessID:   businessID,
		ItemID:       item.ID,
		Quantity:     40,
		CostPrice:    cost,
		SellingPrice: selling,
	})
	if err != nil {
		t.Fatalf("record stock: %v", err)
	}
	if snapshot.Quantity != 40 {
		t.Fatalf("expected snapshot quantity 40, got %d", snapshot.Quantity)
	}

	var reloaded models.Item
	if err := env.client.DB().First(&reloaded, "id = ?", item.ID).Error; err != nil {
		t.Fatalf("reload item: %v", err)
	}
	if reloaded.Quantity != 40 {
		t.Fatalf("expected item quantity synced to 40, got %d", reloaded.Quantity)
	}
	if !reloaded.CostPrice.Equal(cost) || !reloaded.LastSellingPrice.Equal(selling) {
		t.Fatalf("expected item prices synced, got cost=%s selling=%s", reloaded.CostPrice, reloaded.LastSellingPrice)
	}
}

func TestRecordAuditsWithItemName(t *testing.T) {
	t.Parallel()
	env := newStockEnv(t)
	businessID, item := env.seedItem(t)

	snapshot, err := env.svc.Record(context.Background(), RecordStockInput{
		BusinessID:   businessID,
		ItemID:       item.ID,
		Quantity:     7,
		CostPrice:    decimal.NewFromFloat(1.25),
		SellingPrice: decimal.NewFromFloat(2.75),
	})
	if err != nil {
		t.Fatalf("record stock: %v", err)
	}

	var row models.AuditLog
	if err := env.client.DB().Where("model = ? AND object_id = ?", audit.ModelStock, snapshot.ID).First(&row).Error; err != nil {
		t.Fatalf("load audit row: %v", err)
	}
	if row.Details["item"] != "Widget" {
		t.Fatalf("expected item name in details, got %v", row.Details["item"])
	}
	if row.Details["cost_price"] != "1.25" || row.Details["selling_price"] != "2.75" {
		t.Fatalf("expected monetary values as strings, got %v", row.Details)
	}
}

func TestCurrentReturnsLatestSnapshot(t *testing.T) {
	t.Parallel()
	env := newStockEnv(t)
	businessID, item := env.seedItem(t)

	for _, qty := range []int{10, 20, 30} {
		if _, err := env.svc.Record(context.Background(), RecordStockInput{
			BusinessID:   businessID,
			ItemID:       item.ID,
			Quantity:     qty,
			CostPrice:    decimal.NewFromInt(1),
			SellingPrice: decimal.NewFromInt(2),
		}); err != nil {
			t.Fatalf("record stock qty=%d: %v", qty, err)
		}
	}

	current, err := env.svc.Current(context.Background(), businessID, item.ID)
	if err != nil {
		t.Fatalf("current stock: %v", err)
	}
	if current.Quantity != 30 {
		t.Fatalf("expected latest snapshot quantity 30, got %d", current.Quantity)
	}

	snapshots, total, err := env.svc.ListByItem(context.Background(), businessID, item.ID, pagination.Params{Limit: 10})
	if err != nil {
		t.Fatalf("list snapshots: %v", err)
	}
	if total != 3 || len(snapshots) != 3 {
		t.Fatalf("expected 3 snapshots, got total=%d len=%d", total, len(snapshots))
	}
}

func TestCurrentWithoutSnapshotsNotFound(t *testing.T) {
	t.Parallel()
	env := newStockEnv(t)
	businessID, item := env.seedItem(t)

	_, err := env.svc.Current(context.Background(), businessID, item.ID)
	if appErr := pkgerrors.As(err); appErr == nil || appErr.Code() != pkgerrors.CodeNotFound {
		t.Fatalf("expected not found without snapshots, got %v", err)
	}
}

func TestUpdateSnapshotResyncsItem(t *testing.T) {
	t.Parallel()
	env := newStockEnv(t)
	businessID, item := env.seedItem(t)

	snapshot, err := env.svc.Record(context.Background(), RecordStockInput{
		BusinessID:   businessID,
		ItemID:       item.ID,
		Quantity:     15,
		CostPrice:    decimal.NewFromInt(1),
		SellingPrice: decimal.NewFromInt(2),
	})
	if err != nil {
		t.Fatalf("record stock: %v", err)
	}

	newSelling := decimal.NewFromFloat(3.50)
	updated, err := env.svc.Update(context.Background(), UpdateStockInput{
		BusinessID:   businessID,
		SnapshotID:   snapshot.ID,
		Quantity:     12,
		SellingPrice: &newSelling,
	})
	if err != nil {
		t.Fatalf("update stock: %v", err)
	}
	if updated.Quantity != 12 || !updated.SellingPrice.Equal(newSelling) {
		t.Fatalf("unexpected snapshot after update: qty=%d selling=%s", updated.Quantity, updated.SellingPrice)
	}

	var reloaded models.Item
	if err := env.client.DB().First(&reloaded, "id = ?", item.ID).Error; err != nil {
		t.Fatalf("reload item: %v", err)
	}
	if reloaded.Quantity != 12 || !reloaded.LastSellingPrice.Equal(newSelling) {
		t.Fatalf("expected item resynced, got qty=%d selling=%s", reloaded.Quantity, reloaded.LastSellingPrice)
	}
}

func TestDeleteSnapshotAuditsPriorValues(t *testing.T) {
	t.Parallel()
	env := newStockEnv(t)
	businessID, item := env.seedItem(t)

	snapshot, err := env.svc.Record(context.Background(), RecordStockInput{
		BusinessID:   businessID,
		ItemID:       item.ID,
		Quantity:     9,
		CostPrice:    decimal.NewFromInt(1),
		SellingPrice: decimal.NewFromInt(2),
	})
	if err != nil {
		t.Fatalf("record stock: %v", err)
	}
	if err := env.svc.Delete(context.Background(), businessID, snapshot.ID, nil); err != nil {
		t.Fatalf("delete snapshot: %v", err)
	}

	var rows []models.AuditLog
	if err := env.client.DB().
		Where("model = ? AND object_id = ? AND action = ?", audit.ModelStock, snapshot.ID, "delete").
		Find(&rows).Error; err != nil {
		t.Fatalf("load audit rows: %v", err)
	}
	if len(rows) != 1 {
		t.Fatalf("expected one delete audit row, got %d", len(rows))
	}
	// Details preserved as-recorded, even though the row is gone.
	if got, ok := rows[0].Details["quantity"].(float64); !ok || int(got) != 9 {
		t.Fatalf("expected pre-deletion quantity 9 in details, got %v", rows[0].Details["quantity"])
	}
}
