package items

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/shopspring/decimal"

	"github.com/anacreonhq/anacreon-backend/internal/audit"
	"github.com/anacreonhq/anacreon-backend/pkg/config"
	"github.com/anacreonhq/anacreon-backend/pkg/db"
	"github.com/anacreonhq/anacreon-backend/pkg/db/models"
	pkgerrors "github.com/anacreonhq/anacreon-backend/pkg/errors"
	"github.com/anacreonhq/anacreon-backend/pkg/logger"
	"github.com/anacreonhq/anacreon-backend/pkg/metrics"
	"github.com/anacreonhq/anacreon-backend/pkg/pagination"
	"github.com/anacreonhq/anacreon-backend/pkg/types"
)

type itemEnv struct {
	client *db.Client
	svc    Service
}

func newItemEnv(t *testing.T) *itemEnv {
	t.Helper()

	dsn := "file:items_" + uuid.NewString() + "?mode=memory&cache=shared"
	client, err := db.New(context.Background(), config.DBConfig{DSN: dsn, Driver: "sqlite"}, nil)
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	t.Cleanup(func() { _ = client.Close() })

	gdb := client.DB()
	if err := gdb.AutoMigrate(
		&models.Business{}, &models.Item{}, &models.ItemImage{}, &models.AuditLog{},
	); err != nil {
		t.Fatalf("migrate: %v", err)
	}

	logg := logger.New(logger.Options{ServiceName: "test"})
	recorder, err := audit.NewRecorder(audit.NewRepository(gdb), logg, metrics.NewWorkflowMetrics(prometheus.NewRegistry()))
	if err != nil {
		t.Fatalf("new recorder: %v", err)
	}
	svc, err := NewService(client, NewRepository(gdb), recorder)
	if err != nil {
		t.Fatalf("new service: %v", err)
	}
	return &itemEnv{client: client, svc: svc}
}

func (e *itemEnv) seedBusiness(t *testing.T) uuid.UUID {
	t.Helper()
	business := models.Business{Name: "Acme Supply", IsActive: true}
	if err := e.client.DB().Create(&business).Error; err != nil {
		t.Fatalf("seed business: %v", err)
	}
	return business.ID
}

func TestCreateItemAndGetBySKU(t *testing.T) {
	t.Parallel()
	env := newItemEnv(t)
	businessID := env.seedBusiness(t)

	created, err := env.svc.Create(context.Background(), CreateItemInput{
		BusinessID:   businessID,
		Name:         "Widget",
		SKU:          "WID-100",
		Quantity:     5,
		CostPrice:    decimal.NewFromFloat(1.50),
		SellingPrice: decimal.NewFromFloat(3.00),
	})
	if err != nil {
		t.Fatalf("create item: %v", err)
	}

	found, err := env.svc.GetBySKU(context.Background(), businessID, "WID-100")
	if err != nil {
		t.Fatalf("get by sku: %v", err)
	}
	if found.ID != created.ID {
		t.Fatalf("expected item %s, got %s", created.ID, found.ID)
	}
	if found.Quantity != 5 {
		t.Fatalf("expected quantity 5, got %d", found.Quantity)
	}
}

func TestCreateItemDuplicateSKUConflicts(t *testing.T) {
	t.Parallel()
	env := newItemEnv(t)
	businessID := env.seedBusiness(t)

	input := CreateItemInput{BusinessID: businessID, Name: "Widget", SKU: "WID-101"}
	if _, err := env.svc.Create(context.Background(), input); err != nil {
		t.Fatalf("create item: %v", err)
	}
	_, err := env.svc.Create(context.Background(), input)
	if appErr := pkgerrors.As(err); appErr == nil || appErr.Code() != pkgerrors.CodeConflict {
		t.Fatalf("expected conflict for duplicate sku, got %v", err)
	}
}

func TestPropertyLifecycle(t *testing.T) {
	t.Parallel()
	env := newItemEnv(t)
	businessID := env.seedBusiness(t)

	item, err := env.svc.Create(context.Background(), CreateItemInput{
		BusinessID: businessID, Name: "Widget", SKU: "WID-102",
	})
	if err != nil {
		t.Fatalf("create item: %v", err)
	}

	if _, err := env.svc.SetProperty(context.Background(), businessID, item.ID, "color", "blue", nil); err != nil {
		t.Fatalf("set property: %v", err)
	}
	got, err := env.svc.GetProperty(context.Background(), businessID, item.ID, "color", nil)
	if err != nil {
		t.Fatalf("get property: %v", err)
	}
	if got != "blue" {
		t.Fatalf("expected blue, got %v", got)
	}

	merged, err := env.svc.MergeProperties(context.Background(), businessID, item.ID, map[string]any{
		"size":  "L",
		"color": "red",
	}, nil)
	if err != nil {
		t.Fatalf("merge properties: %v", err)
	}
	if merged.Properties["color"] != "red" || merged.Properties["size"] != "L" {
		t.Fatalf("unexpected properties after merge: %v", merged.Properties)
	}

	if _, err := env.svc.DeleteProperty(context.Background(), businessID, item.ID, "color", nil); err != nil {
		t.Fatalf("delete property: %v", err)
	}
	fallback, err := env.svc.GetProperty(context.Background(), businessID, item.ID, "color", "unknown")
	if err != nil {
		t.Fatalf("get deleted property: %v", err)
	}
	if fallback != "unknown" {
		t.Fatalf("expected fallback for deleted key, got %v", fallback)
	}
}

func TestPropertyKeyValidation(t *testing.T) {
	t.Parallel()
	env := newItemEnv(t)
	businessID := env.seedBusiness(t)

	for _, key := range []string{"", "bad key", "semi;colon", "quote'"} {
		_, err := env.svc.GetProperty(context.Background(), businessID, uuid.New(), key, nil)
		if appErr := pkgerrors.As(err); appErr == nil || appErr.Code() != pkgerrors.CodeValidation {
			t.Fatalf("expected validation error for key %q, got %v", key, err)
		}
	}
}

func TestFindByProperty(t *testing.T) {
	t.Parallel()
	env := newItemEnv(t)
	businessID := env.seedBusiness(t)

	blue, err := env.svc.Create(context.Background(), CreateItemInput{
		BusinessID: businessID, Name: "Blue Widget", SKU: "WID-103",
		Properties: types.JSONMap{"color": "blue"},
	})
	if err != nil {
		t.Fatalf("create blue item: %v", err)
	}
	if _, err := env.svc.Create(context.Background(), CreateItemInput{
		BusinessID: businessID, Name: "Red Widget", SKU: "WID-104",
		Properties: types.JSONMap{"color": "red"},
	}); err != nil {
		t.Fatalf("create red item: %v", err)
	}

	matches, total, err := env.svc.FindByProperty(context.Background(), businessID, "color", "blue", pagination.Params{Limit: 10})
	if err != nil {
		t.Fatalf("find by property: %v", err)
	}
	if total != 1 || len(matches) != 1 {
		t.Fatalf("expected 1 match, got total=%d len=%d", total, len(matches))
	}
	if matches[0].ID != blue.ID {
		t.Fatalf("expected item %s, got %s", blue.ID, matches[0].ID)
	}
}

func TestListSortsByWeightThenName(t *testing.T) {
	t.Parallel()
	env := newItemEnv(t)
	businessID := env.seedBusiness(t)

	seed := func(name, sku string, weight int) {
		item := models.Item{BusinessID: businessID, Name: name, SKU: sku, Weight: weight}
		if err := env.client.DB().Create(&item).Error; err != nil {
			t.Fatalf("seed %s: %v", name, err)
		}
	}
	seed("Anvil", "ANV-001", 1)
	seed("Zephyr", "ZEP-001", 9)
	seed("Bolt", "BLT-001", 1)

	list, _, err := env.svc.List(context.Background(), businessID, ListFilter{}, pagination.Params{Limit: 10})
	if err != nil {
		t.Fatalf("list items: %v", err)
	}
	if len(list) != 3 {
		t.Fatalf("expected 3 items, got %d", len(list))
	}
	if list[0].Name != "Zephyr" || list[1].Name != "Anvil" || list[2].Name != "Bolt" {
		t.Fatalf("unexpected ordering: %s, %s, %s", list[0].Name, list[1].Name, list[2].Name)
	}
}

func TestDeleteItemAudits(t *testing.T) {
	t.Parallel()
	env := newItemEnv(t)
	businessID := env.seedBusiness(t)

	item, err := env.svc.Create(context.Background(), CreateItemInput{
		BusinessID: businessID, Name: "Widget", SKU: "WID-105",
	})
	if err != nil {
		t.Fatalf("create item: %v", err)
	}
	if err := env.svc.Delete(context.Background(), businessID, item.ID, nil); err != nil {
		t.Fatalf("delete item: %v", err)
	}

	_, err = env.svc.Get(context.Background(), businessID, item.ID)
	if appErr := pkgerrors.As(err); appErr == nil || appErr.Code() != pkgerrors.CodeNotFound {
		t.Fatalf("expected not found after delete, got %v", err)
	}

	var rows []models.AuditLog
	if err := env.client.DB().Where("model = ? AND object_id = ?", audit.ModelItem, item.ID).Find(&rows).Error; err != nil {
		t.Fatalf("load audit rows: %v", err)
	}
	if len(rows) != 2 {
		t.Fatalf("expected create and delete audit rows, got %d", len(rows))
	}
}
