package businesses

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/anacreonhq/anacreon-backend/internal/audit"
	"github.com/anacreonhq/anacreon-backend/pkg/config"
	"github.com/anacreonhq/anacreon-backend/pkg/db"
	"github.com/anacreonhq/anacreon-backend/pkg/db/models"
	pkgerrors "github.com/anacreonhq/anacreon-backend/pkg/errors"
	"github.com/anacreonhq/anacreon-backend/pkg/logger"
	"github.com/anacreonhq/anacreon-backend/pkg/metrics"
	"github.com/anacreonhq/anacreon-backend/pkg/pagination"
)

func newBusinessEnv(t *testing.T) (*db.Client, Service) {
	t.Helper()

	dsn := "file:businesses_" + uuid.NewString() + "?mode=memory&cache=shared"
	client, err := db.New(context.Background(), config.DBConfig{DSN: dsn, Driver: "sqlite"}, nil)
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	t.Cleanup(func() { _ = client.Close() })

	gdb := client.DB()
	if err := gdb.AutoMigrate(
		&models.User{}, &models.Business{}, &models.BusinessUser{},
		&models.Category{}, &models.SubCategory{}, &models.AuditLog{},
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
	return client, svc
}

func TestCreateBindsCreatorAsAdmin(t *testing.T) {
	t.Parallel()
	client, svc := newBusinessEnv(t)

	actorID := uuid.New()
	business, err := svc.Create(context.Background(), CreateBusinessInput{
		Name:    "Acme Supply",
		ActorID: &actorID,
	})
	if err != nil {
		t.Fatalf("create business: %v", err)
	}
	if !business.IsActive {
		t.Fatal("expected new business to be active")
	}

	var member models.BusinessUser
	if err := client.DB().First(&member, "business_id = ? AND user_id = ?", business.ID, actorID).Error; err != nil {
		t.Fatalf("load membership: %v", err)
	}
	if !member.IsAdmin {
		t.Fatal("expected creator membership to be admin")
	}

	ok, err := svc.IsMember(context.Background(), actorID, business.ID)
	if err != nil {
		t.Fatalf("is member: %v", err)
	}
	if !ok {
		t.Fatal("expected creator to be a member")
	}
}

func TestCreateRequiresName(t *testing.T) {
	t.Parallel()
	_, svc := newBusinessEnv(t)

	_, err := svc.Create(context.Background(), CreateBusinessInput{Name: "   "})
	if appErr := pkgerrors.As(err); appErr == nil || appErr.Code() != pkgerrors.CodeValidation {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestAddMemberTwiceConflicts(t *testing.T) {
	t.Parallel()
	_, svc := newBusinessEnv(t)

	actorID := uuid.New()
	business, err := svc.Create(context.Background(), CreateBusinessInput{Name: "Acme Supply", ActorID: &actorID})
	if err != nil {
		t.Fatalf("create business: %v", err)
	}

	userID := uuid.New()
	if _, err := svc.AddMember(context.Background(), business.ID, userID, false); err != nil {
		t.Fatalf("add member: %v", err)
	}
	_, err = svc.AddMember(context.Background(), business.ID, userID, false)
	if appErr := pkgerrors.As(err); appErr == nil || appErr.Code() != pkgerrors.CodeConflict {
		t.Fatalf("expected conflict for duplicate membership, got %v", err)
	}
}

func TestListForUserScopesToMemberships(t *testing.T) {
	t.Parallel()
	_, svc := newBusinessEnv(t)

	memberID := uuid.New()
	otherID := uuid.New()
	if _, err := svc.Create(context.Background(), CreateBusinessInput{Name: "Mine", ActorID: &memberID}); err != nil {
		t.Fatalf("create first business: %v", err)
	}
	if _, err := svc.Create(context.Background(), CreateBusinessInput{Name: "Theirs", ActorID: &otherID}); err != nil {
		t.Fatalf("create second business: %v", err)
	}

	list, total, err := svc.ListForUser(context.Background(), memberID, pagination.Params{Limit: 10})
	if err != nil {
		t.Fatalf("list for user: %v", err)
	}
	if total != 1 || len(list) != 1 {
		t.Fatalf("expected 1 business, got total=%d len=%d", total, len(list))
	}
	if list[0].Name != "Mine" {
		t.Fatalf("expected own business, got %q", list[0].Name)
	}
}

func TestDeactivateIsSoft(t *testing.T) {
	t.Parallel()
	client, svc := newBusinessEnv(t)

	actorID := uuid.New()
	business, err := svc.Create(context.Background(), CreateBusinessInput{Name: "Acme Supply", ActorID: &actorID})
	if err != nil {
		t.Fatalf("create business: %v", err)
	}

	deactivated, err := svc.Deactivate(context.Background(), business.ID, &actorID)
	if err != nil {
		t.Fatalf("deactivate business: %v", err)
	}
	if deactivated.IsActive {
		t.Fatal("expected business to be inactive")
	}

	// The row survives; deactivation never hard-deletes.
	var reloaded models.Business
	if err := client.DB().First(&reloaded, "id = ?", business.ID).Error; err != nil {
		t.Fatalf("reload business: %v", err)
	}
	if reloaded.IsActive {
		t.Fatal("expected persisted inactive flag")
	}
}
