package catalog

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/anacreonhq/anacreon-backend/pkg/db/models"
	pkgerrors "github.com/anacreonhq/anacreon-backend/pkg/errors"
)

func newCatalogEnv(t *testing.T) (*gorm.DB, Service, uuid.UUID) {
	t.Helper()

	dsn := "file:catalog_" + uuid.NewString() + "?mode=memory&cache=shared"
	gdb, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	if err := gdb.AutoMigrate(&models.Business{}, &models.Category{}, &models.SubCategory{}); err != nil {
		t.Fatalf("migrate: %v", err)
	}

	business := models.Business{Name: "Acme Supply", IsActive: true}
	if err := gdb.Create(&business).Error; err != nil {
		t.Fatalf("seed business: %v", err)
	}

	svc, err := NewService(NewRepository(gdb))
	if err != nil {
		t.Fatalf("new service: %v", err)
	}
	return gdb, svc, business.ID
}

func TestCategoryLifecycle(t *testing.T) {
	t.Parallel()
	_, svc, businessID := newCatalogEnv(t)

	category, err := svc.CreateCategory(context.Background(), businessID, "Beverages", "drinks")
	if err != nil {
		t.Fatalf("create category: %v", err)
	}

	name := "Drinks"
	updated, err := svc.UpdateCategory(context.Background(), businessID, category.ID, &name, nil)
	if err != nil {
		t.Fatalf("update category: %v", err)
	}
	if updated.Name != "Drinks" || updated.Description != "drinks" {
		t.Fatalf("unexpected category after update: %q/%q", updated.Name, updated.Description)
	}

	list, err := svc.ListCategories(context.Background(), businessID)
	if err != nil {
		t.Fatalf("list categories: %v", err)
	}
	if len(list) != 1 {
		t.Fatalf("expected 1 category, got %d", len(list))
	}
}

func TestCreateCategoryRequiresName(t *testing.T) {
	t.Parallel()
	_, svc, businessID := newCatalogEnv(t)

	_, err := svc.CreateCategory(context.Background(), businessID, "  ", "")
	if appErr := pkgerrors.As(err); appErr == nil || appErr.Code() != pkgerrors.CodeValidation {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestDeleteCategoryRemovesSubCategories(t *testing.T) {
	t.Parallel()
	gdb, svc, businessID := newCatalogEnv(t)

	category, err := svc.CreateCategory(context.Background(), businessID, "Beverages", "")
	if err != nil {
		t.Fatalf("create category: %v", err)
	}
	sub, err := svc.CreateSubCategory(context.Background(), businessID, category.ID, "Sodas", "")
	if err != nil {
		t.Fatalf("create subcategory: %v", err)
	}

	if err := svc.DeleteCategory(context.Background(), businessID, category.ID); err != nil {
		t.Fatalf("delete category: %v", err)
	}

	var total int64
	if err := gdb.Model(&models.SubCategory{}).Where("id = ?", sub.ID).Count(&total).Error; err != nil {
		t.Fatalf("count subcategories: %v", err)
	}
	if total != 0 {
		t.Fatal("expected subcategories removed with their category")
	}
	_, err = svc.GetCategory(context.Background(), businessID, category.ID)
	if appErr := pkgerrors.As(err); appErr == nil || appErr.Code() != pkgerrors.CodeNotFound {
		t.Fatalf("expected not found after delete, got %v", err)
	}
}

func TestSubCategoryScopedToCategory(t *testing.T) {
	t.Parallel()
	_, svc, businessID := newCatalogEnv(t)

	first, err := svc.CreateCategory(context.Background(), businessID, "Beverages", "")
	if err != nil {
		t.Fatalf("create category: %v", err)
	}
	second, err := svc.CreateCategory(context.Background(), businessID, "Snacks", "")
	if err != nil {
		t.Fatalf("create second category: %v", err)
	}
	sub, err := svc.CreateSubCategory(context.Background(), businessID, first.ID, "Sodas", "")
	if err != nil {
		t.Fatalf("create subcategory: %v", err)
	}

	// Deleting through the wrong parent category must not match the row.
	err = svc.DeleteSubCategory(context.Background(), businessID, second.ID, sub.ID)
	if appErr := pkgerrors.As(err); appErr == nil || appErr.Code() != pkgerrors.CodeNotFound {
		t.Fatalf("expected not found via wrong category, got %v", err)
	}
	if err := svc.DeleteSubCategory(context.Background(), businessID, first.ID, sub.ID); err != nil {
		t.Fatalf("delete subcategory: %v", err)
	}
}
