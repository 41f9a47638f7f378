package images

import (
	"context"
	"encoding/base64"
	"testing"

	"github.com/google/uuid"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/anacreonhq/anacreon-backend/internal/items"
	"github.com/anacreonhq/anacreon-backend/pkg/db/models"
	pkgerrors "github.com/anacreonhq/anacreon-backend/pkg/errors"
)

// pngPayload carries the PNG magic bytes so content sniffing resolves to
// image/png without a full encoder.
var pngPayload = []byte{0x89, 'P', 'N', 'G', 0x0d, 0x0a, 0x1a, 0x0a, 0, 0, 0, 0}

func newImageEnv(t *testing.T) (Service, uuid.UUID, uuid.UUID) {
	t.Helper()

	dsn := "file:images_" + uuid.NewString() + "?mode=memory&cache=shared"
	gdb, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	if err := gdb.AutoMigrate(&models.Business{}, &models.Item{}, &models.ItemImage{}); err != nil {
		t.Fatalf("migrate: %v", err)
	}

	business := models.Business{Name: "Acme Supply", IsActive: true}
	if err := gdb.Create(&business).Error; err != nil {
		t.Fatalf("seed business: %v", err)
	}
	item := models.Item{BusinessID: business.ID, Name: "Widget", SKU: "WID-300"}
	if err := gdb.Create(&item).Error; err != nil {
		t.Fatalf("seed item: %v", err)
	}

	svc, err := NewService(NewRepository(gdb), items.NewRepository(gdb))
	if err != nil {
		t.Fatalf("new service: %v", err)
	}
	return svc, business.ID, item.ID
}

func TestAttachStoresBase64WithSniffedMimetype(t *testing.T) {
	t.Parallel()
	svc, businessID, itemID := newImageEnv(t)

	image, err := svc.Attach(context.Background(), AttachImageInput{
		BusinessID: businessID,
		ItemID:     itemID,
		Data:       pngPayload,
		Color:      "blue",
	})
	if err != nil {
		t.Fatalf("attach image: %v", err)
	}
	if image.Mimetype != "image/png" {
		t.Fatalf("expected image/png, got %q", image.Mimetype)
	}
	if image.Color != "blue" {
		t.Fatalf("expected color preserved, got %q", image.Color)
	}

	decoded, err := base64.StdEncoding.DecodeString(image.Image)
	if err != nil {
		t.Fatalf("decode stored payload: %v", err)
	}
	if string(decoded) != string(pngPayload) {
		t.Fatal("stored payload does not round-trip")
	}
}

func TestAttachRejectsNonImagePayload(t *testing.T) {
	t.Parallel()
	svc, businessID, itemID := newImageEnv(t)

	_, err := svc.Attach(context.Background(), AttachImageInput{
		BusinessID: businessID,
		ItemID:     itemID,
		Data:       []byte("plain text, not an image"),
	})
	if appErr := pkgerrors.As(err); appErr == nil || appErr.Code() != pkgerrors.CodeValidation {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestAttachRejectsEmptyAndOversizedPayloads(t *testing.T) {
	t.Parallel()
	svc, businessID, itemID := newImageEnv(t)

	_, err := svc.Attach(context.Background(), AttachImageInput{BusinessID: businessID, ItemID: itemID})
	if appErr := pkgerrors.As(err); appErr == nil || appErr.Code() != pkgerrors.CodeValidation {
		t.Fatalf("expected validation error for empty payload, got %v", err)
	}

	oversized := make([]byte, maxImageBytes+1)
	copy(oversized, pngPayload)
	_, err = svc.Attach(context.Background(), AttachImageInput{BusinessID: businessID, ItemID: itemID, Data: oversized})
	if appErr := pkgerrors.As(err); appErr == nil || appErr.Code() != pkgerrors.CodeValidation {
		t.Fatalf("expected validation error for oversized payload, got %v", err)
	}
}

func TestAttachUnknownItemNotFound(t *testing.T) {
	t.Parallel()
	svc, businessID, _ := newImageEnv(t)

	_, err := svc.Attach(context.Background(), AttachImageInput{
		BusinessID: businessID,
		ItemID:     uuid.New(),
		Data:       pngPayload,
	})
	if appErr := pkgerrors.As(err); appErr == nil || appErr.Code() != pkgerrors.CodeNotFound {
		t.Fatalf("expected not found for unknown item, got %v", err)
	}
}

func TestListAndDelete(t *testing.T) {
	t.Parallel()
	svc, businessID, itemID := newImageEnv(t)

	image, err := svc.Attach(context.Background(), AttachImageInput{
		BusinessID: businessID,
		ItemID:     itemID,
		Data:       pngPayload,
	})
	if err != nil {
		t.Fatalf("attach image: %v", err)
	}

	list, err := svc.ListByItem(context.Background(), businessID, itemID)
	if err != nil {
		t.Fatalf("list images: %v", err)
	}
	if len(list) != 1 {
		t.Fatalf("expected 1 image, got %d", len(list))
	}

	if err := svc.Delete(context.Background(), businessID, itemID, image.ID); err != nil {
		t.Fatalf("delete image: %v", err)
	}
	_, err = svc.Get(context.Background(), businessID, itemID, image.ID)
	if appErr := pkgerrors.As(err); appErr == nil || appErr.Code() != pkgerrors.CodeNotFound {
		t.Fatalf("expected not found after delete, got %v", err)
	}
}
