package images

import (
	"context"
	"encoding/base64"
	"fmt"

	stderrors "errors"

	"github.com/gabriel-vasile/mimetype"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/anacreonhq/anacreon-backend/internal/items"
	"github.com/anacreonhq/anacreon-backend/pkg/db/models"
	"github.com/anacreonhq/anacreon-backend/pkg/errors"
)

// maxImageBytes bounds decoded payloads; images are stored inline as text.
const maxImageBytes = 5 << 20

// Service defines item image operations. Payloads arrive as raw bytes, are
// mimetype-sniffed from content, and stored base64-encoded.
type Service interface {
	Attach(ctx context.Context, input AttachImageInput) (*models.ItemImage, error)
	Get(ctx context.Context, businessID, itemID, imageID uuid.UUID) (*models.ItemImage, error)
	ListByItem(ctx context.Context, businessID, itemID uuid.UUID) ([]models.ItemImage, error)
	Delete(ctx context.Context, businessID, itemID, imageID uuid.UUID) error
}

// AttachImageInput carries a decoded image payload for one item.
type AttachImageInput struct {
	BusinessID uuid.UUID
	ItemID     uuid.UUID
	Data       []byte
	Color      string
}

type service struct {
	repo  Repository
	items items.Repository
}

// NewService wires an image service with its dependencies.
func NewService(repo Repository, itemRepo items.Repository) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("image repository required")
	}
	if itemRepo == nil {
		return nil, fmt.Errorf("item repository required")
	}
	return &service{repo: repo, items: itemRepo}, nil
}

func (s *service) Attach(ctx context.Context, input AttachImageInput) (*models.ItemImage, error) {
	if len(input.Data) == 0 {
		return nil, errors.New(errors.CodeValidation, "image payload is empty")
	}
	if len(input.Data) > maxImageBytes {
		return nil, errors.New(errors.CodeValidation, "image payload exceeds size limit")
	}
	if err := s.ensureItem(ctx, input.BusinessID, input.ItemID); err != nil {
		return nil, err
	}

	detected := mimetype.Detect(input.Data)
	if !isImageMime(detected.String()) {
		return nil, errors.New(errors.CodeValidation, fmt.Sprintf("unsupported image type %q", detected.String()))
	}

	image := &models.ItemImage{
		ItemID:   input.ItemID,
		Image:    base64.StdEncoding.EncodeToString(input.Data),
		Mimetype: detected.String(),
		Color:    input.Color,
	}
	if err := s.repo.Create(ctx, image); err != nil {
		return nil, errors.Wrap(errors.CodeInternal, err, "failed to store item image")
	}
	return image, nil
}

func (s *service) Get(ctx context.Context, businessID, itemID, imageID uuid.UUID) (*models.ItemImage, error) {
	if err := s.ensureItem(ctx, businessID, itemID); err != nil {
		return nil, err
	}
	image, err := s.repo.GetByID(ctx, itemID, imageID)
	if err != nil {
		if stderrors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errors.New(errors.CodeNotFound, "item image not found")
		}
		return nil, errors.Wrap(errors.CodeInternal, err, "failed to load item image")
	}
	return image, nil
}

func (s *service) ListByItem(ctx context.Context, businessID, itemID uuid.UUID) ([]models.ItemImage, error) {
	if err := s.ensureItem(ctx, businessID, itemID); err != nil {
		return nil, err
	}
	list, err := s.repo.ListByItem(ctx, itemID)
	if err != nil {
		return nil, errors.Wrap(errors.CodeInternal, err, "failed to list item images")
	}
	return list, nil
}

func (s *service) Delete(ctx context.Context, businessID, itemID, imageID uuid.UUID) error {
	if _, err := s.Get(ctx, businessID, itemID, imageID); err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, itemID, imageID); err != nil {
		return errors.Wrap(errors.CodeInternal, err, "failed to delete item image")
	}
	return nil
}

func (s *service) ensureItem(ctx context.Context, businessID, itemID uuid.UUID) error {
	if _, err := s.items.GetByID(ctx, businessID, itemID); err != nil {
		if stderrors.Is(err, gorm.ErrRecordNotFound) {
			return errors.New(errors.CodeNotFound, "item not found")
		}
		return errors.Wrap(errors.CodeInternal, err, "failed to load item")
	}
	return nil
}

func isImageMime(mime string) bool {
	switch mime {
	case "image/png", "image/jpeg", "image/gif", "image/webp", "image/svg+xml":
		return true
	}
	return false
}
