package controllers

import (
	"encoding/base64"
	"net/http"

	"github.com/anacreonhq/anacreon-backend/api/responses"
	"github.com/anacreonhq/anacreon-backend/api/validators"
	"github.com/anacreonhq/anacreon-backend/internal/images"
	pkgerrors "github.com/anacreonhq/anacreon-backend/pkg/errors"
	"github.com/anacreonhq/anacreon-backend/pkg/logger"
)

type imageAttachRequest struct {
	Image string `json:"image" validate:"required"`
	Color string `json:"color,omitempty"`
}

// ItemImageAttach stores a base64-encoded image against an item. The payload
// is decoded and content-sniffed server side; the declared extension is
// ignored.
func ItemImageAttach(svc images.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		businessID, err := businessIDFromContext(r.Context())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		itemID, err := pathUUID(r, "itemID")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var req imageAttachRequest
		if err := validators.DecodeJSONBody(r, &req); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		data, err := base64.StdEncoding.DecodeString(req.Image)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "image must be valid base64"))
			return
		}

		image, err := svc.Attach(r.Context(), images.AttachImageInput{
			BusinessID: businessID,
			ItemID:     itemID,
			Data:       data,
			Color:      req.Color,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, image)
	}
}

// ItemImageList returns all images attached to an item.
func ItemImageList(svc images.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		businessID, err := businessIDFromContext(r.Context())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		itemID, err := pathUUID(r, "itemID")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		list, err := svc.ListByItem(r.Context(), businessID, itemID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, list)
	}
}

// ItemImageDelete removes one attached image.
func ItemImageDelete(svc images.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		businessID, err := businessIDFromContext(r.Context())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		itemID, err := pathUUID(r, "itemID")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		imageID, err := pathUUID(r, "imageID")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		if err := svc.Delete(r.Context(), businessID, itemID, imageID); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]any{"deleted": true})
	}
}
