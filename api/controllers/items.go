package controllers

import (
	"encoding/json"
	"net/http"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/anacreonhq/anacreon-backend/api/responses"
	"github.com/anacreonhq/anacreon-backend/api/validators"
	"github.com/anacreonhq/anacreon-backend/internal/items"
	pkgerrors "github.com/anacreonhq/anacreon-backend/pkg/errors"
	"github.com/anacreonhq/anacreon-backend/pkg/logger"
	"github.com/anacreonhq/anacreon-backend/pkg/pagination"
	"github.com/anacreonhq/anacreon-backend/pkg/types"
)

type itemCreateRequest struct {
	Name          string          `json:"name" validate:"required,min=1"`
	Description   string          `json:"description"`
	SKU           string          `json:"sku" validate:"required,min=1"`
	CategoryID    *string         `json:"category_id,omitempty" validate:"omitempty,uuid"`
	SubCategoryID *string         `json:"sub_category_id,omitempty" validate:"omitempty,uuid"`
	Properties    types.JSONMap   `json:"properties,omitempty"`
	CostPrice     decimal.Decimal `json:"cost_price"`
	SellingPrice  decimal.Decimal `json:"selling_price"`
	Quantity      int             `json:"quantity" validate:"min=0"`
}

// ItemCreate registers a catalog item.
func ItemCreate(svc items.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		businessID, err := businessIDFromContext(r.Context())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var req itemCreateRequest
		if err := validators.DecodeJSONBody(r, &req); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		input := items.CreateItemInput{
			BusinessID:   businessID,
			Name:         req.Name,
			Description:  req.Description,
			SKU:          req.SKU,
			Properties:   req.Properties,
			CostPrice:    req.CostPrice,
			SellingPrice: req.SellingPrice,
			Quantity:     req.Quantity,
			ActorID:      actorIDFromContext(r.Context()),
		}
		if req.CategoryID != nil {
			id := uuid.MustParse(*req.CategoryID)
			input.CategoryID = &id
		}
		if req.SubCategoryID != nil {
			id := uuid.MustParse(*req.SubCategoryID)
			input.SubCategoryID = &id
		}

		item, err := svc.Create(r.Context(), input)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, item)
	}
}

// ItemList returns the business's items, optionally filtered by category or a
// name/SKU search term.
func ItemList(svc items.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		businessID, err := businessIDFromContext(r.Context())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		filter := items.ListFilter{Search: r.URL.Query().Get("search")}
		if raw := r.URL.Query().Get("category_id"); raw != "" {
			id, err := uuid.Parse(raw)
			if err != nil {
				responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid category_id"))
				return
			}
			filter.CategoryID = id
		}

		page := pagination.FromRequest(r)
		list, total, err := svc.List(r.Context(), businessID, filter, page)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]any{
			"items":  list,
			"total":  total,
			"limit":  page.Limit,
			"offset": page.Offset,
		})
	}
}

// ItemSearchByProperty finds items whose property store contains an exact
// key/value pair.
func ItemSearchByProperty(svc items.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		businessID, err := businessIDFromContext(r.Context())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		key := r.URL.Query().Get("key")
		rawValue := r.URL.Query().Get("value")
		if key == "" || rawValue == "" {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeValidation, "key and value query parameters are required"))
			return
		}

		// Values arrive as strings; interpret JSON scalars so numeric and
		// boolean properties match their stored representation.
		var value any = rawValue
		var decoded any
		if err := json.Unmarshal([]byte(rawValue), &decoded); err == nil {
			switch decoded.(type) {
			case float64, bool:
				value = decoded
			}
		}

		page := pagination.FromRequest(r)
		list, total, err := svc.FindByProperty(r.Context(), businessID, key, value, page)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]any{
			"items":  list,
			"total":  total,
			"limit":  page.Limit,
			"offset": page.Offset,
		})
	}
}

// ItemGet returns one item with its images.
func ItemGet(svc items.Service, logg *logger.Logger) http.HandlerFunc {
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
		item, err := svc.Get(r.Context(), businessID, itemID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, item)
	}
}

type itemUpdateRequest struct {
	Name          *string          `json:"name,omitempty" validate:"omitempty,min=1"`
	Description   *string          `json:"description,omitempty"`
	CategoryID    *string          `json:"category_id,omitempty" validate:"omitempty,uuid"`
	SubCategoryID *string          `json:"sub_category_id,omitempty" validate:"omitempty,uuid"`
	CostPrice     *decimal.Decimal `json:"cost_price,omitempty"`
	SellingPrice  *decimal.Decimal `json:"selling_price,omitempty"`
}

// ItemUpdate adjusts the mutable catalog fields.
func ItemUpdate(svc items.Service, logg *logger.Logger) http.HandlerFunc {
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

		var req itemUpdateRequest
		if err := validators.DecodeJSONBody(r, &req); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		input := items.UpdateItemInput{
			BusinessID:   businessID,
			ItemID:       itemID,
			Name:         req.Name,
			Description:  req.Description,
			CostPrice:    req.CostPrice,
			SellingPrice: req.SellingPrice,
			ActorID:      actorIDFromContext(r.Context()),
		}
		if req.CategoryID != nil {
			id := uuid.MustParse(*req.CategoryID)
			input.CategoryID = &id
		}
		if req.SubCategoryID != nil {
			id := uuid.MustParse(*req.SubCategoryID)
			input.SubCategoryID = &id
		}

		item, err := svc.Update(r.Context(), input)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, item)
	}
}

// ItemDelete removes a catalog item.
func ItemDelete(svc items.Service, logg *logger.Logger) http.HandlerFunc {
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
		if err := svc.Delete(r.Context(), businessID, itemID, actorIDFromContext(r.Context())); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]any{"deleted": true})
	}
}

// ItemPropertyGet reads one property with an optional fallback.
func ItemPropertyGet(svc items.Service, logg *logger.Logger) http.HandlerFunc {
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

		key := r.URL.Query().Get("key")
		var fallback any
		if raw := r.URL.Query().Get("default"); raw != "" {
			fallback = raw
		}

		value, err := svc.GetProperty(r.Context(), businessID, itemID, key, fallback)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]any{"key": key, "value": value})
	}
}

type itemPropertySetRequest struct {
	Key   string `json:"key" validate:"required,min=1"`
	Value any    `json:"value"`
}

// ItemPropertySet writes a single property key.
func ItemPropertySet(svc items.Service, logg *logger.Logger) http.HandlerFunc {
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

		var req itemPropertySetRequest
		if err := validators.DecodeJSONBody(r, &req); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		item, err := svc.SetProperty(r.Context(), businessID, itemID, req.Key, req.Value, actorIDFromContext(r.Context()))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, item)
	}
}

type itemPropertiesMergeRequest struct {
	Properties map[string]any `json:"properties" validate:"required"`
}

// ItemPropertiesMerge bulk-merges properties into the item's store.
func ItemPropertiesMerge(svc items.Service, logg *logger.Logger) http.HandlerFunc {
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

		var req itemPropertiesMergeRequest
		if err := validators.DecodeJSONBody(r, &req); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		item, err := svc.MergeProperties(r.Context(), businessID, itemID, req.Properties, actorIDFromContext(r.Context()))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, item)
	}
}

// ItemPropertyDelete removes one property key.
func ItemPropertyDelete(svc items.Service, logg *logger.Logger) http.HandlerFunc {
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

		key := r.URL.Query().Get("key")
		item, err := svc.DeleteProperty(r.Context(), businessID, itemID, key, actorIDFromContext(r.Context()))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, item)
	}
}
