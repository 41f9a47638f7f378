package controllers

import (
	"net/http"

	"github.com/google/uuid"

	"github.com/anacreonhq/anacreon-backend/api/responses"
	"github.com/anacreonhq/anacreon-backend/api/validators"
	"github.com/anacreonhq/anacreon-backend/internal/businesses"
	pkgerrors "github.com/anacreonhq/anacreon-backend/pkg/errors"
	"github.com/anacreonhq/anacreon-backend/pkg/logger"
	"github.com/anacreonhq/anacreon-backend/pkg/pagination"
)

type businessCreateRequest struct {
	Name        string `json:"name" validate:"required,min=1"`
	Description string `json:"description"`
}

// BusinessCreate registers a new tenant, binding the caller as admin.
func BusinessCreate(svc businesses.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req businessCreateRequest
		if err := validators.DecodeJSONBody(r, &req); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		business, err := svc.Create(r.Context(), businesses.CreateBusinessInput{
			Name:        req.Name,
			Description: req.Description,
			ActorID:     actorIDFromContext(r.Context()),
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, business)
	}
}

// BusinessList returns the caller's businesses.
func BusinessList(svc businesses.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		actor := actorIDFromContext(r.Context())
		if actor == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeUnauthorized, "not authenticated"))
			return
		}

		page := pagination.FromRequest(r)
		list, total, err := svc.ListForUser(r.Context(), *actor, page)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]any{
			"businesses": list,
			"total":      total,
			"limit":      page.Limit,
			"offset":     page.Offset,
		})
	}
}

// BusinessGet returns the active business.
func BusinessGet(svc businesses.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		businessID, err := businessIDFromContext(r.Context())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		business, err := svc.Get(r.Context(), businessID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, business)
	}
}

type businessUpdateRequest struct {
	Name        *string `json:"name,omitempty" validate:"omitempty,min=1"`
	Description *string `json:"description,omitempty"`
}

// BusinessUpdate adjusts the mutable tenant fields.
func BusinessUpdate(svc businesses.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		businessID, err := businessIDFromContext(r.Context())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var req businessUpdateRequest
		if err := validators.DecodeJSONBody(r, &req); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		business, err := svc.Update(r.Context(), businesses.UpdateBusinessInput{
			BusinessID:  businessID,
			Name:        req.Name,
			Description: req.Description,
			ActorID:     actorIDFromContext(r.Context()),
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, business)
	}
}

// BusinessDeactivate soft-disables the active business.
func BusinessDeactivate(svc businesses.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		businessID, err := businessIDFromContext(r.Context())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		business, err := svc.Deactivate(r.Context(), businessID, actorIDFromContext(r.Context()))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, business)
	}
}

type businessMemberRequest struct {
	UserID  string `json:"user_id" validate:"required,uuid"`
	IsAdmin bool   `json:"is_admin"`
}

// BusinessAddMember binds a user to the active business.
func BusinessAddMember(svc businesses.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		businessID, err := businessIDFromContext(r.Context())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var req businessMemberRequest
		if err := validators.DecodeJSONBody(r, &req); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		userID, err := uuid.Parse(req.UserID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid user id"))
			return
		}

		member, err := svc.AddMember(r.Context(), businessID, userID, req.IsAdmin)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, member)
	}
}
