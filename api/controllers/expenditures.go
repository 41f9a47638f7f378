package controllers

import (
	"net/http"

	"github.com/shopspring/decimal"

	"github.com/anacreonhq/anacreon-backend/api/responses"
	"github.com/anacreonhq/anacreon-backend/api/validators"
	"github.com/anacreonhq/anacreon-backend/internal/expenditures"
	"github.com/anacreonhq/anacreon-backend/pkg/logger"
	"github.com/anacreonhq/anacreon-backend/pkg/pagination"
)

type expenditureCreateRequest struct {
	Amount      decimal.Decimal `json:"amount" validate:"required"`
	Description string          `json:"description"`
	Category    string          `json:"category" validate:"required,min=1"`
}

// ExpenditureCreate records a spend against the active business.
func ExpenditureCreate(svc expenditures.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		businessID, err := businessIDFromContext(r.Context())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var req expenditureCreateRequest
		if err := validators.DecodeJSONBody(r, &req); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		exp, err := svc.Create(r.Context(), expenditures.CreateExpenditureInput{
			BusinessID:  businessID,
			Amount:      req.Amount,
			Description: req.Description,
			Category:    req.Category,
			ActorID:     actorIDFromContext(r.Context()),
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, exp)
	}
}

// ExpenditureList returns spend records, optionally filtered by category.
func ExpenditureList(svc expenditures.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		businessID, err := businessIDFromContext(r.Context())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		page := pagination.FromRequest(r)
		list, total, err := svc.List(r.Context(), businessID, r.URL.Query().Get("category"), page)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]any{
			"expenditures": list,
			"total":        total,
			"limit":        page.Limit,
			"offset":       page.Offset,
		})
	}
}

// ExpenditureGet returns one spend record.
func ExpenditureGet(svc expenditures.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		businessID, err := businessIDFromContext(r.Context())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		expID, err := pathUUID(r, "expenditureID")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		exp, err := svc.Get(r.Context(), businessID, expID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, exp)
	}
}

// ExpenditureDelete removes a spend record.
func ExpenditureDelete(svc expenditures.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		businessID, err := businessIDFromContext(r.Context())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		expID, err := pathUUID(r, "expenditureID")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		if err := svc.Delete(r.Context(), businessID, expID, actorIDFromContext(r.Context())); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]any{"deleted": true})
	}
}
