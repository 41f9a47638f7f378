package controllers

import (
	"net/http"

	"github.com/google/uuid"

	"github.com/anacreonhq/anacreon-backend/api/responses"
	"github.com/anacreonhq/anacreon-backend/internal/audit"
	pkgerrors "github.com/anacreonhq/anacreon-backend/pkg/errors"
	"github.com/anacreonhq/anacreon-backend/pkg/logger"
	"github.com/anacreonhq/anacreon-backend/pkg/pagination"
)

// AuditLogList returns the business's audit trail, newest first. Read-only;
// there is no write surface for audit rows.
func AuditLogList(svc audit.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		businessID, err := businessIDFromContext(r.Context())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		filter := audit.Filter{Model: r.URL.Query().Get("model")}
		if raw := r.URL.Query().Get("object_id"); raw != "" {
			id, err := uuid.Parse(raw)
			if err != nil {
				responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid object_id"))
				return
			}
			filter.ObjectID = id
		}
		if raw := r.URL.Query().Get("user_id"); raw != "" {
			id, err := uuid.Parse(raw)
			if err != nil {
				responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid user_id"))
				return
			}
			filter.UserID = id
		}

		page := pagination.FromRequest(r)
		logs, total, err := svc.List(r.Context(), businessID, filter, page)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]any{
			"audit_logs": logs,
			"total":      total,
			"limit":      page.Limit,
			"offset":     page.Offset,
		})
	}
}
