package middleware

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/anacreonhq/anacreon-backend/api/responses"
	"github.com/anacreonhq/anacreon-backend/internal/businesses"
	pkgerrors "github.com/anacreonhq/anacreon-backend/pkg/errors"
	"github.com/anacreonhq/anacreon-backend/pkg/logger"
)

// BusinessContext resolves the businessID URL parameter, verifies the caller
// is a member of that business, and injects the tenant into the context.
// Staff accounts bypass the membership check.
func BusinessContext(svc businesses.Service, logg *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()

			businessID, err := uuid.Parse(chi.URLParam(r, "businessID"))
			if err != nil {
				responses.WriteError(ctx, logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid business id"))
				return
			}

			userID, err := uuid.Parse(UserIDFromContext(ctx))
			if err != nil {
				responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeUnauthorized, "not authenticated"))
				return
			}

			if !IsStaffFromContext(ctx) {
				member, err := svc.IsMember(ctx, userID, businessID)
				if err != nil {
					responses.WriteError(ctx, logg, w, err)
					return
				}
				if !member {
					responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeForbidden, "not a member of this business"))
					return
				}
			}

			ctx = WithBusinessID(ctx, businessID.String())
			if logg != nil {
				ctx = logg.WithBusinessID(ctx, businessID.String())
			}
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
