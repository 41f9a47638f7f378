package controllers

import (
	"context"
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/anacreonhq/anacreon-backend/api/middleware"
	pkgerrors "github.com/anacreonhq/anacreon-backend/pkg/errors"
)

// pathUUID parses a chi URL parameter as a UUID.
func pathUUID(r *http.Request, name string) (uuid.UUID, error) {
	raw := chi.URLParam(r, name)
	id, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, fmt.Sprintf("invalid %s", name))
	}
	return id, nil
}

// businessIDFromContext returns the tenant injected by the business-context
// middleware.
func businessIDFromContext(ctx context.Context) (uuid.UUID, error) {
	raw := middleware.BusinessIDFromContext(ctx)
	if raw == "" {
		return uuid.Nil, pkgerrors.New(pkgerrors.CodeForbidden, "business context missing")
	}
	id, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid business id")
	}
	return id, nil
}

// actorIDFromContext returns the authenticated user id, nil when absent.
func actorIDFromContext(ctx context.Context) *uuid.UUID {
	raw := middleware.UserIDFromContext(ctx)
	if raw == "" {
		return nil
	}
	id, err := uuid.Parse(raw)
	if err != nil {
		return nil
	}
	return &id
}
