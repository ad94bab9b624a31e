package controllers

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/pmcell/catalog-backend/api/responses"
	"github.com/pmcell/catalog-backend/api/validators"
	"github.com/pmcell/catalog-backend/pkg/logger"
)

type catalogAdmin interface {
	SetProductStock(ctx context.Context, productType string, id uint, inStock bool) error
	SetCategoryActive(ctx context.Context, id uint, active bool) error
}

type setStockRequest struct {
	InStock *bool `json:"in_stock" validate:"required"`
}

// AdminSetProductStock toggles a product in or out of the storefront.
func AdminSetProductStock(svc catalogAdmin, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := validators.PathUint(r, "id")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		var req setStockRequest
		if err := validators.DecodeJSONBody(w, r, &req); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		productType := chi.URLParam(r, "type")
		if err := svc.SetProductStock(r.Context(), productType, id, *req.InStock); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]any{"type": productType, "id": id, "in_stock": *req.InStock})
	}
}

type setActiveRequest struct {
	Active *bool `json:"active" validate:"required"`
}

func AdminSetCategoryActive(svc catalogAdmin, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := validators.PathUint(r, "id")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		var req setActiveRequest
		if err := validators.DecodeJSONBody(w, r, &req); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		if err := svc.SetCategoryActive(r.Context(), id, *req.Active); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]any{"id": id, "active": *req.Active})
	}
}
