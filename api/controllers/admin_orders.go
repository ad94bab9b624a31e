package controllers

import (
	"context"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/pmcell/catalog-backend/api/responses"
	"github.com/pmcell/catalog-backend/api/validators"
	"github.com/pmcell/catalog-backend/internal/orders"
	"github.com/pmcell/catalog-backend/pkg/logger"
)

type adminOrderService interface {
	List(ctx context.Context, input orders.ListInput) (*orders.ListResult, error)
	UpdateStatus(ctx context.Context, code, status string) (*orders.OrderDTO, error)
}

// AdminListOrders returns a page of orders, newest first, optionally
// filtered by ?status=.
func AdminListOrders(svc adminOrderService, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		page, err := validators.ParseQueryInt(r, "page", 1, 1, 1<<20)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		result, err := svc.List(r.Context(), orders.ListInput{
			Status: strings.TrimSpace(r.URL.Query().Get("status")),
			Page:   page,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, result)
	}
}

type updateOrderStatusRequest struct {
	Status string `json:"status" validate:"required"`
}

func AdminUpdateOrderStatus(svc adminOrderService, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req updateOrderStatusRequest
		if err := validators.DecodeJSONBody(w, r, &req); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		code := strings.TrimSpace(chi.URLParam(r, "code"))
		ctx := r.Context()
		if logg != nil {
			ctx = logg.WithFields(ctx, map[string]any{"order_code": code, "status": req.Status})
		}
		order, err := svc.UpdateStatus(ctx, code, req.Status)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		if logg != nil {
			logg.Info(ctx, "admin.order.status_updated")
		}
		responses.WriteSuccess(w, order)
	}
}
