package controllers

import (
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/pmcell/catalog-backend/api/responses"
	"github.com/pmcell/catalog-backend/api/validators"
	"github.com/pmcell/catalog-backend/internal/catalog"
	"github.com/pmcell/catalog-backend/pkg/logger"
)

// ProductList serves the storefront listing for / and /api/products/.
func ProductList(svc catalog.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		result, err := svc.List(r.Context(), catalog.ListInput{
			Query:    strings.TrimSpace(q.Get("q")),
			Category: strings.TrimSpace(q.Get("category")),
			Sort:     strings.TrimSpace(q.Get("sort")),
			Page:     validators.QueryPage(r),
		})
		if err != nil {
			responses.WriteStorefrontError(r.Context(), logg, w, err)
			return
		}
		responses.WriteJSON(w, http.StatusOK, result)
	}
}

func ProductDetail(svc catalog.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := validators.PathUint(r, "id")
		if err != nil {
			responses.WriteStorefrontError(r.Context(), logg, w, err)
			return
		}
		detail, err := svc.Detail(r.Context(), id, chi.URLParam(r, "type"))
		if err != nil {
			responses.WriteStorefrontError(r.Context(), logg, w, err)
			return
		}
		responses.WriteJSON(w, http.StatusOK, detail)
	}
}

// ModelsByBrand lists the priced models of one brand for a case/film product.
func ModelsByBrand(svc catalog.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		productID, err := validators.PathUint(r, "id")
		if err != nil {
			responses.WriteStorefrontError(r.Context(), logg, w, err)
			return
		}
		brandID, err := validators.PathUint(r, "brandID")
		if err != nil {
			responses.WriteStorefrontError(r.Context(), logg, w, err)
			return
		}
		result, err := svc.ModelsByBrand(r.Context(), productID, brandID)
		if err != nil {
			responses.WriteStorefrontError(r.Context(), logg, w, err)
			return
		}
		responses.WriteJSON(w, http.StatusOK, result)
	}
}

func SearchSuggestions(svc catalog.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		suggestions, err := svc.Suggestions(r.Context(), r.FormValue("q"))
		if err != nil {
			responses.WriteStorefrontMessage(r.Context(), logg, w, err)
			return
		}
		responses.WriteJSON(w, http.StatusOK, map[string]any{"suggestions": suggestions})
	}
}

func Sitemap(svc catalog.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		entries, err := svc.Sitemap(r.Context())
		if err != nil {
			responses.WriteStorefrontError(r.Context(), logg, w, err)
			return
		}
		responses.WriteJSON(w, http.StatusOK, map[string]any{"urls": entries})
	}
}
