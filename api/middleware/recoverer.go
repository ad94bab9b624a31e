package middleware

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/pmcell/catalog-backend/api/responses"
	pkgerrors "github.com/pmcell/catalog-backend/pkg/errors"
	"github.com/pmcell/catalog-backend/pkg/logger"
)

const adminPathPrefix = "/api/admin/"

// Recoverer turns a handler panic into a 500 in the error shape of the
// surface that was hit.
func Recoverer(logg *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				rec := recover()
				if rec == nil {
					return
				}
				if rec == http.ErrAbortHandler {
					panic(rec)
				}
				err := pkgerrors.Wrap(pkgerrors.CodeInternal, fmt.Errorf("panic: %v", rec), "panic")
				ctx := r.Context()
				if logg != nil {
					ctx = logg.WithFields(ctx, map[string]any{"panic": fmt.Sprint(rec)})
					logg.Error(ctx, "panic.recovered", err)
				}
				if strings.HasPrefix(r.URL.Path, adminPathPrefix) {
					responses.WriteError(ctx, nil, w, err)
					return
				}
				responses.WriteStorefrontError(ctx, nil, w, err)
			}()
			next.ServeHTTP(w, r)
		})
	}
}
