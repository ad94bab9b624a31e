package middleware

import (
	"net/http"
	"strings"

	"github.com/pmcell/catalog-backend/api/responses"
	pkgAuth "github.com/pmcell/catalog-backend/pkg/auth"
	"github.com/pmcell/catalog-backend/pkg/config"
	pkgerrors "github.com/pmcell/catalog-backend/pkg/errors"
	"github.com/pmcell/catalog-backend/pkg/logger"
)

// AdminAuth validates a bearer token and seeds the request context with the
// admin username.
func AdminAuth(cfg config.JWTConfig, logg *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			raw := strings.TrimSpace(r.Header.Get("Authorization"))
			token := raw
			if strings.HasPrefix(strings.ToLower(token), "bearer ") {
				token = strings.TrimSpace(token[7:])
			}
			if token == "" {
				responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeUnauthorized, "missing credentials"))
				return
			}

			claims, err := pkgAuth.ParseAdminToken(cfg, token)
			if err != nil {
				responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeUnauthorized, err, "invalid token"))
				return
			}

			ctx := WithAdmin(r.Context(), claims.Username)
			if logg != nil {
				ctx = logg.WithField(ctx, "admin", claims.Username)
			}

			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
