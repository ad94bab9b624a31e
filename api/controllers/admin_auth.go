package controllers

import (
	"crypto/subtle"
	"net/http"
	"time"

	"github.com/pmcell/catalog-backend/api/responses"
	"github.com/pmcell/catalog-backend/api/validators"
	pkgAuth "github.com/pmcell/catalog-backend/pkg/auth"
	"github.com/pmcell/catalog-backend/pkg/config"
	pkgerrors "github.com/pmcell/catalog-backend/pkg/errors"
	"github.com/pmcell/catalog-backend/pkg/logger"
	"github.com/pmcell/catalog-backend/pkg/security"
)

type adminLoginRequest struct {
	Username string `json:"username" validate:"required,max=150"`
	Password string `json:"password" validate:"required,max=256"`
}

type adminLoginResponse struct {
	AccessToken string    `json:"access_token"`
	TokenType   string    `json:"token_type"`
	ExpiresAt   time.Time `json:"expires_at"`
}

// AdminLogin exchanges the back-office credential for a JWT.
func AdminLogin(cfg *config.Config, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req adminLoginRequest
		if err := validators.DecodeJSONBody(w, r, &req); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		invalid := pkgerrors.New(pkgerrors.CodeUnauthorized, "invalid credentials")
		if cfg.Admin.PasswordHash == "" {
			responses.WriteError(r.Context(), logg, w, invalid)
			return
		}
		userOK := subtle.ConstantTimeCompare([]byte(req.Username), []byte(cfg.Admin.Username)) == 1
		passOK, err := security.VerifyPassword(req.Password, cfg.Admin.PasswordHash)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "verify admin password"))
			return
		}
		if !userOK || !passOK {
			if logg != nil {
				logg.Warn(logg.WithField(r.Context(), "username", req.Username), "admin.login.failed")
			}
			responses.WriteError(r.Context(), logg, w, invalid)
			return
		}

		token, expiresAt, err := pkgAuth.MintAdminToken(cfg.JWT, time.Now(), cfg.Admin.Username)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "mint admin token"))
			return
		}
		if logg != nil {
			logg.Info(logg.WithField(r.Context(), "username", cfg.Admin.Username), "admin.login.succeeded")
		}
		responses.WriteSuccess(w, adminLoginResponse{
			AccessToken: token,
			TokenType:   "Bearer",
			ExpiresAt:   expiresAt,
		})
	}
}
