package responses

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"net/http"

	pkgerrors "github.com/pmcell/catalog-backend/pkg/errors"
	"github.com/pmcell/catalog-backend/pkg/logger"
	"github.com/pmcell/catalog-backend/pkg/types"
)

func WriteSuccess(w http.ResponseWriter, data any) {
	WriteSuccessStatus(w, http.StatusOK, data)
}

func WriteSuccessStatus(w http.ResponseWriter, status int, data any) {
	writeJSON(w, status, types.SuccessEnvelope{Data: data})
}

// WriteJSON writes payload as-is. The storefront endpoints use it because
// the frontend reads flat documents rather than the {data} envelope.
func WriteJSON(w http.ResponseWriter, status int, payload any) {
	writeJSON(w, status, payload)
}

// WriteText writes a plain-text body.
func WriteText(w http.ResponseWriter, status int, body string) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(status)
	_, _ = w.Write([]byte(body))
}

// WriteError renders the admin error envelope.
func WriteError(ctx context.Context, logg *logger.Logger, w http.ResponseWriter, err error) {
	typed := resolve(err)
	meta := pkgerrors.MetadataFor(typed.Code())

	msg := meta.PublicMessage
	if pkgerrors.ExposesMessage(typed.Code()) {
		if m := typed.Message(); m != "" {
			msg = m
		}
	}

	payload := types.ErrorEnvelope{
		Error: types.APIError{
			Code:    string(typed.Code()),
			Message: msg,
		},
	}
	if meta.DetailsAllowed {
		if details := typed.Details(); details != nil {
			payload.Error.Details = details
		}
	}

	logError(ctx, logg, err, meta.HTTPStatus)
	writeJSON(w, meta.HTTPStatus, payload)
}

// WriteStorefrontError renders {success:false, error}. Every server-side
// failure is a plain 500 reading "Erro interno do servidor".
func WriteStorefrontError(ctx context.Context, logg *logger.Logger, w http.ResponseWriter, err error) {
	status, msg := storefrontMessage(err)
	logError(ctx, logg, err, status)
	writeJSON(w, status, types.StorefrontError{Success: false, Error: msg})
}

// WriteStorefrontMessage renders the bare {error} document some storefront
// endpoints answer with.
func WriteStorefrontMessage(ctx context.Context, logg *logger.Logger, w http.ResponseWriter, err error) {
	status, msg := storefrontMessage(err)
	logError(ctx, logg, err, status)
	writeJSON(w, status, map[string]string{"error": msg})
}

func storefrontMessage(err error) (int, string) {
	typed := resolve(err)
	meta := pkgerrors.MetadataFor(typed.Code())
	msg := meta.StorefrontMessage
	if pkgerrors.ExposesMessage(typed.Code()) && typed.Message() != "" {
		msg = typed.Message()
	}
	if meta.HTTPStatus >= http.StatusInternalServerError {
		return http.StatusInternalServerError, msg
	}
	return meta.HTTPStatus, msg
}

func resolve(err error) *pkgerrors.Error {
	if err == nil {
		err = errors.New("unknown error")
	}
	typed := pkgerrors.As(err)
	if typed == nil {
		typed = pkgerrors.Wrap(pkgerrors.CodeInternal, err, "unexpected error")
	}
	return typed
}

func logError(ctx context.Context, logg *logger.Logger, err error, status int) {
	if logg == nil || err == nil {
		return
	}
	fields := pkgerrors.Dump(err).Fields()
	fields["status"] = status
	ctx = logg.WithFields(ctx, fields)
	if status >= http.StatusInternalServerError {
		logg.Error(ctx, "request.error", err)
		return
	}
	logg.Warn(ctx, "request.error")
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		log.Printf(`{"level":"error","msg":"failed to encode response","err":"%v"}`, err)
	}
}
