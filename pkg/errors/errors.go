package errors

import (
	stdErrors "errors"
	"fmt"
	"net/http"
)

type Code string

const (
	CodeValidation    Code = "VALIDATION_ERROR"
	CodeUnauthorized  Code = "UNAUTHORIZED"
	CodeForbidden     Code = "FORBIDDEN"
	CodeNotFound      Code = "NOT_FOUND"
	CodeConflict      Code = "CONFLICT"
	CodeStateConflict Code = "STATE_CONFLICT"
	CodeRateLimit     Code = "RATE_LIMIT_EXCEEDED"
	CodeInternal      Code = "INTERNAL_ERROR"
	CodeDependency    Code = "DEPENDENCY_ERROR"
)

// Metadata describes how a code surfaces over HTTP. StorefrontMessage is the
// customer-facing text used by the storefront endpoints when the error's own
// message must not be shown.
type Metadata struct {
	HTTPStatus        int
	Retryable         bool
	PublicMessage     string
	StorefrontMessage string
	DetailsAllowed    bool
}

var metadataByCode = map[Code]Metadata{
	CodeValidation: {
		HTTPStatus:        http.StatusBadRequest,
		PublicMessage:     "validation failed",
		StorefrontMessage: "Dados inválidos",
		DetailsAllowed:    true,
	},
	CodeUnauthorized: {
		HTTPStatus:        http.StatusUnauthorized,
		PublicMessage:     "authentication required",
		StorefrontMessage: "Não autorizado",
	},
	CodeForbidden: {
		HTTPStatus:        http.StatusForbidden,
		PublicMessage:     "access denied",
		StorefrontMessage: "Acesso negado",
	},
	CodeNotFound: {
		HTTPStatus:        http.StatusNotFound,
		PublicMessage:     "resource not found",
		StorefrontMessage: "Não encontrado",
	},
	CodeConflict: {
		HTTPStatus:        http.StatusConflict,
		PublicMessage:     "conflict detected",
		StorefrontMessage: "Conflito ao processar a solicitação",
	},
	CodeStateConflict: {
		HTTPStatus:        http.StatusUnprocessableEntity,
		PublicMessage:     "state transition disallowed",
		StorefrontMessage: "Transição de status não permitida",
		DetailsAllowed:    true,
	},
	CodeRateLimit: {
		HTTPStatus:        http.StatusTooManyRequests,
		PublicMessage:     "rate limit exceeded",
		StorefrontMessage: "Rate limit exceeded. Please try again later.",
	},
	CodeInternal: {
		HTTPStatus:        http.StatusInternalServerError,
		Retryable:         true,
		PublicMessage:     "internal server error",
		StorefrontMessage: "Erro interno do servidor",
	},
	CodeDependency: {
		HTTPStatus:        http.StatusServiceUnavailable,
		Retryable:         true,
		PublicMessage:     "dependency unavailable",
		StorefrontMessage: "Erro interno do servidor",
		DetailsAllowed:    true,
	},
}

func MetadataFor(code Code) Metadata {
	if meta, ok := metadataByCode[code]; ok {
		return meta
	}
	return metadataByCode[CodeInternal]
}

// ExposesMessage reports whether the error's own message is safe to return to
// callers. Server-side codes always fall back to the generic public message.
func ExposesMessage(code Code) bool {
	switch code {
	case CodeInternal, CodeDependency:
		return false
	}
	_, known := metadataByCode[code]
	return known
}

type Error struct {
	code    Code
	message string
	details any
	cause   error
}

func New(code Code, message string) *Error {
	return &Error{code: code, message: message}
}

func Newf(code Code, format string, args ...any) *Error {
	return &Error{code: code, message: fmt.Sprintf(format, args...)}
}

func Wrap(code Code, err error, message string) *Error {
	if err == nil {
		return New(code, message)
	}
	return &Error{code: code, message: message, cause: err}
}

func (e *Error) Code() Code {
	if e == nil {
		return CodeInternal
	}
	return e.code
}

func (e *Error) Message() string {
	if e == nil {
		return ""
	}
	return e.message
}

func (e *Error) Details() any {
	if e == nil {
		return nil
	}
	return e.details
}

func (e *Error) WithDetails(details any) *Error {
	if e == nil {
		return nil
	}
	e.details = details
	return e
}

func (e *Error) Error() string {
	if e == nil {
		return ""
	}
	if e.cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.code, e.message, e.cause)
	}
	return fmt.Sprintf("%s: %s", e.code, e.message)
}

func (e *Error) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.cause
}

func As(err error) *Error {
	if err == nil {
		return nil
	}
	var typed *Error
	if stdErrors.As(err, &typed) {
		return typed
	}
	return nil
}

// IsCode reports whether err carries the given code anywhere in its chain.
func IsCode(err error, code Code) bool {
	typed := As(err)
	return typed != nil && typed.Code() == code
}
