package types

// SuccessEnvelope wraps admin API payloads.
type SuccessEnvelope struct {
	Data any `json:"data"`
}

type APIError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Details any    `json:"details,omitempty"`
}

type ErrorEnvelope struct {
	Error APIError `json:"error"`
}

// StorefrontError is the flat error shape the storefront frontend reads.
type StorefrontError struct {
	Success bool   `json:"success"`
	Error   string `json:"error"`
}
