package quickenrich

import (
	apperrors "quickenrich-workers/internal/common/errors"
)

// Kind classifies a failed QuickEnrich call.
type Kind string

const (
	KindAuth       Kind = "auth"
	KindRateLimit  Kind = "rate_limit"
	KindBadRequest Kind = "bad_request"
	KindUnknown    Kind = "api_error"
)

// APIError is a classified QuickEnrich failure. Error returns the human message only,
// which is what ends up in {"error": ...} records.
type APIError struct {
	Kind        Kind
	StatusCode  int // HTTP status, 0 for in-band failures
	Code        int // in-band envelope code, 0 when not applicable
	Message     string
	Description string
}

func (e *APIError) Error() string {
	return e.Message
}

// StandardError maps the kind onto the worker error taxonomy.
func (e *APIError) StandardError() *apperrors.StandardError {
	var stdErr *apperrors.StandardError
	switch e.Kind {
	case KindAuth:
		stdErr = apperrors.NewInvalidAPIKeyError(e.Description)
	case KindRateLimit:
		stdErr = apperrors.NewRateLimitError(e.Description)
	case KindBadRequest:
		stdErr = apperrors.NewBadRequestError(e.Message, e.Description)
	default:
		stdErr = apperrors.NewAPIError(e.Message, e.Description)
	}

	stdErr.Metadata = map[string]interface{}{}
	if e.StatusCode != 0 {
		stdErr.Metadata["statusCode"] = e.StatusCode
	}
	if e.Code != 0 {
		stdErr.Metadata["apiCode"] = e.Code
	}
	return stdErr
}

// IsKind reports whether err is an *APIError of kind k.
func IsKind(err error, k Kind) bool {
	apiErr, ok := err.(*APIError)
	return ok && apiErr.Kind == k
}

const (
	messageInvalidAPIKey     = "Invalid API key"
	descriptionInvalidAPIKey = "Please check your QuickEnrich API key in the credentials."
	messageRateLimit         = "Rate limit exceeded"
	descriptionRateLimit     = "You have exceeded the API rate limit. Please try again later."
	messageInvalidRequest    = "Invalid request parameters"
	descriptionInvalidParams = "Please check your search parameters and try again."
	messageUnknown           = "Unknown error occurred"
	messageNotFound          = "Employee not found"
)
