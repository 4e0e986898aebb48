package client

import (
	"errors"
	"fmt"
	"net/http"
)

// ApiError is a non-2xx response decoded from the API's error body.
type ApiError struct {
	Message string `json:"message"`
	Status  int    `json:"status"`
}

func (e *ApiError) Error() string {
	return fmt.Sprintf("api error %d: %s", e.Status, e.Message)
}

// NotFoundError is the 404 subtype of ApiError so callers can branch on
// missing resources with errors.As.
type NotFoundError struct {
	ApiError
}

func (e *NotFoundError) Unwrap() error {
	return &e.ApiError
}

// NetworkError is a transport-level failure: connection refused, timeout,
// DNS. The request may never have reached the server.
type NetworkError struct {
	Err error
}

func (e *NetworkError) Error() string {
	return fmt.Sprintf("network error: %v", e.Err)
}

func (e *NetworkError) Unwrap() error {
	return e.Err
}

// Kind sorts request failures into the buckets callers act on.
type Kind string

const (
	// KindNetwork covers transport failures. Retryable.
	KindNetwork Kind = "network"
	// KindAuth is a 401. The session is gone; retrying cannot help.
	KindAuth Kind = "auth"
	// KindPermission is a 403. Surfaced to the user, never retried.
	KindPermission Kind = "permission"
	// KindValidation covers 400 and 404. The request itself is wrong.
	KindValidation Kind = "validation"
	// KindServer covers 5xx and 429. Retryable with backoff.
	KindServer Kind = "server"
	// KindUnknown is the fallback. Treated as transient.
	KindUnknown Kind = "unknown"
)

// Retryable reports whether an automatic retry makes sense for this kind.
func (k Kind) Retryable() bool {
	switch k {
	case KindNetwork, KindServer, KindUnknown:
		return true
	default:
		return false
	}
}

// Classify maps err onto the Kind taxonomy.
func Classify(err error) Kind {
	var netErr *NetworkError
	if errors.As(err, &netErr) {
		return KindNetwork
	}

	var apiErr *ApiError
	if errors.As(err, &apiErr) {
		switch {
		case apiErr.Status == http.StatusUnauthorized:
			return KindAuth
		case apiErr.Status == http.StatusForbidden:
			return KindPermission
		case apiErr.Status == http.StatusBadRequest, apiErr.Status == http.StatusNotFound:
			return KindValidation
		case apiErr.Status == http.StatusTooManyRequests, apiErr.Status >= 500:
			return KindServer
		}
	}
	return KindUnknown
}

// UserMessage renders err as a single line fit for direct display. Validation
// and permission failures surface the server's own message; the rest collapse
// to a generic line per kind.
func UserMessage(err error) string {
	switch Classify(err) {
	case KindNetwork:
		return "Network error - please check your connection and try again"
	case KindAuth:
		return "Your session has expired - please sign in again"
	case KindPermission, KindValidation:
		if msg := apiMessage(err); msg != "" {
			return msg
		}
		return "The request was rejected - please check your input"
	case KindServer:
		return "The server is having trouble - please try again in a moment"
	default:
		return "Something went wrong - please try again"
	}
}

func apiMessage(err error) string {
	var apiErr *ApiError
	if errors.As(err, &apiErr) {
		return apiErr.Message
	}
	return ""
}
