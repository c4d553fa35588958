package errx

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
)

// Kind classifies a failure the way callers are expected to react to it.
type Kind int

const (
	KindUnknown Kind = iota
	// KindNetwork means the remote authority could not be reached.
	KindNetwork
	// KindAuth means the credential is missing, invalid or expired (401).
	KindAuth
	// KindValidation means the request was rejected as malformed (4xx) or
	// failed the client-side field-presence checks.
	KindValidation
	// KindServer means the remote authority failed (5xx) or answered with
	// something that could not be decoded.
	KindServer
	// KindNotFound means a single-resource lookup hit a 404.
	KindNotFound
)

const (
	NetworkErrorMessage    = "remote service unreachable"
	AuthErrorMessage       = "authentication required"
	ValidationErrorMessage = "invalid request"
	ServerErrorMessage     = "remote service error"
	NotFoundMessage        = "resource not found"
	DecodeErrorMessage     = "malformed response"
	RedisErrorMessage      = "credential store operation failed"
	RedisNotFoundMessage   = "credential not found"
)

func (k Kind) String() string {
	switch k {
	case KindNetwork:
		return "network_failure"
	case KindAuth:
		return "auth_failure"
	case KindValidation:
		return "validation_failure"
	case KindServer:
		return "server_failure"
	case KindNotFound:
		return "not_found"
	default:
		return "unknown"
	}
}

// Error wraps an underlying error with a classification, the HTTP status
// that produced it (0 when none) and a message safe to show to users.
type Error struct {
	Kind    Kind
	Status  int
	Message string
	Op      string
	Err     error
}

// Error implements the error interface.
func (e *Error) Error() string {
	msg := e.Message
	if e.Op != "" {
		msg = e.Op + ": " + msg
	}
	if e.Err == nil {
		return msg
	}
	return fmt.Sprintf("%s: %v", msg, e.Err)
}

// Unwrap exposes the underlying error for errors.Is / errors.As support.
func (e *Error) Unwrap() error {
	return e.Err
}

// Is matches another *Error of the same kind, or falls through to the wrapped error.
func (e *Error) Is(target error) bool {
	var t *Error
	if errors.As(target, &t) && t != nil {
		return t.Kind == e.Kind && (t.Status == 0 || t.Status == e.Status)
	}
	return false
}

// WithOp sets the operation name and returns the same error.
func (e *Error) WithOp(op string) *Error {
	e.Op = op
	return e
}

// New creates a new Error with the provided information.
func New(kind Kind, status int, message string, err error) *Error {
	return &Error{
		Kind:    kind,
		Status:  status,
		Message: message,
		Err:     err,
	}
}

// Validation builds a client-side validation failure.
func Validation(message string) *Error {
	return New(KindValidation, 0, message, nil)
}

// Network wraps a transport-level failure.
func Network(err error) *Error {
	return New(KindNetwork, 0, NetworkErrorMessage, err)
}

// Decode wraps a failure to decode a 2xx response body.
func Decode(err error) *Error {
	return New(KindServer, 0, DecodeErrorMessage, err)
}

// FromStatus classifies a non-2xx HTTP status. An empty message falls back to
// the default message for the kind.
func FromStatus(status int, message string) *Error {
	var kind Kind
	switch {
	case status == http.StatusUnauthorized:
		kind = KindAuth
	case status == http.StatusNotFound:
		kind = KindNotFound
	case status >= 400 && status < 500:
		kind = KindValidation
	case status >= 500:
		kind = KindServer
	default:
		kind = KindUnknown
	}
	if message == "" {
		message = defaultMessage(kind)
	}
	return New(kind, status, message, nil)
}

func defaultMessage(kind Kind) string {
	switch kind {
	case KindNetwork:
		return NetworkErrorMessage
	case KindAuth:
		return AuthErrorMessage
	case KindValidation:
		return ValidationErrorMessage
	case KindNotFound:
		return NotFoundMessage
	default:
		return ServerErrorMessage
	}
}

// Classify returns err as an *Error. Already classified errors pass through
// unchanged; cancellation and any other raw error count as network failures.
func Classify(err error) *Error {
	if err == nil {
		return nil
	}
	var e *Error
	if errors.As(err, &e) {
		return e
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return New(KindNetwork, 0, "request aborted", err)
	}
	return Network(err)
}

// KindOf extracts the classification of err, KindUnknown when unclassified.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindUnknown
}

// IsKind reports whether err is classified as kind.
func IsKind(err error, kind Kind) bool {
	return KindOf(err) == kind
}

// DetailMessage extracts the human message from an error body. It understands
// {"detail": "..."}, {"detail": [{"loc": [...], "msg": "..."}]} and
// {"message": "..."}; anything else yields "".
func DetailMessage(body []byte) string {
	var payload struct {
		Detail  json.RawMessage `json:"detail"`
		Message string          `json:"message"`
	}
	if err := json.Unmarshal(body, &payload); err != nil {
		return ""
	}
	if len(payload.Detail) > 0 {
		var s string
		if err := json.Unmarshal(payload.Detail, &s); err == nil {
			return s
		}
		var items []struct {
			Loc []any  `json:"loc"`
			Msg string `json:"msg"`
		}
		if err := json.Unmarshal(payload.Detail, &items); err == nil {
			parts := make([]string, 0, len(items))
			for _, it := range items {
				if len(it.Loc) > 0 {
					parts = append(parts, fmt.Sprintf("%v: %s", it.Loc[len(it.Loc)-1], it.Msg))
					continue
				}
				parts = append(parts, it.Msg)
			}
			return strings.Join(parts, "; ")
		}
	}
	return payload.Message
}
