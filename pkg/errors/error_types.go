package errors

import (
	"fmt"
	"net/http"
)

// ErrorType represents the type of error that occurred.
type ErrorType int

// Error types. The first block mirrors generic HTTP/transport failure
// modes; the second block names the kinds the protocol core surfaces
// explicitly to callers.
const (
	ErrorTypeUnknown ErrorType = iota
	ErrorTypeNetwork
	ErrorTypeNotFound
	ErrorTypeAuth
	ErrorTypeValidation
	ErrorTypeOperation
	ErrorTypeTimeout
	ErrorTypeResourceBusy

	// ErrorTypeOffline marks the internal "network is offline" condition.
	// Never surfaced to a caller - the transport loops internally until
	// the network returns.
	ErrorTypeOffline
	// ErrorTypeMaxRetries means a retry budget (API/upload/download) was
	// exhausted without success.
	ErrorTypeMaxRetries
	// ErrorTypeSessionInvalidated means the server rejected the bearer
	// token; the session invalidation callback has already fired.
	ErrorTypeSessionInvalidated
	// ErrorTypeMaxStorageReached means the server reported quota
	// exhaustion during an upload attempt.
	ErrorTypeMaxStorageReached
	// ErrorTypeServer wraps a server-reported status=false response that
	// isn't one of the idempotent "not found" codes.
	ErrorTypeServer
	// ErrorTypeTransport marks an unretryable transport-level failure
	// during an upload attempt (uploads don't silently retry on these).
	ErrorTypeTransport
	// ErrorTypeDecode means a response body failed to parse as JSON.
	ErrorTypeDecode
)

// String returns the string representation of the error type.
func (et ErrorType) String() string {
	switch et {
	case ErrorTypeNetwork:
		return "NetworkError"
	case ErrorTypeNotFound:
		return "NotFoundError"
	case ErrorTypeAuth:
		return "AuthError"
	case ErrorTypeValidation:
		return "ValidationError"
	case ErrorTypeOperation:
		return "OperationError"
	case ErrorTypeTimeout:
		return "TimeoutError"
	case ErrorTypeResourceBusy:
		return "ResourceBusyError"
	case ErrorTypeOffline:
		return "Offline"
	case ErrorTypeMaxRetries:
		return "MaxRetries"
	case ErrorTypeSessionInvalidated:
		return "SessionInvalidated"
	case ErrorTypeMaxStorageReached:
		return "MaxStorageReached"
	case ErrorTypeServer:
		return "ServerError"
	case ErrorTypeTransport:
		return "TransportError"
	case ErrorTypeDecode:
		return "DecodeError"
	default:
		return "UnknownError"
	}
}

// TypedError is an error with a specific type and optional HTTP status code
// and server-reported code, used verbatim for ServerError.
type TypedError struct {
	Type       ErrorType
	Message    string
	StatusCode int
	Code       string // server-reported code, e.g. "folder_not_found"
	Err        error
}

// Error returns the error message.
func (e *TypedError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Type, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Type, e.Message)
}

// Unwrap returns the underlying error.
func (e *TypedError) Unwrap() error {
	return e.Err
}

func NewNetworkError(message string, err error) error {
	return &TypedError{Type: ErrorTypeNetwork, Message: message, StatusCode: http.StatusServiceUnavailable, Err: err}
}

func NewNotFoundError(message string, err error) error {
	return &TypedError{Type: ErrorTypeNotFound, Message: message, StatusCode: http.StatusNotFound, Err: err}
}

func NewAuthError(message string, err error) error {
	return &TypedError{Type: ErrorTypeAuth, Message: message, StatusCode: http.StatusUnauthorized, Err: err}
}

func NewValidationError(message string, err error) error {
	return &TypedError{Type: ErrorTypeValidation, Message: message, StatusCode: http.StatusBadRequest, Err: err}
}

func NewOperationError(message string, err error) error {
	return &TypedError{Type: ErrorTypeOperation, Message: message, StatusCode: http.StatusInternalServerError, Err: err}
}

func NewTimeoutError(message string, err error) error {
	return &TypedError{Type: ErrorTypeTimeout, Message: message, StatusCode: http.StatusRequestTimeout, Err: err}
}

func NewResourceBusyError(message string, err error) error {
	return &TypedError{Type: ErrorTypeResourceBusy, Message: message, StatusCode: http.StatusConflict, Err: err}
}

// NewMaxRetriesError reports that a retry budget was exhausted. message
// should name the method/endpoint/data per spec.md's Transport retry step 2.
func NewMaxRetriesError(message string) error {
	return &TypedError{Type: ErrorTypeMaxRetries, Message: message}
}

// NewSessionInvalidatedError reports that the bearer token was rejected.
func NewSessionInvalidatedError(message string) error {
	return &TypedError{Type: ErrorTypeSessionInvalidated, Message: message, StatusCode: http.StatusUnauthorized}
}

// NewMaxStorageReachedError reports server-signaled quota exhaustion.
func NewMaxStorageReachedError(message string) error {
	return &TypedError{Type: ErrorTypeMaxStorageReached, Message: message}
}

// NewServerError wraps a server status=false response, keeping its code.
func NewServerError(message, code string) error {
	return &TypedError{Type: ErrorTypeServer, Message: message, Code: code}
}

// NewTransportError reports an unretryable transport failure during upload.
func NewTransportError(message string, err error) error {
	return &TypedError{Type: ErrorTypeTransport, Message: message, Err: err}
}

// NewDecodeError reports a response body that failed to parse as JSON.
func NewDecodeError(message string, err error) error {
	return &TypedError{Type: ErrorTypeDecode, Message: message, Err: err}
}

func typeOf(err error) (ErrorType, bool) {
	var typedErr *TypedError
	if As(err, &typedErr) {
		return typedErr.Type, true
	}
	return ErrorTypeUnknown, false
}

func IsNetworkError(err error) bool        { t, ok := typeOf(err); return ok && t == ErrorTypeNetwork }
func IsNotFoundError(err error) bool       { t, ok := typeOf(err); return ok && t == ErrorTypeNotFound }
func IsAuthError(err error) bool           { t, ok := typeOf(err); return ok && t == ErrorTypeAuth }
func IsValidationError(err error) bool     { t, ok := typeOf(err); return ok && t == ErrorTypeValidation }
func IsOperationError(err error) bool      { t, ok := typeOf(err); return ok && t == ErrorTypeOperation }
func IsTimeoutError(err error) bool        { t, ok := typeOf(err); return ok && t == ErrorTypeTimeout }
func IsResourceBusyError(err error) bool   { t, ok := typeOf(err); return ok && t == ErrorTypeResourceBusy }
func IsMaxRetriesError(err error) bool     { t, ok := typeOf(err); return ok && t == ErrorTypeMaxRetries }
func IsSessionInvalidated(err error) bool  { t, ok := typeOf(err); return ok && t == ErrorTypeSessionInvalidated }
func IsMaxStorageReached(err error) bool   { t, ok := typeOf(err); return ok && t == ErrorTypeMaxStorageReached }
func IsServerError(err error) bool         { t, ok := typeOf(err); return ok && t == ErrorTypeServer }
func IsTransportError(err error) bool      { t, ok := typeOf(err); return ok && t == ErrorTypeTransport }
func IsDecodeError(err error) bool         { t, ok := typeOf(err); return ok && t == ErrorTypeDecode }

// CodeOf returns the server-reported code carried by a ServerError, if any.
func CodeOf(err error) (string, bool) {
	var typedErr *TypedError
	if As(err, &typedErr) {
		return typedErr.Code, typedErr.Code != ""
	}
	return "", false
}
