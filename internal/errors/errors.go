package errors

import (
	"errors"
	"fmt"
)

// This package defines a centralized set of sentinel errors for the application.
// Services wrap these with `fmt.Errorf("%w: ...")` and the API layer uses
// `errors.Is()` to map them to HTTP responses without leaking internals.

var (
	// ErrNotFound signifies that a requested resource could not be located.
	// This is typically mapped to a 404 Not Found HTTP status.
	ErrNotFound = errors.New("resource not found")

	// ErrValidation signifies that input data provided by a client failed
	// business rule validation.
	// This is typically mapped to a 400 Bad Request HTTP status.
	ErrValidation = errors.New("validation failed")

	// ErrConflict signifies that an operation could not be completed because
	// it conflicts with the current state of a resource (e.g., registering an
	// email that already exists).
	// This is typically mapped to a 409 Conflict HTTP status.
	ErrConflict = errors.New("resource conflict")

	// ErrPermission signifies that the authenticated user is not authorized
	// to perform the requested action.
	// This is typically mapped to a 403 Forbidden HTTP status.
	ErrPermission = errors.New("permission denied")

	// ErrUnauthorized signifies missing, invalid or expired credentials.
	// This is typically mapped to a 401 Unauthorized HTTP status.
	ErrUnauthorized = errors.New("unauthorized")

	// ErrInternal signifies an unexpected error on the server. This is a generic
	// error used to prevent leaking sensitive implementation details to the client.
	// This is typically mapped to a 500 Internal Server Error HTTP status.
	ErrInternal = errors.New("internal server error")
)

// Generation errors.
var (
	// ErrUnsupportedModel is returned when the requested model name is not on
	// the endpoint's allow-list. It is a validation error.
	ErrUnsupportedModel = fmt.Errorf("%w: unsupported model", ErrValidation)

	// ErrStreamingUnsupported is returned when a streaming request targets an
	// engine that cannot emit fragments incrementally.
	ErrStreamingUnsupported = fmt.Errorf("%w: backend does not support streaming", ErrValidation)

	// ErrEngineUnavailable means the backing model or session could not be
	// located or loaded. Mapped to 503.
	ErrEngineUnavailable = errors.New("engine unavailable")

	// ErrCodec means the backend's vocabulary could not be loaded or applied.
	// Treated like ErrEngineUnavailable.
	ErrCodec = errors.New("codec error")

	// ErrEngine is a failure during a forward pass or a native generation call.
	// Mapped to 500.
	ErrEngine = errors.New("engine error")

	// ErrStreamTimeout means no fragment arrived within the inactivity window.
	ErrStreamTimeout = errors.New("stream timed out")
)
