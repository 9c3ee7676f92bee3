package errors

import "errors"

// This package defines a centralized set of sentinel errors for the application.
// Services wrap these with context (`fmt.Errorf("%w: ...")`) and the API layer
// maps them to HTTP responses with `errors.Is()`, so business logic never needs
// to know about status codes.

var (
	// ErrNotFound signifies that a requested resource could not be located, or
	// that it exists but belongs to another owner. Both cases look identical to
	// the caller. Mapped to 404 Not Found.
	ErrNotFound = errors.New("resource not found")

	// ErrValidation signifies that input data provided by a client failed
	// validation. The turn never starts. Mapped to 400 Bad Request.
	ErrValidation = errors.New("validation failed")

	// ErrUnauthorized signifies a missing or invalid bearer token.
	// Mapped to 401 Unauthorized.
	ErrUnauthorized = errors.New("unauthorized")

	// ErrConflict signifies that an operation conflicts with the current state
	// of a resource. Mapped to 409 Conflict.
	ErrConflict = errors.New("resource conflict")

	// ErrPermission signifies that the authenticated user is not allowed to
	// perform the requested action. Mapped to 403 Forbidden.
	ErrPermission = errors.New("permission denied")

	// ErrRateLimited signifies that the caller exceeded its request budget.
	// Mapped to 429 Too Many Requests.
	ErrRateLimited = errors.New("rate limit exceeded")

	// ErrInternal signifies an unexpected error on the server, including a
	// failed write to the durable store. Mapped to 500 Internal Server Error.
	ErrInternal = errors.New("internal server error")
)
