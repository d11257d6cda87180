package domain

import "errors"

// Auth errors. InvalidCredentials and InvalidToken intentionally collapse
// several causes into one kind so callers cannot tell them apart.
var (
	ErrDuplicateEmail     = errors.New("email already exists")
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrInvalidInput       = errors.New("name, email and password are required")
	ErrMissingToken       = errors.New("missing token")
	ErrInvalidToken       = errors.New("invalid token")
	ErrUserNotFound       = errors.New("user not found")
)

// ErrStoreUnavailable reports a store connection failure or timeout.
var ErrStoreUnavailable = errors.New("store unavailable")

// Catalog and order errors.
var (
	ErrToolNotFound    = errors.New("tool not found")
	ErrInvalidTool     = errors.New("invalid tool")
	ErrInvalidOrder    = errors.New("invalid order")
	ErrOrderInProgress = errors.New("order with this idempotency key is in progress")
)
