package handler

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/toolrent/rental-system/internal/core/domain"
)

// Stable client-facing messages.
const (
	MsgDuplicateEmail     = "Email already exists."
	MsgInvalidCredentials = "Invalid email or password."
	MsgInvalidInput       = "Name, email and password are required."
	MsgMissingToken       = "Access Denied. No Token Provided."
	MsgInvalidToken       = "Invalid Token"
	MsgUserNotFound       = "User not found."
	MsgToolNotFound       = "Product not found"
	MsgInvalidTool        = "All required fields are missing."
	MsgInvalidOrder       = "All fields are required."
	MsgOrderInProgress    = "An order with this Idempotency-Key is still being processed."
	MsgInvalidBody        = "Invalid request body."
	MsgServerError        = "Server Error"
)

// ErrorResponse is the envelope for every error body.
type ErrorResponse struct {
	Message string   `json:"message"`
	Fields  []string `json:"fields,omitempty"`
}

var requiredToolFields = []string{"name", "price", "quantity"}

// ResolveError maps err to a status code and response body. known is false
// for unexpected errors, whose details must stay server-side.
func ResolveError(err error) (code int, body ErrorResponse, known bool) {
	switch {
	case errors.Is(err, domain.ErrDuplicateEmail):
		return http.StatusBadRequest, ErrorResponse{Message: MsgDuplicateEmail}, true
	case errors.Is(err, domain.ErrInvalidCredentials):
		return http.StatusBadRequest, ErrorResponse{Message: MsgInvalidCredentials}, true
	case errors.Is(err, domain.ErrInvalidInput):
		return http.StatusBadRequest, ErrorResponse{Message: MsgInvalidInput}, true
	case errors.Is(err, domain.ErrMissingToken):
		return http.StatusUnauthorized, ErrorResponse{Message: MsgMissingToken}, true
	case errors.Is(err, domain.ErrInvalidToken):
		return http.StatusUnauthorized, ErrorResponse{Message: MsgInvalidToken}, true
	case errors.Is(err, domain.ErrUserNotFound):
		return http.StatusNotFound, ErrorResponse{Message: MsgUserNotFound}, true
	case errors.Is(err, domain.ErrToolNotFound):
		return http.StatusNotFound, ErrorResponse{Message: MsgToolNotFound}, true
	case errors.Is(err, domain.ErrInvalidTool):
		return http.StatusBadRequest, ErrorResponse{Message: MsgInvalidTool, Fields: requiredToolFields}, true
	case errors.Is(err, domain.ErrInvalidOrder):
		return http.StatusBadRequest, ErrorResponse{Message: MsgInvalidOrder}, true
	case errors.Is(err, domain.ErrOrderInProgress):
		return http.StatusConflict, ErrorResponse{Message: MsgOrderInProgress}, true
	}

	// Echo's own errors: bind failures, unknown routes, middleware rejections.
	var he *echo.HTTPError
	if errors.As(err, &he) {
		if he.Code >= http.StatusInternalServerError {
			return http.StatusInternalServerError, ErrorResponse{Message: MsgServerError}, false
		}
		return he.Code, ErrorResponse{Message: fmt.Sprintf("%v", he.Message)}, true
	}

	return http.StatusInternalServerError, ErrorResponse{Message: MsgServerError}, false
}
