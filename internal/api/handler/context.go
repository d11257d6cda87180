package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"
)

// UserIDKey is the echo.Context key the Auth middleware stores the caller's
// user id under.
const UserIDKey = "user_id"

// ctxUserID returns the authenticated user id. Its absence means the route
// was registered without the Auth middleware.
func ctxUserID(c echo.Context) (int64, error) {
	id, _ := c.Get(UserIDKey).(int64)
	if id <= 0 {
		return 0, echo.NewHTTPError(http.StatusUnauthorized, MsgMissingToken)
	}
	return id, nil
}
