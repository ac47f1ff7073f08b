package v1

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"
)

// errorResponse is the uniform error body.
type errorResponse struct {
	Error string `json:"error"`
}

func errorJSON(c echo.Context, code int, message string) error {
	return c.JSON(code, &errorResponse{Error: message})
}

// callerIdentity extracts the caller's user id (X-User-ID header) and session
// token (session_id query parameter). Either may be absent.
func callerIdentity(c echo.Context) (userID *int32, sessionID *string) {
	if header := c.Request().Header.Get("X-User-ID"); header != "" {
		if id, err := strconv.ParseInt(header, 10, 32); err == nil {
			v := int32(id)
			userID = &v
		}
	}
	if session := c.QueryParam("session_id"); session != "" {
		sessionID = &session
	}
	return userID, sessionID
}

// pathID parses the numeric :id path parameter.
func pathID(c echo.Context) (int32, error) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 32)
	if err != nil {
		return 0, echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	return int32(id), nil
}
