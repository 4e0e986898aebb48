package api

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"dayplan/internal/schedule"
	"dayplan/internal/service"
)

// ErrorBody is the JSON shape every error response carries.
type ErrorBody struct {
	Message string `json:"message"`
	Status  int    `json:"status"`
}

// errorHandler maps domain errors onto HTTP statuses in one place so the
// handlers just return them. Unknown errors become an opaque 500; the real
// cause goes to the log only.
func errorHandler(logger *zap.Logger) echo.HTTPErrorHandler {
	return func(err error, c echo.Context) {
		if c.Response().Committed {
			return
		}

		status := http.StatusInternalServerError
		message := "internal server error"

		var httpErr *echo.HTTPError
		switch {
		case errors.As(err, &httpErr):
			status = httpErr.Code
			message = fmt.Sprintf("%v", httpErr.Message)
		case errors.Is(err, gorm.ErrRecordNotFound):
			status = http.StatusNotFound
			message = "resource not found"
		case errors.Is(err, service.ErrInvalidInput), errors.Is(err, schedule.ErrIndexOutOfRange):
			status = http.StatusBadRequest
			message = err.Error()
		case errors.Is(err, schedule.ErrNoSpace), errors.Is(err, service.ErrConflict):
			status = http.StatusConflict
			message = err.Error()
		default:
			logger.Error("unhandled request error",
				zap.String("method", c.Request().Method),
				zap.String("uri", c.Request().RequestURI),
				zap.Error(err))
		}

		if c.Request().Method == http.MethodHead {
			if err := c.NoContent(status); err != nil {
				logger.Warn("write error response", zap.Error(err))
			}
			return
		}
		if err := c.JSON(status, ErrorBody{Message: message, Status: status}); err != nil {
			logger.Warn("write error response", zap.Error(err))
		}
	}
}
