package api

import (
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"

	"dayplan/internal/model"
)

// userContextKey is where resolveUser stores the request's user.
const userContextKey = "dayplan.user"

// HeaderUserID selects which user a request acts as. Authentication lives in
// front of this service; the header is trusted as-is. Requests without it
// fall back to the default owner, which suits the single-user deployment.
const HeaderUserID = "X-User-ID"

func (s *Server) resolveUser(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		ctx := c.Request().Context()

		header := c.Request().Header.Get(HeaderUserID)
		if header == "" {
			user, err := s.svc.Users.EnsureDefault(ctx)
			if err != nil {
				return err
			}
			c.Set(userContextKey, user)
			return next(c)
		}

		id, err := strconv.ParseUint(header, 10, 32)
		if err != nil || id == 0 {
			return echo.NewHTTPError(http.StatusBadRequest, "invalid "+HeaderUserID+" header")
		}
		user, err := s.svc.Users.FindByID(ctx, uint(id))
		if err != nil {
			return err
		}
		c.Set(userContextKey, user)
		return next(c)
	}
}

func currentUser(c echo.Context) *model.User {
	return c.Get(userContextKey).(*model.User)
}

// pathID parses a numeric path parameter.
func pathID(c echo.Context, name string) (uint, error) {
	id, err := strconv.ParseUint(c.Param(name), 10, 32)
	if err != nil || id == 0 {
		return 0, echo.NewHTTPError(http.StatusBadRequest, "invalid "+name+" parameter")
	}
	return uint(id), nil
}

func (s *Server) handleMe(c echo.Context) error {
	return c.JSON(http.StatusOK, currentUser(c))
}

type meUpdateRequest struct {
	Name           *string `json:"name"`
	Timezone       *string `json:"timezone"`
	TelegramChatID *int64  `json:"telegram_chat_id"`
}

// handleUpdateMe adjusts the caller's profile. Binding a Telegram chat here
// is what makes the user reachable for summary and break notifications; a
// telegram_chat_id of 0 unlinks the chat.
func (s *Server) handleUpdateMe(c echo.Context) error {
	var req meUpdateRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}

	user := currentUser(c)
	if req.Name != nil {
		user.Name = *req.Name
	}
	if req.Timezone != nil {
		if _, err := time.LoadLocation(*req.Timezone); err != nil {
			return echo.NewHTTPError(http.StatusBadRequest, fmt.Sprintf("unknown timezone %q", *req.Timezone))
		}
		user.Timezone = *req.Timezone
	}
	if req.TelegramChatID != nil {
		if *req.TelegramChatID == 0 {
			user.TelegramChatID = nil
		} else {
			user.TelegramChatID = req.TelegramChatID
		}
	}

	if err := s.svc.Users.Update(c.Request().Context(), user); err != nil {
		return err
	}
	return c.JSON(http.StatusOK, user)
}
