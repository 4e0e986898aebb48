package api

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"dayplan/internal/pomodoro"
)

// TimerResponse is the timer state plus the task the session counts
// towards. State fields keep their persisted camelCase names.
type TimerResponse struct {
	pomodoro.State
	FocusTaskID uint `json:"focusTaskId"`
}

type focusRequest struct {
	TaskID uint `json:"task_id"`
}

func (s *Server) handleTimerState(c echo.Context) error {
	state, focus := s.svc.Timers.Current(c.Request().Context(), currentUser(c))
	return c.JSON(http.StatusOK, TimerResponse{State: state, FocusTaskID: focus})
}

func (s *Server) handleTimerStartPause(c echo.Context) error {
	state := s.svc.Timers.StartPause(c.Request().Context(), currentUser(c))
	return s.timerJSON(c, state)
}

func (s *Server) handleTimerSkip(c echo.Context) error {
	state := s.svc.Timers.Skip(c.Request().Context(), currentUser(c))
	return s.timerJSON(c, state)
}

func (s *Server) handleTimerReset(c echo.Context) error {
	state := s.svc.Timers.Reset(c.Request().Context(), currentUser(c))
	return s.timerJSON(c, state)
}

// handleTimerFocus points the running session at a task; task_id 0 clears
// the focus.
func (s *Server) handleTimerFocus(c echo.Context) error {
	var req focusRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}

	ctx := c.Request().Context()
	user := currentUser(c)
	if err := s.svc.Timers.Focus(ctx, user, req.TaskID); err != nil {
		return err
	}
	state, focus := s.svc.Timers.Current(ctx, user)
	return c.JSON(http.StatusOK, TimerResponse{State: state, FocusTaskID: focus})
}

func (s *Server) timerJSON(c echo.Context, state pomodoro.State) error {
	_, focus := s.svc.Timers.Current(c.Request().Context(), currentUser(c))
	return c.JSON(http.StatusOK, TimerResponse{State: state, FocusTaskID: focus})
}
