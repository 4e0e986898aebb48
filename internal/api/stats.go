package api

import (
	"net/http"

	"github.com/labstack/echo/v4"
)

func (s *Server) handleDailyStats(c echo.Context) error {
	stats, err := s.svc.Stats.Daily(c.Request().Context(), currentUser(c), c.Param("date"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, stats)
}

func (s *Server) handleStatsRange(c echo.Context) error {
	rows, err := s.svc.Stats.Range(c.Request().Context(), currentUser(c), c.QueryParam("from"), c.QueryParam("to"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, rows)
}
