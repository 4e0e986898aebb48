package api

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"dayplan/internal/service"
)

type windowRequest struct {
	Description string `json:"description"`
	StartTime   int    `json:"start_time"`
	EndTime     int    `json:"end_time"`
	CategoryID  *uint  `json:"category_id"`
	Position    *int   `json:"position"`
}

func (w windowRequest) input() service.WindowInput {
	return service.WindowInput{
		Description: w.Description,
		StartTime:   w.StartTime,
		EndTime:     w.EndTime,
		CategoryID:  w.CategoryID,
		Position:    w.Position,
	}
}

type templateCreateRequest struct {
	Name    string          `json:"name"`
	Windows []windowRequest `json:"windows"`
}

type templateRenameRequest struct {
	Name string `json:"name"`
}

func (s *Server) handleListTemplates(c echo.Context) error {
	templates, err := s.svc.Templates.List(c.Request().Context(), currentUser(c))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, templates)
}

func (s *Server) handleCreateTemplate(c echo.Context) error {
	var req templateCreateRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}

	windows := make([]service.WindowInput, 0, len(req.Windows))
	for _, w := range req.Windows {
		windows = append(windows, w.input())
	}

	tpl, err := s.svc.Templates.Create(c.Request().Context(), currentUser(c), req.Name, windows)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, tpl)
}

func (s *Server) handleGetTemplate(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return err
	}
	tpl, err := s.svc.Templates.Get(c.Request().Context(), currentUser(c), id)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, tpl)
}

func (s *Server) handleRenameTemplate(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return err
	}
	var req templateRenameRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	tpl, err := s.svc.Templates.Rename(c.Request().Context(), currentUser(c), id, req.Name)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, tpl)
}

func (s *Server) handleDeleteTemplate(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return err
	}
	if err := s.svc.Templates.Delete(c.Request().Context(), currentUser(c), id); err != nil {
		return err
	}
	return c.NoContent(http.StatusNoContent)
}

func (s *Server) handleSetDefaultTemplate(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return err
	}
	if err := s.svc.Templates.SetDefault(c.Request().Context(), currentUser(c), id); err != nil {
		return err
	}
	return c.NoContent(http.StatusNoContent)
}

func (s *Server) handleAddWindow(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return err
	}
	var req windowRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	window, err := s.svc.Templates.AddWindow(c.Request().Context(), currentUser(c), id, req.input())
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, window)
}

func (s *Server) handleUpdateWindow(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return err
	}
	windowID, err := pathID(c, "windowID")
	if err != nil {
		return err
	}
	var req windowRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	window, err := s.svc.Templates.UpdateWindow(c.Request().Context(), currentUser(c), id, windowID, req.input())
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, window)
}

func (s *Server) handleDeleteWindow(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return err
	}
	windowID, err := pathID(c, "windowID")
	if err != nil {
		return err
	}
	if err := s.svc.Templates.RemoveWindow(c.Request().Context(), currentUser(c), id, windowID); err != nil {
		return err
	}
	return c.NoContent(http.StatusNoContent)
}
