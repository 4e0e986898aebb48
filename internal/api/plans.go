package api

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"dayplan/internal/service"
)

type allocationRequest struct {
	Description string `json:"description"`
	StartTime   int    `json:"start_time"`
	EndTime     int    `json:"end_time"`
	CategoryID  *uint  `json:"category_id"`
	Force       bool   `json:"force"`
}

type moveRequest struct {
	Position int    `json:"position"`
	Policy   string `json:"policy"`
}

// handleGetPlan returns the plan for a date. With ?create=1 a missing plan
// is instantiated from the default template (or ?template=Name).
func (s *Server) handleGetPlan(c echo.Context) error {
	date := c.Param("date")
	ctx := c.Request().Context()
	user := currentUser(c)

	if c.QueryParam("create") == "1" {
		plan, err := s.svc.Plans.GetOrCreate(ctx, user, date, c.QueryParam("template"))
		if err != nil {
			return err
		}
		return c.JSON(http.StatusOK, plan)
	}

	plan, err := s.svc.Plans.Get(ctx, user, date)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, plan)
}

func (s *Server) handlePlanConflicts(c echo.Context) error {
	conflicts, err := s.svc.Plans.Conflicts(c.Request().Context(), currentUser(c), c.Param("date"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, conflicts)
}

func (s *Server) handleAddAllocation(c echo.Context) error {
	var req allocationRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}

	alloc, err := s.svc.Plans.AddAllocation(c.Request().Context(), currentUser(c), c.Param("date"), service.AllocationInput{
		Description: req.Description,
		StartTime:   req.StartTime,
		EndTime:     req.EndTime,
		CategoryID:  req.CategoryID,
		Force:       req.Force,
	})
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, alloc)
}

func (s *Server) handleRemoveAllocation(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return err
	}
	if err := s.svc.Plans.RemoveAllocation(c.Request().Context(), currentUser(c), c.Param("date"), id); err != nil {
		return err
	}
	return c.NoContent(http.StatusNoContent)
}

// handleMoveWindow reflows the day around the dragged allocation and
// returns the plan as it looks afterwards. A gap-policy move that does not
// fit answers 409 and changes nothing.
func (s *Server) handleMoveWindow(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return err
	}
	var req moveRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}

	plan, err := s.svc.Plans.MoveWindow(
		c.Request().Context(),
		currentUser(c),
		c.Param("date"),
		id,
		req.Position,
		service.MovePolicy(req.Policy),
	)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, plan)
}

func (s *Server) handleAssignTask(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return err
	}
	taskID, err := pathID(c, "taskID")
	if err != nil {
		return err
	}
	if err := s.svc.Plans.AssignTask(c.Request().Context(), currentUser(c), c.Param("date"), id, taskID); err != nil {
		return err
	}
	return c.NoContent(http.StatusNoContent)
}

func (s *Server) handleUnassignTask(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return err
	}
	taskID, err := pathID(c, "taskID")
	if err != nil {
		return err
	}
	if err := s.svc.Plans.UnassignTask(c.Request().Context(), currentUser(c), c.Param("date"), id, taskID); err != nil {
		return err
	}
	return c.NoContent(http.StatusNoContent)
}
