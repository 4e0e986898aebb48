package client

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
)

// AllocationCreate is the body of an allocation creation. Force skips the
// overlap check; the overlap then shows up in the plan's conflicts instead.
type AllocationCreate struct {
	Description string `json:"description"`
	StartTime   int    `json:"start_time"`
	EndTime     int    `json:"end_time"`
	CategoryID  *uint  `json:"category_id,omitempty"`
	Force       bool   `json:"force,omitempty"`
}

// Plan fetches the plan for date (YYYY-MM-DD). A day that was never planned
// is a NotFoundError.
func (c *Client) Plan(ctx context.Context, date string) (*DailyPlan, error) {
	var plan DailyPlan
	if err := c.do(ctx, http.MethodGet, "/api/v1/daily-plans/"+date, nil, &plan); err != nil {
		return nil, err
	}
	return &plan, nil
}

// EnsurePlan fetches the plan for date, creating it if missing. A non-empty
// templateName seeds the new plan from that template; otherwise the default
// template is used when one exists.
func (c *Client) EnsurePlan(ctx context.Context, date, templateName string) (*DailyPlan, error) {
	path := "/api/v1/daily-plans/" + date + "?create=1"
	if templateName != "" {
		path += "&template=" + url.QueryEscape(templateName)
	}
	var plan DailyPlan
	if err := c.do(ctx, http.MethodGet, path, nil, &plan); err != nil {
		return nil, err
	}
	return &plan, nil
}

// PlanConflicts lists overlap and category problems in the day's windows.
func (c *Client) PlanConflicts(ctx context.Context, date string) ([]Conflict, error) {
	var conflicts []Conflict
	if err := c.do(ctx, http.MethodGet, "/api/v1/daily-plans/"+date+"/conflicts", nil, &conflicts); err != nil {
		return nil, err
	}
	return conflicts, nil
}

func (c *Client) AddAllocation(ctx context.Context, date string, input AllocationCreate) (*Allocation, error) {
	var alloc Allocation
	if err := c.do(ctx, http.MethodPost, "/api/v1/daily-plans/"+date+"/allocations", input, &alloc); err != nil {
		return nil, err
	}
	return &alloc, nil
}

func (c *Client) RemoveAllocation(ctx context.Context, date string, id uint) error {
	return c.do(ctx, http.MethodDelete, fmt.Sprintf("/api/v1/daily-plans/%s/allocations/%d", date, id), nil, nil)
}

// MoveWindow drags allocation id to position. With MoveGap the server
// answers 409 and leaves the plan untouched when the window cannot fit; with
// MoveShift later windows are pushed down and blocks past midnight are
// dropped. The returned plan is the day after the move.
func (c *Client) MoveWindow(ctx context.Context, date string, id uint, position int, policy MovePolicy) (*DailyPlan, error) {
	body := struct {
		Position int        `json:"position"`
		Policy   MovePolicy `json:"policy"`
	}{Position: position, Policy: policy}

	var plan DailyPlan
	path := fmt.Sprintf("/api/v1/daily-plans/%s/allocations/%d/move", date, id)
	if err := c.do(ctx, http.MethodPost, path, body, &plan); err != nil {
		return nil, err
	}
	return &plan, nil
}

// AssignTask links a task to an allocation. Assigning twice is a no-op.
func (c *Client) AssignTask(ctx context.Context, date string, allocationID, taskID uint) error {
	path := fmt.Sprintf("/api/v1/daily-plans/%s/allocations/%d/tasks/%d", date, allocationID, taskID)
	return c.do(ctx, http.MethodPost, path, nil, nil)
}

func (c *Client) UnassignTask(ctx context.Context, date string, allocationID, taskID uint) error {
	path := fmt.Sprintf("/api/v1/daily-plans/%s/allocations/%d/tasks/%d", date, allocationID, taskID)
	return c.do(ctx, http.MethodDelete, path, nil, nil)
}
