package client

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"time"
)

// TaskCreate is the body of a task creation. Category names it by label;
// a missing category is created on the fly.
type TaskCreate struct {
	Title       string     `json:"title"`
	Description string     `json:"description,omitempty"`
	Category    string     `json:"category,omitempty"`
	Deadline    *time.Time `json:"deadline,omitempty"`
}

// TaskPatch updates only the fields that are set. ClearDeadline removes the
// deadline regardless of the Deadline field.
type TaskPatch struct {
	Title         *string    `json:"title,omitempty"`
	Description   *string    `json:"description,omitempty"`
	Category      *string    `json:"category,omitempty"`
	Deadline      *time.Time `json:"deadline,omitempty"`
	ClearDeadline bool       `json:"clear_deadline,omitempty"`
}

// TaskFilter narrows ListTasks. Nil fields match everything.
type TaskFilter struct {
	Completed  *bool
	CategoryID *uint
	DueBefore  string // YYYY-MM-DD
}

func (f *TaskFilter) query() string {
	if f == nil {
		return ""
	}
	q := url.Values{}
	if f.Completed != nil {
		q.Set("completed", strconv.FormatBool(*f.Completed))
	}
	if f.CategoryID != nil {
		q.Set("category_id", strconv.FormatUint(uint64(*f.CategoryID), 10))
	}
	if f.DueBefore != "" {
		q.Set("due_before", f.DueBefore)
	}
	if len(q) == 0 {
		return ""
	}
	return "?" + q.Encode()
}

func (c *Client) ListTasks(ctx context.Context, filter *TaskFilter) ([]Task, error) {
	var tasks []Task
	if err := c.do(ctx, http.MethodGet, "/api/v1/tasks"+filter.query(), nil, &tasks); err != nil {
		return nil, err
	}
	return tasks, nil
}

func (c *Client) CreateTask(ctx context.Context, input TaskCreate) (*Task, error) {
	var task Task
	if err := c.do(ctx, http.MethodPost, "/api/v1/tasks", input, &task); err != nil {
		return nil, err
	}
	return &task, nil
}

func (c *Client) GetTask(ctx context.Context, id uint) (*Task, error) {
	var task Task
	if err := c.do(ctx, http.MethodGet, fmt.Sprintf("/api/v1/tasks/%d", id), nil, &task); err != nil {
		return nil, err
	}
	return &task, nil
}

func (c *Client) UpdateTask(ctx context.Context, id uint, patch TaskPatch) (*Task, error) {
	var task Task
	if err := c.do(ctx, http.MethodPatch, fmt.Sprintf("/api/v1/tasks/%d", id), patch, &task); err != nil {
		return nil, err
	}
	return &task, nil
}

func (c *Client) DeleteTask(ctx context.Context, id uint) error {
	return c.do(ctx, http.MethodDelete, fmt.Sprintf("/api/v1/tasks/%d", id), nil, nil)
}

// CompleteTask marks the task done. Completing a completed task is a no-op.
func (c *Client) CompleteTask(ctx context.Context, id uint) (*Task, error) {
	var task Task
	if err := c.do(ctx, http.MethodPost, fmt.Sprintf("/api/v1/tasks/%d/complete", id), nil, &task); err != nil {
		return nil, err
	}
	return &task, nil
}

func (c *Client) ReopenTask(ctx context.Context, id uint) (*Task, error) {
	var task Task
	if err := c.do(ctx, http.MethodPost, fmt.Sprintf("/api/v1/tasks/%d/reopen", id), nil, &task); err != nil {
		return nil, err
	}
	return &task, nil
}

// CategoryInput names and colors a category.
type CategoryInput struct {
	Name  string `json:"name"`
	Color string `json:"color,omitempty"`
}

func (c *Client) ListCategories(ctx context.Context) ([]Category, error) {
	var categories []Category
	if err := c.do(ctx, http.MethodGet, "/api/v1/categories", nil, &categories); err != nil {
		return nil, err
	}
	return categories, nil
}

func (c *Client) CreateCategory(ctx context.Context, input CategoryInput) (*Category, error) {
	var category Category
	if err := c.do(ctx, http.MethodPost, "/api/v1/categories", input, &category); err != nil {
		return nil, err
	}
	return &category, nil
}

func (c *Client) UpdateCategory(ctx context.Context, id uint, input CategoryInput) (*Category, error) {
	var category Category
	if err := c.do(ctx, http.MethodPatch, fmt.Sprintf("/api/v1/categories/%d", id), input, &category); err != nil {
		return nil, err
	}
	return &category, nil
}

// DeleteCategory removes the category; tasks that used it stay, uncategorized.
func (c *Client) DeleteCategory(ctx context.Context, id uint) error {
	return c.do(ctx, http.MethodDelete, fmt.Sprintf("/api/v1/categories/%d", id), nil, nil)
}
