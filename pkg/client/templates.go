package client

import (
	"context"
	"fmt"
	"net/http"
)

// WindowInput describes one template window. Position nil appends.
type WindowInput struct {
	Description string `json:"description"`
	StartTime   int    `json:"start_time"`
	EndTime     int    `json:"end_time"`
	CategoryID  *uint  `json:"category_id,omitempty"`
	Position    *int   `json:"position,omitempty"`
}

// TemplateCreate is the body of a template creation.
type TemplateCreate struct {
	Name    string        `json:"name"`
	Windows []WindowInput `json:"windows,omitempty"`
}

func (c *Client) ListTemplates(ctx context.Context) ([]Template, error) {
	var templates []Template
	if err := c.do(ctx, http.MethodGet, "/api/v1/templates", nil, &templates); err != nil {
		return nil, err
	}
	return templates, nil
}

func (c *Client) GetTemplate(ctx context.Context, id uint) (*Template, error) {
	var tpl Template
	if err := c.do(ctx, http.MethodGet, fmt.Sprintf("/api/v1/templates/%d", id), nil, &tpl); err != nil {
		return nil, err
	}
	return &tpl, nil
}

func (c *Client) CreateTemplate(ctx context.Context, input TemplateCreate) (*Template, error) {
	var tpl Template
	if err := c.do(ctx, http.MethodPost, "/api/v1/templates", input, &tpl); err != nil {
		return nil, err
	}
	return &tpl, nil
}

func (c *Client) RenameTemplate(ctx context.Context, id uint, name string) (*Template, error) {
	var tpl Template
	body := map[string]string{"name": name}
	if err := c.do(ctx, http.MethodPatch, fmt.Sprintf("/api/v1/templates/%d", id), body, &tpl); err != nil {
		return nil, err
	}
	return &tpl, nil
}

func (c *Client) DeleteTemplate(ctx context.Context, id uint) error {
	return c.do(ctx, http.MethodDelete, fmt.Sprintf("/api/v1/templates/%d", id), nil, nil)
}

// SetDefaultTemplate makes this the template new plans are seeded from.
func (c *Client) SetDefaultTemplate(ctx context.Context, id uint) error {
	return c.do(ctx, http.MethodPost, fmt.Sprintf("/api/v1/templates/%d/default", id), nil, nil)
}

func (c *Client) AddWindow(ctx context.Context, templateID uint, input WindowInput) (*TimeWindow, error) {
	var window TimeWindow
	if err := c.do(ctx, http.MethodPost, fmt.Sprintf("/api/v1/templates/%d/windows", templateID), input, &window); err != nil {
		return nil, err
	}
	return &window, nil
}

func (c *Client) UpdateWindow(ctx context.Context, templateID, windowID uint, input WindowInput) (*TimeWindow, error) {
	var window TimeWindow
	path := fmt.Sprintf("/api/v1/templates/%d/windows/%d", templateID, windowID)
	if err := c.do(ctx, http.MethodPatch, path, input, &window); err != nil {
		return nil, err
	}
	return &window, nil
}

func (c *Client) RemoveWindow(ctx context.Context, templateID, windowID uint) error {
	return c.do(ctx, http.MethodDelete, fmt.Sprintf("/api/v1/templates/%d/windows/%d", templateID, windowID), nil, nil)
}
