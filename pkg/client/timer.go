package client

import (
	"context"
	"net/http"
)

func (c *Client) Timer(ctx context.Context) (*TimerState, error) {
	var state TimerState
	if err := c.do(ctx, http.MethodGet, "/api/v1/timer", nil, &state); err != nil {
		return nil, err
	}
	return &state, nil
}

// TimerStartPause toggles the timer and returns the resulting state.
func (c *Client) TimerStartPause(ctx context.Context) (*TimerState, error) {
	return c.timerPost(ctx, "/api/v1/timer/start-pause", nil)
}

// TimerSkip jumps out of the current phase without crediting it.
func (c *Client) TimerSkip(ctx context.Context) (*TimerState, error) {
	return c.timerPost(ctx, "/api/v1/timer/skip", nil)
}

// TimerReset stops the timer and restores the full work duration.
func (c *Client) TimerReset(ctx context.Context) (*TimerState, error) {
	return c.timerPost(ctx, "/api/v1/timer/reset", nil)
}

// TimerFocus points the session at taskID so completed pomodoros are counted
// against it. Zero clears the focus.
func (c *Client) TimerFocus(ctx context.Context, taskID uint) (*TimerState, error) {
	body := struct {
		TaskID uint `json:"task_id"`
	}{TaskID: taskID}
	return c.timerPost(ctx, "/api/v1/timer/focus", body)
}

func (c *Client) timerPost(ctx context.Context, path string, body any) (*TimerState, error) {
	var state TimerState
	if err := c.do(ctx, http.MethodPost, path, body, &state); err != nil {
		return nil, err
	}
	return &state, nil
}
