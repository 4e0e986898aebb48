package client

import (
	"context"
	"net/http"
	"net/url"
)

// DailyStatsFor reads one day's counters. Untouched days read as zeros, not
// as an error.
func (c *Client) DailyStatsFor(ctx context.Context, date string) (*DailyStats, error) {
	var day DailyStats
	if err := c.do(ctx, http.MethodGet, "/api/v1/stats/daily/"+date, nil, &day); err != nil {
		return nil, err
	}
	return &day, nil
}

// StatsRange lists the recorded days in [from, to], oldest first. Days with
// no activity are absent.
func (c *Client) StatsRange(ctx context.Context, from, to string) ([]DailyStats, error) {
	q := url.Values{}
	q.Set("from", from)
	q.Set("to", to)

	var rows []DailyStats
	if err := c.do(ctx, http.MethodGet, "/api/v1/stats/range?"+q.Encode(), nil, &rows); err != nil {
		return nil, err
	}
	return rows, nil
}
