package client

import (
	"context"
	"net/http"
)

// DashboardStats aggregates the admin console's landing counts.
type DashboardStats struct {
	Pages          int              `json:"pages" yaml:"pages"`
	Modules        int              `json:"modules" yaml:"modules"`
	Stories        int              `json:"stories" yaml:"stories"`
	Blogs          int              `json:"blogs" yaml:"blogs"`
	Media          int              `json:"media" yaml:"media"`
	Submissions    int              `json:"submissions" yaml:"submissions"`
	Subscribers    int              `json:"subscribers" yaml:"subscribers"`
	RecentActivity []ActivityRecord `json:"recentActivity,omitempty" yaml:"recentActivity,omitempty"`
}

type ActivityRecord struct {
	Kind      string `json:"kind" yaml:"kind"`
	Title     string `json:"title" yaml:"title"`
	Actor     string `json:"actor,omitempty" yaml:"actor,omitempty"`
	Timestamp string `json:"timestamp" yaml:"timestamp"`
}

func (c *API) GetDashboard(ctx context.Context) (DashboardStats, error) {
	req, err := c.newRequest(ctx, http.MethodGet, "/admin/dashboard", nil)
	if err != nil {
		return DashboardStats{}, err
	}
	var out DashboardStats
	if err := c.do(req, &out); err != nil {
		return DashboardStats{}, err
	}
	return out, nil
}
