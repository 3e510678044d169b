package reportapi

import (
	"context"
	"net/http"

	"github.com/trezcool/ripoti/core/report"
	"github.com/trezcool/ripoti/core/user"
)

// Stats fetches the admin dashboard aggregates; they are computed server-side
// and rendered as-is.
func (c *Client) Stats(ctx context.Context, sess user.Session) (report.DashboardStats, error) {
	var stats report.DashboardStats
	err := c.doJSON(ctx, http.MethodGet, "/dashboard/stats", sess, nil, &stats)
	return stats, err
}

// TeacherReports fetches the teacher dashboard's report feed; the portal
// reduces it to approved/pending counts client-side.
func (c *Client) TeacherReports(ctx context.Context, sess user.Session) ([]report.Report, error) {
	var reports []report.Report
	err := c.doJSON(ctx, http.MethodGet, "/teacher/reports", sess, nil, &reports)
	return reports, err
}
