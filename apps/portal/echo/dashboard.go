package echoportal

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/trezcool/ripoti/core/report"
)

// dashboardView renders the admin landing page: platform-wide aggregates
// computed by the remote API and fed by the session's stats poller.
type dashboardView struct {
	server *Server
}

func registerDashboardView(g *echo.Group, s *Server) {
	v := dashboardView{server: s}
	g.GET("", v.dashboard)
	g.GET("/dashboard", v.dashboard)
}

func (v dashboardView) dashboard(c echo.Context) error {
	sess, err := getContextSession(c)
	if err != nil {
		return err
	}
	w := v.server.watchers.ensure(sess)

	var fetchErr string
	if w.stats.Seq() == 0 {
		if err = w.statsPoll.Refresh(c.Request().Context()); err != nil {
			fetchErr = "Unable to fetch reports"
		}
	}

	return c.Render(http.StatusOK, "admin_dashboard", v.server.view(c, page{
		"Stats":   w.stats.Snapshot(),
		"Error":   fetchErr,
		"Refresh": true,
	}))
}

// teacherDashboardView summarizes the teacher's own report feed and shows
// the most recent submissions.
type teacherDashboardView struct {
	server *Server
}

func registerTeacherDashboardView(g *echo.Group, s *Server) {
	v := teacherDashboardView{server: s}
	g.GET("", v.dashboard)
	g.GET("/dashboard", v.dashboard)
}

func (v teacherDashboardView) dashboard(c echo.Context) error {
	sess, err := getContextSession(c)
	if err != nil {
		return err
	}
	w := v.server.watchers.ensure(sess)

	var fetchErr string
	if w.feed.Seq() == 0 {
		if err = w.feedPoll.Refresh(c.Request().Context()); err != nil {
			fetchErr = "Failed to fetch reports."
		}
	}

	snapshot := w.feed.Snapshot()
	return c.Render(http.StatusOK, "teacher_dashboard", v.server.view(c, page{
		"Summary": report.Summarize(snapshot),
		"Recent":  report.Recent(snapshot, 10),
		"Error":   fetchErr,
		"Refresh": true,
	}))
}
