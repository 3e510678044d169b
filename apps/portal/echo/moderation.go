package echoportal

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/trezcool/ripoti/core/report"
)

// moderationView is the review table shared by the admin ("Reports") and
// teacher ("Manage Reports") shells: the same filters and actions over the
// full report feed. The teacher-scoped feed belongs to the teacher dashboard,
// not to moderation.
type moderationView struct {
	server   *Server
	listPath string
}

func registerModerationView(g *echo.Group, prefix, listPath string, s *Server) {
	v := moderationView{server: s, listPath: listPath}
	g.GET(prefix, v.list)
	g.POST(prefix+"/:id/approve", v.approve)
	g.GET(prefix+"/:id/reject", v.rejectForm)
	g.POST(prefix+"/:id/reject", v.reject)
	g.GET(prefix+"/:id/delete", v.deleteConfirm)
	g.POST(prefix+"/:id/delete", v.delete)
	g.POST(prefix+"/:id/certificate", v.certificate)
	g.GET(prefix+"/:id/pdf", v.pdf)
}

func (v moderationView) redirectBack(c echo.Context) error {
	to := v.listPath
	if qs := c.QueryString(); qs != "" {
		to += "?" + qs
	}
	return c.Redirect(http.StatusFound, to)
}

func (v moderationView) list(c echo.Context) error {
	sess, err := getContextSession(c)
	if err != nil {
		return err
	}
	w := v.server.watchers.ensure(sess)
	store, poller := w.reports, w.reportsPoll

	// first view after login or restart: fetch synchronously so the page is
	// not born empty while the poller warms up
	var fetchErr string
	if store.Seq() == 0 {
		if err = poller.Refresh(c.Request().Context()); err != nil {
			fetchErr = "Failed to fetch reports."
		}
	}

	qf := report.QueryFilter{
		Search: c.QueryParam("search"),
		Status: report.ParseStatus(c.QueryParam("status")),
	}
	qf.Clean()

	return c.Render(http.StatusOK, "reports", v.server.view(c, page{
		"Reports":     report.Filter(store.Snapshot(), qf),
		"Search":      qf.Search,
		"Status":      qf.Status,
		"Statuses":    []report.Status{report.StatusAll, report.StatusPending, report.StatusApproved, report.StatusRejected},
		"BasePath":    v.listPath,
		"QueryString": c.QueryString(),
		"Error":       fetchErr,
		"Refresh":     true,
	}))
}

func (v moderationView) approve(c echo.Context) error {
	sess, err := getContextSession(c)
	if err != nil {
		return err
	}
	w := v.server.watchers.ensure(sess)
	store, poller := w.reports, w.reportsPoll

	id := c.Param("id")
	store.StageApprove(id)
	if err = v.server.deps.Client.Approve(c.Request().Context(), sess, id); err != nil {
		store.Revert()
		flashError(c, "Error approving report.")
		return v.redirectBack(c)
	}
	flashSuccess(c, "Report approved!")
	_ = poller.Refresh(c.Request().Context())
	return v.redirectBack(c)
}

func (v moderationView) rejectForm(c echo.Context) error {
	sess, err := getContextSession(c)
	if err != nil {
		return err
	}
	w := v.server.watchers.ensure(sess)
	store := w.reports

	rep, ok := store.Get(c.Param("id"))
	if !ok {
		return v.redirectBack(c)
	}
	return c.Render(http.StatusOK, "reject", v.server.view(c, page{
		"Report":      rep,
		"Action":      v.listPath + "/" + rep.ID + "/reject",
		"CancelURL":   v.listPath,
		"QueryString": c.QueryString(),
	}))
}

func (v moderationView) reject(c echo.Context) error {
	sess, err := getContextSession(c)
	if err != nil {
		return err
	}
	w := v.server.watchers.ensure(sess)
	store, poller := w.reports, w.reportsPoll

	// an empty reason cancels the rejection; nothing is sent
	reason := strings.TrimSpace(c.FormValue("reason"))
	if reason == "" {
		return v.redirectBack(c)
	}

	id := c.Param("id")
	store.StageReject(id, reason)
	if err = v.server.deps.Client.Reject(c.Request().Context(), sess, id, reason); err != nil {
		store.Revert()
		flashError(c, "Error rejecting report.")
		return v.redirectBack(c)
	}
	flashSuccess(c, "Report rejected.")
	_ = poller.Refresh(c.Request().Context())
	return v.redirectBack(c)
}

func (v moderationView) deleteConfirm(c echo.Context) error {
	sess, err := getContextSession(c)
	if err != nil {
		return err
	}
	w := v.server.watchers.ensure(sess)
	store := w.reports

	rep, ok := store.Get(c.Param("id"))
	if !ok {
		return v.redirectBack(c)
	}
	return c.Render(http.StatusOK, "confirm", v.server.view(c, page{
		"Title":     "Delete report",
		"Message":   "Delete the report \"" + rep.ProjectTitle + "\" by " + rep.StudentName + "? This cannot be undone.",
		"Action":    v.listPath + "/" + rep.ID + "/delete",
		"CancelURL": v.listPath,
		"Token":     newConfirmToken(c),
	}))
}

func (v moderationView) delete(c echo.Context) error {
	sess, err := getContextSession(c)
	if err != nil {
		return err
	}
	if !confirmTokenValid(c) {
		return v.redirectBack(c)
	}
	w := v.server.watchers.ensure(sess)
	store, poller := w.reports, w.reportsPoll

	id := c.Param("id")
	store.StageRemove(id)
	if err = v.server.deps.Client.DeleteReport(c.Request().Context(), sess, id); err != nil {
		store.Revert()
		flashError(c, "Error deleting report.")
		return v.redirectBack(c)
	}
	flashSuccess(c, "Report deleted.")
	_ = poller.Refresh(c.Request().Context())
	return v.redirectBack(c)
}

func (v moderationView) certificate(c echo.Context) error {
	sess, err := getContextSession(c)
	if err != nil {
		return err
	}
	w := v.server.watchers.ensure(sess)
	poller := w.reportsPoll

	data, err := v.server.deps.Client.Certificate(c.Request().Context(), sess, c.Param("id"))
	if err != nil {
		flashError(c, "Error generating certificate.")
		return v.redirectBack(c)
	}
	_ = poller.Refresh(c.Request().Context())

	c.Response().Header().Set(echo.HeaderContentDisposition, `attachment; filename="Project_Completion_Certificate.pdf"`)
	return c.Blob(http.StatusOK, "application/pdf", data)
}

func (v moderationView) pdf(c echo.Context) error {
	sess, err := getContextSession(c)
	if err != nil {
		return err
	}
	data, err := v.server.deps.Client.ReportPDF(c.Request().Context(), sess, c.Param("id"))
	if err != nil {
		flashError(c, "Could not open the report PDF.")
		return v.redirectBack(c)
	}
	return c.Blob(http.StatusOK, "application/pdf", data)
}
