package echoportal

import (
	"io/ioutil"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/trezcool/ripoti/core/report"
	"github.com/trezcool/ripoti/services/reportapi"
)

// studentView renders the student shell: own submissions plus the
// submission form. No poller runs for students; every page view fetches.
type studentView struct {
	server *Server
}

func registerStudentView(g *echo.Group, s *Server) {
	v := studentView{server: s}
	g.GET("", v.dashboard)
	g.GET("/dashboard", v.dashboard)
	g.POST("/reports", v.submit)
	g.GET("/reports/:id/delete", v.deleteConfirm)
	g.POST("/reports/:id/delete", v.delete)
}

func (v studentView) dashboard(c echo.Context) error {
	sess, err := getContextSession(c)
	if err != nil {
		return err
	}

	var fetchErr string
	reports, err := v.server.deps.Client.MyReports(c.Request().Context(), sess)
	if err != nil {
		fetchErr = "Failed to load reports."
	}

	return c.Render(http.StatusOK, "student_dashboard", v.server.view(c, page{
		"Reports": reports,
		"Error":   fetchErr,
		"Nonce":   newFormNonce(c),
	}))
}

func (v studentView) submit(c echo.Context) error {
	sess, err := getContextSession(c)
	if err != nil {
		return err
	}
	// a spent nonce means the browser replayed the form; drop it
	if !formNonceValid(c) {
		return c.Redirect(http.StatusFound, "/student/dashboard")
	}

	nr := report.NewReport{ProjectTitle: c.FormValue("projectTitle")}
	if fh, fErr := c.FormFile("report"); fErr == nil {
		f, oErr := fh.Open()
		if oErr != nil {
			return oErr
		}
		defer f.Close()
		content, rErr := ioutil.ReadAll(f)
		if rErr != nil {
			return rErr
		}
		nr.FileName = fh.Filename
		nr.ContentType = fh.Header.Get(echo.HeaderContentType)
		nr.Content = content
	}

	if err = nr.Validate(); err != nil {
		flashError(c, err.Error())
		return c.Redirect(http.StatusFound, "/student/dashboard")
	}

	if _, err = v.server.deps.Client.SubmitReport(c.Request().Context(), sess, nr); err != nil {
		flashError(c, apiMessage(err, "Submission failed."))
		return c.Redirect(http.StatusFound, "/student/dashboard")
	}
	flashSuccess(c, "Report submitted successfully!")
	return c.Redirect(http.StatusFound, "/student/dashboard")
}

func (v studentView) deleteConfirm(c echo.Context) error {
	sess, err := getContextSession(c)
	if err != nil {
		return err
	}
	reports, err := v.server.deps.Client.MyReports(c.Request().Context(), sess)
	if err != nil {
		flashError(c, "Failed to load reports.")
		return c.Redirect(http.StatusFound, "/student/dashboard")
	}

	id := c.Param("id")
	for _, rep := range reports {
		if rep.ID == id {
			return c.Render(http.StatusOK, "confirm", v.server.view(c, page{
				"Title":     "Delete report",
				"Message":   "Delete your report \"" + rep.ProjectTitle + "\"? This cannot be undone.",
				"Action":    "/student/reports/" + rep.ID + "/delete",
				"CancelURL": "/student/dashboard",
				"Token":     newConfirmToken(c),
			}))
		}
	}
	return c.Redirect(http.StatusFound, "/student/dashboard")
}

func (v studentView) delete(c echo.Context) error {
	sess, err := getContextSession(c)
	if err != nil {
		return err
	}
	if !confirmTokenValid(c) {
		return c.Redirect(http.StatusFound, "/student/dashboard")
	}
	if err = v.server.deps.Client.DeleteReport(c.Request().Context(), sess, c.Param("id")); err != nil {
		flashError(c, "Could not delete the report.")
		return c.Redirect(http.StatusFound, "/student/dashboard")
	}
	flashSuccess(c, "Report deleted successfully!")
	return c.Redirect(http.StatusFound, "/student/dashboard")
}

// apiMessage prefers the remote API's own message when it sent one.
func apiMessage(err error, fallback string) string {
	switch e := errors.Cause(err).(type) {
	case *reportapi.ConflictError:
		if e.Message != "" {
			return e.Message
		}
	case *reportapi.APIError:
		if e.Message != "" {
			return e.Message
		}
	}
	return fallback
}
