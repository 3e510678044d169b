package echoportal

import (
	"bytes"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/textproto"
	"net/url"
	"testing"
	"time"

	"github.com/trezcool/ripoti/core/report"
	"github.com/trezcool/ripoti/core/user"
)

func submitRequest(t *testing.T, s *Server, sess user.Session, nonce, title, filename, contentType string, content []byte) (*http.Request, *httptest.ResponseRecorder) {
	t.Helper()

	var buf bytes.Buffer
	form := multipart.NewWriter(&buf)
	if err := form.WriteField("nonce", nonce); err != nil {
		t.Fatal(err)
	}
	if err := form.WriteField("projectTitle", title); err != nil {
		t.Fatal(err)
	}
	if filename != "" {
		h := make(textproto.MIMEHeader)
		h.Set("Content-Disposition", `form-data; name="report"; filename="`+filename+`"`)
		h.Set("Content-Type", contentType)
		part, err := form.CreatePart(h)
		if err != nil {
			t.Fatal(err)
		}
		if _, err = part.Write(content); err != nil {
			t.Fatal(err)
		}
	}
	if err := form.Close(); err != nil {
		t.Fatal(err)
	}

	req := httptest.NewRequest(http.MethodPost, "/student/reports", &buf)
	req.Header.Set("Content-Type", form.FormDataContentType())

	value, err := s.sessions.seal(sess)
	if err != nil {
		t.Fatal(err)
	}
	req.AddCookie(&http.Cookie{Name: sessionCookie, Value: value})
	req.AddCookie(&http.Cookie{Name: nonceCookie, Value: nonce})

	return req, httptest.NewRecorder()
}

func TestStudentDashboard(t *testing.T) {
	t.Run("lists own reports", func(t *testing.T) {
		server, api := setup(t)
		api.mu.Lock()
		api.reports = []report.Report{
			{ID: "r1", ProjectTitle: "Sensor Network", SubmissionDate: time.Date(2021, 3, 1, 0, 0, 0, 0, time.UTC)},
			{ID: "r2", ProjectTitle: "Chat App", Rejected: true, RejectionReason: "missing chapters"},
		}
		api.mu.Unlock()

		req, rec := authRequest(t, server, newSession(user.RoleStudent), http.MethodGet, "/student/dashboard")
		server.ServeHTTP(rec, req)

		if rec.Code != http.StatusOK {
			t.Fatalf("code = %d; want 200", rec.Code)
		}
		checkContains(t, rec, "Sensor Network")
		checkContains(t, rec, "missing chapters")
		if got := api.count("GET /reports/my-reports"); got != 1 {
			t.Errorf("my-reports fetched %d times; want 1", got)
		}
	})

	t.Run("empty state", func(t *testing.T) {
		server, _ := setup(t)

		req, rec := authRequest(t, server, newSession(user.RoleStudent), http.MethodGet, "/student/dashboard")
		server.ServeHTTP(rec, req)
		checkContains(t, rec, "You haven't submitted any reports yet.")
	})

	t.Run("fetch failure shows a banner", func(t *testing.T) {
		server, api := setup(t)
		api.fail["GET /reports/my-reports"] = true

		req, rec := authRequest(t, server, newSession(user.RoleStudent), http.MethodGet, "/student/dashboard")
		server.ServeHTTP(rec, req)

		if rec.Code != http.StatusOK {
			t.Fatalf("code = %d; want 200", rec.Code)
		}
		checkContains(t, rec, "Failed to load reports.")
	})
}

func TestStudentSubmit(t *testing.T) {
	pdf := []byte("%PDF-1.4 fake")
	sess := newSession(user.RoleStudent)

	t.Run("ok", func(t *testing.T) {
		server, api := setup(t)

		req, rec := submitRequest(t, server, sess, "n1", "Sensor Network", "report.pdf", "application/pdf", pdf)
		server.ServeHTTP(rec, req)

		checkRedirect(t, rec, "/student/dashboard")
		if got := api.count("POST /reports/submit-report"); got != 1 {
			t.Errorf("submit called %d times; want 1", got)
		}
		if got := flashValue(rec); got != "success|Report submitted successfully!" {
			t.Errorf("flash = %q", got)
		}
	})

	t.Run("missing title", func(t *testing.T) {
		server, api := setup(t)

		req, rec := submitRequest(t, server, sess, "n1", "", "report.pdf", "application/pdf", pdf)
		server.ServeHTTP(rec, req)

		checkRedirect(t, rec, "/student/dashboard")
		if got := api.count("POST /reports/submit-report"); got != 0 {
			t.Errorf("submit called %d times on invalid form; want 0", got)
		}
		if got := flashValue(rec); got != "error|Both project title and PDF file are required." {
			t.Errorf("flash = %q", got)
		}
	})

	t.Run("missing file", func(t *testing.T) {
		server, api := setup(t)

		req, rec := submitRequest(t, server, sess, "n1", "Sensor Network", "", "", nil)
		server.ServeHTTP(rec, req)

		checkRedirect(t, rec, "/student/dashboard")
		if got := api.count("POST /reports/submit-report"); got != 0 {
			t.Errorf("submit called %d times without a file; want 0", got)
		}
		if got := flashValue(rec); got != "error|Both project title and PDF file are required." {
			t.Errorf("flash = %q", got)
		}
	})

	t.Run("not a pdf", func(t *testing.T) {
		server, api := setup(t)

		req, rec := submitRequest(t, server, sess, "n1", "Sensor Network", "report.docx", "application/msword", pdf)
		server.ServeHTTP(rec, req)

		checkRedirect(t, rec, "/student/dashboard")
		if got := api.count("POST /reports/submit-report"); got != 0 {
			t.Errorf("submit called %d times with a non-PDF; want 0", got)
		}
		if got := flashValue(rec); got != "error|Please upload a valid PDF file." {
			t.Errorf("flash = %q", got)
		}
	})

	t.Run("replayed nonce is dropped", func(t *testing.T) {
		server, api := setup(t)

		// nonce cookie and form value disagree
		req, rec := submitRequest(t, server, sess, "n1", "Sensor Network", "report.pdf", "application/pdf", pdf)
		req.Header.Del("Cookie")
		value, err := server.sessions.seal(sess)
		if err != nil {
			t.Fatal(err)
		}
		req.AddCookie(&http.Cookie{Name: sessionCookie, Value: value})
		req.AddCookie(&http.Cookie{Name: nonceCookie, Value: "already-spent"})
		server.ServeHTTP(rec, req)

		checkRedirect(t, rec, "/student/dashboard")
		if got := api.count("POST /reports/submit-report"); got != 0 {
			t.Errorf("submit called %d times on a replayed form; want 0", got)
		}
	})
}

func TestStudentDelete(t *testing.T) {
	server, api := setup(t)
	api.mu.Lock()
	api.reports = []report.Report{{ID: "r1", ProjectTitle: "Sensor Network"}}
	api.mu.Unlock()
	sess := newSession(user.RoleStudent)

	// confirmation page
	req, rec := authRequest(t, server, sess, http.MethodGet, "/student/reports/r1/delete")
	server.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("confirmation page code = %d; want 200", rec.Code)
	}
	checkContains(t, rec, "Sensor Network")

	form := url.Values{}
	for _, cookie := range rec.Result().Cookies() {
		if cookie.Name == confirmCookie {
			form.Set("confirm", cookie.Value)
		}
	}
	req2, rec2 := authRequest(t, server, sess, http.MethodPost, "/student/reports/r1/delete", form.Encode())
	withCookie(req2, rec, confirmCookie)
	server.ServeHTTP(rec2, req2)

	checkRedirect(t, rec2, "/student/dashboard")
	if got := api.count("DELETE /reports/r1"); got != 1 {
		t.Errorf("delete called %d times; want 1", got)
	}
	if got := flashValue(rec2); got != "success|Report deleted successfully!" {
		t.Errorf("flash = %q", got)
	}
}
