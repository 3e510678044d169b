package echoportal

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/trezcool/ripoti/core"
	"github.com/trezcool/ripoti/core/report"
	"github.com/trezcool/ripoti/core/user"
	logsvc "github.com/trezcool/ripoti/services/logger"
	"github.com/trezcool/ripoti/services/reportapi"
)

var certificatePDF = []byte("%PDF-1.4 certificate")

// fakeAPI is an in-memory stand-in for the remote Project Report Submission
// System API. It records every call so tests can assert on which requests the
// portal did (and did not) make.
type fakeAPI struct {
	mu      sync.Mutex
	srv     *httptest.Server
	reports []report.Report
	users   []user.User
	stats   report.DashboardStats
	calls   map[string]int
	fail    map[string]bool // "METHOD /path" -> respond 500
}

func newFakeAPI() *fakeAPI {
	f := &fakeAPI{
		calls: make(map[string]int),
		fail:  make(map[string]bool),
	}
	f.srv = httptest.NewServer(http.HandlerFunc(f.handle))
	return f
}

func (f *fakeAPI) close() { f.srv.Close() }

func (f *fakeAPI) count(key string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls[key]
}

func (f *fakeAPI) handle(w http.ResponseWriter, r *http.Request) {
	f.mu.Lock()
	defer f.mu.Unlock()

	key := r.Method + " " + r.URL.Path
	f.calls[key]++

	if f.fail[key] {
		w.WriteHeader(http.StatusInternalServerError)
		_ = json.NewEncoder(w).Encode(map[string]string{"message": "boom"})
		return
	}

	switch {
	case key == "POST /auth/login":
		var payload map[string]string
		_ = json.NewDecoder(r.Body).Decode(&payload)
		if payload["password"] == "wrong" {
			w.WriteHeader(http.StatusUnauthorized)
			_ = json.NewEncoder(w).Encode(map[string]string{"message": "Invalid credentials"})
			return
		}
		_ = json.NewEncoder(w).Encode(map[string]string{"token": "tok-" + payload["role"]})

	case key == "GET /reports" || key == "GET /teacher/reports" || key == "GET /reports/my-reports":
		_ = json.NewEncoder(w).Encode(f.reports)

	case key == "GET /dashboard/stats":
		_ = json.NewEncoder(w).Encode(f.stats)

	case key == "POST /reports/submit-report":
		_ = r.ParseMultipartForm(1 << 20)
		rep := report.Report{ID: "new", ProjectTitle: r.FormValue("projectTitle"), SubmissionDate: time.Now()}
		f.reports = append(f.reports, rep)
		w.WriteHeader(http.StatusCreated)
		_ = json.NewEncoder(w).Encode(rep)

	case r.Method == http.MethodPut && strings.HasSuffix(r.URL.Path, "/approve"):
		f.setReport(reportID(r.URL.Path), func(rep *report.Report) { rep.IsApproved = true })
		_, _ = w.Write([]byte(`{}`))

	case r.Method == http.MethodPut && strings.HasSuffix(r.URL.Path, "/reject"):
		var payload map[string]string
		_ = json.NewDecoder(r.Body).Decode(&payload)
		f.setReport(reportID(r.URL.Path), func(rep *report.Report) {
			rep.Rejected = true
			rep.RejectionReason = payload["reason"]
		})
		_, _ = w.Write([]byte(`{}`))

	case r.Method == http.MethodPost && strings.HasSuffix(r.URL.Path, "/certificate"):
		f.setReport(reportID(r.URL.Path), func(rep *report.Report) { rep.CertificateGenerated = true })
		w.Header().Set("Content-Type", "application/pdf")
		_, _ = w.Write(certificatePDF)

	case r.Method == http.MethodGet && strings.HasSuffix(r.URL.Path, "/pdf"):
		w.Header().Set("Content-Type", "application/pdf")
		_, _ = w.Write([]byte("%PDF-1.4 report"))

	case r.Method == http.MethodDelete && strings.HasPrefix(r.URL.Path, "/reports/"):
		id := strings.TrimPrefix(r.URL.Path, "/reports/")
		kept := f.reports[:0]
		for _, rep := range f.reports {
			if rep.ID != id {
				kept = append(kept, rep)
			}
		}
		f.reports = kept
		_, _ = w.Write([]byte(`{}`))

	case key == "GET /auth/users":
		_ = json.NewEncoder(w).Encode(f.users)

	case key == "POST /auth/users":
		var nu user.NewUser
		_ = json.NewDecoder(r.Body).Decode(&nu)
		for _, usr := range f.users {
			if usr.Email == nu.Email {
				w.WriteHeader(http.StatusConflict)
				_ = json.NewEncoder(w).Encode(map[string]string{"message": "User already exists"})
				return
			}
		}
		f.users = append(f.users, user.User{ID: "u-new", Name: nu.Name, Email: nu.Email, Role: nu.Role})
		w.WriteHeader(http.StatusCreated)
		_, _ = w.Write([]byte(`{}`))

	case r.Method == http.MethodDelete && strings.HasPrefix(r.URL.Path, "/auth/users/"):
		id := strings.TrimPrefix(r.URL.Path, "/auth/users/")
		kept := f.users[:0]
		for _, usr := range f.users {
			if usr.ID != id {
				kept = append(kept, usr)
			}
		}
		f.users = kept
		_, _ = w.Write([]byte(`{}`))

	default:
		w.WriteHeader(http.StatusNotFound)
		_ = json.NewEncoder(w).Encode(map[string]string{"message": "not found"})
	}
}

func (f *fakeAPI) setReport(id string, fn func(*report.Report)) {
	for i := range f.reports {
		if f.reports[i].ID == id {
			fn(&f.reports[i])
		}
	}
}

// reportID extracts the ID out of /reports/:id/<action>.
func reportID(path string) string {
	parts := strings.Split(strings.Trim(path, "/"), "/")
	if len(parts) < 2 {
		return ""
	}
	return parts[1]
}

func setup(t *testing.T) (*Server, *fakeAPI) {
	t.Helper()

	api := newFakeAPI()
	t.Cleanup(api.close)

	conf := &core.Config{
		Env:       "TEST",
		TestMode:  true,
		AppName:   "Ripoti",
		SecretKey: "test-secret",
		// long enough that background ticks never fire mid-test
		PollInterval: time.Minute,
		SessionTTL:   time.Hour,
	}
	conf.API.BaseURL = api.srv.URL
	conf.Server.Addr = ":0"
	conf.Server.ShutdownTimeout = time.Second

	server := NewServer(ServerDeps{
		Conf:   conf,
		Logger: logsvc.NewConsoleLogger(nil),
		Client: reportapi.NewClient(api.srv.URL),
	})
	t.Cleanup(server.watchers.Close)
	return server, api
}

func newSession(role user.Role) user.Session {
	return user.Session{Token: "tok-" + string(role), Name: "Test " + role.DisplayName(), Role: role}
}

// authRequest builds a request carrying a sealed session cookie for sess.
func authRequest(t *testing.T, s *Server, sess user.Session, method, path string, body ...string) (*http.Request, *httptest.ResponseRecorder) {
	t.Helper()

	var reader *strings.Reader
	if len(body) > 0 {
		reader = strings.NewReader(body[0])
	} else {
		reader = strings.NewReader("")
	}
	req := httptest.NewRequest(method, path, reader)
	if method == http.MethodPost {
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	}

	value, err := s.sessions.seal(sess)
	if err != nil {
		t.Fatalf("sealing session: %v", err)
	}
	req.AddCookie(&http.Cookie{Name: sessionCookie, Value: value})

	rec := httptest.NewRecorder()
	return req, rec
}

func newRequest(method, path string, body ...string) (*http.Request, *httptest.ResponseRecorder) {
	var reader *strings.Reader
	if len(body) > 0 {
		reader = strings.NewReader(body[0])
	} else {
		reader = strings.NewReader("")
	}
	req := httptest.NewRequest(method, path, reader)
	if method == http.MethodPost {
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	}
	rec := httptest.NewRecorder()
	return req, rec
}

// withCookie copies a named Set-Cookie value from a previous response onto req.
func withCookie(req *http.Request, rec *httptest.ResponseRecorder, name string) *http.Request {
	for _, cookie := range rec.Result().Cookies() {
		if cookie.Name == name {
			req.AddCookie(cookie)
		}
	}
	return req
}

func checkRedirect(t *testing.T, rec *httptest.ResponseRecorder, wantLocation string) {
	t.Helper()
	if rec.Code != http.StatusFound {
		t.Fatalf("code = %d; want 302 (body: %s)", rec.Code, rec.Body.String())
	}
	if got := rec.Header().Get("Location"); got != wantLocation {
		t.Errorf("Location = %q; want %q", got, wantLocation)
	}
}

func checkContains(t *testing.T, rec *httptest.ResponseRecorder, want string) {
	t.Helper()
	if !strings.Contains(rec.Body.String(), want) {
		t.Errorf("body does not contain %q", want)
	}
}

func checkNotContains(t *testing.T, rec *httptest.ResponseRecorder, unwanted string) {
	t.Helper()
	if strings.Contains(rec.Body.String(), unwanted) {
		t.Errorf("body unexpectedly contains %q", unwanted)
	}
}

// flashValue returns the decoded pending flash set by a response, if any.
func flashValue(rec *httptest.ResponseRecorder) string {
	for _, cookie := range rec.Result().Cookies() {
		if cookie.Name == flashCookie && cookie.MaxAge >= 0 {
			value, _ := url.QueryUnescape(cookie.Value)
			return value
		}
	}
	return ""
}
