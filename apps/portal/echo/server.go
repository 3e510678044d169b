package echoportal

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/labstack/gommon/log"

	"github.com/trezcool/ripoti/core"
	"github.com/trezcool/ripoti/core/user"
	"github.com/trezcool/ripoti/services/reportapi"
)

type (
	ServerDeps struct {
		Conf   *core.Config
		Logger core.Logger
		Client *reportapi.Client
	}

	Server struct {
		deps     ServerDeps
		app      *echo.Echo
		sessions *sessionCodec
		watchers *watcherRegistry

		errChan      chan error
		shutdownChan chan os.Signal
	}
)

var _ http.Handler = (*Server)(nil)

func NewServer(deps ServerDeps) *Server {
	s := &Server{
		deps:         deps,
		app:          echo.New(),
		sessions:     newSessionCodec(deps.Conf),
		watchers:     newWatcherRegistry(deps.Client, deps.Logger, deps.Conf.PollInterval, deps.Conf.SessionTTL),
		errChan:      make(chan error, 1),
		shutdownChan: make(chan os.Signal, 1),
	}
	signal.Notify(s.shutdownChan, os.Interrupt, syscall.SIGTERM)
	s.setup()
	return s
}

func (s *Server) setup() {
	conf := s.deps.Conf

	s.app.Pre(middleware.RemoveTrailingSlash())
	if !conf.TestMode {
		s.app.Use(middleware.Logger())
	}
	// do not recover in DEV|TEST mode
	if !(conf.Debug || conf.TestMode) {
		s.app.Use(middleware.RecoverWithConfig(middleware.RecoverConfig{LogLevel: log.ERROR}))
	}

	s.app.HTTPErrorHandler = s.newPortalHTTPErrorHandler(s.deps.Logger, s.signalShutdown)
	s.app.Debug = conf.Debug
	s.app.HideBanner = true
	s.app.Renderer = newRenderer()

	auth := authView{server: s, client: s.deps.Client}
	s.app.GET("/", auth.loginPage)
	s.app.POST("/login", auth.login)
	s.app.GET("/logout", auth.logoutConfirm)
	s.app.POST("/logout", auth.logout)

	admin := s.app.Group("/admin", s.sessionRequired(user.RoleAdmin))
	registerDashboardView(admin, s)
	registerUserMgmtView(admin, s)
	registerModerationView(admin, "/reports", "/admin/reports", s)

	teacher := s.app.Group("/teacher", s.sessionRequired(user.RoleTeacher))
	registerTeacherDashboardView(teacher, s)
	registerModerationView(teacher, "/projects", "/teacher/projects", s)

	student := s.app.Group("/student", s.sessionRequired(user.RoleStudent))
	registerStudentView(student, s)
}

// Start runs the listener; fatal errors surface on Errors().
func (s *Server) Start() {
	if err := s.app.Start(s.deps.Conf.Server.Addr); err != nil && err != http.ErrServerClosed {
		s.errChan <- err
	}
}

func (s *Server) Errors() <-chan error { return s.errChan }

func (s *Server) ShutdownSignal() <-chan os.Signal { return s.shutdownChan }

func (s *Server) signalShutdown() {
	s.shutdownChan <- syscall.SIGTERM
}

func (s *Server) Shutdown(ctx context.Context) error {
	s.watchers.Close()
	return s.app.Shutdown(ctx)
}

func (s *Server) Close() error {
	s.watchers.Close()
	return s.app.Close()
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) { // for tests
	s.app.ServeHTTP(w, r)
}
