package echoportal

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/trezcool/ripoti/core/user"
	"github.com/trezcool/ripoti/services/reportapi"
)

type authView struct {
	server *Server
	client *reportapi.Client
}

type loginForm struct {
	Role     string `form:"role"`
	Username string `form:"username"`
	Password string `form:"password"`
}

func (v authView) loginPage(c echo.Context) error {
	// an already signed-in visitor goes straight to their shell
	if sess, err := v.server.sessions.get(c); err == nil && !sess.IsZero() {
		return c.Redirect(http.StatusFound, sess.Role.DashboardPath())
	}
	return c.Render(http.StatusOK, "login", v.server.view(c, page{
		"Roles":    user.AllRoles,
		"Role":     "",
		"Username": "",
	}))
}

func (v authView) login(c echo.Context) error {
	var form loginForm
	if err := c.Bind(&form); err != nil {
		return err
	}

	// local validation: no credentials leave the portal until the form is whole
	renderErr := func(msg string) error {
		return c.Render(http.StatusOK, "login", v.server.view(c, page{
			"Roles":    user.AllRoles,
			"Error":    msg,
			"Role":     form.Role,
			"Username": form.Username,
		}))
	}
	if form.Role == "" {
		return renderErr("Please select a role")
	}
	if form.Username == "" || form.Password == "" {
		return renderErr("Please enter both username and password")
	}
	role, err := user.ParseRole(form.Role)
	if err != nil {
		return renderErr("Unknown role")
	}

	token, err := v.client.Login(c.Request().Context(), role, form.Username, form.Password)
	if err != nil {
		msg := "Login failed. Please try again."
		if authErr, ok := errors.Cause(err).(*reportapi.AuthError); ok && authErr.Message != "" {
			msg = authErr.Message
		}
		return renderErr(msg)
	}

	sess := user.NewSession(token, role)
	if err = v.server.sessions.set(c, sess); err != nil {
		return err
	}
	v.server.watchers.ensure(sess)
	return c.Redirect(http.StatusFound, role.DashboardPath())
}

func (v authView) logoutConfirm(c echo.Context) error {
	sess, err := v.server.sessions.get(c)
	if err != nil {
		return c.Redirect(http.StatusFound, "/")
	}
	c.Set(contextSessionKey, sess)
	return c.Render(http.StatusOK, "confirm", v.server.view(c, page{
		"Title":     "Log out",
		"Message":   "Are you sure you want to log out?",
		"Action":    "/logout",
		"CancelURL": sess.Role.DashboardPath(),
		"Token":     newConfirmToken(c),
	}))
}

func (v authView) logout(c echo.Context) error {
	sess, err := v.server.sessions.get(c)
	if err != nil {
		return c.Redirect(http.StatusFound, "/")
	}
	if !confirmTokenValid(c) {
		return c.Redirect(http.StatusFound, sess.Role.DashboardPath())
	}
	v.server.watchers.stop(sess.Token)
	v.server.sessions.clear(c)
	return c.Redirect(http.StatusFound, "/")
}
