package echoportal

import (
	"net/http"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/trezcool/ripoti/core"
	"github.com/trezcool/ripoti/core/user"
	"github.com/trezcool/ripoti/services/reportapi"
)

// userMgmtView is the admin's account administration page.
type userMgmtView struct {
	server *Server
}

func registerUserMgmtView(g *echo.Group, s *Server) {
	v := userMgmtView{server: s}
	g.GET("/user-management", v.list)
	g.POST("/users", v.add)
	g.GET("/users/:id/delete", v.deleteConfirm)
	g.POST("/users/:id/delete", v.delete)
}

func (v userMgmtView) list(c echo.Context) error {
	sess, err := getContextSession(c)
	if err != nil {
		return err
	}

	var fetchErr string
	users, err := v.server.deps.Client.Users(c.Request().Context(), sess)
	if err != nil {
		if reportapi.IsAuth(errors.Cause(err)) {
			return err
		}
		fetchErr = "Failed to load users."
	}

	return c.Render(http.StatusOK, "admin_users", v.server.view(c, page{
		"Users": users,
		"Roles": user.AllRoles,
		"Error": fetchErr,
	}))
}

func (v userMgmtView) add(c echo.Context) error {
	sess, err := getContextSession(c)
	if err != nil {
		return err
	}

	nu := user.NewUser{
		Name:  c.FormValue("name"),
		Email: c.FormValue("email"),
		Role:  user.Role(c.FormValue("role")),
	}
	if err = nu.Validate(); err != nil {
		msg := "Failed to add user."
		if vErrs, ok := errors.Cause(err).(validator.ValidationErrors); ok {
			msgs := make([]string, 0, len(vErrs))
			for _, vErr := range vErrs {
				msgs = append(msgs, vErr.Field()+" "+vErr.Translate(core.Translator))
			}
			msg = strings.Join(msgs, "; ")
		}
		flashError(c, msg)
		return c.Redirect(http.StatusFound, "/admin/user-management")
	}

	if err = v.server.deps.Client.AddUser(c.Request().Context(), sess, nu); err != nil {
		if reportapi.IsConflict(errors.Cause(err)) {
			flashError(c, "User already exists with this email or username.")
		} else {
			flashError(c, "Failed to add user.")
		}
		return c.Redirect(http.StatusFound, "/admin/user-management")
	}
	flashSuccess(c, "User added successfully!")
	return c.Redirect(http.StatusFound, "/admin/user-management")
}

func (v userMgmtView) deleteConfirm(c echo.Context) error {
	sess, err := getContextSession(c)
	if err != nil {
		return err
	}
	users, err := v.server.deps.Client.Users(c.Request().Context(), sess)
	if err != nil {
		flashError(c, "Failed to load users.")
		return c.Redirect(http.StatusFound, "/admin/user-management")
	}

	id := c.Param("id")
	for _, usr := range users {
		if usr.ID == id {
			return c.Render(http.StatusOK, "confirm", v.server.view(c, page{
				"Title":     "Delete user",
				"Message":   "Delete the account of " + usr.Name + " (" + usr.Email + ")? This cannot be undone.",
				"Action":    "/admin/users/" + usr.ID + "/delete",
				"CancelURL": "/admin/user-management",
				"Token":     newConfirmToken(c),
			}))
		}
	}
	return c.Redirect(http.StatusFound, "/admin/user-management")
}

func (v userMgmtView) delete(c echo.Context) error {
	sess, err := getContextSession(c)
	if err != nil {
		return err
	}
	if !confirmTokenValid(c) {
		return c.Redirect(http.StatusFound, "/admin/user-management")
	}
	if err = v.server.deps.Client.DeleteUser(c.Request().Context(), sess, c.Param("id")); err != nil {
		flashError(c, "Failed to delete user.")
		return c.Redirect(http.StatusFound, "/admin/user-management")
	}
	flashSuccess(c, "User deleted.")
	return c.Redirect(http.StatusFound, "/admin/user-management")
}
