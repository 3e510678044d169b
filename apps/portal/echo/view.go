package echoportal

import (
	"github.com/labstack/echo/v4"

	"github.com/trezcool/ripoti/core/user"
)

type page map[string]interface{}

type navLink struct {
	Href  string
	Label string
}

func navFor(role user.Role) (string, []navLink) {
	switch role {
	case user.RoleAdmin:
		return "Admin Panel", []navLink{
			{Href: "/admin/dashboard", Label: "Dashboard"},
			{Href: "/admin/user-management", Label: "Manage Users"},
			{Href: "/admin/reports", Label: "Reports"},
		}
	case user.RoleTeacher:
		return "Teacher Panel", []navLink{
			{Href: "/teacher/dashboard", Label: "Dashboard"},
			{Href: "/teacher/projects", Label: "Manage Reports"},
		}
	case user.RoleStudent:
		return "Student Panel", []navLink{
			{Href: "/student/dashboard", Label: "Dashboard"},
		}
	}
	return "", nil
}

// view assembles the base template data for a request: app identity, the
// signed-in session and its shell navigation, and any pending flash.
func (s *Server) view(c echo.Context, extra page) page {
	data := page{
		"AppName":        s.deps.Conf.AppName,
		"Path":           c.Request().URL.Path,
		"RefreshSeconds": int(s.deps.Conf.PollInterval.Seconds()),
	}
	if f := popFlash(c); f != nil {
		data["Flash"] = f
	}
	if sess, err := getContextSession(c); err == nil {
		data["Sess"] = sess
		title, links := navFor(sess.Role)
		data["PanelTitle"] = title
		data["Nav"] = links
	}
	for k, v := range extra {
		data[k] = v
	}
	return data
}
