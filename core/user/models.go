package user

import (
	"github.com/pkg/errors"

	"github.com/trezcool/ripoti/core"
)

// Roles, as understood by the remote API.
const (
	RoleStudent Role = "student"
	RoleTeacher Role = "teacher"
	RoleAdmin   Role = "admin"
)

var (
	AllRoles = []Role{RoleStudent, RoleTeacher, RoleAdmin}

	ErrUnknownRole = errors.New("unknown role")

	displayNames = map[Role]string{
		RoleStudent: "Student",
		RoleTeacher: "Teacher",
		RoleAdmin:   "Admin",
	}
)

type Role string

func ParseRole(s string) (Role, error) {
	role := Role(core.CleanString(s, true /* lower */))
	if !role.Valid() {
		return "", ErrUnknownRole
	}
	return role, nil
}

func (r Role) Valid() bool {
	_, ok := displayNames[r]
	return ok
}

func (r Role) DisplayName() string {
	return displayNames[r]
}

// DashboardPath is the portal route of this role's dashboard shell.
func (r Role) DashboardPath() string {
	return "/" + string(r)
}

type User struct {
	ID       string `json:"_id"`
	Name     string `json:"name"`
	Email    string `json:"email"`
	Username string `json:"username"`
	Role     Role   `json:"role"`
}

// NewUser contains information needed to register a new User with the remote
// API. The API derives the username from the email's local part and assigns
// the default password; neither is sent by the portal.
type NewUser struct {
	Name  string `json:"name" validate:"required"`
	Email string `json:"email" validate:"required,email"`
	Role  Role   `json:"role" validate:"required,portalrole"`
}

func (nu *NewUser) Validate() error {
	nu.Name = core.CleanString(nu.Name)
	nu.Email = core.CleanString(nu.Email, true /* lower */)
	return core.Validate.Struct(nu)
}
