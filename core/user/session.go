package user

import (
	"github.com/dgrijalva/jwt-go"

	"github.com/trezcool/ripoti/core"
)

// Session is the portal-side state of a logged-in user: the opaque bearer
// token plus the display name and role decoded from it.
type Session struct {
	Token string `json:"token"`
	Name  string `json:"name"`
	Role  Role   `json:"role"`
}

func (s Session) IsZero() bool { return s.Token == "" }

// tokenClaims is the subset of the API token's claims the portal displays.
type tokenClaims struct {
	jwt.StandardClaims
	Name     string `json:"name,omitempty"`
	Username string `json:"username,omitempty"`
	Role     string `json:"role,omitempty"`
}

// NewSession builds a Session from a freshly issued bearer token.
// The token is signed with a key only the remote API holds, so claims are
// decoded without verification; a token that does not decode still yields a
// usable Session with the role's generic display name.
func NewSession(token string, role Role) Session {
	sess := Session{Token: token, Role: role, Name: role.DisplayName()}

	claims := new(tokenClaims)
	if _, _, err := new(jwt.Parser).ParseUnverified(token, claims); err != nil {
		return sess
	}
	if name := core.CleanString(claims.Name); name != "" {
		sess.Name = name
	} else if uname := core.CleanString(claims.Username); uname != "" {
		sess.Name = uname
	}
	return sess
}
