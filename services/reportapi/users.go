package reportapi

import (
	"context"
	"net/http"

	"github.com/trezcool/ripoti/core/user"
)

// Login exchanges credentials for a bearer token. Any rejection comes back as
// an *AuthError carrying the server's message verbatim.
func (c *Client) Login(ctx context.Context, role user.Role, username, password string) (string, error) {
	payload := struct {
		Username string `json:"username"`
		Password string `json:"password"`
		Role     string `json:"role"`
	}{Username: username, Password: password, Role: string(role)}

	var res struct {
		Token string `json:"token"`
	}
	if err := c.doJSON(ctx, http.MethodPost, "/auth/login", user.Session{}, payload, &res); err != nil {
		if apiErr, ok := err.(*APIError); ok {
			// login rejections are auth failures whatever status the server picked
			return "", &AuthError{Message: apiErr.Message}
		}
		return "", err
	}
	return res.Token, nil
}

// Users lists all registered users (admin only).
func (c *Client) Users(ctx context.Context, sess user.Session) ([]user.User, error) {
	var users []user.User
	err := c.doJSON(ctx, http.MethodGet, "/auth/users", sess, nil, &users)
	return users, err
}

// AddUser registers a new user; the API derives the username from the email
// and assigns the default password. A taken email/username is a *ConflictError.
func (c *Client) AddUser(ctx context.Context, sess user.Session, nu user.NewUser) error {
	return c.doJSON(ctx, http.MethodPost, "/auth/users", sess, nu, nil)
}

// DeleteUser removes a user record.
func (c *Client) DeleteUser(ctx context.Context, sess user.Session, id string) error {
	return c.doJSON(ctx, http.MethodDelete, "/auth/users/"+id, sess, nil, nil)
}
