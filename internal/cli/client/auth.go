package client

import "context"

// LoginRequest represents the login request body
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// RegisterRequest represents the registration request body
type RegisterRequest struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

// AuthResponse is returned by login and register
type AuthResponse struct {
	Message string `json:"message,omitempty"`
	Token   string `json:"token" validate:"required"`
	User    User   `json:"user" validate:"required"`
}

// MeResponse is returned by /auth/me
type MeResponse struct {
	User User `json:"user" validate:"required"`
}

// Login authenticates the user and returns a bearer token
func (c *Client) Login(ctx context.Context, email, password string) (*AuthResponse, error) {
	var resp AuthResponse
	if err := c.Post(ctx, "/auth/login", LoginRequest{Email: email, Password: password}, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// Register creates an account and returns a bearer token
func (c *Client) Register(ctx context.Context, username, email, password string) (*AuthResponse, error) {
	req := RegisterRequest{Username: username, Email: email, Password: password}

	var resp AuthResponse
	if err := c.Post(ctx, "/auth/register", req, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// Me returns the user the current token belongs to
func (c *Client) Me(ctx context.Context) (User, error) {
	var resp MeResponse
	if err := c.Get(ctx, "/auth/me", &resp); err != nil {
		return nil, err
	}
	return resp.User, nil
}
