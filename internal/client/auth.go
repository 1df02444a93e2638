package client

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/go-ozzo/ozzo-validation/v4/is"
)

// SessionInfo is the login/refresh response. The token is stored in the
// active context file; there is no automatic refresh-and-retry on 401.
type SessionInfo struct {
	Token     string `json:"token" yaml:"token"`
	ExpiresAt string `json:"expiresAt,omitempty" yaml:"expiresAt,omitempty"`
	User      User   `json:"user" yaml:"user"`
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (r loginRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Email, validation.Required, is.EmailFormat),
		validation.Field(&r.Password, validation.Required),
	)
}

func (c *API) Login(ctx context.Context, email, password string) (SessionInfo, error) {
	payload := loginRequest{Email: strings.TrimSpace(email), Password: password}
	if err := payload.Validate(); err != nil {
		return SessionInfo{}, fmt.Errorf("validate login: %w", err)
	}
	req, err := c.newJSONRequest(ctx, http.MethodPost, "/admin/login", payload)
	if err != nil {
		return SessionInfo{}, err
	}
	var out SessionInfo
	if err := c.do(req, &out); err != nil {
		return SessionInfo{}, err
	}
	return out, nil
}

func (c *API) Refresh(ctx context.Context) (SessionInfo, error) {
	req, err := c.newRequest(ctx, http.MethodGet, "/admin/refresh", nil)
	if err != nil {
		return SessionInfo{}, err
	}
	var out SessionInfo
	if err := c.do(req, &out); err != nil {
		return SessionInfo{}, err
	}
	return out, nil
}

func (c *API) Logout(ctx context.Context) error {
	req, err := c.newRequest(ctx, http.MethodPost, "/admin/logout", nil)
	if err != nil {
		return err
	}
	return c.do(req, nil)
}

func (c *API) Me(ctx context.Context) (User, error) {
	req, err := c.newRequest(ctx, http.MethodGet, "/admin/me", nil)
	if err != nil {
		return User{}, err
	}
	var out struct {
		User User `json:"user"`
	}
	if err := c.do(req, &out); err != nil {
		return User{}, err
	}
	return out.User, nil
}
