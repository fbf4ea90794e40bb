package api

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"fintrack/fintrack/internal/models"
)

// Login exchanges credentials for a token. The backend expects an OAuth2
// password form, not JSON. The request is sent without the current token,
// so rejected credentials leave an existing session alone.
func (c *Client) Login(ctx context.Context, username, password string) (models.Token, error) {
	form := url.Values{
		"username": []string{username},
		"password": []string{password},
	}
	_, body, err := c.do(ctx, request{
		method:      http.MethodPost,
		path:        "/auth/login",
		body:        strings.NewReader(form.Encode()),
		contentType: "application/x-www-form-urlencoded",
		anonymous:   true,
	})
	if err != nil {
		return models.Token{}, fmt.Errorf("login: %w", err)
	}

	var token models.Token
	if err := decode("/auth/login", body, &token); err != nil {
		return models.Token{}, fmt.Errorf("login: %w", err)
	}
	if token.AccessToken == "" {
		return models.Token{}, fmt.Errorf("login: backend returned no access token")
	}
	return token, nil
}

// Register creates an account.
func (c *Client) Register(ctx context.Context, r models.Registration) (models.User, error) {
	var user models.User
	req := request{method: http.MethodPost, path: "/auth/register", anonymous: true}
	if err := c.send(ctx, req, r, &user); err != nil {
		return models.User{}, fmt.Errorf("register %s: %w", r.Email, err)
	}
	return user, nil
}

// Me returns the account the current token belongs to.
func (c *Client) Me(ctx context.Context) (models.User, error) {
	var user models.User
	if err := c.getJSON(ctx, "/auth/me", nil, &user); err != nil {
		return models.User{}, fmt.Errorf("current user: %w", err)
	}
	return user, nil
}

var (
	_ Backend       = (*Client)(nil)
	_ Authenticator = (*Client)(nil)
)
