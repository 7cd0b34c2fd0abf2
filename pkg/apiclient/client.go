// Package apiclient is the Go consumer of the hostadmin REST API. It owns the
// session: tokens live in an injected TokenStore, every request carries the
// bearer token, and a 401 triggers exactly one silent refresh-and-retry
// before the session is declared expired.
package apiclient

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/go-resty/resty/v2"
)

// ErrSessionExpired is returned once the refresh path is exhausted. The
// caller is expected to route the user back to login.
var ErrSessionExpired = errors.New("session expired, sign in again")

// APIError carries the server's structured error envelope.
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("api error %d: %s", e.StatusCode, e.Message)
}

type TokenPair struct {
	AccessToken  string `json:"accessToken"`
	RefreshToken string `json:"refreshToken"`
}

type User struct {
	ID         uint    `json:"id"`
	FullName   string  `json:"full_name"`
	Email      *string `json:"email"`
	Phone      *string `json:"phone"`
	UserType   string  `json:"user_type"`
	PropertyID *uint   `json:"property_id"`
	IsActive   bool    `json:"is_active"`
	Roles      []Role  `json:"roles"`
}

type Role struct {
	ID   uint   `json:"id"`
	Name string `json:"name"`
}

type envelope struct {
	Success bool      `json:"success"`
	Message string    `json:"message"`
	User    *User     `json:"user"`
	Tokens  TokenPair `json:"tokens"`
}

type Client struct {
	http             *resty.Client
	store            TokenStore
	onSessionExpired func()
}

type Option func(*Client)

// WithSessionExpiredHandler installs the redirect-to-login analogue, invoked
// once after the store has been cleared.
func WithSessionExpiredHandler(fn func()) Option {
	return func(c *Client) { c.onSessionExpired = fn }
}

func WithTimeout(d time.Duration) Option {
	return func(c *Client) { c.http.SetTimeout(d) }
}

// New builds a client around the given token store. The store is the single
// source of truth for the session; no package-level state is involved.
func New(baseURL string, store TokenStore, opts ...Option) *Client {
	c := &Client{
		store: store,
		http: resty.New().
			SetBaseURL(baseURL).
			SetTimeout(30 * time.Second).
			SetHeader("Content-Type", "application/json"),
	}

	// Request interceptor: attach the current access token.
	c.http.OnBeforeRequest(func(_ *resty.Client, req *resty.Request) error {
		if access, _ := c.store.Tokens(); access != "" {
			req.SetHeader("Authorization", "Bearer "+access)
		}
		return nil
	})

	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Login authenticates and stores the issued pair. A 401 here is a credential
// problem, never a refresh trigger.
func (c *Client) Login(ctx context.Context, email, password string) (*User, error) {
	resp, err := c.http.R().SetContext(ctx).
		SetBody(map[string]string{"email": email, "password": password}).
		Post("/api/auth/login")
	if err != nil {
		return nil, err
	}

	env, err := decode(resp)
	if err != nil {
		return nil, err
	}
	c.store.Set(env.Tokens.AccessToken, env.Tokens.RefreshToken)
	return env.User, nil
}

type RegisterInput struct {
	FullName   string  `json:"full_name"`
	Email      string  `json:"email"`
	Phone      *string `json:"phone,omitempty"`
	Password   string  `json:"password"`
	UserType   string  `json:"user_type,omitempty"`
	PropertyID *uint   `json:"property_id,omitempty"`
}

func (c *Client) Register(ctx context.Context, input RegisterInput) (*User, error) {
	var env envelope
	if err := c.Do(ctx, http.MethodPost, "/api/auth/register", input, &env); err != nil {
		return nil, err
	}
	return env.User, nil
}

// Logout revokes the refresh token server-side and clears the store. A remote
// failure is swallowed: local cleanup must always happen.
func (c *Client) Logout(ctx context.Context) {
	_, _ = c.http.R().SetContext(ctx).Post("/api/auth/logout")
	c.store.Clear()
}

func (c *Client) Profile(ctx context.Context) (*User, error) {
	var env envelope
	if err := c.Do(ctx, http.MethodGet, "/api/auth/profile", nil, &env); err != nil {
		return nil, err
	}
	return env.User, nil
}

func (c *Client) ChangePassword(ctx context.Context, current, updated string) error {
	body := map[string]string{"current_password": current, "new_password": updated}
	return c.Do(ctx, http.MethodPatch, "/api/auth/password", body, nil)
}

// Do performs an authenticated request with the single refresh-and-retry
// cycle. out, when non-nil, receives the decoded JSON body.
func (c *Client) Do(ctx context.Context, method, path string, body, out any) error {
	return c.do(ctx, method, path, body, out, false)
}

func (c *Client) do(ctx context.Context, method, path string, body, out any, retried bool) error {
	req := c.http.R().SetContext(ctx)
	if body != nil {
		req.SetBody(body)
	}

	resp, err := req.Execute(method, path)
	if err != nil {
		return err
	}

	if resp.StatusCode() == http.StatusUnauthorized {
		// One silent refresh, then one retry. The retried flag stops the
		// loop when the new token is rejected too.
		if retried || c.refresh(ctx) != nil {
			c.expireSession()
			return ErrSessionExpired
		}
		return c.do(ctx, method, path, body, out, true)
	}

	if resp.IsError() {
		return apiError(resp)
	}
	if out != nil {
		return json.Unmarshal(resp.Body(), out)
	}
	return nil
}

func (c *Client) refresh(ctx context.Context) error {
	_, refreshToken := c.store.Tokens()
	if refreshToken == "" {
		return errors.New("no refresh token stored")
	}

	resp, err := c.http.R().SetContext(ctx).
		SetBody(map[string]string{"refreshToken": refreshToken}).
		Post("/api/auth/refresh-token")
	if err != nil {
		return err
	}

	env, err := decode(resp)
	if err != nil {
		return err
	}
	c.store.Set(env.Tokens.AccessToken, env.Tokens.RefreshToken)
	return nil
}

func (c *Client) expireSession() {
	c.store.Clear()
	if c.onSessionExpired != nil {
		c.onSessionExpired()
	}
}

func decode(resp *resty.Response) (*envelope, error) {
	if resp.IsError() {
		return nil, apiError(resp)
	}
	var env envelope
	if err := json.Unmarshal(resp.Body(), &env); err != nil {
		return nil, err
	}
	return &env, nil
}

func apiError(resp *resty.Response) error {
	var env envelope
	message := resp.Status()
	if err := json.Unmarshal(resp.Body(), &env); err == nil && env.Message != "" {
		message = env.Message
	}
	return &APIError{StatusCode: resp.StatusCode(), Message: message}
}
