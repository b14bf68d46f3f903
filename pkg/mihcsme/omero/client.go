// Package omero is an HTTP client for the OMERO.web JSON API and the
// OMERO.forms plugin. It covers the slice of the API this project needs:
// session login, map annotations on hierarchy objects, plate/well listing,
// and form data. The server itself is external; this package only speaks
// its documented web endpoints.
package omero

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"strings"

	"go.uber.org/zap"
)

const apiVersion = "0"

// Client is an authenticated session against an OMERO.web server.
// Create one with NewClient, call Login before any other method, and
// Logout on every exit path.
type Client struct {
	baseURL  string
	username string
	password string
	serverID int
	http     *http.Client
	log      *zap.Logger
	loggedIn bool
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient replaces the underlying HTTP client. The client's Jar is
// overwritten because the session depends on cookies.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.http = hc }
}

// WithLogger sets the logger. Defaults to zap.NewNop().
func WithLogger(log *zap.Logger) Option {
	return func(c *Client) { c.log = log }
}

// WithServerID selects the OMERO server index configured in OMERO.web
// (default 1).
func WithServerID(id int) Option {
	return func(c *Client) { c.serverID = id }
}

// NewClient creates a client for the OMERO.web server at baseURL.
func NewClient(baseURL, username, password string, opts ...Option) (*Client, error) {
	if _, err := url.Parse(baseURL); err != nil {
		return nil, fmt.Errorf("invalid base URL %q: %w", baseURL, err)
	}

	c := &Client{
		baseURL:  strings.TrimRight(baseURL, "/"),
		username: username,
		password: password,
		serverID: 1,
		log:      zap.NewNop(),
	}
	for _, opt := range opts {
		opt(c)
	}

	if c.http == nil {
		c.http = &http.Client{}
	}
	jar, err := cookiejar.New(nil)
	if err != nil {
		return nil, err
	}
	c.http.Jar = jar

	return c, nil
}

// Login authenticates against the server: fetch a CSRF token, then post
// credentials. The session lives in the cookie jar afterwards.
func (c *Client) Login(ctx context.Context) error {
	if err := c.get(ctx, fmt.Sprintf("/api/v%s/token/", apiVersion), nil, nil); err != nil {
		return fmt.Errorf("fetching CSRF token: %w", err)
	}

	form := url.Values{
		"username":            {c.username},
		"password":            {c.password},
		"server":              {fmt.Sprintf("%d", c.serverID)},
		"csrfmiddlewaretoken": {c.csrfToken()},
	}

	var result struct {
		Success bool   `json:"success"`
		Message string `json:"message"`
	}
	if err := c.postForm(ctx, fmt.Sprintf("/api/v%s/login/", apiVersion), form, &result); err != nil {
		return fmt.Errorf("login request: %w", err)
	}
	if !result.Success {
		msg := result.Message
		if msg == "" {
			msg = "unknown error"
		}
		return fmt.Errorf("login failed: %s", msg)
	}

	c.loggedIn = true
	c.log.Info("Logged in to OMERO.web",
		zap.String("server", c.baseURL),
		zap.String("username", c.username))
	return nil
}

// Logout ends the web session. Safe to call when not logged in.
func (c *Client) Logout(ctx context.Context) error {
	if !c.loggedIn {
		return nil
	}
	c.loggedIn = false
	if err := c.get(ctx, "/webclient/logout/", nil, nil); err != nil {
		return err
	}
	c.log.Info("Logged out from OMERO.web", zap.String("server", c.baseURL))
	return nil
}

// csrfToken returns the current CSRF token from the cookie jar.
func (c *Client) csrfToken() string {
	u, err := url.Parse(c.baseURL)
	if err != nil {
		return ""
	}
	for _, cookie := range c.http.Jar.Cookies(u) {
		if cookie.Name == "csrftoken" {
			return cookie.Value
		}
	}
	return ""
}

func (c *Client) requireSession() error {
	if !c.loggedIn {
		return ErrNotLoggedIn
	}
	return nil
}

// get performs a GET request and decodes the JSON response into out when
// out is non-nil.
func (c *Client) get(ctx context.Context, path string, query url.Values, out any) error {
	u := c.baseURL + path
	if len(query) > 0 {
		u += "?" + query.Encode()
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return err
	}
	return c.do(req, out)
}

// postForm performs a form-encoded POST with the CSRF header set.
func (c *Client) postForm(ctx context.Context, path string, form url.Values, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, strings.NewReader(form.Encode()))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	c.setCSRF(req)
	return c.do(req, out)
}

// postJSON performs a JSON POST with the CSRF header set.
func (c *Client) postJSON(ctx context.Context, path string, body any, out any) error {
	data, err := json.Marshal(body)
	if err != nil {
		return err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, strings.NewReader(string(data)))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	c.setCSRF(req)
	return c.do(req, out)
}

func (c *Client) setCSRF(req *http.Request) {
	if token := c.csrfToken(); token != "" {
		req.Header.Set("X-CSRFToken", token)
	}
	req.Header.Set("Referer", c.baseURL)
}

func (c *Client) do(req *http.Request, out any) error {
	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return err
	}

	if resp.StatusCode >= 400 {
		return &APIError{
			StatusCode: resp.StatusCode,
			Method:     req.Method,
			URL:        req.URL.String(),
			Message:    errorMessage(body),
		}
	}

	if out == nil || len(body) == 0 {
		return nil
	}
	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("decoding response from %s: %w", req.URL.Path, err)
	}
	return nil
}

// errorMessage extracts a human-readable message from an error response
// body, which may be JSON or plain text.
func errorMessage(body []byte) string {
	var payload struct {
		Message string `json:"message"`
	}
	if err := json.Unmarshal(body, &payload); err == nil && payload.Message != "" {
		return payload.Message
	}
	msg := strings.TrimSpace(string(body))
	if len(msg) > 200 {
		msg = msg[:200]
	}
	return msg
}
