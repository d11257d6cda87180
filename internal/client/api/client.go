// Package api is the HTTP client for the tool rental API.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/toolrent/rental-system/internal/client/session"
)

const defaultTimeout = 15 * time.Second

// ErrNotAuthenticated is returned before a protected call when no usable
// token is stored.
var ErrNotAuthenticated = errors.New("not logged in")

// Error is a non-2xx reply; Message is the server's {"message"} text.
type Error struct {
	Status  int
	Message string
}

func (e *Error) Error() string {
	return fmt.Sprintf("%d: %s", e.Status, e.Message)
}

// IsUnauthorized reports whether err is a 401 reply.
func IsUnauthorized(err error) bool {
	var apiErr *Error
	return errors.As(err, &apiErr) && apiErr.Status == http.StatusUnauthorized
}

type Profile struct {
	UserID int64  `json:"user_id"`
	Name   string `json:"name"`
	Email  string `json:"email"`
}

type Tool struct {
	ID          int64   `json:"tool_id"`
	Name        string  `json:"name"`
	Price       float64 `json:"price"`
	Quantity    int     `json:"quantity"`
	Image       *string `json:"image"`
	Description *string `json:"description"`
}

type Client struct {
	baseURL string
	http    *http.Client
	session *session.Session
}

func New(baseURL string, sess *session.Session, httpClient *http.Client) *Client {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: defaultTimeout}
	}
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    httpClient,
		session: sess,
	}
}

// Signup registers a new account and returns the server's message.
func (c *Client) Signup(ctx context.Context, name, email, password string) (string, error) {
	var out struct {
		Message string `json:"message"`
	}
	err := c.do(ctx, http.MethodPost, "/signup", "", map[string]string{
		"name":     name,
		"email":    email,
		"password": password,
	}, &out)
	return out.Message, err
}

// Login authenticates and stores the returned token.
func (c *Client) Login(ctx context.Context, email, password string) (*Profile, error) {
	var out struct {
		Token string  `json:"token"`
		User  Profile `json:"user"`
	}
	if err := c.do(ctx, http.MethodPost, "/login", "", map[string]string{
		"email":    email,
		"password": password,
	}, &out); err != nil {
		return nil, err
	}
	if out.Token == "" {
		return nil, errors.New("login: server returned no token")
	}
	if err := c.session.Store(out.Token); err != nil {
		return nil, fmt.Errorf("store token: %w", err)
	}
	return &out.User, nil
}

// Logout forgets the stored token. Tokens are stateless, so the server is
// not contacted.
func (c *Client) Logout() error {
	return c.session.Clear()
}

// Profile fetches the current user. A 401 clears the stored token.
func (c *Client) Profile(ctx context.Context) (*Profile, error) {
	token, ok := c.session.Token()
	if !ok {
		return nil, ErrNotAuthenticated
	}

	var out struct {
		User Profile `json:"user"`
	}
	if err := c.do(ctx, http.MethodGet, "/profile", token, nil, &out); err != nil {
		if IsUnauthorized(err) {
			_ = c.session.Clear()
		}
		return nil, err
	}
	return &out.User, nil
}

func (c *Client) Products(ctx context.Context) ([]Tool, error) {
	var out []Tool
	if err := c.do(ctx, http.MethodGet, "/products", "", nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) do(ctx context.Context, method, path, token string, in, out any) error {
	var body io.Reader
	if in != nil {
		b, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("encode request: %w", err)
		}
		body = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", token)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		var e struct {
			Message string `json:"message"`
		}
		_ = json.NewDecoder(io.LimitReader(resp.Body, 64<<10)).Decode(&e)
		if e.Message == "" {
			e.Message = http.StatusText(resp.StatusCode)
		}
		return &Error{Status: resp.StatusCode, Message: e.Message}
	}

	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode %s response: %w", path, err)
	}
	return nil
}
