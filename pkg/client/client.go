// Package client talks to the food delivery API and keeps a local cache so
// reads keep working and writes are queued while the API is unreachable.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync"
	"time"
)

// ErrOffline wraps transport failures: the request never got an HTTP answer.
var ErrOffline = errors.New("api unreachable")

// APIError is a non-2xx answer from the API.
type APIError struct {
	Status  int
	Message string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("api error %d: %s", e.Status, e.Message)
}

func IsOffline(err error) bool { return errors.Is(err, ErrOffline) }

type Client struct {
	baseURL    string
	httpClient *http.Client
	store      LocalStore

	mu      sync.Mutex
	session *Session
	now     func() time.Time
}

type Option func(*Client)

func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.httpClient = hc }
}

func New(baseURL string, store LocalStore, opts ...Option) *Client {
	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		store:   store,
		httpClient: &http.Client{
			Timeout: 5 * time.Second,
			Transport: &http.Transport{
				MaxIdleConns:        100,
				MaxIdleConnsPerHost: 10,
				IdleConnTimeout:     90 * time.Second,
			},
		},
		now: time.Now,
	}
	for _, o := range opts {
		o(c)
	}
	return c
}

func (c *Client) Store() LocalStore { return c.store }

// Session returns the stored sign-in, if any.
func (c *Client) Session(ctx context.Context) *Session {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.session == nil {
		s := load[Session](ctx, c.store, KeyUser)
		if s.AccessToken == "" && s.RefreshToken == "" {
			return nil
		}
		c.session = &s
	}
	cp := *c.session
	return &cp
}

func (c *Client) setSession(ctx context.Context, s *Session) error {
	c.mu.Lock()
	c.session = s
	c.mu.Unlock()
	if s == nil {
		return c.store.Delete(ctx, KeyUser)
	}
	return save(ctx, c.store, KeyUser, s)
}

func (c *Client) send(ctx context.Context, method, path string, body any, token string) (*envelope, error) {
	var rd io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("encode body: %w", err)
		}
		rd = bytes.NewReader(b)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, rd)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrOffline, err)
	}
	defer resp.Body.Close()

	var env envelope
	if err := json.NewDecoder(resp.Body).Decode(&env); err != nil && resp.StatusCode < 300 {
		return nil, fmt.Errorf("decode response: %w", err)
	}
	if resp.StatusCode >= 300 {
		msg := env.Message
		if msg == "" {
			msg = http.StatusText(resp.StatusCode)
		}
		return nil, &APIError{Status: resp.StatusCode, Message: msg}
	}
	return &env, nil
}

// do sends an authenticated request, refreshing the session once on 401,
// and decodes the envelope data into out.
func (c *Client) do(ctx context.Context, method, path string, body, out any) error {
	var token string
	sess := c.Session(ctx)
	if sess != nil {
		token = sess.AccessToken
	}

	env, err := c.send(ctx, method, path, body, token)
	var apiErr *APIError
	if errors.As(err, &apiErr) && apiErr.Status == http.StatusUnauthorized && sess != nil && sess.RefreshToken != "" {
		if rerr := c.refresh(ctx, sess); rerr != nil {
			return err
		}
		env, err = c.send(ctx, method, path, body, c.Session(ctx).AccessToken)
	}
	if err != nil {
		return err
	}
	if out != nil && len(env.Data) > 0 {
		if err := json.Unmarshal(env.Data, out); err != nil {
			return fmt.Errorf("decode data: %w", err)
		}
	}
	return nil
}

func (c *Client) refresh(ctx context.Context, sess *Session) error {
	env, err := c.send(ctx, http.MethodPost, "/api/users/refresh", map[string]string{"refreshToken": sess.RefreshToken}, "")
	if err != nil {
		var apiErr *APIError
		if errors.As(err, &apiErr) {
			_ = c.setSession(ctx, nil)
		}
		return err
	}
	var pair struct {
		AccessToken  string `json:"accessToken"`
		RefreshToken string `json:"refreshToken"`
	}
	if err := json.Unmarshal(env.Data, &pair); err != nil {
		return fmt.Errorf("decode refresh: %w", err)
	}
	next := *sess
	next.AccessToken, next.RefreshToken = pair.AccessToken, pair.RefreshToken
	return c.setSession(ctx, &next)
}

type authData struct {
	User         User   `json:"user"`
	AccessToken  string `json:"accessToken"`
	RefreshToken string `json:"refreshToken"`
}

func (c *Client) signIn(ctx context.Context, path, username, password string) (*User, error) {
	env, err := c.send(ctx, http.MethodPost, path, map[string]string{"username": username, "password": password}, "")
	if err != nil {
		return nil, err
	}
	var out authData
	if err := json.Unmarshal(env.Data, &out); err != nil {
		return nil, fmt.Errorf("decode login: %w", err)
	}
	if err := c.setSession(ctx, &Session{User: out.User, AccessToken: out.AccessToken, RefreshToken: out.RefreshToken}); err != nil {
		return nil, err
	}
	return &out.User, nil
}

// Login signs in by username or email address.
func (c *Client) Login(ctx context.Context, login, password string) (*User, error) {
	return c.signIn(ctx, "/api/users/login", login, password)
}

func (c *Client) DemoLogin(ctx context.Context, username, password string) (*User, error) {
	return c.signIn(ctx, "/api/demo/login", username, password)
}

type RegisterInput struct {
	FullName     string `json:"fullName"`
	Username     string `json:"username"`
	EmailAddress string `json:"emailAddress"`
	PhoneNumber  string `json:"phoneNumber,omitempty"`
	Password     string `json:"password"`
}

func (c *Client) Register(ctx context.Context, in RegisterInput) (*User, error) {
	var u User
	if err := c.do(ctx, http.MethodPost, "/api/users", in, &u); err != nil {
		return nil, err
	}
	return &u, nil
}

// Logout revokes the refresh token when the API is reachable and always
// drops the local session together with the per-account caches.
func (c *Client) Logout(ctx context.Context) error {
	var err error
	if sess := c.Session(ctx); sess != nil {
		_, err = c.send(ctx, http.MethodPost, "/api/users/logout", map[string]string{"refreshToken": sess.RefreshToken}, sess.AccessToken)
		if IsOffline(err) {
			err = nil
		}
	}
	for _, k := range []string{KeyCart, KeyOrders} {
		if derr := c.store.Delete(ctx, k); derr != nil && err == nil {
			err = derr
		}
	}
	if serr := c.setSession(ctx, nil); serr != nil && err == nil {
		err = serr
	}
	return err
}
