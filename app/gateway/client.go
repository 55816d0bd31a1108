package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"sync"
	"time"

	"portfolio/app/models"
	"portfolio/app/services"
)

const (
	DefaultTimeout = 10 * time.Second

	pageSize = services.MaxPerPage
)

// Client talks to the blog API over HTTP. It keeps the session token of the
// last successful sign in.
type Client struct {
	baseURL string
	http    *http.Client

	mu      sync.RWMutex
	token   string
	user    *models.User
	subs    map[int]func(*models.User)
	nextSub int
}

var _ Gateway = (*Client)(nil)

// Option customizes a Client
type Option func(*Client)

// WithHTTPClient replaces the underlying HTTP client
func WithHTTPClient(c *http.Client) Option {
	return func(client *Client) { client.http = c }
}

// WithTimeout bounds every request
func WithTimeout(d time.Duration) Option {
	return func(client *Client) { client.http.Timeout = d }
}

// WithToken starts the client with an existing session token
func WithToken(token string) Option {
	return func(client *Client) { client.token = token }
}

// New creates a client for the API at baseURL
func New(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: DefaultTimeout},
		subs:    make(map[int]func(*models.User)),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

type postPage struct {
	Posts []*models.Post `json:"posts"`
	Total int            `json:"total"`
}

// ListPosts fetches every post passing filter, following pagination
func (c *Client) ListPosts(ctx context.Context, filter models.Filter) ([]*models.Post, error) {
	q := filter.Values()
	q.Set("per_page", strconv.Itoa(pageSize))

	var posts []*models.Post
	for page := 1; ; page++ {
		q.Set("page", strconv.Itoa(page))
		var result postPage
		if err := c.do(ctx, http.MethodGet, "/api/posts?"+q.Encode(), nil, &result); err != nil {
			return nil, err
		}
		posts = append(posts, result.Posts...)
		if len(result.Posts) == 0 || len(posts) >= result.Total {
			break
		}
	}
	if posts == nil {
		posts = []*models.Post{}
	}
	return posts, nil
}

// GetPost fetches one post by id or slug
func (c *Client) GetPost(ctx context.Context, id string) (*models.Post, error) {
	var post models.Post
	if err := c.do(ctx, http.MethodGet, "/api/posts/"+url.PathEscape(id), nil, &post); err != nil {
		return nil, err
	}
	return &post, nil
}

func (c *Client) CreatePost(ctx context.Context, input models.PostInput) (*models.Post, error) {
	var post models.Post
	if err := c.do(ctx, http.MethodPost, "/api/posts", input, &post); err != nil {
		return nil, err
	}
	return &post, nil
}

func (c *Client) UpdatePost(ctx context.Context, id string, input models.PostInput) (*models.Post, error) {
	var post models.Post
	if err := c.do(ctx, http.MethodPut, "/api/posts/"+url.PathEscape(id), input, &post); err != nil {
		return nil, err
	}
	return &post, nil
}

func (c *Client) DeletePost(ctx context.Context, id string) error {
	return c.do(ctx, http.MethodDelete, "/api/posts/"+url.PathEscape(id), nil, nil)
}

// CurrentUser returns the signed in user, or nil when signed out
func (c *Client) CurrentUser(ctx context.Context) (*models.User, error) {
	if c.Token() == "" {
		return nil, nil
	}
	var result struct {
		User *models.User `json:"user"`
	}
	if err := c.do(ctx, http.MethodGet, "/api/auth/me", nil, &result); err != nil {
		return nil, err
	}
	return result.User, nil
}

// SignIn starts a session and notifies subscribers
func (c *Client) SignIn(ctx context.Context, creds Credentials) error {
	var session services.Session
	if err := c.do(ctx, http.MethodPost, "/api/auth/signin", creds, &session); err != nil {
		return err
	}
	c.setSession(session.Token, session.User)
	return nil
}

// SignUp registers an account and signs in with it
func (c *Client) SignUp(ctx context.Context, creds Credentials) error {
	if err := c.do(ctx, http.MethodPost, "/api/auth/signup", creds, nil); err != nil {
		return err
	}
	return c.SignIn(ctx, creds)
}

// SignOut ends the session and notifies subscribers
func (c *Client) SignOut(ctx context.Context) error {
	err := c.do(ctx, http.MethodPost, "/api/auth/signout", nil, nil)
	c.setSession("", nil)
	return err
}

// Token returns the current session token
func (c *Client) Token() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.token
}

// User returns the user of the last sign in, nil when signed out
func (c *Client) User() *models.User {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.user
}

// OnAuthStateChange calls fn with the new user after every sign in and sign
// out. The returned func removes the subscription.
func (c *Client) OnAuthStateChange(fn func(*models.User)) func() {
	c.mu.Lock()
	defer c.mu.Unlock()
	id := c.nextSub
	c.nextSub++
	c.subs[id] = fn
	return func() {
		c.mu.Lock()
		defer c.mu.Unlock()
		delete(c.subs, id)
	}
}

func (c *Client) setSession(token string, user *models.User) {
	c.mu.Lock()
	c.token = token
	c.user = user
	subs := make([]func(*models.User), 0, len(c.subs))
	for _, fn := range c.subs {
		subs = append(subs, fn)
	}
	c.mu.Unlock()

	for _, fn := range subs {
		fn(user)
	}
}

func (c *Client) do(ctx context.Context, method, path string, body, out interface{}) error {
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return &Error{Message: fmt.Sprintf("failed to encode request: %v", err)}
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return &Error{Message: err.Error()}
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token := c.Token(); token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return &Error{Message: err.Error()}
	}
	defer resp.Body.Close()

	if resp.StatusCode >= http.StatusBadRequest {
		return decodeError(resp)
	}
	if out == nil || resp.StatusCode == http.StatusNoContent {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return &Error{Status: resp.StatusCode, Message: fmt.Sprintf("failed to decode response: %v", err)}
	}
	return nil
}

func decodeError(resp *http.Response) error {
	var body struct {
		Error string `json:"error"`
	}
	data, _ := io.ReadAll(io.LimitReader(resp.Body, 64<<10))
	if err := json.Unmarshal(data, &body); err != nil || body.Error == "" {
		body.Error = strings.TrimSpace(string(data))
		if body.Error == "" {
			body.Error = http.StatusText(resp.StatusCode)
		}
	}
	return &Error{Status: resp.StatusCode, Message: body.Error}
}
