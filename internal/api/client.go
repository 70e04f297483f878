// Package api is the HTTP client for the taskdeck backend.
//
// Credentials are kept as cookies in the client's jar, so a single Client
// carries one login at a time.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"strconv"
	"strings"
	"time"

	"golang.org/x/net/publicsuffix"

	"github.com/tgienger/taskdeck/internal/collection"
	"github.com/tgienger/taskdeck/internal/models"
)

const defaultTimeout = 10 * time.Second

// Client talks to the backend REST API
type Client struct {
	baseURL string
	client  *http.Client
	logger  *slog.Logger
}

// New creates a client for the backend at baseURL
func New(baseURL string, timeout time.Duration, logger *slog.Logger) (*Client, error) {
	if _, err := url.ParseRequestURI(baseURL); err != nil {
		return nil, fmt.Errorf("invalid server url %q: %w", baseURL, err)
	}
	jar, err := cookiejar.New(&cookiejar.Options{PublicSuffixList: publicsuffix.List})
	if err != nil {
		return nil, fmt.Errorf("failed to create cookie jar: %w", err)
	}
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		client:  &http.Client{Jar: jar, Timeout: timeout},
		logger:  logger,
	}, nil
}

// TaskQuery is one page of a filtered task listing
type TaskQuery struct {
	Filter models.TaskFilter
	Page   int
	Limit  int
}

func (q TaskQuery) values() url.Values {
	v := url.Values{}
	if q.Page > 0 {
		v.Set("page", strconv.Itoa(q.Page))
	}
	if q.Limit > 0 {
		v.Set("limit", strconv.Itoa(q.Limit))
	}
	if q.Filter.Status != "" {
		v.Set("status", string(q.Filter.Status))
	}
	if q.Filter.Priority != "" {
		v.Set("priority", string(q.Filter.Priority))
	}
	if q.Filter.ProjectID != "" {
		v.Set("project_id", q.Filter.ProjectID)
	}
	if q.Filter.Search != "" {
		v.Set("search", q.Filter.Search)
	}
	return v
}

type credentials struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type userEnvelope struct {
	User *models.User `json:"user"`
}

type patchEnvelope struct {
	User *models.UserPatch `json:"user"`
}

type errorBody struct {
	Error string `json:"error"`
}

// Login authenticates and stores the session cookies in the jar
func (c *Client) Login(ctx context.Context, email, password string) (models.User, error) {
	return c.userCall(ctx, http.MethodPost, "/api/login", credentials{Email: email, Password: password})
}

// Register creates an account and logs it in
func (c *Client) Register(ctx context.Context, r models.Registration) (models.User, error) {
	return c.userCall(ctx, http.MethodPost, "/api/register", r)
}

func (c *Client) Logout(ctx context.Context) error {
	return c.do(ctx, http.MethodPost, "/api/logout", nil, nil, nil)
}

// Profile returns the user behind the current session cookies
func (c *Client) Profile(ctx context.Context) (models.User, error) {
	return c.userCall(ctx, http.MethodGet, "/api/profile", nil)
}

// UpdateProfile changes the user's names. Only the fields present in the
// response are set in the returned patch.
func (c *Client) UpdateProfile(ctx context.Context, firstName, lastName string) (models.UserPatch, error) {
	body := map[string]string{"first_name": firstName, "last_name": lastName}
	var env patchEnvelope
	if err := c.do(ctx, http.MethodPut, "/api/profile", nil, body, &env); err != nil {
		return models.UserPatch{}, err
	}
	if env.User == nil {
		return models.UserPatch{}, fmt.Errorf("update profile: %w", ErrDecode)
	}
	return *env.User, nil
}

func (c *Client) userCall(ctx context.Context, method, path string, body any) (models.User, error) {
	var env userEnvelope
	if err := c.do(ctx, method, path, nil, body, &env); err != nil {
		return models.User{}, err
	}
	if env.User == nil {
		return models.User{}, fmt.Errorf("%s %s: %w", method, path, ErrDecode)
	}
	return *env.User, nil
}

// ListTasks fetches one page of tasks. Entries that are not JSON objects
// are dropped.
func (c *Client) ListTasks(ctx context.Context, q TaskQuery) ([]models.Task, error) {
	var raw json.RawMessage
	if err := c.do(ctx, http.MethodGet, "/api/tasks", q.values(), nil, &raw); err != nil {
		return nil, err
	}
	tasks, dropped := collection.DecodeObjects[models.Task](raw)
	if dropped > 0 {
		c.logger.Debug("dropped malformed tasks", "count", dropped)
	}
	return tasks, nil
}

func (c *Client) CreateTask(ctx context.Context, in models.TaskInput) (models.Task, error) {
	var t models.Task
	err := c.do(ctx, http.MethodPost, "/api/tasks", nil, in, &t)
	return t, err
}

func (c *Client) UpdateTask(ctx context.Context, id string, in models.TaskInput) (models.Task, error) {
	var t models.Task
	err := c.do(ctx, http.MethodPut, "/api/tasks/"+url.PathEscape(id), nil, in, &t)
	return t, err
}

// UpdateTaskStatus changes only the status of a task. The response body is
// ignored.
func (c *Client) UpdateTaskStatus(ctx context.Context, id string, status models.TaskStatus) error {
	body := map[string]models.TaskStatus{"status": status}
	return c.do(ctx, http.MethodPut, "/api/tasks/"+url.PathEscape(id)+"/status", nil, body, nil)
}

func (c *Client) DeleteTask(ctx context.Context, id string) error {
	return c.do(ctx, http.MethodDelete, "/api/tasks/"+url.PathEscape(id), nil, nil, nil)
}

// ListProjects fetches up to limit projects with their task aggregates
func (c *Client) ListProjects(ctx context.Context, limit int) ([]models.Project, error) {
	q := url.Values{}
	if limit > 0 {
		q.Set("limit", strconv.Itoa(limit))
	}
	var raw json.RawMessage
	if err := c.do(ctx, http.MethodGet, "/api/projects", q, nil, &raw); err != nil {
		return nil, err
	}
	projects, dropped := collection.DecodeObjects[models.Project](raw)
	if dropped > 0 {
		c.logger.Debug("dropped malformed projects", "count", dropped)
	}
	return projects, nil
}

func (c *Client) CreateProject(ctx context.Context, in models.ProjectInput) (models.Project, error) {
	var p models.Project
	err := c.do(ctx, http.MethodPost, "/api/projects", nil, in, &p)
	return p, err
}

func (c *Client) UpdateProject(ctx context.Context, id string, in models.ProjectInput) (models.Project, error) {
	var p models.Project
	err := c.do(ctx, http.MethodPut, "/api/projects/"+url.PathEscape(id), nil, in, &p)
	return p, err
}

func (c *Client) DeleteProject(ctx context.Context, id string) error {
	return c.do(ctx, http.MethodDelete, "/api/projects/"+url.PathEscape(id), nil, nil, nil)
}

// do sends a JSON request and decodes a JSON response into out when out is
// non-nil. Non-2xx answers become *Error.
func (c *Client) do(ctx context.Context, method, path string, query url.Values, body, out any) error {
	target := c.baseURL + path
	if len(query) > 0 {
		target += "?" + query.Encode()
	}

	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to marshal request: %w", err)
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, target, reader)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response body: %w", err)
	}

	c.logger.Debug("api call", "method", method, "path", path, "status", resp.StatusCode)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		apiErr := &Error{StatusCode: resp.StatusCode}
		var eb errorBody
		if json.Unmarshal(respBody, &eb) == nil {
			apiErr.Message = eb.Error
		}
		return apiErr
	}

	switch o := out.(type) {
	case nil:
		return nil
	case *json.RawMessage:
		*o = respBody
		return nil
	}
	if err := json.Unmarshal(respBody, out); err != nil {
		return fmt.Errorf("%s %s: %w: %v", method, path, ErrDecode, err)
	}
	return nil
}
