package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"crudtask/internal/models"
)

// ErrNotFound is matched by StatusError values carrying a 404.
var ErrNotFound = errors.New("resource not found")

// StatusError reports a non-2xx answer from the backend.
type StatusError struct {
	Method string
	Path   string
	Code   int
	Body   string
}

func (e *StatusError) Error() string {
	msg := fmt.Sprintf("%s %s: unexpected status %d", e.Method, e.Path, e.Code)
	if e.Body != "" {
		msg += ": " + e.Body
	}
	return msg
}

// Is lets errors.Is(err, ErrNotFound) match 404 answers.
func (e *StatusError) Is(target error) bool {
	return target == ErrNotFound && e.Code == http.StatusNotFound
}

// Client talks to the REST mock backend serving /users and /tasks.
type Client struct {
	base   *url.URL
	http   *http.Client
	logger *slog.Logger
}

// New builds a client for the backend at baseURL.
func New(baseURL string, timeout time.Duration, logger *slog.Logger) (*Client, error) {
	baseURL = strings.TrimSpace(baseURL)
	if baseURL == "" {
		return nil, errors.New("api: empty base url")
	}
	u, err := url.Parse(strings.TrimRight(baseURL, "/"))
	if err != nil {
		return nil, fmt.Errorf("api: parse base url: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, fmt.Errorf("api: unsupported scheme %q", u.Scheme)
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Client{
		base:   u,
		http:   &http.Client{Timeout: timeout},
		logger: logger,
	}, nil
}

// ListUsers returns every user.
func (c *Client) ListUsers(ctx context.Context) ([]models.User, error) {
	var users []models.User
	if err := c.do(ctx, http.MethodGet, "/users", nil, nil, &users); err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	return users, nil
}

// FindUsersByEmail returns the users whose email equals email.
func (c *Client) FindUsersByEmail(ctx context.Context, email string) ([]models.User, error) {
	var users []models.User
	q := url.Values{"email": {email}}
	if err := c.do(ctx, http.MethodGet, "/users", q, nil, &users); err != nil {
		return nil, fmt.Errorf("find users by email: %w", err)
	}
	return users, nil
}

// CreateUser stores a new user and returns it with its assigned id.
func (c *Client) CreateUser(ctx context.Context, u models.User) (models.User, error) {
	var created models.User
	if err := c.do(ctx, http.MethodPost, "/users", nil, u, &created); err != nil {
		return models.User{}, fmt.Errorf("create user: %w", err)
	}
	return created, nil
}

// PatchUser updates the profile fields of a user.
func (c *Client) PatchUser(ctx context.Context, id models.ID, patch models.ProfilePatch) (models.User, error) {
	var updated models.User
	if err := c.do(ctx, http.MethodPatch, "/users/"+url.PathEscape(id.String()), nil, patch, &updated); err != nil {
		return models.User{}, fmt.Errorf("patch user %s: %w", id, err)
	}
	return updated, nil
}

// ListTasks returns the whole task collection.
func (c *Client) ListTasks(ctx context.Context) ([]models.Task, error) {
	var tasks []models.Task
	if err := c.do(ctx, http.MethodGet, "/tasks", nil, nil, &tasks); err != nil {
		return nil, fmt.Errorf("list tasks: %w", err)
	}
	return tasks, nil
}

// ListTasksByUser returns the tasks associated with userID.
func (c *Client) ListTasksByUser(ctx context.Context, userID models.ID) ([]models.Task, error) {
	var tasks []models.Task
	q := url.Values{"userId": {userID.String()}}
	if err := c.do(ctx, http.MethodGet, "/tasks", q, nil, &tasks); err != nil {
		return nil, fmt.Errorf("list tasks of user %s: %w", userID, err)
	}
	return tasks, nil
}

// GetTask fetches a single task.
func (c *Client) GetTask(ctx context.Context, id models.ID) (models.Task, error) {
	var task models.Task
	if err := c.do(ctx, http.MethodGet, taskPath(id), nil, nil, &task); err != nil {
		return models.Task{}, fmt.Errorf("get task %s: %w", id, err)
	}
	return task, nil
}

// CreateTask stores a new task and returns it with its assigned id.
func (c *Client) CreateTask(ctx context.Context, t models.Task) (models.Task, error) {
	t.ID = ""
	var created models.Task
	if err := c.do(ctx, http.MethodPost, "/tasks", nil, t, &created); err != nil {
		return models.Task{}, fmt.Errorf("create task: %w", err)
	}
	return created, nil
}

// ReplaceTask overwrites the whole task record identified by t.ID.
func (c *Client) ReplaceTask(ctx context.Context, t models.Task) (models.Task, error) {
	if t.ID == "" {
		return models.Task{}, errors.New("replace task: missing id")
	}
	var updated models.Task
	if err := c.do(ctx, http.MethodPut, taskPath(t.ID), nil, t, &updated); err != nil {
		return models.Task{}, fmt.Errorf("replace task %s: %w", t.ID, err)
	}
	return updated, nil
}

// DeleteTask removes a task.
func (c *Client) DeleteTask(ctx context.Context, id models.ID) error {
	if err := c.do(ctx, http.MethodDelete, taskPath(id), nil, nil, nil); err != nil {
		return fmt.Errorf("delete task %s: %w", id, err)
	}
	return nil
}

func taskPath(id models.ID) string {
	return "/tasks/" + url.PathEscape(id.String())
}

func (c *Client) do(ctx context.Context, method, path string, query url.Values, in, out any) error {
	u := *c.base
	u.Path = strings.TrimRight(u.Path, "/") + path
	if len(query) > 0 {
		u.RawQuery = query.Encode()
	}

	var body io.Reader
	if in != nil {
		raw, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("encode body: %w", err)
		}
		body = bytes.NewReader(raw)
	}

	req, err := http.NewRequestWithContext(ctx, method, u.String(), body)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	c.logger.Debug("backend call",
		slog.String("method", method),
		slog.String("path", path),
		slog.Int("status", resp.StatusCode),
		slog.Duration("elapsed", time.Since(start)),
	)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return &StatusError{
			Method: method,
			Path:   path,
			Code:   resp.StatusCode,
			Body:   strings.TrimSpace(string(snippet)),
		}
	}

	if out == nil {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("%s %s: decode response: %w", method, path, err)
	}
	return nil
}
