// Package apiclient is a typed HTTP client for the auth and task services.
package apiclient

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/yanqian/taskhub/internal/domain/auth"
	"github.com/yanqian/taskhub/internal/domain/task"
)

// APIError is a non-2xx response decoded from the services' error body.
type APIError struct {
	Status  int
	Code    string
	Message string
	Fields  map[string][]string
}

func (e *APIError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("api error: status=%d", e.Status)
	}
	return fmt.Sprintf("api error: status=%d code=%s message=%s", e.Status, e.Code, e.Message)
}

// IsUnauthorized reports whether err is a 401 from either service.
func IsUnauthorized(err error) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr) && apiErr.Status == http.StatusUnauthorized
}

// Client talks to both services. The same http.Client (and cookie jar) is
// shared across them.
type Client struct {
	authURL    string
	taskURL    string
	httpClient *http.Client
}

// New builds an API client. jar may be nil.
func New(authURL, taskURL string, timeout time.Duration, jar http.CookieJar) *Client {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &Client{
		authURL: strings.TrimRight(strings.TrimSpace(authURL), "/"),
		taskURL: strings.TrimRight(strings.TrimSpace(taskURL), "/"),
		httpClient: &http.Client{
			Timeout: timeout,
			Jar:     jar,
		},
	}
}

// AuthURL returns the auth service base URL.
func (c *Client) AuthURL() string { return c.authURL }

// TaskURL returns the task service base URL.
func (c *Client) TaskURL() string { return c.taskURL }

// Register creates an account.
func (c *Client) Register(ctx context.Context, req auth.RegisterRequest) (auth.RegisterResponse, error) {
	var out auth.RegisterResponse
	err := c.do(ctx, http.MethodPost, c.authURL+"/register", "", req, &out)
	return out, err
}

// Login exchanges credentials for a token.
func (c *Client) Login(ctx context.Context, req auth.LoginRequest) (auth.TokenResponse, error) {
	var out auth.TokenResponse
	err := c.do(ctx, http.MethodPost, c.authURL+"/login", "", req, &out)
	return out, err
}

// Refresh swaps token for a new one.
func (c *Client) Refresh(ctx context.Context, token string) (auth.TokenResponse, error) {
	var out auth.TokenResponse
	err := c.do(ctx, http.MethodPost, c.authURL+"/refresh", token, nil, &out)
	return out, err
}

// Logout notifies the auth service.
func (c *Client) Logout(ctx context.Context, token string) error {
	return c.do(ctx, http.MethodPost, c.authURL+"/logout", token, nil, nil)
}

// Me loads the profile of the token subject.
func (c *Client) Me(ctx context.Context, token string) (auth.UserView, error) {
	var out auth.UserView
	err := c.do(ctx, http.MethodGet, c.authURL+"/me", token, nil, &out)
	return out, err
}

// ListTasks returns the caller's tasks.
func (c *Client) ListTasks(ctx context.Context, token string) ([]task.Task, error) {
	var out []task.Task
	err := c.do(ctx, http.MethodGet, c.taskURL+"/tasks", token, nil, &out)
	return out, err
}

// CreateTask adds a task.
func (c *Client) CreateTask(ctx context.Context, token string, req task.CreateRequest) (task.Task, error) {
	var out task.Task
	err := c.do(ctx, http.MethodPost, c.taskURL+"/tasks", token, req, &out)
	return out, err
}

// GetTask fetches a task by id.
func (c *Client) GetTask(ctx context.Context, token string, id int64) (task.Task, error) {
	var out task.Task
	err := c.do(ctx, http.MethodGet, c.taskPath(id), token, nil, &out)
	return out, err
}

// UpdateTask applies a partial update.
func (c *Client) UpdateTask(ctx context.Context, token string, id int64, req task.UpdateRequest) (task.Task, error) {
	var out task.Task
	err := c.do(ctx, http.MethodPut, c.taskPath(id), token, req, &out)
	return out, err
}

// DeleteTask removes a task.
func (c *Client) DeleteTask(ctx context.Context, token string, id int64) error {
	return c.do(ctx, http.MethodDelete, c.taskPath(id), token, nil, nil)
}

func (c *Client) taskPath(id int64) string {
	return c.taskURL + "/tasks/" + strconv.FormatInt(id, 10)
}

func (c *Client) do(ctx context.Context, method, endpoint, token string, in, out any) error {
	var body io.Reader
	if in != nil {
		encoded, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("encode request: %w", err)
		}
		body = bytes.NewReader(encoded)
	}

	req, err := http.NewRequestWithContext(ctx, method, endpoint, body)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w", method, endpoint, err)
	}
	defer resp.Body.Close()

	payload, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return fmt.Errorf("read response: %w", err)
	}
	if resp.StatusCode >= 300 {
		return decodeError(resp.StatusCode, payload)
	}
	if out == nil || len(payload) == 0 {
		return nil
	}
	if err := json.Unmarshal(payload, out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

func decodeError(status int, payload []byte) error {
	apiErr := &APIError{Status: status}
	var body struct {
		Error   string              `json:"error"`
		Message string              `json:"message"`
		Code    string              `json:"code"`
		Errors  map[string][]string `json:"errors"`
	}
	if err := json.Unmarshal(payload, &body); err == nil {
		apiErr.Code = body.Code
		apiErr.Message = body.Error
		if apiErr.Message == "" {
			apiErr.Message = body.Message
		}
		apiErr.Fields = body.Errors
	}
	if apiErr.Message == "" {
		apiErr.Message = strings.TrimSpace(string(payload))
	}
	return apiErr
}
