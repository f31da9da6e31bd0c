// Package client is a Go SDK for the ThinkWise REST API.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"sort"
	"strings"
	"time"

	"github.com/pkg/errors"

	"github.com/trezcool/thinkwise/core/school"
)

// Client talks to the `/api` routes of a ThinkWise server.
type Client struct {
	baseURL    string
	token      string
	httpClient *http.Client
}

// Option configures the client
type Option func(*Client)

// WithHTTPClient sets a custom HTTP client
func WithHTTPClient(client *http.Client) Option {
	return func(c *Client) {
		c.httpClient = client
	}
}

// WithTimeout sets the client timeout
func WithTimeout(timeout time.Duration) Option {
	return func(c *Client) {
		c.httpClient.Timeout = timeout
	}
}

// WithToken sets the JWT sent with every request.
func WithToken(token string) Option {
	return func(c *Client) {
		c.token = token
	}
}

func NewClient(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}

	for _, opt := range opts {
		opt(c)
	}

	return c
}

// NetworkError is returned when the server could not be reached or its response could not be read.
type NetworkError struct {
	Op  string
	Err error
}

func (e *NetworkError) Error() string { return fmt.Sprintf("%s: network error: %v", e.Op, e.Err) }
func (e *NetworkError) Cause() error  { return e.Err }

// APIError is a response with an error status. Fields holds the per-field messages of a 400.
type APIError struct {
	StatusCode int
	Message    string
	Fields     map[string]string
}

func (e *APIError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("HTTP %d: %s", e.StatusCode, e.Message)
	}
	keys := make([]string, 0, len(e.Fields))
	for k := range e.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	parts := make([]string, len(keys))
	for i, k := range keys {
		parts[i] = k + ": " + e.Fields[k]
	}
	return fmt.Sprintf("HTTP %d: %s", e.StatusCode, strings.Join(parts, "; "))
}

// IsStatus tells whether err is an APIError with the given status code.
func IsStatus(err error, code int) bool {
	apiErr, ok := errors.Cause(err).(*APIError)
	return ok && apiErr.StatusCode == code
}

// Login authenticates with the staff credentials and keeps the token for the next requests.
func (c *Client) Login(ctx context.Context, username, password string) error {
	creds := map[string]string{"username": username, "password": password}
	var resp struct {
		Token string `json:"token"`
	}
	if err := c.do(ctx, http.MethodPost, "/api/auth/login", creds, &resp); err != nil {
		return err
	}
	c.token = resp.Token
	return nil
}

func (c *Client) GetCourse(ctx context.Context, id int) (school.Course, error) {
	var crs school.Course
	err := c.do(ctx, http.MethodGet, fmt.Sprintf("/api/corsi/%d", id), nil, &crs)
	return crs, err
}

func (c *Client) GetStudent(ctx context.Context, id int) (school.Student, error) {
	var s school.Student
	err := c.do(ctx, http.MethodGet, fmt.Sprintf("/api/studenti/%d", id), nil, &s)
	return s, err
}

// Waitlist returns the students with no active course.
func (c *Client) Waitlist(ctx context.Context) ([]school.Student, error) {
	var students []school.Student
	err := c.do(ctx, http.MethodGet, "/api/corsi/lista-attesa/studenti", nil, &students)
	return students, err
}

// AddStudent enrolls a student and returns the updated course.
func (c *Client) AddStudent(ctx context.Context, courseID, studentID int) (school.Course, error) {
	var crs school.Course
	body := map[string]int{"studenteId": studentID}
	err := c.do(ctx, http.MethodPost, fmt.Sprintf("/api/corsi/%d/aggiungi-studente", courseID), body, &crs)
	return crs, err
}

func (c *Client) RemoveStudent(ctx context.Context, courseID, studentID int) error {
	return c.do(ctx, http.MethodDelete, fmt.Sprintf("/api/studenti/%d/rimuovi-da-corso/%d", studentID, courseID), nil, nil)
}

// do sends in as JSON and decodes the response into out, when not nil.
func (c *Client) do(ctx context.Context, method, path string, in, out interface{}) error {
	op := method + " " + path

	var body io.Reader
	if in != nil {
		data, err := json.Marshal(in)
		if err != nil {
			return errors.Wrap(err, "marshalling request")
		}
		body = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return errors.Wrap(err, "creating request")
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return &NetworkError{Op: op, Err: err}
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return &NetworkError{Op: op, Err: err}
	}

	if resp.StatusCode >= http.StatusBadRequest {
		return decodeAPIError(resp.StatusCode, respBody)
	}
	if out == nil || len(respBody) == 0 {
		return nil
	}
	if err = json.Unmarshal(respBody, out); err != nil {
		return errors.Wrapf(err, "%s: decoding response", op)
	}
	return nil
}

// decodeAPIError reads both error shapes of the API: `{"error": "..."}` and a field map.
func decodeAPIError(code int, body []byte) *APIError {
	apiErr := &APIError{StatusCode: code}

	var fields map[string]interface{}
	if err := json.Unmarshal(body, &fields); err != nil {
		apiErr.Message = strings.TrimSpace(string(body))
		if apiErr.Message == "" {
			apiErr.Message = http.StatusText(code)
		}
		return apiErr
	}
	if msg, ok := fields["error"].(string); ok && len(fields) == 1 {
		apiErr.Message = msg
		return apiErr
	}
	apiErr.Fields = make(map[string]string, len(fields))
	for k, v := range fields {
		apiErr.Fields[k] = fmt.Sprint(v)
	}
	return apiErr
}
