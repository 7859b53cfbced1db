// Package provider talks to the remote candidate service: it fetches the
// candidate levels and creates assignments.
package provider

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/okian/handin/internal/domain/submission"
	"github.com/okian/handin/pkg/logger"
)

// Default endpoint paths on the candidate service.
const (
	DefaultLevelsPath      = "/api/tools/candidates/levels"
	DefaultAssignmentsPath = "/api/tools/candidates/assignments"
)

const (
	headerRequestID = "X-Request-ID"
	contentTypeJSON = "application/json"

	maxBodyBytes = 1 << 20
)

// Client calls the candidate service over HTTP.
type Client struct {
	baseURL         string
	levelsPath      string
	assignmentsPath string
	timeout         time.Duration

	http   *http.Client
	logger logger.Logger
}

// New creates a client for the service rooted at baseURL.
func New(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL:         strings.TrimRight(baseURL, "/"),
		levelsPath:      DefaultLevelsPath,
		assignmentsPath: DefaultAssignmentsPath,
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.http == nil {
		c.http = &http.Client{Timeout: c.timeout}
	}
	if c.logger == nil {
		c.logger = logger.Get().Named("provider")
	}
	return c
}

// levelsResponse is the body of GET levels. Levels is a pointer so a
// missing key can be told apart from an empty list.
type levelsResponse struct {
	Levels *[]string `json:"levels"`
}

// failureResponse is the body of a rejected submission.
type failureResponse struct {
	Errors  []string `json:"errors"`
	Message string   `json:"message"`
}

// Levels fetches the candidate levels in the order the service returns them.
// Any failure wraps ErrLevelsUnavailable.
func (c *Client) Levels(ctx context.Context) ([]string, error) {
	req, err := c.newRequest(ctx, http.MethodGet, c.levelsPath, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrLevelsUnavailable, err)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrLevelsUnavailable, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return nil, fmt.Errorf("%w: read body: %w", ErrLevelsUnavailable, err)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("%w: unexpected status %d", ErrLevelsUnavailable, resp.StatusCode)
	}

	var out levelsResponse
	if err := json.Unmarshal(body, &out); err != nil {
		return nil, fmt.Errorf("%w: decode body: %w", ErrLevelsUnavailable, err)
	}
	if out.Levels == nil {
		return nil, fmt.Errorf("%w: response has no levels", ErrLevelsUnavailable)
	}

	c.logger.Debug(ctx, "candidate levels fetched", logger.Int("count", len(*out.Levels)))
	return *out.Levels, nil
}

// CreateAssignment posts s as a flat JSON object. A non-2xx reply or a
// transport failure is returned as *SubmitError.
func (c *Client) CreateAssignment(ctx context.Context, s submission.Submission) error {
	payload, err := json.Marshal(s)
	if err != nil {
		return &SubmitError{Err: fmt.Errorf("marshal submission: %w", err)}
	}

	req, err := c.newRequest(ctx, http.MethodPost, c.assignmentsPath, payload)
	if err != nil {
		return &SubmitError{Err: err}
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return &SubmitError{Err: err}
	}
	defer resp.Body.Close()

	body, _ := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if resp.StatusCode >= 200 && resp.StatusCode <= 299 {
		return nil
	}

	serr := &SubmitError{StatusCode: resp.StatusCode}
	var fail failureResponse
	if err := json.Unmarshal(body, &fail); err != nil {
		c.logger.Debug(ctx, "submission failure body is not JSON", logger.Int("status", resp.StatusCode))
		return serr
	}
	serr.Errors = fail.Errors
	serr.Message = fail.Message
	return serr
}

func (c *Client) newRequest(ctx context.Context, method, path string, body []byte) (*http.Request, error) {
	var r io.Reader
	if body != nil {
		r = bytes.NewReader(body)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, r)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("Accept", contentTypeJSON)
	if body != nil {
		req.Header.Set("Content-Type", contentTypeJSON)
	}
	id := logger.RequestID(ctx)
	if id == "" {
		id = uuid.NewString()
	}
	req.Header.Set(headerRequestID, id)
	return req, nil
}
