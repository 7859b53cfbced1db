package provider

import (
	"net/http"
	"time"

	"github.com/okian/handin/pkg/logger"
)

// Option configures a Client.
type Option func(*Client)

// WithLevelsPath overrides the path of the levels endpoint.
func WithLevelsPath(path string) Option {
	return func(c *Client) {
		if path != "" {
			c.levelsPath = path
		}
	}
}

// WithAssignmentsPath overrides the path of the create-assignment endpoint.
func WithAssignmentsPath(path string) Option {
	return func(c *Client) {
		if path != "" {
			c.assignmentsPath = path
		}
	}
}

// WithTimeout bounds each outbound request. Zero means no client timeout.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		if d > 0 {
			c.timeout = d
		}
	}
}

// WithHTTPClient sets the underlying HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		if hc != nil {
			c.http = hc
		}
	}
}

// WithLogger sets a custom logger for the client.
func WithLogger(l logger.Logger) Option {
	return func(c *Client) {
		if l != nil {
			c.logger = l
		}
	}
}
