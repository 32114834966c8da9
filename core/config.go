package core

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"runtime"
	"time"

	version "github.com/hashicorp/go-version"
	"github.com/sirupsen/logrus"
)

// Config represents the configuration required to create a Storymarket session.
type Config struct {
	Host           string         // The hostname of the Storymarket API server.
	Port           uint64         // Optional port. Zero means the scheme default.
	Scheme         string         // "https" unless overridden (tests use "http").
	ApiKey         string         // API key sent with every request.
	SslVerify      bool           // Whether to verify SSL certificates.
	Timeout        *time.Duration // HTTP client timeout. If nil, a default is applied by validators.
	MaxConnections int            // Maximum number of concurrent HTTP connections.
	UserAgent      string         // Optional custom User-Agent header. If empty, a default is applied.
	ApiVersion     string         // API version segment of every URL ("/api/<version>/...").
	// Context is an optional external context for controlling HTTP request lifecycle.
	// When provided, it is the parent context for all requests made without an explicit one.
	Context context.Context

	// BeforeRequestFn is an optional hook executed before an API request is sent.
	// Any error returned aborts the request.
	BeforeRequestFn func(ctx context.Context, r *http.Request, verb, url string, body io.Reader) error

	// AfterRequestFn is an optional hook executed after receiving an API response.
	// It may return a modified Renderable.
	AfterRequestFn func(ctx context.Context, response Renderable) (Renderable, error)

	// BlobUploader performs binary uploads for audio, photo, video and data content.
	// When nil, blob uploads fail with ErrNotImplemented.
	BlobUploader BlobUploader

	// Logger receives request logs. Defaults to a logger configured from STORYMARKET_LOG.
	Logger *logrus.Logger
}

// ConfigFunc defines a function that can modify or validate a Config.
type ConfigFunc func(*Config) error

// Validate applies the given ConfigFunc validators to the config.
// Panics if any validator returns an error.
func (config *Config) Validate(validators ...ConfigFunc) {
	for _, fn := range validators {
		if err := fn(config); err != nil {
			panic(err)
		}
	}
}

// WithTimeout returns a ConfigFunc that sets a default timeout if none is provided.
func WithTimeout(timeout time.Duration) ConfigFunc {
	return func(config *Config) error {
		if config.Timeout == nil {
			config.Timeout = &timeout
		}
		return nil
	}
}

// WithMaxConnections returns a ConfigFunc that sets the maximum number of connections
// if not explicitly provided.
func WithMaxConnections(maxConnections int) ConfigFunc {
	return func(config *Config) error {
		if config.MaxConnections == 0 {
			config.MaxConnections = maxConnections
		}
		return nil
	}
}

// WithHost sets the default host if none is provided.
func WithHost(defaultHost string) ConfigFunc {
	return func(config *Config) error {
		if config.Host == "" {
			config.Host = defaultHost
		}
		return nil
	}
}

// WithScheme sets the default scheme and rejects anything but http/https.
func WithScheme(defaultScheme string) ConfigFunc {
	return func(config *Config) error {
		if config.Scheme == "" {
			config.Scheme = defaultScheme
		}
		if config.Scheme != "http" && config.Scheme != "https" {
			return fmt.Errorf("unsupported scheme %q", config.Scheme)
		}
		return nil
	}
}

// WithAuth validates that an API key is provided.
func WithAuth(config *Config) error {
	if config.ApiKey == "" {
		return errors.New("api key must be provided")
	}
	return nil
}

// WithUserAgent sets a default User-Agent header if none is provided in the config.
func WithUserAgent(config *Config) error {
	if config.UserAgent == "" {
		config.UserAgent = fmt.Sprintf(
			"%s,os:%s,arch:%s",
			fmt.Sprintf("storymarket-go-client-%s", ClientVersion()),
			runtime.GOOS,
			runtime.GOARCH,
		)
	}
	return nil
}

// WithApiVersion sets a default API version and checks that the configured one parses.
func WithApiVersion(defaultVer string) ConfigFunc {
	return func(config *Config) error {
		if config.ApiVersion == "" {
			config.ApiVersion = defaultVer
		}
		if _, err := version.NewVersion(config.ApiVersion); err != nil {
			return fmt.Errorf("invalid api version %q: %w", config.ApiVersion, err)
		}
		return nil
	}
}

// WithLogger installs the package logger if the caller did not supply one.
func WithLogger(config *Config) error {
	if config.Logger == nil {
		config.Logger = defaultLogger()
	}
	return nil
}

// WithPort rejects ports outside the TCP range. Zero keeps the scheme default.
func WithPort(config *Config) error {
	if config.Port > 65535 {
		return fmt.Errorf("invalid port %d", config.Port)
	}
	return nil
}
