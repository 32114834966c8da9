package core

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"os"
	"strings"

	"github.com/sirupsen/logrus"
)

// LogLevelEnv selects request logging: "debug" logs bodies, "info" logs a summary.
const LogLevelEnv = "STORYMARKET_LOG"

// defaultLogger builds a logger from STORYMARKET_LOG. Logging is off when the
// variable is unset or unknown.
func defaultLogger() *logrus.Logger {
	logger := logrus.New()
	logger.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	logger.SetLevel(logrus.WarnLevel)
	switch strings.ToLower(os.Getenv(LogLevelEnv)) {
	case "debug":
		logger.SetLevel(logrus.DebugLevel)
	case "info":
		logger.SetLevel(logrus.InfoLevel)
	}
	return logger
}

// ######################################################
//
//	REQUEST/RESPONSE INTERCEPTORS
//
// ######################################################

// BeforeRequest is a no-op. Install a custom interceptor with SetInterceptor.
func (m *Manager) BeforeRequest(_ context.Context, _ *http.Request, _, _ string, _ io.Reader) error {
	return nil
}

// AfterRequest is a no-op. Install a custom interceptor with SetInterceptor.
func (m *Manager) AfterRequest(_ context.Context, response Renderable) (Renderable, error) {
	return response, nil
}

// doBeforeRequest runs logging, the manager interceptor and the user hook, in that order.
// Each of them gets its own reader over the request body.
func doBeforeRequest(ctx context.Context, config *Config, m *Manager, r *http.Request, verb, url string, body io.Reader) error {
	var raw []byte
	if body != nil {
		var err error
		if raw, err = io.ReadAll(body); err != nil {
			return err
		}
	}
	bodyReader := func() io.Reader {
		if raw == nil {
			return nil
		}
		return bytes.NewReader(raw)
	}
	beforeRequestLog(config.Logger, r.Header.Get(HeaderRequestID), verb, url, bodyReader())
	if m != nil {
		if err := m.interceptor().BeforeRequest(ctx, r, verb, url, bodyReader()); err != nil {
			return err
		}
	}
	if config.BeforeRequestFn != nil {
		return config.BeforeRequestFn(ctx, r, verb, url, bodyReader())
	}
	return nil
}

// doAfterRequest tags the response with the resource type, then runs logging,
// the manager interceptor and the user hook.
func doAfterRequest(ctx context.Context, config *Config, m *Manager, response Renderable) (Renderable, error) {
	var err error
	if m != nil {
		if err = setResourceKey(response, m.GetResourceType()); err != nil {
			return nil, err
		}
	}
	afterRequestLog(config.Logger, response)
	if m != nil {
		if response, err = m.interceptor().AfterRequest(ctx, response); err != nil {
			return nil, err
		}
	}
	if config.AfterRequestFn != nil {
		if response, err = config.AfterRequestFn(ctx, response); err != nil {
			return nil, err
		}
	}
	return response, nil
}

// ######################################################
//
//	REQUEST/RESPONSE LOGGING
//
// ######################################################

func beforeRequestLog(logger *logrus.Logger, requestID, verb, url string, body io.Reader) {
	if logger == nil || !logger.IsLevelEnabled(logrus.InfoLevel) {
		return
	}
	entry := logger.WithFields(logrus.Fields{"method": verb, "url": url, "request_id": requestID})
	if body == nil || !logger.IsLevelEnabled(logrus.DebugLevel) {
		entry.Info("http request start")
		return
	}
	bodyBytes, err := io.ReadAll(body)
	if err != nil {
		entry.WithError(err).Error("failed to read request body")
		return
	}
	trimmed := bytes.TrimSpace(bodyBytes)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		entry.Debug("http request start")
		return
	}
	var compact bytes.Buffer
	if err = json.Compact(&compact, trimmed); err == nil {
		trimmed = compact.Bytes()
	}
	entry.WithField("body", string(trimmed)).Debug("http request start")
}

func afterRequestLog(logger *logrus.Logger, response Renderable) {
	if logger == nil || !logger.IsLevelEnabled(logrus.InfoLevel) {
		return
	}
	fields := logrus.Fields{}
	switch resp := response.(type) {
	case Record:
		if resourceType, ok := resp[ResourceTypeKey].(string); ok {
			fields["type"] = resourceType
		}
	case RecordSet:
		fields["count"] = len(resp)
		if len(resp) > 0 {
			if resourceType, ok := resp[0][ResourceTypeKey].(string); ok {
				fields["type"] = resourceType
			}
		}
	}
	entry := logger.WithFields(fields)
	if logger.IsLevelEnabled(logrus.DebugLevel) {
		entry.Debugf("response\n%s", response.PrettyJson("  "))
		return
	}
	entry.Info("response")
}
