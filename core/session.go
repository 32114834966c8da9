package core

import (
	"bytes"
	"context"
	"crypto/tls"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/google/uuid"
)

type contextKey string

const caller contextKey = "@caller" // Manager that issued the request

// WithCaller marks ctx as issued on behalf of m, so hooks and error
// classification see the manager's resource type.
func WithCaller(ctx context.Context, m *Manager) context.Context {
	return context.WithValue(ctx, caller, m)
}

// RESTSession is the remote transport: four HTTP verbs returning parsed JSON.
// All of them fail with *ApiError on non-2xx responses.
type RESTSession interface {
	Get(context.Context, string, Params, []http.Header) (Renderable, error)
	Post(context.Context, string, Params, []http.Header) (Renderable, error)
	Put(context.Context, string, Params, []http.Header) (Renderable, error)
	Delete(context.Context, string, Params, []http.Header) (Renderable, error)
	// Do sends a prepared request with session headers applied. It is meant
	// for BlobUploader implementations that need a non-JSON body.
	Do(*http.Request) (Renderable, error)
	GetConfig() *Config
}

type StorymarketSession struct {
	config *Config
	client *http.Client
	auth   Authenticator
}

type SessionMethod func(context.Context, string, Params, []http.Header) (Renderable, error)

func NewStorymarketSession(config *Config) (*StorymarketSession, error) {
	transport := http.DefaultTransport.(*http.Transport).Clone()
	transport.TLSClientConfig = &tls.Config{InsecureSkipVerify: !config.SslVerify}
	transport.MaxConnsPerHost = config.MaxConnections
	client := &http.Client{Transport: transport}
	if config.Timeout != nil {
		client.Timeout = *config.Timeout
	}
	authenticator, err := createAuthenticator(config)
	if err != nil {
		return nil, err
	}
	return &StorymarketSession{
		config: config,
		client: client,
		auth:   authenticator,
	}, nil
}

// Request issues one call on behalf of m and checks the response shape.
// A single Record returned where a RecordSet is expected is wrapped into a set.
func Request[T RecordUnion](
	ctx context.Context,
	m *Manager,
	verb, path string,
	body Params,
) (T, error) {
	var sessionMethod SessionMethod
	if ctx == nil {
		ctx = context.Background()
	}
	ctx = WithCaller(ctx, m)
	verb = strings.ToUpper(verb)
	session := m.Session()

	switch verb {
	case http.MethodGet:
		sessionMethod = session.Get
	case http.MethodPost:
		sessionMethod = session.Post
	case http.MethodPut:
		sessionMethod = session.Put
	case http.MethodDelete:
		sessionMethod = session.Delete
	default:
		return nil, fmt.Errorf("unknown verb: %s", verb)
	}
	url, err := buildUrl(session.GetConfig(), path, "")
	if err != nil {
		return nil, err
	}

	response, err := sessionMethod(ctx, url, body, nil)
	if err != nil {
		return nil, classifyError(m.GetResourceType(), path, err)
	}

	if typeMatch[Record](response) {
		var zero T
		if typeMatch[RecordSet](Renderable(zero)) {
			if !response.(Record).Empty() {
				response = RecordSet{response.(Record)}
			} else {
				response = RecordSet{}
			}
		}
	}

	if recordSet, isSet := response.(RecordSet); isSet {
		for i, rec := range recordSet {
			if _, raw := rec[customRawKey]; raw {
				return nil, &ApiError{
					Method: verb,
					URL:    url,
					Body:   fmt.Sprintf("malformed response list: item %d is not an object", i),
				}
			}
		}
	}

	resultVal, ok := response.(T)
	if !ok {
		return nil, fmt.Errorf(
			"unexpected response type for request to %s: got %T, expected %T",
			url,
			response,
			*new(T),
		)
	}
	return resultVal, nil
}

func (s *StorymarketSession) Get(ctx context.Context, url string, _ Params, headers []http.Header) (Renderable, error) {
	return doRequest(ctx, s, http.MethodGet, url, nil, headers)
}

func (s *StorymarketSession) Post(ctx context.Context, url string, body Params, headers []http.Header) (Renderable, error) {
	return doRequest(ctx, s, http.MethodPost, url, body, headers)
}

func (s *StorymarketSession) Put(ctx context.Context, url string, body Params, headers []http.Header) (Renderable, error) {
	return doRequest(ctx, s, http.MethodPut, url, body, headers)
}

func (s *StorymarketSession) Delete(ctx context.Context, url string, body Params, headers []http.Header) (Renderable, error) {
	return doRequest(ctx, s, http.MethodDelete, url, body, headers)
}

// Do sends req through the same hooks, logging and error classification as
// the JSON verbs. The request body is not passed to the before-request hooks.
func (s *StorymarketSession) Do(req *http.Request) (Renderable, error) {
	ctx := req.Context()
	m, _ := ctx.Value(caller).(*Manager)
	url := req.URL.String()
	setupHeaders(s, req, consolidateHeaders(s, []http.Header{req.Header.Clone()}))

	if err := doBeforeRequest(ctx, s.config, m, req, req.Method, url, nil); err != nil {
		return nil, err
	}
	response, err := s.client.Do(req)
	if err != nil {
		return nil, classifyCallerError(m, req.URL.Path, &ApiError{Method: req.Method, URL: url, Body: err.Error()})
	}
	if err = validateResponse(response); err != nil {
		return nil, classifyCallerError(m, req.URL.Path, err)
	}
	result, err := unmarshalToRecordUnion(response)
	if err != nil {
		return nil, &ApiError{Method: req.Method, URL: url, StatusCode: response.StatusCode, Body: err.Error()}
	}
	return doAfterRequest(ctx, s.config, m, result)
}

func classifyCallerError(m *Manager, path string, err error) error {
	resource := ""
	if m != nil {
		resource = m.GetResourceType()
	}
	return classifyError(resource, path, err)
}

func (s *StorymarketSession) GetConfig() *Config {
	return s.config
}

func consolidateHeaders(s RESTSession, customHeaders []http.Header) http.Header {
	finalHeaders := make(http.Header)

	for _, header := range customHeaders {
		for key, values := range header {
			for _, value := range values {
				finalHeaders.Add(key, value)
			}
		}
	}

	if finalHeaders.Get(HeaderAccept) == "" {
		finalHeaders.Set(HeaderAccept, ContentTypeJSON)
	}
	if finalHeaders.Get(HeaderContentType) == "" {
		finalHeaders.Set(HeaderContentType, ContentTypeJSON)
	}
	if finalHeaders.Get(HeaderUserAgent) == "" {
		finalHeaders.Set(HeaderUserAgent, s.GetConfig().UserAgent)
	}
	if finalHeaders.Get(HeaderRequestID) == "" {
		finalHeaders.Set(HeaderRequestID, uuid.NewString())
	}
	return finalHeaders
}

func setupHeaders(s *StorymarketSession, r *http.Request, headers http.Header) {
	r.Header = make(http.Header, len(headers)+1)
	for key, values := range headers {
		for _, value := range values {
			r.Header.Add(key, value)
		}
	}
	s.auth.setAuthHeader(&r.Header)
}

// doRequest creates and processes one HTTP request using the context.
func doRequest(ctx context.Context, s *StorymarketSession, verb, url string, body Params, headers []http.Header) (Renderable, error) {
	var (
		requestData       io.Reader
		beforeRequestData io.Reader
		err               error
	)
	m, _ := ctx.Value(caller).(*Manager)

	finalHeaders := consolidateHeaders(s, headers)

	if body == nil {
		requestData = bytes.NewReader(nil)
	} else {
		if requestData, err = body.ToBody(); err != nil {
			return nil, err
		}
		if beforeRequestData, err = body.ToBody(); err != nil {
			return nil, err
		}
	}
	req, err := http.NewRequestWithContext(ctx, verb, url, requestData)
	if err != nil {
		return nil, err
	}
	setupHeaders(s, req, finalHeaders)

	if err = doBeforeRequest(ctx, s.config, m, req, verb, url, beforeRequestData); err != nil {
		return nil, err
	}
	response, responseErr := s.client.Do(req)
	if responseErr != nil {
		return nil, &ApiError{
			Method: verb,
			URL:    url,
			Body:   fmt.Sprintf("failed to perform request: %v", responseErr),
		}
	}
	if err = validateResponse(response); err != nil {
		return nil, err
	}
	result, err := unmarshalToRecordUnion(response)
	if err != nil {
		return nil, &ApiError{Method: verb, URL: url, StatusCode: response.StatusCode, Body: err.Error()}
	}
	return doAfterRequest(ctx, s.config, m, result)
}
