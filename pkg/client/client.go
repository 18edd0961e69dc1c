package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/driftline/cloudclient/pkg/config"
	"github.com/driftline/cloudclient/pkg/errors"
	"github.com/driftline/cloudclient/pkg/tokenstore"
)

// HTTPDoer is a minimal interface for HTTP clients
type HTTPDoer interface {
	Do(*http.Request) (*http.Response, error)
}

// Client talks to the orchestration service with bearer token auth.
//
// A Client assumes at most one in-flight request at a time. Concurrent
// callers sharing one Client can trigger simultaneous 401-refresh cycles
// that overwrite each other's tokens; this is an open limitation, not a
// supported mode.
type Client struct {
	httpClient    HTTPDoer
	apiServer     string
	graphqlServer string
	settings      *config.Settings
	tokens        *tokenstore.Store
}

// Option defines config for Client
type Option func(*Client)

// WithHTTPDoer replaces the underlying HTTP client.
func WithHTTPDoer(doer HTTPDoer) Option {
	return func(c *Client) {
		c.httpClient = doer
	}
}

// WithToken sets an explicit bearer token, taking priority over the
// configured token and the credential file.
func WithToken(token string) Option {
	return func(c *Client) {
		c.tokens.Adopt(token)
	}
}

// WithTokenPath overrides the credential file location.
func WithTokenPath(path string) Option {
	return func(c *Client) {
		current, _ := c.tokens.Current()
		c.tokens = tokenstore.New(path)
		c.tokens.Adopt(current)
	}
}

// New creates a Client from settings. Nil settings are loaded from the
// default location. The API server URL is required; the GraphQL server
// defaults to it. The token is resolved first non-empty wins: explicit
// option, configured token, credential file.
func New(settings *config.Settings, opts ...Option) (*Client, error) {
	if settings == nil {
		loaded, err := config.LoadDefault()
		if err != nil {
			return nil, errors.WrapError(err, errors.ErrConfiguration, "failed to load settings")
		}
		settings = loaded
	}

	if settings.API == "" {
		return nil, errors.WrapError(
			fmt.Errorf("API server URL is not set"),
			errors.ErrConfiguration,
			"could not determine API server",
		)
	}

	graphqlServer := settings.GraphQL
	if graphqlServer == "" {
		graphqlServer = settings.API
	}

	c := &Client{
		httpClient:    &http.Client{Timeout: 30 * time.Second},
		apiServer:     settings.API,
		graphqlServer: graphqlServer,
		settings:      settings,
		tokens:        tokenstore.New(tokenstore.DefaultPath()),
	}

	for _, o := range opts {
		o(c)
	}

	if _, ok := c.tokens.Current(); !ok {
		if settings.AuthToken != "" {
			c.tokens.Adopt(settings.AuthToken)
		} else if token, ok := c.tokens.ReadFile(); ok {
			c.tokens.Adopt(token)
		}
	}

	return c, nil
}

// Token returns the current bearer token, if any.
func (c *Client) Token() (string, bool) {
	return c.tokens.Current()
}

// ResponseError describes a non-2xx HTTP response.
type ResponseError struct {
	StatusCode int
	Body       string
}

func (e *ResponseError) Error() string {
	return fmt.Sprintf("HTTP %d: %s", e.StatusCode, e.Body)
}

// Request sends an authenticated request against the API server and
// returns the raw response body. Method must be GET, POST or DELETE.
func (c *Client) Request(ctx context.Context, method, path string, params map[string]interface{}) ([]byte, error) {
	return c.do(ctx, method, c.apiServer, path, params)
}

// do runs the two-attempt request loop. A 401 on the first attempt
// triggers exactly one token refresh and one resend; the second failure
// propagates unchanged.
func (c *Client) do(ctx context.Context, method, server, path string, params map[string]interface{}) ([]byte, error) {
	switch method {
	case http.MethodGet, http.MethodPost, http.MethodDelete:
	default:
		return nil, errors.WrapError(
			fmt.Errorf("method %q is not supported", method),
			errors.ErrInvalidMethod,
			"request",
		)
	}

	endpoint := joinURL(server, path)

	retried := false
	for {
		token, ok := c.tokens.Current()
		if !ok {
			return nil, errors.WrapError(
				fmt.Errorf("no token set, call Login first"),
				errors.ErrUnauthenticated,
				"request",
			)
		}

		req, err := c.newRequest(ctx, method, endpoint, token, params)
		if err != nil {
			return nil, errors.WrapError(err, errors.ErrHTTPRequest, "failed to create request")
		}

		resp, err := c.httpClient.Do(req)
		if err != nil {
			return nil, errors.WrapError(err, errors.ErrHTTPRequest, "request failed")
		}

		body, err := io.ReadAll(resp.Body)
		resp.Body.Close()
		if err != nil {
			return nil, errors.WrapError(err, errors.ErrHTTPResponse, "failed to read response body")
		}

		if resp.StatusCode >= 200 && resp.StatusCode < 300 {
			return body, nil
		}

		if resp.StatusCode == http.StatusUnauthorized && !retried {
			retried = true
			if err := c.RefreshToken(ctx); err != nil {
				return nil, err
			}
			continue
		}

		return nil, fmt.Errorf("%w: %w", errors.ErrHTTPResponse, &ResponseError{
			StatusCode: resp.StatusCode,
			Body:       string(body),
		})
	}
}

// newRequest builds the authenticated request. GET params go into the
// query string, POST params into a JSON body, DELETE carries no body.
func (c *Client) newRequest(ctx context.Context, method, endpoint, token string, params map[string]interface{}) (*http.Request, error) {
	var bodyReader io.Reader

	switch method {
	case http.MethodGet:
		if len(params) > 0 {
			values := url.Values{}
			for k, v := range params {
				values.Set(k, fmt.Sprintf("%v", v))
			}
			endpoint = endpoint + "?" + values.Encode()
		}
	case http.MethodPost:
		buf, err := json.Marshal(params)
		if err != nil {
			return nil, err
		}
		bodyReader = bytes.NewReader(buf)
	}

	req, err := http.NewRequestWithContext(ctx, method, endpoint, bodyReader)
	if err != nil {
		return nil, err
	}

	req.Header.Set("Authorization", "Bearer "+token)
	if method == http.MethodPost {
		req.Header.Set("Content-Type", "application/json")
	}

	return req, nil
}

// decodeBody unmarshals a JSON response body. An empty body decodes to an
// empty mapping rather than failing.
func decodeBody(body []byte) (map[string]interface{}, error) {
	if len(body) == 0 {
		return map[string]interface{}{}, nil
	}

	var decoded map[string]interface{}
	if err := json.Unmarshal(body, &decoded); err != nil {
		return nil, errors.WrapError(err, errors.ErrExtraction, "failed to unmarshal JSON")
	}
	return decoded, nil
}

// joinURL joins path onto the server root and strips any trailing slash.
func joinURL(server, path string) string {
	u := strings.TrimRight(server, "/")
	if p := strings.Trim(path, "/"); p != "" {
		u = u + "/" + p
	}
	return u
}
