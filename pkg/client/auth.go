package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"github.com/driftline/cloudclient/pkg/errors"
)

// LoginOptions carry the login credentials. Empty fields default from the
// client settings.
type LoginOptions struct {
	Email       string
	Password    string
	AccountSlug string
	AccountID   string
}

// Login exchanges credentials for a bearer token. The request itself is
// unauthenticated (HTTP basic auth with email and password). On success
// the token from the response is stored in memory and on disk; a success
// response without a token field leaves the stored token unchanged.
func (c *Client) Login(ctx context.Context, opts LoginOptions) error {
	email := opts.Email
	if email == "" {
		email = c.settings.Email
	}
	password := opts.Password
	if password == "" {
		password = c.settings.Password
	}
	if email == "" {
		return errors.WrapError(
			fmt.Errorf("no email configured"),
			errors.ErrConfiguration,
			"login",
		)
	}

	payload := map[string]interface{}{
		"account_id":   nullable(opts.AccountID),
		"account_slug": nullable(opts.AccountSlug),
	}
	buf, err := json.Marshal(payload)
	if err != nil {
		return errors.WrapError(err, errors.ErrHTTPRequest, "failed to encode login payload")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, joinURL(c.apiServer, "login"), bytes.NewReader(buf))
	if err != nil {
		return errors.WrapError(err, errors.ErrHTTPRequest, "failed to create login request")
	}
	req.SetBasicAuth(email, password)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return errors.WrapError(err, errors.ErrHTTPRequest, "login request failed")
	}
	body, err := io.ReadAll(resp.Body)
	resp.Body.Close()
	if err != nil {
		return errors.WrapError(err, errors.ErrHTTPResponse, "failed to read login response")
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("%w: %w", errors.ErrLoginFailed, &ResponseError{
			StatusCode: resp.StatusCode,
			Body:       string(body),
		})
	}

	decoded, err := decodeBody(body)
	if err != nil {
		return err
	}

	if token, ok := decoded["token"].(string); ok && token != "" {
		if err := c.tokens.Set(token); err != nil {
			return err
		}
	}
	return nil
}

// Logout discards the stored token, in memory and on disk. Logging out
// twice is not an error.
func (c *Client) Logout() error {
	return c.tokens.Clear()
}

// RefreshToken exchanges the current token for a new one. The stored
// token is replaced with whatever the response carries; a response
// without a token clears the in-memory token, so a retried call fails
// instead of silently reusing the expired one.
func (c *Client) RefreshToken(ctx context.Context) error {
	token, ok := c.tokens.Current()
	if !ok {
		return errors.WrapError(
			fmt.Errorf("no token to refresh"),
			errors.ErrUnauthenticated,
			"refresh token",
		)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, joinURL(c.apiServer, "refresh_token"), nil)
	if err != nil {
		return errors.WrapError(err, errors.ErrHTTPRequest, "failed to create refresh request")
	}
	req.Header.Set("Authorization", "Bearer "+token)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return errors.WrapError(err, errors.ErrHTTPRequest, "refresh request failed")
	}
	body, err := io.ReadAll(resp.Body)
	resp.Body.Close()
	if err != nil {
		return errors.WrapError(err, errors.ErrHTTPResponse, "failed to read refresh response")
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("%w: %w", errors.ErrHTTPResponse, &ResponseError{
			StatusCode: resp.StatusCode,
			Body:       string(body),
		})
	}

	decoded, err := decodeBody(body)
	if err != nil {
		return err
	}

	newToken, _ := decoded["token"].(string)
	if newToken == "" {
		c.tokens.Adopt("")
		return nil
	}
	return c.tokens.Set(newToken)
}

// nullable maps an empty string to a JSON null.
func nullable(s string) interface{} {
	if s == "" {
		return nil
	}
	return s
}
