// Package session is an HTTP client for the cafe API that attaches the
// access token to each request and transparently refreshes it once when
// the server rejects it.
package session

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
)

// API paths used by the session itself.
const (
	LoginPath   = "/api/user-unAuth/userLogin"
	RefreshPath = "/api/user-unAuth/refresh"
)

// ErrLoginRequired is returned when the session cannot be recovered and the
// user has to log in again.
var ErrLoginRequired = errors.New("login required")

// Client sends authenticated requests to the API.
type Client struct {
	BaseURL    string
	HTTPClient *http.Client
	Store      TokenStore
	// OnLoginRequired is called after the store was cleared because the
	// session could not be refreshed.
	OnLoginRequired func()
	Logger          *logrus.Logger
}

// NewClient creates a Client with an in-memory token store.
func NewClient(baseURL string, timeout time.Duration, logger *logrus.Logger) *Client {
	return &Client{
		BaseURL:    strings.TrimRight(baseURL, "/"),
		HTTPClient: &http.Client{Timeout: timeout},
		Store:      NewMemoryTokenStore(),
		Logger:     logger,
	}
}

// Login authenticates with email and password and stores the issued pair.
func (c *Client) Login(ctx context.Context, email, password string) error {
	payload, err := json.Marshal(map[string]string{"email": email, "password": password})
	if err != nil {
		return fmt.Errorf("failed to encode login request: %w", err)
	}
	resp, err := c.send(ctx, http.MethodPost, LoginPath, payload, "")
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		c.log().Warnf("Session: login failed with status %d", resp.StatusCode)
		return fmt.Errorf("login failed with status %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}

	var tokens Tokens
	if err := json.NewDecoder(resp.Body).Decode(&tokens); err != nil {
		return fmt.Errorf("failed to decode login response: %w", err)
	}
	c.Store.Save(tokens)
	return nil
}

// Do sends body as JSON to path with the stored access token. When the
// server answers 401 or 403 the session is refreshed and the request is
// retried exactly once; the retried response is returned as is. If the
// refresh is impossible the store is cleared, OnLoginRequired runs and
// ErrLoginRequired is returned. The caller closes the response body.
func (c *Client) Do(ctx context.Context, method, path string, body interface{}) (*http.Response, error) {
	var payload []byte
	if body != nil {
		var err error
		if payload, err = json.Marshal(body); err != nil {
			return nil, fmt.Errorf("failed to encode request body: %w", err)
		}
	}

	resp, err := c.send(ctx, method, path, payload, c.Store.Load().AccessToken)
	if err != nil {
		return nil, err
	}
	if !rejected(resp.StatusCode) {
		return resp, nil
	}
	drain(resp)

	c.log().Infof("Session: %s %s answered %d, refreshing tokens", method, path, resp.StatusCode)
	if err := c.refresh(ctx); err != nil {
		c.log().WithError(err).Warn("Session: refresh failed, login required")
		c.Store.Clear()
		if c.OnLoginRequired != nil {
			c.OnLoginRequired()
		}
		return nil, ErrLoginRequired
	}

	return c.send(ctx, method, path, payload, c.Store.Load().AccessToken)
}

func (c *Client) refresh(ctx context.Context) error {
	refreshToken := c.Store.Load().RefreshToken
	if refreshToken == "" {
		return errors.New("no refresh token stored")
	}
	payload, err := json.Marshal(map[string]string{"refreshToken": refreshToken})
	if err != nil {
		return fmt.Errorf("failed to encode refresh request: %w", err)
	}

	resp, err := c.send(ctx, http.MethodPost, RefreshPath, payload, "")
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("refresh returned status %d", resp.StatusCode)
	}

	var tokens Tokens
	if err := json.NewDecoder(resp.Body).Decode(&tokens); err != nil {
		return fmt.Errorf("failed to decode refresh response: %w", err)
	}
	if tokens.AccessToken == "" {
		return errors.New("refresh response carried no access token")
	}
	if tokens.RefreshToken == "" {
		tokens.RefreshToken = refreshToken
	}
	c.Store.Save(tokens)
	return nil
}

func (c *Client) send(ctx context.Context, method, path string, payload []byte, accessToken string) (*http.Response, error) {
	var reader io.Reader
	if payload != nil {
		reader = bytes.NewReader(payload)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.BaseURL+path, reader)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if accessToken != "" {
		req.Header.Set("Authorization", "Bearer "+accessToken)
	}

	resp, err := c.httpClient().Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to communicate with %s: %w", c.BaseURL, err)
	}
	return resp, nil
}

func (c *Client) httpClient() *http.Client {
	if c.HTTPClient == nil {
		return http.DefaultClient
	}
	return c.HTTPClient
}

func (c *Client) log() *logrus.Logger {
	if c.Logger == nil {
		return logrus.StandardLogger()
	}
	return c.Logger
}

func rejected(status int) bool {
	return status == http.StatusUnauthorized || status == http.StatusForbidden
}

func drain(resp *http.Response) {
	_, _ = io.Copy(io.Discard, resp.Body)
	resp.Body.Close()
}
