package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/dmitrijs2005/bidmatch/internal/common"
	"github.com/dmitrijs2005/bidmatch/internal/logging"
	"github.com/google/uuid"
)

const (
	loginPath          = "/auth/login"
	refreshPath        = "/auth/refresh"
	changePasswordPath = "/auth/change-password"

	maxErrorBody = 64 << 10
)

// HTTPClient implements Client over JSON/HTTP.
type HTTPClient struct {
	baseURL *url.URL
	prefix  string
	http    *http.Client
	log     logging.Logger
}

type Option func(*HTTPClient)

// WithHTTPClient sets the underlying client. Share it with the cookie mirror
// so its jar is sent to the backend.
func WithHTTPClient(c *http.Client) Option {
	return func(h *HTTPClient) { h.http = c }
}

// WithPathPrefix mounts the auth endpoints under prefix, e.g. "/writers".
func WithPathPrefix(prefix string) Option {
	return func(h *HTTPClient) { h.prefix = strings.TrimRight(prefix, "/") }
}

func WithLogger(l logging.Logger) Option {
	return func(h *HTTPClient) { h.log = l }
}

func NewHTTPClient(baseURL string, opts ...Option) (*HTTPClient, error) {
	u, err := url.Parse(baseURL)
	if err != nil {
		return nil, fmt.Errorf("parse base url: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, fmt.Errorf("base url %q: scheme must be http or https", baseURL)
	}

	c := &HTTPClient{baseURL: u, http: http.DefaultClient, log: logging.Discard()}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

func (c *HTTPClient) Login(ctx context.Context, email, password string) (*LoginResponse, error) {
	var resp LoginResponse
	if err := c.do(ctx, loginPath, "", loginRequest{Email: email, Password: password}, &resp); err != nil {
		return nil, err
	}
	if resp.AccessToken == "" || resp.RefreshToken == "" {
		return nil, fmt.Errorf("%w: login response without tokens", ErrBadResponse)
	}
	return &resp, nil
}

func (c *HTTPClient) Refresh(ctx context.Context, refreshToken string) (string, error) {
	var resp refreshResponse
	if err := c.do(ctx, refreshPath, refreshToken, nil, &resp); err != nil {
		return "", err
	}
	if resp.AccessToken == "" {
		return "", fmt.Errorf("%w: refresh response without access_token", ErrBadResponse)
	}
	return resp.AccessToken, nil
}

func (c *HTTPClient) ChangePassword(ctx context.Context, accessToken, oldPassword, newPassword string) error {
	req := changePasswordRequest{OldPassword: oldPassword, NewPassword: newPassword}
	return c.do(ctx, changePasswordPath, accessToken, req, nil)
}

// do POSTs in as JSON to path and decodes a 2xx body into out.
func (c *HTTPClient) do(ctx context.Context, path, bearer string, in, out any) error {
	var body io.Reader
	if in != nil {
		b, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("encode request: %w", err)
		}
		body = bytes.NewReader(b)
	}

	endpoint := c.baseURL.JoinPath(c.prefix, path)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint.String(), body)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}

	requestID := uuid.NewString()
	req.Header.Set("Accept", "application/json")
	req.Header.Set(common.RequestIDHeaderName, requestID)
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if bearer != "" {
		req.Header.Set(common.AuthorizationHeaderName, common.BearerValue(bearer))
	}

	resp, err := c.http.Do(req)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return fmt.Errorf("%w: %w", ErrUnavailable, ctxErr)
		}
		return fmt.Errorf("%w: %w", ErrUnavailable, err)
	}
	defer resp.Body.Close()

	c.log.Debug(ctx, "auth request", "path", endpoint.Path, "status", resp.StatusCode, "request_id", requestID)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		b, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		return &APIError{Status: resp.StatusCode, Message: MessageFromBody(b)}
	}

	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil && !errors.Is(err, io.EOF) {
		return fmt.Errorf("%w: %w", ErrBadResponse, err)
	}
	return nil
}
