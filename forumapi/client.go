package forumapi

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

const (
	headerAPIKey   = "User-Api-Key"
	headerClientID = "User-Api-Client-Id"
	headerUsername = "Api-Username"
)

var (
	// ErrCredentialRejected is an exported constant or variable used by the forum API client.
	ErrCredentialRejected = errors.New("credential rejected by server")
	// ErrServerUnavailable is an exported constant or variable used by the forum API client.
	ErrServerUnavailable = errors.New("forum server unavailable")
)

// Credentials carries the headers for one authenticated request.
//
//	Docs: docs/functionality-forum-api.md
type Credentials struct {
	APIKey   string
	ClientID string
	Username string
}

// AuthorizeParams defines a public type used by linkAuth APIs.
//
// AuthorizeParams instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type AuthorizeParams struct {
	ApplicationName string
	ClientID        string
	Scopes          []string
	PublicKeyPEM    string
	AuthRedirect    string
	Nonce           string
}

// Config defines a public type used by linkAuth APIs.
//
// Config instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type Config struct {
	BaseURL       string
	Timeout       time.Duration
	RetryAttempts int
}

// Client defines a public type used by linkAuth APIs.
//
// Client instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type Client struct {
	base    *url.URL
	http    *http.Client
	timeout time.Duration
	retries int
}

// NewClient describes the newclient operation and its observable behavior.
//
// NewClient may return an error when input validation, dependency calls, or security checks fail.
// NewClient does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func NewClient(cfg Config, httpClient *http.Client) (*Client, error) {
	base, err := url.Parse(strings.TrimRight(cfg.BaseURL, "/"))
	if err != nil {
		return nil, fmt.Errorf("parse base url: %w", err)
	}
	if base.Scheme == "" || base.Host == "" {
		return nil, errors.New("base url must be absolute")
	}

	if httpClient == nil {
		httpClient = &http.Client{}
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	retries := cfg.RetryAttempts
	if retries < 0 {
		retries = 0
	}

	return &Client{base: base, http: httpClient, timeout: timeout, retries: retries}, nil
}

func (c *Client) endpoint(path string) string {
	return c.base.String() + path
}

// AuthorizeURL builds the /user-api-key/new URL the external browser opens.
// The nonce and public key travel only here; the server responds by
// redirecting to auth_redirect with the encrypted envelope.
func (c *Client) AuthorizeURL(p AuthorizeParams) string {
	q := url.Values{}
	q.Set("application_name", p.ApplicationName)
	q.Set("client_id", p.ClientID)
	q.Set("scopes", strings.Join(p.Scopes, ","))
	q.Set("public_key", p.PublicKeyPEM)
	q.Set("auth_redirect", p.AuthRedirect)
	q.Set("nonce", p.Nonce)
	return c.endpoint("/user-api-key/new") + "?" + q.Encode()
}

// OTPURL describes the otpurl operation and its observable behavior.
//
// OTPURL may return an error when input validation, dependency calls, or security checks fail.
// OTPURL does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (c *Client) OTPURL(otp string) string {
	return c.endpoint("/session/otp/" + url.PathEscape(otp))
}

// Revoke describes the revoke operation and its observable behavior.
//
// Revoke may return an error when input validation, dependency calls, or security checks fail.
// Revoke does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (c *Client) Revoke(ctx context.Context, apiKey string) error {
	resp, err := c.do(ctx, func(ctx context.Context) (*http.Request, error) {
		req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint("/user-api-key/revoke"), nil)
		if err != nil {
			return nil, err
		}
		req.Header.Set(headerAPIKey, apiKey)
		return req, nil
	})
	if err != nil {
		return err
	}
	defer drainAndClose(resp.Body)

	if err := classifyStatus(resp.StatusCode); err != nil {
		return err
	}
	return nil
}

type currentUserResponse struct {
	CurrentUser struct {
		Username string `json:"username"`
	} `json:"current_user"`
}

// CurrentUser describes the currentuser operation and its observable behavior.
//
// CurrentUser may return an error when input validation, dependency calls, or security checks fail.
// CurrentUser does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (c *Client) CurrentUser(ctx context.Context, creds Credentials) (string, error) {
	resp, err := c.do(ctx, func(ctx context.Context) (*http.Request, error) {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.endpoint("/session/current.json"), nil)
		if err != nil {
			return nil, err
		}
		req.Header.Set(headerAPIKey, creds.APIKey)
		if creds.ClientID != "" {
			req.Header.Set(headerClientID, creds.ClientID)
		}
		if creds.Username != "" {
			req.Header.Set(headerUsername, creds.Username)
		}
		return req, nil
	})
	if err != nil {
		return "", err
	}
	defer drainAndClose(resp.Body)

	if err := classifyStatus(resp.StatusCode); err != nil {
		return "", err
	}

	var decoded currentUserResponse
	if err := json.NewDecoder(io.LimitReader(resp.Body, 1<<20)).Decode(&decoded); err != nil {
		return "", fmt.Errorf("decode current user: %w", err)
	}
	if decoded.CurrentUser.Username == "" {
		return "", errors.New("current user response missing username")
	}
	return decoded.CurrentUser.Username, nil
}

// do issues one request with the client timeout, retrying transport-level
// failures up to the configured attempt limit. HTTP status handling is
// the caller's concern.
func (c *Client) do(ctx context.Context, build func(context.Context) (*http.Request, error)) (*http.Response, error) {
	var lastErr error

	for attempt := 0; attempt <= c.retries; attempt++ {
		reqCtx, cancel := context.WithTimeout(ctx, c.timeout)

		req, err := build(reqCtx)
		if err != nil {
			cancel()
			return nil, err
		}

		resp, err := c.http.Do(req)
		if err == nil {
			// cancel deliberately deferred to body close; the context
			// must outlive the body read.
			resp.Body = cancelOnClose{ReadCloser: resp.Body, cancel: cancel}
			return resp, nil
		}
		cancel()

		lastErr = err
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
	}

	return nil, fmt.Errorf("%w: %v", ErrServerUnavailable, lastErr)
}

func classifyStatus(status int) error {
	switch {
	case status >= 200 && status < 300:
		return nil
	case status == http.StatusUnauthorized || status == http.StatusForbidden:
		return ErrCredentialRejected
	default:
		return fmt.Errorf("%w: status %d", ErrServerUnavailable, status)
	}
}

type cancelOnClose struct {
	io.ReadCloser
	cancel context.CancelFunc
}

func (c cancelOnClose) Close() error {
	err := c.ReadCloser.Close()
	c.cancel()
	return err
}

func drainAndClose(body io.ReadCloser) {
	_, _ = io.Copy(io.Discard, io.LimitReader(body, 1<<16))
	_ = body.Close()
}
