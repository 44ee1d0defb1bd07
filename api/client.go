// Package api is a client for the maintenance backend's JSON-over-HTTP API.
//
// Every endpoint answers with an envelope of the form
//
//	{"success": true, "payload": ..., "message": "...", "error": "..."}
//
// The client unwraps the envelope and decodes the payload into the caller's
// type. Failures come back as *Error.
package api

import (
	"bytes"
	"context"
	"crypto/tls"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// RequestIDHeader carries a per-request correlation id.
const RequestIDHeader = "X-Request-Id"

// TokenSource supplies the bearer token attached to each request. An empty
// token means the request is sent unauthenticated.
type TokenSource interface {
	Token() string
}

// ClientParams holds configuration for creating a Client.
type ClientParams struct {
	BaseURL            string
	Tokens             TokenSource
	HTTPClient         *http.Client
	InsecureSkipVerify bool
	Timeout            time.Duration
}

// Client issues authenticated requests against the backend.
type Client struct {
	baseURL  *url.URL
	tokens   TokenSource
	http     *http.Client
	validate *validator.Validate
	log      *zap.SugaredLogger
}

// NewClient creates a Client for the API rooted at p.BaseURL,
// e.g. "https://maint.example.com/api".
func NewClient(p ClientParams) (*Client, error) {
	u, err := url.Parse(strings.TrimRight(p.BaseURL, "/"))
	if err != nil {
		return nil, fmt.Errorf("parsing base url: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, fmt.Errorf("base url %q must use http or https", p.BaseURL)
	}

	hc := p.HTTPClient
	if hc == nil {
		timeout := p.Timeout
		if timeout == 0 {
			timeout = 30 * time.Second
		}
		transport := http.DefaultTransport.(*http.Transport).Clone()
		if p.InsecureSkipVerify {
			transport.TLSClientConfig = &tls.Config{InsecureSkipVerify: true} //nolint:gosec // opt-in per server profile
		}
		hc = &http.Client{Timeout: timeout, Transport: transport}
	}

	return &Client{
		baseURL:  u,
		tokens:   p.Tokens,
		http:     hc,
		validate: validator.New(),
		log:      zap.S().Named("api"),
	}, nil
}

// BaseURL returns the API root the client was created with.
func (c *Client) BaseURL() string {
	return c.baseURL.String()
}

// SetTokens replaces the token source.
func (c *Client) SetTokens(ts TokenSource) {
	c.tokens = ts
}

type envelope struct {
	Success *bool           `json:"success"`
	Payload json.RawMessage `json:"payload"`
	Message string          `json:"message"`
	Error   json.RawMessage `json:"error"`
}

// errorText extracts a message from an "error" field that may be a plain
// string or an object with "message"/"error" keys.
func errorText(raw json.RawMessage) string {
	if len(raw) == 0 || string(raw) == "null" {
		return ""
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s
	}
	var obj struct {
		Message string `json:"message"`
		Error   string `json:"error"`
	}
	if err := json.Unmarshal(raw, &obj); err == nil {
		if obj.Message != "" {
			return obj.Message
		}
		return obj.Error
	}
	return ""
}

func (e envelope) text() string {
	if e.Message != "" {
		return e.Message
	}
	return errorText(e.Error)
}

func (c *Client) endpoint(path string, query url.Values) string {
	u := *c.baseURL
	u.Path = strings.TrimRight(u.Path, "/") + "/" + strings.TrimLeft(path, "/")
	if len(query) > 0 {
		u.RawQuery = query.Encode()
	}
	return u.String()
}

// do sends a request and decodes the envelope payload into out (if non-nil).
func (c *Client) do(ctx context.Context, method, path string, query url.Values, body, out any) error {
	var reader io.Reader
	if body != nil {
		buf, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encoding %s %s: %w", method, path, err)
		}
		reader = bytes.NewReader(buf)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.endpoint(path, query), reader)
	if err != nil {
		return fmt.Errorf("building %s %s: %w", method, path, err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	req.Header.Set(RequestIDHeader, uuid.NewString())
	if c.tokens != nil {
		if tok := c.tokens.Token(); tok != "" {
			req.Header.Set("Authorization", "Bearer "+tok)
		}
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("reading %s %s: %w", method, path, err)
	}

	var env envelope
	decodeErr := json.Unmarshal(raw, &env)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		msg := env.text()
		if decodeErr != nil || msg == "" {
			msg = http.StatusText(resp.StatusCode)
		}
		c.log.Debugw("request failed", "method", method, "path", path, "status", resp.StatusCode, "message", msg)
		return &Error{StatusCode: resp.StatusCode, Message: msg}
	}
	if decodeErr != nil {
		return fmt.Errorf("decoding %s %s: %w", method, path, decodeErr)
	}
	if env.Success != nil && !*env.Success {
		msg := env.text()
		if msg == "" {
			msg = "request was not successful"
		}
		return &Error{StatusCode: resp.StatusCode, Message: msg}
	}

	if out == nil || len(env.Payload) == 0 || string(env.Payload) == "null" {
		return nil
	}
	if err := json.Unmarshal(env.Payload, out); err != nil {
		return fmt.Errorf("decoding %s %s payload: %w", method, path, err)
	}
	return nil
}

// check validates a request struct before it is sent. Failures are reported
// the same way the backend reports a rejected body.
func (c *Client) check(req any) error {
	if err := c.validate.Struct(req); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) {
			fields := make([]string, 0, len(verrs))
			for _, fe := range verrs {
				fields = append(fields, fmt.Sprintf("%s failed %q", fe.Field(), fe.Tag()))
			}
			return &Error{StatusCode: http.StatusBadRequest, Message: strings.Join(fields, "; ")}
		}
		return err
	}
	return nil
}

func (c *Client) get(ctx context.Context, path string, query url.Values, out any) error {
	return c.do(ctx, http.MethodGet, path, query, nil, out)
}

func (c *Client) post(ctx context.Context, path string, body, out any) error {
	return c.do(ctx, http.MethodPost, path, nil, body, out)
}

func (c *Client) put(ctx context.Context, path string, body, out any) error {
	return c.do(ctx, http.MethodPut, path, nil, body, out)
}

func (c *Client) patch(ctx context.Context, path string, body, out any) error {
	return c.do(ctx, http.MethodPatch, path, nil, body, out)
}

func (c *Client) delete(ctx context.Context, path string) error {
	return c.do(ctx, http.MethodDelete, path, nil, nil, nil)
}

func pathf(format string, ids ...string) string {
	args := make([]any, len(ids))
	for i, id := range ids {
		args[i] = url.PathEscape(id)
	}
	return fmt.Sprintf(format, args...)
}
