package apiclient

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/google/uuid"
	"github.com/pkg/errors"

	"github.com/trezcool/academia/core"
	"github.com/trezcool/academia/core/academy"
)

// Credentials provides the bearer token sent with every request.
// Invalidate is called with the token of a request answered by a 401.
type Credentials interface {
	Token() string
	Invalidate(token string)
}

type Option func(*Client)

// WithHTTPClient replaces the default http.Client (tests).
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.http = hc }
}

func WithLogger(logger core.Logger) Option {
	return func(c *Client) { c.logger = logger }
}

// Client talks to the academy REST API.
type Client struct {
	api    string
	http   *http.Client
	creds  Credentials
	logger core.Logger
}

func New(conf core.APIConfig, creds Credentials, opts ...Option) *Client {
	c := &Client{
		api:   strings.TrimRight(conf.BaseURL, "/"),
		http:  &http.Client{Timeout: conf.Timeout},
		creds: creds,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// apipath joins the API root and path without doubling slashes.
func (c *Client) apipath(path string, query url.Values) string {
	u := c.api + "/" + strings.TrimLeft(path, "/")
	if len(query) > 0 {
		u += "?" + query.Encode()
	}
	return u
}

func (c *Client) token() string {
	if c.creds == nil {
		return ""
	}
	return c.creds.Token()
}

// do sends a JSON request and decodes the envelope's data into out (if not nil).
func (c *Client) do(ctx context.Context, method, path string, query url.Values, body, out interface{}) error {
	var rdr io.Reader
	if body != nil {
		buf, err := json.Marshal(body)
		if err != nil {
			return errors.Wrap(err, "encoding request body")
		}
		rdr = bytes.NewReader(buf)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.apipath(path, query), rdr)
	if err != nil {
		return errors.Wrap(err, "building request")
	}
	reqID := uuid.NewString()
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	req.Header.Set("X-Request-ID", reqID)
	token := c.token()
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return &Error{Kind: KindTransport, Message: fmt.Sprintf("%s %s failed", method, path), Err: err}
	}
	defer resp.Body.Close()

	// the credential was invalidated while this request was in flight
	if token != "" && c.token() != token {
		return &Error{Kind: KindUnauthorized, Status: resp.StatusCode, Message: "session expired"}
	}

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return &Error{Kind: KindTransport, Status: resp.StatusCode, Message: "reading response", Err: err}
	}
	c.debug(method, path, reqID, resp.StatusCode)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		apiErr := newStatusError(resp.StatusCode, serverMessage(raw))
		if apiErr.Kind == KindUnauthorized && token != "" {
			c.creds.Invalidate(token)
		}
		return apiErr
	}

	if len(bytes.TrimSpace(raw)) == 0 { // 204 & co
		return nil
	}

	var env academy.Envelope[json.RawMessage]
	if err := json.Unmarshal(raw, &env); err != nil {
		return &Error{Kind: KindTransport, Status: resp.StatusCode, Message: "malformed response", Err: err}
	}
	if !env.Success {
		msg := env.Error
		if msg == "" {
			msg = "request rejected"
		}
		return &Error{Kind: KindRejected, Status: resp.StatusCode, Message: msg}
	}
	if out == nil || len(env.Data) == 0 {
		return nil
	}
	if err := json.Unmarshal(env.Data, out); err != nil {
		return &Error{Kind: KindTransport, Status: resp.StatusCode, Message: "malformed response data", Err: err}
	}
	return nil
}

func (c *Client) debug(method, path, reqID string, status int) {
	if c.logger != nil {
		c.logger.Debug(fmt.Sprintf("%s %s -> %d", method, path, status), map[string]interface{}{"request_id": reqID})
	}
}

// serverMessage extracts the error message of a non-2xx body, if it is an envelope.
func serverMessage(raw []byte) string {
	var env academy.Envelope[json.RawMessage]
	if err := json.Unmarshal(raw, &env); err != nil {
		return ""
	}
	return env.Error
}

// decodeList accepts both a bare array and a {"items": [...]} page.
func decodeList[E any](raw json.RawMessage) ([]E, error) {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return []E{}, nil
	}
	if raw[0] == '[' {
		items := make([]E, 0)
		if err := json.Unmarshal(raw, &items); err != nil {
			return nil, err
		}
		return items, nil
	}
	var page academy.Page[E]
	if err := json.Unmarshal(raw, &page); err != nil {
		return nil, err
	}
	if page.Items == nil {
		return []E{}, nil
	}
	return page.Items, nil
}
