// Package rpc talks to the booking authority: a PostgREST-style HTTP API
// exposing stored procedures (rpc), table reads (select) and edge
// functions (invoke).  All concurrency control for reservations lives
// behind it.
package rpc

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

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/iliyamo/cowork-booking/internal/identity"
)

const maxBodyBytes = 1 << 20

// Options configures a Client.  BaseURL and APIKey are required.
type Options struct {
	BaseURL    string
	APIKey     string
	Timeout    time.Duration
	HTTPClient *http.Client
	Logger     *logrus.Entry
}

// Client is safe for concurrent use.
type Client struct {
	baseURL string
	apiKey  string
	http    *http.Client
	log     *logrus.Entry
}

// New builds a Client.  When no HTTPClient is supplied one is created with
// the given timeout (10s by default).
func New(opts Options) *Client {
	hc := opts.HTTPClient
	if hc == nil {
		timeout := opts.Timeout
		if timeout <= 0 {
			timeout = 10 * time.Second
		}
		hc = &http.Client{Timeout: timeout}
	}
	log := opts.Logger
	if log == nil {
		log = logrus.NewEntry(logrus.StandardLogger())
	}
	return &Client{
		baseURL: strings.TrimRight(opts.BaseURL, "/"),
		apiKey:  opts.APIKey,
		http:    hc,
		log:     log.WithField("component", "rpc"),
	}
}

// Call invokes a stored procedure: POST /rest/v1/rpc/{fn}.
func (c *Client) Call(ctx context.Context, fn string, params any, out any) error {
	return c.do(ctx, "rpc "+fn, http.MethodPost, "/rest/v1/rpc/"+fn, nil, params, out)
}

// Select reads rows from a table or view: GET /rest/v1/{table}?query.
// Filters use PostgREST syntax, e.g. type=eq.shared_workspace.
func (c *Client) Select(ctx context.Context, table string, query url.Values, out any) error {
	return c.do(ctx, "select "+table, http.MethodGet, "/rest/v1/"+table, query, nil, out)
}

// Invoke calls an edge function: POST /functions/v1/{fn}.
func (c *Client) Invoke(ctx context.Context, fn string, body any, out any) error {
	return c.do(ctx, "invoke "+fn, http.MethodPost, "/functions/v1/"+fn, nil, body, out)
}

func (c *Client) do(ctx context.Context, op, method, path string, query url.Values, body any, out any) error {
	u := c.baseURL + path
	if len(query) > 0 {
		u += "?" + query.Encode()
	}

	var rdr io.Reader
	if body != nil {
		buf, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("%s: encode: %w", op, err)
		}
		rdr = bytes.NewReader(buf)
	}
	req, err := http.NewRequestWithContext(ctx, method, u, rdr)
	if err != nil {
		return fmt.Errorf("%s: build request: %w", op, err)
	}

	reqID := uuid.NewString()
	bearer := c.apiKey
	if user, ok := identity.FromContext(ctx); ok {
		bearer = user.Token
	}
	req.Header.Set("apikey", c.apiKey)
	req.Header.Set("Authorization", "Bearer "+bearer)
	req.Header.Set("Accept", "application/json")
	req.Header.Set("X-Request-Id", reqID)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		c.log.WithFields(logrus.Fields{"op": op, "request_id": reqID}).WithError(err).Warn("authority unreachable")
		return &TransportError{Op: op, Err: err}
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return &TransportError{Op: op, Err: err}
	}
	c.log.WithFields(logrus.Fields{
		"op":         op,
		"status":     resp.StatusCode,
		"request_id": reqID,
		"elapsed":    time.Since(start).String(),
	}).Debug("authority call")

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return &BackendError{Op: op, Status: resp.StatusCode, Message: messageFrom(resp.StatusCode, raw), Body: raw}
	}
	if out == nil || len(bytes.TrimSpace(raw)) == 0 {
		return nil
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return fmt.Errorf("%s: decode: %w", op, err)
	}
	return nil
}
