// Copyright 2026 Harald Albrecht.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//    http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package fetch

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"net"
	"net/http"
	"time"

	"go.uber.org/zap"
)

// DefaultTimeout is the client-side timeout of XHR clients.
const DefaultTimeout = 5000 * time.Millisecond

// ErrTimeout is returned (wrapped) when a retrieval exceeds the client-side
// timeout.
var ErrTimeout = errors.New("request timeout")

// ErrNetwork is returned (wrapped) for transport failures, such as refused
// connections.
var ErrNetwork = errors.New("network error")

// StatusError reports a response with a status code not accepted as success.
type StatusError struct {
	Code int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("HTTP %d: %s", e.Code, http.StatusText(e.Code))
}

// Client retrieves fragments.
type Client struct {
	client  *http.Client
	timeout time.Duration
	fsys    fs.FS
	accept  func(status int) bool
	log     *zap.Logger
}

// Option sets optional properties at the time of creating a Client.
type Option func(*Client)

// WithTimeout sets the client-side timeout; zero means no timeout.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		c.timeout = d
	}
}

// WithFS serves "file" scheme URLs from the specified fs, mapping URL paths
// onto file names.
func WithFS(fsys fs.FS) Option {
	return func(c *Client) {
		c.fsys = fsys
	}
}

// WithHTTPClient sets the http.Client to use as the template for the
// Client's own http.Client; its Timeout gets overridden.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		if hc != nil {
			c.client = hc
		}
	}
}

// WithLogger sets the logger for per-request diagnostics.
func WithLogger(log *zap.Logger) Option {
	return func(c *Client) {
		if log != nil {
			c.log = log
		}
	}
}

// NewXHR returns a Client with a DefaultTimeout client-side timeout that
// accepts the status codes 0 and 200 as success.
func NewXHR(opts ...Option) *Client {
	return newClient(DefaultTimeout, func(status int) bool {
		return status == 0 || status == http.StatusOK
	}, opts)
}

// NewStandard returns a Client without client-side timeout that accepts any
// 2xx status code as success.
func NewStandard(opts ...Option) *Client {
	return newClient(0, func(status int) bool {
		return status >= 200 && status <= 299
	}, opts)
}

func newClient(timeout time.Duration, accept func(int) bool, opts []Option) *Client {
	c := &Client{
		client:  http.DefaultClient,
		timeout: timeout,
		accept:  accept,
		log:     zap.NewNop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	hc := *c.client
	hc.Timeout = c.timeout
	if c.fsys != nil {
		transport := http.DefaultTransport.(*http.Transport).Clone()
		transport.RegisterProtocol("file", http.NewFileTransportFS(c.fsys))
		hc.Transport = transport
	}
	c.client = &hc
	return c
}

// Fetch retrieves the text at the specified absolute URL.
func (c *Client) Fetch(ctx context.Context, rawURL string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return "", fmt.Errorf("invalid request for %s: %w", rawURL, err)
	}
	resp, err := c.client.Do(req)
	if err != nil {
		c.log.Debug("fetch failed", zap.String("url", rawURL), zap.Error(err))
		return "", classify(rawURL, err)
	}
	defer resp.Body.Close()
	c.log.Debug("fetched", zap.String("url", rawURL), zap.Int("status", resp.StatusCode))
	if !c.accept(resp.StatusCode) {
		_, _ = io.Copy(io.Discard, resp.Body)
		return "", &StatusError{Code: resp.StatusCode}
	}
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", classify(rawURL, err)
	}
	return string(body), nil
}

// Probe checks that a server answers at the specified origin. Any HTTP
// response counts, whatever its status.
func (c *Client) Probe(ctx context.Context, origin string) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, origin, nil)
	if err != nil {
		return fmt.Errorf("invalid probe request for %s: %w", origin, err)
	}
	resp, err := c.client.Do(req)
	if err != nil {
		return classify(origin, err)
	}
	_, _ = io.Copy(io.Discard, resp.Body)
	_ = resp.Body.Close()
	return nil
}

// classify wraps transport errors into ErrTimeout or ErrNetwork, except for
// the caller cancelling its context.
func classify(rawURL string, err error) error {
	if errors.Is(err, context.Canceled) {
		return fmt.Errorf("fetching %s: %w", rawURL, err)
	}
	var netErr net.Error
	if errors.Is(err, context.DeadlineExceeded) || (errors.As(err, &netErr) && netErr.Timeout()) {
		return fmt.Errorf("%w: %s", ErrTimeout, rawURL)
	}
	return fmt.Errorf("%w: %w", ErrNetwork, err)
}
