package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"golang.org/x/net/proxy"

	"github.com/nao1215/sitescan/internal/model"
)

// Defaults used when no option overrides them.
const (
	// DefaultTimeout bounds a single analysis request.
	DefaultTimeout = 180 * time.Second

	// DefaultMaxBodySize limits how much of the response is read.
	DefaultMaxBodySize int64 = 10 * 1024 * 1024

	// maxErrorBodySize limits how much of an error response is read for
	// its message.
	maxErrorBodySize = 4 * 1024
)

// ErrResponseTooLarge is returned when the response body exceeds the
// configured size limit. The payload is discarded rather than truncated.
var ErrResponseTooLarge = errors.New("scanning service response exceeds size limit")

// Client sends analysis requests to the scanning service.
// A Client is safe for concurrent use by multiple goroutines.
type Client struct {
	// endpoint is the analysis route of the service.
	endpoint string

	// proxyAddress is the optional SOCKS5 proxy in "host:port" format.
	proxyAddress string

	// dialer is the SOCKS5 dialer, nil for direct connections.
	dialer proxy.Dialer

	httpClient  *http.Client
	timeout     time.Duration
	userAgent   string
	headers     map[string]string
	maxBodySize int64
	logger      *slog.Logger
}

// Option configures a Client.
type Option func(*Client)

// WithTimeout sets the timeout of the underlying HTTP client.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		if d > 0 {
			c.timeout = d
		}
	}
}

// WithProxy routes requests through a SOCKS5 proxy at "host:port".
// An empty address means a direct connection.
func WithProxy(address string) Option {
	return func(c *Client) {
		c.proxyAddress = address
	}
}

// WithUserAgent sets the User-Agent header.
func WithUserAgent(ua string) Option {
	return func(c *Client) {
		c.userAgent = ua
	}
}

// WithHeaders adds headers sent with every request.
func WithHeaders(headers map[string]string) Option {
	return func(c *Client) {
		for k, v := range headers {
			c.headers[k] = v
		}
	}
}

// WithMaxBodySize sets the response size limit. Zero or negative keeps the default.
func WithMaxBodySize(n int64) Option {
	return func(c *Client) {
		if n > 0 {
			c.maxBodySize = n
		}
	}
}

// WithLogger sets the logger for request diagnostics.
func WithLogger(logger *slog.Logger) Option {
	return func(c *Client) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// WithHTTPClient replaces the HTTP client. The proxy option is ignored
// when a client is supplied.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		c.httpClient = hc
	}
}

// New creates a Client for the service at endpoint.
//
// The endpoint must be an absolute http or https URL. The proxy address,
// if any, is validated here, but New does not connect to anything; call
// CheckProxy to verify the proxy is reachable.
func New(endpoint string, opts ...Option) (*Client, error) {
	u, err := url.Parse(endpoint)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return nil, fmt.Errorf("%w: %q", ErrInvalidEndpoint, endpoint)
	}

	c := &Client{
		endpoint:    endpoint,
		timeout:     DefaultTimeout,
		headers:     make(map[string]string),
		maxBodySize: DefaultMaxBodySize,
		logger:      slog.Default(),
	}
	for _, opt := range opts {
		opt(c)
	}

	if c.proxyAddress != "" {
		if !isValidProxyAddress(c.proxyAddress) {
			return nil, ErrInvalidProxyAddress
		}
		// The service's SOCKS port is assumed not to require auth.
		c.dialer, err = proxy.SOCKS5("tcp", c.proxyAddress, nil, proxy.Direct)
		if err != nil {
			return nil, fmt.Errorf("failed to create SOCKS5 dialer: %w", err)
		}
	}

	if c.httpClient == nil {
		c.httpClient = c.newHTTPClient()
	}

	return c, nil
}

// newHTTPClient builds the HTTP client, routed through the proxy if one is set.
func (c *Client) newHTTPClient() *http.Client {
	transport := http.DefaultTransport.(*http.Transport).Clone() //nolint:forcetypeassert // DefaultTransport is always *http.Transport
	if c.dialer != nil {
		transport.Proxy = nil
		if cd, ok := c.dialer.(proxy.ContextDialer); ok {
			transport.DialContext = cd.DialContext
		} else {
			transport.DialContext = func(_ context.Context, network, addr string) (net.Conn, error) {
				return c.dialer.Dial(network, addr)
			}
		}
	}

	return &http.Client{
		Transport: transport,
		Timeout:   c.timeout,
	}
}

// isValidProxyAddress checks if the address is in valid "host:port" format.
func isValidProxyAddress(address string) bool {
	host, port, err := net.SplitHostPort(address)
	if err != nil || host == "" {
		return false
	}
	n, err := strconv.Atoi(port)
	return err == nil && n >= 1 && n <= 65535
}

// Endpoint returns the configured service URL.
func (c *Client) Endpoint() string {
	return c.endpoint
}

// ProxyAddress returns the configured proxy address, empty when direct.
func (c *Client) ProxyAddress() string {
	return c.proxyAddress
}

// analyzeRequest is the body of an analysis request.
type analyzeRequest struct {
	URL string `json:"url"`
}

// errorResponse is the body the service returns with a failure status.
type errorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}

// RequestOption adjusts a single analysis request.
type RequestOption func(*http.Request)

// WithRequestHeaders sets headers on one request, overriding the client's.
func WithRequestHeaders(headers map[string]string) RequestOption {
	return func(req *http.Request) {
		for k, v := range headers {
			req.Header.Set(k, v)
		}
	}
}

// Analyze asks the service to analyze target and returns the decoded
// response body. It either returns the complete body or an error; a
// truncated or partially decoded payload is never returned.
func (c *Client) Analyze(ctx context.Context, target string, opts ...RequestOption) (model.RawResponse, error) {
	target = strings.TrimSpace(target)
	if target == "" {
		return nil, ErrEmptyTarget
	}

	body, err := json.Marshal(analyzeRequest{URL: target})
	if err != nil {
		return nil, fmt.Errorf("failed to encode request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	if c.userAgent != "" {
		req.Header.Set("User-Agent", c.userAgent)
	}
	for k, v := range c.headers {
		req.Header.Set(k, v)
	}
	for _, opt := range opts {
		opt(req)
	}

	c.logger.Debug("requesting analysis",
		"target", target,
		"endpoint", c.endpoint,
		"proxied", c.dialer != nil,
	)

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("analysis request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, upstreamError(resp)
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, c.maxBodySize+1))
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}
	if int64(len(data)) > c.maxBodySize {
		return nil, fmt.Errorf("%w (%d bytes)", ErrResponseTooLarge, c.maxBodySize)
	}

	var raw model.RawResponse
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrDecodeResponse, err)
	}
	if raw == nil {
		return nil, fmt.Errorf("%w: body is not a JSON object", ErrDecodeResponse)
	}

	c.logger.Debug("analysis received",
		"target", target,
		"status", resp.StatusCode,
		"bytes", len(data),
		"elapsed", time.Since(start).Round(time.Millisecond),
	)

	return raw, nil
}

// upstreamError builds an ErrUpstreamStatus error, including the service's
// own error message when the body carries one.
func upstreamError(resp *http.Response) error {
	data, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBodySize)) //nolint:errcheck // message is best effort

	var body errorResponse
	if err := json.Unmarshal(data, &body); err == nil && (body.Error != "" || body.Message != "") {
		return fmt.Errorf("%w: %d %s: %s", ErrUpstreamStatus, resp.StatusCode, body.Error, body.Message)
	}
	return fmt.Errorf("%w: %d %s", ErrUpstreamStatus, resp.StatusCode, http.StatusText(resp.StatusCode))
}
