package httpclient

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"strings"
	"time"

	"go.uber.org/zap"

	"user-webclient/internal/usecase/user"
	apperrors "user-webclient/pkg/errors"
	"user-webclient/pkg/logger"
)

// PathParamPlaceholder is substituted with the escaped path parameter.
const PathParamPlaceholder = "{id}"

// DefaultMaxBodyBytes caps how much of a response body is read.
const DefaultMaxBodyBytes int64 = 1 << 20

// Config holds the HTTP client configuration
type Config struct {
	BaseURL        string
	ConnectTimeout time.Duration
	ReadTimeout    time.Duration
	WriteTimeout   time.Duration
	DefaultHeaders map[string]string
	MaxBodyBytes   int64
	// RequestInterceptors run in order before each request is sent.
	// When nil, NewRequestIDInterceptor and NewTraceContextInterceptor
	// are installed.
	RequestInterceptors []RequestInterceptor
}

// Client implements user.Client on top of net/http.
type Client struct {
	baseURL string
	hc      *http.Client
	cfg     Config
	log     *zap.Logger
}

var _ user.Client = (*Client)(nil)

// New creates a new HTTP client for the API at cfg.BaseURL.
func New(cfg Config, log *zap.Logger) (*Client, error) {
	u, err := url.Parse(cfg.BaseURL)
	if err != nil {
		return nil, fmt.Errorf("invalid base URL %q: %w", cfg.BaseURL, err)
	}
	if u.Scheme == "" || u.Host == "" {
		return nil, fmt.Errorf("invalid base URL %q: scheme and host are required", cfg.BaseURL)
	}

	if cfg.MaxBodyBytes <= 0 {
		cfg.MaxBodyBytes = DefaultMaxBodyBytes
	}
	if cfg.RequestInterceptors == nil {
		cfg.RequestInterceptors = []RequestInterceptor{
			NewRequestIDInterceptor(),
			NewTraceContextInterceptor(),
		}
	}

	return &Client{
		baseURL: strings.TrimRight(cfg.BaseURL, "/"),
		hc:      &http.Client{Transport: newTransport(cfg)},
		cfg:     cfg,
		log:     log,
	}, nil
}

// errReadTimeout is the cancellation cause of a stalled body read.
var errReadTimeout = errors.New("read timeout")

// newTransport applies the connect timeout to dialing, the write timeout to
// every write and the read timeout to the wait for response headers. Pooled
// connections carry no read deadline: the transport keeps a read pending on
// idle connections, and a deadline there would expire before reuse.
func newTransport(cfg Config) *http.Transport {
	dialer := &net.Dialer{
		Timeout:   cfg.ConnectTimeout,
		KeepAlive: 30 * time.Second,
	}

	return &http.Transport{
		Proxy: http.ProxyFromEnvironment,
		DialContext: func(ctx context.Context, network, addr string) (net.Conn, error) {
			conn, err := dialer.DialContext(ctx, network, addr)
			if err != nil {
				return nil, err
			}
			return &writeDeadlineConn{Conn: conn, timeout: cfg.WriteTimeout}, nil
		},
		TLSHandshakeTimeout:   cfg.ConnectTimeout,
		ResponseHeaderTimeout: cfg.ReadTimeout,
		MaxIdleConns:          100,
		IdleConnTimeout:       90 * time.Second,
	}
}

// Get expands template with param and performs a GET request.
func (c *Client) Get(ctx context.Context, template, param string) (*user.Response, error) {
	return c.do(ctx, http.MethodGet, c.ExpandURL(template, param))
}

// ExpandURL returns the absolute URL for template with param escaped into it.
func (c *Client) ExpandURL(template, param string) string {
	return c.baseURL + strings.ReplaceAll(template, PathParamPlaceholder, url.PathEscape(param))
}

// CloseIdleConnections releases pooled connections.
func (c *Client) CloseIdleConnections() {
	c.hc.CloseIdleConnections()
}

func (c *Client) do(ctx context.Context, method, target string) (*user.Response, error) {
	log := logger.WithContext(ctx, c.log)

	reqCtx, cancel := context.WithCancelCause(ctx)
	defer cancel(nil)

	req, err := http.NewRequestWithContext(reqCtx, method, target, http.NoBody)
	if err != nil {
		return nil, apperrors.NewInternalError("failed to build request", err)
	}

	req.Header.Set("Accept", "application/json")
	for k, v := range c.cfg.DefaultHeaders {
		req.Header.Set(k, v)
	}

	for _, intercept := range c.cfg.RequestInterceptors {
		if err := intercept(ctx, req); err != nil {
			return nil, apperrors.NewInternalError("request interceptor failed", err)
		}
	}

	log.Debug("REST client request",
		zap.String("method", method),
		zap.String("url", target),
		zap.String("request_id", req.Header.Get(logger.HeaderRequestID)),
	)

	start := time.Now()
	resp, err := c.hc.Do(req)
	if err != nil {
		log.Debug("REST client request failed",
			zap.String("method", method),
			zap.String("url", target),
			zap.Duration("elapsed", time.Since(start)),
			zap.Error(err),
		)
		return nil, apperrors.NewNetworkError(method, target, err)
	}
	defer resp.Body.Close()

	var r io.Reader = resp.Body
	if c.cfg.ReadTimeout > 0 {
		ir := newIdleReader(resp.Body, c.cfg.ReadTimeout, cancel)
		defer ir.stop()
		r = ir
	}

	body, err := io.ReadAll(io.LimitReader(r, c.cfg.MaxBodyBytes+1))
	if err != nil {
		if cause := context.Cause(reqCtx); errors.Is(cause, errReadTimeout) {
			err = cause
		}
		return nil, apperrors.NewNetworkError(method, target, fmt.Errorf("read body: %w", err))
	}
	if int64(len(body)) > c.cfg.MaxBodyBytes {
		return nil, apperrors.NewInternalError("response body too large",
			fmt.Errorf("%s %s: more than %d bytes", method, target, c.cfg.MaxBodyBytes))
	}

	log.Debug("REST client response",
		zap.String("method", method),
		zap.String("url", target),
		zap.Int("status", resp.StatusCode),
		zap.Int("bytes", len(body)),
		zap.Duration("elapsed", time.Since(start)),
	)

	return &user.Response{
		StatusCode: resp.StatusCode,
		Status:     resp.Status,
		Method:     method,
		URL:        target,
		Header:     resp.Header,
		Body:       body,
	}, nil
}

// writeDeadlineConn resets the write deadline before each write, so the
// timeout bounds inactivity rather than the whole request.
type writeDeadlineConn struct {
	net.Conn
	timeout time.Duration
}

func (c *writeDeadlineConn) Write(p []byte) (int, error) {
	if c.timeout > 0 {
		if err := c.Conn.SetWriteDeadline(time.Now().Add(c.timeout)); err != nil {
			return 0, err
		}
	}
	return c.Conn.Write(p)
}

// idleReader cancels the request when no body read completes within timeout.
type idleReader struct {
	r       io.Reader
	timeout time.Duration
	timer   *time.Timer
}

func newIdleReader(r io.Reader, timeout time.Duration, cancel context.CancelCauseFunc) *idleReader {
	return &idleReader{
		r:       r,
		timeout: timeout,
		timer:   time.AfterFunc(timeout, func() { cancel(errReadTimeout) }),
	}
}

func (ir *idleReader) Read(p []byte) (int, error) {
	n, err := ir.r.Read(p)
	if n > 0 {
		ir.timer.Reset(ir.timeout)
	}
	return n, err
}

func (ir *idleReader) stop() {
	ir.timer.Stop()
}
