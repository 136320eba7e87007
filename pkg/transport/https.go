package transport

import (
	"bytes"
	"context"
	"crypto/tls"
	"crypto/x509"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"strings"
	"time"
)

// TLS version constants
const (
	TLS12 = tls.VersionTLS12
	TLS13 = tls.VersionTLS13
)

// DefaultContentType is the SOAP 1.1 media type the AEAT services expect.
const DefaultContentType = "text/xml; charset=utf-8"

// Options contains client configuration.
type Options struct {
	// ConnectTimeout bounds DNS resolution, TCP connect and the TLS
	// handshake for a single attempt.
	ConnectTimeout time.Duration

	// ReadTimeout bounds the wait for the response once the request has
	// been written.
	ReadTimeout time.Duration

	// MaxAttempts caps connection attempts for one logical send.
	MaxAttempts int

	// RetryBackoff is the wait before the second attempt; it doubles per
	// attempt up to MaxBackoff.
	RetryBackoff time.Duration
	MaxBackoff   time.Duration

	MinTLSVersion uint16

	// RootCAs overrides the system pool. Nil means system roots, which is
	// what production against AEAT uses.
	RootCAs *x509.CertPool

	UserAgent string

	// OnRetry is invoked before each re-attempt with the number of the
	// attempt that just failed and its error.
	OnRetry func(attempt int, err error)
}

// DefaultOptions returns the configuration used against the AEAT services.
func DefaultOptions() Options {
	return Options{
		ConnectTimeout: 10 * time.Second,
		ReadTimeout:    60 * time.Second,
		MaxAttempts:    3,
		RetryBackoff:   500 * time.Millisecond,
		MaxBackoff:     5 * time.Second,
		MinTLSVersion:  TLS12,
		UserAgent:      "aeat-sender/1.0",
	}
}

// Request is one SOAP POST.
type Request struct {
	URL string

	// SOAPAction is sent quoted per SOAP 1.1. Empty is what AEAT expects.
	SOAPAction string

	// ContentType defaults to DefaultContentType when empty.
	ContentType string

	Body []byte

	// Certificate is the client identity presented during the handshake.
	Certificate tls.Certificate
}

// Response carries the reply regardless of status code. Classifying non-2xx
// replies is the caller's job: AEAT returns SOAP Faults with status 500.
type Response struct {
	StatusCode int
	Status     string
	Body       []byte

	// Attempts is the number of connection attempts the send took.
	Attempts int
}

// Client posts SOAP envelopes over mutual TLS.
type Client struct {
	opts Options
}

// New creates a client, filling unset options with defaults.
func New(opts Options) *Client {
	def := DefaultOptions()
	if opts.ConnectTimeout <= 0 {
		opts.ConnectTimeout = def.ConnectTimeout
	}
	if opts.ReadTimeout <= 0 {
		opts.ReadTimeout = def.ReadTimeout
	}
	if opts.MaxAttempts <= 0 {
		opts.MaxAttempts = def.MaxAttempts
	}
	if opts.RetryBackoff <= 0 {
		opts.RetryBackoff = def.RetryBackoff
	}
	if opts.MaxBackoff <= 0 {
		opts.MaxBackoff = def.MaxBackoff
	}
	if opts.MinTLSVersion == 0 {
		opts.MinTLSVersion = def.MinTLSVersion
	}
	if opts.UserAgent == "" {
		opts.UserAgent = def.UserAgent
	}
	return &Client{opts: opts}
}

// Do sends the request, retrying connection-establishment failures up to
// MaxAttempts with doubling backoff. Errors after the request has been
// written are returned immediately: a send that may have reached AEAT is
// never repeated.
func (c *Client) Do(ctx context.Context, req *Request) (*Response, error) {
	if req.URL == "" {
		return nil, errors.New("transport: request URL is empty")
	}

	backoff := c.opts.RetryBackoff
	for attempt := 1; ; attempt++ {
		resp, err := c.doOnce(ctx, req)
		if err == nil {
			resp.Attempts = attempt
			return resp, nil
		}

		if attempt >= c.opts.MaxAttempts || !retryableDial(err) {
			return nil, err
		}
		if c.opts.OnRetry != nil {
			c.opts.OnRetry(attempt, err)
		}

		select {
		case <-ctx.Done():
			return nil, fmt.Errorf("sending request: %w", ctx.Err())
		case <-time.After(backoff):
		}
		backoff *= 2
		if backoff > c.opts.MaxBackoff {
			backoff = c.opts.MaxBackoff
		}
	}
}

func (c *Client) doOnce(ctx context.Context, req *Request) (*Response, error) {
	dialer := &net.Dialer{Timeout: c.opts.ConnectTimeout}
	httpTransport := &http.Transport{
		DialContext:           dialer.DialContext,
		TLSHandshakeTimeout:   c.opts.ConnectTimeout,
		ResponseHeaderTimeout: c.opts.ReadTimeout,
		TLSClientConfig: &tls.Config{
			MinVersion:   c.opts.MinTLSVersion,
			Certificates: []tls.Certificate{req.Certificate},
			RootCAs:      c.opts.RootCAs,
		},
		// One connection per dispatch. A fresh, never-reused connection
		// also keeps net/http from transparently replaying the request.
		DisableKeepAlives: true,
	}
	defer httpTransport.CloseIdleConnections()

	// Hard cap per attempt covering the body read as well; the header
	// timeout above only reaches the first response byte.
	attemptCtx, cancel := context.WithTimeout(ctx, c.opts.ConnectTimeout+c.opts.ReadTimeout)
	defer cancel()

	httpReq, err := http.NewRequestWithContext(attemptCtx, http.MethodPost, req.URL, bytes.NewReader(req.Body))
	if err != nil {
		return nil, fmt.Errorf("building request: %w", err)
	}

	contentType := req.ContentType
	if contentType == "" {
		contentType = DefaultContentType
	}
	httpReq.Header.Set("Content-Type", contentType)
	httpReq.Header.Set("User-Agent", c.opts.UserAgent)
	httpReq.Header.Set("SOAPAction", formatSOAPAction(req.SOAPAction))

	client := &http.Client{Transport: httpTransport}
	resp, err := client.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("sending request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("reading response body: %w", err)
	}

	return &Response{
		StatusCode: resp.StatusCode,
		Status:     resp.Status,
		Body:       body,
	}, nil
}

// retryableDial reports whether the error happened while establishing the
// connection, before any request bytes could have been written.
func retryableDial(err error) bool {
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return false
	}
	var dnsErr *net.DNSError
	if errors.As(err, &dnsErr) {
		return true
	}
	var opErr *net.OpError
	if errors.As(err, &opErr) {
		return opErr.Op == "dial"
	}
	return false
}

// formatSOAPAction renders the quoted header value SOAP 1.1 prescribes.
func formatSOAPAction(action string) string {
	if strings.HasPrefix(action, `"`) && strings.HasSuffix(action, `"`) && len(action) >= 2 {
		return action
	}
	return `"` + action + `"`
}
