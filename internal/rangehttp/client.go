// Package rangehttp issues authenticated HTTP byte-range requests against
// a single remote URL over a persistent client. It is the "byte source"
// collaborator of the remote ZIP reader: everything above it only ever
// asks for a HEAD or a Range GET.
package rangehttp

import (
	"context"
	"crypto/tls"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"

	"golang.org/x/net/http2"
)

// HTTPError reports a transport-level failure: missing range support, a
// non-206 response to a ranged GET, a missing or unparseable
// Content-Length, or a network failure.
type HTTPError struct {
	msg string
	err error
}

func (e *HTTPError) Error() string {
	if e.err != nil {
		return fmt.Sprintf("rangehttp: %s: %v", e.msg, e.err)
	}
	return "rangehttp: " + e.msg
}

func (e *HTTPError) Unwrap() error { return e.err }

func httpErrorf(err error, format string, args ...any) error {
	return &HTTPError{msg: fmt.Sprintf(format, args...), err: err}
}

// HTTPVersion selects the transport's preferred protocol.
type HTTPVersion int

const (
	// HTTP1 forces HTTP/1.1.
	HTTP1 HTTPVersion = iota
	// HTTP2 configures the transport for HTTP/2, preferred because
	// directory loading issues several small sequential range reads
	// that multiplex well over one connection.
	HTTP2
)

// Option configures a Client at construction time.
type Option func(*config)

type config struct {
	headers     http.Header
	tlsConfig   *tls.Config
	httpVersion HTTPVersion
}

// WithHeaders merges the given headers into every request issued by the
// client (for example bearer tokens or custom auth schemes).
func WithHeaders(h http.Header) Option {
	return func(c *config) {
		if c.headers == nil {
			c.headers = make(http.Header)
		}
		for k, vs := range h {
			for _, v := range vs {
				c.headers.Add(k, v)
			}
		}
	}
}

// WithTLSConfig overrides the TLS configuration used for https:// URLs,
// for example to disable certificate verification against a self-signed
// archive host.
func WithTLSConfig(tc *tls.Config) Option {
	return func(c *config) { c.tlsConfig = tc }
}

// WithHTTPVersion selects HTTP/1.1 or HTTP/2 for the transport.
func WithHTTPVersion(v HTTPVersion) Option {
	return func(c *config) { c.httpVersion = v }
}

// Client issues HEAD and ranged GET requests against one archive URL.
type Client struct {
	url    string
	hc     *http.Client
	extra  http.Header
}

// New builds a Client for url. By default it prefers HTTP/2.
func New(url string, opts ...Option) *Client {
	cfg := config{httpVersion: HTTP2}
	for _, opt := range opts {
		opt(&cfg)
	}

	transport := &http.Transport{TLSClientConfig: cfg.tlsConfig}
	var rt http.RoundTripper = transport
	if cfg.httpVersion == HTTP2 {
		if err := http2.ConfigureTransport(transport); err == nil {
			rt = transport
		}
	} else {
		// A non-nil, empty TLSNextProto keeps net/http from negotiating
		// HTTP/2 on its own over TLS.
		transport.TLSNextProto = map[string]func(string, *tls.Conn) http.RoundTripper{}
	}

	return &Client{
		url:   url,
		hc:    &http.Client{Transport: rt},
		extra: cfg.headers,
	}
}

// Info is the result of head(): the archive's total length and whether
// the server advertised byte-range support.
type Info struct {
	TotalSize     int64
	AcceptsRanges bool
}

func (c *Client) newRequest(ctx context.Context, method string) (*http.Request, error) {
	req, err := http.NewRequestWithContext(ctx, method, c.url, nil)
	if err != nil {
		return nil, err
	}
	for k, vs := range c.extra {
		for _, v := range vs {
			req.Header.Add(k, v)
		}
	}
	return req, nil
}

// Head issues a single HEAD request. It fails with *HTTPError if the
// status is not 200, Accept-Ranges is absent or not "bytes", or
// Content-Length is missing or unparseable.
func (c *Client) Head(ctx context.Context) (Info, error) {
	req, err := c.newRequest(ctx, http.MethodHead)
	if err != nil {
		return Info{}, httpErrorf(err, "building HEAD request")
	}

	resp, err := c.hc.Do(req)
	if err != nil {
		return Info{}, httpErrorf(err, "HEAD request failed")
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return Info{}, httpErrorf(nil, "HEAD returned status %d, want 200", resp.StatusCode)
	}

	if !strings.EqualFold(strings.TrimSpace(resp.Header.Get("Accept-Ranges")), "bytes") {
		return Info{}, httpErrorf(nil, "server does not advertise Accept-Ranges: bytes")
	}

	cl := resp.Header.Get("Content-Length")
	if cl == "" {
		return Info{}, httpErrorf(nil, "missing Content-Length header")
	}
	size, err := strconv.ParseInt(cl, 10, 64)
	if err != nil {
		return Info{}, httpErrorf(err, "unparseable Content-Length %q", cl)
	}

	return Info{TotalSize: size, AcceptsRanges: true}, nil
}

// Range issues a GET for the half-open byte interval [start, end) and
// requires the server to answer with status 206. When streaming is
// false, the full body is buffered and returned with length exactly
// end-start; the caller must Close the returned body either way.
func (c *Client) Range(ctx context.Context, start, end int64, streaming bool) (io.ReadCloser, error) {
	if start < 0 || start >= end {
		return nil, fmt.Errorf("rangehttp: invalid range [%d, %d)", start, end)
	}

	req, err := c.newRequest(ctx, http.MethodGet)
	if err != nil {
		return nil, httpErrorf(err, "building range request")
	}
	req.Header.Set("Range", fmt.Sprintf("bytes=%d-%d", start, end-1))

	resp, err := c.hc.Do(req)
	if err != nil {
		return nil, httpErrorf(err, "range request failed")
	}

	if resp.StatusCode != http.StatusPartialContent {
		resp.Body.Close()
		return nil, httpErrorf(nil, "range GET returned status %d, want 206", resp.StatusCode)
	}

	if streaming {
		return resp.Body, nil
	}

	defer resp.Body.Close()
	want := end - start
	buf := make([]byte, want)
	if _, err := io.ReadFull(resp.Body, buf); err != nil {
		return nil, httpErrorf(err, "short read of ranged body, wanted %d bytes", want)
	}
	return io.NopCloser(&bytesReader{buf}), nil
}

// bytesReader adapts a fully-buffered slice to io.Reader without pulling
// in bytes.Reader's Seek/ReadAt surface the core never needs here.
type bytesReader struct{ b []byte }

func (r *bytesReader) Read(p []byte) (int, error) {
	n := copy(p, r.b)
	r.b = r.b[n:]
	if n == 0 && len(p) > 0 {
		return 0, io.EOF
	}
	return n, nil
}
