package fetch

import (
	"bytes"
	"compress/gzip"
	"context"
	"crypto/tls"
	"encoding/json"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"strings"
	"sync"
	"sync/atomic"

	"github.com/andybalholm/brotli"
	"github.com/sirupsen/logrus"
	"golang.org/x/net/publicsuffix"

	"feed-scraper/pkg/config"
	"feed-scraper/pkg/utils"
)

// Encoding controls how POST parameters are serialized.
type Encoding int

const (
	EncodingDefault Encoding = iota // application/x-www-form-urlencoded
	EncodingJSON                    // application/json
	EncodingRaw                     // params joined verbatim, no content type set
)

// Response is the outcome of a single completed HTTP exchange.
type Response struct {
	StatusCode int
	Header     http.Header
	Body       []byte
	FinalURL   string // URL after redirects
	Link       Link   // the frontier link that produced this response
	Err        error  // terminal fetch error, nil on success
}

// String returns the decoded body.
func (r *Response) String() string {
	if r == nil {
		return ""
	}
	return string(r.Body)
}

// Client wraps a shared http.Client with a cookie jar, mutable default
// headers, and a swappable outbound proxy. Safe for concurrent use.
type Client struct {
	httpClient *http.Client
	jar        http.CookieJar
	log        *logrus.Entry

	headerMu sync.RWMutex
	headers  map[string]string

	proxy atomic.Pointer[url.URL]
}

// NewClient builds a Client from the shared HTTP settings.
func NewClient(cfg config.HTTPClientConfig, log *logrus.Entry) (*Client, error) {
	jar, err := cookiejar.New(&cookiejar.Options{PublicSuffixList: publicsuffix.List})
	if err != nil {
		return nil, fmt.Errorf("creating cookie jar: %w", err)
	}

	c := &Client{
		jar:     jar,
		log:     log.WithField("component", "fetch_client"),
		headers: make(map[string]string),
	}

	dialer := &net.Dialer{
		Timeout:   cfg.DialerTimeout,
		KeepAlive: cfg.DialerKeepAlive,
	}

	transport := &http.Transport{
		Proxy:                 c.proxyFunc,
		DialContext:           dialer.DialContext,
		MaxIdleConns:          cfg.MaxIdleConns,
		MaxIdleConnsPerHost:   cfg.MaxIdleConnsPerHost,
		IdleConnTimeout:       cfg.IdleConnTimeout,
		TLSHandshakeTimeout:   cfg.TLSHandshakeTimeout,
		ExpectContinueTimeout: cfg.ExpectContinueTimeout,
	}
	if cfg.ForceAttemptHTTP2 != nil {
		transport.ForceAttemptHTTP2 = *cfg.ForceAttemptHTTP2
	} else {
		transport.ForceAttemptHTTP2 = true
	}
	if cfg.InsecureSkipVerify {
		transport.TLSClientConfig = &tls.Config{InsecureSkipVerify: true}
	}

	c.httpClient = &http.Client{
		Timeout:   cfg.Timeout,
		Transport: transport,
		Jar:       jar,
	}
	return c, nil
}

// proxyFunc routes requests through the currently assigned proxy, if any.
func (c *Client) proxyFunc(_ *http.Request) (*url.URL, error) {
	return c.proxy.Load(), nil
}

// SetProxy assigns the outbound proxy for subsequent requests. Passing nil
// restores direct connections.
func (c *Client) SetProxy(u *url.URL) {
	c.proxy.Store(u)
}

// Proxy returns the currently assigned proxy, or nil for direct connections.
func (c *Client) Proxy() *url.URL {
	return c.proxy.Load()
}

// SetHeader sets a default header sent with every request.
func (c *Client) SetHeader(key, value string) {
	c.headerMu.Lock()
	c.headers[key] = value
	c.headerMu.Unlock()
}

// SetHeaders merges a header map into the defaults.
func (c *Client) SetHeaders(headers map[string]string) {
	c.headerMu.Lock()
	for k, v := range headers {
		c.headers[k] = v
	}
	c.headerMu.Unlock()
}

// RemoveHeader deletes a default header.
func (c *Client) RemoveHeader(key string) {
	c.headerMu.Lock()
	delete(c.headers, key)
	c.headerMu.Unlock()
}

// Header returns the current value of a default header.
func (c *Client) Header(key string) string {
	c.headerMu.RLock()
	defer c.headerMu.RUnlock()
	return c.headers[key]
}

// SetCookies seeds cookies for a URL into the shared jar. Cookies are also
// mirrored onto the www/bare twin of the host so sites that bounce between
// the two keep the session.
func (c *Client) SetCookies(rawURL string, cookies []*http.Cookie) error {
	u, err := url.Parse(rawURL)
	if err != nil {
		return fmt.Errorf("%w: cookie URL: %v", utils.ErrParsing, err)
	}
	c.jar.SetCookies(u, cookies)

	if twin := twinHost(u.Hostname()); twin != "" {
		tu := *u
		tu.Host = twin
		c.jar.SetCookies(&tu, cookies)
	}
	return nil
}

// Cookies returns the cookies the jar would send to a URL.
func (c *Client) Cookies(rawURL string) []*http.Cookie {
	u, err := url.Parse(rawURL)
	if err != nil {
		return nil
	}
	return c.jar.Cookies(u)
}

// twinHost returns the www-prefixed or www-stripped counterpart of host.
func twinHost(host string) string {
	if strings.HasPrefix(host, "www.") {
		return strings.TrimPrefix(host, "www.")
	}
	if strings.Count(host, ".") == 1 {
		return "www." + host
	}
	return ""
}

// Do performs a single HTTP exchange. POST bodies are encoded per enc;
// a nil params map with method GET sends a plain GET. The response body is
// fully read and transparently decompressed.
func (c *Client) Do(ctx context.Context, method, rawURL string, params map[string]string, enc Encoding) (*Response, error) {
	var body io.Reader
	contentType := ""

	if method == http.MethodPost {
		switch enc {
		case EncodingJSON:
			payload, err := json.Marshal(params)
			if err != nil {
				return nil, fmt.Errorf("%w: JSON encode post params: %v", utils.ErrParsing, err)
			}
			body = bytes.NewReader(payload)
			contentType = "application/json"
		case EncodingRaw:
			var b strings.Builder
			for _, v := range params {
				b.WriteString(v)
			}
			body = strings.NewReader(b.String())
		default:
			form := url.Values{}
			for k, v := range params {
				form.Set(k, v)
			}
			body = strings.NewReader(form.Encode())
			contentType = "application/x-www-form-urlencoded"
		}
	}

	req, err := http.NewRequestWithContext(ctx, method, rawURL, body)
	if err != nil {
		return nil, fmt.Errorf("%w: %s %s: %v", utils.ErrRequestCreation, method, rawURL, err)
	}

	c.headerMu.RLock()
	for k, v := range c.headers {
		req.Header.Set(k, v)
	}
	c.headerMu.RUnlock()
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	if req.Header.Get("Accept-Encoding") == "" {
		req.Header.Set("Accept-Encoding", "gzip, br")
	}

	c.log.WithFields(logrus.Fields{"method": method, "url": rawURL}).Debug("Dispatching request")
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	data, err := decodeBody(resp)
	if err != nil {
		return nil, fmt.Errorf("reading response body from %s: %w", rawURL, err)
	}

	finalURL := rawURL
	if resp.Request != nil && resp.Request.URL != nil {
		finalURL = resp.Request.URL.String()
	}

	return &Response{
		StatusCode: resp.StatusCode,
		Header:     resp.Header,
		Body:       data,
		FinalURL:   finalURL,
	}, nil
}

// decodeBody reads the body, reversing gzip/brotli content encoding.
func decodeBody(resp *http.Response) ([]byte, error) {
	var reader io.Reader = resp.Body
	switch strings.ToLower(resp.Header.Get("Content-Encoding")) {
	case "gzip":
		gz, err := gzip.NewReader(resp.Body)
		if err != nil {
			return nil, fmt.Errorf("gzip reader: %w", err)
		}
		defer gz.Close()
		reader = gz
	case "br":
		reader = brotli.NewReader(resp.Body)
	}
	return io.ReadAll(reader)
}
