package fetch

import (
	"context"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
	"golang.org/x/sync/semaphore"
	"golang.org/x/time/rate"

	"feed-scraper/pkg/config"
	"feed-scraper/pkg/utils"
)

const (
	// Retry pass attempts per failed link after the concurrent pass.
	maxRetryAttempts = 3
	// Backoff applied before retrying a soft-blocked link.
	softBlockRetryDelay = 3 * time.Second
)

// retryClass says how a failed link should be retried.
type retryClass int

const (
	retryNone      retryClass = iota // terminal, keep last response as final
	retrySoftBlock                   // 403/soft-block: invalidate proxy, fixed backoff
	retryServer                      // 5xx: retry with no extra delay
	retryTransport                   // no response at all
)

type failedLink struct {
	link  Link
	class retryClass
	last  *Response
}

// Downloader fans batches of links out over a bounded worker pool, classifies
// failures, and drives the sequential retry pass. One Downloader drives one
// vendor crawl; the underlying Client's header state is owned by it for the
// duration of a Fetch call.
type Downloader struct {
	client  *Client
	uaPool  *UserAgentPool
	proxy   *ProxyConnector // nil when the vendor crawls direct
	log     *logrus.Entry
	limiter *rate.Limiter // nil when no inter-dispatch delay is configured

	maxConcurrency    int
	timeout           time.Duration
	softBlockStatus   int
	softBlockDelay    time.Duration
	processErrorLinks bool
}

// NewDownloader wires a Downloader for one vendor. When auth is configured,
// login is attempted immediately; a failed login is logged and crawling
// proceeds unauthenticated.
func NewDownloader(ctx context.Context, client *Client, vcfg config.VendorConfig, proxy *ProxyConnector, log *logrus.Entry) *Downloader {
	d := &Downloader{
		client:            client,
		uaPool:            NewUserAgentPool(vcfg.StaticUserAgent),
		proxy:             proxy,
		log:               log.WithField("component", "downloader"),
		maxConcurrency:    vcfg.MaxConcurrency,
		timeout:           vcfg.RequestTimeout,
		softBlockStatus:   vcfg.SoftBlockStatus,
		softBlockDelay:    softBlockRetryDelay,
		processErrorLinks: true,
	}
	if vcfg.Delay > 0 {
		d.limiter = rate.NewLimiter(rate.Every(vcfg.Delay), 1)
	}
	if len(vcfg.Headers) > 0 {
		client.SetHeaders(vcfg.Headers)
	}

	if vcfg.Auth.Enabled() {
		auth := NewAuthenticator(client, vcfg.Auth, d.log)
		if err := auth.Login(ctx); err != nil {
			d.log.Warnf("Auto-login failed, continuing unauthenticated: %v", err)
		}
	}
	return d
}

// SetProcessErrorLinks toggles the sequential retry pass for failed links.
func (d *Downloader) SetProcessErrorLinks(enabled bool) {
	d.processErrorLinks = enabled
}

// Fetch resolves a batch of links. Every input link gets an entry in the
// result map keyed by its identity key; links that never produced a response
// map to a Response whose Err is set and whose StatusCode is zero.
func (d *Downloader) Fetch(ctx context.Context, links []Link) map[string]*Response {
	results := make(map[string]*Response, len(links))
	if len(links) == 0 {
		return results
	}

	var (
		mu     sync.Mutex
		wg     sync.WaitGroup
		failed []failedLink
	)
	sem := semaphore.NewWeighted(int64(d.maxConcurrency))

	for _, link := range links {
		if d.limiter != nil {
			if err := d.limiter.Wait(ctx); err != nil {
				break
			}
		}
		if err := sem.Acquire(ctx, 1); err != nil {
			break
		}
		wg.Add(1)
		go func(l Link) {
			defer wg.Done()
			defer sem.Release(1)

			resp := d.attempt(ctx, l)
			class := d.classify(resp)

			mu.Lock()
			defer mu.Unlock()
			results[l.Key()] = resp
			if class != retryNone {
				failed = append(failed, failedLink{link: l, class: class, last: resp})
			}
		}(link)
	}
	wg.Wait()

	// Links the context cancelled out of still need placeholder entries.
	for _, l := range links {
		if _, ok := results[l.Key()]; !ok {
			results[l.Key()] = &Response{Link: l, Err: ctx.Err()}
		}
	}

	if d.processErrorLinks && len(failed) > 0 {
		d.retryPass(ctx, failed, results)
	}
	return results
}

// retryPass re-fetches failed links one at a time, up to maxRetryAttempts
// each. The last response obtained, good or bad, becomes the final entry.
func (d *Downloader) retryPass(ctx context.Context, failed []failedLink, results map[string]*Response) {
	d.log.WithField("count", len(failed)).Info("Retrying failed links sequentially")

	for _, f := range failed {
		last := f.last
		class := f.class
		for attempt := 1; attempt <= maxRetryAttempts; attempt++ {
			if ctx.Err() != nil {
				return
			}
			if class == retrySoftBlock {
				select {
				case <-time.After(d.softBlockDelay):
				case <-ctx.Done():
					return
				}
			}
			resp := d.attempt(ctx, f.link)
			last = resp
			class = d.classify(resp)
			if class == retryNone {
				break
			}
			d.log.WithFields(logrus.Fields{
				"url":     f.link.URL,
				"attempt": attempt,
				"status":  resp.StatusCode,
			}).Debug("Retry attempt failed")
		}
		if class != retryNone && last != nil {
			last.Err = fmt.Errorf("%w: %s: %v", utils.ErrRetryFailed, f.link.URL, last.Err)
		}
		results[f.link.Key()] = last
	}
}

// attempt performs one request for the link, rolling the user agent and
// establishing the proxy first when one is configured.
func (d *Downloader) attempt(ctx context.Context, l Link) *Response {
	d.client.SetHeader("User-Agent", d.uaPool.Next())

	if d.proxy != nil {
		if err := d.proxy.Connect(ctx); err != nil {
			return &Response{Link: l, Err: err}
		}
	}

	reqCtx, cancel := context.WithTimeout(ctx, d.timeout)
	defer cancel()

	method := http.MethodGet
	if l.IsPost() {
		method = http.MethodPost
	}
	resp, err := d.client.Do(reqCtx, method, l.URL, l.PostParams, l.Encoding)
	if err != nil {
		return &Response{Link: l, Err: err}
	}
	resp.Link = l
	return resp
}

// classify maps a response to its retry class and annotates the error.
//
// 200 and 404 are terminal: 404 is a valid "product gone" signal, not a
// failure. 403 and the vendor soft-block status poison the proxy. Any 5xx
// is transient. Other statuses are retried only when a proxy is available
// to rotate away from.
func (d *Downloader) classify(resp *Response) retryClass {
	if resp.Err != nil {
		if d.proxy != nil {
			d.proxy.Invalidate()
		}
		return retryTransport
	}

	switch {
	case resp.StatusCode == http.StatusOK || resp.StatusCode == http.StatusNotFound:
		return retryNone
	case resp.StatusCode == http.StatusForbidden || resp.StatusCode == d.softBlockStatus:
		resp.Err = fmt.Errorf("%w: status %d", utils.ErrSoftBlocked, resp.StatusCode)
		if d.proxy != nil {
			d.proxy.Invalidate()
		}
		return retrySoftBlock
	case resp.StatusCode >= 500:
		resp.Err = fmt.Errorf("%w: status %d", utils.ErrServerHTTPError, resp.StatusCode)
		return retryServer
	case resp.StatusCode >= 400:
		resp.Err = fmt.Errorf("%w: status %d", utils.ErrClientHTTPError, resp.StatusCode)
	default:
		resp.Err = fmt.Errorf("%w: status %d", utils.ErrOtherHTTPError, resp.StatusCode)
	}
	if d.proxy != nil {
		d.proxy.Invalidate()
		return retryTransport
	}
	return retryNone
}

// Get fetches a single URL outside the frontier flow.
func (d *Downloader) Get(ctx context.Context, rawURL string) (*Response, error) {
	l := NewLink(rawURL, LinkOther)
	resp := d.attempt(ctx, l)
	return resp, resp.Err
}

// Post submits a single POST outside the frontier flow.
func (d *Downloader) Post(ctx context.Context, rawURL string, params map[string]string, enc Encoding) (*Response, error) {
	l := NewPostLink(rawURL, LinkOther, params)
	l.Encoding = enc
	resp := d.attempt(ctx, l)
	return resp, resp.Err
}

// Client exposes the underlying fetch client for header/cookie tweaks
// between batches.
func (d *Downloader) Client() *Client {
	return d.client
}
