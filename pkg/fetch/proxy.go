package fetch

import (
	"context"
	"fmt"
	"math/rand"
	"net/http"
	"net/url"
	"strings"
	"sync"

	"github.com/sirupsen/logrus"

	"feed-scraper/pkg/utils"
)

// DefaultProxyTestURL is fetched through a candidate proxy to prove it works.
const DefaultProxyTestURL = "https://api.ipify.org"

// ProxyConnector manages the shared outbound proxy for a vendor session.
//
// The connected flag is shared across all workers: once any request fails in
// a way that implicates the proxy, Invalidate drops the flag and the next
// retry attempt reconnects through a fresh candidate. All state transitions
// happen under the mutex so concurrent invalidations cannot race a reconnect.
type ProxyConnector struct {
	client   *Client
	log      *logrus.Entry
	listURLs []string
	limit    int    // max candidates tried per Connect call
	testURL  string

	mu        sync.Mutex
	proxies   []string
	connected bool
}

// NewProxyConnector returns a connector sourcing candidates from listURLs.
func NewProxyConnector(client *Client, listURLs []string, limit int, log *logrus.Entry) *ProxyConnector {
	if limit <= 0 {
		limit = 50
	}
	return &ProxyConnector{
		client:   client,
		log:      log.WithField("component", "proxy"),
		listURLs: listURLs,
		limit:    limit,
		testURL:  DefaultProxyTestURL,
	}
}

// Connected reports whether a working proxy is currently assigned.
func (p *ProxyConnector) Connected() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.connected
}

// Invalidate drops the current proxy. The next Connect call picks a new one.
func (p *ProxyConnector) Invalidate() {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.connected {
		p.log.Debug("Invalidating current proxy")
	}
	p.connected = false
	p.client.SetProxy(nil)
}

// Connect ensures a working proxy is assigned to the client. It is a no-op
// when one is already connected. Up to the configured limit of random
// candidates are probed with a test request before giving up.
func (p *ProxyConnector) Connect(ctx context.Context) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.connected {
		return nil
	}

	if len(p.proxies) == 0 {
		if err := p.loadListLocked(ctx); err != nil {
			return err
		}
	}

	for attempt := 0; attempt < p.limit; attempt++ {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		candidate := p.proxies[rand.Intn(len(p.proxies))]
		proxyURL, err := url.Parse("http://" + candidate)
		if err != nil {
			continue
		}
		p.client.SetProxy(proxyURL)
		if err := p.probe(ctx); err != nil {
			p.log.WithFields(logrus.Fields{"proxy": candidate, "attempt": attempt + 1}).
				Debugf("Proxy probe failed: %v", err)
			continue
		}
		p.log.WithField("proxy", candidate).Info("Proxy connected")
		p.connected = true
		return nil
	}

	p.client.SetProxy(nil)
	return fmt.Errorf("%w: no working proxy after %d attempts", utils.ErrProxyConnect, p.limit)
}

// probe issues the test request through the currently assigned proxy.
func (p *ProxyConnector) probe(ctx context.Context) error {
	resp, err := p.client.Do(ctx, http.MethodGet, p.testURL, nil, EncodingDefault)
	if err != nil {
		return err
	}
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("probe status %d", resp.StatusCode)
	}
	return nil
}

// loadListLocked fetches and parses the proxy candidate lists. Lists are
// plain text, one host:port per line. Caller holds p.mu.
func (p *ProxyConnector) loadListLocked(ctx context.Context) error {
	var all []string
	for _, listURL := range p.listURLs {
		resp, err := p.client.Do(ctx, http.MethodGet, listURL, nil, EncodingDefault)
		if err != nil {
			p.log.WithField("url", listURL).Warnf("Failed to fetch proxy list: %v", err)
			continue
		}
		for _, line := range strings.Split(resp.String(), "\n") {
			line = strings.TrimSpace(line)
			if line == "" || !strings.Contains(line, ":") {
				continue
			}
			all = append(all, line)
		}
	}
	if len(all) == 0 {
		return fmt.Errorf("%w: no proxy candidates available", utils.ErrProxyConnect)
	}
	p.proxies = all
	p.log.WithField("count", len(all)).Info("Loaded proxy candidates")
	return nil
}
