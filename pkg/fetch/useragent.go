package fetch

import (
	"math/rand"
	"sync"
)

// Browser user agent strings rotated across requests. Keeping a handful of
// current desktop signatures is enough to avoid trivial UA-based blocking.
var defaultUserAgents = []string{
	"Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/126.0.0.0 Safari/537.36",
	"Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/125.0.0.0 Safari/537.36",
	"Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/126.0.0.0 Safari/537.36",
	"Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/605.1.15 (KHTML, like Gecko) Version/17.5 Safari/605.1.15",
	"Mozilla/5.0 (Windows NT 10.0; Win64; x64; rv:127.0) Gecko/20100101 Firefox/127.0",
	"Mozilla/5.0 (X11; Linux x86_64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/126.0.0.0 Safari/537.36",
	"Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/124.0.0.0 Safari/537.36 Edg/124.0.2478.97",
}

// UserAgentPool hands out user agent strings. In static mode one agent is
// pinned for the whole session, which some login flows require so the
// authenticated cookie stays bound to a single signature.
type UserAgentPool struct {
	mu     sync.Mutex
	agents []string
	static bool
	pinned string
}

// NewUserAgentPool returns a pool over the default agent list.
func NewUserAgentPool(static bool) *UserAgentPool {
	p := &UserAgentPool{agents: defaultUserAgents, static: static}
	p.pinned = p.agents[rand.Intn(len(p.agents))]
	return p
}

// Next returns the user agent for the next request.
func (p *UserAgentPool) Next() string {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.static {
		return p.pinned
	}
	return p.agents[rand.Intn(len(p.agents))]
}

// Pin switches the pool to static mode, keeping the current pinned agent.
func (p *UserAgentPool) Pin() {
	p.mu.Lock()
	p.static = true
	p.mu.Unlock()
}
