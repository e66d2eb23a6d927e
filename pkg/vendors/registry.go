package vendors

import (
	"fmt"
	"sort"
	"sync"

	"github.com/sirupsen/logrus"

	"feed-scraper/pkg/config"
	"feed-scraper/pkg/utils"
)

// Factory builds a configured vendor instance.
type Factory func(cfg config.VendorConfig, info DxInfo, log *logrus.Entry) Vendor

// Registry maps vendor codes to factories. Populated at startup; lookups by
// unknown code return a typed error instead of crashing.
type Registry struct {
	mu        sync.RWMutex
	factories map[string]Factory
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{factories: make(map[string]Factory)}
}

// Register binds a vendor code to its factory. Re-registering replaces the
// previous binding.
func (r *Registry) Register(code string, f Factory) {
	r.mu.Lock()
	r.factories[code] = f
	r.mu.Unlock()
}

// New builds the vendor registered under code.
func (r *Registry) New(code string, cfg config.VendorConfig, info DxInfo, log *logrus.Entry) (Vendor, error) {
	r.mu.RLock()
	f, ok := r.factories[code]
	r.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("%w: %q", utils.ErrVendorNotFound, code)
	}
	return f(cfg, info, log), nil
}

// Codes returns the registered vendor codes, sorted.
func (r *Registry) Codes() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	codes := make([]string, 0, len(r.factories))
	for code := range r.factories {
		codes = append(codes, code)
	}
	sort.Strings(codes)
	return codes
}
