package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"feed-scraper/pkg/utils"
)

// Load reads and parses the application config file.
func Load(path string) (*AppConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}

	var cfg AppConfig
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}

	return &cfg, nil
}

// Validate checks AppConfig fields and applies sensible defaults.
// Returns collected warnings and any fatal error.
// Modifies receiver in place to apply defaults.
func (c *AppConfig) Validate() (warnings []string, err error) {
	if c.DirectoryURL == "" {
		return nil, fmt.Errorf("%w: directory_url is required", utils.ErrConfigValidation)
	}

	// OutputBaseDir
	if c.OutputBaseDir == "" {
		warnings = append(warnings, "output_base_dir is empty, defaulting to './feeds'")
		c.OutputBaseDir = "./feeds"
	}

	// StateDir
	if c.StateDir == "" {
		warnings = append(warnings, "state_dir is empty, defaulting to './crawler_state'")
		c.StateDir = "./crawler_state"
	}

	// LogsDir (validation reports live here)
	if c.LogsDir == "" {
		c.LogsDir = "./logs"
	}

	// ProxyConnectLimit
	if c.ProxyConnectLimit <= 0 {
		c.ProxyConnectLimit = DefaultConnectLimit
	}

	c.validateHTTPClientSettings()

	for key, vendor := range c.Vendors {
		vWarnings, vErr := vendor.Validate()
		if vErr != nil {
			return warnings, fmt.Errorf("vendor '%s': %w", key, vErr)
		}
		for _, w := range vWarnings {
			warnings = append(warnings, fmt.Sprintf("vendor '%s': %s", key, w))
		}
		c.Vendors[key] = vendor
	}

	return warnings, nil
}

// validateHTTPClientSettings applies defaults to HTTP client settings.
func (c *AppConfig) validateHTTPClientSettings() {
	h := &c.HTTPClientSettings
	if h.Timeout <= 0 {
		h.Timeout = 45 * time.Second
	}
	if h.MaxIdleConns <= 0 {
		h.MaxIdleConns = 100
	}
	if h.MaxIdleConnsPerHost <= 0 {
		h.MaxIdleConnsPerHost = 4
	}
	if h.IdleConnTimeout <= 0 {
		h.IdleConnTimeout = 90 * time.Second
	}
	if h.TLSHandshakeTimeout <= 0 {
		h.TLSHandshakeTimeout = 10 * time.Second
	}
	if h.ExpectContinueTimeout <= 0 {
		h.ExpectContinueTimeout = 1 * time.Second
	}
	if h.DialerTimeout <= 0 {
		h.DialerTimeout = 15 * time.Second
	}
	if h.DialerKeepAlive <= 0 {
		h.DialerKeepAlive = 30 * time.Second
	}
}

// Validate checks VendorConfig fields and applies defaults.
// Returns collected warnings and any fatal error.
// Modifies receiver in place.
func (v *VendorConfig) Validate() (warnings []string, err error) {
	if len(v.StartURLs) == 0 && len(v.CustomProducts) == 0 {
		return nil, fmt.Errorf("%w: vendor has no start_urls", utils.ErrConfigValidation)
	}

	if v.ChunkSize < 0 {
		warnings = append(warnings, "chunk_size cannot be negative, using default")
		v.ChunkSize = 0
	}
	if v.Delay < 0 {
		warnings = append(warnings, "delay cannot be negative, disabling")
		v.Delay = 0
	}
	if v.MaxProducts < 0 {
		warnings = append(warnings, "max_products cannot be negative, disabling cutoff")
		v.MaxProducts = 0
	}
	if v.Auth.AuthURL != "" && len(v.Auth.AuthInfo) == 0 {
		warnings = append(warnings, "auth_url set without auth_info; login will be skipped")
	}

	v.ApplyDefaults()
	return warnings, nil
}
