package config

import "time"

// AuthConfig holds the credentials and form hints used for vendor auto-login.
//
// CheckLoginText is a marker string visible only to authorized users ("Log
// Out", "My account", ...). When empty, login is assumed to have succeeded.
type AuthConfig struct {
	AuthURL        string            `yaml:"auth_url,omitempty"`
	AuthFormURL    string            `yaml:"auth_form_url,omitempty"`
	AuthInfo       map[string]string `yaml:"auth_info,omitempty"`
	CheckLoginText string            `yaml:"check_login_text,omitempty"`
	FindFieldsForm *bool             `yaml:"find_fields_form,omitempty"` // nil = true: scrape the form for hidden fields first
	APIAuth        bool              `yaml:"api_auth,omitempty"`         // true: send credentials as a JSON payload instead of form data
}

// FindFormFields reports whether the login form should be scraped for
// additional fields before submitting credentials.
func (a AuthConfig) FindFormFields() bool {
	return a.FindFieldsForm == nil || *a.FindFieldsForm
}

// Enabled reports whether enough auth parameters are present to attempt login.
func (a AuthConfig) Enabled() bool {
	return a.AuthURL != "" && len(a.AuthInfo) > 0
}

// VendorConfig holds configuration specific to a single vendor crawl
type VendorConfig struct {
	StartURLs             []string          `yaml:"start_urls"`
	CategorySelectors     []string          `yaml:"category_link_selectors,omitempty"`
	ProductSelectors      []string          `yaml:"product_link_selectors,omitempty"`
	ChunkSize             int               `yaml:"chunk_size,omitempty"`
	RequestTimeout        time.Duration     `yaml:"request_timeout,omitempty"`
	Delay                 time.Duration     `yaml:"delay,omitempty"` // Inter-dispatch delay between requests in a batch
	MaxConcurrency        int               `yaml:"max_concurrency,omitempty"`
	StaticUserAgent       bool              `yaml:"static_user_agent,omitempty"`
	UseProxy              bool              `yaml:"use_proxy,omitempty"`
	SoftBlockStatus       int               `yaml:"soft_block_status,omitempty"` // Non-standard bot-detection status (430 for Shopify)
	Headers               map[string]string `yaml:"headers,omitempty"`
	Auth                  AuthConfig        `yaml:"auth,omitempty"`
	MaxProducts           int               `yaml:"max_products,omitempty"`    // Debug cutoff; only honored in dev mode
	CustomProducts        []string          `yaml:"custom_products,omitempty"` // Debug product URLs; only honored in dev mode
	AccumulateBeforeSave  bool              `yaml:"accumulate_before_save,omitempty"`
	SkipUnchangedProducts bool              `yaml:"skip_unchanged_products,omitempty"`
}

// AppConfig holds the global application configuration
type AppConfig struct {
	Env                  string                  `yaml:"env,omitempty"` // "dev" enables max_products/custom_products cutoffs
	DirectoryURL         string                  `yaml:"directory_url"`
	OutputBaseDir        string                  `yaml:"output_base_dir"`
	StateDir             string                  `yaml:"state_dir"`
	LogsDir              string                  `yaml:"logs_dir,omitempty"`
	ProxyListURLs        []string                `yaml:"proxy_list_urls,omitempty"`
	ProxyConnectLimit    int                     `yaml:"proxy_connect_limit,omitempty"`
	HTTPClientSettings   HTTPClientConfig        `yaml:"http_client_settings,omitempty"`
	Vendors              map[string]VendorConfig `yaml:"vendors"`
	ValidateFeeds        bool                    `yaml:"validate_feeds,omitempty"`
	EnableChangeTracking bool                    `yaml:"enable_change_tracking,omitempty"`
}

// HTTPClientConfig holds settings for the shared HTTP client
type HTTPClientConfig struct {
	Timeout               time.Duration `yaml:"timeout,omitempty"`                 // Overall request timeout
	MaxIdleConns          int           `yaml:"max_idle_conns,omitempty"`          // Max total idle connections
	MaxIdleConnsPerHost   int           `yaml:"max_idle_conns_per_host,omitempty"` // Max idle connections per host
	IdleConnTimeout       time.Duration `yaml:"idle_conn_timeout,omitempty"`       // Timeout for idle connections
	TLSHandshakeTimeout   time.Duration `yaml:"tls_handshake_timeout,omitempty"`   // Timeout for TLS handshake
	ExpectContinueTimeout time.Duration `yaml:"expect_continue_timeout,omitempty"` // Timeout for 100-continue
	ForceAttemptHTTP2     *bool         `yaml:"force_attempt_http2,omitempty"`     // Explicitly enable/disable HTTP/2 attempt (use pointer for tri-state: nil=default, true=force, false=disable)
	DialerTimeout         time.Duration `yaml:"dialer_timeout,omitempty"`          // Connection dial timeout
	DialerKeepAlive       time.Duration `yaml:"dialer_keep_alive,omitempty"`       // TCP keep-alive interval
	InsecureSkipVerify    bool          `yaml:"insecure_skip_verify,omitempty"`    // Vendor sites routinely ship broken cert chains
}

// Defaults mirrored from the vendor processor constants.
const (
	DefaultChunkSize       = 20
	DefaultRequestTimeout  = 60 * time.Second
	DefaultMaxConcurrency  = 20
	DefaultSoftBlockStatus = 430
	DefaultConnectLimit    = 50
)

// IsDevMode reports whether debug cutoffs (max_products, custom_products) apply.
func (c *AppConfig) IsDevMode() bool {
	return c.Env == "dev"
}

// ApplyDefaults fills zero-valued vendor settings with the processor defaults.
func (v *VendorConfig) ApplyDefaults() {
	if v.ChunkSize <= 0 {
		v.ChunkSize = DefaultChunkSize
	}
	if v.RequestTimeout <= 0 {
		v.RequestTimeout = DefaultRequestTimeout
	}
	if v.MaxConcurrency <= 0 {
		v.MaxConcurrency = DefaultMaxConcurrency
	}
	if v.SoftBlockStatus == 0 {
		v.SoftBlockStatus = DefaultSoftBlockStatus
	}
}
