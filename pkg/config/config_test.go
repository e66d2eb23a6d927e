package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"feed-scraper/pkg/utils"
)

const sampleConfig = `
env: dev
directory_url: https://directory.internal.example.com
output_base_dir: /tmp/feeds
state_dir: /tmp/state
vendors:
  acme:
    start_urls:
      - https://shop.example.com/catalog
    category_link_selectors:
      - a.cat
    product_link_selectors:
      - a.product
    chunk_size: 10
    delay: 250000000 # 250ms in nanoseconds
    use_proxy: true
    auth:
      auth_url: https://shop.example.com/login
      auth_info:
        username: bob
        password: hunter2
      check_login_text: Log Out
`

func TestLoadAndValidate(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(sampleConfig), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)

	warnings, err := cfg.Validate()
	require.NoError(t, err)
	assert.Empty(t, warnings)

	assert.True(t, cfg.IsDevMode())
	assert.Equal(t, DefaultConnectLimit, cfg.ProxyConnectLimit)
	assert.Equal(t, 45*time.Second, cfg.HTTPClientSettings.Timeout)

	vendor := cfg.Vendors["acme"]
	assert.Equal(t, 10, vendor.ChunkSize)
	assert.Equal(t, 250*time.Millisecond, vendor.Delay)
	assert.Equal(t, DefaultRequestTimeout, vendor.RequestTimeout)
	assert.Equal(t, DefaultMaxConcurrency, vendor.MaxConcurrency)
	assert.Equal(t, DefaultSoftBlockStatus, vendor.SoftBlockStatus)
	assert.True(t, vendor.Auth.Enabled())
	assert.True(t, vendor.Auth.FindFormFields())
}

func TestValidateRequiresDirectoryURL(t *testing.T) {
	cfg := &AppConfig{}
	_, err := cfg.Validate()
	require.Error(t, err)
	assert.True(t, errors.Is(err, utils.ErrConfigValidation))
}

func TestValidateVendorRequiresStartURLs(t *testing.T) {
	cfg := &AppConfig{
		DirectoryURL: "https://directory.example.com",
		Vendors:      map[string]VendorConfig{"bad": {}},
	}
	_, err := cfg.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "bad")
}

func TestValidateVendorCustomProductsOnly(t *testing.T) {
	cfg := &AppConfig{
		DirectoryURL: "https://directory.example.com",
		Vendors: map[string]VendorConfig{
			"sample": {CustomProducts: []string{"https://shop.example.com/p/1"}},
		},
	}
	_, err := cfg.Validate()
	assert.NoError(t, err, "a debug product list is a valid seed")
}

func TestValidateWarnsAndDefaultsDirs(t *testing.T) {
	cfg := &AppConfig{DirectoryURL: "https://directory.example.com"}
	warnings, err := cfg.Validate()
	require.NoError(t, err)
	assert.NotEmpty(t, warnings)
	assert.Equal(t, "./feeds", cfg.OutputBaseDir)
	assert.Equal(t, "./crawler_state", cfg.StateDir)
	assert.Equal(t, "./logs", cfg.LogsDir)
}

func TestVendorNegativeValuesReset(t *testing.T) {
	v := VendorConfig{
		StartURLs:   []string{"https://x"},
		ChunkSize:   -1,
		Delay:       -time.Second,
		MaxProducts: -5,
	}
	warnings, err := v.Validate()
	require.NoError(t, err)
	assert.Len(t, warnings, 3)
	assert.Equal(t, DefaultChunkSize, v.ChunkSize)
	assert.Zero(t, v.Delay)
	assert.Zero(t, v.MaxProducts)
}
