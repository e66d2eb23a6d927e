package vendors

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"feed-scraper/pkg/utils"
)

// DxInfo is the crawl identity resolved for one vendor code, as served by
// the vendor directory service.
type DxInfo struct {
	ID         int    `json:"id"`
	Code       string `json:"code"`
	Name       string `json:"name"`
	Prefix     string `json:"prefix"`
	Source     string `json:"source"`
	Storefront string `json:"storefront,omitempty"`
	FeedType   string `json:"feed_type"`
}

// StorefrontSeparator splits a combined vendor key into code and storefront
// ("acme__eu" crawls vendor acme for the eu storefront).
const StorefrontSeparator = "__"

// SplitVendorKey separates a combined vendor key into code and storefront.
func SplitVendorKey(key string) (code, storefront string) {
	if i := strings.Index(key, StorefrontSeparator); i >= 0 {
		return key[:i], key[i+len(StorefrontSeparator):]
	}
	return key, ""
}

// Directory resolves vendor codes against the directory service. Resolution
// failure is fatal at startup; nothing is crawled for an unknown vendor.
type Directory struct {
	baseURL string
	client  *http.Client
	log     *logrus.Entry
}

// NewDirectory returns a client for the directory service at baseURL.
func NewDirectory(baseURL string, log *logrus.Entry) *Directory {
	return &Directory{
		baseURL: strings.TrimRight(baseURL, "/"),
		client:  &http.Client{Timeout: 30 * time.Second},
		log:     log.WithField("component", "directory"),
	}
}

// Resolve looks up a combined vendor key and returns its crawl identity.
func (d *Directory) Resolve(ctx context.Context, key string) (DxInfo, error) {
	code, storefront := SplitVendorKey(key)

	q := url.Values{}
	q.Set("code", code)
	if storefront != "" {
		q.Set("storefront", storefront)
	}
	lookupURL := d.baseURL + "/dx?" + q.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, lookupURL, nil)
	if err != nil {
		return DxInfo{}, fmt.Errorf("%w: %v", utils.ErrRequestCreation, err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := d.client.Do(req)
	if err != nil {
		return DxInfo{}, fmt.Errorf("%w: %q: %v", utils.ErrDirectoryLookup, key, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return DxInfo{}, fmt.Errorf("%w: %q: status %d", utils.ErrDirectoryLookup, key, resp.StatusCode)
	}

	var info DxInfo
	if err := json.NewDecoder(resp.Body).Decode(&info); err != nil {
		return DxInfo{}, fmt.Errorf("%w: %q: decoding response: %v", utils.ErrDirectoryLookup, key, err)
	}

	if info.Code == "" {
		info.Code = code
	}
	if info.Storefront == "" {
		info.Storefront = storefront
	}
	// Prefixes come back with underscores from legacy records.
	info.Prefix = strings.ReplaceAll(info.Prefix, "_", "-")

	d.log.WithFields(logrus.Fields{
		"code":   info.Code,
		"prefix": info.Prefix,
		"feed":   info.FeedType,
	}).Info("Resolved vendor")
	return info, nil
}

// Key returns the combined vendor key for report and output naming.
func (i DxInfo) Key() string {
	if i.Storefront == "" {
		return i.Code
	}
	return i.Code + StorefrontSeparator + i.Storefront
}
