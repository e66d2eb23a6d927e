// Package vendors defines the per-vendor extension surface: the parser and
// lifecycle hooks each vendor implements, the registry resolving vendor
// codes to factories, and the directory-service client.
package vendors

import (
	"bytes"
	"context"
	"fmt"
	"net/url"

	"github.com/PuerkitoBio/goquery"
	"github.com/sirupsen/logrus"

	"feed-scraper/pkg/config"
	"feed-scraper/pkg/feed"
	"feed-scraper/pkg/fetch"
	"feed-scraper/pkg/utils"
)

// Vendor is the site-specific collaborator driven by the processor. It owns
// all HTML semantics and may adjust the batch at each lifecycle point.
type Vendor interface {
	feed.Parser

	// ExtractLinks pulls further category and product links from a
	// category page.
	ExtractLinks(resp *fetch.Response) (categories, products []fetch.Link, err error)

	// ProcessInit runs once before crawling starts (seed POST bodies,
	// warm-up requests, price-list preloading).
	ProcessInit(ctx context.Context) error

	// BeforeProcess and AfterProcess bracket the accumulated batch around
	// the final merge pass.
	BeforeProcess(items []*feed.Item) []*feed.Item
	AfterProcess(items []*feed.Item) []*feed.Item

	// AfterProcessItem runs on every freshly built entity.
	AfterProcessItem(item *feed.Item)

	// AfterItemMerge is the post-merge hook for vendor-specific cleanup.
	AfterItemMerge(item *feed.Item)

	// IsValidItem decides whether an item survives the final filter pass.
	IsValidItem(item *feed.Item) bool

	// PriceListSources returns the price-list entities indexed by mpn, or
	// nil when the vendor has no authoritative price source.
	PriceListSources() map[string]*feed.Item
}

// Base provides default hook behavior and selector-driven link extraction.
// Concrete vendors embed it and override what they need.
type Base struct {
	Cfg  config.VendorConfig
	Info DxInfo
	Log  *logrus.Entry
}

// NewBase returns the embeddable vendor base.
func NewBase(cfg config.VendorConfig, info DxInfo, log *logrus.Entry) Base {
	return Base{Cfg: cfg, Info: info, Log: log.WithField("vendor", info.Code)}
}

// ExtractLinks applies the configured CSS selectors to a category page,
// resolving relative hrefs against the response's final URL.
func (b *Base) ExtractLinks(resp *fetch.Response) ([]fetch.Link, []fetch.Link, error) {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(resp.Body))
	if err != nil {
		return nil, nil, fmt.Errorf("%w: %s: %v", utils.ErrLinkExtract, resp.Link.URL, err)
	}
	base, err := url.Parse(resp.FinalURL)
	if err != nil {
		return nil, nil, fmt.Errorf("%w: bad base URL %s: %v", utils.ErrLinkExtract, resp.FinalURL, err)
	}

	categories := b.selectLinks(doc, base, b.Cfg.CategorySelectors, fetch.LinkCategory)
	products := b.selectLinks(doc, base, b.Cfg.ProductSelectors, fetch.LinkProduct)
	return categories, products, nil
}

func (b *Base) selectLinks(doc *goquery.Document, base *url.URL, selectors []string, typ fetch.LinkType) []fetch.Link {
	var out []fetch.Link
	for _, sel := range selectors {
		doc.Find(sel).Each(func(_ int, s *goquery.Selection) {
			href, ok := s.Attr("href")
			if !ok || href == "" {
				return
			}
			ref, err := url.Parse(href)
			if err != nil {
				return
			}
			abs := base.ResolveReference(ref)
			if abs.Scheme != "http" && abs.Scheme != "https" {
				return
			}
			abs.Fragment = ""
			out = append(out, fetch.NewLink(abs.String(), typ))
		})
	}
	return out
}

// ProcessInit is a no-op by default.
func (b *Base) ProcessInit(context.Context) error { return nil }

// BeforeProcess passes the batch through unchanged.
func (b *Base) BeforeProcess(items []*feed.Item) []*feed.Item { return items }

// AfterProcess passes the batch through unchanged.
func (b *Base) AfterProcess(items []*feed.Item) []*feed.Item { return items }

// AfterProcessItem stamps the product code and content hash on fresh items.
func (b *Base) AfterProcessItem(item *feed.Item) {
	if item.ProductCode == "" && item.Mpn != "" {
		item.ProductCode = feed.ProductCode(b.Info.Prefix, item.Mpn)
	}
	if item.HashProduct == "" {
		item.SetHash(false)
	}
	for _, child := range item.ChildProducts {
		b.AfterProcessItem(child)
	}
}

// AfterItemMerge is a no-op by default.
func (b *Base) AfterItemMerge(*feed.Item) {}

// IsValidItem keeps sellable items only.
func (b *Base) IsValidItem(item *feed.Item) bool { return item.Sellable() }

// PriceListSources returns nil; vendors with a price list override it.
func (b *Base) PriceListSources() map[string]*feed.Item { return nil }
