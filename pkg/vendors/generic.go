package vendors

import (
	"bytes"
	"fmt"
	"strconv"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/sirupsen/logrus"

	"feed-scraper/pkg/config"
	"feed-scraper/pkg/feed"
	"feed-scraper/pkg/fetch"
	"feed-scraper/pkg/utils"
)

// GenericCode is the registry key of the selector-driven fallback vendor.
const GenericCode = "generic"

// Generic is a vendor built entirely from configured CSS selectors plus the
// common structured-data conventions (OpenGraph, schema.org itemprops).
// Sites that need real extraction logic get their own Vendor; everything
// else runs on this one.
type Generic struct {
	Base
}

// NewGeneric is the Factory for Generic.
func NewGeneric(cfg config.VendorConfig, info DxInfo, log *logrus.Entry) Vendor {
	return &Generic{Base: NewBase(cfg, info, log)}
}

// ParseProduct extracts one entity per product page from structured data.
func (g *Generic) ParseProduct(resp *fetch.Response) ([]*feed.Item, error) {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(resp.Body))
	if err != nil {
		return nil, fmt.Errorf("%w: HTML: %v", utils.ErrParsing, err)
	}

	item := feed.NewItem()

	if mpn := firstContent(doc, `[itemprop="mpn"]`, `[itemprop="sku"]`); mpn != "" {
		item.SetMpn(mpn)
	}

	name := metaContent(doc, `meta[property="og:title"]`)
	if name == "" {
		name = utils.Trim(doc.Find("h1").First().Text())
	}
	item.SetProduct(name)

	if price := firstContent(doc, `meta[itemprop="price"]`, `[itemprop="price"]`); price != "" {
		if v, err := strconv.ParseFloat(strings.TrimLeft(price, "$ "), 64); err == nil {
			item.SetCostToUs(v)
		}
	}

	if descr := metaContent(doc, `meta[property="og:description"]`); descr != "" {
		item.SetFullDescr(descr)
	}
	if brand := firstContent(doc, `[itemprop="brand"]`); brand != "" {
		item.SetBrand(brand)
	}
	doc.Find(`meta[property="og:image"]`).Each(func(_ int, s *goquery.Selection) {
		if u, ok := s.Attr("content"); ok {
			item.AddImage(u)
		}
	})

	if avail := metaContent(doc, `meta[itemprop="availability"]`); avail != "" {
		if strings.Contains(strings.ToLower(avail), "instock") {
			item.SetAvail(1)
		} else {
			item.SetAvail(0)
		}
	}

	return []*feed.Item{item}, nil
}

func metaContent(doc *goquery.Document, selector string) string {
	content, _ := doc.Find(selector).First().Attr("content")
	return utils.Trim(content)
}

// firstContent tries each selector, preferring a content attribute over the
// node's text.
func firstContent(doc *goquery.Document, selectors ...string) string {
	for _, sel := range selectors {
		node := doc.Find(sel).First()
		if node.Length() == 0 {
			continue
		}
		if content, ok := node.Attr("content"); ok && utils.IsNotEmpty(content) {
			return utils.Trim(content)
		}
		if text := utils.Trim(node.Text()); text != "" {
			return text
		}
	}
	return ""
}
