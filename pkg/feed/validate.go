package feed

import (
	"net/url"
	"strings"

	"github.com/sirupsen/logrus"

	"feed-scraper/pkg/utils"
)

// Report maps failure category to failure message to the identities of the
// offending products (product code, or content hash when no code exists).
type Report map[string]map[string][]string

// Empty reports whether no failures were recorded.
func (r Report) Empty() bool {
	return len(r) == 0
}

func (r Report) add(category, message, identity string) {
	byMessage, ok := r[category]
	if !ok {
		byMessage = make(map[string][]string)
		r[category] = byMessage
	}
	byMessage[message] = append(byMessage[message], identity)
}

// FeedTypeProduct is the feed type whose items must carry real pricing.
// Inventory-style feeds skip the price positivity checks.
const FeedTypeProduct = "product"

const maxCategories = 5
const maxAttributeValueLen = 500

var videoHosts = []string{"youtube.com", "youtu.be", "vimeo.com"}

// Validator runs the structural and semantic checks over a merged batch.
type Validator struct {
	feedType string
	log      *logrus.Entry
}

// NewValidator returns a validator for the given feed type.
func NewValidator(feedType string, log *logrus.Entry) *Validator {
	return &Validator{
		feedType: feedType,
		log:      log.WithField("component", "validator"),
	}
}

// Validate checks every item, recursing into group children, and returns
// the accumulated report. Running it twice over the same batch produces an
// identical report; items are never mutated.
func (v *Validator) Validate(items []*Item) Report {
	report := make(Report)
	for _, it := range items {
		v.checkItem(it, report)
	}
	if !report.Empty() {
		v.log.WithField("categories", len(report)).Warn("Feed validation recorded failures")
	}
	return report
}

func (v *Validator) checkItem(it *Item, report Report) {
	id := it.Identity()

	v.checkProduct(it, id, report)
	v.checkCategories(it, id, report)
	v.checkDescr(it, id, report)
	v.checkFullDescr(it, id, report)
	v.checkImages(it, id, report)
	v.checkAttributes(it, id, report)
	v.checkFiles(it, id, report)
	v.checkVideos(it, id, report)
	v.checkOptions(it, id, report)

	if it.IsGroup {
		if len(it.ChildProducts) == 0 {
			report.add("group", "Group has no children", id)
		}
		for _, child := range it.ChildProducts {
			v.checkItem(child, report)
		}
		return
	}

	// Leaf-only checks: groups carry no price, stock or mpn of their own.
	if v.feedType == FeedTypeProduct || v.feedType == "" {
		if it.CostToUs <= 0 {
			report.add("price", "Cost to us is empty", id)
		}
		if it.ListPrice <= 0 {
			report.add("price", "List price is empty", id)
		}
	}
	if it.RAvail == nil {
		report.add("avail", "Availability is not set", id)
	}
	if it.Mpn == "" {
		report.add("mpn", "Mpn is empty", id)
	}
}

func (v *Validator) checkProduct(it *Item, id string, report Report) {
	name := utils.Trim(it.Product)
	switch {
	case name == "":
		report.add("product", "Product name is empty", id)
	case name == Placeholder:
		report.add("product", "Product name is Dummy", id)
	default:
		if utils.ExistsMoney(name) != "" {
			report.add("product", "Product name contains price", id)
		}
		if strings.Contains(name, "<") && utils.StripTags(name) != name {
			report.add("product", "Product name contains HTML tags", id)
		}
	}
}

func (v *Validator) checkCategories(it *Item, id string, report Report) {
	if len(it.Categories) > maxCategories {
		report.add("categories", "Too many categories", id)
	}
	for _, c := range it.Categories {
		if !utils.IsNotEmpty(c) {
			report.add("categories", "Empty category", id)
			break
		}
	}
}

func (v *Validator) checkDescr(it *Item, id string, report Report) {
	if it.Descr == "" {
		return
	}
	if strings.Count(it.Descr, "<ul") > 1 {
		report.add("descr", "Short description has too many lists", id)
	}
	if utils.ExistsMoney(utils.StripTags(it.Descr)) != "" {
		report.add("descr", "Short description contains price", id)
	}
}

func (v *Validator) checkFullDescr(it *Item, id string, report Report) {
	descr := utils.Trim(it.FullDescr)
	switch {
	case descr == "":
		report.add("fulldescr", "Description is empty", id)
	case descr == Placeholder:
		report.add("fulldescr", "Description is Dummy", id)
	default:
		text := utils.StripTags(descr)
		if utils.ExistsMoney(text) != "" {
			report.add("fulldescr", "Description contains price", id)
		}
		lower := strings.ToLower(text)
		if strings.Contains(lower, "specifications:") {
			report.add("fulldescr", "Description contains specifications block", id)
		}
		if strings.Contains(lower, "features:") {
			report.add("fulldescr", "Description contains features block", id)
		}
	}
}

func (v *Validator) checkImages(it *Item, id string, report Report) {
	if len(it.Images) == 0 {
		if !it.IsGroup {
			report.add("images", "No images", id)
		}
		return
	}
	for _, img := range it.Images {
		if strings.Count(img, "http://")+strings.Count(img, "https://") > 1 {
			report.add("images", "Image url has duplicated scheme", id)
			continue
		}
		u, err := url.Parse(img)
		if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
			report.add("images", "Invalid image url", id)
			continue
		}
		host := strings.TrimPrefix(u.Hostname(), "www.")
		for _, vh := range videoHosts {
			if host == vh {
				report.add("images", "Image url points at a video host", id)
				break
			}
		}
	}
}

func (v *Validator) checkAttributes(it *Item, id string, report Report) {
	for _, attr := range it.Attributes {
		if !utils.IsNotEmpty(attr.Name) {
			report.add("attributes", "Empty attribute name", id)
			continue
		}
		if !utils.IsNotEmpty(attr.Value) {
			report.add("attributes", "Empty attribute value", id)
			continue
		}
		if len(attr.Value) > maxAttributeValueLen {
			report.add("attributes", "Attribute value too long", id)
		}
		if utils.ExistsMoney(attr.Value) != "" {
			report.add("attributes", "Attribute contains price", id)
		}
	}
}

func (v *Validator) checkFiles(it *Item, id string, report Report) {
	for _, f := range it.ProductFiles {
		if !utils.IsNotEmpty(f.Name) {
			report.add("product_files", "Empty file name", id)
		}
		if u, err := url.Parse(f.URL); err != nil || (u.Scheme != "http" && u.Scheme != "https") {
			report.add("product_files", "Invalid file url", id)
		}
	}
}

func (v *Validator) checkVideos(it *Item, id string, report Report) {
	for _, video := range it.Videos {
		if u, err := url.Parse(video); err != nil || (u.Scheme != "http" && u.Scheme != "https") {
			report.add("videos", "Invalid video url", id)
		}
	}
}

func (v *Validator) checkOptions(it *Item, id string, report Report) {
	for _, opt := range it.Options {
		if !utils.IsNotEmpty(opt.Name) {
			report.add("options", "Empty option name", id)
			continue
		}
		if len(opt.Values) == 0 {
			report.add("options", "Option has no values", id)
		}
	}
}
