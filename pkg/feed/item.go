// Package feed holds the canonical product entity and the merge and
// validation logic that reconciles crawled data with price-list data.
package feed

import (
	"encoding/json"
	"strings"

	"github.com/google/uuid"

	"feed-scraper/pkg/utils"
)

// Placeholder marks descriptive fields the crawl produced no value for.
// The merge engine treats placeholder values as overwritable.
const Placeholder = "Dummy"

// Defaults for fields with a meaningful zero state.
const (
	DefaultForsale   = "Y"
	DefaultMinAmount = 1
)

// Attribute is one free-form product property.
type Attribute struct {
	Name  string `json:"name"`
	Value string `json:"value"`
}

// Option is a selectable product option with its value set.
type Option struct {
	Name   string   `json:"name"`
	Values []string `json:"values"`
}

// File is a downloadable document attached to a product.
type File struct {
	Name string `json:"name"`
	URL  string `json:"url"`
}

// Item is the canonical product record. A group parent carries no price or
// stock of its own; only leaf items and children are sellable.
type Item struct {
	ProductCode string   `json:"productcode"`
	Mpn         string   `json:"mpn"`
	Product     string   `json:"product"`
	CostToUs    float64  `json:"cost_to_us"`
	ListPrice   float64  `json:"list_price"`
	NewMapPrice float64  `json:"new_map_price,omitempty"`
	RAvail      *int     `json:"r_avail"`
	Descr       string   `json:"descr,omitempty"`
	FullDescr   string   `json:"fulldescr"`
	Brand       string   `json:"brand,omitempty"`
	BrandNorm   string   `json:"brand_normalized,omitempty"`
	Forsale     string   `json:"forsale"`
	Upc         string   `json:"upc,omitempty"`
	Categories  []string `json:"categories,omitempty"`
	InternalID  string   `json:"internal_id,omitempty"`
	HashProduct string   `json:"hash_product,omitempty"`
	Images      []string `json:"images,omitempty"`
	AltNames    []string `json:"alt_names,omitempty"`

	DimX *float64 `json:"dim_x,omitempty"`
	DimY *float64 `json:"dim_y,omitempty"`
	DimZ *float64 `json:"dim_z,omitempty"`

	ShippingDimX *float64 `json:"shipping_dim_x,omitempty"`
	ShippingDimY *float64 `json:"shipping_dim_y,omitempty"`
	ShippingDimZ *float64 `json:"shipping_dim_z,omitempty"`

	Weight         *float64 `json:"weight,omitempty"`
	ShippingWeight *float64 `json:"shipping_weight,omitempty"`

	MinAmount         int  `json:"min_amount"`
	MultOrderQuantity bool `json:"mult_order_quantity,omitempty"`

	IsGroup       bool    `json:"is_group,omitempty"`
	ChildProducts []*Item `json:"child_products,omitempty"`
	GroupMask     string  `json:"group_mask,omitempty"`

	LeadTimeMessage string      `json:"lead_time_message,omitempty"`
	EtaDate         string      `json:"eta_date,omitempty"`
	Attributes      []Attribute `json:"attributes,omitempty"`
	Options         []Option    `json:"options,omitempty"`
	Videos          []string    `json:"videos,omitempty"`
	ProductFiles    []File      `json:"product_files,omitempty"`
}

// NewItem returns an item with the placeholder/default field values.
func NewItem() *Item {
	return &Item{
		Product:   Placeholder,
		FullDescr: Placeholder,
		Forsale:   DefaultForsale,
		MinAmount: DefaultMinAmount,
	}
}

// SetMpn trims and stores the part number.
func (it *Item) SetMpn(mpn string) {
	it.Mpn = utils.Trim(mpn)
}

// SetProduct normalizes a product name: whitespace collapsed, the mpn
// stripped out of the title, and words title-cased. An empty result leaves
// the placeholder in place.
func (it *Item) SetProduct(name string) {
	name = utils.RemoveSpaces(utils.Trim(name))
	if it.Mpn != "" {
		name = utils.Trim(strings.ReplaceAll(name, it.Mpn, ""))
		name = utils.RemoveSpaces(name)
	}
	if name == "" {
		return
	}
	it.Product = utils.UcWords(strings.ToLower(name))
}

// SetCostToUs stores the wholesale price rounded to cents.
func (it *Item) SetCostToUs(v float64) {
	it.CostToUs = utils.RoundPrice(v)
}

// SetListPrice stores the list price rounded to cents.
func (it *Item) SetListPrice(v float64) {
	it.ListPrice = utils.RoundPrice(v)
}

// SetAvail stores a non-negative availability count.
func (it *Item) SetAvail(n int) {
	if n < 0 {
		n = 0
	}
	it.RAvail = &n
}

// SetDescr stores the short feature description, trimmed.
func (it *Item) SetDescr(s string) {
	it.Descr = utils.Trim(s)
}

// SetFullDescr stores the full description, keeping the placeholder when
// the crawl produced nothing.
func (it *Item) SetFullDescr(s string) {
	s = utils.Trim(s)
	if s == "" {
		return
	}
	it.FullDescr = s
}

// SetBrand title-cases and stores the brand, keeping a lowercased
// alphanumeric form for matching against price-list brands.
func (it *Item) SetBrand(s string) {
	it.Brand = utils.UcWords(strings.ToLower(utils.Trim(s)))
	it.BrandNorm = normalizeBrand(it.Brand)
}

func normalizeBrand(s string) string {
	var b strings.Builder
	for _, r := range strings.ToLower(s) {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// AddImage appends an image URL, skipping duplicates and empties.
func (it *Item) AddImage(u string) {
	u = utils.Trim(u)
	if u == "" {
		return
	}
	for _, existing := range it.Images {
		if existing == u {
			return
		}
	}
	it.Images = append(it.Images, u)
}

// AddAttribute appends a named attribute, skipping empty names.
func (it *Item) AddAttribute(name, value string) {
	name = utils.Trim(name)
	if name == "" {
		return
	}
	it.Attributes = append(it.Attributes, Attribute{Name: name, Value: utils.Trim(value)})
}

// SetHash computes the change-detection hash over every field except
// images, which vary by CDN URL without the product changing. Forced mode
// substitutes a random hash so downstream consumers always see a change.
func (it *Item) SetHash(forced bool) {
	if forced {
		it.HashProduct = uuid.NewString()
		return
	}
	clone := *it
	clone.Images = nil
	clone.HashProduct = ""
	data, err := json.Marshal(&clone)
	if err != nil {
		it.HashProduct = uuid.NewString()
		return
	}
	it.HashProduct = utils.CalculateStringSHA256(string(data))
}

// Identity returns the product code, falling back to the content hash when
// no stable code exists. Validation reports key offenders this way.
func (it *Item) Identity() string {
	if it.ProductCode != "" {
		return it.ProductCode
	}
	return it.HashProduct
}

// HasRealName reports whether the product name was actually extracted
// rather than left at the placeholder.
func (it *Item) HasRealName() bool {
	return it.Product != "" && it.Product != Placeholder
}

// Sellable reports whether the item should survive the final filter pass:
// a group with children, or a leaf with a name and a positive price.
func (it *Item) Sellable() bool {
	if it.IsGroup {
		return len(it.ChildProducts) > 0
	}
	return it.HasRealName() && it.CostToUs > 0
}

// EnforceGroupInvariant zeroes price, stock and media on a group parent.
// Only children carry sellable state. Identity fields (mpn, product code)
// are cleared once at group assembly, not here, so a code assigned to the
// parent later survives merging.
func (it *Item) EnforceGroupInvariant() {
	if !it.IsGroup {
		return
	}
	it.CostToUs = 0
	it.ListPrice = 0
	it.NewMapPrice = 0
	it.RAvail = nil
	it.Images = nil
	it.MinAmount = DefaultMinAmount
}
