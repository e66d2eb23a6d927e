package feed

import (
	"strings"

	"feed-scraper/pkg/utils"
)

// ChildOverrides is the explicit per-variant field record applied on top of
// the shared parent template when building a group child. Zero-valued
// fields inherit from the template.
type ChildOverrides struct {
	Mpn        string
	Product    string
	CostToUs   float64
	ListPrice  float64
	Avail      *int
	Upc        string
	Images     []string
	Attributes []Attribute
	Options    []Option
	Weight     *float64
	MinAmount  int
}

// ProductCode derives the canonical product code from a vendor prefix and
// part number.
func ProductCode(prefix, mpn string) string {
	return strings.ToUpper(utils.Trim(prefix) + utils.Trim(mpn))
}

// GroupBuilder assembles a group entity from an immutable parent template
// plus explicit per-child overrides. Children never share mutable state
// with the template or each other.
type GroupBuilder struct {
	template Item // copied once, never mutated
	prefix   string
	children []*Item
	seen     map[string]bool
}

// NewGroupBuilder snapshots the parent as the shared template. The prefix
// is the vendor's product-code prefix from the directory service.
func NewGroupBuilder(parent *Item, prefix string) *GroupBuilder {
	return &GroupBuilder{
		template: *parent,
		prefix:   prefix,
		seen:     make(map[string]bool),
	}
}

// AddChild builds one variant from the template plus overrides. Children
// with an empty or already-seen mpn are dropped.
func (b *GroupBuilder) AddChild(o ChildOverrides) {
	mpn := utils.Trim(o.Mpn)
	if mpn == "" || b.seen[mpn] {
		return
	}
	b.seen[mpn] = true

	child := b.template
	child.IsGroup = false
	child.ChildProducts = nil
	child.GroupMask = ""
	child.Mpn = mpn
	child.ProductCode = ProductCode(b.prefix, mpn)

	if o.Product != "" {
		child.SetProduct(o.Product)
	}
	if o.CostToUs > 0 {
		child.SetCostToUs(o.CostToUs)
	}
	if o.ListPrice > 0 {
		child.SetListPrice(o.ListPrice)
	}
	if o.Avail != nil {
		child.SetAvail(*o.Avail)
	}
	if o.Upc != "" {
		child.Upc = utils.Trim(o.Upc)
	}
	if len(o.Images) > 0 {
		child.Images = nil
		for _, img := range o.Images {
			child.AddImage(img)
		}
	}
	if len(o.Attributes) > 0 {
		child.Attributes = append([]Attribute(nil), o.Attributes...)
	}
	if len(o.Options) > 0 {
		child.Options = append([]Option(nil), o.Options...)
	}
	if o.Weight != nil {
		child.Weight = utils.NormalizeFloat(o.Weight)
	}
	if o.MinAmount > 0 {
		child.MinAmount = o.MinAmount
	}

	b.children = append(b.children, &child)
}

// Build finalizes the group. A single-child group collapses into that child
// so downstream consumers never see one-variant groups. Multi-child groups
// get the parent's name as a group mask, near-duplicate child names
// collapsed onto it, and the parent invariant enforced.
func (b *GroupBuilder) Build() *Item {
	switch len(b.children) {
	case 0:
		return nil
	case 1:
		return b.children[0]
	}

	parent := b.template
	parent.IsGroup = true
	parent.ChildProducts = b.children
	parent.GroupMask = parent.Product
	parent.Mpn = ""
	parent.ProductCode = ""

	for _, child := range b.children {
		if child.Product == "" || child.Product == Placeholder {
			child.Product = parent.GroupMask
			continue
		}
		if utils.Similarity(child.Product, parent.GroupMask) > 50 {
			child.Product = parent.GroupMask
		}
	}

	parent.EnforceGroupInvariant()
	return &parent
}
