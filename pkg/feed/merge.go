package feed

// MergeHook runs after each entity has been merged, for vendor-specific
// cleanup such as re-deriving a SKU from a merged attribute.
type MergeHook func(*Item)

// Merge reconciles crawled targets with price-list sources keyed by mpn.
//
// The crawl is the higher-trust source for descriptive and media content,
// the price list for pricing and availability. Every non-empty source field
// overwrites the target except the protected fields, which only yield when
// the crawl produced nothing useful:
//
//	product, fulldescr  target still at the placeholder
//	min_amount          target still at the default of 1
//	forsale             target still at the default "Y"
//	images, brand       target has none
//
// Group children merge before their parent, and the post-merge hook runs
// on children and parent alike. Targets with an empty mpn are never merged.
// Merging twice with the same inputs is a no-op.
func Merge(targets []*Item, sources map[string]*Item, hook MergeHook) {
	for _, target := range targets {
		mergeOne(target, sources, hook)
	}
}

func mergeOne(target *Item, sources map[string]*Item, hook MergeHook) {
	if target.IsGroup {
		Merge(target.ChildProducts, sources, hook)
		target.EnforceGroupInvariant()
		if hook != nil {
			hook(target)
		}
		return
	}

	if target.Mpn != "" {
		if source, ok := sources[target.Mpn]; ok {
			applySource(target, source)
		}
	}
	if hook != nil {
		hook(target)
	}
}

func applySource(target, source *Item) {
	// Protected descriptive fields: crawl wins unless it produced nothing.
	if target.Product == Placeholder && source.Product != "" && source.Product != Placeholder {
		target.Product = source.Product
	}
	if target.FullDescr == Placeholder && source.FullDescr != "" && source.FullDescr != Placeholder {
		target.FullDescr = source.FullDescr
	}
	if target.MinAmount == DefaultMinAmount && source.MinAmount > 0 {
		target.MinAmount = source.MinAmount
	}
	if target.Forsale == DefaultForsale && source.Forsale != "" {
		target.Forsale = source.Forsale
	}
	if len(target.Images) == 0 && len(source.Images) > 0 {
		target.Images = append([]string(nil), source.Images...)
	}
	if target.Brand == "" && source.Brand != "" {
		target.Brand = source.Brand
		target.BrandNorm = source.BrandNorm
	}

	// Everything else: the price list is authoritative when it has a value.
	if source.ProductCode != "" {
		target.ProductCode = source.ProductCode
	}
	if source.CostToUs > 0 {
		target.CostToUs = source.CostToUs
	}
	if source.ListPrice > 0 {
		target.ListPrice = source.ListPrice
	}
	if source.NewMapPrice > 0 {
		target.NewMapPrice = source.NewMapPrice
	}
	if source.RAvail != nil {
		avail := *source.RAvail
		target.RAvail = &avail
	}
	if source.Descr != "" {
		target.Descr = source.Descr
	}
	if source.Upc != "" {
		target.Upc = source.Upc
	}
	if len(source.Categories) > 0 {
		target.Categories = append([]string(nil), source.Categories...)
	}
	if source.InternalID != "" {
		target.InternalID = source.InternalID
	}
	if len(source.AltNames) > 0 {
		target.AltNames = append([]string(nil), source.AltNames...)
	}
	if source.DimX != nil {
		target.DimX = copyFloat(source.DimX)
	}
	if source.DimY != nil {
		target.DimY = copyFloat(source.DimY)
	}
	if source.DimZ != nil {
		target.DimZ = copyFloat(source.DimZ)
	}
	if source.ShippingDimX != nil {
		target.ShippingDimX = copyFloat(source.ShippingDimX)
	}
	if source.ShippingDimY != nil {
		target.ShippingDimY = copyFloat(source.ShippingDimY)
	}
	if source.ShippingDimZ != nil {
		target.ShippingDimZ = copyFloat(source.ShippingDimZ)
	}
	if source.Weight != nil {
		target.Weight = copyFloat(source.Weight)
	}
	if source.ShippingWeight != nil {
		target.ShippingWeight = copyFloat(source.ShippingWeight)
	}
	if source.MultOrderQuantity {
		target.MultOrderQuantity = true
	}
	if source.LeadTimeMessage != "" {
		target.LeadTimeMessage = source.LeadTimeMessage
	}
	if source.EtaDate != "" {
		target.EtaDate = source.EtaDate
	}
	if len(source.Attributes) > 0 {
		target.Attributes = append([]Attribute(nil), source.Attributes...)
	}
	if len(source.Options) > 0 {
		target.Options = append([]Option(nil), source.Options...)
	}
	if len(source.Videos) > 0 {
		target.Videos = append([]string(nil), source.Videos...)
	}
	if len(source.ProductFiles) > 0 {
		target.ProductFiles = append([]File(nil), source.ProductFiles...)
	}
}

func copyFloat(v *float64) *float64 {
	f := *v
	return &f
}

// IndexByMpn builds the source lookup map for Merge from a price-list feed.
// Later entries with a duplicate mpn are ignored.
func IndexByMpn(items []*Item) map[string]*Item {
	out := make(map[string]*Item, len(items))
	for _, it := range items {
		if it.Mpn == "" {
			continue
		}
		if _, exists := out[it.Mpn]; !exists {
			out[it.Mpn] = it
		}
	}
	return out
}
