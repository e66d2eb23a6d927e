package fetch

import (
	"net/url"
	"sort"
	"strings"
)

// LinkType classifies what a frontier entry points at.
type LinkType string

const (
	LinkCategory LinkType = "category" // Listing/category page, yields more links
	LinkProduct  LinkType = "product"  // Product detail page, yields an entity
	LinkOther    LinkType = "other"    // Auxiliary fetch (sitemaps, API endpoints)
)

// Link is a single crawl target. URL plus optional POST parameters form its
// identity: the same URL posted with different bodies is a distinct target.
type Link struct {
	URL        string
	Type       LinkType
	PostParams map[string]string // non-nil means the request is a POST
	Encoding   Encoding          // how PostParams are serialized
	Meta       map[string]string // carried through to the parser untouched
}

// NewLink returns a GET link of the given type.
func NewLink(rawURL string, typ LinkType) Link {
	return Link{URL: rawURL, Type: typ}
}

// NewPostLink returns a POST link whose identity includes the form params.
func NewPostLink(rawURL string, typ LinkType, params map[string]string) Link {
	return Link{URL: rawURL, Type: typ, PostParams: params}
}

// IsPost reports whether the link is dispatched as a POST request.
func (l Link) IsPost() bool {
	return l.PostParams != nil
}

// Key returns the deduplication identity for the link. GET links key on the
// URL alone; POST links append the sorted encoded params so that distinct
// bodies against one endpoint stay distinct frontier entries.
func (l Link) Key() string {
	if !l.IsPost() {
		return l.URL
	}
	keys := make([]string, 0, len(l.PostParams))
	for k := range l.PostParams {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	var b strings.Builder
	b.WriteString(l.URL)
	b.WriteString("@post_params=")
	for i, k := range keys {
		if i > 0 {
			b.WriteByte('&')
		}
		b.WriteString(url.QueryEscape(k))
		b.WriteByte('=')
		b.WriteString(url.QueryEscape(l.PostParams[k]))
	}
	return b.String()
}

// Host returns the hostname portion of the link URL, or "" if unparsable.
func (l Link) Host() string {
	u, err := url.Parse(l.URL)
	if err != nil {
		return ""
	}
	return u.Hostname()
}
