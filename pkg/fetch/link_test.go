package fetch

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLinkKeyGet(t *testing.T) {
	l := NewLink("https://example.com/p/1", LinkProduct)
	assert.Equal(t, "https://example.com/p/1", l.Key())
	assert.False(t, l.IsPost())
}

func TestLinkKeyPostIncludesParams(t *testing.T) {
	a := NewPostLink("https://example.com/search", LinkCategory, map[string]string{"page": "1", "cat": "tools"})
	b := NewPostLink("https://example.com/search", LinkCategory, map[string]string{"page": "2", "cat": "tools"})

	assert.True(t, a.IsPost())
	assert.NotEqual(t, a.Key(), b.Key())
	assert.Contains(t, a.Key(), "@post_params=")
}

func TestLinkKeyPostIsOrderIndependent(t *testing.T) {
	a := NewPostLink("https://example.com/s", LinkCategory, map[string]string{"a": "1", "b": "2"})
	b := NewPostLink("https://example.com/s", LinkCategory, map[string]string{"b": "2", "a": "1"})
	assert.Equal(t, a.Key(), b.Key())
}

func TestLinkHost(t *testing.T) {
	assert.Equal(t, "example.com", NewLink("https://example.com/p", LinkProduct).Host())
	assert.Equal(t, "", Link{URL: "://bad"}.Host())
}
