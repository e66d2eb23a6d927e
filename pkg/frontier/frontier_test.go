package frontier

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"feed-scraper/pkg/fetch"
)

func links(typ fetch.LinkType, urls ...string) []fetch.Link {
	out := make([]fetch.Link, 0, len(urls))
	for _, u := range urls {
		out = append(out, fetch.NewLink(u, typ))
	}
	return out
}

func TestAddIsIdempotent(t *testing.T) {
	f := New()

	added := f.Add(links(fetch.LinkProduct,
		"https://example.com/p/1",
		"https://example.com/p/2",
		"https://example.com/p/1",
	), fetch.LinkProduct)

	assert.Equal(t, 2, added)
	assert.Equal(t, 2, f.Count())

	// Re-adding after a visit is still a no-op.
	f.MarkVisited("https://example.com/p/1")
	added = f.Add(links(fetch.LinkProduct, "https://example.com/p/1"), fetch.LinkProduct)
	assert.Equal(t, 0, added)
	assert.Equal(t, 2, f.Count())
}

func TestVisitedMonotonicity(t *testing.T) {
	f := New()
	f.Add(links(fetch.LinkProduct, "https://example.com/p/1", "https://example.com/p/2"), fetch.LinkProduct)

	f.MarkVisited("https://example.com/p/1")

	for i := 0; i < 3; i++ {
		batch := f.Next(AnyType, 10)
		require.Len(t, batch, 1)
		assert.Equal(t, "https://example.com/p/2", batch[0].URL)
	}
}

func TestNextDoesNotRemove(t *testing.T) {
	f := New()
	f.Add(links(fetch.LinkCategory, "https://example.com/c/1"), fetch.LinkCategory)

	first := f.Next(AnyType, 5)
	second := f.Next(AnyType, 5)
	assert.Equal(t, first, second, "next must not consume entries; a crashed round is retried")
}

func TestNextPreservesInsertionOrderAndFilters(t *testing.T) {
	f := New()
	f.Add(links(fetch.LinkCategory, "https://example.com/c/1"), fetch.LinkCategory)
	f.Add(links(fetch.LinkProduct, "https://example.com/p/1"), fetch.LinkProduct)
	f.Add(links(fetch.LinkCategory, "https://example.com/c/2"), fetch.LinkCategory)

	all := f.Next(AnyType, 10)
	require.Len(t, all, 3)
	assert.Equal(t, "https://example.com/c/1", all[0].URL)
	assert.Equal(t, "https://example.com/p/1", all[1].URL)
	assert.Equal(t, "https://example.com/c/2", all[2].URL)

	products := f.Next(fetch.LinkProduct, 10)
	require.Len(t, products, 1)
	assert.Equal(t, "https://example.com/p/1", products[0].URL)

	limited := f.Next(AnyType, 2)
	assert.Len(t, limited, 2)
}

func TestPostLinksAreDistinctEntries(t *testing.T) {
	f := New()
	f.Add([]fetch.Link{
		fetch.NewPostLink("https://example.com/search", fetch.LinkCategory, map[string]string{"page": "1"}),
		fetch.NewPostLink("https://example.com/search", fetch.LinkCategory, map[string]string{"page": "2"}),
		fetch.NewLink("https://example.com/search", fetch.LinkCategory),
	}, fetch.LinkCategory)

	assert.Equal(t, 3, f.Count())
}

func TestSeedScenario(t *testing.T) {
	// Three product URLs, one duplicated: count is 2.
	f := New()
	f.Add(links(fetch.LinkProduct,
		"https://example.com/p/a",
		"https://example.com/p/b",
		"https://example.com/p/a",
	), fetch.LinkProduct)
	assert.Equal(t, 2, f.Count())
}

func TestCountByTypeAndPending(t *testing.T) {
	f := New()
	f.Add(links(fetch.LinkCategory, "https://example.com/c/1", "https://example.com/c/2"), fetch.LinkCategory)
	f.Add(links(fetch.LinkProduct, "https://example.com/p/1"), fetch.LinkProduct)

	assert.Equal(t, 2, f.CountByType(fetch.LinkCategory))
	assert.Equal(t, 1, f.CountByType(fetch.LinkProduct))
	assert.Equal(t, 3, f.CountByType(AnyType))

	f.MarkVisited("https://example.com/c/1")
	assert.Equal(t, 1, f.Pending(fetch.LinkCategory))
	assert.Equal(t, 2, f.CountByType(fetch.LinkCategory), "count includes visited entries")
}

func TestMarkCategoriesVisited(t *testing.T) {
	f := New()
	f.Add(links(fetch.LinkCategory, "https://example.com/c/1", "https://example.com/c/2"), fetch.LinkCategory)
	f.Add(links(fetch.LinkProduct, "https://example.com/p/1"), fetch.LinkProduct)

	f.MarkCategoriesVisited()

	remaining := f.Next(AnyType, 10)
	require.Len(t, remaining, 1)
	assert.Equal(t, fetch.LinkProduct, remaining[0].Type)
}

func TestClear(t *testing.T) {
	f := New()
	f.Add(links(fetch.LinkProduct, "https://example.com/p/1"), fetch.LinkProduct)
	f.Clear()
	assert.Equal(t, 0, f.Count())
	assert.Empty(t, f.Next(AnyType, 10))
}

func TestGetRecoversStoredType(t *testing.T) {
	f := New()
	f.Add(links(fetch.LinkProduct, "https://example.com/p/1"), fetch.LinkProduct)

	l, ok := f.Get("https://example.com/p/1")
	require.True(t, ok)
	assert.Equal(t, fetch.LinkProduct, l.Type)

	_, ok = f.Get("https://example.com/p/unknown")
	assert.False(t, ok)
}

func TestLargeSeedKeepsDistinctCount(t *testing.T) {
	f := New()
	var all []fetch.Link
	for i := 0; i < 100; i++ {
		all = append(all, fetch.NewLink(fmt.Sprintf("https://example.com/p/%d", i%25), fetch.LinkProduct))
	}
	f.Add(all, fetch.LinkProduct)
	assert.Equal(t, 25, f.Count())
}
