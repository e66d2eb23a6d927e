package feed

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewItemDefaults(t *testing.T) {
	it := NewItem()
	assert.Equal(t, Placeholder, it.Product)
	assert.Equal(t, Placeholder, it.FullDescr)
	assert.Equal(t, DefaultForsale, it.Forsale)
	assert.Equal(t, DefaultMinAmount, it.MinAmount)
	assert.Nil(t, it.RAvail)
}

func TestSetProductStripsMpnAndTitleCases(t *testing.T) {
	it := NewItem()
	it.SetMpn("AB-100")
	it.SetProduct("  heavy duty   ANCHOR bolt AB-100 ")
	assert.Equal(t, "Heavy Duty Anchor Bolt", it.Product)
}

func TestSetProductEmptyKeepsPlaceholder(t *testing.T) {
	it := NewItem()
	it.SetMpn("AB-100")
	it.SetProduct(" AB-100 ")
	assert.Equal(t, Placeholder, it.Product)
	assert.False(t, it.HasRealName())
}

func TestSetFullDescrKeepsPlaceholderWhenEmpty(t *testing.T) {
	it := NewItem()
	it.SetFullDescr("   ")
	assert.Equal(t, Placeholder, it.FullDescr)
	it.SetFullDescr(" real text ")
	assert.Equal(t, "real text", it.FullDescr)
}

func TestPriceRounding(t *testing.T) {
	it := NewItem()
	it.SetCostToUs(3.14159)
	it.SetListPrice(10.006)
	assert.Equal(t, 3.14, it.CostToUs)
	assert.Equal(t, 10.01, it.ListPrice)
}

func TestSetAvailClampsNegative(t *testing.T) {
	it := NewItem()
	it.SetAvail(-5)
	require.NotNil(t, it.RAvail)
	assert.Equal(t, 0, *it.RAvail)
}

func TestSetBrandNormalizes(t *testing.T) {
	it := NewItem()
	it.SetBrand("  DE-WALT Tools ")
	assert.Equal(t, "De-walt Tools", it.Brand)
	assert.Equal(t, "dewalttools", it.BrandNorm)
}

func TestAddImageDedupes(t *testing.T) {
	it := NewItem()
	it.AddImage("https://cdn.example.com/a.jpg")
	it.AddImage("https://cdn.example.com/a.jpg")
	it.AddImage(" ")
	it.AddImage("https://cdn.example.com/b.jpg")
	assert.Len(t, it.Images, 2)
}

func TestSetHashStableAndIgnoresImages(t *testing.T) {
	a := NewItem()
	a.SetMpn("X")
	a.SetCostToUs(5)
	a.SetHash(false)

	b := NewItem()
	b.SetMpn("X")
	b.SetCostToUs(5)
	b.AddImage("https://cdn.example.com/new-cdn-path.jpg")
	b.SetHash(false)

	assert.Equal(t, a.HashProduct, b.HashProduct, "image churn must not change the hash")

	b.SetCostToUs(6)
	b.SetHash(false)
	assert.NotEqual(t, a.HashProduct, b.HashProduct)
}

func TestSetHashForcedIsAlwaysFresh(t *testing.T) {
	it := NewItem()
	it.SetHash(true)
	first := it.HashProduct
	it.SetHash(true)
	assert.NotEqual(t, first, it.HashProduct)
	assert.NotEmpty(t, first)
}

func TestIdentityFallsBackToHash(t *testing.T) {
	it := NewItem()
	it.HashProduct = "cafebabe"
	assert.Equal(t, "cafebabe", it.Identity())
	it.ProductCode = "AC-X"
	assert.Equal(t, "AC-X", it.Identity())
}

func TestSellable(t *testing.T) {
	leaf := NewItem()
	assert.False(t, leaf.Sellable(), "placeholder name and zero price")

	leaf.SetProduct("Widget")
	leaf.SetCostToUs(2)
	assert.True(t, leaf.Sellable())

	group := NewItem()
	group.IsGroup = true
	assert.False(t, group.Sellable())
	group.ChildProducts = []*Item{leaf}
	assert.True(t, group.Sellable())
}

func TestEnforceGroupInvariantLeafUntouched(t *testing.T) {
	leaf := NewItem()
	leaf.SetCostToUs(9)
	leaf.EnforceGroupInvariant()
	assert.Equal(t, 9.0, leaf.CostToUs)
}
