package feed

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func groupParent() *Item {
	parent := NewItem()
	parent.Product = "Anchor Bolt Kit"
	parent.FullDescr = "Zinc plated anchor bolts."
	parent.Brand = "Acme"
	parent.Categories = []string{"Hardware", "Fasteners"}
	return parent
}

func TestProductCode(t *testing.T) {
	assert.Equal(t, "AC-AB100", ProductCode("ac-", "ab100"))
	assert.Equal(t, "AC-AB100", ProductCode(" ac-", " ab100 "))
}

func TestBuilderChildInheritsTemplate(t *testing.T) {
	b := NewGroupBuilder(groupParent(), "ac-")
	b.AddChild(ChildOverrides{Mpn: "AB100", CostToUs: 3.25})
	b.AddChild(ChildOverrides{Mpn: "AB200", CostToUs: 4.75})

	group := b.Build()
	require.NotNil(t, group)
	require.True(t, group.IsGroup)
	require.Len(t, group.ChildProducts, 2)

	child := group.ChildProducts[0]
	assert.Equal(t, "AB100", child.Mpn)
	assert.Equal(t, "AC-AB100", child.ProductCode)
	assert.Equal(t, 3.25, child.CostToUs)
	assert.Equal(t, "Zinc plated anchor bolts.", child.FullDescr)
	assert.Equal(t, "Acme", child.Brand)
}

func TestBuilderDedupesByMpn(t *testing.T) {
	b := NewGroupBuilder(groupParent(), "ac-")
	b.AddChild(ChildOverrides{Mpn: "AB100", CostToUs: 3.25})
	b.AddChild(ChildOverrides{Mpn: "AB100", CostToUs: 99})
	b.AddChild(ChildOverrides{Mpn: "", CostToUs: 1})
	b.AddChild(ChildOverrides{Mpn: "AB200"})

	group := b.Build()
	require.NotNil(t, group)
	require.Len(t, group.ChildProducts, 2)
	assert.Equal(t, 3.25, group.ChildProducts[0].CostToUs, "first child wins on duplicate mpn")
}

func TestBuilderSingleChildCollapses(t *testing.T) {
	b := NewGroupBuilder(groupParent(), "ac-")
	b.AddChild(ChildOverrides{Mpn: "AB100", CostToUs: 3.25})

	item := b.Build()
	require.NotNil(t, item)
	assert.False(t, item.IsGroup)
	assert.Equal(t, "AB100", item.Mpn)
	assert.Equal(t, 3.25, item.CostToUs)
	assert.Empty(t, item.ChildProducts)
}

func TestBuilderEmptyGroup(t *testing.T) {
	b := NewGroupBuilder(groupParent(), "ac-")
	assert.Nil(t, b.Build())
}

func TestBuilderSiblingsAreIsolated(t *testing.T) {
	b := NewGroupBuilder(groupParent(), "ac-")
	b.AddChild(ChildOverrides{Mpn: "AB100", Images: []string{"https://cdn.example.com/a.jpg"}})
	b.AddChild(ChildOverrides{Mpn: "AB200"})

	group := b.Build()
	require.Len(t, group.ChildProducts, 2)

	group.ChildProducts[0].AddImage("https://cdn.example.com/extra.jpg")
	group.ChildProducts[0].Categories = append(group.ChildProducts[0].Categories, "Mutated")

	assert.Len(t, group.ChildProducts[1].Images, 0)
	assert.Equal(t, []string{"Hardware", "Fasteners"}, group.ChildProducts[1].Categories[:2])
	assert.NotContains(t, group.ChildProducts[1].Categories, "Mutated")
}

func TestBuilderParentInvariant(t *testing.T) {
	parent := groupParent()
	parent.CostToUs = 12
	parent.Mpn = "PARENT"
	parent.Images = []string{"https://cdn.example.com/parent.jpg"}

	b := NewGroupBuilder(parent, "ac-")
	b.AddChild(ChildOverrides{Mpn: "AB100"})
	b.AddChild(ChildOverrides{Mpn: "AB200"})

	group := b.Build()
	assert.Zero(t, group.CostToUs)
	assert.Empty(t, group.Mpn)
	assert.Empty(t, group.ProductCode)
	assert.Empty(t, group.Images)
	assert.Nil(t, group.RAvail)
	assert.Equal(t, "Anchor Bolt Kit", group.GroupMask)
}

func TestBuilderSimilarChildNamesCollapse(t *testing.T) {
	b := NewGroupBuilder(groupParent(), "ac-")
	b.AddChild(ChildOverrides{Mpn: "AB100", Product: "Anchor Bolt Kit Small"})
	b.AddChild(ChildOverrides{Mpn: "AB200", Product: "Completely Different Thing"})
	b.AddChild(ChildOverrides{Mpn: "AB300"})

	group := b.Build()
	require.Len(t, group.ChildProducts, 3)

	// Near-duplicate of the mask collapses onto it.
	assert.Equal(t, "Anchor Bolt Kit", group.ChildProducts[0].Product)
	// Genuinely distinct names survive.
	assert.Equal(t, "Completely Different Thing", group.ChildProducts[1].Product)
	// No override inherits the mask.
	assert.Equal(t, "Anchor Bolt Kit", group.ChildProducts[2].Product)
}
