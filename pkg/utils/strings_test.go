package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTrimHandlesNonBreakingSpace(t *testing.T) {
	assert.Equal(t, "abc", Trim("  abc  "))
	assert.Equal(t, "", Trim("  \t "))
}

func TestRemoveSpaces(t *testing.T) {
	assert.Equal(t, "a b c", RemoveSpaces("a  b \t\t c"))
}

func TestUcWords(t *testing.T) {
	assert.Equal(t, "Heavy Duty Bolt", UcWords("heavy duty bolt"))
	assert.Equal(t, "Abc", UcWords("abc"))
	assert.Equal(t, "", UcWords(""))
}

func TestIsNotEmpty(t *testing.T) {
	assert.False(t, IsNotEmpty("  "))
	assert.True(t, IsNotEmpty(" x "))
}

func TestStripTags(t *testing.T) {
	assert.Equal(t, "bold text", StripTags("<b>bold</b> text"))
	assert.Equal(t, "ab", StripTags("a<div\nclass='x'>b"))
}

func TestExistsMoney(t *testing.T) {
	cases := map[string]bool{
		"Only $9.99 today":     true,
		"price: 12.50$":        true,
		"USD 45":               true,
		"18V cordless drill":   false,
		"pack of 100":          false,
		"model 12.5 inch":      false,
	}
	for input, want := range cases {
		got := ExistsMoney(input) != ""
		assert.Equal(t, want, got, "input %q", input)
	}
}

func TestRoundPrice(t *testing.T) {
	assert.Equal(t, 3.14, RoundPrice(3.14159))
	assert.Equal(t, 10.01, RoundPrice(10.006))
}

func TestNormalizeFloat(t *testing.T) {
	assert.Nil(t, NormalizeFloat(nil))
	v := 2.345
	assert.Equal(t, 2.35, *NormalizeFloat(&v))
}

func TestSimilarity(t *testing.T) {
	assert.Equal(t, 100.0, Similarity("widget", "widget"))
	assert.Zero(t, Similarity("", ""))
	assert.Greater(t, Similarity("Anchor Bolt Kit Small", "Anchor Bolt Kit"), 50.0)
	assert.Less(t, Similarity("Completely Different", "Anchor Bolt Kit"), 50.0)
}
