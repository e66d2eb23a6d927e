package utils

import (
	"math"
	"regexp"
	"strings"
	"unicode"
)

var (
	multiSpaceRe = regexp.MustCompile(`\s{2,}`)
	htmlTagRe    = regexp.MustCompile(`(?s)<[^>]*>`)
	// Matches "$12.34", "12.34$", "USD 12.34" style price fragments.
	moneyRe = regexp.MustCompile(`(?i)(?:\$|usd\s?)\s?\d+(?:[.,]\d{1,2})?|\d+(?:[.,]\d{1,2})?\s?(?:\$|usd)`)
)

// Trim removes leading/trailing whitespace including non-breaking spaces.
func Trim(s string) string {
	return strings.TrimFunc(s, func(r rune) bool {
		return unicode.IsSpace(r) || r == ' '
	})
}

// RemoveSpaces collapses runs of whitespace into a single space.
func RemoveSpaces(s string) string {
	return multiSpaceRe.ReplaceAllString(s, " ")
}

// UcWords upper-cases the first letter of every word, like PHP's ucwords.
func UcWords(s string) string {
	prevSpace := true
	return strings.Map(func(r rune) rune {
		if prevSpace {
			prevSpace = unicode.IsSpace(r)
			return unicode.ToUpper(r)
		}
		prevSpace = unicode.IsSpace(r)
		return r
	}, s)
}

// IsNotEmpty reports whether the string contains anything beyond whitespace.
func IsNotEmpty(s string) bool {
	return Trim(s) != ""
}

// StripTags removes HTML tags, leaving text content.
func StripTags(s string) string {
	return htmlTagRe.ReplaceAllString(s, "")
}

// ExistsMoney returns the first price-looking fragment in the string, or "".
// Used by the validator to reject descriptive fields with embedded pricing.
func ExistsMoney(s string) string {
	return moneyRe.FindString(s)
}

// RoundPrice rounds a monetary value to two decimal places.
func RoundPrice(v float64) float64 {
	return math.Round(v*100) / 100
}

// NormalizeFloat rounds a measurement to two decimals, passing nil through.
func NormalizeFloat(v *float64) *float64 {
	if v == nil {
		return nil
	}
	r := RoundPrice(*v)
	return &r
}

// Similarity returns the percentage similarity of two strings using the
// longest-common-substring recursion PHP's similar_text implements.
func Similarity(a, b string) float64 {
	if len(a)+len(b) == 0 {
		return 0
	}
	sim := similarChars(a, b)
	return float64(sim*2) * 100 / float64(len(a)+len(b))
}

func similarChars(a, b string) int {
	posA, posB, maxLen := 0, 0, 0
	for i := 0; i < len(a); i++ {
		for j := 0; j < len(b); j++ {
			k := 0
			for i+k < len(a) && j+k < len(b) && a[i+k] == b[j+k] {
				k++
			}
			if k > maxLen {
				posA, posB, maxLen = i, j, k
			}
		}
	}
	if maxLen == 0 {
		return 0
	}
	sum := maxLen
	sum += similarChars(a[:posA], b[:posB])
	sum += similarChars(a[posA+maxLen:], b[posB+maxLen:])
	return sum
}
