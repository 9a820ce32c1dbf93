package cache

import (
	"strings"

	"github.com/agnivade/levenshtein"
)

// SimilarityRatio scores two strings on a 0..100 scale derived from
// their Levenshtein distance, case-insensitively. 100 means equal after
// case folding.
func SimilarityRatio(a, b string) int {
	a = strings.ToLower(a)
	b = strings.ToLower(b)
	if a == b {
		return 100
	}

	longest := len([]rune(a))
	if l := len([]rune(b)); l > longest {
		longest = l
	}
	if longest == 0 {
		return 100
	}

	dist := levenshtein.ComputeDistance(a, b)
	return int((1 - float64(dist)/float64(longest)) * 100)
}
