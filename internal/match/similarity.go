package match

import (
	"github.com/agnivade/levenshtein"
)

// TokenSortRatio computes similarity in [0,1] between two normalized
// names by sorting their tokens and taking the normalized Levenshtein
// distance of the results. 1.0 means identical token multisets.
func TokenSortRatio(a, b string) float64 {
	as, bs := sortTokens(a), sortTokens(b)
	if as == "" || bs == "" {
		return 0
	}
	if as == bs {
		return 1
	}
	dist := levenshtein.ComputeDistance(as, bs)
	longest := len([]rune(as))
	if l := len([]rune(bs)); l > longest {
		longest = l
	}
	return 1 - float64(dist)/float64(longest)
}

// lengthBound is a cheap upper bound on TokenSortRatio: the distance is
// at least the rune-length difference, so pairs whose lengths diverge
// too far cannot reach the threshold and are skipped without computing
// the full distance.
func lengthBound(a, b string) float64 {
	la, lb := len([]rune(a)), len([]rune(b))
	if la == 0 || lb == 0 {
		return 0
	}
	longest, diff := la, la-lb
	if lb > la {
		longest, diff = lb, lb-la
	}
	return 1 - float64(diff)/float64(longest)
}

// NgramJaccard computes Jaccard similarity of the character n-gram sets
// of two normalized names. Lenient by design: it catches partial-title
// overlap that edit distance misses, at the cost of more noise.
func NgramJaccard(a, b string, n int) float64 {
	if n < 1 {
		n = 3
	}
	sa, sb := ngramSet(a, n), ngramSet(b, n)
	if len(sa) == 0 || len(sb) == 0 {
		return 0
	}
	inter := 0
	for g := range sa {
		if _, ok := sb[g]; ok {
			inter++
		}
	}
	union := len(sa) + len(sb) - inter
	return float64(inter) / float64(union)
}

func ngramSet(s string, n int) map[string]struct{} {
	runes := []rune(s)
	if len(runes) < n {
		if len(runes) == 0 {
			return nil
		}
		// Short names contribute their whole text as one gram.
		return map[string]struct{}{string(runes): {}}
	}
	set := make(map[string]struct{}, len(runes)-n+1)
	for i := 0; i+n <= len(runes); i++ {
		set[string(runes[i:i+n])] = struct{}{}
	}
	return set
}
