package models

// MatchType identifies the strategy that formed a duplicate group.
type MatchType string

const (
	MatchFingerprint MatchType = "fingerprint"
	MatchFuzzy       MatchType = "fuzzy"
	MatchNgram       MatchType = "ngram"
)

// Strength orders match types from strongest signal to weakest.
// Higher is stronger.
func (m MatchType) Strength() int {
	switch m {
	case MatchFingerprint:
		return 3
	case MatchFuzzy:
		return 2
	case MatchNgram:
		return 1
	}
	return 0
}

// DuplicateGroup is a set of two or more item ids believed to be the
// same underlying asset. Groups are rebuilt from scratch on every scan
// and carry no identity across runs.
//
// Every pair of members has been directly compared and found similar
// above the group's effective threshold; membership is never inferred
// by chaining comparisons through an intermediate item.
type DuplicateGroup struct {
	Members    []string  `json:"members"` // sorted item ids, len >= 2
	MatchType  MatchType `json:"match_type"`
	Similarity float64   `json:"similarity"` // minimum pairwise similarity, 1.0 for fingerprint groups
}

// ScoredGroup is a DuplicateGroup with the keeper decision applied.
// RemovalOrder holds the non-keeper members best-quality-first, so an
// interrupted execution has removed only the worst items so far.
type ScoredGroup struct {
	DuplicateGroup
	KeeperID     string   `json:"keeper_id"`
	RemovalOrder []string `json:"removal_order"`
}
