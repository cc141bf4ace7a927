// Package score selects the keeper of a duplicate group and orders the
// rest for removal.
package score

import (
	"fmt"
	"sort"

	"github.com/kilupskalvis/eagledup/internal/models"
)

// Criterion is one quality-comparison rule. Each criterion only breaks
// ties left by the ones before it; the id fallback guarantees a total
// order so no comparison is ever undefined.
type Criterion string

const (
	// CriterionCompleteness prefers items with more quality signals
	// present (size, duration, bitrate, resolution).
	CriterionCompleteness Criterion = "completeness"
	// CriterionQuality prefers larger size, then higher bitrate, then
	// higher resolution.
	CriterionQuality Criterion = "quality"
	// CriterionTags prefers the larger tag set, a proxy for curation.
	CriterionTags Criterion = "tags"
	// CriterionRecency prefers the more recently modified item.
	CriterionRecency Criterion = "recency"
)

// DefaultPriority is the default criterion order. The business priority
// is genuinely ambiguous, which is why it is configurable at all.
func DefaultPriority() []Criterion {
	return []Criterion{CriterionCompleteness, CriterionQuality, CriterionTags, CriterionRecency}
}

// ParsePriority validates a configured criterion order.
func ParsePriority(names []string) ([]Criterion, error) {
	if len(names) == 0 {
		return DefaultPriority(), nil
	}
	seen := make(map[Criterion]bool, len(names))
	out := make([]Criterion, 0, len(names))
	for _, n := range names {
		c := Criterion(n)
		switch c {
		case CriterionCompleteness, CriterionQuality, CriterionTags, CriterionRecency:
		default:
			return nil, fmt.Errorf("unknown scoring criterion %q", n)
		}
		if seen[c] {
			return nil, fmt.Errorf("duplicate scoring criterion %q", n)
		}
		seen[c] = true
		out = append(out, c)
	}
	return out, nil
}

// compare returns a positive value when a outranks b, negative when b
// outranks a, under the given criterion. Zero means this criterion
// cannot separate them.
func compare(c Criterion, a, b *models.LibraryItem) int {
	switch c {
	case CriterionCompleteness:
		return a.SignalCount() - b.SignalCount()
	case CriterionQuality:
		if a.Size != b.Size {
			return sign64(a.Size - b.Size)
		}
		if a.Bitrate != b.Bitrate {
			return sign64(a.Bitrate - b.Bitrate)
		}
		return sign64(a.Resolution() - b.Resolution())
	case CriterionTags:
		return len(a.Tags) - len(b.Tags)
	case CriterionRecency:
		if a.ModifiedAt.After(b.ModifiedAt) {
			return 1
		}
		if b.ModifiedAt.After(a.ModifiedAt) {
			return -1
		}
	}
	return 0
}

func sign64(v int64) int {
	switch {
	case v > 0:
		return 1
	case v < 0:
		return -1
	}
	return 0
}

// Better reports whether a outranks b under the priority order. The
// lexicographically smaller id wins when every criterion ties, so the
// result is deterministic for any pair.
func Better(priority []Criterion, a, b *models.LibraryItem) bool {
	for _, c := range priority {
		if d := compare(c, a, b); d != 0 {
			return d > 0
		}
	}
	return a.ID < b.ID
}

// ScoreGroup picks the group's keeper and orders the remaining members
// best-quality-first, so an interrupted removal has only taken the
// worst items so far.
func ScoreGroup(group *models.DuplicateGroup, items map[string]*models.LibraryItem, priority []Criterion) (*models.ScoredGroup, error) {
	if len(priority) == 0 {
		priority = DefaultPriority()
	}

	members := make([]*models.LibraryItem, 0, len(group.Members))
	for _, id := range group.Members {
		it, ok := items[id]
		if !ok {
			return nil, fmt.Errorf("group member %s missing from snapshot", id)
		}
		members = append(members, it)
	}

	sort.SliceStable(members, func(i, j int) bool {
		return Better(priority, members[i], members[j])
	})

	removal := make([]string, 0, len(members)-1)
	for _, it := range members[1:] {
		removal = append(removal, it.ID)
	}

	return &models.ScoredGroup{
		DuplicateGroup: *group,
		KeeperID:       members[0].ID,
		RemovalOrder:   removal,
	}, nil
}

// ScoreGroups scores every group. Group order is preserved.
func ScoreGroups(groups []*models.DuplicateGroup, items map[string]*models.LibraryItem, priority []Criterion) ([]*models.ScoredGroup, error) {
	scored := make([]*models.ScoredGroup, 0, len(groups))
	for _, g := range groups {
		sg, err := ScoreGroup(g, items, priority)
		if err != nil {
			return nil, err
		}
		scored = append(scored, sg)
	}
	return scored, nil
}
