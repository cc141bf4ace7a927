package models

import "time"

// RunMode selects between report-only and mutating execution.
type RunMode string

const (
	ModeDryRun RunMode = "dry-run"
	ModeLive   RunMode = "live"
)

// ActionType is the kind of store mutation an action performs.
type ActionType string

const (
	// ActionMergeTags applies the union of a group's tags to the keeper.
	// Always ordered before the group's trash actions.
	ActionMergeTags ActionType = "merge_tags"
	// ActionTrash moves a non-keeper to the store's trash. Reversible;
	// the planner never emits a permanent delete.
	ActionTrash ActionType = "trash"
)

// Action is one planned store mutation.
type Action struct {
	Type   ActionType `json:"type"`
	ItemID string     `json:"item_id"`
	Tags   []string   `json:"tags,omitempty"` // merge_tags only, sorted
	Size   int64      `json:"size,omitempty"` // trash only, recoverable bytes
}

// GroupPlan pairs a scored group with its concrete actions.
type GroupPlan struct {
	Group   *ScoredGroup `json:"group"`
	Actions []Action     `json:"actions"`
}

// ActionPlan is the full decision set for one run. It is built once per
// invocation and consumed immediately; reports are the only durable
// artifact. Dry-run and live plans are structurally identical apart
// from Mode.
type ActionPlan struct {
	RunID        string      `json:"run_id"`
	Mode         RunMode     `json:"mode"`
	StartedAt    time.Time   `json:"started_at"`
	ItemsScanned int         `json:"items_scanned"`
	Groups       []GroupPlan `json:"groups"`
}

// RemovableItems counts the items the plan would trash.
func (p *ActionPlan) RemovableItems() int {
	n := 0
	for _, g := range p.Groups {
		n += len(g.Group.RemovalOrder)
	}
	return n
}

// RecoverableBytes sums the file sizes of all items planned for trash.
func (p *ActionPlan) RecoverableBytes() int64 {
	var total int64
	for _, g := range p.Groups {
		for _, a := range g.Actions {
			if a.Type == ActionTrash {
				total += a.Size
			}
		}
	}
	return total
}

// GroupsByMatchType counts planned groups per strategy.
func (p *ActionPlan) GroupsByMatchType() map[MatchType]int {
	counts := make(map[MatchType]int)
	for _, g := range p.Groups {
		counts[g.Group.MatchType]++
	}
	return counts
}
