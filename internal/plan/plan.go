// Package plan turns scored groups into a concrete action list. The
// same plan structure is built for dry-run and live modes; only the
// executor's side effects differ.
package plan

import (
	"sort"
	"time"

	"github.com/kilupskalvis/eagledup/internal/models"
)

// Build constructs the action plan for one run. Per group it emits one
// merge_tags action (skipped when the keeper already has every tag)
// followed by one trash action per non-keeper in removal order.
func Build(scored []*models.ScoredGroup, items map[string]*models.LibraryItem, mode models.RunMode, runID string, startedAt time.Time, itemsScanned int) *models.ActionPlan {
	p := &models.ActionPlan{
		RunID:        runID,
		Mode:         mode,
		StartedAt:    startedAt,
		ItemsScanned: itemsScanned,
		Groups:       make([]models.GroupPlan, 0, len(scored)),
	}

	for _, sg := range scored {
		var actions []models.Action

		if merged := mergedTags(sg, items); merged != nil {
			actions = append(actions, models.Action{
				Type:   models.ActionMergeTags,
				ItemID: sg.KeeperID,
				Tags:   merged,
			})
		}

		for _, id := range sg.RemovalOrder {
			var size int64
			if it, ok := items[id]; ok {
				size = it.Size
			}
			actions = append(actions, models.Action{
				Type:   models.ActionTrash,
				ItemID: id,
				Size:   size,
			})
		}

		p.Groups = append(p.Groups, models.GroupPlan{Group: sg, Actions: actions})
	}

	return p
}

// mergedTags returns the sorted union of every member's tags, or nil
// when the keeper already carries all of them.
func mergedTags(sg *models.ScoredGroup, items map[string]*models.LibraryItem) []string {
	union := make(map[string]bool)
	for _, id := range sg.Members {
		if it, ok := items[id]; ok {
			for _, t := range it.Tags {
				union[t] = true
			}
		}
	}
	if len(union) == 0 {
		return nil
	}

	keeperTags := make(map[string]bool)
	if keeper, ok := items[sg.KeeperID]; ok {
		for _, t := range keeper.Tags {
			keeperTags[t] = true
		}
	}

	gained := false
	tags := make([]string, 0, len(union))
	for t := range union {
		tags = append(tags, t)
		if !keeperTags[t] {
			gained = true
		}
	}
	if !gained {
		return nil
	}

	sort.Strings(tags)
	return tags
}
