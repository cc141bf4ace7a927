package exec

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kilupskalvis/eagledup/internal/eagle"
	"github.com/kilupskalvis/eagledup/internal/models"
)

func planOf(groups ...models.GroupPlan) *models.ActionPlan {
	return &models.ActionPlan{
		RunID:     "run-1",
		Mode:      models.ModeLive,
		StartedAt: time.Now().UTC(),
		Groups:    groups,
	}
}

func groupPlan(keeper string, actions ...models.Action) models.GroupPlan {
	members := []string{keeper}
	var removal []string
	for _, a := range actions {
		if a.Type == models.ActionTrash {
			members = append(members, a.ItemID)
			removal = append(removal, a.ItemID)
		}
	}
	return models.GroupPlan{
		Group: &models.ScoredGroup{
			DuplicateGroup: models.DuplicateGroup{Members: members, MatchType: models.MatchFingerprint, Similarity: 1.0},
			KeeperID:       keeper,
			RemovalOrder:   removal,
		},
		Actions: actions,
	}
}

func trash(id string, size int64) models.Action {
	return models.Action{Type: models.ActionTrash, ItemID: id, Size: size}
}

func merge(id string, tags ...string) models.Action {
	return models.Action{Type: models.ActionMergeTags, ItemID: id, Tags: tags}
}

func TestExecuteHappyPath(t *testing.T) {
	client := eagle.NewMockClient()
	client.AddItem(&models.LibraryItem{ID: "a", Tags: []string{"x"}})
	client.AddItem(&models.LibraryItem{ID: "b"})
	client.AddItem(&models.LibraryItem{ID: "c"})

	p := planOf(groupPlan("a", merge("a", "x", "y"), trash("b", 80), trash("c", 60)))
	result := Execute(context.Background(), p, client, 2)

	assert.False(t, result.Fatal)
	require.Len(t, result.Groups, 1)
	assert.Equal(t, models.GroupComplete, result.Groups[0].Status)
	assert.Equal(t, []string{"b", "c"}, client.Trashed)
	assert.Equal(t, []string{"x", "y"}, client.MergedTags["a"])
	assert.Equal(t, 2, result.ItemsTrashed())
	assert.Equal(t, int64(140), result.BytesTrashed())
	assert.False(t, result.FinishedAt.IsZero())
}

func TestExecuteNotFoundSkipsAndContinues(t *testing.T) {
	client := eagle.NewMockClient()
	client.AddItem(&models.LibraryItem{ID: "a"})
	client.AddItem(&models.LibraryItem{ID: "c"})
	// "b" is gone from the store; its trash action fails with not_found
	// and the rest of the group still runs.

	p := planOf(groupPlan("a", trash("b", 80), trash("c", 60)))
	result := Execute(context.Background(), p, client, 1)

	assert.False(t, result.Fatal)
	require.Len(t, result.Groups, 1)
	assert.Equal(t, models.GroupPartial, result.Groups[0].Status)
	assert.Equal(t, []string{"c"}, client.Trashed)

	failed := result.FailedOutcomes()
	require.Len(t, failed, 1)
	assert.Equal(t, "b", failed[0].Action.ItemID)
	assert.Equal(t, 1, result.PartialGroups())
	assert.Equal(t, 1, result.ItemsTrashed())
}

func TestExecuteMergeFailureStillTrashes(t *testing.T) {
	client := eagle.NewMockClient()
	client.AddItem(&models.LibraryItem{ID: "a"})
	client.AddItem(&models.LibraryItem{ID: "b"})
	client.FailMerge["a"] = &eagle.StoreError{Kind: eagle.KindPermission, Status: 403, Message: "forbidden"}

	p := planOf(groupPlan("a", merge("a", "x"), trash("b", 80)))
	result := Execute(context.Background(), p, client, 1)

	assert.False(t, result.Fatal)
	assert.Equal(t, models.GroupPartial, result.Groups[0].Status)
	assert.Equal(t, []string{"b"}, client.Trashed)
}

func TestExecuteUnavailableAbortsRun(t *testing.T) {
	client := eagle.NewMockClient()
	client.AddItem(&models.LibraryItem{ID: "a"})
	client.AddItem(&models.LibraryItem{ID: "c"})
	client.AddItem(&models.LibraryItem{ID: "d"})
	client.AddItem(&models.LibraryItem{ID: "f"})
	client.FailTrash["b"] = &eagle.StoreError{Kind: eagle.KindUnavailable, Status: 503, Message: "store down"}

	p := planOf(
		groupPlan("a", trash("b", 80), trash("c", 60)),
		groupPlan("d", trash("f", 40)),
	)
	result := Execute(context.Background(), p, client, 1)

	assert.True(t, result.Fatal)
	assert.Contains(t, result.FatalErr, "store down")

	// The failing group stops where it failed; the group queued behind
	// it never starts.
	assert.Equal(t, models.GroupPartial, result.Groups[0].Status)
	assert.Equal(t, models.GroupSkipped, result.Groups[1].Status)
	assert.Empty(t, result.Groups[1].Outcomes)
	assert.NotContains(t, client.Trashed, "c")
	assert.NotContains(t, client.Trashed, "f")
}

func TestExecuteCancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	client := eagle.NewMockClient()
	p := planOf(groupPlan("a", trash("b", 80)))
	result := Execute(ctx, p, client, 1)

	require.Len(t, result.Groups, 1)
	assert.Equal(t, models.GroupSkipped, result.Groups[0].Status)
	assert.Empty(t, client.Trashed)
}

func TestExecuteEmptyPlan(t *testing.T) {
	result := Execute(context.Background(), planOf(), eagle.NewMockClient(), 4)
	assert.False(t, result.Fatal)
	assert.Empty(t, result.Groups)
}
