package match

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kilupskalvis/eagledup/internal/models"
)

func testItems() []*models.LibraryItem {
	return []*models.LibraryItem{
		{ID: "a", Name: "IMG_0001", Fingerprint: "f1"},
		{ID: "b", Name: "totally different", Fingerprint: "f1"},
		{ID: "c", Name: "Track One"},
		{ID: "d", Name: "Track 0ne"},
		{ID: "e", Name: "beach sunset 2021"},
		{ID: "f", Name: "beach sunset final 2021"},
		{ID: "g", Name: "???"},
		{ID: "h", Name: "unrelated quarterly report"},
	}
}

func TestEngineStrategyLayering(t *testing.T) {
	groups, err := FindDuplicateGroups(context.Background(), testItems(), DefaultConfig())
	require.NoError(t, err)
	require.Len(t, groups, 3)

	// Fingerprint match is authoritative even when names disagree.
	assert.Equal(t, models.MatchFingerprint, groups[0].MatchType)
	assert.Equal(t, []string{"a", "b"}, groups[0].Members)
	assert.Equal(t, 1.0, groups[0].Similarity)

	// Near-identical names fall to the fuzzy strategy.
	assert.Equal(t, models.MatchFuzzy, groups[1].MatchType)
	assert.Equal(t, []string{"c", "d"}, groups[1].Members)
	assert.InDelta(t, 8.0/9.0, groups[1].Similarity, 1e-9)

	// The extra token drops the pair below the fuzzy threshold but the
	// shared trigrams keep it above the n-gram threshold.
	assert.Equal(t, models.MatchNgram, groups[2].MatchType)
	assert.Equal(t, []string{"e", "f"}, groups[2].Members)
	assert.GreaterOrEqual(t, groups[2].Similarity, 0.5)
}

func TestEngineConsumedItemsSkipWeakerStrategies(t *testing.T) {
	items := []*models.LibraryItem{
		{ID: "a", Name: "Track One", Fingerprint: "f1"},
		{ID: "b", Name: "IMG_0002", Fingerprint: "f1"},
		{ID: "c", Name: "Track One"},
	}
	groups, err := FindDuplicateGroups(context.Background(), items, DefaultConfig())
	require.NoError(t, err)

	// "a" is claimed by the fingerprint group, so "c" has no fuzzy
	// partner left despite the identical name.
	require.Len(t, groups, 1)
	assert.Equal(t, models.MatchFingerprint, groups[0].MatchType)
	assert.Equal(t, []string{"a", "b"}, groups[0].Members)
}

func TestEngineSkipsEmptyNormalizedNames(t *testing.T) {
	items := []*models.LibraryItem{
		{ID: "a", Name: "!!!"},
		{ID: "b", Name: "???"},
		{ID: "c", Name: ""},
	}
	groups, err := FindDuplicateGroups(context.Background(), items, DefaultConfig())
	require.NoError(t, err)
	assert.Empty(t, groups)
}

func TestEngineDisabledStrategies(t *testing.T) {
	cfg := DefaultConfig()
	cfg.EnableFuzzy = false
	cfg.EnableNgram = false
	groups, err := FindDuplicateGroups(context.Background(), testItems(), cfg)
	require.NoError(t, err)
	require.Len(t, groups, 1)
	assert.Equal(t, models.MatchFingerprint, groups[0].MatchType)
}

func TestEngineSingletonFingerprintsIgnored(t *testing.T) {
	items := []*models.LibraryItem{
		{ID: "a", Name: "alpha", Fingerprint: "f1"},
		{ID: "b", Name: "beta", Fingerprint: "f2"},
	}
	groups, err := FindDuplicateGroups(context.Background(), items, DefaultConfig())
	require.NoError(t, err)
	assert.Empty(t, groups)
}

func manyItems(n int) []*models.LibraryItem {
	words := []string{"summer", "beach", "sunset", "remix", "live", "track", "vibes", "night"}
	items := make([]*models.LibraryItem, 0, n)
	for i := 0; i < n; i++ {
		name := fmt.Sprintf("%s %s %d", words[i%len(words)], words[(i/2)%len(words)], i%5)
		items = append(items, &models.LibraryItem{ID: fmt.Sprintf("item-%03d", i), Name: name})
	}
	return items
}

func TestEngineDeterministicAcrossWorkerCounts(t *testing.T) {
	items := manyItems(48)

	var baseline []*models.DuplicateGroup
	for _, workers := range []int{1, 2, 8} {
		cfg := DefaultConfig()
		cfg.Workers = workers
		cfg.ChunkSize = 5
		groups, err := FindDuplicateGroups(context.Background(), items, cfg)
		require.NoError(t, err)
		if baseline == nil {
			baseline = groups
			assert.NotEmpty(t, groups)
			continue
		}
		assert.Equal(t, baseline, groups, "workers=%d changed the result", workers)
	}
}

func TestEngineCheckpointResume(t *testing.T) {
	items := manyItems(40)
	cfg := DefaultConfig()
	cfg.Workers = 1
	cfg.ChunkSize = 4

	// Record every chunk from a full run, keeping per-chunk edges.
	type chunkEdges struct {
		chunk int
		edges []Edge
	}
	recorded := make(map[string][]chunkEdges)
	record := func(stage string, chunk int, edges []Edge) {
		recorded[stage] = append(recorded[stage], chunkEdges{chunk: chunk, edges: edges})
	}
	want, err := NewEngine(cfg).WithCheckpoint(nil, record).Run(context.Background(), items)
	require.NoError(t, err)
	require.NotEmpty(t, want)

	// Resume from a checkpoint holding only the first half of the fuzzy
	// stage's chunks, as if the previous run was interrupted mid-stage.
	fuzzy := recorded["fuzzy"]
	cut := len(fuzzy) / 2
	require.Greater(t, cut, 0)
	st := &StageCheckpoint{ChunkSize: cfg.ChunkSize}
	for _, ce := range fuzzy[:cut] {
		st.Done = append(st.Done, ce.chunk)
		st.Edges = append(st.Edges, ce.edges...)
	}
	partial := NewCheckpoint()
	partial.Stages["fuzzy"] = st

	got, err := NewEngine(cfg).WithCheckpoint(partial, nil).Run(context.Background(), items)
	require.NoError(t, err)
	assert.Equal(t, want, got)
}

func TestEngineIgnoresCheckpointWithDifferentChunkSize(t *testing.T) {
	items := manyItems(30)
	cfg := DefaultConfig()
	cfg.ChunkSize = 4

	want, err := FindDuplicateGroups(context.Background(), items, cfg)
	require.NoError(t, err)

	stale := NewCheckpoint()
	stale.Stages["fuzzy"] = &StageCheckpoint{
		ChunkSize: 99,
		Done:      []int{0, 1, 2, 3, 4, 5, 6, 7},
		Edges:     []Edge{{A: "item-000", B: "item-029", Sim: 0.99}},
	}
	got, err := NewEngine(cfg).WithCheckpoint(stale, nil).Run(context.Background(), items)
	require.NoError(t, err)
	assert.Equal(t, want, got)
}

func TestEngineCancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := FindDuplicateGroups(ctx, manyItems(30), DefaultConfig())
	assert.ErrorIs(t, err, context.Canceled)
}
