// Package match implements the duplicate detection strategies:
// fingerprint equality, fuzzy name similarity, and n-gram overlap.
// Strategies run strongest-first and an item claimed by a stronger
// strategy is invisible to weaker ones.
package match

import (
	"context"
	"sort"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/kilupskalvis/eagledup/internal/models"
)

// Config controls strategy selection and thresholds.
type Config struct {
	EnableFingerprint bool
	EnableFuzzy       bool
	EnableNgram       bool

	// FuzzyThreshold is the minimum direct pairwise token-sort ratio
	// for a fuzzy edge.
	FuzzyThreshold float64
	// GroupFloor is the minimum all-pairs similarity a fuzzy group must
	// keep. Components below it are split (see splitComponent).
	GroupFloor float64
	// NgramThreshold and NgramFloor are the lenient equivalents for the
	// n-gram strategy, which runs last because it is the noisiest.
	NgramThreshold float64
	NgramFloor     float64
	NgramSize      int

	// Workers bounds the comparison shards run in parallel. <=0 means 1.
	Workers int
	// ChunkSize is the number of comparison rows per resumable chunk.
	ChunkSize int
}

// DefaultConfig returns the default matching configuration.
func DefaultConfig() Config {
	return Config{
		EnableFingerprint: true,
		EnableFuzzy:       true,
		EnableNgram:       true,
		FuzzyThreshold:    0.75,
		GroupFloor:        0.65,
		NgramThreshold:    0.50,
		NgramFloor:        0.40,
		NgramSize:         3,
		Workers:           4,
		ChunkSize:         256,
	}
}

// StageCheckpoint records resumable progress for one pairwise stage.
type StageCheckpoint struct {
	ChunkSize int    `json:"chunk_size"`
	Done      []int  `json:"done"` // completed chunk indices
	Edges     []Edge `json:"edges"`
}

// Checkpoint holds per-stage progress for an interrupted scan. It is
// only valid against the exact item snapshot and config it was taken
// from; the caller guards that with a snapshot hash.
type Checkpoint struct {
	Stages map[string]*StageCheckpoint `json:"stages"`
}

// NewCheckpoint returns an empty checkpoint.
func NewCheckpoint() *Checkpoint {
	return &Checkpoint{Stages: make(map[string]*StageCheckpoint)}
}

// ChunkFunc is invoked after each completed comparison chunk so the
// caller can persist progress. Calls are serialized.
type ChunkFunc func(stage string, chunk int, edges []Edge)

// Engine runs the matching strategies over an item snapshot.
type Engine struct {
	cfg        Config
	checkpoint *Checkpoint
	onChunk    ChunkFunc
}

// NewEngine creates an Engine with the given config.
func NewEngine(cfg Config) *Engine {
	if cfg.Workers <= 0 {
		cfg.Workers = 1
	}
	if cfg.ChunkSize <= 0 {
		cfg.ChunkSize = 256
	}
	return &Engine{cfg: cfg}
}

// WithCheckpoint resumes from cp and reports chunk completions to fn.
// Either argument may be nil.
func (e *Engine) WithCheckpoint(cp *Checkpoint, fn ChunkFunc) *Engine {
	e.checkpoint = cp
	e.onChunk = fn
	return e
}

// FindDuplicateGroups runs all enabled strategies over the snapshot and
// returns the merged groups. Output is deterministic for a given
// snapshot and config regardless of worker count.
func FindDuplicateGroups(ctx context.Context, items []*models.LibraryItem, cfg Config) ([]*models.DuplicateGroup, error) {
	return NewEngine(cfg).Run(ctx, items)
}

// Run executes the strategies in strength order.
func (e *Engine) Run(ctx context.Context, items []*models.LibraryItem) ([]*models.DuplicateGroup, error) {
	// Stable processing order regardless of how the snapshot arrived.
	sorted := append([]*models.LibraryItem(nil), items...)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].ID < sorted[j].ID })

	var groups []*models.DuplicateGroup
	consumed := make(map[string]bool)

	if e.cfg.EnableFingerprint {
		for _, g := range fingerprintGroups(sorted) {
			groups = append(groups, g)
			for _, id := range g.Members {
				consumed[id] = true
			}
		}
	}

	if e.cfg.EnableFuzzy {
		entries := eligibleEntries(sorted, consumed)
		edges, err := e.pairwiseStage(ctx, "fuzzy", entries, e.cfg.FuzzyThreshold, fuzzySim)
		if err != nil {
			return nil, err
		}
		sim := entrySim(entries, fuzzySim)
		for _, comp := range components(edges) {
			for _, rg := range splitComponent(comp, sim, e.cfg.GroupFloor, e.cfg.FuzzyThreshold) {
				groups = append(groups, &models.DuplicateGroup{
					Members:    rg.members,
					MatchType:  models.MatchFuzzy,
					Similarity: rg.minSim,
				})
				for _, id := range rg.members {
					consumed[id] = true
				}
			}
		}
	}

	if e.cfg.EnableNgram {
		entries := eligibleEntries(sorted, consumed)
		ngramSim := func(a, b entry) float64 { return NgramJaccard(a.norm, b.norm, e.cfg.NgramSize) }
		edges, err := e.pairwiseStage(ctx, "ngram", entries, e.cfg.NgramThreshold, ngramSim)
		if err != nil {
			return nil, err
		}
		sim := entrySim(entries, ngramSim)
		for _, comp := range components(edges) {
			for _, rg := range splitComponent(comp, sim, e.cfg.NgramFloor, e.cfg.NgramThreshold) {
				groups = append(groups, &models.DuplicateGroup{
					Members:    rg.members,
					MatchType:  models.MatchNgram,
					Similarity: rg.minSim,
				})
				for _, id := range rg.members {
					consumed[id] = true
				}
			}
		}
	}

	sort.Slice(groups, func(i, j int) bool {
		if groups[i].MatchType != groups[j].MatchType {
			return groups[i].MatchType.Strength() > groups[j].MatchType.Strength()
		}
		return groups[i].Members[0] < groups[j].Members[0]
	})
	return groups, nil
}

// fingerprintGroups partitions items by exact non-empty fingerprint.
// Authoritative: similarity is always 1.0.
func fingerprintGroups(sorted []*models.LibraryItem) []*models.DuplicateGroup {
	byFP := make(map[string][]string)
	var fps []string
	for _, it := range sorted {
		if !it.HasFingerprint() {
			continue
		}
		if _, ok := byFP[it.Fingerprint]; !ok {
			fps = append(fps, it.Fingerprint)
		}
		byFP[it.Fingerprint] = append(byFP[it.Fingerprint], it.ID)
	}
	sort.Strings(fps)

	var groups []*models.DuplicateGroup
	for _, fp := range fps {
		ids := byFP[fp]
		if len(ids) < 2 {
			continue
		}
		groups = append(groups, &models.DuplicateGroup{
			Members:    ids, // already in id order
			MatchType:  models.MatchFingerprint,
			Similarity: 1.0,
		})
	}
	return groups
}

// entry is one item eligible for name comparison.
type entry struct {
	id   string
	norm string
}

func eligibleEntries(sorted []*models.LibraryItem, consumed map[string]bool) []entry {
	var entries []entry
	for _, it := range sorted {
		if consumed[it.ID] {
			continue
		}
		norm := NormalizeName(it.Name)
		if norm == "" {
			continue // nothing to compare
		}
		entries = append(entries, entry{id: it.ID, norm: norm})
	}
	return entries
}

func fuzzySim(a, b entry) float64 {
	if lengthBound(a.norm, b.norm) < 0.5 {
		// Cannot reach any sane threshold; skip the full distance.
		return 0
	}
	return TokenSortRatio(a.norm, b.norm)
}

// entrySim adapts an entry similarity function to id-based lookup for
// group validation.
func entrySim(entries []entry, fn func(a, b entry) float64) func(a, b string) float64 {
	byID := make(map[string]entry, len(entries))
	for _, en := range entries {
		byID[en.id] = en
	}
	return func(a, b string) float64 {
		ea, ok := byID[a]
		if !ok {
			return 0
		}
		eb, ok := byID[b]
		if !ok {
			return 0
		}
		return fn(ea, eb)
	}
}

// pairwiseStage compares every eligible pair once, sharded into row
// chunks that run in parallel and checkpoint independently. The merged
// edge list is sorted before use so resuming from a checkpoint or
// changing the worker count never changes the result.
func (e *Engine) pairwiseStage(ctx context.Context, stage string, entries []entry, threshold float64, sim func(a, b entry) float64) ([]Edge, error) {
	var edges []Edge
	done := make(map[int]bool)

	if e.checkpoint != nil {
		if st := e.checkpoint.Stages[stage]; st != nil && st.ChunkSize == e.cfg.ChunkSize {
			edges = append(edges, st.Edges...)
			for _, c := range st.Done {
				done[c] = true
			}
		}
	}

	chunks := (len(entries) + e.cfg.ChunkSize - 1) / e.cfg.ChunkSize

	var mu sync.Mutex
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(e.cfg.Workers)

	for chunk := 0; chunk < chunks; chunk++ {
		if done[chunk] {
			continue
		}
		chunk := chunk
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			found := e.compareChunk(entries, chunk, threshold, sim)
			mu.Lock()
			edges = append(edges, found...)
			if e.onChunk != nil {
				e.onChunk(stage, chunk, found)
			}
			mu.Unlock()
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}

	sort.Slice(edges, func(i, j int) bool {
		if edges[i].A != edges[j].A {
			return edges[i].A < edges[j].A
		}
		return edges[i].B < edges[j].B
	})
	return edges, nil
}

// compareChunk compares each row in the chunk against all later entries.
func (e *Engine) compareChunk(entries []entry, chunk int, threshold float64, sim func(a, b entry) float64) []Edge {
	start := chunk * e.cfg.ChunkSize
	end := start + e.cfg.ChunkSize
	if end > len(entries) {
		end = len(entries)
	}

	var found []Edge
	for i := start; i < end; i++ {
		for j := i + 1; j < len(entries); j++ {
			if s := sim(entries[i], entries[j]); s >= threshold {
				found = append(found, Edge{A: entries[i].id, B: entries[j].id, Sim: s})
			}
		}
	}
	return found
}
