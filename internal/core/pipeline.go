// Package core wires the dedup pipeline together: snapshot the
// inventory, find duplicate groups, pick keepers, build the action
// plan, and (in live mode) execute it. Components only share the
// immutable snapshot; the external store is the one mutable resource
// and only the executor touches it.
package core

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/kilupskalvis/eagledup/internal/config"
	"github.com/kilupskalvis/eagledup/internal/eagle"
	"github.com/kilupskalvis/eagledup/internal/exec"
	"github.com/kilupskalvis/eagledup/internal/logging"
	"github.com/kilupskalvis/eagledup/internal/match"
	"github.com/kilupskalvis/eagledup/internal/models"
	"github.com/kilupskalvis/eagledup/internal/plan"
	"github.com/kilupskalvis/eagledup/internal/report"
	"github.com/kilupskalvis/eagledup/internal/score"
	"github.com/kilupskalvis/eagledup/internal/store"
)

// Deps bundles the injected collaborators for one run.
type Deps struct {
	Config *config.Config
	Store  *store.Store
	Client eagle.ClientInterface
}

// Options are per-invocation overrides.
type Options struct {
	Mode      models.RunMode
	Threshold float64 // overrides match.fuzzy_threshold when > 0
	Limit     int     // caps items scanned when > 0
}

// Output is everything a command needs to render and persist a run.
type Output struct {
	Plan   *models.ActionPlan
	Result *models.ExecutionResult // nil for dry-run
	Report *models.Report
}

// Run executes the full pipeline. An interrupted scan leaves a
// resumable checkpoint behind; rerunning against an unchanged
// inventory picks up where it stopped and produces the same groups an
// uninterrupted run would have.
func Run(ctx context.Context, deps Deps, opts Options) (*Output, error) {
	matchCfg := deps.Config.MatchConfig()
	if opts.Threshold > 0 {
		matchCfg.FuzzyThreshold = opts.Threshold
		if matchCfg.GroupFloor > opts.Threshold {
			matchCfg.GroupFloor = opts.Threshold
		}
	}

	runID := uuid.NewString()
	startedAt := time.Now().UTC()

	items, err := deps.Client.FetchAllItems(ctx)
	if err != nil {
		return nil, fmt.Errorf("fetch inventory: %w", err)
	}
	if opts.Limit > 0 && len(items) > opts.Limit {
		items = items[:opts.Limit] // snapshot is id-sorted, cap stays deterministic
	}

	snapshotHash := SnapshotHash(items, matchCfg)

	checkpoint, err := deps.Store.LoadCheckpoint(snapshotHash, matchCfg.ChunkSize)
	if err != nil {
		logging.Log.Warnf("ignoring unreadable checkpoint: %v", err)
		checkpoint = nil
	}
	if checkpoint != nil {
		logging.Log.Info("resuming scan from checkpoint")
	}

	engine := match.NewEngine(matchCfg).WithCheckpoint(checkpoint, func(stage string, chunk int, edges []match.Edge) {
		if err := deps.Store.SaveCheckpointChunk(snapshotHash, stage, matchCfg.ChunkSize, chunk, edges); err != nil {
			logging.Log.Warnf("persist checkpoint chunk: %v", err)
		}
	})

	groups, err := engine.Run(ctx, items)
	if err != nil {
		// Progress is already persisted chunk by chunk; record the
		// interruption and leave the checkpoint for the next run.
		_ = deps.Store.SaveRun(&store.Run{
			ID:           runID,
			Mode:         opts.Mode,
			Status:       store.RunCancelled,
			StartedAt:    startedAt,
			FinishedAt:   time.Now().UTC(),
			ItemsScanned: len(items),
		})
		return nil, fmt.Errorf("scan interrupted: %w", err)
	}

	if err := deps.Store.ClearCheckpoints(snapshotHash); err != nil {
		logging.Log.Warnf("clear checkpoint: %v", err)
	}

	itemsByID := models.ItemIndex(items)
	scored, err := score.ScoreGroups(groups, itemsByID, deps.Config.Priority())
	if err != nil {
		return nil, fmt.Errorf("score groups: %w", err)
	}

	p := plan.Build(scored, itemsByID, opts.Mode, runID, startedAt, len(items))

	var result *models.ExecutionResult
	if opts.Mode == models.ModeLive {
		result = exec.Execute(ctx, p, deps.Client, deps.Config.Workers)
	}

	r := report.Build(p, result, itemsByID)

	if err := recordRun(deps.Store, p, result, r); err != nil {
		logging.Log.Warnf("record run: %v", err)
	}

	return &Output{Plan: p, Result: result, Report: r}, nil
}

func recordRun(st *store.Store, p *models.ActionPlan, result *models.ExecutionResult, r *models.Report) error {
	run := &store.Run{
		ID:               p.RunID,
		Mode:             p.Mode,
		Status:           store.RunOK,
		StartedAt:        p.StartedAt,
		FinishedAt:       time.Now().UTC(),
		ItemsScanned:     p.ItemsScanned,
		GroupsFound:      len(p.Groups),
		ItemsPlanned:     p.RemovableItems(),
		BytesRecoverable: p.RecoverableBytes(),
	}

	if result != nil {
		run.ItemsTrashed = result.ItemsTrashed()
		run.BytesTrashed = result.BytesTrashed()
		switch {
		case result.Fatal:
			run.Status = store.RunFatal
		case result.PartialGroups() > 0:
			run.Status = store.RunPartial
		}
		for _, f := range r.Failures {
			if err := st.RecordFailure(p.RunID, f); err != nil {
				return err
			}
		}
	}

	return st.SaveRun(run)
}

// SnapshotHash fingerprints the item snapshot together with the match
// configuration. A checkpoint is only resumable when both are
// unchanged: different items or thresholds would shift chunk contents.
func SnapshotHash(items []*models.LibraryItem, cfg match.Config) string {
	h := sha256.New()
	fmt.Fprintf(h, "cfg|%v|%v|%.4f|%.4f|%.4f|%.4f|%d\n",
		cfg.EnableFuzzy, cfg.EnableNgram,
		cfg.FuzzyThreshold, cfg.GroupFloor,
		cfg.NgramThreshold, cfg.NgramFloor, cfg.NgramSize)
	for _, it := range items {
		fmt.Fprintf(h, "%s|%s|%s\n", it.ID, it.Name, it.Fingerprint)
	}
	return hex.EncodeToString(h.Sum(nil))
}
