// Package exec applies an action plan against the library store.
// Removal is always move-to-trash; nothing here deletes permanently.
package exec

import (
	"context"
	"sync"
	"time"

	"golang.org/x/sync/semaphore"

	"github.com/kilupskalvis/eagledup/internal/eagle"
	"github.com/kilupskalvis/eagledup/internal/logging"
	"github.com/kilupskalvis/eagledup/internal/models"
)

// Execute applies the plan's groups with bounded concurrency. Actions
// within a group run sequentially: tag merge first, then trash in
// removal order. Per-item failures are recorded and the run continues;
// a store outage cancels the remaining groups and marks the result
// fatal, since retrying against a dead store is pointless.
func Execute(ctx context.Context, p *models.ActionPlan, client eagle.ClientInterface, workers int) *models.ExecutionResult {
	if workers <= 0 {
		workers = 1
	}

	result := &models.ExecutionResult{
		RunID:  p.RunID,
		Groups: make([]models.GroupResult, len(p.Groups)),
	}

	runCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	sem := semaphore.NewWeighted(int64(workers))
	var (
		wg        sync.WaitGroup
		fatalOnce sync.Once
	)

	markFatal := func(err error) {
		fatalOnce.Do(func() {
			result.Fatal = true
			result.FatalErr = err.Error()
			cancel()
		})
	}

	for i := range p.Groups {
		if err := sem.Acquire(runCtx, 1); err != nil {
			// Run aborted; remaining groups never start.
			result.Groups[i] = models.GroupResult{
				KeeperID: p.Groups[i].Group.KeeperID,
				Status:   models.GroupSkipped,
			}
			continue
		}

		wg.Add(1)
		go func(i int, gp models.GroupPlan) {
			defer wg.Done()
			defer sem.Release(1)
			result.Groups[i] = executeGroup(runCtx, gp, client, markFatal)
		}(i, p.Groups[i])
	}

	wg.Wait()
	result.FinishedAt = time.Now().UTC()
	return result
}

func executeGroup(ctx context.Context, gp models.GroupPlan, client eagle.ClientInterface, markFatal func(error)) models.GroupResult {
	gr := models.GroupResult{
		KeeperID: gp.Group.KeeperID,
		Status:   models.GroupComplete,
	}

	for _, action := range gp.Actions {
		if ctx.Err() != nil {
			gr.Status = models.GroupPartial
			if len(gr.Outcomes) == 0 {
				gr.Status = models.GroupSkipped
			}
			return gr
		}

		err := apply(ctx, client, action)
		outcome := models.ActionOutcome{Action: action}
		if err != nil {
			outcome.Err = err.Error()
			gr.Status = models.GroupPartial
			logging.Log.WithFields(map[string]interface{}{
				"item":   action.ItemID,
				"action": string(action.Type),
			}).Warnf("action failed: %v", err)

			if eagle.IsUnavailable(err) {
				gr.Outcomes = append(gr.Outcomes, outcome)
				markFatal(err)
				return gr
			}
			// not_found / permission: skip and keep going.
		}
		gr.Outcomes = append(gr.Outcomes, outcome)
	}

	return gr
}

func apply(ctx context.Context, client eagle.ClientInterface, action models.Action) error {
	switch action.Type {
	case models.ActionMergeTags:
		return client.MergeTags(ctx, action.ItemID, action.Tags)
	case models.ActionTrash:
		return client.MoveToTrash(ctx, action.ItemID)
	}
	return nil
}
