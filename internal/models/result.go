package models

import "time"

// GroupStatus summarizes how a group's actions went.
type GroupStatus string

const (
	GroupComplete GroupStatus = "complete"
	GroupPartial  GroupStatus = "partial"
	GroupSkipped  GroupStatus = "skipped" // run aborted before this group ran
)

// ActionOutcome records one executed (or failed) action.
type ActionOutcome struct {
	Action Action `json:"action"`
	Err    string `json:"error,omitempty"`
}

// Failed reports whether the action errored.
func (o *ActionOutcome) Failed() bool { return o.Err != "" }

// GroupResult is the execution record for one group.
type GroupResult struct {
	KeeperID string          `json:"keeper_id"`
	Status   GroupStatus     `json:"status"`
	Outcomes []ActionOutcome `json:"outcomes"`
}

// ExecutionResult is the record of a live run. Per-item failures are
// collected rather than aborting; only a systemic store outage marks
// the result fatal and skips the remaining groups.
type ExecutionResult struct {
	RunID      string        `json:"run_id"`
	FinishedAt time.Time     `json:"finished_at"`
	Groups     []GroupResult `json:"groups"`
	Fatal      bool          `json:"fatal"`
	FatalErr   string        `json:"fatal_error,omitempty"`
}

// ItemsTrashed counts trash actions that succeeded.
func (r *ExecutionResult) ItemsTrashed() int {
	n := 0
	for _, g := range r.Groups {
		for _, o := range g.Outcomes {
			if o.Action.Type == ActionTrash && !o.Failed() {
				n++
			}
		}
	}
	return n
}

// BytesTrashed sums sizes of successfully trashed items.
func (r *ExecutionResult) BytesTrashed() int64 {
	var total int64
	for _, g := range r.Groups {
		for _, o := range g.Outcomes {
			if o.Action.Type == ActionTrash && !o.Failed() {
				total += o.Action.Size
			}
		}
	}
	return total
}

// FailedOutcomes flattens every failed action across all groups.
func (r *ExecutionResult) FailedOutcomes() []ActionOutcome {
	var failed []ActionOutcome
	for _, g := range r.Groups {
		for _, o := range g.Outcomes {
			if o.Failed() {
				failed = append(failed, o)
			}
		}
	}
	return failed
}

// PartialGroups counts groups with at least one failed action.
func (r *ExecutionResult) PartialGroups() int {
	n := 0
	for _, g := range r.Groups {
		if g.Status == GroupPartial {
			n++
		}
	}
	return n
}
