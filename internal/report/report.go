// Package report renders run summaries. Build and Render are pure
// functions of their inputs: identical plans and results produce
// identical reports.
package report

import (
	"fmt"
	"io"

	"github.com/dustin/go-humanize"
	"github.com/fatih/color"

	"github.com/kilupskalvis/eagledup/internal/models"
)

// Build assembles the report for a run. result is nil for dry-runs.
func Build(p *models.ActionPlan, result *models.ExecutionResult, items map[string]*models.LibraryItem) *models.Report {
	r := &models.Report{
		RunID:            p.RunID,
		Mode:             p.Mode,
		StartedAt:        p.StartedAt,
		ItemsScanned:     p.ItemsScanned,
		GroupsFound:      len(p.Groups),
		GroupsByType:     p.GroupsByMatchType(),
		ItemsPlanned:     p.RemovableItems(),
		BytesRecoverable: p.RecoverableBytes(),
	}

	for i, gp := range p.Groups {
		var bytes int64
		for _, a := range gp.Actions {
			if a.Type == models.ActionTrash {
				bytes += a.Size
			}
		}

		rg := models.ReportGroup{
			MatchType:    gp.Group.MatchType,
			Similarity:   gp.Group.Similarity,
			KeeperID:     gp.Group.KeeperID,
			RemovalOrder: gp.Group.RemovalOrder,
			Bytes:        bytes,
		}
		if it, ok := items[gp.Group.KeeperID]; ok {
			rg.KeeperName = it.Name
		}
		if result != nil && i < len(result.Groups) {
			rg.Status = string(result.Groups[i].Status)
		}
		r.Groups = append(r.Groups, rg)
	}

	if result != nil {
		r.ItemsTrashed = result.ItemsTrashed()
		r.BytesTrashed = result.BytesTrashed()
		r.Fatal = result.Fatal
		r.FatalErr = result.FatalErr
		for _, o := range result.FailedOutcomes() {
			r.Failures = append(r.Failures, models.ReportFailure{
				ItemID: o.Action.ItemID,
				Type:   o.Action.Type,
				Reason: o.Err,
			})
		}
	}

	return r
}

// Render writes the human-readable report.
func Render(w io.Writer, r *models.Report, useColor bool) {
	bold := color.New(color.Bold)
	green := color.New(color.FgGreen)
	yellow := color.New(color.FgYellow)
	red := color.New(color.FgRed)
	cyan := color.New(color.FgCyan)
	if !useColor {
		for _, c := range []*color.Color{bold, green, yellow, red, cyan} {
			c.DisableColor()
		}
	}

	bold.Fprintf(w, "Deduplication %s %s\n", r.Mode, r.RunID)
	fmt.Fprintf(w, "Started: %s\n\n", r.StartedAt.Format("Mon Jan 2 15:04:05 2006"))

	fmt.Fprintf(w, "Items scanned:     %d\n", r.ItemsScanned)
	fmt.Fprintf(w, "Duplicate groups:  %d", r.GroupsFound)
	if r.GroupsFound > 0 {
		fmt.Fprintf(w, " (fingerprint %d, fuzzy %d, ngram %d)",
			r.GroupsByType[models.MatchFingerprint],
			r.GroupsByType[models.MatchFuzzy],
			r.GroupsByType[models.MatchNgram])
	}
	fmt.Fprintln(w)
	fmt.Fprintf(w, "Removable items:   %d\n", r.ItemsPlanned)
	fmt.Fprintf(w, "Space recoverable: %s\n", humanize.IBytes(uint64(r.BytesRecoverable)))

	if r.Mode == models.ModeLive {
		fmt.Fprintf(w, "Items trashed:     %d\n", r.ItemsTrashed)
		fmt.Fprintf(w, "Space recovered:   %s\n", humanize.IBytes(uint64(r.BytesTrashed)))
	}

	if r.GroupsFound == 0 {
		green.Fprintf(w, "\nNo duplicates found.\n")
		return
	}

	fmt.Fprintln(w)
	for _, g := range r.Groups {
		cyan.Fprintf(w, "[%s %.2f] ", g.MatchType, g.Similarity)
		fmt.Fprintf(w, "keep %s", g.KeeperID)
		if g.KeeperName != "" {
			fmt.Fprintf(w, " (%s)", g.KeeperName)
		}
		fmt.Fprintf(w, ", remove %d (%s)", len(g.RemovalOrder), humanize.IBytes(uint64(g.Bytes)))
		switch g.Status {
		case string(models.GroupPartial):
			yellow.Fprintf(w, " [partial]")
		case string(models.GroupSkipped):
			yellow.Fprintf(w, " [skipped]")
		}
		fmt.Fprintln(w)
		for _, id := range g.RemovalOrder {
			fmt.Fprintf(w, "    trash %s\n", id)
		}
	}

	if len(r.Failures) > 0 {
		red.Fprintf(w, "\n%d action(s) failed:\n", len(r.Failures))
		for _, f := range r.Failures {
			fmt.Fprintf(w, "    %s %s: %s\n", f.Type, f.ItemID, f.Reason)
		}
	}
	if r.Fatal {
		red.Fprintf(w, "\nRun aborted: %s\n", r.FatalErr)
	}
}
