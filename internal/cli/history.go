package cli

import (
	"fmt"

	"github.com/dustin/go-humanize"
	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/kilupskalvis/eagledup/internal/store"
)

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Show past runs",
	Long:  `Display the ledger of past scan and apply runs.`,
	Run:   runHistory,
}

var historyLimit int

func init() {
	historyCmd.Flags().IntVarP(&historyLimit, "n", "n", 0, "Limit the number of runs to show")
}

func runHistory(cmd *cobra.Command, args []string) {
	c := initContext()
	defer c.Close()

	runs, err := c.Store.GetRuns(historyLimit)
	if err != nil {
		exitError("failed to read run history: %v", err)
	}

	if len(runs) == 0 {
		fmt.Println("No runs yet")
		return
	}

	yellow := color.New(color.FgYellow)
	green := color.New(color.FgGreen)
	red := color.New(color.FgRed)

	for _, r := range runs {
		yellow.Printf("run %s ", shortID(r.ID))
		fmt.Printf("[%s] ", r.Mode)
		switch r.Status {
		case store.RunOK:
			green.Printf("%s", r.Status)
		case store.RunPartial, store.RunCancelled:
			yellow.Printf("%s", r.Status)
		default:
			red.Printf("%s", r.Status)
		}
		fmt.Println()
		fmt.Printf("Date:   %s\n", r.StartedAt.Format("Mon Jan 2 15:04:05 2006"))
		fmt.Printf("    %d items scanned, %d groups, %d removable (%s)\n",
			r.ItemsScanned, r.GroupsFound, r.ItemsPlanned,
			humanize.IBytes(uint64(r.BytesRecoverable)))
		if r.ItemsTrashed > 0 {
			fmt.Printf("    %d items trashed (%s recovered)\n",
				r.ItemsTrashed, humanize.IBytes(uint64(r.BytesTrashed)))
		}
		if failures, err := c.Store.GetRunFailures(r.ID); err == nil && len(failures) > 0 {
			red.Printf("    %d failed action(s)\n", len(failures))
		}
		fmt.Println()
	}
}
