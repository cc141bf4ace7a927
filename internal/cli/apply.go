package cli

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/kilupskalvis/eagledup/internal/core"
	"github.com/kilupskalvis/eagledup/internal/models"
	"github.com/kilupskalvis/eagledup/internal/report"
)

var applyCmd = &cobra.Command{
	Use:   "apply",
	Short: "Deduplicate the library (live run)",
	Long: `Find duplicate groups and apply the plan: merge tags onto each
group's keeper, then move the remaining copies to the library trash.
Removal is reversible through the store's trash.`,
	Run: runApply,
}

var (
	applyThreshold float64
	applyLimit     int
	applyYes       bool
)

func init() {
	applyCmd.Flags().Float64Var(&applyThreshold, "threshold", 0, "Override the fuzzy similarity threshold (0 < t <= 1)")
	applyCmd.Flags().IntVar(&applyLimit, "limit", 0, "Cap the number of items scanned")
	applyCmd.Flags().BoolVarP(&applyYes, "yes", "y", false, "Skip the confirmation prompt")
}

func runApply(cmd *cobra.Command, args []string) {
	ctx, stop := runContext()
	defer stop()

	c := initFullContext()
	defer c.Close()

	if err := validateThresholdFlag(cmd.Flags().Changed("threshold"), applyThreshold); err != nil {
		exitError("%v", err)
	}

	if !applyYes && !confirm("This will move duplicate items to the library trash. Continue?") {
		fmt.Println("Aborted.")
		return
	}

	lock, err := acquireRunLock(c.Config.LockPath())
	if err != nil {
		exitError("%v", err)
	}
	defer lock.Unlock()

	out, err := core.Run(ctx, core.Deps{Config: c.Config, Store: c.Store, Client: c.Client}, core.Options{
		Mode:      models.ModeLive,
		Threshold: applyThreshold,
		Limit:     applyLimit,
	})
	if err != nil {
		exitError("apply failed: %v", err)
	}

	report.Render(os.Stdout, out.Report, true)

	// Per-item failures are reported but non-fatal; only a store
	// outage makes the run itself fail.
	if out.Result != nil && out.Result.Fatal {
		os.Exit(1)
	}
}

func confirm(prompt string) bool {
	fmt.Printf("%s [y/N] ", prompt)
	reader := bufio.NewReader(os.Stdin)
	line, err := reader.ReadString('\n')
	if err != nil {
		return false
	}
	answer := strings.ToLower(strings.TrimSpace(line))
	return answer == "y" || answer == "yes"
}
