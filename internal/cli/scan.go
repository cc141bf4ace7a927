package cli

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/kilupskalvis/eagledup/internal/core"
	"github.com/kilupskalvis/eagledup/internal/models"
	"github.com/kilupskalvis/eagledup/internal/report"
)

var scanCmd = &cobra.Command{
	Use:   "scan",
	Short: "Scan the library for duplicates (dry-run)",
	Long: `Scan the library and report duplicate groups without changing
anything. The report shows exactly what 'eagledup apply' would do.`,
	Run: runScan,
}

var (
	scanThreshold float64
	scanLimit     int
)

func init() {
	scanCmd.Flags().Float64Var(&scanThreshold, "threshold", 0, "Override the fuzzy similarity threshold (0 < t <= 1)")
	scanCmd.Flags().IntVar(&scanLimit, "limit", 0, "Cap the number of items scanned")
}

func runScan(cmd *cobra.Command, args []string) {
	ctx, stop := runContext()
	defer stop()

	c := initFullContext()
	defer c.Close()

	if err := validateThresholdFlag(cmd.Flags().Changed("threshold"), scanThreshold); err != nil {
		exitError("%v", err)
	}

	lock, err := acquireRunLock(c.Config.LockPath())
	if err != nil {
		exitError("%v", err)
	}
	defer lock.Unlock()

	out, err := core.Run(ctx, core.Deps{Config: c.Config, Store: c.Store, Client: c.Client}, core.Options{
		Mode:      models.ModeDryRun,
		Threshold: scanThreshold,
		Limit:     scanLimit,
	})
	if err != nil {
		exitError("scan failed: %v", err)
	}

	report.Render(os.Stdout, out.Report, true)
}
