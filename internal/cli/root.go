// Package cli implements the command-line interface for eagledup.
package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/kilupskalvis/eagledup/internal/config"
	"github.com/kilupskalvis/eagledup/internal/eagle"
	"github.com/kilupskalvis/eagledup/internal/logging"
	"github.com/kilupskalvis/eagledup/internal/store"
)

// cmdContext holds common resources for CLI commands
type cmdContext struct {
	Config *config.Config
	Store  *store.Store
	Client eagle.ClientInterface
}

// Close releases resources held by cmdContext
func (c *cmdContext) Close() {
	if c.Store != nil {
		c.Store.Close()
	}
}

// initContext initializes config and store (no client)
func initContext() *cmdContext {
	cfg, err := config.Load()
	if err != nil {
		exitError("%v", err)
	}

	st, err := store.New(cfg.DatabasePath())
	if err != nil {
		exitError("failed to open store: %v", err)
	}
	if err := st.Initialize(); err != nil {
		st.Close()
		exitError("failed to initialize store: %v", err)
	}

	return &cmdContext{Config: cfg, Store: st}
}

// initFullContext initializes config, store, and the library client
func initFullContext() *cmdContext {
	c := initContext()
	c.Client = newClient(c.Config)
	return c
}

// newClient builds the retrying store client from config.
func newClient(cfg *config.Config) eagle.ClientInterface {
	httpClient := eagle.NewHTTPClient(cfg.StoreURL, cfg.Token, eagle.ClientOptions{
		Timeout:   cfg.Timeout(),
		RateLimit: cfg.RateLimit,
	})
	retryCfg := eagle.DefaultRetryConfig()
	retryCfg.MaxRetries = cfg.Retry.MaxRetries
	if cfg.Retry.InitialBackoffMS > 0 {
		retryCfg.InitialBackoff = msDuration(cfg.Retry.InitialBackoffMS)
	}
	if cfg.Retry.MaxBackoffMS > 0 {
		retryCfg.MaxBackoff = msDuration(cfg.Retry.MaxBackoffMS)
	}
	return eagle.NewRetryClient(httpClient, retryCfg)
}

var logLevel string

var rootCmd = &cobra.Command{
	Use:   "eagledup",
	Short: "Eagle library deduplication",
	Long: `eagledup scans an Eagle-style media library for duplicate items using
fingerprint, fuzzy name, and n-gram matching, picks the best copy of
each group, and moves the rest to the library trash.`,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		if err := logging.SetLevel(logLevel); err != nil {
			exitError("%v", err)
		}
	},
}

// Execute runs the root command
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "warn", "Log level (debug, info, warn, error)")
	rootCmd.AddCommand(initCmd)
	rootCmd.AddCommand(scanCmd)
	rootCmd.AddCommand(applyCmd)
	rootCmd.AddCommand(historyCmd)
}

// runContext returns a context cancelled on SIGINT/SIGTERM, so an
// interrupted scan stops at a chunk boundary with its checkpoint
// persisted and the run recorded as cancelled.
func runContext() (context.Context, context.CancelFunc) {
	return signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
}

// validateThresholdFlag checks an explicit --threshold value. The flag
// default of 0 means "use the configured threshold" and only counts as
// an error when the user passed it themselves.
func validateThresholdFlag(changed bool, v float64) error {
	if !changed {
		return nil
	}
	if v <= 0 || v > 1 {
		return fmt.Errorf("threshold must be in (0, 1], got %v", v)
	}
	return nil
}

// exitError prints an error and exits
func exitError(format string, args ...interface{}) {
	fmt.Fprintf(os.Stderr, "error: "+format+"\n", args...)
	os.Exit(1)
}

func msDuration(ms int) time.Duration {
	return time.Duration(ms) * time.Millisecond
}

// shortID returns first 8 characters of an ID
func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}
