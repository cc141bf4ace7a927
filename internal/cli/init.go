package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/kilupskalvis/eagledup/internal/config"
	"github.com/kilupskalvis/eagledup/internal/store"
)

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Initialize an eagledup library in the current directory",
	Long: `Initialize eagledup for the library served at the given URL.
This creates an .eagledup directory holding the configuration and the
local run database.`,
	Run: runInit,
}

var (
	initURL   string
	initToken string
)

func init() {
	initCmd.Flags().StringVar(&initURL, "url", "http://localhost:41595", "Library API URL")
	initCmd.Flags().StringVar(&initToken, "token", "", "Library API token")
}

func runInit(cmd *cobra.Command, args []string) {
	ctx := context.Background()

	// Check if already initialized
	if _, err := config.FindRoot(); err == nil {
		exitError("eagledup library already exists")
	}

	fmt.Printf("Initializing eagledup...\n")
	fmt.Printf("Library URL: %s\n", initURL)

	cfg := config.Default(initURL)
	cfg.Token = initToken
	client := newClient(cfg)

	fmt.Printf("Connecting to library...\n")
	if err := client.Ping(ctx); err != nil {
		exitError("failed to connect to library: %v", err)
	}

	cfg, err := config.Initialize(initURL, initToken)
	if err != nil {
		exitError("failed to initialize config: %v", err)
	}

	st, err := store.New(cfg.DatabasePath())
	if err != nil {
		exitError("failed to create store: %v", err)
	}
	defer st.Close()

	if err := st.Initialize(); err != nil {
		exitError("failed to initialize store: %v", err)
	}

	fmt.Printf("\nInitialized eagledup library in %s/\n", config.Dir)
	fmt.Printf("Run 'eagledup scan' to look for duplicates.\n")
}
