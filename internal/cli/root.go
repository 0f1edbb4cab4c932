// Package cli implements the gatekeeper CLI commands.
package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/rcliao/gatekeeper/internal/config"
	"github.com/rcliao/gatekeeper/internal/gatekeeper"
	"github.com/rcliao/gatekeeper/internal/logging"
	"github.com/rcliao/gatekeeper/internal/remote"
	"github.com/rcliao/gatekeeper/internal/router"
	"github.com/rcliao/gatekeeper/internal/store"
)

var (
	dbPath     string
	configPath string
	verbose    bool

	cfg    *config.Config
	logger = zap.NewNop()
)

// RootCmd is the top-level command.
var RootCmd = &cobra.Command{
	Use:   "gatekeeper",
	Short: "Answer simple queries locally, forward the rest",
	Long: "A two-tier query router. A learned local classifier answers simple queries " +
		"instantly and forwards complex ones to an external model, learning from both.",
	SilenceUsage:      true,
	PersistentPreRunE: setup,
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		_ = logger.Sync()
	},
}

func init() {
	RootCmd.PersistentFlags().StringVarP(&dbPath, "db", "d", "", "Database path (default: $GATEKEEPER_DB or ~/.gatekeeper/brain.db)")
	RootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "Config file (default: $GATEKEEPER_CONFIG or ~/.gatekeeper/config.yaml)")
	RootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Debug logging")
}

func setup(cmd *cobra.Command, args []string) error {
	c, err := config.Resolve(configPath)
	if err != nil {
		return err
	}
	if dbPath != "" {
		c.Store.Path = dbPath
	}
	if verbose {
		c.Log.Level = "debug"
	}
	if err := c.Validate(); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}

	l, err := logging.New(c.Log)
	if err != nil {
		return err
	}
	cfg, logger = c, l
	return nil
}

func getDBPath() string {
	return config.ExpandPath(cfg.Store.Path)
}

func openStore() (*store.SQLiteStore, error) {
	return store.NewSQLiteStore(getDBPath())
}

// openGatekeeper opens the store and initializes a Gatekeeper on it. The
// caller closes the returned store.
func openGatekeeper(ctx context.Context) (*gatekeeper.Gatekeeper, *store.SQLiteStore, error) {
	s, err := openStore()
	if err != nil {
		return nil, nil, err
	}
	gk, err := gatekeeper.Open(ctx, s, gatekeeper.Options{
		Key:           cfg.Store.Key,
		KeepVersions:  cfg.Store.KeepVersions,
		RelabelMemory: cfg.Learner.RelabelMemory,
		Logger:        logger,
	})
	if err != nil {
		s.Close()
		return nil, nil, err
	}
	return gk, s, nil
}

func newRouter(gk *gatekeeper.Gatekeeper, reg prometheus.Registerer) (*router.Router, error) {
	rm, err := remote.New(remote.Options{
		Provider: cfg.Remote.Provider,
		APIKey:   cfg.Remote.APIKey,
		Model:    cfg.Remote.Model,
		BaseURL:  cfg.Remote.BaseURL,
		Timeout:  cfg.Remote.Timeout,
	}, logger)
	if err != nil {
		return nil, err
	}
	return router.New(gk, rm, router.Options{Logger: logger, Registerer: reg}), nil
}

func printJSON(cmd *cobra.Command, v any) {
	b, _ := json.MarshalIndent(v, "", "  ")
	fmt.Fprintln(cmd.OutOrStdout(), string(b))
}

func exitErr(msg string, err error) {
	_ = logger.Sync()
	fmt.Fprintf(os.Stderr, "error: %s: %v\n", msg, err)
	os.Exit(1)
}
