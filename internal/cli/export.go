package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/rcliao/gatekeeper/internal/model"
	"github.com/rcliao/gatekeeper/internal/store"
)

func init() {
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Export the brain as JSON",
		Long:  "Export the current brain, or a saved version with --version, as JSON on stdout.",
		Run:   runExport,
	}

	cmd.Flags().Int("version", 0, "Saved version to export (default: current)")

	RootCmd.AddCommand(cmd)
}

func runExport(cmd *cobra.Command, args []string) {
	version, _ := cmd.Flags().GetInt("version")

	var b *model.Brain
	if version > 0 {
		s, err := openStore()
		if err != nil {
			exitErr("open store", err)
		}
		defer s.Close()

		b, err = s.LoadVersion(cmd.Context(), cfg.Store.Key, version)
		if err != nil {
			exitErr("export", err)
		}
	} else {
		gk, s, err := openGatekeeper(cmd.Context())
		if err != nil {
			exitErr("open gatekeeper", err)
		}
		defer s.Close()
		b = gk.Snapshot()
	}

	data, err := store.Export(b)
	if err != nil {
		exitErr("export", err)
	}
	fmt.Fprintln(cmd.OutOrStdout(), string(data))
}
