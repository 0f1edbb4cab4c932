package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/rcliao/gatekeeper/internal/gatekeeper"
)

type resetResult struct {
	OK  bool   `json:"ok"`
	Key string `json:"key"`
}

func init() {
	cmd := &cobra.Command{
		Use:   "reset",
		Short: "Delete every saved version and re-seed the brain",
		Run:   runReset,
	}

	cmd.Flags().Bool("yes", false, "Confirm the irreversible reset")

	RootCmd.AddCommand(cmd)
}

func runReset(cmd *cobra.Command, args []string) {
	yes, _ := cmd.Flags().GetBool("yes")
	if !yes {
		exitErr("reset", fmt.Errorf("this deletes all learned phrases; pass --yes to confirm"))
	}

	gk, s, err := openGatekeeper(cmd.Context())
	if err != nil {
		exitErr("open gatekeeper", err)
	}
	defer s.Close()

	if err := resetBrain(cmd, gk); err != nil {
		exitErr("reset", err)
	}
}

func resetBrain(cmd *cobra.Command, gk *gatekeeper.Gatekeeper) error {
	if err := gk.Reset(cmd.Context()); err != nil {
		return err
	}
	printJSON(cmd, resetResult{OK: true, Key: gk.Key()})
	return nil
}
