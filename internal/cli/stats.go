package cli

import (
	"github.com/spf13/cobra"

	"github.com/rcliao/gatekeeper/internal/model"
	"github.com/rcliao/gatekeeper/internal/store"
)

type statsOutput struct {
	Key   string           `json:"key"`
	Brain model.BrainStats `json:"brain"`
	Store *store.Stats     `json:"store"`
}

func init() {
	cmd := &cobra.Command{
		Use:   "stats",
		Short: "Show brain and database statistics",
		Run:   runStats,
	}

	RootCmd.AddCommand(cmd)
}

func runStats(cmd *cobra.Command, args []string) {
	gk, s, err := openGatekeeper(cmd.Context())
	if err != nil {
		exitErr("open gatekeeper", err)
	}
	defer s.Close()

	st, err := s.Stats(cmd.Context(), getDBPath())
	if err != nil {
		exitErr("stats", err)
	}

	printJSON(cmd, statsOutput{Key: gk.Key(), Brain: gk.Stats(), Store: st})
}
