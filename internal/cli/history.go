package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/rcliao/gatekeeper/internal/gatekeeper"
	"github.com/rcliao/gatekeeper/internal/model"
)

func init() {
	cmd := &cobra.Command{
		Use:   "history",
		Short: "List learned phrases",
		Run:   runHistory,
	}

	cmd.Flags().String("category", "", "Filter by category: simple or complex")
	cmd.Flags().String("source", "", "Filter by source: seed, proactive, interactive, manual")
	cmd.Flags().IntP("limit", "l", 20, "Newest records to show (0 for all)")

	RootCmd.AddCommand(cmd)
}

func runHistory(cmd *cobra.Command, args []string) {
	category, _ := cmd.Flags().GetString("category")
	source, _ := cmd.Flags().GetString("source")
	limit, _ := cmd.Flags().GetInt("limit")

	p := gatekeeper.MemoryParams{
		Category: model.Category(category),
		Source:   model.Source(source),
		Limit:    limit,
	}
	if p.Category != "" && !p.Category.Valid() {
		exitErr("history", fmt.Errorf("%w: %q", gatekeeper.ErrInvalidCategory, category))
	}
	if p.Source != "" && !model.ValidSources[p.Source] {
		exitErr("history", fmt.Errorf("unknown source %q", source))
	}

	gk, s, err := openGatekeeper(cmd.Context())
	if err != nil {
		exitErr("open gatekeeper", err)
	}
	defer s.Close()

	records := gk.History(p)
	if records == nil {
		records = []model.MemoryRecord{}
	}
	printJSON(cmd, records)
}
