package cli

import (
	"strings"

	"github.com/spf13/cobra"
)

func init() {
	cmd := &cobra.Command{
		Use:   "classify [query]",
		Short: "Show how a query would be classified",
		Args:  cobra.MinimumNArgs(1),
		Run:   runClassify,
	}

	RootCmd.AddCommand(cmd)
}

func runClassify(cmd *cobra.Command, args []string) {
	gk, s, err := openGatekeeper(cmd.Context())
	if err != nil {
		exitErr("open gatekeeper", err)
	}
	defer s.Close()

	printJSON(cmd, gk.Explain(strings.Join(args, " ")))
}
