package cli

import (
	"strings"

	"github.com/spf13/cobra"
)

func init() {
	cmd := &cobra.Command{
		Use:   "ask [query]",
		Short: "Route one query",
		Long:  "Answer a query locally when it is simple, otherwise forward it to the external model.",
		Args:  cobra.MinimumNArgs(1),
		Run:   runAsk,
	}

	RootCmd.AddCommand(cmd)
}

func runAsk(cmd *cobra.Command, args []string) {
	gk, s, err := openGatekeeper(cmd.Context())
	if err != nil {
		exitErr("open gatekeeper", err)
	}
	defer s.Close()

	rt, err := newRouter(gk, nil)
	if err != nil {
		exitErr("remote model", err)
	}

	printJSON(cmd, rt.Route(cmd.Context(), "", strings.Join(args, " ")))
}
