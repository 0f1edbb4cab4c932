package cli

import (
	"strings"

	"github.com/spf13/cobra"

	"github.com/rcliao/gatekeeper/internal/model"
)

func init() {
	cmd := &cobra.Command{
		Use:   "feedback",
		Short: "Correct the classification of a query",
	}

	reject := &cobra.Command{
		Use:   "reject [query]",
		Short: "Mark a query's current classification as wrong",
		Long: "Classify the query, then learn it under the other category. " +
			"--reply sets the local answer when the query becomes simple.",
		Args: cobra.MinimumNArgs(1),
		Run:  runReject,
	}
	reject.Flags().StringP("reply", "r", "", "Reply to serve when the query becomes simple")

	cmd.AddCommand(reject)
	RootCmd.AddCommand(cmd)
}

func runReject(cmd *cobra.Command, args []string) {
	reply, _ := cmd.Flags().GetString("reply")

	gk, s, err := openGatekeeper(cmd.Context())
	if err != nil {
		exitErr("open gatekeeper", err)
	}
	defer s.Close()

	rt, err := newRouter(gk, nil)
	if err != nil {
		exitErr("remote model", err)
	}

	rt.Observe("", strings.Join(args, " "))
	res, err := rt.Feedback(cmd.Context(), "", model.VerdictReject, reply)
	if err != nil {
		exitErr("feedback", err)
	}
	printJSON(cmd, res)
}
