package cli

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/rcliao/gatekeeper/internal/gatekeeper"
	"github.com/rcliao/gatekeeper/internal/model"
)

type learnResult struct {
	OK        bool           `json:"ok"`
	Phrase    string         `json:"phrase"`
	Category  model.Category `json:"category"`
	Persisted bool           `json:"persisted"`
}

func init() {
	teach := &cobra.Command{
		Use:   "teach [phrase]",
		Short: "Teach a simple phrase and its reply",
		Args:  cobra.MinimumNArgs(1),
		Run:   runTeach,
	}
	teach.Flags().StringP("reply", "r", "", "Reply to serve for the phrase (required)")
	teach.MarkFlagRequired("reply")

	learn := &cobra.Command{
		Use:   "learn [phrase]",
		Short: "Record a phrase as simple or complex",
		Args:  cobra.MinimumNArgs(1),
		Run:   runLearn,
	}
	learn.Flags().String("category", "", "simple or complex (required)")
	learn.Flags().StringP("reply", "r", "", "Reply to serve when the phrase is simple")
	learn.MarkFlagRequired("category")

	RootCmd.AddCommand(teach, learn)
}

func runTeach(cmd *cobra.Command, args []string) {
	reply, _ := cmd.Flags().GetString("reply")
	if strings.TrimSpace(reply) == "" {
		exitErr("teach", fmt.Errorf("--reply must not be empty"))
	}
	learnPhrase(cmd, strings.Join(args, " "), model.Simple, reply)
}

func runLearn(cmd *cobra.Command, args []string) {
	category, _ := cmd.Flags().GetString("category")
	reply, _ := cmd.Flags().GetString("reply")
	learnPhrase(cmd, strings.Join(args, " "), model.Category(category), reply)
}

func learnPhrase(cmd *cobra.Command, phrase string, category model.Category, reply string) {
	gk, s, err := openGatekeeper(cmd.Context())
	if err != nil {
		exitErr("open gatekeeper", err)
	}
	defer s.Close()

	err = gk.Learn(cmd.Context(), phrase, category, reply, model.SourceManual)
	if err != nil && !errors.Is(err, gatekeeper.ErrPersist) {
		exitErr("learn", err)
	}

	printJSON(cmd, learnResult{OK: true, Phrase: phrase, Category: category, Persisted: err == nil})
}
