package cli

import (
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/rcliao/gatekeeper/internal/model"
	"github.com/rcliao/gatekeeper/internal/store"
)

type importResult struct {
	OK    bool             `json:"ok"`
	Brain model.BrainStats `json:"brain"`
}

func init() {
	cmd := &cobra.Command{
		Use:   "import [file]",
		Short: "Replace the brain from JSON",
		Long:  "Replace the brain with JSON from a file or stdin. Expects the format produced by export.",
		Args:  cobra.MaximumNArgs(1),
		Run:   runImport,
	}

	RootCmd.AddCommand(cmd)
}

func runImport(cmd *cobra.Command, args []string) {
	var (
		data []byte
		err  error
	)
	if len(args) == 1 {
		data, err = os.ReadFile(args[0])
	} else {
		data, err = io.ReadAll(cmd.InOrStdin())
	}
	if err != nil {
		exitErr("read input", err)
	}

	b, err := store.Import(data)
	if err != nil {
		exitErr("parse brain", err)
	}

	gk, s, err := openGatekeeper(cmd.Context())
	if err != nil {
		exitErr("open gatekeeper", err)
	}
	defer s.Close()

	if err := gk.Replace(cmd.Context(), b); err != nil {
		exitErr("import", err)
	}

	printJSON(cmd, importResult{OK: true, Brain: gk.Stats()})
}
