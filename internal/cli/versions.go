package cli

import (
	"github.com/spf13/cobra"

	"github.com/rcliao/gatekeeper/internal/store"
)

func init() {
	cmd := &cobra.Command{
		Use:   "versions",
		Short: "List saved versions of the brain",
		Run:   runVersions,
	}

	RootCmd.AddCommand(cmd)
}

func runVersions(cmd *cobra.Command, args []string) {
	s, err := openStore()
	if err != nil {
		exitErr("open store", err)
	}
	defer s.Close()

	versions, err := s.Versions(cmd.Context(), cfg.Store.Key)
	if err != nil {
		exitErr("versions", err)
	}
	if versions == nil {
		versions = []store.Version{}
	}
	printJSON(cmd, versions)
}
