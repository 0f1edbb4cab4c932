package cli

import (
	"errors"
	"fmt"
	"io/fs"
	"os"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/rcliao/gatekeeper/internal/config"
)

type configInitResult struct {
	OK   bool   `json:"ok"`
	Path string `json:"path"`
}

func init() {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Inspect or write the configuration file",
	}

	initCmd := &cobra.Command{
		Use:   "init",
		Short: "Write the effective configuration to a file",
		Long:  "Write the effective configuration (defaults, file, env, flags) to --config or ~/.gatekeeper/config.yaml.",
		Run:   runConfigInit,
	}
	initCmd.Flags().Bool("force", false, "Overwrite an existing file")

	show := &cobra.Command{
		Use:   "show",
		Short: "Print the effective configuration as YAML",
		Run:   runConfigShow,
	}

	cmd.AddCommand(initCmd, show)
	RootCmd.AddCommand(cmd)
}

func runConfigInit(cmd *cobra.Command, args []string) {
	force, _ := cmd.Flags().GetBool("force")
	path, err := writeConfig(cfg, configPath, force)
	if err != nil {
		exitErr("config init", err)
	}
	printJSON(cmd, configInitResult{OK: true, Path: path})
}

// writeConfig saves c to path, or the default location when path is empty.
// An existing file is only replaced when force is set.
func writeConfig(c *config.Config, path string, force bool) (string, error) {
	if path == "" {
		path = config.DefaultPath()
	}
	path = config.ExpandPath(path)

	if !force {
		if _, err := os.Stat(path); err == nil {
			return "", fmt.Errorf("%s already exists; pass --force to overwrite", path)
		} else if !errors.Is(err, fs.ErrNotExist) {
			return "", err
		}
	}

	out := *c
	out.Remote.APIKey = ""
	if err := out.Save(path); err != nil {
		return "", err
	}
	return path, nil
}

func runConfigShow(cmd *cobra.Command, args []string) {
	out := *cfg
	if out.Remote.APIKey != "" {
		out.Remote.APIKey = "********"
	}
	b, err := yaml.Marshal(out)
	if err != nil {
		exitErr("config show", err)
	}
	fmt.Fprint(cmd.OutOrStdout(), string(b))
}
