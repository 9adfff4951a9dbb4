package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/zjrosen/mxview/internal/config"
)

var configInitCmd = &cobra.Command{
	Use:   "config:init [path]",
	Short: "Write a commented default config file",
	Long: `Write the default configuration to path (default: .mxview/config.yaml).
An existing file is left alone unless --force is given.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runConfigInit,
}

var configSetCmd = &cobra.Command{
	Use:   "config:set KEY VALUE",
	Short: "Set one configuration value",
	Long: `Set a dotted configuration key in the active config file, keeping its
comments and layout. Missing sections are created.`,
	Example: `  mxview config:set server.addr 0.0.0.0:7070
  mxview config:set providers.files.enabled true
  mxview config:set flags.remote-registration true`,
	Args: cobra.ExactArgs(2),
	RunE: runConfigSet,
}

var configInitForce bool

func init() {
	rootCmd.AddCommand(configInitCmd)
	rootCmd.AddCommand(configSetCmd)

	configInitCmd.Flags().BoolVar(&configInitForce, "force", false, "overwrite an existing file")
}

func runConfigInit(cmd *cobra.Command, args []string) error {
	path := DefaultConfigPath
	if len(args) == 1 {
		path = args[0]
	}

	if _, err := os.Stat(path); err == nil && !configInitForce {
		return fmt.Errorf("%s already exists (use --force to overwrite)", path)
	}

	if err := config.WriteDefaultConfig(path); err != nil {
		return fmt.Errorf("writing config: %w", err)
	}
	_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Wrote %s\n", path)
	return nil
}

func runConfigSet(cmd *cobra.Command, args []string) error {
	path := configPath()
	if err := config.SetValue(path, args[0], args[1]); err != nil {
		return err
	}
	_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Set %s = %s in %s\n", args[0], args[1], path)
	return nil
}
