// Package cli wires configuration, logging and storage into the taskdeck
// commands.
package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/tgienger/taskdeck/internal/config"
)

// BuildInfo is set via ldflags in main
type BuildInfo struct {
	Version string
	Commit  string
	Date    string
}

var (
	configPath string
	build      BuildInfo
)

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "taskdeck",
		Short: "Terminal client for taskdeck tasks and projects",
		Long: `taskdeck is a terminal client for a task and project manager.

Run without arguments to open the interface. Use "taskdeck serve" to run
the reference backend locally.`,
		RunE:          runTUI, // Default action is the interface
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	// Global flags
	root.PersistentFlags().StringVarP(&configPath, "config", "c", "", "config file (default "+config.DefaultPath()+")")

	root.AddCommand(newServeCmd())
	root.AddCommand(newConfigCmd())
	root.AddCommand(newVersionCmd())
	return root
}

// Execute runs the root command
func Execute(info BuildInfo) error {
	build = info
	root := newRootCmd()
	root.Version = info.Version
	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		return err
	}
	return nil
}

func loadConfig() (config.Config, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return config.Config{}, fmt.Errorf("failed to load config: %w", err)
	}
	return cfg, nil
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "taskdeck %s (commit: %s, built: %s)\n", build.Version, build.Commit, build.Date)
		},
	}
}
