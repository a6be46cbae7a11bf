package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"monthcal/internal/config"
	appLog "monthcal/internal/log"
)

const defaultConfigPath = "./monthcal.yaml"

// globalFlags are shared by every subcommand.
type globalFlags struct {
	configPath string
	envFile    string
	logLevel   string
}

// NewRootCmd builds the monthcal command tree.
func NewRootCmd(version string) *cobra.Command {
	g := &globalFlags{}

	rootCmd := &cobra.Command{
		Use:   "monthcal",
		Short: "Month-view calendar layout service",
		Long: `monthcal lays out date-ranged events on a month grid: which events are
visible, which row each one occupies, how bars split across week-rows and how
many events overflow each day.

Events come from a YAML file, ICS subscriptions and optionally a Google
Calendar, and are served as JSON over HTTP.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		Version:       version,
	}

	rootCmd.PersistentFlags().StringVar(&g.configPath, "config", "", "Path to config file (default $MONTHCAL_CONFIG or "+defaultConfigPath+")")
	rootCmd.PersistentFlags().StringVar(&g.envFile, "env-file", "", "Optional .env file to load (default .env)")
	rootCmd.PersistentFlags().StringVar(&g.logLevel, "log-level", "", "Override log level (debug, info, warn, error)")

	rootCmd.AddCommand(newServeCmd(g))
	rootCmd.AddCommand(newLayoutCmd(g))
	rootCmd.AddCommand(newVersionCmd(version))

	return rootCmd
}

// Execute runs the root command.
func Execute(version string) error {
	if err := NewRootCmd(version).Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		return err
	}
	return nil
}

// loadConfig loads .env, the YAML config and the environment overrides,
// then applies the log level.
func (g *globalFlags) loadConfig() (*config.Config, error) {
	if g.envFile != "" {
		config.LoadDotEnv(g.envFile)
	} else {
		config.LoadDotEnv()
	}

	path := g.configPath
	if path == "" {
		path = config.ConfigPath(defaultConfigPath)
	}

	cfg, err := config.Load(path)
	if err != nil {
		return nil, fmt.Errorf("load config %s: %w", path, err)
	}

	if g.logLevel != "" {
		cfg.LogLevel = g.logLevel
	}
	appLog.SetLevel(appLog.ParseLevel(cfg.LogLevel))

	appLog.Debug("effective config",
		"config_path", path,
		"listen", cfg.Listen,
		"max_visible_rows", cfg.MaxVisibleRows,
		"refresh", cfg.RefreshCron,
		"events_file", cfg.EventsFile,
		"ics_count", len(cfg.ICS),
		"google", cfg.Google != nil,
	)
	return cfg, nil
}

func newVersionCmd(version string) *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the version",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, _ []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "monthcal %s\n", version)
		},
	}
}
