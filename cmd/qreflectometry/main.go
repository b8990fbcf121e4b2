// Package main provides the qreflectometry command.
package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"github.com/CrimsonAS/qreflectometry/internal/config"
	"github.com/CrimsonAS/qreflectometry/internal/log"
)

var (
	configPath   string
	logLevel     string
	plotBackend  string
	acceleration bool
	chartWidth   int
	chartHeight  int
	projectDir   string
	autosave     int
)

// extraCmds are added by files built with optional tags.
var extraCmds []func() *cobra.Command

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:          "qreflectometry",
		Short:        "Reflectometry modelling backend for a QML interface",
		SilenceUsage: true,
	}

	d := config.Defaults()
	flags := rootCmd.PersistentFlags()
	flags.StringVar(&configPath, "config", config.DefaultConfigPath(), "config file")
	flags.StringVar(&logLevel, "log-level", d.LogLevel, "debug, info or error")
	flags.StringVar(&plotBackend, "plot-backend", d.PlotBackend, "chart library of the UI")
	flags.BoolVar(&acceleration, "acceleration", d.Acceleration, "use hardware accelerated charts")
	flags.IntVar(&chartWidth, "width", d.Width, "width of exported charts")
	flags.IntVar(&chartHeight, "height", d.Height, "height of exported charts")
	flags.StringVar(&projectDir, "project-dir", d.ProjectDir, "directory for new projects")
	flags.IntVar(&autosave, "autosave", d.Autosave, "seconds between saves of a created project, 0 disables")

	rootCmd.AddCommand(newServeCmd())
	rootCmd.AddCommand(newWebsocketCmd())
	rootCmd.AddCommand(newExportCmd())
	rootCmd.AddCommand(newVersionCmd())
	rootCmd.AddCommand(newConfigCmd())
	for _, c := range extraCmds {
		rootCmd.AddCommand(c())
	}
	return rootCmd
}

// loadConfig resolves the configuration: defaults, then the config file,
// then the flags that were set on the command line.
func loadConfig(cmd *cobra.Command) (config.Config, error) {
	cfg := config.Defaults()
	file, err := config.LoadConfig(configPath)
	if err != nil {
		return cfg, err
	}
	file.Apply(&cfg)

	flags := cmd.Flags()
	if flags.Changed("log-level") {
		cfg.LogLevel = logLevel
	}
	if flags.Changed("plot-backend") {
		cfg.PlotBackend = plotBackend
	}
	if flags.Changed("acceleration") {
		cfg.Acceleration = acceleration
	}
	if flags.Changed("width") {
		cfg.Width = chartWidth
	}
	if flags.Changed("height") {
		cfg.Height = chartHeight
	}
	if flags.Changed("project-dir") {
		cfg.ProjectDir = projectDir
	}
	if flags.Changed("autosave") {
		cfg.Autosave = autosave
	}
	return cfg, cfg.Validate()
}

// setup loads the configuration and installs the root logger.
func setup(cmd *cobra.Command) (config.Config, config.About, log.Logger, error) {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return cfg, config.About{}, nil, err
	}
	level, err := log.ParseLevel(cfg.LogLevel)
	if err != nil {
		return cfg, config.About{}, nil, err
	}
	log.Root = &log.Default{Level: level}
	about, err := config.LoadAbout()
	if err != nil {
		return cfg, config.About{}, nil, err
	}
	return cfg, about, log.Root, nil
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the release",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			about, err := config.LoadAbout()
			if err != nil {
				return err
			}
			_, err = fmt.Fprintf(cmd.OutOrStdout(), "qreflectometry %s (%s)\n", about.Version.Number, about.Version.Date)
			return err
		},
	}
}

func newConfigCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "config",
		Short: "Create the config file if needed and print its path",
		Args:  cobra.NoArgs,
		RunE:  runConfigCmd,
	}
}

func runConfigCmd(cmd *cobra.Command, _ []string) error {
	if err := os.MkdirAll(filepath.Dir(configPath), 0o755); err != nil {
		return errors.Wrap(err, "failed to create config directory")
	}
	if _, err := os.Stat(configPath); err != nil {
		if !os.IsNotExist(err) {
			return errors.Wrap(err, "failed to stat config")
		}
		if err := os.WriteFile(configPath, []byte(config.DefaultTemplate()), 0o644); err != nil {
			return errors.Wrap(err, "failed to write config")
		}
	}
	_, err := fmt.Fprintln(cmd.OutOrStdout(), configPath)
	return err
}
