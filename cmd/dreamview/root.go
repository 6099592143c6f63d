package main

import (
	"io"
	"log/slog"

	"github.com/Carmen-Shannon/oxy-dream/engine/config"
	"github.com/spf13/cobra"
)

// app is the state shared by every command: the loaded configuration, the logger built
// from it and the status printer.
type app struct {
	configPath string
	logLevel   string
	logFormat  string

	cfg    *config.Config
	logger *slog.Logger
	status *status
	stdout io.Writer
	stderr io.Writer
}

func newRootCmd(stdout, stderr io.Writer) *cobra.Command {
	a := &app{stdout: stdout, stderr: stderr, status: newStatus(stderr)}

	root := &cobra.Command{
		Use:           "dreamview",
		Short:         "Render scene descriptions in a live 3D view",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return a.load(cmd)
		},
	}
	root.SetOut(stdout)
	root.SetErr(stderr)

	pf := root.PersistentFlags()
	pf.StringVarP(&a.configPath, "config", "c", "dreamview.toml", "TOML configuration file")
	pf.StringVar(&a.logLevel, "log-level", "", "log level: debug, info, warn or error")
	pf.StringVar(&a.logFormat, "log-format", "", "log format: text or json")

	root.AddCommand(newViewCmd(a), newGenerateCmd(a), newServeCmd(a))
	return root
}

// load reads the configuration, applies the persistent flag overrides and builds the logger.
func (a *app) load(cmd *cobra.Command) error {
	cfg, err := config.Load(a.configPath)
	if err != nil {
		a.status.fail("%v", err)
		return err
	}
	if cmd.Flags().Changed("log-level") {
		cfg.Log.Level = a.logLevel
	}
	if cmd.Flags().Changed("log-format") {
		cfg.Log.Format = a.logFormat
	}
	logger, err := cfg.Logger(a.stderr)
	if err != nil {
		a.status.fail("%v", err)
		return err
	}
	a.cfg = cfg
	a.logger = logger
	slog.SetDefault(logger)
	return nil
}
