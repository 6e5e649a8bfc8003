package main

import (
	"fmt"
	"io"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"tweetfeed/internal/config"
)

var (
	version = "dev"
	commit  = "none"
)

// app carries what every subcommand needs once flags are parsed.
type app struct {
	configDir string
	cfg       config.Config
	log       *logrus.Logger
}

func newRootCmd() *cobra.Command {
	a := &app{}

	root := &cobra.Command{
		Use:           "tweetfeed",
		Short:         "Fetch and load the blog's tweets",
		Long:          "tweetfeed downloads tweets into a JSON snapshot and loads the snapshot into the site's node collection.",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if cmd.Name() == "version" {
				return nil
			}
			return a.setup(cmd.ErrOrStderr())
		},
	}
	root.PersistentFlags().StringVar(&a.configDir, "config", "./configs", "directory containing config.yaml")

	root.AddCommand(
		newFetchCmd(a),
		newLoadCmd(a),
		newListCmd(a),
		&cobra.Command{
			Use:   "version",
			Short: "Print version information",
			Run: func(cmd *cobra.Command, args []string) {
				fmt.Fprintf(cmd.OutOrStdout(), "tweetfeed %s (commit: %s)\n", version, commit)
			},
		},
	)
	return root
}

// setup loads configuration and builds the logger. Logs go to logOut so the
// list command's stdout stays machine readable.
func (a *app) setup(logOut io.Writer) error {
	cfg, err := config.LoadConfig(a.configDir)
	if err != nil {
		return fmt.Errorf("loading configuration: %w", err)
	}
	log, err := newLogger(cfg.LogLevel, logOut)
	if err != nil {
		return err
	}
	a.cfg = cfg
	a.log = log

	log.WithFields(logrus.Fields{
		"output_path":   cfg.OutputPath,
		"badgerdb_path": cfg.BadgerDBPath,
	}).Debug("Configuration loaded successfully")
	return nil
}

func newLogger(level string, out io.Writer) (*logrus.Logger, error) {
	lvl, err := logrus.ParseLevel(level)
	if err != nil {
		return nil, fmt.Errorf("invalid LOG_LEVEL: %w", err)
	}
	log := logrus.New()
	log.SetFormatter(&logrus.JSONFormatter{})
	log.SetOutput(out)
	log.SetLevel(lvl)
	return log, nil
}
