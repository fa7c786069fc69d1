// Package cli builds the jobboard command tree.
//
//	jobboard serve          run the HTTP API
//	jobboard import         scrape the configured boards once
//	jobboard flush-cache    drop every cached listing and job
//	jobboard list           print a listing page as a table
//
// Settings come from defaults, an optional --config file and JOBBOARD_*
// environment variables. A .env file in the working directory is loaded
// first without overriding the real environment.
package cli

import (
	"github.com/cockroachdb/errors"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/rsilvagit/jobboard/internal/config"
	"github.com/rsilvagit/jobboard/internal/logger"
)

// env is shared by every subcommand once the root pre-run has loaded it.
type env struct {
	configPath string
	dotEnvPath string
	cfg        *config.Config
	log        *zap.Logger
}

func (e *env) load() error {
	config.LoadDotEnv(e.dotEnvPath)

	cfg, err := config.Load(config.New(), e.configPath)
	if err != nil {
		return err
	}
	log, err := logger.New(cfg.Log.JSON, cfg.Log.Level)
	if err != nil {
		return errors.Wrap(err, "cli: build logger")
	}
	e.cfg, e.log = cfg, log
	return nil
}

func BuildCLI() *cobra.Command {
	e := &env{dotEnvPath: ".env"}

	root := &cobra.Command{
		Use:           "jobboard",
		Short:         "Job board API with a read-through listing cache",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(*cobra.Command, []string) error {
			return e.load()
		},
		PersistentPostRun: func(*cobra.Command, []string) {
			if e.log != nil {
				_ = e.log.Sync()
			}
		},
	}
	root.PersistentFlags().StringVarP(&e.configPath, "config", "c", "", "config file (yaml, toml or json)")

	root.AddCommand(
		buildServeCommand(e),
		buildImportCommand(e),
		buildFlushCommand(e),
		buildListCommand(e),
	)
	return root
}
