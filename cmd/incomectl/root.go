package main

import (
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"incomepredict/config"
	"incomepredict/logger"
)

const app = "incomectl"

// Actual version can be specified in build command.
var version = "unknown"

type rootOptions struct {
	configFile string
	debug      bool
}

func newRootCmd() *cobra.Command {
	opts := &rootOptions{}
	cmd := &cobra.Command{
		Use:           app,
		Short:         "incomectl predicts an employee's monthly income from the command line",
		SilenceUsage:  true,
		SilenceErrors: false,
	}
	cmd.PersistentFlags().StringVar(&opts.configFile, "config", "", "a config file (default is $"+config.EnvPath+" or config.yaml)")
	cmd.PersistentFlags().BoolVarP(&opts.debug, "debug", "d", false, "verbose/debug output")

	cmd.AddCommand(newPredictCmd(opts), newSchemaCmd(), newVersionCmd())
	return cmd
}

func (o *rootOptions) loadConfig() (*config.Config, error) {
	return config.Load(config.ResolvePath(o.configFile))
}

// newLogger stays silent unless --debug is set, so stdout only carries results.
func (o *rootOptions) newLogger(cfg *config.Config) (*zap.Logger, error) {
	if !o.debug {
		return zap.NewNop(), nil
	}
	logCfg := cfg.Log
	logCfg.Level = "debug"
	return logger.New(logCfg)
}
