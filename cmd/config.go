package cmd

import (
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/cottand/canon/frontend/infer"
	"github.com/cottand/canon/internal/config"
	"github.com/cottand/canon/internal/log"
)

// addConfigFlags registers the flags every subcommand shares
func addConfigFlags(cmd *cobra.Command) {
	cmd.Flags().StringP("config", "c", "", "path to "+config.FileName+" (default: search from the working directory up)")
	cmd.Flags().StringP("log-level", "l", "", "log level, overrides the config file")
}

// loadConfig reads the configuration, applies its logging settings and
// returns the options inference passes should be created with
func loadConfig(cmd *cobra.Command) (*config.Config, []infer.Option, error) {
	path, _ := cmd.Flags().GetString("config")
	var conf *config.Config
	var err error
	if path != "" {
		conf, err = config.Load(path)
	} else {
		conf, path, err = config.Find(".")
	}
	if err != nil {
		return nil, nil, fmt.Errorf("could not load config: %w", err)
	}

	if level, _ := cmd.Flags().GetString("log-level"); level != "" {
		if _, err := config.ParseLevel(level); err != nil {
			return nil, nil, err
		}
		conf.Log.Level = level
	}
	settings := conf.LogSettings()
	settings.Output = cmd.ErrOrStderr()
	log.Configure(settings)
	if path != "" {
		log.DefaultLogger.Debug("loaded config", "section", "fixture", slog.String("path", path))
	}

	return conf, []infer.Option{infer.WithMaxUnifyDepth(conf.Infer.MaxUnifyDepth)}, nil
}
