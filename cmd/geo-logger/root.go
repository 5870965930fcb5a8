package main

import (
	"io"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/BreadYang/scrape-social-media-in-area/config"
)

type rootOptions struct {
	configPath string
}

func newRootCmd() *cobra.Command {
	opts := &rootOptions{}

	cmd := &cobra.Command{
		Use:   "geo-logger",
		Short: "Store geotagged statuses posted inside a bounding box",
		Long: `geo-logger subscribes to the filtered status stream for one named area,
keeps statuses with exact coordinates inside the area and inserts each one
into Postgres (PostGIS + hstore) or a local SQLite file.

  geo-logger migrate --config geo-logger.yaml
  geo-logger run --config geo-logger.yaml --area sf
  geo-logger areas`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	cmd.PersistentFlags().StringVarP(&opts.configPath, "config", "c", "", "path to YAML config (env GEO_LOGGER_* overrides it)")

	cmd.AddCommand(
		newRunCmd(opts),
		newMigrateCmd(opts),
		newAreasCmd(opts),
		newVerifyCmd(opts),
	)
	return cmd
}

func (o *rootOptions) load() (config.Config, error) {
	return config.Load(o.configPath)
}

// newLogger собирает slog по настройкам log.level и log.format.
func newLogger(cfg config.LogConfig, w io.Writer) (*slog.Logger, error) {
	level, err := cfg.SlogLevel()
	if err != nil {
		return nil, err
	}

	handlerOpts := &slog.HandlerOptions{Level: level}
	var handler slog.Handler
	if cfg.Format == "json" {
		handler = slog.NewJSONHandler(w, handlerOpts)
	} else {
		handler = slog.NewTextHandler(w, handlerOpts)
	}
	return slog.New(handler), nil
}
