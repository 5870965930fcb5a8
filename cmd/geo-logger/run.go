package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/BreadYang/scrape-social-media-in-area/auth"
	"github.com/BreadYang/scrape-social-media-in-area/config"
	"github.com/BreadYang/scrape-social-media-in-area/geo"
	"github.com/BreadYang/scrape-social-media-in-area/metrics"
	"github.com/BreadYang/scrape-social-media-in-area/service"
	"github.com/BreadYang/scrape-social-media-in-area/storage"
	"github.com/BreadYang/scrape-social-media-in-area/stream"
	"github.com/BreadYang/scrape-social-media-in-area/tokens"
	"github.com/BreadYang/scrape-social-media-in-area/twitter"
)

func newRunCmd(root *rootOptions) *cobra.Command {
	var area string

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Stream statuses for one area into the store",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := root.load()
			if err != nil {
				return err
			}
			logger, err := newLogger(cfg.Log, cmd.ErrOrStderr())
			if err != nil {
				return err
			}
			return runStream(cmd.Context(), cfg, area, logger)
		},
	}

	cmd.Flags().StringVarP(&area, "area", "a", "", "area name (see `geo-logger areas`)")
	_ = cmd.MarkFlagRequired("area")
	return cmd
}

func runStream(ctx context.Context, cfg config.Config, area string, logger *slog.Logger) error {
	box, err := cfg.Area(area)
	if errors.Is(err, geo.ErrUnknownArea) {
		return fmt.Errorf("%w (known: %s)", err, strings.Join(geo.Names(cfg.Areas), ", "))
	}
	if err != nil {
		return err
	}

	creds, err := pickCredentials(cfg)
	if err != nil {
		return err
	}
	// у стримингового клиента нет общего таймаута: соединение держится до обрыва
	httpClient := auth.HTTPClient(ctx, creds, &http.Client{})
	client := twitter.NewClient(httpClient, cfg.Twitter.StreamURL, cfg.Twitter.VerifyURL, logger)

	store, err := openStore(ctx, cfg)
	if err != nil {
		return err
	}

	m := metrics.New()
	sink := storage.NewSink(store, cfg.Store.Table, cfg.Stream.InsertTimeout, logger, m)
	defer func() {
		if err := sink.Close(); err != nil {
			logger.Error("store close failed", "error", err)
		}
	}()

	if cfg.Metrics.Addr != "" {
		stop := serveMetrics(cfg.Metrics.Addr, m, logger)
		defer stop()
	}

	session, err := stream.NewSession(stream.Config{
		Area:      area,
		Box:       box,
		MaxBuffer: cfg.Stream.MaxBufferBytes,
		ReadChunk: cfg.Stream.ReadChunkBytes,
	}, client, service.NewHandler(sink, m, logger), logger)
	if err != nil {
		return err
	}

	srv := service.New(session, service.Options{
		Reconnect:     cfg.Stream.Reconnect,
		Backoff:       cfg.Stream.ReconnectBackoff,
		MaxReconnects: cfg.Stream.MaxReconnects,
	}, logger, m)

	logger.Info("starting", "area", area, "locations", box.String(), "driver", cfg.Store.Driver, "table", cfg.Store.Table)
	err = srv.Run(ctx)
	if errors.Is(err, context.Canceled) {
		logger.Info("shutting down...")
		return nil
	}
	if err != nil {
		return fmt.Errorf("session %s terminated: %w", session.ID(), err)
	}
	return nil
}

func pickCredentials(cfg config.Config) (tokens.CredentialSet, error) {
	pool := tokens.NewPool(cfg.Twitter.Credentials, tokens.FileStore{Path: cfg.Twitter.CredentialsFile})
	return pool.Pick(cfg.Twitter.CredentialIndex)
}

func openStore(ctx context.Context, cfg config.Config) (storage.Store, error) {
	switch cfg.Store.Driver {
	case config.DriverSQLite:
		return storage.OpenSQLite(ctx, cfg.Store.SQLitePath, cfg.Store.Table)
	default:
		return storage.NewPostgresStore(ctx, cfg.Postgres.DSN(), cfg.Postgres.MaxConns)
	}
}

func serveMetrics(addr string, m *metrics.Metrics, logger *slog.Logger) (stop func()) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", m.Handler())
	server := &http.Server{Addr: addr, Handler: mux, ReadHeaderTimeout: 5 * time.Second}

	go func() {
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("metrics server failed", "addr", addr, "error", err)
		}
	}()

	return func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = server.Shutdown(ctx)
	}
}
