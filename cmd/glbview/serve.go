package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"glbview/internal/config"
	"glbview/internal/httpapi"
	"glbview/internal/manager"
	"glbview/internal/registry"
)

const (
	shutdownGrace = 5 * time.Second
	janitorEvery  = time.Minute
)

func newServeCmd(o *options) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Serve the viewer page and its API",
		Example: "  glbview serve --models-dir ./public/models\n" +
			"  glbview serve --config glbview.yaml --log-json",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := resolveConfig(cmd, o, os.Getenv)
			if err != nil {
				return err
			}
			log := newLogger(cmd.ErrOrStderr(), cfg.LogLevel, cfg.LogJSON)
			return serve(cmd.Context(), cfg, log)
		},
	}
}

// serve runs the HTTP server until ctx is done, then drains it and closes
// every session.
func serve(ctx context.Context, cfg config.Config, log zerolog.Logger) error {
	httpapi.SetLogger(log)
	if os.Getenv("GLBVIEW_ACCESS_LOG") == "" {
		httpapi.SetAccessLogLevel(accessLogLevel(cfg.LogLevel))
	}
	httpapi.SetModelsDir(cfg.ModelsDir, cfg.ModelsPath)
	httpapi.SetMaxUploadBytes(cfg.MaxUploadBytes())
	httpapi.SetCORSOptions(cfg.CORSEnabled, cfg.CORSOrigins, nil, nil)
	httpapi.SetBaseContext(ctx)

	dir := registry.NewService(cfg.ModelsDir, cfg.ModelsPath, log)
	if st := dir.Probe(); st != registry.DirOK {
		log.Warn().Str("dir", cfg.ModelsDir).Str("state", string(st)).Msg("models directory has no models")
	}

	hub := httpapi.NewHub()
	mgr := manager.NewWithConfig(manager.ManagerConfig{
		Directory:      dir,
		MaxUploadBytes: cfg.MaxUploadBytes(),
		WidgetScript:   cfg.WidgetScript,
		LoadTimeout:    cfg.LoadTimeoutDuration(),
		SessionTTL:     cfg.SessionTTLDuration(),
		Builtin:        cfg.BuiltinDescriptors(),
		Publisher:      hub,
		Logger:         log,
		BaseContext:    ctx,
		Attached:       hub.Attached,
	})
	go mgr.RunJanitor(ctx, janitorEvery)

	srv := &http.Server{
		Addr:              cfg.Addr,
		Handler:           httpapi.NewMux(mgr, hub),
		ReadHeaderTimeout: 10 * time.Second,
	}
	errCh := make(chan error, 1)
	go func() {
		log.Info().Str("addr", cfg.Addr).Str("models_dir", cfg.ModelsDir).Msg("glbview listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err, ok := <-errCh:
		mgr.CloseAll()
		if ok {
			return err
		}
		return nil
	case <-ctx.Done():
	}

	log.Info().Msg("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownGrace)
	defer cancel()
	mgr.CloseAll()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("graceful shutdown error")
	}
	return nil
}
