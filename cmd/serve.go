package cmd

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/ahamitd/notifyai/internal/adapters/httpapi"
	"github.com/fsnotify/fsnotify"
	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

const shutdownTimeout = 10 * time.Second

func newServeCmd(app *app) *cobra.Command {
	var addr string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the generate service, usage and metrics over HTTP",
		RunE: func(cmd *cobra.Command, _ []string) error {
			if addr == "" {
				addr = app.config.GetString(serveAddrKey)
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			watchConfig(app)

			gin.SetMode(gin.ReleaseMode)
			srv := &http.Server{
				Addr:              addr,
				Handler:           httpapi.NewRouter(app.service, app.metrics.Handler(), app.logger),
				ReadHeaderTimeout: 10 * time.Second,
			}

			return serveUntilDone(ctx, srv, app.logger)
		},
	}

	cmd.Flags().StringVar(&addr, "addr", "", "Listen address (default: serve.addr from config.toml, "+defaultServeAddr+")")

	return cmd
}

func serveUntilDone(ctx context.Context, srv *http.Server, logger logrus.FieldLogger) error {
	errCh := make(chan error, 1)
	go func() {
		logger.WithField("addr", srv.Addr).Info("listening")
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	logger.Info("shutting down")
	return srv.Shutdown(shutdownCtx)
}

// watchConfig reapplies the log level when config.toml changes and reports
// settings edits. Settings are read per request, so a running request keeps
// the settings it started with.
func watchConfig(app *app) {
	if app.config.ConfigFileUsed() != "" {
		app.config.OnConfigChange(func(e fsnotify.Event) {
			applyLogLevel(app, e)
		})
		app.config.WatchConfig()
	}

	settingsWatch := viper.New()
	settingsWatch.SetConfigFile(app.settings.Path())
	settingsWatch.SetConfigType("toml")
	if err := settingsWatch.ReadInConfig(); err != nil {
		app.logger.WithError(err).Debug("settings file not watched")
		return
	}
	settingsWatch.OnConfigChange(func(e fsnotify.Event) {
		log := app.logger.WithFields(logrus.Fields{"file": e.Name, "op": e.Op.String()})
		if _, err := app.service.Settings(context.Background()); err != nil {
			log.WithError(err).Warn("settings changed but cannot be loaded")
			return
		}
		log.Info("settings reloaded")
	})
	settingsWatch.WatchConfig()
}

func applyLogLevel(app *app, e fsnotify.Event) {
	log := app.logger.WithFields(logrus.Fields{"file": e.Name, "op": e.Op.String()})

	raw := envOrDefault("NOTIFYAI_LOG_LEVEL", app.config.GetString(logLevelKey))
	if raw == "" {
		log.Info("config changed")
		return
	}

	level, err := logrus.ParseLevel(raw)
	if err != nil {
		log.WithError(err).Warn("config changed with an invalid log level")
		return
	}
	app.logger.SetLevel(level)
	log.WithField("level", level.String()).Info("config changed")
}
