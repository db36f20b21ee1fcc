package cmd

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/ahamitd/notifyai/internal/adapters/assets"
	"github.com/ahamitd/notifyai/internal/adapters/desktop"
	"github.com/ahamitd/notifyai/internal/adapters/dispatch"
	"github.com/ahamitd/notifyai/internal/adapters/hass"
	"github.com/ahamitd/notifyai/internal/adapters/metrics"
	"github.com/ahamitd/notifyai/internal/adapters/provider"
	statusadapter "github.com/ahamitd/notifyai/internal/adapters/render/status"
	sqliterepo "github.com/ahamitd/notifyai/internal/adapters/repo/sqlite"
	tomlrepo "github.com/ahamitd/notifyai/internal/adapters/repo/toml"
	chainstore "github.com/ahamitd/notifyai/internal/adapters/secrets/chain"
	"github.com/ahamitd/notifyai/internal/adapters/telegram"
	"github.com/ahamitd/notifyai/internal/application"
	"github.com/ahamitd/notifyai/internal/logging"
	"github.com/ahamitd/notifyai/internal/ports"
	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
	"github.com/spf13/viper"
)

const (
	logLevelKey  = "log.level"
	logFileKey   = "log.file"
	serveAddrKey = "serve.addr"

	defaultServeAddr   = "127.0.0.1:8099"
	journalOpenTimeout = 5 * time.Second
)

type app struct {
	service        *application.Service
	settings       *tomlrepo.Repository
	config         *viper.Viper
	configDir      string
	metrics        *metrics.Recorder
	logger         *logrus.Logger
	statusRenderer func(application.UsageStatus, statusadapter.RenderOptions) (string, error)
	now            func() time.Time
	closers        []func() error
}

func wireApp() (*app, error) {
	configDir, err := tomlrepo.ConfigDir()
	if err != nil {
		return nil, err
	}

	if err := godotenv.Load(filepath.Join(configDir, ".env")); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("load .env: %w", err)
	}

	cfg := viper.New()
	cfg.SetDefault(serveAddrKey, defaultServeAddr)
	repo, err := tomlrepo.NewRepository(cfg)
	if err != nil {
		return nil, fmt.Errorf("wire settings repository: %w", err)
	}

	logger, closeLog, err := logging.New(logging.Options{
		Level: envOrDefault("NOTIFYAI_LOG_LEVEL", cfg.GetString(logLevelKey)),
		File:  cfg.GetString(logFileKey),
	})
	if err != nil {
		return nil, fmt.Errorf("wire logger: %w", err)
	}

	a := &app{
		settings:       repo,
		config:         cfg,
		configDir:      configDir,
		metrics:        metrics.NewRecorder(),
		logger:         logger,
		statusRenderer: statusadapter.Render,
		now:            time.Now,
		closers:        []func() error{closeLog},
	}

	secretStore, err := chainstore.NewDefault(filepath.Join(configDir, "secrets"))
	if err != nil {
		_ = a.Close()
		return nil, fmt.Errorf("wire secret store chain: %w", err)
	}

	var journal ports.UsageJournal
	ctx, cancel := context.WithTimeout(context.Background(), journalOpenTimeout)
	defer cancel()
	if opened, err := sqliterepo.Open(ctx, sqliterepo.DefaultPath(configDir)); err != nil {
		logger.WithError(err).Warn("usage journal unavailable, counting in memory")
	} else {
		journal = opened
		a.closers = append(a.closers, opened.Close)
	}

	clock := ports.SystemClock{}
	a.service = application.NewService(application.Deps{
		Settings: repo,
		Secrets:  secretStore,
		Providers: provider.NewFactory(provider.Options{
			GeminiBaseURL: os.Getenv("NOTIFYAI_GEMINI_BASE_URL"),
			GroqBaseURL:   os.Getenv("NOTIFYAI_GROQ_BASE_URL"),
			HTTPClient:    http.DefaultClient,
			Now:           time.Now,
		}),
		Caller:  newServiceCaller(),
		Prompts: assets.NewSettingsPrompt(repo, filepath.Join(configDir, assets.SystemPromptFile)),
		Images:  assets.ImageFiles{},
		Usage:   application.NewUsageTracker(journal, clock),
		Metrics: a.metrics,
		Clock:   clock,
		Logger:  logger,
	})

	return a, nil
}

// newServiceCaller routes desktop and telegram targets locally and every
// other namespace to Home Assistant.
func newServiceCaller() ports.ServiceCaller {
	host := hass.New(os.Getenv("NOTIFYAI_HASS_URL"), os.Getenv("NOTIFYAI_HASS_TOKEN"))

	return dispatch.NewRouter(host).
		Handle(desktop.Namespace, desktop.New()).
		Handle(telegram.Namespace, telegram.New(os.Getenv("NOTIFYAI_TELEGRAM_TOKEN")))
}

// Close releases the journal and the log file. It is safe to call twice.
func (a *app) Close() error {
	var errs []error
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i](); err != nil {
			errs = append(errs, err)
		}
	}
	a.closers = nil
	return errors.Join(errs...)
}

func envOrDefault(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}
