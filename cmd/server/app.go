package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"sync"
	"text/template"
	"time"

	"github.com/phrazzld/skincare-api/internal/api"
	"github.com/phrazzld/skincare-api/internal/auth"
	"github.com/phrazzld/skincare-api/internal/config"
	"github.com/phrazzld/skincare-api/internal/platform/gemini"
	"github.com/phrazzld/skincare-api/internal/platform/inference"
	"github.com/phrazzld/skincare-api/internal/platform/logger"
	"github.com/phrazzld/skincare-api/internal/platform/postgres"
	redisstore "github.com/phrazzld/skincare-api/internal/platform/redis"
	"github.com/phrazzld/skincare-api/internal/platform/sentry"
	"github.com/phrazzld/skincare-api/internal/recommend"
	"github.com/phrazzld/skincare-api/internal/task"
)

// sentryFlushTimeout bounds how long shutdown waits for queued error reports.
const sentryFlushTimeout = 2 * time.Second

// application holds the shared dependencies and owns their shutdown.
type application struct {
	config *config.Config
	logger *slog.Logger

	reporter    *sentry.Reporter
	store       task.Store
	runner      *task.TaskRunner
	recommender *recommend.Service
	tokens      *auth.TokenService

	// background runs store maintenance until cleanup.
	background       context.Context
	cancelBackground context.CancelFunc
	backgroundWG     sync.WaitGroup

	closers     []func() error
	cleanupOnce sync.Once
}

// newApplication builds every collaborator from cfg. Gemini options apply to
// both the text generator and the vision classifier.
func newApplication(
	ctx context.Context,
	cfg *config.Config,
	log *slog.Logger,
	geminiOpts ...gemini.Option,
) (*application, error) {
	app := &application{
		config: cfg,
		logger: log,
	}
	app.background, app.cancelBackground = context.WithCancel(
		logger.WithLogger(context.Background(), log.With("component", "store_maintenance")))

	if err := app.init(ctx, geminiOpts); err != nil {
		app.cleanup()
		return nil, err
	}
	return app, nil
}

func (app *application) init(ctx context.Context, geminiOpts []gemini.Option) error {
	cfg := app.config

	var err error
	app.reporter, err = sentry.New(cfg.Sentry, version)
	if err != nil {
		return err
	}
	if app.reporter.Enabled() {
		app.logger.Info("Sentry error reporting enabled", "environment", cfg.Sentry.Environment)
	}

	if err := app.setupStore(ctx); err != nil {
		return err
	}

	generator, err := gemini.NewGenerator(ctx, app.logger.With("component", "llm_generator"), cfg.LLM, geminiOpts...)
	if err != nil {
		return fmt.Errorf("failed to initialize LLM generator: %w", err)
	}

	var tmpl *template.Template
	if cfg.LLM.PromptTemplatePath != "" {
		tmpl, err = recommend.LoadTemplate(cfg.LLM.PromptTemplatePath)
		if err != nil {
			return err
		}
		app.logger.Info("Using custom recommendation prompt", "path", cfg.LLM.PromptTemplatePath)
	}

	app.recommender, err = recommend.NewService(generator, tmpl, app.logger.With("component", "recommend"))
	if err != nil {
		return fmt.Errorf("failed to initialize recommendation service: %w", err)
	}

	classifier, err := newClassifier(ctx, cfg, app.logger, geminiOpts)
	if err != nil {
		return err
	}

	app.runner = task.NewTaskRunner(app.store, classifier, task.TaskRunnerConfig{
		WorkerCount: cfg.Task.WorkerCount,
		QueueSize:   cfg.Task.QueueSize,
		JobTimeout:  cfg.Task.JobTimeout,
		UploadDir:   cfg.Server.UploadDir,
	}, app.logger)
	app.runner.SetErrorHandler(app.reportTaskFailure)

	if cfg.Auth.Enabled() {
		app.tokens, err = auth.NewTokenService(cfg.Auth.JWTSecret)
		if err != nil {
			return fmt.Errorf("failed to initialize token service: %w", err)
		}
		app.logger.Info("Bearer token authentication enabled")
	}

	return nil
}

// setupStore connects the configured task store and starts its expiry loop.
func (app *application) setupStore(ctx context.Context) error {
	cfg := app.config

	switch cfg.Store.Driver {
	case "postgres":
		db, err := postgres.Open(ctx, cfg.Store.DatabaseURL, app.logger)
		if err != nil {
			return err
		}
		app.closers = append(app.closers, db.Close)

		if err := postgres.Migrate(ctx, db, "up", app.logger); err != nil {
			return err
		}

		store := postgres.NewTaskStore(db)
		app.store = store
		app.goBackground(func(ctx context.Context) { store.RunExpiry(ctx, cfg.Task.TTL) })

	case "redis":
		client, err := redisstore.Connect(ctx, cfg.Store.RedisAddr, app.logger)
		if err != nil {
			return err
		}
		app.closers = append(app.closers, client.Close)
		app.store = redisstore.NewTaskStore(client, cfg.Store.RedisTTL)

	default:
		store := task.NewMemoryStore(cfg.Task.TTL, app.logger)
		app.store = store
		app.goBackground(store.Run)
	}

	app.logger.Info("Task store ready", "driver", cfg.Store.Driver)
	return nil
}

// newClassifier selects the image classification backend.
func newClassifier(
	ctx context.Context,
	cfg *config.Config,
	log *slog.Logger,
	geminiOpts []gemini.Option,
) (task.Classifier, error) {
	switch cfg.Classifier.Backend {
	case "http":
		client, err := inference.NewClient(cfg.Classifier, nil, log)
		if err != nil {
			return nil, fmt.Errorf("failed to initialize inference client: %w", err)
		}
		return client, nil
	default:
		classifier, err := gemini.NewClassifier(ctx, log.With("component", "vision_classifier"), cfg.LLM, cfg.Classifier, geminiOpts...)
		if err != nil {
			return nil, fmt.Errorf("failed to initialize image classifier: %w", err)
		}
		return classifier, nil
	}
}

func (app *application) goBackground(fn func(ctx context.Context)) {
	app.backgroundWG.Add(1)
	go func() {
		defer app.backgroundWG.Done()
		fn(app.background)
	}()
}

// reportTaskFailure forwards classifier panics to Sentry. Ordinary
// classification failures are already recorded and logged by the job.
func (app *application) reportTaskFailure(id string, err error) {
	if errors.Is(err, task.ErrClassifierPanicked) {
		app.reporter.CaptureError(app.background, err, map[string]string{"task_id": id})
	}
}

// router builds the HTTP handler.
func (app *application) router() http.Handler {
	cfg := api.RouterConfig{
		Recommender:    app.recommender,
		Submitter:      app.runner,
		Tasks:          app.store,
		PanicReporter:  app.reporter,
		MaxUploadBytes: int64(app.config.Server.MaxUploadMB) << 20,
		Logger:         app.logger,
	}
	if app.tokens != nil {
		cfg.Tokens = app.tokens
	}
	return api.NewRouter(cfg)
}

// run listens on the configured port and serves until ctx is cancelled.
func (app *application) run(ctx context.Context) error {
	ln, err := net.Listen("tcp", fmt.Sprintf(":%d", app.config.Server.Port))
	if err != nil {
		app.cleanup()
		return fmt.Errorf("failed to listen: %w", err)
	}
	return app.serve(ctx, ln)
}

// serve starts the task runner and HTTP server on ln, then shuts both down
// gracefully once ctx is cancelled.
func (app *application) serve(ctx context.Context, ln net.Listener) error {
	defer app.cleanup()

	if err := app.runner.Start(); err != nil {
		_ = ln.Close()
		return fmt.Errorf("failed to start task runner: %w", err)
	}

	server := &http.Server{
		Handler:           app.router(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	serveErr := make(chan error, 1)
	go func() {
		app.logger.Info("Starting server", "addr", ln.Addr().String())
		if err := server.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
		close(serveErr)
	}()

	select {
	case <-ctx.Done():
		app.logger.Info("Shutting down server...")
	case err := <-serveErr:
		if err != nil {
			app.logger.Error("Server failed", "error", err)
			return fmt.Errorf("server failed: %w", err)
		}
	}

	timeout := app.config.Server.ShutdownTimeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	shutdownCtx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		app.logger.Error("Server shutdown failed", "error", err)
		return fmt.Errorf("server shutdown failed: %w", err)
	}

	app.logger.Info("Server shutdown completed")
	return nil
}

// cleanup stops the runner, background loops and connections. Safe to call
// more than once.
func (app *application) cleanup() {
	app.cleanupOnce.Do(func() {
		if app.runner != nil {
			app.runner.Stop()
		}

		app.cancelBackground()
		app.backgroundWG.Wait()

		for i := len(app.closers) - 1; i >= 0; i-- {
			if err := app.closers[i](); err != nil {
				app.logger.Error("failed to close resource", "error", err)
			}
		}

		app.reporter.Flush(sentryFlushTimeout)
	})
}
