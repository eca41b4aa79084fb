// Package app wires all bandly subsystems into a running application.
//
// The App struct owns the full lifecycle: New creates and connects all
// subsystems, Run serves the metrics/health endpoints until the context is
// cancelled, and Shutdown tears everything down in order.
//
// For testing, inject mock implementations via functional options
// (WithRepository, WithBank). When an option is not provided, New creates
// real implementations from the config.
package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/veslan/bandly/internal/config"
	"github.com/veslan/bandly/internal/exam"
	"github.com/veslan/bandly/internal/health"
	"github.com/veslan/bandly/internal/history"
	"github.com/veslan/bandly/internal/observe"
	"github.com/veslan/bandly/internal/resilience"
	"github.com/veslan/bandly/internal/session"
	"github.com/veslan/bandly/pkg/provider/evaluator"
	"github.com/veslan/bandly/pkg/provider/stt"
	"github.com/veslan/bandly/pkg/provider/vad"
	"github.com/veslan/bandly/pkg/store"
	"github.com/veslan/bandly/pkg/store/postgres"
)

// Providers holds one interface value per provider slot. Nil means the
// provider is not configured. Populated by main.go via the config registry.
type Providers struct {
	STT       stt.Provider
	VAD       vad.Detector
	Evaluator evaluator.Provider
}

// App owns all subsystem lifetimes.
type App struct {
	cfg       *config.Config
	providers *Providers

	repo       store.Repository
	bank       *exam.Bank
	sessions   *session.Evaluator
	aggregator *history.Aggregator
	exporter   *history.Exporter

	registry *prometheus.Registry
	srv      *http.Server

	// closers are called in order during Shutdown.
	closers []func(context.Context) error

	// stopOnce guards the Shutdown path.
	stopOnce sync.Once
}

// Option is a functional option for New. Use these to inject test doubles.
type Option func(*App)

// WithRepository injects a repository instead of connecting to PostgreSQL.
func WithRepository(r store.Repository) Option {
	return func(a *App) { a.repo = r }
}

// WithBank injects a question bank instead of loading one from the
// configured questions file.
func WithBank(b *exam.Bank) Option {
	return func(a *App) { a.bank = b }
}

// New creates an App by wiring all subsystems together. The providers struct
// comes from main.go (populated via the config registry). Use Option
// functions to inject test doubles.
//
// New performs all initialisation synchronously: telemetry providers, the
// PostgreSQL connection, question bank loading, and the session evaluator.
func New(ctx context.Context, cfg *config.Config, providers *Providers, opts ...Option) (*App, error) {
	a := &App{
		cfg:       cfg,
		providers: providers,
	}
	for _, o := range opts {
		o(a)
	}

	a.registry = prometheus.NewRegistry()
	otelShutdown, err := observe.InitProvider(ctx, observe.ProviderConfig{
		ServiceName: "bandly",
		Registerer:  a.registry,
	})
	if err != nil {
		return nil, fmt.Errorf("app: init telemetry: %w", err)
	}
	a.closers = append(a.closers, otelShutdown)

	if err := a.initStore(ctx); err != nil {
		otelShutdown(ctx)
		return nil, fmt.Errorf("app: init store: %w", err)
	}

	if err := a.initBank(); err != nil {
		a.runClosers(ctx)
		return nil, fmt.Errorf("app: init question bank: %w", err)
	}

	a.initSessions()
	a.initHistory()
	a.initServer()

	return a, nil
}

// initStore connects to PostgreSQL unless a repository was injected.
func (a *App) initStore(ctx context.Context) error {
	if a.repo != nil {
		return nil
	}

	dsn := a.cfg.Store.PostgresDSN
	if dsn == "" {
		return errors.New("store.postgres_dsn is required when a repository is not injected")
	}

	repo, err := postgres.New(ctx, dsn)
	if err != nil {
		return err
	}
	a.repo = repo
	a.closers = append(a.closers, func(context.Context) error {
		repo.Close()
		return nil
	})
	return nil
}

// initBank loads the question bank from the configured file. Without one the
// app still runs, but question and mock-test commands have nothing to serve.
func (a *App) initBank() error {
	if a.bank != nil {
		return nil
	}

	if a.cfg.Exam.QuestionsFile == "" {
		slog.Warn("no questions file configured; the question bank is empty")
		a.bank = exam.New(nil, nil)
		return nil
	}

	bank, err := exam.Load(a.cfg.Exam.QuestionsFile)
	if err != nil {
		return err
	}
	a.bank = bank
	slog.Info("question bank loaded", "file", a.cfg.Exam.QuestionsFile, "questions", bank.Len())
	return nil
}

// initSessions builds the attempt pipeline. The content evaluator is wrapped
// with retry middleware so one flaky backend call does not degrade an attempt
// to audio-only scoring.
func (a *App) initSessions() {
	var eval evaluator.Provider
	if a.providers.Evaluator != nil {
		eval = resilience.NewEvaluator(a.providers.Evaluator, a.retryConfig())
	}

	a.sessions = session.New(
		a.providers.STT,
		a.providers.VAD,
		eval,
		a.repo,
		observe.DefaultMetrics(),
		session.Config{
			SampleRate:    a.cfg.Audio.SampleRate,
			Channels:      a.cfg.Audio.Channels,
			Language:      a.cfg.Audio.Language,
			STTName:       a.cfg.Providers.STT.Name,
			EvaluatorName: a.cfg.Providers.Evaluator.Name,
		},
	)
}

func (a *App) initHistory() {
	a.aggregator = history.New(a.repo,
		history.WithWeakAreaWindow(a.cfg.History.WeakAreaWindow),
		history.WithMinSamples(a.cfg.History.MinSamples),
	)
	a.exporter = history.NewExporter(a.aggregator, a.repo, observe.DefaultMetrics())
}

// initServer builds the metrics/health HTTP server. The Prometheus exporter
// installed by observe.InitProvider feeds the app's registry, so /metrics
// serves every instrument in internal/observe.
func (a *App) initServer() {
	if a.cfg.Server.MetricsAddr == "" {
		return
	}

	mux := http.NewServeMux()
	mux.Handle("GET /metrics", promhttp.HandlerFor(a.registry, promhttp.HandlerOpts{}))
	health.New(
		health.WithCheck("database", func(ctx context.Context) error {
			_, err := a.repo.RecentAttempts(ctx, 1)
			return err
		}),
	).Register(mux)

	a.srv = &http.Server{
		Addr:              a.cfg.Server.MetricsAddr,
		Handler:           observe.Middleware(observe.DefaultMetrics())(mux),
		ReadHeaderTimeout: 5 * time.Second,
	}
}

// retryConfig converts the validated duration strings from the config into a
// resilience.RetryConfig. Unparseable values were rejected at load time.
func (a *App) retryConfig() resilience.RetryConfig {
	rc := resilience.RetryConfig{MaxRetries: a.cfg.Providers.Retry.MaxRetries}
	if d, err := time.ParseDuration(a.cfg.Providers.Retry.InitialInterval); err == nil {
		rc.InitialInterval = d
	}
	if d, err := time.ParseDuration(a.cfg.Providers.Retry.MaxInterval); err == nil {
		rc.MaxInterval = d
	}
	return rc
}

// Sessions returns the attempt pipeline.
func (a *App) Sessions() *session.Evaluator { return a.sessions }

// History returns the progress aggregator.
func (a *App) History() *history.Aggregator { return a.aggregator }

// Exporter returns the workbook exporter.
func (a *App) Exporter() *history.Exporter { return a.exporter }

// Bank returns the question bank.
func (a *App) Bank() *exam.Bank { return a.bank }

// Store returns the attempt repository.
func (a *App) Store() store.Repository { return a.repo }

// Run serves the metrics/health endpoints (when configured) and blocks until
// ctx is cancelled or the server fails. When no metrics address is
// configured, Run just blocks on ctx.
func (a *App) Run(ctx context.Context) error {
	if a.srv == nil {
		<-ctx.Done()
		return ctx.Err()
	}

	errCh := make(chan error, 1)
	go func() {
		slog.Info("metrics server listening", "addr", a.srv.Addr)
		if err := a.srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return fmt.Errorf("app: metrics server: %w", err)
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Shutdown tears down all subsystems in reverse-init order. It respects the
// context deadline: if ctx expires before all closers finish, remaining
// closers are skipped and the context error is returned.
func (a *App) Shutdown(ctx context.Context) error {
	var shutdownErr error
	a.stopOnce.Do(func() {
		if a.srv != nil {
			if err := a.srv.Shutdown(ctx); err != nil {
				slog.Warn("metrics server shutdown error", "err", err)
			}
		}
		shutdownErr = a.runClosers(ctx)
		slog.Info("shutdown complete")
	})
	return shutdownErr
}

// runClosers runs the registered closers in reverse order.
func (a *App) runClosers(ctx context.Context) error {
	for i := len(a.closers) - 1; i >= 0; i-- {
		select {
		case <-ctx.Done():
			slog.Warn("shutdown deadline exceeded", "remaining", i+1)
			return ctx.Err()
		default:
		}
		if err := a.closers[i](ctx); err != nil {
			slog.Warn("closer error", "index", i, "err", err)
		}
	}
	return nil
}
