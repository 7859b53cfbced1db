package main

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/signal"
	"runtime"
	"syscall"
	"time"

	"github.com/gorilla/mux"
	"github.com/okian/handin/internal/adapters/http/api"
	"github.com/okian/handin/internal/adapters/http/site"
	"github.com/okian/handin/internal/adapters/provider"
	app "github.com/okian/handin/internal/app"
	"github.com/okian/handin/internal/config"
	"github.com/okian/handin/internal/domain/inflight"
	"github.com/okian/handin/pkg/logger"
	"github.com/okian/handin/pkg/metrics"
	"golang.org/x/sync/errgroup"
)

// HTTP server timeout constants.
const (
	readTimeout               = 10 * time.Second
	writeTimeout              = 10 * time.Second
	idleTimeout               = 60 * time.Second
	readHeaderTimeout         = 5 * time.Second
	systemMetricsInterval     = 10 * time.Second
	nanosecondsPerMillisecond = 1e6
)

func main() {
	// Root context with cancel on SIGINT/SIGTERM.
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Load configuration (dotenv -> defaults -> optional file -> env)
	cfg, err := config.Load(ctx)
	if err != nil {
		// Use stderr since the logger format is part of the config
		os.Stderr.WriteString("failed to load config: " + err.Error() + "\n")
		os.Exit(1)
	}

	if err := logger.InitWithFormat(cfg.LogFormat); err != nil {
		os.Stderr.WriteString("failed to initialize logging: " + err.Error() + "\n")
		os.Exit(1)
	}
	defer func() {
		_ = logger.Sync()
	}()

	loggerInstance := logger.Get()

	metrics.Init(
		metrics.WithNamespace(cfg.MetricsNamespace),
		metrics.WithSubsystem(cfg.MetricsSubsystem),
		metrics.WithHistogramBuckets(cfg.LatencyBucketsMS),
	)

	// Apply configured log level (fallback to info on invalid input)
	if err := logger.SetLevelString(cfg.LogLevel); err != nil {
		loggerInstance.Warn(ctx, "invalid log_level; falling back to info", logger.String("log_level", cfg.LogLevel), logger.Error(err))
		_ = logger.SetLevelString("info")
	}

	if err := run(ctx, cfg, loggerInstance); err != nil {
		loggerInstance.Error(ctx, "server exited with error", logger.Error(err))
		_ = logger.Sync()
		os.Exit(1)
	}
}

// run listens on cfg.Addr and serves until ctx is canceled.
func run(ctx context.Context, cfg *config.Config, log logger.Logger) error {
	ln, err := net.Listen("tcp", cfg.Addr)
	if err != nil {
		return fmt.Errorf("%w: %w", api.ErrServe, err)
	}
	return serve(ctx, cfg, log, ln)
}

// serve accepts on ln until ctx is canceled, then shuts the server down
// gracefully. Requests in progress keep their own context and are allowed
// to finish; only fragment streams are ended at shutdown.
func serve(ctx context.Context, cfg *config.Config, log logger.Logger, ln net.Listener) error {
	router, pages, err := newRouter(ctx, cfg, log)
	if err != nil {
		_ = ln.Close()
		return err
	}

	srv := newServer(cfg, router)
	srv.RegisterOnShutdown(pages.Close)

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		startSystemMetricsUpdater(gctx)
		return nil
	})

	g.Go(func() error {
		log.Info(ctx, "starting HTTP server", logger.String("addr", ln.Addr().String()))
		if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("%w: %w", api.ErrServe, err)
		}
		return nil
	})

	g.Go(func() error {
		<-gctx.Done()
		log.Info(ctx, "shutting down server...")

		// Graceful shutdown with timeout
		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout())
		defer cancel()

		if err := srv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("%w: %w", api.ErrShutdown, err)
		}
		log.Info(ctx, "server stopped")
		return nil
	})

	return g.Wait()
}

// newRouter wires the outbound client, the form workflow and every route.
func newRouter(ctx context.Context, cfg *config.Config, log logger.Logger) (*mux.Router, *site.Handler, error) {
	client := provider.New(cfg.ProviderBaseURL,
		provider.WithLevelsPath(cfg.LevelsPath),
		provider.WithAssignmentsPath(cfg.AssignmentsPath),
		provider.WithTimeout(cfg.RequestTimeout()),
		provider.WithLogger(log.Named("provider")),
	)

	tracker := inflight.NewInMemoryTracker(inflight.WithMaxSize(cfg.MaxInflightSubmissions))
	svc := app.New(client, app.WithLogger(log.Named("service")), app.WithTracker(tracker))

	pages, err := site.NewHandler(svc,
		site.WithFragmentInterval(cfg.FragmentInterval()),
		site.WithLogger(log.Named("site")),
	)
	if err != nil {
		return nil, nil, err
	}

	router := mux.NewRouter()
	api.Instrument(router)

	api.NewServer().Register(ctx, router)
	pages.Register(ctx, router)

	return router, pages, nil
}

// newServer builds the HTTP server.
func newServer(cfg *config.Config, handler http.Handler) *http.Server {
	return &http.Server{
		Addr:              cfg.Addr,
		Handler:           handler,
		ReadTimeout:       readTimeout,
		WriteTimeout:      writeTimeout,
		IdleTimeout:       idleTimeout,
		ReadHeaderTimeout: readHeaderTimeout,
	}
}

// startSystemMetricsUpdater updates system metrics until ctx is done.
func startSystemMetricsUpdater(ctx context.Context) {
	ticker := time.NewTicker(systemMetricsInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			updateSystemMetrics()
		}
	}
}

// updateSystemMetrics updates system-level metrics.
func updateSystemMetrics() {
	var m runtime.MemStats
	runtime.ReadMemStats(&m)
	metrics.UpdateSystemMemoryUsage(m.Alloc)

	metrics.UpdateSystemGoroutineCount(runtime.NumGoroutine())

	if m.NumGC > 0 {
		// Average GC pause
		avgPauseMs := float64(m.PauseTotalNs) / float64(m.NumGC) / nanosecondsPerMillisecond
		metrics.RecordSystemGCPauseTime(avgPauseMs)
	}
}
