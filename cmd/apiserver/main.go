// Command apiserver serves the patent insight API over HTTP, with a gRPC
// health endpoint alongside it.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/turtacn/KeyIP-Insight/internal/application/search"
	"github.com/turtacn/KeyIP-Insight/internal/config"
	"github.com/turtacn/KeyIP-Insight/internal/infrastructure/database/redis"
	"github.com/turtacn/KeyIP-Insight/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/KeyIP-Insight/internal/infrastructure/monitoring/prometheus"
	"github.com/turtacn/KeyIP-Insight/internal/infrastructure/monitoring/tracing"
	grpcserver "github.com/turtacn/KeyIP-Insight/internal/interfaces/grpc"
	httpserver "github.com/turtacn/KeyIP-Insight/internal/interfaces/http"
	"github.com/turtacn/KeyIP-Insight/internal/interfaces/http/handlers"
	"github.com/turtacn/KeyIP-Insight/internal/interfaces/http/middleware"
	"github.com/turtacn/KeyIP-Insight/pkg/client"
)

// Build-time variable injected via ldflags.
var version = "dev"

const probeInterval = 15 * time.Second

func main() {
	configPath := flag.String("config", "", "path to configuration file (default: KEYIP_* environment only)")
	httpPort := flag.Int("http-port", 0, "HTTP server port (overrides config)")
	grpcPort := flag.Int("grpc-port", -1, "gRPC health port, 0 disables (overrides config)")
	flag.Parse()

	cfg, err := config.LoadFromFile(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load configuration: %v\n", err)
		os.Exit(1)
	}
	if *httpPort > 0 {
		cfg.Server.Port = *httpPort
	}
	if *grpcPort >= 0 {
		cfg.Server.GRPCPort = *grpcPort
	}

	logger, err := logging.NewLogger(cfg.Log)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to create logger: %v\n", err)
		os.Exit(1)
	}
	logging.SetDefault(logger)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	logger.Info("starting KeyIP-Insight API server",
		logging.String("version", version),
		logging.Int("http_port", cfg.Server.Port),
		logging.Int("grpc_port", cfg.Server.GRPCPort),
		logging.Bool("remote_configured", cfg.Remote.Configured()),
	)

	a, err := newApp(ctx, cfg, logger)
	if err != nil {
		logger.Error("failed to initialize", logging.Err(err))
		os.Exit(1)
	}
	err = a.serve(ctx)
	a.close()
	if err != nil {
		logger.Error("server exited", logging.Err(err))
		os.Exit(1)
	}
	logger.Info("servers stopped")
}

// app owns the assembled handler and every resource that needs closing.
type app struct {
	cfg      *config.Config
	logger   logging.Logger
	handler  http.Handler
	checkers []grpcserver.Checker
	closers  []func(context.Context) error
}

func newApp(ctx context.Context, cfg *config.Config, logger logging.Logger) (*app, error) {
	a := &app{cfg: cfg, logger: logger}

	tp, shutdownTracing, err := tracing.Init(ctx, cfg.Tracing, version, logger)
	if err != nil {
		return nil, err
	}
	a.closers = append(a.closers, shutdownTracing)

	var (
		metrics        *prometheus.InsightMetrics
		metricsHandler http.Handler
	)
	if cfg.Metrics.Enabled {
		collector, err := prometheus.NewMetricsCollector(prometheus.CollectorConfig{
			Namespace:            cfg.Metrics.Namespace,
			EnableProcessMetrics: true,
			EnableGoMetrics:      true,
		}, logger)
		if err != nil {
			a.close()
			return nil, fmt.Errorf("metrics: %w", err)
		}
		metrics = prometheus.NewInsightMetrics(collector)
		metricsHandler = collector.Handler()
	}

	clientOpts := []client.Option{
		client.WithLogger(search.ClientLogger(logger)),
		client.WithTracerProvider(tp),
		client.WithUserAgent(fmt.Sprintf("%s/%s", cfg.Remote.UserAgent, version)),
		client.WithTimeout(cfg.Remote.Timeout),
		client.WithRetryMax(cfg.Remote.RetryMax),
		client.WithRetryWait(cfg.Remote.RetryWait),
	}
	searchOpts := []search.Option{search.WithTracerProvider(tp)}
	if metrics != nil {
		clientOpts = append(clientOpts, client.WithObserver(metrics))
		searchOpts = append(searchOpts, search.WithRecorder(searchRecorder{metrics: metrics}))
	}
	svc := search.NewService(search.ClientFactory(clientOpts...), logger, searchOpts...)

	defaults := search.Credentials{BaseURL: cfg.Remote.BaseURL, BearerToken: cfg.Remote.BearerToken}
	routerCfg := httpserver.RouterConfig{
		SearchHandler:  handlers.NewSearchHandler(svc, defaults, cfg.Server.MaxBodySize, logger),
		Logging:        middleware.RequestLogging(logger, middleware.DefaultLoggingConfig()),
		MetricsHandler: metricsHandler,
		MetricsPath:    cfg.Metrics.Path,
	}
	if len(cfg.Server.CORSOrigins) > 0 {
		routerCfg.CORS = middleware.CORS(middleware.DefaultCORSConfig(cfg.Server.CORSOrigins...))
	}

	var (
		reporter       handlers.HealthReporter
		healthCheckers []handlers.HealthChecker
	)
	if metrics != nil {
		routerCfg.Metrics = middleware.Metrics(metrics)
		reporter = metrics
	}

	if cfg.Redis.Enabled {
		rc, err := redis.NewClient(cfg.Redis, logger)
		if err != nil {
			a.close()
			return nil, err
		}
		a.closers = append(a.closers, func(context.Context) error { return rc.Close() })
		a.checkers = append(a.checkers, rc)
		healthCheckers = append(healthCheckers, rc)

		guardCfg := middleware.SessionGuardConfig{Header: cfg.Session.Header}
		if metrics != nil {
			guardCfg.OnConflict = metrics.RecordSessionConflict
		}
		guard := redis.NewSessionGuard(rc, cfg.Session.LockTTL, logger)
		routerCfg.SessionGuard = middleware.SessionGuard(guard, logger, guardCfg)
	}

	routerCfg.HealthHandler = handlers.NewHealthHandler(version, reporter, healthCheckers...)
	a.handler = httpserver.NewRouter(routerCfg)
	return a, nil
}

// serve runs the HTTP server and, if configured, the gRPC health server
// until ctx is cancelled or either server fails, then shuts both down.
func (a *app) serve(ctx context.Context) error {
	cfg := a.cfg
	httpSrv := httpserver.NewServer(fmt.Sprintf(":%d", cfg.Server.Port), a.handler,
		httpserver.WithTimeouts(cfg.Server.ReadTimeout, cfg.Server.WriteTimeout),
		httpserver.WithServerLogger(a.logger),
	)

	var grpcSrv *grpcserver.Server
	if cfg.Server.GRPCPort > 0 {
		var err error
		grpcSrv, err = grpcserver.NewServer(fmt.Sprintf(":%d", cfg.Server.GRPCPort),
			grpcserver.WithLogger(a.logger),
			grpcserver.WithGracefulTimeout(cfg.Server.ShutdownTimeout),
			grpcserver.WithCheckers(probeInterval, a.checkers...),
		)
		if err != nil {
			return err
		}
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(httpSrv.Start)
	if grpcSrv != nil {
		g.Go(grpcSrv.Start)
	}
	g.Go(func() error {
		<-gctx.Done()
		a.logger.Info("shutting down servers")

		sctx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
		defer cancel()
		errs := []error{httpSrv.Shutdown(sctx)}
		if grpcSrv != nil {
			errs = append(errs, grpcSrv.Stop(sctx))
		}
		return errors.Join(errs...)
	})
	return g.Wait()
}

// close releases resources in reverse order of acquisition.
func (a *app) close() {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i](ctx); err != nil {
			a.logger.Warn("close failed", logging.Err(err))
		}
	}
	a.closers = nil
}

//Personal.AI order the ending
