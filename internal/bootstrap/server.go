package bootstrap

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/ManojKamatam/LoginApp/internal/web"
	"github.com/ManojKamatam/LoginApp/platform"
	"github.com/ManojKamatam/LoginApp/platform/backoff"
	"github.com/ManojKamatam/LoginApp/platform/keyring"
	"github.com/ManojKamatam/LoginApp/platform/lifecycle"
	"github.com/ManojKamatam/LoginApp/platform/log"
	libHTTP "github.com/ManojKamatam/LoginApp/platform/net/http"
	"github.com/ManojKamatam/LoginApp/platform/opentelemetry"
	"github.com/ManojKamatam/LoginApp/platform/server"
	libZap "github.com/ManojKamatam/LoginApp/platform/zap"
	"github.com/gofiber/fiber/v2"
	"github.com/redis/go-redis/v9"
	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
)

const keyLoadTimeout = 10 * time.Second

// keyLoadPolicy retries the key ring while the store is still coming up.
var keyLoadPolicy = backoff.Policy{Attempts: 5, Base: 200 * time.Millisecond, Max: 2 * time.Second}

// ErrNilConfig is returned when InitServers receives no configuration.
var ErrNilConfig = errors.New("bootstrap config is nil")

// Server is the host process: the fiber app, the optional gRPC health
// service and the lifecycle coordinator behind one ServerManager.
type Server struct {
	manager   *server.ServerManager
	lifecycle *lifecycle.Coordinator
	app       *fiber.App
	telemetry *opentelemetry.Telemetry
	logger    log.Logger
	closers   []func() error
}

// Run starts the servers and blocks until shutdown completes.
func (s *Server) Run(_ *platform.Launcher) error {
	err := s.manager.StartWithGracefulShutdownWithError()

	s.close()

	return err
}

func (s *Server) close() {
	for i := len(s.closers) - 1; i >= 0; i-- {
		if err := s.closers[i](); err != nil {
			s.logger.Log(context.Background(), log.LevelWarn, "failed to release resource", log.Err(err))
		}
	}

	s.closers = nil
}

// App returns the configured fiber application.
func (s *Server) App() *fiber.App { return s.app }

// Lifecycle returns the coordinator driven by the server manager.
func (s *Server) Lifecycle() *lifecycle.Coordinator { return s.lifecycle }

// ServersStarted is closed once the listeners are bound.
func (s *Server) ServersStarted() <-chan struct{} { return s.manager.ServersStarted() }

// HTTPAddr reports the bound HTTP address.
func (s *Server) HTTPAddr() string { return s.manager.HTTPAddr() }

// GRPCAddr reports the bound gRPC health address.
func (s *Server) GRPCAddr() string { return s.manager.GRPCAddr() }

// Service is the application glue where we put all top level components to be used.
type Service struct {
	*Server
	Logger log.Logger
}

// Run starts the application.
// This is the only necessary code to run an app in main.go
func (s *Service) Run() error {
	return platform.NewLauncher(
		platform.WithLogger(s.Logger),
		platform.RunApp("LoginApp host", s.Server),
	).RunWithError()
}

// InitServers validates cfg and builds every component. The lifecycle
// settings are checked before any logger, listener or connection exists.
func InitServers(cfg *Config, opts ...Option) (*Service, error) {
	if cfg == nil {
		return nil, ErrNilConfig
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	o := &options{}
	for _, opt := range opts {
		opt(o)
	}

	srv := &Server{}

	svc, err := initServers(cfg, o, srv)
	if err != nil {
		if srv.telemetry != nil {
			_ = srv.telemetry.ShutdownTelemetry(context.Background())
		}

		if srv.logger != nil {
			srv.close()
		}

		return nil, err
	}

	return svc, nil
}

func initServers(cfg *Config, o *options, srv *Server) (*Service, error) {
	logger := o.logger
	if logger == nil {
		zapLogger, err := libZap.New(libZap.Config{
			Environment:     libZap.Environment(cfg.EnvName),
			Level:           cfg.LogLevel,
			OTelLibraryName: cfg.OtelLibraryName,
		})
		if err != nil {
			return nil, err
		}

		logger = zapLogger
	}

	srv.logger = logger

	telemetry, err := opentelemetry.InitializeTelemetryWithError(&opentelemetry.TelemetryConfig{
		LibraryName:               cfg.OtelLibraryName,
		ServiceName:               cfg.OtelServiceName,
		ServiceVersion:            cfg.OtelServiceVersion,
		DeploymentEnv:             cfg.OtelDeploymentEnv,
		CollectorExporterEndpoint: cfg.OtelColExporterEndpoint,
		EnableTelemetry:           cfg.EnableTelemetry,
		Logger:                    logger,
	})
	if err != nil {
		return nil, err
	}

	srv.telemetry = telemetry

	stores, err := newStores(cfg, logger, srv)
	if err != nil {
		return nil, err
	}

	keys, err := keyring.NewManager(keyring.Config{
		ApplicationName: cfg.DataProtectionAppName,
		KeyLifetime:     cfg.DataProtectionKeyLifetime,
	}, stores.keys, logger)
	if err != nil {
		return nil, err
	}

	ctx, cancel := context.WithTimeout(context.Background(), keyLoadTimeout)
	defer cancel()

	key, err := loadKey(ctx, keys, logger)
	if err != nil {
		return nil, fmt.Errorf("load data-protection key: %w", err)
	}

	grpcServer, hooks := newHealthServer(cfg)

	coordinator, err := lifecycle.NewCoordinator(cfg.Lifecycle(), logger, hooks...)
	if err != nil {
		return nil, err
	}

	app, err := newFiberApp(cfg, o, logger, telemetry, coordinator, key, stores)
	if err != nil {
		return nil, err
	}

	manager := server.NewServerManager(telemetry, logger).
		WithHTTPServer(app, cfg.ServerAddress).
		WithLifecycle(coordinator).
		WithShutdownTimeout(cfg.ShutdownTimeout)

	if grpcServer != nil {
		manager.WithGRPCServer(grpcServer, cfg.GRPCHealthAddress)
	}

	if o.shutdownChan != nil {
		manager.WithShutdownChannel(o.shutdownChan)
	}

	srv.manager = manager
	srv.lifecycle = coordinator
	srv.app = app

	return &Service{Server: srv, Logger: logger}, nil
}

func loadKey(ctx context.Context, keys *keyring.Manager, logger log.Logger) (keyring.Key, error) {
	var key keyring.Key

	attempt := 0

	err := backoff.Retry(ctx, keyLoadPolicy, func(ctx context.Context) error {
		attempt++

		current, err := keys.CurrentKey(ctx)
		if err != nil {
			logger.Log(ctx, log.LevelWarn, "data-protection key ring unavailable",
				log.Int("attempt", attempt),
				log.Err(err),
			)

			if errors.Is(err, keyring.ErrInvalidKey) || errors.Is(err, keyring.ErrKeyGeneration) {
				return backoff.Permanent(err)
			}

			return err
		}

		key = current

		return nil
	})

	return key, err
}

// sharedStores holds the state shared between hosts: data-protection keys and
// sessions. Both live in Redis when an address is configured.
type sharedStores struct {
	keys     keyring.Store
	sessions fiber.Storage
	checks   []libHTTP.DependencyCheck
}

func newStores(cfg *Config, logger log.Logger, srv *Server) (sharedStores, error) {
	if cfg.RedisAddress == "" {
		logger.Log(context.Background(), log.LevelWarn,
			"using in-memory data-protection key and session stores, sign ins do not survive a restart")

		return sharedStores{keys: keyring.NewMemoryStore()}, nil
	}

	client := redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddress,
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
	})
	srv.closers = append(srv.closers, client.Close)

	keys, err := keyring.NewRedisStore(client, logger)
	if err != nil {
		return sharedStores{}, err
	}

	sessions, err := libHTTP.NewRedisSessionStorage(client, cfg.DataProtectionAppName+":"+libHTTP.DefaultSessionKeyPrefix)
	if err != nil {
		return sharedStores{}, err
	}

	checks := []libHTTP.DependencyCheck{{
		Name: "redis",
		HealthCheck: func(ctx context.Context) error {
			return client.Ping(ctx).Err()
		},
	}}

	return sharedStores{keys: keys, sessions: sessions, checks: checks}, nil
}

// newHealthServer builds the gRPC health service. It reports NOT_SERVING
// until the host starts and again as soon as it begins stopping.
func newHealthServer(cfg *Config) (*grpc.Server, []lifecycle.Option) {
	if cfg.GRPCHealthAddress == "" {
		return nil, nil
	}

	healthServer := health.NewServer()
	healthServer.SetServingStatus("", healthpb.HealthCheckResponse_NOT_SERVING)
	healthServer.SetServingStatus(ApplicationName, healthpb.HealthCheckResponse_NOT_SERVING)

	grpcServer := grpc.NewServer()
	healthpb.RegisterHealthServer(grpcServer, healthServer)

	hook := lifecycle.WithHook(func(_ context.Context, phase lifecycle.Phase) {
		switch phase {
		case lifecycle.Started:
			healthServer.Resume()
		case lifecycle.Stopping:
			healthServer.Shutdown()
		}
	})

	return grpcServer, []lifecycle.Option{hook}
}

func newFiberApp(
	cfg *Config,
	o *options,
	logger log.Logger,
	telemetry *opentelemetry.Telemetry,
	coordinator *lifecycle.Coordinator,
	key keyring.Key,
	stores sharedStores,
) (*fiber.App, error) {
	errorHandler := libHTTP.ErrorPageHandler(web.PathError)
	if cfg.Development() {
		errorHandler = libHTTP.FiberErrorHandler
	}

	app := fiber.New(libHTTP.NewFiberConfig(ApplicationName, cfg.HTTPLimits(), errorHandler))

	app.Use(libHTTP.WithRecover(logger))
	app.Use(libHTTP.WithSecurityHeaders(cfg.Development()))
	app.Use(libHTTP.WithTelemetry(telemetry.Tracer()))
	app.Use(libHTTP.WithHTTPLogging(libHTTP.WithCustomLogger(logger)))

	if cfg.HealthChecksEnabled {
		app.Get(libHTTP.PathHealth, libHTTP.HealthWithDependencies(stores.checks...))
		app.Get(libHTTP.PathReady, libHTTP.Readiness(coordinator))
	}

	if cfg.StaticDir != "" {
		app.Static("/", cfg.StaticDir)
	} else {
		web.RegisterAssets(app)
	}

	app.Use(libHTTP.WithDataProtection(key.Encoded()))

	cookie := libHTTP.DefaultCookieOptions()
	cookie.Storage = stores.sessions

	sessions, err := libHTTP.NewSessionStore(cookie)
	if err != nil {
		return nil, err
	}

	handler, err := web.NewHandler(sessions, cookie, o.authenticator)
	if err != nil {
		return nil, err
	}

	handler.Register(app)

	return app, nil
}
