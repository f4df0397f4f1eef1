package server

import (
	"context"
	"errors"
	"fmt"
	"net"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/ManojKamatam/LoginApp/platform/lifecycle"
	"github.com/ManojKamatam/LoginApp/platform/log"
	"github.com/ManojKamatam/LoginApp/platform/opentelemetry"
	"github.com/ManojKamatam/LoginApp/platform/runtime"
	"github.com/gofiber/fiber/v2"
	"google.golang.org/grpc"
)

// ErrNoServersConfigured indicates no servers were configured for the manager
var ErrNoServersConfigured = errors.New("no servers configured: use WithHTTPServer() or WithGRPCServer()")

// ServerManager owns the listeners of the host process and their shutdown.
type ServerManager struct {
	httpServer         *fiber.App
	grpcServer         *grpc.Server
	telemetry          *opentelemetry.Telemetry
	logger             log.Logger
	lifecycle          *lifecycle.Coordinator
	httpAddress        string
	grpcAddress        string
	httpListener       net.Listener
	grpcListener       net.Listener
	addrMu             sync.RWMutex
	serversStarted     chan struct{}
	serversStartedOnce sync.Once
	shutdownChan       <-chan struct{}
	shutdownOnce       sync.Once
	shutdownTimeout    time.Duration
	startupErrors      chan error
}

// NewServerManager creates a new instance of ServerManager.
// If logger is nil, a no-op logger is used.
func NewServerManager(telemetry *opentelemetry.Telemetry, logger log.Logger) *ServerManager {
	logger = log.OrNop(logger)

	return &ServerManager{
		telemetry:      telemetry,
		logger:         logger,
		serversStarted: make(chan struct{}),
		startupErrors:  make(chan error, 2),
	}
}

// WithHTTPServer configures the HTTP server for the ServerManager.
func (sm *ServerManager) WithHTTPServer(app *fiber.App, address string) *ServerManager {
	sm.httpServer = app
	sm.httpAddress = address

	return sm
}

// WithGRPCServer configures the gRPC server for the ServerManager.
func (sm *ServerManager) WithGRPCServer(server *grpc.Server, address string) *ServerManager {
	sm.grpcServer = server
	sm.grpcAddress = address

	return sm
}

// WithLifecycle attaches the coordinator notified of Started, Stopping and
// Stopped. Its shutdown timeout becomes the default shutdown deadline.
func (sm *ServerManager) WithLifecycle(coordinator *lifecycle.Coordinator) *ServerManager {
	sm.lifecycle = coordinator

	return sm
}

// WithShutdownChannel configures a custom shutdown channel for the ServerManager.
// This allows tests to trigger shutdown deterministically instead of relying on OS signals.
func (sm *ServerManager) WithShutdownChannel(ch <-chan struct{}) *ServerManager {
	sm.shutdownChan = ch

	return sm
}

// WithShutdownTimeout bounds the whole shutdown sequence, drain included.
// Defaults to the lifecycle shutdown timeout, or 30 seconds without one.
func (sm *ServerManager) WithShutdownTimeout(d time.Duration) *ServerManager {
	sm.shutdownTimeout = d

	return sm
}

// ServersStarted returns a channel that is closed once every listener is
// bound and the serve goroutines have been launched.
func (sm *ServerManager) ServersStarted() <-chan struct{} {
	return sm.serversStarted
}

// HTTPAddr reports the bound HTTP address, or the configured one before binding.
func (sm *ServerManager) HTTPAddr() string {
	sm.addrMu.RLock()
	defer sm.addrMu.RUnlock()

	if sm.httpListener != nil {
		return sm.httpListener.Addr().String()
	}

	return sm.httpAddress
}

// GRPCAddr reports the bound gRPC address, or the configured one before binding.
func (sm *ServerManager) GRPCAddr() string {
	sm.addrMu.RLock()
	defer sm.addrMu.RUnlock()

	if sm.grpcListener != nil {
		return sm.grpcListener.Addr().String()
	}

	return sm.grpcAddress
}

func (sm *ServerManager) effectiveShutdownTimeout() time.Duration {
	if sm.shutdownTimeout != 0 {
		return sm.shutdownTimeout
	}

	if sm.lifecycle != nil {
		return sm.lifecycle.Config().ShutdownTimeout
	}

	return lifecycle.DefaultShutdownTimeout
}

func (sm *ServerManager) validateConfiguration() error {
	if sm.httpServer == nil && sm.grpcServer == nil {
		return ErrNoServersConfigured
	}

	cfg := lifecycle.Config{ShutdownTimeout: sm.effectiveShutdownTimeout()}
	if sm.lifecycle != nil {
		cfg.DrainDelay = sm.lifecycle.Config().DrainDelay
	}

	return cfg.Validate()
}

// StartWithGracefulShutdownWithError validates the configuration, binds the
// listeners and blocks until a termination signal, the shutdown channel or a
// serve error. It then runs the ordered shutdown.
//
// Nothing listens when validation or binding fails; the error is returned
// and no lifecycle notification is sent. A serve error after startup is
// returned once shutdown completes.
func (sm *ServerManager) StartWithGracefulShutdownWithError() error {
	if err := sm.validateConfiguration(); err != nil {
		return err
	}

	if err := sm.bindListeners(); err != nil {
		return err
	}

	sm.startServers()

	if sm.lifecycle != nil {
		sm.lifecycle.OnStarted(context.Background())
	}

	return sm.handleShutdown()
}

func (sm *ServerManager) bindListeners() error {
	sm.addrMu.Lock()
	defer sm.addrMu.Unlock()

	if sm.httpServer != nil {
		ln, err := net.Listen("tcp", sm.httpAddress)
		if err != nil {
			sm.logErrorf("Failed to listen on HTTP address: %v", err)

			return fmt.Errorf("HTTP listen: %w", err)
		}

		sm.httpListener = ln
	}

	if sm.grpcServer != nil {
		ln, err := net.Listen("tcp", sm.grpcAddress)
		if err != nil {
			sm.logErrorf("Failed to listen on gRPC address: %v", err)

			if sm.httpListener != nil {
				_ = sm.httpListener.Close()
				sm.httpListener = nil
			}

			return fmt.Errorf("gRPC listen: %w", err)
		}

		sm.grpcListener = ln
	}

	return nil
}

// startServers serves the bound listeners in separate goroutines.
func (sm *ServerManager) startServers() {
	started := 0

	if sm.httpServer != nil {
		ln := sm.httpListener

		runtime.SafeGoWithContextAndComponent(
			context.Background(),
			sm.logger,
			"server",
			"start_http_server",
			runtime.KeepRunning,
			func(_ context.Context) {
				sm.logInfof("Starting HTTP server on %s", ln.Addr())

				if err := sm.httpServer.Listener(ln); err != nil {
					sm.logErrorf("HTTP server error: %v", err)
					sm.reportStartupError(fmt.Errorf("HTTP server: %w", err))
				}
			},
		)

		started++
	}

	if sm.grpcServer != nil {
		ln := sm.grpcListener

		runtime.SafeGoWithContextAndComponent(
			context.Background(),
			sm.logger,
			"server",
			"start_grpc_server",
			runtime.KeepRunning,
			func(_ context.Context) {
				sm.logInfof("Starting gRPC server on %s", ln.Addr())

				if err := sm.grpcServer.Serve(ln); err != nil {
					sm.logErrorf("gRPC server error: %v", err)
					sm.reportStartupError(fmt.Errorf("gRPC serve: %w", err))
				}
			},
		)

		started++
	}

	sm.logInfof("Launched %d server goroutine(s)", started)

	sm.serversStartedOnce.Do(func() {
		close(sm.serversStarted)
	})
}

func (sm *ServerManager) reportStartupError(err error) {
	select {
	case sm.startupErrors <- err:
	default:
	}
}

// logInfo safely logs an info message if logger is available
func (sm *ServerManager) logInfo(msg string) {
	if sm.logger != nil {
		sm.logger.Log(context.Background(), log.LevelInfo, msg)
	}
}

// logInfof safely logs a formatted info message if logger is available
func (sm *ServerManager) logInfof(format string, args ...any) {
	if sm.logger != nil {
		sm.logger.Log(context.Background(), log.LevelInfo, fmt.Sprintf(format, args...))
	}
}

// logErrorf safely logs an error message if logger is available
func (sm *ServerManager) logErrorf(format string, args ...any) {
	if sm.logger != nil {
		sm.logger.Log(context.Background(), log.LevelError, fmt.Sprintf(format, args...))
	}
}

// handleShutdown waits for a termination signal, the shutdown channel or a
// serve error, then executes the shutdown sequence.
func (sm *ServerManager) handleShutdown() error {
	var serveErr error

	if sm.shutdownChan != nil {
		select {
		case <-sm.shutdownChan:
		case serveErr = <-sm.startupErrors:
			sm.logErrorf("Server startup failed: %v", serveErr)
		}
	} else {
		c := make(chan os.Signal, 1)
		signal.Notify(c, os.Interrupt, syscall.SIGTERM)

		select {
		case <-c:
		case serveErr = <-sm.startupErrors:
			sm.logErrorf("Server startup failed: %v", serveErr)
		}

		signal.Stop(c)
	}

	sm.logInfo("Gracefully shutting down all servers...")

	sm.executeShutdown()

	return serveErr
}

// executeShutdown runs, under a single deadline: lifecycle Stopping (drain),
// HTTP shutdown, telemetry flush, gRPC graceful stop, lifecycle Stopped and
// finally the logger sync. Only the first call has any effect.
func (sm *ServerManager) executeShutdown() {
	sm.shutdownOnce.Do(func() {
		ctx, cancel := context.WithTimeout(context.Background(), sm.effectiveShutdownTimeout())
		defer cancel()

		select {
		case <-sm.serversStarted:
		default:
			sm.logInfo("Shutdown initiated before servers were fully started.")
		}

		if sm.lifecycle != nil {
			sm.lifecycle.OnStopping(ctx)
		}

		if sm.httpServer != nil {
			sm.logInfo("Shutting down HTTP server...")

			if err := sm.httpServer.ShutdownWithContext(ctx); err != nil {
				sm.logErrorf("Error during HTTP server shutdown: %v", err)
			}
		}

		// Telemetry goes before gRPC so pending spans are exported.
		if sm.telemetry != nil {
			sm.logInfo("Shutting down telemetry...")

			if err := sm.telemetry.ShutdownTelemetry(ctx); err != nil {
				sm.logErrorf("Error during telemetry shutdown: %v", err)
			}
		}

		if sm.grpcServer != nil {
			sm.logInfo("Shutting down gRPC server...")

			done := make(chan struct{})

			go func() {
				sm.grpcServer.GracefulStop()
				close(done)
			}()

			select {
			case <-done:
				sm.logInfo("gRPC server stopped gracefully")
			case <-ctx.Done():
				sm.logInfo("gRPC graceful stop timed out, forcing stop...")
				sm.grpcServer.Stop()
			}
		}

		if sm.lifecycle != nil {
			sm.lifecycle.OnStopped(ctx)
		}

		sm.logInfo("Graceful shutdown completed")

		// Sync last so the Stopped record is flushed with everything else.
		sm.logInfo("Syncing logger...")

		if err := sm.logger.Sync(ctx); err != nil {
			sm.logErrorf("Failed to sync logger: %v", err)
		}
	})
}
