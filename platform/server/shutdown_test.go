//go:build unit

package server_test

import (
	"context"
	"errors"
	"net"
	"net/http"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/ManojKamatam/LoginApp/platform/lifecycle"
	"github.com/ManojKamatam/LoginApp/platform/log"
	"github.com/ManojKamatam/LoginApp/platform/opentelemetry"
	"github.com/ManojKamatam/LoginApp/platform/server"
	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/grpc"
)

// recordingLogger is a Logger that records messages and can return a Sync error.
type recordingLogger struct {
	mu       sync.Mutex
	messages []string
	syncErr  error
	// syncedAt is the number of messages recorded when Sync was first called.
	syncedAt int
	synced   bool
}

func (l *recordingLogger) Log(_ context.Context, _ log.Level, msg string, _ ...log.Field) {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.messages = append(l.messages, msg)
}

func (l *recordingLogger) With(_ ...log.Field) log.Logger { return l }
func (l *recordingLogger) WithGroup(_ string) log.Logger  { return l }
func (l *recordingLogger) Enabled(_ log.Level) bool       { return true }

func (l *recordingLogger) Sync(_ context.Context) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if !l.synced {
		l.synced, l.syncedAt = true, len(l.messages)
	}

	return l.syncErr
}

// unsynced returns the messages recorded after the first Sync.
func (l *recordingLogger) unsynced() []string {
	l.mu.Lock()
	defer l.mu.Unlock()

	if !l.synced {
		return nil
	}

	return append([]string(nil), l.messages[l.syncedAt:]...)
}

func (l *recordingLogger) getMessages() []string {
	l.mu.Lock()
	defer l.mu.Unlock()

	cp := make([]string, len(l.messages))
	copy(cp, l.messages)

	return cp
}

func (l *recordingLogger) count(msg string) int {
	n := 0

	for _, m := range l.getMessages() {
		if m == msg {
			n++
		}
	}

	return n
}

func newApp() *fiber.App {
	return fiber.New(fiber.Config{DisableStartupMessage: true})
}

// phaseRecorder is a lifecycle hook collecting the phases it observes.
type phaseRecorder struct {
	mu     sync.Mutex
	phases []lifecycle.Phase
	times  []time.Time
}

func (r *phaseRecorder) hook(_ context.Context, phase lifecycle.Phase) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.phases = append(r.phases, phase)
	r.times = append(r.times, time.Now())
}

func (r *phaseRecorder) snapshot() ([]lifecycle.Phase, []time.Time) {
	r.mu.Lock()
	defer r.mu.Unlock()

	return append([]lifecycle.Phase(nil), r.phases...), append([]time.Time(nil), r.times...)
}

func runManager(t *testing.T, sm *server.ServerManager) <-chan error {
	t.Helper()

	done := make(chan error, 1)

	go func() {
		done <- sm.StartWithGracefulShutdownWithError()
	}()

	return done
}

func waitStarted(t *testing.T, sm *server.ServerManager) {
	t.Helper()

	select {
	case <-sm.ServersStarted():
	case <-time.After(5 * time.Second):
		t.Fatal("Test timed out waiting for servers to start")
	}
}

func waitDone(t *testing.T, done <-chan error) error {
	t.Helper()

	select {
	case err := <-done:
		return err
	case <-time.After(10 * time.Second):
		t.Fatal("Test timed out waiting for StartWithGracefulShutdownWithError to complete")
	}

	return nil
}

func TestNewServerManager(t *testing.T) {
	sm := server.NewServerManager(nil, nil)
	assert.NotNil(t, sm, "NewServerManager should return a non-nil instance")
}

func TestServerManagerChaining(t *testing.T) {
	sm1 := server.NewServerManager(nil, nil).WithHTTPServer(newApp(), ":8080")
	sm2 := sm1.WithGRPCServer(grpc.NewServer(), ":50051").
		WithShutdownTimeout(time.Second).
		WithShutdownChannel(make(chan struct{}))

	assert.Same(t, sm1, sm2, "Method chaining should return the same instance")
	assert.Equal(t, ":8080", sm1.HTTPAddr())
	assert.Equal(t, ":50051", sm1.GRPCAddr())
}

func TestStartWithGracefulShutdownWithError_NoServers(t *testing.T) {
	sm := server.NewServerManager(nil, nil)

	err := sm.StartWithGracefulShutdownWithError()

	assert.ErrorIs(t, err, server.ErrNoServersConfigured)
}

func TestStartWithGracefulShutdownWithError_DrainNotBelowTimeout(t *testing.T) {
	logger := &recordingLogger{}

	coord, err := lifecycle.NewCoordinator(lifecycle.Config{ShutdownTimeout: time.Second, DrainDelay: 500 * time.Millisecond}, logger)
	require.NoError(t, err)

	sm := server.NewServerManager(nil, logger).
		WithHTTPServer(newApp(), "127.0.0.1:0").
		WithLifecycle(coord).
		WithShutdownTimeout(500 * time.Millisecond)

	err = sm.StartWithGracefulShutdownWithError()

	var cfgErr *lifecycle.ConfigurationError
	require.ErrorAs(t, err, &cfgErr)
	assert.ErrorIs(t, err, lifecycle.ErrInvalidConfiguration)

	assert.Equal(t, lifecycle.NotStarted, coord.Phase())
	assert.Empty(t, logger.getMessages(), "nothing is logged when configuration is rejected")

	select {
	case <-sm.ServersStarted():
		t.Fatal("servers must not start on configuration error")
	default:
	}
}

func TestStartWithGracefulShutdownWithError_HTTPLifecycleOrder(t *testing.T) {
	logger := &recordingLogger{}
	recorder := &phaseRecorder{}
	drain := 150 * time.Millisecond

	coord, err := lifecycle.NewCoordinator(
		lifecycle.Config{ShutdownTimeout: 2 * time.Second, DrainDelay: drain},
		logger,
		lifecycle.WithHook(recorder.hook),
	)
	require.NoError(t, err)

	app := newApp()
	app.Get("/", func(c *fiber.Ctx) error { return c.SendString("ok") })

	shutdownChan := make(chan struct{})
	sm := server.NewServerManager(nil, logger).
		WithHTTPServer(app, "127.0.0.1:0").
		WithLifecycle(coord).
		WithShutdownChannel(shutdownChan)

	done := runManager(t, sm)
	waitStarted(t, sm)

	assert.NotEqual(t, "127.0.0.1:0", sm.HTTPAddr())

	require.Eventually(t, func() bool { return coord.Phase() == lifecycle.Started }, time.Second, 5*time.Millisecond)

	resp, err := http.Get("http://" + sm.HTTPAddr() + "/")
	require.NoError(t, err)
	require.NoError(t, resp.Body.Close())
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	close(shutdownChan)
	require.NoError(t, waitDone(t, done))

	phases, times := recorder.snapshot()
	require.Equal(t, []lifecycle.Phase{lifecycle.Started, lifecycle.Stopping, lifecycle.Stopped}, phases)
	assert.GreaterOrEqual(t, times[2].Sub(times[1]), drain, "Stopped follows Stopping by at least the drain delay")
	assert.Equal(t, lifecycle.Stopped, coord.Phase())

	msgs := logger.getMessages()
	assert.Equal(t, 1, logger.count("Application started"))
	assert.Equal(t, 1, logger.count("Application is stopping"))
	assert.Equal(t, 1, logger.count("Application stopped"))
	assert.Equal(t, "Syncing logger...", msgs[len(msgs)-1])
	assert.Empty(t, logger.unsynced(), "nothing is logged after the final sync")

	select {
	case <-coord.Done():
	default:
		t.Fatal("coordinator Done must be closed after shutdown")
	}
}

func TestStartWithGracefulShutdownWithError_GRPCServer_Success(t *testing.T) {
	logger := &recordingLogger{}
	shutdownChan := make(chan struct{})

	sm := server.NewServerManager(nil, logger).
		WithGRPCServer(grpc.NewServer(), "127.0.0.1:0").
		WithShutdownChannel(shutdownChan)

	done := runManager(t, sm)
	waitStarted(t, sm)

	conn, err := net.Dial("tcp", sm.GRPCAddr())
	require.NoError(t, err)
	require.NoError(t, conn.Close())

	close(shutdownChan)
	require.NoError(t, waitDone(t, done))

	assert.Equal(t, 1, logger.count("gRPC server stopped gracefully"))
}

func TestStartWithGracefulShutdownWithError_HTTPStartupError(t *testing.T) {
	occupied, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	defer occupied.Close()

	logger := &recordingLogger{}
	recorder := &phaseRecorder{}

	coord, err := lifecycle.NewCoordinator(lifecycle.DefaultConfig(), logger, lifecycle.WithHook(recorder.hook))
	require.NoError(t, err)

	sm := server.NewServerManager(nil, logger).
		WithHTTPServer(newApp(), occupied.Addr().String()).
		WithLifecycle(coord).
		WithShutdownChannel(make(chan struct{}))

	err = sm.StartWithGracefulShutdownWithError()
	require.Error(t, err)
	assert.True(t, strings.HasPrefix(err.Error(), "HTTP listen:"))

	phases, _ := recorder.snapshot()
	assert.Empty(t, phases, "no lifecycle notification when the host never started")
	assert.Equal(t, lifecycle.NotStarted, coord.Phase())
}

func TestStartWithGracefulShutdownWithError_GRPCStartupErrorReleasesHTTP(t *testing.T) {
	occupied, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	defer occupied.Close()

	probe, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)

	httpAddr := probe.Addr().String()
	require.NoError(t, probe.Close())

	sm := server.NewServerManager(nil, nil).
		WithHTTPServer(newApp(), httpAddr).
		WithGRPCServer(grpc.NewServer(), occupied.Addr().String())

	err = sm.StartWithGracefulShutdownWithError()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "gRPC listen")

	// The HTTP port bound first must have been released.
	again, err := net.Listen("tcp", httpAddr)
	require.NoError(t, err)
	require.NoError(t, again.Close())
}

func TestExecuteShutdown_Idempotent(t *testing.T) {
	logger := &recordingLogger{}

	sm := server.NewServerManager(nil, logger).
		WithHTTPServer(newApp(), "127.0.0.1:0")

	sm.ExecuteShutdown()
	sm.ExecuteShutdown()

	assert.Equal(t, 1, logger.count("Graceful shutdown completed"))
	assert.Equal(t, 1, logger.count("Shutdown initiated before servers were fully started."))
}

func TestExecuteShutdown_LoggerSyncError(t *testing.T) {
	logger := &recordingLogger{syncErr: errors.New("sync failed")}

	sm := server.NewServerManager(nil, logger).
		WithHTTPServer(newApp(), "127.0.0.1:0")

	sm.ExecuteShutdown()

	assert.Equal(t, 1, logger.count("Failed to sync logger: sync failed"))
}

func TestExecuteShutdown_WithTelemetry(t *testing.T) {
	logger := &recordingLogger{}

	telemetry, err := opentelemetry.InitializeTelemetryWithError(&opentelemetry.TelemetryConfig{
		LibraryName: "test",
		ServiceName: "loginapp",
		Logger:      logger,
	})
	require.NoError(t, err)

	sm := server.NewServerManager(telemetry, logger).
		WithHTTPServer(newApp(), "127.0.0.1:0")

	sm.ExecuteShutdown()

	msgs := logger.getMessages()
	assert.Contains(t, msgs, "Shutting down telemetry...")
	assert.NotContains(t, msgs, "Error during telemetry shutdown")
}

func TestExecuteShutdown_OrderOfSteps(t *testing.T) {
	logger := &recordingLogger{}

	coord, err := lifecycle.NewCoordinator(lifecycle.Config{ShutdownTimeout: time.Second, DrainDelay: 0}, logger)
	require.NoError(t, err)
	coord.OnStarted(context.Background())

	telemetry, err := opentelemetry.InitializeTelemetryWithError(&opentelemetry.TelemetryConfig{Logger: logger})
	require.NoError(t, err)

	sm := server.NewServerManager(telemetry, logger).
		WithHTTPServer(newApp(), "127.0.0.1:0").
		WithGRPCServer(grpc.NewServer(), "127.0.0.1:0").
		WithLifecycle(coord)

	sm.ExecuteShutdown()

	want := []string{
		"Application is stopping",
		"Shutting down HTTP server...",
		"Shutting down telemetry...",
		"Shutting down gRPC server...",
		"Application stopped",
		"Graceful shutdown completed",
		"Syncing logger...",
	}

	msgs := logger.getMessages()
	last := -1

	for _, w := range want {
		idx := -1

		for i, m := range msgs {
			if m == w {
				idx = i
				break
			}
		}

		require.NotEqual(t, -1, idx, "missing %q", w)
		assert.Greater(t, idx, last, "%q out of order", w)
		last = idx
	}
}

func TestStartWithGracefulShutdownWithError_InFlightRequestCompletes(t *testing.T) {
	coord, err := lifecycle.NewCoordinator(lifecycle.Config{ShutdownTimeout: 3 * time.Second, DrainDelay: 300 * time.Millisecond}, nil)
	require.NoError(t, err)

	entered := make(chan struct{})

	app := newApp()
	app.Get("/slow", func(c *fiber.Ctx) error {
		close(entered)
		time.Sleep(200 * time.Millisecond)

		return c.SendString("done")
	})

	shutdownChan := make(chan struct{})
	sm := server.NewServerManager(nil, nil).
		WithHTTPServer(app, "127.0.0.1:0").
		WithLifecycle(coord).
		WithShutdownChannel(shutdownChan)

	done := runManager(t, sm)
	waitStarted(t, sm)

	result := make(chan int, 1)

	go func() {
		resp, err := http.Get("http://" + sm.HTTPAddr() + "/slow")
		if err != nil {
			result <- 0
			return
		}

		_ = resp.Body.Close()
		result <- resp.StatusCode
	}()

	<-entered
	close(shutdownChan)

	select {
	case status := <-result:
		assert.Equal(t, http.StatusOK, status)
	case <-time.After(5 * time.Second):
		t.Fatal("in-flight request did not complete")
	}

	require.NoError(t, waitDone(t, done))
}
