package lifecycle

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/ManojKamatam/LoginApp/platform/log"
)

// Hook observes a phase transition. Hooks run after the phase record is
// logged, on the caller's goroutine, in registration order.
type Hook func(ctx context.Context, phase Phase)

// Option configures a Coordinator.
type Option func(c *Coordinator)

// WithClock replaces the time source used for record timestamps.
func WithClock(now func() time.Time) Option {
	return func(c *Coordinator) {
		if now != nil {
			c.now = now
		}
	}
}

// WithHook registers a phase observer.
func WithHook(hook Hook) Option {
	return func(c *Coordinator) {
		if hook != nil {
			c.hooks = append(c.hooks, hook)
		}
	}
}

// Coordinator reacts to host lifecycle notifications. The host drives every
// transition; the coordinator never advances a phase on its own.
type Coordinator struct {
	cfg    Config
	logger log.Logger
	now    func() time.Time
	hooks  []Hook

	mu    sync.Mutex
	phase Phase
	done  chan struct{}
}

// NewCoordinator validates cfg and returns a coordinator in NotStarted.
// A nil logger is replaced with a no-op logger.
func NewCoordinator(cfg Config, logger log.Logger, opts ...Option) (*Coordinator, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	logger = log.OrNop(logger)

	c := &Coordinator{
		cfg:    cfg,
		logger: logger,
		now:    time.Now,
		phase:  NotStarted,
		done:   make(chan struct{}),
	}

	for _, opt := range opts {
		opt(c)
	}

	return c, nil
}

// Config returns the validated configuration.
func (c *Coordinator) Config() Config {
	return c.cfg
}

// Phase returns the current phase.
func (c *Coordinator) Phase() Phase {
	c.mu.Lock()
	defer c.mu.Unlock()

	return c.phase
}

// Done is closed once the coordinator reaches Stopped.
func (c *Coordinator) Done() <-chan struct{} {
	return c.done
}

// OnStarted records that the host began accepting connections.
func (c *Coordinator) OnStarted(ctx context.Context) {
	ctx = orBackground(ctx)

	if !c.advance(ctx, Started) {
		return
	}

	c.record(ctx, Started, "Application started")
}

// OnStopping records that shutdown began, then blocks for the drain delay.
// The wait ends early when ctx is done.
func (c *Coordinator) OnStopping(ctx context.Context) {
	ctx = orBackground(ctx)

	if !c.advance(ctx, Stopping) {
		return
	}

	c.record(ctx, Stopping, "Application is stopping", log.Duration("drain_delay", c.cfg.DrainDelay))
	c.drain(ctx)
}

// OnStopped records that all shutdown work completed.
func (c *Coordinator) OnStopped(ctx context.Context) {
	ctx = orBackground(ctx)

	if !c.advance(ctx, Stopped) {
		return
	}

	close(c.done)
	c.record(ctx, Stopped, "Application stopped")
}

// advance moves to target if it is the next phase. Repeated or out-of-order
// notifications are dropped.
func (c *Coordinator) advance(ctx context.Context, target Phase) bool {
	c.mu.Lock()
	current := c.phase

	next, ok := current.next()
	if ok && next == target {
		c.phase = target
	}
	c.mu.Unlock()

	if !ok || next != target {
		c.safeLog(ctx, log.LevelDebug, "ignoring lifecycle notification",
			log.String("phase", current.String()),
			log.String("requested", target.String()),
		)

		return false
	}

	return true
}

func (c *Coordinator) record(ctx context.Context, phase Phase, msg string, extra ...log.Field) {
	fields := append([]log.Field{
		log.String("phase", phase.String()),
		log.Time("time", c.now().UTC()),
	}, extra...)

	c.safeLog(ctx, log.LevelInfo, msg, fields...)

	for i, hook := range c.hooks {
		c.runHook(ctx, i, hook, phase)
	}
}

func (c *Coordinator) drain(ctx context.Context) {
	if c.cfg.DrainDelay <= 0 {
		return
	}

	timer := time.NewTimer(c.cfg.DrainDelay)
	defer timer.Stop()

	select {
	case <-timer.C:
	case <-ctx.Done():
		c.safeLog(ctx, log.LevelWarn, "drain delay interrupted by shutdown deadline", log.Err(ctx.Err()))
	}
}

func (c *Coordinator) runHook(ctx context.Context, index int, hook Hook, phase Phase) {
	defer func() {
		if r := recover(); r != nil {
			c.safeLog(ctx, log.LevelError, "lifecycle hook panicked",
				log.Int("hook", index),
				log.String("phase", phase.String()),
				log.String("panic", fmt.Sprint(r)),
			)
		}
	}()

	hook(ctx, phase)
}

// safeLog swallows logger panics; lifecycle callbacks must never fail.
func (c *Coordinator) safeLog(ctx context.Context, level log.Level, msg string, fields ...log.Field) {
	defer func() {
		_ = recover()
	}()

	c.logger.Log(ctx, level, msg, fields...)
}

func orBackground(ctx context.Context) context.Context {
	if ctx == nil {
		return context.Background()
	}

	return ctx
}
