package runtime

import (
	"context"
	"fmt"
	"runtime/debug"

	"github.com/ManojKamatam/LoginApp/platform/log"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// PanicPolicy decides what happens after a panic has been logged.
type PanicPolicy int

const (
	// KeepRunning swallows the panic.
	KeepRunning PanicPolicy = iota
	// CrashProcess re-panics after logging.
	CrashProcess
)

// String implements fmt.Stringer.
func (p PanicPolicy) String() string {
	switch p {
	case KeepRunning:
		return "KeepRunning"
	case CrashProcess:
		return "CrashProcess"
	default:
		return fmt.Sprintf("PanicPolicy(%d)", int(p))
	}
}

// RecoverWithPolicyAndContext recovers a panic, logs it with its stack and
// records it on the span in ctx, then applies policy. It must be deferred.
//
//	defer runtime.RecoverWithPolicyAndContext(ctx, logger, "server", "http", runtime.KeepRunning)
func RecoverWithPolicyAndContext(
	ctx context.Context,
	logger log.Logger,
	component, name string,
	policy PanicPolicy,
) {
	if recovered := recover(); recovered != nil {
		handle(ctx, logger, recovered, debug.Stack(), component, name)

		if policy == CrashProcess {
			panic(recovered)
		}
	}
}

// HandlePanicValue processes a value already recovered elsewhere, such as by
// fiber's recover middleware.
func HandlePanicValue(ctx context.Context, logger log.Logger, panicValue any, component, name string) {
	if panicValue == nil {
		return
	}

	handle(ctx, logger, panicValue, debug.Stack(), component, name)
}

func handle(ctx context.Context, logger log.Logger, panicValue any, stack []byte, component, name string) {
	if ctx == nil {
		ctx = context.Background()
	}

	if logger != nil {
		logger.Log(ctx, log.LevelError, "panic recovered",
			log.String("component", component),
			log.String("source", name),
			log.String("panic", fmt.Sprint(panicValue)),
			log.String("stack_trace", string(stack)),
		)
	}

	recordPanicToSpan(ctx, panicValue, stack, component, name)
}

func recordPanicToSpan(ctx context.Context, panicValue any, stack []byte, component, name string) {
	span := trace.SpanFromContext(ctx)
	if !span.IsRecording() {
		return
	}

	span.AddEvent("panic.recovered", trace.WithAttributes(
		attribute.String("panic.component", component),
		attribute.String("panic.source", name),
		attribute.String("panic.value", fmt.Sprint(panicValue)),
		attribute.String("panic.stack", string(stack)),
	))
	span.SetStatus(codes.Error, "panic recovered in "+name)
}
