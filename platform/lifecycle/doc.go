// Package lifecycle coordinates the started, stopping and stopped phases of
// the host process.
//
// A Coordinator logs one UTC-timestamped record per phase and, while stopping,
// holds the shutdown pipeline for a fixed drain delay so in-flight requests
// get a grace window. The delay is a plain timer bounded by the caller's
// context; it does not observe request counts.
//
//	coord, err := lifecycle.NewCoordinator(lifecycle.DefaultConfig(), logger)
//	if err != nil {
//		return err // *ConfigurationError, nothing was started
//	}
//
//	coord.OnStarted(ctx)
//	coord.OnStopping(shutdownCtx) // blocks for the drain delay
//	coord.OnStopped(shutdownCtx)
package lifecycle
