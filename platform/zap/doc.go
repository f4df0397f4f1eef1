// Package zap adapts go.uber.org/zap to the platform/log interface.
//
// Records are encoded as JSON and teed into the OpenTelemetry log bridge so
// trace and log pipelines share one logger.
package zap
