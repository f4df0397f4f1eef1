// Package opentelemetry initializes distributed tracing for the host.
//
// When telemetry is enabled spans are exported over OTLP/gRPC and the W3C
// trace-context propagator is installed globally. When disabled the returned
// Telemetry carries an in-process provider with no exporter, so middleware can
// keep creating spans without branching.
package opentelemetry
