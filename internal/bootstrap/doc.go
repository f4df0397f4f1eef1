// Package bootstrap wires configuration, logging, telemetry, the key ring
// and the HTTP and gRPC servers into a runnable Service.
package bootstrap
