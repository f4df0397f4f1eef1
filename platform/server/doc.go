// Package server runs the HTTP and gRPC listeners and drives the lifecycle
// coordinator through startup, drain and ordered shutdown.
//
// Every shutdown step shares one deadline: the configured shutdown timeout.
package server
