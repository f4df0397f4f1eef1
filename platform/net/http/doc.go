// Package http configures the fiber HTTP stack of the host: limits, error
// rendering, cookie sessions, cookie encryption, security headers, access
// logging, tracing and health probes.
//
// Nothing here authenticates users; session lookup and cookie validation are
// the framework's. The middleware only wires framework features together.
package http
