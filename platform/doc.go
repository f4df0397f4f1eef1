// Package platform holds the small cross-cutting helpers shared by the host:
// environment-driven configuration and request-scoped logger plumbing.
//
// Specialized integrations live in subpackages such as lifecycle, server,
// keyring, opentelemetry and net/http.
package platform
