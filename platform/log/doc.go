// Package log defines the logging interface and typed fields used by the host.
//
// Adapters (such as the zap package) implement Logger so components receive a
// logger through their constructors instead of a process-wide locator.
package log
