// Package runtime recovers panics in goroutines and handlers, logging them
// with a stack trace and recording them on the active span.
package runtime
