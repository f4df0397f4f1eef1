// Package backoff computes capped exponential retry delays with full jitter
// and runs bounded retry loops that respect context cancellation.
package backoff
