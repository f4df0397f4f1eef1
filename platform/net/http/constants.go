package http

const (
	// HeaderID is the request identifier header key.
	HeaderID = "X-Request-Id"
	// HeaderUserAgent is the HTTP User-Agent header key.
	HeaderUserAgent = "User-Agent"

	// DefaultErrorTitle is used when an error carries no title of its own.
	DefaultErrorTitle = "request_failed"

	// PathHealth is the liveness probe route.
	PathHealth = "/health"
	// PathReady is the readiness probe route.
	PathReady = "/ready"
)
