package bootstrap

import (
	"github.com/ManojKamatam/LoginApp/internal/web"
	"github.com/ManojKamatam/LoginApp/platform/log"
)

// Option customizes InitServers.
type Option func(o *options)

type options struct {
	logger        log.Logger
	shutdownChan  <-chan struct{}
	authenticator web.Authenticator
}

// WithLogger replaces the zap logger built from the configuration.
func WithLogger(logger log.Logger) Option {
	return func(o *options) {
		o.logger = logger
	}
}

// WithShutdownChannel stops the servers when ch is closed instead of on a
// termination signal.
func WithShutdownChannel(ch <-chan struct{}) Option {
	return func(o *options) {
		o.shutdownChan = ch
	}
}

// WithAuthenticator enables credential sign in on the login page.
func WithAuthenticator(authenticator web.Authenticator) Option {
	return func(o *options) {
		o.authenticator = authenticator
	}
}
