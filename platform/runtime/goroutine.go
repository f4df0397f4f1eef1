package runtime

import (
	"context"

	"github.com/ManojKamatam/LoginApp/platform/log"
)

// SafeGoWithContextAndComponent runs fn in a new goroutine guarded by
// RecoverWithPolicyAndContext.
func SafeGoWithContextAndComponent(
	ctx context.Context,
	logger log.Logger,
	component, name string,
	policy PanicPolicy,
	fn func(ctx context.Context),
) {
	if ctx == nil {
		ctx = context.Background()
	}

	go func() {
		defer RecoverWithPolicyAndContext(ctx, logger, component, name, policy)

		fn(ctx)
	}()
}
