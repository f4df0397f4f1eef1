//go:build integration

package lifecycle_test

import (
	"context"
	"testing"
	"time"

	"github.com/ManojKamatam/LoginApp/platform/lifecycle"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultLifecycleTakesDrainButNotTimeout(t *testing.T) {
	logger := &recordingLogger{}

	coord, err := lifecycle.NewCoordinator(lifecycle.DefaultConfig(), logger)
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(context.Background(), coord.Config().ShutdownTimeout)
	defer cancel()

	begin := time.Now()

	coord.OnStarted(ctx)
	coord.OnStopping(ctx)
	coord.OnStopped(ctx)

	elapsed := time.Since(begin)

	assert.GreaterOrEqual(t, elapsed, 4900*time.Millisecond)
	assert.Less(t, elapsed, 30*time.Second)
	assert.Len(t, logger.infoRecords(), 3)
}
